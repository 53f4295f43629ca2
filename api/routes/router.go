package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rdelgado-dev/stockroom-backend/api/controllers"
	"github.com/rdelgado-dev/stockroom-backend/api/middleware"
	"github.com/rdelgado-dev/stockroom-backend/internal/alerts"
	"github.com/rdelgado-dev/stockroom-backend/internal/employees"
	"github.com/rdelgado-dev/stockroom-backend/internal/fixtures"
	"github.com/rdelgado-dev/stockroom-backend/internal/inventory"
	"github.com/rdelgado-dev/stockroom-backend/internal/reports"
	"github.com/rdelgado-dev/stockroom-backend/internal/transactions"
	"github.com/rdelgado-dev/stockroom-backend/pkg/config"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
	pkgredis "github.com/rdelgado-dev/stockroom-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *pkgredis.Client,
	gatherer prometheus.Gatherer,
	inventorySvc *inventory.Service,
	transactionsSvc *transactions.Service,
	alertsSvc *alerts.Service,
	reportsSvc *reports.Service,
	fixturesSvc *fixtures.Service,
	employeesSvc *employees.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(inventorySvc, logg))
			r.Get("/{itemID}", controllers.InventoryDetail(inventorySvc, logg))
			r.Post("/request", controllers.InventoryRequest(inventorySvc, logg))
			r.Post("/transfer", controllers.InventoryTransfer(inventorySvc, logg))

			// Stock intake and metadata edits are an admin concern.
			r.With(middleware.RequireRole("admin", logg)).Post("/", controllers.InventoryCreate(inventorySvc, logg))
			r.With(middleware.RequireRole("admin", logg)).Put("/{itemID}", controllers.InventoryUpdate(inventorySvc, logg))
			r.With(middleware.RequireRole("admin", logg)).Post("/restock", controllers.InventoryRestock(inventorySvc, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.TransactionList(transactionsSvc, logg))
			r.Post("/return", controllers.TransactionReturn(transactionsSvc, logg))
			r.Get("/user/{employeeID}", controllers.TransactionUserOutstanding(transactionsSvc, logg))
			r.Get("/{transactionID}", controllers.TransactionDetail(transactionsSvc, logg))
		})

		r.Get("/alerts/low-stock", controllers.AlertsLowStock(alertsSvc, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/weekly", controllers.ReportsWeekly(reportsSvc, logg))
			r.Get("/spending", controllers.ReportsSpending(reportsSvc, logg))
		})

		r.Route("/fixtures", func(r chi.Router) {
			r.Get("/", controllers.FixtureList(fixturesSvc, logg))
			r.Get("/{fixtureID}", controllers.FixtureDetail(fixturesSvc, logg))
			r.With(middleware.RequireRole("admin", logg)).Post("/", controllers.FixtureCreate(fixturesSvc, logg))
			r.With(middleware.RequireRole("admin", logg)).Put("/{fixtureID}", controllers.FixtureUpdate(fixturesSvc, logg))
			r.With(middleware.RequireRole("admin", logg)).Delete("/{fixtureID}", controllers.FixtureDelete(fixturesSvc, logg))
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", controllers.EmployeeList(employeesSvc, logg))
			r.Get("/{employeeID}", controllers.EmployeeDetail(employeesSvc, logg))
		})
	})

	return r
}
