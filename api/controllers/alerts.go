package controllers

import (
	"context"
	"net/http"

	"github.com/rdelgado-dev/stockroom-backend/api/responses"
	"github.com/rdelgado-dev/stockroom-backend/internal/alerts"
	"github.com/rdelgado-dev/stockroom-backend/internal/inventory"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
)

type alertsService interface {
	LowStock(ctx context.Context, filters inventory.ListFilters) ([]alerts.LowStockItem, error)
}

// AlertsLowStock lists items below their reorder threshold.
func AlertsLowStock(svc alertsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := inventory.ListFilters{
			Project:  optionalQuery(r, "project"),
			TestArea: optionalQuery(r, "test_area"),
		}

		items, err := svc.LowStock(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items, "count": len(items)})
	}
}
