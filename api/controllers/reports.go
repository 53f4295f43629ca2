package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/rdelgado-dev/stockroom-backend/api/responses"
	"github.com/rdelgado-dev/stockroom-backend/internal/reports"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
)

const defaultSpendingDays = 30

type reportsService interface {
	GenerateWeekly(ctx context.Context, now time.Time) ([]models.Report, error)
	Spending(ctx context.Context, now time.Time, days int) (*reports.SpendingReport, error)
}

// ReportsWeekly aggregates the past week's request usage per item, replacing
// the stored rows for the same week.
func ReportsWeekly(svc reportsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.GenerateWeekly(r.Context(), time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"rows": rows, "count": len(rows)})
	}
}

// ReportsSpending prices request usage over the last N days.
func ReportsSpending(svc reportsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := intQuery(r, "days", defaultSpendingDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Spending(r.Context(), time.Now(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
