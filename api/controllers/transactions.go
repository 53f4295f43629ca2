package controllers

import (
	"context"
	"net/http"

	"github.com/rdelgado-dev/stockroom-backend/api/middleware"
	"github.com/rdelgado-dev/stockroom-backend/api/responses"
	"github.com/rdelgado-dev/stockroom-backend/api/validators"
	"github.com/rdelgado-dev/stockroom-backend/internal/transactions"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/enums"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
	"github.com/rdelgado-dev/stockroom-backend/pkg/pagination"
)

type transactionsService interface {
	RecordReturn(ctx context.Context, input transactions.ReturnInput) (*transactions.ReturnResult, error)
	List(ctx context.Context, filters transactions.ListFilters) ([]models.Transaction, error)
	Get(ctx context.Context, id int64) (*models.Transaction, error)
	ListOutstandingByEmployee(ctx context.Context, employeeID int64) ([]transactions.OutstandingRequest, error)
}

type returnRequest struct {
	ItemID               int64   `json:"item_id" validate:"required,min=1"`
	FixtureID            int64   `json:"fixture_id" validate:"required,min=1"`
	Quantity             int     `json:"quantity" validate:"required,gt=0"`
	Remarks              *string `json:"remarks,omitempty"`
	RequestTransactionID *int64  `json:"request_transaction_id,omitempty" validate:"omitempty,min=1"`
}

// TransactionReturn records a stock return, optionally linked to the request
// that issued the units.
func TransactionReturn(svc transactionsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID := middleware.EmployeeIDFromContext(r.Context())
		if employeeID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee context missing"))
			return
		}

		var payload returnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RecordReturn(r.Context(), transactions.ReturnInput{
			ItemID:               payload.ItemID,
			EmployeeID:           employeeID,
			FixtureID:            payload.FixtureID,
			Quantity:             payload.Quantity,
			Remarks:              payload.Remarks,
			RequestTransactionID: payload.RequestTransactionID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// TransactionList returns ledger entries newest first with cursor pagination.
func TransactionList(svc transactionsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := transactions.ListFilters{}

		if raw := r.URL.Query().Get("type"); raw != "" {
			parsed, err := enums.ParseTransactionType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidInput, err, "invalid transaction type"))
				return
			}
			filters.Type = &parsed
		}

		itemID, err := intQuery(r, "item_id", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if itemID > 0 {
			id := int64(itemID)
			filters.ItemID = &id
		}

		employeeID, err := intQuery(r, "employee_id", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if employeeID > 0 {
			id := int64(employeeID)
			filters.EmployeeID = &id
		}

		rawLimit, err := intQuery(r, "limit", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit := pagination.NormalizeLimit(rawLimit)
		filters.Limit = pagination.LimitWithBuffer(rawLimit)

		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidInput, err, "invalid cursor"))
			return
		}
		filters.Cursor = cursor

		rows, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		nextCursor := ""
		if len(rows) > limit {
			rows = rows[:limit]
			last := rows[len(rows)-1]
			nextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: last.CreatedAt,
				ID:        last.ID,
			})
		}

		responses.WriteSuccess(w, map[string]any{
			"transactions": rows,
			"next_cursor":  nextCursor,
		})
	}
}

// TransactionDetail returns a single ledger entry.
func TransactionDetail(svc transactionsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "transactionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// TransactionUserOutstanding returns the employee's requests that still have
// unreturned quantity.
func TransactionUserOutstanding(svc transactionsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID, err := idParam(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outstanding, err := svc.ListOutstandingByEmployee(r.Context(), employeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"requests": outstanding,
			"count":    len(outstanding),
		})
	}
}
