package transactions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/internal/guard"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/enums"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
	"github.com/rdelgado-dev/stockroom-backend/pkg/metrics"
)

// Service records returns and answers outstanding-request queries.
type Service struct {
	client  *db.Client
	repo    *Repository
	logg    *logger.Logger
	metrics *metrics.TransactionMetrics
}

// NewService wires the transactions service.
func NewService(client *db.Client, repo *Repository, logg *logger.Logger, m *metrics.TransactionMetrics) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	return &Service{client: client, repo: repo, logg: logg, metrics: m}, nil
}

// ReturnInput captures a stock return.
type ReturnInput struct {
	ItemID               int64
	EmployeeID           int64
	FixtureID            int64
	Quantity             int
	Remarks              *string
	RequestTransactionID *int64
}

// ReturnResult reports the committed return.
type ReturnResult struct {
	Transaction *models.Transaction `json:"transaction"`
	NewQuantity int                 `json:"new_quantity"`
}

// RecordReturn increments the item's stock and appends a return entry. When a
// request transaction id is supplied the link is stored on the row itself and
// is authoritative for matching.
func (s *Service) RecordReturn(ctx context.Context, input ReturnInput) (*ReturnResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "quantity must be a positive integer")
	}

	var result ReturnResult
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := guard.LockItem(tx, input.ItemID)
		if err != nil {
			return err
		}

		if input.RequestTransactionID != nil {
			request, err := s.repo.WithTx(tx).FindByID(ctx, *input.RequestTransactionID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound,
						fmt.Sprintf("request transaction %d not found", *input.RequestTransactionID))
				}
				return err
			}
			if request.TransactionType != enums.TransactionTypeRequest {
				return pkgerrors.New(pkgerrors.CodeInvalidInput,
					fmt.Sprintf("transaction %d is not a request", request.ID))
			}
		}

		item.CurrentQuantity += input.Quantity
		if err := guard.SaveItem(ctx, tx, item); err != nil {
			return err
		}

		entry := &models.Transaction{
			ItemID:            &item.ID,
			EmployeeID:        input.EmployeeID,
			FixtureID:         input.FixtureID,
			QuantityUsed:      input.Quantity,
			TransactionType:   enums.TransactionTypeReturn,
			Remarks:           input.Remarks,
			TestArea:          &item.TestArea,
			ProjectName:       &item.ProjectName,
			LinkedRequestTxID: input.RequestTransactionID,
		}
		if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}

		result.Transaction = entry
		result.NewQuantity = item.CurrentQuantity
		return nil
	})
	if err != nil {
		return nil, s.translate(ctx, "recording return", err)
	}

	s.metrics.IncRecorded(enums.TransactionTypeReturn.String())
	return &result, nil
}

// OutstandingRequest is a request entry with its unreturned balance.
type OutstandingRequest struct {
	Transaction       models.Transaction `json:"transaction"`
	ReturnedQuantity  int                `json:"returned_quantity"`
	RemainingQuantity int                `json:"remaining_quantity"`
}

// ListOutstandingByEmployee returns the employee's requests that still have
// unreturned quantity.
func (s *Service) ListOutstandingByEmployee(ctx context.Context, employeeID int64) ([]OutstandingRequest, error) {
	requests, err := s.repo.ListRequestsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	outstanding := make([]OutstandingRequest, 0, len(requests))
	for i := range requests {
		returned, err := s.matchedReturns(ctx, &requests[i])
		if err != nil {
			return nil, err
		}
		remaining := requests[i].QuantityUsed - returned
		if remaining < 0 {
			remaining = 0
		}
		if remaining > 0 {
			outstanding = append(outstanding, OutstandingRequest{
				Transaction:       requests[i],
				ReturnedQuantity:  returned,
				RemainingQuantity: remaining,
			})
		}
	}
	return outstanding, nil
}

// RemainingReturnable computes the unreturned balance for one request.
func (s *Service) RemainingReturnable(ctx context.Context, requestTxID int64) (int, error) {
	request, err := s.repo.FindByID(ctx, requestTxID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("transaction %d not found", requestTxID))
		}
		return 0, err
	}
	if request.TransactionType != enums.TransactionTypeRequest {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidInput, fmt.Sprintf("transaction %d is not a request", requestTxID))
	}

	returned, err := s.matchedReturns(ctx, request)
	if err != nil {
		return 0, err
	}
	remaining := request.QuantityUsed - returned
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// matchedReturns applies the two-tier matching rule: explicit links win; only
// when no explicit return exists does the heuristic scan count unclaimed
// returns with the same item, employee, and fixture.
func (s *Service) matchedReturns(ctx context.Context, request *models.Transaction) (int, error) {
	linked, err := s.repo.SumLinkedReturns(ctx, request.ID)
	if err != nil {
		return 0, err
	}
	if linked > 0 {
		return linked, nil
	}
	return s.repo.SumHeuristicReturns(ctx, request)
}

// List returns ledger entries matching the filters, newest first. Legacy
// return rows get their remarks back-reference surfaced as the link field.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]models.Transaction, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		applyLegacyLink(&rows[i])
	}
	return rows, nil
}

// Get loads a single ledger entry.
func (s *Service) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("transaction %d not found", id))
		}
		return nil, err
	}
	applyLegacyLink(row)
	return row, nil
}

func (s *Service) translate(ctx context.Context, action string, err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncRejected(string(typed.Code()))
		return err
	}
	if db.IsLockTimeout(err) {
		s.metrics.IncRejected(string(pkgerrors.CodeBusy))
		return pkgerrors.Wrap(pkgerrors.CodeBusy, err, action)
	}
	if s.logg != nil {
		s.logg.Error(ctx, action+" failed", err)
	}
	s.metrics.IncRejected(string(pkgerrors.CodeInternal))
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
