package transactions

import (
	"context"

	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/enums"
	"github.com/rdelgado-dev/stockroom-backend/pkg/pagination"
)

// Repository persists ledger entries. Rows are append-only; there are no
// update or delete paths.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create appends a ledger entry.
func (r *Repository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByID loads a single ledger entry.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Transaction, error) {
	var row models.Transaction
	if err := r.db.WithContext(ctx).First(&row, "transaction_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListFilters narrows the transaction listing.
type ListFilters struct {
	Type       *enums.TransactionType
	ItemID     *int64
	EmployeeID *int64
	Limit      int
	Cursor     *pagination.Cursor
}

// List returns ledger entries newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{})
	if filters.Type != nil {
		q = q.Where("transaction_type = ?", *filters.Type)
	}
	if filters.ItemID != nil {
		q = q.Where("item_id = ?", *filters.ItemID)
	}
	if filters.EmployeeID != nil {
		q = q.Where("employee_id = ?", *filters.EmployeeID)
	}
	if filters.Cursor != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND transaction_id < ?)",
			filters.Cursor.CreatedAt, filters.Cursor.CreatedAt, filters.Cursor.ID)
	}
	if filters.Limit > 0 {
		q = q.Limit(filters.Limit)
	}

	var rows []models.Transaction
	err := q.Order("created_at DESC").Order("transaction_id DESC").Find(&rows).Error
	return rows, err
}

// ListRequestsByEmployee returns the employee's request entries oldest first,
// the order outstanding balances are presented in.
func (r *Repository) ListRequestsByEmployee(ctx context.Context, employeeID int64) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND transaction_type = ?", employeeID, enums.TransactionTypeRequest).
		Order("created_at ASC").
		Order("transaction_id ASC").
		Find(&rows).
		Error
	return rows, err
}

// SumLinkedReturns totals return quantities explicitly tied to the request,
// either through the linked_request_transaction_id column or the legacy
// remarks back-reference.
func (r *Repository) SumLinkedReturns(ctx context.Context, requestTxID int64) (int, error) {
	exact := formatRequestRef(requestTxID, "")
	var total int
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COALESCE(SUM(quantity_used), 0)").
		Where("transaction_type = ?", enums.TransactionTypeReturn).
		Where("linked_request_transaction_id = ? OR remarks = ? OR remarks LIKE ?",
			requestTxID, exact, exact+"|%").
		Scan(&total).
		Error
	return total, err
}

// SumHeuristicReturns totals unclaimed returns that plausibly settle the
// request: same item, employee, and fixture, created at or after the request,
// and not referencing any request explicitly.
func (r *Repository) SumHeuristicReturns(ctx context.Context, request *models.Transaction) (int, error) {
	if request.ItemID == nil {
		return 0, nil
	}
	var total int
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COALESCE(SUM(quantity_used), 0)").
		Where("transaction_type = ?", enums.TransactionTypeReturn).
		Where("item_id = ? AND employee_id = ? AND fixture_id = ?",
			*request.ItemID, request.EmployeeID, request.FixtureID).
		Where("created_at >= ?", request.CreatedAt).
		Where("linked_request_transaction_id IS NULL").
		Where("remarks IS NULL OR remarks NOT LIKE ?", requestRefPrefix+"%").
		Scan(&total).
		Error
	return total, err
}
