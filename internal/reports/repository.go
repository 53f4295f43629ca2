package reports

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/enums"
)

// Repository persists report rows and runs the aggregation queries behind
// them.
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

// Create inserts a report row.
func (r *Repository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// ListByWeekStart returns report rows for the given week start date.
func (r *Repository) ListByWeekStart(ctx context.Context, weekStart time.Time) ([]models.Report, error) {
	var rows []models.Report
	err := r.db.WithContext(ctx).
		Where("week_start_date = ?", weekStart).
		Order("item_name ASC").
		Find(&rows).
		Error
	return rows, err
}

// DeleteByWeekStart drops a previously generated report for the week so a
// re-run replaces it instead of duplicating rows.
func (r *Repository) DeleteByWeekStart(ctx context.Context, weekStart time.Time) error {
	return r.db.WithContext(ctx).
		Where("week_start_date = ?", weekStart).
		Delete(&models.Report{}).
		Error
}

// UsageRow is the per-item request usage within a window.
type UsageRow struct {
	ItemID       int64
	QuantityUsed int
}

// SumRequestUsage aggregates request quantities per item since the given
// time.
func (r *Repository) SumRequestUsage(ctx context.Context, since time.Time) ([]UsageRow, error) {
	var rows []UsageRow
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("item_id, SUM(quantity_used) AS quantity_used").
		Where("transaction_type = ?", enums.TransactionTypeRequest).
		Where("item_id IS NOT NULL").
		Where("created_at >= ?", since).
		Group("item_id").
		Order("item_id ASC").
		Scan(&rows).
		Error
	return rows, err
}
