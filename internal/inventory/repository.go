package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
)

// Repository persists inventory items.
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

// Create inserts a new item row.
func (r *Repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Save writes the full item row back.
func (r *Repository) Save(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// FindByID loads the item without locking.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "item_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByNameAndProject loads the stock row for one item name within one
// project. Item names are partitioned per project; the pair is the merge key
// for create-or-accumulate.
func (r *Repository) FindByNameAndProject(ctx context.Context, name, project string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		First(&item, "item_name = ? AND project_name = ?", name, project).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListFilters narrows the item listing.
type ListFilters struct {
	Project  *string
	TestArea *string
}

// List returns items ordered by name.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.InventoryItem, error) {
	q := r.db.WithContext(ctx).Model(&models.InventoryItem{})
	if filters.Project != nil {
		q = q.Where("project_name = ?", *filters.Project)
	}
	if filters.TestArea != nil {
		q = q.Where("test_area = ?", *filters.TestArea)
	}

	var rows []models.InventoryItem
	err := q.Order("item_name ASC").Order("item_id ASC").Find(&rows).Error
	return rows, err
}

// ListDonorCandidates returns other items with the same name that hold stock,
// largest first. The read is unlocked; callers re-check quantities after
// locking the rows.
func (r *Repository) ListDonorCandidates(ctx context.Context, itemName string, excludeID int64, limit int) ([]models.InventoryItem, error) {
	q := r.db.WithContext(ctx).
		Where("item_name = ? AND item_id <> ? AND item_current_quantity > 0", itemName, excludeID).
		Order("item_current_quantity DESC").
		Order("item_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.InventoryItem
	err := q.Find(&rows).Error
	return rows, err
}

// ListLowStock returns items below their minimum count, optionally filtered
// by project and test area.
func (r *Repository) ListLowStock(ctx context.Context, filters ListFilters) ([]models.InventoryItem, error) {
	q := r.db.WithContext(ctx).
		Where("item_current_quantity < item_min_count")
	if filters.Project != nil {
		q = q.Where("project_name = ?", *filters.Project)
	}
	if filters.TestArea != nil {
		q = q.Where("test_area = ?", *filters.TestArea)
	}

	var rows []models.InventoryItem
	err := q.Order("item_name ASC").Find(&rows).Error
	return rows, err
}
