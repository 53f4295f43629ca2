package fixtures

import (
	"context"

	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
)

// Repository persists fixtures.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a fixture row.
func (r *Repository) Create(ctx context.Context, fixture *models.Fixture) error {
	return r.db.WithContext(ctx).Create(fixture).Error
}

// Save writes the full fixture row back.
func (r *Repository) Save(ctx context.Context, fixture *models.Fixture) error {
	return r.db.WithContext(ctx).Save(fixture).Error
}

// Delete removes a fixture by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("fixture_id = ?", id).Delete(&models.Fixture{}).Error
}

// FindByID loads a single fixture.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Fixture, error) {
	var fixture models.Fixture
	if err := r.db.WithContext(ctx).First(&fixture, "fixture_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fixture, nil
}

// FindFirst returns the fixture with the lowest id.
func (r *Repository) FindFirst(ctx context.Context) (*models.Fixture, error) {
	var fixture models.Fixture
	if err := r.db.WithContext(ctx).Order("fixture_id ASC").First(&fixture).Error; err != nil {
		return nil, err
	}
	return &fixture, nil
}

// List returns fixtures ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Fixture, error) {
	var rows []models.Fixture
	err := r.db.WithContext(ctx).Order("fixture_name ASC").Order("fixture_id ASC").Find(&rows).Error
	return rows, err
}
