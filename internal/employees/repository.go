package employees

import (
	"context"

	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
)

// Repository reads the employee directory. The core never mutates it.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a single employee.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).First(&employee, "employee_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByUsername loads an employee by login name.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).First(&employee, "employee_username = ?", username).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// List returns all employees ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Employee, error) {
	var rows []models.Employee
	err := r.db.WithContext(ctx).Order("employee_name ASC").Order("employee_id ASC").Find(&rows).Error
	return rows, err
}
