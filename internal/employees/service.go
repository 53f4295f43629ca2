package employees

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
)

// Service exposes read access to the employee directory.
type Service struct {
	repo *Repository
}

// NewService wires the employees service.
func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("employees repository required")
	}
	return &Service{repo: repo}, nil
}

// Get loads a single employee.
func (s *Service) Get(ctx context.Context, id int64) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("employee %d not found", id))
		}
		return nil, err
	}
	return employee, nil
}

// List returns all employees.
func (s *Service) List(ctx context.Context) ([]models.Employee, error) {
	return s.repo.List(ctx)
}
