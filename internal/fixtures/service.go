package fixtures

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
)

// Service exposes the fixture directory.
type Service struct {
	repo *Repository
}

// NewService wires the fixtures service.
func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fixtures repository required")
	}
	return &Service{repo: repo}, nil
}

// CreateInput captures a new fixture.
type CreateInput struct {
	FixtureName  string
	TestArea     string
	ProjectName  string
	AssetTag     string
	SerialNumber string
}

// Create registers a fixture.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Fixture, error) {
	if input.FixtureName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "fixture name is required")
	}
	fixture := &models.Fixture{
		FixtureName:  input.FixtureName,
		TestArea:     input.TestArea,
		ProjectName:  input.ProjectName,
		AssetTag:     input.AssetTag,
		SerialNumber: input.SerialNumber,
	}
	if err := s.repo.Create(ctx, fixture); err != nil {
		return nil, err
	}
	return fixture, nil
}

// UpdateInput mutates fixture attributes.
type UpdateInput struct {
	FixtureName  *string
	TestArea     *string
	ProjectName  *string
	AssetTag     *string
	SerialNumber *string
}

// Update applies changes to the fixture.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Fixture, error) {
	fixture, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FixtureName != nil {
		fixture.FixtureName = *input.FixtureName
	}
	if input.TestArea != nil {
		fixture.TestArea = *input.TestArea
	}
	if input.ProjectName != nil {
		fixture.ProjectName = *input.ProjectName
	}
	if input.AssetTag != nil {
		fixture.AssetTag = *input.AssetTag
	}
	if input.SerialNumber != nil {
		fixture.SerialNumber = *input.SerialNumber
	}

	if err := s.repo.Save(ctx, fixture); err != nil {
		return nil, err
	}
	return fixture, nil
}

// Delete removes the fixture.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Get loads a single fixture.
func (s *Service) Get(ctx context.Context, id int64) (*models.Fixture, error) {
	fixture, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("fixture %d not found", id))
		}
		return nil, err
	}
	return fixture, nil
}

// List returns all fixtures.
func (s *Service) List(ctx context.Context) ([]models.Fixture, error) {
	return s.repo.List(ctx)
}

// SystemFixture returns the designated fallback fixture: the oldest row in
// the directory. Mutations that omit a fixture id are charged to it.
func (s *Service) SystemFixture(ctx context.Context) (*models.Fixture, error) {
	fixture, err := s.repo.FindFirst(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fixture directory is empty")
		}
		return nil, err
	}
	return fixture, nil
}
