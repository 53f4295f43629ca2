package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/internal/guard"
	"github.com/rdelgado-dev/stockroom-backend/internal/transactions"
	"github.com/rdelgado-dev/stockroom-backend/pkg/config"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/enums"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
	"github.com/rdelgado-dev/stockroom-backend/pkg/metrics"
)

// FixtureDirectory resolves the fixture charged for stock mutations that do
// not name one explicitly.
type FixtureDirectory interface {
	SystemFixture(ctx context.Context) (*models.Fixture, error)
}

// Service owns every mutation of item quantities. All read-modify-write paths
// go through the row guard inside one database transaction.
type Service struct {
	client   *db.Client
	repo     *Repository
	ledger   *transactions.Repository
	fixtures FixtureDirectory
	logg     *logger.Logger
	metrics  *metrics.TransactionMetrics
	cfg      config.InventoryConfig
}

// NewService wires the inventory service.
func NewService(
	client *db.Client,
	repo *Repository,
	ledger *transactions.Repository,
	fixtures FixtureDirectory,
	logg *logger.Logger,
	m *metrics.TransactionMetrics,
	cfg config.InventoryConfig,
) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if fixtures == nil {
		return nil, fmt.Errorf("fixture directory required")
	}
	return &Service{
		client:   client,
		repo:     repo,
		ledger:   ledger,
		fixtures: fixtures,
		logg:     logg,
		metrics:  m,
		cfg:      cfg,
	}, nil
}

// List returns items ordered by name.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]models.InventoryItem, error) {
	return s.repo.List(ctx, filters)
}

// Get loads a single item.
func (s *Service) Get(ctx context.Context, id int64) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d not found", id))
		}
		return nil, err
	}
	return item, nil
}

// CreateItemInput captures a new or replenished stock row.
type CreateItemInput struct {
	ItemName     string
	Description  *string
	PartNumber   *string
	Quantity     int
	MinCount     int
	Unit         *string
	UnitPrice    *decimal.Decimal
	Manufacturer *string
	ItemType     *string
	TestArea     string
	ProjectName  string
	LifeCycle    int
	ImageURL     *string
	EmployeeID   int64
	FixtureID    *int64
}

// CreateItemResult reports the stock row and whether an existing row absorbed
// the quantity.
type CreateItemResult struct {
	Item   *models.InventoryItem `json:"item"`
	Merged bool                  `json:"merged"`
}

// CreateOrAccumulate creates the item, or folds the quantity into the
// existing row with the same name and project. Either path appends a restock
// entry to the ledger.
func (s *Service) CreateOrAccumulate(ctx context.Context, input CreateItemInput) (*CreateItemResult, error) {
	if input.ItemName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "item name is required")
	}
	if input.Quantity < 0 || input.MinCount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "quantities must not be negative")
	}

	fixtureID, err := s.resolveFixture(ctx, input.FixtureID)
	if err != nil {
		return nil, err
	}

	var result CreateItemResult
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		existing, err := s.repo.WithTx(tx).FindByNameAndProject(ctx, input.ItemName, input.ProjectName)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if existing != nil {
			locked, err := guard.LockItem(tx, existing.ID)
			if err != nil {
				return err
			}
			locked.CurrentQuantity += input.Quantity
			if err := s.repo.WithTx(tx).Save(ctx, locked); err != nil {
				return err
			}
			result.Item = locked
			result.Merged = true
		} else {
			item := &models.InventoryItem{
				ItemName:        input.ItemName,
				Description:     input.Description,
				PartNumber:      input.PartNumber,
				CurrentQuantity: input.Quantity,
				MinCount:        input.MinCount,
				Unit:            input.Unit,
				UnitPrice:       input.UnitPrice,
				Manufacturer:    input.Manufacturer,
				ItemType:        input.ItemType,
				TestArea:        input.TestArea,
				ProjectName:     input.ProjectName,
				LifeCycle:       input.LifeCycle,
				ImageURL:        input.ImageURL,
			}
			if err := s.repo.WithTx(tx).Create(ctx, item); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "concurrent item creation")
				}
				return err
			}
			result.Item = item
		}

		if input.Quantity > 0 {
			remarks := "initial stock"
			if result.Merged {
				remarks = "accumulated into existing stock row"
			}
			entry := &models.Transaction{
				ItemID:          &result.Item.ID,
				EmployeeID:      input.EmployeeID,
				FixtureID:       fixtureID,
				QuantityUsed:    input.Quantity,
				TransactionType: enums.TransactionTypeRestock,
				Remarks:         &remarks,
				TestArea:        &result.Item.TestArea,
				ProjectName:     &result.Item.ProjectName,
			}
			if err := s.ledger.WithTx(tx).Create(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.translate(ctx, "creating item", err)
	}

	if input.Quantity > 0 {
		s.metrics.IncRecorded(enums.TransactionTypeRestock.String())
	}
	return &result, nil
}

// UpdateItemInput mutates item metadata. Quantity changes go through
// request/return/restock/transfer only.
type UpdateItemInput struct {
	Description  *string
	PartNumber   *string
	MinCount     *int
	Unit         *string
	UnitPrice    *decimal.Decimal
	Manufacturer *string
	ItemType     *string
	TestArea     *string
	ProjectName  *string
	LifeCycle    *int
	ImageURL     *string
}

// Update applies metadata changes to the item.
func (s *Service) Update(ctx context.Context, id int64, input UpdateItemInput) (*models.InventoryItem, error) {
	if input.MinCount != nil && *input.MinCount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "min count must not be negative")
	}

	var updated *models.InventoryItem
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := guard.LockItem(tx, id)
		if err != nil {
			return err
		}

		if input.Description != nil {
			item.Description = input.Description
		}
		if input.PartNumber != nil {
			item.PartNumber = input.PartNumber
		}
		if input.MinCount != nil {
			item.MinCount = *input.MinCount
		}
		if input.Unit != nil {
			item.Unit = input.Unit
		}
		if input.UnitPrice != nil {
			item.UnitPrice = input.UnitPrice
		}
		if input.Manufacturer != nil {
			item.Manufacturer = input.Manufacturer
		}
		if input.ItemType != nil {
			item.ItemType = input.ItemType
		}
		if input.TestArea != nil {
			item.TestArea = *input.TestArea
		}
		if input.ProjectName != nil {
			item.ProjectName = *input.ProjectName
		}
		if input.LifeCycle != nil {
			item.LifeCycle = *input.LifeCycle
		}
		if input.ImageURL != nil {
			item.ImageURL = input.ImageURL
		}

		if err := s.repo.WithTx(tx).Save(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, s.translate(ctx, "updating item", err)
	}
	return updated, nil
}

// RestockInput adds quantity from external supply.
type RestockInput struct {
	ItemID     int64
	EmployeeID int64
	Quantity   int
	Remarks    *string
	FixtureID  *int64
}

// RestockResult reports the committed restock.
type RestockResult struct {
	NewQuantity int                 `json:"new_quantity"`
	Transaction *models.Transaction `json:"transaction"`
}

// Restock increments the item's stock and appends a restock entry.
func (s *Service) Restock(ctx context.Context, input RestockInput) (*RestockResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "quantity must be a positive integer")
	}

	fixtureID, err := s.resolveFixture(ctx, input.FixtureID)
	if err != nil {
		return nil, err
	}

	var result RestockResult
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := guard.LockItem(tx, input.ItemID)
		if err != nil {
			return err
		}

		item.CurrentQuantity += input.Quantity
		if err := s.repo.WithTx(tx).Save(ctx, item); err != nil {
			return err
		}

		entry := &models.Transaction{
			ItemID:          &item.ID,
			EmployeeID:      input.EmployeeID,
			FixtureID:       fixtureID,
			QuantityUsed:    input.Quantity,
			TransactionType: enums.TransactionTypeRestock,
			Remarks:         input.Remarks,
			TestArea:        &item.TestArea,
			ProjectName:     &item.ProjectName,
		}
		if err := s.ledger.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}

		result.NewQuantity = item.CurrentQuantity
		result.Transaction = entry
		return nil
	})
	if err != nil {
		return nil, s.translate(ctx, "restocking item", err)
	}

	s.metrics.IncRecorded(enums.TransactionTypeRestock.String())
	return &result, nil
}

// resolveFixture returns the explicit fixture id, or falls back to the
// designated system fixture. An empty fixture directory is a client error:
// stock mutations are always charged to a fixture.
func (s *Service) resolveFixture(ctx context.Context, explicit *int64) (int64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	fixture, err := s.fixtures.SystemFixture(ctx)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return 0, pkgerrors.New(pkgerrors.CodeInvalidInput, "no fixtures available")
		}
		return 0, err
	}
	return fixture.ID, nil
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
