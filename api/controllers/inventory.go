package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rdelgado-dev/stockroom-backend/api/middleware"
	"github.com/rdelgado-dev/stockroom-backend/api/responses"
	"github.com/rdelgado-dev/stockroom-backend/api/validators"
	"github.com/rdelgado-dev/stockroom-backend/internal/inventory"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
)

type inventoryService interface {
	List(ctx context.Context, filters inventory.ListFilters) ([]models.InventoryItem, error)
	Get(ctx context.Context, id int64) (*models.InventoryItem, error)
	CreateOrAccumulate(ctx context.Context, input inventory.CreateItemInput) (*inventory.CreateItemResult, error)
	Update(ctx context.Context, id int64, input inventory.UpdateItemInput) (*models.InventoryItem, error)
	Request(ctx context.Context, input inventory.RequestInput) (*inventory.RequestResult, error)
	Restock(ctx context.Context, input inventory.RestockInput) (*inventory.RestockResult, error)
	Transfer(ctx context.Context, input inventory.TransferInput) (*inventory.TransferResult, error)
}

// InventoryList returns items ordered by name, optionally scoped to a project
// and test area.
func InventoryList(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := inventory.ListFilters{
			Project:  optionalQuery(r, "project"),
			TestArea: optionalQuery(r, "test_area"),
		}

		items, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items, "count": len(items)})
	}
}

// InventoryDetail returns a single item.
func InventoryDetail(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type createItemRequest struct {
	ItemName     string           `json:"item_name" validate:"required"`
	Description  *string          `json:"item_description,omitempty"`
	PartNumber   *string          `json:"item_part_number,omitempty"`
	Quantity     int              `json:"quantity" validate:"min=0"`
	MinCount     int              `json:"min_count" validate:"min=0"`
	Unit         *string          `json:"unit,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	Manufacturer *string          `json:"manufacturer,omitempty"`
	ItemType     *string          `json:"item_type,omitempty"`
	TestArea     string           `json:"test_area" validate:"required"`
	ProjectName  string           `json:"project_name" validate:"required"`
	LifeCycle    int              `json:"life_cycle" validate:"min=0"`
	ImageURL     *string          `json:"image_url,omitempty"`
	FixtureID    *int64           `json:"fixture_id,omitempty" validate:"omitempty,min=1"`
}

// InventoryCreate creates the item, or folds the quantity into the existing
// row with the same name and project.
func InventoryCreate(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID := middleware.EmployeeIDFromContext(r.Context())
		if employeeID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee context missing"))
			return
		}

		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateOrAccumulate(r.Context(), inventory.CreateItemInput{
			ItemName:     payload.ItemName,
			Description:  payload.Description,
			PartNumber:   payload.PartNumber,
			Quantity:     payload.Quantity,
			MinCount:     payload.MinCount,
			Unit:         payload.Unit,
			UnitPrice:    payload.UnitPrice,
			Manufacturer: payload.Manufacturer,
			ItemType:     payload.ItemType,
			TestArea:     payload.TestArea,
			ProjectName:  payload.ProjectName,
			LifeCycle:    payload.LifeCycle,
			ImageURL:     payload.ImageURL,
			EmployeeID:   employeeID,
			FixtureID:    payload.FixtureID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Merged {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

type updateItemRequest struct {
	Description  *string          `json:"item_description,omitempty"`
	PartNumber   *string          `json:"item_part_number,omitempty"`
	MinCount     *int             `json:"min_count,omitempty" validate:"omitempty,min=0"`
	Unit         *string          `json:"unit,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	Manufacturer *string          `json:"manufacturer,omitempty"`
	ItemType     *string          `json:"item_type,omitempty"`
	TestArea     *string          `json:"test_area,omitempty"`
	ProjectName  *string          `json:"project_name,omitempty"`
	LifeCycle    *int             `json:"life_cycle,omitempty" validate:"omitempty,min=0"`
	ImageURL     *string          `json:"image_url,omitempty"`
}

// InventoryUpdate changes item metadata. Quantities only move through
// request/restock/transfer/return.
func InventoryUpdate(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), id, inventory.UpdateItemInput{
			Description:  payload.Description,
			PartNumber:   payload.PartNumber,
			MinCount:     payload.MinCount,
			Unit:         payload.Unit,
			UnitPrice:    payload.UnitPrice,
			Manufacturer: payload.Manufacturer,
			ItemType:     payload.ItemType,
			TestArea:     payload.TestArea,
			ProjectName:  payload.ProjectName,
			LifeCycle:    payload.LifeCycle,
			ImageURL:     payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type requestStockRequest struct {
	ItemID    int64 `json:"item_id" validate:"required,min=1"`
	FixtureID int64 `json:"fixture_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// InventoryRequest withdraws stock, pulling from same-named items in other
// projects when local stock is short.
func InventoryRequest(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID := middleware.EmployeeIDFromContext(r.Context())
		if employeeID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee context missing"))
			return
		}

		var payload requestStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Request(r.Context(), inventory.RequestInput{
			ItemID:     payload.ItemID,
			EmployeeID: employeeID,
			FixtureID:  payload.FixtureID,
			Quantity:   payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type restockRequest struct {
	ItemID    int64   `json:"item_id" validate:"required,min=1"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Remarks   *string `json:"remarks,omitempty"`
	FixtureID *int64  `json:"fixture_id,omitempty" validate:"omitempty,min=1"`
}

// InventoryRestock adds quantity from external supply. When fixture_id is
// omitted the system fixture takes the charge.
func InventoryRestock(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID := middleware.EmployeeIDFromContext(r.Context())
		if employeeID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee context missing"))
			return
		}

		var payload restockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Restock(r.Context(), inventory.RestockInput{
			ItemID:     payload.ItemID,
			EmployeeID: employeeID,
			Quantity:   payload.Quantity,
			Remarks:    payload.Remarks,
			FixtureID:  payload.FixtureID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type transferRequest struct {
	SourceItemID int64   `json:"source_item_id" validate:"required,min=1"`
	DestItemID   int64   `json:"dest_item_id" validate:"required,min=1"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	FixtureID    int64   `json:"fixture_id" validate:"required,min=1"`
	Remarks      *string `json:"remarks,omitempty"`
}

// InventoryTransfer moves stock between two same-named items.
func InventoryTransfer(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID := middleware.EmployeeIDFromContext(r.Context())
		if employeeID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee context missing"))
			return
		}

		var payload transferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Transfer(r.Context(), inventory.TransferInput{
			SourceItemID: payload.SourceItemID,
			DestItemID:   payload.DestItemID,
			Quantity:     payload.Quantity,
			EmployeeID:   employeeID,
			FixtureID:    payload.FixtureID,
			Remarks:      payload.Remarks,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
