package controllers

import (
	"context"
	"net/http"

	"github.com/rdelgado-dev/stockroom-backend/api/responses"
	"github.com/rdelgado-dev/stockroom-backend/api/validators"
	"github.com/rdelgado-dev/stockroom-backend/internal/fixtures"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
)

type fixturesService interface {
	Create(ctx context.Context, input fixtures.CreateInput) (*models.Fixture, error)
	Update(ctx context.Context, id int64, input fixtures.UpdateInput) (*models.Fixture, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Fixture, error)
	List(ctx context.Context) ([]models.Fixture, error)
}

// FixtureList returns the fixture directory.
func FixtureList(svc fixturesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"fixtures": rows, "count": len(rows)})
	}
}

// FixtureDetail returns a single fixture.
func FixtureDetail(svc fixturesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "fixtureID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fixture, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fixture)
	}
}

type createFixtureRequest struct {
	FixtureName  string `json:"fixture_name" validate:"required"`
	TestArea     string `json:"test_area"`
	ProjectName  string `json:"project_name"`
	AssetTag     string `json:"asset_tag"`
	SerialNumber string `json:"serial_number"`
}

// FixtureCreate registers a fixture.
func FixtureCreate(svc fixturesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createFixtureRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fixture, err := svc.Create(r.Context(), fixtures.CreateInput{
			FixtureName:  payload.FixtureName,
			TestArea:     payload.TestArea,
			ProjectName:  payload.ProjectName,
			AssetTag:     payload.AssetTag,
			SerialNumber: payload.SerialNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fixture)
	}
}

type updateFixtureRequest struct {
	FixtureName  *string `json:"fixture_name,omitempty"`
	TestArea     *string `json:"test_area,omitempty"`
	ProjectName  *string `json:"project_name,omitempty"`
	AssetTag     *string `json:"asset_tag,omitempty"`
	SerialNumber *string `json:"serial_number,omitempty"`
}

// FixtureUpdate changes fixture attributes.
func FixtureUpdate(svc fixturesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "fixtureID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateFixtureRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fixture, err := svc.Update(r.Context(), id, fixtures.UpdateInput{
			FixtureName:  payload.FixtureName,
			TestArea:     payload.TestArea,
			ProjectName:  payload.ProjectName,
			AssetTag:     payload.AssetTag,
			SerialNumber: payload.SerialNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fixture)
	}
}

// FixtureDelete removes a fixture from the directory.
func FixtureDelete(svc fixturesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "fixtureID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
