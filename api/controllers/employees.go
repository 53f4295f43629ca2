package controllers

import (
	"context"
	"net/http"

	"github.com/rdelgado-dev/stockroom-backend/api/responses"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
)

type employeesService interface {
	Get(ctx context.Context, id int64) (*models.Employee, error)
	List(ctx context.Context) ([]models.Employee, error)
}

// EmployeeList returns the employee directory. Account management belongs to
// the auth collaborator.
func EmployeeList(svc employeesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"employees": rows, "count": len(rows)})
	}
}

// EmployeeDetail returns a single employee.
func EmployeeDetail(svc employeesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}
