package middleware

import (
	"net/http"
	"strings"

	"github.com/rdelgado-dev/stockroom-backend/api/responses"
	pkgauth "github.com/rdelgado-dev/stockroom-backend/pkg/auth"
	"github.com/rdelgado-dev/stockroom-backend/pkg/config"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// employee identity. Token issuance lives with the auth collaborator; this
// side only verifies.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.EmployeeID <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing employee id"))
				return
			}

			ctx := WithEmployeeID(r.Context(), claims.EmployeeID)
			ctx = WithRole(ctx, claims.Role.String())

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"employee_id": claims.EmployeeID,
					"actor_role":  claims.Role.String(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
