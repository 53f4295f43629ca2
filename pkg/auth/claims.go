package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/rdelgado-dev/stockroom-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	EmployeeID  int64
	BadgeNumber string
	Role        enums.EmployeeRole
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	EmployeeID  int64              `json:"employee_id"`
	BadgeNumber string             `json:"badge_number,omitempty"`
	Role        enums.EmployeeRole `json:"role"`
	jwt.RegisteredClaims
}
