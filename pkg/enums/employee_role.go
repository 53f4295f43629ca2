package enums

import "fmt"

// EmployeeRole is the access level carried in the identity token.
type EmployeeRole string

const (
	EmployeeRoleAdmin    EmployeeRole = "admin"
	EmployeeRoleOperator EmployeeRole = "operator"
)

var validEmployeeRoles = []EmployeeRole{
	EmployeeRoleAdmin,
	EmployeeRoleOperator,
}

// String returns the raw enum value.
func (r EmployeeRole) String() string {
	return string(r)
}

// IsValid reports whether the value matches the canonical role enum.
func (r EmployeeRole) IsValid() bool {
	for _, candidate := range validEmployeeRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseEmployeeRole converts the raw string to EmployeeRole.
func ParseEmployeeRole(value string) (EmployeeRole, error) {
	for _, candidate := range validEmployeeRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid employee role %q", value)
}
