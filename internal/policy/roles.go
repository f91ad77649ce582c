package policy

import (
	"fmt"
	"strings"
)

// Role is one of a small fixed set of operator roles with a total order.
type Role string

const (
	RoleFounder   Role = "FOUNDER"
	RoleLegal     Role = "LEGAL"
	RoleFinance   Role = "FINANCE"
	RoleHR        Role = "HR"
	RoleWarehouse Role = "WAREHOUSE"
	RoleStaff     Role = "STAFF"
)

// Roles lists all roles from most to least privileged.
var Roles = []Role{
	RoleFounder,
	RoleLegal,
	RoleFinance,
	RoleHR,
	RoleWarehouse,
	RoleStaff,
}

var roleLevels = map[Role]int{
	RoleFounder:   100,
	RoleLegal:     90,
	RoleFinance:   80,
	RoleHR:        70,
	RoleWarehouse: 60,
	RoleStaff:     10,
}

// AtLeast reports whether r ranks at or above required.
func (r Role) AtLeast(required Role) bool {
	return roleLevels[r] >= roleLevels[required]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// ParseRole normalizes and validates a claimed role string.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}
