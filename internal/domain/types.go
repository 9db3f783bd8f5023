package domain

import "strings"

// Role is the account role carried in the access token.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleOperator Role = "Operator"
	RoleCommuter Role = "Commuter"
)

// ParseRole accepts any casing of a known role.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "operator":
		return RoleOperator, true
	case "commuter":
		return RoleCommuter, true
	}
	return "", false
}

// Actor carries authenticated user info for service calls.
type Actor struct {
	UserID int64 `json:"userId"`
	Role   Role  `json:"role"`
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
