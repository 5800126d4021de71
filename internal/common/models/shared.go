package common_models

import "time"

// Role ladder. Ordering matters: higher values see unmasked client
// addresses and may manage scheduled emails.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleAnalyst    Role = "analyst"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var roleRank = map[Role]int{
	RoleViewer:     0,
	RoleAnalyst:    1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// AtLeast reports whether r is at or above the given role.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Principal identifies the acting user for permission and visibility
// checks. Passed explicitly; no ambient auth state.
type Principal struct {
	UserID string
	Role   Role
}

// Log is the record shape written by the async DB log writer.
type Log struct {
	Message      string    `bson:"message"`
	Caller       string    `bson:"caller,omitempty"`
	IpAddress    string    `bson:"ip_address,omitempty"`
	UserID       string    `bson:"user_id,omitempty"`
	LogLevelId   int       `bson:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc"`
}
