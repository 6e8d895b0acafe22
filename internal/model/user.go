package model

import "time"

// Role tags every account as either side of a counseling relationship.
type Role string

const (
	RoleClient    Role = "client"
	RoleCounselor Role = "counselor"
)

// Column limits of the users table, in characters.
const (
	MaxNameLength  = 100
	MaxEmailLength = 255
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleCounselor
}

// User represents an account record as stored in the `users` table.
//
// Fields:
//
//	ID        – primary key identifier of the user.
//	Name      – display name.
//	Role      – client or counselor.
//	Email     – unique email address (stored lower-cased).
//	AuthCode  – unique access code used as the login credential.
//	CreatedAt – timestamp of creation.
//	UpdatedAt – timestamp of last update.
type User struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Email     string    `json:"email"`
	AuthCode  string    `json:"authCode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
