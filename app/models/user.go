package models

import "time"

// Role is the closed set of access tiers.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// User is one entry in the users resource file. The username is the map key,
// so it does not appear in the record itself.
type User struct {
	PasswordHash string    `json:"password_hash"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserMap is the on-disk shape of the users resource: username → record.
type UserMap map[string]User
