// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an account's permission level in the system.
// Roles form an ordered hierarchy: reader < author < editor < admin.
type Role string

const (
	RoleReader Role = "reader"
	RoleAuthor Role = "author"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// roleRank maps each role to its position in the hierarchy. Unknown roles
// rank below reader so a corrupt value never grants access.
var roleRank = map[Role]int{
	RoleReader: 1,
	RoleAuthor: 2,
	RoleEditor: 3,
	RoleAdmin:  4,
}

// Rank returns the role's position in the ordered hierarchy.
// Unknown roles return 0.
func (r Role) Rank() int {
	return roleRank[r]
}

// AtLeast reports whether the role ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank()
}

// Valid reports whether the role is one of the defined values.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// Account represents a platform user with authentication and 2FA fields.
// 2FA enrollment is required for admin accounts only.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	Suspended    bool      `json:"suspended"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the account has the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Needs2FASetup returns true if an admin account has not completed 2FA
// enrollment. Non-admin accounts never need 2FA.
func (a *Account) Needs2FASetup() bool {
	return a.Role == RoleAdmin && !a.TOTPEnabled
}
