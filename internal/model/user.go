package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the authorization role of a user account. Roles form an ordered
// hierarchy: ANONYMOUS < AUTHENTICATED < MANAGER < ADMIN. The ordering is
// informational only; every permission is granted through an explicit
// allow-list, never inherited.
type Role string

const (
	// RoleAnonymous is a registered but not yet email-verified account.
	RoleAnonymous Role = "ANONYMOUS"
	// RoleAuthenticated is a verified end-user account.
	RoleAuthenticated Role = "AUTHENTICATED"
	// RoleManager can list, search, and edit non-role fields of any account.
	RoleManager Role = "MANAGER"
	// RoleAdmin is unrestricted.
	RoleAdmin Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleAnonymous:     0,
	RoleAuthenticated: 1,
	RoleManager:       2,
	RoleAdmin:         3,
}

// ParseRole converts a string into a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role ranks at or above other.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

// User represents the core user account record.
type User struct {
	ID                  string    `json:"id"`
	Nickname            string    `json:"nickname"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"` // never expose password hash
	Role                Role      `json:"role"`
	EmailVerified       bool      `json:"email_verified"`
	Locked              bool      `json:"is_locked"`
	FailedLoginAttempts int       `json:"-"`
	Bio                 *string   `json:"bio,omitempty"`
	GithubProfileURL    *string   `json:"github_profile_url,omitempty"`
	LinkedInProfileURL  *string   `json:"linkedin_profile_url,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
