package domain

import "time"

type UserRole string

const (
	RoleUser      UserRole = "USER"
	RoleModerator UserRole = "MODERATOR"
	RoleAdmin     UserRole = "ADMIN"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID         int64     `json:"id"`
	IdentityID string    `json:"identityId"`
	Email      string    `json:"email" validate:"required,email"`
	Name       string    `json:"name"`
	Role       UserRole  `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Identity is what the external auth provider vouches for.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   int64
	Role UserRole
}
