package accounts

import (
	"context"

	"github.com/eventup/accounts/internal/domain"
)

// Repository defines the credential store contract.
//
// Implementations translate uniqueness violations into ErrEmailTaken,
// ErrCPFTaken or ErrProfileExists and missing rows into ErrUserNotFound, so
// raw storage errors never reach the service layer.
type Repository interface {
	// CreateUser persists the user and all of its profiles atomically:
	// either every row commits or none do.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByEmail loads a user with its profiles.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetUserByID loads a user with its profiles.
	GetUserByID(ctx context.Context, id string) (*domain.User, error)

	// UpdateUser applies only the fields set in update.
	UpdateUser(ctx context.Context, id string, update UserUpdate) error

	// CreateProfile adds a role grant. IsActive is left to the store default.
	CreateProfile(ctx context.Context, profile *domain.Profile) error

	// SetProfileActive sets the active flag of the (user, role) profile.
	SetProfileActive(ctx context.Context, userID string, role domain.Role, active bool) error
}

// UserUpdate holds a partial user update. Nil fields are left untouched.
// PasswordHash must already be hashed by the caller.
type UserUpdate struct {
	Name         *string
	Email        *string
	Phone        *string
	PasswordHash *string
}

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil && u.PasswordHash == nil
}
