package domain

import "time"

// Role is a profile type a user can hold. Wire values match the stored enum.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleOrganizer   Role = "ORGANIZADOR"
	RoleParticipant Role = "PARTICIPANTE"
)

// IsValid reports whether the role is one of the known profile types.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleParticipant:
		return true
	}
	return false
}

// User is an account identity. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Name         string
	Email        string
	CPF          string
	PasswordHash string
	Phone        string
	CreatedAt    time.Time
	Profiles     []Profile
}

// Profile is a role grant scoped to one user. A user holds at most one
// profile per role. IsActive marks the profile as eligible to back a token.
type Profile struct {
	ID       string
	UserID   string
	Role     Role
	IsActive bool
}
