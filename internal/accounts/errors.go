package accounts

import "errors"

// Service errors. Authentication failures deliberately return ErrUserNotFound
// so the API does not reveal whether an email is registered.
var (
	ErrUserNotFound    = errors.New("user and/or password incorrect")
	ErrProfileNotFound = errors.New("profile not found for user")
	ErrEmailTaken      = errors.New("email already registered")
	ErrCPFTaken        = errors.New("cpf already registered")
	ErrProfileExists   = errors.New("profile already added to user")
	ErrNoProfiles      = errors.New("user has no profiles")
	ErrNoRoles         = errors.New("at least one role is required")
	ErrInvalidRole     = errors.New("invalid role")
)
