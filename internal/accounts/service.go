// Package accounts implements user registration, authentication and
// role-profile management.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eventup/accounts/internal/domain"
	"github.com/eventup/accounts/internal/pkg/validate"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// PasswordHasher is the one-way credential hashing collaborator.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenClaims is the claim set embedded in every issued token.
type TokenClaims struct {
	Subject  string
	Role     domain.Role
	IsActive bool
}

// TokenIssuer signs a claim set into an opaque token string.
type TokenIssuer interface {
	Issue(ctx context.Context, claims TokenClaims) (string, error)
}

// Service implements account business logic.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewService creates a new account service.
func NewService(repo Repository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// RegisterInput holds data for creating a user with its initial profiles.
type RegisterInput struct {
	Name     string
	Email    string
	CPF      string
	Phone    string
	Password string
	Roles    []domain.Role
}

// Register creates a user and one profile per requested role in a single
// atomic store operation. It returns the created user without issuing a token.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if len(input.Roles) == 0 {
		return nil, ErrNoRoles
	}
	seen := make(map[domain.Role]bool, len(input.Roles))
	for _, role := range input.Roles {
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
		}
		if seen[role] {
			return nil, fmt.Errorf("%w: %s", ErrProfileExists, role)
		}
		seen[role] = true
	}

	cpf, err := validate.CPF(input.CPF)
	if err != nil {
		return nil, fmt.Errorf("validate cpf: %w", err)
	}

	phone := ""
	if input.Phone != "" {
		phone, err = validate.Phone(input.Phone)
		if err != nil {
			return nil, fmt.Errorf("validate phone: %w", err)
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         normalizeName(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		CPF:          cpf,
		PasswordHash: hash,
		Phone:        phone,
	}
	for _, role := range input.Roles {
		user.Profiles = append(user.Profiles, domain.Profile{
			ID:     uuid.NewString(),
			UserID: user.ID,
			Role:   role,
		})
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	registrationsTotal.Inc()
	return user, nil
}

// Authenticate verifies the credential and issues a token backed by the
// selected profile. A missing user and a wrong password produce the same
// ErrUserNotFound so the response does not reveal whether the email exists.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			loginAttempts.WithLabelValues("failure").Inc()
			return "", ErrUserNotFound
		}
		return "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		loginAttempts.WithLabelValues("failure").Inc()
		return "", ErrUserNotFound
	}

	token, err := s.issueFor(ctx, user.ID, user.Profiles)
	if err != nil {
		return "", err
	}

	loginAttempts.WithLabelValues("success").Inc()
	return token, nil
}

// ProfileView is the account detail returned to an authenticated user,
// partitioned by the role the caller is currently acting under.
type ProfileView struct {
	Name    string
	Email   string
	Phone   string
	Current *domain.Profile
	Others  []domain.Profile
}

// GetProfileView returns the user's details with profiles split into the one
// matching actingRole and all remaining ones.
func (s *Service) GetProfileView(ctx context.Context, userID string, actingRole domain.Role) (*ProfileView, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		Name:   user.Name,
		Email:  user.Email,
		Phone:  user.Phone,
		Others: make([]domain.Profile, 0, len(user.Profiles)),
	}
	for i := range user.Profiles {
		if user.Profiles[i].Role == actingRole && view.Current == nil {
			view.Current = &user.Profiles[i]
			continue
		}
		view.Others = append(view.Others, user.Profiles[i])
	}
	return view, nil
}

// UpdateInput holds a partial user update. Nil fields stay unchanged.
type UpdateInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
}

// UpdateUser applies only the supplied fields. A supplied password is hashed
// before it is persisted.
func (s *Service) UpdateUser(ctx context.Context, userID string, input UpdateInput) error {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return err
	}

	var update UserUpdate
	if input.Name != nil {
		name := normalizeName(*input.Name)
		update.Name = &name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		update.Email = &email
	}
	if input.Phone != nil {
		phone, err := validate.Phone(*input.Phone)
		if err != nil {
			return fmt.Errorf("validate phone: %w", err)
		}
		update.Phone = &phone
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		update.PasswordHash = &hash
	}

	if update.IsEmpty() {
		return nil
	}
	return s.repo.UpdateUser(ctx, userID, update)
}

// SwitchResult is the outcome of switching the acting profile.
type SwitchResult struct {
	Message     string
	AccessToken string
}

// SwitchActiveProfile re-issues a token scoped to another role the user
// already holds. It does not change the profile's active flag; the new token
// carries the flag as it currently stands.
func (s *Service) SwitchActiveProfile(ctx context.Context, userID string, target domain.Role) (*SwitchResult, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, ok := findProfile(user.Profiles, target)
	if !ok {
		return nil, ErrProfileNotFound
	}

	token, err := s.issue(ctx, TokenClaims{
		Subject:  user.ID,
		Role:     profile.Role,
		IsActive: profile.IsActive,
	})
	if err != nil {
		return nil, err
	}

	return &SwitchResult{
		Message:     fmt.Sprintf("profile switched to %s", profile.Role),
		AccessToken: token,
	}, nil
}

// AddProfile grants the user a role it does not hold yet. The active flag of
// the new profile is left to the store default.
func (s *Service) AddProfile(ctx context.Context, userID string, role domain.Role) (*domain.Profile, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, ok := findProfile(user.Profiles, role); ok {
		return nil, ErrProfileExists
	}

	profile := &domain.Profile{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Role:   role,
	}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ToggleProfileStatus flips the active flag of the (user, role) profile.
func (s *Service) ToggleProfileStatus(ctx context.Context, userID string, role domain.Role) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	profile, ok := findProfile(user.Profiles, role)
	if !ok {
		return ErrProfileNotFound
	}

	return s.repo.SetProfileActive(ctx, userID, role, !profile.IsActive)
}

// issueFor runs the profile selector and issues a token for the pick.
func (s *Service) issueFor(ctx context.Context, userID string, profiles []domain.Profile) (string, error) {
	selected, err := SelectProfile(profiles)
	if err != nil {
		return "", err
	}
	return s.issue(ctx, TokenClaims{
		Subject:  userID,
		Role:     selected.Role,
		IsActive: selected.IsActive,
	})
}

func (s *Service) issue(ctx context.Context, claims TokenClaims) (string, error) {
	token, err := s.tokens.Issue(ctx, claims)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	tokensIssued.WithLabelValues(string(claims.Role)).Inc()
	return token, nil
}

func findProfile(profiles []domain.Profile, role domain.Role) (domain.Profile, bool) {
	for _, p := range profiles {
		if p.Role == role {
			return p, true
		}
	}
	return domain.Profile{}, false
}

// normalizeName trims and NFC-normalizes a user-supplied name so that
// accented characters compare consistently.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
