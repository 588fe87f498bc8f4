package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/eventup/accounts/internal/domain"
	"github.com/eventup/accounts/internal/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Valid CPFs for test fixtures (check digits verified).
const (
	testCPF       = "529.982.247-25"
	testCPFDigits = "52998224725"
	otherCPF      = "111.444.777-35"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	users         map[string]*domain.User // keyed by id
	createUserErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[string]*domain.User)}
}

func (m *mockRepository) CreateUser(_ context.Context, user *domain.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
		if u.CPF == user.CPF {
			return ErrCPFTaken
		}
	}
	// The store default activates freshly created profiles.
	for i := range user.Profiles {
		user.Profiles[i].IsActive = true
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) UpdateUser(_ context.Context, id string, update UserUpdate) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	return nil
}

func (m *mockRepository) CreateProfile(_ context.Context, profile *domain.Profile) error {
	u, ok := m.users[profile.UserID]
	if !ok {
		return ErrUserNotFound
	}
	profile.IsActive = true
	u.Profiles = append(u.Profiles, *profile)
	return nil
}

func (m *mockRepository) SetProfileActive(_ context.Context, userID string, role domain.Role, active bool) error {
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	for i := range u.Profiles {
		if u.Profiles[i].Role == role {
			u.Profiles[i].IsActive = active
			return nil
		}
	}
	return ErrProfileNotFound
}

// mockHasher implements PasswordHasher with a reversible marker.
type mockHasher struct{}

func (mockHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }

func (mockHasher) Verify(plaintext, hash string) bool { return hash == "hashed:"+plaintext }

// mockIssuer implements TokenIssuer and records the last issued claims.
type mockIssuer struct {
	lastClaims TokenClaims
	err        error
}

func (m *mockIssuer) Issue(_ context.Context, claims TokenClaims) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.lastClaims = claims
	return "token-" + string(claims.Role), nil
}

func newTestService() (*Service, *mockRepository, *mockIssuer) {
	repo := newMockRepository()
	issuer := &mockIssuer{}
	return NewService(repo, mockHasher{}, issuer), repo, issuer
}

func registerUser(t *testing.T, service *Service, email, cpf string, roles ...domain.Role) *domain.User {
	t.Helper()
	user, err := service.Register(context.Background(), RegisterInput{
		Name:     "Ana Souza",
		Email:    email,
		CPF:      cpf,
		Phone:    "11987654321",
		Password: "password123",
		Roles:    roles,
	})
	require.NoError(t, err)
	return user
}

func TestRegister_CreatesUserWithProfiles(t *testing.T) {
	service, repo, _ := newTestService()

	user := registerUser(t, service, "ana@example.com", testCPF, domain.RoleParticipant, domain.RoleOrganizer)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, testCPFDigits, user.CPF, "cpf should be stored normalized")
	assert.Equal(t, "hashed:password123", user.PasswordHash)
	require.Len(t, user.Profiles, 2)
	for _, p := range user.Profiles {
		assert.Equal(t, user.ID, p.UserID)
	}

	stored, err := repo.GetUserByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestRegister_RequiresRoles(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		CPF:      testCPF,
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrNoRoles)
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		CPF:      testCPF,
		Password: "password123",
		Roles:    []domain.Role{"SUPORTE"},
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegister_RejectsDuplicateRoles(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		CPF:      testCPF,
		Password: "password123",
		Roles:    []domain.Role{domain.RoleParticipant, domain.RoleParticipant},
	})
	assert.ErrorIs(t, err, ErrProfileExists)
}

func TestRegister_RejectsInvalidCPF(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		CPF:      "123.456.789-00",
		Password: "password123",
		Roles:    []domain.Role{domain.RoleParticipant},
	})
	assert.ErrorIs(t, err, validate.ErrInvalidCPF)
}

func TestRegister_EmailAlreadyTaken(t *testing.T) {
	service, _, _ := newTestService()
	registerUser(t, service, "ana@example.com", testCPF, domain.RoleParticipant)

	_, err := service.Register(context.Background(), RegisterInput{
		Name:     "Outra Ana",
		Email:    "ana@example.com",
		CPF:      otherCPF,
		Password: "password123",
		Roles:    []domain.Role{domain.RoleParticipant},
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate_IssuesTokenForSelectedProfile(t *testing.T) {
	service, _, issuer := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF,
		domain.RoleParticipant, domain.RoleOrganizer)

	token, err := service.Authenticate(context.Background(), "ana@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, "token-ORGANIZADOR", token)
	assert.Equal(t, user.ID, issuer.lastClaims.Subject)
	assert.Equal(t, domain.RoleOrganizer, issuer.lastClaims.Role)
	assert.True(t, issuer.lastClaims.IsActive)
}

func TestAuthenticate_FallsBackToInactiveProfile(t *testing.T) {
	service, _, issuer := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF, domain.RoleAdmin)
	require.NoError(t, service.ToggleProfileStatus(context.Background(), user.ID, domain.RoleAdmin))

	_, err := service.Authenticate(context.Background(), "ana@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, issuer.lastClaims.Role)
	assert.False(t, issuer.lastClaims.IsActive, "claims must expose the inactive flag")
}

func TestAuthenticate_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	service, _, _ := newTestService()
	registerUser(t, service, "ana@example.com", testCPF, domain.RoleParticipant)

	_, errUnknown := service.Authenticate(context.Background(), "nobody@example.com", "password123")
	_, errWrong := service.Authenticate(context.Background(), "ana@example.com", "wrong-password")

	assert.ErrorIs(t, errUnknown, ErrUserNotFound)
	assert.ErrorIs(t, errWrong, ErrUserNotFound)
	assert.Equal(t, errUnknown, errWrong)
}

func TestGetProfileView_PartitionsProfiles(t *testing.T) {
	service, _, _ := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF,
		domain.RoleParticipant, domain.RoleOrganizer, domain.RoleAdmin)

	view, err := service.GetProfileView(context.Background(), user.ID, domain.RoleOrganizer)

	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", view.Name)
	assert.Equal(t, "ana@example.com", view.Email)
	require.NotNil(t, view.Current)
	assert.Equal(t, domain.RoleOrganizer, view.Current.Role)
	assert.Len(t, view.Others, 2)
}

func TestGetProfileView_NoMatchingRole(t *testing.T) {
	service, _, _ := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF, domain.RoleParticipant)

	view, err := service.GetProfileView(context.Background(), user.ID, domain.RoleAdmin)

	require.NoError(t, err)
	assert.Nil(t, view.Current)
	assert.Len(t, view.Others, 1)
}

func TestGetProfileView_UserNotFound(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.GetProfileView(context.Background(), "missing", domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUser_OnlySuppliedFieldsChange(t *testing.T) {
	service, repo, _ := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF, domain.RoleParticipant)

	name := "Ana Pereira"
	err := service.UpdateUser(context.Background(), user.ID, UpdateInput{Name: &name})

	require.NoError(t, err)
	stored, err := repo.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Pereira", stored.Name)
	assert.Equal(t, "ana@example.com", stored.Email)
	assert.Equal(t, "11987654321", stored.Phone)
}

func TestUpdateUser_RehashesPassword(t *testing.T) {
	service, repo, _ := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF, domain.RoleParticipant)

	newPassword := "new-password-456"
	err := service.UpdateUser(context.Background(), user.ID, UpdateInput{Password: &newPassword})

	require.NoError(t, err)
	stored, err := repo.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, newPassword, stored.PasswordHash, "plaintext must never be stored")
	assert.Equal(t, "hashed:new-password-456", stored.PasswordHash)
}

func TestUpdateUser_NotFound(t *testing.T) {
	service, _, _ := newTestService()

	name := "Ana"
	err := service.UpdateUser(context.Background(), "missing", UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSwitchActiveProfile_ReissuesTokenForHeldRole(t *testing.T) {
	service, _, issuer := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF,
		domain.RoleParticipant, domain.RoleOrganizer)

	result, err := service.SwitchActiveProfile(context.Background(), user.ID, domain.RoleParticipant)

	require.NoError(t, err)
	assert.Equal(t, "profile switched to PARTICIPANTE", result.Message)
	assert.Equal(t, "token-PARTICIPANTE", result.AccessToken)
	assert.Equal(t, domain.RoleParticipant, issuer.lastClaims.Role)
}

func TestSwitchActiveProfile_DoesNotChangeActiveFlag(t *testing.T) {
	service, repo, issuer := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF, domain.RoleParticipant, domain.RoleAdmin)
	require.NoError(t, service.ToggleProfileStatus(context.Background(), user.ID, domain.RoleAdmin))

	result, err := service.SwitchActiveProfile(context.Background(), user.ID, domain.RoleAdmin)

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.False(t, issuer.lastClaims.IsActive, "token reflects the current flag")

	stored, err := repo.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	for _, p := range stored.Profiles {
		if p.Role == domain.RoleAdmin {
			assert.False(t, p.IsActive, "switch must not flip the flag")
		}
	}
}

func TestSwitchActiveProfile_RoleNotHeld(t *testing.T) {
	service, _, _ := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF, domain.RoleParticipant)

	_, err := service.SwitchActiveProfile(context.Background(), user.ID, domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestAddProfile_GrantsNewRole(t *testing.T) {
	service, repo, _ := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF, domain.RoleParticipant)

	profile, err := service.AddProfile(context.Background(), user.ID, domain.RoleOrganizer)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleOrganizer, profile.Role)

	stored, err := repo.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Profiles, 2)
}

func TestAddProfile_RejectsHeldRole(t *testing.T) {
	service, _, _ := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF,
		domain.RoleParticipant, domain.RoleOrganizer)

	// Rejection is independent of which role is asked for or in which order.
	for _, role := range []domain.Role{domain.RoleOrganizer, domain.RoleParticipant, domain.RoleOrganizer} {
		_, err := service.AddProfile(context.Background(), user.ID, role)
		assert.ErrorIs(t, err, ErrProfileExists)
	}
}

func TestAddProfile_UserNotFound(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.AddProfile(context.Background(), "missing", domain.RoleOrganizer)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestToggleProfileStatus_IsAnInvolution(t *testing.T) {
	service, repo, _ := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF, domain.RoleParticipant)

	activeBefore := func() bool {
		stored, err := repo.GetUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		return stored.Profiles[0].IsActive
	}

	initial := activeBefore()
	require.NoError(t, service.ToggleProfileStatus(context.Background(), user.ID, domain.RoleParticipant))
	assert.Equal(t, !initial, activeBefore())
	require.NoError(t, service.ToggleProfileStatus(context.Background(), user.ID, domain.RoleParticipant))
	assert.Equal(t, initial, activeBefore())
}

func TestToggleProfileStatus_ProfileNotFound(t *testing.T) {
	service, _, _ := newTestService()
	user := registerUser(t, service, "ana@example.com", testCPF, domain.RoleParticipant)

	err := service.ToggleProfileStatus(context.Background(), user.ID, domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestRegister_RepositoryFailurePropagates(t *testing.T) {
	repo := newMockRepository()
	repo.createUserErr = errors.New("database error")
	service := NewService(repo, mockHasher{}, &mockIssuer{})

	_, err := service.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		CPF:      testCPF,
		Password: "password123",
		Roles:    []domain.Role{domain.RoleParticipant},
	})
	assert.Error(t, err)
}
