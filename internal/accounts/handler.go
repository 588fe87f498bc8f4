package accounts

import (
	"encoding/json"
	"net/http"

	"github.com/eventup/accounts/internal/domain"
	"github.com/eventup/accounts/internal/pkg/httputil"
	"github.com/eventup/accounts/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the accounts module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new accounts handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers the public account routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.Register)
	r.Post("/auth/login", h.Login)
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/switch", h.SwitchProfile)
	r.Route("/users/me", func(r chi.Router) {
		r.Get("/", h.Me)
		r.Patch("/", h.Update)
		r.Post("/profiles", h.AddProfile)
		r.Post("/profiles/{role}/toggle", h.ToggleProfile)
	})
}

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrUserNotFound, Status: http.StatusNotFound},
	{Error: ErrProfileNotFound, Status: http.StatusNotFound},
	{Error: ErrNoProfiles, Status: http.StatusNotFound},
	{Error: ErrEmailTaken, Status: http.StatusConflict},
	{Error: ErrCPFTaken, Status: http.StatusConflict},
	{Error: ErrProfileExists, Status: http.StatusConflict},
	{Error: ErrNoRoles, Status: http.StatusBadRequest},
	{Error: ErrInvalidRole, Status: http.StatusBadRequest},
	{Error: validate.ErrInvalidCPF, Status: http.StatusBadRequest},
	{Error: validate.ErrInvalidPhone, Status: http.StatusBadRequest},
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	CPF      string   `json:"cpf" validate:"required"`
	Phone    string   `json:"phone"`
	Password string   `json:"password" validate:"required,min=8"`
	Roles    []string `json:"roles" validate:"required,min=1"`
}

// ProfileResponse represents a profile in responses.
type ProfileResponse struct {
	Role     domain.Role `json:"role"`
	IsActive bool        `json:"is_active"`
}

// UserResponse represents a created user.
type UserResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Phone    string            `json:"phone,omitempty"`
	Profiles []ProfileResponse `json:"profiles"`
}

// Register handles POST /users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	roles := make([]domain.Role, 0, len(req.Roles))
	for _, role := range req.Roles {
		roles = append(roles, domain.Role(role))
	}

	user, err := h.service.Register(r.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		CPF:      req.CPF,
		Phone:    req.Phone,
		Password: req.Password,
		Roles:    roles,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, toUserResponse(user))
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	token, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, TokenResponse{AccessToken: token})
}

// ProfileViewResponse represents the account detail view.
type ProfileViewResponse struct {
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone,omitempty"`
	CurrentProfile *ProfileResponse  `json:"current_profile"`
	OtherProfiles  []ProfileResponse `json:"other_profiles"`
}

// Me handles GET /users/me. The acting role comes from the token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	actingRole := httputil.GetRole(r.Context())

	view, err := h.service.GetProfileView(r.Context(), userID, actingRole)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	resp := ProfileViewResponse{
		Name:          view.Name,
		Email:         view.Email,
		Phone:         view.Phone,
		OtherProfiles: make([]ProfileResponse, 0, len(view.Others)),
	}
	if view.Current != nil {
		resp.CurrentProfile = &ProfileResponse{Role: view.Current.Role, IsActive: view.Current.IsActive}
	}
	for _, p := range view.Others {
		resp.OtherProfiles = append(resp.OtherProfiles, ProfileResponse{Role: p.Role, IsActive: p.IsActive})
	}

	httputil.Success(w, http.StatusOK, resp)
}

// UpdateRequest represents the partial update request body.
type UpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// Update handles PATCH /users/me.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	err := h.service.UpdateUser(r.Context(), httputil.GetUserID(r.Context()), UpdateInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SwitchRequest represents the profile switch request body.
type SwitchRequest struct {
	Role string `json:"role" validate:"required"`
}

// SwitchResponse carries the confirmation and the re-issued token.
type SwitchResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

// SwitchProfile handles POST /auth/switch.
func (h *Handler) SwitchProfile(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	result, err := h.service.SwitchActiveProfile(r.Context(), httputil.GetUserID(r.Context()), domain.Role(req.Role))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, SwitchResponse{
		Message:     result.Message,
		AccessToken: result.AccessToken,
	})
}

// AddProfileRequest represents the add-profile request body.
type AddProfileRequest struct {
	Role string `json:"role" validate:"required"`
}

// AddProfile handles POST /users/me/profiles.
func (h *Handler) AddProfile(w http.ResponseWriter, r *http.Request) {
	var req AddProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	profile, err := h.service.AddProfile(r.Context(), httputil.GetUserID(r.Context()), domain.Role(req.Role))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, ProfileResponse{
		Role:     profile.Role,
		IsActive: profile.IsActive,
	})
}

// ToggleProfile handles POST /users/me/profiles/{role}/toggle.
func (h *Handler) ToggleProfile(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(chi.URLParam(r, "role"))

	err := h.service.ToggleProfileStatus(r.Context(), httputil.GetUserID(r.Context()), role)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Phone:    user.Phone,
		Profiles: make([]ProfileResponse, 0, len(user.Profiles)),
	}
	for _, p := range user.Profiles {
		resp.Profiles = append(resp.Profiles, ProfileResponse{Role: p.Role, IsActive: p.IsActive})
	}
	return resp
}
