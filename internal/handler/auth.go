package handler

import (
	"context"
	"net/http"

	"github.com/mfai/ambassador/api/internal/middleware"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/internal/service"
)

// AuthService is the account surface used by AuthHandler
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*service.AuthResult, error)
	Login(ctx context.Context, req model.LoginRequest) (*service.AuthResult, error)
	GetProfile(ctx context.Context, ambassadorID string) (*model.Ambassador, error)
	UpdateProfile(ctx context.Context, ambassadorID string, req model.UpdateProfileRequest) (*model.Ambassador, error)
	Statistics(ctx context.Context, ambassadorID string) (*model.StatisticsResponse, error)
}

// AuthHandler handles registration, login and the caller's own profile
type AuthHandler struct {
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "register")
		return
	}

	WriteJSON(w, http.StatusCreated, model.AuthResponse{
		Token:     result.Token,
		ExpiresIn: result.ExpiresIn,
		Profile:   result.Ambassador,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "login")
		return
	}

	WriteJSON(w, http.StatusOK, model.AuthResponse{
		Token:     result.Token,
		ExpiresIn: result.ExpiresIn,
		Profile:   result.Ambassador,
	})
}

// Profile handles GET /auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ambassadorID := middleware.GetAmbassadorID(r.Context())
	if ambassadorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	profile, err := h.authService.GetProfile(r.Context(), ambassadorID)
	if err != nil {
		writeServiceError(w, r, err, "get profile")
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ambassadorID := middleware.GetAmbassadorID(r.Context())
	if ambassadorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.authService.UpdateProfile(r.Context(), ambassadorID, req)
	if err != nil {
		writeServiceError(w, r, err, "update profile")
		return
	}

	WriteJSON(w, http.StatusOK, model.ProfileUpdateResponse{
		Message: "Profile updated successfully",
		Profile: profile,
	})
}

// Statistics handles GET /auth/statistics
func (h *AuthHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	ambassadorID := middleware.GetAmbassadorID(r.Context())
	if ambassadorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	stats, err := h.authService.Statistics(r.Context(), ambassadorID)
	if err != nil {
		writeServiceError(w, r, err, "statistics")
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
