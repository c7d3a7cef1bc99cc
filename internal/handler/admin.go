package handler

import (
	"context"
	"net/http"

	"github.com/mfai/ambassador/api/internal/middleware"
	"github.com/mfai/ambassador/api/internal/model"
)

// AdminService is the ambassador-management surface used by AdminHandler
type AdminService interface {
	Promote(ctx context.Context, adminID, ambassadorID string, level model.Level) (*model.Ambassador, error)
	CreditPoints(ctx context.Context, adminID, ambassadorID string, points int, reason string) (*model.Ambassador, error)
	AwardBadge(ctx context.Context, adminID, ambassadorID, description string) (*model.Ambassador, error)
	SetActive(ctx context.Context, adminID, ambassadorID string, active bool) (*model.Ambassador, error)
}

// AdminHandler handles /admin/ambassadors/{id}/... endpoints. Every route
// answers with the updated profile.
type AdminHandler struct {
	admin AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Promote handles POST /admin/ambassadors/{id}/level
func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r, "ambassador")
	if !ok {
		WriteError(w, model.NewNotFoundError("ambassador"))
		return
	}

	var req model.PromoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.admin.Promote(r.Context(), middleware.GetAmbassadorID(r.Context()), id, req.Level)
	if err != nil {
		writeServiceError(w, r, err, "promote ambassador")
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// CreditPoints handles POST /admin/ambassadors/{id}/points
func (h *AdminHandler) CreditPoints(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r, "ambassador")
	if !ok {
		WriteError(w, model.NewNotFoundError("ambassador"))
		return
	}

	var req model.CreditPointsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.admin.CreditPoints(r.Context(), middleware.GetAmbassadorID(r.Context()), id, req.Points, req.Reason)
	if err != nil {
		writeServiceError(w, r, err, "credit points")
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// AwardBadge handles POST /admin/ambassadors/{id}/badges
func (h *AdminHandler) AwardBadge(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r, "ambassador")
	if !ok {
		WriteError(w, model.NewNotFoundError("ambassador"))
		return
	}

	var req model.AwardBadgeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.admin.AwardBadge(r.Context(), middleware.GetAmbassadorID(r.Context()), id, req.Description)
	if err != nil {
		writeServiceError(w, r, err, "award badge")
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// Activate handles POST /admin/ambassadors/{id}/activate
func (h *AdminHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles POST /admin/ambassadors/{id}/deactivate
func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *AdminHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := recordID(r, "ambassador")
	if !ok {
		WriteError(w, model.NewNotFoundError("ambassador"))
		return
	}

	profile, err := h.admin.SetActive(r.Context(), middleware.GetAmbassadorID(r.Context()), id, active)
	if err != nil {
		writeServiceError(w, r, err, "set active")
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}
