package handler

import (
	"context"
	"net/http"

	"github.com/mfai/ambassador/api/internal/middleware"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/internal/service"
)

// MissionService is the mission surface used by MissionHandler
type MissionService interface {
	Get(ctx context.Context, id string) (*model.Mission, error)
	ListAvailable(ctx context.Context, ambassadorID string) ([]*model.Mission, error)
	History(ctx context.Context, ambassadorID string) ([]*model.Mission, error)
	Complete(ctx context.Context, ambassadorID, missionID, proof string) (*service.CompletionResult, error)
	Create(ctx context.Context, req model.MissionRequest) (*model.Mission, error)
	Update(ctx context.Context, id string, req model.MissionRequest) (*model.Mission, error)
	Delete(ctx context.Context, id string) error
}

// MissionHandler serves missions to ambassadors and manages them for admins
type MissionHandler struct {
	missions MissionService
}

// NewMissionHandler creates a new mission handler
func NewMissionHandler(missions MissionService) *MissionHandler {
	return &MissionHandler{missions: missions}
}

// Available handles GET /missions/available
func (h *MissionHandler) Available(w http.ResponseWriter, r *http.Request) {
	missions, err := h.missions.ListAvailable(r.Context(), middleware.GetAmbassadorID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "list available missions")
		return
	}
	WriteJSON(w, http.StatusOK, missions)
}

// History handles GET /missions/history
func (h *MissionHandler) History(w http.ResponseWriter, r *http.Request) {
	missions, err := h.missions.History(r.Context(), middleware.GetAmbassadorID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "mission history")
		return
	}
	WriteJSON(w, http.StatusOK, missions)
}

// Get handles GET /missions/{id}
func (h *MissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r, "mission")
	if !ok {
		WriteError(w, model.NewNotFoundError("mission"))
		return
	}

	mission, err := h.missions.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get mission")
		return
	}
	WriteJSON(w, http.StatusOK, mission)
}

// Complete handles POST /missions/{id}/complete
func (h *MissionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r, "mission")
	if !ok {
		WriteError(w, model.NewNotFoundError("mission"))
		return
	}

	// Missing proof is reported by the service after the existence checks
	var req model.CompleteMissionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.missions.Complete(r.Context(), middleware.GetAmbassadorID(r.Context()), id, req.Proof)
	if err != nil {
		writeServiceError(w, r, err, "complete mission")
		return
	}

	WriteJSON(w, http.StatusOK, model.CompleteMissionResponse{
		Message: "Mission completed successfully",
		Mission: result.Mission,
		Reward: model.MissionReward{
			Points: result.Points,
			Tokens: result.Tokens,
		},
	})
}

// Create handles POST /missions (admin)
func (h *MissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.MissionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	mission, err := h.missions.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "create mission")
		return
	}
	WriteJSON(w, http.StatusCreated, mission)
}

// Update handles PUT /missions/{id} (admin)
func (h *MissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r, "mission")
	if !ok {
		WriteError(w, model.NewNotFoundError("mission"))
		return
	}

	var req model.MissionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	mission, err := h.missions.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, "update mission")
		return
	}
	WriteJSON(w, http.StatusOK, mission)
}

// Delete handles DELETE /missions/{id} (admin)
func (h *MissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r, "mission")
	if !ok {
		WriteError(w, model.NewNotFoundError("mission"))
		return
	}

	if err := h.missions.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "delete mission")
		return
	}
	WriteMessage(w, http.StatusOK, "Mission deleted successfully")
}
