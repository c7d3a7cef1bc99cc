package handler

import (
	"context"
	"net/http"

	"github.com/mfai/ambassador/api/internal/middleware"
	"github.com/mfai/ambassador/api/internal/model"
)

// ResourceService is the learning-resource surface used by ResourceHandler
type ResourceService interface {
	List(ctx context.Context, ambassadorID string) ([]*model.Resource, error)
	Get(ctx context.Context, ambassadorID, id string) (*model.Resource, error)
	Complete(ctx context.Context, ambassadorID, id string) (int, error)
	Create(ctx context.Context, req model.ResourceRequest) (*model.Resource, error)
	Update(ctx context.Context, id string, req model.ResourceRequest) (*model.Resource, error)
	Delete(ctx context.Context, id string) error
}

// ResourceHandler serves learning resources
type ResourceHandler struct {
	resources ResourceService
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resources ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// List handles GET /ressources
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resources.List(r.Context(), middleware.GetAmbassadorID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "list resources")
		return
	}
	WriteJSON(w, http.StatusOK, resources)
}

// Get handles GET /ressources/{id}
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r, "resource")
	if !ok {
		WriteError(w, model.NewNotFoundError("resource"))
		return
	}

	resource, err := h.resources.Get(r.Context(), middleware.GetAmbassadorID(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err, "get resource")
		return
	}
	WriteJSON(w, http.StatusOK, resource)
}

// Complete handles POST /ressources/{id}/complete
func (h *ResourceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r, "resource")
	if !ok {
		WriteError(w, model.NewNotFoundError("resource"))
		return
	}

	points, err := h.resources.Complete(r.Context(), middleware.GetAmbassadorID(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err, "complete resource")
		return
	}

	WriteJSON(w, http.StatusOK, model.CompleteResourceResponse{
		Message: "Resource completed successfully",
		Points:  points,
	})
}

// Create handles POST /ressources (admin)
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ResourceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resource, err := h.resources.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "create resource")
		return
	}
	WriteJSON(w, http.StatusCreated, resource)
}

// Update handles PUT /ressources/{id} (admin)
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r, "resource")
	if !ok {
		WriteError(w, model.NewNotFoundError("resource"))
		return
	}

	var req model.ResourceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resource, err := h.resources.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, "update resource")
		return
	}
	WriteJSON(w, http.StatusOK, resource)
}

// Delete handles DELETE /ressources/{id} (admin)
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r, "resource")
	if !ok {
		WriteError(w, model.NewNotFoundError("resource"))
		return
	}

	if err := h.resources.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "delete resource")
		return
	}
	WriteMessage(w, http.StatusOK, "Resource deleted successfully")
}
