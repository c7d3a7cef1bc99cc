package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/mfai/ambassador/api/internal/database"
	"github.com/mfai/ambassador/api/internal/metrics"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/internal/repository"
	"go.uber.org/zap"
)

// ResourceRepository defines the interface for resource storage
type ResourceRepository interface {
	Create(ctx context.Context, r *model.Resource) error
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	Update(ctx context.Context, r *model.Resource) (*model.Resource, error)
	Delete(ctx context.Context, id string) error
	ListForLevel(ctx context.Context, level model.Level) ([]*model.Resource, error)
	Complete(ctx context.Context, resourceID, ambassadorID string, points int) error
}

// ResourceService handles learning resources
type ResourceService struct {
	resources   ResourceRepository
	ambassadors AmbassadorReader
}

// NewResourceService creates a new resource service
func NewResourceService(resources ResourceRepository, ambassadors AmbassadorReader) *ResourceService {
	return &ResourceService{
		resources:   resources,
		ambassadors: ambassadors,
	}
}

// List returns the resources open to the ambassador's level, newest first
func (s *ResourceService) List(ctx context.Context, ambassadorID string) ([]*model.Resource, error) {
	a, err := s.loadAmbassador(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}
	return s.resources.ListForLevel(ctx, a.Level)
}

// Get returns a resource the ambassador may read
func (s *ResourceService) Get(ctx context.Context, ambassadorID, id string) (*model.Resource, error) {
	r, a, err := s.load(ctx, ambassadorID, id)
	if err != nil {
		return nil, err
	}
	if !r.IsAvailableTo(a.Level) {
		return nil, ErrResourceForbidden
	}
	return r, nil
}

// Complete credits the resource's points on the ambassador's first completion
// and returns the points awarded.
func (s *ResourceService) Complete(ctx context.Context, ambassadorID, id string) (int, error) {
	r, a, err := s.load(ctx, ambassadorID, id)
	if err != nil {
		return 0, err
	}
	if !r.IsAvailableTo(a.Level) {
		return 0, ErrResourceForbidden
	}
	if a.HasCompletedResource(r.ID) {
		return 0, ErrResourceAlreadyCompleted
	}

	if err := s.resources.Complete(ctx, r.ID, a.ID, r.PointsReward); err != nil {
		if errors.Is(err, repository.ErrAlreadyCompleted) {
			return 0, ErrResourceAlreadyCompleted
		}
		return 0, err
	}

	metrics.CompletionsTotal.WithLabelValues(metrics.KindResource).Inc()
	metrics.PointsAwardedTotal.WithLabelValues(metrics.KindResource).Add(float64(r.PointsReward))
	zap.L().Info("resource completed",
		zap.String("resource_id", r.ID),
		zap.String("ambassador_id", a.ID),
		zap.Int("points", r.PointsReward),
	)
	return r.PointsReward, nil
}

// slugAttempts bounds how many suffixed slugs Create tries after a clash
const slugAttempts = 5

// Create adds a resource, deriving its slug from the title. A slug already
// taken by another resource gets a short random suffix.
func (s *ResourceService) Create(ctx context.Context, req model.ResourceRequest) (*model.Resource, error) {
	r, err := resourceFromRequest(req)
	if err != nil {
		return nil, err
	}

	base := slug.Make(r.Title)
	if base == "" {
		base = "resource"
	}
	r.Slug = base
	for attempt := 1; ; attempt++ {
		err = s.resources.Create(ctx, r)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, database.ErrDuplicate) || attempt == slugAttempts {
			return nil, err
		}
		r.Slug = base + "-" + slugSuffix()
	}
}

func slugSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// Update replaces a resource's editable fields. The slug never changes.
func (s *ResourceService) Update(ctx context.Context, id string, req model.ResourceRequest) (*model.Resource, error) {
	r, err := resourceFromRequest(req)
	if err != nil {
		return nil, err
	}
	r.ID = id

	updated, err := s.resources.Update(ctx, r)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrResourceNotFound
	}
	return updated, nil
}

// Delete removes a resource
func (s *ResourceService) Delete(ctx context.Context, id string) error {
	if err := s.resources.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrResourceNotFound
		}
		return err
	}
	return nil
}

func (s *ResourceService) load(ctx context.Context, ambassadorID, id string) (*model.Resource, *model.Ambassador, error) {
	r, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if r == nil {
		return nil, nil, ErrResourceNotFound
	}

	a, err := s.loadAmbassador(ctx, ambassadorID)
	if err != nil {
		return nil, nil, err
	}
	return r, a, nil
}

func (s *ResourceService) loadAmbassador(ctx context.Context, id string) (*model.Ambassador, error) {
	a, err := s.ambassadors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAmbassadorNotFound
	}
	return a, nil
}

func resourceFromRequest(req model.ResourceRequest) (*model.Resource, error) {
	req.Normalize()
	req.ApplyDefaults()
	if err := requireText("title", req.Title, 1); err != nil {
		return nil, err
	}
	return &model.Resource{
		Title:         req.Title,
		Description:   req.Description,
		Kind:          req.Kind,
		Content:       req.Content,
		RequiredLevel: req.RequiredLevel,
		PointsReward:  req.PointsReward,
		Tags:          req.Tags,
		MediaURL:      req.MediaURL,
	}, nil
}
