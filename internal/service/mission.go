package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mfai/ambassador/api/internal/database"
	"github.com/mfai/ambassador/api/internal/metrics"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MissionRepository defines the interface for mission storage
type MissionRepository interface {
	Create(ctx context.Context, m *model.Mission) error
	GetByID(ctx context.Context, id string) (*model.Mission, error)
	Update(ctx context.Context, m *model.Mission) (*model.Mission, error)
	Delete(ctx context.Context, id string) error
	ListAvailable(ctx context.Context, level model.Level, now time.Time) ([]*model.Mission, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Mission, error)
	Complete(ctx context.Context, c repository.MissionCompletion) error
}

// AmbassadorReader loads ambassadors for eligibility checks
type AmbassadorReader interface {
	GetByID(ctx context.Context, id string) (*model.Ambassador, error)
}

// MissionService handles mission browsing, completion and administration
type MissionService struct {
	missions    MissionRepository
	ambassadors AmbassadorReader
	now         func() time.Time
}

// MissionServiceConfig holds configuration for the mission service
type MissionServiceConfig struct {
	MissionRepo    MissionRepository
	AmbassadorRepo AmbassadorReader
	Now            func() time.Time // Default: time.Now
}

// NewMissionService creates a new mission service
func NewMissionService(cfg MissionServiceConfig) *MissionService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &MissionService{
		missions:    cfg.MissionRepo,
		ambassadors: cfg.AmbassadorRepo,
		now:         now,
	}
}

// CompletionResult describes what a mission completion awarded
type CompletionResult struct {
	Mission *model.Mission
	Points  int
	Tokens  decimal.Decimal
}

// Get returns a mission by ID
func (s *MissionService) Get(ctx context.Context, id string) (*model.Mission, error) {
	m, err := s.missions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMissionNotFound
	}
	return m, nil
}

// ListAvailable returns the missions the ambassador can complete right now
func (s *MissionService) ListAvailable(ctx context.Context, ambassadorID string) ([]*model.Mission, error) {
	a, err := s.loadAmbassador(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	candidates, err := s.missions.ListAvailable(ctx, a.Level, now)
	if err != nil {
		return nil, err
	}

	available := make([]*model.Mission, 0, len(candidates))
	for _, m := range candidates {
		if m.IsAvailableTo(a.Level, now) {
			available = append(available, m)
		}
	}
	return available, nil
}

// History returns the missions the ambassador completed. Each mission keeps
// only the ambassador's own completion record.
func (s *MissionService) History(ctx context.Context, ambassadorID string) ([]*model.Mission, error) {
	a, err := s.loadAmbassador(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}

	missions, err := s.missions.ListByIDs(ctx, a.CompletedMissions)
	if err != nil {
		return nil, err
	}

	for _, m := range missions {
		own := []model.Completion{}
		if c := m.CompletionFor(a.ID); c != nil {
			own = append(own, *c)
		}
		m.Completions = own
	}
	return missions, nil
}

// Complete records the ambassador's completion of a mission and credits its
// rewards. Checks run in order: mission exists, ambassador exists, mission
// available to the ambassador's level, not yet completed, proof present.
func (s *MissionService) Complete(ctx context.Context, ambassadorID, missionID, proof string) (*CompletionResult, error) {
	m, err := s.Get(ctx, missionID)
	if err != nil {
		return nil, err
	}

	a, err := s.loadAmbassador(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !m.IsAvailableTo(a.Level, now) {
		return nil, ErrMissionUnavailable
	}
	if m.HasCompletion(a.ID) || a.HasCompletedMission(m.ID) {
		return nil, ErrMissionAlreadyCompleted
	}

	proof = strings.TrimSpace(proof)
	if proof == "" {
		return nil, ErrProofRequired
	}

	err = s.missions.Complete(ctx, repository.MissionCompletion{
		MissionID:    m.ID,
		MissionTitle: m.Title,
		AmbassadorID: a.ID,
		Proof:        proof,
		Points:       m.PointsReward,
		Tokens:       m.TokenReward,
		CompletedOn:  now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyCompleted) {
			return nil, ErrMissionAlreadyCompleted
		}
		return nil, err
	}

	metrics.CompletionsTotal.WithLabelValues(metrics.KindMission).Inc()
	metrics.PointsAwardedTotal.WithLabelValues(metrics.KindMission).Add(float64(m.PointsReward))
	zap.L().Info("mission completed",
		zap.String("mission_id", m.ID),
		zap.String("ambassador_id", a.ID),
		zap.Int("points", m.PointsReward),
		zap.String("tokens", m.TokenReward.String()),
	)

	updated, err := s.missions.GetByID(ctx, m.ID)
	if err != nil || updated == nil {
		m.Completions = append(m.Completions, model.Completion{
			Ambassador:  a.ID,
			CompletedOn: now,
			Proof:       proof,
		})
		updated = m
	}

	return &CompletionResult{
		Mission: updated,
		Points:  m.PointsReward,
		Tokens:  m.TokenReward,
	}, nil
}

// Create adds a mission
func (s *MissionService) Create(ctx context.Context, req model.MissionRequest) (*model.Mission, error) {
	m, err := missionFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.missions.Create(ctx, m); err != nil {
		return nil, err
	}
	zap.L().Info("mission created", zap.String("mission_id", m.ID), zap.String("title", m.Title))
	return m, nil
}

// Update replaces a mission's editable fields
func (s *MissionService) Update(ctx context.Context, id string, req model.MissionRequest) (*model.Mission, error) {
	m, err := missionFromRequest(req)
	if err != nil {
		return nil, err
	}
	m.ID = id

	updated, err := s.missions.Update(ctx, m)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrMissionNotFound
	}
	return updated, nil
}

// Delete removes a mission
func (s *MissionService) Delete(ctx context.Context, id string) error {
	if err := s.missions.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrMissionNotFound
		}
		return err
	}
	zap.L().Info("mission deleted", zap.String("mission_id", id))
	return nil
}

func (s *MissionService) loadAmbassador(ctx context.Context, id string) (*model.Ambassador, error) {
	a, err := s.ambassadors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAmbassadorNotFound
	}
	return a, nil
}

func missionFromRequest(req model.MissionRequest) (*model.Mission, error) {
	req.Normalize()
	req.ApplyDefaults()
	if err := requireText("title", req.Title, 1); err != nil {
		return nil, err
	}
	if fields := req.Validate(); len(fields) > 0 {
		return nil, newValidationError(fields...)
	}

	return &model.Mission{
		Title:         req.Title,
		Description:   req.Description,
		Kind:          req.Kind,
		PointsReward:  req.PointsReward,
		TokenReward:   req.TokenReward,
		Criteria:      req.Criteria,
		RequiredLevel: req.RequiredLevel,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        req.Status,
		Links:         req.Links,
	}, nil
}
