package service

import (
	"context"
	"strings"
	"time"

	"github.com/mfai/ambassador/api/internal/metrics"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AmbassadorLedger is the ambassador storage used by administrators
type AmbassadorLedger interface {
	GetByID(ctx context.Context, id string) (*model.Ambassador, error)
	SetActive(ctx context.Context, id string, active bool) error
	Promote(ctx context.Context, id string, level model.Level, reward model.Reward) error
	CreditPoints(ctx context.Context, id string, points int) error
	AppendReward(ctx context.Context, id string, reward model.Reward) error
	GrantAdmin(ctx context.Context, emails []string) ([]string, error)
}

// AdminService handles manual changes to ambassador accounts. Promotion
// only ever happens here; completions never change an ambassador's level.
type AdminService struct {
	ambassadors AmbassadorLedger
	now         func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(ambassadors AmbassadorLedger) *AdminService {
	return &AdminService{
		ambassadors: ambassadors,
		now:         time.Now,
	}
}

// Promote raises an ambassador to level and records a LevelUp reward
func (s *AdminService) Promote(ctx context.Context, adminID, ambassadorID string, level model.Level) (*model.Ambassador, error) {
	a, err := s.load(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}

	if !level.IsValid() || level.Rank() <= a.Level.Rank() {
		return nil, newValidationError(model.FieldError{
			Field:   "level",
			Message: ErrInvalidPromotion.Error(),
		})
	}

	reward := model.Reward{
		Kind:        model.RewardLevelUp,
		Amount:      decimal.Zero,
		Date:        s.now(),
		Description: "Promoted to " + string(level),
	}
	if err := s.ambassadors.Promote(ctx, a.ID, level, reward); err != nil {
		return nil, err
	}

	zap.L().Info("ambassador promoted",
		zap.String("ambassador_id", a.ID),
		zap.String("from", string(a.Level)),
		zap.String("to", string(level)),
		zap.String("admin_id", adminID),
	)
	return s.load(ctx, a.ID)
}

// CreditPoints adds points outside of the completion workflows
func (s *AdminService) CreditPoints(ctx context.Context, adminID, ambassadorID string, points int, reason string) (*model.Ambassador, error) {
	if points <= 0 {
		return nil, newValidationError(model.FieldError{Field: "points", Message: "must be greater than 0"})
	}

	a, err := s.load(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}

	if err := s.ambassadors.CreditPoints(ctx, a.ID, points); err != nil {
		return nil, err
	}

	metrics.PointsAwardedTotal.WithLabelValues(metrics.KindAdmin).Add(float64(points))
	zap.L().Info("points credited",
		zap.String("ambassador_id", a.ID),
		zap.Int("points", points),
		zap.String("reason", reason),
		zap.String("admin_id", adminID),
	)
	return s.load(ctx, a.ID)
}

// AwardBadge appends a Badge reward
func (s *AdminService) AwardBadge(ctx context.Context, adminID, ambassadorID, description string) (*model.Ambassador, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, newValidationError(model.FieldError{Field: "description", Message: "is required"})
	}

	a, err := s.load(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}

	reward := model.Reward{
		Kind:        model.RewardBadge,
		Amount:      decimal.Zero,
		Date:        s.now(),
		Description: description,
	}
	if err := s.ambassadors.AppendReward(ctx, a.ID, reward); err != nil {
		return nil, err
	}

	zap.L().Info("badge awarded", zap.String("ambassador_id", a.ID), zap.String("admin_id", adminID))
	return s.load(ctx, a.ID)
}

// SetActive enables or disables an account. Disabled ambassadors are
// rejected by the auth gate on their next request.
func (s *AdminService) SetActive(ctx context.Context, adminID, ambassadorID string, active bool) (*model.Ambassador, error) {
	a, err := s.load(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}

	if err := s.ambassadors.SetActive(ctx, a.ID, active); err != nil {
		return nil, err
	}

	zap.L().Info("ambassador active state changed",
		zap.String("ambassador_id", a.ID),
		zap.Bool("active", active),
		zap.String("admin_id", adminID),
	)
	return s.load(ctx, a.ID)
}

// EnsureAdmins grants the admin role to the existing accounts among emails.
// It runs at startup so a fresh deployment has someone who can reach the
// admin routes.
func (s *AdminService) EnsureAdmins(ctx context.Context, emails []string) ([]string, error) {
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			normalized = append(normalized, e)
		}
	}

	granted, err := s.ambassadors.GrantAdmin(ctx, normalized)
	if err != nil {
		return nil, err
	}
	for _, id := range granted {
		zap.L().Info("admin role granted", zap.String("ambassador_id", id))
	}
	return granted, nil
}

func (s *AdminService) load(ctx context.Context, id string) (*model.Ambassador, error) {
	a, err := s.ambassadors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAmbassadorNotFound
	}
	return a, nil
}
