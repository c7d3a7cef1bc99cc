package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/mfai/ambassador/api/internal/database"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/internal/repository"
	"github.com/shopspring/decimal"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plaintext password of every fixture ambassador
const DefaultPassword = "testpass123"

// Factory creates test entities in the database
type Factory struct {
	ambassadors *repository.AmbassadorRepository
	missions    *repository.MissionRepository
	resources   *repository.ResourceRepository
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{
		ambassadors: repository.NewAmbassadorRepository(db),
		missions:    repository.NewMissionRepository(db),
		resources:   repository.NewResourceRepository(db),
	}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ctx returns a context with timeout
func ctx() context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	// Store cancel to prevent leak warning
	_ = cancel
	return c
}

// ============================================================================
// Ambassador Fixtures
// ============================================================================

// AmbassadorOpts customizes ambassador creation
type AmbassadorOpts struct {
	Name     string
	Email    string
	Password string
	Level    model.Level
	Role     model.Role
	Referrer string
}

// WithLevel sets the ambassador level
func WithLevel(level model.Level) func(*AmbassadorOpts) {
	return func(o *AmbassadorOpts) {
		o.Level = level
	}
}

// WithReferrer records the ambassador as referred by referrerID
func WithReferrer(referrerID string) func(*AmbassadorOpts) {
	return func(o *AmbassadorOpts) {
		o.Referrer = referrerID
	}
}

// CreateAmbassador creates an ambassador with optional customizations
func (f *Factory) CreateAmbassador(t *testing.T, opts ...func(*AmbassadorOpts)) *model.Ambassador {
	t.Helper()

	id := randomID()
	o := &AmbassadorOpts{
		Name:     "Ambassador " + id,
		Email:    fmt.Sprintf("ambassador_%s@test.local", id),
		Password: DefaultPassword,
		Level:    model.LevelBronze,
		Role:     model.RoleUser,
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	a := &model.Ambassador{
		Name:         o.Name,
		Email:        o.Email,
		Hash:         string(hash),
		Level:        o.Level,
		Role:         o.Role,
		ReferralCode: "REF" + randomID(),
	}
	if o.Referrer != "" {
		a.ReferredBy = &o.Referrer
	}

	if err := f.ambassadors.Create(ctx(), a, o.Referrer); err != nil {
		t.Fatalf("fixtures: failed to create ambassador: %v", err)
	}
	return a
}

// CreateAdmin creates an ambassador with the admin role
func (f *Factory) CreateAdmin(t *testing.T) *model.Ambassador {
	return f.CreateAmbassador(t, func(o *AmbassadorOpts) {
		o.Role = model.RoleAdmin
	})
}

// ============================================================================
// Mission Fixtures
// ============================================================================

// CreateMission creates an Active mission open to every level for the next
// week. Options may change any field before insertion.
func (f *Factory) CreateMission(t *testing.T, opts ...func(*model.Mission)) *model.Mission {
	t.Helper()

	now := time.Now().UTC()
	m := &model.Mission{
		Title:         "Mission " + randomID(),
		Description:   "Share the program with your network",
		Kind:          model.MissionWeekly,
		PointsReward:  50,
		TokenReward:   decimal.NewFromInt(10),
		Criteria:      []string{"Post a link"},
		RequiredLevel: model.LevelAny,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(7 * 24 * time.Hour),
		Status:        model.MissionStatusActive,
	}
	for _, fn := range opts {
		fn(m)
	}

	if err := f.missions.Create(ctx(), m); err != nil {
		t.Fatalf("fixtures: failed to create mission: %v", err)
	}
	return m
}

// ============================================================================
// Resource Fixtures
// ============================================================================

// CreateResource creates a Guide open to every level worth 25 points
func (f *Factory) CreateResource(t *testing.T, opts ...func(*model.Resource)) *model.Resource {
	t.Helper()

	id := randomID()
	r := &model.Resource{
		Title:         "Resource " + id,
		Slug:          "resource-" + id,
		Description:   "How the program works",
		Kind:          model.ResourceGuide,
		Content:       "Read this first.",
		RequiredLevel: model.LevelAny,
		PointsReward:  25,
		Tags:          []string{"onboarding"},
	}
	for _, fn := range opts {
		fn(r)
	}

	if err := f.resources.Create(ctx(), r); err != nil {
		t.Fatalf("fixtures: failed to create resource: %v", err)
	}
	return r
}
