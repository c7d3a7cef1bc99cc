package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mfai/ambassador/api/internal/database"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/internal/repository"
)

// ============================================================================
// In-memory ambassador store
// ============================================================================

type mockAmbassadorRepo struct {
	mu        sync.Mutex
	byID      map[string]*model.Ambassador
	seq       int
	createErr error
	getErr    error
	updateErr error
}

func newMockAmbassadorRepo() *mockAmbassadorRepo {
	return &mockAmbassadorRepo{byID: make(map[string]*model.Ambassador)}
}

// add stores a copy of a with sensible defaults and returns it
func (m *mockAmbassadorRepo) add(a *model.Ambassador) *model.Ambassador {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	if a.ID == "" {
		a.ID = "ambassador:" + strings.Repeat("a", m.seq)
	}
	if a.Level == "" {
		a.Level = model.LevelBronze
	}
	if a.Role == "" {
		a.Role = model.RoleUser
	}
	a.Active = true
	if a.Referrals == nil {
		a.Referrals = []string{}
	}
	if a.CompletedMissions == nil {
		a.CompletedMissions = []string{}
	}
	if a.CompletedResources == nil {
		a.CompletedResources = []string{}
	}
	if a.Rewards == nil {
		a.Rewards = []model.Reward{}
	}
	a.CreatedOn = time.Now()
	a.UpdatedOn = a.CreatedOn
	m.byID[a.ID] = a
	return a
}

func (m *mockAmbassadorRepo) get(id string) *model.Ambassador {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byID[id]; ok {
		cp := *a
		cp.CompletedMissions = append([]string{}, a.CompletedMissions...)
		cp.CompletedResources = append([]string{}, a.CompletedResources...)
		cp.Referrals = append([]string{}, a.Referrals...)
		cp.Rewards = append([]model.Reward{}, a.Rewards...)
		return &cp
	}
	return nil
}

func (m *mockAmbassadorRepo) Create(ctx context.Context, a *model.Ambassador, referrerID string) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return database.ErrDuplicate
		}
	}
	m.add(a)
	if referrerID != "" {
		m.mu.Lock()
		ref := m.byID[referrerID]
		ref.Referrals = append(ref.Referrals, a.ID)
		ref.Statistics.ReferralCount++
		m.mu.Unlock()
	}
	return nil
}

func (m *mockAmbassadorRepo) GetByID(ctx context.Context, id string) (*model.Ambassador, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.get(id), nil
}

func (m *mockAmbassadorRepo) GetByEmail(ctx context.Context, email string) (*model.Ambassador, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for id, a := range m.byID {
		if a.Email == email {
			return m.get(id), nil
		}
	}
	return nil, nil
}

func (m *mockAmbassadorRepo) GetByReferralCode(ctx context.Context, code string) (*model.Ambassador, error) {
	for id, a := range m.byID {
		if a.ReferralCode == code {
			return m.get(id), nil
		}
	}
	return nil, nil
}

func (m *mockAmbassadorRepo) UpdateProfile(ctx context.Context, id, name, email string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.byID[id]
	a.Name = name
	a.Email = email
	return nil
}

func (m *mockAmbassadorRepo) TouchLogin(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.byID[id].LoginOn = &now
	return nil
}

func (m *mockAmbassadorRepo) SetActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].Active = active
	return nil
}

func (m *mockAmbassadorRepo) Promote(ctx context.Context, id string, level model.Level, reward model.Reward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.byID[id]
	a.Level = level
	a.Rewards = append(a.Rewards, reward)
	return nil
}

func (m *mockAmbassadorRepo) CreditPoints(ctx context.Context, id string, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].Points += points
	return nil
}

func (m *mockAmbassadorRepo) AppendReward(ctx context.Context, id string, reward model.Reward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.byID[id]
	a.Rewards = append(a.Rewards, reward)
	return nil
}

func (m *mockAmbassadorRepo) GrantAdmin(ctx context.Context, emails []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	granted := []string{}
	for _, a := range m.byID {
		if a.Role != model.RoleAdmin && slices.Contains(emails, a.Email) {
			a.Role = model.RoleAdmin
			granted = append(granted, a.ID)
		}
	}
	return granted, nil
}

// ============================================================================
// In-memory mission store
// ============================================================================

// mockMissionRepo applies completions to the shared ambassador store the way
// the SurrealDB transaction does.
type mockMissionRepo struct {
	mu          sync.Mutex
	byID        map[string]*model.Mission
	ambassadors *mockAmbassadorRepo
	seq         int
	completeErr error
	completions []repository.MissionCompletion
}

func newMockMissionRepo(ambassadors *mockAmbassadorRepo) *mockMissionRepo {
	return &mockMissionRepo{
		byID:        make(map[string]*model.Mission),
		ambassadors: ambassadors,
	}
}

func (m *mockMissionRepo) Create(ctx context.Context, mission *model.Mission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if mission.ID == "" {
		mission.ID = "mission:" + strings.Repeat("m", m.seq)
	}
	if mission.Completions == nil {
		mission.Completions = []model.Completion{}
	}
	m.byID[mission.ID] = mission
	return nil
}

func (m *mockMissionRepo) GetByID(ctx context.Context, id string) (*model.Mission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mission, ok := m.byID[id]; ok {
		cp := *mission
		cp.Completions = append([]model.Completion{}, mission.Completions...)
		return &cp, nil
	}
	return nil, nil
}

func (m *mockMissionRepo) Update(ctx context.Context, mission *model.Mission) (*model.Mission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[mission.ID]
	if !ok {
		return nil, nil
	}
	mission.Completions = existing.Completions
	m.byID[mission.ID] = mission
	return mission, nil
}

func (m *mockMissionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// ListAvailable mimics the query's coarse filter without checking the window
// so the service's own filtering is exercised.
func (m *mockMissionRepo) ListAvailable(ctx context.Context, level model.Level, now time.Time) ([]*model.Mission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Mission
	for _, mission := range m.byID {
		if mission.RequiredLevel.Admits(level) {
			result = append(result, mission)
		}
	}
	return result, nil
}

func (m *mockMissionRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Mission, error) {
	var result []*model.Mission
	for _, id := range ids {
		if mission, _ := m.GetByID(ctx, id); mission != nil {
			result = append(result, mission)
		}
	}
	return result, nil
}

func (m *mockMissionRepo) Complete(ctx context.Context, c repository.MissionCompletion) error {
	if m.completeErr != nil {
		return m.completeErr
	}

	m.mu.Lock()
	mission := m.byID[c.MissionID]
	if mission.HasCompletion(c.AmbassadorID) {
		m.mu.Unlock()
		return repository.ErrAlreadyCompleted
	}
	mission.Completions = append(mission.Completions, model.Completion{
		Ambassador:  c.AmbassadorID,
		CompletedOn: c.CompletedOn,
		Proof:       c.Proof,
	})
	m.completions = append(m.completions, c)
	m.mu.Unlock()

	m.ambassadors.mu.Lock()
	defer m.ambassadors.mu.Unlock()
	a := m.ambassadors.byID[c.AmbassadorID]
	a.CompletedMissions = append(a.CompletedMissions, c.MissionID)
	a.Statistics.MissionsCompleted++
	a.Points += c.Points
	if c.Tokens.IsPositive() {
		a.Rewards = append(a.Rewards, model.Reward{
			Kind:        model.RewardToken,
			Amount:      c.Tokens,
			Date:        c.CompletedOn,
			Description: "Reward for mission: " + c.MissionTitle,
		})
		a.Statistics.TotalTokenRevenue = a.Statistics.TotalTokenRevenue.Add(c.Tokens)
	}
	return nil
}

// ============================================================================
// In-memory resource store
// ============================================================================

type mockResourceRepo struct {
	mu          sync.Mutex
	byID        map[string]*model.Resource
	ambassadors *mockAmbassadorRepo
	seq         int
	created     []*model.Resource
}

func newMockResourceRepo(ambassadors *mockAmbassadorRepo) *mockResourceRepo {
	return &mockResourceRepo{
		byID:        make(map[string]*model.Resource),
		ambassadors: ambassadors,
	}
}

func (m *mockResourceRepo) Create(ctx context.Context, r *model.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Slug == r.Slug {
			return database.ErrDuplicate
		}
	}
	m.seq++
	if r.ID == "" {
		r.ID = "resource:" + strings.Repeat("r", m.seq)
	}
	m.byID[r.ID] = r
	m.created = append(m.created, r)
	return nil
}

func (m *mockResourceRepo) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *mockResourceRepo) Update(ctx context.Context, r *model.Resource) (*model.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[r.ID]
	if !ok {
		return nil, nil
	}
	r.Slug = existing.Slug
	m.byID[r.ID] = r
	return r, nil
}

func (m *mockResourceRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mockResourceRepo) ListForLevel(ctx context.Context, level model.Level) ([]*model.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Resource
	for _, r := range m.byID {
		if r.IsAvailableTo(level) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockResourceRepo) Complete(ctx context.Context, resourceID, ambassadorID string, points int) error {
	m.ambassadors.mu.Lock()
	defer m.ambassadors.mu.Unlock()
	a := m.ambassadors.byID[ambassadorID]
	if a.HasCompletedResource(resourceID) {
		return repository.ErrAlreadyCompleted
	}
	a.CompletedResources = append(a.CompletedResources, resourceID)
	a.Points += points
	return nil
}
