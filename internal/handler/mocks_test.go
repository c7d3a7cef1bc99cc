package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mfai/ambassador/api/internal/middleware"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Mock services
// ============================================================================

type mockAuthService struct {
	registerFunc      func(ctx context.Context, req model.RegisterRequest) (*service.AuthResult, error)
	loginFunc         func(ctx context.Context, req model.LoginRequest) (*service.AuthResult, error)
	getProfileFunc    func(ctx context.Context, id string) (*model.Ambassador, error)
	updateProfileFunc func(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.Ambassador, error)
	statisticsFunc    func(ctx context.Context, id string) (*model.StatisticsResponse, error)
}

func (m *mockAuthService) Register(ctx context.Context, req model.RegisterRequest) (*service.AuthResult, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, req model.LoginRequest) (*service.AuthResult, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockAuthService) GetProfile(ctx context.Context, id string) (*model.Ambassador, error) {
	if m.getProfileFunc != nil {
		return m.getProfileFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.Ambassador, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *mockAuthService) Statistics(ctx context.Context, id string) (*model.StatisticsResponse, error) {
	if m.statisticsFunc != nil {
		return m.statisticsFunc(ctx, id)
	}
	return nil, nil
}

type mockMissionService struct {
	getFunc           func(ctx context.Context, id string) (*model.Mission, error)
	listAvailableFunc func(ctx context.Context, ambassadorID string) ([]*model.Mission, error)
	historyFunc       func(ctx context.Context, ambassadorID string) ([]*model.Mission, error)
	completeFunc      func(ctx context.Context, ambassadorID, missionID, proof string) (*service.CompletionResult, error)
	createFunc        func(ctx context.Context, req model.MissionRequest) (*model.Mission, error)
	updateFunc        func(ctx context.Context, id string, req model.MissionRequest) (*model.Mission, error)
	deleteFunc        func(ctx context.Context, id string) error
}

func (m *mockMissionService) Get(ctx context.Context, id string) (*model.Mission, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, service.ErrMissionNotFound
}

func (m *mockMissionService) ListAvailable(ctx context.Context, ambassadorID string) ([]*model.Mission, error) {
	if m.listAvailableFunc != nil {
		return m.listAvailableFunc(ctx, ambassadorID)
	}
	return []*model.Mission{}, nil
}

func (m *mockMissionService) History(ctx context.Context, ambassadorID string) ([]*model.Mission, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx, ambassadorID)
	}
	return []*model.Mission{}, nil
}

func (m *mockMissionService) Complete(ctx context.Context, ambassadorID, missionID, proof string) (*service.CompletionResult, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, ambassadorID, missionID, proof)
	}
	return nil, service.ErrMissionNotFound
}

func (m *mockMissionService) Create(ctx context.Context, req model.MissionRequest) (*model.Mission, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockMissionService) Update(ctx context.Context, id string, req model.MissionRequest) (*model.Mission, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, req)
	}
	return nil, service.ErrMissionNotFound
}

func (m *mockMissionService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockResourceService struct {
	listFunc     func(ctx context.Context, ambassadorID string) ([]*model.Resource, error)
	getFunc      func(ctx context.Context, ambassadorID, id string) (*model.Resource, error)
	completeFunc func(ctx context.Context, ambassadorID, id string) (int, error)
	createFunc   func(ctx context.Context, req model.ResourceRequest) (*model.Resource, error)
	updateFunc   func(ctx context.Context, id string, req model.ResourceRequest) (*model.Resource, error)
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockResourceService) List(ctx context.Context, ambassadorID string) ([]*model.Resource, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, ambassadorID)
	}
	return []*model.Resource{}, nil
}

func (m *mockResourceService) Get(ctx context.Context, ambassadorID, id string) (*model.Resource, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, ambassadorID, id)
	}
	return nil, service.ErrResourceNotFound
}

func (m *mockResourceService) Complete(ctx context.Context, ambassadorID, id string) (int, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, ambassadorID, id)
	}
	return 0, service.ErrResourceNotFound
}

func (m *mockResourceService) Create(ctx context.Context, req model.ResourceRequest) (*model.Resource, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockResourceService) Update(ctx context.Context, id string, req model.ResourceRequest) (*model.Resource, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, req)
	}
	return nil, service.ErrResourceNotFound
}

func (m *mockResourceService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockAdminService struct {
	promoteFunc      func(ctx context.Context, adminID, id string, level model.Level) (*model.Ambassador, error)
	creditPointsFunc func(ctx context.Context, adminID, id string, points int, reason string) (*model.Ambassador, error)
	awardBadgeFunc   func(ctx context.Context, adminID, id, description string) (*model.Ambassador, error)
	setActiveFunc    func(ctx context.Context, adminID, id string, active bool) (*model.Ambassador, error)
}

func (m *mockAdminService) Promote(ctx context.Context, adminID, id string, level model.Level) (*model.Ambassador, error) {
	if m.promoteFunc != nil {
		return m.promoteFunc(ctx, adminID, id, level)
	}
	return nil, service.ErrAmbassadorNotFound
}

func (m *mockAdminService) CreditPoints(ctx context.Context, adminID, id string, points int, reason string) (*model.Ambassador, error) {
	if m.creditPointsFunc != nil {
		return m.creditPointsFunc(ctx, adminID, id, points, reason)
	}
	return nil, service.ErrAmbassadorNotFound
}

func (m *mockAdminService) AwardBadge(ctx context.Context, adminID, id, description string) (*model.Ambassador, error) {
	if m.awardBadgeFunc != nil {
		return m.awardBadgeFunc(ctx, adminID, id, description)
	}
	return nil, service.ErrAmbassadorNotFound
}

func (m *mockAdminService) SetActive(ctx context.Context, adminID, id string, active bool) (*model.Ambassador, error) {
	if m.setActiveFunc != nil {
		return m.setActiveFunc(ctx, adminID, id, active)
	}
	return nil, service.ErrAmbassadorNotFound
}

// ============================================================================
// Test Helpers
// ============================================================================

func newTestAmbassador() *model.Ambassador {
	now := time.Now().UTC()
	return &model.Ambassador{
		ID:                 "ambassador:alice",
		Name:               "Alice",
		Email:              "alice@example.com",
		Hash:               "$2a$12$secret",
		Level:              model.LevelBronze,
		Role:               model.RoleUser,
		Active:             true,
		ReferralCode:       "AMB-0A1B2C3D",
		Referrals:          []string{},
		CompletedMissions:  []string{},
		CompletedResources: []string{},
		Rewards:            []model.Reward{},
		CreatedOn:          now,
		UpdatedOn:          now,
	}
}

func newTestMission() *model.Mission {
	now := time.Now().UTC()
	return &model.Mission{
		ID:            "mission:m1",
		Title:         "Share a post",
		Description:   "Share the launch post",
		Kind:          model.MissionWeekly,
		PointsReward:  50,
		TokenReward:   decimal.NewFromInt(10),
		Criteria:      []string{},
		RequiredLevel: model.LevelAny,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		Status:        model.MissionStatusActive,
		Links:         []model.MissionLink{},
		Completions:   []model.Completion{},
	}
}

func makeJSONRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if raw, ok := body.(string); ok {
		buf.WriteString(raw)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withAmbassador attaches the caller the way the Auth middleware does
func withAmbassador(req *http.Request, a *model.Ambassador) *http.Request {
	return req.WithContext(middleware.WithAmbassador(req.Context(), a))
}

// withID sets the chi {id} route parameter
func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func parseErrorResponse(t *testing.T, rr *httptest.ResponseRecorder) *model.ProblemDetails {
	t.Helper()
	var problem model.ProblemDetails
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem), "body: %s", rr.Body.String())
	return &problem
}
