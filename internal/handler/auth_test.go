package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Register
// ============================================================================

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	a := newTestAmbassador()
	var got model.RegisterRequest
	h := NewAuthHandler(&mockAuthService{
		registerFunc: func(ctx context.Context, req model.RegisterRequest) (*service.AuthResult, error) {
			got = req
			return &service.AuthResult{Token: "tok", Ambassador: a}, nil
		},
	})

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"name":          "Alice",
		"email":         "alice@example.com",
		"password":      "password123",
		"referral_code": "AMB-12345678",
	}))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "AMB-12345678", got.ReferralCode)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp["token"])
	profile := resp["profile"].(map[string]interface{})
	assert.Equal(t, "ambassador:alice", profile["id"])
	assert.NotContains(t, profile, "hash")
	assert.NotContains(t, rr.Body.String(), "$2a$")
}

func TestRegister_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"short name", map[string]string{"name": "A", "email": "a@b.co", "password": "password123"}, "name"},
		{"bad email", map[string]string{"name": "Alice", "email": "nope", "password": "password123"}, "email"},
		{"short password", map[string]string{"name": "Alice", "email": "a@b.co", "password": "short"}, "password"},
		{"missing email", map[string]string{"name": "Alice", "password": "password123"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := NewAuthHandler(&mockAuthService{
				registerFunc: func(ctx context.Context, req model.RegisterRequest) (*service.AuthResult, error) {
					called = true
					return nil, nil
				},
			})

			rr := httptest.NewRecorder()
			h.Register(rr, makeJSONRequest(http.MethodPost, "/api/auth/register", tt.body))

			require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			problem := parseErrorResponse(t, rr)
			require.NotEmpty(t, problem.Errors)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
			assert.False(t, called)
		})
	}
}

func TestRegister_EmailTaken_IsConflict400(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{
		registerFunc: func(ctx context.Context, req model.RegisterRequest) (*service.AuthResult, error) {
			return nil, service.ErrEmailAlreadyExists
		},
	})

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "password123",
	}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	problem := parseErrorResponse(t, rr)
	assert.Equal(t, "Conflict", problem.Title)
	assert.Equal(t, model.ErrCodeAlreadyExists, problem.Code)
}

func TestRegister_MalformedBody(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{})

	for _, body := range []string{`{"name":`, `{"name":"Alice","unknown":1}`} {
		rr := httptest.NewRecorder()
		h.Register(rr, makeJSONRequest(http.MethodPost, "/api/auth/register", body))
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}

// ============================================================================
// Login
// ============================================================================

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	a := newTestAmbassador()
	h := NewAuthHandler(&mockAuthService{
		loginFunc: func(ctx context.Context, req model.LoginRequest) (*service.AuthResult, error) {
			return &service.AuthResult{Token: "tok", Ambassador: a}, nil
		},
	})

	rr := httptest.NewRecorder()
	h.Login(rr, makeJSONRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "password123",
	}))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, a.ID, resp.Profile.ID)
}

func TestLogin_FailuresShareOneShape(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{
		loginFunc: func(ctx context.Context, req model.LoginRequest) (*service.AuthResult, error) {
			return nil, service.ErrInvalidCredentials
		},
	})

	var bodies []string
	for _, email := range []string{"unknown@example.com", "alice@example.com"} {
		rr := httptest.NewRecorder()
		h.Login(rr, makeJSONRequest(http.MethodPost, "/api/auth/login", map[string]string{
			"email": email, "password": "wrong-password",
		}))
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid email or password", parseErrorResponse(t, rr).Detail)
		bodies = append(bodies, rr.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
}

// ============================================================================
// Profile
// ============================================================================

func TestProfile_RequiresCaller(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{})

	for _, fn := range []http.HandlerFunc{h.Profile, h.UpdateProfile, h.Statistics} {
		rr := httptest.NewRecorder()
		fn(rr, makeJSONRequest(http.MethodGet, "/api/auth/profile", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}
}

func TestProfile_ReturnsCaller(t *testing.T) {
	t.Parallel()
	a := newTestAmbassador()
	h := NewAuthHandler(&mockAuthService{
		getProfileFunc: func(ctx context.Context, id string) (*model.Ambassador, error) {
			assert.Equal(t, a.ID, id)
			return a, nil
		},
	})

	rr := httptest.NewRecorder()
	h.Profile(rr, withAmbassador(makeJSONRequest(http.MethodGet, "/api/auth/profile", nil), a))

	require.Equal(t, http.StatusOK, rr.Code)
	var got model.Ambassador
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, a.Email, got.Email)
	assert.Empty(t, got.Hash)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	a := newTestAmbassador()

	t.Run("success", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{
			updateProfileFunc: func(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.Ambassador, error) {
				require.NotNil(t, req.Name)
				assert.Nil(t, req.Email)
				updated := *a
				updated.Name = *req.Name
				return &updated, nil
			},
		})
		rr := httptest.NewRecorder()
		h.UpdateProfile(rr, withAmbassador(makeJSONRequest(http.MethodPut, "/api/auth/profile", map[string]string{"name": "Alicia"}), a))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp model.ProfileUpdateResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Message)
		assert.Equal(t, "Alicia", resp.Profile.Name)
	})

	t.Run("invalid email", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{})
		rr := httptest.NewRecorder()
		h.UpdateProfile(rr, withAmbassador(makeJSONRequest(http.MethodPut, "/api/auth/profile", map[string]string{"email": "bad"}), a))
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("email taken", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{
			updateProfileFunc: func(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.Ambassador, error) {
				return nil, service.ErrEmailAlreadyExists
			},
		})
		rr := httptest.NewRecorder()
		h.UpdateProfile(rr, withAmbassador(makeJSONRequest(http.MethodPut, "/api/auth/profile", map[string]string{"email": "bob@example.com"}), a))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Conflict", parseErrorResponse(t, rr).Title)
	})

	t.Run("unknown ambassador", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{
			updateProfileFunc: func(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.Ambassador, error) {
				return nil, service.ErrAmbassadorNotFound
			},
		})
		rr := httptest.NewRecorder()
		h.UpdateProfile(rr, withAmbassador(makeJSONRequest(http.MethodPut, "/api/auth/profile", map[string]string{"name": "Alicia"}), a))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestStatistics(t *testing.T) {
	t.Parallel()
	a := newTestAmbassador()

	t.Run("success", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{
			statisticsFunc: func(ctx context.Context, id string) (*model.StatisticsResponse, error) {
				return &model.StatisticsResponse{Points: 120, Level: model.LevelSilver, Rewards: []model.Reward{}}, nil
			},
		})
		rr := httptest.NewRecorder()
		h.Statistics(rr, withAmbassador(makeJSONRequest(http.MethodGet, "/api/auth/statistics", nil), a))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp model.StatisticsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 120, resp.Points)
		assert.Equal(t, model.LevelSilver, resp.Level)
	})

	t.Run("store failure hides detail", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{
			statisticsFunc: func(ctx context.Context, id string) (*model.StatisticsResponse, error) {
				return nil, errors.New("surreal: connection reset")
			},
		})
		rr := httptest.NewRecorder()
		h.Statistics(rr, withAmbassador(makeJSONRequest(http.MethodGet, "/api/auth/statistics", nil), a))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "surreal")
		assert.Equal(t, "An unexpected error occurred", parseErrorResponse(t, rr).Detail)
	})
}
