package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/mfai/ambassador/api/internal/database"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "ambassador-test-secret-0123456789"
	testIssuer = "ambassador-test"
)

// JWTHelper mints bearer tokens that its Service accepts
type JWTHelper struct {
	t       *testing.T
	service *jwt.Service
}

func NewJWTHelper(t *testing.T) *JWTHelper {
	t.Helper()
	return &JWTHelper{
		t:       t,
		service: jwt.NewTestService([]byte(testSecret), testIssuer, time.Hour),
	}
}

// Service is the verifier to hand to the code under test
func (h *JWTHelper) Service() *jwt.Service {
	return h.service
}

// GenerateToken signs a token for a with the service's default lifetime
func (h *JWTHelper) GenerateToken(a *model.Ambassador) string {
	return h.sign(claimsFor(a))
}

// GenerateExpiredToken signs a token for a that expired an hour ago
func (h *JWTHelper) GenerateExpiredToken(a *model.Ambassador) string {
	claims := claimsFor(a)
	claims.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(-time.Hour))
	return h.sign(claims)
}

func (h *JWTHelper) sign(claims jwt.Claims) string {
	h.t.Helper()
	token, err := h.service.Sign(claims)
	require.NoError(h.t, err, "signing test token")
	return token
}

func claimsFor(a *model.Ambassador) jwt.Claims {
	return jwt.Claims{AmbassadorID: a.ID, Role: string(a.Role)}
}

// RequestBuilder assembles an httptest request. A string body is sent as
// is; anything else is JSON encoded.
type RequestBuilder struct {
	t      *testing.T
	method string
	path   string
	body   any
	header http.Header
	token  func() string
}

func NewRequest(t *testing.T, method, path string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{t: t, method: method, path: path, header: make(http.Header)}
}

func (rb *RequestBuilder) WithBody(body any) *RequestBuilder {
	rb.body = body
	return rb
}

func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.header.Set(key, value)
	return rb
}

// WithAuth signs the request as a when it is built
func (rb *RequestBuilder) WithAuth(h *JWTHelper, a *model.Ambassador) *RequestBuilder {
	rb.token = func() string { return h.GenerateToken(a) }
	return rb
}

func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	req := httptest.NewRequest(rb.method, rb.path, rb.bodyReader())
	if rb.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range rb.header {
		req.Header[k] = v
	}
	if rb.token != nil {
		req.Header.Set("Authorization", "Bearer "+rb.token())
	}
	return req
}

func (rb *RequestBuilder) bodyReader() io.Reader {
	switch b := rb.body.(type) {
	case nil:
		return nil
	case string:
		return strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(rb.t, err, "encoding request body")
		return bytes.NewReader(data)
	}
}

// AssertStatus reports a status mismatch along with the response body
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) bool {
	t.Helper()
	return assert.Equal(t, want, rr.Code, "body: %s", rr.Body.String())
}

// Decode unmarshals the response body into a T, failing the test on bad JSON
func Decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

// AssertProblemDetails checks an application/problem+json response. A zero
// code skips the code check.
func AssertProblemDetails(t *testing.T, rr *httptest.ResponseRecorder, status int, code model.ErrorCode) *model.ProblemDetails {
	t.Helper()

	AssertStatus(t, rr, status)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "application/problem+json"),
		"content type %q", rr.Header().Get("Content-Type"))

	problem := Decode[model.ProblemDetails](t, rr)
	assert.Equal(t, status, problem.Status, "problem status")
	if code != 0 {
		assert.Equal(t, code, problem.Code, "problem code")
	}
	return &problem
}

// AssertValidationError checks for a 422 that names field among its errors
func AssertValidationError(t *testing.T, rr *httptest.ResponseRecorder, field string) {
	t.Helper()

	problem := AssertProblemDetails(t, rr, http.StatusUnprocessableEntity, model.ErrCodeValidation)
	fields := make([]string, 0, len(problem.Errors))
	for _, fe := range problem.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, field)
}

// AssertRecordExists checks that a record id such as "mission:abc" resolves
func AssertRecordExists(t *testing.T, db database.Database, id string) {
	t.Helper()
	assert.True(t, recordExists(t, db, id), "record %s should exist", id)
}

func AssertRecordNotExists(t *testing.T, db database.Database, id string) {
	t.Helper()
	assert.False(t, recordExists(t, db, id), "record %s should not exist", id)
}

func recordExists(t *testing.T, db database.Database, id string) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.QueryOne(ctx, "SELECT * FROM type::record($id)", map[string]interface{}{"id": id})
	if err == nil {
		return true
	}
	require.ErrorIs(t, err, database.ErrNotFound, "looking up %s", id)
	return false
}
