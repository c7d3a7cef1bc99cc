package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode is the numeric "code" extension member of a problem response
type ErrorCode int

const (
	// Authentication (1xxx)
	ErrCodeUnauthorized ErrorCode = 1001
	ErrCodeTokenExpired ErrorCode = 1002
	ErrCodeTokenInvalid ErrorCode = 1003
	ErrCodeLoginFailed  ErrorCode = 1004

	// Authorization (2xxx)
	ErrCodeForbidden ErrorCode = 2001

	// Resource state (3xxx)
	ErrCodeNotFound         ErrorCode = 3001
	ErrCodeAlreadyExists    ErrorCode = 3002
	ErrCodeUnavailable      ErrorCode = 3004
	ErrCodeAlreadyCompleted ErrorCode = 3005

	// Request (4xxx)
	ErrCodeValidation       ErrorCode = 4001
	ErrCodeInvalidInput     ErrorCode = 4002
	ErrCodeMethodNotAllowed ErrorCode = 4005
	ErrCodeRateLimited      ErrorCode = 4029

	// Server (5xxx)
	ErrCodeInternal ErrorCode = 5001
)

// problemTypeBase prefixes every problem "type" URI
const problemTypeBase = "https://api.ambassador.mfai.dev/errors/"

// ProblemDetails is an RFC 9457 problem response with a numeric code
// extension and optional per-field errors.
type ProblemDetails struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
	Code     ErrorCode    `json:"code,omitempty"`
}

// FieldError names one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

// WriteJSON writes p as application/problem+json with p.Status
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func newProblem(kind, title string, status int, code ErrorCode, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + kind,
		Title:  title,
		Status: status,
		Detail: detail,
		Code:   code,
	}
}

func NewUnauthorizedError(detail string) *ProblemDetails {
	return newProblem("unauthorized", "Unauthorized", http.StatusUnauthorized, ErrCodeUnauthorized, detail)
}

// NewTokenExpiredError is the 401 for a bearer token past its exp claim
func NewTokenExpiredError() *ProblemDetails {
	return newProblem("token-expired", "Unauthorized", http.StatusUnauthorized, ErrCodeTokenExpired, "token expired")
}

// NewTokenInvalidError is the 401 for a malformed or badly signed token
func NewTokenInvalidError(detail string) *ProblemDetails {
	return newProblem("token-invalid", "Unauthorized", http.StatusUnauthorized, ErrCodeTokenInvalid, detail)
}

func NewForbiddenError(detail string) *ProblemDetails {
	return newProblem("forbidden", "Forbidden", http.StatusForbidden, ErrCodeForbidden, detail)
}

// NewLoginFailedError does not say whether the email or the password was
// wrong.
func NewLoginFailedError() *ProblemDetails {
	return newProblem("login-failed", "Bad Request", http.StatusBadRequest, ErrCodeLoginFailed, "invalid email or password")
}

func NewNotFoundError(resource string) *ProblemDetails {
	return newProblem("not-found", "Not Found", http.StatusNotFound, ErrCodeNotFound, resource+" not found")
}

// NewValidationError summarizes the first field error in Detail and lists
// all of them in Errors.
func NewValidationError(errors []FieldError) *ProblemDetails {
	detail := "One or more fields failed validation"
	switch {
	case len(errors) == 1:
		detail = fmt.Sprintf("%s: %s", errors[0].Field, errors[0].Message)
	case len(errors) > 1:
		detail = fmt.Sprintf("%s: %s (and %d more errors)", errors[0].Field, errors[0].Message, len(errors)-1)
	}

	p := newProblem("validation", "Validation Error", http.StatusUnprocessableEntity, ErrCodeValidation, detail)
	p.Errors = errors
	return p
}

// NewAlreadyExistsError reports a uniqueness clash (such as a taken email) as
// a 400 with the Conflict title.
func NewAlreadyExistsError(detail string) *ProblemDetails {
	return newProblem("already-exists", "Conflict", http.StatusBadRequest, ErrCodeAlreadyExists, detail)
}

func NewUnavailableError(detail string) *ProblemDetails {
	return newProblem("unavailable", "Unavailable", http.StatusBadRequest, ErrCodeUnavailable, detail)
}

func NewAlreadyCompletedError(detail string) *ProblemDetails {
	return newProblem("already-completed", "Already Completed", http.StatusBadRequest, ErrCodeAlreadyCompleted, detail)
}

// NewInternalError never exposes the underlying error. An empty detail gets
// a generic message.
func NewInternalError(detail string) *ProblemDetails {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	return newProblem("internal", "Internal Server Error", http.StatusInternalServerError, ErrCodeInternal, detail)
}

func NewBadRequestError(detail string) *ProblemDetails {
	return newProblem("bad-request", "Bad Request", http.StatusBadRequest, ErrCodeInvalidInput, detail)
}

func NewMethodNotAllowedError(method, path string) *ProblemDetails {
	return newProblem("method-not-allowed", "Method Not Allowed", http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed,
		fmt.Sprintf("%s is not supported on %s", method, path))
}

func NewRateLimitError(retryAfter int) *ProblemDetails {
	return newProblem("rate-limited", "Too Many Requests", http.StatusTooManyRequests, ErrCodeRateLimited,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter))
}
