package service

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mfai/ambassador/api/internal/model"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailAlreadyExists  = errors.New("email already registered")
	ErrAmbassadorNotFound  = errors.New("ambassador not found")
	ErrInvalidReferralCode = errors.New("referral code does not exist")
)

// ===== Mission Errors =====
var (
	ErrMissionNotFound         = errors.New("mission not found")
	ErrMissionUnavailable      = errors.New("mission is not available")
	ErrMissionAlreadyCompleted = errors.New("mission already completed")
	ErrProofRequired           = errors.New("proof of completion is required")
)

// ===== Resource Errors =====
var (
	ErrResourceNotFound         = errors.New("resource not found")
	ErrResourceForbidden        = errors.New("resource requires a different level")
	ErrResourceAlreadyCompleted = errors.New("resource already completed")
)

// ===== Administration Errors =====
var (
	ErrInvalidPromotion = errors.New("promotion must raise the level")
)

// ValidationError carries field-level problems found by a service
type ValidationError struct {
	Fields []model.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields[0].Field + " " + e.Fields[0].Message
}

func newValidationError(fields ...model.FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// requireText rejects a trimmed value shorter than min characters
func requireText(field, value string, min int) error {
	switch n := utf8.RuneCountInString(value); {
	case n == 0:
		return newValidationError(model.FieldError{Field: field, Message: "is required"})
	case n < min:
		return newValidationError(model.FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters", min),
		})
	}
	return nil
}
