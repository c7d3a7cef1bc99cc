package handler

import (
	"errors"
	"net/http"

	"github.com/mfai/ambassador/api/internal/middleware"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/internal/service"
	"go.uber.org/zap"
)

// MapServiceError converts a service error to a ProblemDetails response.
// Anything unrecognised becomes a 500 with a generic detail.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return model.NewValidationError(verr.Fields)
	}

	switch {
	// ===== Authentication → 400 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewLoginFailedError()
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return model.NewAlreadyExistsError(err.Error())

	// ===== Not Found → 404 =====
	case errors.Is(err, service.ErrAmbassadorNotFound):
		return model.NewNotFoundError("ambassador")
	case errors.Is(err, service.ErrMissionNotFound):
		return model.NewNotFoundError("mission")
	case errors.Is(err, service.ErrResourceNotFound):
		return model.NewNotFoundError("resource")

	// ===== Completion state → 400 =====
	case errors.Is(err, service.ErrMissionUnavailable):
		return model.NewUnavailableError(err.Error())
	case errors.Is(err, service.ErrMissionAlreadyCompleted),
		errors.Is(err, service.ErrResourceAlreadyCompleted):
		return model.NewAlreadyCompletedError(err.Error())

	// ===== Level gate → 403 =====
	case errors.Is(err, service.ErrResourceForbidden):
		return model.NewForbiddenError(err.Error())

	// ===== Validation → 422 =====
	case errors.Is(err, service.ErrProofRequired):
		return model.NewValidationError([]model.FieldError{{Field: "proof", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidReferralCode):
		return model.NewValidationError([]model.FieldError{{Field: "referral_code", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidPromotion):
		return model.NewValidationError([]model.FieldError{{Field: "level", Message: err.Error()}})

	default:
		return model.NewInternalError("")
	}
}

// writeServiceError maps err and logs the ones that end up as 500s
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	pd := MapServiceError(err)
	if pd.Status >= http.StatusInternalServerError {
		zap.L().Error(operation+" failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}
	WriteError(w, pd)
}
