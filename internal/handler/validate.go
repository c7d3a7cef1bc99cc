package handler

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mfai/ambassador/api/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// selfValidator is implemented by requests with cross-field rules
type selfValidator interface {
	Validate() []model.FieldError
}

// normalizer is implemented by requests whose text is trimmed before checks
type normalizer interface {
	Normalize()
}

// validateRequest trims the request if it can be normalized, runs the struct
// tags and then the request's own Validate hook. Field names in the result
// are JSON names.
func validateRequest(req interface{}) []model.FieldError {
	var fields []model.FieldError

	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	if err := validate.Struct(req); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []model.FieldError{{Field: "body", Message: err.Error()}}
		}
		for _, fe := range verrs {
			fields = append(fields, model.FieldError{
				Field:   fieldPath(fe),
				Message: fieldMessage(fe),
			})
		}
	}

	if sv, ok := req.(selfValidator); ok {
		fields = append(fields, sv.Validate()...)
	}
	return fields
}

// decodeAndValidate reads the body into req and writes the 400 or 422 itself
// when the request is unusable.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := DecodeJSON(r, req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return false
	}
	if fields := validateRequest(req); len(fields) > 0 {
		WriteError(w, model.NewValidationError(fields))
		return false
	}
	return true
}

// fieldPath drops the root struct name: "MissionRequest.links[0].url" → "links[0].url"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at most %s items", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
