package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/pkg/jwt"
	"go.uber.org/zap"
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// AmbassadorLookup resolves the ambassador named by a token
type AmbassadorLookup interface {
	GetByID(ctx context.Context, id string) (*model.Ambassador, error)
}

const (
	AmbassadorIDKey contextKey = "ambassadorID"
	AmbassadorKey   contextKey = "ambassador"
)

// Auth returns a middleware that requires a valid bearer token belonging to
// an existing, active ambassador. Every request is verified again; nothing
// is cached between requests.
func Auth(tokens TokenValidator, ambassadors AmbassadorLookup) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				model.NewUnauthorizedError("missing authorization header").WriteJSON(w)
				return
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				model.NewUnauthorizedError("invalid authorization header format").WriteJSON(w)
				return
			}

			claims, err := tokens.ValidateAccessToken(strings.TrimSpace(parts[1]))
			if err != nil {
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					model.NewTokenExpiredError().WriteJSON(w)
				case errors.Is(err, jwt.ErrInvalidSignature):
					model.NewTokenInvalidError("invalid token signature").WriteJSON(w)
				default:
					model.NewTokenInvalidError("invalid token").WriteJSON(w)
				}
				return
			}

			a, err := ambassadors.GetByID(r.Context(), claims.AmbassadorID)
			if err != nil {
				zap.L().Error("auth lookup failed",
					zap.String("ambassador_id", claims.AmbassadorID),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err),
				)
				model.NewInternalError("").WriteJSON(w)
				return
			}
			if a == nil {
				model.NewUnauthorizedError("ambassador not found").WriteJSON(w)
				return
			}
			if !a.Active {
				model.NewUnauthorizedError("account disabled").WriteJSON(w)
				return
			}

			ctx := context.WithValue(r.Context(), AmbassadorIDKey, a.ID)
			ctx = context.WithValue(ctx, AmbassadorKey, a)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects ambassadors without the admin role. It must run after Auth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := GetAmbassador(r.Context())
		if a == nil {
			model.NewUnauthorizedError("authentication required").WriteJSON(w)
			return
		}
		if !a.IsAdmin() {
			model.NewForbiddenError("admin role required").WriteJSON(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetAmbassadorID extracts the authenticated ambassador's ID from context
func GetAmbassadorID(ctx context.Context) string {
	if id, ok := ctx.Value(AmbassadorIDKey).(string); ok {
		return id
	}
	return ""
}

// GetAmbassador extracts the authenticated ambassador from context
func GetAmbassador(ctx context.Context) *model.Ambassador {
	if a, ok := ctx.Value(AmbassadorKey).(*model.Ambassador); ok {
		return a
	}
	return nil
}

// WithAmbassador returns a context carrying a, as Auth would set it
func WithAmbassador(ctx context.Context, a *model.Ambassador) context.Context {
	ctx = context.WithValue(ctx, AmbassadorIDKey, a.ID)
	return context.WithValue(ctx, AmbassadorKey, a)
}
