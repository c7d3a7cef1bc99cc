package service

import (
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/pkg/jwt"
)

// TokenService issues and validates bearer tokens. There is no refresh
// token; clients log in again once a token expires.
type TokenService struct {
	jwtService *jwt.Service
}

// NewTokenService creates a new token service
func NewTokenService(jwtService *jwt.Service) *TokenService {
	return &TokenService{jwtService: jwtService}
}

// Issue signs a token for the ambassador
func (s *TokenService) Issue(a *model.Ambassador) (string, error) {
	return s.jwtService.Sign(jwt.Claims{
		AmbassadorID: a.ID,
		Role:         string(a.Role),
	})
}

// ValidateAccessToken verifies a token and returns its claims
func (s *TokenService) ValidateAccessToken(token string) (*jwt.Claims, error) {
	return s.jwtService.Validate(token)
}

// ExpiresIn returns the token lifetime in seconds
func (s *TokenService) ExpiresIn() int {
	return int(s.jwtService.GetExpiration().Seconds())
}
