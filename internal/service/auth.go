package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mfai/ambassador/api/internal/database"
	"github.com/mfai/ambassador/api/internal/metrics"
	"github.com/mfai/ambassador/api/internal/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// bcrypt cost factor (10-14 recommended for production)
	bcryptCost = 12

	referralCodePrefix = "AMB"

	minNameLength = 2
)

// AmbassadorRepository defines the interface for ambassador storage
type AmbassadorRepository interface {
	Create(ctx context.Context, a *model.Ambassador, referrerID string) error
	GetByID(ctx context.Context, id string) (*model.Ambassador, error)
	GetByEmail(ctx context.Context, email string) (*model.Ambassador, error)
	GetByReferralCode(ctx context.Context, code string) (*model.Ambassador, error)
	UpdateProfile(ctx context.Context, id, name, email string) error
	TouchLogin(ctx context.Context, id string) error
}

// AuthService handles registration, login and profile operations
type AuthService struct {
	ambassadors  AmbassadorRepository
	tokenService *TokenService
	bcryptCost   int
	adminEmails  map[string]bool

	// dummyHash is compared against when no account matches, so unknown
	// emails cost the same bcrypt work as wrong passwords.
	dummyHash       []byte
	comparePassword func(hash []byte, password string) bool
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	AmbassadorRepo AmbassadorRepository
	TokenService   *TokenService
	BcryptCost     int // Default: 12
	// AdminEmails register with the admin role instead of the user role
	AdminEmails []string
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcryptCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		zap.L().Warn("failed to prepare dummy password hash", zap.Error(err))
	}
	admins := make(map[string]bool, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		admins[normalizeEmail(e)] = true
	}
	return &AuthService{
		ambassadors:     cfg.AmbassadorRepo,
		tokenService:    cfg.TokenService,
		bcryptCost:      cost,
		adminEmails:     admins,
		dummyHash:       dummy,
		comparePassword: checkPassword,
	}
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	Token      string
	ExpiresIn  int
	Ambassador *model.Ambassador
}

// Register creates an ambassador account. A referral code, when given, must
// belong to an existing ambassador, who is credited in the same write.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*AuthResult, error) {
	req.Normalize()
	if err := requireText("name", req.Name, minNameLength); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	existing, err := s.ambassadors.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	var referrer *model.Ambassador
	if code := req.ReferralCode; code != "" {
		referrer, err = s.ambassadors.GetByReferralCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if referrer == nil {
			return nil, newValidationError(model.FieldError{
				Field:   "referral_code",
				Message: ErrInvalidReferralCode.Error(),
			})
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	a := &model.Ambassador{
		Name:         req.Name,
		Email:        email,
		Hash:         string(hash),
		Level:        model.LevelBronze,
		Role:         model.RoleUser,
		ReferralCode: newReferralCode(),
	}
	if s.adminEmails[email] {
		a.Role = model.RoleAdmin
	}

	referrerID := ""
	if referrer != nil {
		referrerID = referrer.ID
		a.ReferredBy = &referrerID
	}

	if err := s.ambassadors.Create(ctx, a, referrerID); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	token, err := s.tokenService.Issue(a)
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.Inc()
	zap.L().Info("ambassador registered",
		zap.String("ambassador_id", a.ID),
		zap.Bool("referred", referrerID != ""),
		zap.String("role", string(a.Role)),
	)

	return &AuthResult{Token: token, ExpiresIn: s.tokenService.ExpiresIn(), Ambassador: a}, nil
}

// Login authenticates with email and password. Unknown emails, wrong
// passwords and disabled accounts all return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*AuthResult, error) {
	a, err := s.ambassadors.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if a == nil || a.Hash == "" {
		s.comparePassword(s.dummyHash, req.Password)
		return nil, ErrInvalidCredentials
	}
	if !s.comparePassword([]byte(a.Hash), req.Password) || !a.Active {
		return nil, ErrInvalidCredentials
	}

	if err := s.ambassadors.TouchLogin(ctx, a.ID); err != nil {
		zap.L().Warn("failed to record login", zap.String("ambassador_id", a.ID), zap.Error(err))
	}

	token, err := s.tokenService.Issue(a)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresIn: s.tokenService.ExpiresIn(), Ambassador: a}, nil
}

// GetProfile returns the ambassador's profile
func (s *AuthService) GetProfile(ctx context.Context, ambassadorID string) (*model.Ambassador, error) {
	a, err := s.ambassadors.GetByID(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAmbassadorNotFound
	}
	return a, nil
}

// UpdateProfile changes the name and/or email of an ambassador
func (s *AuthService) UpdateProfile(ctx context.Context, ambassadorID string, req model.UpdateProfileRequest) (*model.Ambassador, error) {
	a, err := s.GetProfile(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}

	name := a.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if err := requireText("name", name, minNameLength); err != nil {
			return nil, err
		}
	}

	email := a.Email
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
	}

	if email != a.Email {
		other, err := s.ambassadors.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != a.ID {
			return nil, ErrEmailAlreadyExists
		}
	}

	if err := s.ambassadors.UpdateProfile(ctx, a.ID, name, email); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return s.GetProfile(ctx, a.ID)
}

// Statistics returns the counters and reward history of an ambassador
func (s *AuthService) Statistics(ctx context.Context, ambassadorID string) (*model.StatisticsResponse, error) {
	a, err := s.GetProfile(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}
	return &model.StatisticsResponse{
		Statistics: a.Statistics,
		Points:     a.Points,
		Rewards:    a.Rewards,
		Level:      a.Level,
	}, nil
}

// Helper functions

func checkPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newReferralCode returns a short shareable code such as AMB-1F3A9C2B
func newReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return referralCodePrefix + "-" + strings.ToUpper(raw[:8])
}
