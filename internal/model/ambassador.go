package model

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Level is an ambassador tier. Content may also require LevelAny.
type Level string

const (
	LevelBronze   Level = "Bronze"
	LevelSilver   Level = "Silver"
	LevelGold     Level = "Gold"
	LevelPlatinum Level = "Platinum"
	LevelAny      Level = "Any" // content only, never held by an ambassador
)

var levelRank = map[Level]int{
	LevelBronze:   1,
	LevelSilver:   2,
	LevelGold:     3,
	LevelPlatinum: 4,
}

// IsValid reports whether l is a level an ambassador can hold
func (l Level) IsValid() bool {
	_, ok := levelRank[l]
	return ok
}

// IsValidRequirement reports whether l can gate content
func (l Level) IsValidRequirement() bool {
	return l == LevelAny || l.IsValid()
}

// Rank orders levels from Bronze (1) to Platinum (4). Unknown levels rank 0.
func (l Level) Rank() int {
	return levelRank[l]
}

// Admits reports whether content requiring l is open to an ambassador at level
func (l Level) Admits(level Level) bool {
	return l == LevelAny || l == level
}

// Role controls access to admin endpoints
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// RewardKind classifies entries in an ambassador's reward history
type RewardKind string

const (
	RewardToken   RewardKind = "Token"
	RewardBadge   RewardKind = "Badge"
	RewardLevelUp RewardKind = "LevelUp"
)

// Reward is one entry of the ordered reward history
type Reward struct {
	Kind        RewardKind      `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

// Statistics holds denormalized counters kept in step with the histories
type Statistics struct {
	ReferralCount     int             `json:"referral_count"`
	TotalTokenRevenue decimal.Decimal `json:"total_token_revenue"`
	MissionsCompleted int             `json:"missions_completed"`
}

// Ambassador is a registered program participant
type Ambassador struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Hash               string     `json:"-"` // Never expose password hash
	Level              Level      `json:"level"`
	Points             int        `json:"points"`
	Role               Role       `json:"role"`
	Active             bool       `json:"active"`
	ReferralCode       string     `json:"referral_code"`
	ReferredBy         *string    `json:"referred_by,omitempty"`
	Referrals          []string   `json:"referrals"`
	CompletedMissions  []string   `json:"completed_missions"`
	CompletedResources []string   `json:"completed_resources"`
	Rewards            []Reward   `json:"rewards"`
	Statistics         Statistics `json:"statistics"`
	CreatedOn          time.Time  `json:"created_on"`
	UpdatedOn          time.Time  `json:"updated_on"`
	LoginOn            *time.Time `json:"login_on,omitempty"`
}

// IsAdmin returns true if the ambassador has the admin role
func (a *Ambassador) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasCompletedMission reports whether missionID is in the completion history
func (a *Ambassador) HasCompletedMission(missionID string) bool {
	return slices.Contains(a.CompletedMissions, missionID)
}

// HasCompletedResource reports whether resourceID is in the completion history
func (a *Ambassador) HasCompletedResource(resourceID string) bool {
	return slices.Contains(a.CompletedResources, resourceID)
}

// RegisterRequest creates a new ambassador account
type RegisterRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Email        string `json:"email" validate:"required,email,max=254"`
	Password     string `json:"password" validate:"required,min=8,max=128"`
	ReferralCode string `json:"referral_code,omitempty" validate:"omitempty,max=64"`
}

// Normalize trims the text fields so blank values fail validation
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.ReferralCode = strings.TrimSpace(r.ReferralCode)
}

// LoginRequest exchanges credentials for a bearer token
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int         `json:"expires_in"` // seconds
	Profile   *Ambassador `json:"profile"`
}

// UpdateProfileRequest changes the fields that are present
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}

func (r *UpdateProfileRequest) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Email)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// ProfileUpdateResponse wraps the updated profile
type ProfileUpdateResponse struct {
	Message string      `json:"message"`
	Profile *Ambassador `json:"profile"`
}

// StatisticsResponse is the dashboard view of an ambassador
type StatisticsResponse struct {
	Statistics Statistics `json:"statistics"`
	Points     int        `json:"points"`
	Rewards    []Reward   `json:"rewards"`
	Level      Level      `json:"level"`
}

// PromoteRequest moves an ambassador to a higher level
type PromoteRequest struct {
	Level Level `json:"level" validate:"required,oneof=Bronze Silver Gold Platinum"`
}

// CreditPointsRequest grants points outside of a completion
type CreditPointsRequest struct {
	Points int    `json:"points" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"required,max=500"`
}

func (r *CreditPointsRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

// AwardBadgeRequest appends a Badge reward
type AwardBadgeRequest struct {
	Description string `json:"description" validate:"required,max=200"`
}

func (r *AwardBadgeRequest) Normalize() {
	r.Description = strings.TrimSpace(r.Description)
}
