package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MissionKind is the cadence of a mission
type MissionKind string

const (
	MissionDaily   MissionKind = "Daily"
	MissionWeekly  MissionKind = "Weekly"
	MissionMonthly MissionKind = "Monthly"
	MissionSpecial MissionKind = "Special"
)

// MissionStatus is the administrative state of a mission
type MissionStatus string

const (
	MissionStatusActive    MissionStatus = "Active"
	MissionStatusPending   MissionStatus = "Pending"
	MissionStatusCompleted MissionStatus = "Completed"
	MissionStatusExpired   MissionStatus = "Expired"
)

// MissionLink points at supporting material for a mission
type MissionLink struct {
	Kind        string `json:"kind" validate:"required,max=50"`
	Description string `json:"description,omitempty" validate:"max=500"`
	URL         string `json:"url" validate:"required,url"`
}

// Completion records that an ambassador finished a mission
type Completion struct {
	Ambassador  string    `json:"ambassador"`
	CompletedOn time.Time `json:"completed_on"`
	Proof       string    `json:"proof"`
}

// Mission is a time-bounded, level-gated task
type Mission struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Kind          MissionKind     `json:"kind"`
	PointsReward  int             `json:"points_reward"`
	TokenReward   decimal.Decimal `json:"token_reward"`
	Criteria      []string        `json:"criteria"`
	RequiredLevel Level           `json:"required_level"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Status        MissionStatus   `json:"status"`
	Links         []MissionLink   `json:"links"`
	Completions   []Completion    `json:"completions"`
	CreatedOn     time.Time       `json:"created_on"`
	UpdatedOn     time.Time       `json:"updated_on"`
}

// IsActive reports whether the mission is Active and now falls inside its
// window, both ends inclusive.
func (m *Mission) IsActive(now time.Time) bool {
	return m.Status == MissionStatusActive &&
		!now.Before(m.StartDate) &&
		!now.After(m.EndDate)
}

// IsAvailableTo reports whether an ambassador at level may complete the mission now
func (m *Mission) IsAvailableTo(level Level, now time.Time) bool {
	return m.IsActive(now) && m.RequiredLevel.Admits(level)
}

// CompletionFor returns the ambassador's completion record, or nil
func (m *Mission) CompletionFor(ambassadorID string) *Completion {
	for i := range m.Completions {
		if m.Completions[i].Ambassador == ambassadorID {
			return &m.Completions[i]
		}
	}
	return nil
}

// HasCompletion reports whether the ambassador already completed the mission
func (m *Mission) HasCompletion(ambassadorID string) bool {
	return m.CompletionFor(ambassadorID) != nil
}

// MissionRequest creates or fully replaces a mission
type MissionRequest struct {
	Title         string          `json:"title" validate:"required,max=200"`
	Description   string          `json:"description" validate:"required,max=5000"`
	Kind          MissionKind     `json:"kind" validate:"required,oneof=Daily Weekly Monthly Special"`
	PointsReward  int             `json:"points_reward" validate:"gte=0"`
	TokenReward   decimal.Decimal `json:"token_reward"`
	Criteria      []string        `json:"criteria" validate:"max=50,dive,required,max=500"`
	RequiredLevel Level           `json:"required_level" validate:"omitempty,oneof=Any Bronze Silver Gold Platinum"`
	StartDate     time.Time       `json:"start_date" validate:"required"`
	EndDate       time.Time       `json:"end_date" validate:"required"`
	Status        MissionStatus   `json:"status" validate:"omitempty,oneof=Active Pending Completed Expired"`
	Links         []MissionLink   `json:"links" validate:"max=20,dive"`
}

// Validate checks the rules struct tags cannot express
func (r *MissionRequest) Validate() []FieldError {
	var errors []FieldError
	if r.TokenReward.IsNegative() {
		errors = append(errors, FieldError{Field: "token_reward", Message: "must not be negative"})
	}
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		errors = append(errors, FieldError{Field: "end_date", Message: "must not be before start_date"})
	}
	return errors
}

// Normalize trims the title and description
func (r *MissionRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

// ApplyDefaults fills optional fields left empty
func (r *MissionRequest) ApplyDefaults() {
	if r.RequiredLevel == "" {
		r.RequiredLevel = LevelAny
	}
	if r.Status == "" {
		r.Status = MissionStatusActive
	}
	if r.Criteria == nil {
		r.Criteria = []string{}
	}
	if r.Links == nil {
		r.Links = []MissionLink{}
	}
}

// CompleteMissionRequest carries the proof of completion
type CompleteMissionRequest struct {
	Proof string `json:"proof"`
}

// MissionReward is what a completion credited
type MissionReward struct {
	Points int             `json:"points"`
	Tokens decimal.Decimal `json:"tokens"`
}

// CompleteMissionResponse is returned after a successful completion
type CompleteMissionResponse struct {
	Message string        `json:"message"`
	Mission *Mission      `json:"mission"`
	Reward  MissionReward `json:"reward"`
}

// MessageResponse is a bare confirmation
type MessageResponse struct {
	Message string `json:"message"`
}
