package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// MissionRequest Tests
// ============================================================================

func validMissionRequest() *MissionRequest {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &MissionRequest{
		Title:        "Share the launch post",
		Description:  "Post about the launch on a social network",
		Kind:         MissionWeekly,
		PointsReward: 50,
		TokenReward:  decimal.NewFromInt(10),
		StartDate:    start,
		EndDate:      start.Add(7 * 24 * time.Hour),
	}
}

func TestMissionRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	if errors := validMissionRequest().Validate(); len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestMissionRequest_Validate_EndBeforeStart(t *testing.T) {
	t.Parallel()

	req := validMissionRequest()
	req.EndDate = req.StartDate.Add(-time.Hour)

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "end_date" {
		t.Errorf("expected end_date error, got %v", errors)
	}
}

func TestMissionRequest_Validate_SameStartAndEnd(t *testing.T) {
	t.Parallel()

	req := validMissionRequest()
	req.EndDate = req.StartDate

	if errors := req.Validate(); len(errors) > 0 {
		t.Errorf("expected a zero-length window to be accepted, got %v", errors)
	}
}

func TestMissionRequest_Validate_NegativeTokens(t *testing.T) {
	t.Parallel()

	req := validMissionRequest()
	req.TokenReward = decimal.NewFromInt(-1)

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "token_reward" {
		t.Errorf("expected token_reward error, got %v", errors)
	}
}

func TestMissionRequest_ApplyDefaults(t *testing.T) {
	t.Parallel()

	req := validMissionRequest()
	req.ApplyDefaults()

	if req.RequiredLevel != LevelAny {
		t.Errorf("expected required level Any, got %q", req.RequiredLevel)
	}
	if req.Status != MissionStatusActive {
		t.Errorf("expected status Active, got %q", req.Status)
	}
	if req.Criteria == nil || req.Links == nil {
		t.Error("expected empty slices instead of nil")
	}
}

func TestMissionRequest_ApplyDefaults_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	req := validMissionRequest()
	req.RequiredLevel = LevelGold
	req.Status = MissionStatusPending
	req.ApplyDefaults()

	if req.RequiredLevel != LevelGold {
		t.Errorf("expected required level Gold, got %q", req.RequiredLevel)
	}
	if req.Status != MissionStatusPending {
		t.Errorf("expected status Pending, got %q", req.Status)
	}
}

// ============================================================================
// ResourceRequest Tests
// ============================================================================

func TestResourceRequest_ApplyDefaults(t *testing.T) {
	t.Parallel()

	req := &ResourceRequest{Title: "Onboarding", Kind: ResourceGuide}
	req.ApplyDefaults()

	if req.RequiredLevel != LevelAny {
		t.Errorf("expected required level Any, got %q", req.RequiredLevel)
	}
	if req.Tags == nil {
		t.Error("expected empty tags instead of nil")
	}
}
