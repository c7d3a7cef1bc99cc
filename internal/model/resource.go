package model

import (
	"strings"
	"time"
)

// ResourceKind classifies learning material
type ResourceKind string

const (
	ResourceTraining ResourceKind = "Training"
	ResourceDocument ResourceKind = "Document"
	ResourceVideo    ResourceKind = "Video"
	ResourceGuide    ResourceKind = "Guide"
)

// Resource is level-gated content that credits points on first completion
type Resource struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Description   string       `json:"description"`
	Kind          ResourceKind `json:"kind"`
	Content       string       `json:"content"`
	RequiredLevel Level        `json:"required_level"`
	PointsReward  int          `json:"points_reward"`
	Tags          []string     `json:"tags"`
	MediaURL      *string      `json:"media_url,omitempty"`
	CreatedOn     time.Time    `json:"created_on"`
	UpdatedOn     time.Time    `json:"updated_on"`
}

// IsAvailableTo reports whether an ambassador at level may open the resource
func (r *Resource) IsAvailableTo(level Level) bool {
	return r.RequiredLevel.Admits(level)
}

// ResourceRequest creates or fully replaces a resource
type ResourceRequest struct {
	Title         string       `json:"title" validate:"required,max=200"`
	Description   string       `json:"description" validate:"required,max=5000"`
	Kind          ResourceKind `json:"kind" validate:"required,oneof=Training Document Video Guide"`
	Content       string       `json:"content" validate:"required"`
	RequiredLevel Level        `json:"required_level" validate:"omitempty,oneof=Any Bronze Silver Gold Platinum"`
	PointsReward  int          `json:"points_reward" validate:"gte=0"`
	Tags          []string     `json:"tags" validate:"max=30,dive,required,max=50"`
	MediaURL      *string      `json:"media_url,omitempty" validate:"omitempty,url"`
}

// Normalize trims the title and description
func (r *ResourceRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

// ApplyDefaults fills optional fields left empty
func (r *ResourceRequest) ApplyDefaults() {
	if r.RequiredLevel == "" {
		r.RequiredLevel = LevelAny
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
}

// CompleteResourceResponse confirms a resource completion
type CompleteResourceResponse struct {
	Message string `json:"message"`
	Points  int    `json:"points"`
}
