package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfai/ambassador/api/internal/database"
	"github.com/mfai/ambassador/api/internal/model"
)

// ResourceRepository handles resource data access
type ResourceRepository struct {
	db database.Database
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db database.Database) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts a new resource
func (r *ResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	query := `
		CREATE resource CONTENT {
			title: $title,
			slug: $slug,
			description: $description,
			kind: $kind,
			content: $content,
			required_level: $required_level,
			points_reward: $points_reward,
			tags: $tags,
			media_url: $media_url,
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	result, err := r.db.Query(ctx, query, resourceVars(res))
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: slug %q already exists", database.ErrDuplicate, res.Slug)
		}
		return fmt.Errorf("creating resource: %w", err)
	}

	records := statementRecords(result, 0)
	if len(records) == 0 {
		return errors.New("creating resource: no result returned")
	}
	*res = *parseResource(records[0])
	return nil
}

// GetByID retrieves a resource by ID, or nil when it does not exist
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	data, err := firstRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseResource(data), nil
}

// Update replaces the editable fields of a resource. The slug is kept.
// Returns nil when the resource does not exist.
func (r *ResourceRepository) Update(ctx context.Context, res *model.Resource) (*model.Resource, error) {
	query := `
		UPDATE type::record($id) SET
			title = $title,
			description = $description,
			kind = $kind,
			content = $content,
			required_level = $required_level,
			points_reward = $points_reward,
			tags = $tags,
			media_url = $media_url,
			updated_on = time::now()
		WHERE id != NONE
		RETURN AFTER
	`
	vars := resourceVars(res)
	vars["id"] = res.ID

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("updating resource: %w", err)
	}

	records := statementRecords(result, 0)
	if len(records) == 0 {
		return nil, nil
	}
	return parseResource(records[0]), nil
}

// Delete removes a resource. Returns database.ErrNotFound when it does not exist.
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id) RETURN BEFORE`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return fmt.Errorf("deleting resource: %w", err)
	}
	if len(statementRecords(result, 0)) == 0 {
		return database.ErrNotFound
	}
	return nil
}

// ListForLevel returns resources open to level, newest first
func (r *ResourceRepository) ListForLevel(ctx context.Context, level model.Level) ([]*model.Resource, error) {
	query := `
		SELECT * FROM resource
		WHERE required_level IN $levels
		ORDER BY created_on DESC
	`
	vars := map[string]interface{}{
		"levels": []string{string(model.LevelAny), string(level)},
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}

	records := statementRecords(result, 0)
	resources := make([]*model.Resource, 0, len(records))
	for _, rec := range records {
		resources = append(resources, parseResource(rec))
	}
	return resources, nil
}

// Complete appends the resource to the ambassador's history and credits
// points in one transaction, aborting with ErrAlreadyCompleted on a repeat.
func (r *ResourceRepository) Complete(ctx context.Context, resourceID, ambassadorID string, points int) error {
	tb := database.NewTxBuilder()
	tb.Guard(
		"(SELECT VALUE completed_resources FROM ONLY type::record($ambassador)) CONTAINS $resource",
		"resource "+completedGuard,
		map[string]interface{}{
			"ambassador": ambassadorID,
			"resource":   resourceID,
		},
	)

	set := "completed_resources += $resource, updated_on = time::now()"
	vars := map[string]interface{}{
		"ambassador": ambassadorID,
		"resource":   resourceID,
	}
	if points > 0 {
		set += ", points += $points"
		vars["points"] = points
	}
	tb.Add("UPDATE type::record($ambassador) SET "+set, vars)

	return executeCompletion(ctx, r.db, tb)
}

func resourceVars(res *model.Resource) map[string]interface{} {
	tags := res.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]interface{}{
		"title":          res.Title,
		"slug":           res.Slug,
		"description":    res.Description,
		"kind":           string(res.Kind),
		"content":        res.Content,
		"required_level": string(res.RequiredLevel),
		"points_reward":  res.PointsReward,
		"tags":           tags,
		"media_url":      ptrToNone(res.MediaURL),
	}
}

func parseResource(data map[string]interface{}) *model.Resource {
	return &model.Resource{
		ID:            convertSurrealID(data["id"]),
		Title:         getString(data, "title"),
		Slug:          getString(data, "slug"),
		Description:   getString(data, "description"),
		Kind:          model.ResourceKind(getString(data, "kind")),
		Content:       getString(data, "content"),
		RequiredLevel: model.Level(getString(data, "required_level")),
		PointsReward:  getInt(data, "points_reward"),
		Tags:          getStringSlice(data, "tags"),
		MediaURL:      getStringPtr(data, "media_url"),
		CreatedOn:     getTimeValue(data, "created_on"),
		UpdatedOn:     getTimeValue(data, "updated_on"),
	}
}
