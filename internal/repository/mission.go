package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfai/ambassador/api/internal/database"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/shopspring/decimal"
)

// MissionRepository handles mission data access
type MissionRepository struct {
	db database.Database
}

// NewMissionRepository creates a new mission repository
func NewMissionRepository(db database.Database) *MissionRepository {
	return &MissionRepository{db: db}
}

// MissionCompletion describes the credit applied by Complete
type MissionCompletion struct {
	MissionID    string
	MissionTitle string
	AmbassadorID string
	Proof        string
	Points       int
	Tokens       decimal.Decimal
	CompletedOn  time.Time
}

// Create inserts a new mission
func (r *MissionRepository) Create(ctx context.Context, m *model.Mission) error {
	query := `
		CREATE mission CONTENT {
			title: $title,
			description: $description,
			kind: $kind,
			points_reward: $points_reward,
			token_reward: $token_reward,
			criteria: $criteria,
			required_level: $required_level,
			start_date: $start_date,
			end_date: $end_date,
			status: $status,
			links: $links,
			completions: [],
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	result, err := r.db.Query(ctx, query, missionVars(m))
	if err != nil {
		return fmt.Errorf("creating mission: %w", err)
	}

	records := statementRecords(result, 0)
	if len(records) == 0 {
		return errors.New("creating mission: no result returned")
	}
	*m = *parseMission(records[0])
	return nil
}

// GetByID retrieves a mission by ID, or nil when it does not exist
func (r *MissionRepository) GetByID(ctx context.Context, id string) (*model.Mission, error) {
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
	return parseMission(data), nil
}

// Update replaces the editable fields of a mission. Completions are kept.
// Returns nil when the mission does not exist.
func (r *MissionRepository) Update(ctx context.Context, m *model.Mission) (*model.Mission, error) {
	query := `
		UPDATE type::record($id) SET
			title = $title,
			description = $description,
			kind = $kind,
			points_reward = $points_reward,
			token_reward = $token_reward,
			criteria = $criteria,
			required_level = $required_level,
			start_date = $start_date,
			end_date = $end_date,
			status = $status,
			links = $links,
			updated_on = time::now()
		WHERE id != NONE
		RETURN AFTER
	`
	vars := missionVars(m)
	vars["id"] = m.ID

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("updating mission: %w", err)
	}

	records := statementRecords(result, 0)
	if len(records) == 0 {
		return nil, nil
	}
	return parseMission(records[0]), nil
}

// Delete removes a mission. Returns database.ErrNotFound when it does not exist.
func (r *MissionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id) RETURN BEFORE`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return fmt.Errorf("deleting mission: %w", err)
	}
	if len(statementRecords(result, 0)) == 0 {
		return database.ErrNotFound
	}
	return nil
}

// ListAvailable returns Active missions whose window contains now and whose
// level requirement admits level, ending soonest first.
func (r *MissionRepository) ListAvailable(ctx context.Context, level model.Level, now time.Time) ([]*model.Mission, error) {
	query := `
		SELECT * FROM mission
		WHERE status = $status
			AND start_date <= $now
			AND end_date >= $now
			AND required_level IN $levels
		ORDER BY end_date ASC
	`
	vars := map[string]interface{}{
		"status": string(model.MissionStatusActive),
		"now":    datetime(now),
		"levels": []string{string(model.LevelAny), string(level)},
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("listing available missions: %w", err)
	}
	return parseMissions(statementRecords(result, 0)), nil
}

// ListByIDs returns the missions with the given record ids
func (r *MissionRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Mission, error) {
	if len(ids) == 0 {
		return []*model.Mission{}, nil
	}

	records := recordIDs(ids)
	if len(records) == 0 {
		return []*model.Mission{}, nil
	}

	query := `SELECT * FROM mission WHERE id IN $ids ORDER BY updated_on DESC`
	vars := map[string]interface{}{"ids": records}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("listing missions: %w", err)
	}
	return parseMissions(statementRecords(result, 0)), nil
}

// Complete records a completion and credits the ambassador in one transaction.
// The first statement re-checks the completion set so a concurrent duplicate
// aborts the whole batch with ErrAlreadyCompleted.
func (r *MissionRepository) Complete(ctx context.Context, c MissionCompletion) error {
	completedOn := c.CompletedOn
	if completedOn.IsZero() {
		completedOn = time.Now()
	}

	tb := database.NewTxBuilder()
	tb.Guard(
		"(SELECT VALUE completions.ambassador FROM ONLY type::record($mission)) CONTAINS $ambassador",
		"mission "+completedGuard,
		map[string]interface{}{
			"mission":    c.MissionID,
			"ambassador": c.AmbassadorID,
		},
	)
	tb.Add(`
		UPDATE type::record($mission) SET
			completions += $completion,
			updated_on = time::now()
	`, map[string]interface{}{
		"mission": c.MissionID,
		"completion": map[string]interface{}{
			"ambassador":   c.AmbassadorID,
			"completed_on": datetime(completedOn),
			"proof":        c.Proof,
		},
	})
	tb.Add(`
		UPDATE type::record($ambassador) SET
			completed_missions += $mission,
			statistics.missions_completed += 1,
			points += $points,
			updated_on = time::now()
	`, map[string]interface{}{
		"ambassador": c.AmbassadorID,
		"mission":    c.MissionID,
		"points":     c.Points,
	})

	if c.Tokens.IsPositive() {
		tb.Add(`
			UPDATE type::record($ambassador) SET
				rewards += $reward,
				statistics.total_token_revenue += $tokens
		`, map[string]interface{}{
			"ambassador": c.AmbassadorID,
			"tokens":     c.Tokens.InexactFloat64(),
			"reward": rewardDocument(model.Reward{
				Kind:        model.RewardToken,
				Amount:      c.Tokens,
				Date:        completedOn,
				Description: "Reward for mission: " + c.MissionTitle,
			}),
		})
	}

	return executeCompletion(ctx, r.db, tb)
}

// ExpireOverdue moves Active missions whose end_date has passed to Expired
// and returns how many were changed.
func (r *MissionRepository) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	query := `
		UPDATE mission SET
			status = $expired,
			updated_on = time::now()
		WHERE status = $active AND end_date < $now
		RETURN AFTER
	`
	vars := map[string]interface{}{
		"expired": string(model.MissionStatusExpired),
		"active":  string(model.MissionStatusActive),
		"now":     datetime(now),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return 0, fmt.Errorf("expiring missions: %w", err)
	}
	return len(statementRecords(result, 0)), nil
}

func missionVars(m *model.Mission) map[string]interface{} {
	criteria := m.Criteria
	if criteria == nil {
		criteria = []string{}
	}

	links := make([]map[string]interface{}, 0, len(m.Links))
	for _, l := range m.Links {
		links = append(links, map[string]interface{}{
			"kind":        l.Kind,
			"description": l.Description,
			"url":         l.URL,
		})
	}

	return map[string]interface{}{
		"title":          m.Title,
		"description":    m.Description,
		"kind":           string(m.Kind),
		"points_reward":  m.PointsReward,
		"token_reward":   m.TokenReward.InexactFloat64(),
		"criteria":       criteria,
		"required_level": string(m.RequiredLevel),
		"start_date":     datetime(m.StartDate),
		"end_date":       datetime(m.EndDate),
		"status":         string(m.Status),
		"links":          links,
	}
}

func parseMissions(records []map[string]interface{}) []*model.Mission {
	missions := make([]*model.Mission, 0, len(records))
	for _, rec := range records {
		missions = append(missions, parseMission(rec))
	}
	return missions
}

func parseMission(data map[string]interface{}) *model.Mission {
	m := &model.Mission{
		ID:            convertSurrealID(data["id"]),
		Title:         getString(data, "title"),
		Description:   getString(data, "description"),
		Kind:          model.MissionKind(getString(data, "kind")),
		PointsReward:  getInt(data, "points_reward"),
		TokenReward:   getDecimal(data, "token_reward"),
		Criteria:      getStringSlice(data, "criteria"),
		RequiredLevel: model.Level(getString(data, "required_level")),
		StartDate:     getTimeValue(data, "start_date"),
		EndDate:       getTimeValue(data, "end_date"),
		Status:        model.MissionStatus(getString(data, "status")),
		Links:         []model.MissionLink{},
		Completions:   []model.Completion{},
		CreatedOn:     getTimeValue(data, "created_on"),
		UpdatedOn:     getTimeValue(data, "updated_on"),
	}

	for _, l := range getMapSlice(data, "links") {
		m.Links = append(m.Links, model.MissionLink{
			Kind:        getString(l, "kind"),
			Description: getString(l, "description"),
			URL:         getString(l, "url"),
		})
	}
	for _, c := range getMapSlice(data, "completions") {
		m.Completions = append(m.Completions, model.Completion{
			Ambassador:  convertSurrealID(c["ambassador"]),
			CompletedOn: getTimeValue(c, "completed_on"),
			Proof:       getString(c, "proof"),
		})
	}

	return m
}
