package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfai/ambassador/api/internal/database"
	"github.com/mfai/ambassador/api/internal/model"
)

// AmbassadorRepository handles ambassador data access
type AmbassadorRepository struct {
	db database.Database
}

// NewAmbassadorRepository creates a new ambassador repository
func NewAmbassadorRepository(db database.Database) *AmbassadorRepository {
	return &AmbassadorRepository{db: db}
}

// newRecordKey returns a random record key without separators
func newRecordKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Create inserts a new ambassador. When referrerID is set, the referrer's
// referral list and counter are updated in the same transaction.
func (r *AmbassadorRepository) Create(ctx context.Context, a *model.Ambassador, referrerID string) error {
	if a.ID == "" {
		a.ID = "ambassador:" + newRecordKey()
	}
	if a.Level == "" {
		a.Level = model.LevelBronze
	}
	if a.Role == "" {
		a.Role = model.RoleUser
	}

	tb := database.NewTxBuilder()
	tb.Add(`
		CREATE type::record($id) CONTENT {
			name: $name,
			email: $email,
			hash: $hash,
			level: $level,
			points: 0,
			role: $role,
			active: true,
			referral_code: $referral_code,
			referred_by: $referred_by,
			referrals: [],
			completed_missions: [],
			completed_resources: [],
			rewards: [],
			statistics: {
				referral_count: 0,
				total_token_revenue: 0,
				missions_completed: 0
			},
			created_on: time::now(),
			updated_on: time::now()
		}
	`, map[string]interface{}{
		"id":            a.ID,
		"name":          a.Name,
		"email":         strings.ToLower(a.Email),
		"hash":          a.Hash,
		"level":         string(a.Level),
		"role":          string(a.Role),
		"referral_code": a.ReferralCode,
		"referred_by":   ptrToNone(a.ReferredBy),
	})

	if referrerID != "" {
		tb.Add(`
			UPDATE type::record($referrer) SET
				referrals += $referred,
				statistics.referral_count += 1,
				updated_on = time::now()
		`, map[string]interface{}{
			"referrer": referrerID,
			"referred": a.ID,
		})
	}

	if _, err := database.ExecuteTransaction(ctx, r.db, tb); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return fmt.Errorf("creating ambassador: %w", err)
	}

	created, err := r.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if created == nil {
		return fmt.Errorf("creating ambassador: %w", database.ErrNotFound)
	}
	*a = *created
	return nil
}

// GetByID retrieves an ambassador by ID, or nil when it does not exist
func (r *AmbassadorRepository) GetByID(ctx context.Context, id string) (*model.Ambassador, error) {
	query := `SELECT * FROM type::record($id)`
	return r.getOne(ctx, query, map[string]interface{}{"id": id})
}

// GetByEmail retrieves an ambassador by email, or nil when it does not exist
func (r *AmbassadorRepository) GetByEmail(ctx context.Context, email string) (*model.Ambassador, error) {
	query := `SELECT * FROM ambassador WHERE email = $email LIMIT 1`
	return r.getOne(ctx, query, map[string]interface{}{"email": strings.ToLower(email)})
}

// GetByReferralCode retrieves the owner of a referral code, or nil
func (r *AmbassadorRepository) GetByReferralCode(ctx context.Context, code string) (*model.Ambassador, error) {
	query := `SELECT * FROM ambassador WHERE referral_code = $code LIMIT 1`
	return r.getOne(ctx, query, map[string]interface{}{"code": code})
}

func (r *AmbassadorRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.Ambassador, error) {
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
	return parseAmbassador(data), nil
}

// UpdateProfile changes name and email
func (r *AmbassadorRepository) UpdateProfile(ctx context.Context, id, name, email string) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			email = $email,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":    id,
		"name":  name,
		"email": strings.ToLower(email),
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// TouchLogin records a successful login
func (r *AmbassadorRepository) TouchLogin(ctx context.Context, id string) error {
	query := `UPDATE type::record($id) SET login_on = time::now()`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": id})
}

// SetActive enables or disables an account
func (r *AmbassadorRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE type::record($id) SET active = $active, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":     id,
		"active": active,
	}
	return r.db.Execute(ctx, query, vars)
}

// Promote sets a new level and records a LevelUp reward in one statement
func (r *AmbassadorRepository) Promote(ctx context.Context, id string, level model.Level, reward model.Reward) error {
	query := `
		UPDATE type::record($id) SET
			level = $level,
			rewards += $reward,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":     id,
		"level":  string(level),
		"reward": rewardDocument(reward),
	}
	return r.db.Execute(ctx, query, vars)
}

// GrantAdmin gives the admin role to the accounts with the given emails and
// returns the ids of the accounts that changed.
func (r *AmbassadorRepository) GrantAdmin(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return []string{}, nil
	}

	query := `
		UPDATE ambassador SET role = 'admin', updated_on = time::now()
		WHERE email IN $emails AND role != 'admin'
		RETURN id
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"emails": emails})
	if err != nil {
		return nil, fmt.Errorf("granting admin role: %w", err)
	}

	records := statementRecords(result, 0)
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, convertSurrealID(rec["id"]))
	}
	return ids, nil
}

// CreditPoints adds points outside of a completion
func (r *AmbassadorRepository) CreditPoints(ctx context.Context, id string, points int) error {
	query := `UPDATE type::record($id) SET points += $points, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":     id,
		"points": points,
	}
	return r.db.Execute(ctx, query, vars)
}

// AppendReward adds an entry to the reward history
func (r *AmbassadorRepository) AppendReward(ctx context.Context, id string, reward model.Reward) error {
	query := `UPDATE type::record($id) SET rewards += $reward, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":     id,
		"reward": rewardDocument(reward),
	}
	return r.db.Execute(ctx, query, vars)
}

// rewardDocument converts a reward into the stored object shape
func rewardDocument(reward model.Reward) map[string]interface{} {
	date := reward.Date
	if date.IsZero() {
		date = time.Now()
	}
	return map[string]interface{}{
		"kind":        string(reward.Kind),
		"amount":      reward.Amount.InexactFloat64(),
		"date":        datetime(date),
		"description": reward.Description,
	}
}

func parseAmbassador(data map[string]interface{}) *model.Ambassador {
	stats := getMap(data, "statistics")

	a := &model.Ambassador{
		ID:                 convertSurrealID(data["id"]),
		Name:               getString(data, "name"),
		Email:              getString(data, "email"),
		Hash:               getString(data, "hash"),
		Level:              model.Level(getString(data, "level")),
		Points:             getInt(data, "points"),
		Role:               model.Role(getString(data, "role")),
		Active:             getBool(data, "active"),
		ReferralCode:       getString(data, "referral_code"),
		ReferredBy:         getStringPtr(data, "referred_by"),
		Referrals:          getStringSlice(data, "referrals"),
		CompletedMissions:  getStringSlice(data, "completed_missions"),
		CompletedResources: getStringSlice(data, "completed_resources"),
		Rewards:            []model.Reward{},
		Statistics: model.Statistics{
			ReferralCount:     getInt(stats, "referral_count"),
			TotalTokenRevenue: getDecimal(stats, "total_token_revenue"),
			MissionsCompleted: getInt(stats, "missions_completed"),
		},
		CreatedOn: getTimeValue(data, "created_on"),
		UpdatedOn: getTimeValue(data, "updated_on"),
		LoginOn:   getTime(data, "login_on"),
	}

	for _, rw := range getMapSlice(data, "rewards") {
		a.Rewards = append(a.Rewards, model.Reward{
			Kind:        model.RewardKind(getString(rw, "kind")),
			Amount:      getDecimal(rw, "amount"),
			Date:        getTimeValue(rw, "date"),
			Description: getString(rw, "description"),
		})
	}

	return a
}
