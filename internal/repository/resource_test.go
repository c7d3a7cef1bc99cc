package repository_test

import (
	"testing"

	"github.com/mfai/ambassador/api/internal/database"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/internal/repository"
	"github.com/mfai/ambassador/api/internal/testing/fixtures"
	"github.com/mfai/ambassador/api/internal/testing/helpers"
	"github.com/mfai/ambassador/api/internal/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_ListForLevel(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	repo := repository.NewResourceRepository(tdb.DB)

	open := f.CreateResource(t)
	f.CreateResource(t, func(r *model.Resource) { r.RequiredLevel = model.LevelPlatinum })

	got, err := repo.ListForLevel(tdb.Ctx(), model.LevelSilver)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
}

func TestResource_CompleteOnce(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	resources := repository.NewResourceRepository(tdb.DB)
	ambassadors := repository.NewAmbassadorRepository(tdb.DB)

	a := f.CreateAmbassador(t)
	r := f.CreateResource(t)

	require.NoError(t, resources.Complete(tdb.Ctx(), r.ID, a.ID, r.PointsReward))
	err := resources.Complete(tdb.Ctx(), r.ID, a.ID, r.PointsReward)
	assert.ErrorIs(t, err, repository.ErrAlreadyCompleted)

	got, err := ambassadors.GetByID(tdb.Ctx(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Points)
	assert.Equal(t, []string{r.ID}, got.CompletedResources)
}

func TestResource_UpdateKeepsSlug(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	repo := repository.NewResourceRepository(tdb.DB)
	r := f.CreateResource(t)
	slug := r.Slug

	r.Title = "A new title"
	r.Slug = "ignored"
	updated, err := repo.Update(tdb.Ctx(), r)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "A new title", updated.Title)
	assert.Equal(t, slug, updated.Slug)
}

func TestResource_GetAndDeleteSeededRecord(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	tdb.MustExec(`CREATE resource:legacy SET
		title = 'Legacy guide',
		slug = 'legacy-guide',
		kind = 'Guide',
		required_level = 'Any',
		points_reward = 5`, nil)
	repo := repository.NewResourceRepository(tdb.DB)

	got, err := repo.GetByID(tdb.Ctx(), "resource:legacy")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "resource:legacy", got.ID)
	assert.Equal(t, "Legacy guide", got.Title)
	assert.Equal(t, model.ResourceGuide, got.Kind)
	assert.Equal(t, 5, got.PointsReward)

	require.NoError(t, repo.Delete(tdb.Ctx(), got.ID))
	helpers.AssertRecordNotExists(t, tdb.DB, "resource:legacy")
	assert.ErrorIs(t, repo.Delete(tdb.Ctx(), got.ID), database.ErrNotFound)

	results := tdb.MustQuery("SELECT * FROM resource", nil)
	require.Len(t, results, 1)
}

func TestResource_GetMissingReturnsNil(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	repo := repository.NewResourceRepository(tdb.DB)
	kept := f.CreateResource(t)

	got, err := repo.GetByID(tdb.Ctx(), "resource:missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	helpers.AssertRecordExists(t, tdb.DB, kept.ID)
}
