//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/scenedraw/internal/adapters/postgres"
	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/pkg/config"
)

// setupTestDB connects to the database configured for the test run. The
// scenes migration must have been applied.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("scenedraw-test")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestSceneRepo_SaveGetList(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewSceneRepo(db)
	ctx := context.Background()

	id := uuid.NewString()
	scene := &domain.StoredScene{
		ID:      id,
		Title:   "integration",
		SavedAt: time.Now().UTC().Truncate(time.Microsecond),
		Record:  []byte(`{"title": "integration"}`),
	}
	require.NoError(t, repo.Save(ctx, scene))

	scene.Title = "integration v2"
	scene.Record = []byte(`{"title": "integration v2"}`)
	require.NoError(t, repo.Save(ctx, scene))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "integration v2", got.Title)
	assert.JSONEq(t, `{"title": "integration v2"}`, string(got.Record))
	assert.True(t, scene.SavedAt.Equal(got.SavedAt))

	page, total, err := repo.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1)
	assert.NotEmpty(t, page)

	_, err = repo.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrSceneNotFound)
}
