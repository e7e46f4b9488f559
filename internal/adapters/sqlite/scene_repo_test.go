package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/scenedraw/internal/adapters/sqlite"
	"github.com/samirrijal/scenedraw/internal/core/domain"
)

func newRepo(t *testing.T) *sqlite.SceneRepo {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "data", "scenes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewSceneRepo(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestSceneRepo_SaveAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	savedAt := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)

	require.NoError(t, repo.Save(ctx, &domain.StoredScene{
		ID: "a", Title: "first", SavedAt: savedAt, Record: []byte(`{"title":"first"}`),
	}))
	require.NoError(t, repo.Save(ctx, &domain.StoredScene{
		ID: "a", Title: "renamed", SavedAt: savedAt.Add(time.Minute), Record: []byte(`{"title":"renamed"}`),
	}))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.True(t, savedAt.Add(time.Minute).Equal(got.SavedAt))
	assert.JSONEq(t, `{"title":"renamed"}`, string(got.Record))
}

func TestSceneRepo_GetMissing(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSceneNotFound)
}

func TestSceneRepo_ListNewestFirst(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.Save(ctx, &domain.StoredScene{
			ID: id, Title: id, SavedAt: base.Add(time.Duration(i) * time.Hour), Record: []byte(`{}`),
		}))
	}

	page, total, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "new", page[0].ID)
	assert.Equal(t, "mid", page[1].ID)

	page, _, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "old", page[0].ID)

	require.NoError(t, repo.Ping(ctx))
}
