package ports

import (
	"context"

	"github.com/samirrijal/scenedraw/internal/core/domain"
)

// SceneRepository persists saved scene records.
type SceneRepository interface {
	Save(ctx context.Context, scene *domain.StoredScene) error
	// Get returns domain.ErrSceneNotFound when no scene has the id.
	Get(ctx context.Context, id string) (*domain.StoredScene, error)
	// List returns one page of scenes, most recently saved first, and the total count.
	List(ctx context.Context, offset, limit int) ([]domain.StoredScene, int, error)
	Ping(ctx context.Context) error
}
