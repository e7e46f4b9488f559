package ports

import (
	"context"

	"github.com/samirrijal/scenedraw/internal/core/domain"
)

// EventPublisher publishes scene events to a message broker.
type EventPublisher interface {
	PublishSceneSaved(ctx context.Context, scene *domain.StoredScene) error
	PublishImportRequest(ctx context.Context, req *domain.ImportRequest) error
}

// EventSubscriber subscribes to events sent back by the import pipeline.
type EventSubscriber interface {
	SubscribeRunStatus(ctx context.Context, handler func(ctx context.Context, report *domain.RunStatusReport) error) error
}

// CacheService provides key/value storage with expiry.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// ImportDispatcher starts the import of a saved scene.
type ImportDispatcher interface {
	DispatchImport(ctx context.Context, scene *domain.StoredScene) error
}
