package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/core/ports"
	"github.com/samirrijal/scenedraw/internal/core/usecases"
)

// ErrTypeInvalidScene is the application error type of scenes that cannot be imported.
const ErrTypeInvalidScene = "InvalidScene"

// ImportActivities holds the activity implementations for the scene import workflow.
type ImportActivities struct {
	Publisher ports.EventPublisher
}

// ValidateScene checks the saved record has an area, an origin and at least
// one import stage enabled, and builds the import request.
func (a *ImportActivities) ValidateScene(ctx context.Context, input SceneImportInput) (*domain.ImportRequest, error) {
	cfg, err := usecases.DecodeRecord(input.Record)
	if err != nil {
		return nil, invalidScene(input.SceneID, err)
	}
	bounds, ok := cfg.Area.Bounds()
	if !ok {
		return nil, invalidScene(input.SceneID, errors.New("area is not set"))
	}
	origin, ok := cfg.Origin.LatLng()
	if !ok {
		return nil, invalidScene(input.SceneID, domain.ErrOriginUnset)
	}
	f := cfg.ImportFlags
	if !f.Terrain && !f.Buildings && !f.Trees {
		return nil, invalidScene(input.SceneID, errors.New("no import stage enabled"))
	}

	return &domain.ImportRequest{
		SceneID: input.SceneID,
		Title:   cfg.Title,
		Area:    bounds,
		EWKT:    bounds.EWKT(),
		Origin:  origin,
		Flags:   f,
	}, nil
}

// RequestImport publishes the import request for the pipeline.
func (a *ImportActivities) RequestImport(ctx context.Context, req domain.ImportRequest) error {
	if err := a.Publisher.PublishImportRequest(ctx, &req); err != nil {
		return fmt.Errorf("request import of %s: %w", req.SceneID, err)
	}
	activity.GetLogger(ctx).Info("import requested", "sceneID", req.SceneID)
	return nil
}

func invalidScene(id string, cause error) error {
	return temporal.NewNonRetryableApplicationError(
		fmt.Sprintf("scene %s cannot be imported: %v", id, cause), ErrTypeInvalidScene, cause)
}
