package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/scenedraw/internal/core/domain"
)

// SceneImportInput is the input for the scene import workflow.
type SceneImportInput struct {
	SceneID string
	Title   string
	SavedAt time.Time
	Record  []byte
}

// SceneImportWorkflow validates a saved scene and hands it to the import
// pipeline. An invalid scene fails the workflow without retries; publishing is
// retried up to three times and has nothing to roll back.
func SceneImportWorkflow(ctx workflow.Context, input SceneImportInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting scene import workflow", "sceneID", input.SceneID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidScene},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Validate the record and build the request
	var req domain.ImportRequest
	if err := workflow.ExecuteActivity(ctx, "ValidateScene", input).Get(ctx, &req); err != nil {
		logger.Warn("scene rejected for import", "sceneID", input.SceneID, "error", err)
		return err
	}

	// Step 2: Hand it to the pipeline
	if err := workflow.ExecuteActivity(ctx, "RequestImport", req).Get(ctx, nil); err != nil {
		return err
	}

	logger.Info("Scene import requested", "sceneID", input.SceneID, "ewkt", req.EWKT)
	return nil
}
