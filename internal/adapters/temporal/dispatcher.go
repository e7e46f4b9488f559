// Package temporaladapter starts scene imports as Temporal workflows.
package temporaladapter

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"

	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/pkg/metrics"
	"github.com/samirrijal/scenedraw/internal/workflows"
)

// Dial connects to the Temporal frontend, logging through slog.
func Dial(hostPort, namespace string) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
		Logger:    log.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal dial %s: %w", hostPort, err)
	}
	return c, nil
}

// Dispatcher implements ports.ImportDispatcher.
type Dispatcher struct {
	client    client.Client
	taskQueue string
}

// NewDispatcher creates a Dispatcher starting workflows on taskQueue.
func NewDispatcher(c client.Client, taskQueue string) *Dispatcher {
	return &Dispatcher{client: c, taskQueue: taskQueue}
}

// WorkflowID identifies the import of one save of a scene.
func WorkflowID(scene *domain.StoredScene) string {
	return fmt.Sprintf("scene-import-%s-%d", scene.ID, scene.SavedAt.UnixNano())
}

// DispatchImport starts the import workflow for a saved scene.
func (d *Dispatcher) DispatchImport(ctx context.Context, scene *domain.StoredScene) error {
	opts := client.StartWorkflowOptions{
		ID:        WorkflowID(scene),
		TaskQueue: d.taskQueue,
	}
	input := workflows.SceneImportInput{
		SceneID: scene.ID,
		Title:   scene.Title,
		SavedAt: scene.SavedAt,
		Record:  scene.Record,
	}

	run, err := d.client.ExecuteWorkflow(ctx, opts, workflows.SceneImportWorkflow, input)
	if err != nil {
		metrics.ImportsDispatched.WithLabelValues("error").Inc()
		return fmt.Errorf("start import of %s: %w", scene.ID, err)
	}
	metrics.ImportsDispatched.WithLabelValues("started").Inc()
	slog.Info("import workflow started", "scene_id", scene.ID, "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}
