package main

import (
	"log"
	"log/slog"

	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/scenedraw/internal/adapters/nats"
	temporaladapter "github.com/samirrijal/scenedraw/internal/adapters/temporal"
	"github.com/samirrijal/scenedraw/internal/pkg/config"
	"github.com/samirrijal/scenedraw/internal/pkg/logging"
	"github.com/samirrijal/scenedraw/internal/workflows"
)

func main() {
	cfg, err := config.Load("scenedraw-dispatcher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// Import requests are published on the scene stream
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	c, err := temporaladapter.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.SceneImportWorkflow)
	w.RegisterActivity(&workflows.ImportActivities{Publisher: pub})

	slog.Info("import dispatcher started", "task_queue", cfg.Temporal.TaskQueue, "namespace", cfg.Temporal.Namespace)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
