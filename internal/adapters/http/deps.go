package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/scenedraw/internal/core/usecases"
)

// Pinger is a backing service that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sessions *usecases.SessionService
	NATS     *nats.Conn
	// Store is the scene repository in use (postgres or sqlite).
	Store Pinger
	Cache Pinger
	// DocsPath is the OpenAPI document served under /docs; DefaultDocsPath when empty.
	DocsPath string
}
