// Package natsadapter carries scene events over NATS JetStream.
package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/scenedraw/internal/core/domain"
)

// Subjects on the SCENES stream.
const (
	StreamName           = "SCENES"
	subjectAll           = "scene.>"
	subjectSaved         = "scene.saved."
	subjectStatus        = "scene.status."
	subjectImportRequest = "scene.import.requested."
)

// SavedSubject is the subject a saved record of the scene is published on.
func SavedSubject(id string) string { return subjectSaved + id }

// StatusSubject is the subject the import pipeline reports runs of the scene on.
func StatusSubject(id string) string { return subjectStatus + id }

// ImportRequestSubject is the subject import requests for the scene are published on.
func ImportRequestSubject(id string) string { return subjectImportRequest + id }

// Connect opens a NATS connection that keeps reconnecting.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("scenedraw"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and makes sure the SCENES stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectAll},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSceneSaved publishes the saved record of a scene.
func (p *Publisher) PublishSceneSaved(ctx context.Context, scene *domain.StoredScene) error {
	msgID := fmt.Sprintf("%s@%d", scene.ID, scene.SavedAt.UnixNano())
	_, err := p.js.Publish(SavedSubject(scene.ID), scene.Record, nats.Context(ctx), nats.MsgId(msgID))
	if err != nil {
		return fmt.Errorf("publish %s: %w", SavedSubject(scene.ID), err)
	}
	return nil
}

// PublishImportRequest hands a validated scene to the import pipeline.
func (p *Publisher) PublishImportRequest(ctx context.Context, req *domain.ImportRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(ImportRequestSubject(req.SceneID), data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", ImportRequestSubject(req.SceneID), err)
	}
	return nil
}

// Conn returns the underlying connection.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
