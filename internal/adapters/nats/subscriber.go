package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/scenedraw/internal/core/domain"
)

// errBadReport marks a status message that can never be processed.
var errBadReport = errors.New("bad run-status report")

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeRunStatus delivers run-status reports from the import pipeline.
// Reports that cannot be decoded, or that name an unknown scene, are
// terminated; other handler failures are redelivered up to three times.
func (s *Subscriber) SubscribeRunStatus(ctx context.Context, handler func(ctx context.Context, report *domain.RunStatusReport) error) error {
	sub, err := s.js.Subscribe(subjectStatus+">", func(msg *nats.Msg) {
		report, err := decodeRunStatus(msg.Subject, msg.Data)
		if err != nil {
			slog.Warn("dropping run-status report", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, report); err != nil {
			if errors.Is(err, domain.ErrSceneNotFound) {
				slog.Warn("run-status report for unknown scene", "scene_id", report.SceneID)
				_ = msg.Term()
				return
			}
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("scene-status-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// decodeRunStatus reads a report. The scene id defaults to the last subject
// token and must agree with it when the payload carries one.
func decodeRunStatus(subject string, data []byte) (*domain.RunStatusReport, error) {
	id := strings.TrimPrefix(subject, subjectStatus)
	if id == subject || id == "" || strings.Contains(id, ".") {
		return nil, fmt.Errorf("%w: subject %q", errBadReport, subject)
	}

	var report domain.RunStatusReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadReport, err)
	}
	switch report.SceneID {
	case "":
		report.SceneID = id
	case id:
	default:
		return nil, fmt.Errorf("%w: scene %q published on %q", errBadReport, report.SceneID, subject)
	}
	return &report, nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
