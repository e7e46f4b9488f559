package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/core/usecases"
	"github.com/samirrijal/scenedraw/internal/pkg/metrics"
)

// wsMessage is sent from client to drive the session.
type wsMessage struct {
	Action string             `json:"action"` // "pointer" | "field" | "check" | "capture" | "load"
	Kind   domain.PointerKind `json:"kind,omitempty"`
	At     *domain.LatLng     `json:"at,omitempty"`
	Field  string             `json:"field,omitempty"`
	Value  *string            `json:"value,omitempty"`
	// Checked is the checkbox state for "check".
	Checked *bool           `json:"checked,omitempty"`
	Mode    string          `json:"mode,omitempty"`
	Record  json.RawMessage `json:"record,omitempty"`
}

type wsError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SessionSocketHandler returns a handler that upgrades to WebSocket and binds
// the connection to the session named by :id. The client receives the full
// view on connect, then batches of view operations as JSON arrays.
// Clients send JSON: {"action":"pointer","kind":"press","at":{"lat":51.5,"lng":-0.1}}
func SessionSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		id := c.Params("id")
		remoteAddr := c.RemoteAddr().String()
		ctx := context.Background()

		sess, err := deps.Sessions.Open(ctx, id)
		if err != nil {
			_ = c.WriteJSON(wsErrorFor(err))
			return
		}
		rv, ok := sess.View().(remoteView)
		if !ok {
			_ = c.WriteJSON(wsError{Error: "internal_error", Message: "session view is not remote"})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		slog.Info("ws client connected", "scene_id", id, "remote", remoteAddr)

		var mu sync.Mutex

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if err := writeJSON(rv.Replay()); err != nil {
			return
		}

		// Push view operations and keep-alive pings
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-rv.Notify():
					if ops := rv.Drain(); len(ops) > 0 {
						if err := writeJSON(ops); err != nil {
							return
						}
					}
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(wsError{Error: "bad_request", Message: "invalid JSON"})
				continue
			}
			if err := handleSocketMessage(ctx, deps, id, m); err != nil {
				_ = writeJSON(wsErrorFor(err))
			}
		}

		close(done)
		slog.Info("ws client disconnected", "scene_id", id, "remote", remoteAddr)
	}
}

func handleSocketMessage(ctx context.Context, deps *Dependencies, id string, m wsMessage) error {
	switch m.Action {
	case "load":
		return deps.Sessions.Load(ctx, id, m.Record)
	case "pointer", "field", "check", "capture":
	default:
		return invalidInput("unknown action %q", m.Action)
	}

	return deps.Sessions.Do(ctx, id, func(sess *usecases.Session) error {
		switch m.Action {
		case "pointer":
			if m.At == nil {
				return invalidInput("pointer event without position")
			}
			return sess.HandlePointer(domain.PointerEvent{Kind: m.Kind, At: *m.At})
		case "field":
			return applyField(sess, m.Field, fieldEdit{Value: m.Value})
		case "check":
			return applyField(sess, m.Field, fieldEdit{Checked: m.Checked})
		default:
			return applyCapture(sess, m.Mode)
		}
	})
}

func wsErrorFor(err error) wsError {
	code := "internal_error"
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSceneNotFound):
		code = "not_found"
	case errors.Is(err, domain.ErrMalformedRecord):
		code = "malformed_record"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrOriginUnset):
		code = "bad_request"
	}
	return wsError{Error: code, Message: err.Error()}
}
