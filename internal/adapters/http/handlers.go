package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/scenedraw/internal/adapters/view"
	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/core/ports"
	"github.com/samirrijal/scenedraw/internal/core/usecases"
)

// remoteView is the part of view.Remote the transport layer needs.
type remoteView interface {
	Snapshot() view.State
	Replay() []view.Op
	Drain() []view.Op
	Notify() <-chan struct{}
}

// CaptureState reports which drawer, if any, is armed.
type CaptureState struct {
	Rectangle string `json:"rectangle"`
	Point     string `json:"point"`
}

// SessionResponse is the state of a live session.
type SessionResponse struct {
	ID       string             `json:"id"`
	Revision uint64             `json:"revision"`
	Capture  CaptureState       `json:"capture"`
	Record   domain.SceneConfig `json:"record"`
	View     *view.State        `json:"view,omitempty"`
}

// SceneSummary is a saved scene without its record.
type SceneSummary struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	SavedAt time.Time `json:"saved_at"`
}

type fieldEdit struct {
	Value   *string `json:"value"`
	Checked *bool   `json:"checked"`
}

type pointerRequest struct {
	Kind domain.PointerKind `json:"kind"`
	At   *domain.LatLng     `json:"at"`
}

type areaAroundRequest struct {
	Radius float64 `json:"radius"`
}

func sessionResponse(sess *usecases.Session) SessionResponse {
	rect, point := sess.CaptureState()
	resp := SessionResponse{
		ID:       sess.ID(),
		Revision: sess.Revision(),
		Capture:  CaptureState{Rectangle: rect.String(), Point: point.String()},
		Record:   sess.Snapshot(),
	}
	if rv, ok := sess.View().(remoteView); ok {
		st := rv.Snapshot()
		resp.View = &st
	}
	return resp
}

// applyCapture routes a capture action to the session.
func applyCapture(sess *usecases.Session, mode string) error {
	switch mode {
	case "rectangle":
		sess.BeginRectangleCapture()
	case "point":
		sess.BeginPointCapture()
	case "cancel":
		sess.CancelCapture()
	default:
		return invalidInput("capture mode %q", mode)
	}
	return nil
}

// applyField routes a form edit to the session. Exactly one of value and
// checked must be set.
func applyField(sess *usecases.Session, field string, edit fieldEdit) error {
	f := ports.Field(field)
	switch {
	case edit.Value != nil && edit.Checked == nil:
		return sess.EditField(f, *edit.Value)
	case edit.Checked != nil && edit.Value == nil:
		return sess.EditCheckbox(f, *edit.Checked)
	default:
		return invalidInput("field %q: exactly one of value or checked is required", field)
	}
}

// CreateSessionHandler starts a session, on a new scene or on the saved scene
// named by ?scene=.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			sess *usecases.Session
			err  error
		)
		if id := c.Query("scene"); id != "" {
			sess, err = deps.Sessions.Open(c.UserContext(), id)
		} else {
			sess, err = deps.Sessions.Create(c.UserContext())
		}
		if err != nil {
			return errFrom(c, err)
		}

		c.Location("/v1/sessions/" + sess.ID())
		return c.Status(fiber.StatusCreated).JSON(sessionResponse(sess))
	}
}

// GetSessionHandler returns the record and view state of a live session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(sessionResponse(sess))
	}
}

// CaptureHandler arms a drawer or cancels the capture in progress.
func CaptureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := c.Params("mode")
		return sessionAction(c, deps, func(sess *usecases.Session) error {
			return applyCapture(sess, mode)
		})
	}
}

// PointerHandler feeds one pointer event to the drawers.
func PointerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pointerRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid pointer event")
		}
		if req.At == nil {
			return errFrom(c, invalidInput("pointer event without position"))
		}
		ev := domain.PointerEvent{Kind: req.Kind, At: *req.At}
		return sessionAction(c, deps, func(sess *usecases.Session) error {
			return sess.HandlePointer(ev)
		})
	}
}

// FieldHandler applies a form edit.
func FieldHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var edit fieldEdit
		if err := c.BodyParser(&edit); err != nil {
			return errBadRequest(c, "invalid field edit")
		}
		field := c.Params("field")
		return sessionAction(c, deps, func(sess *usecases.Session) error {
			return applyField(sess, field, edit)
		})
	}
}

// AreaAroundHandler captures a square area around the origin.
func AreaAroundHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req areaAroundRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Radius <= 0 || req.Radius > 50000 {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}
		return sessionAction(c, deps, func(sess *usecases.Session) error {
			return sess.ApplyAreaAround(req.Radius)
		})
	}
}

// LoadHandler merges the request body, a scene record, into the session.
func LoadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := deps.Sessions.Load(c.UserContext(), id, c.Body()); err != nil {
			return errFrom(c, err)
		}
		sess, err := deps.Sessions.Get(id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(sessionResponse(sess))
	}
}

// SaveHandler stores the session's record and returns it as a download.
func SaveHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		saved, err := deps.Sessions.Save(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		c.Attachment(saved.Filename)
		c.Set("Cache-Control", "no-store")
		return c.Send(saved.Data)
	}
}

// CloseSessionHandler ends a live session. With ?discard=true its draft is dropped too.
func CloseSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		closeFn := deps.Sessions.Close
		if c.QueryBool("discard") {
			closeFn = deps.Sessions.Discard
		}
		if err := closeFn(c.UserContext(), c.Params("id")); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// sessionAction runs fn on the session named by :id and responds with its new state.
func sessionAction(c *fiber.Ctx, deps *Dependencies, fn func(*usecases.Session) error) error {
	id := c.Params("id")
	if err := deps.Sessions.Do(c.UserContext(), id, fn); err != nil {
		return errFrom(c, err)
	}
	sess, err := deps.Sessions.Get(id)
	if err != nil {
		return errFrom(c, err)
	}
	return c.JSON(sessionResponse(sess))
}

// ListScenesHandler returns one page of saved scenes, most recent first.
func ListScenesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pg := pageFromQuery(c)

		scenes, total, err := deps.Sessions.ListSaved(c.UserContext(), pg.Offset, pg.Limit)
		if err != nil {
			return errFrom(c, err)
		}

		items := make([]SceneSummary, 0, len(scenes))
		for _, s := range scenes {
			items = append(items, SceneSummary{ID: s.ID, Title: s.Title, SavedAt: s.SavedAt})
		}

		pg.Total = total
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse[SceneSummary]{Data: items, Pagination: pg})
	}
}

// GetSceneHandler returns a saved scene with its record.
func GetSceneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scene, err := deps.Sessions.GetSaved(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(scene)
	}
}

// SceneStatusHandler accepts a run-status report from the import pipeline.
func SceneStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var st domain.Status
		if err := c.BodyParser(&st); err != nil {
			return errBadRequest(c, "invalid status report")
		}
		report := &domain.RunStatusReport{SceneID: c.Params("id"), Status: st}
		if err := deps.Sessions.ReportRunStatus(c.UserContext(), report); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
