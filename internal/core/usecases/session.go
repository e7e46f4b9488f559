package usecases

import (
	"fmt"
	"sync"
	"time"

	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/core/drawing"
	"github.com/samirrijal/scenedraw/internal/core/ports"
	"github.com/samirrijal/scenedraw/internal/pkg/geospatial"
)

// Capture kinds reported to the capture hook.
const (
	CaptureRectangle = "rectangle"
	CapturePoint     = "point"
)

// formInput is implemented by views that distinguish user input from values
// pushed by the server.
type formInput interface {
	Input(f ports.Field, v string)
	InputChecked(f ports.Field, v bool)
}

// Session is one scene being edited: its record, the two drawers sharing one
// draw lock, and the view they draw into. All methods are safe for concurrent
// use and run one at a time.
type Session struct {
	mu sync.Mutex

	id    string
	cfg   *domain.SceneConfig
	view  ports.View
	sync  *SceneSync
	lock  *drawing.DrawLock
	rect  *drawing.RectangleDrawer
	point *drawing.PointDrawer

	revision  uint64
	onCapture func(kind string)
}

// NewSession starts a session on cfg and renders it into view. A nil cfg
// starts from an empty record.
func NewSession(id string, cfg *domain.SceneConfig, view ports.View, loc *time.Location) *Session {
	if cfg == nil {
		cfg = domain.NewSceneConfig()
	}
	lock := drawing.NewDrawLock(view)
	s := &Session{
		id:    id,
		cfg:   cfg,
		view:  view,
		lock:  lock,
		rect:  drawing.NewRectangleDrawer(view, lock),
		point: drawing.NewPointDrawer(view, lock),
	}
	s.sync = NewSceneSync(cfg, view, s.rect, s.point, loc)
	s.sync.Render()
	return s
}

// DefaultSceneConfig returns the demo scene over central London.
func DefaultSceneConfig() *domain.SceneConfig {
	cfg := domain.NewSceneConfig()
	cfg.Area.SouthWest = domain.CornerAt(domain.LatLng{Lat: 51.50, Lng: -0.12})
	cfg.Area.NorthEast = domain.CornerAt(domain.LatLng{Lat: 51.52, Lng: -0.06})
	area := geospatial.RectangleArea(51.50, -0.12, 51.52, -0.06)
	cfg.Area.AreaSqMeters = &area
	cfg.Origin = domain.CornerAt(domain.LatLng{Lat: 51.505, Lng: -0.09})
	return cfg
}

// ID returns the scene id.
func (s *Session) ID() string { return s.id }

// View returns the view the session renders into.
func (s *Session) View() ports.View { return s.view }

// Revision increases on every change to the record or the draw mode.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Session) changed() { s.revision++ }

// BeginRectangleCapture arms the rectangle drawer. An armed point drawer is
// forfeited. The record is re-rendered so an abandoned gesture does not leave
// its geometry off the map.
func (s *Session) BeginRectangleCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rect.Arm(func(b domain.Bounds) {
		s.sync.ApplyRectangleCapture(b)
		s.captured(CaptureRectangle)
	})
	s.sync.Render()
	s.changed()
}

// BeginPointCapture arms the point drawer. An armed rectangle drawer is
// forfeited and the record re-rendered.
func (s *Session) BeginPointCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.point.Arm(func(p domain.LatLng) {
		s.sync.ApplyPointCapture(p)
		s.captured(CapturePoint)
	})
	s.sync.Render()
	s.changed()
}

func (s *Session) captured(kind string) {
	if s.onCapture != nil {
		s.onCapture(kind)
	}
}

// CancelCapture leaves draw mode and re-renders the record, dropping any
// half-drawn preview.
func (s *Session) CancelCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	s.sync.Render()
	s.changed()
}

func (s *Session) cancel() {
	s.rect.Disarm()
	s.point.Disarm()
}

// HandlePointer routes a pointer event to the drawers. Idle drawers ignore it.
func (s *Session) HandlePointer(ev domain.PointerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case domain.PointerPress:
		s.rect.HandlePress(ev.At)
		s.point.HandlePress(ev.At)
	case domain.PointerMove:
		s.rect.HandleMove(ev.At)
		s.point.HandleMove(ev.At)
	case domain.PointerRelease:
		s.rect.HandleRelease(ev.At)
		s.point.HandleRelease(ev.At)
	default:
		return fmt.Errorf("%w: pointer kind %q", domain.ErrInvalidInput, ev.Kind)
	}
	s.changed()
	return nil
}

// EditField applies a text edit made by the user.
func (s *Session) EditField(f ports.Field, text string) error {
	if !f.IsText() {
		return fmt.Errorf("%w: field %q is not editable", domain.ErrInvalidInput, f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if in, ok := s.view.(formInput); ok {
		in.Input(f, text)
	} else {
		s.view.SetValue(f, text)
	}
	s.sync.ApplyFormEdit()
	s.changed()
	return nil
}

// EditCheckbox applies an import flag toggled by the user.
func (s *Session) EditCheckbox(f ports.Field, checked bool) error {
	if !f.IsCheckbox() {
		return fmt.Errorf("%w: field %q is not a checkbox", domain.ErrInvalidInput, f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if in, ok := s.view.(formInput); ok {
		in.InputChecked(f, checked)
	} else {
		s.view.SetChecked(f, checked)
	}
	s.sync.ApplyFormEdit()
	s.changed()
	return nil
}

// ApplyAreaAround captures a square area of the given half-side around the
// origin, as if it had been drawn.
func (s *Session) ApplyAreaAround(radiusMeters float64) error {
	if !(radiusMeters > 0) {
		return fmt.Errorf("%w: radius must be positive", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	origin, ok := s.cfg.Origin.LatLng()
	if !ok {
		return domain.ErrOriginUnset
	}
	minLat, minLng, maxLat, maxLng := geospatial.BoundingBox(origin.Lat, origin.Lng, radiusMeters)

	s.rect.Disarm()
	s.sync.ApplyRectangleCapture(domain.Bounds{
		SouthWest: domain.LatLng{Lat: minLat, Lng: minLng},
		NorthEast: domain.LatLng{Lat: maxLat, Lng: maxLng},
	})
	s.captured(CaptureRectangle)
	s.changed()
	return nil
}

// Load merges a record over the current one and re-renders. Any capture in
// progress is cancelled. A malformed record leaves the session untouched.
func (s *Session) Load(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := MergeRecord(s.cfg, data)
	if err != nil {
		return err
	}
	*s.cfg = *merged
	s.cancel()
	s.sync.Render()
	s.changed()
	return nil
}

// Save stamps the record with now and returns it as a downloadable file.
func (s *Session) Save(now time.Time) (*domain.SavedScene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	savedAt := now.UTC()
	s.cfg.SavedAt = &savedAt
	s.changed()

	data, err := EncodeRecord(s.cfg)
	if err != nil {
		return nil, err
	}
	return &domain.SavedScene{
		Title:    s.cfg.Title,
		Filename: RecordFilename(s.cfg.Title),
		Data:     data,
	}, nil
}

// ApplyRunStatus replaces the pipeline status and re-renders it.
func (s *Session) ApplyRunStatus(st domain.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.Status = st.Clone()
	s.sync.Render()
	s.changed()
}

// Snapshot returns a copy of the record.
func (s *Session) Snapshot() domain.SceneConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// draft encodes the current record for the draft cache.
func (s *Session) draft() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EncodeRecord(s.cfg)
}

// CaptureState reports the draw-mode state of both drawers.
func (s *Session) CaptureState() (rect, point drawing.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rect.State(), s.point.State()
}
