// Package view mirrors a browser's map and form on the server. The core draws
// into a Remote as if it were the real widget; every change is queued as an Op
// for the connected client.
package view

import (
	"sort"
	"sync"

	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/core/ports"
)

// Op kinds sent to the client.
const (
	OpRectangleAdd    = "rectangle.add"
	OpRectangleBounds = "rectangle.bounds"
	OpRectangleRemove = "rectangle.remove"
	OpMarkerAdd       = "marker.add"
	OpMarkerMove      = "marker.move"
	OpMarkerRemove    = "marker.remove"
	OpDragging        = "dragging"
	OpDrawMode        = "drawmode"
	OpField           = "field"
	OpCheckbox        = "checkbox"
)

// Op is a single view operation.
type Op struct {
	Op      string         `json:"op"`
	Layer   int            `json:"layer,omitempty"`
	Bounds  *domain.Bounds `json:"bounds,omitempty"`
	At      *domain.LatLng `json:"at,omitempty"`
	Field   string         `json:"field,omitempty"`
	Value   *string        `json:"value,omitempty"`
	Checked *bool          `json:"checked,omitempty"`
	Enabled *bool          `json:"enabled,omitempty"`
}

// State is a point-in-time copy of the mirrored view.
type State struct {
	Rectangles []domain.Bounds   `json:"rectangles"`
	Markers    []domain.LatLng   `json:"markers"`
	Dragging   bool              `json:"dragging"`
	DrawMode   bool              `json:"drawMode"`
	Fields     map[string]string `json:"fields"`
	Checkboxes map[string]bool   `json:"checkboxes"`
}

// Remote implements ports.View. It is safe for concurrent use.
type Remote struct {
	mu       sync.Mutex
	nextID   int
	rects    map[int]domain.Bounds
	markers  map[int]domain.LatLng
	dragging bool
	drawMode bool
	values   map[ports.Field]string
	checks   map[ports.Field]bool

	ops    []Op
	notify chan struct{}
}

// NewRemote returns an empty view with dragging enabled.
func NewRemote() *Remote {
	return &Remote{
		rects:    make(map[int]domain.Bounds),
		markers:  make(map[int]domain.LatLng),
		dragging: true,
		values:   make(map[ports.Field]string),
		checks:   make(map[ports.Field]bool),
		notify:   make(chan struct{}, 1),
	}
}

var _ ports.View = (*Remote)(nil)

// push queues an op. Caller holds mu.
func (r *Remote) push(op Op) {
	r.ops = append(r.ops, op)
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Notify fires after ops were queued.
func (r *Remote) Notify() <-chan struct{} {
	return r.notify
}

// Drain returns and clears the queued ops.
func (r *Remote) Drain() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := r.ops
	r.ops = nil
	return ops
}

// Replay returns ops that rebuild the whole view on a fresh client and
// discards anything queued, since the replay supersedes it.
func (r *Remote) Replay() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil

	var ops []Op
	for _, id := range sortedKeys(r.rects) {
		b := r.rects[id]
		ops = append(ops, Op{Op: OpRectangleAdd, Layer: id, Bounds: &b})
	}
	for _, id := range sortedKeys(r.markers) {
		p := r.markers[id]
		ops = append(ops, Op{Op: OpMarkerAdd, Layer: id, At: &p})
	}
	dragging, drawMode := r.dragging, r.drawMode
	ops = append(ops,
		Op{Op: OpDragging, Enabled: &dragging},
		Op{Op: OpDrawMode, Enabled: &drawMode},
	)
	for _, f := range sortedFields(r.values) {
		v := r.values[f]
		ops = append(ops, Op{Op: OpField, Field: string(f), Value: &v})
	}
	for _, f := range sortedFields(r.checks) {
		c := r.checks[f]
		ops = append(ops, Op{Op: OpCheckbox, Field: string(f), Checked: &c})
	}
	return ops
}

// Snapshot returns the current view state.
func (r *Remote) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := State{
		Rectangles: make([]domain.Bounds, 0, len(r.rects)),
		Markers:    make([]domain.LatLng, 0, len(r.markers)),
		Dragging:   r.dragging,
		DrawMode:   r.drawMode,
		Fields:     make(map[string]string, len(r.values)),
		Checkboxes: make(map[string]bool, len(r.checks)),
	}
	for _, id := range sortedKeys(r.rects) {
		s.Rectangles = append(s.Rectangles, r.rects[id])
	}
	for _, id := range sortedKeys(r.markers) {
		s.Markers = append(s.Markers, r.markers[id])
	}
	for f, v := range r.values {
		s.Fields[string(f)] = v
	}
	for f, c := range r.checks {
		s.Checkboxes[string(f)] = c
	}
	return s
}

// ---- ports.MapSurface ----

func (r *Remote) AddRectangle(b domain.Bounds) ports.RectangleLayer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.rects[id] = b
	r.push(Op{Op: OpRectangleAdd, Layer: id, Bounds: &b})
	return &rectangle{view: r, id: id}
}

func (r *Remote) AddMarker(p domain.LatLng) ports.MarkerLayer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.markers[id] = p
	r.push(Op{Op: OpMarkerAdd, Layer: id, At: &p})
	return &marker{view: r, id: id}
}

func (r *Remote) EnableDragging()  { r.setDragging(true) }
func (r *Remote) DisableDragging() { r.setDragging(false) }

func (r *Remote) setDragging(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dragging == enabled {
		return
	}
	r.dragging = enabled
	r.push(Op{Op: OpDragging, Enabled: &enabled})
}

func (r *Remote) SetDrawMode(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drawMode == active {
		return
	}
	r.drawMode = active
	r.push(Op{Op: OpDrawMode, Enabled: &active})
}

// ---- ports.Form ----

func (r *Remote) Value(f ports.Field) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[f]
}

func (r *Remote) SetValue(f ports.Field, v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.values[f]; ok && cur == v {
		return
	}
	r.values[f] = v
	r.push(Op{Op: OpField, Field: string(f), Value: &v})
}

func (r *Remote) Checked(f ports.Field) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checks[f]
}

func (r *Remote) SetChecked(f ports.Field, v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.checks[f]; ok && cur == v {
		return
	}
	r.checks[f] = v
	r.push(Op{Op: OpCheckbox, Field: string(f), Checked: &v})
}

// Input records a value typed by the user. Unlike SetValue it queues nothing:
// the client already shows what it sent.
func (r *Remote) Input(f ports.Field, v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[f] = v
}

// InputChecked records a checkbox toggled by the user.
func (r *Remote) InputChecked(f ports.Field, v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[f] = v
}

// ---- layers ----

type rectangle struct {
	view *Remote
	id   int
}

func (l *rectangle) Bounds() domain.Bounds {
	l.view.mu.Lock()
	defer l.view.mu.Unlock()
	return l.view.rects[l.id]
}

func (l *rectangle) SetBounds(b domain.Bounds) {
	r := l.view
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rects[l.id]
	if !ok || cur == b {
		return
	}
	r.rects[l.id] = b
	r.push(Op{Op: OpRectangleBounds, Layer: l.id, Bounds: &b})
}

func (l *rectangle) Remove() {
	r := l.view
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rects[l.id]; !ok {
		return
	}
	delete(r.rects, l.id)
	r.push(Op{Op: OpRectangleRemove, Layer: l.id})
}

type marker struct {
	view *Remote
	id   int
}

func (l *marker) LatLng() domain.LatLng {
	l.view.mu.Lock()
	defer l.view.mu.Unlock()
	return l.view.markers[l.id]
}

func (l *marker) SetLatLng(p domain.LatLng) {
	r := l.view
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.markers[l.id]
	if !ok || cur == p {
		return
	}
	r.markers[l.id] = p
	r.push(Op{Op: OpMarkerMove, Layer: l.id, At: &p})
}

func (l *marker) Remove() {
	r := l.view
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.markers[l.id]; !ok {
		return
	}
	delete(r.markers, l.id)
	r.push(Op{Op: OpMarkerRemove, Layer: l.id})
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedFields[V any](m map[ports.Field]V) []ports.Field {
	keys := make([]ports.Field, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
