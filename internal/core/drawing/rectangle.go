package drawing

import (
	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/core/ports"
)

// RectangleDrawer captures an axis-aligned rectangle with two clicks, or with a
// press-drag-release gesture, showing a live preview while anchored.
type RectangleDrawer struct {
	surface ports.MapSurface
	lock    *DrawLock
	lease   *Lease

	state      State
	anchor     domain.LatLng
	onComplete func(domain.Bounds)

	// shape is the single rectangle this drawer keeps on the map, either a
	// rendered record or a preview.
	shape   ports.RectangleLayer
	preview bool
}

// NewRectangleDrawer creates a drawer sharing lock with the other drawers of the surface.
func NewRectangleDrawer(surface ports.MapSurface, lock *DrawLock) *RectangleDrawer {
	return &RectangleDrawer{surface: surface, lock: lock}
}

// State returns the current draw-mode state.
func (d *RectangleDrawer) State() State {
	return d.state
}

// Arm enters draw mode. onComplete is called once with the captured bounds.
// Arming again while armed starts the gesture over.
func (d *RectangleDrawer) Arm(onComplete func(domain.Bounds)) {
	d.lease = d.lock.acquire(d)
	d.removePreview()
	d.state = Armed
	d.anchor = domain.LatLng{}
	d.onComplete = onComplete
}

// Disarm leaves draw mode from any state and drops an unfinished preview.
func (d *RectangleDrawer) Disarm() {
	d.lease.Release()
	d.lease = nil
	d.reset()
}

func (d *RectangleDrawer) forfeit() {
	d.lease = nil
	d.reset()
}

func (d *RectangleDrawer) reset() {
	d.state = Idle
	d.anchor = domain.LatLng{}
	d.onComplete = nil
	d.removePreview()
}

// HandlePress anchors the rectangle when armed and completes it when anchored.
func (d *RectangleDrawer) HandlePress(p domain.LatLng) {
	switch d.state {
	case Armed:
		d.anchor = p
		d.Clear()
		d.state = Anchored
	case Anchored:
		d.complete(p)
	}
}

// HandleMove stretches the preview from the anchor to p.
func (d *RectangleDrawer) HandleMove(p domain.LatLng) {
	if d.state != Anchored {
		return
	}
	d.drawPreview(domain.BoundsOf(d.anchor, p))
}

// HandleRelease completes a drag gesture. A release before any move has drawn
// a preview is the first click of a two-click gesture and keeps the drawer
// anchored, even when the release lands a little off the anchor.
func (d *RectangleDrawer) HandleRelease(p domain.LatLng) {
	if d.state != Anchored || !d.preview || p == d.anchor {
		return
	}
	d.complete(p)
}

func (d *RectangleDrawer) complete(p domain.LatLng) {
	d.drawPreview(domain.BoundsOf(d.anchor, p))
	bounds := d.shape.Bounds()
	done := d.onComplete

	d.Disarm()
	if done != nil {
		done(bounds)
	}
}

func (d *RectangleDrawer) drawPreview(b domain.Bounds) {
	if d.shape != nil && d.preview {
		d.shape.SetBounds(b)
		return
	}
	d.Clear()
	d.shape = d.surface.AddRectangle(b)
	d.preview = true
}

func (d *RectangleDrawer) removePreview() {
	if d.preview {
		d.Clear()
	}
}

// Render shows b as the persisted rectangle, replacing any preview. It does
// not change the draw-mode state.
func (d *RectangleDrawer) Render(b domain.Bounds) {
	if d.shape != nil && !d.preview {
		d.shape.SetBounds(b)
		return
	}
	d.Clear()
	d.shape = d.surface.AddRectangle(b)
}

// Clear removes the rectangle from the map.
func (d *RectangleDrawer) Clear() {
	if d.shape != nil {
		d.shape.Remove()
		d.shape = nil
	}
	d.preview = false
}
