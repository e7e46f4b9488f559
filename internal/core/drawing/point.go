package drawing

import (
	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/core/ports"
)

// PointDrawer captures a single point with one click.
type PointDrawer struct {
	surface ports.MapSurface
	lock    *DrawLock
	lease   *Lease

	state      State
	onComplete func(domain.LatLng)
	marker     ports.MarkerLayer
}

// NewPointDrawer creates a drawer sharing lock with the other drawers of the surface.
func NewPointDrawer(surface ports.MapSurface, lock *DrawLock) *PointDrawer {
	return &PointDrawer{surface: surface, lock: lock}
}

// State returns the current draw-mode state.
func (d *PointDrawer) State() State {
	return d.state
}

// Arm enters draw mode. onComplete is called once with the placed point.
func (d *PointDrawer) Arm(onComplete func(domain.LatLng)) {
	d.lease = d.lock.acquire(d)
	d.state = Armed
	d.onComplete = onComplete
}

// Disarm leaves draw mode. Safe in any state.
func (d *PointDrawer) Disarm() {
	d.lease.Release()
	d.lease = nil
	d.reset()
}

func (d *PointDrawer) forfeit() {
	d.lease = nil
	d.reset()
}

func (d *PointDrawer) reset() {
	d.state = Idle
	d.onComplete = nil
}

// HandlePress places the point when armed.
func (d *PointDrawer) HandlePress(p domain.LatLng) {
	if d.state != Armed {
		return
	}
	done := d.onComplete
	d.Render(p)
	d.Disarm()
	if done != nil {
		done(p)
	}
}

// HandleMove is a no-op; a point needs no preview.
func (d *PointDrawer) HandleMove(domain.LatLng) {}

// HandleRelease is a no-op; the press already placed the point.
func (d *PointDrawer) HandleRelease(domain.LatLng) {}

// Render shows p as the persisted marker.
func (d *PointDrawer) Render(p domain.LatLng) {
	if d.marker != nil {
		d.marker.SetLatLng(p)
		return
	}
	d.marker = d.surface.AddMarker(p)
}

// Clear removes the marker from the map.
func (d *PointDrawer) Clear() {
	if d.marker != nil {
		d.marker.Remove()
		d.marker = nil
	}
}
