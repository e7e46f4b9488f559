// Package drawing implements the draw-mode state machines that turn pointer
// input on a map surface into captured geometry.
package drawing

import "github.com/samirrijal/scenedraw/internal/core/ports"

// State is the draw-mode state of a drawer.
type State int

const (
	Idle State = iota
	Armed
	Anchored
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Anchored:
		return "anchored"
	default:
		return "idle"
	}
}

// holder is a drawer that can be forced back to Idle when another drawer takes the lock.
type holder interface {
	forfeit()
}

// DrawLock is the draw-mode interaction lock of one map surface. While held,
// dragging is disabled and the draw-mode marker is shown. At most one lease
// exists at a time.
type DrawLock struct {
	surface ports.MapSurface
	lease   *Lease
}

// Lease is the token held by the drawer that currently owns the lock.
type Lease struct {
	lock   *DrawLock
	holder holder
}

// NewDrawLock creates the lock for a map surface.
func NewDrawLock(surface ports.MapSurface) *DrawLock {
	return &DrawLock{surface: surface}
}

// Held reports whether any drawer holds the lock.
func (l *DrawLock) Held() bool {
	return l.lease != nil
}

// acquire gives the lock to h. If h already holds it the existing lease is
// returned. If another drawer holds it, that drawer is forfeited and the lease
// moves over without touching the map, so dragging stays disabled throughout.
func (l *DrawLock) acquire(h holder) *Lease {
	if l.lease != nil {
		if l.lease.holder == h {
			return l.lease
		}
		prev := l.lease
		prev.lock = nil
		l.lease = nil
		prev.holder.forfeit()
	} else {
		l.surface.DisableDragging()
		l.surface.SetDrawMode(true)
	}
	l.lease = &Lease{lock: l, holder: h}
	return l.lease
}

// Release returns the lock and restores map dragging. Releasing a nil or
// forfeited lease does nothing.
func (le *Lease) Release() {
	if le == nil || le.lock == nil {
		return
	}
	l := le.lock
	le.lock = nil
	if l.lease != le {
		return
	}
	l.lease = nil
	l.surface.EnableDragging()
	l.surface.SetDrawMode(false)
}
