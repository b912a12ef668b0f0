// Package agents provides the hog data model, the herd that owns every hog
// and its tile occupancy, and the houses hogs are spawned from.
package agents

import (
	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/world"
)

// HogID is a stable handle for a hog. IDs are never reused within a herd.
type HogID uint64

// Hog is a mobile unit that walks the roads and carries at most one good.
type Hog struct {
	ID        HogID           `json:"id"`
	Pos       world.Coord     `json:"pos"`
	Facing    world.Direction `json:"facing"`
	Decorator string          `json:"decorator,omitempty"`

	// Per-tick resolution state, reset at the start of every tick.
	HasStepped            bool         `json:"has_stepped"`
	HoppedFrom            *world.Coord `json:"hopped_from,omitempty"`
	IsWaiting             bool         `json:"-"`
	PreviousStackPosition int          `json:"previous_stack_position"`

	// Sticky until the board's topology changes.
	Stuck  bool `json:"stuck"`
	Looped bool `json:"looped"`

	// Cargo
	Holding         *economy.Good `json:"holding,omitempty"`
	PreviousHolding *economy.Good `json:"previous_holding,omitempty"`
	GaveTo          *world.Coord  `json:"gave_to,omitempty"`
	TookFrom        *world.Coord  `json:"took_from,omitempty"`
}

// Moved reports whether the hog left a tile this tick.
func (h *Hog) Moved() bool {
	return h.HoppedFrom != nil
}

// ClearCargo drops whatever the hog carries and forgets its last exchange.
func (h *Hog) ClearCargo() {
	h.Holding = nil
	h.GaveTo = nil
	h.TookFrom = nil
}

// ClearSticky forgets stuck and looped state after a topology change.
func (h *Hog) ClearSticky() {
	h.Stuck = false
	h.Looped = false
}

// Status names the hog's resolution state for display.
func (h *Hog) Status() string {
	switch {
	case h.Stuck:
		return "stuck"
	case h.Looped:
		return "looped"
	case h.Moved():
		return "moved"
	}
	return "idle"
}

// String renders the hog as an arrow, its decorator and its cargo.
func (h *Hog) String() string {
	s := h.Facing.Arrow() + h.Decorator
	if h.Holding != nil {
		s += h.Holding.Name
	}
	return s
}
