package engine

import (
	"github.com/talgya/hogday/internal/agents"
	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/world"
)

// Board is the complete state of one hog board: roads, hogs, houses and
// facilities. A Board is not safe for concurrent use; Simulation guards it.
type Board struct {
	Grid       *world.Grid
	Herd       *agents.Herd
	Houses     *agents.Houses
	Facilities *economy.Registry
	Catalog    *economy.Catalog

	// Steps counts ticks since the start of the current day.
	Steps int

	// changed is set by every edit and clears stuck/looped on the next step.
	changed bool

	events []Event
}

// NewBoard creates an empty board.
func NewBoard(g *world.Grid, cat *economy.Catalog) *Board {
	return &Board{
		Grid:       g,
		Herd:       agents.NewHerd(g),
		Houses:     agents.NewHouses(g),
		Facilities: economy.NewRegistry(),
		Catalog:    cat,
	}
}

// MarkChanged signals a topology change.
func (b *Board) MarkChanged() {
	b.changed = true
}

// Changed reports whether a topology change is pending.
func (b *Board) Changed() bool {
	return b.changed
}

func (b *Board) record(category, format string, args ...any) {
	b.events = append(b.events, newEvent(category, format, args...))
}

// drainEvents hands over the events recorded since the last call.
func (b *Board) drainEvents() []Event {
	ev := b.events
	b.events = nil
	return ev
}

// Step advances the board one tick: reset per-tick flags, resolve all
// movement, match interactions for the hogs that moved, then craft.
func (b *Board) Step() error {
	hogs := b.Herd.InBoardOrder()
	for _, h := range hogs {
		h.HasStepped = false
		h.HoppedFrom = nil
		h.IsWaiting = false
		h.PreviousStackPosition = b.Herd.StackPosition(h)
	}
	if b.changed {
		for _, h := range hogs {
			h.ClearSticky()
		}
		b.changed = false
	}

	b.ResolveMovement(hogs)
	b.MatchInteractions()

	if err := b.craftShops(); err != nil {
		return err
	}
	b.Steps++
	return nil
}

func (b *Board) craftShops() error {
	for _, s := range b.Facilities.Shops() {
		crafted, err := s.Craft()
		if err != nil {
			return err
		}
		if crafted {
			b.record("craft", "shop at %v crafted %s", s.Corner(), s.Target)
		}
	}
	return nil
}

// ResetDay starts a new day: hogs go home and givers restock.
func (b *Board) ResetDay() error {
	b.Steps = 0
	b.Houses.RecallAll(b.Herd)
	for _, h := range b.Herd.All() {
		h.HoppedFrom = nil
	}
	b.changed = true
	if err := b.Facilities.Replenish(); err != nil {
		return err
	}
	b.record("day", "day reset, %d hogs recalled", b.Houses.Len())
	return nil
}
