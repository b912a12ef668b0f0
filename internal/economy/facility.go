package economy

import (
	"github.com/talgya/hogday/internal/world"
)

// Kind is the capability a facility offers to passing hogs.
type Kind uint8

const (
	KindSource Kind = iota + 1 // hands one unit to a hog that carries nothing
	KindSink                   // takes the unit a hog carries
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindSink:
		return "sink"
	}
	return "unknown"
}

// Facility is a stationary thing hogs exchange goods with. The set of
// implementations is closed: every Facility is either a Source or a Sink.
type Facility interface {
	Kind() Kind
	Name() string
	Tiles() []world.Coord

	// TilePreferences ranks the tiles around the facility. A claimant on an
	// earlier tile outranks one on a later tile when capacity runs out.
	TilePreferences() []world.Coord

	// Capacity is how many hogs carrying (or seeking) the given good the
	// facility can serve this tick.
	Capacity(good string) int

	Holding() []Good
	PreviousHolding() []Good
	RememberHolding()

	facility()
}

// Source emits goods.
type Source interface {
	Facility
	Emit() Good
}

// Sink absorbs goods.
type Sink interface {
	Facility
	Absorb(g Good)
}

// Replenisher is implemented by sources that restock at the start of a day.
type Replenisher interface {
	Replenish() error
}

// Rank is the position of c in f's tile preferences. Tiles not in the list
// rank after every listed tile.
func Rank(f Facility, c world.Coord) int {
	prefs := f.TilePreferences()
	for i, p := range prefs {
		if p == c {
			return i
		}
	}
	return len(prefs)
}

// AdjacentTile returns the first tile of f that touches c.
func AdjacentTile(g *world.Grid, f Facility, c world.Coord) (world.Coord, bool) {
	for _, t := range f.Tiles() {
		if g.Adjacent(t, c) {
			return t, true
		}
	}
	return world.Coord{}, false
}

// stock is the goods list shared by every facility.
type stock struct {
	holding  []Good
	previous []Good
}

func (s *stock) Holding() []Good {
	out := make([]Good, len(s.holding))
	copy(out, s.holding)
	return out
}

func (s *stock) PreviousHolding() []Good {
	out := make([]Good, len(s.previous))
	copy(out, s.previous)
	return out
}

func (s *stock) RememberHolding() {
	s.previous = append(s.previous[:0], s.holding...)
}

// Count returns how many held goods carry the name.
func (s *stock) Count(name string) int {
	n := 0
	for _, g := range s.holding {
		if g.Name == name {
			n++
		}
	}
	return n
}

func (s *stock) pop() Good {
	last := s.holding[len(s.holding)-1]
	s.holding = s.holding[:len(s.holding)-1]
	return last
}

// SetHolding replaces the current and previous stock, for restocking and
// for restoring saved boards.
func (s *stock) SetHolding(holding, previous []Good) {
	s.holding = append([]Good(nil), holding...)
	s.previous = append([]Good(nil), previous...)
}

func (s *stock) facility() {}

// singleTilePreferences ranks east, south, west, north.
func singleTilePreferences(g *world.Grid, at world.Coord) []world.Coord {
	return []world.Coord{
		g.Neighbor(at, world.East),
		g.Neighbor(at, world.South),
		g.Neighbor(at, world.West),
		g.Neighbor(at, world.North),
	}
}
