package agents

import (
	"sort"

	"github.com/talgya/hogday/internal/world"
)

// House is a road tile a single hog starts from and returns to.
type House struct {
	At        world.Coord     `json:"at"`
	Facing    world.Direction `json:"facing"`
	Decorator string          `json:"decorator,omitempty"`
	Hog       HogID           `json:"hog"`
}

// BuildHouse places a house and spawns its hog facing the same way.
func BuildHouse(herd *Herd, at world.Coord, facing world.Direction, decorator string) *House {
	hog := herd.Spawn(at, facing)
	hog.Decorator = decorator
	return &House{
		At:        hog.Pos,
		Facing:    facing,
		Decorator: decorator,
		Hog:       hog.ID,
	}
}

// Recall sends the hog home, facing the house direction with empty paws.
func (hs *House) Recall(herd *Herd) {
	hog := herd.Get(hs.Hog)
	if hog == nil {
		return
	}
	herd.MoveTo(hog, hs.At, hs.Facing)
	hog.ClearCargo()
}

// Rotate turns the house clockwise and recalls its hog.
func (hs *House) Rotate(herd *Herd) {
	hs.Facing = hs.Facing.Right()
	hs.Recall(herd)
}

// Demolish removes the house's hog from the board.
func (hs *House) Demolish(herd *Herd) {
	herd.Remove(hs.Hog)
}

// Houses indexes houses by tile.
type Houses struct {
	grid   *world.Grid
	byTile map[world.Coord]*House
}

// NewHouses creates an empty index.
func NewHouses(g *world.Grid) *Houses {
	return &Houses{grid: g, byTile: make(map[world.Coord]*House)}
}

// At returns the house on c, or nil.
func (hs *Houses) At(c world.Coord) *House {
	return hs.byTile[hs.grid.Wrap(c)]
}

// Add indexes a house, replacing nothing; callers check At first.
func (hs *Houses) Add(h *House) {
	hs.byTile[h.At] = h
}

// Remove drops the house on c from the index.
func (hs *Houses) Remove(c world.Coord) {
	delete(hs.byTile, hs.grid.Wrap(c))
}

// Len is the number of houses.
func (hs *Houses) Len() int {
	return len(hs.byTile)
}

// All returns houses in row-major tile order.
func (hs *Houses) All() []*House {
	out := make([]*House, 0, len(hs.byTile))
	for _, h := range hs.byTile {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		return hs.grid.Index(out[i].At) < hs.grid.Index(out[j].At)
	})
	return out
}

// RecallAll sends every hog home.
func (hs *Houses) RecallAll(herd *Herd) {
	for _, h := range hs.All() {
		h.Recall(herd)
	}
}
