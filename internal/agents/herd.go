package agents

import (
	"sort"

	"github.com/talgya/hogday/internal/world"
)

// Herd owns every hog on a board. Hogs live in an arena addressed by HogID;
// each tile keeps an ordered sequence of the IDs standing on it, oldest
// arrival first.
type Herd struct {
	grid   *world.Grid
	hogs   []*Hog // index = ID-1; nil once removed
	tiles  map[world.Coord][]HogID
	count  int
	nextID HogID
}

// NewHerd creates an empty herd on g.
func NewHerd(g *world.Grid) *Herd {
	return &Herd{
		grid:   g,
		tiles:  make(map[world.Coord][]HogID),
		nextID: 1,
	}
}

// Len is the number of live hogs.
func (h *Herd) Len() int { return h.count }

// NextID is the ID the next spawned hog will get.
func (h *Herd) NextID() HogID { return h.nextID }

// SetNextID raises the next ID to be issued, e.g. when restoring from storage.
func (h *Herd) SetNextID(id HogID) {
	if id > h.nextID {
		h.nextID = id
	}
}

// Spawn creates a hog at the back of the tile's occupant sequence.
func (h *Herd) Spawn(at world.Coord, facing world.Direction) *Hog {
	hog := &Hog{ID: h.nextID, Facing: facing}
	h.nextID++
	h.insert(hog, h.grid.Wrap(at))
	return hog
}

// Restore puts back a hog with a known ID, as loaded from storage.
func (h *Herd) Restore(hog *Hog) {
	if hog.ID >= h.nextID {
		h.nextID = hog.ID + 1
	}
	h.insert(hog, h.grid.Wrap(hog.Pos))
}

func (h *Herd) insert(hog *Hog, at world.Coord) {
	for int(hog.ID) > len(h.hogs) {
		h.hogs = append(h.hogs, nil)
	}
	if h.hogs[hog.ID-1] == nil {
		h.count++
	}
	h.hogs[hog.ID-1] = hog
	hog.Pos = at
	h.tiles[at] = append(h.tiles[at], hog.ID)
}

// Get returns a live hog, or nil.
func (h *Herd) Get(id HogID) *Hog {
	if id == 0 || int(id) > len(h.hogs) {
		return nil
	}
	return h.hogs[id-1]
}

// Remove takes a hog off the board for good.
func (h *Herd) Remove(id HogID) {
	hog := h.Get(id)
	if hog == nil {
		return
	}
	h.detach(hog)
	h.hogs[id-1] = nil
	h.count--
}

func (h *Herd) detach(hog *Hog) {
	ids := h.tiles[hog.Pos]
	for i, other := range ids {
		if other == hog.ID {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(h.tiles, hog.Pos)
		return
	}
	h.tiles[hog.Pos] = ids
}

// MoveTo relocates a hog to the back of another tile's sequence and turns
// it to face d. Leaving the old tile and joining the new one happen together.
func (h *Herd) MoveTo(hog *Hog, to world.Coord, d world.Direction) {
	h.detach(hog)
	to = h.grid.Wrap(to)
	hog.Pos = to
	hog.Facing = d
	h.tiles[to] = append(h.tiles[to], hog.ID)
}

// Occupants returns the hogs on a tile in arrival order.
func (h *Herd) Occupants(c world.Coord) []*Hog {
	ids := h.tiles[h.grid.Wrap(c)]
	out := make([]*Hog, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.hogs[id-1])
	}
	return out
}

// StackPosition is the hog's index in its tile's occupant sequence.
func (h *Herd) StackPosition(hog *Hog) int {
	for i, id := range h.tiles[hog.Pos] {
		if id == hog.ID {
			return i
		}
	}
	return -1
}

// All returns live hogs in ID order.
func (h *Herd) All() []*Hog {
	out := make([]*Hog, 0, h.count)
	for _, hog := range h.hogs {
		if hog != nil {
			out = append(out, hog)
		}
	}
	return out
}

// InBoardOrder returns live hogs tile by tile in row-major order, each
// tile's hogs in arrival order.
func (h *Herd) InBoardOrder() []*Hog {
	occupied := make([]world.Coord, 0, len(h.tiles))
	for c := range h.tiles {
		occupied = append(occupied, c)
	}
	sort.Slice(occupied, func(i, j int) bool {
		return h.grid.Index(occupied[i]) < h.grid.Index(occupied[j])
	})
	out := make([]*Hog, 0, h.count)
	for _, c := range occupied {
		for _, id := range h.tiles[c] {
			out = append(out, h.hogs[id-1])
		}
	}
	return out
}
