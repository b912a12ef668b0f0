package world

import (
	"fmt"
	"strings"
)

// Grid holds the road layout of a toroidal board.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	roads []bool
}

// NewGrid creates a board with no roads.
func NewGrid(width, height int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Grid{
		Width:  width,
		Height: height,
		roads:  make([]bool, width*height),
	}
}

func mod(m, n int) int {
	return (m%n + n) % n
}

// Wrap maps any coordinate onto the board.
func (g *Grid) Wrap(c Coord) Coord {
	return Coord{X: mod(c.X, g.Width), Y: mod(c.Y, g.Height)}
}

// Index returns the row-major index of a (wrapped) coordinate.
func (g *Grid) Index(c Coord) int {
	c = g.Wrap(c)
	return c.X + g.Width*c.Y
}

// CoordAt is the inverse of Index.
func (g *Grid) CoordAt(i int) Coord {
	return Coord{X: mod(i, g.Width), Y: i / g.Width}
}

// TileCount returns the number of tiles on the board.
func (g *Grid) TileCount() int {
	return g.Width * g.Height
}

// Neighbor returns the tile one step from c in direction d.
func (g *Grid) Neighbor(c Coord, d Direction) Coord {
	return g.Wrap(c.Add(d.Offset()))
}

// IsRoad reports whether the tile carries road.
func (g *Grid) IsRoad(c Coord) bool {
	return g.roads[g.Index(c)]
}

// SetRoad sets or clears the road flag of a tile.
func (g *Grid) SetRoad(c Coord, road bool) {
	g.roads[g.Index(c)] = road
}

// ToggleRoad flips the road flag and returns the new value.
func (g *Grid) ToggleRoad(c Coord) bool {
	i := g.Index(c)
	g.roads[i] = !g.roads[i]
	return g.roads[i]
}

// Roads returns every road tile in index order.
func (g *Grid) Roads() []Coord {
	var out []Coord
	for i, r := range g.roads {
		if r {
			out = append(out, g.CoordAt(i))
		}
	}
	return out
}

// DirectionOf returns the direction leading from one tile to an adjacent one.
// On boards narrower than three tiles several directions may qualify; the
// first in N, E, S, W order wins.
func (g *Grid) DirectionOf(from, to Coord) (Direction, bool) {
	to = g.Wrap(to)
	for _, d := range Cardinals {
		if g.Neighbor(from, d) == to {
			return d, true
		}
	}
	return None, false
}

// MustDirectionOf is DirectionOf for callers that hold the two tiles to be
// adjacent. A miss means position bookkeeping is corrupt, so it panics.
func (g *Grid) MustDirectionOf(from, to Coord) Direction {
	d, ok := g.DirectionOf(from, to)
	if !ok {
		panic(fmt.Sprintf("world: tiles %v and %v are not adjacent", g.Wrap(from), g.Wrap(to)))
	}
	return d
}

// Adjacent reports whether two tiles share an edge.
func (g *Grid) Adjacent(a, b Coord) bool {
	_, ok := g.DirectionOf(a, b)
	return ok
}

// String renders roads as '#' and everything else as '.', north row first.
func (g *Grid) String() string {
	var b strings.Builder
	for y := g.Height - 1; y >= 0; y-- {
		for x := 0; x < g.Width; x++ {
			if g.IsRoad(Coord{x, y}) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		if y > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
