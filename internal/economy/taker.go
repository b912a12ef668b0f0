package economy

import (
	"github.com/talgya/hogday/internal/world"
)

// CastleName identifies castles.
const CastleName = "castle"

// castleUnbounded stands in for "no limit" on how many hogs a castle serves.
const castleUnbounded = 100

var castleTilesMatrix = [][]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
}

// The twelve tiles bordering a castle, in reading order.
var castlePreferenceMatrix = [][]int{
	{world.Hole, 0, 1, 2, world.Hole},
	{3, world.Hole, world.Hole, world.Hole, 4},
	{5, world.Hole, world.Hole, world.Hole, 6},
	{7, world.Hole, world.Hole, world.Hole, 8},
	{world.Hole, 9, 10, 11, world.Hole},
}

// Taker is a Sink that accepts any good.
type Taker struct {
	stock

	name  string
	limit int
	tiles []world.Coord
	prefs []world.Coord
}

// NewCastle places a 3x3 castle whose northwest tile is corner.
func NewCastle(g *world.Grid, corner world.Coord) *Taker {
	corner = g.Wrap(corner)
	return &Taker{
		name:  CastleName,
		limit: castleUnbounded,
		tiles: g.TilesFromMatrix(castleTilesMatrix, corner),
		prefs: g.NeighborsFromMatrix(castlePreferenceMatrix, corner, world.Coord{X: 1, Y: 1}),
	}
}

func (t *Taker) Kind() Kind                     { return KindSink }
func (t *Taker) Name() string                   { return t.name }
func (t *Taker) Tiles() []world.Coord           { return t.tiles }
func (t *Taker) TilePreferences() []world.Coord { return t.prefs }

func (t *Taker) Capacity(string) int {
	return t.limit
}

func (t *Taker) Absorb(g Good) {
	t.holding = append(t.holding, g)
}
