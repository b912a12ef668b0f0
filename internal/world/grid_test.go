package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridWrapsBothAxes(t *testing.T) {
	g := NewGrid(5, 3)
	assert.Equal(t, Coord{4, 2}, g.Wrap(Coord{-1, -1}))
	assert.Equal(t, Coord{0, 0}, g.Wrap(Coord{5, 3}))
	assert.Equal(t, Coord{0, 1}, g.Neighbor(Coord{4, 1}, East))
	assert.Equal(t, Coord{2, 2}, g.Neighbor(Coord{2, 0}, South))
	assert.Equal(t, Coord{2, 0}, g.Neighbor(Coord{2, 2}, North))
}

func TestGridIndexRoundTrip(t *testing.T) {
	g := NewGrid(7, 4)
	for i := 0; i < g.TileCount(); i++ {
		assert.Equal(t, i, g.Index(g.CoordAt(i)))
	}
}

func TestToggleRoad(t *testing.T) {
	g := NewGrid(3, 3)
	c := Coord{1, 1}
	assert.False(t, g.IsRoad(c))
	assert.True(t, g.ToggleRoad(c))
	assert.True(t, g.IsRoad(Coord{4, -2}), "wrapped lookup sees the same tile")
	assert.Equal(t, []Coord{{1, 1}}, g.Roads())
	assert.False(t, g.ToggleRoad(c))
	assert.Empty(t, g.Roads())
}

func TestDirectionTurns(t *testing.T) {
	for _, d := range Cardinals {
		assert.Equal(t, d, d.Right().Left())
		assert.Equal(t, d, d.Right().Right().Right().Right())
		assert.Equal(t, d.Back(), d.Left().Left())
	}
	assert.Equal(t, East, North.Right())
	assert.Equal(t, West, North.Left())
	assert.Equal(t, None, None.Right())
}

func TestParseDirection(t *testing.T) {
	for _, d := range Cardinals {
		parsed, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
	_, err := ParseDirection("up")
	assert.ErrorIs(t, err, ErrBadDirection)
}

func TestDirectionOf(t *testing.T) {
	g := NewGrid(6, 6)
	d, ok := g.DirectionOf(Coord{0, 0}, Coord{5, 0})
	require.True(t, ok)
	assert.Equal(t, West, d)

	_, ok = g.DirectionOf(Coord{0, 0}, Coord{2, 2})
	assert.False(t, ok)

	assert.Panics(t, func() { g.MustDirectionOf(Coord{0, 0}, Coord{3, 3}) })
	assert.Equal(t, North, g.MustDirectionOf(Coord{1, 1}, Coord{1, 2}))
}

func TestRotateMatrixClockwise(t *testing.T) {
	m := [][]int{
		{0, Hole},
		{Hole, Hole},
	}
	assert.Equal(t, [][]int{{Hole, 0}, {Hole, Hole}}, RotateMatrix(m))
	assert.Equal(t, [][]int{{Hole, Hole}, {0, Hole}}, RotateMatrixTimes(m, 3))
	assert.Equal(t, m, RotateMatrixTimes(m, 4))
}

func TestNeighborsFromMatrix(t *testing.T) {
	g := NewGrid(10, 10)
	ring := [][]int{
		{Hole, 0, Hole},
		{3, Hole, 1},
		{Hole, 2, Hole},
	}
	got := g.NeighborsFromMatrix(ring, Coord{5, 5}, Coord{1, 1})
	assert.Equal(t, []Coord{{5, 6}, {6, 5}, {5, 4}, {4, 5}}, got)
}

func TestGridString(t *testing.T) {
	g := NewGrid(3, 2)
	g.SetRoad(Coord{0, 1}, true)
	g.SetRoad(Coord{2, 0}, true)
	assert.Equal(t, "#..\n..#", g.String())
}
