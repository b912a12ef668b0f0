package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hogday/internal/agents"
	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/world"
)

func TestSourceServesUpToItsStock(t *testing.T) {
	b := parseBoard(t,
		"..#.#..",
		"..#.#..",
		"..#.#..",
		"..#.#..",
		"..#.#..",
	)
	bush, err := economy.NewBerryBush(b.Grid, at(3, 2), b.Catalog)
	require.NoError(t, err)
	require.NoError(t, b.Facilities.Place(bush))

	west := spawn(b, 2, 1, world.North)
	late := spawn(b, 2, 0, world.North)
	east := spawn(b, 4, 3, world.South)

	require.NoError(t, b.Step())
	assert.Equal(t, at(2, 2), west.Pos)
	assert.Equal(t, at(4, 2), east.Pos)
	require.NotNil(t, west.Holding)
	require.NotNil(t, east.Holding)
	assert.Equal(t, "food", west.Holding.Name)
	assert.Equal(t, "food", east.Holding.Name)
	assert.Nil(t, late.Holding)
	assert.Equal(t, 0, bush.Capacity("food"))
	assert.Len(t, bush.PreviousHolding(), 2)

	require.NotNil(t, west.TookFrom)
	assert.Equal(t, at(3, 2), *west.TookFrom)

	require.NoError(t, b.Step())
	assert.Equal(t, at(2, 2), late.Pos)
	assert.Nil(t, late.Holding)
	assert.Nil(t, late.TookFrom)
	assert.Equal(t, 0, bush.Capacity("food"))
}

func TestFullFacilityEvictsLowestRankedClaimant(t *testing.T) {
	b := parseBoard(t,
		".....",
		".....",
		".....",
		".....",
		".....",
	)
	giver, err := economy.NewGiver(b.Grid, at(2, 2), "orchard", "food", 3, b.Catalog)
	require.NoError(t, err)
	require.NoError(t, b.Facilities.Place(giver))

	// Preference order around a single tile: east, south, west, north.
	south := spawn(b, 2, 1, world.North)
	west := spawn(b, 1, 2, world.East)
	north := spawn(b, 2, 3, world.South)
	east := spawn(b, 3, 2, world.West)

	pairs := b.match([]*agents.Hog{south, west, north, east}, economy.KindSource)
	require.Len(t, pairs, 3)
	var served []*agents.Hog
	for _, p := range pairs {
		assert.Equal(t, economy.Facility(giver), p.facility)
		served = append(served, p.hog)
	}
	assert.ElementsMatch(t, []*agents.Hog{south, west, east}, served)

	b.resolve(pairs)
	assert.Equal(t, 0, giver.Capacity("food"))
	assert.Nil(t, north.Holding)
	assert.NotNil(t, east.Holding)
}

func TestTwiceEvictedHogOnlyRetriesRemainingPreferences(t *testing.T) {
	b := parseBoard(t, ".....", ".....", ".....", ".....", ".....")
	place := func(name string, c world.Coord) *economy.Giver {
		g, err := economy.NewGiver(b.Grid, c, name, "food", 1, b.Catalog)
		require.NoError(t, err)
		require.NoError(t, b.Facilities.Place(g))
		return g
	}
	front := place("front", at(2, 3))
	right := place("right", at(3, 2))
	behind := place("behind", at(2, 1))

	loser := spawn(b, 2, 2, world.North)  // south of front, west of right
	first := spawn(b, 3, 3, world.West)   // east of front: outranks loser there
	second := spawn(b, 3, 1, world.North) // south of right: outranks loser there

	pairs := b.match([]*agents.Hog{loser, first, second}, economy.KindSource)
	got := map[*agents.Hog]economy.Facility{}
	for _, p := range pairs {
		got[p.hog] = p.facility
	}
	require.Len(t, got, 2)
	assert.Equal(t, economy.Facility(front), got[first])
	assert.Equal(t, economy.Facility(right), got[second])
	assert.NotContains(t, got, loser)

	// The giver behind the loser still has stock; it was never on its list.
	assert.Equal(t, 1, behind.Capacity("food"))
	assert.NotContains(t, b.preferences(loser), economy.Facility(behind))
}

func TestEmptySourceIsNeverSelected(t *testing.T) {
	b := parseBoard(t, "...", "...", "...")
	giver, err := economy.NewGiver(b.Grid, at(1, 1), "well", "food", 0, b.Catalog)
	require.NoError(t, err)
	require.NoError(t, b.Facilities.Place(giver))
	h := spawn(b, 1, 0, world.North)

	assert.Empty(t, b.match([]*agents.Hog{h}, economy.KindSource))
}

func TestPreferenceOrderIsFrontRightLeft(t *testing.T) {
	b := parseBoard(t, ".....", ".....", ".....", ".....", ".....")
	front, err := economy.NewGiver(b.Grid, at(2, 3), "front", "food", 1, b.Catalog)
	require.NoError(t, err)
	right, err := economy.NewGiver(b.Grid, at(3, 2), "right", "food", 1, b.Catalog)
	require.NoError(t, err)
	require.NoError(t, b.Facilities.Place(front))
	require.NoError(t, b.Facilities.Place(right))

	first := spawn(b, 2, 2, world.North)
	second := spawn(b, 2, 2, world.North)

	pairs := b.match([]*agents.Hog{first, second}, economy.KindSource)
	require.Len(t, pairs, 2)
	got := map[*agents.Hog]string{}
	for _, p := range pairs {
		got[p.hog] = p.facility.Name()
	}
	assert.Equal(t, "front", got[first])
	assert.Equal(t, "right", got[second])
}

func TestDropOffAtCastle(t *testing.T) {
	b := parseBoard(t,
		"..#....",
		"..#....",
		"..#....",
		"..#....",
		"..#....",
		"..#....",
		"..#....",
	)
	castle := economy.NewCastle(b.Grid, at(3, 5))
	require.NoError(t, b.Facilities.Place(castle))

	h := spawn(b, 2, 3, world.North)
	food, err := b.Catalog.Raw("food", 0)
	require.NoError(t, err)
	h.Holding = &food

	require.NoError(t, b.Step())
	assert.Equal(t, at(2, 4), h.Pos)
	assert.Nil(t, h.Holding)
	require.NotNil(t, h.PreviousHolding)
	assert.Equal(t, "food", h.PreviousHolding.Name)
	require.NotNil(t, h.GaveTo)
	assert.Equal(t, at(3, 4), *h.GaveTo)
	assert.Len(t, castle.Holding(), 1)

	frame := b.Frame(1)
	require.Len(t, frame.Hogs, 1)
	require.NotNil(t, frame.Hogs[0].GaveTo)
	assert.Equal(t, world.East, frame.Hogs[0].GaveTo.Direction)
	assert.Equal(t, "food", frame.Hogs[0].PreviousHolding)
}

func TestSinkCapacityCountsOnlySameGood(t *testing.T) {
	b := parseBoard(t, "......", "......", "......", "......", "......")
	shop, err := economy.NewShop(b.Grid, at(2, 3), "pie", b.Catalog)
	require.NoError(t, err)
	require.NoError(t, b.Facilities.PlaceShop(shop))
	b.Facilities.SetShopRotation(shop, economy.RotationNW)

	carry := func(h *agents.Hog, name string) {
		g, err := b.Catalog.Raw(name, 0)
		require.NoError(t, err)
		h.Holding = &g
	}
	// Input tiles for NW are (3,3), (2,2) and (3,2).
	woodA := spawn(b, 4, 3, world.West)
	woodB := spawn(b, 4, 2, world.West)
	food := spawn(b, 3, 1, world.North)
	carry(woodA, "wood")
	carry(woodB, "wood")
	carry(food, "food")

	pairs := b.match([]*agents.Hog{woodB, food, woodA}, economy.KindSink)
	require.Len(t, pairs, 2)
	var served []*agents.Hog
	for _, p := range pairs {
		served = append(served, p.hog)
	}
	// The pie needs one wood; (4,3) ranks ahead of (4,2) at the input.
	assert.ElementsMatch(t, []*agents.Hog{woodA, food}, served)
}

func TestCraftAfterIngredientsArrive(t *testing.T) {
	b := parseBoard(t, "......", "......", "......", "......", "......")
	shop, err := economy.NewShop(b.Grid, at(2, 3), "basket", b.Catalog)
	require.NoError(t, err)
	require.NoError(t, b.Facilities.PlaceShop(shop))

	for i := 0; i < 2; i++ {
		wood, err := b.Catalog.Raw("wood", i)
		require.NoError(t, err)
		shop.Input.Absorb(wood)
	}
	require.NoError(t, b.Step())
	require.Len(t, shop.Output.Holding(), 1)
	assert.Equal(t, "basket", shop.Output.Holding()[0].Name)
	assert.Empty(t, shop.Input.Holding())

	events := b.drainEvents()
	require.NotEmpty(t, events)
	assert.Equal(t, "craft", events[len(events)-1].Category)
}
