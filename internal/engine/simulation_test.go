package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/world"
)

func TestApplyEdits(t *testing.T) {
	b := parseBoard(t, "......", "......", "......", "......", "......", "......")

	require.NoError(t, b.Apply(Edit{Tool: ToolRoad, At: at(0, 0)}))
	assert.True(t, b.Grid.IsRoad(at(0, 0)))
	assert.True(t, b.Changed())

	require.NoError(t, b.Apply(Edit{Tool: ToolHouse, At: at(0, 0)}))
	house := b.Houses.At(at(0, 0))
	require.NotNil(t, house)
	assert.Equal(t, 1, b.Herd.Len())

	require.NoError(t, b.Apply(Edit{Tool: ToolRotate, At: at(0, 0)}))
	assert.Equal(t, world.East, house.Facing)
	assert.Equal(t, world.East, b.Herd.Get(house.Hog).Facing)

	require.NoError(t, b.Apply(Edit{Tool: ToolHouse, At: at(0, 0)}))
	assert.Nil(t, b.Houses.At(at(0, 0)))
	assert.Equal(t, 0, b.Herd.Len())

	require.NoError(t, b.Apply(Edit{Tool: ToolCastle, At: at(1, 4)}))
	assert.Equal(t, economy.CastleName, b.Facilities.At(at(3, 2)).Name())

	err := b.Apply(Edit{Tool: ToolTree, At: at(2, 3)})
	assert.True(t, errors.Is(err, economy.ErrOccupied))

	// Clicking any castle tile removes it.
	require.NoError(t, b.Apply(Edit{Tool: ToolCastle, At: at(3, 2)}))
	assert.Nil(t, b.Facilities.At(at(1, 4)))

	require.NoError(t, b.Apply(Edit{Tool: ToolShop, At: at(2, 3), Recipe: "pie"}))
	require.Len(t, b.Facilities.Shops(), 1)
	shop := b.Facilities.Shops()[0]
	assert.Equal(t, "pie", shop.Target)
	assert.Equal(t, economy.RotationSW, shop.Rotation())

	require.NoError(t, b.Apply(Edit{Tool: ToolShopTurn, At: at(3, 3)}))
	assert.Equal(t, economy.RotationNW, shop.Rotation())

	err = b.Apply(Edit{Tool: ToolShop, At: at(0, 5), Recipe: "food"})
	assert.True(t, errors.Is(err, economy.ErrNotCraftable))

	require.NoError(t, b.Apply(Edit{Tool: ToolShop, At: at(2, 2)}))
	assert.Empty(t, b.Facilities.Shops())
	assert.Equal(t, 0, b.Facilities.Len())

	err = b.Apply(Edit{Tool: "paint", At: at(0, 0)})
	assert.True(t, errors.Is(err, ErrUnknownTool))
}

func TestResetDayRecallsAndReplenishes(t *testing.T) {
	b := parseBoard(t,
		"..#..",
		"..#..",
		"..#..",
		"..#..",
		"..#..",
	)
	require.NoError(t, b.Apply(Edit{Tool: ToolHouse, At: at(2, 0)}))
	require.NoError(t, b.Apply(Edit{Tool: ToolBerryBush, At: at(3, 2)}))
	bush := b.Facilities.At(at(3, 2))
	require.NotNil(t, bush)

	for i := 0; i < 2; i++ {
		require.NoError(t, b.Step())
	}
	hog := b.Herd.Get(b.Houses.At(at(2, 0)).Hog)
	assert.Equal(t, at(2, 2), hog.Pos)
	require.NotNil(t, hog.Holding)
	assert.Equal(t, 1, bush.Capacity("food"))
	assert.Equal(t, 2, b.Steps)

	require.NoError(t, b.ResetDay())
	assert.Equal(t, 0, b.Steps)
	assert.Equal(t, at(2, 0), hog.Pos)
	assert.Nil(t, hog.Holding)
	assert.Equal(t, 2, bush.Capacity("food"))
	assert.True(t, b.Changed())
}

func TestSimulationEventsAreBounded(t *testing.T) {
	b := parseBoard(t, "..", "..")
	sim := NewSimulation(b)
	for i := 0; i < maxEvents+10; i++ {
		require.NoError(t, sim.Apply(Edit{Tool: ToolRoad, At: at(0, 0)}))
	}
	events := sim.Events(0)
	assert.Len(t, events, maxEvents)
	assert.Equal(t, "edit", events[0].Category)
	assert.Len(t, sim.Events(5), 5)
}

func TestSimulationStatus(t *testing.T) {
	b, _ := ringBoard(t)
	sim := NewSimulation(b)
	require.NoError(t, sim.Step(1))

	st := sim.Status()
	assert.Equal(t, uint64(1), st.Tick)
	assert.Equal(t, 8, st.Hogs)
	assert.Equal(t, 8, st.Looped)
	assert.Equal(t, 8, st.Moved)
	assert.Equal(t, 0, st.Stuck)
	assert.Equal(t, 1, st.Steps)

	loops := 0
	for _, e := range sim.Events(0) {
		if e.Category == "loop" {
			loops++
			assert.Equal(t, uint64(1), e.Tick)
		}
	}
	assert.Equal(t, 1, loops)
}

func TestGeneratedBoardKeepsEveryHogOnOneTile(t *testing.T) {
	b, err := GenerateBoard(world.SmallTestConfig(), world.FeatureCounts{
		world.FeatureHouse:     5,
		world.FeatureBerryBush: 3,
		world.FeatureTree:      3,
		world.FeatureCastle:    1,
		world.FeatureShop:      1,
	}, economy.DefaultCatalog())
	require.NoError(t, err)
	require.Equal(t, b.Houses.Len(), b.Herd.Len())

	for tick := 0; tick < 40; tick++ {
		require.NoError(t, b.Step())
		seen := 0
		for i := 0; i < b.Grid.TileCount(); i++ {
			for _, h := range b.Herd.Occupants(b.Grid.CoordAt(i)) {
				assert.Equal(t, b.Grid.CoordAt(i), h.Pos)
				assert.True(t, h.HasStepped)
				assert.False(t, h.IsWaiting)
				seen++
			}
		}
		assert.Equal(t, b.Herd.Len(), seen)
	}
}

func TestEngineAdvanceRunsDayCallback(t *testing.T) {
	e := NewEngine()
	e.DayLength = 3
	var ticks, days []uint64
	e.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	e.OnDay = func(tick uint64) { days = append(days, tick) }

	for i := 0; i < 7; i++ {
		e.Advance()
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7}, ticks)
	assert.Equal(t, []uint64{3, 6}, days)
	assert.Equal(t, uint64(7), e.Tick())
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	ticked := make(chan struct{}, 1)
	e.OnTick = func(uint64) {
		select {
		case ticked <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("engine never ticked")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
	assert.False(t, e.Running())
}

func TestEngineSpeedClamps(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, 1.0, e.Speed())
	e.SetSpeed(-2)
	assert.Equal(t, 0.0, e.Speed())
	e.SetSpeed(4)
	assert.Equal(t, 4.0, e.Speed())
}

func TestSnapshotRoundTripKeepsOccupantOrder(t *testing.T) {
	b, err := GenerateBoard(world.SmallTestConfig(), world.FeatureCounts{
		world.FeatureHouse:     6,
		world.FeatureBerryBush: 2,
		world.FeatureTree:      2,
		world.FeatureCastle:    1,
		world.FeatureShop:      1,
	}, economy.DefaultCatalog())
	require.NoError(t, err)
	sim := NewSimulation(b)
	for tick := uint64(1); tick <= 15; tick++ {
		require.NoError(t, sim.Step(tick))
	}

	snap := sim.Snapshot()
	assert.Equal(t, len(snap.Board.Facilities), sim.Status().Facilities)

	restored, err := SimulationFromSnapshot(snap, economy.DefaultCatalog())
	require.NoError(t, err)

	assert.Equal(t, sim.CurrentTick(), restored.CurrentTick())
	assert.Equal(t, sim.String(), restored.String())
	assert.Equal(t, sim.Frame(), restored.Frame())
	assert.Equal(t, sim.Layout(), restored.Layout())
	assert.Equal(t, snap, restored.Snapshot())

	// Both copies keep evolving identically.
	require.NoError(t, sim.Step(16))
	require.NoError(t, restored.Step(16))
	assert.Equal(t, sim.Frame(), restored.Frame())
}

func TestBoardStateKeepsPreviousStock(t *testing.T) {
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
	bush, err := economy.NewBerryBush(b.Grid, at(1, 1), b.Catalog)
	require.NoError(t, err)
	require.NoError(t, b.Facilities.Place(bush))
	shop, err := economy.NewShop(b.Grid, at(4, 1), "basket", b.Catalog)
	require.NoError(t, err)
	require.NoError(t, b.Facilities.PlaceShop(shop))
	for i := 0; i < 2; i++ {
		wood, err := b.Catalog.Raw("wood", i)
		require.NoError(t, err)
		shop.Input.Absorb(wood)
	}

	carrier := spawn(b, 2, 3, world.North)
	food, err := b.Catalog.Raw("food", 0)
	require.NoError(t, err)
	carrier.Holding = &food
	picker := spawn(b, 2, 0, world.North)

	require.NoError(t, b.Step())
	require.Nil(t, carrier.Holding)
	require.NotNil(t, picker.Holding)
	assert.Len(t, castle.Holding(), 1)
	assert.Empty(t, castle.PreviousHolding())
	assert.Len(t, bush.PreviousHolding(), 2)
	assert.Len(t, shop.Input.PreviousHolding(), 2)
	assert.Len(t, shop.Output.Holding(), 1)

	// A shop is one facility, not one per face.
	assert.Equal(t, 4, b.Facilities.Len())
	assert.Equal(t, 3, b.Facilities.Placed())
	assert.Len(t, b.State().Facilities, b.Facilities.Placed())

	// Through JSON, the way snapshot files carry it.
	raw, err := json.Marshal(b.State())
	require.NoError(t, err)
	var st BoardState
	require.NoError(t, json.Unmarshal(raw, &st))
	restored, err := BoardFromState(st, b.Catalog)
	require.NoError(t, err)

	assert.Equal(t, b.Frame(1), restored.Frame(1))
	assert.Equal(t, b.State(), restored.State())

	restoredShops := restored.Facilities.Shops()
	require.Len(t, restoredShops, 1)
	assert.Len(t, restoredShops[0].Input.PreviousHolding(), 2)
	assert.Empty(t, restoredShops[0].Input.Holding())
	assert.Empty(t, restoredShops[0].Output.PreviousHolding())
	for _, f := range restored.Facilities.All() {
		switch f.Name() {
		case economy.CastleName:
			assert.Empty(t, f.PreviousHolding())
			assert.Len(t, f.Holding(), 1)
		case economy.BerryBushName:
			assert.Len(t, f.PreviousHolding(), 2)
			assert.Len(t, f.Holding(), 1)
		}
	}
}
