package engine

import (
	"fmt"

	"github.com/talgya/hogday/internal/agents"
	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/world"
)

// FacilityState is a saved facility. Corner is its northwest tile;
// Resource and Base apply to givers only, Shop to shops only.
type FacilityState struct {
	Name            string         `json:"name"`
	Kind            string         `json:"kind"`
	Corner          world.Coord    `json:"corner"`
	Resource        string         `json:"resource,omitempty"`
	Base            int            `json:"base,omitempty"`
	Holding         []economy.Good `json:"holding"`
	PreviousHolding []economy.Good `json:"previous_holding"`
	Shop            *ShopState     `json:"shop,omitempty"`
}

// ShopState is a saved shop with the goods on both faces.
type ShopState struct {
	Corner         world.Coord    `json:"corner"`
	Target         string         `json:"target"`
	Rotation       string         `json:"rotation"`
	Input          []economy.Good `json:"input"`
	Output         []economy.Good `json:"output"`
	PreviousInput  []economy.Good `json:"previous_input"`
	PreviousOutput []economy.Good `json:"previous_output"`
}

// BoardState is everything needed to rebuild a board. Hogs are listed in
// board order so tile occupant sequences come back in arrival order;
// facilities keep their placement order.
type BoardState struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Steps      int             `json:"steps"`
	Changed    bool            `json:"changed"`
	NextHogID  agents.HogID    `json:"next_hog_id"`
	Roads      []world.Coord   `json:"roads"`
	Houses     []agents.House  `json:"houses"`
	Hogs       []agents.Hog    `json:"hogs"`
	Facilities []FacilityState `json:"facilities"`
}

// State captures the board for storage.
func (b *Board) State() BoardState {
	st := BoardState{
		Width:     b.Grid.Width,
		Height:    b.Grid.Height,
		Steps:     b.Steps,
		Changed:   b.changed,
		NextHogID: b.Herd.NextID(),
		Roads:     b.Grid.Roads(),
	}
	for _, h := range b.Houses.All() {
		st.Houses = append(st.Houses, *h)
	}
	for _, h := range b.Herd.InBoardOrder() {
		st.Hogs = append(st.Hogs, *h)
	}
	for _, f := range b.Facilities.All() {
		fs := FacilityState{
			Name:            f.Name(),
			Kind:            f.Kind().String(),
			Corner:          f.Tiles()[0],
			Holding:         f.Holding(),
			PreviousHolding: f.PreviousHolding(),
		}
		switch f := f.(type) {
		case *economy.ShopOutput:
			continue
		case *economy.ShopInput:
			s := f.Shop()
			fs.Corner = s.Corner()
			fs.Holding, fs.PreviousHolding = nil, nil
			fs.Shop = &ShopState{
				Corner:         s.Corner(),
				Target:         s.Target,
				Rotation:       s.Rotation().String(),
				Input:          s.Input.Holding(),
				Output:         s.Output.Holding(),
				PreviousInput:  s.Input.PreviousHolding(),
				PreviousOutput: s.Output.PreviousHolding(),
			}
		case *economy.Giver:
			fs.Resource = f.Resource()
			fs.Base = f.BaseCount()
		}
		st.Facilities = append(st.Facilities, fs)
	}
	return st
}

// BoardFromState rebuilds a saved board.
func BoardFromState(st BoardState, cat *economy.Catalog) (*Board, error) {
	if st.Width < 1 || st.Height < 1 {
		return nil, fmt.Errorf("board state: bad size %dx%d", st.Width, st.Height)
	}
	g := world.NewGrid(st.Width, st.Height)
	for _, c := range st.Roads {
		g.SetRoad(c, true)
	}
	b := NewBoard(g, cat)
	b.Steps = st.Steps
	b.changed = st.Changed

	for i := range st.Hogs {
		h := st.Hogs[i]
		b.Herd.Restore(&h)
	}
	b.Herd.SetNextID(st.NextHogID)
	for i := range st.Houses {
		h := st.Houses[i]
		if b.Herd.Get(h.Hog) == nil {
			return nil, fmt.Errorf("house at %v: hog %d missing", h.At, h.Hog)
		}
		b.Houses.Add(&h)
	}

	for _, fs := range st.Facilities {
		if fs.Shop != nil {
			if err := restoreShop(b, *fs.Shop); err != nil {
				return nil, err
			}
			continue
		}
		f, err := restoreFacility(g, fs, cat)
		if err != nil {
			return nil, err
		}
		if err := b.Facilities.Place(f); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func restoreShop(b *Board, ss ShopState) error {
	s, err := economy.NewShop(b.Grid, ss.Corner, ss.Target, b.Catalog)
	if err != nil {
		return fmt.Errorf("shop at %v: %w", ss.Corner, err)
	}
	rot, err := economy.ParseRotation(ss.Rotation)
	if err != nil {
		return fmt.Errorf("shop at %v: %w", ss.Corner, err)
	}
	s.SetRotation(rot)
	s.Input.SetHolding(ss.Input, ss.PreviousInput)
	s.Output.SetHolding(ss.Output, ss.PreviousOutput)
	return b.Facilities.PlaceShop(s)
}

func restoreFacility(g *world.Grid, fs FacilityState, cat *economy.Catalog) (economy.Facility, error) {
	switch fs.Name {
	case economy.CastleName:
		c := economy.NewCastle(g, fs.Corner)
		c.SetHolding(fs.Holding, fs.PreviousHolding)
		return c, nil
	}
	if fs.Kind != economy.KindSource.String() || fs.Resource == "" {
		return nil, fmt.Errorf("facility %q at %v: unknown kind", fs.Name, fs.Corner)
	}
	gv, err := economy.NewGiver(g, fs.Corner, fs.Name, fs.Resource, fs.Base, cat)
	if err != nil {
		return nil, err
	}
	gv.SetHolding(fs.Holding, fs.PreviousHolding)
	return gv, nil
}

// Snapshot is a board together with its clock and history.
type Snapshot struct {
	Tick   uint64     `json:"tick"`
	Board  BoardState `json:"board"`
	Events []Event    `json:"events"`
}

// Snapshot captures the simulation for storage.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return Snapshot{Tick: s.lastTick, Board: s.board.State(), Events: events}
}

// SimulationFromSnapshot rebuilds a simulation from storage.
func SimulationFromSnapshot(snap Snapshot, cat *economy.Catalog) (*Simulation, error) {
	b, err := BoardFromState(snap.Board, cat)
	if err != nil {
		return nil, err
	}
	sim := NewSimulation(b)
	sim.lastTick = snap.Tick
	sim.RestoreEvents(snap.Events)
	return sim, nil
}
