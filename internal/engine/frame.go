package engine

import (
	"strings"

	"github.com/talgya/hogday/internal/agents"
	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/world"
)

// Exchange is the facility tile a hog traded across and the direction the
// hog faced to reach it.
type Exchange struct {
	Tile      world.Coord     `json:"tile"`
	Direction world.Direction `json:"direction"`
}

// HogFrame is what a renderer needs to animate one hog between two ticks.
type HogFrame struct {
	ID                    agents.HogID    `json:"id"`
	Decorator             string          `json:"decorator,omitempty"`
	Pos                   world.Coord     `json:"pos"`
	HoppedFrom            *world.Coord    `json:"hopped_from,omitempty"`
	Facing                world.Direction `json:"facing"`
	StackPosition         int             `json:"stack_position"`
	PreviousStackPosition int             `json:"previous_stack_position"`
	Holding               string          `json:"holding,omitempty"`
	PreviousHolding       string          `json:"previous_holding,omitempty"`
	GaveTo                *Exchange       `json:"gave_to,omitempty"`
	TookFrom              *Exchange       `json:"took_from,omitempty"`
	Stuck                 bool            `json:"stuck"`
	Looped                bool            `json:"looped"`
}

// FacilityFrame is the stock of one facility before and after a tick.
type FacilityFrame struct {
	Name            string        `json:"name"`
	Kind            string        `json:"kind"`
	Tiles           []world.Coord `json:"tiles"`
	Holding         []string      `json:"holding"`
	PreviousHolding []string      `json:"previous_holding"`
}

// Frame is a read-only snapshot of a board after a tick.
type Frame struct {
	Tick       uint64          `json:"tick"`
	Steps      int             `json:"steps"`
	Hogs       []HogFrame      `json:"hogs"`
	Facilities []FacilityFrame `json:"facilities"`
}

func goodNames(goods []economy.Good) []string {
	names := make([]string, len(goods))
	for i, g := range goods {
		names[i] = g.Name
	}
	return names
}

func (b *Board) exchange(h *agents.Hog, tile *world.Coord) *Exchange {
	if tile == nil {
		return nil
	}
	return &Exchange{Tile: *tile, Direction: b.Grid.MustDirectionOf(h.Pos, *tile)}
}

// Frame captures the render state of every hog and facility.
func (b *Board) Frame(tick uint64) Frame {
	f := Frame{Tick: tick, Steps: b.Steps}
	for _, h := range b.Herd.All() {
		hf := HogFrame{
			ID:                    h.ID,
			Decorator:             h.Decorator,
			Pos:                   h.Pos,
			Facing:                h.Facing,
			StackPosition:         b.Herd.StackPosition(h),
			PreviousStackPosition: h.PreviousStackPosition,
			GaveTo:                b.exchange(h, h.GaveTo),
			TookFrom:              b.exchange(h, h.TookFrom),
			Stuck:                 h.Stuck,
			Looped:                h.Looped,
		}
		if h.HoppedFrom != nil {
			from := *h.HoppedFrom
			hf.HoppedFrom = &from
		}
		if h.Holding != nil {
			hf.Holding = h.Holding.Name
		}
		if h.PreviousHolding != nil {
			hf.PreviousHolding = h.PreviousHolding.Name
		}
		f.Hogs = append(f.Hogs, hf)
	}
	for _, fac := range b.Facilities.All() {
		f.Facilities = append(f.Facilities, FacilityFrame{
			Name:            fac.Name(),
			Kind:            fac.Kind().String(),
			Tiles:           fac.Tiles(),
			Holding:         goodNames(fac.Holding()),
			PreviousHolding: goodNames(fac.PreviousHolding()),
		})
	}
	return f
}

// ShopLayout describes a placed shop.
type ShopLayout struct {
	Corner   world.Coord          `json:"corner"`
	Target   string               `json:"target"`
	Rotation string               `json:"rotation"`
	Recipe   []economy.Ingredient `json:"recipe"`
}

// FacilityLayout describes a placed single-kind facility.
type FacilityLayout struct {
	Name            string        `json:"name"`
	Kind            string        `json:"kind"`
	Tiles           []world.Coord `json:"tiles"`
	TilePreferences []world.Coord `json:"tile_preferences"`
}

// Layout is the static part of a board: what is where.
type Layout struct {
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Roads      []world.Coord    `json:"roads"`
	Houses     []*agents.House  `json:"houses"`
	Facilities []FacilityLayout `json:"facilities"`
	Shops      []ShopLayout     `json:"shops"`
}

// Layout describes roads, houses and facilities.
func (b *Board) Layout() Layout {
	l := Layout{
		Width:  b.Grid.Width,
		Height: b.Grid.Height,
		Roads:  b.Grid.Roads(),
	}
	for _, h := range b.Houses.All() {
		house := *h
		l.Houses = append(l.Houses, &house)
	}
	for _, f := range b.Facilities.All() {
		l.Facilities = append(l.Facilities, FacilityLayout{
			Name:            f.Name(),
			Kind:            f.Kind().String(),
			Tiles:           f.Tiles(),
			TilePreferences: f.TilePreferences(),
		})
	}
	for _, s := range b.Facilities.Shops() {
		l.Shops = append(l.Shops, ShopLayout{
			Corner:   s.Corner(),
			Target:   s.Target,
			Rotation: s.Rotation().String(),
			Recipe:   s.Recipe(),
		})
	}
	return l
}

var facilityGlyphs = map[string]byte{
	economy.BerryBushName:  'b',
	economy.TreeName:       't',
	economy.CastleName:     'C',
	economy.ShopInputName:  's',
	economy.ShopOutputName: 'o',
}

// String draws the board north row first: '#' road, '.' ground, 'H' house,
// facility letters, and a hog's arrow on any tile with hogs.
func (b *Board) String() string {
	var sb strings.Builder
	for y := b.Grid.Height - 1; y >= 0; y-- {
		for x := 0; x < b.Grid.Width; x++ {
			c := world.Coord{X: x, Y: y}
			switch {
			case len(b.Herd.Occupants(c)) > 0:
				sb.WriteString(b.Herd.Occupants(c)[0].Facing.Arrow())
			case b.Houses.At(c) != nil:
				sb.WriteByte('H')
			case b.Facilities.At(c) != nil:
				sb.WriteByte(facilityGlyphs[b.Facilities.At(c).Name()])
			case b.Grid.IsRoad(c):
				sb.WriteByte('#')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
