package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/hogday/internal/agents"
	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/world"
)

// ErrUnknownTool is returned for an edit naming no known tool.
var ErrUnknownTool = errors.New("engine: unknown tool")

// Board-editing tools.
const (
	ToolRoad      = "road_toggle"
	ToolHouse     = "house_toggle"
	ToolRotate    = "rotate_house"
	ToolTree      = "tree_toggle"
	ToolBerryBush = "berry_bush_toggle"
	ToolCastle    = "castle_toggle"
	ToolShop      = "shop_toggle"
	ToolShopTurn  = "shop_rotate"
)

// Tools lists every editing tool.
var Tools = []string{ToolRoad, ToolHouse, ToolRotate, ToolTree, ToolBerryBush, ToolCastle, ToolShop, ToolShopTurn}

// Edit is one click of a tool on a tile. Recipe names the good a new shop
// crafts; it defaults to the first craftable good in the catalog.
type Edit struct {
	Tool   string      `json:"tool"`
	At     world.Coord `json:"at"`
	Recipe string      `json:"recipe,omitempty"`
}

// Apply runs an edit. Every successful edit is a topology change.
func (b *Board) Apply(e Edit) error {
	at := b.Grid.Wrap(e.At)
	var err error
	switch e.Tool {
	case ToolRoad:
		b.Grid.ToggleRoad(at)
	case ToolHouse:
		b.toggleHouse(at)
	case ToolRotate:
		if h := b.Houses.At(at); h != nil {
			h.Rotate(b.Herd)
		}
	case ToolTree:
		err = b.toggleFacility(at, economy.TreeName, func() (economy.Facility, error) {
			return economy.NewTree(b.Grid, at, b.Catalog)
		})
	case ToolBerryBush:
		err = b.toggleFacility(at, economy.BerryBushName, func() (economy.Facility, error) {
			return economy.NewBerryBush(b.Grid, at, b.Catalog)
		})
	case ToolCastle:
		err = b.toggleFacility(at, economy.CastleName, func() (economy.Facility, error) {
			return economy.NewCastle(b.Grid, at), nil
		})
	case ToolShop:
		err = b.toggleShop(at, e.Recipe)
	case ToolShopTurn:
		if s := b.shopAt(at); s != nil {
			b.Facilities.RotateShop(s)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTool, e.Tool)
	}
	if err != nil {
		return fmt.Errorf("%s at %v: %w", e.Tool, at, err)
	}
	b.MarkChanged()
	slog.Debug("board edited", "tool", e.Tool, "at", at)
	b.record("edit", "%s at %v", e.Tool, at)
	return nil
}

func (b *Board) toggleHouse(at world.Coord) {
	if h := b.Houses.At(at); h != nil {
		h.Demolish(b.Herd)
		b.Houses.Remove(at)
		return
	}
	b.Houses.Add(agents.BuildHouse(b.Herd, at, world.North, ""))
}

// toggleFacility removes the facility on at if it has the given name, and
// otherwise places a new one there.
func (b *Board) toggleFacility(at world.Coord, name string, build func() (economy.Facility, error)) error {
	if f := b.Facilities.At(at); f != nil && f.Name() == name {
		b.Facilities.Remove(f)
		return nil
	}
	f, err := build()
	if err != nil {
		return err
	}
	return b.Facilities.Place(f)
}

func (b *Board) shopAt(at world.Coord) *economy.Shop {
	switch f := b.Facilities.At(at).(type) {
	case *economy.ShopInput:
		return f.Shop()
	case *economy.ShopOutput:
		return f.Shop()
	}
	return nil
}

func (b *Board) toggleShop(at world.Coord, recipe string) error {
	if s := b.shopAt(at); s != nil {
		b.Facilities.Remove(s.Input)
		return nil
	}
	if recipe == "" {
		recipes := b.Catalog.Recipes()
		if len(recipes) == 0 {
			return economy.ErrNotCraftable
		}
		recipe = recipes[0]
	}
	s, err := economy.NewShop(b.Grid, at, recipe, b.Catalog)
	if err != nil {
		return err
	}
	return b.Facilities.PlaceShop(s)
}
