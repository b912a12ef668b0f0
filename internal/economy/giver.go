package economy

import (
	"fmt"

	"github.com/talgya/hogday/internal/world"
)

// Giver is a single-tile Source that restocks to a fixed count every day.
type Giver struct {
	stock

	name     string
	resource string
	base     int
	tiles    []world.Coord
	prefs    []world.Coord
	catalog  *Catalog
}

// Giver presets.
const (
	BerryBushName = "berry_bush"
	TreeName      = "tree"
)

// NewBerryBush places a bush that gives two units of food a day.
func NewBerryBush(g *world.Grid, at world.Coord, cat *Catalog) (*Giver, error) {
	return NewGiver(g, at, BerryBushName, "food", 2, cat)
}

// NewTree places a tree that gives one unit of wood a day.
func NewTree(g *world.Grid, at world.Coord, cat *Catalog) (*Giver, error) {
	return NewGiver(g, at, TreeName, "wood", 1, cat)
}

// NewGiver creates a fully stocked giver of an arbitrary raw good.
func NewGiver(g *world.Grid, at world.Coord, name, resource string, base int, cat *Catalog) (*Giver, error) {
	at = g.Wrap(at)
	gv := &Giver{
		name:     name,
		resource: resource,
		base:     base,
		tiles:    []world.Coord{at},
		prefs:    singleTilePreferences(g, at),
		catalog:  cat,
	}
	if err := gv.Replenish(); err != nil {
		return nil, err
	}
	return gv, nil
}

func (gv *Giver) Kind() Kind                     { return KindSource }
func (gv *Giver) Name() string                   { return gv.name }
func (gv *Giver) Tiles() []world.Coord           { return gv.tiles }
func (gv *Giver) TilePreferences() []world.Coord { return gv.prefs }

// Resource is the good this giver hands out.
func (gv *Giver) Resource() string { return gv.resource }

// BaseCount is the stock the giver restocks to.
func (gv *Giver) BaseCount() int { return gv.base }

// Capacity is the current stock; an empty giver serves nobody.
func (gv *Giver) Capacity(string) int {
	return len(gv.holding)
}

// Emit removes one unit from stock.
func (gv *Giver) Emit() Good {
	return gv.pop()
}

// Replenish restocks to the base count.
func (gv *Giver) Replenish() error {
	goods := make([]Good, 0, gv.base)
	for i := 0; i < gv.base; i++ {
		g, err := gv.catalog.Raw(gv.resource, 0)
		if err != nil {
			return fmt.Errorf("replenish %s: %w", gv.name, err)
		}
		goods = append(goods, g)
	}
	gv.SetHolding(goods, goods)
	return nil
}
