package economy

import (
	"errors"
	"fmt"

	"github.com/talgya/hogday/internal/world"
)

// ErrOccupied is returned when a facility would overlap another one.
var ErrOccupied = errors.New("economy: tile already has a facility")

// Registry indexes live facilities by the tiles they cover. Tiles do not
// own facilities; a facility registers itself onto its tiles while alive.
type Registry struct {
	byTile map[world.Coord]Facility
	all    []Facility
	shops  []*Shop
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byTile: make(map[world.Coord]Facility)}
}

// At returns the facility covering c, if any.
func (r *Registry) At(c world.Coord) Facility {
	return r.byTile[c]
}

// All returns live facilities in placement order; shop faces follow their shop.
func (r *Registry) All() []Facility {
	return r.all
}

// Shops returns live shops in placement order.
func (r *Registry) Shops() []*Shop {
	return r.shops
}

// Len is the number of live facilities, counting both faces of a shop.
func (r *Registry) Len() int {
	return len(r.all)
}

// Placed is the number of things placed on the board: each shop counts once.
func (r *Registry) Placed() int {
	return len(r.all) - len(r.shops)
}

func (r *Registry) free(tiles []world.Coord) error {
	for _, c := range tiles {
		if f, ok := r.byTile[c]; ok {
			return fmt.Errorf("%w: %v holds %s", ErrOccupied, c, f.Name())
		}
	}
	return nil
}

func (r *Registry) register(f Facility) {
	for _, c := range f.Tiles() {
		r.byTile[c] = f
	}
}

func (r *Registry) unregister(f Facility) {
	for _, c := range f.Tiles() {
		if r.byTile[c] == f {
			delete(r.byTile, c)
		}
	}
}

// Place registers a facility. Shop faces must go through PlaceShop.
func (r *Registry) Place(f Facility) error {
	if err := r.free(f.Tiles()); err != nil {
		return err
	}
	r.register(f)
	r.all = append(r.all, f)
	return nil
}

// PlaceShop registers both faces of a shop.
func (r *Registry) PlaceShop(s *Shop) error {
	if err := r.free(s.Tiles()); err != nil {
		return err
	}
	r.register(s.Input)
	r.register(s.Output)
	r.all = append(r.all, s.Input, s.Output)
	r.shops = append(r.shops, s)
	return nil
}

// Remove unregisters a facility. Removing either face of a shop removes the shop.
func (r *Registry) Remove(f Facility) {
	switch face := f.(type) {
	case *ShopInput:
		r.removeShop(face.Shop())
		return
	case *ShopOutput:
		r.removeShop(face.Shop())
		return
	}
	r.unregister(f)
	r.all = without(r.all, f)
}

func (r *Registry) removeShop(s *Shop) {
	r.unregister(s.Input)
	r.unregister(s.Output)
	r.all = without(without(r.all, s.Input), s.Output)
	for i, other := range r.shops {
		if other == s {
			r.shops = append(r.shops[:i], r.shops[i+1:]...)
			break
		}
	}
}

// RotateShop turns a shop a quarter turn and re-registers its faces.
func (r *Registry) RotateShop(s *Shop) {
	r.SetShopRotation(s, s.Rotation().Next())
}

// SetShopRotation turns a shop to rot and re-registers its faces.
func (r *Registry) SetShopRotation(s *Shop, rot Rotation) {
	r.unregister(s.Input)
	r.unregister(s.Output)
	s.SetRotation(rot)
	r.register(s.Input)
	r.register(s.Output)
}

// Replenish restocks every source that restocks daily.
func (r *Registry) Replenish() error {
	for _, f := range r.all {
		if rp, ok := f.(Replenisher); ok {
			if err := rp.Replenish(); err != nil {
				return err
			}
		}
	}
	return nil
}

// RememberHoldings snapshots every facility's stock as its previous stock.
func (r *Registry) RememberHoldings() {
	for _, f := range r.all {
		f.RememberHolding()
	}
}

func without(list []Facility, f Facility) []Facility {
	for i, other := range list {
		if other == f {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
