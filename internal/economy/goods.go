// Package economy provides goods, the goods catalog, and the stationary
// facilities hogs trade goods with.
package economy

import (
	"errors"
	"fmt"
)

// MaxPlayers is the number of value slots every good carries.
const MaxPlayers = 8

var (
	ErrUnknownGood  = errors.New("economy: unknown good")
	ErrNotCraftable = errors.New("economy: good has no recipe")
	ErrBadOwner     = errors.New("economy: owner out of range")
)

// ValueArray holds a good's worth to each player.
type ValueArray [MaxPlayers]float64

// Add returns the element-wise sum.
func (v ValueArray) Add(o ValueArray) ValueArray {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

// Scale returns every element multiplied by f.
func (v ValueArray) Scale(f float64) ValueArray {
	for i := range v {
		v[i] *= f
	}
	return v
}

// Total sums the value across all players.
func (v ValueArray) Total() float64 {
	t := 0.0
	for _, x := range v {
		t += x
	}
	return t
}

// Good is one unit of a resource. A hog carries at most one.
type Good struct {
	Name   string     `json:"name"`
	Values ValueArray `json:"values"`
}

func (g Good) String() string {
	return g.Name
}

// Raw creates a freshly gathered unit of a raw good owned by one player.
func (c *Catalog) Raw(name string, owner int) (Good, error) {
	def, ok := c.goods[name]
	if !ok {
		return Good{}, fmt.Errorf("%w: %q", ErrUnknownGood, name)
	}
	if owner < 0 || owner >= MaxPlayers {
		return Good{}, fmt.Errorf("%w: %d", ErrBadOwner, owner)
	}
	g := Good{Name: name}
	if def.Type == GoodRaw {
		g.Values[owner] = def.BaseValue
	}
	return g, nil
}

// Craft builds a crafted good whose value is the sum of its inputs scaled by
// the good's multiplier. The caller is responsible for having consumed a
// complete recipe.
func (c *Catalog) Craft(name string, inputs []Good) (Good, error) {
	def, ok := c.goods[name]
	if !ok {
		return Good{}, fmt.Errorf("%w: %q", ErrUnknownGood, name)
	}
	if def.Type != GoodCrafted {
		return Good{}, fmt.Errorf("%w: %q", ErrNotCraftable, name)
	}
	var total ValueArray
	for _, in := range inputs {
		total = total.Add(in.Values)
	}
	return Good{Name: name, Values: total.Scale(def.ValueMultiplier)}, nil
}
