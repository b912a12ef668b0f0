package economy

import (
	"fmt"

	"github.com/talgya/hogday/internal/world"
)

// Shop face names.
const (
	ShopInputName  = "shop_input"
	ShopOutputName = "shop_output"
)

// Rotation names the corner of a 2x2 shop that holds the output face.
type Rotation uint8

const (
	RotationNW Rotation = iota
	RotationNE
	RotationSE
	RotationSW
)

func (r Rotation) String() string {
	switch r {
	case RotationNW:
		return "NW"
	case RotationNE:
		return "NE"
	case RotationSE:
		return "SE"
	case RotationSW:
		return "SW"
	}
	return "?"
}

// ParseRotation parses a corner name.
func ParseRotation(s string) (Rotation, error) {
	for r := RotationNW; r <= RotationSW; r++ {
		if r.String() == s {
			return r, nil
		}
	}
	return RotationNW, fmt.Errorf("economy: bad rotation %q", s)
}

// Next is the rotation a quarter turn clockwise.
func (r Rotation) Next() Rotation {
	return (r + 1) % 4
}

var shopTilesMatrix = [][]int{
	{0, 1},
	{2, 3},
}

// Shapes for a shop rotated to NW; other rotations turn these clockwise.
var (
	inputTilesMatrix = [][]int{
		{world.Hole, 0},
		{1, 2},
	}
	outputTilesMatrix = [][]int{
		{0, world.Hole},
		{world.Hole, world.Hole},
	}
	inputPreferenceMatrix = [][]int{
		{world.Hole, world.Hole, 0, world.Hole},
		{world.Hole, world.Hole, world.Hole, 1},
		{5, world.Hole, world.Hole, 2},
		{world.Hole, 4, 3, world.Hole},
	}
	outputPreferenceMatrix = [][]int{
		{world.Hole, 0, world.Hole, world.Hole},
		{1, world.Hole, world.Hole, world.Hole},
		{world.Hole, world.Hole, world.Hole, world.Hole},
		{world.Hole, world.Hole, world.Hole, world.Hole},
	}
)

// Shop is a 2x2 workshop: three tiles take ingredients, one corner hands
// out the crafted product.
type Shop struct {
	Target string

	recipe   []Ingredient
	corner   world.Coord
	rotation Rotation
	grid     *world.Grid
	catalog  *Catalog

	Input  *ShopInput
	Output *ShopOutput
}

// NewShop places a shop crafting target whose northwest tile is corner.
func NewShop(g *world.Grid, corner world.Coord, target string, cat *Catalog) (*Shop, error) {
	recipe, err := cat.Recipe(target)
	if err != nil {
		return nil, err
	}
	s := &Shop{
		Target:   target,
		recipe:   recipe,
		corner:   g.Wrap(corner),
		rotation: RotationSW,
		grid:     g,
		catalog:  cat,
	}
	s.Input = &ShopInput{shop: s}
	s.Output = &ShopOutput{shop: s}
	return s, nil
}

// Corner is the northwest tile.
func (s *Shop) Corner() world.Coord { return s.corner }

// Rotation is the current output corner.
func (s *Shop) Rotation() Rotation { return s.rotation }

// SetRotation turns the shop to r. Callers that index facilities by tile
// must re-register both faces afterwards.
func (s *Shop) SetRotation(r Rotation) {
	s.rotation = r % 4
}

// Recipe lists the ingredients one product consumes.
func (s *Shop) Recipe() []Ingredient {
	return s.recipe
}

// Tiles covers all four tiles of the shop.
func (s *Shop) Tiles() []world.Coord {
	return s.grid.TilesFromMatrix(shopTilesMatrix, s.corner)
}

func (s *Shop) required(good string) int {
	for _, in := range s.recipe {
		if in.Good == good {
			return in.Count
		}
	}
	return 0
}

// Craft turns a complete set of ingredients into one product. It does
// nothing while ingredients are missing or the previous product has not
// been collected.
func (s *Shop) Craft() (bool, error) {
	if len(s.Output.holding) > 0 {
		return false, nil
	}
	for _, in := range s.recipe {
		if s.Input.Count(in.Good) < in.Count {
			return false, nil
		}
	}
	product, err := s.catalog.Craft(s.Target, s.Input.holding)
	if err != nil {
		return false, err
	}
	s.Input.holding = nil
	s.Output.holding = []Good{product}
	return true, nil
}

func (s *Shop) faceTiles(matrix [][]int) []world.Coord {
	return s.grid.TilesFromMatrix(world.RotateMatrixTimes(matrix, int(s.rotation)), s.corner)
}

func (s *Shop) facePreferences(matrix [][]int) []world.Coord {
	rotated := world.RotateMatrixTimes(matrix, int(s.rotation))
	return s.grid.NeighborsFromMatrix(rotated, s.corner, world.Coord{X: 1, Y: 1})
}

// ShopInput is the Sink face of a shop.
type ShopInput struct {
	stock
	shop *Shop
}

func (in *ShopInput) Kind() Kind   { return KindSink }
func (in *ShopInput) Name() string { return ShopInputName }
func (in *ShopInput) Shop() *Shop  { return in.shop }

func (in *ShopInput) Tiles() []world.Coord {
	return in.shop.faceTiles(inputTilesMatrix)
}

func (in *ShopInput) TilePreferences() []world.Coord {
	return in.shop.facePreferences(inputPreferenceMatrix)
}

// Capacity is the number of the good still missing from the recipe, and
// zero while a finished product waits at the output.
func (in *ShopInput) Capacity(good string) int {
	if len(in.shop.Output.holding) > 0 {
		return 0
	}
	missing := in.shop.required(good) - in.Count(good)
	if missing < 0 {
		return 0
	}
	return missing
}

func (in *ShopInput) Absorb(g Good) {
	in.holding = append(in.holding, g)
}

// ShopOutput is the Source face of a shop.
type ShopOutput struct {
	stock
	shop *Shop
}

func (out *ShopOutput) Kind() Kind   { return KindSource }
func (out *ShopOutput) Name() string { return ShopOutputName }
func (out *ShopOutput) Shop() *Shop  { return out.shop }

func (out *ShopOutput) Tiles() []world.Coord {
	return out.shop.faceTiles(outputTilesMatrix)
}

func (out *ShopOutput) TilePreferences() []world.Coord {
	return out.shop.facePreferences(outputPreferenceMatrix)
}

func (out *ShopOutput) Capacity(string) int {
	return len(out.holding)
}

func (out *ShopOutput) Emit() Good {
	return out.pop()
}
