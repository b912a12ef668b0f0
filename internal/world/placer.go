// Feature placement: finds sites for houses and facilities along the roads.
package world

import (
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// FeatureKind names something that can be placed on a generated board.
type FeatureKind string

const (
	FeatureHouse     FeatureKind = "house"
	FeatureBerryBush FeatureKind = "berry_bush"
	FeatureTree      FeatureKind = "tree"
	FeatureCastle    FeatureKind = "castle"
	FeatureShop      FeatureKind = "shop"
)

// Footprint returns the (width, height) of a feature in tiles.
func (k FeatureKind) Footprint() (int, int) {
	switch k {
	case FeatureCastle:
		return 3, 3
	case FeatureShop:
		return 2, 2
	}
	return 1, 1
}

// FeatureSite is one placement. At is the feature's upper-left (northwest) tile.
type FeatureSite struct {
	Kind   FeatureKind
	At     Coord
	Facing Direction // houses only
}

// FeatureCounts says how many of each feature to place.
type FeatureCounts map[FeatureKind]int

// PlaceFeatures picks non-overlapping sites for the requested features.
// Houses go on road tiles facing along the road; everything else goes on
// open ground touching at least one road tile. Bigger footprints are placed
// first so they are not crowded out.
func PlaceFeatures(g *Grid, seed int64, counts FeatureCounts) []FeatureSite {
	rng := rand.New(rand.NewSource(seed + 200))
	desirability := opensimplex.NewNormalized(seed + 300)

	taken := make(map[Coord]bool)
	var sites []FeatureSite

	order := []FeatureKind{FeatureCastle, FeatureShop, FeatureHouse, FeatureBerryBush, FeatureTree}
	for _, kind := range order {
		want := counts[kind]
		if want <= 0 {
			continue
		}

		type scored struct {
			at    Coord
			score float64
		}
		var candidates []scored
		for i := 0; i < g.TileCount(); i++ {
			at := g.CoordAt(i)
			if !siteFits(g, kind, at, taken) {
				continue
			}
			s := desirability.Eval2(float64(at.X)*0.3, float64(at.Y)*0.3) + rng.Float64()*0.1
			candidates = append(candidates, scored{at, s})
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})

		placed := 0
		for _, cand := range candidates {
			if placed >= want {
				break
			}
			// Earlier placements of the same kind may have claimed these tiles.
			if !siteFits(g, kind, cand.at, taken) {
				continue
			}
			site := FeatureSite{Kind: kind, At: cand.at}
			if kind == FeatureHouse {
				site.Facing = houseFacing(g, cand.at, rng)
			}
			for _, c := range footprint(g, kind, cand.at) {
				taken[c] = true
			}
			sites = append(sites, site)
			placed++
		}
	}
	return sites
}

func footprint(g *Grid, kind FeatureKind, at Coord) []Coord {
	w, h := kind.Footprint()
	out := make([]Coord, 0, w*h)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			out = append(out, g.Wrap(Coord{X: at.X + i, Y: at.Y - j}))
		}
	}
	return out
}

func siteFits(g *Grid, kind FeatureKind, at Coord, taken map[Coord]bool) bool {
	tiles := footprint(g, kind, at)
	for _, c := range tiles {
		if taken[c] {
			return false
		}
	}
	if kind == FeatureHouse {
		return g.IsRoad(at) && RoadDegree(g, at) > 0
	}
	touchesRoad := false
	for _, c := range tiles {
		if g.IsRoad(c) {
			return false
		}
		if RoadDegree(g, c) > 0 {
			touchesRoad = true
		}
	}
	return touchesRoad
}

// houseFacing points a house along one of the roads leaving its tile.
func houseFacing(g *Grid, at Coord, rng *rand.Rand) Direction {
	var options []Direction
	for _, d := range Cardinals {
		if g.IsRoad(g.Neighbor(at, d)) {
			options = append(options, d)
		}
	}
	if len(options) == 0 {
		return North
	}
	return options[rng.Intn(len(options))]
}
