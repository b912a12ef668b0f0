// Board generation using layered simplex noise sampled on a torus, so the
// road network wraps seamlessly at the board edges.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds board generation parameters.
type GenConfig struct {
	Width     int
	Height    int
	Seed      int64   // Random seed (0 = random)
	RoadBand  float64 // Half-width of the noise contour that becomes road (0.0–0.5)
	Frequency float64 // Base noise frequency in cycles per board
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:     48,
		Height:    32,
		Seed:      0,
		RoadBand:  0.035,
		Frequency: 2.5,
	}
}

// SmallTestConfig returns a tiny board for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:     16,
		Height:    12,
		Seed:      42,
		RoadBand:  0.05,
		Frequency: 1.5,
	}
}

// Generate creates a board whose roads follow a noise contour line.
func Generate(cfg GenConfig) *Grid {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	g := NewGrid(cfg.Width, cfg.Height)
	roadNoise := opensimplex.NewNormalized(seed)

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := torusNoise(roadNoise, g, x, y, 3, cfg.Frequency, 0.5)
			if math.Abs(v-0.5) < cfg.RoadBand {
				g.SetRoad(Coord{x, y}, true)
			}
		}
	}

	// Contours come out diagonal-ish; join diagonal steps so hogs can follow them.
	joinDiagonals(g)

	// Post-pass: a lone road tile is just a dead end with nowhere to go.
	pruneIsolated(g)

	return g
}

// torusNoise maps (x, y) onto two circles in 4D noise space and layers
// octaves, yielding a value in [0, 1) that tiles in both axes.
func torusNoise(noise opensimplex.Noise, g *Grid, x, y, octaves int, frequency, persistence float64) float64 {
	ax := 2 * math.Pi * float64(x) / float64(g.Width)
	ay := 2 * math.Pi * float64(y) / float64(g.Height)

	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		r := frequency / (2 * math.Pi)
		total += noise.Eval4(r*math.Cos(ax), r*math.Sin(ax), r*math.Cos(ay), r*math.Sin(ay)) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

// joinDiagonals adds a road tile wherever two road tiles touch only at a corner.
func joinDiagonals(g *Grid) {
	var add []Coord
	for _, c := range g.Roads() {
		ne := g.Wrap(c.Add(Coord{1, 1}))
		se := g.Wrap(c.Add(Coord{1, -1}))
		if g.IsRoad(ne) && !g.IsRoad(g.Neighbor(c, East)) && !g.IsRoad(g.Neighbor(c, North)) {
			add = append(add, g.Neighbor(c, East))
		}
		if g.IsRoad(se) && !g.IsRoad(g.Neighbor(c, East)) && !g.IsRoad(g.Neighbor(c, South)) {
			add = append(add, g.Neighbor(c, East))
		}
	}
	for _, c := range add {
		g.SetRoad(c, true)
	}
}

func pruneIsolated(g *Grid) {
	for _, c := range g.Roads() {
		if RoadDegree(g, c) == 0 {
			g.SetRoad(c, false)
		}
	}
}

// RoadDegree counts the road tiles orthogonally adjacent to c.
func RoadDegree(g *Grid, c Coord) int {
	n := 0
	for _, d := range Cardinals {
		if g.IsRoad(g.Neighbor(c, d)) {
			n++
		}
	}
	return n
}
