// Hog spawning for generated boards: one house per site, each hog tagged
// with a decorator so it can be followed in text output.
package agents

import (
	"math/rand"
	"strconv"

	"github.com/talgya/hogday/internal/world"
)

// Spawner builds houses for a generated board.
type Spawner struct {
	order []int
	next  int
}

// NewSpawner creates a spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	rng := rand.New(rand.NewSource(seed + 400))
	return &Spawner{order: rng.Perm(len(decoratorLetters))}
}

// SpawnHouses builds a house for every house site, skipping tiles that
// already have one. It returns the houses it built.
func (s *Spawner) SpawnHouses(herd *Herd, houses *Houses, sites []world.FeatureSite) []*House {
	var built []*House
	for _, site := range sites {
		if site.Kind != world.FeatureHouse || houses.At(site.At) != nil {
			continue
		}
		h := BuildHouse(herd, site.At, site.Facing, s.decorator())
		houses.Add(h)
		built = append(built, h)
	}
	return built
}

// decorator hands out letters in shuffled order, numbering each further
// pass through the alphabet.
func (s *Spawner) decorator() string {
	n := s.next
	s.next++
	d := string(decoratorLetters[s.order[n%len(decoratorLetters)]])
	if round := n / len(decoratorLetters); round > 0 {
		d += strconv.Itoa(round)
	}
	return d
}

const decoratorLetters = "abcdefghijklmnopqrstuvwxyz"
