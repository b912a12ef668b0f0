package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hogday/internal/agents"
	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/world"
)

// GenerateBoard builds a fresh board: noise roads, then houses with their
// hogs and facilities placed along them. Shops cycle through the catalog's
// recipes.
func GenerateBoard(gen world.GenConfig, counts world.FeatureCounts, cat *economy.Catalog) (*Board, error) {
	g := world.Generate(gen)
	b := NewBoard(g, cat)

	sites := world.PlaceFeatures(g, gen.Seed, counts)
	agents.NewSpawner(gen.Seed).SpawnHouses(b.Herd, b.Houses, sites)

	recipes := cat.Recipes()
	shops := 0
	for _, site := range sites {
		var (
			f   economy.Facility
			err error
		)
		switch site.Kind {
		case world.FeatureHouse:
			continue
		case world.FeatureBerryBush:
			f, err = economy.NewBerryBush(g, site.At, cat)
		case world.FeatureTree:
			f, err = economy.NewTree(g, site.At, cat)
		case world.FeatureCastle:
			f = economy.NewCastle(g, site.At)
		case world.FeatureShop:
			if len(recipes) == 0 {
				continue
			}
			s, err := economy.NewShop(g, site.At, recipes[shops%len(recipes)], cat)
			if err != nil {
				return nil, fmt.Errorf("shop at %v: %w", site.At, err)
			}
			shops++
			if err := b.Facilities.PlaceShop(s); err != nil {
				return nil, fmt.Errorf("shop at %v: %w", site.At, err)
			}
			continue
		default:
			return nil, fmt.Errorf("unknown feature %q", site.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("%s at %v: %w", site.Kind, site.At, err)
		}
		if err := b.Facilities.Place(f); err != nil {
			return nil, fmt.Errorf("%s at %v: %w", site.Kind, site.At, err)
		}
	}

	slog.Info("board generated",
		"width", g.Width,
		"height", g.Height,
		"roads", len(g.Roads()),
		"houses", b.Houses.Len(),
		"facilities", b.Facilities.Placed(),
		"shops", len(b.Facilities.Shops()),
	)
	return b, nil
}
