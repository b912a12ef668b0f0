package economy

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed goods.json
var defaultCatalogJSON []byte

const catalogSchemaURL = "mem://hogday/goods.schema.json"

const catalogSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {
    "type": "object",
    "required": ["type"],
    "properties": {
      "type": { "enum": ["raw", "crafted"] },
      "base_value": { "type": "number", "minimum": 0 },
      "value_multiplier": { "type": "number", "minimum": 0 },
      "recipe": {
        "type": "array",
        "minItems": 1,
        "items": {
          "type": "array",
          "minItems": 2,
          "maxItems": 2,
          "prefixItems": [
            { "type": "string", "minLength": 1 },
            { "type": "integer", "minimum": 1 }
          ]
        }
      }
    },
    "if": { "properties": { "type": { "const": "crafted" } } },
    "then": { "required": ["recipe", "value_multiplier"] },
    "else": { "required": ["base_value"] }
  }
}`

// GoodType separates gathered goods from crafted ones.
type GoodType string

const (
	GoodRaw     GoodType = "raw"
	GoodCrafted GoodType = "crafted"
)

// Ingredient is one line of a recipe. On the wire it is a [name, count] pair.
type Ingredient struct {
	Good  string
	Count int
}

func (in *Ingredient) UnmarshalJSON(b []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &in.Good); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &in.Count)
}

func (in Ingredient) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{in.Good, in.Count})
}

// GoodDef is a catalog entry.
type GoodDef struct {
	Name            string       `json:"-"`
	Type            GoodType     `json:"type"`
	BaseValue       float64      `json:"base_value,omitempty"`
	ValueMultiplier float64      `json:"value_multiplier,omitempty"`
	Recipe          []Ingredient `json:"recipe,omitempty"`
}

// Catalog is the immutable set of goods known to a board.
type Catalog struct {
	goods map[string]GoodDef
}

// DefaultCatalog returns the built-in goods catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogJSON)
	if err != nil {
		panic(fmt.Sprintf("economy: built-in catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path yields the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog validates raw JSON against the catalog schema, then checks
// that every recipe only names known raw or crafted goods.
func ParseCatalog(raw []byte) (*Catalog, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(catalogSchemaURL, strings.NewReader(catalogSchema)); err != nil {
		return nil, fmt.Errorf("catalog schema: %w", err)
	}
	schema, err := compiler.Compile(catalogSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("catalog schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("catalog invalid: %w", err)
	}

	var defs map[string]GoodDef
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("catalog decode: %w", err)
	}
	for name, def := range defs {
		def.Name = name
		defs[name] = def
		for _, in := range def.Recipe {
			if _, ok := defs[in.Good]; !ok {
				return nil, fmt.Errorf("%w: %q in recipe for %q", ErrUnknownGood, in.Good, name)
			}
			if in.Good == name {
				return nil, fmt.Errorf("catalog: %q requires itself", name)
			}
		}
	}
	return &Catalog{goods: defs}, nil
}

// Def looks up a good by name.
func (c *Catalog) Def(name string) (GoodDef, bool) {
	def, ok := c.goods[name]
	return def, ok
}

// Recipe returns the ingredient list of a crafted good.
func (c *Catalog) Recipe(name string) ([]Ingredient, error) {
	def, ok := c.goods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGood, name)
	}
	if def.Type != GoodCrafted {
		return nil, fmt.Errorf("%w: %q", ErrNotCraftable, name)
	}
	out := make([]Ingredient, len(def.Recipe))
	copy(out, def.Recipe)
	return out, nil
}

// Names returns every good name, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.goods))
	for name := range c.goods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recipes returns the names of all craftable goods, sorted.
func (c *Catalog) Recipes() []string {
	var names []string
	for _, name := range c.Names() {
		if c.goods[name].Type == GoodCrafted {
			names = append(names, name)
		}
	}
	return names
}
