// Package config loads hogsim settings from a YAML file with environment
// overrides for secrets and paths.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hogday/internal/world"
)

// Config is the complete process configuration.
type Config struct {
	Board    Board    `yaml:"board"`
	Engine   Engine   `yaml:"engine"`
	Storage  Storage  `yaml:"storage"`
	API      API      `yaml:"api"`
	Catalog  string   `yaml:"catalog"` // goods catalog JSON; empty uses the built-in one
	LogLevel LogLevel `yaml:"log_level"`
}

// Board controls generation of a fresh board.
type Board struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Seed        int64   `yaml:"seed"`
	RoadBand    float64 `yaml:"road_band"`
	Frequency   float64 `yaml:"frequency"`
	Houses      int     `yaml:"houses"`
	BerryBushes int     `yaml:"berry_bushes"`
	Trees       int     `yaml:"trees"`
	Castles     int     `yaml:"castles"`
	Shops       int     `yaml:"shops"`
}

// GenConfig is the road generation part of the board settings.
func (b Board) GenConfig() world.GenConfig {
	return world.GenConfig{
		Width:     b.Width,
		Height:    b.Height,
		Seed:      b.Seed,
		RoadBand:  b.RoadBand,
		Frequency: b.Frequency,
	}
}

// Counts is how many of each feature to place on a fresh board.
func (b Board) Counts() world.FeatureCounts {
	return world.FeatureCounts{
		world.FeatureHouse:     b.Houses,
		world.FeatureBerryBush: b.BerryBushes,
		world.FeatureTree:      b.Trees,
		world.FeatureCastle:    b.Castles,
		world.FeatureShop:      b.Shops,
	}
}

// Engine controls the tick loop.
type Engine struct {
	TickMs        int     `yaml:"tick_ms"`
	Speed         float64 `yaml:"speed"`
	DayLength     uint64  `yaml:"day_length"`
	AutosaveTicks uint64  `yaml:"autosave_ticks"`
}

// Storage says where boards are saved.
type Storage struct {
	DBPath      string `yaml:"db_path"`
	SnapshotDir string `yaml:"snapshot_dir"`
}

// API configures the HTTP server.
type API struct {
	Port        int      `yaml:"port"`
	AdminKey    string   `yaml:"-"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogLevel is a slog level spelled as in the YAML file.
type LogLevel string

// Level converts to a slog level, defaulting to info.
func (l LogLevel) Level() slog.Level {
	switch strings.ToLower(string(l)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Board: Board{
			Width:       48,
			Height:      32,
			Seed:        42,
			RoadBand:    0.035,
			Frequency:   2.5,
			Houses:      24,
			BerryBushes: 10,
			Trees:       10,
			Castles:     2,
			Shops:       3,
		},
		Engine: Engine{
			TickMs:        500,
			Speed:         1,
			DayLength:     200,
			AutosaveTicks: 100,
		},
		Storage: Storage{
			DBPath:      "data/hogday.db",
			SnapshotDir: "data/snapshots",
		},
		API: API{
			Port: 8080,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Warn("config file not found, using defaults", "path", path)
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Path returns the config file named by HOGSIM_CONFIG, or the default.
func Path() string {
	if p := os.Getenv("HOGSIM_CONFIG"); p != "" {
		return p
	}
	return "hogsim.yaml"
}

func (c *Config) applyEnv() error {
	c.API.AdminKey = os.Getenv("HOGSIM_ADMIN_KEY")
	if p := os.Getenv("HOGSIM_DB"); p != "" {
		c.Storage.DBPath = p
	}
	if p := os.Getenv("HOGSIM_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("HOGSIM_PORT: %w", err)
		}
		c.API.Port = port
	}
	return nil
}

// Validate rejects settings the simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Board.Width < 1 || c.Board.Height < 1:
		return fmt.Errorf("config: board must be at least 1x1, got %dx%d", c.Board.Width, c.Board.Height)
	case c.Engine.TickMs < 1:
		return fmt.Errorf("config: tick_ms must be positive, got %d", c.Engine.TickMs)
	case c.Engine.Speed < 0:
		return fmt.Errorf("config: speed must not be negative, got %g", c.Engine.Speed)
	case c.API.Port < 0 || c.API.Port > 65535:
		return fmt.Errorf("config: bad port %d", c.API.Port)
	}
	return nil
}
