package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hogday/internal/world"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Board, cfg.Board)
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hogsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
board:
  width: 20
  houses: 4
engine:
  day_length: 50
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Board.Width)
	assert.Equal(t, 32, cfg.Board.Height)
	assert.Equal(t, 4, cfg.Board.Houses)
	assert.Equal(t, uint64(50), cfg.Engine.DayLength)
	assert.Equal(t, 500, cfg.Engine.TickMs)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel.Level())
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	malformed := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(malformed, []byte("board: [1, 2"), 0o644))
	_, err := Load(malformed)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("board:\n  width: 0\n"), 0o644))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "board must be")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOGSIM_ADMIN_KEY", "sekrit")
	t.Setenv("HOGSIM_DB", "/tmp/hogs.db")
	t.Setenv("HOGSIM_PORT", "9001")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sekrit", cfg.API.AdminKey)
	assert.Equal(t, "/tmp/hogs.db", cfg.Storage.DBPath)
	assert.Equal(t, 9001, cfg.API.Port)

	t.Setenv("HOGSIM_PORT", "eighty")
	_, err = Load("")
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("HOGSIM_CONFIG", "")
	assert.Equal(t, "hogsim.yaml", Path())
	t.Setenv("HOGSIM_CONFIG", "/etc/hogsim.yaml")
	assert.Equal(t, "/etc/hogsim.yaml", Path())
}

func TestBoardSettingsFeedGeneration(t *testing.T) {
	b := Default().Board
	gen := b.GenConfig()
	assert.Equal(t, b.Width, gen.Width)
	assert.Equal(t, b.Seed, gen.Seed)
	assert.Equal(t, b.Frequency, gen.Frequency)

	counts := b.Counts()
	assert.Equal(t, b.Houses, counts[world.FeatureHouse])
	assert.Equal(t, b.Shops, counts[world.FeatureShop])
	assert.Len(t, counts, 5)
}
