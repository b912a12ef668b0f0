// Command hogsim runs the hog board: it loads or generates a board, ticks it,
// serves it over HTTP and saves it periodically.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/hogday/internal/api"
	"github.com/talgya/hogday/internal/config"
	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/engine"
	"github.com/talgya/hogday/internal/persistence"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel.Level(),
	}))
	slog.SetDefault(logger)

	slog.Info("hogsim starting", "board", fmt.Sprintf("%dx%d", cfg.Board.Width, cfg.Board.Height), "seed", cfg.Board.Seed)

	cat, err := economy.LoadCatalog(cfg.Catalog)
	if err != nil {
		slog.Error("failed to load goods catalog", "error", err)
		os.Exit(1)
	}

	// ── Storage ───────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755)
	db, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Storage.DBPath)
	store := &persistence.Store{DB: db, Dir: cfg.Storage.SnapshotDir}

	sim, err := loadOrGenerate(store, cfg, cat)
	if err != nil {
		slog.Error("failed to set up board", "error", err)
		os.Exit(1)
	}
	status := sim.Status()
	slog.Info("board ready",
		"tick", status.Tick,
		"hogs", status.Hogs,
		"roads", status.Roads,
		"facilities", status.Facilities,
		"shops", status.Shops,
	)

	// ── Engine ────────────────────────────────────────────────────────
	hub := api.NewHub(nil)
	eng := engine.NewEngine()
	eng.Interval = time.Duration(cfg.Engine.TickMs) * time.Millisecond
	eng.DayLength = cfg.Engine.DayLength
	eng.SetSpeed(cfg.Engine.Speed)
	eng.SetTick(sim.CurrentTick())

	save := func(reason string) {
		path, err := store.Save(sim.Snapshot())
		if err != nil {
			slog.Error("save failed", "reason", reason, "error", err)
			return
		}
		slog.Debug("board saved", "reason", reason, "file", path)
	}

	eng.OnTick = func(tick uint64) {
		if err := sim.Step(tick); err != nil {
			slog.Error("tick failed", "tick", tick, "error", err)
		}
		hub.Publish(sim.Frame())
		if n := cfg.Engine.AutosaveTicks; n > 0 && tick%n == 0 {
			save("autosave")
		}
	}
	eng.OnDay = func(tick uint64) {
		if err := sim.ResetDay(); err != nil {
			slog.Error("day reset failed", "tick", tick, "error", err)
			return
		}
		slog.Info("new day", "tick", tick)
		save("day")
	}

	// ── API ───────────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn("HOGSIM_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiServer := &api.Server{
		Sim:         sim,
		Eng:         eng,
		Store:       store,
		Hub:         hub,
		Port:        cfg.API.Port,
		AdminKey:    cfg.API.AdminKey,
		CORSOrigins: cfg.API.CORSOrigins,
	}
	apiServer.Start(ctx)

	// ── Start ─────────────────────────────────────────────────────────
	fmt.Printf("\nHogs are rolling: %d hogs on %d road tiles.\n", status.Hogs, status.Roads)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	if status.Tick > 0 {
		fmt.Printf("Resuming from tick %d\n", status.Tick)
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	// Final save on shutdown.
	slog.Info("final save...")
	save("shutdown")

	fmt.Println("Simulation stopped. Board saved.")
}

// loadOrGenerate restores the last saved board, or generates and saves a
// fresh one.
func loadOrGenerate(store *persistence.Store, cfg config.Config, cat *economy.Catalog) (*engine.Simulation, error) {
	snap, ok, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load saved board: %w", err)
	}
	if ok {
		slog.Info("found saved board, restoring...", "tick", snap.Tick)
		return engine.SimulationFromSnapshot(snap, cat)
	}

	slog.Info("no saved board found, generating...")
	b, err := engine.GenerateBoard(cfg.Board.GenConfig(), cfg.Board.Counts(), cat)
	if err != nil {
		return nil, err
	}
	sim := engine.NewSimulation(b)
	if _, err := store.Save(sim.Snapshot()); err != nil {
		slog.Error("initial save failed", "error", err)
	}
	return sim, nil
}
