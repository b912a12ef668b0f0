// Package engine provides the hog board: movement resolution, interaction
// matching, editing, and the tick loop that drives it.
package engine

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Engine drives the simulation forward.
type Engine struct {
	Interval  time.Duration // Base tick interval at speed 1
	DayLength uint64        // Ticks per day; 0 disables automatic day resets

	// Callbacks populated during setup.
	OnTick func(tick uint64) // Every tick
	OnDay  func(tick uint64) // Every DayLength ticks

	tick    atomic.Uint64
	speed   atomic.Uint64 // float64 bits
	running atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewEngine creates an engine at speed 1 ticking every 500ms.
func NewEngine() *Engine {
	e := &Engine{
		Interval: 500 * time.Millisecond,
		stop:     make(chan struct{}),
	}
	e.SetSpeed(1)
	return e
}

// Tick returns the last tick run.
func (e *Engine) Tick() uint64 { return e.tick.Load() }

// SetTick restores the tick counter before Run.
func (e *Engine) SetTick(t uint64) { e.tick.Store(t) }

// Speed is the tick rate multiplier; 0 means paused.
func (e *Engine) Speed() float64 { return math.Float64frombits(e.speed.Load()) }

// SetSpeed changes the multiplier. Negative values pause.
func (e *Engine) SetSpeed(s float64) {
	if s < 0 || math.IsNaN(s) {
		s = 0
	}
	e.speed.Store(math.Float64bits(s))
}

// Running reports whether Run is active.
func (e *Engine) Running() bool { return e.running.Load() }

// Run ticks until ctx is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "tick", e.Tick(), "speed", e.Speed())

	for {
		speed := e.Speed()
		if speed <= 0 {
			// Paused; check again shortly.
			if !e.sleep(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()
		e.Advance()

		wait := time.Duration(float64(e.Interval)/speed) - time.Since(start)
		if !e.sleep(ctx, wait) {
			break
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick())
}

// sleep waits for d and reports whether the loop should keep going.
func (e *Engine) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = 0
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-e.stop:
		return false
	case <-t.C:
		return true
	}
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}

// Advance runs a single tick.
func (e *Engine) Advance() {
	tick := e.tick.Add(1)

	if e.OnTick != nil {
		e.OnTick(tick)
	}
	if e.DayLength > 0 && tick%e.DayLength == 0 && e.OnDay != nil {
		e.OnDay(tick)
	}
}
