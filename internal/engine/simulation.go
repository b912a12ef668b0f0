package engine

import (
	"fmt"
	"log/slog"
	"sync"
)

// maxEvents bounds the in-memory event log.
const maxEvents = 1000

// Event is a notable occurrence on the board.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "loop", "stuck", "exchange", "craft", "edit", "day"
}

func newEvent(category, format string, args ...any) Event {
	return Event{Category: category, Description: fmt.Sprintf(format, args...)}
}

// Simulation holds a board and its history, guarded for concurrent readers
// such as the HTTP API.
type Simulation struct {
	mu sync.RWMutex

	board    *Board
	events   []Event
	lastTick uint64
}

// NewSimulation wraps a board.
func NewSimulation(b *Board) *Simulation {
	return &Simulation{board: b}
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTick
}

// Step advances the board one tick.
func (s *Simulation) Step(tick uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTick = tick
	err := s.board.Step()
	s.collect(tick)
	if err != nil {
		return fmt.Errorf("tick %d: %w", tick, err)
	}
	return nil
}

// ResetDay starts a new day.
func (s *Simulation) ResetDay() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.board.ResetDay()
	s.collect(s.lastTick)
	if err != nil {
		return fmt.Errorf("reset day: %w", err)
	}
	slog.Info("day reset", "tick", s.lastTick, "houses", s.board.Houses.Len())
	return nil
}

// Apply runs a board-editing tool.
func (s *Simulation) Apply(e Edit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.board.Apply(e)
	s.collect(s.lastTick)
	return err
}

// Events returns up to limit of the most recent events, oldest first.
// A limit of zero or less returns all of them.
func (s *Simulation) Events(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.events) > limit {
		start = len(s.events) - limit
	}
	out := make([]Event, len(s.events)-start)
	copy(out, s.events[start:])
	return out
}

// RestoreEvents seeds the event log, e.g. from storage.
func (s *Simulation) RestoreEvents(events []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events[:0], events...)
	s.trimEvents()
}

func (s *Simulation) collect(tick uint64) {
	for _, e := range s.board.drainEvents() {
		e.Tick = tick
		s.events = append(s.events, e)
	}
	s.trimEvents()
}

func (s *Simulation) trimEvents() {
	if len(s.events) > maxEvents {
		s.events = append([]Event(nil), s.events[len(s.events)-maxEvents:]...)
	}
}

// Status summarizes the board.
type Status struct {
	Tick       uint64 `json:"tick"`
	Steps      int    `json:"steps"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Roads      int    `json:"roads"`
	Hogs       int    `json:"hogs"`
	Moved      int    `json:"moved"`
	Stuck      int    `json:"stuck"`
	Looped     int    `json:"looped"`
	Carrying   int    `json:"carrying"`
	Houses     int    `json:"houses"`
	Facilities int    `json:"facilities"`
	Shops      int    `json:"shops"`
}

// Status counts hogs by state and the things on the board.
func (s *Simulation) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.board
	st := Status{
		Tick:       s.lastTick,
		Steps:      b.Steps,
		Width:      b.Grid.Width,
		Height:     b.Grid.Height,
		Roads:      len(b.Grid.Roads()),
		Hogs:       b.Herd.Len(),
		Houses:     b.Houses.Len(),
		Facilities: b.Facilities.Placed(),
		Shops:      len(b.Facilities.Shops()),
	}
	for _, h := range b.Herd.All() {
		if h.Moved() {
			st.Moved++
		}
		if h.Stuck {
			st.Stuck++
		}
		if h.Looped {
			st.Looped++
		}
		if h.Holding != nil {
			st.Carrying++
		}
	}
	return st
}

// Frame returns a render snapshot of the board.
func (s *Simulation) Frame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Frame(s.lastTick)
}

// Layout returns the board's static layout.
func (s *Simulation) Layout() Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Layout()
}

// String draws the board as text.
func (s *Simulation) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.String()
}
