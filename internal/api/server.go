// Package api provides the HTTP API for watching and editing the board.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/engine"
	"github.com/talgya/hogday/internal/persistence"
	"github.com/talgya/hogday/internal/world"
)

// Server serves the board over HTTP.
type Server struct {
	Sim         *engine.Simulation
	Eng         *engine.Engine
	Store       *persistence.Store // nil disables /snapshot
	Hub         *Hub
	Port        int
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	editLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/board", s.handleBoard)
	mux.HandleFunc("/api/v1/hogs", s.handleHogs)
	mux.HandleFunc("/api/v1/facilities", s.handleFacilities)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/tools", s.handleTools)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/edit", s.adminOnly(RateLimitMiddleware(editLimiter, s.handleEdit)))
	mux.HandleFunc("/api/v1/reset", s.adminOnly(s.handleReset))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start serves the API until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		if s.Hub != nil {
			s.Hub.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HOGSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

type statusResponse struct {
	engine.Status
	Speed   float64 `json:"speed"`
	Running bool    `json:"running"`
	Viewers int     `json:"viewers"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Status: s.Sim.Status()}
	if s.Eng != nil {
		resp.Speed = s.Eng.Speed()
		resp.Running = s.Eng.Running()
	}
	if s.Hub != nil {
		resp.Viewers = s.Hub.Clients()
	}
	writeJSON(w, resp)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Layout())
}

func (s *Server) handleHogs(w http.ResponseWriter, r *http.Request) {
	f := s.Sim.Frame()
	writeJSON(w, map[string]any{
		"tick":  f.Tick,
		"steps": f.Steps,
		"hogs":  f.Hogs,
	})
}

func (s *Server) handleFacilities(w http.ResponseWriter, r *http.Request) {
	f := s.Sim.Frame()
	writeJSON(w, map[string]any{
		"tick":       f.Tick,
		"facilities": f.Facilities,
		"shops":      s.Sim.Layout().Shops,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	events := s.Sim.Events(0)

	// Optional category filter ("loop", "stuck", "exchange", ...).
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}

	writeJSON(w, events[start:])
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"tools": engine.Tools})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}
	f := s.Sim.Frame()
	s.Hub.serve(w, r, &f)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Tool   string `json:"tool"`
		X      int    `json:"x"`
		Y      int    `json:"y"`
		Recipe string `json:"recipe,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	edit := engine.Edit{Tool: req.Tool, At: world.Coord{X: req.X, Y: req.Y}, Recipe: req.Recipe}
	if err := s.Sim.Apply(edit); err != nil {
		switch {
		case errors.Is(err, engine.ErrUnknownTool),
			errors.Is(err, economy.ErrUnknownGood),
			errors.Is(err, economy.ErrNotCraftable):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, economy.ErrOccupied):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			slog.Error("edit failed", "tool", req.Tool, "error", err)
			http.Error(w, "edit failed", http.StatusInternalServerError)
		}
		return
	}
	slog.Info("board edited", "tool", req.Tool, "x", req.X, "y", req.Y)

	writeJSON(w, map[string]any{
		"tick":   s.Sim.CurrentTick(),
		"status": s.Sim.Status(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.Sim.ResetDay(); err != nil {
		slog.Error("reset failed", "error", err)
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}
	slog.Info("day reset by admin", "tick", s.Sim.CurrentTick())
	writeJSON(w, map[string]any{
		"tick":    s.Sim.CurrentTick(),
		"message": "day reset",
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "engine not available", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Store == nil {
		http.Error(w, "storage not available", http.StatusServiceUnavailable)
		return
	}

	snap := s.Sim.Snapshot()
	path, err := s.Store.Save(snap)
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"tick":    snap.Tick,
		"file":    path,
		"message": "snapshot saved",
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
