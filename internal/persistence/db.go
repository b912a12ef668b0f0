// Package persistence provides SQLite-based board storage and compressed
// snapshot files.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hogday/internal/agents"
	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/engine"
	"github.com/talgya/hogday/internal/world"
)

// DB wraps a SQLite connection for board persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS roads (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		PRIMARY KEY (x, y)
	);

	CREATE TABLE IF NOT EXISTS houses (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		facing INTEGER NOT NULL,
		decorator TEXT NOT NULL,
		hog_id INTEGER NOT NULL,
		PRIMARY KEY (x, y)
	);

	CREATE TABLE IF NOT EXISTS hogs (
		id INTEGER PRIMARY KEY,
		seq INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		facing INTEGER NOT NULL,
		decorator TEXT NOT NULL,
		stuck INTEGER NOT NULL,
		looped INTEGER NOT NULL,
		stack_position INTEGER NOT NULL,
		tick_json TEXT NOT NULL,
		cargo_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS facilities (
		seq INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		resource TEXT NOT NULL,
		base INTEGER NOT NULL,
		holding_json TEXT NOT NULL,
		previous_holding_json TEXT NOT NULL,
		shop_json TEXT
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_hogs_seq ON hogs(seq);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Meta keys.
const (
	metaTick      = "last_tick"
	metaWidth     = "width"
	metaHeight    = "height"
	metaSteps     = "steps"
	metaChanged   = "changed"
	metaNextHogID = "next_hog_id"
)

type hogRow struct {
	ID            uint64 `db:"id"`
	Seq           int    `db:"seq"`
	X             int    `db:"x"`
	Y             int    `db:"y"`
	Facing        uint8  `db:"facing"`
	Decorator     string `db:"decorator"`
	Stuck         bool   `db:"stuck"`
	Looped        bool   `db:"looped"`
	StackPosition int    `db:"stack_position"`
	TickJSON      string `db:"tick_json"`
	CargoJSON     string `db:"cargo_json"`
}

// hogTick is the per-tick resolution state the frame still reports.
type hogTick struct {
	HasStepped bool         `json:"has_stepped"`
	HoppedFrom *world.Coord `json:"hopped_from,omitempty"`
}

type hogCargo struct {
	Holding         *economy.Good `json:"holding,omitempty"`
	PreviousHolding *economy.Good `json:"previous_holding,omitempty"`
	GaveTo          *world.Coord  `json:"gave_to,omitempty"`
	TookFrom        *world.Coord  `json:"took_from,omitempty"`
}

type houseRow struct {
	X         int    `db:"x"`
	Y         int    `db:"y"`
	Facing    uint8  `db:"facing"`
	Decorator string `db:"decorator"`
	HogID     uint64 `db:"hog_id"`
}

type facilityRow struct {
	Seq                 int            `db:"seq"`
	Name                string         `db:"name"`
	Kind                string         `db:"kind"`
	X                   int            `db:"x"`
	Y                   int            `db:"y"`
	Resource            string         `db:"resource"`
	Base                int            `db:"base"`
	HoldingJSON         string         `db:"holding_json"`
	PreviousHoldingJSON string         `db:"previous_holding_json"`
	ShopJSON            sql.NullString `db:"shop_json"`
}

// SaveSnapshot writes the whole board and its history (full replace).
func (db *DB) SaveSnapshot(snap engine.Snapshot) error {
	st := snap.Board
	slog.Info("saving board", "tick", snap.Tick, "hogs", len(st.Hogs), "facilities", len(st.Facilities), "shops", countShops(st.Facilities))

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"roads", "houses", "hogs", "facilities", "events"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := saveRoads(tx, st.Roads); err != nil {
		return fmt.Errorf("save roads: %w", err)
	}
	if err := saveHouses(tx, st.Houses); err != nil {
		return fmt.Errorf("save houses: %w", err)
	}
	if err := saveHogs(tx, st.Hogs); err != nil {
		return fmt.Errorf("save hogs: %w", err)
	}
	if err := saveFacilities(tx, st.Facilities); err != nil {
		return fmt.Errorf("save facilities: %w", err)
	}
	for _, e := range snap.Events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return fmt.Errorf("save events: %w", err)
		}
	}

	meta := map[string]string{
		metaTick:      strconv.FormatUint(snap.Tick, 10),
		metaWidth:     strconv.Itoa(st.Width),
		metaHeight:    strconv.Itoa(st.Height),
		metaSteps:     strconv.Itoa(st.Steps),
		metaChanged:   strconv.FormatBool(st.Changed),
		metaNextHogID: strconv.FormatUint(uint64(st.NextHogID), 10),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("board saved")
	return nil
}

func saveRoads(tx *sqlx.Tx, roads []world.Coord) error {
	stmt, err := tx.Preparex("INSERT INTO roads (x, y) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range roads {
		if _, err := stmt.Exec(c.X, c.Y); err != nil {
			return err
		}
	}
	return nil
}

func saveHouses(tx *sqlx.Tx, houses []agents.House) error {
	for _, h := range houses {
		_, err := tx.Exec(
			"INSERT INTO houses (x, y, facing, decorator, hog_id) VALUES (?, ?, ?, ?, ?)",
			h.At.X, h.At.Y, uint8(h.Facing), h.Decorator, uint64(h.Hog),
		)
		if err != nil {
			return fmt.Errorf("house at %v: %w", h.At, err)
		}
	}
	return nil
}

func saveHogs(tx *sqlx.Tx, hogs []agents.Hog) error {
	stmt, err := tx.Preparex(`INSERT INTO hogs
		(id, seq, x, y, facing, decorator, stuck, looped, stack_position, tick_json, cargo_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, h := range hogs {
		tickJSON, _ := json.Marshal(hogTick{HasStepped: h.HasStepped, HoppedFrom: h.HoppedFrom})
		cargoJSON, _ := json.Marshal(hogCargo{
			Holding:         h.Holding,
			PreviousHolding: h.PreviousHolding,
			GaveTo:          h.GaveTo,
			TookFrom:        h.TookFrom,
		})
		_, err := stmt.Exec(
			uint64(h.ID), i, h.Pos.X, h.Pos.Y, uint8(h.Facing), h.Decorator,
			h.Stuck, h.Looped, h.PreviousStackPosition,
			string(tickJSON), string(cargoJSON),
		)
		if err != nil {
			return fmt.Errorf("insert hog %d: %w", h.ID, err)
		}
	}
	return nil
}

func saveFacilities(tx *sqlx.Tx, facilities []engine.FacilityState) error {
	for i, f := range facilities {
		holdingJSON, _ := json.Marshal(f.Holding)
		previousJSON, _ := json.Marshal(f.PreviousHolding)
		var shopJSON sql.NullString
		if f.Shop != nil {
			raw, err := json.Marshal(f.Shop)
			if err != nil {
				return err
			}
			shopJSON = sql.NullString{String: string(raw), Valid: true}
		}
		_, err := tx.Exec(`INSERT INTO facilities
			(seq, name, kind, x, y, resource, base, holding_json, previous_holding_json, shop_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, f.Name, f.Kind, f.Corner.X, f.Corner.Y, f.Resource, f.Base,
			string(holdingJSON), string(previousJSON), shopJSON,
		)
		if err != nil {
			return fmt.Errorf("insert facility %s at %v: %w", f.Name, f.Corner, err)
		}
	}
	return nil
}

// HasBoard reports whether a board has been saved.
func (db *DB) HasBoard() (bool, error) {
	_, err := db.GetMeta(metaWidth)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// LoadSnapshot reads back the board written by SaveSnapshot.
func (db *DB) LoadSnapshot() (engine.Snapshot, error) {
	var snap engine.Snapshot
	meta, err := db.allMeta()
	if err != nil {
		return snap, fmt.Errorf("load meta: %w", err)
	}
	if _, ok := meta[metaWidth]; !ok {
		return snap, fmt.Errorf("load board: %w", sql.ErrNoRows)
	}

	st := &snap.Board
	var nextID uint64
	for _, f := range []struct {
		key string
		set func(string) error
	}{
		{metaTick, func(v string) (err error) { snap.Tick, err = strconv.ParseUint(v, 10, 64); return }},
		{metaWidth, func(v string) (err error) { st.Width, err = strconv.Atoi(v); return }},
		{metaHeight, func(v string) (err error) { st.Height, err = strconv.Atoi(v); return }},
		{metaSteps, func(v string) (err error) { st.Steps, err = strconv.Atoi(v); return }},
		{metaChanged, func(v string) (err error) { st.Changed, err = strconv.ParseBool(v); return }},
		{metaNextHogID, func(v string) (err error) { nextID, err = strconv.ParseUint(v, 10, 64); return }},
	} {
		if err := f.set(meta[f.key]); err != nil {
			return snap, fmt.Errorf("meta %s: %w", f.key, err)
		}
	}
	st.NextHogID = agents.HogID(nextID)

	if err := db.conn.Select(&st.Roads, "SELECT x, y FROM roads ORDER BY rowid"); err != nil {
		return snap, fmt.Errorf("load roads: %w", err)
	}

	var houses []houseRow
	if err := db.conn.Select(&houses, "SELECT x, y, facing, decorator, hog_id FROM houses ORDER BY rowid"); err != nil {
		return snap, fmt.Errorf("load houses: %w", err)
	}
	for _, h := range houses {
		st.Houses = append(st.Houses, agents.House{
			At:        world.Coord{X: h.X, Y: h.Y},
			Facing:    world.Direction(h.Facing),
			Decorator: h.Decorator,
			Hog:       agents.HogID(h.HogID),
		})
	}

	var hogs []hogRow
	if err := db.conn.Select(&hogs, "SELECT * FROM hogs ORDER BY seq"); err != nil {
		return snap, fmt.Errorf("load hogs: %w", err)
	}
	for _, r := range hogs {
		h := agents.Hog{
			ID:                    agents.HogID(r.ID),
			Pos:                   world.Coord{X: r.X, Y: r.Y},
			Facing:                world.Direction(r.Facing),
			Decorator:             r.Decorator,
			Stuck:                 r.Stuck,
			Looped:                r.Looped,
			PreviousStackPosition: r.StackPosition,
		}
		var tick hogTick
		if err := json.Unmarshal([]byte(r.TickJSON), &tick); err != nil {
			return snap, fmt.Errorf("hog %d tick state: %w", r.ID, err)
		}
		var cargo hogCargo
		if err := json.Unmarshal([]byte(r.CargoJSON), &cargo); err != nil {
			return snap, fmt.Errorf("hog %d cargo: %w", r.ID, err)
		}
		h.HasStepped, h.HoppedFrom = tick.HasStepped, tick.HoppedFrom
		h.Holding, h.PreviousHolding = cargo.Holding, cargo.PreviousHolding
		h.GaveTo, h.TookFrom = cargo.GaveTo, cargo.TookFrom
		st.Hogs = append(st.Hogs, h)
	}

	var facilities []facilityRow
	if err := db.conn.Select(&facilities, "SELECT * FROM facilities ORDER BY seq"); err != nil {
		return snap, fmt.Errorf("load facilities: %w", err)
	}
	for _, r := range facilities {
		fs := engine.FacilityState{
			Name:     r.Name,
			Kind:     r.Kind,
			Corner:   world.Coord{X: r.X, Y: r.Y},
			Resource: r.Resource,
			Base:     r.Base,
		}
		if err := json.Unmarshal([]byte(r.HoldingJSON), &fs.Holding); err != nil {
			return snap, fmt.Errorf("facility %s holding: %w", r.Name, err)
		}
		if err := json.Unmarshal([]byte(r.PreviousHoldingJSON), &fs.PreviousHolding); err != nil {
			return snap, fmt.Errorf("facility %s previous holding: %w", r.Name, err)
		}
		if r.ShopJSON.Valid {
			fs.Shop = &engine.ShopState{}
			if err := json.Unmarshal([]byte(r.ShopJSON.String), fs.Shop); err != nil {
				return snap, fmt.Errorf("facility %s shop: %w", r.Name, err)
			}
		}
		st.Facilities = append(st.Facilities, fs)
	}

	if err := db.conn.Select(&snap.Events,
		"SELECT tick, description, category FROM events ORDER BY id",
	); err != nil {
		return snap, fmt.Errorf("load events: %w", err)
	}

	slog.Info("board loaded", "tick", snap.Tick, "hogs", len(st.Hogs), "facilities", len(st.Facilities), "shops", countShops(st.Facilities))
	return snap, nil
}

func countShops(facilities []engine.FacilityState) int {
	n := 0
	for _, f := range facilities {
		if f.Shop != nil {
			n++
		}
	}
	return n
}

func (db *DB) allMeta() (map[string]string, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.Select(&rows, "SELECT key, value FROM world_meta"); err != nil {
		return nil, err
	}
	meta := make(map[string]string, len(rows))
	for _, r := range rows {
		meta[r.Key] = r.Value
	}
	return meta, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
