package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/hogday/internal/engine"
)

// SnapshotVersion is bumped when the snapshot body changes shape.
const SnapshotVersion = 1

const snapshotExt = ".json.zst"

// SnapshotHeader is the first line of a snapshot file, readable without
// decoding the board.
type SnapshotHeader struct {
	Version int    `json:"version"`
	Tick    uint64 `json:"tick"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Hogs    int    `json:"hogs"`
}

// SnapshotPath names the snapshot file for a tick inside dir.
func SnapshotPath(dir string, tick uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%012d%s", tick, snapshotExt))
}

// WriteSnapshot writes a zstd-compressed JSON snapshot, creating dir as needed.
func WriteSnapshot(path string, snap engine.Snapshot) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(SnapshotHeader{
		Version: SnapshotVersion,
		Tick:    snap.Tick,
		Width:   snap.Board.Width,
		Height:  snap.Board.Height,
		Hogs:    len(snap.Board.Hogs),
	})
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadSnapshot reads a file written by WriteSnapshot.
func ReadSnapshot(path string) (engine.Snapshot, error) {
	var snap engine.Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var hdr SnapshotHeader
	if err := json.Unmarshal(line, &hdr); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if hdr.Version != SnapshotVersion {
		return snap, fmt.Errorf("snapshot version %d, want %d", hdr.Version, SnapshotVersion)
	}

	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("json decode: %w", err)
	}
	return snap, nil
}

// LatestSnapshot returns the newest snapshot file in dir, or "" if none.
func LatestSnapshot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), snapshotExt) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}

// Store saves a simulation to the database and, when Dir is set, to a
// snapshot file. Either side may be absent.
type Store struct {
	DB  *DB
	Dir string
}

// Save writes snap everywhere the store is configured to and returns the
// snapshot file path, if any.
func (st *Store) Save(snap engine.Snapshot) (string, error) {
	if st.DB != nil {
		if err := st.DB.SaveSnapshot(snap); err != nil {
			return "", fmt.Errorf("save db: %w", err)
		}
	}
	if st.Dir == "" {
		return "", nil
	}
	path := SnapshotPath(st.Dir, snap.Tick)
	if err := WriteSnapshot(path, snap); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// Load returns the saved simulation state, preferring the database over
// the newest snapshot file. ok is false when nothing has been saved.
func (st *Store) Load() (snap engine.Snapshot, ok bool, err error) {
	if st.DB != nil {
		has, err := st.DB.HasBoard()
		if err != nil {
			return snap, false, err
		}
		if has {
			snap, err = st.DB.LoadSnapshot()
			return snap, err == nil, err
		}
	}
	if st.Dir == "" {
		return snap, false, nil
	}
	path, err := LatestSnapshot(st.Dir)
	if err != nil || path == "" {
		return snap, false, err
	}
	snap, err = ReadSnapshot(path)
	return snap, err == nil, err
}
