// Package store persists LDC density fields and detection runs in SQLite.
//
// A Store implements ldc.DensityCache, so it can be plugged into
// ldc.Config.Cache to skip the smoothing sweep on repeated runs over the
// same grid.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS density_cache (
	key        TEXT PRIMARY KEY,
	cells      INTEGER NOT NULL,
	blob       BLOB NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	params     TEXT NOT NULL,
	n_clumps   INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS clumps (
	run_id     TEXT NOT NULL,
	clump_id   INTEGER NOT NULL,
	peak       TEXT NOT NULL,
	centroid   TEXT NOT NULL,
	size       TEXT NOT NULL,
	peak_value REAL NOT NULL,
	sum        REAL NOT NULL,
	volume     INTEGER NOT NULL,
	fragments  INTEGER NOT NULL,
	PRIMARY KEY (run_id, clump_id),
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);
`

// Store is a SQLite-backed density cache and run archive.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive and serializes
	// writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadDensity returns the cached density field for key.
func (s *Store) LoadDensity(key string) ([]float64, bool, error) {
	var cells int
	var blob []byte
	err := s.db.QueryRow(`SELECT cells, blob FROM density_cache WHERE key = ?`, key).Scan(&cells, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: query density %s: %w", key, err)
	}
	rho, err := decodeFloats(blob, cells)
	if err != nil {
		return nil, false, fmt.Errorf("store: decode density %s: %w", key, err)
	}
	return rho, true, nil
}

// StoreDensity saves rho under key, replacing any previous entry.
func (s *Store) StoreDensity(key string, rho []float64) error {
	blob, err := encodeFloats(rho)
	if err != nil {
		return fmt.Errorf("store: encode density: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO density_cache (key, cells, blob, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET cells = excluded.cells, blob = excluded.blob, created_at = excluded.created_at`,
		key, len(rho), blob, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store: insert density %s: %w", key, err)
	}
	return nil
}

// PurgeDensity deletes cache entries created before cutoff and returns how
// many were removed.
func (s *Store) PurgeDensity(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM density_cache WHERE created_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("store: purge density: %w", err)
	}
	return res.RowsAffected()
}

// encodeFloats writes vs as little-endian float64s through a zstd encoder.
func encodeFloats(vs []float64) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	raw := make([]byte, 8*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(v))
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeFloats reverses encodeFloats and checks the value count.
func decodeFloats(blob []byte, n int) ([]float64, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(blob, make([]byte, 0, 8*n))
	if err != nil {
		return nil, err
	}
	if len(raw) != 8*n {
		return nil, fmt.Errorf("got %d bytes, want %d", len(raw), 8*n)
	}
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return vs, nil
}
