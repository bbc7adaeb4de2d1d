package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TrevorS/ldc"
)

// ErrRunNotFound is returned when a run ID is not in the archive.
var ErrRunNotFound = errors.New("store: run not found")

// Run is one archived detection.
type Run struct {
	RunID     string
	Source    string
	Params    ldc.Config
	NumClumps int
	CreatedAt time.Time
}

// SaveRun archives the clumps of one detection together with the parameters
// that produced them and returns the new run ID.
func (s *Store) SaveRun(ctx context.Context, source string, cfg ldc.Config, clumps []ldc.Clump) (string, error) {
	params, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("store: marshal params: %w", err)
	}
	runID := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, source, params, n_clumps, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		runID, source, string(params), len(clumps), time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("store: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO clumps (run_id, clump_id, peak, centroid, size, peak_value, sum, volume, fragments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("store: prepare clumps: %w", err)
	}
	defer stmt.Close()

	for _, c := range clumps {
		peak, err := json.Marshal(c.Peak)
		if err != nil {
			return "", fmt.Errorf("store: marshal clump %d: %w", c.ID, err)
		}
		cen, err := json.Marshal(c.Centroid)
		if err != nil {
			return "", fmt.Errorf("store: marshal clump %d: %w", c.ID, err)
		}
		size, err := json.Marshal(c.Size)
		if err != nil {
			return "", fmt.Errorf("store: marshal clump %d: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, c.ID, string(peak), string(cen), string(size),
			c.PeakValue, c.Sum, c.Volume, c.Fragments); err != nil {
			return "", fmt.Errorf("store: insert clump %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: commit run: %w", err)
	}
	return runID, nil
}

// GetRun returns the archived run with the given ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	var r Run
	var params string
	var created int64
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, source, params, n_clumps, created_at FROM runs WHERE run_id = ?`, runID,
	).Scan(&r.RunID, &r.Source, &params, &r.NumClumps, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: query run: %w", err)
	}
	if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
		return nil, fmt.Errorf("store: decode params of run %s: %w", runID, err)
	}
	r.CreatedAt = time.Unix(0, created)
	return &r, nil
}

// RunClumps returns the clumps archived under runID, ordered by clump ID.
func (s *Store) RunClumps(ctx context.Context, runID string) ([]ldc.Clump, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT clump_id, peak, centroid, size, peak_value, sum, volume, fragments
		FROM clumps WHERE run_id = ? ORDER BY clump_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: query clumps: %w", err)
	}
	defer rows.Close()

	var clumps []ldc.Clump
	for rows.Next() {
		var c ldc.Clump
		var peak, cen, size string
		if err := rows.Scan(&c.ID, &peak, &cen, &size, &c.PeakValue, &c.Sum, &c.Volume, &c.Fragments); err != nil {
			return nil, fmt.Errorf("store: scan clump: %w", err)
		}
		if err := json.Unmarshal([]byte(peak), &c.Peak); err != nil {
			return nil, fmt.Errorf("store: decode peak of clump %d: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(cen), &c.Centroid); err != nil {
			return nil, fmt.Errorf("store: decode centroid of clump %d: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(size), &c.Size); err != nil {
			return nil, fmt.Errorf("store: decode size of clump %d: %w", c.ID, err)
		}
		clumps = append(clumps, c)
	}
	return clumps, rows.Err()
}

// ListRuns returns every archived run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, source, params, n_clumps, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var params string
		var created int64
		if err := rows.Scan(&r.RunID, &r.Source, &params, &r.NumClumps, &created); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
			return nil, fmt.Errorf("store: decode params of run %s: %w", r.RunID, err)
		}
		r.CreatedAt = time.Unix(0, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
