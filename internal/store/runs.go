package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

// RunSummary is one stored solve.
type RunSummary struct {
	ID          string
	Seed        int64
	Tier        int
	CatalogHash string
	Success     bool
	Placed      int
	Ignored     int
	Attempts    int
	Clusters    int
	Error       string
	CreatedAt   time.Time
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SaveRun stores a result and every placement of it and its nested
// results. It returns the new run id.
func (s *Store) SaveRun(ctx context.Context, res *wfc.Result, catalogHash string) (string, error) {
	id := uuid.NewString()
	placements := res.AllPlacements()

	ignored := 0
	res.Walk(func(r *wfc.Result) { ignored += len(r.Ignored) })
	errText := ""
	if res.Err != nil {
		errText = res.Err.Error()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.qb.Build(`
		INSERT INTO runs (id, seed, tier, catalog_hash, success, placed, ignored, attempts, clusters, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id, res.Seed, res.Tier, catalogHash, boolInt(res.Success()), len(placements), ignored,
		res.Attempts, res.ClustersPlaced, errText, time.Now().UTC().UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.qb.Build(`
		INSERT INTO assignments (run_id, seq, tier, layer, q, r, part, tile, rotation, inverted, cluster)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return "", fmt.Errorf("failed to prepare assignment insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range placements {
		a := p.Address
		if _, err := stmt.ExecContext(ctx, id, i, a.Tier, a.Layer, a.Coord.Q, a.Coord.R, a.Partition,
			p.TileID, p.Rotation, boolInt(p.Inverted), p.Cluster); err != nil {
			if s.dialect.IsDuplicateKeyError(err) {
				return "", fmt.Errorf("duplicate placement at %s: %w", a, err)
			}
			return "", fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	s.log.Info("run saved", "run", id, "placed", len(placements), "ignored", ignored)
	return id, nil
}

const runColumns = `id, seed, tier, catalog_hash, success, placed, ignored, attempts, clusters, error, created_at`

func scanRun(row interface{ Scan(...any) error }) (*RunSummary, error) {
	var r RunSummary
	var success int
	var created int64
	if err := row.Scan(&r.ID, &r.Seed, &r.Tier, &r.CatalogHash, &success, &r.Placed, &r.Ignored,
		&r.Attempts, &r.Clusters, &r.Error, &created); err != nil {
		return nil, err
	}
	r.Success = success != 0
	r.CreatedAt = time.Unix(0, created).UTC()
	return &r, nil
}

// GetRun returns a run summary by id.
func (s *Store) GetRun(ctx context.Context, id string) (*RunSummary, error) {
	row := s.db.QueryRowContext(ctx, s.qb.Build(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, s.qb.Build(`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []*RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Placements returns the stored placements of a run in placement order.
func (s *Store) Placements(ctx context.Context, runID string) ([]wfc.Placement, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.qb.Build(`
		SELECT tier, layer, q, r, part, tile, rotation, inverted, cluster
		FROM assignments WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load placements: %w", err)
	}
	defer rows.Close()

	var out []wfc.Placement
	for rows.Next() {
		var p wfc.Placement
		var a hexgrid.Address
		var inverted int
		if err := rows.Scan(&a.Tier, &a.Layer, &a.Coord.Q, &a.Coord.R, &a.Partition,
			&p.TileID, &p.Rotation, &inverted, &p.Cluster); err != nil {
			return nil, fmt.Errorf("failed to scan placement: %w", err)
		}
		p.Address = a
		p.Inverted = inverted != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its placements.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.qb.Build(`DELETE FROM assignments WHERE run_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete assignments: %w", err)
	}
	res, err := tx.ExecContext(ctx, s.qb.Build(`DELETE FROM runs WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return tx.Commit()
}
