package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/hexwfc/internal/socket"
)

const (
	kindPairs  = "pairs"
	kindMatrix = "matrix"
)

func (s *Store) putCompat(ctx context.Context, kind, hash string, tileCount int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	_, err = s.db.ExecContext(ctx, s.qb.Build(`
		INSERT INTO compat (kind, catalog_hash, tile_count, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (kind, catalog_hash) DO UPDATE
		SET tile_count = excluded.tile_count, data = excluded.data, updated_at = excluded.updated_at`),
		kind, hash, tileCount, string(data), time.Now().UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	return nil
}

func (s *Store) getCompat(ctx context.Context, kind, hash string, v any) error {
	var data []byte
	err := s.db.QueryRowContext(ctx, s.qb.Build(`SELECT data FROM compat WHERE kind = ? AND catalog_hash = ?`),
		kind, hash).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s for catalog %q", ErrCompatNotFound, kind, hash)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", kind, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", kind, err)
	}
	return nil
}

// SavePairCache stores a pair cache under its catalog hash.
func (s *Store) SavePairCache(ctx context.Context, c *socket.PairCache) error {
	return s.putCompat(ctx, kindPairs, c.CatalogHash, c.TileCount, c.ToFile())
}

// LoadPairCache loads the cache stored for catalogHash and checks it against
// the live tile count.
func (s *Store) LoadPairCache(ctx context.Context, catalogHash string, tileCount int) (*socket.PairCache, error) {
	var f socket.PairCacheFile
	if err := s.getCompat(ctx, kindPairs, catalogHash, &f); err != nil {
		return nil, err
	}
	if err := socket.CheckPairCache(f.CatalogHash, f.TileCount, catalogHash, tileCount); err != nil {
		return nil, err
	}
	return socket.PairCacheFromFile(f)
}

// SaveMatrix stores a socket matrix for a catalog.
func (s *Store) SaveMatrix(ctx context.Context, catalogHash string, m *socket.Matrix) error {
	return s.putCompat(ctx, kindMatrix, catalogHash, 0, socket.MatrixFile{Size: m.Size(), Pairs: m.Pairs()})
}

// LoadMatrix loads the matrix stored for a catalog. wantSize > 0 rejects a
// matrix that cannot cover the catalog's sockets.
func (s *Store) LoadMatrix(ctx context.Context, catalogHash string, wantSize int) (*socket.Matrix, error) {
	var f socket.MatrixFile
	if err := s.getCompat(ctx, kindMatrix, catalogHash, &f); err != nil {
		return nil, err
	}
	return f.ToMatrix(wantSize)
}
