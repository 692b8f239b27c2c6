package socket

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/hexwfc/internal/fileutil"
)

// ErrCompatibilityDataDesync is returned when stored compatibility data was
// built for a different catalog than the one in use.
var ErrCompatibilityDataDesync = errors.New("socket: compatibility data out of sync with catalog")

// PairCacheFile is the on-disk shape of a pair cache.
type PairCacheFile struct {
	CatalogHash string                      `json:"catalog_hash"`
	TileCount   int                         `json:"tile_count"`
	Entries     map[string]map[string][]int `json:"entries"`
}

const pairSep = "|"

// ToFile converts the cache to its stored shape.
func (c *PairCache) ToFile() PairCacheFile {
	f := PairCacheFile{
		CatalogHash: c.CatalogHash,
		TileCount:   c.TileCount,
		Entries:     make(map[string]map[string][]int),
	}
	for _, k := range c.Keys() {
		pair := k.Incoming + pairSep + k.Existing
		sides, ok := f.Entries[pair]
		if !ok {
			sides = make(map[string][]int)
			f.Entries[pair] = sides
		}
		sides[strconv.Itoa(k.Side)] = c.entries[k].Offsets()
	}
	return f
}

// PairCacheFromFile rebuilds a cache from its stored shape.
func PairCacheFromFile(f PairCacheFile) (*PairCache, error) {
	c := NewPairCache()
	c.CatalogHash = f.CatalogHash
	c.TileCount = f.TileCount
	for pair, sides := range f.Entries {
		incoming, existing, ok := strings.Cut(pair, pairSep)
		if !ok {
			return nil, fmt.Errorf("invalid pair key %q", pair)
		}
		for sideKey, offsets := range sides {
			side, err := strconv.Atoi(sideKey)
			if err != nil || side < 0 || side >= FaceCount {
				return nil, fmt.Errorf("invalid side %q for pair %q", sideKey, pair)
			}
			c.Touch(incoming, existing, side)
			for _, o := range offsets {
				if o < 0 || o >= SideCount {
					return nil, fmt.Errorf("invalid offset %d for pair %q side %d", o, pair, side)
				}
				c.Register(incoming, existing, side, o)
			}
		}
	}
	return c, nil
}

// SavePairCacheJSON writes the cache atomically.
func SavePairCacheJSON(c *PairCache, path string) error {
	data, err := json.MarshalIndent(c.ToFile(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pair cache: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write pair cache: %w", err)
	}
	return nil
}

// LoadPairCacheJSON reads a cache and checks it against the catalog in use.
// An empty catalogHash or a zero tileCount skips that check.
func LoadPairCacheJSON(path, catalogHash string, tileCount int) (*PairCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pair cache: %w", err)
	}
	var f PairCacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse pair cache: %w", err)
	}
	if err := CheckPairCache(f.CatalogHash, f.TileCount, catalogHash, tileCount); err != nil {
		return nil, err
	}
	c, err := PairCacheFromFile(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load pair cache: %w", err)
	}
	return c, nil
}

// CheckPairCache compares stored cache metadata with the catalog in use.
func CheckPairCache(storedHash string, storedTiles int, catalogHash string, tileCount int) error {
	if catalogHash != "" && storedHash != catalogHash {
		return fmt.Errorf("%w: cache hash %q, catalog hash %q", ErrCompatibilityDataDesync, storedHash, catalogHash)
	}
	if tileCount > 0 && storedTiles != tileCount {
		return fmt.Errorf("%w: cache covers %d tiles, catalog has %d", ErrCompatibilityDataDesync, storedTiles, tileCount)
	}
	return nil
}

// MatrixFile is the on-disk shape of a socket matrix.
type MatrixFile struct {
	Size  int      `json:"size"`
	Pairs [][2]int `json:"pairs"`
}

// SaveMatrixJSON writes the matrix atomically.
func SaveMatrixJSON(m *Matrix, path string) error {
	data, err := json.MarshalIndent(MatrixFile{Size: m.Size(), Pairs: m.Pairs()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal matrix: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write matrix: %w", err)
	}
	return nil
}

// LoadMatrixJSON reads a matrix. A positive wantSize must match the stored
// size.
func LoadMatrixJSON(path string, wantSize int) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix: %w", err)
	}
	var f MatrixFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse matrix: %w", err)
	}
	return f.ToMatrix(wantSize)
}

// ToMatrix rebuilds the matrix. A positive wantSize must match the stored
// size.
func (f MatrixFile) ToMatrix(wantSize int) (*Matrix, error) {
	if wantSize > 0 && f.Size != wantSize {
		return nil, fmt.Errorf("%w: matrix size %d, catalog needs %d", ErrCompatibilityDataDesync, f.Size, wantSize)
	}
	m := NewMatrix(f.Size)
	for _, p := range f.Pairs {
		if err := m.Allow(p[0], p[1]); err != nil {
			return nil, fmt.Errorf("failed to load matrix: %w", err)
		}
	}
	return m, nil
}
