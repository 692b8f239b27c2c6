package socket

import "fmt"

// Directory answers tile adjacency questions. The matrix is the ground
// truth; the pair cache, when present, is consulted first for upright tiles.
type Directory struct {
	Matrix *Matrix
	Pairs  *PairCache
}

// NewDirectory combines a matrix with an optional pair cache.
func NewDirectory(m *Matrix, pairs *PairCache) *Directory {
	return &Directory{Matrix: m, Pairs: pairs}
}

// Compatible implements Relation over the matrix.
func (d *Directory) Compatible(a, b int) bool {
	if d.Matrix == nil {
		return false
	}
	return d.Matrix.Compatible(a, b)
}

// Placed is a tile at a concrete orientation.
type Placed struct {
	ID        string
	Rotations *RotationSet
	Rotation  int
	Inverted  bool
}

// Profile returns the oriented face table.
func (p Placed) Profile() Profile { return p.Rotations.At(p.Rotation, p.Inverted) }

// Meets reports whether incoming, touching existing through its world
// face f, fits. For side faces existing touches back through f+3.
func (d *Directory) Meets(incoming Placed, f int, existing Placed) bool {
	back := OppositeFace(f)
	if d.Pairs != nil && !incoming.Inverted && !existing.Inverted {
		side := back
		if back < SideCount {
			side = normRotation(back - existing.Rotation)
		}
		if ok, known := d.Pairs.Compatible(incoming.ID, existing.ID, side, existing.Rotation, incoming.Rotation); known {
			return ok
		}
	}
	return FacesCompatible(d, incoming.Profile()[f], existing.Profile()[back])
}

// CheckCatalog reports ErrCompatibilityDataDesync when the matrix cannot
// cover maxSocket or the pair cache was built for another catalog. A cache
// without a catalog hash is not checked.
func (d *Directory) CheckCatalog(maxSocket int, catalogHash string, tileCount int) error {
	if d.Matrix == nil {
		return fmt.Errorf("%w: no socket matrix", ErrCompatibilityDataDesync)
	}
	if maxSocket >= d.Matrix.Size() {
		return fmt.Errorf("%w: matrix covers %d sockets, catalog uses id %d", ErrCompatibilityDataDesync, d.Matrix.Size(), maxSocket)
	}
	if d.Pairs != nil && d.Pairs.CatalogHash != "" {
		if err := CheckPairCache(d.Pairs.CatalogHash, d.Pairs.TileCount, catalogHash, tileCount); err != nil {
			return err
		}
	}
	return nil
}
