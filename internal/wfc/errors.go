package wfc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
)

var (
	ErrUnsatisfiableCell         = errors.New("wfc: no tile fits cell")
	ErrClusterAssignmentConflict = errors.New("wfc: cluster overlaps assigned or claimed cells")
	ErrNoClusterTile             = errors.New("wfc: no cluster tile fits")
	ErrInvalidSettings           = errors.New("wfc: invalid settings")
	ErrNoSolution                = errors.New("wfc: failed to find valid solution")
)

// UnsatisfiableCellError describes a cell for which no orientation of any
// candidate tile fits its assigned neighbors.
type UnsatisfiableCellError struct {
	Address   hexgrid.Address
	Subset    catalog.Subset
	Neighbors [hexgrid.FaceCount]NeighborSocket
}

func (e *UnsatisfiableCellError) Error() string {
	parts := make([]string, 0, hexgrid.FaceCount)
	for f, n := range e.Neighbors {
		parts = append(parts, fmt.Sprintf("%s=%s", faceName(f), n))
	}
	return fmt.Sprintf("%v at %s (subset %s; %s)", ErrUnsatisfiableCell, e.Address, e.Subset, strings.Join(parts, " "))
}

func (e *UnsatisfiableCellError) Unwrap() error { return ErrUnsatisfiableCell }

// ClusterError records a cluster that could not be placed.
type ClusterError struct {
	Cluster int
	Parent  hexgrid.Address
	Err     error
}

func (e *ClusterError) Error() string {
	return fmt.Sprintf("cluster %d at %s: %v", e.Cluster, e.Parent, e.Err)
}

func (e *ClusterError) Unwrap() error { return e.Err }

func faceName(f int) string {
	switch f {
	case hexgrid.FaceBottom:
		return "bottom"
	case hexgrid.FaceTop:
		return "top"
	default:
		return fmt.Sprintf("s%d", f)
	}
}
