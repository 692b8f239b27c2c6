package wfc

import (
	"fmt"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/socket"
)

// Candidate is one tile orientation considered for a cell.
type Candidate struct {
	Tile     *catalog.TileDefinition
	Rotation int
	Inverted bool
}

func (c Candidate) String() string {
	if c.Inverted {
		return fmt.Sprintf("%s@%d/inv", c.Tile.ID, c.Rotation)
	}
	return fmt.Sprintf("%s@%d", c.Tile.ID, c.Rotation)
}

// Placement is one resolved cell.
type Placement struct {
	Address  hexgrid.Address `json:"address" yaml:"address"`
	TileID   string          `json:"tile" yaml:"tile"`
	Rotation int             `json:"rotation" yaml:"rotation"`
	Inverted bool            `json:"inverted,omitempty" yaml:"inverted,omitempty"`
	// Cluster names the cluster tile that placed the cell, if any.
	Cluster string `json:"cluster,omitempty" yaml:"cluster,omitempty"`
}

// NeighborSocket is what one face of a cell sees.
type NeighborSocket struct {
	Kind hexgrid.NeighborKind
	// Face is the facing neighbor face in world orientation, or a scalar
	// EdgeID / UnassignedID sentinel.
	Face socket.Face
	Cell *hexgrid.Cell
}

func (n NeighborSocket) String() string {
	switch n.Kind {
	case hexgrid.NeighborAssigned:
		return fmt.Sprintf("%s[%s]", n.Cell.TileID, n.Face)
	default:
		return n.Kind.String()
	}
}

// Result is the outcome of one solve. Nested solves of expanding tiles are
// attached as children.
type Result struct {
	Seed int64
	Tier int
	// Parent is the expanded cell for nested results.
	Parent *hexgrid.Address

	Placements       []Placement
	Ignored          []hexgrid.Address
	Failures         []*UnsatisfiableCellError
	ClusterFailures  []*ClusterError
	ClustersPlaced   int
	Attempts         int
	PropagatedPlaced int

	Children []*Result
	Err      error
}

// Success reports whether the solve and every nested solve placed every
// cell.
func (r *Result) Success() bool {
	if r.Err != nil || len(r.Failures) > 0 || len(r.Ignored) > 0 {
		return false
	}
	for _, ch := range r.Children {
		if !ch.Success() {
			return false
		}
	}
	return true
}

// Walk visits r and every nested result depth first.
func (r *Result) Walk(fn func(*Result)) {
	fn(r)
	for _, ch := range r.Children {
		ch.Walk(fn)
	}
}

// AllPlacements returns the placements of r and its nested results.
func (r *Result) AllPlacements() []Placement {
	var out []Placement
	r.Walk(func(x *Result) { out = append(out, x.Placements...) })
	return out
}

// Assignments indexes AllPlacements by address.
func (r *Result) Assignments() map[hexgrid.Address]Placement {
	out := make(map[hexgrid.Address]Placement)
	for _, p := range r.AllPlacements() {
		out[p.Address] = p
	}
	return out
}
