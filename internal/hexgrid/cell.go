package hexgrid

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyAssigned = errors.New("hexgrid: cell already assigned")
	ErrCellRemoved     = errors.New("hexgrid: cell removed")
	ErrUnknownCell     = errors.New("hexgrid: no cell at address")
)

// Status is the assignment state of a cell during a solve.
type Status int

const (
	Unassigned Status = iota
	Assigned
	Ignored
	Removed
)

// String returns the string representation of a Status
func (s Status) String() string {
	switch s {
	case Unassigned:
		return "unassigned"
	case Assigned:
		return "assigned"
	case Ignored:
		return "ignored"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// EdgeType classifies why a cell is an edge cell.
type EdgeType int

const (
	EdgeNone      EdgeType = iota
	EdgeOuter              // fewer than six same-layer side neighbors
	EdgeInner              // full ring, but missing a layer neighbor in a multi-layer grid
	EdgeConnector          // full ring, but next to another parent region
)

// String returns the string representation of an EdgeType
func (e EdgeType) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeOuter:
		return "outer"
	case EdgeInner:
		return "inner"
	case EdgeConnector:
		return "connector"
	default:
		return "unknown"
	}
}

// Cell is one grid slot at a given tier and layer.
type Cell struct {
	ID      int
	Address Address
	Center  Vec3
	Size    float64

	Neighbors [SideCount]*Cell
	Above     *Cell
	Below     *Cell
	Parent    *Cell
	Children  [ChildCount]*Cell

	IsEdge     bool
	IsGridEdge bool
	// IsConnector marks a cell with a same-layer neighbor of another
	// parent. It only affects collapse order, never IsEdge.
	IsConnector bool
	IsEntry     bool
	EdgeType    EdgeType

	TileID   string
	Rotation int
	Inverted bool
	Status   Status
}

// SideNeighborCount returns the number of linked same-layer side neighbors.
func (c *Cell) SideNeighborCount() int {
	n := 0
	for _, nb := range c.Neighbors {
		if nb != nil {
			n++
		}
	}
	return n
}

// EdgeSideNeighborCount returns how many side neighbors are grid-edge cells.
func (c *Cell) EdgeSideNeighborCount() int {
	n := 0
	for _, nb := range c.Neighbors {
		if nb != nil && nb.IsGridEdge {
			n++
		}
	}
	return n
}

// LayerNeighborCount returns the number of linked layer neighbors (0..2).
func (c *Cell) LayerNeighborCount() int {
	n := 0
	if c.Above != nil {
		n++
	}
	if c.Below != nil {
		n++
	}
	return n
}

// TotalNeighborCount returns side plus layer neighbors.
func (c *Cell) TotalNeighborCount() int {
	return c.SideNeighborCount() + c.LayerNeighborCount()
}

// AssignedNeighborCount counts side and layer neighbors that hold a tile.
func (c *Cell) AssignedNeighborCount() int {
	n := 0
	for _, nb := range c.Neighbors {
		if nb != nil && nb.Status == Assigned {
			n++
		}
	}
	if c.Above != nil && c.Above.Status == Assigned {
		n++
	}
	if c.Below != nil && c.Below.Status == Assigned {
		n++
	}
	return n
}

// Face returns the neighbor behind face f (0..5 sides, FaceBottom, FaceTop).
func (c *Cell) Face(f int) *Cell {
	switch f {
	case FaceBottom:
		return c.Below
	case FaceTop:
		return c.Above
	}
	if f < 0 || f >= SideCount {
		return nil
	}
	return c.Neighbors[f]
}

// ClassifyEdge recomputes IsEdge, IsGridEdge, IsConnector and EdgeType from
// the current links. IsEdge depends on neighbor counts alone. With
// scopeToParent a cell whose same-layer neighbor has a different parent is
// a connector; EdgeType reports it as Connector only when no outer or inner
// edge applies. Calling it twice on an unchanged grid yields the same
// result.
func (c *Cell) ClassifyEdge(isMultiLayerGrid, scopeToParent bool) {
	sides := c.SideNeighborCount()
	c.IsGridEdge = sides < SideCount

	c.IsConnector = false
	if scopeToParent && c.Parent != nil {
		for _, nb := range c.Neighbors {
			if nb != nil && nb.Parent != c.Parent {
				c.IsConnector = true
				break
			}
		}
	}

	switch {
	case c.IsGridEdge:
		c.EdgeType = EdgeOuter
	case isMultiLayerGrid && sides+c.LayerNeighborCount() < SideCount+1:
		c.EdgeType = EdgeInner
	case c.IsConnector:
		c.EdgeType = EdgeConnector
	default:
		c.EdgeType = EdgeNone
	}
	c.IsEdge = c.EdgeType == EdgeOuter || c.EdgeType == EdgeInner
}

// Assign records the tile selection. It fails if the cell already holds a
// tile unless overwrite is set; removed cells never accept a tile.
func (c *Cell) Assign(tileID string, rotation int, inverted, overwrite bool) error {
	if c.Status == Removed {
		return fmt.Errorf("%w: %s", ErrCellRemoved, c.Address)
	}
	if c.Status == Assigned && !overwrite {
		return fmt.Errorf("%w: %s holds %s", ErrAlreadyAssigned, c.Address, c.TileID)
	}
	c.TileID = tileID
	c.Rotation = ((rotation % SideCount) + SideCount) % SideCount
	c.Inverted = inverted
	c.Status = Assigned
	return nil
}

// MarkIgnored flags a cell the solver gave up on.
func (c *Cell) MarkIgnored() {
	if c.Status != Removed {
		c.Status = Ignored
	}
}

// MarkRemoved takes the cell out of the grid without unlinking it.
func (c *Cell) MarkRemoved() {
	c.Status = Removed
	c.TileID = ""
}

// ClearAssignment resets a non-removed cell to Unassigned.
func (c *Cell) ClearAssignment() {
	if c.Status == Removed {
		return
	}
	c.TileID = ""
	c.Rotation = 0
	c.Inverted = false
	c.Status = Unassigned
}

// IsOpen reports whether the cell still waits for a tile.
func (c *Cell) IsOpen() bool { return c.Status == Unassigned }

// Corners returns the planar corner points of the cell.
func (c *Cell) Corners() [SideCount]Vec2 { return Corners(c.Center.Planar(), c.Size) }

// SideMidpoints returns the planar side midpoints of the cell.
func (c *Cell) SideMidpoints() [SideCount]Vec2 { return SideMidpoints(c.Center.Planar(), c.Size) }

// NeighborKind tells what sits behind a face.
type NeighborKind int

const (
	NeighborEdge NeighborKind = iota
	NeighborUnassigned
	NeighborAssigned
)

// String returns the string representation of a NeighborKind
func (k NeighborKind) String() string {
	switch k {
	case NeighborEdge:
		return "edge"
	case NeighborUnassigned:
		return "unassigned"
	case NeighborAssigned:
		return "assigned"
	default:
		return "unknown"
	}
}

// NeighborState describes one face of a cell.
type NeighborState struct {
	Kind NeighborKind
	Cell *Cell
}

// NeighborStates reports, per face, whether there is no neighbor, an open
// neighbor or an assigned one. Removed neighbors count as edges; ignored
// neighbors impose nothing.
func (c *Cell) NeighborStates() [FaceCount]NeighborState {
	var out [FaceCount]NeighborState
	for f := 0; f < FaceCount; f++ {
		nb := c.Face(f)
		switch {
		case nb == nil || nb.Status == Removed:
			out[f] = NeighborState{Kind: NeighborEdge}
		case nb.Status == Assigned:
			out[f] = NeighborState{Kind: NeighborAssigned, Cell: nb}
		default:
			out[f] = NeighborState{Kind: NeighborUnassigned, Cell: nb}
		}
	}
	return out
}
