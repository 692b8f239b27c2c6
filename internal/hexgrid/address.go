// Package hexgrid provides the multi-tier, multi-layer hexagonal grid the
// tile solver works on: addressing math, cells and neighbor resolution.
//
// Every tier uses the same pointy-top orientation. Side k of a cell faces
// Directions[k]; tier t cells are three times the size of tier t-1 cells.
package hexgrid

import "fmt"

// Axial represents axial coordinates (q, r) for pointy-top orientation.
type Axial struct {
	Q int `json:"q" yaml:"q"`
	R int `json:"r" yaml:"r"`
}

// Cube represents cube coordinates (x, y, z) with x+y+z=0.
type Cube struct {
	X int
	Y int
	Z int
}

// Directions holds the axial offset of each of the six sides.
var Directions = [SideCount]Axial{
	{+1, 0}, {+1, -1}, {0, -1}, {-1, 0}, {-1, +1}, {0, +1},
}

const (
	// SideCount is the number of horizontal sides of a cell.
	SideCount = 6
	// FaceBottom and FaceTop extend side indices 0..5 with the vertical faces.
	FaceBottom = 6
	FaceTop    = 7
	// FaceCount is the number of faces of a cell (6 sides + bottom + top).
	FaceCount = 8
)

// OppositeSide returns the side facing side s from the neighboring cell.
// Vertical faces swap bottom and top.
func OppositeSide(s int) int {
	switch s {
	case FaceBottom:
		return FaceTop
	case FaceTop:
		return FaceBottom
	}
	return (s + 3) % SideCount
}

// Add returns a+b in axial space.
func (a Axial) Add(b Axial) Axial { return Axial{a.Q + b.Q, a.R + b.R} }

// Mul scales an axial vector by k.
func (a Axial) Mul(k int) Axial { return Axial{a.Q * k, a.R * k} }

// Neighbor returns the axial coordinate on side s.
func (a Axial) Neighbor(s int) Axial { return a.Add(Directions[s%SideCount]) }

// ToCube converts axial to cube.
func (a Axial) ToCube() Cube {
	return Cube{X: a.Q, Y: -a.Q - a.R, Z: a.R}
}

// ToAxial converts cube to axial.
func (c Cube) ToAxial() Axial { return Axial{Q: c.X, R: c.Z} }

func (a Axial) String() string { return fmt.Sprintf("%d,%d", a.Q, a.R) }

// Distance returns hex distance between two axial coords.
func Distance(a, b Axial) int {
	ca, cb := a.ToCube(), b.ToCube()
	dx := absInt(ca.X - cb.X)
	dy := absInt(ca.Y - cb.Y)
	dz := absInt(ca.Z - cb.Z)
	if dx > dy && dx > dz {
		return dx
	}
	if dy > dz {
		return dy
	}
	return dz
}

// Address identifies a cell: axial coordinate, size tier, vertical layer and
// world partition.
type Address struct {
	Coord     Axial `json:"coord" yaml:"coord"`
	Tier      int   `json:"tier" yaml:"tier"`
	Layer     int   `json:"layer" yaml:"layer"`
	Partition int   `json:"partition" yaml:"partition"`
}

func (a Address) String() string {
	return fmt.Sprintf("p%d/t%d/l%d/(%d,%d)", a.Partition, a.Tier, a.Layer, a.Coord.Q, a.Coord.R)
}

// Less orders addresses by partition, tier, layer, r, then q.
func (a Address) Less(b Address) bool {
	if a.Partition != b.Partition {
		return a.Partition < b.Partition
	}
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	if a.Layer != b.Layer {
		return a.Layer < b.Layer
	}
	if a.Coord.R != b.Coord.R {
		return a.Coord.R < b.Coord.R
	}
	return a.Coord.Q < b.Coord.Q
}

// Vec2 is a planar world position.
type Vec2 struct {
	X, Y float64
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Vec3 is a world position; Z is elevation.
type Vec3 struct {
	X, Y, Z float64
}

// Planar drops the elevation.
func (v Vec3) Planar() Vec2 { return Vec2{v.X, v.Y} }

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
