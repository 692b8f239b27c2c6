package hexgrid

import (
	"fmt"
	"sort"
)

// Grid owns every cell of one world partition, indexed tier → layer → axial.
type Grid struct {
	BaseSize    float64
	LayerHeight float64
	Partition   int

	cells  map[int]map[int]map[Axial]*Cell
	nextID int
}

// NewGrid creates an empty grid. baseSize is the corner radius of tier 0
// cells; layerHeight is the elevation step between layers.
func NewGrid(baseSize, layerHeight float64) *Grid {
	if baseSize <= 0 {
		baseSize = 1
	}
	if layerHeight <= 0 {
		layerHeight = 1
	}
	return &Grid{
		BaseSize:    baseSize,
		LayerHeight: layerHeight,
		cells:       make(map[int]map[int]map[Axial]*Cell),
	}
}

// AddCell creates the cell at (coord, tier, layer), or returns the existing
// one.
func (g *Grid) AddCell(coord Axial, tier, layer int) *Cell {
	layers, ok := g.cells[tier]
	if !ok {
		layers = make(map[int]map[Axial]*Cell)
		g.cells[tier] = layers
	}
	plane, ok := layers[layer]
	if !ok {
		plane = make(map[Axial]*Cell)
		layers[layer] = plane
	}
	if c, ok := plane[coord]; ok {
		return c
	}

	size := TierSize(g.BaseSize, tier)
	p := AxialToPixel(coord, size)
	c := &Cell{
		ID: g.nextID,
		Address: Address{
			Coord:     coord,
			Tier:      tier,
			Layer:     layer,
			Partition: g.Partition,
		},
		Center: Vec3{X: p.X, Y: p.Y, Z: float64(layer) * g.LayerHeight},
		Size:   size,
	}
	g.nextID++
	plane[coord] = c
	return c
}

// Lookup returns the cell at (tier, layer, coord).
func (g *Grid) Lookup(tier, layer int, coord Axial) (*Cell, bool) {
	c, ok := g.cells[tier][layer][coord]
	return c, ok
}

// Cell returns the cell at addr, ignoring the partition field.
func (g *Grid) Cell(addr Address) (*Cell, bool) {
	return g.Lookup(addr.Tier, addr.Layer, addr.Coord)
}

// LookupPosition resolves a planar position to a cell on the given tier and
// layer using the tolerant lookup key.
func (g *Grid) LookupPosition(p Vec2, tier, layer int) (*Cell, bool) {
	return g.Lookup(tier, layer, LookupKey(p, tier, g.BaseSize))
}

// Len returns the number of cells on all tiers.
func (g *Grid) Len() int {
	n := 0
	for _, layers := range g.cells {
		for _, plane := range layers {
			n += len(plane)
		}
	}
	return n
}

// Tiers returns the populated tiers in ascending order.
func (g *Grid) Tiers() []int {
	out := make([]int, 0, len(g.cells))
	for t := range g.cells {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

// Layers returns the populated layers of a tier in ascending order.
func (g *Grid) Layers(tier int) []int {
	out := make([]int, 0, len(g.cells[tier]))
	for l := range g.cells[tier] {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// IsMultiLayer reports whether a tier spans more than one layer.
func (g *Grid) IsMultiLayer(tier int) bool {
	return len(g.cells[tier]) > 1
}

// CellsAt returns the cells of one tier and layer in address order.
func (g *Grid) CellsAt(tier, layer int) []*Cell {
	plane := g.cells[tier][layer]
	out := make([]*Cell, 0, len(plane))
	for _, c := range plane {
		out = append(out, c)
	}
	SortCells(out)
	return out
}

// TierCells returns every cell of a tier in address order.
func (g *Grid) TierCells(tier int) []*Cell {
	var out []*Cell
	for _, l := range g.Layers(tier) {
		out = append(out, g.CellsAt(tier, l)...)
	}
	return out
}

// Cells returns every cell in address order.
func (g *Grid) Cells() []*Cell {
	var out []*Cell
	for _, t := range g.Tiers() {
		out = append(out, g.TierCells(t)...)
	}
	return out
}

// MarkEntry flags the cell at addr as an ingress cell.
func (g *Grid) MarkEntry(addr Address) error {
	c, ok := g.Cell(addr)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCell, addr)
	}
	c.IsEntry = true
	return nil
}

// ClassifyEdges runs ClassifyEdge on every cell.
func (g *Grid) ClassifyEdges(scopeToParent bool) {
	for _, t := range g.Tiers() {
		multi := g.IsMultiLayer(t)
		for _, c := range g.TierCells(t) {
			c.ClassifyEdge(multi, scopeToParent)
		}
	}
}

// Reset clears every assignment, keeping removed cells removed.
func (g *Grid) Reset() {
	for _, layers := range g.cells {
		for _, plane := range layers {
			for _, c := range plane {
				c.ClearAssignment()
			}
		}
	}
}

// SortCells orders cells by address.
func SortCells(cells []*Cell) {
	sort.SliceStable(cells, func(i, j int) bool {
		return cells[i].Address.Less(cells[j].Address)
	})
}
