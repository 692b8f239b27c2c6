package hexgrid

import "math"

// DefaultTolerance is the corner coincidence tolerance used by Build.
const DefaultTolerance = 1e-3

type pointKey struct {
	x, y int64
}

func keyFor(p Vec2, tol float64) pointKey {
	return pointKey{int64(math.Round(p.X / tol)), int64(math.Round(p.Y / tol))}
}

// ResolveNeighbors links cells whose corner points coincide within tolerance,
// then links layer neighbors and parent/child relations. It only ever sets
// links, so running it again on the same grid changes nothing.
func (g *Grid) ResolveNeighbors(tolerance float64) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	for _, t := range g.Tiers() {
		for _, l := range g.Layers(t) {
			g.resolvePlane(g.CellsAt(t, l), tolerance)
		}
		g.resolveLayers(t)
	}
	g.resolveHierarchy()
}

// resolvePlane links same tier/layer cells that share at least two corners.
func (g *Grid) resolvePlane(cells []*Cell, tol float64) {
	byCorner := make(map[pointKey][]*Cell, len(cells)*3)
	for _, c := range cells {
		for _, p := range c.Corners() {
			k := keyFor(p, tol)
			byCorner[k] = append(byCorner[k], c)
		}
	}

	for _, c := range cells {
		shared := make(map[*Cell]int)
		for _, p := range c.Corners() {
			for _, other := range byCorner[keyFor(p, tol)] {
				if other != c {
					shared[other]++
				}
			}
		}
		for other, n := range shared {
			if n < 2 {
				continue
			}
			side := SideFromDelta(other.Center.Planar().Sub(c.Center.Planar()))
			c.Neighbors[side] = other
			other.Neighbors[OppositeSide(side)] = c
		}
	}
}

// resolveLayers links vertically stacked cells of one tier.
func (g *Grid) resolveLayers(tier int) {
	for _, l := range g.Layers(tier) {
		for _, c := range g.CellsAt(tier, l) {
			if up, ok := g.Lookup(tier, l+1, c.Address.Coord); ok {
				c.Above = up
				up.Below = c
			}
		}
	}
}

// resolveHierarchy fills child slots from ChildCoords. Corner-shared
// children keep the first parent that claims them, in address order.
func (g *Grid) resolveHierarchy() {
	for _, t := range g.Tiers() {
		if _, ok := g.cells[t-1]; !ok {
			continue
		}
		for _, parent := range g.TierCells(t) {
			for i, cc := range ChildCoords(parent.Address.Coord) {
				child, ok := g.Lookup(t-1, parent.Address.Layer, cc)
				if !ok {
					continue
				}
				parent.Children[i] = child
				if child.Parent == nil {
					child.Parent = parent
				}
			}
		}
	}
}

// ChildList returns the non-nil children in slot order.
func (c *Cell) ChildList() []*Cell {
	out := make([]*Cell, 0, ChildCount)
	for _, ch := range c.Children {
		if ch != nil {
			out = append(out, ch)
		}
	}
	return out
}

// OwnChildren returns the children whose parent link points back at c.
func (c *Cell) OwnChildren() []*Cell {
	out := make([]*Cell, 0, ChildCount)
	for _, ch := range c.Children {
		if ch != nil && ch.Parent == c {
			out = append(out, ch)
		}
	}
	return out
}
