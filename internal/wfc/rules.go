package wfc

import (
	"fmt"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/socket"
)

// layerState derives the vertical position of a cell from its live layer
// neighbors.
func layerState(cell *hexgrid.Cell) catalog.LayerState {
	below := cell.Below != nil && cell.Below.Status != hexgrid.Removed
	above := cell.Above != nil && cell.Above.Status != hexgrid.Removed
	return catalog.StateOf(below, above)
}

// wallAllowed applies the edge wall policy.
func (c *Collapser) wallAllowed(cell *hexgrid.Cell, t *catalog.TileDefinition) bool {
	switch c.settings.EdgeWallPolicy {
	case WallRequired:
		return !cell.IsGridEdge || t.ExteriorWall
	case WallExclusive:
		return cell.IsGridEdge == t.ExteriorWall
	default:
		return true
	}
}

// placedOf returns the oriented tile held by an assigned cell.
func (c *Collapser) placedOf(cell *hexgrid.Cell) (socket.Placed, *catalog.TileDefinition, error) {
	t, ok := c.cat.Tile(cell.TileID)
	if !ok {
		return socket.Placed{}, nil, fmt.Errorf("%w: %s holds %q", catalog.ErrUnknownTile, cell.Address, cell.TileID)
	}
	rs, err := c.cat.Rotations(t.ID)
	if err != nil {
		return socket.Placed{}, nil, err
	}
	return socket.Placed{ID: t.ID, Rotations: rs, Rotation: cell.Rotation, Inverted: cell.Inverted}, t, nil
}

// fits checks one orientation against every face of the cell. Faces without
// a neighbor must accept the edge socket; open or ignored neighbors impose
// nothing unless plan holds a tile for them. plan carries the cells of a
// cluster layout that are chosen but not placed yet.
func (c *Collapser) fits(cell *hexgrid.Cell, states [hexgrid.FaceCount]hexgrid.NeighborState, cand Candidate, rs *socket.RotationSet, plan map[*hexgrid.Cell]Candidate) (bool, error) {
	in := socket.Placed{ID: cand.Tile.ID, Rotations: rs, Rotation: cand.Rotation, Inverted: cand.Inverted}
	profile := in.Profile()

	for f, st := range states {
		switch st.Kind {
		case hexgrid.NeighborEdge:
			if !socket.EdgeCompatible(c.dir, profile[f]) {
				return false, nil
			}
		case hexgrid.NeighborUnassigned:
			pc, ok := plan[st.Cell]
			if !ok {
				continue
			}
			prs, err := c.cat.Rotations(pc.Tile.ID)
			if err != nil {
				return false, err
			}
			ex := socket.Placed{ID: pc.Tile.ID, Rotations: prs, Rotation: pc.Rotation, Inverted: pc.Inverted}
			if !c.meets(in, cand, f, ex, pc.Tile) {
				return false, nil
			}
		case hexgrid.NeighborAssigned:
			ex, exTile, err := c.placedOf(st.Cell)
			if err != nil {
				return false, err
			}
			if !c.meets(in, cand, f, ex, exTile) {
				return false, nil
			}
		}
	}
	return true, nil
}

func (c *Collapser) meets(in socket.Placed, cand Candidate, f int, ex socket.Placed, exTile *catalog.TileDefinition) bool {
	return c.dir.Meets(in, f, ex) && c.cornersMeet(cand, f, exTile, ex)
}

// cornersMeet checks the corner bundles across a vertical face when both
// tiles carry one.
func (c *Collapser) cornersMeet(cand Candidate, f int, exTile *catalog.TileDefinition, ex socket.Placed) bool {
	if f < hexgrid.SideCount || cand.Tile.Corners == nil || exTile.Corners == nil {
		return true
	}
	mine := cand.Tile.Corners.Orient(cand.Rotation, cand.Inverted)
	theirs := exTile.Corners.Orient(ex.Rotation, ex.Inverted)
	if f == hexgrid.FaceTop {
		return socket.VerticalCompatible(c.dir, mine, theirs)
	}
	return socket.VerticalCompatible(c.dir, theirs, mine)
}

func (c *Collapser) rotations() []int {
	if !c.settings.AllowRotation {
		return []int{0}
	}
	return []int{0, 1, 2, 3, 4, 5}
}

func (c *Collapser) inversions() []bool {
	if !c.settings.AllowInversion {
		return []bool{false}
	}
	return []bool{false, true}
}

// Candidates lists every orientation of the subset's tiles that fits the
// cell right now, in catalog order.
func (c *Collapser) Candidates(cell *hexgrid.Cell, subset catalog.Subset) ([]Candidate, error) {
	states := cell.NeighborStates()
	tiles := c.cat.Candidates(cell.Address.Tier, layerState(cell), subset)

	var out []Candidate
	for _, t := range tiles {
		if !c.wallAllowed(cell, t) {
			continue
		}
		rs, err := c.cat.Rotations(t.ID)
		if err != nil {
			return nil, err
		}
		for _, inv := range c.inversions() {
			for _, rot := range c.rotations() {
				cand := Candidate{Tile: t, Rotation: rot, Inverted: inv}
				ok, err := c.fits(cell, states, cand, rs, nil)
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, cand)
				}
			}
		}
	}
	return out, nil
}

// subsetChain returns the subsets tried for a cell, most specific first.
func (c *Collapser) subsetChain(cell *hexgrid.Cell) []catalog.Subset {
	if cell.IsEntry {
		return []catalog.Subset{catalog.SubsetEntrance}
	}
	if !cell.IsEdge {
		return []catalog.Subset{catalog.SubsetGeneral}
	}
	var chain []catalog.Subset
	if cell.Above == nil || cell.Above.Status == hexgrid.Removed {
		chain = append(chain, catalog.SubsetTop)
	}
	chain = append(chain, catalog.SubsetEdge)
	// Catalogs without edgeable tiles let any tile try the edge.
	if len(c.cat.Candidates(cell.Address.Tier, layerState(cell), catalog.SubsetEdge)) == 0 {
		chain = append(chain, catalog.SubsetGeneral)
	}
	return chain
}

// NeighborSocketsOnSides reports, for every face, the facing neighbor face
// in world orientation, or the edge or unassigned sentinel.
func (c *Collapser) NeighborSocketsOnSides(cell *hexgrid.Cell) ([hexgrid.FaceCount]NeighborSocket, error) {
	var out [hexgrid.FaceCount]NeighborSocket
	for f, st := range cell.NeighborStates() {
		switch st.Kind {
		case hexgrid.NeighborEdge:
			out[f] = NeighborSocket{Kind: st.Kind, Face: socket.Scalar(socket.EdgeID)}
		case hexgrid.NeighborUnassigned:
			out[f] = NeighborSocket{Kind: st.Kind, Face: socket.Scalar(socket.UnassignedID), Cell: st.Cell}
		default:
			ex, _, err := c.placedOf(st.Cell)
			if err != nil {
				return out, err
			}
			out[f] = NeighborSocket{Kind: st.Kind, Face: ex.Profile()[socket.OppositeFace(f)], Cell: st.Cell}
		}
	}
	return out, nil
}
