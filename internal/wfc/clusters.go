package wfc

import (
	"context"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/cluster"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/socket"
)

// clusterLayout is one cluster tile at one rotation, resolved to the member
// cells it would fill.
type clusterLayout struct {
	meta     *catalog.ClusterTile
	rotation int
	cells    []*hexgrid.Cell
	cands    []Candidate
}

// clusterPhase tries to fill whole clusters with multi-cell tiles. A
// cluster that overlaps assigned cells or fits no tile is recorded and left
// to the per-cell phases.
func (c *Collapser) clusterPhase(ctx context.Context) error {
	if c.settings.ClusterChance <= 0 || len(c.cat.Clusters()) == 0 {
		return nil
	}
	var clusters []*cluster.Cluster
	if c.settings.Clusters != nil {
		// Preformed clusters are shared across runs: keep the caller's order
		// and forget what the previous run placed.
		clusters = append(clusters, c.settings.Clusters...)
		for _, cl := range clusters {
			cl.Tile, cl.Rotation, cl.Ignored = "", 0, false
		}
	} else {
		clusters = cluster.Form(c.scope, cluster.Options{MinSize: c.settings.ClusterMinSize})
	}
	cluster.SortBySize(clusters)

	for _, cl := range clusters {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.rng.Float64() >= c.settings.ClusterChance {
			continue
		}
		if err := c.collapseCluster(cl); err != nil {
			cl.Ignored = true
			ce := &ClusterError{Cluster: cl.ID, Parent: cl.Parent.Address, Err: err}
			c.result.ClusterFailures = append(c.result.ClusterFailures, ce)
			c.log.Debug("cluster skipped", "cluster", cl.ID, "error", err)
		}
	}
	return nil
}

func (c *Collapser) collapseCluster(cl *cluster.Cluster) error {
	for _, m := range cl.Members {
		if !m.IsOpen() || !c.inScope[m] {
			return ErrClusterAssignmentConflict
		}
	}

	var layouts []clusterLayout
	for _, meta := range c.cat.ClustersFor(c.settings.Tier, cl.Size()) {
		for _, rot := range c.rotations() {
			l, ok, err := c.layout(cl, meta, rot)
			if err != nil {
				return err
			}
			if ok {
				layouts = append(layouts, l)
			}
		}
	}
	if len(layouts) == 0 {
		return ErrNoClusterTile
	}

	chosen := c.pickLayout(layouts)
	for i, cell := range chosen.cells {
		if err := c.place(cell, chosen.cands[i], chosen.meta.ID); err != nil {
			return err
		}
	}
	cl.Tile = chosen.meta.ID
	cl.Rotation = chosen.rotation
	c.result.ClustersPlaced++
	return nil
}

// layout maps the cluster tile onto the cluster at rotation r: the centre
// takes the parent, ring slot k the member on side (k+r) mod 6. The layout
// must fit inside the cluster and each covered member must fit its
// neighbors, including the members laid out before it. Members the tile
// does not cover are left open.
func (c *Collapser) layout(cl *cluster.Cluster, meta *catalog.ClusterTile, r int) (clusterLayout, bool, error) {
	if meta.CellCount() > cl.Size() {
		return clusterLayout{}, false, nil
	}
	out := clusterLayout{meta: meta, rotation: r}
	plan := make(map[*hexgrid.Cell]Candidate, meta.CellCount())

	add := func(cell *hexgrid.Cell, tileID string, rot int) (bool, error) {
		t, ok := c.cat.Tile(tileID)
		if !ok {
			return false, catalog.ErrUnknownTile
		}
		if t.ExcludedOn(layerState(cell)) || !c.wallAllowed(cell, t) {
			return false, nil
		}
		rs, err := c.cat.Rotations(t.ID)
		if err != nil {
			return false, err
		}
		cand := Candidate{Tile: t, Rotation: rot % socket.SideCount}
		ok, err = c.fits(cell, cell.NeighborStates(), cand, rs, plan)
		if err != nil || !ok {
			return false, err
		}
		plan[cell] = cand
		out.cells = append(out.cells, cell)
		out.cands = append(out.cands, cand)
		return true, nil
	}

	if ok, err := add(cl.Parent, meta.Center, r); !ok || err != nil {
		return out, false, err
	}
	for k, id := range meta.Ring {
		if id == "" {
			continue
		}
		side := (k + r) % socket.SideCount
		member := cl.MemberOnSide(side)
		if member == nil {
			return out, false, nil
		}
		if ok, err := add(member, id, meta.RingRotation[k]+r); !ok || err != nil {
			return out, false, err
		}
	}
	return out, true, nil
}

func (c *Collapser) pickLayout(layouts []clusterLayout) clusterLayout {
	total := 0.0
	for _, l := range layouts {
		total += l.meta.EffectiveWeight()
	}
	r := c.rng.Float64() * total
	for _, l := range layouts {
		r -= l.meta.EffectiveWeight()
		if r < 0 {
			return l
		}
	}
	return layouts[len(layouts)-1]
}
