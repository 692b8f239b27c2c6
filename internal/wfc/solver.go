package wfc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/logger"
	"github.com/lawnchairsociety/hexwfc/internal/socket"
)

// Collapser assigns tiles to the cells of one tier greedily. It never
// backtracks: a cell that cannot be filled is either fatal or ignored.
type Collapser struct {
	grid     *hexgrid.Grid
	cat      *catalog.Catalog
	dir      *socket.Directory
	settings Settings
	rng      *rand.Rand
	log      *slog.Logger

	scope   []*hexgrid.Cell
	inScope map[*hexgrid.Cell]bool
	// pending holds the latest failure of each deferred cell.
	pending map[*hexgrid.Cell]*UnsatisfiableCellError
	result  *Result
}

// NewCollapser validates the inputs and prepares a solve over every
// non-removed cell of settings.Tier.
func NewCollapser(grid *hexgrid.Grid, cat *catalog.Catalog, dir *socket.Directory, settings Settings) (*Collapser, error) {
	if grid == nil || cat == nil || dir == nil {
		return nil, fmt.Errorf("%w: grid, catalog and directory are required", ErrInvalidSettings)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	if err := dir.CheckCatalog(cat.MaxSocketID(), cat.Fingerprint(), cat.Len()); err != nil {
		return nil, err
	}

	var scope []*hexgrid.Cell
	for _, cell := range grid.TierCells(settings.Tier) {
		if cell.Status != hexgrid.Removed {
			scope = append(scope, cell)
		}
	}
	log := settings.Logger
	if log == nil {
		log = logger.Component("wfc")
	}
	return newCollapser(grid, cat, dir, settings, scope, log), nil
}

func newCollapser(grid *hexgrid.Grid, cat *catalog.Catalog, dir *socket.Directory, settings Settings, scope []*hexgrid.Cell, log *slog.Logger) *Collapser {
	hexgrid.SortCells(scope)
	in := make(map[*hexgrid.Cell]bool, len(scope))
	for _, cell := range scope {
		in[cell] = true
	}
	return &Collapser{
		grid:     grid,
		cat:      cat,
		dir:      dir,
		settings: settings,
		rng:      rand.New(rand.NewSource(settings.Seed)),
		log:      log,
		scope:    scope,
		inScope:  in,
		pending:  make(map[*hexgrid.Cell]*UnsatisfiableCellError),
		result:   &Result{Seed: settings.Seed, Tier: settings.Tier},
	}
}

// ExecuteSolve runs one solve with a background context.
func ExecuteSolve(grid *hexgrid.Grid, cat *catalog.Catalog, dir *socket.Directory, settings Settings) (*Result, error) {
	return ExecuteSolveContext(context.Background(), grid, cat, dir, settings)
}

// ExecuteSolveContext waits for the configured start delay, then runs one
// solve. Cancelling ctx stops the solve between cells.
func ExecuteSolveContext(ctx context.Context, grid *hexgrid.Grid, cat *catalog.Catalog, dir *socket.Directory, settings Settings) (*Result, error) {
	if settings.StartDelay > 0 {
		timer := time.NewTimer(settings.StartDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	c, err := NewCollapser(grid, cat, dir, settings)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx)
}

// Run performs the solve: entry cells, clusters, edges, remaining cells,
// then nested solves of expanding tiles. The partial result is returned
// together with any error.
func (c *Collapser) Run(ctx context.Context) (*Result, error) {
	res := c.result
	fail := func(err error) (*Result, error) {
		res.Err = err
		c.log.Warn("solve aborted", "tier", c.settings.Tier, "placed", len(res.Placements), "error", err)
		return res, err
	}

	c.log.Info("solve started", "tier", c.settings.Tier, "cells", len(c.scope), "seed", c.settings.Seed,
		"order", c.settings.CollapseOrder.String())

	if err := c.entryPhase(ctx); err != nil {
		return fail(err)
	}
	if err := c.clusterPhase(ctx); err != nil {
		return fail(err)
	}

	layers := c.layers()
	switch c.settings.CollapseOrder {
	case LayerByLayer:
		for _, l := range layers {
			if err := c.edgePhase(ctx, l); err != nil {
				return fail(err)
			}
			if err := c.remainingPhase(ctx, []int{l}); err != nil {
				return fail(err)
			}
		}
	default:
		for _, l := range layers {
			if err := c.edgePhase(ctx, l); err != nil {
				return fail(err)
			}
		}
		if err := c.remainingPhase(ctx, layers); err != nil {
			return fail(err)
		}
	}

	if err := c.expand(ctx); err != nil {
		return fail(err)
	}

	c.log.Info("solve finished", "tier", c.settings.Tier, "placed", len(res.Placements),
		"ignored", len(res.Ignored), "clusters", res.ClustersPlaced, "attempts", res.Attempts)
	return res, nil
}

func (c *Collapser) layers() []int {
	seen := make(map[int]bool)
	var out []int
	for _, cell := range c.scope {
		if !seen[cell.Address.Layer] {
			seen[cell.Address.Layer] = true
			out = append(out, cell.Address.Layer)
		}
	}
	sort.Ints(out)
	return out
}

func (c *Collapser) open(pred func(*hexgrid.Cell) bool) []*hexgrid.Cell {
	var out []*hexgrid.Cell
	for _, cell := range c.scope {
		if cell.IsOpen() && pred(cell) {
			out = append(out, cell)
		}
	}
	return out
}

func (c *Collapser) entryPhase(ctx context.Context) error {
	for _, cell := range c.open(func(cell *hexgrid.Cell) bool { return cell.IsEntry }) {
		if err := c.step(ctx, cell); err != nil {
			return err
		}
	}
	return nil
}

// edgePhase collapses the open edge and connector cells of a layer.
// Connectors go first, then cells with the fewest side and grid-edge
// neighbors. Being a connector changes the order only; the subset chain
// still follows IsEdge.
func (c *Collapser) edgePhase(ctx context.Context, layer int) error {
	cells := c.open(func(cell *hexgrid.Cell) bool {
		return (cell.IsEdge || cell.IsConnector) && cell.Address.Layer == layer
	})
	sort.SliceStable(cells, func(i, j int) bool {
		a, b := cells[i], cells[j]
		ac, bc := a.IsConnector, b.IsConnector
		if ac != bc {
			return ac
		}
		an := a.SideNeighborCount() + a.EdgeSideNeighborCount()
		bn := b.SideNeighborCount() + b.EdgeSideNeighborCount()
		if an != bn {
			return an < bn
		}
		return a.Address.Less(b.Address)
	})
	for _, cell := range cells {
		if !cell.IsOpen() {
			continue
		}
		if err := c.step(ctx, cell); err != nil {
			return err
		}
	}
	return nil
}

// remainingPhase repeatedly collapses the most constrained open cell of each
// layer. Cells that fail are retried on the next pass; whatever is still
// open after the last pass is marked Ignored.
func (c *Collapser) remainingPhase(ctx context.Context, layers []int) error {
	inLayers := make(map[int]bool, len(layers))
	for _, l := range layers {
		inLayers[l] = true
	}

	var failures map[*hexgrid.Cell]*UnsatisfiableCellError
	for attempt := 1; attempt <= c.settings.MaxAttempts; attempt++ {
		if attempt > c.result.Attempts {
			c.result.Attempts = attempt
		}
		placed := 0
		failures = make(map[*hexgrid.Cell]*UnsatisfiableCellError)
		for _, l := range layers {
			tried := make(map[*hexgrid.Cell]bool)
			for {
				cell := c.mostConstrained(l, tried)
				if cell == nil {
					break
				}
				if err := c.step(ctx, cell); err != nil {
					return err
				}
				if cell.IsOpen() {
					tried[cell] = true
					failures[cell] = c.pending[cell]
				} else {
					placed++
				}
			}
		}
		if len(failures) == 0 || placed == 0 {
			break
		}
	}

	for _, cell := range c.open(func(cell *hexgrid.Cell) bool { return inLayers[cell.Address.Layer] }) {
		cell.MarkIgnored()
		c.result.Ignored = append(c.result.Ignored, cell.Address)
		if f := failures[cell]; f != nil {
			c.result.Failures = append(c.result.Failures, f)
		}
		c.log.Warn("cell ignored", "address", cell.Address.String())
	}
	return nil
}

// mostConstrained picks the untried open cell of a layer with the most
// assigned neighbors, ties in address order.
func (c *Collapser) mostConstrained(layer int, tried map[*hexgrid.Cell]bool) *hexgrid.Cell {
	var best *hexgrid.Cell
	bestN := -1
	for _, cell := range c.scope {
		if cell.Address.Layer != layer || !cell.IsOpen() || tried[cell] {
			continue
		}
		if n := cell.AssignedNeighborCount(); n > bestN {
			best, bestN = cell, n
		}
	}
	return best
}

// step collapses one cell and, when enabled, its neighbors. An unsatisfiable
// cell is returned as an error only when failures are not ignored.
func (c *Collapser) step(ctx context.Context, cell *hexgrid.Cell) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.collapse(cell)
	if err == nil {
		delete(c.pending, cell)
		if c.settings.Propagation == PropagateNeighbors {
			return c.propagate(cell)
		}
		return nil
	}
	var unsat *UnsatisfiableCellError
	if !errors.As(err, &unsat) || !c.settings.IgnoreFailures {
		return err
	}
	c.pending[cell] = unsat
	c.log.Debug("cell deferred", "address", cell.Address.String(), "subset", unsat.Subset.String())
	return nil
}

// collapse walks the cell's subset chain and places a weighted pick from the
// first subset with any fitting candidate.
func (c *Collapser) collapse(cell *hexgrid.Cell) error {
	chain := c.subsetChain(cell)
	for _, subset := range chain {
		cands, err := c.Candidates(cell, subset)
		if err != nil {
			return err
		}
		if len(cands) == 0 {
			continue
		}
		return c.place(cell, c.pick(cands), "")
	}
	nbrs, err := c.NeighborSocketsOnSides(cell)
	if err != nil {
		return err
	}
	return &UnsatisfiableCellError{Address: cell.Address, Subset: chain[len(chain)-1], Neighbors: nbrs}
}

// pick draws a candidate proportionally to its tile weight.
func (c *Collapser) pick(cands []Candidate) Candidate {
	total := 0.0
	for _, cand := range cands {
		total += cand.Tile.EffectiveWeight()
	}
	r := c.rng.Float64() * total
	for _, cand := range cands {
		r -= cand.Tile.EffectiveWeight()
		if r < 0 {
			return cand
		}
	}
	return cands[len(cands)-1]
}

func (c *Collapser) place(cell *hexgrid.Cell, cand Candidate, clusterID string) error {
	if err := cell.Assign(cand.Tile.ID, cand.Rotation, cand.Inverted, false); err != nil {
		return err
	}
	c.result.Placements = append(c.result.Placements, Placement{
		Address:  cell.Address,
		TileID:   cand.Tile.ID,
		Rotation: cell.Rotation,
		Inverted: cand.Inverted,
		Cluster:  clusterID,
	})
	if c.settings.Sink != nil {
		c.settings.Sink.OnCellResolved(cell.Address, cand.Tile.ID, cell.Rotation)
	}
	c.log.Debug("cell resolved", "address", cell.Address.String(), "tile", cand.Tile.ID,
		"rotation", cell.Rotation, "inverted", cand.Inverted)
	return nil
}

// propagate greedily fills the open side neighbors of a freshly placed cell,
// edges first, then the neighbors with the fewest candidates. Neighbors
// that cannot be filled are left for the later passes.
func (c *Collapser) propagate(from *hexgrid.Cell) error {
	type scored struct {
		cell  *hexgrid.Cell
		count int
	}
	var next []scored
	for _, nb := range from.Neighbors {
		if nb == nil || !nb.IsOpen() || !c.inScope[nb] {
			continue
		}
		n, err := c.candidateCount(nb)
		if err != nil {
			return err
		}
		next = append(next, scored{nb, n})
	}
	sort.SliceStable(next, func(i, j int) bool {
		a, b := next[i], next[j]
		if a.cell.IsEdge != b.cell.IsEdge {
			return a.cell.IsEdge
		}
		if a.count != b.count {
			return a.count < b.count
		}
		return a.cell.Address.Less(b.cell.Address)
	})

	for _, s := range next {
		if !s.cell.IsOpen() {
			continue
		}
		err := c.collapse(s.cell)
		var unsat *UnsatisfiableCellError
		switch {
		case err == nil:
			delete(c.pending, s.cell)
			c.result.PropagatedPlaced++
		case errors.As(err, &unsat):
		default:
			return err
		}
	}
	return nil
}

func (c *Collapser) candidateCount(cell *hexgrid.Cell) (int, error) {
	for _, subset := range c.subsetChain(cell) {
		cands, err := c.Candidates(cell, subset)
		if err != nil {
			return 0, err
		}
		if len(cands) > 0 {
			return len(cands), nil
		}
	}
	return 0, nil
}

// expand runs a nested solve over the children of every placed tile that
// expands, one tier down.
func (c *Collapser) expand(ctx context.Context) error {
	if c.settings.Tier == 0 {
		return nil
	}
	placements := append([]Placement(nil), c.result.Placements...)
	for _, p := range placements {
		t, ok := c.cat.Tile(p.TileID)
		if !ok || !t.Expands {
			continue
		}
		cell, ok := c.grid.Cell(p.Address)
		if !ok {
			continue
		}
		var children []*hexgrid.Cell
		for _, ch := range cell.OwnChildren() {
			if ch.Status != hexgrid.Removed {
				children = append(children, ch)
			}
		}
		if len(children) == 0 {
			continue
		}

		sub := c.settings
		sub.Tier = c.settings.Tier - 1
		sub.Seed = childSeed(c.settings.Seed, cell.ID)
		sub.Clusters = nil
		addr := cell.Address
		child := newCollapser(c.grid, c.cat, c.dir, sub, children, c.log.With("parent", addr.String()))
		child.result.Parent = &addr

		r, err := child.Run(ctx)
		c.result.Children = append(c.result.Children, r)
		if err != nil {
			return fmt.Errorf("expand %s: %w", addr, err)
		}
	}
	return nil
}

func childSeed(seed int64, cellID int) int64 {
	return seed ^ int64(cellID+1)*1_000_003
}
