package wfc

import (
	"context"
	"errors"
	"fmt"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/socket"
)

// Engine retries whole solves with shifted seeds. Every run starts from a
// reset grid, so runs never see each other's placements.
type Engine struct {
	// MaxRuns bounds the number of solves; values below 1 mean 1.
	MaxRuns int
	// RequireComplete also retries runs that finished with ignored cells.
	RequireComplete bool
	// OnRunStart, if set, is called before every run with its seed.
	OnRunStart func(run int, seed int64)
	// OnRun, if set, is called after every run.
	OnRun func(run int, res *Result, err error)
}

// NewEngine returns an engine with the given run budget.
func NewEngine(maxRuns int) *Engine {
	return &Engine{MaxRuns: maxRuns}
}

// RunSeed returns the seed used for a run.
func RunSeed(base int64, run int) int64 {
	return base + int64(run*1000)
}

// Run solves until a run succeeds or the budget is spent. Only
// unsatisfiable cells (and, with RequireComplete, ignored cells) cause a
// retry; any other error is returned right away.
func (e *Engine) Run(ctx context.Context, grid *hexgrid.Grid, cat *catalog.Catalog, dir *socket.Directory, settings Settings) (*Result, error) {
	runs := e.MaxRuns
	if runs < 1 {
		runs = 1
	}

	var last *Result
	var lastErr error
	for run := 0; run < runs; run++ {
		grid.Reset()
		s := settings
		s.Seed = RunSeed(settings.Seed, run)
		if e.OnRunStart != nil {
			e.OnRunStart(run, s.Seed)
		}

		res, err := ExecuteSolveContext(ctx, grid, cat, dir, s)
		if e.OnRun != nil {
			e.OnRun(run, res, err)
		}
		last, lastErr = res, err

		switch {
		case err == nil && (!e.RequireComplete || res.Success()):
			return res, nil
		case err == nil:
			lastErr = fmt.Errorf("%w: %d cells ignored", ErrUnsatisfiableCell, len(res.Ignored))
		case !errors.Is(err, ErrUnsatisfiableCell):
			return res, err
		}
	}

	if lastErr != nil {
		return last, fmt.Errorf("failed after %d attempts: %w", runs, lastErr)
	}
	return last, ErrNoSolution
}
