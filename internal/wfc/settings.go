package wfc

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lawnchairsociety/hexwfc/internal/cluster"
)

// CollapseOrder selects how the edge and remaining phases walk the layers.
type CollapseOrder int

const (
	// EdgesFirst collapses the edges of every layer before any interior.
	EdgesFirst CollapseOrder = iota
	// LayerByLayer finishes one layer, edges then interior, before the next.
	LayerByLayer
)

// String returns the string representation of a CollapseOrder
func (o CollapseOrder) String() string {
	switch o {
	case EdgesFirst:
		return "edges-first"
	case LayerByLayer:
		return "layer-by-layer"
	default:
		return "unknown"
	}
}

// ParseCollapseOrder converts a string to a CollapseOrder
func ParseCollapseOrder(s string) (CollapseOrder, error) {
	switch s {
	case "", "edges-first":
		return EdgesFirst, nil
	case "layer-by-layer":
		return LayerByLayer, nil
	default:
		return EdgesFirst, fmt.Errorf("%w: collapse order %q", ErrInvalidSettings, s)
	}
}

// EdgeWallPolicy controls where exterior wall tiles go.
type EdgeWallPolicy int

const (
	// WallOptional places exterior walls anywhere their sockets fit.
	WallOptional EdgeWallPolicy = iota
	// WallRequired forces grid-edge cells to take exterior wall tiles.
	WallRequired
	// WallExclusive also keeps exterior wall tiles off interior cells.
	WallExclusive
)

// String returns the string representation of an EdgeWallPolicy
func (p EdgeWallPolicy) String() string {
	switch p {
	case WallOptional:
		return "optional"
	case WallRequired:
		return "required"
	case WallExclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// ParseEdgeWallPolicy converts a string to an EdgeWallPolicy
func ParseEdgeWallPolicy(s string) (EdgeWallPolicy, error) {
	switch s {
	case "", "optional":
		return WallOptional, nil
	case "required":
		return WallRequired, nil
	case "exclusive":
		return WallExclusive, nil
	default:
		return WallOptional, fmt.Errorf("%w: edge wall policy %q", ErrInvalidSettings, s)
	}
}

// Propagation selects what happens right after a cell is assigned.
type Propagation int

const (
	PropagateNone Propagation = iota
	// PropagateNeighbors greedily assigns the open side neighbors of every
	// newly assigned cell, one level deep.
	PropagateNeighbors
)

// String returns the string representation of a Propagation
func (p Propagation) String() string {
	switch p {
	case PropagateNone:
		return "none"
	case PropagateNeighbors:
		return "neighbors"
	default:
		return "unknown"
	}
}

// ParsePropagation converts a string to a Propagation
func ParsePropagation(s string) (Propagation, error) {
	switch s {
	case "", "none":
		return PropagateNone, nil
	case "neighbors":
		return PropagateNeighbors, nil
	default:
		return PropagateNone, fmt.Errorf("%w: propagation %q", ErrInvalidSettings, s)
	}
}

// Settings configures one solve.
type Settings struct {
	CollapseOrder  CollapseOrder
	EdgeWallPolicy EdgeWallPolicy
	AllowRotation  bool
	AllowInversion bool
	// MaxAttempts bounds the passes over remaining cells.
	MaxAttempts int
	// IgnoreFailures marks unsatisfiable cells Ignored instead of aborting.
	IgnoreFailures bool
	// ClusterChance is the probability that a cluster is tried as a whole.
	ClusterChance  float64
	ClusterMinSize int
	Propagation    Propagation
	Seed           int64
	StartDelay     time.Duration
	// Tier is the tier solved at the top level.
	Tier int

	// Clusters overrides cluster formation when non-nil.
	Clusters []*cluster.Cluster
	Sink     PlacementSink
	Logger   *slog.Logger
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		CollapseOrder:  EdgesFirst,
		EdgeWallPolicy: WallOptional,
		AllowRotation:  true,
		MaxAttempts:    3,
		IgnoreFailures: true,
		ClusterChance:  0,
		ClusterMinSize: 3,
		Propagation:    PropagateNone,
		Seed:           1,
	}
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	if s.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts %d", ErrInvalidSettings, s.MaxAttempts)
	}
	if s.ClusterChance < 0 || s.ClusterChance > 1 {
		return fmt.Errorf("%w: cluster chance %v", ErrInvalidSettings, s.ClusterChance)
	}
	if s.Tier < 0 {
		return fmt.Errorf("%w: tier %d", ErrInvalidSettings, s.Tier)
	}
	if s.StartDelay < 0 {
		return fmt.Errorf("%w: start delay %v", ErrInvalidSettings, s.StartDelay)
	}
	return nil
}
