package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/store"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

// Config holds the settings of one hexsolve invocation. The logging block
// of the same file is read by logger.LoadConfig.
type Config struct {
	Solver  SolverConfig  `yaml:"solver"`
	Grid    GridConfig    `yaml:"grid"`
	Catalog CatalogConfig `yaml:"catalog"`
	Store   StoreConfig   `yaml:"store"`
	Stream  StreamConfig  `yaml:"stream"`
	Metrics MetricsConfig `yaml:"metrics"`

	// Listen is the HTTP address for the stream and metrics endpoints.
	Listen string `yaml:"listen"`
}

// SolverConfig maps onto wfc.Settings plus the retrying engine.
type SolverConfig struct {
	CollapseOrder  string  `yaml:"collapse_order"`
	EdgeWallPolicy string  `yaml:"edge_wall_policy"`
	AllowRotation  bool    `yaml:"allow_rotation"`
	AllowInversion bool    `yaml:"allow_inversion"`
	MaxAttempts    int     `yaml:"max_attempts"`
	IgnoreFailures bool    `yaml:"ignore_failures"`
	ClusterChance  float64 `yaml:"cluster_chance"`
	ClusterMinSize int     `yaml:"cluster_min_size"`
	Propagation    string  `yaml:"propagation"`
	Seed           int64   `yaml:"seed"`
	StartDelayMS   int     `yaml:"start_delay_ms"`
	Tier           int     `yaml:"tier"`

	// Runs is the number of whole solves the engine may try.
	Runs int `yaml:"runs"`

	// RequireComplete retries runs that left cells ignored.
	RequireComplete bool `yaml:"require_complete"`
}

// GridConfig describes the footprint to build.
type GridConfig struct {
	Radius      int     `yaml:"radius"`
	Layers      int     `yaml:"layers"`
	BaseSize    float64 `yaml:"base_size"`
	LayerHeight float64 `yaml:"layer_height"`

	// Tiers is the number of tiers; the footprint is built on the top one
	// and subdivided down to tier 0.
	Tiers int `yaml:"tiers"`

	// ScopeToParent classifies cells on a parent boundary as connectors.
	ScopeToParent bool `yaml:"scope_to_parent"`

	FootprintNoise NoiseConfig   `yaml:"footprint_noise"`
	Entries        []EntryConfig `yaml:"entries"`
}

// NoiseConfig enables the Perlin-shaped footprint.
type NoiseConfig struct {
	Enabled bool    `yaml:"enabled"`
	Seed    int64   `yaml:"seed"`
	Scale   float64 `yaml:"scale"`
	Cutoff  float64 `yaml:"cutoff"`
}

// EntryConfig marks one top-tier cell as an entrance.
type EntryConfig struct {
	Q     int `yaml:"q"`
	R     int `yaml:"r"`
	Layer int `yaml:"layer"`
}

// CatalogConfig lists the authored input files.
type CatalogConfig struct {
	Tiles     string `yaml:"tiles"`
	Sockets   string `yaml:"sockets"`
	Matrix    string `yaml:"matrix"`
	PairCache string `yaml:"pair_cache"`
}

// StoreConfig enables run persistence.
type StoreConfig struct {
	Enabled      bool `yaml:"enabled"`
	store.Config `yaml:",inline"`
}

// StreamConfig holds websocket streaming settings.
type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`

	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Buffer is the number of placements queued per client before the
	// client is dropped.
	Buffer int `yaml:"buffer"`

	WriteTimeoutMS int `yaml:"write_timeout_ms"`

	// MaxPerIP is the maximum concurrent viewers from a single IP address.
	// 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent viewers. 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns a Config with working defaults.
func DefaultConfig() *Config {
	s := wfc.DefaultSettings()
	return &Config{
		Solver: SolverConfig{
			CollapseOrder:  s.CollapseOrder.String(),
			EdgeWallPolicy: s.EdgeWallPolicy.String(),
			AllowRotation:  s.AllowRotation,
			AllowInversion: s.AllowInversion,
			MaxAttempts:    s.MaxAttempts,
			IgnoreFailures: s.IgnoreFailures,
			ClusterChance:  s.ClusterChance,
			ClusterMinSize: s.ClusterMinSize,
			Propagation:    s.Propagation.String(),
			Seed:           s.Seed,
			Runs:           5,
		},
		Grid: GridConfig{
			Radius:      3,
			Layers:      1,
			BaseSize:    1,
			LayerHeight: 1,
			Tiers:       1,
		},
		Catalog: CatalogConfig{
			Tiles: "data/tiles.yaml",
		},
		Store: StoreConfig{
			Enabled: true,
			Config:  store.DefaultConfig("data/hexsolve.db"),
		},
		Stream: StreamConfig{
			Path:           "/ws",
			AllowedOrigins: []string{}, // Same-origin only by default
			Buffer:         256,
			WriteTimeoutMS: 5000,
			MaxPerIP:       3,
			MaxTotal:       100,
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
		Listen: ":8090",
	}
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, returns default config.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Use defaults if file doesn't exist
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// ToSettings converts the solver block into validated solve settings.
func (c *SolverConfig) ToSettings() (wfc.Settings, error) {
	s := wfc.DefaultSettings()

	order, err := wfc.ParseCollapseOrder(c.CollapseOrder)
	if err != nil {
		return s, err
	}
	policy, err := wfc.ParseEdgeWallPolicy(c.EdgeWallPolicy)
	if err != nil {
		return s, err
	}
	prop, err := wfc.ParsePropagation(c.Propagation)
	if err != nil {
		return s, err
	}

	s.CollapseOrder = order
	s.EdgeWallPolicy = policy
	s.Propagation = prop
	s.AllowRotation = c.AllowRotation
	s.AllowInversion = c.AllowInversion
	s.MaxAttempts = c.MaxAttempts
	s.IgnoreFailures = c.IgnoreFailures
	s.ClusterChance = c.ClusterChance
	if c.ClusterMinSize > 0 {
		s.ClusterMinSize = c.ClusterMinSize
	}
	s.Seed = c.Seed
	s.StartDelay = time.Duration(c.StartDelayMS) * time.Millisecond
	s.Tier = c.Tier

	return s, s.Validate()
}

// Engine returns the retrying engine described by the solver block.
func (c *SolverConfig) Engine() *wfc.Engine {
	e := wfc.NewEngine(c.Runs)
	e.RequireComplete = c.RequireComplete
	return e
}

// TopTier returns the tier the footprint is built on.
func (g *GridConfig) TopTier() int {
	if g.Tiers < 1 {
		return 0
	}
	return g.Tiers - 1
}

// BuildGrid creates the footprint, subdivides it down to tier 0, resolves
// neighbors and marks the entry cells.
func (g *GridConfig) BuildGrid() (*hexgrid.Grid, error) {
	if g.Radius < 0 {
		return nil, fmt.Errorf("grid radius %d is negative", g.Radius)
	}
	top := g.TopTier()
	grid := hexgrid.NewGrid(g.BaseSize, g.LayerHeight)

	if g.FootprintNoise.Enabled {
		grid.NoiseFootprint(hexgrid.FootprintOptions{
			Radius:    g.Radius,
			Tier:      top,
			MaxLayers: g.Layers,
			Seed:      g.FootprintNoise.Seed,
			Scale:     g.FootprintNoise.Scale,
			Cutoff:    g.FootprintNoise.Cutoff,
		})
	} else {
		grid.NewHexagon(hexgrid.Axial{}, g.Radius, top, g.Layers)
	}
	grid.Subdivide(top, top)
	grid.Build(g.ScopeToParent)

	for _, e := range g.Entries {
		addr := hexgrid.Address{Coord: hexgrid.Axial{Q: e.Q, R: e.R}, Tier: top, Layer: e.Layer}
		if err := grid.MarkEntry(addr); err != nil {
			return nil, fmt.Errorf("entry %s: %w", addr, err)
		}
	}
	return grid, nil
}

// WriteTimeout returns the per-message websocket write deadline.
func (s *StreamConfig) WriteTimeout() time.Duration {
	if s.WriteTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.WriteTimeoutMS) * time.Millisecond
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (s *StreamConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(s.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range s.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means same-origin (e.g., non-browser client)
	}

	// Extract host from origin URL (e.g., "http://localhost:3000" -> "localhost:3000")
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
