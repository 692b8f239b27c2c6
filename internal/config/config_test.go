package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if len(cfg.Stream.AllowedOrigins) != 0 {
		t.Errorf("expected empty allowed origins by default, got %v", cfg.Stream.AllowedOrigins)
	}
	if cfg.Solver.Runs != 5 || cfg.Solver.MaxAttempts != 3 {
		t.Errorf("solver defaults = %+v", cfg.Solver)
	}
	if !cfg.Store.Enabled || cfg.Store.Driver != "sqlite" || cfg.Store.SQLitePath == "" {
		t.Errorf("store defaults = %+v", cfg.Store)
	}

	s, err := cfg.Solver.ToSettings()
	if err != nil {
		t.Fatalf("default solver block should convert: %v", err)
	}
	def := wfc.DefaultSettings()
	if s.CollapseOrder != def.CollapseOrder || s.EdgeWallPolicy != def.EdgeWallPolicy || s.Seed != def.Seed {
		t.Errorf("ToSettings() = %+v, want defaults %+v", s, def)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/hexsolve.yaml")
	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}
	if cfg == nil || cfg.Grid.Radius != 3 {
		t.Fatalf("expected default config for missing file, got %+v", cfg)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "hexsolve.yaml")

	content := `
solver:
  collapse_order: layer-by-layer
  edge_wall_policy: exclusive
  allow_inversion: true
  propagation: neighbors
  seed: 99
  start_delay_ms: 250
  cluster_chance: 0.5
grid:
  radius: 2
  layers: 3
  tiers: 2
  entries:
    - {q: 2, r: 0, layer: 0}
store:
  driver: postgres
  postgres:
    host: db.internal
    port: 5433
stream:
  enabled: true
  allowed_origins:
    - "https://example.com"
listen: ":9000"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Grid.Radius != 2 || cfg.Grid.Layers != 3 || cfg.Grid.Tiers != 2 || len(cfg.Grid.Entries) != 1 {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	// Keys the file leaves out keep their defaults.
	if cfg.Grid.BaseSize != 1 || cfg.Solver.Runs != 5 {
		t.Errorf("defaults lost: base_size=%v runs=%d", cfg.Grid.BaseSize, cfg.Solver.Runs)
	}
	if cfg.Store.Driver != "postgres" || cfg.Store.Postgres.Host != "db.internal" || cfg.Store.Postgres.Port != 5433 {
		t.Errorf("store = %+v", cfg.Store)
	}
	if !cfg.Stream.Enabled || cfg.Listen != ":9000" {
		t.Errorf("stream = %+v listen = %q", cfg.Stream, cfg.Listen)
	}

	s, err := cfg.Solver.ToSettings()
	if err != nil {
		t.Fatalf("ToSettings: %v", err)
	}
	if s.CollapseOrder != wfc.LayerByLayer || s.EdgeWallPolicy != wfc.WallExclusive || s.Propagation != wfc.PropagateNeighbors {
		t.Errorf("enums = %v %v %v", s.CollapseOrder, s.EdgeWallPolicy, s.Propagation)
	}
	if !s.AllowInversion || s.Seed != 99 || s.StartDelay != 250*time.Millisecond || s.ClusterChance != 0.5 {
		t.Errorf("settings = %+v", s)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("grid: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(configPath)
	if err == nil {
		t.Error("expected parse error")
	}
	if cfg == nil || cfg.Grid.Radius != 3 {
		t.Errorf("expected defaults alongside the error, got %+v", cfg)
	}
}

func TestToSettingsRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SolverConfig)
	}{
		{"collapse order", func(s *SolverConfig) { s.CollapseOrder = "spiral" }},
		{"wall policy", func(s *SolverConfig) { s.EdgeWallPolicy = "sometimes" }},
		{"propagation", func(s *SolverConfig) { s.Propagation = "flood" }},
		{"attempts", func(s *SolverConfig) { s.MaxAttempts = 0 }},
		{"chance", func(s *SolverConfig) { s.ClusterChance = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := DefaultConfig().Solver
			tt.modify(&sc)
			if _, err := sc.ToSettings(); !errors.Is(err, wfc.ErrInvalidSettings) {
				t.Errorf("err = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestSolverEngine(t *testing.T) {
	sc := DefaultConfig().Solver
	sc.Runs = 7
	sc.RequireComplete = true
	e := sc.Engine()
	if e.MaxRuns != 7 || !e.RequireComplete {
		t.Errorf("Engine() = %+v", e)
	}
}

func TestBuildGrid(t *testing.T) {
	gc := GridConfig{Radius: 1, Layers: 2, BaseSize: 1, LayerHeight: 1, Tiers: 1,
		Entries: []EntryConfig{{Q: 1, R: 0, Layer: 0}}}

	g, err := gc.BuildGrid()
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	if g.Len() != 14 {
		t.Errorf("cells = %d, want 14", g.Len())
	}
	entry, ok := g.Lookup(0, 0, hexgrid.Axial{Q: 1})
	if !ok || !entry.IsEntry {
		t.Error("entry cell not marked")
	}
	centre, _ := g.Lookup(0, 0, hexgrid.Axial{})
	if centre.SideNeighborCount() != 6 {
		t.Errorf("centre side neighbors = %d, want 6", centre.SideNeighborCount())
	}
}

func TestBuildGridSubdivides(t *testing.T) {
	gc := GridConfig{Radius: 0, Layers: 1, BaseSize: 1, LayerHeight: 1, Tiers: 2}
	g, err := gc.BuildGrid()
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	if got := len(g.TierCells(1)); got != 1 {
		t.Errorf("tier 1 cells = %d, want 1", got)
	}
	if got := len(g.TierCells(0)); got != hexgrid.ChildCount {
		t.Errorf("tier 0 cells = %d, want %d", got, hexgrid.ChildCount)
	}
}

func TestBuildGridErrors(t *testing.T) {
	if _, err := (&GridConfig{Radius: -1}).BuildGrid(); err == nil {
		t.Error("negative radius should fail")
	}
	gc := GridConfig{Radius: 1, Layers: 1, Tiers: 1, Entries: []EntryConfig{{Q: 5}}}
	if _, err := gc.BuildGrid(); !errors.Is(err, hexgrid.ErrUnknownCell) {
		t.Errorf("err = %v, want ErrUnknownCell", err)
	}
}

func TestStreamWriteTimeout(t *testing.T) {
	if got := (&StreamConfig{}).WriteTimeout(); got != 5*time.Second {
		t.Errorf("zero WriteTimeout = %v", got)
	}
	if got := (&StreamConfig{WriteTimeoutMS: 200}).WriteTimeout(); got != 200*time.Millisecond {
		t.Errorf("WriteTimeout = %v", got)
	}
}

func TestIsOriginAllowed_EmptyList_SameOrigin(t *testing.T) {
	cfg := StreamConfig{AllowedOrigins: []string{}}

	if !cfg.IsOriginAllowed("", "localhost:4000") {
		t.Error("expected empty origin to be allowed (same-origin)")
	}
	if !cfg.IsOriginAllowed("http://localhost:4000", "localhost:4000") {
		t.Error("expected matching origin to be allowed (same-origin)")
	}
	if cfg.IsOriginAllowed("http://evil.com", "localhost:4000") {
		t.Error("expected different origin to be rejected (same-origin policy)")
	}
}

func TestIsOriginAllowed_List(t *testing.T) {
	tests := []struct {
		allowed []string
		origin  string
		want    bool
	}{
		{[]string{"*"}, "http://anything.com", true},
		{[]string{"*"}, "", true},
		{[]string{"https://example.com", "http://localhost:3000"}, "https://example.com", true},
		{[]string{"https://example.com"}, "https://example.com.evil.com", false},
		{[]string{"https://example.com"}, "http://example.com", false},
	}
	for _, tt := range tests {
		cfg := StreamConfig{AllowedOrigins: tt.allowed}
		if got := cfg.IsOriginAllowed(tt.origin, "localhost:4000"); got != tt.want {
			t.Errorf("IsOriginAllowed(%q) with %v = %v, want %v", tt.origin, tt.allowed, got, tt.want)
		}
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "localhost:4000", true},
		{"http://localhost:4000", "localhost:4000", true},
		{"https://localhost:4000/", "localhost:4000", true},
		{"http://localhost:4001", "localhost:4000", false},
	}
	for _, tt := range tests {
		if got := isSameOrigin(tt.origin, tt.host); got != tt.want {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v", tt.origin, tt.host, got, tt.want)
		}
	}
}
