package wfc

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
)

func TestRunSeed(t *testing.T) {
	tests := []struct {
		base int64
		run  int
		want int64
	}{
		{42, 0, 42},
		{42, 1, 1042},
		{-5, 3, 2995},
	}
	for _, tt := range tests {
		if got := RunSeed(tt.base, tt.run); got != tt.want {
			t.Errorf("RunSeed(%d, %d) = %d, want %d", tt.base, tt.run, got, tt.want)
		}
	}
}

func TestEngineFirstRunSucceeds(t *testing.T) {
	cat := mustCatalog(t, []*catalog.TileDefinition{uniform("pad", 0, 0)}, nil)
	runs := 0
	e := NewEngine(5)
	e.OnRun = func(int, *Result, error) { runs++ }

	res, err := e.Run(context.Background(), hexGrid(1, 1), cat, identity(1), testSettings())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if runs != 1 || len(res.Placements) != 7 {
		t.Errorf("runs = %d, placements = %d", runs, len(res.Placements))
	}
}

func TestEngineRetriesUnsatisfiable(t *testing.T) {
	cat := mustCatalog(t, []*catalog.TileDefinition{uniform("pad", 0, 0)}, nil)
	g := hexGrid(1, 1)
	if err := g.MarkEntry(hexgrid.Address{}); err != nil {
		t.Fatal(err)
	}
	s := testSettings()
	s.IgnoreFailures = false

	var seeds, announced []int64
	e := NewEngine(3)
	e.OnRunStart = func(run int, seed int64) { announced = append(announced, seed) }
	e.OnRun = func(run int, res *Result, err error) { seeds = append(seeds, res.Seed) }

	_, err := e.Run(context.Background(), g, cat, identity(1), s)
	if !errors.Is(err, ErrUnsatisfiableCell) {
		t.Fatalf("err = %v, want ErrUnsatisfiableCell", err)
	}
	if !strings.Contains(err.Error(), "failed after 3 attempts") {
		t.Errorf("err = %q", err)
	}
	want := []int64{7, 1007, 2007}
	if !reflect.DeepEqual(seeds, want) {
		t.Errorf("seeds = %v, want %v", seeds, want)
	}
	if !reflect.DeepEqual(announced, want) {
		t.Errorf("announced seeds = %v, want %v", announced, want)
	}
}

func TestEngineRequireComplete(t *testing.T) {
	cat := mustCatalog(t, []*catalog.TileDefinition{uniform("pad", 0, 0)}, nil)
	g := hexGrid(1, 1)
	_ = g.MarkEntry(hexgrid.Address{})

	e := &Engine{MaxRuns: 2}
	res, err := e.Run(context.Background(), g, cat, identity(1), testSettings())
	if err != nil {
		t.Fatalf("ignored cells without RequireComplete: %v", err)
	}
	if len(res.Ignored) != 1 {
		t.Errorf("ignored = %v", res.Ignored)
	}

	e.RequireComplete = true
	if _, err := e.Run(context.Background(), g, cat, identity(1), testSettings()); !errors.Is(err, ErrUnsatisfiableCell) {
		t.Errorf("err = %v, want ErrUnsatisfiableCell", err)
	}
}

func TestEngineStopsOnOtherErrors(t *testing.T) {
	cat := mustCatalog(t, []*catalog.TileDefinition{uniform("pad", 0, 0)}, nil)
	s := testSettings()
	s.MaxAttempts = 0

	runs := 0
	e := NewEngine(4)
	e.OnRun = func(int, *Result, error) { runs++ }
	if _, err := e.Run(context.Background(), hexGrid(0, 1), cat, identity(1), s); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("err = %v, want ErrInvalidSettings", err)
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestEngineResetsGridBetweenRuns(t *testing.T) {
	cat := mustCatalog(t, []*catalog.TileDefinition{uniform("pad", 0, 0)}, nil)
	g := hexGrid(1, 1)
	e := NewEngine(1)
	for i := 0; i < 2; i++ {
		res, err := e.Run(context.Background(), g, cat, identity(1), testSettings())
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if len(res.Placements) != 7 {
			t.Errorf("run %d placements = %d, want 7", i, len(res.Placements))
		}
	}
}
