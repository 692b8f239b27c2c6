package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/socket"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "runs.db"))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *wfc.Result {
	parent := hexgrid.Address{Tier: 1}
	return &wfc.Result{
		Seed:           42,
		Tier:           1,
		Attempts:       1,
		ClustersPlaced: 1,
		Placements: []wfc.Placement{
			{Address: parent, TileID: "tower", Rotation: 2, Cluster: "keep"},
			{Address: hexgrid.Address{Tier: 1, Coord: hexgrid.Axial{Q: 1}}, TileID: "wall", Rotation: 5, Inverted: true},
		},
		Children: []*wfc.Result{{
			Seed:   43,
			Tier:   0,
			Parent: &parent,
			Placements: []wfc.Placement{
				{Address: hexgrid.Address{Layer: 1, Coord: hexgrid.Axial{Q: -1, R: 1}}, TileID: "floor"},
			},
			Ignored: []hexgrid.Address{{Coord: hexgrid.Axial{R: 1}}},
		}},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	res := sampleResult()

	id, err := s.SaveRun(ctx, res, "abc123")
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id == "" {
		t.Fatal("run id should not be empty")
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Seed != 42 || run.Tier != 1 || run.CatalogHash != "abc123" {
		t.Errorf("run = %+v", run)
	}
	if run.Success {
		t.Error("run with an ignored nested cell should not be a success")
	}
	if run.Placed != 3 || run.Ignored != 1 || run.Clusters != 1 {
		t.Errorf("placed=%d ignored=%d clusters=%d", run.Placed, run.Ignored, run.Clusters)
	}
	if run.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := s.Placements(ctx, id)
	if err != nil {
		t.Fatalf("Placements: %v", err)
	}
	if want := res.AllPlacements(); !reflect.DeepEqual(got, want) {
		t.Errorf("placements = %+v\nwant %+v", got, want)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetRun(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun err = %v, want ErrRunNotFound", err)
	}
	if _, err := s.Placements(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Placements err = %v, want ErrRunNotFound", err)
	}
}

func TestSaveRunRejectsDuplicatePlacement(t *testing.T) {
	s := setupTestStore(t)
	res := &wfc.Result{Placements: []wfc.Placement{
		{TileID: "a"},
		{TileID: "b"},
	}}
	if _, err := s.SaveRun(context.Background(), res, ""); err == nil {
		t.Fatal("expected duplicate address error")
	}
	runs, err := s.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("failed save left %d runs behind", len(runs))
	}
}

func TestListAndDeleteRuns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ids := make(map[string]bool)
	for i := 0; i < 3; i++ {
		id, err := s.SaveRun(ctx, &wfc.Result{Seed: int64(i)}, "h")
		if err != nil {
			t.Fatal(err)
		}
		ids[id] = true
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns(2) returned %d runs", len(runs))
	}
	for _, r := range runs {
		if !ids[r.ID] {
			t.Errorf("unexpected run %s", r.ID)
		}
		if !r.Success {
			t.Errorf("empty run %s should be a success", r.ID)
		}
	}

	if err := s.DeleteRun(ctx, runs[0].ID); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if err := s.DeleteRun(ctx, runs[0].ID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("second DeleteRun err = %v, want ErrRunNotFound", err)
	}
	all, _ := s.ListRuns(ctx, 10)
	if len(all) != 2 {
		t.Errorf("runs after delete = %d, want 2", len(all))
	}
}

func TestPairCacheRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := socket.NewPairCache()
	c.CatalogHash = "h1"
	c.TileCount = 2
	c.Register("a", "b", 0, 2)
	c.Touch("b", "a", socket.FaceTop)
	if err := s.SavePairCache(ctx, c); err != nil {
		t.Fatalf("SavePairCache: %v", err)
	}

	// Saving again overwrites rather than conflicting.
	c.Register("a", "b", 0, 4)
	if err := s.SavePairCache(ctx, c); err != nil {
		t.Fatalf("second SavePairCache: %v", err)
	}

	got, err := s.LoadPairCache(ctx, "h1", 2)
	if err != nil {
		t.Fatalf("LoadPairCache: %v", err)
	}
	set, ok := got.Lookup("a", "b", 0)
	if !ok || !set.Has(2) || !set.Has(4) {
		t.Errorf("Lookup(a,b,0) = %v, %v", set.Offsets(), ok)
	}
	if set, ok := got.Lookup("b", "a", socket.FaceTop); !ok || len(set.Offsets()) != 0 {
		t.Errorf("touched key = %v, %v; want present and empty", set.Offsets(), ok)
	}

	if _, err := s.LoadPairCache(ctx, "h1", 3); !errors.Is(err, socket.ErrCompatibilityDataDesync) {
		t.Errorf("tile count mismatch err = %v", err)
	}
	if _, err := s.LoadPairCache(ctx, "other", 2); !errors.Is(err, ErrCompatNotFound) {
		t.Errorf("unknown hash err = %v", err)
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	m := socket.NewMatrix(4)
	_ = m.Allow(1, 2)
	_ = m.Allow(3, 3)
	if err := s.SaveMatrix(ctx, "h1", m); err != nil {
		t.Fatalf("SaveMatrix: %v", err)
	}

	got, err := s.LoadMatrix(ctx, "h1", 4)
	if err != nil {
		t.Fatalf("LoadMatrix: %v", err)
	}
	if !reflect.DeepEqual(got.Pairs(), m.Pairs()) {
		t.Errorf("pairs = %v, want %v", got.Pairs(), m.Pairs())
	}
	if _, err := s.LoadMatrix(ctx, "h1", 5); !errors.Is(err, socket.ErrCompatibilityDataDesync) {
		t.Errorf("size mismatch err = %v", err)
	}
}

func TestOpenRejectsEmptySQLitePath(t *testing.T) {
	if _, err := Open(Config{Driver: "sqlite"}); err == nil {
		t.Error("expected error for empty sqlite path")
	}
}
