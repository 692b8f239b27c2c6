package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lawnchairsociety/hexwfc/internal/socket"
)

const testCatalogYAML = `
tiles:
  floor:
    tier: 0
    sides: [1, 1, 1, 1, 1, 1]
    bottom: 2
    top: 3
  wall:
    tier: 0
    sides: [0, 1, 1, 1, 1, 0]
    bottom: 2
    top: 3
    edgeable: true
    exterior_wall: true
    weight: 2
  roof:
    tier: 0
    sides: [0, 1, 1, 1, 1, 0]
    bottom: 2
    top: 0
    edgeable: true
    roofable: true
    exclude_layers: [ground, middle]
  door:
    tier: 0
    sides: [0, 1, 1, 1, 1, 1]
    bottom: 2
    top: 3
    entrance: true
    side_points:
      1: {"-1,0": 1, "1,0": 4}
  core:
    tier: 0
    sides: [1, 1, 1, 1, 1, 1]
    bottom: 2
    top: 3
    cluster_role: center
  block:
    tier: 1
    sides: [5, 5, 5, 5, 5, 5]
    bottom: 2
    top: 3
    expands: true
    corners:
      top: [1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0]
clusters:
  hall:
    center: core
    ring: [floor, floor, floor, floor, floor, floor]
`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := ParseCatalogYAML([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("ParseCatalogYAML failed: %v", err)
	}
	return cat
}

func ids(tiles []*TileDefinition) []string {
	out := make([]string, len(tiles))
	for i, t := range tiles {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseCatalogYAML(t *testing.T) {
	cat := loadTestCatalog(t)

	if cat.Len() != 6 {
		t.Fatalf("Len = %d, want 6", cat.Len())
	}
	wall, ok := cat.Tile("wall")
	if !ok {
		t.Fatal("wall missing")
	}
	if !wall.Edgeable || !wall.ExteriorWall || wall.EffectiveWeight() != 2 {
		t.Errorf("wall flags = %+v", wall)
	}

	door, _ := cat.Tile("door")
	if got := door.SidePoints[1][socket.PointKey{U: 1, V: 0}]; got != 4 {
		t.Errorf("door side point = %d, want 4", got)
	}
	if !door.Profile()[1].IsMulti() {
		t.Error("door side 1 should be subdivided")
	}

	block, _ := cat.Tile("block")
	if block.Corners == nil || block.Corners.Top[0] != 1 {
		t.Errorf("block corners = %+v", block.Corners)
	}
	if clusters := cat.Clusters(); len(clusters) != 1 || clusters[0].CellCount() != 7 {
		t.Errorf("clusters = %+v", clusters)
	}
}

func TestCandidates(t *testing.T) {
	cat := loadTestCatalog(t)

	tests := []struct {
		name   string
		state  LayerState
		subset Subset
		want   []string
	}{
		{"general single", LayerSingle, SubsetGeneral, []string{"floor", "roof", "wall"}},
		{"general ground", LayerGround, SubsetGeneral, []string{"floor", "wall"}},
		{"entrance", LayerSingle, SubsetEntrance, []string{"door"}},
		{"edge", LayerTop, SubsetEdge, []string{"roof", "wall"}},
		{"top", LayerTop, SubsetTop, []string{"roof"}},
		{"top excluded", LayerMiddle, SubsetTop, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(cat.Candidates(0, tc.state, tc.subset))
			if !equalIDs(got, tc.want) {
				t.Errorf("Candidates = %v, want %v", got, tc.want)
			}
		})
	}

	if got := ids(cat.Filter(1, LayerSingle)); !equalIDs(got, []string{"block"}) {
		t.Errorf("Filter(1) = %v", got)
	}
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		below, above bool
		want         LayerState
	}{
		{false, false, LayerSingle},
		{false, true, LayerGround},
		{true, true, LayerMiddle},
		{true, false, LayerTop},
	}
	for _, tc := range tests {
		if got := StateOf(tc.below, tc.above); got != tc.want {
			t.Errorf("StateOf(%v, %v) = %s, want %s", tc.below, tc.above, got, tc.want)
		}
	}
}

func TestValidateMissingProfile(t *testing.T) {
	_, err := ParseCatalogYAML([]byte(`
tiles:
  broken:
    tier: 0
    bottom: 1
    top: 1
`))
	if !errors.Is(err, ErrMissingSocketProfile) {
		t.Errorf("err = %v, want ErrMissingSocketProfile", err)
	}

	cat, err := New([]*TileDefinition{{ID: "x", Sides: [6]int{1, 1, 1, 1, 1, 1}, Bottom: -1, Top: 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cat.Rotations("x"); !errors.Is(err, ErrMissingSocketProfile) {
		t.Errorf("Rotations err = %v, want ErrMissingSocketProfile", err)
	}
	if _, err := cat.Rotations("nope"); !errors.Is(err, ErrUnknownTile) {
		t.Errorf("Rotations err = %v, want ErrUnknownTile", err)
	}
}

func TestValidateClusterReferences(t *testing.T) {
	_, err := ParseCatalogYAML([]byte(`
tiles:
  core:
    sides: [1, 1, 1, 1, 1, 1]
    bottom: 1
    top: 1
clusters:
  bad:
    center: core
    ring: [ghost]
`))
	if !errors.Is(err, ErrUnknownTile) {
		t.Errorf("err = %v, want ErrUnknownTile", err)
	}
}

func TestDuplicateTile(t *testing.T) {
	tiles := []*TileDefinition{{ID: "a"}, {ID: "a"}}
	if _, err := New(tiles, nil); !errors.Is(err, ErrDuplicateTile) {
		t.Errorf("err = %v, want ErrDuplicateTile", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"short sides", "tiles:\n  a:\n    sides: [1, 1]\n    bottom: 1\n    top: 1\n"},
		{"bad role", "tiles:\n  a:\n    sides: [1,1,1,1,1,1]\n    bottom: 1\n    top: 1\n    cluster_role: boss\n"},
		{"bad layer", "tiles:\n  a:\n    sides: [1,1,1,1,1,1]\n    bottom: 1\n    top: 1\n    exclude_layers: [attic]\n"},
		{"bad corners", "tiles:\n  a:\n    sides: [1,1,1,1,1,1]\n    bottom: 1\n    top: 1\n    corners:\n      top: [1, 2]\n"},
		{"bad point", "tiles:\n  a:\n    sides: [1,1,1,1,1,1]\n    bottom: 1\n    top: 1\n    side_points:\n      0: {\"x\": 1}\n"},
		{"bad yaml", "tiles: [oops"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCatalogYAML([]byte(tc.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestClustersFor(t *testing.T) {
	cat := loadTestCatalog(t)
	if got := cat.ClustersFor(0, 7); len(got) != 1 {
		t.Errorf("ClustersFor(0, 7) = %d clusters, want 1", len(got))
	}
	if got := cat.ClustersFor(0, 6); len(got) != 0 {
		t.Errorf("ClustersFor(0, 6) = %d clusters, want 0", len(got))
	}
	if got := cat.ClustersFor(1, 7); len(got) != 0 {
		t.Errorf("ClustersFor(1, 7) = %d clusters, want 0", len(got))
	}
}

func TestMaxSocketID(t *testing.T) {
	cat := loadTestCatalog(t)
	if got := cat.MaxSocketID(); got != 5 {
		t.Errorf("MaxSocketID = %d, want 5", got)
	}
}

func TestFingerprint(t *testing.T) {
	a := loadTestCatalog(t)
	b := loadTestCatalog(t)
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("same catalog should hash the same")
	}
	if len(a.Fingerprint()) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(a.Fingerprint()))
	}

	floor, _ := b.Tile("floor")
	floor.Sides[0] = 2
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("changed sockets should change the fingerprint")
	}
}

func TestSocketBundlesRoundTrip(t *testing.T) {
	cat := loadTestCatalog(t)
	path := filepath.Join(t.TempDir(), "bundles.json")

	bundles := cat.Bundles()
	if len(bundles) != 1 {
		t.Fatalf("Bundles = %d, want 1", len(bundles))
	}
	if err := SaveSocketBundles(bundles, path); err != nil {
		t.Fatalf("SaveSocketBundles failed: %v", err)
	}
	loaded, err := LoadSocketBundles(path)
	if err != nil {
		t.Fatalf("LoadSocketBundles failed: %v", err)
	}
	if loaded["block"] != bundles["block"] {
		t.Errorf("bundle mismatch: %+v vs %+v", loaded["block"], bundles["block"])
	}

	other := loadTestCatalog(t)
	loaded["floor"] = loaded["block"]
	if err := other.ApplyBundles(loaded); err != nil {
		t.Fatalf("ApplyBundles failed: %v", err)
	}
	if floor, _ := other.Tile("floor"); floor.Corners == nil {
		t.Error("floor should have a bundle after ApplyBundles")
	}

	loaded["ghost"] = loaded["block"]
	if err := other.ApplyBundles(loaded); !errors.Is(err, socket.ErrCompatibilityDataDesync) {
		t.Errorf("ApplyBundles err = %v, want ErrCompatibilityDataDesync", err)
	}
}
