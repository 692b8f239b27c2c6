package cluster

import (
	"math"
	"testing"

	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
)

func hexagon(t *testing.T, radius int) *hexgrid.Grid {
	t.Helper()
	g := hexgrid.NewGrid(1, 1)
	g.NewHexagon(hexgrid.Axial{}, radius, 0, 1)
	g.Build(false)
	return g
}

func TestFormInteriorFirst(t *testing.T) {
	g := hexagon(t, 1)
	clusters := Form(g.Cells(), Options{InteriorFirst: true})

	if len(clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(clusters))
	}
	c := clusters[0]
	if c.Size() != 7 {
		t.Errorf("Size = %d, want 7", c.Size())
	}
	center, _ := g.Lookup(0, 0, hexgrid.Axial{})
	if c.Parent != center {
		t.Errorf("Parent = %v, want centre", c.Parent.Address)
	}
	if !c.IsEdge {
		t.Error("cluster with ring members should be an edge cluster")
	}
	for k := 0; k < hexgrid.SideCount; k++ {
		if c.MemberOnSide(k) == nil {
			t.Errorf("no member on side %d", k)
		}
	}
	if math.Abs(c.Centroid.X) > 1e-9 || math.Abs(c.Centroid.Y) > 1e-9 {
		t.Errorf("Centroid = %+v, want origin", c.Centroid)
	}
}

func TestFormEdgeFirstIsExclusive(t *testing.T) {
	g := hexagon(t, 1)
	clusters := Form(g.Cells(), Options{})

	if len(clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(clusters))
	}
	if clusters[0].Size() != 4 || clusters[1].Size() != 3 {
		t.Errorf("sizes = %d, %d, want 4, 3", clusters[0].Size(), clusters[1].Size())
	}
	if !clusters[0].Parent.IsEdge {
		t.Error("first seed should be an edge cell")
	}

	seen := make(map[*hexgrid.Cell]int)
	for _, c := range clusters {
		for _, m := range c.Members {
			seen[m]++
		}
	}
	if len(seen) != 7 {
		t.Errorf("covered %d cells, want 7", len(seen))
	}
	for cell, n := range seen {
		if n != 1 {
			t.Errorf("%v in %d clusters", cell.Address, n)
		}
	}
}

func TestFormMinSize(t *testing.T) {
	g := hexagon(t, 1)
	clusters := Form(g.Cells(), Options{MinSize: 5})

	if len(clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(clusters))
	}
	if clusters[0].Size() != 7 || clusters[0].Parent.Address.Coord != (hexgrid.Axial{}) {
		t.Errorf("cluster = size %d parent %v", clusters[0].Size(), clusters[0].Parent.Address)
	}
}

func TestFormSkipsAssigned(t *testing.T) {
	g := hexagon(t, 1)
	center, _ := g.Lookup(0, 0, hexgrid.Axial{})
	if err := center.Assign("floor", 0, false, false); err != nil {
		t.Fatal(err)
	}

	for _, c := range Form(g.Cells(), Options{}) {
		if c.Contains(center) {
			t.Error("assigned cell must not join a cluster")
		}
	}
}

func TestFormMaxClusters(t *testing.T) {
	g := hexagon(t, 2)
	if got := len(Form(g.Cells(), Options{MaxClusters: 2})); got != 2 {
		t.Errorf("clusters = %d, want 2", got)
	}
}

func TestIndexAndSort(t *testing.T) {
	g := hexagon(t, 1)
	clusters := Form(g.Cells(), Options{})
	idx := Index(clusters)
	if len(idx) != 7 {
		t.Errorf("Index covers %d cells, want 7", len(idx))
	}

	SortBySize(clusters)
	if clusters[0].Size() < clusters[len(clusters)-1].Size() {
		t.Error("SortBySize should put the largest cluster first")
	}
}

func TestCentroidDeduplicatesSharedPoints(t *testing.T) {
	g := hexagon(t, 1)
	a, _ := g.Lookup(0, 0, hexgrid.Axial{})
	b, _ := g.Lookup(0, 0, hexgrid.Directions[0])

	got := Centroid([]*hexgrid.Cell{a, b})
	// The pair is symmetric about the midpoint of their shared side.
	mid := a.SideMidpoints()[0]
	if math.Abs(got.X-mid.X) > 1e-9 || math.Abs(got.Y-mid.Y) > 1e-9 {
		t.Errorf("Centroid = %+v, want %+v", got, mid)
	}
}
