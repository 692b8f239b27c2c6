package wfc

import (
	"reflect"
	"testing"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/socket"
)

func collapserFor(t *testing.T, g *hexgrid.Grid, cat *catalog.Catalog, dir *socket.Directory, s Settings) *Collapser {
	t.Helper()
	c, err := NewCollapser(g, cat, dir, s)
	if err != nil {
		t.Fatalf("NewCollapser: %v", err)
	}
	return c
}

func tileIDs(cands []Candidate) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range cands {
		if !seen[c.Tile.ID] {
			seen[c.Tile.ID] = true
			out = append(out, c.Tile.ID)
		}
	}
	return out
}

func TestLayerState(t *testing.T) {
	g := hexGrid(0, 3)
	want := []catalog.LayerState{catalog.LayerGround, catalog.LayerMiddle, catalog.LayerTop}
	for l, w := range want {
		cell, _ := g.Lookup(0, l, hexgrid.Axial{})
		if got := layerState(cell); got != w {
			t.Errorf("layer %d state = %v, want %v", l, got, w)
		}
	}

	top, _ := g.Lookup(0, 2, hexgrid.Axial{})
	top.MarkRemoved()
	mid, _ := g.Lookup(0, 1, hexgrid.Axial{})
	if got := layerState(mid); got != catalog.LayerTop {
		t.Errorf("state under removed cell = %v, want top", got)
	}
}

func TestEdgeWallPolicy(t *testing.T) {
	brick := uniform("brick", 0, 0)
	brick.ExteriorWall = true
	cat := mustCatalog(t, []*catalog.TileDefinition{brick, uniform("plain", 0, 0)}, nil)

	tests := []struct {
		policy   EdgeWallPolicy
		edge     []string
		interior []string
	}{
		{WallOptional, []string{"brick", "plain"}, []string{"brick", "plain"}},
		{WallRequired, []string{"brick"}, []string{"brick", "plain"}},
		{WallExclusive, []string{"brick"}, []string{"plain"}},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			g := hexGrid(1, 1)
			s := testSettings()
			s.EdgeWallPolicy = tt.policy
			c := collapserFor(t, g, cat, identity(1), s)

			ring, _ := g.Lookup(0, 0, hexgrid.Directions[2])
			centre, _ := g.Lookup(0, 0, hexgrid.Axial{})
			for _, probe := range []struct {
				cell *hexgrid.Cell
				want []string
			}{{ring, tt.edge}, {centre, tt.interior}} {
				cands, err := c.Candidates(probe.cell, catalog.SubsetGeneral)
				if err != nil {
					t.Fatal(err)
				}
				if got := tileIDs(cands); !reflect.DeepEqual(got, probe.want) {
					t.Errorf("%v candidates = %v, want %v", probe.cell.Address, got, probe.want)
				}
			}
		})
	}
}

func TestSubsetChain(t *testing.T) {
	edgeTile := uniform("cap", 0, 0)
	edgeTile.Edgeable = true

	tests := []struct {
		name  string
		tiles []*catalog.TileDefinition
		setup func(g *hexgrid.Grid) *hexgrid.Cell
		want  []catalog.Subset
	}{
		{
			name:  "interior",
			tiles: []*catalog.TileDefinition{edgeTile},
			setup: func(g *hexgrid.Grid) *hexgrid.Cell { c, _ := g.Lookup(0, 0, hexgrid.Axial{}); return c },
			want:  []catalog.Subset{catalog.SubsetGeneral},
		},
		{
			name:  "roof edge",
			tiles: []*catalog.TileDefinition{edgeTile},
			setup: func(g *hexgrid.Grid) *hexgrid.Cell { c, _ := g.Lookup(0, 0, hexgrid.Directions[0]); return c },
			want:  []catalog.Subset{catalog.SubsetTop, catalog.SubsetEdge},
		},
		{
			name:  "edge without edgeable tiles",
			tiles: []*catalog.TileDefinition{uniform("pad", 0, 0)},
			setup: func(g *hexgrid.Grid) *hexgrid.Cell { c, _ := g.Lookup(0, 0, hexgrid.Directions[0]); return c },
			want:  []catalog.Subset{catalog.SubsetTop, catalog.SubsetEdge, catalog.SubsetGeneral},
		},
		{
			name:  "entry",
			tiles: []*catalog.TileDefinition{edgeTile},
			setup: func(g *hexgrid.Grid) *hexgrid.Cell {
				c, _ := g.Lookup(0, 0, hexgrid.Directions[0])
				c.IsEntry = true
				return c
			},
			want: []catalog.Subset{catalog.SubsetEntrance},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := hexGrid(1, 1)
			c := collapserFor(t, g, mustCatalog(t, tt.tiles, nil), identity(1), testSettings())
			if got := c.subsetChain(tt.setup(g)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("chain = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInversionCandidates(t *testing.T) {
	g := hexGrid(0, 2)
	// flip never fits: upright its bottom 1 meets nothing, inverted its top
	// 1 cannot face the sky.
	flip := &catalog.TileDefinition{ID: "flip", Bottom: 1, Top: 2}
	base := &catalog.TileDefinition{ID: "base", Bottom: 0, Top: 2}
	cat := mustCatalog(t, []*catalog.TileDefinition{base, flip}, nil)

	m := socket.NewMatrix(3)
	_ = m.Allow(0, 0)
	_ = m.Allow(2, 2)
	s := testSettings()
	s.AllowRotation = false

	lower, _ := g.Lookup(0, 0, hexgrid.Axial{})
	upper, _ := g.Lookup(0, 1, hexgrid.Axial{})
	if err := lower.Assign("base", 0, false, false); err != nil {
		t.Fatal(err)
	}

	c := collapserFor(t, g, cat, socket.NewDirectory(m, nil), s)
	cands, err := c.Candidates(upper, catalog.SubsetGeneral)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 0 {
		t.Errorf("upright only: candidates = %v, want none", cands)
	}

	s.AllowInversion = true
	c = collapserFor(t, g, cat, socket.NewDirectory(m, nil), s)
	cands, err = c.Candidates(upper, catalog.SubsetGeneral)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, cand := range cands {
		got = append(got, cand.String())
	}
	// base inverted shows bottom 2 on the base's top 2 and top 0 to the sky.
	want := []string{"base@0/inv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
}

func TestCornerBundlesConstrainStacking(t *testing.T) {
	g := hexGrid(0, 2)
	var notched socket.CornerSet
	notched[0] = 1
	lowerTile := uniform("lower", 0, 0)
	lowerTile.Corners = &socket.CornerBundle{Top: notched}
	match := uniform("match", 0, 0)
	match.Corners = &socket.CornerBundle{Bottom: notched}
	plain := uniform("plain", 0, 0)
	plain.Corners = &socket.CornerBundle{}
	cat := mustCatalog(t, []*catalog.TileDefinition{lowerTile, match, plain}, nil)

	s := testSettings()
	s.AllowRotation = false
	lower, _ := g.Lookup(0, 0, hexgrid.Axial{})
	upper, _ := g.Lookup(0, 1, hexgrid.Axial{})
	if err := lower.Assign("lower", 0, false, false); err != nil {
		t.Fatal(err)
	}

	c := collapserFor(t, g, cat, identity(2), s)
	cands, err := c.Candidates(upper, catalog.SubsetGeneral)
	if err != nil {
		t.Fatal(err)
	}
	if got := tileIDs(cands); !reflect.DeepEqual(got, []string{"match"}) {
		t.Errorf("candidates = %v, want [match]", got)
	}
}

func TestMissingNeighborTileIsFatal(t *testing.T) {
	g := hexGrid(1, 1)
	cat := mustCatalog(t, []*catalog.TileDefinition{uniform("pad", 0, 0)}, nil)
	c := collapserFor(t, g, cat, identity(1), testSettings())

	ring, _ := g.Lookup(0, 0, hexgrid.Directions[0])
	if err := ring.Assign("ghost", 0, false, false); err != nil {
		t.Fatal(err)
	}
	centre, _ := g.Lookup(0, 0, hexgrid.Axial{})
	if _, err := c.Candidates(centre, catalog.SubsetGeneral); err == nil {
		t.Error("unknown neighbor tile should be an error")
	}
}

func scopedGrid() *hexgrid.Grid {
	g := hexgrid.NewGrid(1, 1)
	g.NewHexagon(hexgrid.Axial{}, 1, 1, 1)
	g.Subdivide(1, 1)
	g.Build(true)
	return g
}

func TestInteriorConnectorUsesGeneralSubset(t *testing.T) {
	g := scopedGrid()
	wall := uniform("wall", 0, 0)
	wall.Edgeable = true
	cat := mustCatalog(t, []*catalog.TileDefinition{wall, uniform("floor", 0, 0)}, nil)
	c := collapserFor(t, g, cat, identity(1), testSettings())

	var conn *hexgrid.Cell
	for _, cell := range g.TierCells(0) {
		if cell.IsConnector && cell.SideNeighborCount() == hexgrid.SideCount {
			conn = cell
			break
		}
	}
	if conn == nil {
		t.Fatal("no interior connector cell")
	}
	if got := c.subsetChain(conn); !reflect.DeepEqual(got, []catalog.Subset{catalog.SubsetGeneral}) {
		t.Errorf("chain = %v, want [general]", got)
	}
	cands, err := c.Candidates(conn, catalog.SubsetGeneral)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, id := range tileIDs(cands) {
		if id == "floor" {
			found = true
		}
	}
	if !found {
		t.Errorf("candidates = %v, want floor offered", tileIDs(cands))
	}
}
