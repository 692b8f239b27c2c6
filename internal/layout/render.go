package layout

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
)

const symbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RenderOptions selects what Render prints. Negative Tier or Layer means
// all of them.
type RenderOptions struct {
	Tier   int
	Layer  int
	Legend bool
}

// AllPlanes renders every tier and layer with a legend.
func AllPlanes() RenderOptions {
	return RenderOptions{Tier: -1, Layer: -1, Legend: true}
}

type plane struct{ tier, layer int }

type token struct {
	q, r int
	text string
}

// Legend assigns one symbol per tile id, in id order.
func Legend(d *LayoutData) map[string]byte {
	var ids []string
	seen := make(map[string]bool)
	for _, p := range d.AllPlacements() {
		if !seen[p.TileID] {
			seen[p.TileID] = true
			ids = append(ids, p.TileID)
		}
	}
	sort.Strings(ids)

	out := make(map[string]byte, len(ids))
	for i, id := range ids {
		if i < len(symbols) {
			out[id] = symbols[i]
		} else {
			out[id] = '?'
		}
	}
	return out
}

// Render writes one ASCII map per tier and layer. Rows follow axial r;
// each row is shifted half a cell per r so neighbors line up the way
// pointy-top hexes do. A cell reads as symbol, rotation, and '*' when
// inverted.
func Render(w io.Writer, d *LayoutData, opts RenderOptions) error {
	bw := bufio.NewWriter(w)
	legend := Legend(d)

	planes := make(map[plane][]token)
	add := func(a hexgrid.Address, text string) {
		if opts.Tier >= 0 && a.Tier != opts.Tier {
			return
		}
		if opts.Layer >= 0 && a.Layer != opts.Layer {
			return
		}
		k := plane{a.Tier, a.Layer}
		planes[k] = append(planes[k], token{a.Coord.Q, a.Coord.R, text})
	}
	for _, p := range d.AllPlacements() {
		inv := " "
		if p.Inverted {
			inv = "*"
		}
		add(p.Address, fmt.Sprintf("%c%d%s", legend[p.TileID], p.Rotation, inv))
	}
	for _, a := range d.AllIgnored() {
		add(a, "!! ")
	}

	keys := make([]plane, 0, len(planes))
	for k := range planes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].tier != keys[j].tier {
			return keys[i].tier > keys[j].tier
		}
		return keys[i].layer < keys[j].layer
	})

	fmt.Fprintf(bw, "Layout (Seed: %d, Success: %v)\n", d.Seed, d.Success)
	bw.WriteString(strings.Repeat("=", 60) + "\n\n")
	for _, k := range keys {
		renderPlane(bw, k, planes[k])
		bw.WriteString("\n")
	}

	if opts.Legend {
		writeLegend(bw, legend)
	}
	return bw.Flush()
}

func renderPlane(w *bufio.Writer, k plane, tokens []token) {
	fmt.Fprintf(w, "Tier %d Layer %d (%d cells)\n", k.tier, k.layer, len(tokens))
	w.WriteString(strings.Repeat("-", 40) + "\n")

	minR, maxR := tokens[0].r, tokens[0].r
	minCol, maxCol := 2*tokens[0].q+tokens[0].r, 2*tokens[0].q+tokens[0].r
	for _, t := range tokens {
		col := 2*t.q + t.r
		minR, maxR = min(minR, t.r), max(maxR, t.r)
		minCol, maxCol = min(minCol, col), max(maxCol, col)
	}

	width := (maxCol-minCol)*2 + 3
	rows := make([][]byte, maxR-minR+1)
	for i := range rows {
		rows[i] = []byte(strings.Repeat(" ", width))
	}
	for _, t := range tokens {
		at := (2*t.q + t.r - minCol) * 2
		copy(rows[t.r-minR][at:], t.text)
	}
	for _, row := range rows {
		w.WriteString(strings.TrimRight(string(row), " ") + "\n")
	}
}

func writeLegend(w *bufio.Writer, legend map[string]byte) {
	ids := make([]string, 0, len(legend))
	for id := range legend {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w.WriteString("Legend:\n")
	for _, id := range ids {
		fmt.Fprintf(w, "  %c   %s\n", legend[id], id)
	}
	w.WriteString("  !!  ignored\n")
	w.WriteString("  digit after a symbol is the rotation, * marks an inverted tile\n")
}
