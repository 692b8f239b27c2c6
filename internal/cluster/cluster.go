// Package cluster partitions open cells into small connected groups that a
// multi-cell tile can fill in one step.
package cluster

import (
	"math"
	"sort"

	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
)

// Cluster is a same-layer group of cells: a seed and some of its side
// neighbors.
type Cluster struct {
	ID       int
	Members  []*hexgrid.Cell
	Parent   *hexgrid.Cell
	Centroid hexgrid.Vec3
	IsEdge   bool
	Ignored  bool

	// Tile and Rotation record the cluster tile placed over the group.
	Tile     string
	Rotation int

	members map[*hexgrid.Cell]struct{}
}

// Size returns the number of member cells.
func (c *Cluster) Size() int { return len(c.Members) }

// Contains reports whether cell belongs to the cluster.
func (c *Cluster) Contains(cell *hexgrid.Cell) bool {
	_, ok := c.members[cell]
	return ok
}

// MemberOnSide returns the member on side k of the parent, if any.
func (c *Cluster) MemberOnSide(k int) *hexgrid.Cell {
	nb := c.Parent.Neighbors[k]
	if nb != nil && c.Contains(nb) {
		return nb
	}
	return nil
}

// Options controls Form.
type Options struct {
	// MinSize is the smallest group worth forming. Values below 2 mean 2.
	MinSize int
	// MaxClusters stops formation early; 0 means no limit.
	MaxClusters int
	// InteriorFirst seeds interior cells before edge cells.
	InteriorFirst bool
}

// Form partitions the open cells among cells into clusters. Every cell ends
// up in at most one cluster; cells that fit nowhere are left out. Seeds are
// taken edge cells first (unless InteriorFirst), then by the number of
// unclaimed neighbors, ties in address order.
func Form(cells []*hexgrid.Cell, opts Options) []*Cluster {
	if opts.MinSize < 2 {
		opts.MinSize = 2
	}

	pool := make(map[*hexgrid.Cell]struct{}, len(cells))
	ordered := make([]*hexgrid.Cell, 0, len(cells))
	for _, c := range cells {
		if c.IsOpen() {
			if _, dup := pool[c]; !dup {
				pool[c] = struct{}{}
				ordered = append(ordered, c)
			}
		}
	}
	hexgrid.SortCells(ordered)

	claimed := make(map[*hexgrid.Cell]bool, len(ordered))
	tried := make(map[*hexgrid.Cell]bool, len(ordered))

	unclaimedNeighbors := func(c *hexgrid.Cell) []*hexgrid.Cell {
		var out []*hexgrid.Cell
		for _, nb := range c.Neighbors {
			if nb == nil || claimed[nb] {
				continue
			}
			if _, ok := pool[nb]; ok {
				out = append(out, nb)
			}
		}
		return out
	}

	var clusters []*Cluster
	for opts.MaxClusters == 0 || len(clusters) < opts.MaxClusters {
		var seed *hexgrid.Cell
		seedDegree := -1
		for _, c := range ordered {
			if claimed[c] || tried[c] {
				continue
			}
			d := len(unclaimedNeighbors(c))
			if seed == nil || better(c, d, seed, seedDegree, !opts.InteriorFirst) {
				seed, seedDegree = c, d
			}
		}
		if seed == nil {
			break
		}
		tried[seed] = true

		group := append([]*hexgrid.Cell{seed}, unclaimedNeighbors(seed)...)
		if len(group) < opts.MinSize {
			continue
		}
		for _, c := range group {
			claimed[c] = true
		}
		clusters = append(clusters, newCluster(len(clusters), group))
	}
	return clusters
}

// better reports whether candidate c with degree d beats the current seed.
func better(c *hexgrid.Cell, d int, seed *hexgrid.Cell, seedDegree int, edgeFirst bool) bool {
	if c.IsEdge != seed.IsEdge {
		return c.IsEdge == edgeFirst
	}
	if d != seedDegree {
		return d > seedDegree
	}
	return c.Address.Less(seed.Address)
}

func newCluster(id int, members []*hexgrid.Cell) *Cluster {
	c := &Cluster{
		ID:      id,
		Members: members,
		members: make(map[*hexgrid.Cell]struct{}, len(members)),
	}
	for _, m := range members {
		c.members[m] = struct{}{}
		if m.IsEdge {
			c.IsEdge = true
		}
	}

	best := -1
	for _, m := range members {
		n := 0
		for _, nb := range m.Neighbors {
			if nb != nil && c.Contains(nb) {
				n++
			}
		}
		if n > best {
			best = n
			c.Parent = m
		}
	}
	c.Centroid = Centroid(members)
	return c
}

type pointKey struct {
	x, y, z int64
}

const centroidTolerance = 1e-6

func keyOf(p hexgrid.Vec3) pointKey {
	return pointKey{
		int64(math.Round(p.X / centroidTolerance)),
		int64(math.Round(p.Y / centroidTolerance)),
		int64(math.Round(p.Z / centroidTolerance)),
	}
}

// Centroid averages the distinct corner, side midpoint and centre points of
// the cells. Shared corners and midpoints count once.
func Centroid(cells []*hexgrid.Cell) hexgrid.Vec3 {
	seen := make(map[pointKey]struct{})
	var sum hexgrid.Vec3
	add := func(p hexgrid.Vec3) {
		k := keyOf(p)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		sum.X += p.X
		sum.Y += p.Y
		sum.Z += p.Z
	}
	for _, c := range cells {
		z := c.Center.Z
		add(c.Center)
		for _, p := range c.Corners() {
			add(hexgrid.Vec3{X: p.X, Y: p.Y, Z: z})
		}
		for _, p := range c.SideMidpoints() {
			add(hexgrid.Vec3{X: p.X, Y: p.Y, Z: z})
		}
	}
	n := float64(len(seen))
	if n == 0 {
		return hexgrid.Vec3{}
	}
	return hexgrid.Vec3{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}
}

// Index maps each member cell to its cluster.
func Index(clusters []*Cluster) map[*hexgrid.Cell]*Cluster {
	out := make(map[*hexgrid.Cell]*Cluster)
	for _, c := range clusters {
		for _, m := range c.Members {
			out[m] = c
		}
	}
	return out
}

// SortBySize orders clusters largest first, ties by id.
func SortBySize(clusters []*Cluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Size() != clusters[j].Size() {
			return clusters[i].Size() > clusters[j].Size()
		}
		return clusters[i].ID < clusters[j].ID
	})
}
