package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lawnchairsociety/hexwfc/internal/socket"
)

var (
	ErrMissingSocketProfile = errors.New("catalog: tile has no socket profile")
	ErrDuplicateTile        = errors.New("catalog: duplicate tile id")
	ErrUnknownTile          = errors.New("catalog: unknown tile")
)

// Provider supplies tile definitions.
type Provider interface {
	GetTiles() []*TileDefinition
}

// Subset selects a group of tiles for one collapse phase.
type Subset int

const (
	SubsetGeneral  Subset = iota // everything not reserved for entries or clusters
	SubsetEntrance               // entry cell tiles
	SubsetEdge                   // tiles that may face the grid edge
	SubsetTop                    // edge tiles that may cap a stack
)

// String returns the string representation of a Subset
func (s Subset) String() string {
	switch s {
	case SubsetGeneral:
		return "general"
	case SubsetEntrance:
		return "entrance"
	case SubsetEdge:
		return "edge"
	case SubsetTop:
		return "top"
	default:
		return "unknown"
	}
}

// Catalog is the immutable tile set used by one or more solves.
type Catalog struct {
	tiles     []*TileDefinition
	byID      map[string]*TileDefinition
	rotations map[string]*socket.RotationSet
	clusters  []*ClusterTile
	clusterBy map[string]*ClusterTile
}

// New builds a catalog. Tiles are kept in id order.
func New(tiles []*TileDefinition, clusters []*ClusterTile) (*Catalog, error) {
	c := &Catalog{
		byID:      make(map[string]*TileDefinition, len(tiles)),
		rotations: make(map[string]*socket.RotationSet, len(tiles)),
		clusterBy: make(map[string]*ClusterTile, len(clusters)),
	}
	for _, t := range tiles {
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTile, t.ID)
		}
		c.byID[t.ID] = t
		c.tiles = append(c.tiles, t)
		if t.hasProfile() {
			c.rotations[t.ID] = socket.NewRotationSet(t.Profile())
		}
	}
	sort.Slice(c.tiles, func(i, j int) bool { return c.tiles[i].ID < c.tiles[j].ID })

	for _, m := range clusters {
		if _, dup := c.clusterBy[m.ID]; dup {
			return nil, fmt.Errorf("%w: cluster %s", ErrDuplicateTile, m.ID)
		}
		c.clusterBy[m.ID] = m
		c.clusters = append(c.clusters, m)
	}
	sort.Slice(c.clusters, func(i, j int) bool { return c.clusters[i].ID < c.clusters[j].ID })
	return c, nil
}

// FromProvider builds a catalog without cluster tiles.
func FromProvider(p Provider) (*Catalog, error) {
	return New(p.GetTiles(), nil)
}

// GetTiles returns every tile in id order.
func (c *Catalog) GetTiles() []*TileDefinition {
	out := make([]*TileDefinition, len(c.tiles))
	copy(out, c.tiles)
	return out
}

// Len returns the number of tiles.
func (c *Catalog) Len() int { return len(c.tiles) }

// Tile returns a tile by id.
func (c *Catalog) Tile(id string) (*TileDefinition, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Rotations returns the memoized orientations of a tile.
func (c *Catalog) Rotations(id string) (*socket.RotationSet, error) {
	rs, ok := c.rotations[id]
	if !ok {
		if _, known := c.byID[id]; !known {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTile, id)
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingSocketProfile, id)
	}
	return rs, nil
}

// Profiles returns the orientations of every tile that has a profile.
func (c *Catalog) Profiles() map[string]*socket.RotationSet {
	out := make(map[string]*socket.RotationSet, len(c.rotations))
	for id, rs := range c.rotations {
		out[id] = rs
	}
	return out
}

// Clusters returns the cluster tiles in id order.
func (c *Catalog) Clusters() []*ClusterTile {
	out := make([]*ClusterTile, len(c.clusters))
	copy(out, c.clusters)
	return out
}

// Filter returns the tiles of a tier that may be placed at the layer state.
func (c *Catalog) Filter(tier int, state LayerState) []*TileDefinition {
	var out []*TileDefinition
	for _, t := range c.tiles {
		if t.Tier == tier && !t.ExcludedOn(state) {
			out = append(out, t)
		}
	}
	return out
}

// Candidates returns Filter narrowed to a subset.
func (c *Catalog) Candidates(tier int, state LayerState, subset Subset) []*TileDefinition {
	var out []*TileDefinition
	for _, t := range c.Filter(tier, state) {
		if inSubset(t, subset) {
			out = append(out, t)
		}
	}
	return out
}

func inSubset(t *TileDefinition, subset Subset) bool {
	if t.ClusterRole != RoleNone {
		return false
	}
	switch subset {
	case SubsetEntrance:
		return t.Entrance
	case SubsetEdge:
		return t.Edgeable && !t.Entrance
	case SubsetTop:
		return t.Edgeable && t.Roofable && !t.Entrance
	default:
		return !t.Entrance
	}
}

// ClustersFor returns the cluster tiles whose cells all hold tier tiles and
// that cover at most size cells.
func (c *Catalog) ClustersFor(tier, size int) []*ClusterTile {
	var out []*ClusterTile
	for _, m := range c.clusters {
		if m.CellCount() > size {
			continue
		}
		center, ok := c.byID[m.Center]
		if !ok || center.Tier != tier {
			continue
		}
		out = append(out, m)
	}
	return out
}

// MaxSocketID returns the largest socket id any tile references.
func (c *Catalog) MaxSocketID() int {
	m := socket.EdgeID
	for _, t := range c.tiles {
		if v := t.maxSocket(); v > m {
			m = v
		}
	}
	return m
}

// Validate checks every tile eagerly. It reports the first problem found.
func (c *Catalog) Validate() error {
	for _, t := range c.tiles {
		if t.ID == "" {
			return errors.New("catalog: tile with empty id")
		}
		if t.Tier < 0 {
			return fmt.Errorf("catalog: tile %s has negative tier %d", t.ID, t.Tier)
		}
		if !t.hasProfile() {
			return fmt.Errorf("%w: %s", ErrMissingSocketProfile, t.ID)
		}
		if t.Weight < 0 {
			return fmt.Errorf("catalog: tile %s has negative weight", t.ID)
		}
	}
	for _, m := range c.clusters {
		center, ok := c.byID[m.Center]
		if !ok {
			return fmt.Errorf("%w: cluster %s centre %q", ErrUnknownTile, m.ID, m.Center)
		}
		for k, id := range m.Ring {
			if id == "" {
				continue
			}
			ring, ok := c.byID[id]
			if !ok {
				return fmt.Errorf("%w: cluster %s ring %d %q", ErrUnknownTile, m.ID, k, id)
			}
			if ring.Tier != center.Tier {
				return fmt.Errorf("catalog: cluster %s mixes tiers %d and %d", m.ID, center.Tier, ring.Tier)
			}
		}
	}
	return nil
}
