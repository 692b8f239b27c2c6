package catalog

import (
	"fmt"
	"os"
	"sort"

	"github.com/lawnchairsociety/hexwfc/internal/socket"
	"gopkg.in/yaml.v3"
)

// CatalogYAML is the authored catalog file.
type CatalogYAML struct {
	Tiles    map[string]*TileYAML    `yaml:"tiles"`
	Clusters map[string]*ClusterYAML `yaml:"clusters"`
}

// TileYAML is one tile as written in the catalog file.
type TileYAML struct {
	Tier          int                    `yaml:"tier"`
	Sides         []int                  `yaml:"sides"`
	Bottom        *int                   `yaml:"bottom"`
	Top           *int                   `yaml:"top"`
	SidePoints    map[int]map[string]int `yaml:"side_points,omitempty"`
	Corners       *CornersYAML           `yaml:"corners,omitempty"`
	Edgeable      bool                   `yaml:"edgeable"`
	Entrance      bool                   `yaml:"entrance"`
	ExteriorWall  bool                   `yaml:"exterior_wall"`
	Roofable      bool                   `yaml:"roofable"`
	ClusterRole   string                 `yaml:"cluster_role,omitempty"`
	ExcludeLayers []string               `yaml:"exclude_layers,omitempty"`
	Weight        float64                `yaml:"weight,omitempty"`
	Expands       bool                   `yaml:"expands,omitempty"`
}

// CornersYAML holds the four corner planes, twelve ids each.
type CornersYAML struct {
	Bottom     []int `yaml:"bottom"`
	Top        []int `yaml:"top"`
	SideBottom []int `yaml:"side_bottom"`
	SideTop    []int `yaml:"side_top"`
}

// ClusterYAML is one cluster tile as written in the catalog file.
type ClusterYAML struct {
	Center       string   `yaml:"center"`
	Ring         []string `yaml:"ring"`
	RingRotation []int    `yaml:"ring_rotation,omitempty"`
	Weight       float64  `yaml:"weight,omitempty"`
}

// LoadCatalogYAML loads and validates a catalog file.
func LoadCatalogYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalogYAML(data)
}

// ParseCatalogYAML parses and validates catalog YAML.
func ParseCatalogYAML(data []byte) (*Catalog, error) {
	var cy CatalogYAML
	if err := yaml.Unmarshal(data, &cy); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	cat, err := cy.ToCatalog()
	if err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// ToCatalog converts the YAML representation to a Catalog.
func (cy *CatalogYAML) ToCatalog() (*Catalog, error) {
	ids := make([]string, 0, len(cy.Tiles))
	for id := range cy.Tiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tiles := make([]*TileDefinition, 0, len(ids))
	for _, id := range ids {
		t, err := cy.Tiles[id].toTile(id)
		if err != nil {
			return nil, fmt.Errorf("tile %s: %w", id, err)
		}
		tiles = append(tiles, t)
	}

	clusters := make([]*ClusterTile, 0, len(cy.Clusters))
	for id, c := range cy.Clusters {
		m, err := c.toCluster(id)
		if err != nil {
			return nil, fmt.Errorf("cluster %s: %w", id, err)
		}
		clusters = append(clusters, m)
	}
	return New(tiles, clusters)
}

func (ty *TileYAML) toTile(id string) (*TileDefinition, error) {
	t := &TileDefinition{
		ID:           id,
		Tier:         ty.Tier,
		Bottom:       socket.UnassignedID,
		Top:          socket.UnassignedID,
		Edgeable:     ty.Edgeable,
		Entrance:     ty.Entrance,
		ExteriorWall: ty.ExteriorWall,
		Roofable:     ty.Roofable,
		Weight:       ty.Weight,
		Expands:      ty.Expands,
	}

	// Missing sides stay unassigned and are reported by Validate.
	for s := range t.Sides {
		t.Sides[s] = socket.UnassignedID
	}
	if len(ty.Sides) > 0 && len(ty.Sides) != socket.SideCount {
		return nil, fmt.Errorf("sides: want %d ids, got %d", socket.SideCount, len(ty.Sides))
	}
	copy(t.Sides[:], ty.Sides)
	if ty.Bottom != nil {
		t.Bottom = *ty.Bottom
	}
	if ty.Top != nil {
		t.Top = *ty.Top
	}

	for side, pts := range ty.SidePoints {
		if side < 0 || side >= socket.SideCount {
			return nil, fmt.Errorf("side_points: invalid side %d", side)
		}
		m := make(map[socket.PointKey]int, len(pts))
		for key, sid := range pts {
			pk, err := socket.ParsePointKey(key)
			if err != nil {
				return nil, err
			}
			m[pk] = sid
		}
		t.SidePoints[side] = m
	}

	if ty.Corners != nil {
		b, err := ty.Corners.toBundle()
		if err != nil {
			return nil, err
		}
		t.Corners = &b
	}

	role, err := ParseClusterRole(ty.ClusterRole)
	if err != nil {
		return nil, err
	}
	t.ClusterRole = role

	for _, s := range ty.ExcludeLayers {
		st, err := ParseLayerState(s)
		if err != nil {
			return nil, err
		}
		t.ExcludeLayers = append(t.ExcludeLayers, st)
	}
	return t, nil
}

func (cy *CornersYAML) toBundle() (socket.CornerBundle, error) {
	var b socket.CornerBundle
	planes := []struct {
		name string
		src  []int
		dst  *socket.CornerSet
	}{
		{"bottom", cy.Bottom, &b.Bottom},
		{"top", cy.Top, &b.Top},
		{"side_bottom", cy.SideBottom, &b.SideBottom},
		{"side_top", cy.SideTop, &b.SideTop},
	}
	for _, p := range planes {
		if len(p.src) == 0 {
			continue
		}
		if len(p.src) != socket.CornerSlots {
			return b, fmt.Errorf("corners.%s: want %d ids, got %d", p.name, socket.CornerSlots, len(p.src))
		}
		copy(p.dst[:], p.src)
	}
	return b, nil
}

func (cy *ClusterYAML) toCluster(id string) (*ClusterTile, error) {
	if len(cy.Ring) > socket.SideCount {
		return nil, fmt.Errorf("ring: at most %d tiles, got %d", socket.SideCount, len(cy.Ring))
	}
	if len(cy.RingRotation) > socket.SideCount {
		return nil, fmt.Errorf("ring_rotation: at most %d values, got %d", socket.SideCount, len(cy.RingRotation))
	}
	m := &ClusterTile{ID: id, Center: cy.Center, Weight: cy.Weight}
	copy(m.Ring[:], cy.Ring)
	copy(m.RingRotation[:], cy.RingRotation)
	return m, nil
}
