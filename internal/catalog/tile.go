// Package catalog holds the placeable tile definitions and the multi-cell
// cluster tiles, and filters them for the solver.
package catalog

import (
	"fmt"

	"github.com/lawnchairsociety/hexwfc/internal/socket"
)

// ClusterRole marks tiles that may only be placed as part of a cluster tile.
type ClusterRole int

const (
	RoleNone ClusterRole = iota
	RoleCenter
	RoleMember
)

// String returns the string representation of a ClusterRole
func (r ClusterRole) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleCenter:
		return "center"
	case RoleMember:
		return "member"
	default:
		return "unknown"
	}
}

// ParseClusterRole converts a string to a ClusterRole
func ParseClusterRole(s string) (ClusterRole, error) {
	switch s {
	case "", "none":
		return RoleNone, nil
	case "center":
		return RoleCenter, nil
	case "member":
		return RoleMember, nil
	default:
		return RoleNone, fmt.Errorf("unknown cluster role %q", s)
	}
}

// LayerState describes where in a vertical stack a cell sits.
type LayerState int

const (
	LayerSingle LayerState = iota // nothing above or below
	LayerGround                   // something above, nothing below
	LayerMiddle                   // something above and below
	LayerTop                      // something below, nothing above
)

// String returns the string representation of a LayerState
func (s LayerState) String() string {
	switch s {
	case LayerSingle:
		return "single"
	case LayerGround:
		return "ground"
	case LayerMiddle:
		return "middle"
	case LayerTop:
		return "top"
	default:
		return "unknown"
	}
}

// ParseLayerState converts a string to a LayerState
func ParseLayerState(s string) (LayerState, error) {
	switch s {
	case "single":
		return LayerSingle, nil
	case "ground":
		return LayerGround, nil
	case "middle":
		return LayerMiddle, nil
	case "top":
		return LayerTop, nil
	default:
		return LayerSingle, fmt.Errorf("unknown layer state %q", s)
	}
}

// StateOf derives the layer state from the presence of layer neighbors.
func StateOf(hasBelow, hasAbove bool) LayerState {
	switch {
	case hasBelow && hasAbove:
		return LayerMiddle
	case hasAbove:
		return LayerGround
	case hasBelow:
		return LayerTop
	default:
		return LayerSingle
	}
}

// TileDefinition is one placeable tile, authored at rotation 0.
type TileDefinition struct {
	ID   string
	Tier int

	Sides  [socket.SideCount]int
	Bottom int
	Top    int
	// SidePoints optionally subdivides a side face. A non-empty entry
	// replaces the scalar id of that side.
	SidePoints [socket.SideCount]map[socket.PointKey]int
	Corners    *socket.CornerBundle

	Edgeable      bool
	Entrance      bool
	ExteriorWall  bool
	Roofable      bool
	ClusterRole   ClusterRole
	ExcludeLayers []LayerState
	Weight        float64
	// Expands marks tiles that are solved again over their finer-tier
	// children once placed.
	Expands bool
}

// Profile builds the face table at rotation 0.
func (t *TileDefinition) Profile() socket.Profile {
	p := socket.NewScalarProfile(t.Sides, t.Bottom, t.Top)
	for s, pts := range t.SidePoints {
		if len(pts) > 0 {
			p[s] = socket.MultiPoint(pts)
		}
	}
	return p
}

// EffectiveWeight returns the pick weight, 1 when unset.
func (t *TileDefinition) EffectiveWeight() float64 {
	if t.Weight <= 0 {
		return 1
	}
	return t.Weight
}

// ExcludedOn reports whether the tile may not be placed at state.
func (t *TileDefinition) ExcludedOn(state LayerState) bool {
	for _, s := range t.ExcludeLayers {
		if s == state {
			return true
		}
	}
	return false
}

// hasProfile reports whether every face carries an authored socket.
func (t *TileDefinition) hasProfile() bool {
	for s, id := range t.Sides {
		if id < 0 && len(t.SidePoints[s]) == 0 {
			return false
		}
	}
	return t.Bottom >= 0 && t.Top >= 0
}

// maxSocket returns the largest socket id the tile references.
func (t *TileDefinition) maxSocket() int {
	m := t.Bottom
	if t.Top > m {
		m = t.Top
	}
	for s, id := range t.Sides {
		if id > m {
			m = id
		}
		for _, pid := range t.SidePoints[s] {
			if pid > m {
				m = pid
			}
		}
	}
	if t.Corners != nil {
		for _, set := range []socket.CornerSet{t.Corners.Bottom, t.Corners.Top, t.Corners.SideBottom, t.Corners.SideTop} {
			for _, id := range set {
				if id > m {
					m = id
				}
			}
		}
	}
	return m
}

// ClusterTile is a multi-cell tile covering a centre cell and up to six ring
// cells. Ring slot k sits on side k of the centre at cluster rotation 0.
type ClusterTile struct {
	ID     string
	Center string
	Ring   [socket.SideCount]string
	// RingRotation is each ring tile's rotation relative to the cluster.
	RingRotation [socket.SideCount]int
	Weight       float64
}

// CellCount returns the number of cells the tile covers.
func (m *ClusterTile) CellCount() int {
	n := 1
	for _, id := range m.Ring {
		if id != "" {
			n++
		}
	}
	return n
}

// EffectiveWeight returns the pick weight, 1 when unset.
func (m *ClusterTile) EffectiveWeight() float64 {
	if m.Weight <= 0 {
		return 1
	}
	return m.Weight
}
