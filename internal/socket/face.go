// Package socket holds the face compatibility model of tiles: socket ids,
// per-face profiles, corner socket bundles, the scalar compatibility matrix
// and the tile-pair rotation offset cache.
package socket

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// EdgeID is the socket id seen on a face that has no neighbor.
	EdgeID = 0
	// UnassignedID marks a face whose neighbor exists but holds no tile.
	UnassignedID = -1
)

const (
	SideCount  = 6
	FaceBottom = 6
	FaceTop    = 7
	FaceCount  = 8
)

// OppositeFace returns the face that meets f on the neighbor.
func OppositeFace(f int) int {
	switch f {
	case FaceBottom:
		return FaceTop
	case FaceTop:
		return FaceBottom
	}
	return (f + 3) % SideCount
}

// PointKey identifies one sub-face lookup point. U runs along the face from
// left to right as seen from outside the tile, V runs up the face.
type PointKey struct {
	U, V int
}

// Mirror returns the key as seen from the facing neighbor.
func (k PointKey) Mirror() PointKey { return PointKey{U: -k.U, V: k.V} }

// FlipV returns the key after the tile is turned upside down.
func (k PointKey) FlipV() PointKey { return PointKey{U: k.U, V: -k.V} }

func (k PointKey) String() string { return fmt.Sprintf("%d,%d", k.U, k.V) }

// ParsePointKey parses the "u,v" form produced by String.
func ParsePointKey(s string) (PointKey, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return PointKey{}, fmt.Errorf("socket: invalid point key %q", s)
	}
	u, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return PointKey{}, fmt.Errorf("socket: invalid point key %q: %w", s, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return PointKey{}, fmt.Errorf("socket: invalid point key %q: %w", s, err)
	}
	return PointKey{U: u, V: v}, nil
}

// Face is the connection contract of one tile face: either a single scalar
// socket id, or a map of sub-face points to socket ids for subdivided seams.
type Face struct {
	ID     int
	Points map[PointKey]int
}

// Scalar returns a single-socket face.
func Scalar(id int) Face { return Face{ID: id} }

// MultiPoint returns a subdivided face. The map is copied.
func MultiPoint(points map[PointKey]int) Face {
	cp := make(map[PointKey]int, len(points))
	for k, v := range points {
		cp[k] = v
	}
	return Face{ID: UnassignedID, Points: cp}
}

// IsMulti reports whether the face is subdivided.
func (f Face) IsMulti() bool { return len(f.Points) > 0 }

// IsEdge reports whether every socket on the face is the edge socket.
func (f Face) IsEdge() bool {
	if !f.IsMulti() {
		return f.ID == EdgeID
	}
	for _, id := range f.Points {
		if id != EdgeID {
			return false
		}
	}
	return true
}

// Mirrored returns the face as the facing neighbor sees it.
func (f Face) Mirrored() Face {
	if !f.IsMulti() {
		return f
	}
	out := Face{ID: f.ID, Points: make(map[PointKey]int, len(f.Points))}
	for k, v := range f.Points {
		out.Points[k.Mirror()] = v
	}
	return out
}

// Flipped returns the face turned upside down.
func (f Face) Flipped() Face {
	if !f.IsMulti() {
		return f
	}
	out := Face{ID: f.ID, Points: make(map[PointKey]int, len(f.Points))}
	for k, v := range f.Points {
		out.Points[k.FlipV()] = v
	}
	return out
}

// Keys returns the point keys in a stable order.
func (f Face) Keys() []PointKey {
	keys := make([]PointKey, 0, len(f.Points))
	for k := range f.Points {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].V != keys[j].V {
			return keys[i].V < keys[j].V
		}
		return keys[i].U < keys[j].U
	})
	return keys
}

// Equal reports whether two faces carry the same sockets.
func (f Face) Equal(o Face) bool {
	if f.IsMulti() != o.IsMulti() {
		return false
	}
	if !f.IsMulti() {
		return f.ID == o.ID
	}
	if len(f.Points) != len(o.Points) {
		return false
	}
	for k, v := range f.Points {
		if w, ok := o.Points[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func (f Face) String() string {
	if !f.IsMulti() {
		return strconv.Itoa(f.ID)
	}
	parts := make([]string, 0, len(f.Points))
	for _, k := range f.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%d", k, f.Points[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Relation decides whether two socket ids may meet.
type Relation interface {
	Compatible(a, b int) bool
}

// FacesCompatible reports whether face a may touch face b. Two subdivided
// faces must cover the same points once b is mirrored, and each point pair
// must be compatible. A subdivided face against a scalar face requires every
// point to be compatible with the scalar socket.
func FacesCompatible(rel Relation, a, b Face) bool {
	switch {
	case !a.IsMulti() && !b.IsMulti():
		return rel.Compatible(a.ID, b.ID)
	case a.IsMulti() && b.IsMulti():
		if len(a.Points) != len(b.Points) {
			return false
		}
		for k, id := range a.Points {
			other, ok := b.Points[k.Mirror()]
			if !ok || !rel.Compatible(id, other) {
				return false
			}
		}
		return true
	case a.IsMulti():
		for _, id := range a.Points {
			if !rel.Compatible(id, b.ID) {
				return false
			}
		}
		return true
	default:
		for _, id := range b.Points {
			if !rel.Compatible(a.ID, id) {
				return false
			}
		}
		return true
	}
}

// EdgeCompatible reports whether f may face the outside of the grid. A face
// authored with the edge socket always may, even if the relation does not
// list the edge socket.
func EdgeCompatible(rel Relation, f Face) bool {
	if f.IsEdge() {
		return true
	}
	return FacesCompatible(rel, f, Scalar(EdgeID))
}
