package socket

import "sort"

// PairKey addresses one entry of the pair cache. Side is the face of the
// existing tile, in its own rotation frame, that the incoming tile touches.
type PairKey struct {
	Incoming string
	Existing string
	Side     int
}

// OffsetSet is a bit set of rotation offsets 0..5.
type OffsetSet uint8

// Has reports whether offset o is in the set.
func (s OffsetSet) Has(o int) bool { return s&(1<<uint(normRotation(o))) != 0 }

// With returns the set with offset o added.
func (s OffsetSet) With(o int) OffsetSet { return s | 1<<uint(normRotation(o)) }

// Offsets lists the offsets in ascending order.
func (s OffsetSet) Offsets() []int {
	out := make([]int, 0, SideCount)
	for o := 0; o < SideCount; o++ {
		if s.Has(o) {
			out = append(out, o)
		}
	}
	return out
}

// PairCache records, per ordered tile pair and side, which rotation offsets
// (incoming rotation minus existing rotation) are valid. A key that is
// present with an empty set means the pair never fits on that side.
type PairCache struct {
	CatalogHash string
	TileCount   int

	entries map[PairKey]OffsetSet
}

// NewPairCache returns an empty cache.
func NewPairCache() *PairCache {
	return &PairCache{entries: make(map[PairKey]OffsetSet)}
}

// Len returns the number of keys.
func (c *PairCache) Len() int { return len(c.entries) }

// Touch records the key without adding an offset.
func (c *PairCache) Touch(incoming, existing string, side int) {
	k := PairKey{incoming, existing, side}
	if _, ok := c.entries[k]; !ok {
		c.entries[k] = 0
	}
}

// Register adds one valid offset.
func (c *PairCache) Register(incoming, existing string, side, offset int) {
	k := PairKey{incoming, existing, side}
	c.entries[k] = c.entries[k].With(offset)
}

// RegisterMirrored adds the offset, then the flipped entry: the roles of the
// two tiles swap, the side becomes its opposite, and the offset is doubled.
func (c *PairCache) RegisterMirrored(incoming, existing string, side, offset int) {
	c.Register(incoming, existing, side, offset)
	c.Register(existing, incoming, OppositeFace(side), 2*offset)
}

// Lookup returns the offsets registered for a key.
func (c *PairCache) Lookup(incoming, existing string, side int) (OffsetSet, bool) {
	s, ok := c.entries[PairKey{incoming, existing, side}]
	return s, ok
}

// Compatible reports whether incoming at incomingRot may touch existing at
// existingRot on the given side. known is false when the cache has no entry
// and the caller has to fall back to socket profiles.
func (c *PairCache) Compatible(incoming, existing string, side, existingRot, incomingRot int) (ok, known bool) {
	s, found := c.entries[PairKey{incoming, existing, side}]
	if !found {
		return false, false
	}
	return s.Has(incomingRot - existingRot), true
}

// Keys returns every key in a stable order.
func (c *PairCache) Keys() []PairKey {
	out := make([]PairKey, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Incoming != b.Incoming {
			return a.Incoming < b.Incoming
		}
		if a.Existing != b.Existing {
			return a.Existing < b.Existing
		}
		return a.Side < b.Side
	})
	return out
}

// BuildPairCache computes the cache for every ordered pair of profiles from
// the ground-truth relation. Only upright orientations are covered.
func BuildPairCache(profiles map[string]*RotationSet, rel Relation) *PairCache {
	c := NewPairCache()
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, ex := range ids {
		existing := profiles[ex].At(0, false)
		for _, in := range ids {
			for side := 0; side < FaceCount; side++ {
				c.Touch(in, ex, side)
				for o := 0; o < SideCount; o++ {
					incoming := profiles[in].At(o, false)
					if FacesCompatible(rel, existing[side], incoming[OppositeFace(side)]) {
						c.Register(in, ex, side, o)
					}
				}
			}
		}
	}
	c.TileCount = len(ids)
	return c
}
