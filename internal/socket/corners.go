package socket

// CornerSlots is the number of perimeter sockets in one corner plane: even
// slot 2k is corner k, odd slot 2k+1 is the midpoint of side k.
const CornerSlots = 12

// CornerSet is one plane of perimeter sockets.
type CornerSet [CornerSlots]int

// Rotate returns the set turned by r side steps.
func (c CornerSet) Rotate(r int) CornerSet {
	shift := 2 * normRotation(r)
	if shift == 0 {
		return c
	}
	var out CornerSet
	for i, id := range c {
		out[(i+shift)%CornerSlots] = id
	}
	return out
}

// Mirror returns the set reflected across the axis through side 0 and
// side 3. Corner k maps to corner 5-k, side k to side -k.
func (c CornerSet) Mirror() CornerSet {
	var out CornerSet
	for k := 0; k < SideCount; k++ {
		out[2*((SideCount-1-k+SideCount)%SideCount)] = c[2*k]
		out[2*((SideCount-k)%SideCount)+1] = c[2*k+1]
	}
	return out
}

// IsZero reports whether no socket is set.
func (c CornerSet) IsZero() bool { return c == CornerSet{} }

// CornerBundle holds the four corner planes of a tile.
type CornerBundle struct {
	Bottom     CornerSet `json:"bottom" yaml:"bottom"`
	Top        CornerSet `json:"top" yaml:"top"`
	SideBottom CornerSet `json:"side_bottom" yaml:"side_bottom"`
	SideTop    CornerSet `json:"side_top" yaml:"side_top"`
}

// Rotate turns every plane by r side steps.
func (b CornerBundle) Rotate(r int) CornerBundle {
	return CornerBundle{
		Bottom:     b.Bottom.Rotate(r),
		Top:        b.Top.Rotate(r),
		SideBottom: b.SideBottom.Rotate(r),
		SideTop:    b.SideTop.Rotate(r),
	}
}

// Mirror reflects every plane.
func (b CornerBundle) Mirror() CornerBundle {
	return CornerBundle{
		Bottom:     b.Bottom.Mirror(),
		Top:        b.Top.Mirror(),
		SideBottom: b.SideBottom.Mirror(),
		SideTop:    b.SideTop.Mirror(),
	}
}

// Invert turns the bundle upside down.
func (b CornerBundle) Invert() CornerBundle {
	return CornerBundle{
		Bottom:     b.Top,
		Top:        b.Bottom,
		SideBottom: b.SideTop,
		SideTop:    b.SideBottom,
	}
}

// Orient applies inversion, then rotation.
func (b CornerBundle) Orient(rotation int, inverted bool) CornerBundle {
	if inverted {
		b = b.Invert()
	}
	return b.Rotate(rotation)
}

// VerticalCompatible reports whether upper may sit on lower, both already
// oriented. Every slot of lower's top plane must match upper's bottom plane,
// and the side planes likewise.
func VerticalCompatible(rel Relation, lower, upper CornerBundle) bool {
	for i := 0; i < CornerSlots; i++ {
		if !rel.Compatible(lower.Top[i], upper.Bottom[i]) {
			return false
		}
		if !rel.Compatible(lower.SideTop[i], upper.SideBottom[i]) {
			return false
		}
	}
	return true
}
