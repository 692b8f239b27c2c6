package socket

// Profile is the full face table of a tile: six sides, then bottom and top.
type Profile [FaceCount]Face

// NewScalarProfile builds a profile from six side ids and the vertical ids.
func NewScalarProfile(sides [SideCount]int, bottom, top int) Profile {
	var p Profile
	for k, id := range sides {
		p[k] = Scalar(id)
	}
	p[FaceBottom] = Scalar(bottom)
	p[FaceTop] = Scalar(top)
	return p
}

func normRotation(r int) int {
	return ((r % SideCount) + SideCount) % SideCount
}

// Rotate returns the profile turned by r side steps: the face now at side s
// is the authored face of side s-r. Top and bottom stay where they are.
func (p Profile) Rotate(r int) Profile {
	r = normRotation(r)
	if r == 0 {
		return p
	}
	var out Profile
	for s := 0; s < SideCount; s++ {
		out[s] = p[normRotation(s-r)]
	}
	out[FaceBottom] = p[FaceBottom]
	out[FaceTop] = p[FaceTop]
	return out
}

// Invert returns the profile turned upside down. Sides keep their index,
// their sub-face points flip vertically, and bottom and top swap.
func (p Profile) Invert() Profile {
	var out Profile
	for s := 0; s < SideCount; s++ {
		out[s] = p[s].Flipped()
	}
	out[FaceBottom] = p[FaceTop].Flipped()
	out[FaceTop] = p[FaceBottom].Flipped()
	return out
}

// Equal reports whether two profiles carry the same faces.
func (p Profile) Equal(o Profile) bool {
	for f := range p {
		if !p[f].Equal(o[f]) {
			return false
		}
	}
	return true
}

// IsMulti reports whether any face is subdivided.
func (p Profile) IsMulti() bool {
	for _, f := range p {
		if f.IsMulti() {
			return true
		}
	}
	return false
}

// RotationSet memoizes every rotation of a profile, upright and inverted.
type RotationSet struct {
	upright  [SideCount]Profile
	inverted [SideCount]Profile
}

// NewRotationSet precomputes the twelve orientations of base.
func NewRotationSet(base Profile) *RotationSet {
	rs := &RotationSet{}
	inv := base.Invert()
	for r := 0; r < SideCount; r++ {
		rs.upright[r] = base.Rotate(r)
		rs.inverted[r] = inv.Rotate(r)
	}
	return rs
}

// At returns the profile at the given orientation.
func (rs *RotationSet) At(rotation int, inverted bool) Profile {
	r := normRotation(rotation)
	if inverted {
		return rs.inverted[r]
	}
	return rs.upright[r]
}

// Base returns the authored profile.
func (rs *RotationSet) Base() Profile { return rs.upright[0] }
