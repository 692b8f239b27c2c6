package hexgrid

import "math"

const (
	// TierRatio is the linear size ratio between adjacent tiers.
	TierRatio = 3
	// ChildCount is the number of child slots of a coarse cell: centre, six
	// ring cells and six corner-shared cells.
	ChildCount = 13
	// KeyTolerance is the snapping step applied before a position is
	// converted to a lookup key.
	KeyTolerance = 1e-4
)

var sqrt3 = math.Sqrt(3)

// TierSize returns the corner radius of a cell at the given tier.
func TierSize(base float64, tier int) float64 {
	return base * math.Pow(TierRatio, float64(tier))
}

// AxialToPixel converts axial to planar coordinates for pointy-top layout.
// size is the hex radius (corner to center).
func AxialToPixel(a Axial, size float64) Vec2 {
	return Vec2{
		X: size * sqrt3 * (float64(a.Q) + float64(a.R)/2.0),
		Y: size * 1.5 * float64(a.R),
	}
}

// pixelToFractional inverts AxialToPixel without rounding.
func pixelToFractional(p Vec2, size float64) (q, r float64) {
	q = (sqrt3/3*p.X - p.Y/3) / size
	r = (2.0 / 3.0 * p.Y) / size
	return q, r
}

// cubeRound rounds fractional axial coordinates to the nearest hex.
func cubeRound(fq, fr float64) Axial {
	fx, fz := fq, fr
	fy := -fx - fz
	rx, ry, rz := math.Round(fx), math.Round(fy), math.Round(fz)
	dx, dy, dz := math.Abs(rx-fx), math.Abs(ry-fy), math.Abs(rz-fz)
	if dx > dy && dx > dz {
		rx = -ry - rz
	} else if dy > dz {
		ry = -rx - rz
	} else {
		rz = -rx - ry
	}
	return Axial{Q: int(rx), R: int(rz)}
}

// Snap rounds v to the nearest multiple of tol.
func Snap(v, tol float64) float64 {
	if tol <= 0 {
		return v
	}
	return math.Round(v/tol) * tol
}

// LookupKey maps a continuous position to the axial coordinate of the cell
// containing it at the given tier. The position is snapped to KeyTolerance
// first so the key does not depend on floating-point evaluation order.
func LookupKey(p Vec2, tier int, base float64) Axial {
	snapped := Vec2{Snap(p.X, KeyTolerance), Snap(p.Y, KeyTolerance)}
	q, r := pixelToFractional(snapped, TierSize(base, tier))
	return cubeRound(q, r)
}

// sideAngle returns the direction of side k in radians. Side 0 points along
// +X and sides advance clockwise in a Y-down frame.
func sideAngle(k int) float64 {
	return -float64(k%SideCount) * math.Pi / 3
}

// Corners returns the six corner positions. Corner k lies between side k and
// side k+1.
func Corners(center Vec2, size float64) [SideCount]Vec2 {
	var out [SideCount]Vec2
	for k := 0; k < SideCount; k++ {
		a := sideAngle(k) - math.Pi/6
		out[k] = Vec2{center.X + size*math.Cos(a), center.Y + size*math.Sin(a)}
	}
	return out
}

// SideMidpoints returns the midpoint of each side edge.
func SideMidpoints(center Vec2, size float64) [SideCount]Vec2 {
	var out [SideCount]Vec2
	inner := size * sqrt3 / 2
	for k := 0; k < SideCount; k++ {
		a := sideAngle(k)
		out[k] = Vec2{center.X + inner*math.Cos(a), center.Y + inner*math.Sin(a)}
	}
	return out
}

// SideNeighborCenters returns the centre of the neighboring cell on each side.
func SideNeighborCenters(center Vec2, size float64) [SideCount]Vec2 {
	var out [SideCount]Vec2
	step := size * sqrt3
	for k := 0; k < SideCount; k++ {
		a := sideAngle(k)
		out[k] = Vec2{center.X + step*math.Cos(a), center.Y + step*math.Sin(a)}
	}
	return out
}

// SideFromDelta returns the side whose direction is closest to d.
func SideFromDelta(d Vec2) int {
	angle := math.Atan2(d.Y, d.X)
	k := int(math.Round(-angle/(math.Pi/3))) % SideCount
	if k < 0 {
		k += SideCount
	}
	return k
}

// ChildCoords returns the expected child coordinates at the next finer tier.
// Index 0 is the centre, 1..6 the ring (side k at index 1+k) and 7..12 the
// cells sitting on the parent's corners (corner k at index 7+k).
func ChildCoords(parent Axial) [ChildCount]Axial {
	var out [ChildCount]Axial
	c := parent.Mul(TierRatio)
	out[0] = c
	for k := 0; k < SideCount; k++ {
		out[1+k] = c.Add(Directions[k])
		out[7+k] = c.Add(Directions[k]).Add(Directions[(k+1)%SideCount])
	}
	return out
}

// IsCornerChild reports whether child slot i is shared with other parents.
func IsCornerChild(i int) bool { return i >= 7 }

// Ring returns the axial coordinates at exact distance k from center c.
// If k==0, returns [c].
func Ring(c Axial, k int) []Axial {
	if k == 0 {
		return []Axial{c}
	}
	res := make([]Axial, 0, 6*k)
	cur := c.Add(Directions[4].Mul(k))
	for side := 0; side < SideCount; side++ {
		for step := 0; step < k; step++ {
			res = append(res, cur)
			cur = cur.Add(Directions[side])
		}
	}
	return res
}

// Disk returns all axial coordinates at distance <= r from center c, ring by
// ring starting at the centre.
func Disk(c Axial, r int) []Axial {
	res := make([]Axial, 0, 1+3*r*(r+1))
	for k := 0; k <= r; k++ {
		res = append(res, Ring(c, k)...)
	}
	return res
}
