package kepler

import (
	"math"

	"github.com/soniakeys/coord"
)

// Elements is the classic orbital element triple: semi-major axis in
// the same length unit as State.Pos, eccentricity, and inclination in
// degrees.
type Elements struct {
	A    float64
	E    float64
	Incl float64
}

// ElementsOf derives (a, e, incl) from a Cartesian state under two-body
// gravity parameter gm, via the angular-momentum/vis-viva route standard
// to orbit determination.
func ElementsOf(gm float64, s State) Elements {
	r := s.Pos
	v := s.Vel
	rMag := math.Sqrt(r.Square())
	vSq := v.Square()

	var h coord.Cart
	h.Cross(&r, &v)
	hMag := math.Sqrt(h.Square())

	a := 1 / (2/rMag - vSq/gm)

	eSq := 1 - hMag*hMag/(gm*a)
	if eSq < 0 {
		eSq = 0
	}
	e := math.Sqrt(eSq)

	incl := 0.0
	if hMag > 0 {
		incl = math.Acos(clamp(h.Z/hMag, -1, 1)) * 180 / math.Pi
	}
	return Elements{A: a, E: e, Incl: incl}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
