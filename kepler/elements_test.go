package kepler_test

import (
	"math"
	"testing"

	"github.com/soniakeys/coord"

	"skytrack/kepler"
)

func TestElementsOfCircularOrbit(t *testing.T) {
	const gm = 2.9591220828559115e-4 // AU^3/day^2, solar GM
	r := 1.0
	v := math.Sqrt(gm / r)
	s := kepler.State{
		MJD: 60000,
		Pos: coord.Cart{X: r, Y: 0, Z: 0},
		Vel: coord.Cart{X: 0, Y: v, Z: 0},
	}
	el := kepler.ElementsOf(gm, s)
	if math.Abs(el.A-r) > 1e-6 {
		t.Errorf("a = %v, want %v", el.A, r)
	}
	if el.E > 1e-6 {
		t.Errorf("e = %v, want ~0", el.E)
	}
	if el.Incl > 1e-6 {
		t.Errorf("incl = %v, want ~0", el.Incl)
	}
}

func TestElementsOfInclinedOrbit(t *testing.T) {
	const gm = 2.9591220828559115e-4
	r := 1.0
	v := math.Sqrt(gm / r)
	incl := 30.0 * math.Pi / 180
	s := kepler.State{
		MJD: 60000,
		Pos: coord.Cart{X: r, Y: 0, Z: 0},
		Vel: coord.Cart{X: 0, Y: v * math.Cos(incl), Z: v * math.Sin(incl)},
	}
	el := kepler.ElementsOf(gm, s)
	if math.Abs(el.Incl-30.0) > 1e-4 {
		t.Errorf("incl = %v, want 30", el.Incl)
	}
}
