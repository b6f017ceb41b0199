package kepler_test

import (
	"math"
	"testing"

	"github.com/soniakeys/coord"

	"skytrack/astro"
	"skytrack/kepler"
)

func TestPropagateReversible(t *testing.T) {
	gm := astro.U // AU^3/day^2
	// A roughly circular 2.5 AU orbit.
	s0 := kepler.State{
		MJD: 60000,
		Pos: coord.Cart{X: 2.5, Y: 0, Z: 0},
		Vel: coord.Cart{X: 0, Y: math.Sqrt(gm / 2.5), Z: 0},
	}
	s1, err := kepler.Propagate(gm, s0, 60010, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	back, err := kepler.Propagate(gm, s1, 60000, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	// 1 m in position (AU), 1 mm/s in velocity (AU/day).
	const auKm = 1.49597870700e8
	posTolAU := 1e-3 / auKm
	velTolAUperDay := 1e-6 / auKm * 86400

	dPos := math.Sqrt(math.Pow(back.Pos.X-s0.Pos.X, 2) + math.Pow(back.Pos.Y-s0.Pos.Y, 2) + math.Pow(back.Pos.Z-s0.Pos.Z, 2))
	dVel := math.Sqrt(math.Pow(back.Vel.X-s0.Vel.X, 2) + math.Pow(back.Vel.Y-s0.Vel.Y, 2) + math.Pow(back.Vel.Z-s0.Vel.Z, 2))

	if dPos > posTolAU {
		t.Errorf("position not reversible: delta %v AU, tol %v AU", dPos, posTolAU)
	}
	if dVel > velTolAUperDay {
		t.Errorf("velocity not reversible: delta %v AU/day, tol %v AU/day", dVel, velTolAUperDay)
	}
}

func TestPropagateNoOpAtSameEpoch(t *testing.T) {
	gm := astro.U
	s0 := kepler.State{MJD: 60000, Pos: coord.Cart{X: 1, Y: 0, Z: 0}, Vel: coord.Cart{X: 0, Y: 0.017, Z: 0}}
	s1, err := kepler.Propagate(gm, s0, 60000, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s1.Pos != s0.Pos || s1.Vel != s0.Vel {
		t.Fatalf("expected no-op propagation, got %+v", s1)
	}
}
