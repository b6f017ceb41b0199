package everhart_test

import (
	"math"
	"testing"

	"github.com/soniakeys/coord"

	"skytrack/astro"
	"skytrack/everhart"
)

func twoBodyOnly() *everhart.ForceModel {
	return &everhart.ForceModel{GMSun: astro.U}
}

func TestStepReversibleTwoBody(t *testing.T) {
	fm := twoBodyOnly()
	cfg := everhart.Config{StepDays: 5, HNum: 8}
	s0 := everhart.State{
		MJD: 60000,
		Pos: coord.Cart{X: 2.2, Y: 0, Z: 0},
		Vel: coord.Cart{X: 0, Y: math.Sqrt(astro.U / 2.2), Z: 0},
	}
	s1, err := everhart.Step(fm, cfg, s0)
	if err != nil {
		t.Fatal(err)
	}
	back, err := everhart.Step(fm, everhart.Config{StepDays: -5, HNum: 8}, s1)
	if err != nil {
		t.Fatal(err)
	}
	const auKm = 1.49597870700e8
	posTolAU := 10.0 / auKm // 10 km, loose bound for a polynomial-fit stand-in integrator
	dPos := math.Sqrt(math.Pow(back.Pos.X-s0.Pos.X, 2) + math.Pow(back.Pos.Y-s0.Pos.Y, 2) + math.Pow(back.Pos.Z-s0.Pos.Z, 2))
	if dPos > posTolAU {
		t.Errorf("step not reversible: delta %v AU, tol %v AU", dPos, posTolAU)
	}
}

func TestStepMatchesTwoBodyOverShortStep(t *testing.T) {
	fm := twoBodyOnly()
	cfg := everhart.Config{StepDays: 1, HNum: 8}
	s0 := everhart.State{
		MJD: 60000,
		Pos: coord.Cart{X: 1.5, Y: 0, Z: 0},
		Vel: coord.Cart{X: 0, Y: math.Sqrt(astro.U / 1.5), Z: 0},
	}
	s1, err := everhart.Step(fm, cfg, s0)
	if err != nil {
		t.Fatal(err)
	}
	r1 := math.Sqrt(s1.Pos.Square())
	if math.Abs(r1-1.5) > 1e-6 {
		t.Errorf("circular orbit radius drifted: got %v, want ~1.5", r1)
	}
}

func TestStepRejectsBadHNum(t *testing.T) {
	fm := twoBodyOnly()
	_, err := everhart.Step(fm, everhart.Config{StepDays: 1, HNum: 2}, everhart.State{MJD: 60000})
	if err == nil {
		t.Fatal("expected error for HNUM out of range")
	}
}
