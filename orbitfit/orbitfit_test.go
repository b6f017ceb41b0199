package orbitfit_test

import (
	"math"
	"testing"

	"github.com/soniakeys/coord"

	"skytrack/astro"
	"skytrack/everhart"
	"skytrack/orbitfit"
)

func observe(t *testing.T, fm *everhart.ForceModel, s0 everhart.State, mjd float64, observer coord.Cart) orbitfit.Observation {
	t.Helper()
	step := everhart.Config{StepDays: mjd - s0.MJD, HNum: 8}
	st, err := everhart.Step(fm, step, s0)
	if err != nil {
		t.Fatal(err)
	}
	var geo coord.Cart
	geo.Sub(&st.Pos, &observer)
	r := math.Sqrt(geo.Square())
	geo.MulScalar(&geo, 1/r)
	ra, dec := astro.UnitToRADec(geo)
	return orbitfit.Observation{MJD: mjd, RA: ra, Dec: dec, Observer: observer, SigAsec: 1}
}

func TestRefineConvergesFromNearbyGuess(t *testing.T) {
	fm := &everhart.ForceModel{GMSun: astro.U}
	truth := everhart.State{
		MJD: 60000,
		Pos: coord.Cart{X: 1.8, Y: 0, Z: 0.05},
		Vel: coord.Cart{X: 0.001, Y: math.Sqrt(astro.U / 1.8), Z: 0},
	}
	observer := coord.Cart{X: -1, Y: 0, Z: 0}

	var obs []orbitfit.Observation
	for _, mjd := range []float64{60000, 60002, 60004, 60006, 60008} {
		obs = append(obs, observe(t, fm, truth, mjd, observer))
	}

	guess := truth
	guess.Pos.X += 0.01
	guess.Vel.Y *= 1.002

	res, err := orbitfit.Refine(obs, guess, orbitfit.Config{Force: fm, StepDays: 1, HNum: 8})
	if err != nil {
		t.Fatal(err)
	}
	if res.RMSAsec > 1.0 {
		t.Errorf("RMS residual too large after refinement: %v arcsec", res.RMSAsec)
	}
}

func TestRefineRejectsNilForceModel(t *testing.T) {
	_, err := orbitfit.Refine(nil, everhart.State{}, orbitfit.Config{})
	if err == nil {
		t.Fatal("expected error for nil force model")
	}
}
