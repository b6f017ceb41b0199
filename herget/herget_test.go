package herget_test

import (
	"math"
	"testing"

	"github.com/soniakeys/coord"

	"skytrack/astro"
	"skytrack/herget"
	"skytrack/kepler"
)

// syntheticOrbit builds a clean set of observations from a known
// two-body state, so Fit should recover it (approximately) from rough
// initial distance guesses.
func syntheticOrbit(t *testing.T) ([]herget.Observation, kepler.State) {
	t.Helper()
	gm := astro.U
	truth := kepler.State{
		MJD: 60000,
		Pos: coord.Cart{X: 2.0, Y: 0, Z: 0.1},
		Vel: coord.Cart{X: 0.002, Y: math.Sqrt(gm/2.0) * 0.999, Z: 0.0001},
	}
	var obs []herget.Observation
	observer := coord.Cart{X: -1, Y: 0, Z: 0} // fixed toy observer position, AU
	for i := 0; i < 5; i++ {
		mjd := truth.MJD + float64(i)*2
		s, err := kepler.Propagate(gm, truth, mjd, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		var geo coord.Cart
		geo.Sub(&s.Pos, &observer)
		r := math.Sqrt(geo.Square())
		geo.MulScalar(&geo, 1/r)
		obs = append(obs, herget.Observation{MJD: mjd, LOS: geo, Observer: observer})
	}
	return obs, truth
}

func TestFitRecoversSyntheticOrbit(t *testing.T) {
	obs, truth := syntheticOrbit(t)
	truthGeo := func(mjd float64) float64 {
		s, _ := kepler.Propagate(astro.U, truth, mjd, 0, 0)
		var g coord.Cart
		observer := obs[0].Observer
		g.Sub(&s.Pos, &observer)
		return math.Sqrt(g.Square())
	}
	rho0 := [2]float64{truthGeo(obs[0].MJD) * 0.9, truthGeo(obs[len(obs)-1].MJD) * 1.1}

	res, err := herget.Fit(obs, 0, len(obs)-1, rho0, herget.Config{GM: astro.U})
	if err != nil {
		t.Fatal(err)
	}
	if res.RMSAsec > 5.0 {
		t.Errorf("RMS residual too large: %v arcsec", res.RMSAsec)
	}
}

func TestFitRejectsDegenerateReferenceIndices(t *testing.T) {
	obs, _ := syntheticOrbit(t)
	_, err := herget.Fit(obs, 1, 1, [2]float64{1, 1}, herget.Config{GM: astro.U})
	if err == nil {
		t.Fatal("expected error for identical reference indices")
	}
}
