package purify_test

import (
	"math"
	"testing"

	"github.com/soniakeys/coord"

	"skytrack/astro"
	"skytrack/everhart"
	"skytrack/kepler"
	"skytrack/linker"
	"skytrack/purify"
)

func syntheticCluster(t *testing.T, nBad int) []purify.CandidateObservation {
	t.Helper()
	gm := astro.U
	truth := kepler.State{
		MJD: 60000,
		Pos: coord.Cart{X: 2.1, Y: 0, Z: 0.02},
		Vel: coord.Cart{X: 0.0005, Y: math.Sqrt(gm / 2.1), Z: 0},
	}
	observer := coord.Cart{X: -1, Y: 0, Z: 0}
	var obs []purify.CandidateObservation
	for i := 0; i < 6; i++ {
		mjd := truth.MJD + float64(i)*1.5
		s, err := kepler.Propagate(gm, truth, mjd, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		var geo coord.Cart
		geo.Sub(&s.Pos, &observer)
		r := math.Sqrt(geo.Square())
		geo.MulScalar(&geo, 1/r)
		ra, dec := astro.UnitToRADec(geo)
		if i < nBad {
			ra += 5.0 // gross outlier, degrees
		}
		obs = append(obs, purify.CandidateObservation{
			DetectionIdx: i, MJD: mjd, RA: ra, Dec: dec, Observer: observer, SigAsec: 1, Night: i,
		})
	}
	return obs
}

func TestRunRejectsOutliersAndConverges(t *testing.T) {
	obs := syntheticCluster(t, 1)
	clusters := []linker.Cluster{{HypothesisIndex: 0, Members: []int{0}}}
	cfg := purify.Config{
		MaxAstromRMS: 2.0,
		RejFrac:      0.5,
		MaxRejNum:    2,
		MinObsNights: 3,
		MinPointNum:  4,
		Force:        &everhart.ForceModel{GMSun: astro.U},
		StepDays:     1,
		HNum:         8,
	}
	out := purify.Run(clusters, func(int) []purify.CandidateObservation { return obs }, cfg)
	if len(out) != 1 {
		t.Fatalf("expected 1 surviving cluster, got %d", len(out))
	}
	if len(out[0].Observations) >= len(obs) {
		t.Errorf("expected at least one rejection, kept all %d observations", len(out[0].Observations))
	}
}

func TestRunDropsUndersizedClusters(t *testing.T) {
	obs := syntheticCluster(t, 0)[:2]
	clusters := []linker.Cluster{{HypothesisIndex: 0, Members: []int{0}}}
	cfg := purify.Config{
		MaxAstromRMS: 2.0,
		RejFrac:      0.5,
		MaxRejNum:    1,
		MinObsNights: 3,
		MinPointNum:  4,
		Force:        &everhart.ForceModel{GMSun: astro.U},
		StepDays:     1,
		HNum:         8,
	}
	out := purify.Run(clusters, func(int) []purify.CandidateObservation { return obs }, cfg)
	if len(out) != 0 {
		t.Errorf("expected undersized cluster to be dropped, got %d survivors", len(out))
	}
}
