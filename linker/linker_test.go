package linker_test

import (
	"math"
	"testing"

	"github.com/soniakeys/coord"

	"skytrack/astro"
	"skytrack/linker"
)

// syntheticTracklets builds several tracklets consistent with the same
// circular heliocentric orbit, observed from a fixed toy observer, so
// that a single hypothesis near the true distance should cluster them
// together.
func syntheticTracklets(t *testing.T) ([]linker.TrackletObservation, float64) {
	t.Helper()
	gm := astro.U
	r := 2.2
	mjdRef := 60000.0
	observer := coord.Cart{X: -1, Y: 0, Z: 0}

	var trks []linker.TrackletObservation
	for i := 0; i < 4; i++ {
		theta := float64(i) * 0.02
		pos := coord.Cart{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: 0}
		var geo coord.Cart
		geo.Sub(&pos, &observer)
		rg := math.Sqrt(geo.Square())
		geo.MulScalar(&geo, 1/rg)
		ra, dec := astro.UnitToRADec(geo)

		theta2 := theta + 0.001
		pos2 := coord.Cart{X: r * math.Cos(theta2), Y: r * math.Sin(theta2), Z: 0}
		var geo2 coord.Cart
		geo2.Sub(&pos2, &observer)
		rg2 := math.Sqrt(geo2.Square())
		geo2.MulScalar(&geo2, 1/rg2)
		ra2, dec2 := astro.UnitToRADec(geo2)

		trks = append(trks, linker.TrackletObservation{
			TrackletIndex: i,
			MidMJD:        mjdRef + float64(i),
			MidRADeg:      ra,
			MidDecDeg:     dec,
			RA1:           ra, Dec1: dec, MJD1: mjdRef + float64(i),
			RA2: ra2, Dec2: dec2, MJD2: mjdRef + float64(i) + 0.02,
			Observer:      observer,
			ObsNight:      i,
			DetectionIdxs: []int{2 * i, 2*i + 1},
		})
	}
	return trks, r
}

func TestRunClustersConsistentHypothesis(t *testing.T) {
	trks, r := syntheticTracklets(t)
	hyps := []linker.Hypothesis{{R: r, RDot: 0, RDotDot: 0}}
	cfg := linker.Config{
		MJDref:         60000,
		ClustRad:       0.5,
		ClustChangeRad: 1.0,
		DBScanNpt:      2,
		MinGeoDist:     0.1,
		MaxGeoDist:     10,
		MaxVInf:        1,
		MinObsNights:   2,
		MinTimeSpan:    0,
	}
	clusters := linker.Run(trks, hyps, cfg)
	if len(clusters) == 0 {
		t.Fatal("expected at least one cluster for a consistent hypothesis")
	}
	if clusters[0].UniquePoints < cfg.DBScanNpt {
		t.Errorf("cluster below dbscan_npt: %d", clusters[0].UniquePoints)
	}
}

func TestQualityMetricNegativePowerOverride(t *testing.T) {
	p := linker.MetricParams{PtPow: -1, NightPow: 1, TimePow: 1, RMSPow: 1}
	m := linker.QualityMetric(5, 3, 10, 0.5, []int{2, 2, 1}, p)
	want := 2.0 * 2.0 * 1.0 * 10.0 / 0.5
	if math.Abs(m-want) > 1e-9 {
		t.Errorf("got %v, want %v", m, want)
	}
}
