package detio

import (
	"math"

	"github.com/soniakeys/coord"

	"skytrack/astro"
	"skytrack/kdtree"
)

// LabelPoint is one row of a labeling file: a known position with its
// provenance identifier, used to (re-)label an unlabeled detection file.
type LabelPoint struct {
	MJD      float64
	RA, Dec  float64
	IDString string
}

// LabelConfig tunes Label, grounded directly on label_hldet.cpp's
// command-line options.
type LabelConfig struct {
	MatchRadAsec  float64 // match radius, arcsec
	TimeOffsetSec float64 // added to labeling MJDs before matching
	DayToDegConv  float64 // day-to-degree scale unifying the time axis; 0 selects 24.0 (one sec of time ~ one arcsec on sky)
}

// Label rewrites IDString (KnownObj is left untouched) on detections in
// dets: for each point in labels, after adding cfg.TimeOffsetSec to its
// MJD, the nearest detection within cfg.MatchRadAsec takes that point's
// IDString. When several labeling points pick the same detection, the
// last one processed wins. Detections with no match are returned
// unchanged, so the output always has the same row count as the input.
//
// dets is built into a 4-d k-d tree (time, unit vector) and each
// labeling point is a range query against it, since dets is normally the
// larger of the two sets.
func Label(dets []Detection, labels []LabelPoint, cfg LabelConfig) []Detection {
	out := append([]Detection(nil), dets...)
	if len(dets) == 0 || len(labels) == 0 {
		return out
	}
	dayToDeg := cfg.DayToDegConv
	if dayToDeg <= 0 {
		dayToDeg = 24.0
	}
	matchRadDeg := cfg.MatchRadAsec / 3600
	// The range query radius is expressed in the same unified
	// (unit-vector-chord, time) metric as Build4/Query4.
	radRad := matchRadDeg * math.Pi / 180

	mjds := make([]float64, len(dets))
	unitVecs := make([]coord.Cart, len(dets))
	for i, d := range dets {
		mjds[i] = d.MJD
		unitVecs[i] = d.Unit()
	}
	tree := kdtree.Build4(mjds, unitVecs, dayToDeg)

	offsetDays := cfg.TimeOffsetSec / SolarDay
	for _, lp := range labels {
		u := astro.RADecToUnit(lp.RA, lp.Dec)
		q := kdtree.Query4(lp.MJD+offsetDays, u, dayToDeg)
		cand := tree.RangeQuery(q, radRad)
		if len(cand) == 0 {
			continue
		}
		best, bestDist := -1, math.MaxFloat64
		for _, ci := range cand {
			d := astro.AngularDistance(out[ci].RA, out[ci].Dec, lp.RA, lp.Dec)
			if d < bestDist {
				best, bestDist = ci, d
			}
		}
		if best >= 0 {
			out[best].IDString = lp.IDString
		}
	}
	return out
}
