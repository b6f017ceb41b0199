// Public domain.

// Package linker assembles tracklets into candidate heliocentric
// linkages by sweeping a set of radial-motion hypotheses, propagating
// each tracklet's implied 3D position and velocity to a common reference
// epoch, and clustering the results with a DBSCAN-style search over a
// 3D k-d tree.
package linker

import (
	"math"
	"sort"

	"github.com/soniakeys/coord"

	"skytrack/astro"
	"skytrack/detio"
	"skytrack/kdtree"
	"skytrack/kepler"
)

// Hypothesis is a chosen heliocentric distance, radial velocity and
// radial acceleration at the reference epoch.
type Hypothesis struct {
	R, RDot, RDotDot float64
}

// Config holds the tunable parameters controlling the hypothesis sweep,
// the DBSCAN-style clustering radius/shape, and the quality metric
// weights applied to each resulting cluster.
type Config struct {
	MJDref       float64
	ClustRad     float64 // AU
	ClustChangeRad float64
	DBScanNpt    int
	MinGeoDist   float64 // AU
	MaxGeoDist   float64 // AU
	GeoLogStep   float64 // log-spaced geodist bin width for the hypothesis grid generator (see Grid); not used by Run itself
	MinGeoObs    int      // minimum tracklet count Grid requires before emitting any hypothesis; not counted per geodist bin
	MinImpactPar float64  // AU; reserved for a close-approach impact-parameter gate, not yet enforced here
	UseUnivar    bool
	MaxVInf      float64 // AU/day
	MinObsNights int
	MinTimeSpan  float64 // days
	GM           float64 // heliocentric GM; 0 selects astro.U
	Metric       MetricParams
}

// Cluster is one candidate linkage: the hypothesis that produced it, its
// member tracklet indices, and summary statistics used for the quality
// metric and later purification.
type Cluster struct {
	HypothesisIndex int
	Hypothesis      Hypothesis
	Members         []int // tracklet indices
	MeanPos         coord.Cart
	MeanVel         coord.Cart
	RMSSpread       float64
	UniquePoints    int
	ObsNights       int
	TimeSpan        float64
	Metric          float64
}

// TrackletObservation is the per-tracklet input the linker needs: its
// midpoint sky position, endpoint positions (for velocity estimation),
// the observer's heliocentric state at the midpoint, and the detection
// indices and observation nights it spans.
type TrackletObservation struct {
	TrackletIndex int
	MidMJD        float64
	MidRADeg      float64
	MidDecDeg     float64
	RA1, Dec1     float64
	MJD1          float64
	RA2, Dec2     float64
	MJD2          float64
	Observer      coord.Cart // heliocentric, AU, at MidMJD
	DetectionIdxs []int
	ObsNight      int
}

// MetricParams controls the quality metric shared with the purifier.
type MetricParams struct {
	PtPow, NightPow, TimePow, RMSPow float64
}

// QualityMetric ranks a cluster by its point/night/timespan coverage
// against its astrometric RMS: uniquePoints^PtPow * obsNights^NightPow *
// timeSpan^TimePow / astromRMS^RMSPow. If PtPow or NightPow is negative,
// both the point and night terms are replaced by the product of per-night detection
// counts, which grows with redundant same-night detections the way a
// plain point-count power cannot once the exponent goes negative.
func QualityMetric(uniquePoints, obsNights int, timeSpan, astromRMS float64, nightlyCounts []int, p MetricParams) float64 {
	if astromRMS <= 0 {
		astromRMS = 1e-6
	}
	if p.PtPow < 0 || p.NightPow < 0 {
		prod := 1.0
		for _, c := range nightlyCounts {
			prod *= float64(c)
		}
		return prod * math.Pow(timeSpan, p.TimePow) / math.Pow(astromRMS, p.RMSPow)
	}
	return math.Pow(float64(uniquePoints), p.PtPow) *
		math.Pow(float64(obsNights), p.NightPow) *
		math.Pow(timeSpan, p.TimePow) /
		math.Pow(astromRMS, p.RMSPow)
}

// Run sweeps every hypothesis in hyps against the tracklet set trks,
// returning clusters ordered by (hypothesis index, lowest member tracklet
// index); the lowest member need not be the tracklet that seeded the cluster.
// This fixed ordering is what lets callers dispatch the sweep across a
// worker pool and still get deterministic output after re-sorting.
func Run(trks []TrackletObservation, hyps []Hypothesis, cfg Config) []Cluster {
	gm := cfg.GM
	if gm == 0 {
		gm = astro.U
	}
	var all []Cluster
	for hi, h := range hyps {
		all = append(all, runHypothesis(trks, hi, h, cfg, gm)...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].HypothesisIndex != all[j].HypothesisIndex {
			return all[i].HypothesisIndex < all[j].HypothesisIndex
		}
		if len(all[i].Members) == 0 || len(all[j].Members) == 0 {
			return len(all[i].Members) < len(all[j].Members)
		}
		return all[i].Members[0] < all[j].Members[0]
	})
	return all
}

// Grid generates a log-spaced sweep of hypothesis distances between
// mingeodist and maxgeodist (step cfg.GeoLogStep in log10 AU), each
// paired with rDot and rDotDot drawn from rDotGrid/rDotDotGrid. Every bin
// is skipped when trks holds fewer than cfg.MinGeoObs tracklets; tracklets
// are not counted per bin.
func Grid(trks []TrackletObservation, rDotGrid, rDotDotGrid []float64, cfg Config) []Hypothesis {
	if cfg.GeoLogStep <= 0 || cfg.MaxGeoDist <= cfg.MinGeoDist {
		return nil
	}
	var hyps []Hypothesis
	logMin := math.Log10(cfg.MinGeoDist)
	logMax := math.Log10(cfg.MaxGeoDist)
	for logR := logMin; logR <= logMax; logR += cfg.GeoLogStep {
		r := math.Pow(10, logR)
		if cfg.MinGeoObs > 0 && len(trks) < cfg.MinGeoObs {
			continue
		}
		for _, rDot := range rDotGrid {
			for _, rDotDot := range rDotDotGrid {
				hyps = append(hyps, Hypothesis{R: r, RDot: rDot, RDotDot: rDotDot})
			}
		}
	}
	return hyps
}

type projected struct {
	trkIdx  int
	pos     coord.Cart // heliocentric, AU, propagated to MJDref
	vel     coord.Cart // AU/day, propagated to MJDref
	night   int
	mjd     float64 // tracklet midpoint MJD, for timespan bookkeeping
	detIdxs []int   // detection indices backing this tracklet
}

func runHypothesis(trks []TrackletObservation, hi int, h Hypothesis, cfg Config, gm float64) []Cluster {
	var proj []projected
	var points []coord.Cart

	for _, tr := range trks {
		dt := tr.MidMJD - cfg.MJDref
		r := h.R + h.RDot*dt + 0.5*h.RDotDot*dt*dt
		if r < cfg.MinGeoDist || r > cfg.MaxGeoDist {
			continue
		}
		vis := math.Sqrt(2*gm/r + cfg.MaxVInf*cfg.MaxVInf)
		vRad := h.RDot + h.RDotDot*dt
		if math.Abs(vRad) > vis {
			continue
		}

		// Distance along a sight line from the observer to the
		// heliocentric sphere of radius r; NaN when no point ahead lies on it.
		rangeTo := func(u coord.Cart) float64 {
			b := tr.Observer.Dot(&u)
			if rho := -b + math.Sqrt(b*b-tr.Observer.Square()+r*r); rho > 0 {
				return rho
			}
			return math.NaN()
		}

		u := astro.RADecToUnit(tr.MidRADeg, tr.MidDecDeg)
		var pos coord.Cart
		pos.MulScalar(&u, rangeTo(u))
		pos.Add(&pos, &tr.Observer)

		u1 := astro.RADecToUnit(tr.RA1, tr.Dec1)
		u2 := astro.RADecToUnit(tr.RA2, tr.Dec2)
		var p1, p2 coord.Cart
		p1.MulScalar(&u1, rangeTo(u1))
		p1.Add(&p1, &tr.Observer)
		p2.MulScalar(&u2, rangeTo(u2))
		p2.Add(&p2, &tr.Observer)
		if math.IsNaN(pos.X + p1.X + p2.X) {
			continue
		}
		dtEnds := tr.MJD2 - tr.MJD1
		var vel coord.Cart
		if dtEnds != 0 {
			vel.Sub(&p2, &p1)
			vel.MulScalar(&vel, 1/dtEnds)
		}

		var s kepler.State
		var err error
		if cfg.UseUnivar {
			s, err = kepler.Propagate(gm, kepler.State{MJD: tr.MidMJD, Pos: pos, Vel: vel}, cfg.MJDref, 0, 0)
		} else {
			// Linear two-body: straight-line extrapolation of position
			// and unchanged velocity.
			var lin coord.Cart
			lin.MulScalar(&vel, -dt)
			lin.Add(&lin, &pos)
			s = kepler.State{MJD: cfg.MJDref, Pos: lin, Vel: vel}
		}
		if err != nil {
			continue
		}

		proj = append(proj, projected{trkIdx: tr.TrackletIndex, pos: s.Pos, vel: s.Vel, night: tr.ObsNight, mjd: tr.MidMJD, detIdxs: tr.DetectionIdxs})
		points = append(points, coord.Cart{X: s.Pos.X, Y: s.Pos.Y, Z: s.Pos.Z})
	}

	if len(proj) == 0 {
		return nil
	}

	tree := kdtree.Build3(points)
	visited := make([]bool, len(proj))
	var clusters []Cluster

	for seed := range proj {
		if visited[seed] {
			continue
		}
		p := points[seed]
		neighbours := tree.RangeQuery(kdtree.Point{p.X, p.Y, p.Z}, cfg.ClustRad)
		if len(neighbours) < cfg.DBScanNpt {
			continue
		}

		members := expandCluster(tree, points, neighbours, cfg)
		for _, m := range members {
			visited[m] = true
		}

		c := summarize(proj, members, hi, h, cfg.Metric)
		if c.ObsNights < cfg.MinObsNights || c.TimeSpan < cfg.MinTimeSpan {
			continue
		}
		clusters = append(clusters, c)
	}
	return clusters
}

// expandCluster grows a DBSCAN-style connected component from an initial
// neighbour set. A point whose addition moves the running mean by more
// than ClustChangeRad is kept, but the cluster is not extended from it.
func expandCluster(tree *kdtree.Tree, points []coord.Cart, seedSet []int, cfg Config) []int {
	inCluster := map[int]bool{}
	queue := append([]int(nil), seedSet...)
	for _, s := range seedSet {
		inCluster[s] = true
	}

	var mean coord.Cart
	n := 0
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]

		var prevMean coord.Cart
		prevMean = mean
		mean.X = (mean.X*float64(n) + points[idx].X) / float64(n+1)
		mean.Y = (mean.Y*float64(n) + points[idx].Y) / float64(n+1)
		mean.Z = (mean.Z*float64(n) + points[idx].Z) / float64(n+1)
		n++

		if n > 1 {
			shift := math.Sqrt(math.Pow(mean.X-prevMean.X, 2) + math.Pow(mean.Y-prevMean.Y, 2) + math.Pow(mean.Z-prevMean.Z, 2))
			if shift > cfg.ClustChangeRad {
				// Mean moved too far; stop extending from this point but
				// keep what has already been accepted.
				continue
			}
		}

		neighbours := tree.RangeQuery(kdtree.Point{points[idx].X, points[idx].Y, points[idx].Z}, cfg.ClustRad)
		if len(neighbours) >= cfg.DBScanNpt {
			for _, nb := range neighbours {
				if !inCluster[nb] {
					inCluster[nb] = true
					queue = append(queue, nb)
				}
			}
		}
	}

	out := make([]int, 0, len(inCluster))
	for idx := range inCluster {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func summarize(proj []projected, members []int, hi int, h Hypothesis, mp MetricParams) Cluster {
	var meanPos, meanVel coord.Cart
	nightSet := map[int]bool{}
	nightCounts := map[int]int{}
	detSet := map[int]bool{}
	trkIdxs := make([]int, 0, len(members))
	minMJD, maxMJD := math.Inf(1), math.Inf(-1)
	for _, m := range members {
		meanPos.Add(&meanPos, &proj[m].pos)
		meanVel.Add(&meanVel, &proj[m].vel)
		nightSet[proj[m].night] = true
		nightCounts[proj[m].night]++
		for _, d := range proj[m].detIdxs {
			detSet[d] = true
		}
		trkIdxs = append(trkIdxs, proj[m].trkIdx)
		if proj[m].mjd < minMJD {
			minMJD = proj[m].mjd
		}
		if proj[m].mjd > maxMJD {
			maxMJD = proj[m].mjd
		}
	}
	n := float64(len(members))
	meanPos.MulScalar(&meanPos, 1/n)
	meanVel.MulScalar(&meanVel, 1/n)

	var ssq float64
	for _, m := range members {
		d := math.Sqrt(math.Pow(proj[m].pos.X-meanPos.X, 2) + math.Pow(proj[m].pos.Y-meanPos.Y, 2) + math.Pow(proj[m].pos.Z-meanPos.Z, 2))
		ssq += d * d
	}
	rms := math.Sqrt(ssq / n)

	sort.Ints(trkIdxs)
	uniquePoints := len(detSet)
	obsNights := len(nightSet)
	timeSpan := maxMJD - minMJD

	counts := make([]int, 0, len(nightCounts))
	for _, c := range nightCounts {
		counts = append(counts, c)
	}
	// rms (the cluster's positional spread, AU) stands in for astrometric
	// RMS here; the purifier recomputes a true astrometric-RMS-weighted
	// metric once an orbit fit is available.
	metric := QualityMetric(uniquePoints, obsNights, timeSpan, rms, counts, mp)

	return Cluster{
		HypothesisIndex: hi,
		Hypothesis:      h,
		Members:         trkIdxs,
		MeanPos:         meanPos,
		MeanVel:         meanVel,
		RMSSpread:       rms,
		UniquePoints:    uniquePoints,
		ObsNights:       obsNights,
		TimeSpan:        timeSpan,
		Metric:          metric,
	}
}
