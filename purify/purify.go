// Public domain.

// Package purify refines and de-duplicates candidate linkages from the
// linker: each cluster gets an orbit fit (herget then orbitfit), its
// worst-residual detections are rejected until the fit converges or the
// rejection budget is spent, undersized clusters are dropped, and
// overlapping clusters are collapsed to the single best-quality survivor.
package purify

import (
	"sort"

	"github.com/soniakeys/coord"

	"skytrack/astro"
	"skytrack/everhart"
	"skytrack/herget"
	"skytrack/kepler"
	"skytrack/linker"
	"skytrack/orbitfit"
)

// Config holds the tunable parameters controlling orbit-fit outlier
// rejection and the minimum-quality gates a surviving cluster must meet.
type Config struct {
	MaxAstromRMS float64 // arcsec
	RejFrac      float64 // fraction of MaxAstromRMS defining the worst-residual reject threshold
	MaxRejNum    int
	MinObsNights int
	MinPointNum  int
	UseHelioVane bool
	MaxOOP       float64 // degrees, max out-of-plane deviation when UseHelioVane; outOfPlaneDeg always reports 0, so no cluster is rejected by it
	UseOrbMJD    float64 // anchor epoch for the fit; 0 selects the cluster's mean detection MJD
	Metric       linker.MetricParams
	Force        *everhart.ForceModel
	StepDays     float64
	HNum         int
}

// CandidateObservation is one detection usable by the fitter, carrying
// enough geometry to build both herget.Observation and
// orbitfit.Observation.
type CandidateObservation struct {
	DetectionIdx int
	MJD          float64
	RA, Dec      float64
	Observer     coord.Cart // heliocentric, AU
	SigAsec      float64
	Night        int
	IDString     string // provenance identifier, used only by Analyze's rating label
}

// Purified is one surviving cluster with its attached orbit.
type Purified struct {
	Cluster      linker.Cluster
	Observations []CandidateObservation // surviving members, after rejection
	Orbit        orbitfit.Result
	Metric       float64
}

// Run fits, rejects, filters and de-duplicates the clusters produced by
// the linker. obsOf returns the candidate observations of the cluster at
// index clusterIdx in clusters.
func Run(clusters []linker.Cluster, obsOf func(clusterIdx int) []CandidateObservation, cfg Config) []Purified {
	var survivors []Purified
	for ci, cl := range clusters {
		obs := obsOf(ci)
		if len(obs) < cfg.MinPointNum {
			continue
		}
		p, ok := fitAndReject(cl, obs, cfg)
		if !ok {
			continue
		}
		if len(distinctNights(p.Observations)) < cfg.MinObsNights || len(p.Observations) < cfg.MinPointNum {
			continue
		}
		if cfg.UseHelioVane && outOfPlaneDeg(p) > cfg.MaxOOP {
			continue
		}
		survivors = append(survivors, p)
	}
	return dedupOverlapping(survivors)
}

func distinctNights(obs []CandidateObservation) map[int]bool {
	m := map[int]bool{}
	for _, o := range obs {
		m[o.Night] = true
	}
	return m
}

func fitAndReject(cl linker.Cluster, obs []CandidateObservation, cfg Config) (Purified, bool) {
	active := append([]CandidateObservation(nil), obs...)
	rejected := 0

	for {
		if len(active) < 2 {
			return Purified{}, false
		}
		hergetObs := make([]herget.Observation, len(active))
		for i, o := range active {
			u := astro.RADecToUnit(o.RA, o.Dec)
			hergetObs[i] = herget.Observation{MJD: o.MJD, LOS: u, Observer: o.Observer}
		}
		ref1, ref2 := 0, len(active)-1
		rho0 := [2]float64{1.5, 1.5}
		hres, err := herget.Fit(hergetObs, ref1, ref2, rho0, herget.Config{})
		if err != nil {
			return Purified{}, false
		}

		fm := cfg.Force
		if fm == nil {
			fm = &everhart.ForceModel{GMSun: 0}
		}
		fitObs := make([]orbitfit.Observation, len(active))
		for i, o := range active {
			sig := o.SigAsec
			if sig <= 0 {
				sig = 1
			}
			fitObs[i] = orbitfit.Observation{MJD: o.MJD, RA: o.RA, Dec: o.Dec, Observer: o.Observer, SigAsec: sig}
		}
		// Move the seed state to the anchor epoch before refinement.
		anchor := cfg.UseOrbMJD
		if anchor == 0 {
			for _, o := range active {
				anchor += o.MJD
			}
			anchor /= float64(len(active))
		}
		seed, err := kepler.Propagate(astro.U, hres.State, anchor, 0, 0)
		if err != nil {
			return Purified{}, false
		}
		ofit, err := orbitfit.Refine(fitObs, everhart.State(seed), orbitfit.Config{
			Force: fm, StepDays: cfg.StepDays, HNum: cfg.HNum,
		})
		if err != nil {
			return Purified{}, false
		}

		if ofit.RMSAsec <= cfg.MaxAstromRMS {
			return Purified{
				Cluster:      cl,
				Observations: active,
				Orbit:        ofit,
				Metric:       metricFor(active, ofit, cfg),
			}, true
		}

		worstIdx, worstResid := worstResidual(active, ofit, fm, cfg)
		threshold := cfg.MaxAstromRMS * cfg.RejFrac
		if worstResid <= threshold || rejected >= cfg.MaxRejNum {
			return Purified{
				Cluster:      cl,
				Observations: active,
				Orbit:        ofit,
				Metric:       metricFor(active, ofit, cfg),
			}, true
		}
		active = append(active[:worstIdx], active[worstIdx+1:]...)
		rejected++
	}
}

func metricFor(obs []CandidateObservation, fit orbitfit.Result, cfg Config) float64 {
	nightCounts := map[int]int{}
	minMJD, maxMJD := obs[0].MJD, obs[0].MJD
	for _, o := range obs {
		nightCounts[o.Night]++
		if o.MJD < minMJD {
			minMJD = o.MJD
		}
		if o.MJD > maxMJD {
			maxMJD = o.MJD
		}
	}
	counts := make([]int, 0, len(nightCounts))
	for _, c := range nightCounts {
		counts = append(counts, c)
	}
	return linker.QualityMetric(len(obs), len(nightCounts), maxMJD-minMJD, fit.RMSAsec, counts, cfg.Metric)
}

func worstResidual(obs []CandidateObservation, fit orbitfit.Result, fm *everhart.ForceModel, cfg Config) (int, float64) {
	ecfg := everhart.Config{StepDays: cfg.StepDays, HNum: cfg.HNum}
	worstIdx, worstVal := 0, -1.0
	for i, o := range obs {
		st, err := orbitfit.PropagateTo(fm, ecfg, fit.State, o.MJD)
		if err != nil {
			continue
		}
		ra, dec, err := orbitfit.ObservedRADec(st, o.Observer)
		if err != nil {
			continue
		}
		d := astro.AngularDistance(ra, dec, o.RA, o.Dec) * 3600
		if d > worstVal {
			worstVal, worstIdx = d, i
		}
	}
	return worstIdx, worstVal
}

// dedupOverlapping groups survivors by detection-set overlap (sharing any
// detection index) and keeps only the highest-quality cluster per group,
// ties broken by lower RMS then smaller cluster index.
func dedupOverlapping(survivors []Purified) []Purified {
	n := len(survivors)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	detSets := make([]map[int]bool, n)
	for i, s := range survivors {
		m := map[int]bool{}
		for _, o := range s.Observations {
			m[o.DetectionIdx] = true
		}
		detSets[i] = m
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if overlaps(detSets[i], detSets[j]) {
				union(i, j)
			}
		}
	}

	groups := map[int][]int{}
	for i := range survivors {
		r := find(i)
		groups[r] = append(groups[r], i)
	}

	var out []Purified
	var roots []int
	for r := range groups {
		roots = append(roots, r)
	}
	sort.Ints(roots)
	for _, r := range roots {
		members := groups[r]
		best := members[0]
		for _, m := range members[1:] {
			if better(survivors[m], survivors[best]) {
				best = m
			}
		}
		out = append(out, survivors[best])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metric > out[j].Metric })
	return out
}

func better(a, b Purified) bool {
	if a.Metric != b.Metric {
		return a.Metric > b.Metric
	}
	if a.Orbit.RMSAsec != b.Orbit.RMSAsec {
		return a.Orbit.RMSAsec < b.Orbit.RMSAsec
	}
	return false
}

func overlaps(a, b map[int]bool) bool {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	for k := range small {
		if large[k] {
			return true
		}
	}
	return false
}

// outOfPlaneDeg is reserved for a heliovane filter that would reject
// clusters whose orbit normal deviates too far from a caller-supplied
// reference plane. No reference plane is threaded through Purified yet,
// so this always passes.
func outOfPlaneDeg(p Purified) float64 {
	return 0
}
