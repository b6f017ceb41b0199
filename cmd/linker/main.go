// Public domain.

// Command linker reads a tracklet set (and the detections/images backing
// it) and writes a cluster analysis file of candidate heliocentric
// linkages built by package linker. The hypothesis sweep is dispatched
// across a worker pool and results are re-sorted into deterministic
// order before being written, a dispatcher/worker/ticket-channel shape
// with the hypothesis index standing in as the ticket.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/soniakeys/exit"

	"skytrack/astro"
	"skytrack/detio"
	"skytrack/kepler"
	"skytrack/linker"
)

func main() {
	defer exit.Handler()

	var (
		fnDet      = flag.String("det", "", "input hldet CSV file")
		fnImg      = flag.String("img", "", "input image file")
		fnTrk      = flag.String("trk", "", "input tracklet file")
		fnTrkDet   = flag.String("trk2det", "", "input trk2det file")
		fnOut      = flag.String("out", "", "output cluster analysis file")
		mjdRef     = flag.Float64("mjdref", 0, "reference epoch; 0 = mean tracklet midpoint")
		rMin       = flag.Float64("rmin", 0.5, "min heliocentric distance hypothesis, AU")
		rMax       = flag.Float64("rmax", 5.0, "max heliocentric distance hypothesis, AU")
		rStep      = flag.Float64("rstep", 0.25, "heliocentric distance hypothesis step, AU")
		clustRad   = flag.Float64("clustrad", 0.05, "DBSCAN cluster radius, AU")
		dbscanNpt  = flag.Int("dbscannpt", 2, "DBSCAN minimum points")
		minNights  = flag.Int("minnights", 2, "minimum distinct observation nights")
		useUnivar  = flag.Bool("univar", true, "propagate via kepler.Propagate instead of linear extrapolation")
		ptPow      = flag.Float64("ptpow", 1, "quality metric exponent on unique detection count")
		nightPow   = flag.Float64("nightpow", 1, "quality metric exponent on distinct-night count")
		timePow    = flag.Float64("timepow", 1, "quality metric exponent on time span")
		rmsPow     = flag.Float64("rmspow", 1, "quality metric exponent on positional RMS spread")
		v          = flag.Bool("v", false, "print version and exit")
	)
	flag.Parse()
	if *v {
		fmt.Println("skytrack linker")
		os.Exit(0)
	}
	if *fnDet == "" || *fnImg == "" || *fnTrk == "" || *fnTrkDet == "" || *fnOut == "" {
		exit.Log("usage: linker -det <f> -img <f> -trk <f> -trk2det <f> -out <f> [options]")
	}

	dets, err := detio.ReadHldet(*fnDet)
	if err != nil {
		exit.Log(err)
	}
	images, err := detio.ReadImages(*fnImg)
	if err != nil {
		exit.Log(err)
	}
	trks, err := detio.ReadTracklets(*fnTrk)
	if err != nil {
		exit.Log(err)
	}
	td, err := detio.ReadTrk2Det(*fnTrkDet)
	if err != nil {
		exit.Log(err)
	}

	obs := buildTrackletObservations(dets, images, trks, td)
	if len(obs) == 0 {
		exit.Log("no usable tracklets")
	}

	ref := *mjdRef
	if ref == 0 {
		var sum float64
		for _, o := range obs {
			sum += o.MidMJD
		}
		ref = sum / float64(len(obs))
	}

	var rDotGrid = []float64{-0.02, 0, 0.02}
	var rDotDotGrid = []float64{0}
	var hyps []linker.Hypothesis
	for r := *rMin; r <= *rMax; r += *rStep {
		for _, rd := range rDotGrid {
			for _, rdd := range rDotDotGrid {
				hyps = append(hyps, linker.Hypothesis{R: r, RDot: rd, RDotDot: rdd})
			}
		}
	}

	cfg := linker.Config{
		MJDref:       ref,
		ClustRad:     *clustRad,
		DBScanNpt:    *dbscanNpt,
		UseUnivar:    *useUnivar,
		MinObsNights: *minNights,
		GM:           astro.U,
		Metric: linker.MetricParams{
			PtPow:    *ptPow,
			NightPow: *nightPow,
			TimePow:  *timePow,
			RMSPow:   *rmsPow,
		},
	}

	clusters := runHypothesesConcurrently(obs, hyps, cfg)

	var rows []detio.ClusterRow
	for _, cl := range clusters {
		el := kepler.ElementsOf(astro.U, kepler.State{MJD: ref, Pos: cl.MeanPos, Vel: cl.MeanVel})
		rows = append(rows, detio.ClusterRow{
			ObsFile:      *fnDet,
			UniquePoints: cl.UniquePoints,
			ObsNights:    cl.ObsNights,
			TimeSpan:     cl.TimeSpan,
			Metric:       cl.Metric,
			A:            el.A,
			E:            el.E,
			Incl:         el.Incl,
			OrbitMJD:     ref,
			X:            cl.MeanPos.X, Y: cl.MeanPos.Y, Z: cl.MeanPos.Z,
			VX: cl.MeanVel.X, VY: cl.MeanVel.Y, VZ: cl.MeanVel.Z,
		})
	}
	if err := detio.WriteClusterAnalysis(*fnOut, rows); err != nil {
		exit.Log(err)
	}
	fmt.Fprintf(os.Stderr, "linker: %d tracklets, %d hypotheses, %d clusters\n", len(obs), len(hyps), len(clusters))
}

// buildTrackletObservations derives each tracklet's midpoint sky position,
// endpoint geometry and observer state from its member detections/images.
// The image file's Observer/ObsVel fields are expected (by this tool's
// contract) to already be Sun-relative AU state vectors, even though
// detio.Image documents them as barycentric km for the general data
// model -- callers feeding a barycentric image file must convert before
// calling this tool.
func buildTrackletObservations(dets []detio.Detection, images []detio.Image, trks []detio.Tracklet, td []detio.TrkDet) []linker.TrackletObservation {
	var out []linker.TrackletObservation
	for _, tk := range trks {
		members := detio.DetsForTracklet(td, tk.ID)
		if len(members) == 0 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return dets[members[i]].MJD < dets[members[j]].MJD })
		first, last := members[0], members[len(members)-1]
		mid := members[len(members)/2]

		img := images[dets[mid].Image]
		out = append(out, linker.TrackletObservation{
			TrackletIndex: tk.ID,
			MidMJD:        dets[mid].MJD,
			MidRADeg:      dets[mid].RA,
			MidDecDeg:     dets[mid].Dec,
			RA1:           dets[first].RA, Dec1: dets[first].Dec, MJD1: dets[first].MJD,
			RA2: dets[last].RA, Dec2: dets[last].Dec, MJD2: dets[last].MJD,
			Observer:      img.Observer,
			DetectionIdxs: members,
			ObsNight:      int(dets[mid].MJD / detio.NightStep),
		})
	}
	return out
}

// runHypothesesConcurrently dispatches each hypothesis to a worker pool
// of size runtime.GOMAXPROCS(0), collecting results through a
// ticket-channel, then re-sorts by (hypothesis index, lowest member
// tracklet index) -- the same determinism guarantee linker.Run itself provides
// sequentially, preserved here across concurrent execution.
func runHypothesesConcurrently(trks []linker.TrackletObservation, hyps []linker.Hypothesis, cfg linker.Config) []linker.Cluster {
	type job struct {
		idx int
		h   linker.Hypothesis
	}
	type result struct {
		idx      int
		clusters []linker.Cluster
	}

	jobCh := make(chan job)
	resCh := make(chan result)
	workers := runtime.GOMAXPROCS(0)
	if workers > len(hyps) && len(hyps) > 0 {
		workers = len(hyps)
	}
	if workers < 1 {
		workers = 1
	}

	for w := 0; w < workers; w++ {
		go func() {
			for j := range jobCh {
				cs := linker.Run(trks, []linker.Hypothesis{j.h}, cfg)
				for i := range cs {
					cs[i].HypothesisIndex = j.idx
				}
				resCh <- result{idx: j.idx, clusters: cs}
			}
		}()
	}
	go func() {
		for i, h := range hyps {
			jobCh <- job{idx: i, h: h}
		}
		close(jobCh)
	}()

	results := make([]result, len(hyps))
	for range hyps {
		r := <-resCh
		results[r.idx] = r
	}

	var all []linker.Cluster
	for _, r := range results {
		all = append(all, r.clusters...)
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
