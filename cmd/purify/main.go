// Public domain.

// Command purify reads detection, image, tracklet and trk2det files,
// treats each tracklet as a candidate cluster of observations, orbit-fits
// and rejects outliers via package purify, and writes a cluster analysis
// file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/soniakeys/exit"

	"skytrack/astro"
	"skytrack/detio"
	"skytrack/everhart"
	"skytrack/kepler"
	"skytrack/linker"
	"skytrack/purify"
)

func main() {
	defer exit.Handler()

	var (
		fnDet       = flag.String("det", "", "input hldet CSV file")
		fnImg       = flag.String("img", "", "input image file")
		fnTrk       = flag.String("trk", "", "input tracklet file")
		fnTrkDet    = flag.String("trk2det", "", "input trk2det file")
		fnOut       = flag.String("out", "", "output cluster analysis file")
		maxRMS      = flag.Float64("maxrms", 1.0, "max astrometric RMS, arcsec")
		rejFrac     = flag.Float64("rejfrac", 0.5, "worst-residual reject threshold, fraction of maxrms")
		maxRejNum   = flag.Int("maxrejnum", 2, "max detections rejected per cluster")
		minNights   = flag.Int("minobsnights", 2, "minimum distinct observation nights")
		minPoints   = flag.Int("minpointnum", 4, "minimum surviving detections")
		stepDays    = flag.Float64("stepdays", 1.0, "integrator step, days")
		hnum        = flag.Int("hnum", 8, "integrator sub-stage count")
		v           = flag.Bool("v", false, "print version and exit")
	)
	flag.Parse()
	if *v {
		fmt.Println("skytrack purify")
		os.Exit(0)
	}
	if *fnDet == "" || *fnImg == "" || *fnTrk == "" || *fnTrkDet == "" || *fnOut == "" {
		exit.Log("usage: purify -det <f> -img <f> -trk <f> -trk2det <f> -out <f> [options]")
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

	// Each tracklet is its own candidate cluster for this standalone
	// tool; a linker-produced cluster analysis file groups many
	// tracklets per cluster, but purify.Run's obsOf callback works
	// the same either way.
	clusters := make([]linker.Cluster, len(trks))
	for i, tk := range trks {
		clusters[i] = linker.Cluster{HypothesisIndex: 0, Members: []int{tk.ID}}
	}

	obsOf := func(ci int) []purify.CandidateObservation {
		tk := trks[ci]
		members := detio.DetsForTracklet(td, tk.ID)
		out := make([]purify.CandidateObservation, 0, len(members))
		for _, m := range members {
			d := dets[m]
			out = append(out, purify.CandidateObservation{
				DetectionIdx: m,
				MJD:          d.MJD,
				RA:           d.RA,
				Dec:          d.Dec,
				Observer:     images[d.Image].Observer,
				SigAsec:      1.0,
				Night:        int(d.MJD / detio.NightStep),
				IDString:     d.IDString,
			})
		}
		return out
	}

	cfg := purify.Config{
		MaxAstromRMS: *maxRMS,
		RejFrac:      *rejFrac,
		MaxRejNum:    *maxRejNum,
		MinObsNights: *minNights,
		MinPointNum:  *minPoints,
		Force:        &everhart.ForceModel{GMSun: astro.U},
		StepDays:     *stepDays,
		HNum:         *hnum,
	}
	survivors := purify.Run(clusters, obsOf, cfg)

	var rows []detio.ClusterRow
	for _, p := range survivors {
		st := kepler.State{MJD: p.Orbit.State.MJD, Pos: p.Orbit.State.Pos, Vel: p.Orbit.State.Vel}
		el := kepler.ElementsOf(astro.U, st)
		rows = append(rows, detio.ClusterRow{
			ObsFile:      *fnDet,
			AstromRMS:    p.Orbit.RMSAsec,
			ChiSq:        p.Orbit.ChiSquare,
			UniquePoints: len(p.Observations),
			Metric:       p.Metric,
			A:            el.A, E: el.E, Incl: el.Incl,
			OrbitMJD: p.Orbit.State.MJD,
			X:        p.Orbit.State.Pos.X, Y: p.Orbit.State.Pos.Y, Z: p.Orbit.State.Pos.Z,
			VX: p.Orbit.State.Vel.X, VY: p.Orbit.State.Vel.Y, VZ: p.Orbit.State.Vel.Z,
			Iter: p.Orbit.Iters,
		})
	}
	if err := detio.WriteClusterAnalysis(*fnOut, rows); err != nil {
		exit.Log(err)
	}
	fmt.Fprintf(os.Stderr, "purify: %d candidate clusters, %d survivors\n", len(clusters), len(survivors))
}
