// Public domain.

// Command analyzelinkage scores a single already-assembled linkage
// (a detection file where every row is assumed to belong to one
// candidate object) PURE or MIXED by provenance identifier agreement,
// via purify.Analyze.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/soniakeys/exit"

	"skytrack/astro"
	"skytrack/detio"
	"skytrack/everhart"
	"skytrack/purify"
)

func main() {
	defer exit.Handler()

	var (
		fnDet    = flag.String("det", "", "detection file for one candidate linkage")
		fnImg    = flag.String("img", "", "image file backing the detections")
		maxRMS   = flag.Float64("maxrms", 5.0, "max astrometric RMS, arcsec")
		stepDays = flag.Float64("stepdays", 1.0, "integrator step, days")
		hnum     = flag.Int("hnum", 8, "integrator sub-stage count")
		v        = flag.Bool("v", false, "print version and exit")
	)
	flag.Parse()
	if *v {
		fmt.Println("skytrack analyzelinkage")
		os.Exit(0)
	}
	if *fnDet == "" || *fnImg == "" {
		exit.Log("usage: analyzelinkage -det <f> -img <f> [options]")
	}

	dets, err := detio.ReadHldet(*fnDet)
	if err != nil {
		exit.Log(err)
	}
	images, err := detio.ReadImages(*fnImg)
	if err != nil {
		exit.Log(err)
	}

	obs := make([]purify.CandidateObservation, len(dets))
	for i, d := range dets {
		obs[i] = purify.CandidateObservation{
			DetectionIdx: i,
			MJD:          d.MJD,
			RA:           d.RA,
			Dec:          d.Dec,
			Observer:     images[d.Image].Observer,
			SigAsec:      1.0,
			Night:        int(d.MJD / detio.NightStep),
			IDString:     d.IDString,
		}
	}

	cfg := purify.Config{
		MaxAstromRMS: *maxRMS,
		Force:        &everhart.ForceModel{GMSun: astro.U},
		StepDays:     *stepDays,
		HNum:         *hnum,
	}
	report, err := purify.Analyze(obs, cfg)
	if err != nil {
		exit.Log(err)
	}
	fmt.Printf("%s,%d,%.4f\n", report.Rating, report.Count, report.Orbit.Orbit.RMSAsec)
}
