// Public domain.

// Command tracklet reads a detection file and writes the tracklet and
// trk2det files built by package tracklet.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/soniakeys/exit"

	"skytrack/detio"
	"skytrack/tracklet"
)

func main() {
	defer exit.Handler()

	var (
		fnDet    = flag.String("det", "", "input hldet CSV file")
		fnTrk    = flag.String("trk", "", "output tracklet file")
		fnTrkDet = flag.String("trk2det", "", "output trk2det file")
		minPts   = flag.Int("mintrkpts", 2, "minimum detections per tracklet")
		maxVel   = flag.Float64("maxvel", 1.5, "max angular velocity, deg/day")
		minVel   = flag.Float64("minvel", 0, "min angular velocity, deg/day")
		minArc   = flag.Float64("minarc", 0, "min tracklet arc, deg")
		minTime  = flag.Float64("mintime", 1.0 / 1440, "min image-pair separation, days")
		maxTime  = flag.Float64("maxtime", 0.5, "max image-pair separation, days")
		imageRad = flag.Float64("imagerad", 1.0, "max pointing separation, deg")
		maxGCR   = flag.Float64("maxgcr", 1.0 / 3600, "max great-circle residual, deg")
		maxNetl  = flag.Int("maxnetl", 0, "cap on edges per image pair, 0 = unbounded")
		force    = flag.Bool("force", false, "skip mintrkpts/maxgcr gating")
		v        = flag.Bool("v", false, "print version and exit")
	)
	flag.Parse()
	if *v {
		fmt.Println("skytrack tracklet builder")
		os.Exit(0)
	}
	if *fnDet == "" || *fnTrk == "" || *fnTrkDet == "" {
		exit.Log("usage: tracklet -det <file> -trk <file> -trk2det <file> [options]")
	}

	dets, err := detio.ReadHldet(*fnDet)
	if err != nil {
		exit.Log(err)
	}
	images := tracklet.PartitionImages(dets)

	cfg := tracklet.Config{
		MinTrkPts: *minPts,
		MinArc:    *minArc,
		MaxVel:    *maxVel,
		MinVel:    *minVel,
		MinTime:   *minTime,
		MaxTime:   *maxTime,
		ImageRad:  *imageRad,
		MaxGCR:    *maxGCR,
		MaxNetl:   *maxNetl,
		ForceRun:  *force,
	}
	trks, td := tracklet.Build(dets, images, cfg)

	if err := detio.WriteTracklets(*fnTrk, trks); err != nil {
		exit.Log(err)
	}
	if err := detio.WriteTrk2Det(*fnTrkDet, td); err != nil {
		exit.Log(err)
	}
	fmt.Fprintf(os.Stderr, "tracklet: %d images, %d tracklets from %d detections\n",
		len(images), len(trks), len(dets))
}
