// Public domain.

// Command merge combines two or more independent tracklet-builder runs
// (detection/image/tracklet/trk2det file quartets) into one master set
// via package merge.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/soniakeys/exit"

	"skytrack/detio"
	"skytrack/merge"
)

func main() {
	defer exit.Handler()

	var (
		runList   = flag.String("runs", "", "semicolon-separated list of det,img,trk,trk2det quartets")
		fnOutDet  = flag.String("outdet", "", "output hldet CSV file")
		fnOutImg  = flag.String("outimg", "", "output image file")
		fnOutTrk  = flag.String("outtrk", "", "output tracklet file")
		fnOutTD   = flag.String("outtrk2det", "", "output trk2det file")
		matchRad  = flag.Float64("matchrad", 1.0/3600, "detection match radius, deg")
		v         = flag.Bool("v", false, "print version and exit")
	)
	flag.Parse()
	if *v {
		fmt.Println("skytrack merge")
		os.Exit(0)
	}
	if *runList == "" || *fnOutDet == "" || *fnOutImg == "" || *fnOutTrk == "" || *fnOutTD == "" {
		exit.Log("usage: merge -runs <f1det,f1img,f1trk,f1trk2det;f2det,...> -outdet <f> -outimg <f> -outtrk <f> -outtrk2det <f> [options]")
	}

	var runs []merge.Run
	for _, spec := range strings.Split(*runList, ";") {
		parts := strings.Split(spec, ",")
		if len(parts) != 4 {
			exit.Log(fmt.Sprintf("malformed run spec %q, want det,img,trk,trk2det", spec))
		}
		runs = append(runs, loadRun(parts[0], parts[1], parts[2], parts[3]))
	}

	result := merge.Merge(runs, merge.Config{MatchRadDeg: *matchRad})
	log.Printf("merge: session %s, %d runs -> %d images, %d detections, %d tracklets",
		result.SessionID, len(runs), len(result.Images), len(result.Detections), len(result.Tracklets))

	if err := detio.WriteHldet(*fnOutDet, result.Detections); err != nil {
		exit.Log(err)
	}
	if err := detio.WriteImages(*fnOutImg, result.Images); err != nil {
		exit.Log(err)
	}
	if err := detio.WriteTracklets(*fnOutTrk, result.Tracklets); err != nil {
		exit.Log(err)
	}
	if err := detio.WriteTrk2Det(*fnOutTD, result.Trk2Det); err != nil {
		exit.Log(err)
	}
}

func loadRun(fnDet, fnImg, fnTrk, fnTrkDet string) merge.Run {
	dets, err := detio.ReadHldet(fnDet)
	if err != nil {
		exit.Log(err)
	}
	images, err := detio.ReadImages(fnImg)
	if err != nil {
		exit.Log(err)
	}
	trks, err := detio.ReadTracklets(fnTrk)
	if err != nil {
		exit.Log(err)
	}
	td, err := detio.ReadTrk2Det(fnTrkDet)
	if err != nil {
		exit.Log(err)
	}
	return merge.Run{Images: images, Detections: dets, Tracklets: trks, Trk2Det: td}
}
