// Public domain.

// Command labelhldet rewrites the idstring field of an unlabeled
// detection file by matching against a labeling file, via detio.Label.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/soniakeys/exit"

	"skytrack/detio"
)

func main() {
	defer exit.Handler()

	var (
		fnUnlabeled = flag.String("unlabeled", "", "unlabeled hldet CSV file")
		fnLabeling  = flag.String("label", "", "labeling file: MJD,RA,Dec,idstring CSV rows, no header")
		fnOut       = flag.String("outfile", "", "output hldet CSV file")
		matchRad    = flag.Float64("matchrad", 1.0, "match radius, arcsec")
		timeOffset  = flag.Float64("timeoff", 0, "time offset added to labeling MJDs, seconds")
		v           = flag.Bool("v", false, "print version and exit")
	)
	flag.Parse()
	if *v {
		fmt.Println("skytrack labelhldet")
		os.Exit(0)
	}
	if *fnUnlabeled == "" || *fnLabeling == "" || *fnOut == "" {
		exit.Log("usage: labelhldet -unlabeled <f> -label <f> -outfile <f> [options]")
	}

	dets, err := detio.ReadHldet(*fnUnlabeled)
	if err != nil {
		exit.Log(err)
	}
	labels, err := readLabelingFile(*fnLabeling)
	if err != nil {
		exit.Log(err)
	}

	out := detio.Label(dets, labels, detio.LabelConfig{
		MatchRadAsec:  *matchRad,
		TimeOffsetSec: *timeOffset,
	})

	if err := detio.WriteHldet(*fnOut, out); err != nil {
		exit.Log(err)
	}
	fmt.Fprintf(os.Stderr, "labelhldet: %d detections, %d labeling points\n", len(dets), len(labels))
}

func readLabelingFile(path string) ([]detio.LabelPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, detio.Wrap(detio.IO, "labelhldet.readLabelingFile", err)
	}
	defer f.Close()

	var out []detio.LabelPoint
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 4 {
			return nil, detio.Newf(detio.PARSE, "labelhldet.readLabelingFile", "expected 4 fields, got %d", len(fields))
		}
		mjd, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, detio.Wrap(detio.PARSE, "labelhldet.readLabelingFile", err)
		}
		ra, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, detio.Wrap(detio.PARSE, "labelhldet.readLabelingFile", err)
		}
		dec, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, detio.Wrap(detio.PARSE, "labelhldet.readLabelingFile", err)
		}
		out = append(out, detio.LabelPoint{MJD: mjd, RA: ra, Dec: dec, IDString: strings.TrimSpace(fields[3])})
	}
	if err := sc.Err(); err != nil {
		return nil, detio.Wrap(detio.IO, "labelhldet.readLabelingFile", err)
	}
	return out, nil
}
