package detio

import (
	"bufio"
	"io"
	"log"
	"os"

	"github.com/soniakeys/mpcformat"
	"github.com/soniakeys/observation"
)

// MPCParallaxMap is the parallax map type mpcformat.ParseObs80 requires;
// build one with mpcformat.ReadObscodeDatFile or mpcformat.FetchObscodeDat,
// not detio.ReadObscodes (that builds a differently-shaped ParallaxMap
// for this package's own observatory code file format).
type MPCParallaxMap = observation.ParallaxMap

// FromMPC80 reads an 80-column MPC-format astrometry file, an optional
// ingest path for sites that still deliver that format rather than the
// hldet CSV this package otherwise reads. Satellite observations
// (two-line entries) are not represented by Detection's fixed-site
// geometry and are skipped with a log line; ground-based SiteObs rows
// become Detections with IDString set from the packed designation and
// Obscode from the observatory code, grounded on
// other_examples/...mpcformat_test.go's ParseObs80 usage.
func FromMPC80(path string, ocd MPCParallaxMap) ([]Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Wrap(IO, "detio.FromMPC80", err)
	}
	defer f.Close()
	return fromMPC80(f, ocd)
}

func fromMPC80(r io.Reader, ocd MPCParallaxMap) ([]Detection, error) {
	var out []Detection
	sc := bufio.NewScanner(r)
	origIdx := 0
	for sc.Scan() {
		line := sc.Text()
		if len(line) != 80 {
			continue
		}
		desig, vo, err := mpcformat.ParseObs80(line, ocd)
		if err != nil {
			log.Printf("detio.FromMPC80: skipping unparseable line: %v", err)
			continue
		}
		so, ok := vo.(*observation.SiteObs)
		if !ok {
			log.Printf("detio.FromMPC80: skipping non-site observation for %s", desig)
			continue
		}
		raDeg := so.VMeas.Sphr.RA * DegPRad
		decDeg := so.VMeas.Sphr.Dec * DegPRad
		idstr := desig
		if len(idstr) > ShortStringLen {
			idstr = idstr[:ShortStringLen]
		}
		out = append(out, Detection{
			MJD:       so.VMeas.MJD,
			RA:        raDeg,
			Dec:       decDeg,
			Mag:       so.VMeas.VMag,
			IDString:  idstr,
			Obscode:   so.VMeas.Qual,
			OrigIndex: origIdx,
		})
		origIdx++
	}
	if err := sc.Err(); err != nil {
		return nil, Wrap(IO, "detio.FromMPC80", err)
	}
	return out, nil
}
