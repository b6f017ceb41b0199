package detio

import (
	"github.com/soniakeys/coord"

	"skytrack/astro"
)

// Detection is one point-source observation. Fields other than IDString
// are immutable after ingest; IDString may be rewritten by the labeling
// tool (see label.go).
type Detection struct {
	MJD        float64 // UTC
	RA, Dec    float64 // degrees
	Mag        float64
	Band       string // <= 2 chars
	TrailLen   float64
	TrailPA    float64
	SigMag     float64
	SigAcross  float64
	SigAlong   float64
	Image      int // index into the Image vector
	IDString   string // <= ShortStringLen
	Obscode    string // <= 3 chars
	KnownObj   int
	DetQual    int
	OrigIndex  int // stable original index, assigned at ingest
}

// Unit returns the detection's sky position as a unit vector in the
// equatorial frame implied by RA/Dec (degrees).
func (d *Detection) Unit() coord.Cart {
	return astro.RADecToUnit(d.RA, d.Dec)
}

// Image is exposure metadata for one frame of detections.
type Image struct {
	MJD       float64 // midpoint
	RA, Dec   float64 // pointing, degrees
	Obscode   string
	Observer  coord.Cart // barycentric position, km, J2000 equatorial
	ObsVel    coord.Cart // barycentric velocity, km/s, J2000 equatorial
	ExpTime   float64    // seconds
	StartInd  int        // half-open [StartInd, EndInd) into Detections
	EndInd    int
}

// Tracklet is an ordered pair of endpoint images describing a within-night
// motion segment, plus the detection count and a stable identifier.
type Tracklet struct {
	ID      int
	Image1  int
	Image2  int
	RA1     float64
	Dec1    float64
	RA2     float64
	Dec2    float64
	Npts    int
}

// TrkDet is one row of the tracklet-to-detection relation: trk_id maps to
// one or more detection indices.
type TrkDet struct {
	TrkID  int
	DetNum int
}

// DetsForTracklet collects, in order, the detection indices belonging to
// trkID according to the trk2det relation td.
func DetsForTracklet(td []TrkDet, trkID int) []int {
	var out []int
	for _, r := range td {
		if r.TrkID == trkID {
			out = append(out, r.DetNum)
		}
	}
	return out
}
