package kdtree

import (
	"math"

	"github.com/soniakeys/coord"
)

// degPerRad is the number of degrees per radian; dividing a degree-scaled
// time coordinate by it keeps the time axis on the same radian scale as
// the unit-vector axes.
const degPerRad = 180 / math.Pi

// Build4 builds a k-d tree over (time, unit-vector) points, used by the
// detection labeler (detio.Label) for nearest-neighbour and range queries
// across images at scale. dayToDegFactor is the caller-chosen scale (deg
// of typical angular motion per day) that unifies the time and angular
// axes in a single Euclidean metric: the time coordinate is
// t * dayToDegFactor / degPerRad, i.e. converted to the same radian scale
// as the unit vector.
func Build4(mjd []float64, unit []coord.Cart, dayToDegFactor float64) *Tree {
	pts := make([]Point, len(mjd))
	for i := range mjd {
		u := unit[i]
		pts[i] = Point{
			u.X, u.Y, u.Z,
			mjd[i] * dayToDegFactor / degPerRad,
		}
	}
	return Build(pts)
}

// Query4 builds a query point for Build4's coordinate system from a
// (mjd, unit vector) pair.
func Query4(mjd float64, u coord.Cart, dayToDegFactor float64) Point {
	return Point{u.X, u.Y, u.Z, mjd * dayToDegFactor / degPerRad}
}
