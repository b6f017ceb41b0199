package kdtree

import "github.com/soniakeys/coord"

// Build3 builds a k-d tree over heliocentric Cartesian positions, used by
// the heliocentric linker to find tracklets whose propagated positions
// cluster together.
func Build3(pos []coord.Cart) *Tree {
	pts := make([]Point, len(pos))
	for i, p := range pos {
		pts[i] = Point{p.X, p.Y, p.Z}
	}
	return Build(pts)
}
