// Public domain.

// Package ephem interpolates barycentric/heliocentric positions of the
// Sun, Earth and planets at arbitrary times from pre-sampled grids, and
// computes observer positions from Earth state plus a site correction.
package ephem

import (
	"sort"

	"github.com/soniakeys/coord"

	"skytrack/detio"
)

// Sample is one grid point of a body's ephemeris: position (AU or km,
// caller's choice, consistent within a Sampler) and velocity in the
// matching length unit per the caller's time unit (AU/day from
// BuildPlanetGrid; ObserverPosition expects km and km/s).
type Sample struct {
	MJD float64
	Pos coord.Cart
	Vel coord.Cart
}

// Sampler interpolates a body's state from a sorted MJD grid using a
// polynomial of configurable order (default 5) over the nearest
// order+1 grid points.
type Sampler struct {
	grid  []Sample
	order int
}

// DefaultOrder is the interpolation order used when NewSampler is given
// order <= 0.
const DefaultOrder = 5

// NewSampler builds a Sampler over grid, which must be sorted by MJD and
// contain at least order+1 points. order <= 0 selects DefaultOrder.
func NewSampler(grid []Sample, order int) (*Sampler, error) {
	if order <= 0 {
		order = DefaultOrder
	}
	if len(grid) < order+1 {
		return nil, detio.Newf(detio.INVARIANT_VIOLATION, "ephem.NewSampler",
			"grid has %d points, need at least %d for order %d", len(grid), order+1, order)
	}
	g := append([]Sample(nil), grid...)
	sort.Slice(g, func(i, j int) bool { return g[i].MJD < g[j].MJD })
	return &Sampler{grid: g, order: order}, nil
}

// At interpolates the body's state at mjd. It fails with OUT_OF_RANGE if
// mjd lies outside the sampled interval.
func (s *Sampler) At(mjd float64) (Sample, error) {
	n := len(s.grid)
	if mjd < s.grid[0].MJD || mjd > s.grid[n-1].MJD {
		return Sample{}, detio.Newf(detio.OUT_OF_RANGE, "ephem.Sampler.At",
			"mjd %v outside sampled range [%v, %v]", mjd, s.grid[0].MJD, s.grid[n-1].MJD)
	}
	lo := s.window(mjd)
	hi := lo + s.order + 1
	if hi > n {
		hi = n
		lo = hi - (s.order + 1)
	}
	win := s.grid[lo:hi]

	t := make([]float64, len(win))
	for i, w := range win {
		t[i] = w.MJD
	}
	px := make([]float64, len(win))
	py := make([]float64, len(win))
	pz := make([]float64, len(win))
	vx := make([]float64, len(win))
	vy := make([]float64, len(win))
	vz := make([]float64, len(win))
	for i, w := range win {
		px[i], py[i], pz[i] = w.Pos.X, w.Pos.Y, w.Pos.Z
		vx[i], vy[i], vz[i] = w.Vel.X, w.Vel.Y, w.Vel.Z
	}
	return Sample{
		MJD: mjd,
		Pos: coord.Cart{
			X: lagrange(t, px, mjd),
			Y: lagrange(t, py, mjd),
			Z: lagrange(t, pz, mjd),
		},
		Vel: coord.Cart{
			X: lagrange(t, vx, mjd),
			Y: lagrange(t, vy, mjd),
			Z: lagrange(t, vz, mjd),
		},
	}, nil
}

// window returns the index of the first grid point of the (order+1)-point
// window that best centers mjd.
func (s *Sampler) window(mjd float64) int {
	i := sort.Search(len(s.grid), func(i int) bool { return s.grid[i].MJD >= mjd })
	lo := i - (s.order+1)/2
	if lo < 0 {
		lo = 0
	}
	if lo > len(s.grid)-(s.order+1) {
		lo = len(s.grid) - (s.order + 1)
	}
	return lo
}

// lagrange evaluates the Lagrange interpolating polynomial through (t, y)
// at x.
func lagrange(t, y []float64, x float64) float64 {
	var sum float64
	for i := range t {
		term := y[i]
		for j := range t {
			if j == i {
				continue
			}
			term *= (x - t[j]) / (t[i] - t[j])
		}
		sum += term
	}
	return sum
}
