// Public domain.

// Package kepler implements two-body propagation in the universal-
// variables, Stumpff-function formulation: valid for elliptic, parabolic
// and hyperbolic orbits alike, used to establish Keplerian consistency
// before handing a state off to the perturbed Everhart integrator
// (package everhart).
package kepler

import (
	"math"

	"github.com/soniakeys/coord"

	"skytrack/detio"
)

// DefaultTol is the default convergence tolerance on the universal
// anomaly correction, and DefaultMaxIter the default Newton iteration
// cap.
const (
	DefaultTol     = 1e-12
	DefaultMaxIter = 100
)

// State is a Cartesian position/velocity pair at a given MJD.
type State struct {
	MJD float64
	Pos coord.Cart // AU
	Vel coord.Cart // AU/day, scaled so that GM has matching units
}

// Propagate advances state s0 under two-body gravity with parameter gm
// (same units as pos^3/time^2) to MJD mjdTarget, iterating Newton's
// method on the universal anomaly until the correction falls below tol
// or maxIter is exceeded. tol <= 0 or maxIter <= 0 select the package
// defaults.
//
// Propagate fails with NON_CONVERGENT if the iteration cap is exceeded.
func Propagate(gm float64, s0 State, mjdTarget float64, tol float64, maxIter int) (State, error) {
	if tol <= 0 {
		tol = DefaultTol
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	dt := mjdTarget - s0.MJD
	if dt == 0 {
		return s0, nil
	}

	r0v := s0.Pos
	v0v := s0.Vel
	r0 := math.Sqrt(r0v.Square())
	v0sq := v0v.Square()
	vr0 := r0v.Dot(&v0v) / r0

	sqrtGM := math.Sqrt(gm)
	alpha := 2/r0 - v0sq/gm // reciprocal of semi-major axis

	// Initial estimate of the universal anomaly.
	x := sqrtGM * math.Abs(alpha) * dt

	var c, s float64
	converged := false
	for i := 0; i < maxIter; i++ {
		z := alpha * x * x
		c, s = stumpff(z)
		r := r0*vr0/sqrtGM*x*(1-z*s) + (1-alpha*r0)*x*x*c + r0
		fx := r0*vr0/sqrtGM*x*x*c + (1-alpha*r0)*x*x*x*s + r0*x - sqrtGM*dt
		if r == 0 {
			break
		}
		dx := -fx / r
		x += dx
		if math.Abs(dx) < tol {
			converged = true
			break
		}
	}
	if !converged {
		return State{}, detio.Newf(detio.NON_CONVERGENT, "kepler.Propagate",
			"universal anomaly did not converge after %d iterations", maxIter)
	}

	z := alpha * x * x
	c, s = stumpff(z)

	f := 1 - x*x/r0*c
	g := dt - x*x*x/sqrtGM*s

	var pos coord.Cart
	pos.MulScalar(&r0v, f)
	var gv coord.Cart
	gv.MulScalar(&v0v, g)
	pos.Add(&pos, &gv)

	r1 := math.Sqrt(pos.Square())
	fdot := sqrtGM / (r1 * r0) * (alpha*x*x*x*s - x)
	gdot := 1 - x*x/r1*c

	var vel, fp, gp coord.Cart
	fp.MulScalar(&r0v, fdot)
	gp.MulScalar(&v0v, gdot)
	vel.Add(&fp, &gp)

	return State{MJD: mjdTarget, Pos: pos, Vel: vel}, nil
}

// stumpff evaluates the Stumpff functions C(z) and S(z), handling the
// z == 0 (parabolic), z > 0 (elliptic) and z < 0 (hyperbolic) cases.
func stumpff(z float64) (c, s float64) {
	switch {
	case z > 1e-8:
		sq := math.Sqrt(z)
		c = (1 - math.Cos(sq)) / z
		s = (sq - math.Sin(sq)) / (sq * sq * sq)
	case z < -1e-8:
		sq := math.Sqrt(-z)
		c = (1 - math.Cosh(sq)) / z
		s = (math.Sinh(sq) - sq) / (sq * sq * sq)
	default:
		// Series expansion about z=0 for numerical stability near the
		// parabolic limit.
		c = 1./2 - z/24 + z*z/720
		s = 1./6 - z/120 + z*z/5040
	}
	return
}
