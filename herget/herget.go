// Public domain.

// Package herget implements the two-parameter Method of Herget: given a
// pair of reference observations and a guessed pair of geocentric
// (observer-relative) distances, it reconstructs a heliocentric state via
// a universal-variable Lambert solve, then searches distance-space with a
// Nelder-Mead simplex (gonum.org/v1/gonum/optimize) to minimize angular
// residuals against the full observation set. Its output state seeds
// orbitfit's differential correction.
package herget

import (
	"math"

	"github.com/soniakeys/coord"
	"gonum.org/v1/gonum/optimize"

	"skytrack/astro"
	"skytrack/detio"
	"skytrack/kepler"
)

// Observation is one line-of-sight sample: a unit vector from observer to
// target, and the observer's own heliocentric position, both at MJD.
type Observation struct {
	MJD      float64
	LOS      coord.Cart // unit vector, observer to target
	Observer coord.Cart // heliocentric, AU
}

// Config tunes the simplex search.
type Config struct {
	GM           float64 // heliocentric gravitational parameter, AU^3/day^2
	MaxIter      int     // simplex iteration cap; <=0 selects DefaultMaxIter
	FTol         float64 // simplex function-value tolerance; <=0 selects DefaultFTol
	SimplexScale float64 // initial simplex edge length, AU; <=0 selects DefaultSimplexScale
}

const (
	DefaultMaxIter      = 500
	DefaultFTol         = 1e-10
	DefaultSimplexScale = 0.1
)

// Result is a fitted orbit state and the RMS angular residual (arcsec) it
// produced over the observation set it was scored against.
type Result struct {
	State    kepler.State
	RMSAsec  float64
	Rho1     float64
	Rho2     float64
}

// Fit searches geocentric distances at obs[ref1] and obs[ref2] that
// minimize the RMS angular residual of the resulting two-body orbit
// against every observation in obs. rho0 is the initial distance guess,
// AU, for (ref1, ref2).
func Fit(obs []Observation, ref1, ref2 int, rho0 [2]float64, cfg Config) (Result, error) {
	if ref1 == ref2 || ref1 < 0 || ref2 < 0 || ref1 >= len(obs) || ref2 >= len(obs) {
		return Result{}, detio.Newf(detio.INVARIANT_VIOLATION, "herget.Fit",
			"invalid reference indices %d,%d for %d observations", ref1, ref2, len(obs))
	}
	gm := cfg.GM
	if gm == 0 {
		gm = astro.U
	}
	maxIter := cfg.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	ftol := cfg.FTol
	if ftol <= 0 {
		ftol = DefaultFTol
	}
	scale := cfg.SimplexScale
	if scale <= 0 {
		scale = DefaultSimplexScale
	}

	objective := func(x []float64) float64 {
		s, ok := stateFromRhos(obs, ref1, ref2, x[0], x[1], gm)
		if !ok {
			return 1e12
		}
		rms, ok := residualRMS(obs, s, gm)
		if !ok {
			return 1e12
		}
		return rms
	}

	p := optimize.Problem{Func: objective}
	method := &optimize.NelderMead{
		SimplexSize: scale,
	}
	res, err := optimize.Minimize(p, []float64{rho0[0], rho0[1]}, &optimize.Settings{
		MajorIterations: maxIter,
		FuncEvaluations: maxIter * 4,
		Converger: &optimize.FunctionConverge{
			Absolute:   ftol,
			Iterations: 20,
		},
	}, method)
	if err != nil {
		return Result{}, detio.Wrap(detio.NON_CONVERGENT, "herget.Fit", err)
	}

	rho1, rho2 := res.X[0], res.X[1]
	s, ok := stateFromRhos(obs, ref1, ref2, rho1, rho2, gm)
	if !ok {
		return Result{}, detio.Newf(detio.NON_CONVERGENT, "herget.Fit",
			"converged simplex distances %v,%v produced no valid state", rho1, rho2)
	}
	rms, _ := residualRMS(obs, s, gm)

	return Result{State: s, RMSAsec: rms, Rho1: rho1, Rho2: rho2}, nil
}

func stateFromRhos(obs []Observation, ref1, ref2 int, rho1, rho2, gm float64) (kepler.State, bool) {
	if rho1 <= 0 || rho2 <= 0 {
		return kepler.State{}, false
	}
	o1, o2 := obs[ref1], obs[ref2]
	var r1, r2 coord.Cart
	var l1, l2 coord.Cart
	l1.MulScalar(&o1.LOS, rho1)
	r1.Add(&o1.Observer, &l1)
	l2.MulScalar(&o2.LOS, rho2)
	r2.Add(&o2.Observer, &l2)

	dt := o2.MJD - o1.MJD
	if dt == 0 {
		return kepler.State{}, false
	}
	v1, ok := lambert(r1, r2, dt, gm)
	if !ok {
		return kepler.State{}, false
	}
	return kepler.State{MJD: o1.MJD, Pos: r1, Vel: v1}, true
}

func residualRMS(obs []Observation, s kepler.State, gm float64) (float64, bool) {
	var sumSq float64
	for _, o := range obs {
		st, err := kepler.Propagate(gm, s, o.MJD, 0, 0)
		if err != nil {
			return 0, false
		}
		var geo coord.Cart
		geo.Sub(&st.Pos, &o.Observer)
		r := math.Sqrt(geo.Square())
		if r == 0 {
			return 0, false
		}
		var computed coord.Cart
		computed.MulScalar(&geo, 1/r)
		ra1, dec1 := astro.UnitToRADec(computed)
		ra2, dec2 := astro.UnitToRADec(o.LOS)
		d := astro.AngularDistance(ra1, dec1, ra2, dec2) * 3600 // degrees to arcsec
		sumSq += d * d
	}
	rms := math.Sqrt(sumSq / float64(len(obs)))
	return rms, true
}

// lambert solves for the velocity at r1 consistent with transit from r1 to
// r2 over time dt under gravity gm, using the universal-variable
// formulation (the short-way, prograde solution). Returns ok=false if the
// scan over z finds no interval bracketing a solution, or if the geometry
// is degenerate.
func lambert(r1, r2 coord.Cart, dt, gm float64) (coord.Cart, bool) {
	r1n := math.Sqrt(r1.Square())
	r2n := math.Sqrt(r2.Square())
	if r1n == 0 || r2n == 0 {
		return coord.Cart{}, false
	}
	cosDnu := r1.Dot(&r2) / (r1n * r2n)
	if cosDnu > 1 {
		cosDnu = 1
	} else if cosDnu < -1 {
		cosDnu = -1
	}
	var cross coord.Cart
	cross.Cross(&r1, &r2)
	sinDnu := math.Sqrt(1 - cosDnu*cosDnu)
	if cross.Z < 0 {
		sinDnu = -sinDnu
	}
	A := sinDnu * math.Sqrt(r1n*r2n/(1-cosDnu))
	if A == 0 {
		return coord.Cart{}, false
	}

	sign := 1.0
	if dt < 0 {
		sign = -1.0
	}
	absdt := math.Abs(dt)

	tOfZ := func(z float64) (float64, float64, bool) {
		c, s := lambertStumpff(z)
		if c <= 0 {
			return 0, 0, false
		}
		y := r1n + r2n + A*(z*s-1)/math.Sqrt(c)
		if y < 0 {
			return 0, 0, false
		}
		chi := math.Sqrt(y / c)
		t := (chi*chi*chi*s + A*math.Sqrt(y)) / math.Sqrt(gm)
		return t, y, true
	}

	lo, hi := -4*math.Pi*math.Pi, 4*math.Pi*math.Pi
	var z float64
	found := false
	const steps = 200
	prevZ := lo
	prevT, _, prevOK := tOfZ(prevZ)
	for i := 1; i <= steps; i++ {
		zi := lo + (hi-lo)*float64(i)/steps
		ti, _, ok := tOfZ(zi)
		if ok && prevOK && (prevT-absdt)*(ti-absdt) <= 0 {
			z = secantRefine(tOfZ, prevZ, zi, absdt)
			found = true
			break
		}
		prevZ, prevT, prevOK = zi, ti, ok
	}
	if !found {
		return coord.Cart{}, false
	}

	_, y, ok := tOfZ(z)
	if !ok {
		return coord.Cart{}, false
	}
	f := 1 - y/r1n
	g := A * math.Sqrt(y/gm)
	if g == 0 {
		return coord.Cart{}, false
	}
	var v1, fr1 coord.Cart
	fr1.MulScalar(&r1, f)
	v1.Sub(&r2, &fr1)
	v1.MulScalar(&v1, 1/g)
	v1.MulScalar(&v1, sign)
	return v1, true
}

func secantRefine(tOfZ func(float64) (float64, float64, bool), z0, z1, target float64) float64 {
	t0, _, _ := tOfZ(z0)
	t1, _, _ := tOfZ(z1)
	for i := 0; i < 50; i++ {
		if t1 == t0 {
			break
		}
		zNext := z1 - (t1-target)*(z1-z0)/(t1-t0)
		tNext, _, ok := tOfZ(zNext)
		if !ok {
			break
		}
		z0, t0 = z1, t1
		z1, t1 = zNext, tNext
		if math.Abs(t1-target) < 1e-10 {
			break
		}
	}
	return z1
}

func lambertStumpff(z float64) (c, s float64) {
	switch {
	case z > 1e-6:
		sq := math.Sqrt(z)
		c = (1 - math.Cos(sq)) / z
		s = (sq - math.Sin(sq)) / (sq * sq * sq)
	case z < -1e-6:
		sq := math.Sqrt(-z)
		c = (1 - math.Cosh(sq)) / z
		s = (math.Sinh(sq) - sq) / (sq * sq * sq)
	default:
		c = 1./2 - z/24 + z*z/720
		s = 1./6 - z/120 + z*z/5040
	}
	return
}
