// Public domain.

// Package orbitfit implements full six-parameter differential correction
// of a heliocentric state vector against a set of astrometric
// observations, propagating with the perturbed Everhart integrator
// (package everhart) rather than unperturbed two-body motion: the
// refinement stage that follows herget's coarse two-parameter search.
package orbitfit

import (
	"math"

	"github.com/soniakeys/coord"
	"gonum.org/v1/gonum/mat"

	"skytrack/astro"
	"skytrack/detio"
	"skytrack/everhart"
)

// Observation is one astrometric data point: observed RA/Dec (degrees),
// the observer's heliocentric position at the time, and the assumed
// astrometric uncertainty (arcsec), used to weight the fit.
type Observation struct {
	MJD      float64
	RA, Dec  float64
	Observer coord.Cart
	SigAsec  float64
}

// Config tunes the differential correction loop.
type Config struct {
	Force           *everhart.ForceModel
	StepDays        float64 // Everhart step length passed through each propagation
	HNum            int     // Everhart sub-stage count
	MaxIter         int     // iteration cap; <=0 selects DefaultMaxIter
	MinChiChange    float64 // stop when chi-square stops decreasing by more than this fraction; <=0 selects DefaultMinChiChange
	AstromRMSThresh float64 // stop early once RMS astrometric residual (arcsec) falls below this; <=0 disables
	FiniteDiffStep  float64 // relative step for numerical Jacobian; <=0 selects DefaultFiniteDiffStep
}

const (
	DefaultMaxIter         = 30
	DefaultMinChiChange    = 1e-6
	DefaultFiniteDiffStep  = 1e-6
)

// Result is the refined state plus fit diagnostics.
type Result struct {
	State     everhart.State
	ChiSquare float64
	RMSAsec   float64
	Iters     int
}

// Refine iteratively linearizes the observation residuals around s0 and
// solves the 6x6 normal equations for a correction, halving the step
// whenever chi-square fails to decrease, until convergence or the
// iteration cap.
//
// Refine fails with NON_CONVERGENT if the normal matrix is singular or
// any iteration's ten step-halvings all fail to lower chi-square.
func Refine(obs []Observation, s0 everhart.State, cfg Config) (Result, error) {
	maxIter := cfg.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	minChiChange := cfg.MinChiChange
	if minChiChange <= 0 {
		minChiChange = DefaultMinChiChange
	}
	fdStep := cfg.FiniteDiffStep
	if fdStep <= 0 {
		fdStep = DefaultFiniteDiffStep
	}
	if cfg.Force == nil {
		return Result{}, detio.Newf(detio.INVARIANT_VIOLATION, "orbitfit.Refine", "nil force model")
	}

	stepCfg := everhart.Config{StepDays: cfg.StepDays, HNum: cfg.HNum}
	if stepCfg.StepDays == 0 {
		stepCfg.StepDays = 1
	}
	if stepCfg.HNum == 0 {
		stepCfg.HNum = 8
	}

	state := s0
	chi, resid, err := chiSquare(obs, cfg.Force, stepCfg, state)
	if err != nil {
		return Result{}, detio.Wrap(detio.NON_CONVERGENT, "orbitfit.Refine", err)
	}

	iters := 0
	for iters = 0; iters < maxIter; iters++ {
		if cfg.AstromRMSThresh > 0 {
			if rms := rmsOf(resid); rms < cfg.AstromRMSThresh {
				break
			}
		}

		jac, err := jacobian(obs, cfg.Force, stepCfg, state, fdStep)
		if err != nil {
			return Result{}, detio.Wrap(detio.NON_CONVERGENT, "orbitfit.Refine", err)
		}

		delta, err := normalEquationSolve(jac, resid, obs)
		if err != nil {
			return Result{}, detio.Wrap(detio.NON_CONVERGENT, "orbitfit.Refine", err)
		}

		// Step-halving: accept the full step only if chi-square improves;
		// otherwise halve repeatedly.
		accepted := false
		step := 1.0
		for tries := 0; tries < 10; tries++ {
			cand := apply(state, delta, step)
			candChi, candResid, err := chiSquare(obs, cfg.Force, stepCfg, cand)
			if err == nil && candChi < chi {
				prevChi := chi
				state, chi, resid = cand, candChi, candResid
				accepted = true
				if prevChi > 0 && (prevChi-chi)/prevChi < minChiChange {
					iters++
					goto done
				}
				break
			}
			step /= 2
		}
		if !accepted {
			return Result{}, detio.Newf(detio.NON_CONVERGENT, "orbitfit.Refine",
				"step-halving exhausted without improving chi-square at iteration %d", iters)
		}
	}

done:
	return Result{State: state, ChiSquare: chi, RMSAsec: rmsOf(resid), Iters: iters + 1}, nil
}

// residual is the unweighted (RA, Dec) angular residual, arcsec, with its
// 1/sigma weight.
type residual struct {
	dRA, dDec float64
	weight    float64
}

func chiSquare(obs []Observation, fm *everhart.ForceModel, cfg everhart.Config, s everhart.State) (float64, []residual, error) {
	resid := make([]residual, len(obs))
	var chi float64
	for i, o := range obs {
		st, err := PropagateTo(fm, cfg, s, o.MJD)
		if err != nil {
			return 0, nil, err
		}
		ra, dec, err := ObservedRADec(st, o.Observer)
		if err != nil {
			return 0, nil, err
		}
		sig := o.SigAsec
		if sig <= 0 {
			sig = 1
		}
		dRA := wrapDeg(ra-o.RA) * 3600 * math.Cos(o.Dec*math.Pi/180)
		dDec := (dec - o.Dec) * 3600
		w := 1 / sig
		resid[i] = residual{dRA: dRA, dDec: dDec, weight: w}
		chi += (dRA*w)*(dRA*w) + (dDec*w)*(dDec*w)
	}
	return chi, resid, nil
}

func rmsOf(resid []residual) float64 {
	var sumSq float64
	for _, r := range resid {
		sumSq += r.dRA*r.dRA + r.dDec*r.dDec
	}
	return math.Sqrt(sumSq / float64(2*len(resid)))
}

func wrapDeg(d float64) float64 {
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return d
}

// PropagateTo advances s0 to mjdTarget by chaining everhart.Step calls of
// at most cfg.StepDays each, in the sign matching the direction of travel.
func PropagateTo(fm *everhart.ForceModel, cfg everhart.Config, s0 everhart.State, mjdTarget float64) (everhart.State, error) {
	s := s0
	remaining := mjdTarget - s0.MJD
	if remaining == 0 {
		return s, nil
	}
	step := cfg.StepDays
	if remaining < 0 {
		step = -step
	}
	for math.Abs(remaining) > 1e-9 {
		this := step
		if math.Abs(remaining) < math.Abs(step) {
			this = remaining
		}
		next, err := everhart.Step(fm, everhart.Config{StepDays: this, HNum: cfg.HNum, MaxCorr: cfg.MaxCorr, CorrTol: cfg.CorrTol}, s)
		if err != nil {
			return everhart.State{}, err
		}
		s = next
		remaining = mjdTarget - s.MJD
	}
	return s, nil
}

// ObservedRADec converts a heliocentric state and observer position into
// the apparent (RA, Dec) an observer at that position would see, degrees.
func ObservedRADec(s everhart.State, observer coord.Cart) (ra, dec float64, err error) {
	var geo coord.Cart
	geo.Sub(&s.Pos, &observer)
	r := math.Sqrt(geo.Square())
	if r == 0 {
		return 0, 0, detio.Newf(detio.INVARIANT_VIOLATION, "orbitfit.ObservedRADec", "degenerate geocentric range")
	}
	geo.MulScalar(&geo, 1/r)
	ra, dec = astro.UnitToRADec(geo)
	return ra, dec, nil
}

// jacobian computes the numerical partial derivatives of each (RA, Dec)
// residual with respect to the six state components, central-differenced.
func jacobian(obs []Observation, fm *everhart.ForceModel, cfg everhart.Config, s everhart.State, relStep float64) (*mat.Dense, error) {
	n := len(obs)
	jac := mat.NewDense(2*n, 6, nil)
	comp := []*float64{&s.Pos.X, &s.Pos.Y, &s.Pos.Z, &s.Vel.X, &s.Vel.Y, &s.Vel.Z}

	for c := 0; c < 6; c++ {
		orig := *comp[c]
		h := relStep
		if h == 0 {
			h = 1e-6
		}
		scale := math.Abs(orig)
		if scale < 1 {
			scale = 1
		}
		h *= scale

		*comp[c] = orig + h
		plus := s
		_, residPlus, err := chiSquare(obs, fm, cfg, plus)
		if err != nil {
			*comp[c] = orig
			return nil, err
		}
		*comp[c] = orig - h
		minus := s
		_, residMinus, err := chiSquare(obs, fm, cfg, minus)
		if err != nil {
			*comp[c] = orig
			return nil, err
		}
		*comp[c] = orig

		for i := 0; i < n; i++ {
			jac.Set(2*i, c, (residPlus[i].dRA-residMinus[i].dRA)/(2*h))
			jac.Set(2*i+1, c, (residPlus[i].dDec-residMinus[i].dDec)/(2*h))
		}
	}
	return jac, nil
}

// normalEquationSolve solves (J^T W J) delta = J^T W r for the 6-vector
// state correction, returning NON_CONVERGENT if the normal matrix is
// singular.
func normalEquationSolve(jac *mat.Dense, resid []residual, obs []Observation) ([6]float64, error) {
	n := len(obs)
	w := mat.NewDiagDense(2*n, nil)
	r := mat.NewVecDense(2*n, nil)
	for i := 0; i < n; i++ {
		w.SetDiag(2*i, resid[i].weight*resid[i].weight)
		w.SetDiag(2*i+1, resid[i].weight*resid[i].weight)
		r.SetVec(2*i, resid[i].dRA)
		r.SetVec(2*i+1, resid[i].dDec)
	}

	var wj mat.Dense
	wj.Mul(w, jac)
	var jtwj mat.Dense
	jtwj.Mul(jac.T(), &wj)

	var wr mat.VecDense
	wr.MulVec(w, r)
	var jtwr mat.VecDense
	jtwr.MulVec(jac.T(), &wr)

	var delta mat.VecDense
	if err := delta.SolveVec(&jtwj, &jtwr); err != nil {
		return [6]float64{}, detio.Wrap(detio.NON_CONVERGENT, "orbitfit.normalEquationSolve", err)
	}

	var out [6]float64
	for i := range out {
		out[i] = delta.AtVec(i)
	}
	return out, nil
}

func apply(s everhart.State, delta [6]float64, scale float64) everhart.State {
	return everhart.State{
		MJD: s.MJD,
		Pos: coord.Cart{X: s.Pos.X - delta[0]*scale, Y: s.Pos.Y - delta[1]*scale, Z: s.Pos.Z - delta[2]*scale},
		Vel: coord.Cart{X: s.Vel.X - delta[3]*scale, Y: s.Vel.Y - delta[4]*scale, Z: s.Vel.Z - delta[5]*scale},
	}
}
