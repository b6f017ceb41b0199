// Public domain.

// Package everhart implements a fixed-step, Gauss-Radau-staged N-body
// integrator in the style of Everhart's method: each big step evaluates
// gravitational acceleration at HNUM sub-stage times, fits a polynomial
// through those samples, and uses a predictor-corrector loop to refine
// the sub-stage states until they stop changing.
//
// The integrator is deterministic and, absent accumulated floating point
// error, time-reversible: stepping from t0 to t1 and back from t1 to t0
// with the same configuration reproduces the starting state.
package everhart

import (
	"math"

	"github.com/soniakeys/coord"

	"skytrack/detio"
	"skytrack/ephem"
)

// radauNodes holds the sub-stage spacing fractions (in (0,1], node 0
// implicitly at 0) for each supported HNUM. HNUM 8 uses the classic
// 8-stage RA15 spacing set, whose last node is 1; HNUM 3-7 use
// Gauss-Legendre nodes, which lie strictly inside (0,1).
var radauNodes = [9][]float64{
	// index 0,1,2 unused (HNUM must be in [3,8])
	{}, {}, {},
	3: {0.1127016653792583, 0.5, 0.8872983346207417},
	4: {0.0694318442029737, 0.3300094782075719, 0.6699905217924281, 0.9305681557970263},
	5: {0.0469100770306680, 0.2307653449471585, 0.5, 0.7692346550528415, 0.9530899229693320},
	6: {0.0337652428984240, 0.1693953067668678, 0.3806904069584016, 0.6193095930415985, 0.8306046932331322, 0.9662347571015760},
	7: {0.0254460438286208, 0.1292344072003028, 0.2970774243113015, 0.5000000000000000, 0.7029225756886985, 0.8707655927996972, 0.9745539561713792},
	8: {0.0562625605369221, 0.1802406917368924, 0.3526247171131696, 0.5471536263305554, 0.7342101772154105, 0.8853209468390958, 0.9775206135612875, 1.0},
}

// Config configures an integrator run.
type Config struct {
	StepDays float64 // integration step length, days
	HNum     int     // sub-stage count, [3,8]
	MaxCorr  int      // predictor-corrector iteration cap; <=0 selects DefaultMaxCorr
	CorrTol  float64  // convergence tolerance on sub-stage position, AU; <=0 selects DefaultCorrTol
}

const (
	DefaultMaxCorr = 12
	DefaultCorrTol = 1e-13
)

// Planet is one perturbing body: its GM and forward/backward ephemeris
// samplers (the same MJD grid the integrator steps over).
type Planet struct {
	GM      float64
	Forward *ephem.Sampler
	Backward *ephem.Sampler
}

// ForceModel sums Newtonian gravity from the Sun and a set of planets.
type ForceModel struct {
	GMSun   float64
	Planets []Planet
}

// State is a heliocentric Cartesian position/velocity pair, AU and AU/day.
type State struct {
	MJD float64
	Pos coord.Cart
	Vel coord.Cart
}

// planetPos looks up a planet's position at mjd, preferring its forward
// table and falling back to the backward table (the two halves of a
// single logical ephemeris, split at the reference epoch).
func planetPos(p Planet, mjd float64) (coord.Cart, error) {
	if p.Forward != nil {
		if s, err := p.Forward.At(mjd); err == nil {
			return s.Pos, nil
		}
	}
	if p.Backward != nil {
		if s, err := p.Backward.At(mjd); err == nil {
			return s.Pos, nil
		}
	}
	return coord.Cart{}, detio.Newf(detio.OUT_OF_RANGE, "everhart.planetPos",
		"no ephemeris sample available at mjd %v", mjd)
}

// accel evaluates total heliocentric gravitational acceleration on a
// massless test particle at (mjd, pos).
func (f *ForceModel) accel(mjd float64, pos coord.Cart) (coord.Cart, error) {
	var a coord.Cart
	r2 := pos.Square()
	r := math.Sqrt(r2)
	k := -f.GMSun / (r2 * r)
	a.X, a.Y, a.Z = pos.X*k, pos.Y*k, pos.Z*k

	for _, p := range f.Planets {
		ppos, err := planetPos(p, mjd)
		if err != nil {
			return coord.Cart{}, err
		}
		var d coord.Cart
		d.Sub(&pos, &ppos)
		dr2 := d.Square()
		dr := math.Sqrt(dr2)
		pk := -p.GM / (dr2 * dr)

		// Planet's own heliocentric acceleration from the Sun, an
		// indirect term required because the integration is heliocentric
		// rather than barycentric.
		pr2 := ppos.Square()
		pr := math.Sqrt(pr2)
		ik := f.GMSun / (pr2 * pr)

		a.X += d.X*pk - ppos.X*ik
		a.Y += d.Y*pk - ppos.Y*ik
		a.Z += d.Z*pk - ppos.Z*ik
	}
	return a, nil
}

// Step advances s0 by one step of cfg.StepDays (sign
// matching the direction of propagation -- negative for backward
// integration) using the Everhart-style sub-staged predictor-corrector.
func Step(fm *ForceModel, cfg Config, s0 State) (State, error) {
	h := cfg.HNum
	if h < 3 || h > 8 {
		return State{}, detio.Newf(detio.INVARIANT_VIOLATION, "everhart.Step",
			"HNUM %d outside [3,8]", h)
	}
	maxCorr := cfg.MaxCorr
	if maxCorr <= 0 {
		maxCorr = DefaultMaxCorr
	}
	tol := cfg.CorrTol
	if tol <= 0 {
		tol = DefaultCorrTol
	}
	nodes := radauNodes[h]
	dt := cfg.StepDays
	if dt == 0 {
		return s0, nil
	}

	// Sub-stage times, relative to s0.MJD, including the implicit t=0
	// node.
	m := len(nodes) + 1
	times := make([]float64, m)
	times[0] = 0
	for i, frac := range nodes {
		times[i+1] = frac * dt
	}

	a0, err := fm.accel(s0.MJD, s0.Pos)
	if err != nil {
		return State{}, detio.Wrap(detio.NON_CONVERGENT, "everhart.Step", err)
	}

	// Initial guess: ballistic (constant acceleration a0) sub-stage
	// positions.
	pos := make([]coord.Cart, m)
	vel := make([]coord.Cart, m)
	pos[0], vel[0] = s0.Pos, s0.Vel
	for i := 1; i < m; i++ {
		pos[i] = taylorPos(s0.Pos, s0.Vel, a0, times[i])
		vel[i] = taylorVel(s0.Vel, a0, times[i])
	}

	ax := make([]float64, m)
	ay := make([]float64, m)
	az := make([]float64, m)

	for iter := 0; iter < maxCorr; iter++ {
		for i := 0; i < m; i++ {
			a, err := fm.accel(s0.MJD+times[i], pos[i])
			if err != nil {
				return State{}, detio.Wrap(detio.NON_CONVERGENT, "everhart.Step", err)
			}
			ax[i], ay[i], az[i] = a.X, a.Y, a.Z
		}

		maxDelta := 0.0
		newPos := make([]coord.Cart, m)
		newVel := make([]coord.Cart, m)
		newPos[0], newVel[0] = s0.Pos, s0.Vel
		for i := 1; i < m; i++ {
			dvx, dpx := integratePoly(times[:i+1], ax[:i+1], times[i])
			dvy, dpy := integratePoly(times[:i+1], ay[:i+1], times[i])
			dvz, dpz := integratePoly(times[:i+1], az[:i+1], times[i])
			newVel[i] = coord.Cart{X: s0.Vel.X + dvx, Y: s0.Vel.Y + dvy, Z: s0.Vel.Z + dvz}
			newPos[i] = coord.Cart{
				X: s0.Pos.X + s0.Vel.X*times[i] + dpx,
				Y: s0.Pos.Y + s0.Vel.Y*times[i] + dpy,
				Z: s0.Pos.Z + s0.Vel.Z*times[i] + dpz,
			}
			d := math.Sqrt(math.Pow(newPos[i].X-pos[i].X, 2) +
				math.Pow(newPos[i].Y-pos[i].Y, 2) +
				math.Pow(newPos[i].Z-pos[i].Z, 2))
			if d > maxDelta {
				maxDelta = d
			}
		}
		pos, vel = newPos, newVel
		if maxDelta < tol {
			break
		}
	}

	// Integrate the fitted acceleration over all sub-stages out to the
	// full step; only the HNUM 8 node set already ends at dt.
	dvx, dpx := integratePoly(times, ax, dt)
	dvy, dpy := integratePoly(times, ay, dt)
	dvz, dpz := integratePoly(times, az, dt)
	return State{
		MJD: s0.MJD + dt,
		Pos: coord.Cart{X: s0.Pos.X + s0.Vel.X*dt + dpx, Y: s0.Pos.Y + s0.Vel.Y*dt + dpy, Z: s0.Pos.Z + s0.Vel.Z*dt + dpz},
		Vel: coord.Cart{X: s0.Vel.X + dvx, Y: s0.Vel.Y + dvy, Z: s0.Vel.Z + dvz},
	}, nil
}

func taylorPos(p0, v0, a0 coord.Cart, t float64) coord.Cart {
	return coord.Cart{
		X: p0.X + v0.X*t + 0.5*a0.X*t*t,
		Y: p0.Y + v0.Y*t + 0.5*a0.Y*t*t,
		Z: p0.Z + v0.Z*t + 0.5*a0.Z*t*t,
	}
}

func taylorVel(v0, a0 coord.Cart, t float64) coord.Cart {
	return coord.Cart{X: v0.X + a0.X*t, Y: v0.Y + a0.Y*t, Z: v0.Z + a0.Z*t}
}

// integratePoly fits the Newton-form interpolating polynomial through
// (times[k], values[k]) and returns its single and double definite
// integral from 0 to upTo: (deltaVelocity, deltaPosition).
func integratePoly(times, values []float64, upTo float64) (dv, dp float64) {
	coeffs := newtonCoeffs(times, values)
	mono := toMonomial(coeffs, times)
	// mono[k] is the coefficient of t^k in the fitted polynomial a(t).
	// Velocity: v(t) = sum mono[k] t^(k+1) / (k+1)
	// Position: p(t) = sum mono[k] t^(k+2) / ((k+1)(k+2))
	for k, c := range mono {
		kp1 := float64(k + 1)
		dv += c * math.Pow(upTo, kp1) / kp1
		dp += c * math.Pow(upTo, kp1+1) / (kp1 * (kp1 + 1))
	}
	return
}

// newtonCoeffs computes Newton's divided differences for (times, values).
func newtonCoeffs(times, values []float64) []float64 {
	n := len(values)
	table := append([]float64(nil), values...)
	coeffs := make([]float64, n)
	coeffs[0] = table[0]
	for j := 1; j < n; j++ {
		for i := n - 1; i >= j; i-- {
			table[i] = (table[i] - table[i-1]) / (times[i] - times[i-j])
		}
		coeffs[j] = table[j]
	}
	return coeffs
}

// toMonomial expands Newton's form
// c0 + c1(t-t0) + c2(t-t0)(t-t1) + ... into monomial coefficients.
func toMonomial(coeffs, times []float64) []float64 {
	n := len(coeffs)
	poly := []float64{coeffs[n-1]}
	for i := n - 2; i >= 0; i-- {
		// poly = poly*(t - times[i]) + coeffs[i]
		next := make([]float64, len(poly)+1)
		for k, c := range poly {
			next[k+1] += c
			next[k] += -times[i] * c
		}
		next[0] += coeffs[i]
		poly = next
	}
	return poly
}
