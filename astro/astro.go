// Copyright 2012 Sonia Keys
// Adapted for skytrack.

// Package astro provides celestial math primitives: conversion between
// (RA, Dec) and unit vectors, angular distance on the sphere, rotation by
// pole, great-circle fitting, and low-order polynomial fitting for
// along/cross-track acceleration.
//
// Numeric policy: angles are internally radians; all trig operates on
// doubles; fitted longitudes are unwrapped across the 360 degree seam
// before fitting.
package astro

import (
	"math"

	"github.com/soniakeys/coord"
	"gonum.org/v1/gonum/stat"
)

// K is the Gaussian gravitational constant (AU^1.5 / day / Msun^.5),
// InvK its inverse, and U = K*K the corresponding GM in AU^3/day^2. These
// match the values used historically throughout the digest2 lineage this
// package is adapted from.
const (
	K    = .01720209895
	InvK = 1 / K
	U    = K * K
)

// RADecToUnit converts RA, Dec in degrees to an equatorial unit vector.
func RADecToUnit(raDeg, decDeg float64) coord.Cart {
	ra := raDeg * math.Pi / 180
	dec := decDeg * math.Pi / 180
	sr, cr := math.Sincos(ra)
	sd, cd := math.Sincos(dec)
	return coord.Cart{X: cr * cd, Y: sr * cd, Z: sd}
}

// UnitToRADec converts a unit vector back to RA, Dec in degrees,
// RA normalized to [0, 360).
func UnitToRADec(v coord.Cart) (raDeg, decDeg float64) {
	raDeg = math.Atan2(v.Y, v.X) * 180 / math.Pi
	if raDeg < 0 {
		raDeg += 360
	}
	r := math.Sqrt(v.X*v.X + v.Y*v.Y)
	decDeg = math.Atan2(v.Z, r) * 180 / math.Pi
	return
}

// AngularDistance returns the great-circle distance, in degrees, between
// two (RA, Dec) points given in degrees.
func AngularDistance(ra1, dec1, ra2, dec2 float64) float64 {
	u1 := RADecToUnit(ra1, dec1)
	u2 := RADecToUnit(ra2, dec2)
	d := u1.Dot(&u2)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d) * 180 / math.Pi
}

// PoleSwitch rotates vector v into a frame where the direction (poleRA,
// poleDec), given in degrees, becomes the new +Z axis. Applying
// PoleSwitchInverse with the same pole undoes it (tested in astro_test.go).
func PoleSwitch(v coord.Cart, poleRA, poleDec float64) coord.Cart {
	pr := poleRA * math.Pi / 180
	pd := poleDec * math.Pi / 180
	v1 := rotateZ(v, -pr)
	return rotateY(v1, -(math.Pi/2 - pd))
}

// PoleSwitchInverse is the inverse rotation of PoleSwitch.
func PoleSwitchInverse(v coord.Cart, poleRA, poleDec float64) coord.Cart {
	pr := poleRA * math.Pi / 180
	pd := poleDec * math.Pi / 180
	v1 := rotateY(v, math.Pi/2-pd)
	return rotateZ(v1, pr)
}

func rotateZ(v coord.Cart, a float64) coord.Cart {
	s, c := math.Sincos(a)
	return coord.Cart{
		X: c*v.X - s*v.Y,
		Y: s*v.X + c*v.Y,
		Z: v.Z,
	}
}

func rotateY(v coord.Cart, a float64) coord.Cart {
	s, c := math.Sincos(a)
	return coord.Cart{
		X: c*v.X + s*v.Z,
		Y: v.Y,
		Z: -s*v.X + c*v.Z,
	}
}

// GCFit is the result of a great-circle fit: the pole of the fitted
// circle, the mean angular velocity along it, the position angle of
// motion at the reference time, and the RMS of cross-track and
// along-track residuals, all in degrees (or degrees/day for velocity).
type GCFit struct {
	PoleRA, PoleDec float64
	VelDegPerDay    float64
	PositionAngle   float64
	CrossTrackRMS   float64
	AlongTrackRMS   float64
}

// GreatCircleFit fits a great circle through the (ra, dec) positions at
// times t (days), unweighted, and returns the pole, mean motion, position
// angle and RMS residuals. It requires len(t) >= 2.
func GreatCircleFit(t, ra, dec []float64) (GCFit, error) {
	return WeightedGreatCircleFit(t, ra, dec, nil)
}

// WeightedGreatCircleFit is GreatCircleFit with optional per-point
// weights (nil means unweighted). Weights scale each point's contribution
// to the fitted pole and to the RMS sums.
func WeightedGreatCircleFit(t, ra, dec, weight []float64) (GCFit, error) {
	n := len(t)
	if n < 2 || len(ra) != n || len(dec) != n {
		return GCFit{}, &dimErr{}
	}
	if weight == nil {
		weight = make([]float64, n)
		for i := range weight {
			weight[i] = 1
		}
	}

	// Pole = weighted sum of cross products of consecutive unit vectors,
	// normalized -- an approximation to a plane fit through the unit
	// vectors, not an exact total-least-squares solution.
	var pole coord.Cart
	for i := 0; i+1 < n; i++ {
		u0 := RADecToUnit(ra[i], dec[i])
		u1 := RADecToUnit(ra[i+1], dec[i+1])
		var c coord.Cart
		c.Cross(&u0, &u1)
		w := (weight[i] + weight[i+1]) * .5
		c.MulScalar(&c, w)
		pole.Add(&pole, &c)
	}
	mag := math.Sqrt(pole.Square())
	if mag == 0 {
		return GCFit{}, &degenerateErr{}
	}
	pole.MulScalar(&pole, 1/mag)
	poleRA, poleDec := UnitToRADec(pole)
	if poleDec < 0 {
		poleRA = math.Mod(poleRA+180, 360)
		poleDec = -poleDec
	}

	// Rotate every point into the pole frame; in that frame motion is
	// pure longitude change (the along-track coordinate) and latitude is
	// the cross-track residual.
	lon := make([]float64, n)
	lat := make([]float64, n)
	for i := range t {
		u := RADecToUnit(ra[i], dec[i])
		r := PoleSwitch(u, poleRA, poleDec)
		lo, la := UnitToRADec(r)
		lon[i] = unwrapDeg(lo, i, lon)
		lat[i] = la
	}

	// Linear fit of longitude vs time gives mean angular velocity and
	// along-track RMS; lat residuals about zero give cross-track RMS.
	slope, intercept := linearFit(t, lon, weight)
	var alongSS, crossSS, wsum float64
	for i := range t {
		pred := intercept + slope*t[i]
		dAlong := lon[i] - pred
		alongSS += weight[i] * dAlong * dAlong
		crossSS += weight[i] * lat[i] * lat[i]
		wsum += weight[i]
	}
	// Position angle (east of north) of the motion at the fitted t=0
	// point: motion runs along pole x position, reversed for slope < 0.
	pu := RADecToUnit(poleRA, poleDec)
	u0 := PoleSwitchInverse(RADecToUnit(intercept, 0), poleRA, poleDec)
	var dir coord.Cart
	dir.Cross(&pu, &u0)
	ra0, dec0 := UnitToRADec(u0)
	sr, cr := math.Sincos(ra0 * math.Pi / 180)
	sd, cd := math.Sincos(dec0 * math.Pi / 180)
	pa := math.Atan2(-dir.X*sr+dir.Y*cr, -dir.X*sd*cr-dir.Y*sd*sr+dir.Z*cd) * 180 / math.Pi
	if slope < 0 {
		pa += 180
	}
	gc := GCFit{
		PoleRA:        poleRA,
		PoleDec:       poleDec,
		VelDegPerDay:  slope,
		PositionAngle: math.Mod(pa+360, 360),
	}
	if wsum > 0 {
		gc.AlongTrackRMS = math.Sqrt(alongSS / wsum)
		gc.CrossTrackRMS = math.Sqrt(crossSS / wsum)
	}
	return gc, nil
}

func unwrapDeg(v float64, i int, prior []float64) float64 {
	if i == 0 {
		return v
	}
	for v-prior[i-1] > 180 {
		v -= 360
	}
	for v-prior[i-1] < -180 {
		v += 360
	}
	return v
}

func linearFit(t, y, w []float64) (slope, intercept float64) {
	var sw, swt, swy, swtt, swty float64
	for i := range t {
		sw += w[i]
		swt += w[i] * t[i]
		swy += w[i] * y[i]
		swtt += w[i] * t[i] * t[i]
		swty += w[i] * t[i] * y[i]
	}
	den := sw*swtt - swt*swt
	if den == 0 {
		return 0, swy / sw
	}
	slope = (sw*swty - swt*swy) / den
	intercept = (swy - slope*swt) / sw
	return
}

// QuadFit fits y = a + b*t + c*t^2 by least squares, used for along- and
// cross-track acceleration estimation.
func QuadFit(t, y []float64) (a, b, c float64) {
	var st, stt, sttt, stttt, sy, sty, stty float64
	n := float64(len(t))
	for i := range t {
		ti := t[i]
		t2 := ti * ti
		st += ti
		stt += t2
		sttt += t2 * ti
		stttt += t2 * t2
		sy += y[i]
		sty += ti * y[i]
		stty += t2 * y[i]
	}
	A := [3][3]float64{
		{n, st, stt},
		{st, stt, sttt},
		{stt, sttt, stttt},
	}
	B := [3]float64{sy, sty, stty}
	sol, ok := solve3(A, B)
	if !ok {
		return 0, 0, 0
	}
	return sol[0], sol[1], sol[2]
}

func solve3(A [3][3]float64, b [3]float64) ([3]float64, bool) {
	det := det3(A)
	if det == 0 {
		return [3]float64{}, false
	}
	var x [3]float64
	for col := 0; col < 3; col++ {
		M := A
		for row := 0; row < 3; row++ {
			M[row][col] = b[row]
		}
		x[col] = det3(M) / det
	}
	return x, true
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Median returns the median of xs.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	c := sortedCopy(xs)
	return stat.Quantile(.5, stat.Empirical, c, nil)
}

// RMS returns the root-mean-square of xs about zero.
func RMS(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		ss += x * x
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func sortedCopy(xs []float64) []float64 {
	c := append([]float64(nil), xs...)
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j-1] > c[j]; j-- {
			c[j-1], c[j] = c[j], c[j-1]
		}
	}
	return c
}

type dimErr struct{}

func (*dimErr) Error() string { return "astro: mismatched input lengths" }

type degenerateErr struct{}

func (*degenerateErr) Error() string { return "astro: degenerate (coincident) points, no pole" }
