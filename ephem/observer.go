package ephem

import (
	"math"

	"github.com/soniakeys/coord"

	"skytrack/detio"
)

var twoPi = 2 * math.Pi

// Lst computes local mean sidereal time, in radians, at UTC MJD j0 and
// geographic longitude (radians, east positive). This follows the same
// low-precision USNO-style formula used throughout the digest2 lineage.
func Lst(j0, longitude float64) float64 {
	t := (j0 - 15019.5) / 36525
	th := (6.6460656 + (2400.051262+0.00002581*t)*t) / 24 * twoPi
	ut := math.Mod(j0-.5, 1) * twoPi
	return math.Mod(th+ut+longitude, twoPi)
}

// ObserverPosition returns the observer's heliocentric position and
// velocity (km, km/s) at UTC MJD mjd, given the Earth's heliocentric
// state from earth (whose samples must be in km and km/s) and the site's
// parallax constants. A nil par means a
// geocentric (space-based) observer, for which the Earth state is
// returned unchanged.
func ObserverPosition(earth *Sampler, mjd float64, par *detio.ParallaxConst) (coord.Cart, coord.Cart, error) {
	e, err := earth.At(mjd)
	if err != nil {
		return coord.Cart{}, coord.Cart{}, detio.Wrap(detio.OUT_OF_RANGE, "ephem.ObserverPosition", err)
	}
	if par == nil {
		return e.Pos, e.Vel, nil
	}

	// Apply the TT-to-UTC offset, then the sidereal time term, to place
	// the topocentric offset correctly in the rotating frame.
	ttMJD := mjd + detio.TTDeltaT/detio.SolarDay
	lonRad := par.Longitude * twoPi
	lst := Lst(ttMJD, lonRad)

	const earthRadiusKm = 6378.14
	sl, cl := math.Sincos(lst)
	siteOffset := coord.Cart{
		X: par.RhoCosPhi * cl * earthRadiusKm,
		Y: par.RhoCosPhi * sl * earthRadiusKm,
		Z: par.RhoSinPhi * earthRadiusKm,
	}

	// Site velocity from Earth's rotation: omega x r, omega along +Z,
	// one sidereal revolution per sidereal day.
	const siderealDaySec = 86164.0905
	omega := twoPi / siderealDaySec
	siteVel := coord.Cart{
		X: -omega * siteOffset.Y,
		Y: omega * siteOffset.X,
		Z: 0,
	}

	var pos, vel coord.Cart
	pos.Add(&e.Pos, &siteOffset)
	vel.Add(&e.Vel, &siteVel)
	return pos, vel, nil
}
