package ephem

import (
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/planetposition"

	"skytrack/detio"
)

// obliquityJ2000 is the mean obliquity of the ecliptic at J2000, radians.
const obliquityJ2000 = 23.43929111 * math.Pi / 180

// BuildPlanetGrid samples a VSOP87-based heliocentric ephemeris for
// planet p (github.com/soniakeys/meeus/v3/planetposition.Mercury ...
// Neptune) onto the given UTC MJD grid, returning equatorial J2000
// Cartesian positions and velocities in AU and AU/day suitable for
// ephem.NewSampler and for everhart's forward/backward planet tables.
//
// Velocity at each grid point is estimated by central difference using a
// small time step, producing a pre-loaded ephemeris table so the
// integrator never calls a live ephemeris during a step.
func BuildPlanetGrid(p planetposition.Planet, mjdGrid []float64) ([]Sample, error) {
	v87, err := planetposition.LoadPlanet(p)
	if err != nil {
		return nil, detio.Wrap(detio.LOOKUP_FAIL, "ephem.BuildPlanetGrid", err)
	}
	const dt = 0.05 // days, for central-difference velocity
	samples := make([]Sample, len(mjdGrid))
	for i, mjd := range mjdGrid {
		jde := julian.JDEFromMJD(mjd + detio.TTDeltaT/detio.SolarDay)
		p0 := helioEquatorial(v87, jde-dt)
		p1 := helioEquatorial(v87, jde+dt)
		pm := helioEquatorial(v87, jde)
		var vel coord.Cart
		vel.Sub(&p1, &p0)
		vel.MulScalar(&vel, 1/(2*dt))
		samples[i] = Sample{MJD: mjd, Pos: pm, Vel: vel}
	}
	return samples, nil
}

// helioEquatorial returns a planet's heliocentric position, in AU,
// equatorial J2000.
func helioEquatorial(v87 *planetposition.V87Planet, jde float64) coord.Cart {
	l, b, r := v87.Position(jde)
	sl, cl := math.Sincos(l.Rad())
	sb, cb := math.Sincos(b.Rad())
	// Ecliptic Cartesian.
	x := r * cb * cl
	y := r * cb * sl
	z := r * sb
	// Rotate about X by the mean obliquity to get equatorial.
	so, co := math.Sincos(obliquityJ2000)
	return coord.Cart{
		X: x,
		Y: y*co - z*so,
		Z: y*so + z*co,
	}
}
