package astro_test

import (
	"math"
	"testing"

	"skytrack/astro"
)

var roundTripCases = []struct{ ra, dec float64 }{
	{0, 0},
	{90, 45},
	{180, -45},
	{270, 89.9},
	{359.9999, -89.9999},
	{123.456, 12.345},
}

func TestUnitRoundTrip(t *testing.T) {
	for _, c := range roundTripCases {
		u := astro.RADecToUnit(c.ra, c.dec)
		ra, dec := astro.UnitToRADec(u)
		// 1 microarcsecond in degrees.
		const tol = 1.0 / 3600 / 1e6
		if math.Abs(ra-c.ra) > tol && math.Abs(ra-c.ra-360) > tol {
			t.Errorf("RA round trip: got %v, want %v", ra, c.ra)
		}
		if math.Abs(dec-c.dec) > tol {
			t.Errorf("Dec round trip: got %v, want %v", dec, c.dec)
		}
	}
}

func TestPoleSwitchInverse(t *testing.T) {
	v := astro.RADecToUnit(37, -12)
	r := astro.PoleSwitch(v, 200, 30)
	back := astro.PoleSwitchInverse(r, 200, 30)
	if math.Abs(back.X-v.X) > 1e-12 || math.Abs(back.Y-v.Y) > 1e-12 || math.Abs(back.Z-v.Z) > 1e-12 {
		t.Fatalf("PoleSwitch/PoleSwitchInverse mismatch: got %+v, want %+v", back, v)
	}
}

func TestGreatCircleFitCollinear(t *testing.T) {
	// Points along the celestial equator, moving east at a constant rate.
	t0 := []float64{0, 1, 2, 3, 4}
	ra := []float64{10, 11, 12, 13, 14}
	dec := []float64{0, 0, 0, 0, 0}
	gc, err := astro.GreatCircleFit(t0, ra, dec)
	if err != nil {
		t.Fatal(err)
	}
	if gc.CrossTrackRMS > 1e-9 {
		t.Errorf("expected ~0 cross-track RMS for exactly collinear points, got %v", gc.CrossTrackRMS)
	}
	if math.Abs(gc.VelDegPerDay-1) > 1e-6 {
		t.Errorf("expected velocity ~1 deg/day, got %v", gc.VelDegPerDay)
	}
	// The pole of the equator is the celestial pole.
	if math.Abs(math.Abs(gc.PoleDec)-90) > 1e-6 {
		t.Errorf("expected pole near +/-90 dec, got %v", gc.PoleDec)
	}
}

func TestQuadFitExact(t *testing.T) {
	tt := []float64{-2, -1, 0, 1, 2}
	y := make([]float64, len(tt))
	for i, ti := range tt {
		y[i] = 3 + 2*ti + 0.5*ti*ti
	}
	a, b, c := astro.QuadFit(tt, y)
	if math.Abs(a-3) > 1e-9 || math.Abs(b-2) > 1e-9 || math.Abs(c-0.5) > 1e-9 {
		t.Fatalf("QuadFit: got (%v %v %v), want (3 2 0.5)", a, b, c)
	}
}

func TestMedianRMS(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	if m := astro.Median(xs); m != 3 {
		t.Errorf("Median: got %v, want 3", m)
	}
	if r := astro.RMS([]float64{3, -4}); math.Abs(r-3.5355339059327378) > 1e-9 {
		t.Errorf("RMS: got %v", r)
	}
}
