package ephem_test

import (
	"math"
	"testing"

	"github.com/soniakeys/coord"

	"skytrack/ephem"
)

func linearGrid(n int, mjd0 float64) []ephem.Sample {
	g := make([]ephem.Sample, n)
	for i := 0; i < n; i++ {
		m := mjd0 + float64(i)
		g[i] = ephem.Sample{
			MJD: m,
			Pos: coord.Cart{X: m, Y: 2 * m, Z: -m},
			Vel: coord.Cart{X: 1, Y: 2, Z: -1},
		}
	}
	return g
}

func TestSamplerInterpolatesLinearExactly(t *testing.T) {
	grid := linearGrid(10, 59000)
	s, err := ephem.NewSampler(grid, 3)
	if err != nil {
		t.Fatal(err)
	}
	at, err := s.At(59003.5)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(at.Pos.X-59003.5) > 1e-9 {
		t.Errorf("X: got %v, want %v", at.Pos.X, 59003.5)
	}
	if math.Abs(at.Pos.Y-2*59003.5) > 1e-9 {
		t.Errorf("Y: got %v, want %v", at.Pos.Y, 2*59003.5)
	}
}

func TestSamplerOutOfRange(t *testing.T) {
	grid := linearGrid(10, 59000)
	s, err := ephem.NewSampler(grid, 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.At(58999); err == nil {
		t.Fatal("expected OUT_OF_RANGE error for mjd below grid")
	}
	if _, err := s.At(59100); err == nil {
		t.Fatal("expected OUT_OF_RANGE error for mjd above grid")
	}
}

func TestLstWraps(t *testing.T) {
	l := ephem.Lst(59000, 0)
	if l < 0 || l >= 2*math.Pi {
		t.Fatalf("Lst out of range: %v", l)
	}
}
