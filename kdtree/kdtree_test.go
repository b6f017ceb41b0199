package kdtree_test

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"skytrack/kdtree"
)

func randomPoints(n, dims int, rnd *rand.Rand) []kdtree.Point {
	pts := make([]kdtree.Point, n)
	for i := range pts {
		p := make(kdtree.Point, dims)
		for d := range p {
			p[d] = rnd.Float64()*20 - 10
		}
		pts[i] = p
	}
	return pts
}

func bruteRange(pts []kdtree.Point, q kdtree.Point, radius float64) []int {
	var out []int
	for i, p := range pts {
		var ss float64
		for d := range p {
			dd := p[d] - q[d]
			ss += dd * dd
		}
		if math.Sqrt(ss) <= radius {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

func bruteNearest(pts []kdtree.Point, q kdtree.Point) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, p := range pts {
		var ss float64
		for d := range p {
			dd := p[d] - q[d]
			ss += dd * dd
		}
		if d := math.Sqrt(ss); d < bestDist {
			bestDist, best = d, i
		}
	}
	return best, bestDist
}

func TestRangeQueryMatchesBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		n := 5 + rnd.Intn(400)
		pts := randomPoints(n, 3, rnd)
		tree := kdtree.Build(pts)
		for q := 0; q < 10; q++ {
			query := randomPoints(1, 3, rnd)[0]
			radius := rnd.Float64() * 8
			got := tree.RangeQuery(query, radius)
			want := bruteRange(pts, query, radius)
			if len(got) != len(want) {
				t.Fatalf("trial %d query %d: got %d points, want %d", trial, q, len(got), len(want))
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("trial %d query %d: mismatch at %d: got %d, want %d", trial, q, i, got[i], want[i])
				}
			}
		}
	}
}

func TestRangeQueryLargeRandomized(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	pts := randomPoints(10000, 3, rnd)
	tree := kdtree.Build(pts)
	query := kdtree.Point{0, 0, 0}
	radius := 3.0
	got := tree.RangeQuery(query, radius)
	want := bruteRange(pts, query, radius)
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d", len(got), len(want))
	}
}

func TestNearestMatchesBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		n := 2 + rnd.Intn(300)
		pts := randomPoints(n, 4, rnd)
		tree := kdtree.Build(pts)
		for q := 0; q < 10; q++ {
			query := randomPoints(1, 4, rnd)[0]
			gotIdx, gotDist := tree.Nearest(query)
			wantIdx, wantDist := bruteNearest(pts, query)
			_ = gotIdx
			_ = wantIdx
			if math.Abs(gotDist-wantDist) > 1e-9 {
				t.Fatalf("trial %d query %d: got dist %v, want %v", trial, q, gotDist, wantDist)
			}
		}
	}
}
