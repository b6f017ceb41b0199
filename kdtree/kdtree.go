// Public domain.

// Package kdtree implements 3D and 4D k-d trees over indexed point
// vectors: build, range (ball) query, and nearest-neighbour query.
//
// Following the module's "no inheritance, flat indexed vectors" design
// note, the tree is a single array of Nodes referencing indices into the
// caller's original point slice; there are no pointer-based subtrees.
package kdtree

import (
	"math"
	"sort"
)

// Point is a fixed-dimension coordinate. Both the 3D (heliocentric
// position) and 4D (time + unit vector) variants use this same
// representation; only the dimensionality and how callers build the
// points differ (see tree3.go, tree4.go).
type Point []float64

// Node is one node of the tree: the index (into the original Points
// slice) of the point stored here, the splitting axis, and child node
// indices into Tree.Nodes (-1 for no child).
type Node struct {
	Idx         int
	Axis        int
	Left, Right int
}

// Tree is a k-d tree built over Points. Root indexes Nodes, or -1 for an
// empty tree.
type Tree struct {
	Points []Point
	Dims   int
	Nodes  []Node
	Root   int
}

// Build constructs a balanced k-d tree over points by recursive median
// split on the dimension of widest extent. Each level fully sorts its
// index slice to find the median, so Build is O(n log^2 n).
func Build(points []Point) *Tree {
	t := &Tree{Points: points, Root: -1}
	if len(points) == 0 {
		return t
	}
	t.Dims = len(points[0])
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	t.Nodes = make([]Node, 0, len(points))
	t.Root = t.build(idx)
	return t
}

// build recursively partitions idx (indices into t.Points), returning the
// node index of the subtree root, or -1 if idx is empty.
func (t *Tree) build(idx []int) int {
	if len(idx) == 0 {
		return -1
	}
	axis := t.widestAxis(idx)
	sort.Slice(idx, func(i, j int) bool {
		return t.Points[idx[i]][axis] < t.Points[idx[j]][axis]
	})
	mid := len(idx) / 2
	nodeIdx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Idx: idx[mid], Axis: axis, Left: -1, Right: -1})
	left := t.build(idx[:mid])
	right := t.build(idx[mid+1:])
	t.Nodes[nodeIdx].Left = left
	t.Nodes[nodeIdx].Right = right
	return nodeIdx
}

// widestAxis picks the dimension of widest extent among idx's points,
// falling back to axis 0 if all extents are equal (e.g. a single
// point).
func (t *Tree) widestAxis(idx []int) int {
	lo := append([]float64(nil), t.Points[idx[0]]...)
	hi := append([]float64(nil), t.Points[idx[0]]...)
	for _, i := range idx[1:] {
		p := t.Points[i]
		for d := 0; d < t.Dims; d++ {
			if p[d] < lo[d] {
				lo[d] = p[d]
			}
			if p[d] > hi[d] {
				hi[d] = p[d]
			}
		}
	}
	best, bestW := 0, -1.0
	for d := 0; d < t.Dims; d++ {
		w := hi[d] - lo[d]
		if w > bestW {
			bestW, best = w, d
		}
	}
	return best
}

func dist(a, b Point) float64 {
	var ss float64
	for d := range a {
		dd := a[d] - b[d]
		ss += dd * dd
	}
	return math.Sqrt(ss)
}

// RangeQuery returns the indices (into the original Points slice) of all
// points within radius of q, equivalent to the brute-force set
// {i : |Points[i] - q| <= radius}.
func (t *Tree) RangeQuery(q Point, radius float64) []int {
	var out []int
	t.rangeSearch(t.Root, q, radius, &out)
	sort.Ints(out)
	return out
}

func (t *Tree) rangeSearch(node int, q Point, radius float64, out *[]int) {
	if node < 0 {
		return
	}
	n := t.Nodes[node]
	p := t.Points[n.Idx]
	if dist(p, q) <= radius {
		*out = append(*out, n.Idx)
	}
	d := q[n.Axis] - p[n.Axis]
	if d <= 0 {
		t.rangeSearch(n.Left, q, radius, out)
		if math.Abs(d) <= radius {
			t.rangeSearch(n.Right, q, radius, out)
		}
	} else {
		t.rangeSearch(n.Right, q, radius, out)
		if math.Abs(d) <= radius {
			t.rangeSearch(n.Left, q, radius, out)
		}
	}
}

// Nearest returns the index (into Points) of the point nearest q, and
// the distance to it, using best-first search with hyperplane pruning.
// It panics if the tree is empty.
func (t *Tree) Nearest(q Point) (idx int, distance float64) {
	if t.Root < 0 {
		panic("kdtree: Nearest called on empty tree")
	}
	best, bestDist := -1, math.Inf(1)
	t.nearestSearch(t.Root, q, &best, &bestDist)
	return best, bestDist
}

func (t *Tree) nearestSearch(node int, q Point, best *int, bestDist *float64) {
	if node < 0 {
		return
	}
	n := t.Nodes[node]
	p := t.Points[n.Idx]
	if d := dist(p, q); d < *bestDist {
		*bestDist = d
		*best = n.Idx
	}
	d := q[n.Axis] - p[n.Axis]
	near, far := n.Left, n.Right
	if d > 0 {
		near, far = n.Right, n.Left
	}
	t.nearestSearch(near, q, best, bestDist)
	if math.Abs(d) < *bestDist {
		t.nearestSearch(far, q, best, bestDist)
	}
}
