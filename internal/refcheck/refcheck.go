// Package refcheck is an independent reference implementation of pairwise
// neighbor-finding used only by tests. It orders points with an llrb.Tree
// keyed by a Morton (Z-order) code rather than a cell grid, so completeness
// and uniqueness checks never compare the cell-list traversal against a
// second copy of itself.
package refcheck

import (
	"math"

	"github.com/biogo/store/llrb"

	"github.com/cellmap/pairwise/internal/geom"
)

// mortonPoint is one indexed point ordered by its Morton code, with point
// index as a tiebreaker so distinct points never collide in the tree.
type mortonPoint struct {
	key   uint64
	index int
}

func (p *mortonPoint) Compare(c llrb.Comparable) int {
	o := c.(*mortonPoint)
	if p.key != o.key {
		if p.key < o.key {
			return -1
		}
		return 1
	}
	return p.index - o.index
}

// mortonKey interleaves up to 3 coordinates, quantized to a grid of the
// given resolution and offset by bias, into one Z-order code. bias must be
// large enough that every coordinate plus bias is non-negative; resolution
// should be on the order of the cutoff radius under test.
func mortonKey(p geom.Vec, dim int, resolution, bias float64) uint64 {
	var q [3]uint32
	for i := 0; i < dim; i++ {
		v := (p[i] + bias) / resolution
		if v < 0 {
			v = 0
		}
		q[i] = uint32(v)
	}
	var key uint64
	for bit := uint(0); bit < 21; bit++ {
		for axis := 0; axis < dim; axis++ {
			if q[axis]&(1<<bit) != 0 {
				key |= 1 << (bit*uint(dim) + uint(axis))
			}
		}
	}
	return key
}

// Tree is an llrb-backed Morton-ordered index over a point set.
type Tree struct {
	t      llrb.Tree
	points []geom.Vec
}

// Build inserts every point into a fresh Morton-ordered tree.
func Build(points []geom.Vec, dim int, resolution, bias float64) *Tree {
	tr := &Tree{points: points}
	for i, p := range points {
		tr.t.Insert(&mortonPoint{key: mortonKey(p, dim, resolution, bias), index: i})
	}
	return tr
}

// Len returns the number of points indexed.
func (tr *Tree) Len() int { return tr.t.Len() }

// Ordered returns point indices in Morton order: the canonical traversal
// order used to enumerate pairs, independent of whatever cell order the
// traversal under test visits.
func (tr *Tree) Ordered() []int {
	out := make([]int, 0, tr.t.Len())
	tr.t.Do(func(item llrb.Comparable) bool {
		out = append(out, item.(*mortonPoint).index)
		return true
	})
	return out
}

// Pair is one reference neighbor pair, always reported with I<J.
type Pair struct {
	I, J int
	D    float64
}

// Dist2Func computes the (possibly minimum-image) squared distance between
// two of the tree's points; periodic wrapping, if any, is the caller's
// responsibility, matching how pairiter leaves wrapping to the Box.
type Dist2Func func(a, b geom.Vec) float64

// Pairs enumerates every unordered pair within r by brute-force distance
// check over the point set, in Morton order. O(n^2), so suitable only for
// test fixture sizes; it shares no code with the cell-list traversal.
func (tr *Tree) Pairs(r float64, dist2 Dist2Func) []Pair {
	order := tr.Ordered()
	r2 := r * r
	var out []Pair
	for a := 0; a < len(order); a++ {
		i := order[a]
		for b := a + 1; b < len(order); b++ {
			j := order[b]
			d2 := dist2(tr.points[i], tr.points[j])
			if d2 <= r2 {
				lo, hi := i, j
				if lo > hi {
					lo, hi = hi, lo
				}
				out = append(out, Pair{I: lo, J: hi, D: math.Sqrt(d2)})
			}
		}
	}
	return out
}

// Unique reports whether pairs contains no repeated (I, J) combination,
// the property spec §8's "uniqueness" scenarios check the traversal under
// test against.
func Unique(pairs []Pair) bool {
	seen := make(map[[2]int]bool, len(pairs))
	for _, p := range pairs {
		key := [2]int{p.I, p.J}
		if seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}
