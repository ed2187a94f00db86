// Package pairiter implements the traversal that visits, for every
// occupied real cell, a fixed stencil of neighbor cells and emits candidate
// point pairs within the box's cutoff, using a projection-sort prune to
// reject far pairs cheaply. See spec §4.4.
package pairiter

import "github.com/cellmap/pairwise/box"

type offset [3]int

// halfStencil2D/halfStencil3D hold the "forward" half of the 3^dim-1
// nonzero offsets: those whose first nonzero component is positive. Visiting
// only this half means each unordered pair of cells is visited exactly once.
var (
	halfStencil2D = buildStencil(2, true)
	halfStencil3D = buildStencil(3, true)
	fullStencil2D = buildStencil(2, false)
	fullStencil3D = buildStencil(3, false)
	zeroInclStencil2D = append([]offset{{0, 0, 0}}, fullStencil2D...)
	zeroInclStencil3D = append([]offset{{0, 0, 0}}, fullStencil3D...)
)

func buildStencil(dim int, halfOnly bool) []offset {
	var out []offset
	vals := [3]int{-1, 0, 1}
	zRange := []int{0}
	if dim == 3 {
		zRange = []int{-1, 0, 1}
	}
	for _, x := range vals {
		for _, y := range vals {
			for _, z := range zRange {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				if halfOnly && !isForward(x, y, z) {
					continue
				}
				out = append(out, offset{x, y, z})
			}
		}
	}
	return out
}

// isForward reports whether (x,y,z) is lexicographically greater than zero:
// the first nonzero component is positive.
func isForward(x, y, z int) bool {
	if x != 0 {
		return x > 0
	}
	if y != 0 {
		return y > 0
	}
	return z > 0
}

func stencilFor(kind box.UnitCellKind, dim int) []offset {
	if kind == box.Triclinic {
		if dim == 2 {
			return fullStencil2D
		}
		return fullStencil3D
	}
	if dim == 2 {
		return halfStencil2D
	}
	return halfStencil3D
}

func crossStencil(dim int) []offset {
	if dim == 2 {
		return zeroInclStencil2D
	}
	return zeroInclStencil3D
}

func addOffset(c [3]int, d offset, dim int) [3]int {
	var r [3]int
	for i := 0; i < dim; i++ {
		r[i] = c[i] + d[i]
	}
	return r
}

func inBounds(c [3]int, nc [3]int, dim int) bool {
	for i := 0; i < dim; i++ {
		if c[i] < 0 || c[i] >= nc[i] {
			return false
		}
	}
	return true
}
