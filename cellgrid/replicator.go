package cellgrid

import (
	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/internal/geom"
)

// latticeOffsets2D and latticeOffsets3D are the non-zero {-1,0,1}^dim
// lattice shift combinations, precomputed once since the set never
// changes.
var latticeOffsets2D = buildOffsets(2)
var latticeOffsets3D = buildOffsets(3)

func buildOffsets(dim int) []geom.Vec {
	var offsets []geom.Vec
	vals := [3]float64{-1, 0, 1}
	if dim == 2 {
		for _, x := range vals {
			for _, y := range vals {
				if x == 0 && y == 0 {
					continue
				}
				offsets = append(offsets, geom.Vec{x, y, 0})
			}
		}
		return offsets
	}
	for _, x := range vals {
		for _, y := range vals {
			for _, z := range vals {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				offsets = append(offsets, geom.Vec{x, y, z})
			}
		}
	}
	return offsets
}

func latticeOffsets(dim int) []geom.Vec {
	if dim == 2 {
		return latticeOffsets2D
	}
	return latticeOffsets3D
}

// replicate emits ghost images of the real point at origIdx/coords into g,
// for every lattice offset whose image falls within the halo region. It is
// a no-op for NonPeriodic boxes. See spec §4.2.
func replicate(g *Grid, b *box.Box, origIdx int, coords geom.Vec) {
	if b.Kind == box.NonPeriodic {
		return
	}
	for _, k := range latticeOffsets(b.Dim) {
		shift := geom.MulVec(b.M, k, b.Dim)
		img := geom.Add(coords, shift, b.Dim)
		if withinHalo(b, img) {
			g.insertGhost(origIdx, img)
		}
	}
}

// withinHalo reports whether img lies within the grid's halo-inclusive
// bounding region on every axis: -lcell*cell_size <= coord < max_corner +
// lcell*cell_size.
func withinHalo(b *box.Box, img geom.Vec) bool {
	for i := 0; i < b.Dim; i++ {
		lo := -float64(b.LCell) * b.CellSize[i]
		hi := b.MaxCorner[i] + float64(b.LCell)*b.CellSize[i]
		if img[i] < lo || img[i] >= hi {
			return false
		}
	}
	return true
}
