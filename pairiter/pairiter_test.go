package pairiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/cellgrid"
	"github.com/cellmap/pairwise/internal/geom"
)

func TestVisitRealCellFindsAllPairsWithinCutoff(t *testing.T) {
	b, err := box.NewOrthorhombicBox(geom.Vec{10, 10, 0}, 2, 1.0, 1)
	require.NoError(t, err)
	points := make([]geom.Vec, 200)
	for i := range points {
		points[i] = geom.Vec{float64(i%10) + 0.1, float64((i*7)%10) + 0.1, 0}
	}
	g := cellgrid.NewGrid(b, 1)
	cellgrid.BuildSerial(g, b, points)

	type pairKey struct{ i, j int }
	got := map[pairKey]bool{}
	for _, slot := range g.RealCellSlots {
		VisitRealCell(g, b, slot, 0, func(i, j int, d2 float64, pi, pj geom.Vec) {
			lo, hi := i, j
			if lo > hi {
				lo, hi = hi, lo
			}
			key := pairKey{lo, hi}
			assert.False(t, got[key], "pair (%d,%d) emitted more than once", lo, hi)
			got[key] = true
		})
	}

	// Independent minimum-image brute force over every lattice offset.
	vals := [3]float64{-1, 0, 1}
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			best := geom.Dist2(points[i], points[j], 2)
			for _, x := range vals {
				for _, y := range vals {
					shift := geom.MulVec(b.M, geom.Vec{x, y, 0}, 2)
					img := geom.Add(points[j], shift, 2)
					if d2 := geom.Dist2(points[i], img, 2); d2 < best {
						best = d2
					}
				}
			}
			if best <= b.R2 {
				assert.True(t, got[pairKey{i, j}], "missing pair (%d,%d), d2=%v", i, j, best)
			}
		}
	}
}

func TestStencilForTriclinicUsesFullStencil(t *testing.T) {
	half := stencilFor(box.Orthorhombic, 2)
	full := stencilFor(box.Triclinic, 2)
	assert.Less(t, len(half), len(full))
	assert.Equal(t, 8, len(full))
	assert.Equal(t, 4, len(half))
}

func TestCrossStencilIncludesZeroOffset(t *testing.T) {
	s := crossStencil(2)
	found := false
	for _, o := range s {
		if o == (offset{0, 0, 0}) {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, 9, len(s))
}
