package pairiter

import (
	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/cellgrid"
	"github.com/cellmap/pairwise/internal/geom"
)

// VisitCrossRange runs the cross-set traversal (spec §4.4, "Cross-set
// traversal") for reference points in [lo, hi): for each, locate its cell
// in pg.Target and scan that cell plus every one of its 3^dim-1 neighbors,
// full stencil, no ordering constraint since the two sets are disjoint
// index spaces. If pg.Swap is set, emitted indices are swapped back so i
// always refers to the first set the caller originally passed in.
func VisitCrossRange(pg *cellgrid.PairedGrid, b *box.Box, lo, hi int, emit EmitFunc) {
	stencil := crossStencil(b.Dim)
	for idx := lo; idx < hi; idx++ {
		p := pg.ReferencePoints[idx]
		wrapped := b.WrapToFirst(p)
		cart := b.CellOf(wrapped)
		for _, d := range stencil {
			ncart := addOffset(cart, d, b.Dim)
			if !inBounds(ncart, b.NC, b.Dim) {
				continue
			}
			nlin := b.LinearCellIndex(ncart)
			cell := pg.Target.CellAtLinear(nlin)
			if cell == nil {
				continue
			}
			for k := 0; k < cell.NPoints; k++ {
				tp := cell.Points[k]
				d2 := geom.Dist2(wrapped, tp.Coords, b.Dim)
				if d2 > b.R2 {
					continue
				}
				if pg.Swap {
					emit(tp.OriginalIndex, idx, d2, tp.Coords, wrapped)
				} else {
					emit(idx, tp.OriginalIndex, d2, wrapped, tp.Coords)
				}
			}
		}
	}
}
