package pairiter

import (
	"math"

	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/cellgrid"
	"github.com/cellmap/pairwise/internal/geom"
)

// EmitFunc receives one candidate pair within cutoff: the two original
// indices, their squared distance, and their coordinates. d2 is unrooted;
// neighborlist takes the square root once per pair at the façade boundary.
type EmitFunc func(i, j int, d2 float64, pi, pj geom.Vec)

// VisitRealCell runs the intra-cell pass and neighbor-cell pass for the
// occupied cell at g.Cell(cellIdx), which must contain at least one real
// point. worker selects which entry of g.ProjScratch to reuse for the
// projection-sort prune; callers driving this from multiple goroutines must
// give each goroutine a distinct worker id.
func VisitRealCell(g *cellgrid.Grid, b *box.Box, cellIdx int, worker int, emit EmitFunc) {
	cell := g.Cell(cellIdx)
	visitIntraCell(b, cell, emit)

	stencil := stencilFor(b.Kind, b.Dim)
	triclinic := b.Kind == box.Triclinic
	for _, d := range stencil {
		ncart := addOffset(cell.CartesianIndex, d, b.Dim)
		if !inBounds(ncart, b.NC, b.Dim) {
			continue
		}
		nlin := b.LinearCellIndex(ncart)
		ncell := g.CellAtLinear(nlin)
		if ncell == nil || ncell.NPoints == 0 {
			continue
		}
		visitNeighborCell(g, b, cell, ncell, worker, triclinic, emit)
	}
}

// visitIntraCell emits every within-cell pair whose first point is real,
// following spec §4.4 step 1. Because real points are always stored before
// ghosts, scanning forward from each real point to the rest of the chain
// visits each unordered pair exactly once.
func visitIntraCell(b *box.Box, cell *cellgrid.Cell, emit EmitFunc) {
	for a := 0; a < cell.NPoints; a++ {
		pa := cell.Points[a]
		if !pa.IsReal {
			continue
		}
		for k := a + 1; k < cell.NPoints; k++ {
			pb := cell.Points[k]
			d2 := geom.Dist2(pa.Coords, pb.Coords, b.Dim)
			if d2 <= b.R2 {
				emit(pa.OriginalIndex, pb.OriginalIndex, d2, pa.Coords, pb.Coords)
			}
		}
	}
}

// visitNeighborCell runs the projection-sort prune described in spec §4.4:
// points of ncell are copied into per-worker scratch annotated with their
// projection onto the unit inter-cell-center axis, sorted ascending, then
// each real point of cell scans the sorted scratch until the axial
// separation exceeds the cutoff. The axis must be unit length: the
// "projection lower-bounds full distance" argument only holds for a unit
// vector, and cell centers are ‖Δc‖=cell_size apart, not 1, in general.
func visitNeighborCell(g *cellgrid.Grid, b *box.Box, cell, ncell *cellgrid.Cell, worker int, triclinic bool, emit EmitFunc) {
	deltaC := geom.Sub(ncell.Center, cell.Center, b.Dim)
	axis := geom.Scale(deltaC, 1/math.Sqrt(geom.Norm2(deltaC, b.Dim)), b.Dim)
	scratch := fillProjScratch(g, worker, ncell, cell.Center, axis, b.Dim)

	for a := 0; a < cell.NPoints; a++ {
		pa := cell.Points[a]
		if !pa.IsReal {
			continue
		}
		xi := geom.Dot(geom.Sub(pa.Coords, cell.Center, b.Dim), axis, b.Dim)
		for k := range scratch {
			sp := &scratch[k]
			if sp.XProj-xi > b.Cutoff {
				break
			}
			d2 := geom.Dist2(pa.Coords, sp.Coords, b.Dim)
			if d2 > b.R2 {
				continue
			}
			if triclinic {
				if pa.OriginalIndex < sp.OriginalIndex {
					emit(pa.OriginalIndex, sp.OriginalIndex, d2, pa.Coords, sp.Coords)
				}
				continue
			}
			emit(pa.OriginalIndex, sp.OriginalIndex, d2, pa.Coords, sp.Coords)
		}
	}
}

// fillProjScratch (re)populates g.ProjScratch[worker] with ncell's points,
// annotated and insertion-sorted ascending by projection onto the unit
// axis. The backing array is reused across calls; it only grows, never
// shrinks.
func fillProjScratch(g *cellgrid.Grid, worker int, ncell *cellgrid.Cell, center, axis geom.Vec, dim int) []cellgrid.ProjectedPoint {
	need := ncell.NPoints
	buf := g.ProjScratch[worker]
	if cap(buf) < need {
		buf = make([]cellgrid.ProjectedPoint, need)
	} else {
		buf = buf[:need]
	}
	for i := 0; i < need; i++ {
		p := ncell.Points[i]
		buf[i] = cellgrid.ProjectedPoint{
			OriginalIndex: p.OriginalIndex,
			XProj:         geom.Dot(geom.Sub(p.Coords, center, dim), axis, dim),
			Coords:        p.Coords,
		}
	}
	insertionSortByProj(buf)
	g.ProjScratch[worker] = buf
	return buf
}

func insertionSortByProj(s []cellgrid.ProjectedPoint) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j].XProj > v.XProj {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}
