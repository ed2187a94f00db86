// Package cellgrid implements the spatial index: a CellGrid partitions a
// point set into grid cells sized by box.Box, replicating ghost images near
// periodic boundaries so the pair iterator never has to wrap a coordinate
// mid-traversal.
package cellgrid

import "github.com/cellmap/pairwise/internal/geom"

// IndexedPoint is one entry in a Cell: either a real input point or a ghost
// image of one. Ghosts carry the original index so callers always see
// indices into the caller's own point slice.
type IndexedPoint struct {
	OriginalIndex int
	Coords        geom.Vec
	IsReal        bool
}

// Cell holds every point (real or ghost) that landed in one grid cell. When
// ContainsReal is true, Points[:NReal] are all real and Points[NReal:] are
// all ghosts; every real point precedes every ghost within a cell.
type Cell struct {
	LinearIndex    int
	CartesianIndex [3]int
	Center         geom.Vec
	ContainsReal   bool
	NReal          int
	NPoints        int
	Points         []IndexedPoint
}

func growPoints(cell *Cell) {
	if cell.NPoints == len(cell.Points) {
		newCap := len(cell.Points)*3/2 + 1
		grown := make([]IndexedPoint, newCap)
		copy(grown, cell.Points)
		cell.Points = grown
	}
}

// appendPoint appends a ghost point to the end of cell.Points.
func appendPoint(cell *Cell, pt IndexedPoint) {
	growPoints(cell)
	cell.Points[cell.NPoints] = pt
	cell.NPoints++
}

// insertRealPoint inserts a real point at the real/ghost boundary, displacing
// whatever ghost (if any) currently sits there to the new last slot. This
// keeps every real point ahead of every ghost regardless of insertion order.
func insertRealPoint(cell *Cell, pt IndexedPoint) {
	growPoints(cell)
	if cell.NReal < cell.NPoints {
		cell.Points[cell.NPoints] = cell.Points[cell.NReal]
	}
	cell.Points[cell.NReal] = pt
	cell.NPoints++
	cell.NReal++
}

// ProjectedPoint is pairiter's scratch record for the projection-sort
// prune: points of a neighbor cell annotated with their projection onto the
// inter-cell-center axis and sorted ascending by it.
type ProjectedPoint struct {
	OriginalIndex int
	XProj         float64
	Coords        geom.Vec
}
