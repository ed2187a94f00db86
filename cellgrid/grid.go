package cellgrid

import (
	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/internal/geom"
)

// Grid is the populated spatial index for one point set against one Box. It
// is reset and repopulated in place on every Build/Update call; all backing
// arrays are retained across calls per the arena-reuse discipline in spec
// §4.3 and §9.
type Grid struct {
	B *box.Box

	NRealPoints          int
	NTotalPoints         int
	NCellsWithPoints     int
	NCellsWithRealPoints int

	cellIndexOf   []int32 // linear cell id -> 1-based slot into cells, 0 = empty
	touchedLinear []int32 // linear ids touched this build, for cheap reset
	cells         []Cell
	RealCellSlots []int // indices into cells, recomputed each build

	// ProjScratch is per-worker scratch for the pairiter projection-sort
	// prune, indexed by worker id. It lives here (not in pairiter) because
	// its capacity must persist across calls the same way cells do.
	ProjScratch [][]ProjectedPoint
}

// NewGrid returns an empty Grid sized for b, with workers scratch buffers
// preallocated.
func NewGrid(b *box.Box, workers int) *Grid {
	if workers < 1 {
		workers = 1
	}
	g := &Grid{
		B:           b,
		cellIndexOf: make([]int32, b.NumCells()),
	}
	g.ProjScratch = make([][]ProjectedPoint, workers)
	return g
}

// NumCellsWithPoints returns the number of occupied cells (real or ghost).
func (g *Grid) NumCellsWithPoints() int { return len(g.cells) }

// Cell returns the occupied cell at slot i, 0 <= i < NumCellsWithPoints().
func (g *Grid) Cell(i int) *Cell { return &g.cells[i] }

// CellAtLinear returns the occupied cell with the given linear index, or nil
// if that cell has no points.
func (g *Grid) CellAtLinear(lin int) *Cell {
	if lin < 0 || lin >= len(g.cellIndexOf) {
		return nil
	}
	slot := g.cellIndexOf[lin]
	if slot == 0 {
		return nil
	}
	return &g.cells[slot-1]
}

// rebind grows cellIndexOf to cover b's (possibly new) cell count, zero-fill
// only the newly added tail, and adopts b as the grid's Box.
func (g *Grid) rebind(b *box.Box) {
	need := b.NumCells()
	if need > len(g.cellIndexOf) {
		grown := make([]int32, need)
		copy(grown, g.cellIndexOf)
		g.cellIndexOf = grown
	}
	g.B = b
}

// reset clears per-build bookkeeping while retaining every backing array:
// cellIndexOf entries touched last build are zeroed, Cell structs reused in
// place (their Points slices keep their capacity), and RealCellSlots/touched
// truncated to length zero without releasing capacity.
func (g *Grid) reset() {
	for _, lin := range g.touchedLinear {
		g.cellIndexOf[lin] = 0
	}
	g.touchedLinear = g.touchedLinear[:0]
	for i := range g.cells {
		g.cells[i].NPoints = 0
		g.cells[i].NReal = 0
		g.cells[i].ContainsReal = false
	}
	g.cells = g.cells[:0]
	g.RealCellSlots = g.RealCellSlots[:0]
	g.NRealPoints = 0
	g.NTotalPoints = 0
	g.NCellsWithPoints = 0
	g.NCellsWithRealPoints = 0
}

// getOrCreateCell returns the cell at linear index lin, creating it
// (growing g.cells, amortized) if this is the first point to land there
// during the current build.
func (g *Grid) getOrCreateCell(lin int, cart [3]int) *Cell {
	slot := g.cellIndexOf[lin]
	if slot != 0 {
		return &g.cells[slot-1]
	}
	center := g.cellCenter(cart)
	g.cells = append(g.cells, Cell{LinearIndex: lin, CartesianIndex: cart, Center: center})
	idx := len(g.cells) - 1
	g.cellIndexOf[lin] = int32(idx + 1)
	g.touchedLinear = append(g.touchedLinear, int32(lin))
	g.NCellsWithPoints++
	return &g.cells[idx]
}

func (g *Grid) cellCenter(cart [3]int) geom.Vec {
	var c geom.Vec
	for i := 0; i < g.B.Dim; i++ {
		c[i] = g.B.CellSize[i]*(float64(cart[i])+0.5) + g.B.GridOrigin[i]
	}
	return c
}

// insertReal inserts a real point, applying the "every real point precedes
// every ghost in its cell" invariant via insertRealPoint regardless of
// whether ghosts already landed in the cell from an earlier point's
// replication.
func (g *Grid) insertReal(origIdx int, coords geom.Vec) {
	cart := g.B.CellOf(coords)
	lin := g.B.LinearCellIndex(cart)
	cell := g.getOrCreateCell(lin, cart)
	if !cell.ContainsReal {
		cell.ContainsReal = true
		g.NCellsWithRealPoints++
		g.RealCellSlots = append(g.RealCellSlots, int(g.cellIndexOf[lin])-1)
	}
	insertRealPoint(cell, IndexedPoint{OriginalIndex: origIdx, Coords: coords, IsReal: true})
	g.NRealPoints++
	g.NTotalPoints++
}

// insertGhost inserts a ghost image of a real point.
func (g *Grid) insertGhost(origIdx int, coords geom.Vec) {
	cart := g.B.CellOf(coords)
	lin := g.B.LinearCellIndex(cart)
	cell := g.getOrCreateCell(lin, cart)
	appendPoint(cell, IndexedPoint{OriginalIndex: origIdx, Coords: coords, IsReal: false})
	g.NTotalPoints++
}
