// Package box classifies the unit cell (non-periodic, orthorhombic, or
// triclinic), sizes the cutoff-aware cell grid, and wraps coordinates into
// the primary cell. It has no notion of points beyond what's needed to size
// a non-periodic box; cellgrid owns the spatial index built on top of it.
package box

import (
	"math"

	"github.com/grailbio/base/log"
	"github.com/cellmap/pairwise/internal/geom"
)

// UnitCellKind classifies how a Box's lattice behaves.
type UnitCellKind int

const (
	NonPeriodic UnitCellKind = iota
	Orthorhombic
	Triclinic
)

func (k UnitCellKind) String() string {
	switch k {
	case NonPeriodic:
		return "NonPeriodic"
	case Orthorhombic:
		return "Orthorhombic"
	case Triclinic:
		return "Triclinic"
	default:
		return "Unknown"
	}
}

// Box is the immutable geometric configuration a CellGrid is built against.
// Construct a new one with New* or UpdateBox; never mutate a live Box, since
// CellGrid and NeighborList cache values derived from it.
type Box struct {
	Dim    int
	Kind   UnitCellKind
	M      geom.Mat // column lattice vectors; diagonal for Non/Orthorhombic
	invM   geom.Mat
	Cutoff float64
	R2     float64
	LCell  int

	NC        [3]int     // grid dimensions, halo included
	CellSize  geom.Vec   // per-axis cell size
	MaxCorner geom.Vec   // per-axis extent measured from MinCorner (no halo); the upper corner when MinCorner is 0
	MinCorner geom.Vec   // bounding box lower corner (no halo); 0 except NonPeriodic
	GridOrigin geom.Vec  // halo-inclusive grid minimum, i.e. MinCorner - lcell*CellSize
}

// NumCells returns the total number of grid cells (including halo).
func (b *Box) NumCells() int {
	n := 1
	for i := 0; i < b.Dim; i++ {
		n *= b.NC[i]
	}
	return n
}

// LinearCellIndex converts a per-axis cartesian cell index into the
// row-major linear index used to address CellGrid.cells.
func (b *Box) LinearCellIndex(c [3]int) int {
	idx := 0
	for i := 0; i < b.Dim; i++ {
		idx = idx*b.NC[i] + c[i]
	}
	return idx
}

// CellOf returns the cartesian cell index containing point p.
func (b *Box) CellOf(p geom.Vec) [3]int {
	var c [3]int
	for i := 0; i < b.Dim; i++ {
		c[i] = int(math.Floor((p[i] - b.GridOrigin[i]) / b.CellSize[i]))
	}
	return c
}

// WrapToFirst expresses p in lattice coordinates, takes the fractional part
// of each component in [0,1), and reconstructs the wrapped Cartesian point.
// For NonPeriodic boxes wrapping is the identity: the box was sized to
// contain every input point.
func (b *Box) WrapToFirst(p geom.Vec) geom.Vec {
	if b.Kind == NonPeriodic {
		return p
	}
	frac := geom.MulVec(b.invM, p, b.Dim)
	for i := 0; i < b.Dim; i++ {
		f := frac[i] - math.Floor(frac[i])
		frac[i] = f
	}
	return geom.MulVec(b.M, frac, b.Dim)
}

func validateCutoff(cutoff float64) error {
	if math.IsNaN(cutoff) || math.IsInf(cutoff, 0) || cutoff <= 0 {
		return newError(CutoffNotPositive, "cutoff must be positive and finite, got %v", cutoff)
	}
	return nil
}

// NewOrthorhombicBox builds a Box from a per-axis side-length vector.
func NewOrthorhombicBox(sides geom.Vec, dim int, cutoff float64, lcell int) (*Box, error) {
	if err := validateCutoff(cutoff); err != nil {
		return nil, err
	}
	if lcell < 1 {
		lcell = 1
	}
	var m geom.Mat
	for i := 0; i < dim; i++ {
		m[i][i] = sides[i]
	}
	for i := dim; i < 3; i++ {
		m[i][i] = 1
	}
	b := &Box{Dim: dim, Kind: Orthorhombic, M: m, Cutoff: cutoff, R2: cutoff * cutoff, LCell: lcell}
	if err := b.sizeOrthorhombicGrid(sides); err != nil {
		return nil, err
	}
	b.invM = geom.Inverse3(m, dim)
	return b, nil
}

// NewNonPeriodicBox sizes a non-periodic box to contain every point in pts,
// padded by the cutoff on each side (so the minimum resulting side length is
// 2*cutoff, even for a single point or a degenerate axis).
func NewNonPeriodicBox(pts []geom.Vec, dim int, cutoff float64, lcell int) (*Box, error) {
	return newNonPeriodicBox(dim, cutoff, lcell, pts)
}

// NewNonPeriodicBoxPaired sizes a non-periodic box to contain every point in
// both a and b, for two-set queries: a box sized from only the larger set
// would let reference points from the smaller set fall outside the grid and
// silently lose their pairs.
func NewNonPeriodicBoxPaired(a, b []geom.Vec, dim int, cutoff float64, lcell int) (*Box, error) {
	return newNonPeriodicBox(dim, cutoff, lcell, a, b)
}

// boundsOf returns the per-axis min/max over every point in every supplied
// set, or the zero vector on both ends if no set holds any points.
func boundsOf(dim int, ptsSets ...[]geom.Vec) (lo, hi geom.Vec) {
	for i := 0; i < dim; i++ {
		lo[i] = math.Inf(1)
		hi[i] = math.Inf(-1)
	}
	n := 0
	for _, pts := range ptsSets {
		n += len(pts)
		for _, p := range pts {
			for i := 0; i < dim; i++ {
				if p[i] < lo[i] {
					lo[i] = p[i]
				}
				if p[i] > hi[i] {
					hi[i] = p[i]
				}
			}
		}
	}
	if n == 0 {
		lo, hi = geom.Vec{}, geom.Vec{}
	}
	return lo, hi
}

func newNonPeriodicBox(dim int, cutoff float64, lcell int, ptsSets ...[]geom.Vec) (*Box, error) {
	if err := validateCutoff(cutoff); err != nil {
		return nil, err
	}
	if lcell < 1 {
		lcell = 1
	}
	lo, hi := boundsOf(dim, ptsSets...)
	var sides geom.Vec
	var minCorner geom.Vec
	for i := 0; i < dim; i++ {
		minCorner[i] = lo[i] - cutoff
		sides[i] = (hi[i] - lo[i]) + 2*cutoff
	}
	var m geom.Mat
	for i := 0; i < dim; i++ {
		m[i][i] = sides[i]
	}
	for i := dim; i < 3; i++ {
		m[i][i] = 1
	}
	b := &Box{Dim: dim, Kind: NonPeriodic, M: m, Cutoff: cutoff, R2: cutoff * cutoff, LCell: lcell}
	b.invM = geom.Inverse3(m, dim)
	b.MinCorner = minCorner
	if err := b.sizeOrthorhombicGrid(sides); err != nil {
		return nil, err
	}
	for i := 0; i < dim; i++ {
		b.GridOrigin[i] = minCorner[i] - float64(lcell)*b.CellSize[i]
	}
	return b, nil
}

// NewTriclinicBox builds a Box from a full column-lattice-vector matrix.
func NewTriclinicBox(m geom.Mat, dim int, cutoff float64, lcell int) (*Box, error) {
	if err := validateCutoff(cutoff); err != nil {
		return nil, err
	}
	if lcell < 1 {
		lcell = 1
	}
	for i := dim; i < 3; i++ {
		if m[i][i] == 0 {
			m[i][i] = 1
		}
	}
	if err := checkMinimumImage(m, dim, cutoff); err != nil {
		return nil, err
	}
	b := &Box{Dim: dim, Kind: Triclinic, M: m, Cutoff: cutoff, R2: cutoff * cutoff, LCell: lcell}
	b.invM = geom.Inverse3(m, dim)
	b.sizeTriclinicGrid()
	return b, nil
}

// sizeOrthorhombicGrid fills NC, CellSize and MaxCorner for an Orthorhombic
// or NonPeriodic box given its side lengths, and GridOrigin for an
// Orthorhombic one; NonPeriodic callers set GridOrigin from MinCorner
// afterwards. See spec §4.1, "Grid sizing (orthorhombic/nonperiodic)".
func (b *Box) sizeOrthorhombicGrid(sides geom.Vec) error {
	for i := 0; i < b.Dim; i++ {
		if sides[i] <= 0 {
			return newError(InvalidCell, "side[%d] must be positive, got %v", i, sides[i])
		}
		nc := int(float64(b.LCell) * sides[i] / b.Cutoff)
		if nc < 1 {
			nc = 1
		}
		cellSize := sides[i] / float64(nc)
		if cellSize < b.Cutoff/float64(b.LCell) {
			return newError(InvalidCell, "axis %d cell size %v smaller than r/lcell %v", i, cellSize, b.Cutoff/float64(b.LCell))
		}
		b.CellSize[i] = cellSize
		b.NC[i] = nc + 2*b.LCell
		b.MaxCorner[i] = sides[i]
		if b.Kind == Orthorhombic {
			b.GridOrigin[i] = -float64(b.LCell) * cellSize
		}
	}
	log.Debug.Printf("box: sized %v grid nc=%v cell_size=%v", b.Kind, b.NC, b.CellSize)
	return nil
}

// sizeTriclinicGrid fills NC, CellSize, MaxCorner, GridOrigin for a
// Triclinic box. See spec §4.1, "Grid sizing (triclinic)".
func (b *Box) sizeTriclinicGrid() {
	var maxCorner geom.Vec
	for i := 0; i < b.Dim; i++ {
		var s float64
		for j := 0; j < b.Dim; j++ {
			s += b.M[i][j]
		}
		maxCorner[i] = s
	}
	b.MaxCorner = maxCorner
	for i := 0; i < b.Dim; i++ {
		cellSize := b.Cutoff / float64(b.LCell)
		b.CellSize[i] = cellSize
		nc := int(math.Ceil((maxCorner[i] + 2*b.Cutoff) / cellSize))
		if nc < 1+2*b.LCell {
			nc = 1 + 2*b.LCell
		}
		b.NC[i] = nc
		b.GridOrigin[i] = -float64(b.LCell) * cellSize
	}
	log.Debug.Printf("box: sized %v grid nc=%v cell_size=%v", b.Kind, b.NC, b.CellSize)
}

// checkMinimumImage rejects lattices where the cutoff doesn't satisfy the
// minimum-image convention: the perpendicular distance between opposite
// faces of the cell (volume / base-area) must exceed 2*cutoff along every
// axis, exactly the constraint molecular-dynamics cell lists enforce before
// trusting a single-image neighbor search.
func checkMinimumImage(m geom.Mat, dim int, cutoff float64) error {
	vol := math.Abs(geom.Det3(m, dim))
	if vol == 0 {
		return newError(InvalidCell, "lattice matrix is singular")
	}
	var cols [3]geom.Vec
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			cols[i][j] = m[j][i]
		}
	}
	if dim == 2 {
		for i := 0; i < 2; i++ {
			other := cols[1-i]
			edgeLen := math.Sqrt(geom.Norm2(other, 2))
			if edgeLen == 0 {
				return newError(InvalidCell, "degenerate lattice vector %d", i)
			}
			height := vol / edgeLen
			if height <= 2*cutoff {
				return newError(InvalidCell, "cell height along axis %d (%v) must exceed 2*cutoff (%v)", i, height, 2*cutoff)
			}
		}
		return nil
	}
	for i := 0; i < 3; i++ {
		a, b2 := cols[(i+1)%3], cols[(i+2)%3]
		faceArea := math.Sqrt(geom.Norm2(geom.Cross(a, b2), 3))
		if faceArea == 0 {
			return newError(InvalidCell, "degenerate lattice face opposite axis %d", i)
		}
		height := vol / faceArea
		if height <= 2*cutoff {
			return newError(InvalidCell, "cell height along axis %d (%v) must exceed 2*cutoff (%v)", i, height, 2*cutoff)
		}
	}
	return nil
}

// UpdateBox returns a new Box of old's kind, dimension and lcell with the
// supplied overrides (sides, matrix, or cutoff) applied; the grid is
// recomputed on every call, whether or not a value changed. A NonPeriodic
// box is re-sized from points. NonPeriodic boxes may not receive an
// explicit cell.
func UpdateBox(old *Box, sides *geom.Vec, m *geom.Mat, cutoff *float64, points []geom.Vec) (*Box, error) {
	if old.Kind == NonPeriodic && (sides != nil || m != nil) {
		return nil, newError(NonPeriodicWithCellOverride, "cannot override cell on a NonPeriodic box")
	}
	newCutoff := old.Cutoff
	if cutoff != nil {
		newCutoff = *cutoff
	}
	switch old.Kind {
	case NonPeriodic:
		return NewNonPeriodicBox(points, old.Dim, newCutoff, old.LCell)
	case Orthorhombic:
		newSides := old.MaxCorner
		if sides != nil {
			newSides = *sides
		}
		return NewOrthorhombicBox(newSides, old.Dim, newCutoff, old.LCell)
	case Triclinic:
		newM := old.M
		if m != nil {
			newM = *m
		}
		return NewTriclinicBox(newM, old.Dim, newCutoff, old.LCell)
	}
	return nil, newError(InvalidCell, "unknown box kind %v", old.Kind)
}
