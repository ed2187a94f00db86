package neighborlist

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/internal/geom"
	"github.com/cellmap/pairwise/internal/refcheck"
	"github.com/cellmap/pairwise/mapreduce"
)

// bruteDist2 is the minimum-image squared distance between a and b under the
// given box, computed by scanning every lattice offset directly rather than
// through the cell-list/replication machinery under test.
func bruteDist2(b *box.Box, a, c geom.Vec) float64 {
	if b.Kind == box.NonPeriodic {
		return geom.Dist2(a, c, b.Dim)
	}
	vals := [3]float64{-1, 0, 1}
	best := math.Inf(1)
	zRange := []float64{0}
	if b.Dim == 3 {
		zRange = vals[:]
	}
	for _, x := range vals {
		for _, y := range vals {
			for _, z := range zRange {
				shift := geom.MulVec(b.M, geom.Vec{x, y, z}, b.Dim)
				img := geom.Add(c, shift, b.Dim)
				if d2 := geom.Dist2(a, img, b.Dim); d2 < best {
					best = d2
				}
			}
		}
	}
	return best
}

func randomPoints(n int, side float64, seed int64) []geom.Vec {
	r := rand.New(rand.NewSource(seed))
	pts := make([]geom.Vec, n)
	for i := range pts {
		pts[i] = geom.Vec{r.Float64() * side, r.Float64() * side, 0}
	}
	return pts
}

func toPairSet(pairs []Pair) map[[2]int]bool {
	m := make(map[[2]int]bool, len(pairs))
	for _, p := range pairs {
		lo, hi := p.I, p.J
		if lo > hi {
			lo, hi = hi, lo
		}
		m[[2]int{lo, hi}] = true
	}
	return m
}

func TestNeighborListMatchesBruteForceReference(t *testing.T) {
	cutoff := 1.5
	side := 10.0
	points := randomPoints(300, side, 42)
	sides := geom.Vec{side, side, 0}

	opts := mapreduce.DefaultOptions()
	opts.Workers = 2
	nl, err := Create(points, 2, cutoff, 1, &CellSpec{Sides: &sides}, opts)
	require.NoError(t, err)

	pairs := nl.NeighborListPairs()
	got := toPairSet(pairs)
	assert.True(t, refcheck.Unique(pairsToRefcheck(pairs)), "neighbor list must not emit duplicate pairs")

	var want []refcheck.Pair
	r2 := cutoff * cutoff
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if bruteDist2(nl.b, points[i], points[j]) <= r2 {
				want = append(want, refcheck.Pair{I: i, J: j})
			}
		}
	}
	for _, w := range want {
		assert.True(t, got[[2]int{w.I, w.J}], "missing pair (%d,%d)", w.I, w.J)
	}
	assert.Equal(t, len(want), len(pairs), "neighbor list must report exactly the pairs within cutoff, no more")
}

func pairsToRefcheck(pairs []Pair) []refcheck.Pair {
	out := make([]refcheck.Pair, len(pairs))
	for i, p := range pairs {
		lo, hi := p.I, p.J
		if lo > hi {
			lo, hi = hi, lo
		}
		out[i] = refcheck.Pair{I: lo, J: hi, D: p.D}
	}
	return out
}

func TestUpdateIsIdempotentOnUnchangedPoints(t *testing.T) {
	side := 8.0
	points := randomPoints(100, side, 7)
	sides := geom.Vec{side, side, 0}
	nl, err := Create(points, 2, 1.0, 1, &CellSpec{Sides: &sides}, mapreduce.DefaultOptions())
	require.NoError(t, err)

	first := append([]Pair(nil), nl.NeighborListPairs()...)
	require.NoError(t, nl.Update(points, nil, nil))
	second := nl.NeighborListPairs()

	assert.Equal(t, toPairSet(first), toPairSet(second))
}

func TestNeighborListPairsReusesBackingArray(t *testing.T) {
	side := 8.0
	points := randomPoints(150, side, 3)
	sides := geom.Vec{side, side, 0}
	nl, err := Create(points, 2, 1.2, 1, &CellSpec{Sides: &sides}, mapreduce.DefaultOptions())
	require.NoError(t, err)

	_ = nl.NeighborListPairs()
	require.NoError(t, nl.Update(points, nil, nil))
	allocs := testing.AllocsPerRun(5, func() {
		_ = nl.NeighborListPairs()
	})
	assert.Less(t, allocs, float64(len(points)), "steady-state NeighborListPairs should not allocate proportional to input size")
}

func TestRotationInvariance(t *testing.T) {
	side := 6.0
	points := randomPoints(80, side, 11)
	sides := geom.Vec{side, side, 0}
	nl, err := Create(points, 2, 0.8, 1, &CellSpec{Sides: &sides}, mapreduce.DefaultOptions())
	require.NoError(t, err)
	basePairs := toPairSet(nl.NeighborListPairs())

	rotated := make([]geom.Vec, len(points))
	for i, p := range points {
		rotated[i] = geom.Vec{side - p[1], p[0], 0}
	}
	nl2, err := Create(rotated, 2, 0.8, 1, &CellSpec{Sides: &sides}, mapreduce.DefaultOptions())
	require.NoError(t, err)
	rotatedPairs := toPairSet(nl2.NeighborListPairs())

	assert.Equal(t, len(basePairs), len(rotatedPairs))
}

func TestCutoffMonotonicity(t *testing.T) {
	side := 8.0
	points := randomPoints(200, side, 99)
	sides := geom.Vec{side, side, 0}
	nlSmall, err := Create(points, 2, 0.5, 1, &CellSpec{Sides: &sides}, mapreduce.DefaultOptions())
	require.NoError(t, err)
	nlBig, err := Create(points, 2, 1.5, 1, &CellSpec{Sides: &sides}, mapreduce.DefaultOptions())
	require.NoError(t, err)

	small := nlSmall.NeighborListPairs()
	big := nlBig.NeighborListPairs()
	assert.LessOrEqual(t, len(small), len(big))
}

func TestCreatePairedRejectsBadDimension(t *testing.T) {
	_, err := CreatePaired(nil, nil, 4, 1.0, 1, nil, mapreduce.DefaultOptions())
	require.Error(t, err)
	assert.True(t, box.IsKind(err, box.DimensionMismatch))
}

func TestCrossSetSymmetry(t *testing.T) {
	side := 8.0
	a := randomPoints(40, side, 1)
	b := randomPoints(60, side, 2)
	sides := geom.Vec{side, side, 0}
	nlAB, err := CreatePaired(a, b, 2, 1.0, 1, &CellSpec{Sides: &sides}, mapreduce.DefaultOptions())
	require.NoError(t, err)
	nlBA, err := CreatePaired(b, a, 2, 1.0, 1, &CellSpec{Sides: &sides}, mapreduce.DefaultOptions())
	require.NoError(t, err)

	pairsAB := toPairSet(nlAB.NeighborListPairs())
	pairsBA := toPairSet(nlBA.NeighborListPairs())
	assert.Equal(t, len(pairsAB), len(pairsBA))
}
