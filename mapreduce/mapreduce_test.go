package mapreduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/cellgrid"
	"github.com/cellmap/pairwise/internal/geom"
)

func buildTestGrid(t *testing.T, n int, workers int) (*box.Box, *cellgrid.Grid) {
	b, err := box.NewOrthorhombicBox(geom.Vec{10, 10, 0}, 2, 1.0, 1)
	require.NoError(t, err)
	points := make([]geom.Vec, n)
	for i := range points {
		points[i] = geom.Vec{float64(i%10) + 0.3, float64((i*3)%10) + 0.3, 0}
	}
	g := cellgrid.NewGrid(b, workers)
	cellgrid.BuildSerial(g, b, points)
	return b, g
}

func TestRunSerialAndParallelAgree(t *testing.T) {
	b, g := buildTestGrid(t, 400, 4)

	countFold := func(pi, pj geom.Vec, i, j int, d2 float64, acc int) int { return acc + 1 }
	clone := func(_ int, init int) int { return init }

	serialOpts := Options{Parallel: false, Workers: 1}
	serialCount := Run[int](b, g, 0, clone, countFold, serialOpts, SumInt)

	parallelOpts := DefaultOptions()
	parallelOpts.Workers = 4
	parallelCount := Run[int](b, g, 0, clone, countFold, parallelOpts, SumInt)

	assert.Equal(t, serialCount, parallelCount)
	assert.Greater(t, serialCount, 0)
}

func TestSplitRangeCoversWholeRange(t *testing.T) {
	batches := splitRange(17, 5)
	total := 0
	prevHi := 0
	for _, bt := range batches {
		assert.Equal(t, prevHi, bt[0])
		total += bt[1] - bt[0]
		prevHi = bt[1]
	}
	assert.Equal(t, 17, total)
	assert.Equal(t, 17, prevHi)
}

func TestSplitRangeHandlesFewerItemsThanBatches(t *testing.T) {
	batches := splitRange(2, 8)
	total := 0
	for _, bt := range batches {
		total += bt[1] - bt[0]
	}
	assert.Equal(t, 2, total)
	assert.LessOrEqual(t, len(batches), 2)
}

func TestSumReducers(t *testing.T) {
	assert.Equal(t, 6.0, SumFloat64(0, []float64{1, 2, 3}))
	assert.Equal(t, 6, SumInt(0, []int{1, 2, 3}))
	got := SumVectorsFloat64([]float64{1, 1}, [][]float64{{1, 2}, {3, 4}})
	assert.Equal(t, []float64{5, 7}, got)
}
