package refcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cellmap/pairwise/internal/geom"
)

func TestOrderedVisitsEveryPointOnce(t *testing.T) {
	points := []geom.Vec{{0, 0, 0}, {5, 5, 0}, {1, 1, 0}, {9, 9, 0}}
	tr := Build(points, 2, 1.0, 100.0)
	order := tr.Ordered()
	assert.Equal(t, len(points), len(order))
	seen := make(map[int]bool)
	for _, idx := range order {
		assert.False(t, seen[idx])
		seen[idx] = true
	}
}

func TestPairsFindsCloseButNotFarPoints(t *testing.T) {
	points := []geom.Vec{{0, 0, 0}, {0.5, 0, 0}, {9, 9, 0}}
	tr := Build(points, 2, 1.0, 100.0)
	dist2 := func(a, b geom.Vec) float64 { return geom.Dist2(a, b, 2) }
	pairs := tr.Pairs(1.0, dist2)
	assert.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].I)
	assert.Equal(t, 1, pairs[0].J)
	assert.True(t, Unique(pairs))
}

func TestUniqueDetectsDuplicates(t *testing.T) {
	pairs := []Pair{{I: 0, J: 1}, {I: 0, J: 1}}
	assert.False(t, Unique(pairs))
}
