package neighborlist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cellmap/pairwise/internal/geom"
)

func TestFingerprintChangesWithCutoff(t *testing.T) {
	sides := geom.Vec{10, 10, 0}
	cell := &CellSpec{Sides: &sides}
	a := fingerprint(2, 1.0, 1, cell)
	b := fingerprint(2, 2.0, 1, cell)
	assert.NotEqual(t, a, b)
}

func TestFingerprintStableForSameInputs(t *testing.T) {
	sides := geom.Vec{10, 10, 0}
	cell := &CellSpec{Sides: &sides}
	a := fingerprint(2, 1.0, 1, cell)
	b := fingerprint(2, 1.0, 1, cell)
	assert.Equal(t, a, b)
}

func TestFingerprintDistinguishesCellKind(t *testing.T) {
	sides := geom.Vec{10, 10, 0}
	m := geom.Mat{{10, 0, 0}, {0, 10, 0}, {0, 0, 1}}
	a := fingerprint(2, 1.0, 1, &CellSpec{Sides: &sides})
	b := fingerprint(2, 1.0, 1, &CellSpec{Matrix: &m})
	c := fingerprint(2, 1.0, 1, nil)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, b, c)
}
