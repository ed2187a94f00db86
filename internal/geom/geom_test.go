package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubAddDot(t *testing.T) {
	a := Vec{1, 2, 3}
	b := Vec{4, 5, 6}
	assert.Equal(t, Vec{-3, -3, 0}, Sub(a, b, 2))
	assert.Equal(t, Vec{-3, -3, -3}, Sub(a, b, 3))
	assert.Equal(t, Vec{5, 7, 0}, Add(a, b, 2))
	assert.Equal(t, float64(1*4+2*5), Dot(a, b, 2))
}

func TestDist2(t *testing.T) {
	a := Vec{0, 0, 0}
	b := Vec{3, 4, 0}
	assert.Equal(t, 25.0, Dist2(a, b, 2))
	assert.Equal(t, 25.0, Dist2(a, b, 3))
}

func TestFloor(t *testing.T) {
	v := Vec{1.9, -0.1, 2.0}
	assert.Equal(t, [3]int{1, -1, 0}, Floor(v, 2))
	assert.Equal(t, [3]int{1, -1, 2}, Floor(v, 3))
}

func TestInverse3Identity(t *testing.T) {
	m := Mat{{2, 0, 0}, {0, 3, 0}, {0, 0, 1}}
	inv := Inverse3(m, 2)
	v := Vec{2, 3, 0}
	require.InDelta(t, 1.0, MulVec(inv, v, 2)[0], 1e-12)
	require.InDelta(t, 1.0, MulVec(inv, v, 2)[1], 1e-12)
}

func TestInverse3RoundTrip3D(t *testing.T) {
	m := Mat{{2, 0.3, 0}, {0, 3, 0.1}, {0.2, 0, 4}}
	inv := Inverse3(m, 3)
	prod := MulVec(m, MulVec(inv, Vec{1, 0, 0}, 3), 3)
	assert.InDelta(t, 1.0, prod[0], 1e-9)
	assert.InDelta(t, 0.0, prod[1], 1e-9)
	assert.InDelta(t, 0.0, prod[2], 1e-9)
}

func TestInverse3PanicsOnSingular(t *testing.T) {
	m := Mat{{1, 1, 0}, {1, 1, 0}, {0, 0, 1}}
	assert.Panics(t, func() { Inverse3(m, 2) })
}

func TestCross(t *testing.T) {
	x := Vec{1, 0, 0}
	y := Vec{0, 1, 0}
	assert.Equal(t, Vec{0, 0, 1}, Cross(x, y))
}

func TestDet3(t *testing.T) {
	m := Mat{{2, 0, 0}, {0, 3, 0}, {0, 0, 5}}
	assert.Equal(t, 6.0, Det3(m, 2))
	assert.Equal(t, 30.0, Det3(m, 3))
}

func TestFromSlice(t *testing.T) {
	v := FromSlice([]float64{1, 2})
	assert.Equal(t, Vec{1, 2, 0}, v)
}

func TestScale(t *testing.T) {
	v := Scale(Vec{1, 2, 3}, 2, 3)
	assert.Equal(t, Vec{2, 4, 6}, v)
	assert.False(t, math.IsNaN(v[0]))
}
