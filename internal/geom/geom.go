// Package geom provides the small fixed-size vector arithmetic shared by the
// box, cellgrid, pairiter, and mapreduce packages. Vectors are always stored
// as [3]float64; 2D callers simply leave the third component at zero. Using
// a fixed-size array rather than a slice keeps every operation stack
// allocated, which is what lets the cell list and pair iterator run without
// touching the heap on repeated calls.
package geom

import "math"

// Vec is a 2D or 3D point or displacement. Dim tells Sub/Dot/Norm2 how many
// components to consider; the unused trailing component(s) must be zero.
type Vec [3]float64

// Sub returns a-b, considering only the first dim components.
func Sub(a, b Vec, dim int) Vec {
	var r Vec
	for i := 0; i < dim; i++ {
		r[i] = a[i] - b[i]
	}
	return r
}

// Add returns a+b, considering only the first dim components.
func Add(a, b Vec, dim int) Vec {
	var r Vec
	for i := 0; i < dim; i++ {
		r[i] = a[i] + b[i]
	}
	return r
}

// Dot returns the dot product of a and b over the first dim components.
func Dot(a, b Vec, dim int) float64 {
	var s float64
	for i := 0; i < dim; i++ {
		s += a[i] * b[i]
	}
	return s
}

// Norm2 returns the squared Euclidean length of v over the first dim
// components.
func Norm2(v Vec, dim int) float64 {
	return Dot(v, v, dim)
}

// Dist2 returns the squared Euclidean distance between a and b.
func Dist2(a, b Vec, dim int) float64 {
	d := Sub(a, b, dim)
	return Norm2(d, dim)
}

// Scale returns v*k over the first dim components.
func Scale(v Vec, k float64, dim int) Vec {
	var r Vec
	for i := 0; i < dim; i++ {
		r[i] = v[i] * k
	}
	return r
}

// Floor returns the component-wise floor of v over the first dim components.
func Floor(v Vec, dim int) [3]int {
	var r [3]int
	for i := 0; i < dim; i++ {
		r[i] = int(math.Floor(v[i]))
	}
	return r
}

// FromSlice copies a length-2 or length-3 slice into a Vec.
func FromSlice(s []float64) Vec {
	var v Vec
	copy(v[:], s)
	return v
}

// Mat is a 3x3 matrix of column lattice vectors. 2D lattices use only the
// top-left 2x2 block; row/column 2 is the identity in that case.
type Mat [3][3]float64

// MulVec returns M*v, the lattice vector with fractional-coordinate
// components v expressed in Cartesian space.
func MulVec(m Mat, v Vec, dim int) Vec {
	var r Vec
	for i := 0; i < dim; i++ {
		var s float64
		for j := 0; j < dim; j++ {
			s += m[i][j] * v[j]
		}
		r[i] = s
	}
	return r
}

// Inverse3 returns the inverse of a 3x3 matrix (or, for dim==2, the inverse
// of its top-left 2x2 block embedded back into a 3x3 identity-padded
// matrix). It panics if m is singular; callers must validate the lattice
// before relying on this (box construction rejects degenerate lattices).
func Inverse3(m Mat, dim int) Mat {
	if dim == 2 {
		det := m[0][0]*m[1][1] - m[0][1]*m[1][0]
		if det == 0 {
			panic("geom: singular 2D lattice matrix")
		}
		inv := Mat{}
		inv[0][0] = m[1][1] / det
		inv[0][1] = -m[0][1] / det
		inv[1][0] = -m[1][0] / det
		inv[1][1] = m[0][0] / det
		inv[2][2] = 1
		return inv
	}
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if det == 0 {
		panic("geom: singular 3D lattice matrix")
	}
	invDet := 1 / det
	var inv Mat
	inv[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * invDet
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invDet
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invDet
	inv[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * invDet
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invDet
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * invDet
	inv[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * invDet
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * invDet
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * invDet
	return inv
}

// Det3 returns the determinant of m's dim x dim leading block.
func Det3(m Mat, dim int) float64 {
	if dim == 2 {
		return m[0][0]*m[1][1] - m[0][1]*m[1][0]
	}
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Cross returns a x b, valid for dim==3 only.
func Cross(a, b Vec) Vec {
	return Vec{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
