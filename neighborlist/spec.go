package neighborlist

import (
	"encoding/binary"
	"math"

	"github.com/dgryski/go-farm"

	"github.com/cellmap/pairwise/internal/geom"
)

// CellSpec describes an explicit unit cell override passed to Create or
// Update. Exactly one of Sides or Matrix should be set; nil means
// non-periodic (auto-sized from the input points).
type CellSpec struct {
	Sides  *geom.Vec
	Matrix *geom.Mat
}

// fingerprint hashes the parameters that affect Box/grid shape, so Update
// can cheaply tell whether the box needs rebuilding or just the grid needs
// refilling with new coordinates (spec §4.3 "Update semantics", §4.6
// "updates Box only if any supplied parameter differs"). This is the same
// fingerprint-and-compare idiom the teacher corpus uses for shard/content
// identity, applied here to box configuration instead of file content.
func fingerprint(dim int, cutoff float64, lcell int, cell *CellSpec) uint64 {
	var buf []byte
	var tmp [8]byte
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(tmp[:], v)
		buf = append(buf, tmp[:]...)
	}
	putF64 := func(v float64) { putU64(math.Float64bits(v)) }

	putU64(uint64(dim))
	putF64(cutoff)
	putU64(uint64(lcell))
	switch {
	case cell == nil:
		putU64(0)
	case cell.Sides != nil:
		putU64(1)
		for i := 0; i < dim; i++ {
			putF64(cell.Sides[i])
		}
	case cell.Matrix != nil:
		putU64(2)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				putF64(cell.Matrix[i][j])
			}
		}
	}
	return farm.Hash64(buf)
}
