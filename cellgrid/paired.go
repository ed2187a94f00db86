package cellgrid

import (
	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/internal/geom"
)

// PairedGrid indexes one of two point sets in Target (the larger one when
// built with autoswap) and keeps the other set's raw coordinates in
// ReferencePoints, so pairiter's cross-set traversal scans one cell-lookup
// per reference point instead of building two full grids. Swap records
// whether the caller's (a, b) order was flipped, i.e. Target holds a;
// pairiter uses it to report indices back in the caller's original order.
type PairedGrid struct {
	ReferencePoints []geom.Vec
	Target          *Grid
	Swap            bool
}

// BuildPaired builds (or rebuilds in place) a PairedGrid from two point
// sets. By default the grid indexes b and a is the reference set. If
// autoswap is true and a is larger than b, the roles are exchanged: the
// grid indexes a, b is the reference set, and Swap is set. buildBatches
// overrides the build shard count, or 0 for auto (see BuildParallel).
func BuildPaired(pg *PairedGrid, bx *box.Box, a, b []geom.Vec, shardGrids []*Grid, workers, buildBatches int, autoswap bool) error {
	swap := false
	ref, target := a, b
	if autoswap && len(a) > len(b) {
		swap = true
		ref, target = b, a
	}
	if pg.Target == nil {
		pg.Target = NewGrid(bx, workers)
	}
	if err := BuildParallel(pg.Target, bx, target, shardGrids, workers, buildBatches); err != nil {
		return err
	}
	pg.ReferencePoints = ref
	pg.Swap = swap
	return nil
}
