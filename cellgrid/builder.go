package cellgrid

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/internal/geom"
)

// ShardWorkers returns the number of build shards to use for n real points
// given a worker budget, per spec §4.3: max(1, min(n/500, workers)).
func ShardWorkers(n, workers int) int {
	if workers < 1 {
		workers = 1
	}
	w := n / 500
	if w > workers {
		w = workers
	}
	if w < 1 {
		w = 1
	}
	return w
}

func shardRange(n, w, shard int) (lo, hi int) {
	base := n / w
	rem := n % w
	lo = shard*base + minInt(shard, rem)
	hi = lo + base
	if shard < rem {
		hi++
	}
	return lo, hi
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// BuildSerial resets g and rebuilds it from scratch over points, wrapping
// each into the primary cell and replicating ghosts as needed.
func BuildSerial(g *Grid, b *box.Box, points []geom.Vec) {
	g.rebind(b)
	g.reset()
	buildInto(g, b, points, 0, len(points))
}

func buildInto(g *Grid, b *box.Box, points []geom.Vec, lo, hi int) {
	for i := lo; i < hi; i++ {
		wrapped := b.WrapToFirst(points[i])
		g.insertReal(i, wrapped)
		replicate(g, b, i, wrapped)
	}
}

// BuildParallel partitions points into buildBatches contiguous shards (or,
// when buildBatches <= 0, ShardWorkers(len(points), workers) of them),
// builds each into its own entry of shardGrids (which must have at least
// that many preallocated Grids sharing b), then merges the shards into g.
// shardGrids is reused across calls by the caller (NeighborList), so no
// shard allocation happens after warm-up.
func BuildParallel(g *Grid, b *box.Box, points []geom.Vec, shardGrids []*Grid, workers, buildBatches int) error {
	n := len(points)
	w := buildBatches
	if w <= 0 {
		w = ShardWorkers(n, workers)
	}
	if w <= 1 {
		BuildSerial(g, b, points)
		return nil
	}
	if len(shardGrids) < w {
		panic("cellgrid: not enough shard grids preallocated for requested parallelism")
	}
	log.Debug.Printf("cellgrid: parallel build, %d points across %d shards", n, w)
	err := traverse.Each(w, func(shard int) error {
		lo, hi := shardRange(n, w, shard)
		sg := shardGrids[shard]
		sg.rebind(b)
		sg.reset()
		buildInto(sg, b, points, lo, hi)
		return nil
	})
	if err != nil {
		return err
	}
	g.rebind(b)
	g.reset()
	for shard := 0; shard < w; shard++ {
		mergeInto(g, shardGrids[shard])
	}
	return nil
}

// mergeInto folds every point in src into dst, which must share src's Box.
// The merge is deterministic only in which pairs end up in the destination
// grid, never in per-cell point order (spec §4.3).
func mergeInto(dst *Grid, src *Grid) {
	for i := range src.cells {
		cell := &src.cells[i]
		for p := 0; p < cell.NPoints; p++ {
			pt := cell.Points[p]
			if pt.IsReal {
				dst.insertReal(pt.OriginalIndex, pt.Coords)
			} else {
				dst.insertGhost(pt.OriginalIndex, pt.Coords)
			}
		}
	}
}
