package mapreduce

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/cellgrid"
	"github.com/cellmap/pairwise/internal/geom"
	"github.com/cellmap/pairwise/pairiter"
)

// Fold is the user callback folded over every candidate pair within cutoff.
// It must be pure with respect to acc and return the new accumulator value;
// mutate-and-return is fine for container accumulators.
type Fold[Acc any] func(pi, pj geom.Vec, i, j int, d2 float64, acc Acc) Acc

// Reducer combines the per-worker accumulators produced by a parallel Run
// into one final value. Reducers must be commutative: cross-worker pair
// emission order is never guaranteed (spec §5).
type Reducer[Acc any] func(init Acc, perWorker []Acc) Acc

// Clone returns a worker's own starting accumulator, given its worker id
// and the caller's init value. Most callers ignore the worker id and
// return a deep copy of init; façades with a preallocated per-worker
// buffer (e.g. neighborlist's pair buffers) use it to hand back their own
// reused slice instead.
type Clone[Acc any] func(worker int, init Acc) Acc

// Run folds f over every pair the grid's cells yield, serially or split
// into batches of g.RealCellSlots (NBatches.Traverse of them, or
// Options.Workers when that is 0).
func Run[Acc any](b *box.Box, g *cellgrid.Grid, init Acc, clone Clone[Acc], f Fold[Acc], opts Options, reduce Reducer[Acc]) Acc {
	if !opts.Parallel || len(g.RealCellSlots) == 0 {
		return runSerial(b, g, init, f)
	}
	batches := splitRange(len(g.RealCellSlots), opts.traverseBatches(opts.Workers))
	perWorker := make([]Acc, len(batches))
	err := traverse.Each(len(batches), func(w int) error {
		acc := clone(w, init)
		lo, hi := batches[w][0], batches[w][1]
		for _, slot := range g.RealCellSlots[lo:hi] {
			pairiter.VisitRealCell(g, b, slot, w, func(i, j int, d2 float64, pi, pj geom.Vec) {
				acc = f(pi, pj, i, j, d2, acc)
			})
		}
		perWorker[w] = acc
		if opts.ShowProgress {
			log.Debug.Printf("mapreduce: batch %d/%d done", w+1, len(batches))
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
	return reduce(init, perWorker)
}

func runSerial[Acc any](b *box.Box, g *cellgrid.Grid, init Acc, f Fold[Acc]) Acc {
	acc := init
	for _, slot := range g.RealCellSlots {
		pairiter.VisitRealCell(g, b, slot, 0, func(i, j int, d2 float64, pi, pj geom.Vec) {
			acc = f(pi, pj, i, j, d2, acc)
		})
	}
	return acc
}

// RunPaired folds f over every cross-set pair within cutoff, driving
// pairiter.VisitCrossRange over batches of pg.ReferencePoints.
func RunPaired[Acc any](b *box.Box, pg *cellgrid.PairedGrid, init Acc, clone Clone[Acc], f Fold[Acc], opts Options, reduce Reducer[Acc]) Acc {
	n := len(pg.ReferencePoints)
	if !opts.Parallel || n == 0 {
		acc := init
		pairiter.VisitCrossRange(pg, b, 0, n, func(i, j int, d2 float64, pi, pj geom.Vec) {
			acc = f(pi, pj, i, j, d2, acc)
		})
		return acc
	}
	batches := splitRange(n, opts.traverseBatches(opts.Workers))
	perWorker := make([]Acc, len(batches))
	err := traverse.Each(len(batches), func(w int) error {
		acc := clone(w, init)
		lo, hi := batches[w][0], batches[w][1]
		pairiter.VisitCrossRange(pg, b, lo, hi, func(i, j int, d2 float64, pi, pj geom.Vec) {
			acc = f(pi, pj, i, j, d2, acc)
		})
		perWorker[w] = acc
		if opts.ShowProgress {
			log.Debug.Printf("mapreduce: batch %d/%d done", w+1, len(batches))
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
	return reduce(init, perWorker)
}

// splitRange divides [0,n) into at most nbatches contiguous, roughly equal
// ranges, returning [lo,hi) pairs. Empty batches are omitted, except that
// n == 0 yields the single empty range [0,0).
func splitRange(n, nbatches int) [][2]int {
	if nbatches < 1 {
		nbatches = 1
	}
	if nbatches > n {
		nbatches = n
	}
	if nbatches < 1 {
		nbatches = 1
	}
	base := n / nbatches
	rem := n % nbatches
	out := make([][2]int, 0, nbatches)
	lo := 0
	for i := 0; i < nbatches; i++ {
		hi := lo + base
		if i < rem {
			hi++
		}
		if hi > lo {
			out = append(out, [2]int{lo, hi})
		}
		lo = hi
	}
	if len(out) == 0 {
		out = append(out, [2]int{0, n})
	}
	return out
}
