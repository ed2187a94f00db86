// Package neighborlist is the convenience façade described in spec §4.6: it
// owns a Box, a CellGrid (or PairedGrid for two-set queries), per-worker
// scratch grids, and per-worker pair buffers, all reused across calls.
package neighborlist

import (
	"math"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/cellgrid"
	"github.com/cellmap/pairwise/internal/geom"
	"github.com/cellmap/pairwise/mapreduce"
)

// Pair is one emitted neighbor: i and j are the caller's original point
// indices (i<j not guaranteed for single-set queries; see spec §4.6) and D
// is the rooted Euclidean distance.
type Pair struct {
	I, J int
	D    float64
}

// NeighborList is a reusable, allocation-stable façade over Box + CellGrid
// (+ optional PairedGrid) + MapReduce, configured for pair collection.
type NeighborList struct {
	dim     int
	lcell   int
	cutoff  float64
	cell    *CellSpec
	fp      uint64
	workers int

	b    *box.Box
	grid *cellgrid.Grid
	pg   *cellgrid.PairedGrid

	shardGrids []*cellgrid.Grid
	pairBuf    [][]Pair
	outBuf     []Pair

	opts mapreduce.Options
}

func newNeighborList(dim int, cutoff float64, lcell int, cell *CellSpec, opts mapreduce.Options) *NeighborList {
	if opts.Workers < 1 {
		opts = mapreduce.DefaultOptions()
	}
	return &NeighborList{
		dim:     dim,
		lcell:   lcell,
		cutoff:  cutoff,
		cell:    cell,
		workers: opts.Workers,
		opts:    opts,
	}
}

func buildBox(dim int, cutoff float64, lcell int, cell *CellSpec, points []geom.Vec) (*box.Box, error) {
	switch {
	case cell == nil:
		return box.NewNonPeriodicBox(points, dim, cutoff, lcell)
	case cell.Sides != nil:
		return box.NewOrthorhombicBox(*cell.Sides, dim, cutoff, lcell)
	case cell.Matrix != nil:
		return box.NewTriclinicBox(*cell.Matrix, dim, cutoff, lcell)
	default:
		return nil, errors.E("neighborlist: CellSpec must set Sides or Matrix, or be nil")
	}
}

// buildBoxPaired is buildBox's two-set counterpart: a NonPeriodic box must
// be sized from the union of both sets, not just the larger one, or
// reference points from the smaller set can fall outside the grid.
func buildBoxPaired(dim int, cutoff float64, lcell int, cell *CellSpec, a, b []geom.Vec) (*box.Box, error) {
	switch {
	case cell == nil:
		return box.NewNonPeriodicBoxPaired(a, b, dim, cutoff, lcell)
	case cell.Sides != nil:
		return box.NewOrthorhombicBox(*cell.Sides, dim, cutoff, lcell)
	case cell.Matrix != nil:
		return box.NewTriclinicBox(*cell.Matrix, dim, cutoff, lcell)
	default:
		return nil, errors.E("neighborlist: CellSpec must set Sides or Matrix, or be nil")
	}
}

// Create builds a single-set NeighborList over points.
func Create(points []geom.Vec, dim int, cutoff float64, lcell int, cell *CellSpec, opts mapreduce.Options) (*NeighborList, error) {
	if dim != 2 && dim != 3 {
		return nil, box.NewDimensionMismatchError(dim)
	}
	nl := newNeighborList(dim, cutoff, lcell, cell, opts)
	b, err := buildBox(dim, cutoff, lcell, cell, points)
	if err != nil {
		return nil, err
	}
	nl.b = b
	nl.fp = fingerprint(dim, cutoff, lcell, cell)
	nl.grid = cellgrid.NewGrid(b, nl.workers)
	nl.shardGrids = make([]*cellgrid.Grid, nl.workers)
	for i := range nl.shardGrids {
		nl.shardGrids[i] = cellgrid.NewGrid(b, nl.workers)
	}
	nl.pairBuf = make([][]Pair, nl.workers)
	if err := cellgrid.BuildParallel(nl.grid, b, points, nl.shardGrids, nl.workers, nl.opts.BuildBatches()); err != nil {
		return nil, err
	}
	return nl, nil
}

// CreatePaired builds a two-set NeighborList over a and b.
func CreatePaired(a, b []geom.Vec, dim int, cutoff float64, lcell int, cell *CellSpec, opts mapreduce.Options) (*NeighborList, error) {
	if dim != 2 && dim != 3 {
		return nil, box.NewDimensionMismatchError(dim)
	}
	nl := newNeighborList(dim, cutoff, lcell, cell, opts)
	bx, err := buildBoxPaired(dim, cutoff, lcell, cell, a, b)
	if err != nil {
		return nil, err
	}
	nl.b = bx
	nl.fp = fingerprint(dim, cutoff, lcell, cell)
	nl.shardGrids = make([]*cellgrid.Grid, nl.workers)
	for i := range nl.shardGrids {
		nl.shardGrids[i] = cellgrid.NewGrid(bx, nl.workers)
	}
	nl.pg = &cellgrid.PairedGrid{}
	if err := cellgrid.BuildPaired(nl.pg, bx, a, b, nl.shardGrids, nl.workers, opts.BuildBatches(), opts.Autoswap); err != nil {
		return nil, err
	}
	nl.pairBuf = make([][]Pair, nl.workers)
	return nl, nil
}

// Update refreshes a single-set NeighborList with new coordinates,
// optionally overriding cutoff/cell. The Box is rebuilt if cutoff or cell
// actually changed, and always for a NonPeriodic box, whose size comes from
// the points; otherwise the existing Box is kept. The grid is refilled in
// place either way. If opts.UpdateLists was set at construction, Update
// skips the rebuild entirely and reuses the previous grid and box as-is,
// per spec §4.5.
func (nl *NeighborList) Update(points []geom.Vec, cutoff *float64, cell *CellSpec) error {
	if nl.pg != nil {
		return errors.E("neighborlist: Update called on a paired NeighborList; use UpdatePaired")
	}
	if nl.opts.UpdateLists {
		log.Debug.Printf("neighborlist: UpdateLists set, skipping grid rebuild")
		return nil
	}
	newCutoff := nl.cutoff
	if cutoff != nil {
		newCutoff = *cutoff
	}
	newCell := nl.cell
	if cell != nil {
		newCell = cell
	}
	newFP := fingerprint(nl.dim, newCutoff, nl.lcell, newCell)
	if newFP != nl.fp {
		log.Debug.Printf("neighborlist: box parameters changed, rebuilding box")
		b, err := buildBox(nl.dim, newCutoff, nl.lcell, newCell, points)
		if err != nil {
			return err
		}
		nl.b = b
		nl.cutoff = newCutoff
		nl.cell = newCell
		nl.fp = newFP
	} else if nl.b.Kind == box.NonPeriodic {
		// NonPeriodic boxes are sized from the point set itself, so even an
		// unchanged fingerprint needs a resize check against the new points.
		b, err := buildBox(nl.dim, newCutoff, nl.lcell, newCell, points)
		if err != nil {
			return err
		}
		nl.b = b
	}
	return cellgrid.BuildParallel(nl.grid, nl.b, points, nl.shardGrids, nl.workers, nl.opts.BuildBatches())
}

// UpdatePaired refreshes a two-set NeighborList with new coordinates. Like
// Update, it skips the rebuild entirely when opts.UpdateLists is set.
func (nl *NeighborList) UpdatePaired(a, b []geom.Vec, cutoff *float64, cell *CellSpec) error {
	if nl.pg == nil {
		return errors.E("neighborlist: UpdatePaired called on a single-set NeighborList; use Update")
	}
	if nl.opts.UpdateLists {
		log.Debug.Printf("neighborlist: UpdateLists set, skipping grid rebuild")
		return nil
	}
	newCutoff := nl.cutoff
	if cutoff != nil {
		newCutoff = *cutoff
	}
	newCell := nl.cell
	if cell != nil {
		newCell = cell
	}
	newFP := fingerprint(nl.dim, newCutoff, nl.lcell, newCell)
	if newFP != nl.fp || nl.b.Kind == box.NonPeriodic {
		bx, err := buildBoxPaired(nl.dim, newCutoff, nl.lcell, newCell, a, b)
		if err != nil {
			return err
		}
		nl.b = bx
		nl.cutoff = newCutoff
		nl.cell = newCell
		nl.fp = newFP
	}
	return cellgrid.BuildPaired(nl.pg, nl.b, a, b, nl.shardGrids, nl.workers, nl.opts.BuildBatches(), nl.opts.Autoswap)
}

// NeighborListPairs runs map_pairwise with a pair-collecting accumulator and
// returns the dense array of (i, j, distance) triples. The returned slice
// aliases internal storage that the next NeighborListPairs call will
// overwrite; copy it if you need it to outlive that call.
func (nl *NeighborList) NeighborListPairs() []Pair {
	clone := func(worker int, _ []Pair) []Pair { return nl.pairBuf[worker][:0] }
	fold := func(pi, pj geom.Vec, i, j int, d2 float64, acc []Pair) []Pair {
		return append(acc, Pair{I: i, J: j, D: math.Sqrt(d2)})
	}
	reduce := func(_ []Pair, perWorker [][]Pair) []Pair {
		for w, buf := range perWorker {
			nl.pairBuf[w] = buf
		}
		out := nl.outBuf[:0]
		for _, buf := range perWorker {
			out = append(out, buf...)
		}
		nl.outBuf = out
		return out
	}

	for i := range nl.pairBuf {
		nl.pairBuf[i] = nl.pairBuf[i][:0]
	}
	init := nl.pairBuf[0][:0]
	var out []Pair
	if nl.pg != nil {
		out = mapreduce.RunPaired(nl.b, nl.pg, init, clone, fold, nl.opts, reduce)
	} else {
		out = mapreduce.Run(nl.b, nl.grid, init, clone, fold, nl.opts, reduce)
	}
	if !nl.opts.Parallel {
		// The serial path never invokes clone/reduce; out is init grown in
		// place, so persist it back for the next call's reuse.
		nl.pairBuf[0] = out
	}
	return out
}
