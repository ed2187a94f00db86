// Package mapreduce drives pairiter's traversal serially or across worker
// threads and merges per-worker accumulators, per spec §4.5.
package mapreduce

import "runtime"

// NBatches controls how many batches the build and traversal phases split
// into. Zero means "auto": build auto-sizes per cellgrid.ShardWorkers,
// traversal auto-sizes to the worker count.
type NBatches struct {
	Build    int
	Traverse int
}

// Options configures one Run/RunPaired call. The zero value is not usable
// directly; start from DefaultOptions.
type Options struct {
	Parallel     bool
	ShowProgress bool
	NBatches     NBatches
	UpdateLists  bool
	Autoswap     bool
	Workers      int
}

// DefaultOptions returns Parallel:true sized to runtime.NumCPU(), auto
// batch counts, and Autoswap enabled (paired grids may reorder which set
// plays the reference role for traversal efficiency).
func DefaultOptions() Options {
	return Options{
		Parallel: true,
		Workers:  runtime.NumCPU(),
		Autoswap: true,
	}
}

func (o Options) traverseBatches(workers int) int {
	if o.NBatches.Traverse > 0 {
		return o.NBatches.Traverse
	}
	return workers
}

// BuildBatches reports the caller-requested build shard count, or 0 for
// "auto" (cellgrid.ShardWorkers decides from point count and Workers).
func (o Options) BuildBatches() int {
	return o.NBatches.Build
}
