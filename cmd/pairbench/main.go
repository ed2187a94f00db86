// pairbench builds a NeighborList over a synthetic point cloud and reports
// how long Update and NeighborListPairs take on each iteration, logging at
// debug level the change in heap bytes (runtime.MemStats.HeapAlloc) across
// each iteration.
//
// Usage: pairbench -n 100000 -cutoff 1.0 -side 64 -iters 5
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"v.io/x/lib/vlog"

	"github.com/cellmap/pairwise/box"
	"github.com/cellmap/pairwise/internal/geom"
	"github.com/cellmap/pairwise/mapreduce"
	"github.com/cellmap/pairwise/neighborlist"
)

var (
	nFlag      = flag.Int("n", 50000, "number of points in the synthetic cloud")
	cutoffFlag = flag.Float64("cutoff", 1.0, "neighbor cutoff radius")
	sideFlag   = flag.Float64("side", 64.0, "side length of the periodic cube the cloud is packed into")
	itersFlag  = flag.Int("iters", 5, "number of Update+NeighborListPairs iterations to time")
	dimFlag    = flag.Int("dim", 3, "2 or 3")
	seedFlag   = flag.Int64("seed", 1, "random seed for the synthetic point cloud")
)

func randomCloud(n, dim int, side float64, seed int64) []geom.Vec {
	r := rand.New(rand.NewSource(seed))
	pts := make([]geom.Vec, n)
	for i := range pts {
		var v geom.Vec
		for d := 0; d < dim; d++ {
			v[d] = r.Float64() * side
		}
		pts[i] = v
	}
	return pts
}

func main() {
	flag.Usage = func() {
		os.Stderr.WriteString("Usage: pairbench [flags]\n")
		flag.PrintDefaults()
	}
	shutdown := grail.Init()
	defer shutdown()

	dim := *dimFlag
	if dim != 2 && dim != 3 {
		vlog.Fatalf("-dim must be 2 or 3")
	}
	sides := geom.Vec{*sideFlag, *sideFlag, *sideFlag}
	points := randomCloud(*nFlag, dim, *sideFlag, *seedFlag)

	opts := mapreduce.DefaultOptions()
	opts.Workers = runtime.NumCPU()

	nl, err := neighborlist.Create(points, dim, *cutoffFlag, 1, &neighborlist.CellSpec{Sides: &sides}, opts)
	if err != nil {
		if box.IsKind(err, box.InvalidCell) {
			vlog.Fatalf("side %.2f too small for cutoff %.2f: %v", *sideFlag, *cutoffFlag, err)
		}
		vlog.Fatalf("create: %v", err)
	}

	var lastPairs int
	for i := 0; i < *itersFlag; i++ {
		points = randomCloud(*nFlag, dim, *sideFlag, *seedFlag+int64(i)+1)

		var memBefore runtime.MemStats
		runtime.ReadMemStats(&memBefore)
		t0 := time.Now()
		if err := nl.Update(points, nil, nil); err != nil {
			vlog.Fatalf("update: %v", err)
		}
		updateDur := time.Since(t0)

		t1 := time.Now()
		pairs := nl.NeighborListPairs()
		traverseDur := time.Since(t1)

		var memAfter runtime.MemStats
		runtime.ReadMemStats(&memAfter)

		lastPairs = len(pairs)
		log.Debug.Printf("iter %d: update=%v traverse=%v pairs=%d heap_delta=%d bytes",
			i, updateDur, traverseDur, len(pairs), memAfter.HeapAlloc-memBefore.HeapAlloc)
		fmt.Printf("iter %d: update=%v traverse=%v pairs=%d\n", i, updateDur, traverseDur, len(pairs))
	}
	fmt.Printf("done: %d points, %d pairs in last iteration\n", *nFlag, lastPairs)
}
