// Package partition computes balanced k-way partitions of undirected
// weighted graphs using the multilevel scheme: heavy-edge matching
// coarsening, multi-seed greedy graph growing on the coarsest graph,
// recursive bisection for k > 2, and FM-style boundary refinement during
// uncoarsening.
//
// The entry points are [Partition] and [PartitionWithOptions]:
//
//	g, err := csr.New(4, []int{0, 1, 3, 5, 6}, []int{1, 0, 2, 1, 3, 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cut, part, err := partition.Partition(g, 2)
//
// All computation within one call is synchronous and single-threaded;
// distinct calls share no state and may run concurrently. Results are
// deterministic: a fixed graph, part count, and [Options.Seed] always
// produce a bit-identical partition.
package partition
