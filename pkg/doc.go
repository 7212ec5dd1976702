// Package pkg provides the core libraries for the cleave graph partitioner.
//
// # Overview
//
// Cleave splits undirected graphs into k balanced parts while minimizing the
// total weight of edges crossing part boundaries. The pkg directory is
// organized into five main areas:
//
//  1. [csr] - Compressed sparse row graph container
//  2. [partition] - The multilevel k-way partitioning algorithm
//  3. [metisio] - METIS graph and partition file formats
//  4. [render] - Graphviz-based visualization of partitioned graphs
//  5. [pipeline] - Orchestration (load → partition → render) with caching
//
// # Architecture
//
// The typical data flow through cleave:
//
//	METIS graph file
//	         ↓
//	metisio.ReadGraphFile → csr.Graph
//	         ↓
//	partition.Partition (coarsen → initial partition → refine)
//	         ↓
//	metisio.WritePartitionFile / render.ToDOT
//
// The [pipeline] package wires these stages together and caches partition
// results and rendered artifacts ([cache]). Structured errors with
// machine-readable codes live in [errors]; build metadata in [buildinfo].
package pkg
