// Package csr provides the compressed-sparse-row graph container used by the
// partitioner.
//
// A Graph stores an undirected weighted graph as two flat arrays: xadj holds
// one offset per vertex (plus a terminator), and adjncy holds the
// concatenated neighbor lists. Vertex and edge weights are optional and
// default to one. Every algorithm stage in pkg/partition depends on the
// container's invariants, so construction validates them all up front:
//
//   - len(xadj) == n+1, xadj[0] == 0, offsets non-decreasing,
//     xadj[n] == len(adjncy)
//   - adjacency entries in [0, n), no self-loops, no duplicate entries
//     within a neighbor list
//   - the adjacency relation is fully symmetric: if v appears in u's list,
//     u appears in v's list, and (once edge weights are attached) with the
//     same weight
//
// The symmetry check is full rather than sampled: it visits every directed
// entry exactly once, so it is deterministic and O(E) with a map.
//
// A Graph is immutable once constructed. The builder-style weight calls
// (WithVertexWeights, WithEdgeWeights) return a new Graph sharing the
// validated structure.
package csr

import (
	"iter"

	"github.com/cleavegraph/cleave/pkg/errors"
)

// Graph is an undirected weighted graph in compressed-sparse-row form.
// Vertices are numbered 0..n. For vertex u, its neighbors occupy
// adjncy[xadj[u]:xadj[u+1]] with edge weights at the same positions.
//
// The zero value is not usable - use New to create a validated instance.
// A Graph is immutable and safe for concurrent readers.
type Graph struct {
	n      int
	xadj   []int
	adjncy []int
	vwgt   []int64 // nil means every vertex has weight 1
	adjwgt []int64 // nil means every edge has weight 1

	totalVwgt   int64
	totalAdjwgt int64 // each undirected edge counted once
}

// New creates a graph from CSR arrays and validates all structural
// invariants. The input slices are copied, so the caller may reuse them.
//
// Returns an INVALID_GRAPH error when the offsets are malformed, an
// adjacency entry is out of range, a vertex lists itself or a neighbor
// twice, or the adjacency relation is not symmetric. No partial Graph is
// ever produced.
func New(n int, xadj, adjncy []int) (*Graph, error) {
	if n < 0 {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "vertex count must be non-negative, got %d", n)
	}
	if len(xadj) != n+1 {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "xadj must have length n+1 = %d, got %d", n+1, len(xadj))
	}
	if xadj[0] != 0 {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "xadj[0] must be 0, got %d", xadj[0])
	}
	for u := 0; u < n; u++ {
		if xadj[u+1] < xadj[u] {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "xadj must be non-decreasing: xadj[%d]=%d > xadj[%d]=%d", u, xadj[u], u+1, xadj[u+1])
		}
	}
	if xadj[n] != len(adjncy) {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "xadj[n]=%d does not match adjncy length %d", xadj[n], len(adjncy))
	}

	g := &Graph{
		n:           n,
		xadj:        append([]int(nil), xadj...),
		adjncy:      append([]int(nil), adjncy...),
		totalVwgt:   int64(n),
		totalAdjwgt: int64(len(adjncy)) / 2,
	}

	if err := g.validateAdjacency(); err != nil {
		return nil, err
	}
	return g, nil
}

// validateAdjacency checks entry ranges, self-loops, duplicates, and
// structural symmetry of the neighbor lists.
func (g *Graph) validateAdjacency() error {
	// seen[v] == u+1 marks v as already listed by the current vertex u.
	seen := make([]int, g.n)
	directed := make(map[[2]int]struct{}, len(g.adjncy))

	for u := 0; u < g.n; u++ {
		for _, v := range g.adjncy[g.xadj[u]:g.xadj[u+1]] {
			if v < 0 || v >= g.n {
				return errors.New(errors.ErrCodeInvalidGraph, "adjacency entry %d of vertex %d out of range [0, %d)", v, u, g.n)
			}
			if v == u {
				return errors.New(errors.ErrCodeInvalidGraph, "vertex %d has a self-loop", u)
			}
			if seen[v] == u+1 {
				return errors.New(errors.ErrCodeInvalidGraph, "vertex %d lists neighbor %d more than once", u, v)
			}
			seen[v] = u + 1
			directed[[2]int{u, v}] = struct{}{}
		}
	}

	for e := range directed {
		if _, ok := directed[[2]int{e[1], e[0]}]; !ok {
			return errors.New(errors.ErrCodeInvalidGraph, "adjacency is not symmetric: %d lists %d but not vice versa", e[0], e[1])
		}
	}
	return nil
}

// WithVertexWeights returns a copy of the graph with per-vertex weights
// attached. The slice must have length n and every weight must be at
// least 1; zero or negative weights would make balance targets and the
// refiner's gain bounds meaningless.
func (g *Graph) WithVertexWeights(vwgt []int64) (*Graph, error) {
	if len(vwgt) != g.n {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "vertex weights must have length %d, got %d", g.n, len(vwgt))
	}
	var total int64
	for u, w := range vwgt {
		if w < 1 {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "vertex %d has non-positive weight %d", u, w)
		}
		total += w
	}

	ng := *g
	ng.vwgt = append([]int64(nil), vwgt...)
	ng.totalVwgt = total
	return &ng, nil
}

// WithEdgeWeights returns a copy of the graph with per-adjacency-entry
// weights attached. The slice must align with adjncy, every weight must be
// at least 1, and the weight of each edge must agree in both directions.
func (g *Graph) WithEdgeWeights(adjwgt []int64) (*Graph, error) {
	if len(adjwgt) != len(g.adjncy) {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "edge weights must have length %d, got %d", len(g.adjncy), len(adjwgt))
	}

	weights := make(map[[2]int]int64, len(adjwgt))
	var total int64
	for u := 0; u < g.n; u++ {
		for k := g.xadj[u]; k < g.xadj[u+1]; k++ {
			v := g.adjncy[k]
			w := adjwgt[k]
			if w < 1 {
				return nil, errors.New(errors.ErrCodeInvalidGraph, "edge %d-%d has non-positive weight %d", u, v, w)
			}
			if u < v {
				weights[[2]int{u, v}] = w
				total += w
			} else if prev, ok := weights[[2]int{v, u}]; ok && prev != w {
				return nil, errors.New(errors.ErrCodeInvalidGraph, "edge %d-%d has asymmetric weights %d and %d", v, u, prev, w)
			}
		}
	}

	ng := *g
	ng.adjwgt = append([]int64(nil), adjwgt...)
	ng.totalAdjwgt = total
	return &ng, nil
}

// N returns the number of vertices.
func (g *Graph) N() int { return g.n }

// M returns the number of undirected edges.
func (g *Graph) M() int { return len(g.adjncy) / 2 }

// Degree returns the number of neighbors of vertex u.
func (g *Graph) Degree(u int) int { return g.xadj[u+1] - g.xadj[u] }

// HasVertexWeights reports whether explicit vertex weights are attached.
func (g *Graph) HasVertexWeights() bool { return g.vwgt != nil }

// HasEdgeWeights reports whether explicit edge weights are attached.
func (g *Graph) HasEdgeWeights() bool { return g.adjwgt != nil }

// VertexWeight returns the weight of vertex u (1 if no weights attached).
func (g *Graph) VertexWeight(u int) int64 {
	if g.vwgt == nil {
		return 1
	}
	return g.vwgt[u]
}

// TotalVertexWeight returns the sum of all vertex weights.
func (g *Graph) TotalVertexWeight() int64 { return g.totalVwgt }

// TotalEdgeWeight returns the sum of all edge weights, each undirected
// edge counted once.
func (g *Graph) TotalEdgeWeight() int64 { return g.totalAdjwgt }

// Neighbor returns the k-th neighbor of u (0-indexed within its list)
// together with the connecting edge weight.
func (g *Graph) Neighbor(u, k int) (int, int64) {
	idx := g.xadj[u] + k
	if g.adjwgt == nil {
		return g.adjncy[idx], 1
	}
	return g.adjncy[idx], g.adjwgt[idx]
}

// Neighbors returns a restartable sequence over the neighbors of u,
// yielding (neighbor id, edge weight) pairs in adjacency order.
func (g *Graph) Neighbors(u int) iter.Seq2[int, int64] {
	return func(yield func(int, int64) bool) {
		for k := g.xadj[u]; k < g.xadj[u+1]; k++ {
			w := int64(1)
			if g.adjwgt != nil {
				w = g.adjwgt[k]
			}
			if !yield(g.adjncy[k], w) {
				return
			}
		}
	}
}

// WeightedDegree returns the total weight of all edges incident to u.
func (g *Graph) WeightedDegree(u int) int64 {
	if g.adjwgt == nil {
		return int64(g.Degree(u))
	}
	var sum int64
	for k := g.xadj[u]; k < g.xadj[u+1]; k++ {
		sum += g.adjwgt[k]
	}
	return sum
}

// EdgeCut returns the total weight of edges whose endpoints lie in
// different parts, each undirected edge counted once. The part slice must
// have one entry per vertex.
func (g *Graph) EdgeCut(part []int) (int64, error) {
	if len(part) != g.n {
		return 0, errors.New(errors.ErrCodeInvalidRequest, "partition must have length %d, got %d", g.n, len(part))
	}
	var cut int64
	for u := 0; u < g.n; u++ {
		for k := g.xadj[u]; k < g.xadj[u+1]; k++ {
			if v := g.adjncy[k]; part[u] != part[v] {
				if g.adjwgt == nil {
					cut++
				} else {
					cut += g.adjwgt[k]
				}
			}
		}
	}
	return cut / 2, nil // each edge visited from both endpoints
}
