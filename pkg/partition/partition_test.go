package partition

import (
	"testing"

	"github.com/cleavegraph/cleave/pkg/csr"
	"github.com/cleavegraph/cleave/pkg/errors"
)

// graphFromEdges builds a CSR graph from an undirected edge list.
func graphFromEdges(t *testing.T, n int, edges [][2]int) *csr.Graph {
	t.Helper()
	adj := make([][]int, n)
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	xadj := make([]int, n+1)
	var adjncy []int
	for v, nbrs := range adj {
		adjncy = append(adjncy, nbrs...)
		xadj[v+1] = len(adjncy)
	}
	g, err := csr.New(n, xadj, adjncy)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

// gridGraph builds a rows x cols grid, vertex r*cols+c.
func gridGraph(t *testing.T, rows, cols int) *csr.Graph {
	t.Helper()
	var edges [][2]int
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := r*cols + c
			if c+1 < cols {
				edges = append(edges, [2]int{v, v + 1})
			}
			if r+1 < rows {
				edges = append(edges, [2]int{v, v + cols})
			}
		}
	}
	return graphFromEdges(t, rows*cols, edges)
}

// cliqueEdges appends all edges of a clique over verts.
func cliqueEdges(edges [][2]int, verts []int) [][2]int {
	for i := 0; i < len(verts); i++ {
		for j := i + 1; j < len(verts); j++ {
			edges = append(edges, [2]int{verts[i], verts[j]})
		}
	}
	return edges
}

// partSizes counts vertices per part.
func partSizes(part []int, nparts int) []int {
	sizes := make([]int, nparts)
	for _, p := range part {
		sizes[p]++
	}
	return sizes
}

// checkPartition verifies the universal result invariants: assignment
// length, value range, non-empty parts, and that the reported cut matches
// a recount.
func checkPartition(t *testing.T, g *csr.Graph, nparts int, cut int64, part []int) {
	t.Helper()
	if len(part) != g.N() {
		t.Fatalf("partition length = %d, want %d", len(part), g.N())
	}
	for v, p := range part {
		if p < 0 || p >= nparts {
			t.Fatalf("vertex %d assigned to part %d, want [0, %d)", v, p, nparts)
		}
	}
	for p, s := range partSizes(part, nparts) {
		if s == 0 {
			t.Errorf("part %d is empty", p)
		}
	}
	recount, err := g.EdgeCut(part)
	if err != nil {
		t.Fatalf("EdgeCut: %v", err)
	}
	if recount != cut {
		t.Errorf("reported cut = %d, recomputed = %d", cut, recount)
	}
}

func TestPartitionRequestErrors(t *testing.T) {
	g := graphFromEdges(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})

	tests := []struct {
		name   string
		g      *csr.Graph
		nparts int
		opts   Options
	}{
		{"NilGraph", nil, 2, Options{}},
		{"ZeroParts", g, 0, Options{}},
		{"NegativeParts", g, -3, Options{}},
		{"MorePartsThanVertices", g, 5, Options{}},
		{"BalanceBelowOne", g, 2, Options{BalanceFactor: 0.5}},
		{"NegativePasses", g, 2, Options{MaxPasses: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, part, err := PartitionWithOptions(tt.g, tt.nparts, tt.opts)
			if !errors.Is(err, errors.ErrCodeInvalidRequest) {
				t.Errorf("error code = %v, want INVALID_PARTITION_REQUEST", errors.GetCode(err))
			}
			if part != nil {
				t.Error("no assignment should be returned on error")
			}
		})
	}
}

func TestPartitionSinglePart(t *testing.T) {
	g := graphFromEdges(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	cut, part, err := Partition(g, 1)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if cut != 0 {
		t.Errorf("cut = %d, want 0", cut)
	}
	for v, p := range part {
		if p != 0 {
			t.Errorf("part[%d] = %d, want 0", v, p)
		}
	}
}

func TestPartitionOnePartPerVertex(t *testing.T) {
	g := graphFromEdges(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	cut, part, err := Partition(g, 4)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if cut != 3 {
		t.Errorf("cut = %d, want 3 (every edge cut)", cut)
	}
	for v, p := range part {
		if p != v {
			t.Errorf("part[%d] = %d, want %d", v, p, v)
		}
	}
}

func TestPartitionEmptyGraph(t *testing.T) {
	g := graphFromEdges(t, 0, nil)
	cut, part, err := Partition(g, 1)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if cut != 0 || len(part) != 0 {
		t.Errorf("got cut %d, %d assignments; want 0 and none", cut, len(part))
	}
}

func TestPartitionPath(t *testing.T) {
	g := graphFromEdges(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	cut, part, err := Partition(g, 2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 2, cut, part)
	if cut != 1 {
		t.Errorf("cut = %d, want 1", cut)
	}
	if part[0] != part[1] || part[2] != part[3] || part[0] == part[2] {
		t.Errorf("part = %v, want the two halves of the path separated", part)
	}
}

func TestPartitionTwoVertices(t *testing.T) {
	g := graphFromEdges(t, 2, [][2]int{{0, 1}})
	cut, part, err := Partition(g, 2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 2, cut, part)
	if cut != 1 {
		t.Errorf("cut = %d, want 1", cut)
	}
}

func TestPartitionCycle(t *testing.T) {
	g := graphFromEdges(t, 6, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 0}})
	cut, part, err := Partition(g, 2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 2, cut, part)
	if cut != 2 {
		t.Errorf("cut = %d, want 2 (a cycle splits along two edges)", cut)
	}
	sizes := partSizes(part, 2)
	if sizes[0] != 3 || sizes[1] != 3 {
		t.Errorf("part sizes = %v, want [3 3]", sizes)
	}
}

func TestPartitionCompleteGraph(t *testing.T) {
	g := graphFromEdges(t, 4, cliqueEdges(nil, []int{0, 1, 2, 3}))
	cut, part, err := Partition(g, 2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 2, cut, part)
	// The balance cap of ceil(2*1.03) = 3 admits both the 2/2 split
	// (cut 4) and the cheaper 1/3 split (cut 3).
	if cut < 3 || cut > 4 {
		t.Errorf("cut = %d, want 3 or 4", cut)
	}
	sizes := partSizes(part, 2)
	if max(sizes[0], sizes[1]) > 3 {
		t.Errorf("part sizes = %v, exceed the balance cap of 3", sizes)
	}
}

func TestPartitionBridgedCliques(t *testing.T) {
	edges := cliqueEdges(nil, []int{0, 1, 2, 3})
	edges = cliqueEdges(edges, []int{4, 5, 6, 7})
	edges = append(edges, [2]int{3, 4})
	g := graphFromEdges(t, 8, edges)

	cut, part, err := Partition(g, 2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 2, cut, part)
	if cut != 1 {
		t.Errorf("cut = %d, want 1 (only the bridge)", cut)
	}
	for v := 1; v < 4; v++ {
		if part[v] != part[0] {
			t.Errorf("vertex %d split from its clique: part = %v", v, part)
		}
	}
	for v := 5; v < 8; v++ {
		if part[v] != part[4] {
			t.Errorf("vertex %d split from its clique: part = %v", v, part)
		}
	}
	if part[0] == part[4] {
		t.Errorf("cliques not separated: part = %v", part)
	}
}

func TestPartitionDisconnectedComponents(t *testing.T) {
	edges := cliqueEdges(nil, []int{0, 1, 2})
	edges = cliqueEdges(edges, []int{3, 4, 5})
	g := graphFromEdges(t, 6, edges)

	cut, part, err := Partition(g, 2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 2, cut, part)
	if cut != 0 {
		t.Errorf("cut = %d, want 0 (components fit the parts exactly)", cut)
	}
	if part[0] != part[1] || part[1] != part[2] || part[3] != part[4] || part[4] != part[5] {
		t.Errorf("a triangle was split: part = %v", part)
	}
}

func TestPartitionStar(t *testing.T) {
	g := graphFromEdges(t, 7, [][2]int{{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}})
	cut, part, err := Partition(g, 2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 2, cut, part)
	if cut != 3 {
		t.Errorf("cut = %d, want 3 (leaves opposite the center)", cut)
	}
	sizes := partSizes(part, 2)
	if min(sizes[0], sizes[1]) != 3 || max(sizes[0], sizes[1]) != 4 {
		t.Errorf("part sizes = %v, want a 3/4 split", sizes)
	}
}

func TestPartitionWeightedEdges(t *testing.T) {
	// Triangle where edge 0-1 is ten times heavier than the rest. The
	// heavy edge must stay internal.
	g := graphFromEdges(t, 3, [][2]int{{0, 1}, {0, 2}, {1, 2}})
	g, err := g.WithEdgeWeights(weightsFor(t, g, map[[2]int]int64{{0, 1}: 10, {0, 2}: 1, {1, 2}: 1}))
	if err != nil {
		t.Fatalf("WithEdgeWeights: %v", err)
	}

	cut, part, err := Partition(g, 2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 2, cut, part)
	if cut != 2 {
		t.Errorf("cut = %d, want 2", cut)
	}
	if part[0] != part[1] || part[0] == part[2] {
		t.Errorf("part = %v, want 0 and 1 together, 2 apart", part)
	}
}

func TestPartitionWeightedVertices(t *testing.T) {
	// Two heavy vertices and one light one. Balance forces the heavies
	// apart even though their connecting edge is heavy.
	g := graphFromEdges(t, 3, [][2]int{{0, 1}, {0, 2}, {1, 2}})
	g, err := g.WithVertexWeights([]int64{10, 1, 10})
	if err != nil {
		t.Fatalf("WithVertexWeights: %v", err)
	}
	g, err = g.WithEdgeWeights(weightsFor(t, g, map[[2]int]int64{{0, 1}: 5, {0, 2}: 1, {1, 2}: 1}))
	if err != nil {
		t.Fatalf("WithEdgeWeights: %v", err)
	}

	cut, part, err := Partition(g, 2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 2, cut, part)
	if cut != 2 {
		t.Errorf("cut = %d, want 2", cut)
	}
	if part[0] != part[1] || part[0] == part[2] {
		t.Errorf("part = %v, want the light vertex with heavy vertex 0", part)
	}
}

func TestPartitionGridFourWay(t *testing.T) {
	g := gridGraph(t, 4, 4)
	cut, part, err := Partition(g, 4)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 4, cut, part)
	if cut == 0 || cut > 16 {
		t.Errorf("cut = %d, want a nontrivial cut of at most 16", cut)
	}
	for p, s := range partSizes(part, 4) {
		if s < 2 || s > 5 {
			t.Errorf("part %d has %d vertices, want between 2 and 5", p, s)
		}
	}
}

func TestPartitionGridBalance(t *testing.T) {
	g := gridGraph(t, 8, 8)
	cut, part, err := Partition(g, 4)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 4, cut, part)
	// ceil(64/4 * 1.03) = 17
	for p, s := range partSizes(part, 4) {
		if s > 17 {
			t.Errorf("part %d has %d vertices, exceeds the balance cap of 17", p, s)
		}
	}
}

func TestPartitionWithCoarsening(t *testing.T) {
	g := gridGraph(t, 16, 16)
	cut, part, err := Partition(g, 2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	checkPartition(t, g, 2, cut, part)
	// A straight split of the 16x16 grid cuts 16 edges; multilevel should
	// land in that neighborhood, never anywhere near the 480-edge total.
	if cut == 0 || cut > 48 {
		t.Errorf("cut = %d, want a nontrivial cut of at most 48", cut)
	}
}

func TestPartitionDeterministic(t *testing.T) {
	g := gridGraph(t, 16, 16)

	cut1, part1, err := PartitionWithOptions(g, 4, Options{Seed: 7})
	if err != nil {
		t.Fatalf("PartitionWithOptions: %v", err)
	}
	cut2, part2, err := PartitionWithOptions(g, 4, Options{Seed: 7})
	if err != nil {
		t.Fatalf("PartitionWithOptions: %v", err)
	}

	if cut1 != cut2 {
		t.Fatalf("cuts differ between identical runs: %d vs %d", cut1, cut2)
	}
	for v := range part1 {
		if part1[v] != part2[v] {
			t.Fatalf("assignments differ at vertex %d: %d vs %d", v, part1[v], part2[v])
		}
	}
}

func TestPartitionSkipRefinement(t *testing.T) {
	g := gridGraph(t, 16, 16)
	cut, part, err := PartitionWithOptions(g, 2, Options{SkipRefinement: true})
	if err != nil {
		t.Fatalf("PartitionWithOptions: %v", err)
	}
	checkPartition(t, g, 2, cut, part)

	refined, refinedPart, err := PartitionWithOptions(g, 2, Options{})
	if err != nil {
		t.Fatalf("PartitionWithOptions: %v", err)
	}
	checkPartition(t, g, 2, refined, refinedPart)
	if refined > cut {
		t.Errorf("refinement worsened the cut: %d > %d", refined, cut)
	}
}

func TestPartitionOptionsNotMutated(t *testing.T) {
	g := graphFromEdges(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	opts := Options{}
	if _, _, err := PartitionWithOptions(g, 2, opts); err != nil {
		t.Fatalf("PartitionWithOptions: %v", err)
	}
	if opts.Seed != 0 || opts.BalanceFactor != 0 || opts.MaxPasses != 0 || opts.Logger != nil {
		t.Errorf("caller options were mutated: %+v", opts)
	}
}

// weightsFor expands a per-edge weight map into the per-adjacency-entry
// layout WithEdgeWeights expects.
func weightsFor(t *testing.T, g *csr.Graph, weights map[[2]int]int64) []int64 {
	t.Helper()
	adjwgt := make([]int64, 0, 2*g.M())
	for u := 0; u < g.N(); u++ {
		for v := range g.Neighbors(u) {
			key := [2]int{u, v}
			if v < u {
				key = [2]int{v, u}
			}
			w, ok := weights[key]
			if !ok {
				t.Fatalf("no weight for edge %v", key)
			}
			adjwgt = append(adjwgt, w)
		}
	}
	return adjwgt
}
