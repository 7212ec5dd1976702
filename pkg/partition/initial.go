package partition

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/cleavegraph/cleave/pkg/csr"
	"github.com/cleavegraph/cleave/pkg/errors"
)

// initialPartition labels the coarsest graph with parts 0..nparts-1 by
// recursive bisection: each step splits the current subgraph into two sides
// with weight budgets proportional to the number of parts each side will
// receive, refines the split, and recurses on the induced subgraphs.
func initialPartition(g *csr.Graph, nparts int, opts *Options, rng *rand.Rand) ([]int, error) {
	part := make([]int, g.N())
	verts := make([]int, g.N())
	for i := range verts {
		verts[i] = i
	}
	if err := bisectRecursive(g, verts, part, 0, nparts, opts, rng); err != nil {
		return nil, err
	}
	return part, nil
}

// bisectRecursive assigns parts first..first+k-1 to the vertices of g,
// where verts maps g's vertices back to positions in part.
func bisectRecursive(g *csr.Graph, verts []int, part []int, first, k int, opts *Options, rng *rand.Rand) error {
	if k == 1 {
		for _, v := range verts {
			part[v] = first
		}
		return nil
	}

	kl := k / 2
	kr := k - kl
	side, err := bisect(g, kl, kr, opts, rng)
	if err != nil {
		return err
	}

	left, leftVerts, err := inducedSubgraph(g, side, 0)
	if err != nil {
		return err
	}
	right, rightVerts, err := inducedSubgraph(g, side, 1)
	if err != nil {
		return err
	}
	for i, v := range leftVerts {
		leftVerts[i] = verts[v]
	}
	for i, v := range rightVerts {
		rightVerts[i] = verts[v]
	}

	if err := bisectRecursive(left, leftVerts, part, first, kl, opts, rng); err != nil {
		return err
	}
	return bisectRecursive(right, rightVerts, part, first+kl, kr, opts, rng)
}

// bisect splits g into side 0 (sized for kl parts) and side 1 (sized for
// kr parts). A candidate is grown from every seed; the lowest-cut candidate
// that fits both weight caps wins, with the candidate closest to the left
// target as fallback when none fits. The winner gets a two-way refinement
// under the same caps before being returned.
func bisect(g *csr.Graph, kl, kr int, opts *Options, rng *rand.Rand) ([]int, error) {
	n := g.N()
	k := kl + kr
	if n < k {
		return nil, errors.New(errors.ErrCodeInternal, "cannot split %d vertices into %d parts", n, k)
	}

	total := g.TotalVertexWeight()
	targetLeft := total * int64(kl) / int64(k)
	if targetLeft < 1 {
		targetLeft = 1
	}
	maxLeft := int64(math.Ceil(float64(total) * float64(kl) / float64(k) * opts.BalanceFactor))
	maxRight := int64(math.Ceil(float64(total) * float64(kr) / float64(k) * opts.BalanceFactor))

	wdeg := make([]int64, n)
	for u := 0; u < n; u++ {
		wdeg[u] = g.WeightedDegree(u)
	}

	var (
		bestSide     []int
		bestCut      int64
		bestDist     int64
		haveFeasible bool
	)
	for _, seed := range seedCandidates(g, wdeg, rng) {
		side, weightLeft := growBisection(g, wdeg, seed, targetLeft, maxLeft, kl, kr)
		cut, err := g.EdgeCut(side)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "bisection produced an invalid assignment")
		}
		feasible := weightLeft <= maxLeft && total-weightLeft <= maxRight
		dist := weightLeft - targetLeft
		if dist < 0 {
			dist = -dist
		}

		better := false
		switch {
		case bestSide == nil:
			better = true
		case feasible != haveFeasible:
			better = feasible
		case feasible:
			better = cut < bestCut || (cut == bestCut && dist < bestDist)
		default:
			better = dist < bestDist || (dist == bestDist && cut < bestCut)
		}
		if better {
			bestSide, bestCut, bestDist, haveFeasible = side, cut, dist, feasible
		}
	}

	if !opts.SkipRefinement {
		refinePartition(g, bestSide, 2, []int64{maxLeft, maxRight}, []int{kl, kr}, opts.MaxPasses, opts.Logger)
	}
	return bestSide, nil
}

// seedCandidates returns the deduplicated ascending set of growth seeds:
// three structural picks spread across the id range, the four vertices of
// highest weighted degree, and four random samples.
func seedCandidates(g *csr.Graph, wdeg []int64, rng *rand.Rand) []int {
	n := g.N()
	picked := make(map[int]bool, 11)
	picked[0] = true
	picked[n/2] = true
	picked[n-1] = true

	byDegree := make([]int, n)
	for i := range byDegree {
		byDegree[i] = i
	}
	sort.Slice(byDegree, func(i, j int) bool {
		if wdeg[byDegree[i]] != wdeg[byDegree[j]] {
			return wdeg[byDegree[i]] > wdeg[byDegree[j]]
		}
		return byDegree[i] < byDegree[j]
	})
	for i := 0; i < 4 && i < n; i++ {
		picked[byDegree[i]] = true
	}
	for i := 0; i < 4; i++ {
		picked[rng.IntN(n)] = true
	}

	seeds := make([]int, 0, len(picked))
	for v := range picked {
		seeds = append(seeds, v)
	}
	sort.Ints(seeds)
	return seeds
}

// growBisection grows side 0 from seed one vertex at a time, always taking
// the unassigned vertex with the largest cut reduction (ties to the lowest
// id), until side 0 reaches its weight target while both sides keep enough
// vertices for their part counts. Vertices that would push side 0 past
// maxLeft are passed over while a fitting alternative exists. Returns the
// assignment and the weight of side 0.
func growBisection(g *csr.Graph, wdeg []int64, seed int, targetLeft, maxLeft int64, kl, kr int) ([]int, int64) {
	n := g.N()
	side := make([]int, n)
	for i := range side {
		side[i] = 1
	}
	connLeft := make([]int64, n)

	var weightLeft int64
	count := 0
	add := func(v int) {
		side[v] = 0
		weightLeft += g.VertexWeight(v)
		count++
		for u, w := range g.Neighbors(v) {
			connLeft[u] += w
		}
	}
	add(seed)

	for (weightLeft < targetLeft || count < kl) && count < n-kr {
		bestFit, bestAny := -1, -1
		var fitGain, anyGain int64
		for v := 0; v < n; v++ {
			if side[v] == 0 {
				continue
			}
			gain := 2*connLeft[v] - wdeg[v]
			if bestAny < 0 || gain > anyGain {
				bestAny, anyGain = v, gain
			}
			if weightLeft+g.VertexWeight(v) <= maxLeft && (bestFit < 0 || gain > fitGain) {
				bestFit, fitGain = v, gain
			}
		}
		best := bestFit
		if best < 0 {
			best = bestAny
		}
		if best < 0 {
			break
		}
		add(best)
	}
	return side, weightLeft
}

// inducedSubgraph extracts the subgraph over vertices with side[v] == want,
// preserving relative vertex order and all weights. The second return value
// maps subgraph vertices back to parent vertices.
func inducedSubgraph(g *csr.Graph, side []int, want int) (*csr.Graph, []int, error) {
	local := make([]int, g.N())
	var verts []int
	for v := 0; v < g.N(); v++ {
		if side[v] == want {
			local[v] = len(verts)
			verts = append(verts, v)
		} else {
			local[v] = -1
		}
	}

	xadj := make([]int, len(verts)+1)
	var adjncy []int
	var adjwgt []int64
	vwgt := make([]int64, len(verts))
	for i, v := range verts {
		vwgt[i] = g.VertexWeight(v)
		for u, w := range g.Neighbors(v) {
			if local[u] < 0 {
				continue
			}
			adjncy = append(adjncy, local[u])
			adjwgt = append(adjwgt, w)
		}
		xadj[i+1] = len(adjncy)
	}

	sub, err := csr.New(len(verts), xadj, adjncy)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "induced subgraph is invalid")
	}
	sub, err = sub.WithVertexWeights(vwgt)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "induced subgraph weights are invalid")
	}
	if g.HasEdgeWeights() && len(adjwgt) > 0 {
		sub, err = sub.WithEdgeWeights(adjwgt)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "induced subgraph edge weights are invalid")
		}
	}
	return sub, verts, nil
}
