package partition

import (
	"github.com/charmbracelet/log"

	"github.com/cleavegraph/cleave/pkg/csr"
)

type moveRecord struct {
	vertex int
	from   int
}

// refiner holds the per-pass state of FM boundary refinement: the
// connectivity of every vertex to every part, per-part weights and vertex
// counts, and the gain buckets over the current boundary.
type refiner struct {
	g          *csr.Graph
	nparts     int
	maxWeights []int64
	minCounts  []int
	logger     *log.Logger

	part    []int
	conn    []int64 // conn[v*nparts+p] = edge weight from v into part p
	weights []int64
	counts  []int
	target  []int
	gains   []int64
	locked  []bool
	buckets *gainBuckets
	moves   []moveRecord
}

// refinePartition improves part in place with up to maxPasses FM passes and
// returns the resulting edge cut. Each pass moves boundary vertices in
// best-gain-first order, allowing moves only while every part stays within
// its weight cap and above its minimum vertex count, then rolls back to the
// best prefix seen. Passes stop early once one fails to improve the cut.
//
// maxWeights must have one cap per part. minCounts may be nil, in which
// case every part must keep at least one vertex.
func refinePartition(g *csr.Graph, part []int, nparts int, maxWeights []int64, minCounts []int, maxPasses int, logger *log.Logger) int64 {
	cut, _ := g.EdgeCut(part)
	if nparts < 2 || g.N() < 2 || maxPasses == 0 {
		return cut
	}

	n := g.N()
	var maxWdeg int64
	for u := 0; u < n; u++ {
		if d := g.WeightedDegree(u); d > maxWdeg {
			maxWdeg = d
		}
	}
	if minCounts == nil {
		minCounts = make([]int, nparts)
		for p := range minCounts {
			minCounts[p] = 1
		}
	}

	r := &refiner{
		g:          g,
		nparts:     nparts,
		maxWeights: maxWeights,
		minCounts:  minCounts,
		logger:     logger,
		part:       part,
		conn:       make([]int64, n*nparts),
		weights:    make([]int64, nparts),
		counts:     make([]int, nparts),
		target:     make([]int, n),
		gains:      make([]int64, n),
		locked:     make([]bool, n),
		buckets:    newGainBuckets(n, maxWdeg),
		moves:      make([]moveRecord, 0, n),
	}

	for pass := 0; pass < maxPasses; pass++ {
		next, improved := r.pass(cut)
		logger.Debug("refinement pass", "pass", pass, "cut", next)
		cut = next
		if !improved {
			break
		}
	}
	return cut
}

// pass runs one FM pass starting from the given cut and returns the cut
// after rollback plus whether the pass improved it.
func (r *refiner) pass(cut int64) (int64, bool) {
	n := r.g.N()
	k := r.nparts

	for i := range r.conn {
		r.conn[i] = 0
	}
	for p := 0; p < k; p++ {
		r.weights[p] = 0
		r.counts[p] = 0
	}
	for u := 0; u < n; u++ {
		r.weights[r.part[u]] += r.g.VertexWeight(u)
		r.counts[r.part[u]]++
		for v, w := range r.g.Neighbors(u) {
			r.conn[u*k+r.part[v]] += w
		}
	}

	r.buckets.reset()
	for u := 0; u < n; u++ {
		r.locked[u] = false
		if r.updateTarget(u) {
			r.buckets.insert(u, r.gains[u])
		}
	}

	best, current := cut, cut
	bestLen := 0
	sinceBest := 0
	r.moves = r.moves[:0]

	for {
		v, ok := r.buckets.popMax(r.movable)
		if !ok {
			break
		}
		current -= r.gains[v]
		r.locked[v] = true
		r.moves = append(r.moves, moveRecord{vertex: v, from: r.part[v]})
		r.move(v, r.part[v], r.target[v])

		if current < best {
			best, bestLen, sinceBest = current, len(r.moves), 0
			continue
		}
		if sinceBest++; sinceBest >= maxNegativeMoves {
			break
		}
	}

	// Roll back everything past the best prefix. Connectivity is rebuilt at
	// the start of the next pass, so only assignments and totals matter.
	for i := len(r.moves) - 1; i >= bestLen; i-- {
		m := r.moves[i]
		vw := r.g.VertexWeight(m.vertex)
		r.weights[r.part[m.vertex]] -= vw
		r.counts[r.part[m.vertex]]--
		r.weights[m.from] += vw
		r.counts[m.from]++
		r.part[m.vertex] = m.from
	}
	return best, best < cut
}

// updateTarget recomputes the best destination part and gain for u.
// It reports whether u is a boundary vertex; only boundary vertices enter
// the buckets. Ties between destination parts go to the lowest part id.
func (r *refiner) updateTarget(u int) bool {
	from := r.part[u]
	row := r.conn[u*r.nparts : (u+1)*r.nparts]
	best := -1
	var bestConn int64
	for p, c := range row {
		if p == from || c <= 0 {
			continue
		}
		if best < 0 || c > bestConn {
			best, bestConn = p, c
		}
	}
	if best < 0 {
		return false
	}
	r.target[u] = best
	r.gains[u] = bestConn - row[from]
	return true
}

// movable reports whether v can move to its recorded target without
// overfilling the target or draining the source below its minimum count.
func (r *refiner) movable(v int) bool {
	from, to := r.part[v], r.target[v]
	if r.counts[from]-1 < r.minCounts[from] {
		return false
	}
	return r.weights[to]+r.g.VertexWeight(v) <= r.maxWeights[to]
}

// move reassigns v and refreshes the connectivity and bucket entries of its
// unlocked neighbors.
func (r *refiner) move(v, from, to int) {
	vw := r.g.VertexWeight(v)
	r.weights[from] -= vw
	r.counts[from]--
	r.weights[to] += vw
	r.counts[to]++
	r.part[v] = to

	for u, w := range r.g.Neighbors(v) {
		r.conn[u*r.nparts+from] -= w
		r.conn[u*r.nparts+to] += w
		if r.locked[u] {
			continue
		}
		if r.updateTarget(u) {
			r.buckets.update(u, r.gains[u])
		} else {
			r.buckets.drop(u)
		}
	}
}
