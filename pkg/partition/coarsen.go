package partition

import (
	"math/rand/v2"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/cleavegraph/cleave/pkg/csr"
	"github.com/cleavegraph/cleave/pkg/errors"
)

// level is one step of the contraction hierarchy. fine is the graph the
// level was built from, coarse the contracted result. Both directions of
// the contraction map are retained: coarseOf for bookkeeping and fineOf for
// projecting a partition back down during uncoarsening.
type level struct {
	fine     *csr.Graph
	coarse   *csr.Graph
	coarseOf []int    // fine vertex -> coarse vertex
	fineOf   [][2]int // coarse vertex -> fine pair, second entry -1 for singletons
}

// project expands a coarse partition to the fine graph: every fine vertex
// inherits the part of its coarse representative.
func (l *level) project(coarsePart []int) []int {
	finePart := make([]int, l.fine.N())
	for c, pair := range l.fineOf {
		finePart[pair[0]] = coarsePart[c]
		if pair[1] >= 0 {
			finePart[pair[1]] = coarsePart[c]
		}
	}
	return finePart
}

// buildHierarchy coarsens g until the vertex count drops to target or a
// level fails to shrink the graph by minReductionFactor. The returned
// slice is ordered finest to coarsest and may be empty when g is already
// small enough.
func buildHierarchy(g *csr.Graph, target int, rng *rand.Rand, logger *log.Logger) ([]*level, error) {
	var levels []*level
	current := g

	for current.N() > target {
		lvl, err := coarsenOnce(current, rng)
		if err != nil {
			return nil, err
		}
		if float64(current.N()) < minReductionFactor*float64(lvl.coarse.N()) {
			// Too few matchable edges left; a deeper hierarchy would
			// only stack near-identical graphs.
			logger.Debug("coarsening stalled", "vertices", current.N(), "coarse", lvl.coarse.N())
			break
		}
		logger.Debug("coarsened level", "level", len(levels), "fine", current.N(), "coarse", lvl.coarse.N())
		levels = append(levels, lvl)
		current = lvl.coarse
	}
	return levels, nil
}

// coarsenOnce performs one round of heavy-edge matching and contracts the
// matched pairs into a coarse graph.
//
// Vertices are visited in a seeded random permutation. Each unmatched
// vertex matches its heaviest unmatched neighbor, ties broken by lowest
// neighbor id; a vertex with no unmatched neighbor becomes a singleton.
func coarsenOnce(g *csr.Graph, rng *rand.Rand) (*level, error) {
	n := g.N()
	coarseOf := make([]int, n)
	for u := range coarseOf {
		coarseOf[u] = -1
	}
	fineOf := make([][2]int, 0, (n+1)/2)

	nc := 0
	for _, u := range rng.Perm(n) {
		if coarseOf[u] >= 0 {
			continue
		}

		match := -1
		var matchWeight int64 = -1
		for v, w := range g.Neighbors(u) {
			if coarseOf[v] >= 0 {
				continue
			}
			if w > matchWeight || (w == matchWeight && v < match) {
				match, matchWeight = v, w
			}
		}

		coarseOf[u] = nc
		if match >= 0 {
			coarseOf[match] = nc
			fineOf = append(fineOf, [2]int{u, match})
		} else {
			fineOf = append(fineOf, [2]int{u, -1})
		}
		nc++
	}

	coarse, err := contract(g, coarseOf, fineOf, nc)
	if err != nil {
		return nil, err
	}
	return &level{fine: g, coarse: coarse, coarseOf: coarseOf, fineOf: fineOf}, nil
}

// contract builds the coarse graph: vertex weights are summed over each
// matched pair, parallel coarse edges are merged by summing their weights,
// and edges internal to a pair are dropped.
func contract(g *csr.Graph, coarseOf []int, fineOf [][2]int, nc int) (*csr.Graph, error) {
	cvwgt := make([]int64, nc)
	for u := 0; u < g.N(); u++ {
		cvwgt[coarseOf[u]] += g.VertexWeight(u)
	}

	xadj := make([]int, nc+1)
	adjncy := make([]int, 0, g.M())
	adjwgt := make([]int64, 0, g.M())

	// pos[cv] records where cv's merged edge sits in the current row, or
	// -1 when cv has not been seen for this coarse vertex yet.
	pos := make([]int, nc)
	for i := range pos {
		pos[i] = -1
	}

	type coarseEdge struct {
		to     int
		weight int64
	}
	var row []coarseEdge

	for cu := 0; cu < nc; cu++ {
		row = row[:0]
		for _, u := range fineOf[cu] {
			if u < 0 {
				continue
			}
			for v, w := range g.Neighbors(u) {
				cv := coarseOf[v]
				if cv == cu {
					continue // edge inside the merged pair
				}
				if pos[cv] < 0 {
					pos[cv] = len(row)
					row = append(row, coarseEdge{to: cv, weight: w})
				} else {
					row[pos[cv]].weight += w
				}
			}
		}

		sort.Slice(row, func(i, j int) bool { return row[i].to < row[j].to })
		for _, e := range row {
			adjncy = append(adjncy, e.to)
			adjwgt = append(adjwgt, e.weight)
			pos[e.to] = -1
		}
		xadj[cu+1] = len(adjncy)
	}

	coarse, err := csr.New(nc, xadj, adjncy)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "contraction produced an invalid coarse graph")
	}
	coarse, err = coarse.WithVertexWeights(cvwgt)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "contraction produced invalid vertex weights")
	}
	if len(adjwgt) > 0 {
		coarse, err = coarse.WithEdgeWeights(adjwgt)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "contraction produced invalid edge weights")
		}
	}
	return coarse, nil
}
