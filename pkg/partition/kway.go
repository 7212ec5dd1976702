package partition

import (
	"math"
	"math/rand/v2"

	"github.com/cleavegraph/cleave/pkg/csr"
	"github.com/cleavegraph/cleave/pkg/errors"
)

// Partition splits g into nparts balanced parts with default options.
// It returns the edge cut and the per-vertex part assignment.
func Partition(g *csr.Graph, nparts int) (int64, []int, error) {
	return PartitionWithOptions(g, nparts, Options{})
}

// PartitionWithOptions runs the full multilevel scheme: coarsen by
// heavy-edge matching, partition the coarsest graph by recursive bisection,
// then project and refine level by level. The returned assignment has one
// entry per vertex with values in [0, nparts), every part non-empty.
//
// Returns an INVALID_PARTITION_REQUEST error when nparts is out of range or
// the options are malformed.
func PartitionWithOptions(g *csr.Graph, nparts int, opts Options) (int64, []int, error) {
	if g == nil {
		return 0, nil, errors.New(errors.ErrCodeInvalidRequest, "graph must not be nil")
	}
	if err := opts.validateAndSetDefaults(); err != nil {
		return 0, nil, err
	}
	if nparts < 1 {
		return 0, nil, errors.New(errors.ErrCodeInvalidRequest, "part count must be at least 1, got %d", nparts)
	}

	n := g.N()
	if nparts == 1 {
		return 0, make([]int, n), nil
	}
	if nparts > n {
		return 0, nil, errors.New(errors.ErrCodeInvalidRequest, "part count %d exceeds vertex count %d", nparts, n)
	}
	logger := opts.Logger

	if nparts == n {
		// Every vertex is its own part; nothing to optimize.
		part := make([]int, n)
		for v := range part {
			part[v] = v
		}
		cut, err := g.EdgeCut(part)
		if err != nil {
			return 0, nil, errors.Wrap(errors.ErrCodeInternal, err, "cut computation failed")
		}
		return cut, part, nil
	}

	rng := rand.New(rand.NewPCG(opts.Seed, 0))

	// Keep at least 2*nparts coarse vertices so one more contraction can
	// never drop below the part count.
	target := opts.coarsenTarget(nparts)
	if floor := 2 * nparts; target < floor {
		target = floor
	}
	levels, err := buildHierarchy(g, target, rng, logger)
	if err != nil {
		return 0, nil, err
	}
	coarsest := g
	if len(levels) > 0 {
		coarsest = levels[len(levels)-1].coarse
	}
	logger.Debug("hierarchy built", "levels", len(levels), "coarsest", coarsest.N())

	part, err := initialPartition(coarsest, nparts, &opts, rng)
	if err != nil {
		return 0, nil, err
	}

	maxWeight := int64(math.Ceil(float64(g.TotalVertexWeight()) / float64(nparts) * opts.BalanceFactor))
	maxWeights := make([]int64, nparts)
	for p := range maxWeights {
		maxWeights[p] = maxWeight
	}

	if !opts.SkipRefinement {
		cut := refinePartition(coarsest, part, nparts, maxWeights, nil, opts.MaxPasses, logger)
		logger.Debug("coarsest graph refined", "cut", cut)
	}
	for i := len(levels) - 1; i >= 0; i-- {
		part = levels[i].project(part)
		if !opts.SkipRefinement {
			refinePartition(levels[i].fine, part, nparts, maxWeights, nil, opts.MaxPasses, logger)
		}
	}

	if len(part) != n {
		return 0, nil, errors.New(errors.ErrCodeInternal, "partition length %d does not match vertex count %d", len(part), n)
	}
	for v, p := range part {
		if p < 0 || p >= nparts {
			return 0, nil, errors.New(errors.ErrCodeInternal, "vertex %d assigned to invalid part %d", v, p)
		}
	}
	cut, err := g.EdgeCut(part)
	if err != nil {
		return 0, nil, errors.Wrap(errors.ErrCodeInternal, err, "cut computation failed")
	}
	logger.Debug("partition complete", "parts", nparts, "cut", cut)
	return cut, part, nil
}
