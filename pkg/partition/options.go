package partition

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/cleavegraph/cleave/pkg/errors"
)

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultBalanceFactor allows each part to exceed its ideal share of
	// the total vertex weight by 3%.
	DefaultBalanceFactor = 1.03

	// DefaultMaxPasses is the maximum number of FM refinement passes per
	// hierarchy level.
	DefaultMaxPasses = 10

	// coarsenFloor is the minimum coarsening target regardless of the
	// requested part count.
	coarsenFloor = 20

	// coarsenPerPart scales the coarsening target with the part count so
	// the coarsest graph keeps enough vertices for recursive bisection.
	coarsenPerPart = 20

	// minReductionFactor guards against stalling: coarsening stops when a
	// level shrinks the graph by less than this factor.
	minReductionFactor = 1.05

	// maxNegativeMoves bounds how far a refinement pass climbs past the
	// best-seen prefix before giving up on the current pass.
	maxNegativeMoves = 50
)

// Options configures a partitioning run. The zero value selects all
// defaults, so Partition(g, k) is equivalent to
// PartitionWithOptions(g, k, Options{}).
type Options struct {
	// Seed feeds the deterministic PCG source used for the matching visit
	// order and greedy-growing seed sampling. Zero selects DefaultSeed.
	Seed uint64

	// BalanceFactor is the allowed multiple of the ideal part weight
	// (totalWeight / nparts). Must be at least 1. Zero selects
	// DefaultBalanceFactor.
	BalanceFactor float64

	// MaxPasses caps FM refinement passes per level. Zero selects
	// DefaultMaxPasses.
	MaxPasses int

	// CoarsenTo overrides the coarsening target vertex count. Zero
	// selects max(20, 20*nparts).
	CoarsenTo int

	// SkipRefinement disables FM refinement entirely, leaving the
	// projected initial partition untouched on every level. Mainly useful
	// for testing projection behavior in isolation.
	SkipRefinement bool

	// Logger receives debug-level phase logging. Nil discards all output.
	Logger *log.Logger
}

// validateAndSetDefaults checks option ranges and fills in defaults.
// It is applied to a copy, so caller-owned Options are never mutated.
func (o *Options) validateAndSetDefaults() error {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.BalanceFactor == 0 {
		o.BalanceFactor = DefaultBalanceFactor
	}
	if o.BalanceFactor < 1 {
		return errors.New(errors.ErrCodeInvalidRequest, "balance factor must be at least 1, got %g", o.BalanceFactor)
	}
	if o.MaxPasses == 0 {
		o.MaxPasses = DefaultMaxPasses
	}
	if o.MaxPasses < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "max passes must be non-negative, got %d", o.MaxPasses)
	}
	if o.CoarsenTo < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "coarsen target must be non-negative, got %d", o.CoarsenTo)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// coarsenTarget returns the vertex count at which coarsening stops.
func (o *Options) coarsenTarget(nparts int) int {
	if o.CoarsenTo > 0 {
		return o.CoarsenTo
	}
	if t := coarsenPerPart * nparts; t > coarsenFloor {
		return t
	}
	return coarsenFloor
}
