package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleavegraph/cleave/pkg/csr"
	"github.com/cleavegraph/cleave/pkg/metisio"
	"github.com/cleavegraph/cleave/pkg/pipeline"
)

// partitionFlags holds the command-line flags for the partition command.
type partitionFlags struct {
	nparts         int    // number of parts (required)
	seed           uint64 // random seed
	balance        float64
	passes         int
	coarsenTo      int
	skipRefinement bool
	refresh        bool   // recompute even on a cache hit
	noCache        bool   // disable caching entirely
	output         string // partition file path
}

// partitionCommand creates the partition command.
//
// The result is written in METIS partition format: one part id per line,
// line i holding the part of vertex i.
func (c *CLI) partitionCommand() *cobra.Command {
	var flags partitionFlags

	cmd := &cobra.Command{
		Use:   "partition <graph-file>",
		Short: "Partition a METIS graph into k balanced parts",
		Long: `Partition a METIS-format graph into k balanced parts.

The partitioner coarsens the graph by heavy-edge matching, splits the
coarsest graph by recursive bisection, and refines the projected partition
on every level. Results are cached locally, so re-running with the same
inputs is instant.

Examples:
  cleave partition road.graph -k 4
  cleave partition road.graph -k 16 --seed 7 -o road.part.16
  cleave partition road.graph -k 4 --balance 1.10 --refresh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPartition(cmd, args[0], flags)
		},
	}

	cmd.Flags().IntVarP(&flags.nparts, "parts", "k", 0, "number of parts (required)")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "random seed (default 42)")
	cmd.Flags().Float64Var(&flags.balance, "balance", 0, "allowed part weight imbalance factor (default 1.03)")
	cmd.Flags().IntVar(&flags.passes, "passes", 0, "maximum refinement passes per level (default 10)")
	cmd.Flags().IntVar(&flags.coarsenTo, "coarsen-to", 0, "coarsening target vertex count (default 20*k)")
	cmd.Flags().BoolVar(&flags.skipRefinement, "skip-refinement", false, "disable refinement")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute instead of using cached results")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "partition file (default <graph-file>.part.<k>)")
	_ = cmd.MarkFlagRequired("parts")

	return cmd
}

// pipelineOptions merges flags with config-file defaults. Unset flags fall
// back to the config value; zero config values fall through to the
// pipeline's own defaults.
func (c *CLI) pipelineOptions(graphPath string, flags partitionFlags) pipeline.Options {
	opts := pipeline.Options{
		GraphPath:      graphPath,
		NParts:         flags.nparts,
		Seed:           flags.seed,
		BalanceFactor:  flags.balance,
		MaxPasses:      flags.passes,
		CoarsenTo:      flags.coarsenTo,
		SkipRefinement: flags.skipRefinement,
		Refresh:        flags.refresh,
		Logger:         c.Logger,
	}
	if opts.Seed == 0 {
		opts.Seed = c.Config.Partition.Seed
	}
	if opts.BalanceFactor == 0 {
		opts.BalanceFactor = c.Config.Partition.BalanceFactor
	}
	if opts.MaxPasses == 0 {
		opts.MaxPasses = c.Config.Partition.MaxPasses
	}
	if opts.CoarsenTo == 0 {
		opts.CoarsenTo = c.Config.Partition.CoarsenTo
	}
	return opts
}

// runPartition executes the partition pipeline and writes the result.
func (c *CLI) runPartition(cmd *cobra.Command, input string, flags partitionFlags) error {
	ctx := cmd.Context()
	opts := c.pipelineOptions(input, flags)

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Partitioning into %d parts...", flags.nparts))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Partitioning failed")
		return err
	}
	spinner.Stop()

	output := flags.output
	if output == "" {
		output = fmt.Sprintf("%s.part.%d", input, flags.nparts)
	}
	if err := metisio.WritePartitionFile(output, result.Part); err != nil {
		return fmt.Errorf("write partition: %w", err)
	}

	printSuccess("Partitioned %d vertices into %d parts", result.Stats.VertexCount, flags.nparts)
	printStats(result.Stats.VertexCount, result.Stats.EdgeCount, result.CacheInfo.PartitionHit)
	printKeyValue("edge cut", fmt.Sprintf("%d", result.EdgeCut))
	printPartWeights(partWeights(result.Graph, result.Part, flags.nparts))
	printFile(output)
	printNewline()
	printNextStep("Visualize the result", fmt.Sprintf("cleave visualize %s --partition %s", input, output))
	return nil
}

// partWeights sums the vertex weight of each part.
func partWeights(g *csr.Graph, part []int, nparts int) []int64 {
	weights := make([]int64, nparts)
	for v, p := range part {
		weights[p] += g.VertexWeight(v)
	}
	return weights
}
