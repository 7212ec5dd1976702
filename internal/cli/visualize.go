package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleavegraph/cleave/pkg/cache"
	"github.com/cleavegraph/cleave/pkg/metisio"
	"github.com/cleavegraph/cleave/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering partitioned
// graphs.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		flags      partitionFlags
		partFile   string
		formatsStr string
		layout     string
		showWts    bool
		output     string
	)

	cmd := &cobra.Command{
		Use:   "visualize <graph-file>",
		Short: "Render a partitioned graph as DOT, SVG, or PNG",
		Long: `Render a partitioned graph with one color per part and cut edges dashed.

Either partition on the fly with -k, or reuse an existing partition file
written by 'cleave partition' via --partition.

Examples:
  cleave visualize road.graph -k 4
  cleave visualize road.graph --partition road.part.4 -f svg,png
  cleave visualize road.graph -k 8 --layout sfdp -o road.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (flags.nparts == 0) == (partFile == "") {
				return fmt.Errorf("exactly one of -k or --partition is required")
			}
			opts := c.pipelineOptions(args[0], flags)
			opts.Formats = parseFormats(formatsStr)
			opts.Layout = layout
			if opts.Layout == "" {
				opts.Layout = c.Config.Render.Layout
			}
			opts.ShowWeights = showWts || c.Config.Render.ShowWeights
			return c.runVisualize(cmd, args[0], partFile, opts, output, flags.noCache)
		},
	}

	cmd.Flags().IntVarP(&flags.nparts, "parts", "k", 0, "number of parts (partition on the fly)")
	cmd.Flags().StringVar(&partFile, "partition", "", "existing partition file to render")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "random seed when partitioning (default 42)")
	cmd.Flags().Float64Var(&flags.balance, "balance", 0, "allowed part weight imbalance factor (default 1.03)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().StringVar(&layout, "layout", "", "graphviz layout engine: neato (default), dot, sfdp, fdp, circo")
	cmd.Flags().BoolVar(&showWts, "show-weights", false, "label edges with their weights")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute instead of using cached results")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")

	return cmd
}

// runVisualize renders the graph, partitioning it first unless an existing
// partition file was given.
func (c *CLI) runVisualize(cmd *cobra.Command, input, partFile string, opts pipeline.Options, output string, noCache bool) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	var (
		artifacts map[string][]byte
		cacheHit  bool
	)
	if partFile != "" {
		artifacts, cacheHit, err = c.renderExisting(cmd, runner, input, partFile, opts)
	} else {
		var result *pipeline.Result
		result, err = runner.Execute(ctx, opts)
		if result != nil {
			artifacts = result.Artifacts
			cacheHit = result.CacheInfo.RenderHit
		}
	}
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	return writeArtifacts(artifacts, opts.Formats, input, output, cacheHit)
}

// renderExisting renders with a partition loaded from disk instead of
// running the partitioner.
func (c *CLI) renderExisting(cmd *cobra.Command, runner *pipeline.Runner, input, partFile string, opts pipeline.Options) (map[string][]byte, bool, error) {
	g, err := metisio.ReadGraphFile(input)
	if err != nil {
		return nil, false, err
	}
	part, err := metisio.ReadPartitionFile(partFile, g.N())
	if err != nil {
		return nil, false, err
	}

	nparts := 0
	for _, p := range part {
		if p >= nparts {
			nparts = p + 1
		}
	}
	opts.Graph = g
	opts.NParts = nparts

	var buf bytes.Buffer
	if err := metisio.WriteGraph(&buf, g); err != nil {
		return nil, false, err
	}
	graphHash := cache.Hash(buf.Bytes())

	return runner.RenderWithCacheInfo(cmd.Context(), g, part, graphHash, opts)
}

// basePath derives the base output path from the output and input paths.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes each rendered format to its own file. A single
// format honors the output path exactly; multiple formats share a base path.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string, cacheHit bool) error {
	base := basePath(output, input)

	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if output != "" && len(formats) == 1 {
			path = output
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	status := iconFresh
	if cacheHit {
		status = iconCached
	}
	printDetail("%d format(s) · %s", len(formats), status)
	return nil
}
