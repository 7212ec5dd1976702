// Package pipeline provides the core partitioning pipeline for Cleave.
//
// This package implements the complete load → partition → render pipeline
// shared by all entry points. Centralizing it keeps caching behavior and
// defaults consistent between the CLI commands.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the graph from a METIS file (or accept one in memory)
//  2. Partition: Run the multilevel k-way partitioner
//  3. Render: Generate visualization artifacts (DOT, SVG, PNG)
//
// Partition results and rendered artifacts are cached independently, keyed
// by content hashes, so re-running with the same inputs is cheap.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    GraphPath: "road.graph",
//	    NParts:    8,
//	    Formats:   []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cleavegraph/cleave/pkg/cache"
	"github.com/cleavegraph/cleave/pkg/csr"
	"github.com/cleavegraph/cleave/pkg/errors"
	"github.com/cleavegraph/cleave/pkg/partition"
)

// DefaultLayout is the default Graphviz layout engine for rendering.
const DefaultLayout = "neato"

// Format constants for output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// Options contains all configuration for the partitioning pipeline.
// This struct supports JSON serialization for batch job descriptions.
type Options struct {
	// Load options. Exactly one of GraphPath or Graph must be set.
	GraphPath string     `json:"graph_path,omitempty"`
	Graph     *csr.Graph `json:"-"`

	// Partition options
	NParts         int     `json:"nparts"`
	Seed           uint64  `json:"seed,omitempty"`
	BalanceFactor  float64 `json:"balance_factor,omitempty"`
	MaxPasses      int     `json:"max_passes,omitempty"`
	CoarsenTo      int     `json:"coarsen_to,omitempty"`
	SkipRefinement bool    `json:"skip_refinement,omitempty"`
	Refresh        bool    `json:"refresh,omitempty"`

	// Render options. An empty Formats list skips the render stage.
	Formats     []string `json:"formats,omitempty"`
	Layout      string   `json:"layout,omitempty"`
	ShowWeights bool     `json:"show_weights,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this pipeline execution.
	RunID string

	// Graph is the loaded graph.
	Graph *csr.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Part assigns each vertex to a part in [0, NParts).
	Part []int

	// EdgeCut is the total weight of edges crossing parts.
	EdgeCut int64

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	VertexCount   int
	EdgeCount     int
	LoadTime      time.Duration
	PartitionTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PartitionHit bool // Whether the partition came from cache
	RenderHit    bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidRequest, "invalid format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.GraphPath == "" && o.Graph == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "graph path or in-memory graph is required")
	}
	if o.NParts < 1 {
		return errors.New(errors.ErrCodeInvalidRequest, "number of parts must be at least 1, got %d", o.NParts)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	// Partition defaults live here as well so cache keys are canonical:
	// explicit defaults and omitted options must produce the same key.
	if o.Seed == 0 {
		o.Seed = partition.DefaultSeed
	}
	if o.BalanceFactor == 0 {
		o.BalanceFactor = partition.DefaultBalanceFactor
	}
	if o.BalanceFactor < 1 {
		return errors.New(errors.ErrCodeInvalidRequest, "balance factor must be at least 1, got %g", o.BalanceFactor)
	}
	if o.MaxPasses == 0 {
		o.MaxPasses = partition.DefaultMaxPasses
	}
	if o.MaxPasses < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "max passes must be non-negative, got %d", o.MaxPasses)
	}
	if o.CoarsenTo < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "coarsen target must be non-negative, got %d", o.CoarsenTo)
	}
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// PartitionOptions converts pipeline options into partitioner options.
func (o *Options) PartitionOptions() partition.Options {
	return partition.Options{
		Seed:           o.Seed,
		BalanceFactor:  o.BalanceFactor,
		MaxPasses:      o.MaxPasses,
		CoarsenTo:      o.CoarsenTo,
		SkipRefinement: o.SkipRefinement,
		Logger:         o.Logger,
	}
}

// PartitionKeyOpts returns cache key options for the partition stage.
func (o *Options) PartitionKeyOpts() cache.PartitionKeyOpts {
	return cache.PartitionKeyOpts{
		NParts:         o.NParts,
		Seed:           o.Seed,
		BalanceFactor:  o.BalanceFactor,
		MaxPasses:      o.MaxPasses,
		CoarsenTo:      o.CoarsenTo,
		SkipRefinement: o.SkipRefinement,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Layout:      o.Layout,
		ShowWeights: o.ShowWeights,
	}
}
