package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/cleavegraph/cleave/pkg/cache"
	"github.com/cleavegraph/cleave/pkg/csr"
	"github.com/cleavegraph/cleave/pkg/metisio"
	"github.com/cleavegraph/cleave/pkg/partition"
	"github.com/cleavegraph/cleave/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// partitionPayload is the cached form of a partition result.
type partitionPayload struct {
	EdgeCut int64 `json:"edge_cut"`
	Part    []int `json:"part"`
}

// Execute runs the complete load → partition → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	g, err := r.LoadGraph(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Graph = g
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.VertexCount = g.N()
	result.Stats.EdgeCount = g.M()

	// Compute graph hash for cache keys
	graphHash, err := graphHash(g)
	if err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}
	result.GraphHash = graphHash

	r.Logger.Info("loaded graph",
		"vertices", g.N(),
		"edges", g.M(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Partition
	partStart := time.Now()
	part, edgeCut, partHit, err := r.PartitionWithCacheInfo(ctx, g, graphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}
	result.Part = part
	result.EdgeCut = edgeCut
	result.Stats.PartitionTime = time.Since(partStart)
	result.CacheInfo.PartitionHit = partHit

	r.Logger.Info("partitioned graph",
		"parts", opts.NParts,
		"edge_cut", edgeCut,
		"cached", partHit,
		"duration", result.Stats.PartitionTime)

	// Stage 3: Render (optional)
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, part, graphHash, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = renderHit

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"cached", renderHit,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// LoadGraph returns the in-memory graph or reads one from the configured path.
func (r *Runner) LoadGraph(opts Options) (*csr.Graph, error) {
	if opts.Graph != nil {
		return opts.Graph, nil
	}
	return metisio.ReadGraphFile(opts.GraphPath)
}

// PartitionWithCacheInfo partitions the graph with caching and returns cache
// hit info.
func (r *Runner) PartitionWithCacheInfo(ctx context.Context, g *csr.Graph, graphHash string, opts Options) ([]int, int64, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, 0, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.PartitionKey(graphHash, opts.PartitionKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var payload partitionPayload
			if err := json.Unmarshal(data, &payload); err == nil && len(payload.Part) == g.N() {
				return payload.Part, payload.EdgeCut, true, nil
			}
			// Corrupt entry, fall through to recompute
		}
	}

	edgeCut, part, err := partition.PartitionWithOptions(g, opts.NParts, opts.PartitionOptions())
	if err != nil {
		return nil, 0, false, err
	}

	if data, err := json.Marshal(partitionPayload{EdgeCut: edgeCut, Part: part}); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLPartition)
	}

	return part, edgeCut, false, nil
}

// Partition is a convenience wrapper that discards the cache hit info.
func (r *Runner) Partition(ctx context.Context, g *csr.Graph, opts Options) ([]int, int64, error) {
	hash, err := graphHash(g)
	if err != nil {
		return nil, 0, err
	}
	part, edgeCut, _, err := r.PartitionWithCacheInfo(ctx, g, hash, opts)
	return part, edgeCut, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info. The reported hit is true only when every requested format was cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *csr.Graph, part []int, graphHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Artifacts depend on both the graph and its partition.
	partData, err := json.Marshal(part)
	if err != nil {
		return nil, false, fmt.Errorf("serialize partition for cache key: %w", err)
	}
	artifactHash := cache.Hash(append([]byte(graphHash), partData...))

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(artifactHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := r.renderFormats(ctx, g, part, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(artifactHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil
}

// renderFormats renders every requested format from one shared DOT document.
func (r *Runner) renderFormats(ctx context.Context, g *csr.Graph, part []int, opts Options) (map[string][]byte, error) {
	dot, err := render.ToDOT(g, part, render.Options{
		Layout:      opts.Layout,
		ShowWeights: opts.ShowWeights,
	})
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatDOT:
			artifacts[format] = []byte(dot)
		case FormatSVG:
			data, err := render.RenderSVG(ctx, dot)
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			artifacts[format] = data
		case FormatPNG:
			data, err := render.RenderPNG(ctx, dot)
			if err != nil {
				return nil, fmt.Errorf("render png: %w", err)
			}
			artifacts[format] = data
		}
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// graphHash computes the content hash of a graph over its canonical METIS
// serialization.
func graphHash(g *csr.Graph) (string, error) {
	var buf bytes.Buffer
	if err := metisio.WriteGraph(&buf, g); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
