package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pipegrid/pkg/cache"
	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/graph"
	"github.com/matzehuels/pipegrid/pkg/layout"
	"github.com/matzehuels/pipegrid/pkg/observability"
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

// Execute runs the complete build → rasterize → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, g *dag.DAG, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Graph:     g,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	logger := r.Logger.With("run_id", result.RunID)

	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, fmt.Errorf("serialize graph: %w", err)
	}
	result.GraphHash = cache.Hash(graphData)

	// Stage 1+2: Build and rasterize
	layoutStart := time.Now()
	tree, grid, gridHit, err := r.LayoutWithCacheInfo(ctx, g, result.GraphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Tree = tree
	result.Grid = grid
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Rows = grid.Rows
	result.Stats.Cols = grid.Cols
	result.CacheInfo.GridHit = gridHit

	logger.Info("computed layout",
		"nodes", g.NodeCount(),
		"rows", grid.Rows,
		"cols", grid.Cols,
		"cached", gridHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Export
	exportStart := time.Now()
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, g, grid, result.GraphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	logger.Info("exported artifacts",
		"formats", opts.Formats,
		"cached", exportHit,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// LayoutWithCacheInfo builds and rasterizes the graph with caching and
// returns cache hit info. The tree is nil on a cache hit since only the
// grid is cached.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *dag.DAG, graphHash string, opts Options) (*layout.Tree, graph.Grid, bool, error) {
	opts.SetDefaults()
	r.applyLogger(&opts)

	cacheKey := r.Keyer.GridKey(graphHash, opts.GridKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := graph.UnmarshalGrid(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "grid")
				return nil, cached, true, nil
			}
			// Fall through to recompute on corrupt entries.
		}
		observability.Cache().OnCacheMiss(ctx, "grid")
	}

	tree, m, err := ComputeLayout(ctx, g, opts)
	if err != nil {
		return nil, graph.Grid{}, false, err
	}
	grid := graph.FromMatrix(m)

	if data, err := graph.MarshalGrid(grid); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLGrid); err == nil {
			observability.Cache().OnCacheSet(ctx, "grid", len(data))
		}
	}

	return tree, grid, false, nil
}

// Layout is a convenience wrapper that computes the grid for a graph and
// discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *dag.DAG, opts Options) (graph.Grid, error) {
	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return graph.Grid{}, fmt.Errorf("serialize graph: %w", err)
	}
	_, grid, _, err := r.LayoutWithCacheInfo(ctx, g, cache.Hash(graphData), opts)
	return grid, err
}

// ExportWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, g *dag.DAG, grid graph.Grid, graphHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// Export all formats
	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := ExportFormat(ctx, g, grid, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("export %s: %w", format, err)
		}
		rendered[format] = data
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
