// Package pipeline provides the core layout pipeline for Pipegrid.
//
// This package implements the complete load → build → rasterize → export
// pipeline that can be used by CLI and library consumers. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Fold the dependency graph into a serial/parallel layout tree
//  2. Rasterize: Flatten the tree into a dense 2D grid of cells
//  3. Export: Generate optional artifacts (DOT, SVG, text)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipegrid/pkg/cache"
	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/graph"
	"github.com/matzehuels/pipegrid/pkg/layout"
)

// Format constants for export formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported export formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatText: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for config files and tooling.
type Options struct {
	// Layout options
	UnitHeights bool `json:"unit_heights,omitempty"` // Ignore per-node row spans
	Refresh     bool `json:"refresh,omitempty"`      // Bypass the cache and recompute

	// Export options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Include row spans and metadata in exported labels

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution, for log correlation.
	RunID string

	// Graph is the input dependency graph.
	Graph *dag.DAG

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Tree is the layout tree. Nil when the grid was served from cache.
	Tree *layout.Tree

	// Grid is the rasterized layout.
	Grid graph.Grid

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Rows       int
	Cols       int
	LayoutTime time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GridHit   bool // Whether the rasterized grid came from cache
	ExportHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, text, dot, svg)", format)
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

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as
// calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.SetDefaults()
	o.validated = true
	return nil
}

// SetDefaults applies default values.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// HeightFunc returns the row-span function the rasterizer should use.
func (o *Options) HeightFunc() layout.HeightFunc {
	if o.UnitHeights {
		return layout.UnitHeight
	}
	return graph.NodeHeight
}

// GridKeyOpts returns cache key options for the rasterized grid.
func (o *Options) GridKeyOpts() cache.GridKeyOpts {
	return cache.GridKeyOpts{
		UnitHeights: o.UnitHeights,
	}
}

// ArtifactKeyOpts returns cache key options for an exported artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
