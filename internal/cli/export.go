package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegrid/pkg/pipeline"
)

// exportCommand creates the export command for generating artifacts.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output  string
		formats string
		noCache bool
	)
	opts := pipeline.Options{
		UnitHeights: c.Config.Layout.UnitHeights,
		Detailed:    c.Config.Export.Detailed,
	}
	if len(c.Config.Export.Formats) > 0 {
		formats = strings.Join(c.Config.Export.Formats, ",")
	}

	cmd := &cobra.Command{
		Use:   "export [graph.json]",
		Short: "Export a pipeline graph as grid JSON, text, DOT, or SVG",
		Long: `Export a pipeline graph in one or more formats.

Formats:
  json   rasterized grid (same output as 'layout')
  text   plain-text rendering of the grid
  dot    Graphviz DOT of the dependency graph
  svg    Graphviz-rendered SVG of the dependency graph

Multiple formats can be given comma-separated: -f dot,svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			return c.runExport(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output basename (default: input without extension)")
	cmd.Flags().StringVarP(&formats, "formats", "f", formats, "comma-separated formats: json, text, dot, svg")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", opts.Detailed, "include row spans and metadata in labels")
	cmd.Flags().BoolVar(&opts.UnitHeights, "unit-heights", opts.UnitHeights, "ignore per-step row spans")

	return cmd
}

// runExport runs the full pipeline and writes one file per format.
func (c *CLI) runExport(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := loadGraph(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Exporting %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("export: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}

	printSuccess("Export complete")
	for _, format := range opts.Formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + extension(format)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(g.NodeCount(), g.EdgeCount(), result.Grid.Rows, result.Grid.Cols, result.CacheInfo.ExportHit)
	prog.done(fmt.Sprintf("Exported %d artifacts", len(result.Artifacts)))

	return nil
}

// extension maps a format to its file extension.
func extension(format string) string {
	if format == pipeline.FormatJSON {
		return "grid.json"
	}
	if format == pipeline.FormatText {
		return "txt"
	}
	return format
}
