package cli

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/pipeline"
	"github.com/gejjech/flowviz/pkg/render"
)

// renderOpts holds all options for the render command.
type renderOpts struct {
	output string
	format string
	width  int
	height int
	seed   uint64
	noShow bool
}

func newRenderCmd(cfg *Config) *cobra.Command {
	opts := &renderOpts{}

	cmd := &cobra.Command{
		Use:   "render <workflow.json>",
		Short: "Render a workflow file as a diagram",
		Long: `Render an n8n workflow JSON file as a node-link diagram.

Nodes are colored by category (trigger, condition, function, action) and
laid out either from authored canvas positions or, when positions are
missing, with a deterministic force-directed layout.

If the node-link renderer fails, a simplified grid diagram is produced
instead so the command still yields an artifact.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file path (default: input path with diagram extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png, svg, or pdf (default: png)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "diagram width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "diagram height in pixels")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for automatic layout")
	cmd.Flags().BoolVar(&opts.noShow, "no-show", false, "do not open the diagram after rendering")

	return cmd
}

func runRender(cmd *cobra.Command, input string, opts *renderOpts, cfg *Config) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	// Flags win over the output path's extension, which wins over config
	// file values and built-in defaults.
	format := firstNonEmpty(opts.format, formatFromPath(opts.output), cfg.Render.Format, pipeline.DefaultFormat)
	width := firstPositive(opts.width, cfg.Render.Width, render.DefaultWidth)
	height := firstPositive(opts.height, cfg.Render.Height, render.DefaultHeight)
	seed := opts.seed
	if seed == 0 && cfg.Render.Seed != 0 {
		seed = cfg.Render.Seed
	}

	if err := render.ValidateFormat(format); err != nil {
		return err
	}

	spin := newSpinner(ctx, fmt.Sprintf("Rendering %s", input))
	spin.Start()

	result, err := pipeline.Run(input, pipeline.Options{
		Output: opts.output,
		Format: format,
		Width:  width,
		Height: height,
		Seed:   seed,
		Logger: logger,
	})
	if err != nil {
		spin.StopWithError(fmt.Sprintf("Render failed: %s", errors.UserMessage(err)))
		return err
	}
	spin.Stop()

	printSuccess("Rendered in %s", result.RenderTime.Round(time.Millisecond))
	printFile(result.Path)
	printStats(result.NodeCount, result.EdgeCount, result.UsedFallback)

	if !opts.noShow {
		showFile(result.Path, logger)
	}
	return nil
}

// showFile opens path with the platform's default viewer. Failures are
// logged at debug level only: the artifact is already written.
func showFile(path string, logger *charmlog.Logger) {
	var name string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name = "explorer"
	default:
		name = "xdg-open"
	}
	if _, err := exec.LookPath(name); err != nil {
		logger.Debugf("viewer %s not found: %v", name, err)
		return
	}
	if err := exec.Command(name, path).Start(); err != nil {
		logger.Debugf("failed to open %s: %v", path, err)
	}
}

// formatFromPath infers an output format from a path's extension.
// Unknown or missing extensions return empty so later defaults apply.
func formatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if render.ValidFormats[ext] {
		return ext
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
