// Package pipeline orchestrates the complete render path: document →
// graph → overlays → two-stage render → artifact on disk.
//
// The render strategy is explicit: a primary renderer is attempted first
// and any primary failure switches to a fallback renderer. Only a fallback
// failure (or an empty graph) is surfaced to the caller. Exactly one
// artifact file is written on success; no partial or temporary files are
// left behind on failure.
//
// # State machine
//
//	Start → PrimaryAttempt → {Success=Done, Failure→FallbackAttempt}
//	FallbackAttempt → {Success=Done, Failure=Fatal}
//
// Each invocation builds its own graph and overlays; nothing is shared
// across invocations.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gejjech/flowviz/pkg/layout"
	"github.com/gejjech/flowviz/pkg/render"
	"github.com/gejjech/flowviz/pkg/render/grid"
	"github.com/gejjech/flowviz/pkg/render/nodelink"
)

// DefaultFormat is the output format used when none is requested.
const DefaultFormat = render.FormatPNG

// Options configures a single render invocation.
type Options struct {
	// Output is the artifact path. Empty means: input path with its
	// extension replaced by the requested format.
	Output string

	// Format is the requested output format (png, svg, pdf). The
	// fallback stage produces PNG regardless.
	Format string

	// Width and Height are consulted by the fallback renderer's grid
	// packing; the primary renderer fits the layout itself.
	Width  int
	Height int

	// Seed drives the force-directed layout's initial placement.
	Seed uint64

	// Primary and Fallback override the render strategies; tests use
	// this to force stage failures. Nil selects the defaults
	// (nodelink primary, grid fallback).
	Primary  render.Renderer
	Fallback render.Renderer

	// Logger receives stage progress. Nil discards.
	Logger *log.Logger
}

// setDefaults fills unset option fields.
func (o *Options) setDefaults() {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Width <= 0 {
		o.Width = render.DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = render.DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = layout.DefaultSeed
	}
	if o.Primary == nil {
		o.Primary = nodelink.Renderer{}
	}
	if o.Fallback == nil {
		o.Fallback = grid.Renderer{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Result reports a completed render invocation.
type Result struct {
	// Path is the written artifact.
	Path string

	// Format is the format actually produced. It differs from the
	// requested format when the fallback stage ran.
	Format string

	// UsedFallback is true when the primary renderer failed and the
	// artifact came from the fallback stage.
	UsedFallback bool

	NodeCount  int
	EdgeCount  int
	RenderTime time.Duration
}
