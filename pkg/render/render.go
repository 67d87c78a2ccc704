// Package render defines the rendering strategy interface shared by the
// primary node-link renderer and the minimal grid fallback.
//
// A [Scene] bundles everything a renderer needs: the immutable graph, the
// category and coordinate overlays, a title, and frame parameters.
// Renderers return encoded image bytes; writing the artifact to disk is
// the pipeline's job, so a failed render never leaves partial files.
package render

import (
	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/graph"
	"github.com/gejjech/flowviz/pkg/layout"
)

// Output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
	FormatSVG: true,
	FormatPDF: true,
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, svg, pdf)", format)
	}
	return nil
}

// Default frame dimensions in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Scene is the full input of a single render attempt.
type Scene struct {
	Graph      *graph.Graph
	Categories map[string]graph.Category
	Coords     map[string]layout.Point

	Title  string // rendered as the diagram heading
	Format string // requested output format (png, svg, pdf)
	Width  int    // frame width in pixels
	Height int    // frame height in pixels
}

// Renderer turns a scene into encoded image bytes.
//
// Implementations report failures through the returned error; they never
// write files. The pipeline tries the primary renderer first and switches
// to the fallback on any error.
type Renderer interface {
	// Name identifies the renderer in logs ("nodelink", "grid").
	Name() string

	// Render produces the encoded artifact. The returned extension is the
	// actual format produced, which may differ from Scene.Format (the
	// fallback always produces PNG).
	Render(scene Scene) (data []byte, ext string, err error)
}
