// Package grid implements the fallback workflow renderer.
//
// It ignores the computed layout entirely: up to the first 20 nodes are
// packed into a fixed-column grid of labeled colored rectangles on a plain
// raster canvas, with a footer reporting the true node count. The point is
// to always produce something legible when the primary renderer cannot
// run, so the only hard failure is an empty graph or a PNG encode error.
package grid

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/fonts"
	"github.com/gejjech/flowviz/pkg/render"
)

// Grid packing constants.
const (
	maxNodes   = 20 // only the first 20 nodes are drawn
	nodeWidth  = 120.0
	nodeHeight = 40.0
	margin     = 20.0
	startY     = 60.0

	// labelBudget is the character budget for node labels; longer labels
	// are truncated to truncateTo characters plus an ellipsis.
	labelBudget = 15
	truncateTo  = 12
)

// Renderer is the fallback rendering strategy.
// It always produces PNG regardless of the requested format.
type Renderer struct{}

// Name identifies the renderer in logs.
func (Renderer) Name() string { return "grid" }

// Render draws the grid diagram and returns encoded PNG bytes.
func (Renderer) Render(scene render.Scene) ([]byte, string, error) {
	nodes := scene.Graph.Nodes()
	if len(nodes) == 0 {
		return nil, "", errors.New(errors.ErrCodeRenderFallback, "no nodes to draw")
	}

	width, height := scene.Width, scene.Height
	if width <= 0 {
		width = render.DefaultWidth
	}
	if height <= 0 {
		height = render.DefaultHeight
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Font loading is best-effort; fonts.Face falls back to a built-in
	// bitmap face and never fails.
	face := fonts.Face(12)
	titleFace := fonts.BoldFace(16)

	dc.SetFontFace(titleFace)
	dc.SetRGB(0, 0, 0)
	dc.DrawString("n8n Workflow: "+scene.Title, 10, 30)

	dc.SetFontFace(face)
	cols := int((float64(width) - 2*margin) / (nodeWidth + margin))
	if cols < 1 {
		cols = 1
	}

	count := len(nodes)
	if count > maxNodes {
		count = maxNodes
	}
	for i := 0; i < count; i++ {
		n := nodes[i]
		x := margin + float64(i%cols)*(nodeWidth+margin)
		y := startY + float64(i/cols)*(nodeHeight+margin)

		dc.DrawRectangle(x, y, nodeWidth, nodeHeight)
		dc.SetColor(scene.Categories[n.ID].Color())
		dc.FillPreserve()
		dc.SetLineWidth(2)
		dc.SetRGB(0, 0, 0)
		dc.Stroke()

		dc.SetColor(color.White)
		dc.DrawStringAnchored(truncate(n.DisplayLabel()), x+nodeWidth/2, y+nodeHeight/2, 0.5, 0.35)
	}

	dc.SetColor(color.Gray{Y: 0x80})
	dc.DrawString(fmt.Sprintf("Contains %d nodes", len(nodes)), 10, float64(height)-20)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeRenderFallback, err, "encode PNG")
	}
	return buf.Bytes(), render.FormatPNG, nil
}

// truncate shortens a label to the fixed character budget.
// Counts runes, not bytes, so multibyte labels never get cut mid-rune.
func truncate(s string) string {
	r := []rune(s)
	if len(r) > labelBudget {
		return string(r[:truncateTo]) + "..."
	}
	return s
}

// Ensure Renderer satisfies the strategy interface.
var _ render.Renderer = Renderer{}
