// Package nodelink implements the primary workflow renderer.
//
// The graph is converted to Graphviz DOT with every node pinned to its
// resolved layout coordinate, then rendered to SVG with the neato engine.
// PNG and PDF outputs are produced by converting the SVG with librsvg.
package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/graph"
	"github.com/gejjech/flowviz/pkg/layout"
	"github.com/gejjech/flowviz/pkg/render"
)

// frameMargin is the padding in points between the layout bounds and the
// frame edge.
const frameMargin = 40.0

// Renderer is the primary rendering strategy.
type Renderer struct{}

// Name identifies the renderer in logs.
func (Renderer) Name() string { return "nodelink" }

// Render produces the requested format for the scene.
// Fails on zero-node graphs, Graphviz errors, and missing librsvg for
// raster or PDF output; the pipeline recovers by switching to the
// fallback renderer.
func (Renderer) Render(scene render.Scene) ([]byte, string, error) {
	if scene.Graph.NodeCount() == 0 {
		return nil, "", errors.New(errors.ErrCodeRenderPrimary, "no nodes to draw")
	}

	svg, err := RenderSVG(ToDOT(scene))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeRenderPrimary, err, "node-link render failed")
	}

	switch scene.Format {
	case render.FormatSVG:
		return svg, render.FormatSVG, nil
	case render.FormatPDF:
		pdf, err := render.ToPDF(svg)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeRenderPrimary, err, "PDF conversion failed")
		}
		return pdf, render.FormatPDF, nil
	default:
		png, err := render.ToPNG(svg, 2.0)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeRenderPrimary, err, "PNG conversion failed")
		}
		return png, render.FormatPNG, nil
	}
}

// ToDOT converts a scene to Graphviz DOT for node-link visualization.
//
// Nodes are pinned ("pos=x,y!") so neato keeps the resolved layout instead
// of computing its own. Each node is filled with its category color, edges
// are drawn as gray arrows, and a legend column of category swatches sits
// left of the diagram.
func ToDOT(scene render.Scene) string {
	coords := fitFrame(scene)

	var buf bytes.Buffer
	buf.WriteString("digraph workflow {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n", "n8n Workflow: "+scene.Title)
	buf.WriteString("  labelloc=\"t\";\n")
	buf.WriteString("  fontsize=20;\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fontsize=11, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [color=gray, arrowsize=0.8];\n")
	buf.WriteString("\n")

	for _, n := range scene.Graph.Nodes() {
		p := coords[n.ID]
		cat := scene.Categories[n.ID]
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q, pos=\"%.2f,%.2f!\"];\n",
			n.ID, n.DisplayLabel(), cat.Hex(), p.X, p.Y)
	}

	buf.WriteString("\n")
	for _, e := range scene.Graph.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("\n")
	writeLegend(&buf, coords)

	buf.WriteString("}\n")
	return buf.String()
}

// writeLegend pins one swatch node per category along the left edge,
// above-aligned with the top of the diagram.
func writeLegend(buf *bytes.Buffer, coords map[string]layout.Point) {
	_, _, _, maxY := layout.Bounds(coords)
	for i, cat := range graph.LegendCategories {
		fmt.Fprintf(buf, "  %q [label=%q, shape=box, fillcolor=%q, fontsize=9, width=0.9, height=0.25, pos=\"%.2f,%.2f!\"];\n",
			"__legend_"+string(cat), cat.Title(), cat.Hex(), -frameMargin-40.0, maxY-float64(i)*28.0)
	}
}

// fitFrame maps resolved layout coordinates into a fixed frame of
// points with a margin, so both authored transforms and unit-square
// force layouts render at a usable scale. Scene.Width/Height are a
// fallback-renderer concern; neato sizes the canvas from the pinned
// positions.
func fitFrame(scene render.Scene) map[string]layout.Point {
	minX, minY, maxX, maxY := layout.Bounds(scene.Coords)
	spanX := maxX - minX
	spanY := maxY - minY

	w := render.DefaultWidth - 2*frameMargin
	h := render.DefaultHeight - 2*frameMargin

	out := make(map[string]layout.Point, len(scene.Coords))
	for id, p := range scene.Coords {
		var x, y float64
		if spanX > 0 {
			x = (p.X - minX) / spanX * w
		} else {
			x = w / 2
		}
		if spanY > 0 {
			y = (p.Y - minY) / spanY * h
		} else {
			y = h / 2
		}
		out[id] = layout.Point{X: x, Y: y}
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element with a zero-origin
// viewBox and explicit pixel dimensions, which keeps downstream rsvg
// conversion and browser display consistent.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Ensure Renderer satisfies the strategy interface.
var _ render.Renderer = Renderer{}
