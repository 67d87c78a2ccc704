package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/graph"
	"github.com/gejjech/flowviz/pkg/layout"
	"github.com/gejjech/flowviz/pkg/render"
	"github.com/gejjech/flowviz/pkg/workflow"
)

// Run renders the workflow document at input to an image artifact.
//
// Document-level errors (INPUT_NOT_FOUND, INVALID_JSON), structural errors
// (INVALID_GRAPH_STRUCTURE) and EMPTY_GRAPH abort before any render
// attempt. A primary render failure is recovered internally by the
// fallback stage; only RENDER_FALLBACK is terminal.
func Run(input string, opts Options) (*Result, error) {
	opts.setDefaults()
	if err := render.ValidateFormat(opts.Format); err != nil {
		return nil, err
	}

	doc, err := workflow.ReadFile(input)
	if err != nil {
		return nil, err
	}

	res, data, err := RenderDocument(doc, filepath.Base(input), opts)
	if err != nil {
		return nil, err
	}

	outPath := opts.Output
	if outPath == "" {
		// Name the artifact after the format actually produced: the
		// fallback stage emits PNG regardless of the request.
		outPath = replaceExt(input, res.Format)
	}
	if err := writeArtifact(outPath, data); err != nil {
		return nil, err
	}
	res.Path = outPath
	return res, nil
}

// RenderDocument runs the graph → overlays → two-stage render portion of
// the pipeline and returns the encoded artifact bytes. The serve API uses
// this directly; Run adds the file write around it.
//
// fallbackName names the workflow when the document declares none
// (typically the input file name).
func RenderDocument(doc *workflow.Document, fallbackName string, opts Options) (*Result, []byte, error) {
	opts.setDefaults()
	logger := opts.Logger

	g, err := graph.Build(doc)
	if err != nil {
		return nil, nil, err
	}
	if g.NodeCount() == 0 {
		return nil, nil, errors.New(errors.ErrCodeEmptyGraph, "workflow has no usable nodes")
	}
	logger.Debugf("built graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	scene := render.Scene{
		Graph:      g,
		Categories: graph.Categories(g),
		Coords:     layout.Resolve(g, opts.Seed),
		Title:      doc.DisplayName(strings.TrimSuffix(fallbackName, filepath.Ext(fallbackName))),
		Format:     opts.Format,
		Width:      opts.Width,
		Height:     opts.Height,
	}

	start := time.Now()
	res := &Result{
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
	}

	// PrimaryAttempt. Any failure here is recovered locally - it is
	// logged and the fallback stage runs; the error never reaches the
	// caller.
	data, ext, err := opts.Primary.Render(scene)
	if err == nil {
		logger.Debugf("%s renderer produced %d bytes", opts.Primary.Name(), len(data))
		res.Format = ext
		res.RenderTime = time.Since(start)
		return res, data, nil
	}
	logger.Warnf("%s renderer failed (%s), trying %s", opts.Primary.Name(), errors.UserMessage(err), opts.Fallback.Name())

	// FallbackAttempt. Failure here is terminal.
	data, ext, err = opts.Fallback.Render(scene)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeRenderFallback, err, "both render stages failed")
	}
	logger.Debugf("%s renderer produced %d bytes", opts.Fallback.Name(), len(data))
	res.Format = ext
	res.UsedFallback = true
	res.RenderTime = time.Since(start)
	return res, data, nil
}

// replaceExt swaps a path's extension for the given format.
func replaceExt(path, format string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
}

// writeArtifact writes data to path atomically: a uniquely named sibling
// temp file is written first and renamed into place, so a failed write
// never leaves a partial artifact behind.
func writeArtifact(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString()[:8])
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
