package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/render"
	"github.com/gejjech/flowviz/pkg/render/grid"
	"github.com/gejjech/flowviz/pkg/workflow"
)

// stubRenderer returns fixed bytes or a fixed error.
type stubRenderer struct {
	name string
	data []byte
	ext  string
	err  error

	calls     int
	lastScene render.Scene
}

func (s *stubRenderer) Name() string { return s.name }

func (s *stubRenderer) Render(scene render.Scene) ([]byte, string, error) {
	s.calls++
	s.lastScene = scene
	if s.err != nil {
		return nil, "", s.err
	}
	return s.data, s.ext, nil
}

func writeWorkflow(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const simpleFlow = `{
	"name": "Demo",
	"nodes": [
		{"id": "a", "name": "Start", "type": "n8n-nodes-base.webhook", "position": [0, 0]},
		{"id": "b", "name": "End", "type": "n8n-nodes-base.slack", "position": [200, 0]}
	],
	"connections": {"a": {"main": [[{"node": "b"}]]}}
}`

func TestRunPrimarySuccess(t *testing.T) {
	input := writeWorkflow(t, "flow.json", simpleFlow)
	primary := &stubRenderer{name: "primary", data: []byte("svg-bytes"), ext: render.FormatSVG}
	fallback := &stubRenderer{name: "fallback", data: []byte("png-bytes"), ext: render.FormatPNG}

	res, err := Run(input, Options{Format: render.FormatSVG, Primary: primary, Fallback: fallback})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.UsedFallback {
		t.Error("UsedFallback = true, want false")
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
	if res.NodeCount != 2 || res.EdgeCount != 1 {
		t.Errorf("counts = (%d, %d), want (2, 1)", res.NodeCount, res.EdgeCount)
	}
	if res.Format != render.FormatSVG {
		t.Errorf("Format = %q, want svg", res.Format)
	}

	// Default output path derives from the input path.
	want := strings.TrimSuffix(input, ".json") + ".svg"
	if res.Path != want {
		t.Errorf("Path = %q, want %q", res.Path, want)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if string(data) != "svg-bytes" {
		t.Errorf("artifact = %q", data)
	}

	if got := primary.lastScene.Title; got != "Demo" {
		t.Errorf("scene title = %q, want document name", got)
	}
}

func TestRunFallbackRecovers(t *testing.T) {
	input := writeWorkflow(t, "flow.json", simpleFlow)
	primary := &stubRenderer{name: "primary", err: errors.New(errors.ErrCodeRenderPrimary, "boom")}
	fallback := &stubRenderer{name: "fallback", data: []byte("png-bytes"), ext: render.FormatPNG}

	res, err := Run(input, Options{Format: render.FormatSVG, Primary: primary, Fallback: fallback})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.UsedFallback {
		t.Error("UsedFallback = false, want true")
	}
	// Fallback output format wins over the requested one.
	if res.Format != render.FormatPNG {
		t.Errorf("Format = %q, want png", res.Format)
	}
	if !strings.HasSuffix(res.Path, ".png") {
		t.Errorf("Path = %q, want .png artifact", res.Path)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
}

func TestRunBothStagesFail(t *testing.T) {
	input := writeWorkflow(t, "flow.json", simpleFlow)
	primary := &stubRenderer{name: "primary", err: errors.New(errors.ErrCodeRenderPrimary, "boom")}
	fallback := &stubRenderer{name: "fallback", err: errors.New(errors.ErrCodeRenderFallback, "also boom")}

	_, err := Run(input, Options{Primary: primary, Fallback: fallback})
	if !errors.Is(err, errors.ErrCodeRenderFallback) {
		t.Fatalf("Run() error = %v, want RENDER_FALLBACK", err)
	}

	// No artifact may exist after a terminal failure.
	entries, readErr := os.ReadDir(filepath.Dir(input))
	if readErr != nil {
		t.Fatal(readErr)
	}
	for _, e := range entries {
		if e.Name() != filepath.Base(input) {
			t.Errorf("unexpected file after failure: %s", e.Name())
		}
	}
}

func TestRunDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"invalid json", `{"nodes": [`, errors.ErrCodeInvalidJSON},
		{"missing nodes", `{"name": "x"}`, errors.ErrCodeInvalidGraphStructure},
		{"nodes not a list", `{"nodes": {"a": 1}}`, errors.ErrCodeInvalidGraphStructure},
		{"empty nodes", `{"nodes": []}`, errors.ErrCodeEmptyGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeWorkflow(t, "flow.json", tt.data)
			primary := &stubRenderer{name: "primary", data: []byte("x"), ext: render.FormatPNG}

			_, err := Run(input, Options{Primary: primary, Fallback: primary})
			if !errors.Is(err, tt.code) {
				t.Fatalf("Run() error = %v, want %s", err, tt.code)
			}
			if primary.calls != 0 {
				t.Errorf("renderer called %d times before document errors", primary.calls)
			}
		})
	}
}

func TestRunInputNotFound(t *testing.T) {
	_, err := Run(filepath.Join(t.TempDir(), "missing.json"), Options{
		Primary:  &stubRenderer{name: "p"},
		Fallback: &stubRenderer{name: "f"},
	})
	if !errors.Is(err, errors.ErrCodeInputNotFound) {
		t.Errorf("Run() error = %v, want INPUT_NOT_FOUND", err)
	}
}

func TestRunInvalidFormat(t *testing.T) {
	input := writeWorkflow(t, "flow.json", simpleFlow)
	_, err := Run(input, Options{Format: "gif"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Run() error = %v, want INVALID_FORMAT", err)
	}
}

func TestRunExplicitOutput(t *testing.T) {
	input := writeWorkflow(t, "flow.json", simpleFlow)
	out := filepath.Join(t.TempDir(), "custom.png")
	primary := &stubRenderer{name: "primary", data: []byte("x"), ext: render.FormatPNG}

	res, err := Run(input, Options{Output: out, Primary: primary, Fallback: primary})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Path != out {
		t.Errorf("Path = %q, want %q", res.Path, out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	// Single start node, no connections: one node, zero edges, default
	// category, artifact written. Uses the real grid renderer so the
	// artifact is an actual image.
	input := writeWorkflow(t, "single.json",
		`{"nodes":[{"id":"1","name":"Start","type":"n8n-nodes-base.start","position":[0,0]}],"connections":{}}`)

	res, err := Run(input, Options{Primary: grid.Renderer{}, Fallback: grid.Renderer{}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.NodeCount != 1 || res.EdgeCount != 0 {
		t.Errorf("counts = (%d, %d), want (1, 0)", res.NodeCount, res.EdgeCount)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("artifact is empty")
	}
}

func TestRenderDocumentFallbackName(t *testing.T) {
	doc, err := workflow.Parse([]byte(`{"nodes": [{"id": "a", "name": "A", "type": "t"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	primary := &stubRenderer{name: "primary", data: []byte("x"), ext: render.FormatPNG}

	_, _, err = RenderDocument(doc, "my-flow.json", Options{Primary: primary, Fallback: primary})
	if err != nil {
		t.Fatalf("RenderDocument() error = %v", err)
	}
	// Unnamed documents title the diagram after the file, extension stripped.
	if got := primary.lastScene.Title; got != "my-flow" {
		t.Errorf("scene title = %q, want %q", got, "my-flow")
	}
}
