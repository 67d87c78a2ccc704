package repair

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gejjech/flowviz/pkg/errors"
)

func TestTextStrategies(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		wantRepaired bool
	}{
		{"empty input", "", true},
		{"whitespace only", "  \n\t ", true},
		{"already valid", `{"name": "ok", "nodes": []}`, false},
		{"valid array", `[1, 2, 3]`, false},
		{"trailing garbage after close", `{"name": "ok"} extra junk`, true},
		{"truncated after close", `[{"id": "a"}] oops`, true},
		{"two concatenated values", `{"a": 1}{"b": 2}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed, repaired, err := Text([]byte(tt.in))
			if err != nil {
				t.Fatalf("Text() error = %v", err)
			}
			if repaired != tt.wantRepaired {
				t.Errorf("repaired = %v, want %v", repaired, tt.wantRepaired)
			}
			var v any
			if err := json.Unmarshal(fixed, &v); err != nil {
				t.Errorf("fixed output is not valid JSON: %v\n%s", err, fixed)
			}
		})
	}
}

func TestTextEmptyBecomesArray(t *testing.T) {
	fixed, _, err := Text(nil)
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if got := strings.TrimSpace(string(fixed)); got != "[]" {
		t.Errorf("Text(nil) = %q, want empty array", got)
	}
}

func TestTextFirstValueWins(t *testing.T) {
	fixed, repaired, err := Text([]byte(`{"a": 1}{"b": 2}`))
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if !repaired {
		t.Error("repaired = false, want true")
	}
	var v map[string]any
	if err := json.Unmarshal(fixed, &v); err != nil {
		t.Fatal(err)
	}
	if _, ok := v["b"]; ok {
		t.Errorf("second value leaked into result: %s", fixed)
	}
}

func TestTextUnrepairable(t *testing.T) {
	for _, in := range []string{`{"nodes": [`, `not json at all`, `{{{{`} {
		_, _, err := Text([]byte(in))
		if !errors.Is(err, errors.ErrCodeInvalidJSON) {
			t.Errorf("Text(%q) error = %v, want INVALID_JSON", in, err)
		}
	}
}

func TestTextNormalizesFormatting(t *testing.T) {
	fixed, repaired, err := Text([]byte(`{"b":2,"a":{"c":[1,2]}}`))
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if repaired {
		t.Error("repaired = true for already valid input")
	}
	if !strings.Contains(string(fixed), "\n  ") {
		t.Errorf("output not indented:\n%s", fixed)
	}
	if !strings.HasSuffix(string(fixed), "\n") {
		t.Error("output missing trailing newline")
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte(`{"name": "x"} trailing`), 0o644); err != nil {
		t.Fatal(err)
	}

	repaired, err := File(path)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if !repaired {
		t.Error("repaired = false, want true")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Errorf("repaired file is not valid JSON: %v", err)
	}

	// Re-running is a no-op repair.
	repaired, err = File(path)
	if err != nil {
		t.Fatalf("File() second run error = %v", err)
	}
	if repaired {
		t.Error("second run repaired = true, want false")
	}
}

func TestFileUnrepairableLeftUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hopeless.json")
	original := []byte(`completely broken {{{`)
	if err := os.WriteFile(path, original, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := File(path); err == nil {
		t.Fatal("File() error = nil, want failure")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(original) {
		t.Error("unrepairable file was modified")
	}
}

func TestFileMissing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeInputNotFound) {
		t.Errorf("File() error = %v, want INPUT_NOT_FOUND", err)
	}
}
