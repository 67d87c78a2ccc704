package cli

import (
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout runs fn and returns everything it wrote to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestPrintHelpersKeepPercentSigns(t *testing.T) {
	// File names like "100%25 done.json" must print verbatim, not as
	// mangled format verbs.
	path := "workflows/100%25 done.json"

	out := captureStdout(t, func() {
		printSuccess("%s", path)
		printError("%s", path)
		printFile(path)
	})
	if got := strings.Count(out, path); got != 3 {
		t.Errorf("output contains path %d times, want 3:\n%s", got, out)
	}
	if strings.Contains(out, "%!") {
		t.Errorf("output has mangled format verbs:\n%s", out)
	}
}
