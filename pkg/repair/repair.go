// Package repair attempts best-effort recovery of malformed workflow JSON
// files, typically truncated downloads or files with trailing garbage.
//
// Strategies, in order:
//  1. empty or whitespace-only input becomes an empty array
//  2. input that already parses is kept as-is
//  3. the text is cut at the last closing brace or bracket and re-parsed
//  4. the first complete top-level JSON value is extracted with a
//     streaming decoder
//
// A successful repair is re-encoded as pretty-printed UTF-8. Inputs no
// strategy can recover return an error.
package repair

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/gejjech/flowviz/pkg/errors"
)

// Text repairs malformed JSON text and returns the normalized,
// pretty-printed form. The second return reports whether the input needed
// repair (false means it already parsed cleanly).
func Text(data []byte) (fixed []byte, repaired bool, err error) {
	stripped := bytes.TrimSpace(data)
	if len(stripped) == 0 {
		return encodePretty([]any{}), true, nil
	}

	if v, ok := tryParse(stripped); ok {
		return encodePretty(v), false, nil
	}

	// Trim to the last closing brace or bracket.
	if cut := lastClose(stripped); cut >= 0 {
		if v, ok := tryParse(stripped[:cut+1]); ok {
			return encodePretty(v), true, nil
		}
	}

	// Extract the first complete top-level value.
	dec := json.NewDecoder(bytes.NewReader(stripped))
	var v any
	if err := dec.Decode(&v); err == nil {
		return encodePretty(v), true, nil
	}

	return nil, false, errors.New(errors.ErrCodeInvalidJSON, "could not auto-repair")
}

// File repairs a JSON file in place. The returned flag reports whether the
// content actually needed repair; the file is rewritten (normalized)
// either way, matching the idempotent behavior of re-running the tool.
func File(path string) (repaired bool, err error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInputNotFound, err, "read %s", path)
	}

	fixed, repaired, err := Text(original)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidJSON, err, "repair %s", path)
	}

	if err := os.WriteFile(path, fixed, 0o644); err != nil {
		return repaired, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return repaired, nil
}

// tryParse attempts a strict parse of the full input.
func tryParse(data []byte) (any, bool) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return v, true
}

// lastClose returns the index of the last '}' or ']' in data, or -1.
func lastClose(data []byte) int {
	brace := bytes.LastIndexByte(data, '}')
	bracket := bytes.LastIndexByte(data, ']')
	if bracket > brace {
		return bracket
	}
	return brace
}

// encodePretty renders a value as two-space indented JSON with a trailing
// newline, without escaping non-ASCII text.
func encodePretty(v any) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v) // values come from json.Unmarshal and always re-encode
	return buf.Bytes()
}
