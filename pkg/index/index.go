// Package index inventories a corpus of workflow template files.
//
// A corpus is a directory tree of category folders holding workflow JSON
// documents. The scanner walks the tree, extracts lightweight metadata per
// file (title, category, node count, size, mtime), and exports the result
// as JSON or CSV. The search API filters the same records by keyword.
//
// The index never shares state with the render pipeline; both merely read
// the same files.
package index

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gejjech/flowviz/pkg/workflow"
)

// Record describes one workflow template file in the corpus.
type Record struct {
	AbsolutePath  string `json:"absolute_path"`
	RelativePath  string `json:"relative_path"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	NodesCount    *int   `json:"nodes_count"` // nil when the file is not a parseable workflow
	FileSizeBytes int64  `json:"file_size_bytes"`
	ModifiedISO   string `json:"modified_iso"`
}

// Directories that never contain workflow templates.
var skipDirs = map[string]bool{
	"node_modules":            true,
	".git":                    true,
	".venv":                   true,
	"__pycache__":             true,
	"workflow-visualizations": true,
	"dist":                    true,
}

// File names that are JSON but clearly not workflows.
var skipFiles = map[string]bool{
	"package.json":  true,
	"tsconfig.json": true,
}

// Walk calls fn for every candidate workflow JSON file under root,
// skipping well-known non-template directories and files, including
// previously exported "all_templates.*" inventories.
func Walk(root string, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !strings.EqualFold(filepath.Ext(name), ".json") {
			return nil
		}
		if skipFiles[name] || strings.HasPrefix(name, "all_templates.") {
			return nil
		}
		return fn(path)
	})
}

// Scan walks the corpus and builds a record per workflow file.
// Unreadable or unparseable files still yield a record (with a nil node
// count), mirroring a best-effort inventory rather than failing the scan.
func Scan(root string) ([]Record, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var records []Record
	err = Walk(absRoot, func(path string) error {
		rec, err := buildRecord(absRoot, path)
		if err != nil {
			return nil // skip files that vanish mid-scan
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// buildRecord extracts metadata for a single corpus file.
func buildRecord(root, path string) (Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Record{}, err
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	rec := Record{
		AbsolutePath:  path,
		RelativePath:  rel,
		Title:         strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Category:      category(rel),
		FileSizeBytes: info.Size(),
		ModifiedISO:   modTime(info.ModTime()),
	}

	// Title and node count come from the document when it parses.
	if data, err := os.ReadFile(path); err == nil {
		if doc, err := workflow.Parse(data); err == nil {
			if doc.Name != "" {
				rec.Title = strings.TrimSpace(doc.Name)
			}
			if nodes, ok := doc.NodeList(); ok {
				n := len(nodes)
				rec.NodesCount = &n
			}
		}
	}
	return rec, nil
}

// category is the top-level directory of a relative path, or empty for
// files sitting directly in the corpus root.
func category(rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// csvHeader lists the CSV columns, matching the JSON field names.
var csvHeader = []string{
	"absolute_path", "relative_path", "title", "category",
	"nodes_count", "file_size_bytes", "modified_iso",
}

// WriteCSV writes records as CSV with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		nodes := ""
		if r.NodesCount != nil {
			nodes = strconv.Itoa(*r.NodesCount)
		}
		row := []string{
			r.AbsolutePath, r.RelativePath, r.Title, r.Category,
			nodes, strconv.FormatInt(r.FileSizeBytes, 10), r.ModifiedISO,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// modTime formats a timestamp for the ModifiedISO field.
func modTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}
