package index

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// seedCorpus creates a small corpus tree and returns its root.
func seedCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"automation/email-digest.json":      `{"name": "Email Digest", "nodes": [{"id": "a"}, {"id": "b"}]}`,
		"automation/slack-alerts.json":      `{"name": "Slack Alerts", "nodes": [{"id": "a"}]}`,
		"data-sync/postgres-backup.json":    `{"name": "Postgres Backup", "nodes": []}`,
		"data-sync/broken.json":             `{"nodes": [`,
		"rootfile.json":                     `{"name": "Root Flow", "nodes": []}`,
		"notes.txt":                         `not json`,
		"package.json":                      `{"name": "npm stuff"}`,
		"all_templates.json":                `[]`,
		"node_modules/dep/workflow.json":    `{"name": "dep"}`,
		".git/objects/config.json":          `{}`,
		"workflow-visualizations/out.json":  `{}`,
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestWalkSkips(t *testing.T) {
	root := seedCorpus(t)

	var seen []string
	err := Walk(root, func(path string) error {
		rel, _ := filepath.Rel(root, path)
		seen = append(seen, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	want := map[string]bool{
		"automation/email-digest.json":   true,
		"automation/slack-alerts.json":   true,
		"data-sync/postgres-backup.json": true,
		"data-sync/broken.json":          true,
		"rootfile.json":                  true,
	}
	if len(seen) != len(want) {
		t.Fatalf("Walk() visited %v, want %d files", seen, len(want))
	}
	for _, rel := range seen {
		if !want[rel] {
			t.Errorf("Walk() visited excluded file %s", rel)
		}
	}
}

func TestScan(t *testing.T) {
	records, err := Scan(seedCorpus(t))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Scan() = %d records, want 5", len(records))
	}

	byRel := map[string]Record{}
	for _, r := range records {
		byRel[filepath.ToSlash(r.RelativePath)] = r
	}

	digest := byRel["automation/email-digest.json"]
	if digest.Title != "Email Digest" {
		t.Errorf("Title = %q, want document name", digest.Title)
	}
	if digest.Category != "automation" {
		t.Errorf("Category = %q, want automation", digest.Category)
	}
	if digest.NodesCount == nil || *digest.NodesCount != 2 {
		t.Errorf("NodesCount = %v, want 2", digest.NodesCount)
	}
	if digest.FileSizeBytes == 0 {
		t.Error("FileSizeBytes = 0")
	}

	// Unparseable files still get a record, titled after the file.
	broken := byRel["data-sync/broken.json"]
	if broken.Title != "broken" {
		t.Errorf("broken Title = %q, want file stem", broken.Title)
	}
	if broken.NodesCount != nil {
		t.Errorf("broken NodesCount = %v, want nil", broken.NodesCount)
	}

	// Files in the corpus root have no category.
	if got := byRel["rootfile.json"].Category; got != "" {
		t.Errorf("root file Category = %q, want empty", got)
	}
}

func TestSearch(t *testing.T) {
	root := seedCorpus(t)

	hits, err := Search(root, Query{Keywords: []string{"slack"}})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Search(slack) = %d hits, want 1", len(hits))
	}
	if hits[0].Title != "Slack Alerts" {
		t.Errorf("hit = %q", hits[0].Title)
	}
	if len(hits[0].Matched) != 1 || hits[0].Matched[0] != "slack" {
		t.Errorf("Matched = %v", hits[0].Matched)
	}
}

func TestSearchAllKeywordsMustMatch(t *testing.T) {
	root := seedCorpus(t)

	hits, err := Search(root, Query{Keywords: []string{"slack", "alerts"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("Search(slack alerts) = %d hits, want 1", len(hits))
	}

	hits, err = Search(root, Query{Keywords: []string{"slack", "postgres"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("Search(slack postgres) = %d hits, want 0", len(hits))
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	root := seedCorpus(t)

	hits, err := Search(root, Query{Keywords: []string{"json"}, Categories: []string{"data-sync"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range hits {
		if h.Category != "data-sync" {
			t.Errorf("hit outside category filter: %s", h.RelativePath)
		}
	}
	if len(hits) != 2 {
		t.Errorf("Search() = %d hits, want 2", len(hits))
	}
}

func TestSearchLimit(t *testing.T) {
	root := seedCorpus(t)

	hits, err := Search(root, Query{Keywords: []string{"json"}, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("Search() = %d hits, want limit of 2", len(hits))
	}
}

func TestSearchContent(t *testing.T) {
	root := seedCorpus(t)

	// "Postgres" only appears in the document body's name field, which is
	// also the title; pick a token only present in raw content.
	hits, err := Search(root, Query{Keywords: []string{`"id": "b"`}, SearchContent: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("content search = %d hits, want 1", len(hits))
	}

	hits, err = Search(root, Query{Keywords: []string{`"id": "b"`}})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("non-content search = %d hits, want 0", len(hits))
	}
}

func TestWriteJSON(t *testing.T) {
	n := 3
	records := []Record{{
		RelativePath: "a/b.json",
		Title:        "B",
		Category:     "a",
		NodesCount:   &n,
	}}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, records); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var decoded []Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Title != "B" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestWriteCSV(t *testing.T) {
	n := 3
	records := []Record{
		{RelativePath: "a/b.json", Title: "B", NodesCount: &n},
		{RelativePath: "c.json", Title: "C"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "absolute_path" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][4] != "3" {
		t.Errorf("nodes_count cell = %q, want 3", rows[1][4])
	}
	if rows[2][4] != "" {
		t.Errorf("nil nodes_count cell = %q, want empty", rows[2][4])
	}
}

func TestModTimeFormat(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if got := modTime(ts); got != "2025-03-14T09:26:53" {
		t.Errorf("modTime() = %q", got)
	}
}
