package index

import (
	"os"
	"strings"
)

// Query filters corpus records by keyword and category.
type Query struct {
	// Keywords must all be present (case-insensitive) in a hit's
	// searchable text: file name, relative path, and title, plus the raw
	// file content when SearchContent is set.
	Keywords []string

	// Categories restricts hits to the given top-level directories.
	// Empty means all categories.
	Categories []string

	// Limit caps the number of hits; 0 means unlimited.
	Limit int

	// SearchContent includes the raw JSON text in keyword matching.
	SearchContent bool
}

// Hit is a record that matched a query, with the keywords that matched.
type Hit struct {
	Record
	Matched []string
}

// Search scans the corpus under root and returns records matching the
// query, in walk order. Scanning stops early once Limit hits are found.
func Search(root string, q Query) ([]Hit, error) {
	keywords := make([]string, 0, len(q.Keywords))
	for _, kw := range q.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	records, err := Scan(root)
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for _, rec := range records {
		if !categoryAllowed(rec.Category, q.Categories) {
			continue
		}
		matched := matchKeywords(rec, keywords, q.SearchContent)
		if matched == nil {
			continue
		}
		hits = append(hits, Hit{Record: rec, Matched: matched})
		if q.Limit > 0 && len(hits) >= q.Limit {
			break
		}
	}
	return hits, nil
}

// categoryAllowed reports whether a record's category passes the filter.
func categoryAllowed(category string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, c := range allowed {
		if c == category {
			return true
		}
	}
	return false
}

// matchKeywords returns the matched keywords when every keyword appears in
// the record's searchable text, or nil when any keyword is missing.
// An empty keyword list matches everything.
func matchKeywords(rec Record, keywords []string, content bool) []string {
	if len(keywords) == 0 {
		return []string{}
	}

	parts := []string{rec.RelativePath, rec.Title}
	if content {
		if data, err := os.ReadFile(rec.AbsolutePath); err == nil {
			parts = append(parts, string(data))
		}
	}
	text := strings.ToLower(strings.Join(parts, "\n"))

	matched := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if !strings.Contains(text, kw) {
			return nil
		}
		matched = append(matched, kw)
	}
	return matched
}
