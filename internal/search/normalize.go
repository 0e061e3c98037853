package search

import (
	"strings"

	"metasearch/internal/domain"
)

// Placeholder strings for raw records missing optional fields.
const (
	NoTitle       = "No title"
	NoDescription = "No description"
)

// RawRecord is the provider-shaped triple an engine recovers before
// normalization. Engines never leak their own field names past this.
type RawRecord struct {
	Title   string
	URL     string
	Snippet string
}

// Normalize converts a raw record into the canonical result shape.
// Missing title and snippet fall back to fixed placeholders. A record
// with no URL is dropped, signalled by ok == false.
func Normalize(raw RawRecord) (domain.SearchResult, bool) {
	url := strings.TrimSpace(raw.URL)
	if url == "" {
		return domain.SearchResult{}, false
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = NoTitle
	}
	snippet := strings.TrimSpace(raw.Snippet)
	if snippet == "" {
		snippet = NoDescription
	}

	result := domain.SearchResult{
		Title:   title,
		URL:     url,
		Snippet: snippet,
	}
	Classify(&result)
	return result, true
}

// NormalizeAll normalizes a batch in provider order, dropping URL-less
// records and capping the output at limit. limit <= 0 means no cap.
func NormalizeAll(raws []RawRecord, limit int) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(raws))
	for _, raw := range raws {
		r, ok := Normalize(raw)
		if !ok {
			continue
		}
		results = append(results, r)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results
}
