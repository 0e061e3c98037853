package domain

import (
	"context"
	"strings"
)

// ResultKind categorizes a search result by its content type.
type ResultKind string

const (
	KindWeb   ResultKind = "web"
	KindVideo ResultKind = "video"
	KindImage ResultKind = "image"
	KindFile  ResultKind = "file"
)

// SearchResult is a single normalized search hit.
type SearchResult struct {
	Title   string     `json:"title"`
	URL     string     `json:"url"`
	Snippet string     `json:"snippet"`
	Kind    ResultKind `json:"kind"`
	// VideoID and EmbedURL are set for recognized platform videos.
	VideoID  string `json:"video_id,omitempty"`
	EmbedURL string `json:"embed_url,omitempty"`
}

// Resolution is the outcome of running a query through the engine chain.
type Resolution struct {
	Results []SearchResult `json:"results"`
	// Engine names the engine that produced the results, empty on exhaustion.
	Engine string `json:"engine,omitempty"`
	// Attempted lists every engine tried, in order.
	Attempted []string `json:"attempted"`
	// Exhausted is true when every engine failed or returned nothing.
	Exhausted bool `json:"exhausted"`
}

// SearchEngine is the interface for any search backend.
type SearchEngine interface {
	// Search runs the query and returns up to limit normalized results.
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	// Name returns the engine's identifier (e.g., "google", "duckduckgo_api").
	Name() string
}

// EngineDescriptor binds an engine to its position in the fallback chain.
type EngineDescriptor struct {
	// Name is the identifier used for health tracking and logging.
	Name string
	// Priority orders the chain, lower tries first.
	Priority int
	// Engine performs the actual search.
	Engine SearchEngine
	// RateLimited engines consume rate-limiter quota before each attempt.
	RateLimited bool
}

// PlaceholderTitle is returned when every engine in the chain is exhausted.
const PlaceholderTitle = "Search Temporarily Unavailable"

// PlaceholderResult builds the synthetic record surfaced on chain exhaustion.
// It names the engines that were attempted so callers can tell an outage
// apart from a query with no matches.
func PlaceholderResult(query string, attempted []string) SearchResult {
	snippet := "All search engines are currently unavailable or rate-limited. Please try again later."
	if len(attempted) > 0 {
		snippet += " Attempted: " + strings.Join(attempted, ", ") + "."
	}
	snippet += " Query was: " + query
	return SearchResult{
		Title:   PlaceholderTitle,
		URL:     "",
		Snippet: snippet,
		Kind:    KindWeb,
	}
}
