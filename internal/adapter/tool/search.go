package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"metasearch/internal/domain"
	"metasearch/internal/infra/tracer"
)

const (
	defaultSearchLimit = 5
	defaultVideoLimit  = 3
	defaultImageLimit  = 5
	maxSearchLimit     = 20
	defaultCacheTTL    = 15 * time.Minute
)

// Searcher resolves queries through the engine fallback chain.
type Searcher interface {
	Resolve(ctx context.Context, query string, limit int) (*domain.Resolution, error)
	ResolveVideos(ctx context.Context, query string, limit int) (*domain.Resolution, error)
	ResolveImages(ctx context.Context, query string, limit int) (*domain.Resolution, error)
}

// searchParams is the shared wire shape of all three search tools.
type searchParams struct {
	Query      string `json:"query"`
	NumResults int    `json:"num_results,omitempty"`
}

// clampLimit applies the default for unset values and bounds the rest to [1, max].
func clampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// cacheEntry holds a cached formatted result with its expiration time.
type cacheEntry struct {
	content   string
	expiresAt time.Time
}

// SearchTool performs general web searches through the fallback chain.
// Formatted results are cached per query+limit for the configured TTL.
type SearchTool struct {
	searcher     Searcher
	defaultLimit int
	maxLimit     int
	cacheTTL     time.Duration
	logger       *slog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewSearchTool creates the general search tool on top of the given Searcher.
func NewSearchTool(searcher Searcher, defaultLimit, maxLimit int, cacheTTL time.Duration, logger *slog.Logger) *SearchTool {
	if defaultLimit <= 0 {
		defaultLimit = defaultSearchLimit
	}
	if maxLimit <= 0 {
		maxLimit = maxSearchLimit
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &SearchTool{
		searcher:     searcher,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		cacheTTL:     cacheTTL,
		logger:       logger,
		cache:        make(map[string]cacheEntry),
	}
}

func (t *SearchTool) Name() string { return "search" }
func (t *SearchTool) Description() string {
	return "Search the web. Returns text results with multimedia content flagged (YouTube videos, images, video files)"
}

func (t *SearchTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "The search query"},
				"num_results": {"type": "integer", "minimum": 1, "maximum": 20, "description": "Number of results (default: 5)"}
			},
			"required": ["query"]
		}`),
	}
}

func (t *SearchTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.search", t.logger, params,
		func(ctx context.Context, span trace.Span, p searchParams) (any, error) {
			if strings.TrimSpace(p.Query) == "" {
				return ErrResult("query must not be empty")
			}

			span.SetAttributes(tracer.StringAttr("tool.query", p.Query))

			limit := clampLimit(p.NumResults, t.defaultLimit, t.maxLimit)

			cacheKey := fmt.Sprintf("%s|%d", p.Query, limit)
			if cached, ok := t.getCached(cacheKey); ok {
				t.logger.Debug("search cache hit", "query", p.Query)
				span.SetAttributes(tracer.StringAttr("tool.cache", "hit"))
				return cached, nil
			}

			res, err := t.searcher.Resolve(ctx, p.Query, limit)
			if err != nil {
				return nil, err
			}

			span.SetAttributes(
				tracer.StringAttr("search.engine", res.Engine),
				tracer.IntAttr("search.results", len(res.Results)),
			)

			content := formatSearchResults(p.Query, res.Results)
			t.putCache(cacheKey, content)

			t.logger.Debug("search completed",
				"query", p.Query, "engine", res.Engine,
				"results", len(res.Results), "exhausted", res.Exhausted)
			return content, nil
		},
	)
}

// formatSearchResults renders results as numbered plain-text blocks.
// Recognized multimedia hits are summarized before the blocks so callers
// can pick them up without re-parsing URLs.
func formatSearchResults(query string, results []domain.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No search results found for %q.", query)
	}

	var sb strings.Builder
	if media := formatMultimedia(results); media != "" {
		sb.WriteString(media)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Search results for %q:\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   URL: %s\n   %s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return sb.String()
}

// formatMultimedia summarizes platform-video, image, and direct video-file hits.
// Returns "" when the results are plain web pages.
func formatMultimedia(results []domain.SearchResult) string {
	var sb strings.Builder
	for _, r := range results {
		switch r.Kind {
		case domain.KindVideo:
			fmt.Fprintf(&sb, "YouTube: %s\n   ID: %s\n   URL: %s\n", r.Title, r.VideoID, r.URL)
		case domain.KindImage:
			fmt.Fprintf(&sb, "Image: %s\n   URL: %s\n", r.Title, r.URL)
		case domain.KindFile:
			fmt.Fprintf(&sb, "Video: %s\n   URL: %s\n", r.Title, r.URL)
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return "Multimedia content found:\n" + sb.String()
}

// getCached returns a cached result if it exists and has not expired.
func (t *SearchTool) getCached(key string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.cache[key]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		delete(t.cache, key)
		return "", false
	}
	return entry.content, true
}

// putCache stores a result in the cache with the configured TTL.
func (t *SearchTool) putCache(key, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cache[key] = cacheEntry{
		content:   content,
		expiresAt: time.Now().Add(t.cacheTTL),
	}

	// Lazy eviction: remove expired entries if cache grows large
	if len(t.cache) > 100 {
		now := time.Now()
		for k, v := range t.cache {
			if now.After(v.expiresAt) {
				delete(t.cache, k)
			}
		}
	}
}
