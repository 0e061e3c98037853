package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"metasearch/internal/domain"
	"metasearch/internal/infra/tracer"
)

// ImageSearchTool searches for images and GIFs.
type ImageSearchTool struct {
	searcher     Searcher
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// NewImageSearchTool creates the image search tool on top of the given Searcher.
func NewImageSearchTool(searcher Searcher, defaultLimit, maxLimit int, logger *slog.Logger) *ImageSearchTool {
	if defaultLimit <= 0 {
		defaultLimit = defaultImageLimit
	}
	if maxLimit <= 0 {
		maxLimit = maxSearchLimit
	}
	return &ImageSearchTool{
		searcher:     searcher,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
	}
}

func (t *ImageSearchTool) Name() string        { return "search_images" }
func (t *ImageSearchTool) Description() string { return "Search for images and GIFs" }

func (t *ImageSearchTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Image search query"},
				"num_results": {"type": "integer", "minimum": 1, "maximum": 20, "description": "Number of images (default: 5)"}
			},
			"required": ["query"]
		}`),
	}
}

func (t *ImageSearchTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.search_images", t.logger, params,
		func(ctx context.Context, span trace.Span, p searchParams) (any, error) {
			if strings.TrimSpace(p.Query) == "" {
				return ErrResult("query must not be empty")
			}

			span.SetAttributes(tracer.StringAttr("tool.query", p.Query))

			limit := clampLimit(p.NumResults, t.defaultLimit, t.maxLimit)

			res, err := t.searcher.ResolveImages(ctx, p.Query, limit)
			if err != nil {
				return nil, err
			}

			span.SetAttributes(
				tracer.StringAttr("search.engine", res.Engine),
				tracer.IntAttr("search.results", len(res.Results)),
			)

			t.logger.Debug("image search completed",
				"query", p.Query, "engine", res.Engine,
				"results", len(res.Results), "exhausted", res.Exhausted)
			return formatImageResults(res.Results), nil
		},
	)
}

// formatImageResults renders image hits as numbered title/URL blocks.
func formatImageResults(results []domain.SearchResult) string {
	if len(results) == 0 {
		return "No images found."
	}

	var sb strings.Builder
	sb.WriteString("Images found:\n\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   URL: %s\n\n", i+1, r.Title, r.URL)
	}
	return sb.String()
}
