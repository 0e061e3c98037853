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

// VideoSearchTool searches specifically for platform videos.
type VideoSearchTool struct {
	searcher     Searcher
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// NewVideoSearchTool creates the video search tool on top of the given Searcher.
func NewVideoSearchTool(searcher Searcher, defaultLimit, maxLimit int, logger *slog.Logger) *VideoSearchTool {
	if defaultLimit <= 0 {
		defaultLimit = defaultVideoLimit
	}
	if maxLimit <= 0 {
		maxLimit = maxSearchLimit
	}
	return &VideoSearchTool{
		searcher:     searcher,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
	}
}

func (t *VideoSearchTool) Name() string        { return "search_videos" }
func (t *VideoSearchTool) Description() string { return "Search specifically for YouTube videos" }

func (t *VideoSearchTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Video search query"},
				"num_results": {"type": "integer", "minimum": 1, "maximum": 20, "description": "Number of videos (default: 3)"}
			},
			"required": ["query"]
		}`),
	}
}

func (t *VideoSearchTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.search_videos", t.logger, params,
		func(ctx context.Context, span trace.Span, p searchParams) (any, error) {
			if strings.TrimSpace(p.Query) == "" {
				return ErrResult("query must not be empty")
			}

			span.SetAttributes(tracer.StringAttr("tool.query", p.Query))

			limit := clampLimit(p.NumResults, t.defaultLimit, t.maxLimit)

			res, err := t.searcher.ResolveVideos(ctx, p.Query, limit)
			if err != nil {
				return nil, err
			}

			span.SetAttributes(
				tracer.StringAttr("search.engine", res.Engine),
				tracer.IntAttr("search.results", len(res.Results)),
			)

			t.logger.Debug("video search completed",
				"query", p.Query, "engine", res.Engine,
				"results", len(res.Results), "exhausted", res.Exhausted)
			return formatVideoResults(res.Results), nil
		},
	)
}

// formatVideoResults renders platform-video hits as numbered blocks with the
// video ID and embed URL spelled out.
func formatVideoResults(results []domain.SearchResult) string {
	if len(results) == 0 {
		return "No YouTube videos found."
	}

	var sb strings.Builder
	sb.WriteString("YouTube videos found:\n\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   URL: %s\n   %s\n   Video ID: %s\n", i+1, r.Title, r.URL, r.Snippet, r.VideoID)
		if r.EmbedURL != "" {
			fmt.Fprintf(&sb, "   Embed: %s\n", r.EmbedURL)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
