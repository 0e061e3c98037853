package tool

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"metasearch/internal/domain"
)

func TestVideoSearchTool_Execute_FormatsVideos(t *testing.T) {
	stub := &stubSearcher{resolution: &domain.Resolution{
		Results: []domain.SearchResult{
			{
				Title: "Concurrency Is Not Parallelism", URL: "https://www.youtube.com/watch?v=oV9rvDllKEg",
				Snippet: "Rob Pike at Waza.", Kind: domain.KindVideo,
				VideoID: "oV9rvDllKEg", EmbedURL: "https://www.youtube.com/embed/oV9rvDllKEg",
			},
			{
				Title: "Go in 100 Seconds", URL: "https://youtu.be/446E-r0rXHI",
				Snippet: "Quick intro.", Kind: domain.KindVideo,
				VideoID: "446E-r0rXHI", EmbedURL: "https://www.youtube.com/embed/446E-r0rXHI",
			},
		},
		Engine:    "google",
		Attempted: []string{"duckduckgo_api", "duckduckgo_html", "google"},
	}}
	tool := NewVideoSearchTool(stub, 3, 20, nopLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"go concurrency"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content)
	}

	if !strings.HasPrefix(result.Content, "YouTube videos found:") {
		t.Errorf("expected header, got: %s", result.Content)
	}
	if !strings.Contains(result.Content, "1. Concurrency Is Not Parallelism\n   URL: https://www.youtube.com/watch?v=oV9rvDllKEg\n   Rob Pike at Waza.\n   Video ID: oV9rvDllKEg\n   Embed: https://www.youtube.com/embed/oV9rvDllKEg") {
		t.Errorf("expected full first block, got: %s", result.Content)
	}
	if !strings.Contains(result.Content, "2. Go in 100 Seconds") {
		t.Errorf("expected second block, got: %s", result.Content)
	}
	if stub.method != "videos" {
		t.Errorf("expected ResolveVideos to be called, got %q", stub.method)
	}
}

func TestVideoSearchTool_Execute_NoResults(t *testing.T) {
	stub := &stubSearcher{resolution: &domain.Resolution{
		Attempted: []string{"duckduckgo_api", "duckduckgo_html"},
		Exhausted: true,
	}}
	tool := NewVideoSearchTool(stub, 3, 20, nopLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"go concurrency"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("no matches must not surface as a tool error: %s", result.Content)
	}
	if result.Content != "No YouTube videos found." {
		t.Errorf("unexpected content: %q", result.Content)
	}
}

func TestVideoSearchTool_Execute_MissingEmbedLineOmitted(t *testing.T) {
	stub := &stubSearcher{resolution: &domain.Resolution{
		Results: []domain.SearchResult{
			{Title: "Clip", URL: "https://www.youtube.com/watch?v=abc123xyz00", Snippet: "A clip.", Kind: domain.KindVideo, VideoID: "abc123xyz00"},
		},
		Engine: "bing",
	}}
	tool := NewVideoSearchTool(stub, 3, 20, nopLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"clip"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(result.Content, "Embed:") {
		t.Errorf("expected no embed line without an embed URL, got: %s", result.Content)
	}
	if !strings.Contains(result.Content, "Video ID: abc123xyz00") {
		t.Errorf("expected video ID line, got: %s", result.Content)
	}
}

func TestVideoSearchTool_Execute_DefaultLimit(t *testing.T) {
	stub := &stubSearcher{resolution: &domain.Resolution{}}
	tool := NewVideoSearchTool(stub, 3, 20, nopLogger())

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"go concurrency"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.lastLimit != 3 {
		t.Errorf("limit = %d, want 3", stub.lastLimit)
	}
}

func TestVideoSearchTool_Execute_EmptyQuery(t *testing.T) {
	stub := &stubSearcher{resolution: &domain.Resolution{}}
	tool := NewVideoSearchTool(stub, 3, 20, nopLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"query":""}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for empty query")
	}
	if stub.calls != 0 {
		t.Errorf("searcher should not be called, got %d calls", stub.calls)
	}
}

func TestVideoSearchTool_SchemaCompiles(t *testing.T) {
	tool := NewVideoSearchTool(&stubSearcher{}, 3, 20, nopLogger())
	if _, err := WithSchemaValidation(tool); err != nil {
		t.Fatalf("schema should compile: %v", err)
	}
}
