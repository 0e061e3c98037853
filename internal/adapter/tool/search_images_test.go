package tool

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"metasearch/internal/domain"
)

func TestImageSearchTool_Execute_FormatsImages(t *testing.T) {
	stub := &stubSearcher{resolution: &domain.Resolution{
		Results: []domain.SearchResult{
			{Title: "Gopher mascot", URL: "https://go.dev/images/gopher.png", Snippet: "No description", Kind: domain.KindImage},
			{Title: "Gopher plush", URL: "https://example.com/plush.jpg", Snippet: "Photo.", Kind: domain.KindImage},
		},
		Engine:    "duckduckgo_api",
		Attempted: []string{"duckduckgo_api"},
	}}
	tool := NewImageSearchTool(stub, 5, 20, nopLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"go gopher"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content)
	}

	if !strings.HasPrefix(result.Content, "Images found:") {
		t.Errorf("expected header, got: %s", result.Content)
	}
	if !strings.Contains(result.Content, "1. Gopher mascot\n   URL: https://go.dev/images/gopher.png") {
		t.Errorf("expected first block, got: %s", result.Content)
	}
	if !strings.Contains(result.Content, "2. Gopher plush\n   URL: https://example.com/plush.jpg") {
		t.Errorf("expected second block, got: %s", result.Content)
	}
	if stub.method != "images" {
		t.Errorf("expected ResolveImages to be called, got %q", stub.method)
	}
}

func TestImageSearchTool_Execute_NoResults(t *testing.T) {
	stub := &stubSearcher{resolution: &domain.Resolution{
		Attempted: []string{"duckduckgo_api", "duckduckgo_html"},
		Exhausted: true,
	}}
	tool := NewImageSearchTool(stub, 5, 20, nopLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"go gopher"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("no matches must not surface as a tool error: %s", result.Content)
	}
	if result.Content != "No images found." {
		t.Errorf("unexpected content: %q", result.Content)
	}
}

func TestImageSearchTool_Execute_DefaultLimit(t *testing.T) {
	stub := &stubSearcher{resolution: &domain.Resolution{}}
	tool := NewImageSearchTool(stub, 5, 20, nopLogger())

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"go gopher"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.lastLimit != 5 {
		t.Errorf("limit = %d, want 5", stub.lastLimit)
	}
}

func TestImageSearchTool_Execute_ClampsLimit(t *testing.T) {
	stub := &stubSearcher{resolution: &domain.Resolution{}}
	tool := NewImageSearchTool(stub, 5, 20, nopLogger())

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"go gopher","num_results":99}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.lastLimit != 20 {
		t.Errorf("limit = %d, want 20", stub.lastLimit)
	}
}

func TestImageSearchTool_Execute_EmptyQuery(t *testing.T) {
	stub := &stubSearcher{resolution: &domain.Resolution{}}
	tool := NewImageSearchTool(stub, 5, 20, nopLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"  "}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for blank query")
	}
	if stub.calls != 0 {
		t.Errorf("searcher should not be called, got %d calls", stub.calls)
	}
}

func TestImageSearchTool_SchemaCompiles(t *testing.T) {
	tool := NewImageSearchTool(&stubSearcher{}, 5, 20, nopLogger())
	if _, err := WithSchemaValidation(tool); err != nil {
		t.Fatalf("schema should compile: %v", err)
	}
}
