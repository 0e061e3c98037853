package search

import (
	"testing"

	"metasearch/internal/domain"
)

func TestNormalizeComplete(t *testing.T) {
	r, ok := Normalize(RawRecord{Title: "Go", URL: "https://go.dev", Snippet: "The Go programming language"})
	if !ok {
		t.Fatal("complete record should be retained")
	}
	if r.Title != "Go" || r.URL != "https://go.dev" || r.Snippet != "The Go programming language" {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.Kind != domain.KindWeb {
		t.Errorf("expected web kind, got %q", r.Kind)
	}
}

func TestNormalizeMissingSnippet(t *testing.T) {
	r, ok := Normalize(RawRecord{Title: "Go", URL: "https://go.dev"})
	if !ok {
		t.Fatal("record missing only a snippet should be retained")
	}
	if r.Snippet != NoDescription {
		t.Errorf("snippet = %q, want %q", r.Snippet, NoDescription)
	}
}

func TestNormalizeMissingTitle(t *testing.T) {
	r, ok := Normalize(RawRecord{URL: "https://go.dev", Snippet: "something"})
	if !ok {
		t.Fatal("record missing only a title should be retained")
	}
	if r.Title != NoTitle {
		t.Errorf("title = %q, want %q", r.Title, NoTitle)
	}
}

func TestNormalizeDropsEmptyURL(t *testing.T) {
	if _, ok := Normalize(RawRecord{Title: "Go", Snippet: "no link"}); ok {
		t.Fatal("record without URL should be dropped")
	}
	if _, ok := Normalize(RawRecord{Title: "Go", URL: "   ", Snippet: "whitespace link"}); ok {
		t.Fatal("record with whitespace URL should be dropped")
	}
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	r, ok := Normalize(RawRecord{Title: "  Go  \n", URL: " https://go.dev ", Snippet: "\tdocs\n"})
	if !ok {
		t.Fatal("record should be retained")
	}
	if r.Title != "Go" || r.URL != "https://go.dev" || r.Snippet != "docs" {
		t.Errorf("whitespace not trimmed: %+v", r)
	}
}

func TestNormalizeClassifies(t *testing.T) {
	r, ok := Normalize(RawRecord{Title: "clip", URL: "https://youtu.be/abc123"})
	if !ok {
		t.Fatal("record should be retained")
	}
	if r.Kind != domain.KindVideo {
		t.Errorf("kind = %q, want %q", r.Kind, domain.KindVideo)
	}
	if r.EmbedURL != "https://www.youtube.com/embed/abc123" {
		t.Errorf("embed = %q", r.EmbedURL)
	}
}

func TestNormalizeAllOrderAndCap(t *testing.T) {
	raws := []RawRecord{
		{Title: "first", URL: "https://a.example"},
		{Title: "dropped", URL: ""},
		{Title: "second", URL: "https://b.example"},
		{Title: "third", URL: "https://c.example"},
		{Title: "overflow", URL: "https://d.example"},
	}
	results := NormalizeAll(raws, 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// Provider order preserved, URL-less record skipped.
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if results[i].Title != w {
			t.Errorf("result %d title = %q, want %q", i, results[i].Title, w)
		}
	}
}

func TestNormalizeAllNoCap(t *testing.T) {
	raws := []RawRecord{
		{Title: "a", URL: "https://a.example"},
		{Title: "b", URL: "https://b.example"},
	}
	if got := len(NormalizeAll(raws, 0)); got != 2 {
		t.Errorf("expected 2 results with no cap, got %d", got)
	}
}
