package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"metasearch/internal/domain"
	"metasearch/internal/search"
)

// Compile-time interface assertion.
var _ domain.SearchEngine = (*InstantAnswer)(nil)

const defaultInstantAnswerEndpoint = "https://api.duckduckgo.com"

// instantAnswerResponse is the subset of the DuckDuckGo Instant Answer
// payload this engine consumes.
type instantAnswerResponse struct {
	Heading       string               `json:"Heading"`
	AbstractText  string               `json:"AbstractText"`
	AbstractURL   string               `json:"AbstractURL"`
	Image         string               `json:"Image"`
	Results       []instantAnswerTopic `json:"Results"`
	RelatedTopics []instantAnswerTopic `json:"RelatedTopics"`
}

// instantAnswerTopic is either a leaf link or a named group of nested topics.
type instantAnswerTopic struct {
	Text     string               `json:"Text"`
	FirstURL string               `json:"FirstURL"`
	Topics   []instantAnswerTopic `json:"Topics"`
}

// InstantAnswer is the structured-API engine. It consumes typed JSON
// instead of scraping markup and is the only engine gated by the rate
// limiter in the chain.
type InstantAnswer struct {
	endpoint  string
	client    *http.Client
	userAgent string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewInstantAnswer creates the engine against the given endpoint
// (empty for the public API).
func NewInstantAnswer(endpoint string, client *http.Client, logger *slog.Logger) *InstantAnswer {
	base := strings.TrimSuffix(endpoint, "/")
	if base == "" {
		base = defaultInstantAnswerEndpoint
	}
	return &InstantAnswer{
		endpoint:  base,
		client:    client,
		userAgent: BrowserUserAgent,
		timeout:   defaultRequestTimeout,
		logger:    logger,
	}
}

// Name returns the engine identifier.
func (e *InstantAnswer) Name() string { return "duckduckgo_api" }

// Search queries the Instant Answer endpoint and maps the abstract, its
// topic image, direct results, and related topics (nested groups
// flattened) into normalized records.
func (e *InstantAnswer) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instant answer request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instant answer returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed instantAnswerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := search.NormalizeAll(e.collect(parsed, limit), limit)
	e.logger.Debug("instant answer search completed", "query", query, "results", len(results))
	return results, nil
}

// collect orders raw records by answer strength: abstract first, then its
// topic image, then direct results, then related topics.
func (e *InstantAnswer) collect(parsed instantAnswerResponse, limit int) []search.RawRecord {
	raws := make([]search.RawRecord, 0, limit)

	if parsed.AbstractURL != "" {
		raws = append(raws, search.RawRecord{
			Title:   parsed.Heading,
			URL:     parsed.AbstractURL,
			Snippet: parsed.AbstractText,
		})
	}
	if parsed.Image != "" {
		raws = append(raws, search.RawRecord{
			Title:   parsed.Heading,
			URL:     absoluteImageURL(parsed.Image),
			Snippet: parsed.AbstractText,
		})
	}
	raws = flattenTopics(parsed.Results, raws, limit)
	raws = flattenTopics(parsed.RelatedTopics, raws, limit)
	return raws
}

// flattenTopics appends leaf topics depth-first until the cap is hit.
// Category groups carry no FirstURL of their own, only nested topics.
func flattenTopics(topics []instantAnswerTopic, raws []search.RawRecord, limit int) []search.RawRecord {
	for _, t := range topics {
		if limit > 0 && len(raws) >= limit {
			return raws
		}
		if t.FirstURL != "" {
			raws = append(raws, search.RawRecord{Title: t.Text, URL: t.FirstURL})
		}
		if len(t.Topics) > 0 {
			raws = flattenTopics(t.Topics, raws, limit)
		}
	}
	return raws
}

// absoluteImageURL resolves the API's host-relative image paths.
func absoluteImageURL(image string) string {
	if strings.HasPrefix(image, "/") {
		return "https://duckduckgo.com" + image
	}
	return image
}
