package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"metasearch/internal/domain"
	"metasearch/internal/search"
)

// Compile-time interface assertion.
var _ domain.SearchEngine = (*Scraper)(nil)

// selectorSet describes how to pull result triples out of one provider's
// markup. Slice entries are fallbacks, first hit wins. Providers change
// their markup now and then, which is why most carry alternates.
type selectorSet struct {
	result  []string
	title   []string
	link    []string
	snippet []string
	// captcha, when set and matched, turns an empty page into an engine
	// failure instead of a legitimate empty result set.
	captcha string
}

// Scraper is a generic HTML search adapter driven by per-provider rules.
// All scraped engines share this one implementation; only their URL
// builder, selectors, and link post-processing differ.
type Scraper struct {
	name      string
	buildURL  func(query string, limit int) string
	sel       selectorSet
	unwrap    func(href string) string
	skipHosts []string
	fetcher   Fetcher
	logger    *slog.Logger
}

// Name returns the engine identifier.
func (s *Scraper) Name() string { return s.name }

// Search fetches the provider's result page and parses it into normalized
// records. A per-item parse miss skips the item; a document-level failure
// is an error for the caller's health bookkeeping.
func (s *Scraper) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	doc, err := s.fetcher.FetchDocument(ctx, s.buildURL(query, limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	if s.sel.captcha != "" && doc.Find(s.sel.captcha).Length() > 0 {
		return nil, fmt.Errorf("%s: captcha challenge served", s.name)
	}

	var items *goquery.Selection
	for _, rs := range s.sel.result {
		items = doc.Find(rs)
		if items.Length() > 0 {
			break
		}
	}

	results := make([]domain.SearchResult, 0, limit)
	if items != nil {
		items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
			raw, ok := s.extract(item)
			if !ok {
				return true
			}
			r, ok := search.Normalize(raw)
			if !ok {
				return true
			}
			results = append(results, r)
			return len(results) < limit
		})
	}

	s.logger.Debug("scrape completed", "engine", s.name, "query", query, "results", len(results))
	return results, nil
}

// extract recovers one raw triple from a result container. ok is false
// when the item has no usable link.
func (s *Scraper) extract(item *goquery.Selection) (search.RawRecord, bool) {
	var href string
	for _, ls := range s.sel.link {
		if v, ok := item.Find(ls).First().Attr("href"); ok && strings.TrimSpace(v) != "" {
			href = strings.TrimSpace(v)
			break
		}
	}
	if href == "" {
		return search.RawRecord{}, false
	}
	if s.unwrap != nil {
		href = s.unwrap(href)
	}
	// Relative and provider-internal links are navigation, not results.
	if !strings.HasPrefix(href, "http") {
		return search.RawRecord{}, false
	}
	for _, host := range s.skipHosts {
		if strings.Contains(href, host) {
			return search.RawRecord{}, false
		}
	}

	return search.RawRecord{
		Title:   firstText(item, s.sel.title),
		URL:     href,
		Snippet: firstText(item, s.sel.snippet),
	}, true
}

func firstText(item *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if t := strings.TrimSpace(item.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}
