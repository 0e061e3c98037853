package engine

import (
	"log/slog"
	"net/url"
	"strings"
)

const defaultEcosiaBaseURL = "https://www.ecosia.org"

// NewEcosia builds the ecosia scraper. baseURL overrides the public
// endpoint, mainly for tests.
func NewEcosia(baseURL string, fetcher Fetcher, logger *slog.Logger) *Scraper {
	base := strings.TrimSuffix(baseURL, "/")
	if base == "" {
		base = defaultEcosiaBaseURL
	}
	return &Scraper{
		name:    "ecosia",
		fetcher: fetcher,
		logger:  logger,
		buildURL: func(query string, _ int) string {
			v := url.Values{}
			v.Set("q", query)
			return base + "/search?" + v.Encode()
		},
		sel: selectorSet{
			result:  []string{"div.result"},
			title:   []string{"h2 a", "a.result-title"},
			link:    []string{"h2 a", "a.result-title"},
			snippet: []string{"p.result-snippet"},
		},
	}
}
