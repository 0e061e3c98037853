package engine

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

const defaultBingBaseURL = "https://www.bing.com"

// NewBing builds the bing scraper. baseURL overrides the public
// endpoint, mainly for tests.
func NewBing(baseURL string, fetcher Fetcher, logger *slog.Logger) *Scraper {
	base := strings.TrimSuffix(baseURL, "/")
	if base == "" {
		base = defaultBingBaseURL
	}
	return &Scraper{
		name:    "bing",
		fetcher: fetcher,
		logger:  logger,
		buildURL: func(query string, limit int) string {
			v := url.Values{}
			v.Set("q", query)
			v.Set("count", strconv.Itoa(limit))
			return base + "/search?" + v.Encode()
		},
		sel: selectorSet{
			result:  []string{"li.b_algo"},
			title:   []string{"h2 > a", "h2"},
			link:    []string{"h2 > a", "a"},
			snippet: []string{"p"},
		},
	}
}
