package engine

import (
	"log/slog"
	"net/url"
	"strings"
)

const defaultStartpageBaseURL = "https://www.startpage.com"

// NewStartpage builds the startpage scraper. baseURL overrides the
// public endpoint, mainly for tests.
func NewStartpage(baseURL string, fetcher Fetcher, logger *slog.Logger) *Scraper {
	base := strings.TrimSuffix(baseURL, "/")
	if base == "" {
		base = defaultStartpageBaseURL
	}
	return &Scraper{
		name:    "startpage",
		fetcher: fetcher,
		logger:  logger,
		buildURL: func(query string, _ int) string {
			v := url.Values{}
			v.Set("query", query)
			return base + "/sp/search?" + v.Encode()
		},
		sel: selectorSet{
			result:  []string{"div.w-gl__result"},
			title:   []string{"h3 > a", "a.w-gl__result-title"},
			link:    []string{"h3 > a", "a.w-gl__result-title"},
			snippet: []string{"p.w-gl__description"},
		},
	}
}
