package engine

import (
	"log/slog"
	"net/url"
	"strings"
)

const defaultDuckHTMLBaseURL = "https://html.duckduckgo.com"

// NewDuckDuckGoHTML builds the scraper for the no-JavaScript DuckDuckGo
// frontend. baseURL overrides the public endpoint, mainly for tests.
func NewDuckDuckGoHTML(baseURL string, fetcher Fetcher, logger *slog.Logger) *Scraper {
	base := strings.TrimSuffix(baseURL, "/")
	if base == "" {
		base = defaultDuckHTMLBaseURL
	}
	return &Scraper{
		name:    "duckduckgo_html",
		fetcher: fetcher,
		logger:  logger,
		buildURL: func(query string, _ int) string {
			v := url.Values{}
			v.Set("q", query)
			return base + "/html/?" + v.Encode()
		},
		sel: selectorSet{
			result:  []string{"div.result"},
			title:   []string{"a.result__a"},
			link:    []string{"a.result__a"},
			snippet: []string{"a.result__snippet"},
		},
		unwrap: unwrapDuckRedirect,
		// Unwrapped ad and navigation links still point back at the provider.
		skipHosts: []string{"duckduckgo.com"},
	}
}

// unwrapDuckRedirect resolves the uddg= parameter carrying the real
// destination behind the provider's tracking redirect.
func unwrapDuckRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
