package engine

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

const defaultGoogleBaseURL = "https://www.google.com"

// NewGoogle builds the google scraper. baseURL overrides the public
// endpoint, mainly for tests.
func NewGoogle(baseURL string, fetcher Fetcher, logger *slog.Logger) *Scraper {
	base := strings.TrimSuffix(baseURL, "/")
	if base == "" {
		base = defaultGoogleBaseURL
	}
	return &Scraper{
		name:    "google",
		fetcher: fetcher,
		logger:  logger,
		buildURL: func(query string, limit int) string {
			v := url.Values{}
			v.Set("q", query)
			v.Set("num", strconv.Itoa(limit))
			return base + "/search?" + v.Encode()
		},
		sel: selectorSet{
			result:  []string{"div.g", ".MjjYud", "#search div[data-hveid]"},
			title:   []string{"h3"},
			link:    []string{"a"},
			snippet: []string{"span.aCOpRe", "div.VwiC3b"},
			captcha: "#captcha-form, form#captcha",
		},
		unwrap: unwrapGoogleRedirect,
	}
}

// unwrapGoogleRedirect strips the /url?q= indirection google puts on
// organic result links.
func unwrapGoogleRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("q"); target != "" {
		return target
	}
	return href
}
