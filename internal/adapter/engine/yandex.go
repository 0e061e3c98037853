package engine

import (
	"log/slog"
	"net/url"
	"strings"
)

const defaultYandexBaseURL = "https://yandex.com"

// NewYandex builds the yandex scraper. baseURL overrides the public
// endpoint, mainly for tests.
func NewYandex(baseURL string, fetcher Fetcher, logger *slog.Logger) *Scraper {
	base := strings.TrimSuffix(baseURL, "/")
	if base == "" {
		base = defaultYandexBaseURL
	}
	return &Scraper{
		name:    "yandex",
		fetcher: fetcher,
		logger:  logger,
		buildURL: func(query string, _ int) string {
			v := url.Values{}
			v.Set("text", query)
			return base + "/search/?" + v.Encode()
		},
		sel: selectorSet{
			result:  []string{"div.serp-item"},
			title:   []string{"h2 a", "a.Link"},
			link:    []string{"h2 a", "a.Link"},
			snippet: []string{"div.text-container"},
			captcha: "div.CheckboxCaptcha",
		},
	}
}
