package engine

import (
	"fmt"
	"log/slog"

	"metasearch/internal/domain"
	"metasearch/internal/infra/config"
)

// Engine names, in default priority order. The structured API goes first
// because it is cheap and tolerated when used within its rate budget.
const (
	NameDuckDuckGoAPI  = "duckduckgo_api"
	NameDuckDuckGoHTML = "duckduckgo_html"
	NameGoogle         = "google"
	NameBing           = "bing"
	NameYandex         = "yandex"
	NameStartpage      = "startpage"
	NameEcosia         = "ecosia"
)

var chainOrder = []string{
	NameDuckDuckGoAPI,
	NameDuckDuckGoHTML,
	NameGoogle,
	NameBing,
	NameYandex,
	NameStartpage,
	NameEcosia,
}

// Chain holds the assembled engine descriptors plus the shared fetch
// resources behind them.
type Chain struct {
	Descriptors []domain.EngineDescriptor

	renderer *RenderedFetcher
}

// Close releases the shared headless browser, if one was started.
func (c *Chain) Close() {
	if c.renderer != nil {
		c.renderer.Close()
	}
}

// BuildChain assembles the engine fallback chain from cfg in priority order,
// honoring per-engine disable, base URL, and render overrides. A headless
// browser is started only when at least one enabled engine asks for it.
func BuildChain(cfg *config.Config, logger *slog.Logger) (*Chain, error) {
	client := NewHTTPClient(HTTPOptions{
		Timeout:             cfg.HTTP.Timeout,
		MaxIdleConns:        cfg.HTTP.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.HTTP.IdleConnTimeout,
	})
	plain := NewHTTPFetcher(client, cfg.HTTP.UserAgent, cfg.HTTP.Timeout)

	chain := &Chain{}
	priority := 0
	for _, name := range chainOrder {
		override := cfg.Engines.Override(name)
		if override != nil && override.Disabled {
			logger.Info("engine disabled", "engine", name)
			continue
		}

		baseURL := ""
		render := false
		if override != nil {
			baseURL = override.BaseURL
			render = override.Render
		}

		if name == NameDuckDuckGoAPI {
			if render {
				logger.Warn("render override ignored for structured api", "engine", name)
			}
			chain.Descriptors = append(chain.Descriptors, domain.EngineDescriptor{
				Name:        name,
				Priority:    priority,
				Engine:      NewInstantAnswer(baseURL, client, logger),
				RateLimited: true,
			})
			priority++
			continue
		}

		fetcher := Fetcher(plain)
		if render {
			if chain.renderer == nil {
				r, err := NewRenderedFetcher(cfg.Engines.RenderTimeout, logger)
				if err != nil {
					return nil, fmt.Errorf("start headless browser: %w", err)
				}
				chain.renderer = r
			}
			fetcher = chain.renderer
		}

		scraper, err := newScraperByName(name, baseURL, fetcher, logger)
		if err != nil {
			chain.Close()
			return nil, err
		}
		chain.Descriptors = append(chain.Descriptors, domain.EngineDescriptor{
			Name:     name,
			Priority: priority,
			Engine:   scraper,
		})
		priority++
	}

	if len(chain.Descriptors) == 0 {
		return nil, fmt.Errorf("engine chain: all engines disabled")
	}
	return chain, nil
}

func newScraperByName(name, baseURL string, fetcher Fetcher, logger *slog.Logger) (*Scraper, error) {
	switch name {
	case NameDuckDuckGoHTML:
		return NewDuckDuckGoHTML(baseURL, fetcher, logger), nil
	case NameGoogle:
		return NewGoogle(baseURL, fetcher, logger), nil
	case NameBing:
		return NewBing(baseURL, fetcher, logger), nil
	case NameYandex:
		return NewYandex(baseURL, fetcher, logger), nil
	case NameStartpage:
		return NewStartpage(baseURL, fetcher, logger), nil
	case NameEcosia:
		return NewEcosia(baseURL, fetcher, logger), nil
	default:
		return nil, fmt.Errorf("engine chain: unknown engine %q", name)
	}
}
