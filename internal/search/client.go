package search

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"metasearch/internal/domain"
	"metasearch/internal/infra/tracer"
)

// Query rewrites for the specialized flows.
const (
	videoQueryBias  = " site:youtube.com OR site:youtu.be"
	imageQueryHints = " filetype:jpg OR filetype:png OR filetype:gif"
)

// Client runs queries through a fixed-priority engine chain, first
// non-empty result set wins. It owns the rate limiter and health tracker
// so independent instances stay isolated, with injectable clocks underneath.
type Client struct {
	descriptors []domain.EngineDescriptor
	limiter     *RateLimiter
	tracker     *HealthTracker
	logger      *slog.Logger
}

// NewClient creates a search client over the given engine chain.
// Descriptors are ordered by ascending priority once, at construction.
func NewClient(descriptors []domain.EngineDescriptor, limiter *RateLimiter, tracker *HealthTracker, logger *slog.Logger) *Client {
	sorted := make([]domain.EngineDescriptor, len(descriptors))
	copy(sorted, descriptors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &Client{
		descriptors: sorted,
		limiter:     limiter,
		tracker:     tracker,
		logger:      logger,
	}
}

// Resolve runs the query through the fallback chain and always produces a
// well-formed resolution. On exhaustion the results hold a single synthetic
// placeholder and Exhausted is set. Only malformed caller input is a hard error.
func (c *Client) Resolve(ctx context.Context, query string, limit int) (*domain.Resolution, error) {
	if err := validateInput("Client.Resolve", query, limit); err != nil {
		return nil, err
	}
	ctx, span := tracer.StartSpan(ctx, "search.resolve",
		trace.WithAttributes(tracer.StringAttr("search.query", query), tracer.IntAttr("search.limit", limit)),
	)
	defer span.End()

	res := c.resolveChain(ctx, query, limit)
	tracer.SetOK(span)
	return res, nil
}

// ResolveVideos biases the query toward YouTube, tries the structured API
// first, and falls back to the general chain at double the limit. Results
// are filtered to platform videos carrying a canonical ID. Zero surviving
// matches yield an empty result set, not a placeholder.
func (c *Client) ResolveVideos(ctx context.Context, query string, limit int) (*domain.Resolution, error) {
	if err := validateInput("Client.ResolveVideos", query, limit); err != nil {
		return nil, err
	}
	ctx, span := tracer.StartSpan(ctx, "search.resolve_videos",
		trace.WithAttributes(tracer.StringAttr("search.query", query), tracer.IntAttr("search.limit", limit)),
	)
	defer span.End()

	biased := query + videoQueryBias

	var apiName string
	apiHealthy := false
	attempted := make([]string, 0, len(c.descriptors)+1)
	if api, ok := c.structuredAPI(); ok {
		apiName = api.Name
		results, invoked, err := c.attempt(ctx, api, biased, limit)
		if invoked {
			attempted = append(attempted, api.Name)
			if err == nil {
				apiHealthy = true
				if videos := filterKind(results, domain.KindVideo, limit); len(videos) > 0 {
					tracer.SetOK(span)
					return &domain.Resolution{Results: videos, Engine: api.Name, Attempted: attempted}, nil
				}
			}
		}
	}

	// The API had its shot; the fallback pass covers the scraped engines.
	chain := c.resolveChainSkipping(ctx, biased, limit*2, apiName)
	videos := filterKind(chain.Results, domain.KindVideo, limit)
	res := &domain.Resolution{
		Results:   videos,
		Attempted: append(attempted, chain.Attempted...),
		Exhausted: chain.Exhausted && !apiHealthy,
	}
	if len(videos) > 0 {
		res.Engine = chain.Engine
	}
	tracer.SetOK(span)
	return res, nil
}

// ResolveImages tries the structured API first, then falls back to the
// general chain with file-type hints appended to the query, at double the
// limit. Results are filtered to image links by the classifier.
func (c *Client) ResolveImages(ctx context.Context, query string, limit int) (*domain.Resolution, error) {
	if err := validateInput("Client.ResolveImages", query, limit); err != nil {
		return nil, err
	}
	ctx, span := tracer.StartSpan(ctx, "search.resolve_images",
		trace.WithAttributes(tracer.StringAttr("search.query", query), tracer.IntAttr("search.limit", limit)),
	)
	defer span.End()

	var apiName string
	apiHealthy := false
	attempted := make([]string, 0, len(c.descriptors)+1)
	if api, ok := c.structuredAPI(); ok {
		apiName = api.Name
		results, invoked, err := c.attempt(ctx, api, query, limit)
		if invoked {
			attempted = append(attempted, api.Name)
			if err == nil {
				apiHealthy = true
				if images := filterKind(results, domain.KindImage, limit); len(images) > 0 {
					tracer.SetOK(span)
					return &domain.Resolution{Results: images, Engine: api.Name, Attempted: attempted}, nil
				}
			}
		}
	}

	chain := c.resolveChainSkipping(ctx, query+imageQueryHints, limit*2, apiName)
	images := filterKind(chain.Results, domain.KindImage, limit)
	res := &domain.Resolution{
		Results:   images,
		Attempted: append(attempted, chain.Attempted...),
		Exhausted: chain.Exhausted && !apiHealthy,
	}
	if len(images) > 0 {
		res.Engine = chain.Engine
	}
	tracer.SetOK(span)
	return res, nil
}

// resolveChain walks the descriptors in priority order and short-circuits
// on the first engine returning a non-empty result set. Engines inside
// their failure cooldown are skipped without a network call; the rate
// gate applies only to rate-limited descriptors and a denial is a local
// admission decision, never recorded as an engine failure.
func (c *Client) resolveChain(ctx context.Context, query string, limit int) *domain.Resolution {
	return c.resolveChainSkipping(ctx, query, limit, "")
}

// resolveChainSkipping is resolveChain minus one named engine. The
// specialized flows use it so the structured API is not attempted twice.
func (c *Client) resolveChainSkipping(ctx context.Context, query string, limit int, skipEngine string) *domain.Resolution {
	attempted := make([]string, 0, len(c.descriptors))

	for _, d := range c.descriptors {
		if ctx.Err() != nil {
			break
		}
		if d.Name == skipEngine {
			continue
		}
		results, invoked, err := c.attempt(ctx, d, query, limit)
		if !invoked {
			continue
		}
		attempted = append(attempted, d.Name)
		if err != nil || len(results) == 0 {
			continue
		}
		if len(results) > limit {
			results = results[:limit]
		}
		c.logger.Info("search resolved", "engine", d.Name, "query", query, "results", len(results))
		return &domain.Resolution{Results: results, Engine: d.Name, Attempted: attempted}
	}

	c.logger.Warn("all search engines exhausted", "query", query, "attempted", attempted)
	return &domain.Resolution{
		Results:   []domain.SearchResult{domain.PlaceholderResult(query, attempted)},
		Attempted: attempted,
		Exhausted: true,
	}
}

// attempt applies the health and rate gates, then invokes the engine.
// invoked is false when a gate suppressed the network call. An engine
// error marks the engine failed; cancellation by the caller is not held
// against the engine.
func (c *Client) attempt(ctx context.Context, d domain.EngineDescriptor, query string, limit int) (results []domain.SearchResult, invoked bool, err error) {
	if c.tracker.IsFailing(d.Name) {
		c.logger.Debug("engine in failure cooldown, skipping", "engine", d.Name)
		return nil, false, nil
	}
	if d.RateLimited && !c.limiter.TryAdmit() {
		c.logger.Info("rate limit denied engine attempt", "engine", d.Name)
		return nil, false, nil
	}

	results, err = d.Engine.Search(ctx, query, limit)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.tracker.MarkFailed(d.Name)
		}
		c.logger.Warn("engine failed", "engine", d.Name, "query", query, "error", err)
		return nil, true, err
	}
	if len(results) == 0 {
		c.logger.Debug("engine returned no results", "engine", d.Name, "query", query)
	}
	return results, true, nil
}

// structuredAPI returns the highest-priority rate-limited descriptor,
// which by construction is the structured-API engine.
func (c *Client) structuredAPI() (domain.EngineDescriptor, bool) {
	for _, d := range c.descriptors {
		if d.RateLimited {
			return d, true
		}
	}
	return domain.EngineDescriptor{}, false
}

// EngineNames lists the chain in priority order.
func (c *Client) EngineNames() []string {
	names := make([]string, len(c.descriptors))
	for i, d := range c.descriptors {
		names[i] = d.Name
	}
	return names
}

// FailingEngines lists engines currently inside their failure cooldown.
func (c *Client) FailingEngines() []string {
	return c.tracker.FailingEngines()
}

// RetryableEngines lists failing engines already past the retry horizon,
// meaning a forced attempt against them is permitted even though the
// longer failure cooldown has not expired yet.
func (c *Client) RetryableEngines() []string {
	var names []string
	for _, name := range c.tracker.FailingEngines() {
		if c.tracker.RetryAllowed(name) {
			names = append(names, name)
		}
	}
	return names
}

// RateRemaining reports how many structured-API requests the current
// window still admits.
func (c *Client) RateRemaining() int {
	return c.limiter.Remaining()
}

func validateInput(op, query string, limit int) error {
	if strings.TrimSpace(query) == "" {
		return domain.NewDomainError(op, domain.ErrEmptyQuery, "")
	}
	if limit <= 0 {
		return domain.NewDomainError(op, domain.ErrInvalidInput, "limit must be positive")
	}
	return nil
}

// filterKind keeps results of one classification, capped at limit,
// preserving order. The exhaustion placeholder never survives it.
func filterKind(results []domain.SearchResult, kind domain.ResultKind, limit int) []domain.SearchResult {
	kept := make([]domain.SearchResult, 0, limit)
	for _, r := range results {
		if r.Kind != kind || r.URL == "" {
			continue
		}
		kept = append(kept, r)
		if len(kept) >= limit {
			break
		}
	}
	return kept
}
