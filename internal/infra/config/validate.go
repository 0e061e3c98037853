package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateServer(cfg, ve)
	validateSearch(cfg, ve)
	validateEngines(cfg, ve)
	validateHTTP(cfg, ve)
	validateGateway(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

var validTransports = map[string]bool{
	"stdio": true,
	"http":  true,
}

func validateServer(cfg *Config, ve *ValidationError) {
	if !validTransports[cfg.Server.Transport] {
		ve.Add("server.transport %q is invalid (want: stdio, http)", cfg.Server.Transport)
	}
	if cfg.Server.Transport != "http" {
		return
	}
	if cfg.Server.Addr == "" {
		ve.Add("server.addr is required when transport is http")
		return
	}
	if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
		ve.Add("server.addr %q is not a valid host:port", cfg.Server.Addr)
	}
}

func validateSearch(cfg *Config, ve *ValidationError) {
	s := cfg.Search
	if s.DefaultLimit <= 0 {
		ve.Add("search.default_limit must be > 0")
	}
	if s.VideoDefaultLimit <= 0 {
		ve.Add("search.video_default_limit must be > 0")
	}
	if s.ImageDefaultLimit <= 0 {
		ve.Add("search.image_default_limit must be > 0")
	}
	if s.MaxLimit <= 0 {
		ve.Add("search.max_limit must be > 0")
	} else if s.DefaultLimit > s.MaxLimit {
		ve.Add("search.default_limit must not exceed search.max_limit")
	}
	if s.RateLimit <= 0 {
		ve.Add("search.rate_limit must be > 0")
	}
	if s.RateWindow <= 0 {
		ve.Add("search.rate_window must be > 0")
	}
	if s.FailCooldown <= 0 {
		ve.Add("search.fail_cooldown must be > 0")
	}
	if s.RetryCooldown <= 0 {
		ve.Add("search.retry_cooldown must be > 0")
	}
	if s.CacheTTL <= 0 {
		ve.Add("search.cache_ttl must be > 0")
	}
}

var validEngineNames = map[string]bool{
	"duckduckgo_api":  true,
	"duckduckgo_html": true,
	"google":          true,
	"bing":            true,
	"yandex":          true,
	"startpage":       true,
	"ecosia":          true,
}

func validateEngines(cfg *Config, ve *ValidationError) {
	if cfg.Engines.RenderTimeout <= 0 {
		ve.Add("engines.render_timeout must be > 0")
	}

	seen := make(map[string]bool)
	for i, o := range cfg.Engines.Overrides {
		if o.Name == "" {
			ve.Add("engines.overrides[%d].name must not be empty", i)
			continue
		}
		if !validEngineNames[o.Name] {
			ve.Add("engines.overrides[%d].name %q is unknown (want: duckduckgo_api, duckduckgo_html, google, bing, yandex, startpage, ecosia)", i, o.Name)
		}
		if seen[o.Name] {
			ve.Add("engines.overrides[%d]: duplicate engine name %q", i, o.Name)
		}
		seen[o.Name] = true

		if o.BaseURL != "" && !strings.HasPrefix(o.BaseURL, "http://") && !strings.HasPrefix(o.BaseURL, "https://") {
			ve.Add("engines.overrides[%d] (%s): base_url %q must start with http:// or https://", i, o.Name, o.BaseURL)
		}
	}
}

func validateHTTP(cfg *Config, ve *ValidationError) {
	if cfg.HTTP.Timeout <= 0 {
		ve.Add("http.timeout must be > 0")
	}
	if cfg.HTTP.MaxIdleConns <= 0 {
		ve.Add("http.max_idle_conns must be > 0")
	}
	if cfg.HTTP.MaxIdleConnsPerHost <= 0 {
		ve.Add("http.max_idle_conns_per_host must be > 0")
	}
	if cfg.HTTP.IdleConnTimeout <= 0 {
		ve.Add("http.idle_conn_timeout must be > 0")
	}
}

func validateGateway(cfg *Config, ve *ValidationError) {
	if !cfg.Gateway.Enabled {
		return
	}
	if cfg.Gateway.Addr == "" {
		ve.Add("gateway.addr is required when gateway is enabled")
		return
	}
	if _, _, err := net.SplitHostPort(cfg.Gateway.Addr); err != nil {
		ve.Add("gateway.addr %q is not a valid host:port", cfg.Gateway.Addr)
	}
	if cfg.Gateway.RatePerIP <= 0 {
		ve.Add("gateway.rate_per_ip must be > 0 when gateway is enabled")
	}
	if cfg.Gateway.Burst <= 0 {
		ve.Add("gateway.burst must be > 0 when gateway is enabled")
	}
	for i, p := range cfg.Gateway.TrustedProxies {
		if net.ParseIP(p) == nil {
			ve.Add("gateway.trusted_proxies[%d] %q is not a valid IP address", i, p)
		}
	}
}
