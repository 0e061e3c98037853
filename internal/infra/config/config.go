package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Search   SearchConfig  `yaml:"search"`
	Engines  EnginesConfig `yaml:"engines"`
	HTTP     HTTPConfig    `yaml:"http"`
	Gateway  GatewayConfig `yaml:"gateway"`
	Logger   LoggerConfig  `yaml:"logger"`
	Tracer   TracerConfig  `yaml:"tracer"`
	Includes []string      `yaml:"includes,omitempty"`
}

// ServerConfig holds MCP transport settings.
type ServerConfig struct {
	Transport string `yaml:"transport"` // "stdio" or "http"
	Addr      string `yaml:"addr"`      // listen address for the http transport
}

// SearchConfig holds fallback orchestration settings.
type SearchConfig struct {
	DefaultLimit      int           `yaml:"default_limit"`
	VideoDefaultLimit int           `yaml:"video_default_limit"`
	ImageDefaultLimit int           `yaml:"image_default_limit"`
	MaxLimit          int           `yaml:"max_limit"`
	RateLimit         int           `yaml:"rate_limit"`  // admissions per window for rate-limited engines
	RateWindow        time.Duration `yaml:"rate_window"` // sliding window length
	FailCooldown      time.Duration `yaml:"fail_cooldown"`
	RetryCooldown     time.Duration `yaml:"retry_cooldown"`
	CacheTTL          time.Duration `yaml:"cache_ttl"` // formatted-result cache at the tool layer
}

// EngineConfig overrides settings for a single engine in the chain.
type EngineConfig struct {
	Name     string `yaml:"name"`
	Disabled bool   `yaml:"disabled,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Render   bool   `yaml:"render,omitempty"` // fetch through the headless browser
}

// EnginesConfig holds engine chain settings.
type EnginesConfig struct {
	Overrides     []EngineConfig `yaml:"overrides,omitempty"`
	RenderTimeout time.Duration  `yaml:"render_timeout"`
}

// Override returns the override entry for the named engine, or nil.
func (e *EnginesConfig) Override(name string) *EngineConfig {
	for i := range e.Overrides {
		if e.Overrides[i].Name == name {
			return &e.Overrides[i]
		}
	}
	return nil
}

// ensureOverride returns the override entry for name, creating it if absent.
func (e *EnginesConfig) ensureOverride(name string) *EngineConfig {
	if o := e.Override(name); o != nil {
		return o
	}
	e.Overrides = append(e.Overrides, EngineConfig{Name: name})
	return &e.Overrides[len(e.Overrides)-1]
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	Timeout             time.Duration `yaml:"timeout"`
	UserAgent           string        `yaml:"user_agent,omitempty"` // empty uses the built-in browser UA
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// GatewayConfig holds REST gateway settings.
type GatewayConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Addr           string   `yaml:"addr"`
	AuthToken      string   `yaml:"auth_token,omitempty"`      // empty disables bearer auth
	RatePerIP      float64  `yaml:"rate_per_ip"`               // requests per second per client
	Burst          int      `yaml:"burst"`
	TrustedProxies []string `yaml:"trusted_proxies,omitempty"` // peers whose forwarding headers are honored
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "stdio",
			Addr:      ":8080",
		},
		Search: SearchConfig{
			DefaultLimit:      5,
			VideoDefaultLimit: 3,
			ImageDefaultLimit: 5,
			MaxLimit:          20,
			RateLimit:         15,
			RateWindow:        60 * time.Second,
			FailCooldown:      300 * time.Second,
			RetryCooldown:     30 * time.Second,
			CacheTTL:          15 * time.Minute,
		},
		Engines: EnginesConfig{
			RenderTimeout: 30 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:             10 * time.Second,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
		Gateway: GatewayConfig{
			Enabled:   false,
			Addr:      ":8090",
			RatePerIP: 5,
			Burst:     10,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file and applies env var overrides.
// A missing file is not an error: defaults plus env vars apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	if err := validatePermissions(absPath); err != nil {
		return nil, err
	}

	// First pass: unmarshal to get the includes list.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Process includes (merges included files into cfg).
	if len(cfg.Includes) > 0 {
		visited := map[string]bool{absPath: true}
		if err := processIncludes(cfg, filepath.Dir(absPath), visited, 0); err != nil {
			return nil, err
		}

		// Second pass: re-unmarshal main config so it takes precedence over includes.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (second pass): %w", err)
		}
		cfg.Includes = nil
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps METASEARCH_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("METASEARCH_SERVER_TRANSPORT"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("METASEARCH_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	if v := os.Getenv("METASEARCH_SEARCH_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Search.DefaultLimit = n
		}
	}
	if v := os.Getenv("METASEARCH_SEARCH_MAX_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Search.MaxLimit = n
		}
	}
	if v := os.Getenv("METASEARCH_SEARCH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Search.RateLimit = n
		}
	}
	if v := os.Getenv("METASEARCH_SEARCH_RATE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Search.RateWindow = d
		}
	}
	if v := os.Getenv("METASEARCH_SEARCH_FAIL_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Search.FailCooldown = d
		}
	}
	if v := os.Getenv("METASEARCH_SEARCH_RETRY_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Search.RetryCooldown = d
		}
	}
	if v := os.Getenv("METASEARCH_SEARCH_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Search.CacheTTL = d
		}
	}

	if v := os.Getenv("METASEARCH_ENGINES_DISABLED"); v != "" {
		for _, name := range splitAndTrim(v, ",") {
			if name == "" {
				continue
			}
			cfg.Engines.ensureOverride(name).Disabled = true
		}
	}
	if v := os.Getenv("METASEARCH_ENGINES_RENDER"); v != "" {
		for _, name := range splitAndTrim(v, ",") {
			if name == "" {
				continue
			}
			cfg.Engines.ensureOverride(name).Render = true
		}
	}
	if v := os.Getenv("METASEARCH_ENGINES_RENDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Engines.RenderTimeout = d
		}
	}

	if v := os.Getenv("METASEARCH_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.HTTP.Timeout = d
		}
	}
	if v := os.Getenv("METASEARCH_HTTP_USER_AGENT"); v != "" {
		cfg.HTTP.UserAgent = v
	}

	if v := os.Getenv("METASEARCH_GATEWAY_ENABLED"); v == "true" {
		cfg.Gateway.Enabled = true
	}
	if v := os.Getenv("METASEARCH_GATEWAY_ADDR"); v != "" {
		cfg.Gateway.Addr = v
	}
	if v := os.Getenv("METASEARCH_GATEWAY_AUTH_TOKEN"); v != "" {
		cfg.Gateway.AuthToken = v
	}
	if v := os.Getenv("METASEARCH_GATEWAY_TRUSTED_PROXIES"); v != "" {
		cfg.Gateway.TrustedProxies = splitAndTrim(v, ",")
	}

	if v := os.Getenv("METASEARCH_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("METASEARCH_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("METASEARCH_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}

	if v := os.Getenv("METASEARCH_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("METASEARCH_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

// splitAndTrim splits s by sep and trims whitespace from each part.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable)
	if mode&0o077 > 0o044 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
