package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"metasearch/internal/adapter/engine"
	"metasearch/internal/adapter/gateway"
	"metasearch/internal/adapter/mcpserver"
	"metasearch/internal/adapter/tool"
	"metasearch/internal/domain"
	"metasearch/internal/infra/config"
	"metasearch/internal/infra/logger"
	"metasearch/internal/infra/tracer"
	"metasearch/internal/search"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
		if !strings.HasPrefix(os.Args[1], "-") {
			fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'metasearch --help' for usage information.\n", os.Args[1])
			os.Exit(1)
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`metasearch - Resilient multi-provider web search over MCP

USAGE:
    metasearch [FLAGS]

FLAGS:
    -h, --help         Show this help message
    --config PATH      Config file path (default: ./config.yaml)

CONFIGURATION:
    Config file: ./config.yaml (optional; defaults apply when absent)
    Environment: METASEARCH_* variables override config

TRANSPORTS (server.transport):
    stdio (default)    Serve MCP over stdin/stdout
    http               Serve MCP over streamable HTTP on server.addr

The REST gateway (gateway.enabled) additionally exposes /v1/search,
/v1/search/videos, /v1/search/images, /v1/status, and /healthz.`)
}

func configPath() string {
	// Check --config flag in os.Args.
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("METASEARCH_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

func run() error {
	// 1. Config
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Engine chain
	chain, err := engine.BuildChain(cfg, log)
	if err != nil {
		return fmt.Errorf("engines: %w", err)
	}
	defer chain.Close()

	// 4. Search client
	limiter := search.NewRateLimiter(cfg.Search.RateLimit, cfg.Search.RateWindow)
	tracker := search.NewHealthTracker(cfg.Search.FailCooldown, cfg.Search.RetryCooldown)
	client := search.NewClient(chain.Descriptors, limiter, tracker, log)

	// 5. Tools
	registry := tool.NewRegistry(log)
	tools := []domain.Tool{
		tool.NewSearchTool(client, cfg.Search.DefaultLimit, cfg.Search.MaxLimit, cfg.Search.CacheTTL, log),
		tool.NewVideoSearchTool(client, cfg.Search.VideoDefaultLimit, cfg.Search.MaxLimit, log),
		tool.NewImageSearchTool(client, cfg.Search.ImageDefaultLimit, cfg.Search.MaxLimit, log),
	}
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("tools: %w", err)
		}
	}

	// 6. Graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 7. REST gateway (optional)
	if cfg.Gateway.Enabled {
		gw := gateway.NewServer(client, cfg.Gateway, cfg.Search, log)
		go func() {
			if err := gw.Start(ctx); err != nil {
				log.Error("gateway server error", "error", err)
			}
		}()
	}

	// 8. MCP server (blocks until shutdown)
	srv := mcpserver.New(cfg.Server.Transport, cfg.Server.Addr, registry, log)

	log.Info("metasearch starting",
		"transport", cfg.Server.Transport,
		"engines", len(chain.Descriptors),
		"tools", len(registry.List()),
		"gateway", cfg.Gateway.Enabled,
	)

	return srv.Run(ctx)
}
