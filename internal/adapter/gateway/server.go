package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"metasearch/internal/domain"
	"metasearch/internal/infra/config"
	"metasearch/internal/infra/middleware"
)

// SearchClient is the slice of the search layer the gateway consumes:
// the three resolve flows plus the health and limiter snapshots for /v1/status.
type SearchClient interface {
	Resolve(ctx context.Context, query string, limit int) (*domain.Resolution, error)
	ResolveVideos(ctx context.Context, query string, limit int) (*domain.Resolution, error)
	ResolveImages(ctx context.Context, query string, limit int) (*domain.Resolution, error)
	EngineNames() []string
	FailingEngines() []string
	RetryableEngines() []string
	RateRemaining() int
}

// Server is the REST gateway that exposes the search flows over HTTP.
type Server struct {
	client    SearchClient
	cfg       config.GatewayConfig
	search    config.SearchConfig
	logger    *slog.Logger
	httpSrv   *http.Server
	boundAddr string
	startTime time.Time
}

// NewServer creates a gateway server.
func NewServer(client SearchClient, cfg config.GatewayConfig, search config.SearchConfig, logger *slog.Logger) *Server {
	return &Server{
		client:    client,
		cfg:       cfg,
		search:    search,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Start begins accepting HTTP requests. Blocks until context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/v1/search", s.requireAuth(s.handleSearch))
	mux.HandleFunc("/v1/search/videos", s.requireAuth(s.handleVideos))
	mux.HandleFunc("/v1/search/images", s.requireAuth(s.handleImages))
	mux.HandleFunc("/v1/status", s.requireAuth(s.handleStatus))

	handler := middleware.SecurityHeaders(
		middleware.RateLimitWithConfig(ctx, middleware.RateLimitConfig{
			PerSecond:      s.cfg.RatePerIP,
			Burst:          s.cfg.Burst,
			TrustedProxies: s.cfg.TrustedProxies,
		})(mux),
	)

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}
	s.boundAddr = listener.Addr().String()

	s.httpSrv = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	s.logger.Info("gateway started", "addr", s.boundAddr)

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway serve: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the gateway server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// BoundAddr returns the actual address the server bound to. Only valid after Start.
func (s *Server) BoundAddr() string { return s.boundAddr }

// searchResponse is the JSON body returned by the /v1/search endpoints.
type searchResponse struct {
	Query     string                `json:"query"`
	Engine    string                `json:"engine,omitempty"`
	Attempted []string              `json:"attempted"`
	Exhausted bool                  `json:"exhausted"`
	Results   []domain.SearchResult `json:"results"`
}

type resolveFunc func(ctx context.Context, query string, limit int) (*domain.Resolution, error)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.resolve(w, r, s.client.Resolve, s.search.DefaultLimit)
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	s.resolve(w, r, s.client.ResolveVideos, s.search.VideoDefaultLimit)
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	s.resolve(w, r, s.client.ResolveImages, s.search.ImageDefaultLimit)
}

// resolve parses the shared q/limit parameters, runs the given flow, and
// writes the resolution as JSON. Caller input errors map to 400, everything
// else to 500. Exhaustion is a normal 200 carrying the placeholder payload.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request, fn resolveFunc, defaultLimit int) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "query parameter q is required", http.StatusBadRequest)
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	if limit > s.search.MaxLimit {
		limit = s.search.MaxLimit
	}

	queryID := newQueryID(time.Now())
	s.logger.Info("gateway search",
		"query_id", queryID, "path", r.URL.Path, "query", query, "limit", limit)

	res, err := fn(r.Context(), query, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("gateway search failed",
			"query_id", queryID, "error", err, "code", domain.ErrorCodeOf(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	results := res.Results
	if results == nil {
		results = []domain.SearchResult{}
	}

	s.logger.Debug("gateway search completed",
		"query_id", queryID, "engine", res.Engine,
		"results", len(results), "exhausted", res.Exhausted)

	writeJSON(w, searchResponse{
		Query:     query,
		Engine:    res.Engine,
		Attempted: res.Attempted,
		Exhausted: res.Exhausted,
		Results:   results,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// newQueryID generates a ULID used to correlate the log lines of one request.
func newQueryID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
