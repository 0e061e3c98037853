package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SecurityHeaders adds OWASP-recommended security headers to all responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Anti-clickjacking: prevent embedding in iframes
		w.Header().Set("X-Frame-Options", "DENY")

		// Prevent MIME sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")

		// HSTS only applies over TLS
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security",
				"max-age=31536000; includeSubDomains")
		}

		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// RateLimitConfig holds configuration for the per-client rate limiter.
type RateLimitConfig struct {
	PerSecond      float64  // sustained requests per second per client
	Burst          int      // maximum burst of requests allowed
	TrustedProxies []string // proxy IPs whose forwarding headers are honored
}

// RateLimit implements token bucket rate limiting per client IP.
// The context bounds the lifetime of the stale-entry cleanup goroutine.
// Proxy headers are ignored; the TCP peer identifies the client.
func RateLimit(ctx context.Context, perSecond float64, burst int) func(http.Handler) http.Handler {
	return RateLimitWithConfig(ctx, RateLimitConfig{
		PerSecond: perSecond,
		Burst:     burst,
	})
}

// RateLimitWithConfig implements token bucket rate limiting with trusted
// proxy support.
//
// Security model:
//   - Default (no trusted proxies): X-Forwarded-For is IGNORED, the direct
//     connection IP identifies the client
//   - With trusted proxies: X-Forwarded-For is trusted ONLY when the direct
//     peer is one of the configured proxy IPs
//
// Behind a load balancer or ingress, set TrustedProxies to its IPs so that
// clients cannot spoof their address to escape the limit.
func RateLimitWithConfig(ctx context.Context, cfg RateLimitConfig) func(http.Handler) http.Handler {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	clients := make(map[string]*client)
	mu := &sync.Mutex{}

	// Cleanup goroutine: remove stale client entries.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				mu.Lock()
				for ip, c := range clients {
					if time.Since(c.lastSeen) > 3*time.Minute {
						delete(clients, ip)
					}
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r, cfg.TrustedProxies)

			mu.Lock()
			if _, exists := clients[ip]; !exists {
				clients[ip] = &client{
					limiter: rate.NewLimiter(rate.Limit(cfg.PerSecond), cfg.Burst),
				}
			}
			clients[ip].lastSeen = time.Now()
			limiter := clients[ip].limiter
			mu.Unlock()

			if !limiter.Allow() {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request. X-Forwarded-For and
// X-Real-IP are honored only when the direct connection comes from a trusted
// proxy; otherwise the TCP peer address is used.
func getClientIP(r *http.Request, trustedProxies []string) string {
	directIP := r.RemoteAddr
	if idx := strings.LastIndex(directIP, ":"); idx > 0 {
		directIP = directIP[:idx]
	}

	if len(trustedProxies) == 0 {
		return directIP
	}

	isTrustedProxy := false
	for _, trustedIP := range trustedProxies {
		if directIP == trustedIP {
			isTrustedProxy = true
			break
		}
	}
	if !isTrustedProxy {
		return directIP
	}

	// X-Forwarded-For may carry a proxy chain; the first entry is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return directIP
}
