// Package router wires up the service routes and applies the middleware
// chain (RequestID → Metrics → Timeout → CORS → RateLimit).
package router

import (
	"net/http"
	"time"

	"github.com/auroralabs/aurora-search/internal/analytics"
	"github.com/auroralabs/aurora-search/internal/ratelimit"
	"github.com/auroralabs/aurora-search/internal/server/handler"
	srvmw "github.com/auroralabs/aurora-search/internal/server/middleware"
	"github.com/auroralabs/aurora-search/pkg/health"
	"github.com/auroralabs/aurora-search/pkg/metrics"
	pkgmw "github.com/auroralabs/aurora-search/pkg/middleware"
)

// Options carries the optional pieces of the chain. Nil fields disable the
// matching middleware or route.
type Options struct {
	Metrics        *metrics.Metrics
	Limiter        *ratelimit.Limiter
	Analytics      *analytics.Handler
	CORS           *srvmw.CORSConfig
	RequestTimeout time.Duration
}

// New builds the full HTTP handler with all routes and middleware.
//
// Route table:
//
//	GET    /                           → service info
//	GET    /api/v1/search              → search
//	POST   /api/v1/reload              → refetch corpus, rebuild index
//	GET    /api/v1/analytics           → search usage statistics
//	GET    /api/v1/cache/stats         → cache hit/miss counters
//	POST   /api/v1/cache/invalidate    → drop all cached results
//	GET    /health/live                → liveness probe
//	GET    /health/ready               → readiness probe
func New(h *handler.Handler, checker *health.Checker, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Root)

	// Search API
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/reload", h.Reload)

	// Analytics API
	if opts.Analytics != nil {
		mux.HandleFunc("GET /api/v1/analytics", opts.Analytics.Stats)
	}

	// Cache API
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)

	// Health probes (never rate limited, see RateLimit middleware)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	// Middleware chain, applied inside-out:
	// request → RequestID → Metrics → Timeout → CORS → RateLimit → mux
	var chain http.Handler = mux
	if opts.Limiter != nil {
		chain = srvmw.RateLimit(opts.Limiter)(chain)
	}
	corsCfg := srvmw.DefaultCORSConfig()
	if opts.CORS != nil {
		corsCfg = *opts.CORS
	}
	chain = srvmw.CORS(corsCfg)(chain)
	if opts.RequestTimeout > 0 {
		chain = pkgmw.Timeout(opts.RequestTimeout)(chain)
	}
	if opts.Metrics != nil {
		chain = pkgmw.Metrics(opts.Metrics)(chain)
	}
	chain = pkgmw.RequestID(chain)

	return chain
}
