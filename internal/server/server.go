package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/payvost/payvost-web-sub011/internal/audit"
	"github.com/payvost/payvost-web-sub011/internal/auth"
	"github.com/payvost/payvost-web-sub011/internal/config"
	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/http/handlers"
	"github.com/payvost/payvost-web-sub011/internal/metrics"
	"github.com/payvost/payvost-web-sub011/internal/middleware"
	"github.com/payvost/payvost-web-sub011/internal/stats"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

// Deps are the long-lived collaborators the routes need.
type Deps struct {
	Store  storage.Store
	FX     *fx.Service
	Logger *slog.Logger
	DBPing handlers.Pinger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner   *http.Server
	limiter *middleware.RateLimiter
	stop    chan struct{}
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler := Routes(cfg, deps, limiter)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, limiter: limiter, stop: make(chan struct{})}
}

// Routes builds the full handler chain. Exposed for tests.
func Routes(cfg config.Config, deps Deps, limiter *middleware.RateLimiter) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authn := middleware.NewAuthenticator(tokens)
	recorder := audit.NewRecorder(deps.Store, deps.Logger)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	handlers.NewHealthHandler(time.Now(), deps.DBPing).Register(mux)
	handlers.NewAuthHandler(deps.Store, tokens, recorder).Register(mux, authn)
	handlers.NewCurrencyHandler(deps.FX, cfg.BaseCurrency).Register(mux, authn)
	handlers.NewActivityHandler(deps.Store).Register(mux, authn)
	handlers.NewRecipientHandler(deps.Store, recorder).Register(mux, authn)
	handlers.NewKYCHandler(deps.Store, recorder).Register(mux, authn)
	handlers.NewAuditHandler(deps.Store).Register(mux, authn)
	handlers.NewStatsHandler(stats.NewService(deps.Store, deps.Store, deps.FX), cfg.BaseCurrency).Register(mux, authn)

	var h http.Handler = mux
	if limiter != nil {
		h = limiter.Handler(h)
	}
	return middleware.CORS(cfg.CORSOrigins, middleware.RealIP(cfg.TrustProxyHeaders, middleware.Logging(deps.Logger, h)))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	go s.sweepLimiter()
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stop)
	return s.inner.Shutdown(ctx)
}

func (s *Server) sweepLimiter() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.limiter.Sweep()
		case <-s.stop:
			return
		}
	}
}
