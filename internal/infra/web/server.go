package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"food-rescue-rewards/internal/config"
	redisinfra "food-rescue-rewards/internal/infra/redis"
	"food-rescue-rewards/internal/usecase"
)

// Server is the public HTTP surface of the verification service.
type Server struct {
	verifyUC usecase.VerificationUseCase
	auth     *AuthManager
	limiter  *redisinfra.RateLimiter
	cfg      config.ServerConfig
	scanCfg  config.ScanConfig
	wallet   string // nonprofit wallet echoed in public stats
	log      *zerolog.Logger

	httpSrv *http.Server
}

func NewServer(
	verifyUC usecase.VerificationUseCase,
	limiter *redisinfra.RateLimiter,
	cfg config.ServerConfig,
	scanCfg config.ScanConfig,
	nonprofitWallet string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		verifyUC: verifyUC,
		auth:     NewAuthManager(cfg.JWTSecret),
		limiter:  limiter,
		cfg:      cfg,
		scanCfg:  scanCfg,
		wallet:   nonprofitWallet,
		log:      logger,
	}
}

// Router builds the chi route tree. Exposed separately so tests can
// drive it through httptest without binding a socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(TraceID())
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	// Scan endpoints block on chain confirmation; cap the wait.
	r.Use(chimw.Timeout(s.cfg.RequestTimeout))

	r.Route("/api/v1/scan", func(r chi.Router) {
		r.Post("/verify", verifyHandler(s.verifyUC, s.auth, s.log))
		r.Group(func(r chi.Router) {
			r.Use(RateLimit(s.limiter, s.scanCfg.RatePerMinute, s.log))
			r.Post("/anonymous", anonymousHandler(s.verifyUC, s.log))
		})
		r.With(s.apiKeyGuard).Get("/anonymous/trace/{pseudonymousId}", traceHandler(s.verifyUC, s.log))
		r.Get("/anonymous/stats", statsHandler(s.verifyUC, s.wallet, s.log))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// apiKeyGuard protects operator endpoints with a static bearer key.
func (s *Server) apiKeyGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIKey == "" {
			s.log.Error().Msg("operator API key is not configured")
			writeError(w, http.StatusForbidden, "forbidden", "endpoint disabled")
			return
		}
		if r.Header.Get("X-API-Key") != s.cfg.APIKey {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server until ctx is cancelled, then drains.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Int("port", s.cfg.Port).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}
