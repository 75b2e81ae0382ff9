package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ecoroam/internal/audio"
	"ecoroam/internal/leaderboard"
	"ecoroam/internal/questions"
)

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Board: leaderboard.NewBoard(leaderboard.NewMemoryStore(), 0),
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000,
//	        Burst:             1000,
//	    },
//	}
//	ts := httptest.NewServer(api.NewRouter(cfg))
type RouterConfig struct {
	// Board backs /api/leaderboard (required)
	Board *leaderboard.Board

	// Questions, if set, serves /api/flows/trivia and /api/flows/cause-effect
	Questions questions.Source

	// Music, if set, serves /api/music
	Music *audio.Music

	// RateLimiter is an optional pre-configured limiter.
	// If nil, one is created from RateLimitConfig (or DefaultRateLimitConfig).
	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	// Origins checks CORS and WebSocket origins. Nil allows DefaultOrigins.
	Origins *OriginChecker

	// DisableLogging disables the request logger middleware (useful for benchmarks)
	DisableLogging bool
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// NewRouter is pure: no goroutines, listeners or background workers are
// started, so it is safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - order matters
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting before CORS to reject early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	origins := cfg.Origins
	if origins == nil {
		origins = NewOriginChecker(nil)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins.Patterns(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	h := &routerHandlers{
		questions: cfg.Questions,
		music:     cfg.Music,
	}

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/leaderboard", leaderboard.Routes(cfg.Board))

		r.Get("/sfx", handleListCues)
		r.Get("/sfx/{cue}", handleCue)
		r.Get("/music", h.handleMusic)

		if cfg.Questions != nil {
			r.Post("/flows/trivia", h.handleTriviaFlow)
			r.Post("/flows/cause-effect", h.handleCauseEffectFlow)
		}
	})

	return r
}

// metricsMiddleware records latency per route pattern, never the raw path
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}
