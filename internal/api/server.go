package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ecoroam/internal/audio"
	"ecoroam/internal/leaderboard"
	"ecoroam/internal/questions"
)

// ServerConfig holds the Server dependencies
type ServerConfig struct {
	Board       *leaderboard.Board // required
	Questions   questions.Source   // optional question flows
	Music       *audio.Music       // optional
	CORSOrigins []string           // extra allowed origins
	RateLimit   *RateLimitConfig   // nil uses DefaultRateLimitConfig
}

// Server is the HTTP API server with the live leaderboard feed.
type Server struct {
	board       *leaderboard.Board
	router      *chi.Mux
	feed        *FeedHub
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// NewServer builds the server. Background workers do NOT start until
// Start() is called, so tests can use Router() directly.
//
// The server takes over board.OnSubmit to publish accepted submissions.
func NewServer(cfg ServerConfig) *Server {
	rl := DefaultRateLimitConfig
	if cfg.RateLimit != nil {
		rl = *cfg.RateLimit
	}
	origins := NewOriginChecker(cfg.CORSOrigins)

	s := &Server{
		board:       cfg.Board,
		feed:        NewFeedHub(origins),
		rateLimiter: NewIPRateLimiter(rl),
	}

	s.router = NewRouter(RouterConfig{
		Board:       cfg.Board,
		Questions:   cfg.Questions,
		Music:       cfg.Music,
		RateLimiter: s.rateLimiter,
		Origins:     origins,
	})
	s.router.Get("/ws", s.feed.HandleWebSocket)

	s.feed.Welcome = s.leaderboardSnapshot
	cfg.Board.OnSubmit = s.onSubmit

	return s
}

func (s *Server) leaderboardSnapshot() (FeedMessage, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	entries, err := s.board.List(ctx)
	if err != nil {
		log.Printf("⚠️ Feed snapshot unavailable: %v", err)
		return FeedMessage{}, false
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	return FeedMessage{Event: EventLeaderboardSnapshot, Data: entries}, true
}

func (s *Server) onSubmit(entries []leaderboard.Entry, err error) {
	RecordSubmission(err)
	if err != nil {
		return
	}
	s.feed.Broadcast(EventLeaderboardUpdate, entries)
}

// Feed exposes the hub (for tests and metrics)
func (s *Server) Feed() *FeedHub {
	return s.feed
}

// Start launches background workers and serves on addr until Stop.
// Returns nil after a graceful shutdown.
func (s *Server) Start(addr string) error {
	go s.feed.Run()
	s.rateLimiter.StartCleanup()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("🏆 Leaderboard: http://localhost%s/api/leaderboard", addr)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Router returns the HTTP handler for use with httptest.
//
//	server := api.NewServer(cfg)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop drains in-flight requests and stops background workers
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.feed.Stop()
	s.rateLimiter.Stop()
	log.Println("🛑 API server stopped")
	return err
}
