package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (labels are fixed enums, never names)
var (
	// Simulation
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecoroam_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})

	monstersAlive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecoroam_monsters_alive",
		Help: "Monsters in the current run",
	})

	projectilesLive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ecoroam_projectiles_live",
		Help: "Projectiles in flight",
	}, []string{"owner"}) // "monster", "player"

	gameOvers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecoroam_game_over_total",
		Help: "Finished runs by reason",
	}, []string{"reason"})

	// Question generation
	questionFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecoroam_question_fetch_total",
		Help: "Question generation attempts",
	}, []string{"category", "outcome"}) // outcome: "ok", "error"

	questionQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ecoroam_question_queue_depth",
		Help: "Prefetched questions waiting per category",
	}, []string{"category"})

	// Leaderboard
	leaderboardSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecoroam_leaderboard_submissions_total",
		Help: "Leaderboard submissions",
	}, []string{"outcome"}) // "ok", "error"

	// Event log
	eventLogTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecoroam_event_log_total",
		Help: "Events accepted by the event log",
	})

	eventLogDropped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecoroam_event_log_dropped",
		Help: "Events dropped due to rate limiting or buffer overflow",
	})

	// DoS detection
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	// HTTP
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	// WebSocket
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "WebSocket messages sent",
	}, []string{"codec"})
)

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // MUST be "127.0.0.1:6060" in production
	BasicAuthUser string // Optional basic auth
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// DebugHandler serves pprof, /metrics and /health, optionally behind basic auth
func DebugHandler(cfg ObservabilityConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.BasicAuthUser != "" {
		return basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return mux
}

// StartDebugServer starts the internal observability server.
// It binds to localhost unless ALLOW_DEBUG_EXTERNAL=true.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("⚠️ Debug server forced to localhost for security")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	handler := DebugHandler(cfg)

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTick records tick timing
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// UpdateWorld records entity counts from a snapshot
func UpdateWorld(monsters, monsterShots, playerShots int) {
	monstersAlive.Set(float64(monsters))
	projectilesLive.WithLabelValues("monster").Set(float64(monsterShots))
	projectilesLive.WithLabelValues("player").Set(float64(playerShots))
}

// RecordGameOver counts a finished run. reason is a game-over reason name.
func RecordGameOver(reason string) {
	gameOvers.WithLabelValues(reason).Inc()
}

// RecordQuestionFetch counts one generation attempt
func RecordQuestionFetch(category string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	questionFetches.WithLabelValues(category, outcome).Inc()
}

// UpdateQuestionQueue records the prefetched depth for a category
func UpdateQuestionQueue(category string, depth int) {
	questionQueueDepth.WithLabelValues(category).Set(float64(depth))
}

// RecordSubmission counts one leaderboard submission
func RecordSubmission(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	leaderboardSubmissions.WithLabelValues(outcome).Inc()
}

// UpdateEventLogStats mirrors the event log counters
func UpdateEventLogStats(total, dropped uint64) {
	eventLogTotal.Set(float64(total))
	eventLogDropped.Set(float64(dropped))
}

// RecordConnectionRejected increments the rejection counter
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments the sent counter for a codec
func IncrementWSMessages(codec string) {
	wsMessagesTotal.WithLabelValues(codec).Inc()
}
