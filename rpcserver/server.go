package rpcserver

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"satwatch/cache"
	"satwatch/collector"
)

// Server exposes the projection as a small read-only JSON API: GET only, no
// request bodies, no parameters.
type Server struct {
	collector *collector.Collector
	cache     *cache.Cache
	addr      string
	server    *http.Server

	// Rate limiting
	mu            sync.Mutex
	requestCounts map[string]int
	rateLimitMax  int
	resetStop     chan struct{}
}

// NewServer creates an API server. cache may be nil to disable response
// caching.
func NewServer(coll *collector.Collector, respCache *cache.Cache, addr string, rateLimitMax int) *Server {
	if rateLimitMax <= 0 {
		rateLimitMax = 100
	}
	return &Server{
		collector:     coll,
		cache:         respCache,
		addr:          addr,
		requestCounts: make(map[string]int),
		rateLimitMax:  rateLimitMax,
		resetStop:     make(chan struct{}),
	}
}

// Start starts the API server. Blocks until the listener fails or Stop is
// called.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/projection", s.projectionHandler)
	mux.HandleFunc("/api/stats", s.statsHandler)
	mux.HandleFunc("/api/halving", s.halvingHandler)
	mux.HandleFunc("/api/price", s.priceHandler)

	// Health check
	mux.HandleFunc("/health", s.healthHandler)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    s.addr,
		Handler: s.enableCORS(s.limitRate(mux)),
	}

	s.server = server

	go s.resetRateLimits()

	fmt.Printf("API server listening on %s\n", s.addr)
	return server.ListenAndServe()
}

// Stop stops the API server.
func (s *Server) Stop() error {
	close(s.resetStop)
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// healthHandler handles health check requests.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	timestamp := time.Now().Format(time.RFC3339)
	w.Write([]byte(fmt.Sprintf(`{"status":"ok","timestamp":"%s"}`, timestamp)))
}

// enableCORS adds CORS headers to allow browser dashboards.
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// limitRate rejects clients exceeding the per-IP request ceiling per minute.
func (s *Server) limitRate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.RemoteAddr

		s.mu.Lock()
		s.requestCounts[clientIP]++
		over := s.requestCounts[clientIP] > s.rateLimitMax
		s.mu.Unlock()

		if over {
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// resetRateLimits clears per-IP counters once a minute.
func (s *Server) resetRateLimits() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.resetStop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.requestCounts = make(map[string]int)
			s.mu.Unlock()
		}
	}
}
