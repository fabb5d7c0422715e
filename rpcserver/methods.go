package rpcserver

import (
	"encoding/json"
	"net/http"

	"satwatch/database"
	"satwatch/metrics"
)

// Response cache keys, one per endpoint.
const (
	keyProjection = "projection"
	keyStats      = "stats"
	keyHalving    = "halving"
	keyPrice      = "price"
)

func (s *Server) projectionHandler(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, keyProjection, func(snap *database.Snapshot, stale bool) interface{} {
		return newProjectionInfo(snap, stale)
	})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, keyStats, func(snap *database.Snapshot, stale bool) interface{} {
		return newStatsInfo(snap, stale)
	})
}

func (s *Server) halvingHandler(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, keyHalving, func(snap *database.Snapshot, stale bool) interface{} {
		return newHalvingInfo(snap)
	})
}

func (s *Server) priceHandler(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, keyPrice, func(snap *database.Snapshot, stale bool) interface{} {
		if snap.Price == nil {
			return nil
		}
		return &PriceInfo{PriceQuote: *snap.Price, Stale: stale}
	})
}

// serveCached renders an endpoint from the TTL cache when possible, falling
// back to the collector's current snapshot. A nil render result means the
// data is not available yet.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, key string, render func(*database.Snapshot, bool) interface{}) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.cache != nil {
		if payload, ok := s.cache.Get(key); ok {
			metrics.CacheHits.Inc()
			writeJSON(w, payload)
			return
		}
	}

	snap, stale := s.collector.Current()
	if snap == nil {
		http.Error(w, "Chain stats not available yet", http.StatusServiceUnavailable)
		return
	}
	if stale {
		metrics.ServedStale.Inc()
	}

	body := render(snap, stale)
	if body == nil {
		http.Error(w, "Not available", http.StatusServiceUnavailable)
		return
	}

	payload, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	// Stale responses are not cached so a recovering upstream becomes
	// visible on the next request.
	if s.cache != nil && !stale {
		s.cache.Set(key, payload)
	}

	writeJSON(w, payload)
}

func writeJSON(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
