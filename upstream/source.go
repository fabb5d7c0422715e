// Package upstream fetches raw blockchain counters from public APIs and
// normalizes them into the units the calculator expects. Field names and
// units vary by provider (satoshis vs BTC, GH/s vs H/s); each source adapter
// owns its own normalization.
package upstream

import (
	"context"
	"net/http"
	"time"

	"satwatch/projection"
	"satwatch/socks"
)

// Source supplies normalized chain stats from one upstream provider.
type Source interface {
	Name() string
	FetchStats(ctx context.Context) (*projection.RawChainStats, error)
}

// PriceQuote holds a spot price observation for display alongside the
// projection. Purely informational, never feeds the supply math.
type PriceQuote struct {
	PriceUSD     float64   `json:"price_usd"`
	MarketCapUSD float64   `json:"market_cap_usd"`
	Volume24hUSD float64   `json:"volume_24h_usd"`
	Source       string    `json:"source"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// PriceSource supplies price quotes from one upstream provider.
type PriceSource interface {
	Name() string
	FetchPrice(ctx context.Context) (*PriceQuote, error)
}

// newHTTPClient builds an HTTP client with the shared timeout, dialing
// through the SOCKS proxy when one is configured.
func newHTTPClient(timeout time.Duration, proxyClient *socks.Client) *http.Client {
	client := &http.Client{Timeout: timeout}
	if proxyClient != nil {
		client.Transport = &http.Transport{
			DialContext:       proxyClient.DialContext,
			ForceAttemptHTTP2: true,
		}
	}
	return client
}
