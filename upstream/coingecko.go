package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"satwatch/socks"
)

// DefaultCoinGeckoURL is the production CoinGecko API base.
const DefaultCoinGeckoURL = "https://api.coingecko.com"

// coinGeckoCoin mirrors the slice of the CoinGecko coin payload this service
// consumes.
type coinGeckoCoin struct {
	MarketData struct {
		CurrentPrice struct {
			USD float64 `json:"usd"`
		} `json:"current_price"`
		MarketCap struct {
			USD float64 `json:"usd"`
		} `json:"market_cap"`
		TotalVolume struct {
			USD float64 `json:"usd"`
		} `json:"total_volume"`
	} `json:"market_data"`
}

// CoinGeckoSource fetches spot price data for display alongside the
// projection.
type CoinGeckoSource struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoSource creates a CoinGecko price source.
func NewCoinGeckoSource(baseURL string, timeout time.Duration, proxyClient *socks.Client) *CoinGeckoSource {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	return &CoinGeckoSource{
		baseURL: baseURL,
		client:  newHTTPClient(timeout, proxyClient),
	}
}

// Name returns the provider name.
func (s *CoinGeckoSource) Name() string {
	return "coingecko"
}

// FetchPrice fetches the bitcoin market data.
func (s *CoinGeckoSource) FetchPrice(ctx context.Context) (*PriceQuote, error) {
	url := s.baseURL + "/api/v3/coins/bitcoin?localization=false&tickers=false&community_data=false&developer_data=false"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var coin coinGeckoCoin
	if err := json.NewDecoder(resp.Body).Decode(&coin); err != nil {
		return nil, fmt.Errorf("failed to decode coingecko payload: %v", err)
	}

	return &PriceQuote{
		PriceUSD:     coin.MarketData.CurrentPrice.USD,
		MarketCapUSD: coin.MarketData.MarketCap.USD,
		Volume24hUSD: coin.MarketData.TotalVolume.USD,
		Source:       s.Name(),
		FetchedAt:    time.Now().UTC(),
	}, nil
}
