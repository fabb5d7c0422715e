package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"satwatch/chaincfg"
	"satwatch/projection"
	"satwatch/socks"
)

// DefaultMempoolSpaceURL is the production mempool.space API base.
const DefaultMempoolSpaceURL = "https://mempool.space"

// mempoolHashRate mirrors the mempool.space mining hashrate payload.
type mempoolHashRate struct {
	CurrentHashrate   float64 `json:"currentHashrate"`
	CurrentDifficulty float64 `json:"currentDifficulty"`
}

// MempoolSpaceSource fetches chain stats from mempool.space. The provider
// reports no cumulative issuance, so the expected supply is derived from the
// tip height via the halving schedule.
type MempoolSpaceSource struct {
	baseURL string
	params  *chaincfg.Params
	client  *http.Client
}

// NewMempoolSpaceSource creates a mempool.space source.
func NewMempoolSpaceSource(baseURL string, params *chaincfg.Params, timeout time.Duration, proxyClient *socks.Client) *MempoolSpaceSource {
	if baseURL == "" {
		baseURL = DefaultMempoolSpaceURL
	}
	return &MempoolSpaceSource{
		baseURL: baseURL,
		params:  params,
		client:  newHTTPClient(timeout, proxyClient),
	}
}

// Name returns the provider name.
func (s *MempoolSpaceSource) Name() string {
	return "mempool.space"
}

// FetchStats fetches the tip height and current hashrate/difficulty.
func (s *MempoolSpaceSource) FetchStats(ctx context.Context) (*projection.RawChainStats, error) {
	height, err := s.fetchTipHeight(ctx)
	if err != nil {
		return nil, err
	}

	hashRate, err := s.fetchHashRate(ctx)
	if err != nil {
		return nil, err
	}

	// Some mempool instances omit the hashrate sample; estimate it from
	// difficulty at the target block cadence.
	if hashRate.CurrentHashrate == 0 {
		hashRate.CurrentHashrate = s.params.HashRateFromDifficulty(hashRate.CurrentDifficulty)
	}

	return &projection.RawChainStats{
		TotalSatoshisMined: s.params.SupplyAtHeight(height),
		CurrentBlockHeight: height,
		NetworkDifficulty:  hashRate.CurrentDifficulty,
		NetworkHashRate:    hashRate.CurrentHashrate,
		// mempool.space reports no 24h block count; leave it unset so the
		// calculator assumes the target cadence.
	}, nil
}

// fetchTipHeight reads the plain-text tip height endpoint.
func (s *MempoolSpaceSource) fetchTipHeight(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/blocks/tip/height", nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("mempool.space tip height request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("mempool.space returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32))
	if err != nil {
		return 0, err
	}

	height, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tip height %q: %v", string(body), err)
	}

	return height, nil
}

// fetchHashRate reads the 3-day mining hashrate endpoint.
func (s *MempoolSpaceSource) fetchHashRate(ctx context.Context) (*mempoolHashRate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/v1/mining/hashrate/3d", nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mempool.space hashrate request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mempool.space returned status %d", resp.StatusCode)
	}

	var hr mempoolHashRate
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return nil, fmt.Errorf("failed to decode mempool.space hashrate: %v", err)
	}

	return &hr, nil
}
