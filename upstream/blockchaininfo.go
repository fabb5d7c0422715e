package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/btcsuite/btcutil"
	"satwatch/projection"
	"satwatch/socks"
)

// DefaultBlockchainInfoURL is the production blockchain.info API base.
const DefaultBlockchainInfoURL = "https://api.blockchain.info"

// blockchainInfoStats mirrors the fields of the blockchain.info /stats
// payload this service consumes. totalbc is reported in satoshis and
// hash_rate in GH/s.
type blockchainInfoStats struct {
	TotalBC      int64   `json:"totalbc"`
	NBlocksTotal int64   `json:"n_blocks_total"`
	NBlocksMined int64   `json:"n_blocks_mined"`
	Difficulty   float64 `json:"difficulty"`
	HashRate     float64 `json:"hash_rate"`
}

// BlockchainInfoSource fetches chain stats from the blockchain.info stats
// endpoint, which reports everything the calculator needs in one call.
type BlockchainInfoSource struct {
	baseURL string
	client  *http.Client
}

// NewBlockchainInfoSource creates a blockchain.info source.
func NewBlockchainInfoSource(baseURL string, timeout time.Duration, proxyClient *socks.Client) *BlockchainInfoSource {
	if baseURL == "" {
		baseURL = DefaultBlockchainInfoURL
	}
	return &BlockchainInfoSource{
		baseURL: baseURL,
		client:  newHTTPClient(timeout, proxyClient),
	}
}

// Name returns the provider name.
func (s *BlockchainInfoSource) Name() string {
	return "blockchain.info"
}

// FetchStats fetches and normalizes the /stats payload.
func (s *BlockchainInfoSource) FetchStats(ctx context.Context) (*projection.RawChainStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/stats", nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blockchain.info request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blockchain.info returned status %d", resp.StatusCode)
	}

	var stats blockchainInfoStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode blockchain.info stats: %v", err)
	}

	return &projection.RawChainStats{
		TotalSatoshisMined: btcutil.Amount(stats.TotalBC),
		CurrentBlockHeight: stats.NBlocksTotal,
		NetworkDifficulty:  stats.Difficulty,
		NetworkHashRate:    stats.HashRate * 1e9, // GH/s to H/s
		ObservedBlocks24h:  stats.NBlocksMined,
	}, nil
}
