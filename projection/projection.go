// Package projection derives supply, halving and exhaustion projections from
// raw blockchain counters. Everything in this package is pure arithmetic:
// no I/O, no ambient clock, no mutable state. The reference time is an
// explicit input so identical inputs always produce identical outputs.
package projection

import (
	"errors"
	"time"

	"github.com/btcsuite/btcutil"
)

// ErrInvalidInput reports raw stats that are out of range (negative height
// or satoshi count). The calculator never coerces bad input; callers decide
// whether to fall back to cached data.
var ErrInvalidInput = errors.New("invalid chain stats")

// ErrSupplyExceedsMax reports raw stats claiming more satoshis mined than
// the protocol can ever issue. It signals corrupt upstream data, not a
// calculator bug, and is never silently clamped.
var ErrSupplyExceedsMax = errors.New("mined supply exceeds maximum")

// RawChainStats holds externally sourced blockchain counters, normalized by
// the upstream adapters before reaching the calculator. Immutable per call.
type RawChainStats struct {
	// TotalSatoshisMined is the cumulative issuance reported upstream.
	TotalSatoshisMined btcutil.Amount `json:"total_satoshis_mined"`

	// CurrentBlockHeight is the chain tip height.
	CurrentBlockHeight int64 `json:"current_block_height"`

	// NetworkDifficulty and NetworkHashRate are opaque pass-through values
	// (hash rate in hashes per second). The projection math never reads
	// them.
	NetworkDifficulty float64 `json:"network_difficulty"`
	NetworkHashRate   float64 `json:"network_hash_rate"`

	// ObservedBlocks24h is the block count over the last 24 hours. Zero
	// means unknown, in which case the protocol target rate is assumed.
	ObservedBlocks24h int64 `json:"observed_blocks_24h,omitempty"`
}

// HalvingProjection describes the next subsidy halving.
type HalvingProjection struct {
	BlockHeight            int64
	BlocksRemaining        int64
	EstimatedDaysRemaining float64
	EstimatedDate          time.Time
	RewardBefore           btcutil.Amount
	RewardAfter            btcutil.Amount
}

// MiningProjection is the derived output. Supplies are integer satoshis so
// CirculatingSupply + RemainingSupply always equals the total supply exactly,
// with no rounding loss before presentation.
type MiningProjection struct {
	CirculatingSupply btcutil.Amount
	RemainingSupply   btcutil.Amount
	PercentMined      float64

	BlockReward     btcutil.Amount
	DailyMiningRate btcutil.Amount

	// EstimatedDaysToExhaustion is +Inf when the projected rate is zero.
	// EstimatedExhaustionDate is nil in that case, and also when the day
	// count is finite but beyond any representable calendar horizon;
	// callers must not format a nil date.
	EstimatedDaysToExhaustion float64
	EstimatedExhaustionDate   *time.Time

	NextHalving HalvingProjection
}
