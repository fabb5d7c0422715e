package rpcserver

import (
	"time"

	"satwatch/database"
	"satwatch/upstream"
)

// HalvingInfo is the JSON view of the next-halving projection.
type HalvingInfo struct {
	BlockHeight            int64     `json:"block_height"`
	BlocksRemaining        int64     `json:"blocks_remaining"`
	EstimatedDaysRemaining float64   `json:"estimated_days_remaining"`
	EstimatedDate          time.Time `json:"estimated_date"`
	RewardBeforeBTC        float64   `json:"reward_before_btc"`
	RewardAfterBTC         float64   `json:"reward_after_btc"`
}

// ProjectionInfo is the JSON view of a mining projection. Supplies are
// converted from satoshis to BTC here, at the presentation boundary. The
// exhaustion fields are omitted when no date can be projected (zero rate or
// a horizon beyond calendar arithmetic) so clients never receive a formatted
// infinite date.
type ProjectionInfo struct {
	CirculatingSupplyBTC float64 `json:"circulating_supply_btc"`
	RemainingSupplyBTC   float64 `json:"remaining_supply_btc"`
	PercentMined         float64 `json:"percent_mined"`
	BlockRewardBTC       float64 `json:"block_reward_btc"`
	DailyMiningRateBTC   float64 `json:"daily_mining_rate_btc"`

	EstimatedDaysToExhaustion *float64   `json:"estimated_days_to_exhaustion,omitempty"`
	EstimatedExhaustionDate   *time.Time `json:"estimated_exhaustion_date,omitempty"`

	NextHalving HalvingInfo `json:"next_halving"`

	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Stale     bool      `json:"stale"`
}

// StatsInfo is the JSON view of the raw upstream counters.
type StatsInfo struct {
	TotalSatoshisMined int64   `json:"total_satoshis_mined"`
	CurrentBlockHeight int64   `json:"current_block_height"`
	NetworkDifficulty  float64 `json:"network_difficulty"`
	NetworkHashRate    float64 `json:"network_hash_rate"`
	ObservedBlocks24h  int64   `json:"observed_blocks_24h,omitempty"`

	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Stale     bool      `json:"stale"`
}

// PriceInfo is the JSON view of the latest price quote.
type PriceInfo struct {
	upstream.PriceQuote
	Stale bool `json:"stale"`
}

// newProjectionInfo builds the JSON view from a snapshot.
func newProjectionInfo(snap *database.Snapshot, stale bool) *ProjectionInfo {
	p := snap.Projection

	info := &ProjectionInfo{
		CirculatingSupplyBTC: p.CirculatingSupply.ToBTC(),
		RemainingSupplyBTC:   p.RemainingSupply.ToBTC(),
		PercentMined:         p.PercentMined,
		BlockRewardBTC:       p.BlockReward.ToBTC(),
		DailyMiningRateBTC:   p.DailyMiningRate.ToBTC(),
		NextHalving:          newHalvingInfo(snap),
		Source:               snap.Source,
		FetchedAt:            snap.FetchedAt,
		Stale:                stale,
	}

	if p.EstimatedExhaustionDate != nil {
		days := p.EstimatedDaysToExhaustion
		info.EstimatedDaysToExhaustion = &days
		info.EstimatedExhaustionDate = p.EstimatedExhaustionDate
	}

	return info
}

func newHalvingInfo(snap *database.Snapshot) HalvingInfo {
	h := snap.Projection.NextHalving
	return HalvingInfo{
		BlockHeight:            h.BlockHeight,
		BlocksRemaining:        h.BlocksRemaining,
		EstimatedDaysRemaining: h.EstimatedDaysRemaining,
		EstimatedDate:          h.EstimatedDate,
		RewardBeforeBTC:        h.RewardBefore.ToBTC(),
		RewardAfterBTC:         h.RewardAfter.ToBTC(),
	}
}

func newStatsInfo(snap *database.Snapshot, stale bool) *StatsInfo {
	return &StatsInfo{
		TotalSatoshisMined: int64(snap.Stats.TotalSatoshisMined),
		CurrentBlockHeight: snap.Stats.CurrentBlockHeight,
		NetworkDifficulty:  snap.Stats.NetworkDifficulty,
		NetworkHashRate:    snap.Stats.NetworkHashRate,
		ObservedBlocks24h:  snap.Stats.ObservedBlocks24h,
		Source:             snap.Source,
		FetchedAt:          snap.FetchedAt,
		Stale:              stale,
	}
}
