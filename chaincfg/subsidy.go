package chaincfg

import (
	"math"

	"github.com/btcsuite/btcutil"
)

// BlockSubsidy calculates the coinbase subsidy for a block at the given
// height. The subsidy starts at InitialBlockReward and halves every
// HalvingInterval blocks. Once the accumulated halvings would shift the
// reward below one satoshi the result is zero, never negative.
// Negative heights return zero; callers validate before converting to BTC.
func (p *Params) BlockSubsidy(height int64) btcutil.Amount {
	if height < 0 {
		return 0
	}

	halvings := height / p.HalvingInterval

	// Force the reward to zero when the right shift is undefined.
	if halvings >= p.MaxHalvings {
		return 0
	}

	return p.InitialBlockReward >> uint(halvings)
}

// NextHalvingHeight returns the next height strictly greater than the given
// height at which the subsidy halves. At an exact halving boundary the next
// halving is one full interval ahead, not the current height.
func (p *Params) NextHalvingHeight(height int64) int64 {
	if height < 0 {
		height = -1
	}
	return (height/p.HalvingInterval + 1) * p.HalvingInterval
}

// SupplyAtHeight calculates the expected cumulative issuance in satoshis
// after the coinbase of the block at the given height, walking whole halving
// epochs rather than individual blocks.
func (p *Params) SupplyAtHeight(height int64) btcutil.Amount {
	if height < 0 {
		return 0
	}

	var supply btcutil.Amount
	var epochStart int64

	for epoch := int64(0); epoch < p.MaxHalvings; epoch++ {
		subsidy := p.BlockSubsidy(epochStart)
		if subsidy == 0 {
			break
		}

		epochEnd := (epoch+1)*p.HalvingInterval - 1
		if epochEnd > height {
			epochEnd = height
		}

		supply += btcutil.Amount(epochEnd-epochStart+1) * subsidy

		if epochEnd == height {
			break
		}
		epochStart = epochEnd + 1
	}

	return supply
}

// HashRateFromDifficulty estimates the network hash rate in hashes per
// second implied by a difficulty, assuming blocks arrive at the target
// cadence: rate = difficulty * 2^32 / seconds_per_block.
func (p *Params) HashRateFromDifficulty(difficulty float64) float64 {
	if difficulty <= 0 {
		return 0
	}
	return difficulty * math.Pow(2, 32) / p.TargetTimePerBlock.Seconds()
}
