package projection

import (
	"fmt"
	"math"
	"time"

	"github.com/btcsuite/btcutil"
	"satwatch/chaincfg"
)

// maxHorizonDays bounds exhaustion date projection to ten thousand years.
const maxHorizonDays = 10_000 * 365

// Calculator converts raw chain counters into mining projections using a
// fixed set of protocol parameters. It holds no other state and is safe for
// concurrent use.
type Calculator struct {
	params *chaincfg.Params
}

// NewCalculator creates a calculator bound to the given protocol parameters.
func NewCalculator(params *chaincfg.Params) *Calculator {
	return &Calculator{params: params}
}

// BlockReward returns the coinbase reward for a block at the given height.
// The reward is a strictly non-increasing step function of height, reaching
// zero once the halving shift underflows one satoshi.
func (c *Calculator) BlockReward(height int64) (btcutil.Amount, error) {
	if height < 0 {
		return 0, fmt.Errorf("%w: negative block height %d", ErrInvalidInput, height)
	}
	return c.params.BlockSubsidy(height), nil
}

// DailyMiningRate returns the projected daily issuance at the given height.
// A positive observed 24h block count is used as-is; otherwise the protocol
// target rate applies. The current reward is correct for the whole projection
// window because the reward is constant within a halving epoch.
func (c *Calculator) DailyMiningRate(height, observedBlocks24h int64) (btcutil.Amount, error) {
	reward, err := c.BlockReward(height)
	if err != nil {
		return 0, err
	}

	blocksPerDay := c.params.TargetBlocksPerDay
	if observedBlocks24h > 0 {
		blocksPerDay = observedBlocks24h
	}

	return btcutil.Amount(blocksPerDay) * reward, nil
}

// Compute derives a full mining projection from raw chain stats at the given
// reference time. Calendar estimates add whole days to now, so results are
// reproducible for a fixed clock input.
func (c *Calculator) Compute(stats *RawChainStats, now time.Time) (*MiningProjection, error) {
	if stats.TotalSatoshisMined < 0 {
		return nil, fmt.Errorf("%w: negative mined supply %d", ErrInvalidInput, int64(stats.TotalSatoshisMined))
	}
	if stats.CurrentBlockHeight < 0 {
		return nil, fmt.Errorf("%w: negative block height %d", ErrInvalidInput, stats.CurrentBlockHeight)
	}

	remaining := c.params.TotalSupply - stats.TotalSatoshisMined
	if remaining < 0 {
		return nil, fmt.Errorf("%w: %v mined, maximum is %v",
			ErrSupplyExceedsMax, stats.TotalSatoshisMined, c.params.TotalSupply)
	}

	reward := c.params.BlockSubsidy(stats.CurrentBlockHeight)

	rate, err := c.DailyMiningRate(stats.CurrentBlockHeight, stats.ObservedBlocks24h)
	if err != nil {
		return nil, err
	}

	proj := &MiningProjection{
		CirculatingSupply: stats.TotalSatoshisMined,
		RemainingSupply:   remaining,
		PercentMined:      float64(stats.TotalSatoshisMined) / float64(c.params.TotalSupply) * 100,
		BlockReward:       reward,
		DailyMiningRate:   rate,
	}

	proj.EstimatedDaysToExhaustion = math.Inf(1)
	if rate > 0 {
		days := float64(remaining) / float64(rate)
		proj.EstimatedDaysToExhaustion = days
		// Calendar arithmetic overflows far beyond this horizon; the
		// date stays unset, like the infinite case.
		if days <= maxHorizonDays {
			date := now.AddDate(0, 0, int(days))
			proj.EstimatedExhaustionDate = &date
		}
	}

	nextHeight := c.params.NextHalvingHeight(stats.CurrentBlockHeight)
	blocksRemaining := nextHeight - stats.CurrentBlockHeight

	// Halving timing always uses the protocol target rate, never the
	// observed rate.
	daysRemaining := float64(blocksRemaining) / float64(c.params.TargetBlocksPerDay)

	proj.NextHalving = HalvingProjection{
		BlockHeight:            nextHeight,
		BlocksRemaining:        blocksRemaining,
		EstimatedDaysRemaining: daysRemaining,
		EstimatedDate:          now.AddDate(0, 0, int(daysRemaining)),
		RewardBefore:           reward,
		RewardAfter:            c.params.BlockSubsidy(nextHeight),
	}

	return proj, nil
}
