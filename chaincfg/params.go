package chaincfg

import (
	"time"

	"github.com/btcsuite/btcutil"
)

// Params defines the protocol constants the projection math is parameterized
// by. These are consensus rules, fixed at compile time and never mutated at
// runtime.
type Params struct {
	Name string

	// Supply parameters (satoshis).
	TotalSupply        btcutil.Amount
	InitialBlockReward btcutil.Amount

	// Halving schedule.
	HalvingInterval int64

	// Block cadence. TargetBlocksPerDay is the fallback issuance rate when
	// no observed 24h block count is available, and is always used for
	// halving timing, which is a protocol property independent of recent
	// variance.
	TargetTimePerBlock time.Duration
	TargetBlocksPerDay int64

	// MaxHalvings caps the subsidy right shift. Beyond this the shift is
	// undefined and the reward is forced to zero.
	MaxHalvings int64
}

var MainNetParams = Params{
	Name: "mainnet",

	// 21 million BTC issued as 50 BTC per block, halving every 210,000
	// blocks (~4 years at 10 minutes per block).
	TotalSupply:        btcutil.MaxSatoshi,
	InitialBlockReward: 50 * btcutil.SatoshiPerBitcoin,
	HalvingInterval:    210_000,

	TargetTimePerBlock: 10 * time.Minute,
	TargetBlocksPerDay: 144,

	MaxHalvings: 64,
}
