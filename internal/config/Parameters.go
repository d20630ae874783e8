/*

This file contains the default strategy parameters for the SCM.

These parameters are designed for managing significant capital in a production
environment. Each value has been chosen to balance withdrawal availability
against the yield cost of keeping capital out of the staked wrapper.

*/

package config

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/meridianyield/scm/internal/types"
)

// WAD is one whole token in 18-decimal fixed point.
var WAD = sdkmath.NewIntWithDecimal(1, 18)

// DefaultStrategyParams provides a baseline parameter set for the strategy.
// These values are used if no active parameters are found in the database
// during initialization.
var DefaultStrategyParams = types.StrategyParams{
	MaxTendBasefeeGwei: 40,
	// Rationale: cooldown cycling is not time-critical; a matured slot keeps
	// its value and can be collected on the next cheap block. Skipping passes
	// above 40 gwei avoids paying spike gas for routine bookkeeping.

	MinDiscountBps: 50,
	// Rationale: 0.50% is the floor surplus a taker must hand over. It covers
	// the oracle-free rate drift between quote and settlement while still
	// leaving arbitrageurs room to fill early in the decay window.

	MinCooldownAmount: sdkmath.NewIntWithDecimal(1_000, 18),
	// Rationale: dispatching a cooldown costs two transactions (transfer +
	// cooldown). Below 1,000 tokens the yield recovered does not cover gas.

	MinAuctionAmount: sdkmath.NewIntWithDecimal(5_000, 18),
	// Rationale: auctions below this size attract no takers; the kick gas and
	// the pricing-window exposure are not worth the liquidity released.

	MaxAuctionAmount: sdkmath.NewIntWithDecimal(500_000, 18),
	// Rationale: caps the value reserved away from withdrawers by any single
	// auction, bounding the worst-case availableWithdrawLimit reduction.

	AuctionStartingPrice: sdkmath.NewIntWithDecimal(101, 16), // 1.01 staked per base
	AuctionRangeSize:     sdkmath.NewIntWithDecimal(3, 16),   // decays to 0.98
	// Rationale: start above par so the first fills are strictly profitable
	// for the strategy, decay through par to guarantee the auction clears
	// within the window under normal exchange rates.

	AuctionLength:   6 * time.Hour,
	AuctionCooldown: 24 * time.Hour,
	// Rationale: a six-hour window is long enough for takers in any timezone;
	// the 24h spacing satisfies the one-live-auction invariant with margin.

	DepositLimit: sdkmath.NewIntWithDecimal(10_000_000, 18),
	// Rationale: bounds total managed assets while the slot pool (max 7
	// concurrent cooldowns) can still cycle the idle balance span within a
	// reasonable number of cooldown periods.
}
