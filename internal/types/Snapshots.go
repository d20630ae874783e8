/*

This file contains the types persisted per keeper pass: the liquidity report
(the reconciled view of every value pool the strategy manages) and the pass
snapshot stored in the database for the dashboard and post-mortems.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// LiquidityReport reconciles the strategy's overlapping value pools into one
// consistent view. All figures are base-token wei; LooseStaked is staked-token
// wei and LooseStakedValue its base-token conversion at the current rate.
type LiquidityReport struct {
	LooseBase        sdkmath.Int `json:"loose_base"`
	LooseStaked      sdkmath.Int `json:"loose_staked"`
	LooseStakedValue sdkmath.Int `json:"loose_staked_value"`
	CoolingTotal     sdkmath.Int `json:"cooling_total"`
	MaturedTotal     sdkmath.Int `json:"matured_total"`
	AuctionReserved  sdkmath.Int `json:"auction_reserved"`
	TotalAssets      sdkmath.Int `json:"total_assets"`
	Withdrawable     sdkmath.Int `json:"withdrawable"`
	DepositCapacity  sdkmath.Int `json:"deposit_capacity"`
}

// PassSnapshot captures one keeper pass end to end: the liquidity state
// before and after, the slot projections, and what the pass actually did.
type PassSnapshot struct {
	PassNumber int       `json:"pass_number"`
	PassID     string    `json:"pass_id"`
	Timestamp  time.Time `json:"timestamp"`
	ParamsID   *int64    `json:"params_id,omitempty"`

	BasefeeGwei float64 `json:"basefee_gwei"`
	Skipped     bool    `json:"skipped"`
	SkipReason  string  `json:"skip_reason,omitempty"`

	InitialLiquidity LiquidityReport `json:"initial_liquidity"`
	FinalLiquidity   LiquidityReport `json:"final_liquidity"`
	InitialSlots     []SlotView      `json:"initial_slots"`
	FinalSlots       []SlotView      `json:"final_slots"`

	// Actions is the ordered list of steps the pass executed, e.g.
	// "collect slot 2", "dispatch 1200000000000000000000 to slot 0".
	Actions []string `json:"actions"`

	DurationMS int64 `json:"duration_ms"`
}
