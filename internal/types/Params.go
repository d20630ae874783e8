/*

This file contains the runtime-tunable strategy parameters and their
structural validation. Cross-field guards that depend on live auction state
(no pricing change while an auction is running) are enforced by the engine's
setters, not here.

*/

package types

import (
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for parameter validation
var (
	ErrParamNil          = errors.New("parameter is nil")
	ErrParamNegative     = errors.New("parameter is negative")
	ErrParamZero         = errors.New("parameter must be nonzero")
	ErrRangeExceedsStart = errors.New("auction range size exceeds starting price")
	ErrCooldownTooShort  = errors.New("auction cooldown is shorter than auction length")
	ErrAuctionBounds     = errors.New("min auction amount exceeds max auction amount")
)

// StrategyParams holds every operator-tunable scalar of the strategy.
// Amounts are denominated in base-token wei; prices are staked-token wei
// paid per whole base token.
type StrategyParams struct {
	// MaxTendBasefeeGwei is the network basefee ceiling above which the
	// keeper loop skips position-adjustment passes.
	MaxTendBasefeeGwei uint64 `json:"max_tend_basefee_gwei"`

	// MinDiscountBps is the minimum surplus a taker must hand over,
	// expressed in basis points of the base-token amount taken.
	MinDiscountBps uint64 `json:"min_discount_bps"`

	// MinCooldownAmount is the smallest loose staked balance worth
	// dispatching into a slot; below it the gas is not worth the cycle.
	MinCooldownAmount sdkmath.Int `json:"min_cooldown_amount"`

	// MinAuctionAmount and MaxAuctionAmount bound the sellable amount
	// computed by the kick hook.
	MinAuctionAmount sdkmath.Int `json:"min_auction_amount"`
	MaxAuctionAmount sdkmath.Int `json:"max_auction_amount"`

	// AuctionStartingPrice is the price at kick time; AuctionRangeSize is
	// the total linear drop over AuctionLength.
	AuctionStartingPrice sdkmath.Int   `json:"auction_starting_price"`
	AuctionRangeSize     sdkmath.Int   `json:"auction_range_size"`
	AuctionLength        time.Duration `json:"auction_length"`

	// AuctionCooldown is the minimum spacing between kicks. Must be at
	// least AuctionLength so two auctions can never be live at once.
	AuctionCooldown time.Duration `json:"auction_cooldown"`

	// DepositLimit caps the strategy's total managed assets. Zero means
	// no deposits are accepted.
	DepositLimit sdkmath.Int `json:"deposit_limit"`
}

// Validate checks structural consistency. Every Int field must be set and
// non-negative, the linear decay must not cross zero before the window ends,
// and the kick spacing must cover the auction window.
func (p StrategyParams) Validate() error {
	for name, v := range map[string]sdkmath.Int{
		"min_cooldown_amount":    p.MinCooldownAmount,
		"min_auction_amount":     p.MinAuctionAmount,
		"max_auction_amount":     p.MaxAuctionAmount,
		"auction_starting_price": p.AuctionStartingPrice,
		"auction_range_size":     p.AuctionRangeSize,
		"deposit_limit":          p.DepositLimit,
	} {
		if v.IsNil() {
			return fmt.Errorf("%w: %s", ErrParamNil, name)
		}
		if v.IsNegative() {
			return fmt.Errorf("%w: %s", ErrParamNegative, name)
		}
	}
	if p.AuctionStartingPrice.IsZero() {
		return fmt.Errorf("%w: auction_starting_price", ErrParamZero)
	}
	if p.AuctionLength <= 0 {
		return fmt.Errorf("%w: auction_length", ErrParamZero)
	}
	if p.AuctionRangeSize.GT(p.AuctionStartingPrice) {
		return ErrRangeExceedsStart
	}
	if p.AuctionCooldown < p.AuctionLength {
		return ErrCooldownTooShort
	}
	if p.MinAuctionAmount.GT(p.MaxAuctionAmount) {
		return ErrAuctionBounds
	}
	return nil
}
