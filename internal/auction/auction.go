// Package auction holds the Dutch-auction pricing rule and the pre-trade
// discount guard, plus the interface boundary to the external auction
// bookkeeping framework that stores kick timestamps and invokes the hooks.
package auction

import (
	"errors"
	"time"

	sdkmath "cosmossdk.io/math"
)

// BpsDenominator is the basis-point scale used by the discount guard.
const BpsDenominator = 10_000

// Error definitions for auction hook rejections
var (
	ErrKickBelowMinimum = errors.New("sellable amount below minimum auction amount")
	ErrUnsupportedToken = errors.New("token is not auctioned by this strategy")
	ErrKickTooSoon      = errors.New("auction cooldown has not elapsed since prior kick")
	ErrAuctionLive      = errors.New("auction is currently live")
	ErrNotOverpaying    = errors.New("payment does not strictly exceed taken value")
	ErrDiscountTooLow   = errors.New("discount below configured minimum")
	ErrZeroTake         = errors.New("take amount is zero")
)

// Book is the consumed surface of the external auction framework.
type Book interface {
	// Kicked returns the timestamp of the most recent kick for the base
	// token's auction, or the zero time if it was never kicked.
	Kicked() (time.Time, error)

	// AmountAvailable returns the base-token amount currently reserved for
	// the open auction, zero if none.
	AmountAvailable() (sdkmath.Int, error)
}

// IsLive reports whether an auction kicked at the given time is inside its
// pricing window at now. A zero kick time is never live.
func IsLive(kicked time.Time, length time.Duration, now time.Time) bool {
	if kicked.IsZero() {
		return false
	}
	return !now.Before(kicked) && !now.After(kicked.Add(length))
}

// Price implements the fixed linear decay: startingPrice at kick time falling
// by rangeSize over length. Outside the window, or with nothing available,
// the price is zero and no sale is possible.
func Price(startingPrice, rangeSize sdkmath.Int, length time.Duration, kicked time.Time, available sdkmath.Int, now time.Time) sdkmath.Int {
	if available.IsNil() || !available.IsPositive() {
		return sdkmath.ZeroInt()
	}
	if !IsLive(kicked, length, now) {
		return sdkmath.ZeroInt()
	}
	// Nanosecond terms so sub-second window lengths cannot truncate the
	// divisor to zero.
	elapsed := now.Sub(kicked)
	drop := rangeSize.
		MulRaw(elapsed.Nanoseconds()).
		QuoRaw(length.Nanoseconds())
	return startingPrice.Sub(drop)
}

// DiscountBps expresses the taker's surplus (base-token value paid in excess
// of the value taken) in basis points of the take amount, truncated.
func DiscountBps(paidValue, takeAmount sdkmath.Int) sdkmath.Int {
	return paidValue.Sub(takeAmount).MulRaw(BpsDenominator).Quo(takeAmount)
}

// CheckDiscount is the pre-trade guard core: the taker must strictly overpay
// in value, and the surplus must clear the configured floor. paidValue is the
// taker's payment already converted to base-token terms.
func CheckDiscount(paidValue, takeAmount sdkmath.Int, minDiscountBps uint64) error {
	if !takeAmount.IsPositive() {
		return ErrZeroTake
	}
	if paidValue.LTE(takeAmount) {
		return ErrNotOverpaying
	}
	if DiscountBps(paidValue, takeAmount).LT(sdkmath.NewIntFromUint64(minDiscountBps)) {
		return ErrDiscountTooLow
	}
	return nil
}
