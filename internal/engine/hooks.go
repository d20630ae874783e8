package engine

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/meridianyield/scm/internal/auction"
)

// The three hooks below are the surface the auction framework calls back
// into: sizing a kick, quoting the decaying price, and guarding a fill.

// KickAmount sizes a new auction for the base token: the realizable,
// non-reserved liquidity (loose base plus matured cooldowns), capped at the
// configured maximum. Value still Cooling is deliberately excluded since it
// cannot be delivered to a taker yet. The kick is rejected when the amount is
// below the configured minimum or when the prior kick is too recent.
func (s *Strategy) KickAmount(token common.Address) (sdkmath.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.base.Address() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %s", auction.ErrUnsupportedToken, token.Hex())
	}

	kicked, err := s.book.Kicked()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read kick timestamp: %w", err)
	}
	if !kicked.IsZero() && s.now().Before(kicked.Add(s.params.AuctionCooldown)) {
		return sdkmath.ZeroInt(), auction.ErrKickTooSoon
	}

	looseBase, err := s.base.BalanceOf(s.self)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read loose base balance: %w", err)
	}
	matured, err := s.maturedTotal()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	amount := sdkmath.MinInt(looseBase.Add(matured), s.params.MaxAuctionAmount)
	if amount.LT(s.params.MinAuctionAmount) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %s < %s",
			auction.ErrKickBelowMinimum, amount, s.params.MinAuctionAmount)
	}

	s.logger.Info().
		Str("amount", amount.String()).
		Msg("Auction kick sized")
	return amount, nil
}

// AuctionPrice quotes the current staked-token-per-base-token price of the
// open auction, zero when the auction is void or expired.
func (s *Strategy) AuctionPrice() (sdkmath.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kicked, err := s.book.Kicked()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read kick timestamp: %w", err)
	}
	available, err := s.book.AmountAvailable()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read auction reservation: %w", err)
	}
	return auction.Price(
		s.params.AuctionStartingPrice,
		s.params.AuctionRangeSize,
		s.params.AuctionLength,
		kicked,
		available,
		s.now(),
	), nil
}

// PreTake guards a fill before it settles. The taker's staked-token payment
// is converted to base terms at the current rate and must strictly exceed the
// amount taken by at least the configured discount floor. If the take exceeds
// loose base, the shortfall is first realized from matured or instantly
// redeemable funds so the auction never blocks on a deficit it can self-heal.
func (s *Strategy) PreTake(takeAmount, payAmount sdkmath.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	paidValue, err := s.staked.ConvertToAssets(payAmount)
	if err != nil {
		return fmt.Errorf("failed to convert payment: %w", err)
	}
	if err := auction.CheckDiscount(paidValue, takeAmount, s.params.MinDiscountBps); err != nil {
		return err
	}

	looseBase, err := s.base.BalanceOf(s.self)
	if err != nil {
		return fmt.Errorf("failed to read loose base balance: %w", err)
	}
	if takeAmount.GT(looseBase) {
		if err := s.freeUpAsset(takeAmount.Sub(looseBase)); err != nil {
			return fmt.Errorf("failed to free up shortfall: %w", err)
		}
	}
	return nil
}

// auctionLive reports whether a base-token auction is inside its pricing
// window right now. Used to lock pricing parameters against mid-auction
// mutation.
func (s *Strategy) auctionLive() (bool, error) {
	kicked, err := s.book.Kicked()
	if err != nil {
		return false, fmt.Errorf("failed to read kick timestamp: %w", err)
	}
	return auction.IsLive(kicked, s.params.AuctionLength, s.now()), nil
}
