package engine

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/meridianyield/scm/internal/auction"
	"github.com/meridianyield/scm/internal/slots"
	"github.com/meridianyield/scm/internal/staking"
	"github.com/meridianyield/scm/internal/types"
)

// Administrative surface. Every entry point is gated on the vault's
// management role and rejects synchronously with no partial effects.

func (s *Strategy) requireManagement(caller common.Address) error {
	management, err := s.acct.Management()
	if err != nil {
		return fmt.Errorf("failed to read management role: %w", err)
	}
	if caller != management {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller.Hex())
	}
	return nil
}

// requireNoLiveAuction blocks auction-pricing mutations while an auction for
// the base token is inside its window.
func (s *Strategy) requireNoLiveAuction() error {
	live, err := s.auctionLive()
	if err != nil {
		return err
	}
	if live {
		return auction.ErrAuctionLive
	}
	return nil
}

// SetDepositLimit updates the total-assets ceiling. Zero disables deposits.
func (s *Strategy) SetDepositLimit(caller common.Address, limit sdkmath.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return err
	}
	if limit.IsNil() || limit.IsNegative() {
		return fmt.Errorf("%w: deposit_limit", types.ErrParamNegative)
	}
	s.params.DepositLimit = limit
	s.logger.Info().Str("deposit_limit", limit.String()).Msg("Deposit limit updated")
	return nil
}

// SetMaxTendBasefeeGwei updates the basefee ceiling for keeper passes.
func (s *Strategy) SetMaxTendBasefeeGwei(caller common.Address, gwei uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return err
	}
	s.params.MaxTendBasefeeGwei = gwei
	s.logger.Info().Uint64("max_tend_basefee_gwei", gwei).Msg("Tend basefee ceiling updated")
	return nil
}

// SetMinCooldownAmount updates the smallest loose staked balance worth
// dispatching into a slot.
func (s *Strategy) SetMinCooldownAmount(caller common.Address, amount sdkmath.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return err
	}
	if amount.IsNil() || amount.IsNegative() {
		return fmt.Errorf("%w: min_cooldown_amount", types.ErrParamNegative)
	}
	s.params.MinCooldownAmount = amount
	s.logger.Info().Str("min_cooldown_amount", amount.String()).Msg("Minimum cooldown amount updated")
	return nil
}

// SetAuctionAmounts updates the kick sizing bounds.
func (s *Strategy) SetAuctionAmounts(caller common.Address, minAmount, maxAmount sdkmath.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return err
	}
	if minAmount.IsNil() || minAmount.IsNegative() || maxAmount.IsNil() || maxAmount.IsNegative() {
		return fmt.Errorf("%w: auction amounts", types.ErrParamNegative)
	}
	if minAmount.GT(maxAmount) {
		return types.ErrAuctionBounds
	}
	s.params.MinAuctionAmount = minAmount
	s.params.MaxAuctionAmount = maxAmount
	s.logger.Info().
		Str("min_auction_amount", minAmount.String()).
		Str("max_auction_amount", maxAmount.String()).
		Msg("Auction amount bounds updated")
	return nil
}

// SetAuctionPricing updates the starting price and decay range. Rejected
// while an auction is live so an open window can never be repriced.
func (s *Strategy) SetAuctionPricing(caller common.Address, startingPrice, rangeSize sdkmath.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return err
	}
	if err := s.requireNoLiveAuction(); err != nil {
		return err
	}
	if startingPrice.IsNil() || !startingPrice.IsPositive() {
		return fmt.Errorf("%w: auction_starting_price", types.ErrParamZero)
	}
	if rangeSize.IsNil() || rangeSize.IsNegative() {
		return fmt.Errorf("%w: auction_range_size", types.ErrParamNegative)
	}
	if rangeSize.GT(startingPrice) {
		return types.ErrRangeExceedsStart
	}
	s.params.AuctionStartingPrice = startingPrice
	s.params.AuctionRangeSize = rangeSize
	s.logger.Info().
		Str("auction_starting_price", startingPrice.String()).
		Str("auction_range_size", rangeSize.String()).
		Msg("Auction pricing updated")
	return nil
}

// SetAuctionTiming updates the window length and kick spacing. Rejected while
// an auction is live.
func (s *Strategy) SetAuctionTiming(caller common.Address, length, cooldown time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return err
	}
	if err := s.requireNoLiveAuction(); err != nil {
		return err
	}
	if length <= 0 {
		return fmt.Errorf("%w: auction_length", types.ErrParamZero)
	}
	if cooldown < length {
		return types.ErrCooldownTooShort
	}
	s.params.AuctionLength = length
	s.params.AuctionCooldown = cooldown
	s.logger.Info().
		Dur("auction_length", length).
		Dur("auction_cooldown", cooldown).
		Msg("Auction timing updated")
	return nil
}

// SetMinDiscountBps updates the discount floor the pre-take guard enforces.
func (s *Strategy) SetMinDiscountBps(caller common.Address, bps uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return err
	}
	s.params.MinDiscountBps = bps
	s.logger.Info().Uint64("min_discount_bps", bps).Msg("Minimum discount updated")
	return nil
}

// AddSlot clones the original slot and registers the copy, bounded by the
// hard cap of slots.MaxSlots.
func (s *Strategy) AddSlot(caller common.Address) (slots.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return nil, err
	}
	slot, err := s.registry.AddClone()
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("slot", slot.Address().Hex()).
		Int("total", s.registry.Len()).
		Msg("Custodial slot added")
	return slot, nil
}

// CooldownSlot manually starts a cooldown on a registered slot.
func (s *Strategy) CooldownSlot(caller, slotAddr common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return err
	}
	slot, err := s.registry.ByAddress(slotAddr)
	if err != nil {
		return err
	}
	queued, err := slot.Cooldown()
	if err != nil {
		return fmt.Errorf("failed to start cooldown on slot %s: %w", slotAddr.Hex(), err)
	}
	s.logger.Info().
		Str("slot", slotAddr.Hex()).
		Str("queued", queued.String()).
		Msg("Manual cooldown started")
	return nil
}

// UnstakeSlot manually collects a registered slot's matured cooldown.
func (s *Strategy) UnstakeSlot(caller, slotAddr common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return err
	}
	slot, err := s.registry.ByAddress(slotAddr)
	if err != nil {
		return err
	}
	if err := slot.Unstake(); err != nil {
		return fmt.Errorf("failed to unstake slot %s: %w", slotAddr.Hex(), err)
	}
	s.logger.Info().Str("slot", slotAddr.Hex()).Msg("Manual unstake executed")
	return nil
}

// RecallFromSlot retrieves tokens from a registered slot back to the
// strategy. A zero amount recalls the slot's full balance.
func (s *Strategy) RecallFromSlot(caller, slotAddr, token common.Address, amount sdkmath.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return err
	}
	slot, err := s.registry.ByAddress(slotAddr)
	if err != nil {
		return err
	}
	if err := slot.Recall(token, amount); err != nil {
		return fmt.Errorf("failed to recall from slot %s: %w", slotAddr.Hex(), err)
	}
	s.logger.Warn().
		Str("slot", slotAddr.Hex()).
		Str("token", token.Hex()).
		Str("amount", amount.String()).
		Msg("Tokens recalled from slot")
	return nil
}

// Sweep transfers the full balance of a stray token to the management role.
// The base asset and the staked token are never sweepable.
func (s *Strategy) Sweep(caller common.Address, token staking.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagement(caller); err != nil {
		return err
	}
	if token.Address() == s.base.Address() || token.Address() == s.staked.Address() {
		return fmt.Errorf("%w: %s", ErrProtectedToken, token.Address().Hex())
	}
	balance, err := token.BalanceOf(s.self)
	if err != nil {
		return fmt.Errorf("failed to read sweep balance: %w", err)
	}
	if !balance.IsPositive() {
		return nil
	}
	management, err := s.acct.Management()
	if err != nil {
		return fmt.Errorf("failed to read management role: %w", err)
	}
	if err := token.Transfer(management, balance); err != nil {
		return fmt.Errorf("failed to sweep token %s: %w", token.Address().Hex(), err)
	}
	s.logger.Warn().
		Str("token", token.Address().Hex()).
		Str("amount", balance.String()).
		Msg("Token swept to management")
	return nil
}
