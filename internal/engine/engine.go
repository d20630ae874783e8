// Package engine implements the strategy core: the position-adjustment pass
// that cycles idle staked balance through custodial cooldown slots, the
// liquidity accounting that reconciles the strategy's value pools, and the
// auction hooks that gate how base-token liquidity is sold off.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/meridianyield/scm/internal/auction"
	"github.com/meridianyield/scm/internal/logger"
	"github.com/meridianyield/scm/internal/slots"
	"github.com/meridianyield/scm/internal/staking"
	"github.com/meridianyield/scm/internal/types"
	"github.com/meridianyield/scm/internal/vaultacct"
)

// Error definitions for zero-tolerance error handling
var (
	ErrNilDependency  = errors.New("dependency is nil")
	ErrInvalidParams  = errors.New("strategy parameters are invalid")
	ErrUnauthorized   = errors.New("caller is not the management role")
	ErrProtectedToken = errors.New("token cannot be swept")
)

var wad = sdkmath.NewIntWithDecimal(1, 18)

// Strategy owns all mutable strategy state: the slot registry and the
// parameter set. Every entry point is serialized by a single mutex, so each
// call observes collaborator state as of its own start and runs to completion
// before the next begins.
type Strategy struct {
	logger zerolog.Logger
	mu     sync.Mutex

	staked   staking.StakedToken
	base     staking.Token
	registry *slots.Registry
	book     auction.Book
	acct     vaultacct.Accounting

	// self is the strategy's own on-chain address; loose balances are the
	// token balances held there.
	self common.Address

	params types.StrategyParams
	now    func() time.Time
}

// Config holds the dependencies for creating a new Strategy instance.
type Config struct {
	StakedToken  staking.StakedToken
	BaseToken    staking.Token
	Registry     *slots.Registry
	AuctionBook  auction.Book
	Accounting   vaultacct.Accounting
	SelfAddress  common.Address
	Params       types.StrategyParams
	Now          func() time.Time // defaults to time.Now
}

// New creates a Strategy with dependency injection.
func New(cfg Config) (*Strategy, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("strategy configuration validation failed: %w", err)
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	s := &Strategy{
		logger:   logger.GetForComponent("strategy_engine"),
		staked:   cfg.StakedToken,
		base:     cfg.BaseToken,
		registry: cfg.Registry,
		book:     cfg.AuctionBook,
		acct:     cfg.Accounting,
		self:     cfg.SelfAddress,
		params:   cfg.Params,
		now:      nowFn,
	}
	s.logger.Info().
		Str("strategy", s.self.Hex()).
		Int("slots", s.registry.Len()).
		Msg("Strategy engine created")
	return s, nil
}

func validateConfig(cfg Config) error {
	if cfg.StakedToken == nil {
		return fmt.Errorf("%w: staked token", ErrNilDependency)
	}
	if cfg.BaseToken == nil {
		return fmt.Errorf("%w: base token", ErrNilDependency)
	}
	if cfg.Registry == nil {
		return fmt.Errorf("%w: slot registry", ErrNilDependency)
	}
	if cfg.AuctionBook == nil {
		return fmt.Errorf("%w: auction book", ErrNilDependency)
	}
	if cfg.Accounting == nil {
		return fmt.Errorf("%w: vault accounting", ErrNilDependency)
	}
	if cfg.SelfAddress == (common.Address{}) {
		return fmt.Errorf("%w: self address", ErrNilDependency)
	}
	if err := cfg.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

// Params returns a copy of the current parameter set.
func (s *Strategy) Params() types.StrategyParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SlotViews derives the current projection of every slot.
func (s *Strategy) SlotViews() ([]types.SlotView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Views(s.staked, s.now())
}

// AdjustPosition runs one best-effort position-adjustment pass. It is
// idempotent and never fails because there is nothing to do. The returned
// action list records what the pass actually executed, for the pass snapshot.
//
// Within one pass, collection of a matured slot happens before any new
// cooldown dispatch into that same slot; at most one slot is funded per pass
// since a slot can carry only one cooldown and funding is sequential.
func (s *Strategy) AdjustPosition() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustPosition()
}

func (s *Strategy) adjustPosition() ([]string, error) {
	var actions []string

	duration, err := s.staked.CooldownDuration()
	if err != nil {
		return nil, fmt.Errorf("failed to read cooldown duration: %w", err)
	}

	// Instant mode: redemptions need no lock-up, so no slot orchestration.
	if duration == 0 {
		redeemed, err := s.redeemAllLoose()
		if err != nil {
			return nil, err
		}
		if redeemed.IsPositive() {
			actions = append(actions, fmt.Sprintf("redeemed %s staked directly", redeemed))
			s.logger.Info().Str("shares", redeemed.String()).Msg("Instant mode: redeemed loose staked balance")
		}
		return actions, nil
	}

	loose, err := s.staked.BalanceOf(s.self)
	if err != nil {
		return nil, fmt.Errorf("failed to read loose staked balance: %w", err)
	}

	now := s.now()
	funded := false
	for i, slot := range s.registry.All() {
		entry, err := s.staked.Cooldowns(slot.Address())
		if err != nil {
			return actions, fmt.Errorf("failed to read cooldown for slot %d: %w", i, err)
		}
		status := entry.StatusAt(now)

		if status == types.SlotMatured {
			if err := slot.Unstake(); err != nil {
				return actions, fmt.Errorf("failed to collect matured slot %d: %w", i, err)
			}
			actions = append(actions, fmt.Sprintf("collected %s from slot %d", entry.UnderlyingAmount, i))
			s.logger.Info().
				Int("slot", i).
				Str("amount", entry.UnderlyingAmount.String()).
				Msg("Collected matured cooldown")
			status = types.SlotIdle
		}

		if status == types.SlotIdle && !funded && loose.GTE(s.params.MinCooldownAmount) && loose.IsPositive() {
			dispatched, err := s.fundSlot(slot, loose)
			if err != nil {
				return actions, fmt.Errorf("failed to dispatch cooldown into slot %d: %w", i, err)
			}
			if dispatched.IsPositive() {
				actions = append(actions, fmt.Sprintf("dispatched %s to slot %d", dispatched, i))
				s.logger.Info().
					Int("slot", i).
					Str("amount", dispatched.String()).
					Msg("Dispatched loose staked balance into cooldown")
				funded = true
				loose = sdkmath.ZeroInt()
			}
		}
	}
	return actions, nil
}

// fundSlot moves the lesser of the loose staked balance and the strategy's
// redeemable-share ceiling into the slot and starts its cooldown.
func (s *Strategy) fundSlot(slot slots.Slot, loose sdkmath.Int) (sdkmath.Int, error) {
	ceiling, err := s.staked.MaxRedeem(s.self)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read redeemable ceiling: %w", err)
	}
	amount := sdkmath.MinInt(loose, ceiling)
	if !amount.IsPositive() {
		return sdkmath.ZeroInt(), nil
	}
	if err := s.staked.Transfer(slot.Address(), amount); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to transfer staked balance: %w", err)
	}
	if _, err := slot.Cooldown(); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to start cooldown: %w", err)
	}
	return amount, nil
}

// redeemAllLoose redeems the entire loose staked balance, capped by the
// redeemable-share ceiling, directly into base token.
func (s *Strategy) redeemAllLoose() (sdkmath.Int, error) {
	balance, err := s.staked.BalanceOf(s.self)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read loose staked balance: %w", err)
	}
	ceiling, err := s.staked.MaxRedeem(s.self)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read redeemable ceiling: %w", err)
	}
	shares := sdkmath.MinInt(balance, ceiling)
	if !shares.IsPositive() {
		return sdkmath.ZeroInt(), nil
	}
	if _, err := s.staked.Redeem(shares, s.self, s.self); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to redeem staked balance: %w", err)
	}
	return shares, nil
}

// FreeUpAsset realizes at least the requested base-token amount from value
// that is already deliverable: matured slots first, then direct redemption of
// loose staked balance when redemptions are instant. Used by the pre-take
// hook to self-heal a loose-base deficit before a fill settles.
func (s *Strategy) FreeUpAsset(amount sdkmath.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.freeUpAsset(amount)
}

func (s *Strategy) freeUpAsset(amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return nil
	}
	now := s.now()
	freed := sdkmath.ZeroInt()
	for i, slot := range s.registry.All() {
		if freed.GTE(amount) {
			return nil
		}
		entry, err := s.staked.Cooldowns(slot.Address())
		if err != nil {
			return fmt.Errorf("failed to read cooldown for slot %d: %w", i, err)
		}
		if entry.StatusAt(now) != types.SlotMatured {
			continue
		}
		if err := slot.Unstake(); err != nil {
			return fmt.Errorf("failed to collect matured slot %d: %w", i, err)
		}
		freed = freed.Add(entry.UnderlyingAmount)
		s.logger.Info().
			Int("slot", i).
			Str("amount", entry.UnderlyingAmount.String()).
			Msg("Collected matured cooldown to cover auction shortfall")
	}
	if freed.GTE(amount) {
		return nil
	}

	duration, err := s.staked.CooldownDuration()
	if err != nil {
		return fmt.Errorf("failed to read cooldown duration: %w", err)
	}
	if duration != 0 {
		// Whatever is still Cooling cannot be delivered; the fill proceeds
		// against the base balance actually realized.
		return nil
	}

	shortfall := amount.Sub(freed)
	rate, err := s.staked.ConvertToAssets(wad)
	if err != nil {
		return fmt.Errorf("failed to read exchange rate: %w", err)
	}
	if !rate.IsPositive() {
		return nil
	}
	// Shares needed for the shortfall, rounded up.
	shares := shortfall.Mul(wad).Add(rate.SubRaw(1)).Quo(rate)
	balance, err := s.staked.BalanceOf(s.self)
	if err != nil {
		return fmt.Errorf("failed to read loose staked balance: %w", err)
	}
	ceiling, err := s.staked.MaxRedeem(s.self)
	if err != nil {
		return fmt.Errorf("failed to read redeemable ceiling: %w", err)
	}
	shares = sdkmath.MinInt(shares, sdkmath.MinInt(balance, ceiling))
	if !shares.IsPositive() {
		return nil
	}
	if _, err := s.staked.Redeem(shares, s.self, s.self); err != nil {
		return fmt.Errorf("failed to redeem for shortfall: %w", err)
	}
	return nil
}
