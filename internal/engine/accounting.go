package engine

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/meridianyield/scm/internal/types"
)

// All pool totals are recomputed from source state on every read. Cached
// running counters would drift across privileged external mutations
// (emergency recalls, manual unstakes), so none are kept.

// CoolingTotal sums the underlying amount over every slot with a nonzero
// cooldown record, matured or not. Used for total-assets reporting.
func (s *Strategy) CoolingTotal() (sdkmath.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coolingTotal()
}

func (s *Strategy) coolingTotal() (sdkmath.Int, error) {
	views, err := s.registry.Views(s.staked, s.now())
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	total := sdkmath.ZeroInt()
	for _, v := range views {
		total = total.Add(v.UnderlyingAmount)
	}
	return total, nil
}

// MaturedTotal sums the underlying amount over Matured slots only. Used for
// the withdraw limit and auction eligibility, since only matured value can
// actually be delivered.
func (s *Strategy) MaturedTotal() (sdkmath.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maturedTotal()
}

func (s *Strategy) maturedTotal() (sdkmath.Int, error) {
	views, err := s.registry.Views(s.staked, s.now())
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	total := sdkmath.ZeroInt()
	for _, v := range views {
		if v.Status == types.SlotMatured {
			total = total.Add(v.UnderlyingAmount)
		}
	}
	return total, nil
}

// EstimatedTotalAssets is the trusted accounting figure reported upstream:
// loose base, plus everything in cooldown, plus the loose staked balance
// converted at the current exchange rate. Value not yet collected counts the
// same as value already collected.
func (s *Strategy) EstimatedTotalAssets() (sdkmath.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.estimatedTotalAssets()
}

func (s *Strategy) estimatedTotalAssets() (sdkmath.Int, error) {
	looseBase, err := s.base.BalanceOf(s.self)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read loose base balance: %w", err)
	}
	cooling, err := s.coolingTotal()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	stakedValue, err := s.looseStakedValue()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return looseBase.Add(cooling).Add(stakedValue), nil
}

func (s *Strategy) looseStakedValue() (sdkmath.Int, error) {
	looseStaked, err := s.staked.BalanceOf(s.self)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read loose staked balance: %w", err)
	}
	if looseStaked.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	value, err := s.staked.ConvertToAssets(looseStaked)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to convert staked balance: %w", err)
	}
	return value, nil
}

// AvailableWithdrawLimit is what can be promised to withdrawers right now:
// loose base, plus the staked balance if redemptions are instant, plus
// matured cooldowns, minus whatever the auction framework has reserved for
// an in-flight auction. Never negative.
func (s *Strategy) AvailableWithdrawLimit() (sdkmath.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableWithdrawLimit()
}

func (s *Strategy) availableWithdrawLimit() (sdkmath.Int, error) {
	limit, err := s.base.BalanceOf(s.self)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read loose base balance: %w", err)
	}

	duration, err := s.staked.CooldownDuration()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read cooldown duration: %w", err)
	}
	if duration == 0 {
		stakedValue, err := s.looseStakedValue()
		if err != nil {
			return sdkmath.ZeroInt(), err
		}
		limit = limit.Add(stakedValue)
	}

	matured, err := s.maturedTotal()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	limit = limit.Add(matured)

	reserved, err := s.book.AmountAvailable()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read auction reservation: %w", err)
	}
	if reserved.IsNil() {
		reserved = sdkmath.ZeroInt()
	}
	limit = limit.Sub(reserved)
	if limit.IsNegative() {
		return sdkmath.ZeroInt(), nil
	}
	return limit, nil
}

// AvailableDepositLimit is the configured ceiling minus current total assets,
// floored at zero. A zero ceiling, a full strategy or a shut-down vault all
// mean no deposits.
func (s *Strategy) AvailableDepositLimit() (sdkmath.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableDepositLimit()
}

func (s *Strategy) availableDepositLimit() (sdkmath.Int, error) {
	shutdown, err := s.acct.IsShutdown()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read shutdown flag: %w", err)
	}
	if shutdown || s.params.DepositLimit.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	total, err := s.estimatedTotalAssets()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if total.GTE(s.params.DepositLimit) {
		return sdkmath.ZeroInt(), nil
	}
	return s.params.DepositLimit.Sub(total), nil
}

// LiquidityReport assembles the full reconciled view of the strategy's value
// pools in one serialized read.
func (s *Strategy) LiquidityReport() (types.LiquidityReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report types.LiquidityReport
	var err error

	if report.LooseBase, err = s.base.BalanceOf(s.self); err != nil {
		return report, fmt.Errorf("failed to read loose base balance: %w", err)
	}
	if report.LooseStaked, err = s.staked.BalanceOf(s.self); err != nil {
		return report, fmt.Errorf("failed to read loose staked balance: %w", err)
	}
	if report.LooseStakedValue, err = s.looseStakedValue(); err != nil {
		return report, err
	}
	if report.CoolingTotal, err = s.coolingTotal(); err != nil {
		return report, err
	}
	if report.MaturedTotal, err = s.maturedTotal(); err != nil {
		return report, err
	}
	if report.AuctionReserved, err = s.book.AmountAvailable(); err != nil {
		return report, fmt.Errorf("failed to read auction reservation: %w", err)
	}
	if report.AuctionReserved.IsNil() {
		report.AuctionReserved = sdkmath.ZeroInt()
	}
	if report.TotalAssets, err = s.estimatedTotalAssets(); err != nil {
		return report, err
	}
	if report.Withdrawable, err = s.availableWithdrawLimit(); err != nil {
		return report, err
	}
	if report.DepositCapacity, err = s.availableDepositLimit(); err != nil {
		return report, err
	}
	return report, nil
}
