// Package sim provides in-memory implementations of every external
// collaborator the engine touches: the staked token, custodial slots, the
// auction book and vault accounting. They honor the exact collaborator
// contracts and back both the test suite and SCM_MODE=sim dry runs, so the
// engine can be exercised without broadcasting a single transaction.
package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/meridianyield/scm/internal/slots"
	"github.com/meridianyield/scm/internal/types"
)

// Error definitions mirroring the external contracts' revert conditions
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNothingToCollect    = errors.New("no cooldown to collect")
	ErrStillCooling        = errors.New("cooldown has not matured")
	ErrUnknownToken        = errors.New("token unknown to slot")
)

// Clock is a controllable time source shared by all simulated collaborators.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock creates a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{t: start}
}

// Now returns the clock's current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var addressCounter uint64

// NewAddress allocates a distinct deterministic address.
func NewAddress() common.Address {
	addressCounter++
	var a common.Address
	binary.BigEndian.PutUint64(a[12:], addressCounter)
	return a
}

// Token is an in-memory ERC-20 ledger bound to a single acting holder; the
// bound holder is the account Transfer debits, matching how the strategy
// moves its own balances on chain.
type Token struct {
	mu     sync.Mutex
	addr   common.Address
	actor  common.Address
	ledger map[common.Address]sdkmath.Int
}

// NewToken creates an empty ledger acting as the given holder.
func NewToken(addr, actor common.Address) *Token {
	return &Token{addr: addr, actor: actor, ledger: make(map[common.Address]sdkmath.Int)}
}

// Address returns the token's identity.
func (t *Token) Address() common.Address { return t.addr }

// BalanceOf returns the holder's balance, zero when unseen.
func (t *Token) BalanceOf(holder common.Address) (sdkmath.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balance(holder), nil
}

// Transfer moves amount from the acting holder to the recipient.
func (t *Token) Transfer(to common.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(t.actor, to, amount)
}

// Mint credits a holder out of thin air, for scenario setup.
func (t *Token) Mint(to common.Address, amount sdkmath.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ledger[to] = t.balance(to).Add(amount)
}

func (t *Token) balance(holder common.Address) sdkmath.Int {
	if b, ok := t.ledger[holder]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

func (t *Token) move(from, to common.Address, amount sdkmath.Int) error {
	b := t.balance(from)
	if b.LT(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), b, amount)
	}
	t.ledger[from] = b.Sub(amount)
	t.ledger[to] = t.balance(to).Add(amount)
	return nil
}

func (t *Token) burn(from common.Address, amount sdkmath.Int) error {
	b := t.balance(from)
	if b.LT(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), b, amount)
	}
	t.ledger[from] = b.Sub(amount)
	return nil
}

// StakedToken simulates the staking primitive: an ERC-20 share ledger with a
// configurable cooldown duration, per-holder cooldown records and a linear
// share-to-asset exchange rate (rateNum base wei per rateDen share wei).
type StakedToken struct {
	*Token

	mu        sync.Mutex
	base      *Token
	duration  time.Duration
	clock     *Clock
	cooldowns map[common.Address]types.CooldownEntry

	rateNum sdkmath.Int
	rateDen sdkmath.Int

	// maxRedeemCap, when set, lowers the redeemable-share ceiling below the
	// holder's balance.
	maxRedeemCap *sdkmath.Int
}

// NewStakedToken creates a staked ledger acting as the strategy, 1:1 rate.
func NewStakedToken(addr, actor common.Address, base *Token, duration time.Duration, clock *Clock) *StakedToken {
	return &StakedToken{
		Token:     NewToken(addr, actor),
		base:      base,
		duration:  duration,
		clock:     clock,
		cooldowns: make(map[common.Address]types.CooldownEntry),
		rateNum:   sdkmath.OneInt(),
		rateDen:   sdkmath.OneInt(),
	}
}

// SetRate changes the exchange rate to num assets per den shares.
func (st *StakedToken) SetRate(num, den sdkmath.Int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.rateNum = num
	st.rateDen = den
}

// SetCooldownDuration flips the primitive between gated and instant mode.
func (st *StakedToken) SetCooldownDuration(d time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.duration = d
}

// SetMaxRedeemCap caps MaxRedeem below the holder's balance.
func (st *StakedToken) SetMaxRedeemCap(limit sdkmath.Int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.maxRedeemCap = &limit
}

// CooldownDuration implements staking.StakedToken.
func (st *StakedToken) CooldownDuration() (time.Duration, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.duration, nil
}

// Cooldowns implements staking.StakedToken.
func (st *StakedToken) Cooldowns(holder common.Address) (types.CooldownEntry, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if entry, ok := st.cooldowns[holder]; ok {
		return entry, nil
	}
	return types.CooldownEntry{UnderlyingAmount: sdkmath.ZeroInt()}, nil
}

// ConvertToAssets implements staking.StakedToken.
func (st *StakedToken) ConvertToAssets(shares sdkmath.Int) (sdkmath.Int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.convert(shares), nil
}

func (st *StakedToken) convert(shares sdkmath.Int) sdkmath.Int {
	return shares.Mul(st.rateNum).Quo(st.rateDen)
}

// MaxRedeem implements staking.StakedToken.
func (st *StakedToken) MaxRedeem(holder common.Address) (sdkmath.Int, error) {
	balance, err := st.BalanceOf(holder)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.maxRedeemCap != nil && st.maxRedeemCap.LT(balance) {
		return *st.maxRedeemCap, nil
	}
	return balance, nil
}

// Redeem implements staking.StakedToken: burns owner shares and credits the
// receiver with the converted base amount. Only legal in instant mode.
func (st *StakedToken) Redeem(shares sdkmath.Int, receiver, owner common.Address) (sdkmath.Int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.duration != 0 {
		return sdkmath.ZeroInt(), ErrStillCooling
	}
	if err := st.Token.burnFrom(owner, shares); err != nil {
		return sdkmath.ZeroInt(), err
	}
	assets := st.convert(shares)
	st.base.Mint(receiver, assets)
	return assets, nil
}

// startCooldown queues the holder's full share balance: shares are burned,
// the converted underlying is recorded, collectible after the duration.
func (st *StakedToken) startCooldown(holder common.Address) (sdkmath.Int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	shares, _ := st.Token.BalanceOf(holder)
	if !shares.IsPositive() {
		return sdkmath.ZeroInt(), nil
	}
	if err := st.Token.burnFrom(holder, shares); err != nil {
		return sdkmath.ZeroInt(), err
	}
	assets := st.convert(shares)
	existing := st.cooldowns[holder].UnderlyingAmount
	if existing.IsNil() {
		existing = sdkmath.ZeroInt()
	}
	st.cooldowns[holder] = types.CooldownEntry{
		UnderlyingAmount: existing.Add(assets),
		CooldownEnd:      st.clock.Now().Add(st.duration),
	}
	return assets, nil
}

// collect releases a matured cooldown to the beneficiary.
func (st *StakedToken) collect(holder, beneficiary common.Address) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	entry, ok := st.cooldowns[holder]
	if !ok || !entry.UnderlyingAmount.IsPositive() {
		return ErrNothingToCollect
	}
	if entry.CooldownEnd.After(st.clock.Now()) {
		return ErrStillCooling
	}
	delete(st.cooldowns, holder)
	st.base.Mint(beneficiary, entry.UnderlyingAmount)
	return nil
}

func (t *Token) burnFrom(from common.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.burn(from, amount)
}

// Slot simulates one custodial slot contract owned by the strategy.
type Slot struct {
	addr        common.Address
	staked      *StakedToken
	base        *Token
	beneficiary common.Address
}

// NewSlot creates a slot whose collections are credited to the beneficiary.
func NewSlot(staked *StakedToken, base *Token, beneficiary common.Address) *Slot {
	return &Slot{
		addr:        NewAddress(),
		staked:      staked,
		base:        base,
		beneficiary: beneficiary,
	}
}

// Address implements slots.Slot.
func (s *Slot) Address() common.Address { return s.addr }

// Cooldown implements slots.Slot: queues the slot's entire staked balance.
func (s *Slot) Cooldown() (sdkmath.Int, error) {
	return s.staked.startCooldown(s.addr)
}

// Unstake implements slots.Slot: collects a matured cooldown for the strategy.
func (s *Slot) Unstake() error {
	return s.staked.collect(s.addr, s.beneficiary)
}

// Recall implements slots.Slot. A zero amount recalls the full balance.
func (s *Slot) Recall(token common.Address, amount sdkmath.Int) error {
	var ledger *Token
	switch token {
	case s.staked.Address():
		ledger = s.staked.Token
	case s.base.Address():
		ledger = s.base
	default:
		return fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
	}
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	if amount.IsNil() || amount.IsZero() {
		amount = ledger.balance(s.addr)
	}
	return ledger.move(s.addr, s.beneficiary, amount)
}

// Clone implements slots.Slot: deploys a structural copy at a fresh address.
func (s *Slot) Clone() (slots.Slot, error) {
	return NewSlot(s.staked, s.base, s.beneficiary), nil
}
