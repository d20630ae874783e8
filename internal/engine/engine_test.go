package engine

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianyield/scm/internal/sim"
	"github.com/meridianyield/scm/internal/slots"
	"github.com/meridianyield/scm/internal/types"
)

const gatedDuration = 7 * 24 * time.Hour

// world wires a strategy to the in-memory collaborators for scenario tests.
type world struct {
	clock      *sim.Clock
	self       common.Address
	management common.Address
	base       *sim.Token
	staked     *sim.StakedToken
	registry   *slots.Registry
	book       *sim.Book
	acct       *sim.Accounting
	strategy   *Strategy
}

func testParams() types.StrategyParams {
	return types.StrategyParams{
		MaxTendBasefeeGwei:   40,
		MinDiscountBps:       50,
		MinCooldownAmount:    sdkmath.NewInt(1_000),
		MinAuctionAmount:     sdkmath.NewInt(1_000),
		MaxAuctionAmount:     sdkmath.NewInt(5_000),
		AuctionStartingPrice: sdkmath.NewIntWithDecimal(101, 16),
		AuctionRangeSize:     sdkmath.NewIntWithDecimal(3, 16),
		AuctionLength:        6 * time.Hour,
		AuctionCooldown:      24 * time.Hour,
		DepositLimit:         sdkmath.NewInt(1_000_000),
	}
}

// newWorld builds a strategy over fresh simulated collaborators with the
// given cooldown duration and slot count.
func newWorld(t *testing.T, duration time.Duration, slotCount int, params types.StrategyParams) *world {
	t.Helper()

	clock := sim.NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	self := sim.NewAddress()
	management := sim.NewAddress()

	base := sim.NewToken(sim.NewAddress(), self)
	staked := sim.NewStakedToken(sim.NewAddress(), self, base, duration, clock)

	registry, err := slots.NewRegistry(sim.NewSlot(staked, base, self))
	require.NoError(t, err)
	for i := 1; i < slotCount; i++ {
		require.NoError(t, registry.Add(sim.NewSlot(staked, base, self)))
	}

	book := sim.NewBook(clock)
	acct := sim.NewAccounting(management)

	strategy, err := New(Config{
		StakedToken: staked,
		BaseToken:   base,
		Registry:    registry,
		AuctionBook: book,
		Accounting:  acct,
		SelfAddress: self,
		Params:      params,
		Now:         clock.Now,
	})
	require.NoError(t, err)

	return &world{
		clock:      clock,
		self:       self,
		management: management,
		base:       base,
		staked:     staked,
		registry:   registry,
		book:       book,
		acct:       acct,
		strategy:   strategy,
	}
}

// slot returns the i-th registered slot.
func (w *world) slot(i int) slots.Slot {
	return w.registry.All()[i]
}

func (w *world) baseBalance(t *testing.T, holder common.Address) sdkmath.Int {
	t.Helper()
	b, err := w.base.BalanceOf(holder)
	require.NoError(t, err)
	return b
}

func (w *world) stakedBalance(t *testing.T, holder common.Address) sdkmath.Int {
	t.Helper()
	b, err := w.staked.BalanceOf(holder)
	require.NoError(t, err)
	return b
}

func TestAdjustPositionFundsOneSlotPerPass(t *testing.T) {
	w := newWorld(t, gatedDuration, 3, testParams())
	w.staked.Mint(w.self, sdkmath.NewInt(1_200))

	actions, err := w.strategy.AdjustPosition()
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Contains(t, actions[0], "dispatched 1200 to slot 0")

	// The entire loose balance went to slot 0; the other slots stay idle.
	assert.True(t, w.stakedBalance(t, w.self).IsZero())
	views, err := w.strategy.SlotViews()
	require.NoError(t, err)
	assert.Equal(t, types.SlotCooling, views[0].Status)
	assert.True(t, views[0].UnderlyingAmount.Equal(sdkmath.NewInt(1_200)))
	assert.Equal(t, types.SlotIdle, views[1].Status)
	assert.Equal(t, types.SlotIdle, views[2].Status)

	// A second immediate pass has nothing to do.
	actions, err = w.strategy.AdjustPosition()
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestAdjustPositionCollectsBeforeRefunding(t *testing.T) {
	w := newWorld(t, gatedDuration, 2, testParams())
	w.staked.Mint(w.self, sdkmath.NewInt(1_200))

	_, err := w.strategy.AdjustPosition()
	require.NoError(t, err)

	w.clock.Advance(gatedDuration)
	w.staked.Mint(w.self, sdkmath.NewInt(2_000))

	actions, err := w.strategy.AdjustPosition()
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Contains(t, actions[0], "collected 1200 from slot 0")
	assert.Contains(t, actions[1], "dispatched 2000 to slot 0")

	// Collection landed as base, and slot 0 carries the fresh cooldown.
	assert.True(t, w.baseBalance(t, w.self).Equal(sdkmath.NewInt(1_200)))
	views, err := w.strategy.SlotViews()
	require.NoError(t, err)
	assert.Equal(t, types.SlotCooling, views[0].Status)
	assert.True(t, views[0].UnderlyingAmount.Equal(sdkmath.NewInt(2_000)))
}

func TestAdjustPositionHoldsBelowMinimum(t *testing.T) {
	w := newWorld(t, gatedDuration, 1, testParams())
	w.staked.Mint(w.self, sdkmath.NewInt(999))

	actions, err := w.strategy.AdjustPosition()
	require.NoError(t, err)
	assert.Empty(t, actions)
	assert.True(t, w.stakedBalance(t, w.self).Equal(sdkmath.NewInt(999)))
}

func TestAdjustPositionInstantMode(t *testing.T) {
	w := newWorld(t, 0, 1, testParams())
	w.staked.Mint(w.self, sdkmath.NewInt(1_000))

	actions, err := w.strategy.AdjustPosition()
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Contains(t, actions[0], "redeemed 1000 staked directly")

	assert.True(t, w.stakedBalance(t, w.self).IsZero())
	assert.True(t, w.baseBalance(t, w.self).Equal(sdkmath.NewInt(1_000)))
}

func TestAdjustPositionRespectsRedeemCeiling(t *testing.T) {
	w := newWorld(t, gatedDuration, 1, testParams())
	w.staked.Mint(w.self, sdkmath.NewInt(1_200))
	w.staked.SetMaxRedeemCap(sdkmath.NewInt(500))

	actions, err := w.strategy.AdjustPosition()
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Contains(t, actions[0], "dispatched 500 to slot 0")
	assert.True(t, w.stakedBalance(t, w.self).Equal(sdkmath.NewInt(700)))
}

func TestAdjustPositionSkipsCoolingSlots(t *testing.T) {
	w := newWorld(t, gatedDuration, 2, testParams())
	w.staked.Mint(w.self, sdkmath.NewInt(1_500))

	_, err := w.strategy.AdjustPosition()
	require.NoError(t, err)

	// Slot 0 is cooling; fresh balance must go into slot 1.
	w.staked.Mint(w.self, sdkmath.NewInt(1_500))
	actions, err := w.strategy.AdjustPosition()
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Contains(t, actions[0], "dispatched 1500 to slot 1")
}

func TestFreeUpAssetCollectsMatured(t *testing.T) {
	w := newWorld(t, gatedDuration, 2, testParams())

	w.staked.Mint(w.slot(0).Address(), sdkmath.NewInt(12_000))
	_, err := w.slot(0).Cooldown()
	require.NoError(t, err)
	w.clock.Advance(gatedDuration)

	require.NoError(t, w.strategy.FreeUpAsset(sdkmath.NewInt(10_000)))
	assert.True(t, w.baseBalance(t, w.self).Equal(sdkmath.NewInt(12_000)))
}

func TestFreeUpAssetRedeemsInInstantMode(t *testing.T) {
	w := newWorld(t, 0, 1, testParams())
	w.staked.Mint(w.self, sdkmath.NewInt(1_000))

	require.NoError(t, w.strategy.FreeUpAsset(sdkmath.NewInt(600)))
	assert.True(t, w.baseBalance(t, w.self).Equal(sdkmath.NewInt(600)))
	assert.True(t, w.stakedBalance(t, w.self).Equal(sdkmath.NewInt(400)))
}

func TestAdjustPositionConservesTotalAssets(t *testing.T) {
	w := newWorld(t, gatedDuration, 2, testParams())
	w.staked.SetRate(sdkmath.NewInt(11), sdkmath.NewInt(10))
	w.staked.Mint(w.self, sdkmath.NewInt(1_333))

	before, err := w.strategy.EstimatedTotalAssets()
	require.NoError(t, err)

	// Dispatch into a slot: loose staked value becomes cooling value.
	_, err = w.strategy.AdjustPosition()
	require.NoError(t, err)
	after, err := w.strategy.EstimatedTotalAssets()
	require.NoError(t, err)
	assert.True(t, after.Equal(before), "dispatch pass: got %s want %s", after, before)

	// Collection: cooling value becomes loose base.
	w.clock.Advance(gatedDuration)
	_, err = w.strategy.AdjustPosition()
	require.NoError(t, err)
	after, err = w.strategy.EstimatedTotalAssets()
	require.NoError(t, err)
	assert.True(t, after.Equal(before), "collection pass: got %s want %s", after, before)
}

func TestAdjustPositionConservesTotalAssetsInstantMode(t *testing.T) {
	w := newWorld(t, 0, 1, testParams())
	w.staked.SetRate(sdkmath.NewInt(11), sdkmath.NewInt(10))
	w.staked.Mint(w.self, sdkmath.NewInt(1_000))

	before, err := w.strategy.EstimatedTotalAssets()
	require.NoError(t, err)

	_, err = w.strategy.AdjustPosition()
	require.NoError(t, err)

	after, err := w.strategy.EstimatedTotalAssets()
	require.NoError(t, err)
	assert.True(t, after.Equal(before), "got %s want %s", after, before)
	assert.True(t, w.stakedBalance(t, w.self).IsZero())
	assert.True(t, w.baseBalance(t, w.self).Equal(sdkmath.NewInt(1_100)))
}

func TestFreeUpAssetLeavesCoolingValueAlone(t *testing.T) {
	w := newWorld(t, gatedDuration, 1, testParams())

	w.staked.Mint(w.slot(0).Address(), sdkmath.NewInt(5_000))
	_, err := w.slot(0).Cooldown()
	require.NoError(t, err)

	// Still cooling: nothing can be delivered, and that is not an error.
	require.NoError(t, w.strategy.FreeUpAsset(sdkmath.NewInt(1_000)))
	assert.True(t, w.baseBalance(t, w.self).IsZero())

	views, err := w.strategy.SlotViews()
	require.NoError(t, err)
	assert.Equal(t, types.SlotCooling, views[0].Status)
}
