package scm

import (
	"context"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianyield/scm/internal/engine"
	"github.com/meridianyield/scm/internal/sim"
	"github.com/meridianyield/scm/internal/slots"
	"github.com/meridianyield/scm/internal/types"
)

type keeperWorld struct {
	keeper *Keeper
	staked *sim.StakedToken
	self   common.Address
}

func testStrategy(t *testing.T, maxBasefee uint64) (*engine.Strategy, *sim.StakedToken, common.Address) {
	t.Helper()

	clock := sim.NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	self := sim.NewAddress()
	base := sim.NewToken(sim.NewAddress(), self)
	staked := sim.NewStakedToken(sim.NewAddress(), self, base, 24*time.Hour, clock)

	registry, err := slots.NewRegistry(sim.NewSlot(staked, base, self))
	require.NoError(t, err)

	strategy, err := engine.New(engine.Config{
		StakedToken: staked,
		BaseToken:   base,
		Registry:    registry,
		AuctionBook: sim.NewBook(clock),
		Accounting:  sim.NewAccounting(sim.NewAddress()),
		SelfAddress: self,
		Params: types.StrategyParams{
			MaxTendBasefeeGwei:   maxBasefee,
			MinDiscountBps:       50,
			MinCooldownAmount:    sdkmath.NewInt(1_000),
			MinAuctionAmount:     sdkmath.NewInt(1_000),
			MaxAuctionAmount:     sdkmath.NewInt(5_000),
			AuctionStartingPrice: sdkmath.NewIntWithDecimal(101, 16),
			AuctionRangeSize:     sdkmath.NewIntWithDecimal(3, 16),
			AuctionLength:        6 * time.Hour,
			AuctionCooldown:      24 * time.Hour,
			DepositLimit:         sdkmath.NewInt(1_000_000),
		},
		Now: clock.Now,
	})
	require.NoError(t, err)
	return strategy, staked, self
}

func newTestKeeper(t *testing.T, maxBasefee uint64, fee float64) keeperWorld {
	t.Helper()
	strategy, staked, self := testStrategy(t, maxBasefee)
	keeper, err := NewKeeper(Config{
		Strategy:      strategy,
		Basefee:       StaticBasefee(fee),
		ConfigName:    DEFAULT_CONFIG_NAME,
		ConfigVersion: DEFAULT_CONFIG_VERSION,
	})
	require.NoError(t, err)
	return keeperWorld{keeper: keeper, staked: staked, self: self}
}

func TestNewKeeperValidatesConfig(t *testing.T) {
	strategy, _, _ := testStrategy(t, 40)

	_, err := NewKeeper(Config{Basefee: StaticBasefee(0), ConfigName: "x", ConfigVersion: 1})
	require.Error(t, err)

	_, err = NewKeeper(Config{Strategy: strategy, ConfigName: "x", ConfigVersion: 1})
	require.Error(t, err)

	_, err = NewKeeper(Config{Strategy: strategy, Basefee: StaticBasefee(0), ConfigVersion: 1})
	require.Error(t, err)

	_, err = NewKeeper(Config{Strategy: strategy, Basefee: StaticBasefee(0), ConfigName: "x"})
	require.Error(t, err)
}

func TestShouldTendGatesOnBasefee(t *testing.T) {
	kw := newTestKeeper(t, 40, 55)
	ok, reason, err := kw.keeper.ShouldTend(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, reason, "above limit")

	kw = newTestKeeper(t, 40, 12)
	ok, reason, err = kw.keeper.ShouldTend(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestShouldTendZeroCeilingDisablesGate(t *testing.T) {
	kw := newTestKeeper(t, 0, 900)
	ok, _, err := kw.keeper.ShouldTend(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunPassWithoutDatabase(t *testing.T) {
	kw := newTestKeeper(t, 40, 12)
	kw.staked.Mint(kw.self, sdkmath.NewInt(2_000))

	// Two passes back to back; persistence is skipped and the fallback
	// counter advances.
	kw.keeper.RunPass(context.Background())
	kw.keeper.RunPass(context.Background())
	assert.Equal(t, 2, kw.keeper.passCount)

	// The first pass dispatched the loose staked balance into a slot.
	report, err := kw.keeper.strategy.LiquidityReport()
	require.NoError(t, err)
	assert.True(t, report.CoolingTotal.Equal(sdkmath.NewInt(2_000)))
}

func TestRunPassSkipsOnHighBasefee(t *testing.T) {
	kw := newTestKeeper(t, 40, 80)
	kw.staked.Mint(kw.self, sdkmath.NewInt(2_000))

	kw.keeper.RunPass(context.Background())

	// Gated out: nothing was dispatched into a slot.
	report, err := kw.keeper.strategy.LiquidityReport()
	require.NoError(t, err)
	assert.True(t, report.CoolingTotal.IsZero())
	assert.True(t, report.LooseStaked.Equal(sdkmath.NewInt(2_000)))
}
