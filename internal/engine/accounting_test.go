package engine

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLadder puts the world into a mixed state: loose base and staked on the
// strategy, one matured slot and one cooling slot, and an open auction
// reservation.
func buildLadder(t *testing.T, w *world) {
	t.Helper()

	w.base.Mint(w.self, sdkmath.NewInt(100))
	w.staked.Mint(w.self, sdkmath.NewInt(400))

	// Slot 0 matures after one duration; slot 1 is funded later and still
	// cooling when the clock stops.
	w.staked.Mint(w.slot(0).Address(), sdkmath.NewInt(200))
	_, err := w.slot(0).Cooldown()
	require.NoError(t, err)

	w.clock.Advance(gatedDuration)

	w.staked.Mint(w.slot(1).Address(), sdkmath.NewInt(300))
	_, err = w.slot(1).Cooldown()
	require.NoError(t, err)

	w.book.Kick(sdkmath.NewInt(50))
}

func TestLiquidityReportReconciles(t *testing.T) {
	w := newWorld(t, gatedDuration, 2, testParams())
	buildLadder(t, w)

	report, err := w.strategy.LiquidityReport()
	require.NoError(t, err)

	assert.True(t, report.LooseBase.Equal(sdkmath.NewInt(100)))
	assert.True(t, report.LooseStaked.Equal(sdkmath.NewInt(400)))
	assert.True(t, report.LooseStakedValue.Equal(sdkmath.NewInt(400)), "1:1 rate")
	assert.True(t, report.CoolingTotal.Equal(sdkmath.NewInt(500)), "cooling includes matured: got %s", report.CoolingTotal)
	assert.True(t, report.MaturedTotal.Equal(sdkmath.NewInt(200)))
	assert.True(t, report.AuctionReserved.Equal(sdkmath.NewInt(50)))

	// loose base + everything in cooldown + staked value at current rate
	assert.True(t, report.TotalAssets.Equal(sdkmath.NewInt(1_000)), "got %s", report.TotalAssets)

	// Gated mode: the staked balance is not withdrawable, matured is, and the
	// auction reservation comes off the top.
	assert.True(t, report.Withdrawable.Equal(sdkmath.NewInt(250)), "got %s", report.Withdrawable)

	assert.True(t, report.DepositCapacity.Equal(sdkmath.NewInt(999_000)), "got %s", report.DepositCapacity)
}

func TestWithdrawLimitCountsStakedInInstantMode(t *testing.T) {
	w := newWorld(t, 0, 1, testParams())
	w.base.Mint(w.self, sdkmath.NewInt(100))
	w.staked.Mint(w.self, sdkmath.NewInt(400))

	limit, err := w.strategy.AvailableWithdrawLimit()
	require.NoError(t, err)
	assert.True(t, limit.Equal(sdkmath.NewInt(500)), "got %s", limit)
}

func TestWithdrawLimitFloorsAtZero(t *testing.T) {
	w := newWorld(t, gatedDuration, 1, testParams())
	w.base.Mint(w.self, sdkmath.NewInt(100))
	w.book.Kick(sdkmath.NewInt(10_000))

	limit, err := w.strategy.AvailableWithdrawLimit()
	require.NoError(t, err)
	assert.True(t, limit.IsZero(), "got %s", limit)
}

func TestWithdrawLimitExcludesCoolingValue(t *testing.T) {
	w := newWorld(t, gatedDuration, 1, testParams())
	w.staked.Mint(w.slot(0).Address(), sdkmath.NewInt(5_000))
	_, err := w.slot(0).Cooldown()
	require.NoError(t, err)

	limit, err := w.strategy.AvailableWithdrawLimit()
	require.NoError(t, err)
	assert.True(t, limit.IsZero(), "cooling value must not be promised: got %s", limit)

	// Once matured it becomes withdrawable without any action.
	w.clock.Advance(gatedDuration)
	limit, err = w.strategy.AvailableWithdrawLimit()
	require.NoError(t, err)
	assert.True(t, limit.Equal(sdkmath.NewInt(5_000)), "got %s", limit)
}

func TestDepositLimitZeroWhenShutdown(t *testing.T) {
	w := newWorld(t, gatedDuration, 1, testParams())
	w.acct.SetShutdown(true)

	limit, err := w.strategy.AvailableDepositLimit()
	require.NoError(t, err)
	assert.True(t, limit.IsZero())
}

func TestDepositLimitZeroWhenCeilingDisabled(t *testing.T) {
	params := testParams()
	params.DepositLimit = sdkmath.ZeroInt()
	w := newWorld(t, gatedDuration, 1, params)

	limit, err := w.strategy.AvailableDepositLimit()
	require.NoError(t, err)
	assert.True(t, limit.IsZero())
}

func TestDepositLimitZeroWhenFull(t *testing.T) {
	params := testParams()
	params.DepositLimit = sdkmath.NewInt(1_000)
	w := newWorld(t, gatedDuration, 1, params)
	w.base.Mint(w.self, sdkmath.NewInt(1_500))

	limit, err := w.strategy.AvailableDepositLimit()
	require.NoError(t, err)
	assert.True(t, limit.IsZero())
}

func TestTotalAssetsTracksExchangeRate(t *testing.T) {
	w := newWorld(t, gatedDuration, 1, testParams())
	w.staked.Mint(w.self, sdkmath.NewInt(1_000))

	total, err := w.strategy.EstimatedTotalAssets()
	require.NoError(t, err)
	assert.True(t, total.Equal(sdkmath.NewInt(1_000)))

	// Yield accrues: 1.1 base per staked.
	w.staked.SetRate(sdkmath.NewInt(11), sdkmath.NewInt(10))
	total, err = w.strategy.EstimatedTotalAssets()
	require.NoError(t, err)
	assert.True(t, total.Equal(sdkmath.NewInt(1_100)), "got %s", total)
}
