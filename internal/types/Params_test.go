package types

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func validParams() StrategyParams {
	return StrategyParams{
		MaxTendBasefeeGwei:   40,
		MinDiscountBps:       50,
		MinCooldownAmount:    sdkmath.NewInt(1_000),
		MinAuctionAmount:     sdkmath.NewInt(5_000),
		MaxAuctionAmount:     sdkmath.NewInt(500_000),
		AuctionStartingPrice: sdkmath.NewIntWithDecimal(101, 16),
		AuctionRangeSize:     sdkmath.NewIntWithDecimal(3, 16),
		AuctionLength:        6 * time.Hour,
		AuctionCooldown:      24 * time.Hour,
		DepositLimit:         sdkmath.NewInt(10_000_000),
	}
}

func TestValidateAcceptsSaneParams(t *testing.T) {
	require.NoError(t, validParams().Validate())
}

func TestValidateRejectsUnsetInt(t *testing.T) {
	p := validParams()
	p.DepositLimit = sdkmath.Int{}
	require.ErrorIs(t, p.Validate(), ErrParamNil)
}

func TestValidateRejectsNegativeInt(t *testing.T) {
	p := validParams()
	p.MinCooldownAmount = sdkmath.NewInt(-1)
	require.ErrorIs(t, p.Validate(), ErrParamNegative)
}

func TestValidateRejectsZeroStartingPrice(t *testing.T) {
	p := validParams()
	p.AuctionStartingPrice = sdkmath.ZeroInt()
	require.ErrorIs(t, p.Validate(), ErrParamZero)
}

func TestValidateRejectsZeroLength(t *testing.T) {
	p := validParams()
	p.AuctionLength = 0
	require.ErrorIs(t, p.Validate(), ErrParamZero)
}

func TestValidateRejectsRangeOverStart(t *testing.T) {
	p := validParams()
	p.AuctionRangeSize = p.AuctionStartingPrice.AddRaw(1)
	require.ErrorIs(t, p.Validate(), ErrRangeExceedsStart)
}

func TestValidateAcceptsRangeEqualToStart(t *testing.T) {
	p := validParams()
	p.AuctionRangeSize = p.AuctionStartingPrice
	require.NoError(t, p.Validate())
}

func TestValidateRejectsShortAuctionCooldown(t *testing.T) {
	p := validParams()
	p.AuctionCooldown = p.AuctionLength - time.Second
	require.ErrorIs(t, p.Validate(), ErrCooldownTooShort)
}

func TestValidateRejectsInvertedAuctionBounds(t *testing.T) {
	p := validParams()
	p.MinAuctionAmount = p.MaxAuctionAmount.AddRaw(1)
	require.ErrorIs(t, p.Validate(), ErrAuctionBounds)
}

func TestStatusAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	empty := CooldownEntry{UnderlyingAmount: sdkmath.ZeroInt()}
	require.Equal(t, SlotIdle, empty.StatusAt(now))

	unset := CooldownEntry{}
	require.Equal(t, SlotIdle, unset.StatusAt(now))

	cooling := CooldownEntry{UnderlyingAmount: sdkmath.NewInt(1), CooldownEnd: now.Add(time.Second)}
	require.Equal(t, SlotCooling, cooling.StatusAt(now))

	// The expiry instant itself is already collectible.
	matured := CooldownEntry{UnderlyingAmount: sdkmath.NewInt(1), CooldownEnd: now}
	require.Equal(t, SlotMatured, matured.StatusAt(now))
}
