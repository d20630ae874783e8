package utils

import (
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigToSDK(t *testing.T) {
	assert.True(t, BigToSDK(nil).IsZero())
	assert.True(t, BigToSDK(big.NewInt(42)).Equal(sdkmath.NewInt(42)))

	// Values beyond int64 survive the round trip.
	huge, ok := new(big.Int).SetString("100000000000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, huge.String(), BigToSDK(huge).String())
}

func TestSDKToBig(t *testing.T) {
	assert.Equal(t, int64(0), SDKToBig(sdkmath.Int{}).Int64())
	assert.Equal(t, int64(42), SDKToBig(sdkmath.NewInt(42)).Int64())
}

func TestSDKIntToFloat64(t *testing.T) {
	got, err := SDKIntToFloat64(sdkmath.NewIntWithDecimal(15, 17), 18)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got, 1e-9)

	got, err = SDKIntToFloat64(sdkmath.NewInt(123), 0)
	require.NoError(t, err)
	assert.Equal(t, 123.0, got)
}

func TestSDKIntToFloat64Rejections(t *testing.T) {
	_, err := SDKIntToFloat64(sdkmath.NewInt(1), -1)
	require.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = SDKIntToFloat64(sdkmath.NewInt(1), 19)
	require.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = SDKIntToFloat64(sdkmath.Int{}, 18)
	require.ErrorIs(t, err, ErrAmountNil)

	_, err = SDKIntToFloat64(sdkmath.NewInt(-1), 18)
	require.ErrorIs(t, err, ErrAmountNegative)
}

func TestWeiToGwei(t *testing.T) {
	assert.Equal(t, 0.0, WeiToGwei(nil))
	assert.Equal(t, 1.0, WeiToGwei(big.NewInt(1_000_000_000)))
	assert.InDelta(t, 0.5, WeiToGwei(big.NewInt(500_000_000)), 1e-12)
}
