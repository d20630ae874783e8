package auction

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start  = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	length = 6 * time.Hour
)

func TestIsLive(t *testing.T) {
	assert.False(t, IsLive(time.Time{}, length, start), "never-kicked auction must not be live")
	assert.False(t, IsLive(start, length, start.Add(-time.Second)), "before kick")
	assert.True(t, IsLive(start, length, start), "window start is inclusive")
	assert.True(t, IsLive(start, length, start.Add(length)), "window end is inclusive")
	assert.False(t, IsLive(start, length, start.Add(length+time.Second)), "past window")
}

func TestPriceLinearDecay(t *testing.T) {
	startingPrice := sdkmath.NewIntWithDecimal(101, 16) // 1.01
	rangeSize := sdkmath.NewIntWithDecimal(3, 16)       // 0.03
	available := sdkmath.NewInt(1)

	// At kick time the quote is the full starting price.
	p := Price(startingPrice, rangeSize, length, start, available, start)
	assert.True(t, p.Equal(startingPrice), "got %s", p)

	// Halfway through, half the range has decayed.
	p = Price(startingPrice, rangeSize, length, start, available, start.Add(length/2))
	expected := startingPrice.Sub(rangeSize.QuoRaw(2))
	assert.True(t, p.Equal(expected), "got %s want %s", p, expected)

	// At the window end the quote is startingPrice minus the full range.
	p = Price(startingPrice, rangeSize, length, start, available, start.Add(length))
	expected = startingPrice.Sub(rangeSize)
	assert.True(t, p.Equal(expected), "got %s want %s", p, expected)
}

func TestPriceSubSecondWindow(t *testing.T) {
	startingPrice := sdkmath.NewIntWithDecimal(101, 16)
	rangeSize := sdkmath.NewIntWithDecimal(3, 16)
	available := sdkmath.NewInt(1)
	short := 500 * time.Millisecond

	p := Price(startingPrice, rangeSize, short, start, available, start.Add(100*time.Millisecond))
	expected := startingPrice.Sub(rangeSize.QuoRaw(5))
	assert.True(t, p.Equal(expected), "got %s want %s", p, expected)

	p = Price(startingPrice, rangeSize, short, start, available, start.Add(short))
	assert.True(t, p.Equal(startingPrice.Sub(rangeSize)), "got %s", p)
}

func TestPriceZeroOutsideWindow(t *testing.T) {
	startingPrice := sdkmath.NewIntWithDecimal(101, 16)
	rangeSize := sdkmath.NewIntWithDecimal(3, 16)
	available := sdkmath.NewInt(1)

	assert.True(t, Price(startingPrice, rangeSize, length, time.Time{}, available, start).IsZero(),
		"never kicked")
	assert.True(t, Price(startingPrice, rangeSize, length, start, available, start.Add(length+time.Second)).IsZero(),
		"expired window")
	assert.True(t, Price(startingPrice, rangeSize, length, start, sdkmath.ZeroInt(), start).IsZero(),
		"nothing available")
}

func TestDiscountBpsTruncates(t *testing.T) {
	// 49.9 bps truncates to 49, not 50.
	bps := DiscountBps(sdkmath.NewInt(100_499), sdkmath.NewInt(100_000))
	assert.True(t, bps.Equal(sdkmath.NewInt(49)), "got %s", bps)

	bps = DiscountBps(sdkmath.NewInt(100_500), sdkmath.NewInt(100_000))
	assert.True(t, bps.Equal(sdkmath.NewInt(50)), "got %s", bps)
}

func TestCheckDiscount(t *testing.T) {
	take := sdkmath.NewInt(100_000)

	// Exactly at the floor passes.
	require.NoError(t, CheckDiscount(sdkmath.NewInt(100_500), take, 50))

	// One unit short of the floor is rejected.
	err := CheckDiscount(sdkmath.NewInt(100_499), take, 50)
	require.ErrorIs(t, err, ErrDiscountTooLow)

	// Breaking even is never enough, even with a zero floor.
	err = CheckDiscount(take, take, 0)
	require.ErrorIs(t, err, ErrNotOverpaying)

	err = CheckDiscount(sdkmath.NewInt(99_000), take, 50)
	require.ErrorIs(t, err, ErrNotOverpaying)

	err = CheckDiscount(sdkmath.NewInt(1), sdkmath.ZeroInt(), 50)
	require.ErrorIs(t, err, ErrZeroTake)
}
