package slots

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianyield/scm/internal/types"
)

var addrCounter byte

func testAddr() common.Address {
	addrCounter++
	var a common.Address
	a[19] = addrCounter
	return a
}

// fakeSlot is a no-chain slot handle; Clone hands out fresh addresses.
type fakeSlot struct {
	addr common.Address
}

func (f *fakeSlot) Address() common.Address         { return f.addr }
func (f *fakeSlot) Cooldown() (sdkmath.Int, error)  { return sdkmath.ZeroInt(), nil }
func (f *fakeSlot) Unstake() error                  { return nil }
func (f *fakeSlot) Recall(common.Address, sdkmath.Int) error { return nil }
func (f *fakeSlot) Clone() (Slot, error)            { return &fakeSlot{addr: testAddr()}, nil }

// fakeStaked serves canned cooldown records keyed by holder.
type fakeStaked struct {
	entries map[common.Address]types.CooldownEntry
}

func (f *fakeStaked) Address() common.Address                       { return common.Address{} }
func (f *fakeStaked) BalanceOf(common.Address) (sdkmath.Int, error) { return sdkmath.ZeroInt(), nil }
func (f *fakeStaked) Transfer(common.Address, sdkmath.Int) error    { return nil }
func (f *fakeStaked) CooldownDuration() (time.Duration, error)      { return 0, nil }
func (f *fakeStaked) Redeem(sdkmath.Int, common.Address, common.Address) (sdkmath.Int, error) {
	return sdkmath.ZeroInt(), nil
}
func (f *fakeStaked) MaxRedeem(common.Address) (sdkmath.Int, error) { return sdkmath.ZeroInt(), nil }
func (f *fakeStaked) ConvertToAssets(shares sdkmath.Int) (sdkmath.Int, error) {
	return shares, nil
}
func (f *fakeStaked) Cooldowns(holder common.Address) (types.CooldownEntry, error) {
	return f.entries[holder], nil
}

func TestNewRegistryRequiresOriginal(t *testing.T) {
	_, err := NewRegistry(nil)
	require.ErrorIs(t, err, ErrNilSlot)
}

func TestRegistryEnforcesCapacity(t *testing.T) {
	reg, err := NewRegistry(&fakeSlot{addr: testAddr()})
	require.NoError(t, err)

	for i := 1; i < MaxSlots; i++ {
		require.NoError(t, reg.Add(&fakeSlot{addr: testAddr()}))
	}
	assert.Equal(t, MaxSlots, reg.Len())

	err = reg.Add(&fakeSlot{addr: testAddr()})
	require.ErrorIs(t, err, ErrSlotCapacity)
	_, err = reg.AddClone()
	require.ErrorIs(t, err, ErrSlotCapacity)
}

func TestRegistryRejectsNilSlot(t *testing.T) {
	reg, err := NewRegistry(&fakeSlot{addr: testAddr()})
	require.NoError(t, err)
	require.ErrorIs(t, reg.Add(nil), ErrNilSlot)
}

func TestAddCloneAppendsCopyOfOriginal(t *testing.T) {
	original := &fakeSlot{addr: testAddr()}
	reg, err := NewRegistry(original)
	require.NoError(t, err)

	clone, err := reg.AddClone()
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	assert.NotEqual(t, original.Address(), clone.Address())
	assert.Equal(t, clone.Address(), reg.All()[1].Address())
}

func TestByAddressRejectsUnknown(t *testing.T) {
	reg, err := NewRegistry(&fakeSlot{addr: testAddr()})
	require.NoError(t, err)

	_, err = reg.ByAddress(testAddr())
	require.ErrorIs(t, err, ErrUnknownSlot)
}

func TestViewsDeriveStatusFromCooldownRecords(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	idle := &fakeSlot{addr: testAddr()}
	cooling := &fakeSlot{addr: testAddr()}
	matured := &fakeSlot{addr: testAddr()}

	reg, err := NewRegistry(idle)
	require.NoError(t, err)
	require.NoError(t, reg.Add(cooling))
	require.NoError(t, reg.Add(matured))

	st := &fakeStaked{entries: map[common.Address]types.CooldownEntry{
		cooling.Address(): {CooldownEnd: now.Add(time.Hour), UnderlyingAmount: sdkmath.NewInt(300)},
		matured.Address(): {CooldownEnd: now, UnderlyingAmount: sdkmath.NewInt(200)},
	}}

	views, err := reg.Views(st, now)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, types.SlotIdle, views[0].Status)
	assert.True(t, views[0].UnderlyingAmount.IsZero(), "missing records must normalize to zero")

	assert.Equal(t, types.SlotCooling, views[1].Status)
	assert.True(t, views[1].UnderlyingAmount.Equal(sdkmath.NewInt(300)))

	assert.Equal(t, types.SlotMatured, views[2].Status)
	assert.Equal(t, 2, views[2].Index)
}
