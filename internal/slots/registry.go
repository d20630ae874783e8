package slots

import (
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/meridianyield/scm/internal/staking"
	"github.com/meridianyield/scm/internal/types"
)

// MaxSlots is the hard cap on custodial slots. Seven concurrent cooldowns is
// enough to keep the full idle balance cycling with a week-long cooldown.
const MaxSlots = 7

// Error definitions for zero-tolerance error handling
var (
	ErrNoSlots      = errors.New("registry requires at least the original slot")
	ErrSlotCapacity = errors.New("slot capacity exceeded")
	ErrUnknownSlot  = errors.New("slot is not registered")
	ErrNilSlot      = errors.New("slot is nil")
)

// Registry is the ordered, append-only collection of custodial slots.
// Insertion order is creation order; index 0 is the original slot and is
// never removed. The registry holds handles only; cooldown state is always
// re-derived from the staking primitive.
type Registry struct {
	slots []Slot
}

// NewRegistry creates a registry seeded with the original slot.
func NewRegistry(original Slot) (*Registry, error) {
	if original == nil {
		return nil, ErrNilSlot
	}
	return &Registry{slots: []Slot{original}}, nil
}

// Add appends a slot, enforcing the hard cap.
func (r *Registry) Add(slot Slot) error {
	if slot == nil {
		return ErrNilSlot
	}
	if len(r.slots) >= MaxSlots {
		return fmt.Errorf("%w: already holding %d slots", ErrSlotCapacity, len(r.slots))
	}
	r.slots = append(r.slots, slot)
	return nil
}

// AddClone clones the original slot and appends the copy.
func (r *Registry) AddClone() (Slot, error) {
	if len(r.slots) >= MaxSlots {
		return nil, fmt.Errorf("%w: already holding %d slots", ErrSlotCapacity, len(r.slots))
	}
	clone, err := r.slots[0].Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to clone original slot: %w", err)
	}
	if err := r.Add(clone); err != nil {
		return nil, err
	}
	return clone, nil
}

// Len returns the number of registered slots.
func (r *Registry) Len() int {
	return len(r.slots)
}

// All returns the slots in creation order. The returned slice must not be
// mutated.
func (r *Registry) All() []Slot {
	return r.slots
}

// ByAddress resolves a registered slot by its address. Unknown addresses are
// rejected so manual operations can never touch an unmanaged account.
func (r *Registry) ByAddress(addr common.Address) (Slot, error) {
	for _, s := range r.slots {
		if s.Address() == addr {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSlot, addr.Hex())
}

// Views derives the point-in-time projection of every slot from the staking
// primitive. Slots without a cooldown record are Idle.
func (r *Registry) Views(st staking.StakedToken, now time.Time) ([]types.SlotView, error) {
	views := make([]types.SlotView, 0, len(r.slots))
	for i, s := range r.slots {
		entry, err := st.Cooldowns(s.Address())
		if err != nil {
			return nil, fmt.Errorf("failed to read cooldown for slot %d (%s): %w", i, s.Address().Hex(), err)
		}
		if entry.UnderlyingAmount.IsNil() {
			entry.UnderlyingAmount = sdkmath.ZeroInt()
		}
		views = append(views, types.SlotView{
			Index:            i,
			Address:          s.Address(),
			Status:           entry.StatusAt(now),
			UnderlyingAmount: entry.UnderlyingAmount,
			CooldownEnd:      entry.CooldownEnd,
		})
	}
	return views, nil
}
