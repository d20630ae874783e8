// Package slots manages the strategy's custodial cooldown slots: an
// append-only, bounded pool of isolated holding accounts, each able to carry
// one in-flight cooldown. Multiple slots exist because the staking primitive
// permits only one active cooldown per holder.
package slots

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// Slot is one custodial holding account owned exclusively by the strategy.
type Slot interface {
	// Address is the slot's on-chain identity.
	Address() common.Address

	// Cooldown queues the slot's entire staked balance for unstaking and
	// returns the amount queued.
	Cooldown() (sdkmath.Int, error)

	// Unstake collects a matured cooldown; the released base token is held
	// by the strategy, not the slot.
	Unstake() error

	// Recall retrieves tokens from the slot back to the strategy. A zero
	// amount recalls the full balance.
	Recall(token common.Address, amount sdkmath.Int) error

	// Clone deploys a structural copy of this slot and returns its handle.
	Clone() (Slot, error)
}
