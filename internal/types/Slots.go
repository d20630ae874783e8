/*

This file contains the types describing custodial cooldown slots. Slot state is
never stored locally; it is re-derived from the staking contract's cooldown
record on every read so that privileged external mutations (emergency recalls,
manual unstakes) can never leave the manager holding a stale ledger.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// SlotStatus is the derived lifecycle state of one custodial slot.
type SlotStatus string

const (
	// SlotIdle means the slot has no value in cooldown and can accept a new one.
	SlotIdle SlotStatus = "IDLE"
	// SlotCooling means the slot holds value whose cooldown has not elapsed yet.
	SlotCooling SlotStatus = "COOLING"
	// SlotMatured means the slot's cooldown has elapsed and the value is collectible.
	SlotMatured SlotStatus = "MATURED"
)

// CooldownEntry mirrors the staking contract's cooldowns(holder) record.
// A zero UnderlyingAmount means the holder has no cooldown in flight.
type CooldownEntry struct {
	UnderlyingAmount sdkmath.Int `json:"underlying_amount"`
	CooldownEnd      time.Time   `json:"cooldown_end"`
}

// StatusAt classifies the entry relative to the given instant.
func (e CooldownEntry) StatusAt(now time.Time) SlotStatus {
	if e.UnderlyingAmount.IsNil() || e.UnderlyingAmount.IsZero() {
		return SlotIdle
	}
	if e.CooldownEnd.After(now) {
		return SlotCooling
	}
	return SlotMatured
}

// SlotView is a point-in-time projection of one slot, used for liquidity
// accounting and for the dashboard. Index is the slot's creation-order
// position in the registry (index 0 is the original slot).
type SlotView struct {
	Index            int            `json:"index"`
	Address          common.Address `json:"address"`
	Status           SlotStatus     `json:"status"`
	UnderlyingAmount sdkmath.Int    `json:"underlying_amount"`
	CooldownEnd      time.Time      `json:"cooldown_end,omitempty"`
}
