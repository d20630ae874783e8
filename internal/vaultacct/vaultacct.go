// Package vaultacct defines the interface boundary to the vault/share
// accounting layer. The strategy consumes it for the management role, the
// shutdown flag and upstream total-assets; it produces its own total-assets
// figure and deposit/withdraw limits back to it.
package vaultacct

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// Accounting is the consumed surface of the vault accounting collaborator.
type Accounting interface {
	// TotalAssets is the vault's trusted total-assets figure.
	TotalAssets() (sdkmath.Int, error)

	// Management is the privileged role allowed to mutate configuration,
	// add slots, recall and sweep.
	Management() (common.Address, error)

	// IsShutdown reports whether the vault has been shut down.
	IsShutdown() (bool, error)
}
