// Package staking defines the interface boundary to the external yield-bearing
// staked token and its plain ERC-20 underlying. The engine never assumes more
// than these contracts expose; live implementations sit in internal/chain and
// an in-memory implementation in internal/sim backs tests and dry runs.
package staking

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/meridianyield/scm/internal/types"
)

// Token is the minimal ERC-20 surface the strategy needs: balance reads for
// liquidity accounting and transfers for slot funding and sweeps.
type Token interface {
	Address() common.Address
	BalanceOf(holder common.Address) (sdkmath.Int, error)
	Transfer(to common.Address, amount sdkmath.Int) error
}

// StakedToken is the staking primitive. A cooldown duration of zero means
// redemptions are instant and no slot orchestration is needed.
type StakedToken interface {
	Token

	// CooldownDuration returns the mandatory wait between requesting
	// unstaking and being able to collect the underlying.
	CooldownDuration() (time.Duration, error)

	// Cooldowns returns the holder's single in-flight cooldown record.
	// Holders with no cooldown get a zero entry.
	Cooldowns(holder common.Address) (types.CooldownEntry, error)

	// Redeem burns shares from owner and sends the underlying to receiver.
	// Only callable when CooldownDuration is zero. Returns assets released.
	Redeem(shares sdkmath.Int, receiver, owner common.Address) (sdkmath.Int, error)

	// MaxRedeem returns the holder's redeemable-share ceiling.
	MaxRedeem(holder common.Address) (sdkmath.Int, error)

	// ConvertToAssets prices shares in base-token terms at the current rate.
	ConvertToAssets(shares sdkmath.Int) (sdkmath.Int, error)
}
