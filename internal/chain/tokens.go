package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/meridianyield/scm/internal/types"
	"github.com/meridianyield/scm/internal/utils"
)

const callTimeout = 30 * time.Second

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}

// TokenClient is the live ERC-20 binding used for the strategy's base asset
// and for arbitrary sweep targets.
type TokenClient struct {
	client *Client
	addr   common.Address
}

// NewTokenClient binds an ERC-20 at addr.
func NewTokenClient(client *Client, addr common.Address) *TokenClient {
	return &TokenClient{client: client, addr: addr}
}

func (t *TokenClient) Address() common.Address {
	return t.addr
}

func (t *TokenClient) BalanceOf(holder common.Address) (sdkmath.Int, error) {
	ctx, cancel := callContext()
	defer cancel()
	out, err := t.client.call(ctx, t.addr, erc20ABI, "balanceOf", holder)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return utils.BigToSDK(out[0].(*big.Int)), nil
}

func (t *TokenClient) Transfer(to common.Address, amount sdkmath.Int) error {
	ctx, cancel := callContext()
	defer cancel()
	return t.client.transact(ctx, t.addr, erc20ABI, "transfer", to, utils.SDKToBig(amount))
}

// StakedTokenClient is the live binding for the yield-bearing staked wrapper.
type StakedTokenClient struct {
	TokenClient
}

// NewStakedTokenClient binds the staked wrapper at addr.
func NewStakedTokenClient(client *Client, addr common.Address) *StakedTokenClient {
	return &StakedTokenClient{TokenClient{client: client, addr: addr}}
}

func (s *StakedTokenClient) CooldownDuration() (time.Duration, error) {
	ctx, cancel := callContext()
	defer cancel()
	out, err := s.client.call(ctx, s.addr, stakedTokenABI, "cooldownDuration")
	if err != nil {
		return 0, err
	}
	seconds := out[0].(*big.Int)
	return time.Duration(seconds.Int64()) * time.Second, nil
}

func (s *StakedTokenClient) Cooldowns(holder common.Address) (types.CooldownEntry, error) {
	ctx, cancel := callContext()
	defer cancel()
	out, err := s.client.call(ctx, s.addr, stakedTokenABI, "cooldowns", holder)
	if err != nil {
		return types.CooldownEntry{}, err
	}
	end := out[0].(*big.Int)
	entry := types.CooldownEntry{
		UnderlyingAmount: utils.BigToSDK(out[1].(*big.Int)),
	}
	if end.Sign() > 0 {
		entry.CooldownEnd = time.Unix(end.Int64(), 0).UTC()
	}
	return entry, nil
}

func (s *StakedTokenClient) Redeem(shares sdkmath.Int, receiver, owner common.Address) (sdkmath.Int, error) {
	ctx, cancel := callContext()
	defer cancel()
	// Preview the asset amount before sending; the receipt does not carry
	// return data.
	assets, err := s.ConvertToAssets(shares)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if err := s.client.transact(ctx, s.addr, stakedTokenABI, "redeem", utils.SDKToBig(shares), receiver, owner); err != nil {
		return sdkmath.Int{}, fmt.Errorf("redeem failed: %w", err)
	}
	return assets, nil
}

func (s *StakedTokenClient) MaxRedeem(holder common.Address) (sdkmath.Int, error) {
	ctx, cancel := callContext()
	defer cancel()
	out, err := s.client.call(ctx, s.addr, stakedTokenABI, "maxRedeem", holder)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return utils.BigToSDK(out[0].(*big.Int)), nil
}

func (s *StakedTokenClient) ConvertToAssets(shares sdkmath.Int) (sdkmath.Int, error) {
	ctx, cancel := callContext()
	defer cancel()
	out, err := s.client.call(ctx, s.addr, stakedTokenABI, "convertToAssets", utils.SDKToBig(shares))
	if err != nil {
		return sdkmath.Int{}, err
	}
	return utils.BigToSDK(out[0].(*big.Int)), nil
}
