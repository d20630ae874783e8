package chain

import (
	"fmt"
	"math/big"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/meridianyield/scm/internal/utils"
)

// BookClient is the live binding for the Dutch auction order book. It is
// scoped to the single base-token auction at construction.
type BookClient struct {
	client    *Client
	addr      common.Address
	auctionID [32]byte
}

// NewBookClient binds the auction contract at addr and resolves the auction
// identifier for fromToken.
func NewBookClient(client *Client, addr, fromToken common.Address) (*BookClient, error) {
	ctx, cancel := callContext()
	defer cancel()
	out, err := client.call(ctx, addr, auctionABI, "getAuctionId", fromToken)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve auction id: %w", err)
	}
	return &BookClient{
		client:    client,
		addr:      addr,
		auctionID: out[0].([32]byte),
	}, nil
}

func (b *BookClient) Kicked() (time.Time, error) {
	ctx, cancel := callContext()
	defer cancel()
	out, err := b.client.call(ctx, b.addr, auctionABI, "kicked", b.auctionID)
	if err != nil {
		return time.Time{}, err
	}
	ts := out[0].(*big.Int)
	if ts.Sign() == 0 {
		return time.Time{}, nil
	}
	return time.Unix(ts.Int64(), 0).UTC(), nil
}

func (b *BookClient) AmountAvailable() (sdkmath.Int, error) {
	ctx, cancel := callContext()
	defer cancel()
	out, err := b.client.call(ctx, b.addr, auctionABI, "available", b.auctionID)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return utils.BigToSDK(out[0].(*big.Int)), nil
}

// VaultClient is the live binding for the vault that allocates into the
// strategy. It answers total debt, governance identity and shutdown state.
type VaultClient struct {
	client *Client
	addr   common.Address
}

// NewVaultClient binds the vault at addr.
func NewVaultClient(client *Client, addr common.Address) *VaultClient {
	return &VaultClient{client: client, addr: addr}
}

func (v *VaultClient) TotalAssets() (sdkmath.Int, error) {
	ctx, cancel := callContext()
	defer cancel()
	out, err := v.client.call(ctx, v.addr, vaultABI, "totalAssets")
	if err != nil {
		return sdkmath.Int{}, err
	}
	return utils.BigToSDK(out[0].(*big.Int)), nil
}

func (v *VaultClient) Management() (common.Address, error) {
	ctx, cancel := callContext()
	defer cancel()
	out, err := v.client.call(ctx, v.addr, vaultABI, "management")
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

func (v *VaultClient) IsShutdown() (bool, error) {
	ctx, cancel := callContext()
	defer cancel()
	out, err := v.client.call(ctx, v.addr, vaultABI, "isShutdown")
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}
