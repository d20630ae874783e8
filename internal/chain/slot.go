package chain

import (
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/meridianyield/scm/internal/slots"
	"github.com/meridianyield/scm/internal/utils"
)

// SlotClient is the live binding for one custodial cooldown slot contract.
type SlotClient struct {
	client *Client
	addr   common.Address
}

// NewSlotClient binds a slot contract at addr.
func NewSlotClient(client *Client, addr common.Address) *SlotClient {
	return &SlotClient{client: client, addr: addr}
}

func (s *SlotClient) Address() common.Address {
	return s.addr
}

func (s *SlotClient) Cooldown() (sdkmath.Int, error) {
	ctx, cancel := callContext()
	defer cancel()
	// Simulate the call first to recover the queued amount; the receipt does
	// not carry return data.
	out, err := s.client.call(ctx, s.addr, slotABI, "cooldown")
	if err != nil {
		return sdkmath.Int{}, err
	}
	queued := utils.BigToSDK(out[0].(*big.Int))
	if err := s.client.transact(ctx, s.addr, slotABI, "cooldown"); err != nil {
		return sdkmath.Int{}, fmt.Errorf("slot cooldown failed: %w", err)
	}
	return queued, nil
}

func (s *SlotClient) Unstake() error {
	ctx, cancel := callContext()
	defer cancel()
	return s.client.transact(ctx, s.addr, slotABI, "unstake")
}

func (s *SlotClient) Recall(token common.Address, amount sdkmath.Int) error {
	ctx, cancel := callContext()
	defer cancel()
	return s.client.transact(ctx, s.addr, slotABI, "recall", token, utils.SDKToBig(amount))
}

func (s *SlotClient) Clone() (slots.Slot, error) {
	ctx, cancel := callContext()
	defer cancel()
	// Resolve the deployment address via simulation, then send for real.
	out, err := s.client.call(ctx, s.addr, slotABI, "clone")
	if err != nil {
		return nil, err
	}
	cloneAddr := out[0].(common.Address)
	if err := s.client.transact(ctx, s.addr, slotABI, "clone"); err != nil {
		return nil, fmt.Errorf("slot clone failed: %w", err)
	}
	return NewSlotClient(s.client, cloneAddr), nil
}
