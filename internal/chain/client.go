// Package chain provides the live implementations of the engine's
// collaborator interfaces, backed by an Ethereum JSON-RPC node. Reads go
// through eth_call against hand-held ABIs; writes are signed locally and
// broadcast, then mined receipts are awaited before returning.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/meridianyield/scm/internal/logger"
	"github.com/meridianyield/scm/internal/utils"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidKey        = errors.New("signer key is invalid")
	ErrTransactionFailed = errors.New("transaction reverted")
	ErrReceiptTimeout    = errors.New("timed out waiting for receipt")
)

const receiptPollInterval = 2 * time.Second
const receiptTimeout = 3 * time.Minute

// Client wraps the JSON-RPC connection and the local signer shared by every
// contract binding.
type Client struct {
	eth     *ethclient.Client
	key     *ecdsa.PrivateKey
	sender  common.Address
	chainID *big.Int
	logger  zerolog.Logger
}

// Dial connects to the node and derives the sender from the hex-encoded key.
func Dial(rpcURL, signerKeyHex string, chainID uint64) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC node: %w", err)
	}
	key, err := crypto.HexToECDSA(signerKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return &Client{
		eth:     eth,
		key:     key,
		sender:  crypto.PubkeyToAddress(key.PublicKey),
		chainID: new(big.Int).SetUint64(chainID),
		logger:  logger.GetForComponent("chain_client"),
	}, nil
}

// Sender returns the signing address.
func (c *Client) Sender() common.Address {
	return c.sender
}

// Close tears down the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// BasefeeGwei returns the latest block's basefee in fractional gwei, zero on
// pre-1559 chains.
func (c *Client) BasefeeGwei(ctx context.Context) (float64, error) {
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to read latest header: %w", err)
	}
	return utils.WeiToGwei(header.BaseFee), nil
}

// call executes a read-only contract call and unpacks the outputs.
func (c *Client) call(ctx context.Context, contract common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	out, err := parsed.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return out, nil
}

// transact signs, broadcasts and awaits a state-changing call.
func (c *Client) transact(ctx context.Context, contract common.Address, parsed abi.ABI, method string, args ...interface{}) error {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack %s transaction: %w", method, err)
	}

	nonce, err := c.eth.PendingNonceAt(ctx, c.sender)
	if err != nil {
		return fmt.Errorf("failed to read nonce: %w", err)
	}
	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to suggest gas price: %w", err)
	}
	gasLimit, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From: c.sender,
		To:   &contract,
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("failed to estimate gas for %s: %w", method, err)
	}

	tx := ethtypes.NewTransaction(nonce, contract, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return fmt.Errorf("failed to sign %s transaction: %w", method, err)
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return fmt.Errorf("failed to broadcast %s transaction: %w", method, err)
	}

	c.logger.Info().
		Str("method", method).
		Str("tx", signed.Hash().Hex()).
		Str("contract", contract.Hex()).
		Msg("Transaction broadcast")

	receipt, err := c.waitMined(ctx, signed.Hash())
	if err != nil {
		return err
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: %s (%s)", ErrTransactionFailed, method, signed.Hash().Hex())
	}
	return nil
}

func (c *Client) waitMined(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	deadline := time.Now().Add(receiptTimeout)
	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to read receipt: %w", err)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrReceiptTimeout, hash.Hex())
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(receiptPollInterval):
		}
	}
}
