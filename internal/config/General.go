package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// NodeRPC is the JSON-RPC endpoint of the Ethereum node.
	NodeRPC string

	// StrategyAddress is the on-chain address holding the strategy's balances.
	StrategyAddress common.Address
	// StakedTokenAddress is the yield-bearing staked wrapper contract.
	StakedTokenAddress common.Address
	// BaseTokenAddress is the redeemable base token contract.
	BaseTokenAddress common.Address
	// AuctionAddress is the Dutch-auction bookkeeping contract.
	AuctionAddress common.Address
	// VaultAddress is the vault/share-accounting contract consumed for
	// totalAssets, management and shutdown state.
	VaultAddress common.Address

	// SlotAddresses are the deployed cooldown slot contracts, in slot order.
	SlotAddresses []common.Address

	// SignerKeyHex is the hex-encoded private key used to sign transactions.
	SignerKeyHex string

	// ChainID is the chain ID of the target network.
	ChainID uint64
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	NodeRPC, err = getEnv("NODE_RPC")
	if err != nil {
		return err
	}

	StrategyAddress, err = getEnvAsAddress("STRATEGY_ADDRESS")
	if err != nil {
		return err
	}

	StakedTokenAddress, err = getEnvAsAddress("STAKED_TOKEN_ADDRESS")
	if err != nil {
		return err
	}

	BaseTokenAddress, err = getEnvAsAddress("BASE_TOKEN_ADDRESS")
	if err != nil {
		return err
	}

	AuctionAddress, err = getEnvAsAddress("AUCTION_ADDRESS")
	if err != nil {
		return err
	}

	VaultAddress, err = getEnvAsAddress("VAULT_ADDRESS")
	if err != nil {
		return err
	}

	SlotAddresses, err = getEnvAsAddressList("SLOT_ADDRESSES")
	if err != nil {
		return err
	}

	SignerKeyHex, err = getEnv("SIGNER_KEY")
	if err != nil {
		return err
	}

	ChainID, err = getEnvAsUint64("CHAIN_ID")
	if err != nil {
		return err
	}

	log.Debug().
		Str("NodeRPC", NodeRPC).
		Str("StrategyAddress", StrategyAddress.Hex()).
		Str("StakedTokenAddress", StakedTokenAddress.Hex()).
		Uint64("ChainID", ChainID).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsAddressList retrieves a comma-separated list of hex addresses.
// At least one entry is required.
func getEnvAsAddressList(key string) ([]common.Address, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return nil, err
	}
	var addrs []common.Address
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !common.IsHexAddress(part) {
			return nil, errors.New("environment variable " + key + " contains an invalid hex address: " + part)
		}
		addrs = append(addrs, common.HexToAddress(part))
	}
	if len(addrs) == 0 {
		return nil, errors.New("environment variable " + key + " must contain at least one address")
	}
	return addrs, nil
}

// getEnvAsAddress retrieves an environment variable as a checksummed Ethereum address.
func getEnvAsAddress(key string) (common.Address, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(valueStr) {
		return common.Address{}, errors.New("environment variable " + key + " must be a valid hex address, got: " + valueStr)
	}
	return common.HexToAddress(valueStr), nil
}
