package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minimal hand-held ABIs covering only the entry points the keeper uses.

const erc20ABIJSON = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"transfer","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

const stakedTokenABIJSON = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"transfer","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"cooldownDuration","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"cooldowns","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"cooldownEnd","type":"uint256"},{"name":"underlyingAmount","type":"uint256"}]},
	{"name":"redeem","type":"function","stateMutability":"nonpayable","inputs":[{"name":"shares","type":"uint256"},{"name":"receiver","type":"address"},{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"maxRedeem","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"convertToAssets","type":"function","stateMutability":"view","inputs":[{"name":"shares","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const slotABIJSON = `[
	{"name":"cooldown","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"unstake","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"name":"recall","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"name":"clone","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

const auctionABIJSON = `[
	{"name":"getAuctionId","type":"function","stateMutability":"view","inputs":[{"name":"from","type":"address"}],"outputs":[{"name":"","type":"bytes32"}]},
	{"name":"kicked","type":"function","stateMutability":"view","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"available","type":"function","stateMutability":"view","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const vaultABIJSON = `[
	{"name":"totalAssets","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"management","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"name":"isShutdown","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]}
]`

var (
	erc20ABI       abi.ABI
	stakedTokenABI abi.ABI
	slotABI        abi.ABI
	auctionABI     abi.ABI
	vaultABI       abi.ABI
)

func init() {
	var err error
	if erc20ABI, err = abi.JSON(strings.NewReader(erc20ABIJSON)); err != nil {
		panic("failed to parse ERC20 ABI: " + err.Error())
	}
	if stakedTokenABI, err = abi.JSON(strings.NewReader(stakedTokenABIJSON)); err != nil {
		panic("failed to parse staked token ABI: " + err.Error())
	}
	if slotABI, err = abi.JSON(strings.NewReader(slotABIJSON)); err != nil {
		panic("failed to parse slot ABI: " + err.Error())
	}
	if auctionABI, err = abi.JSON(strings.NewReader(auctionABIJSON)); err != nil {
		panic("failed to parse auction ABI: " + err.Error())
	}
	if vaultABI, err = abi.JSON(strings.NewReader(vaultABIJSON)); err != nil {
		panic("failed to parse vault ABI: " + err.Error())
	}
}
