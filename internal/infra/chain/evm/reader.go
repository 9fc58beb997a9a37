package evm

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const erc20ABIJSON = `[
	{"name":"approve","type":"function","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const erc1155ABIJSON = `[
	{"name":"setApprovalForAll","type":"function","inputs":[{"name":"operator","type":"address"},{"name":"approved","type":"bool"}],"outputs":[]},
	{"name":"isApprovedForAll","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"operator","type":"address"}],"outputs":[{"name":"","type":"bool"}]}
]`

var (
	erc20ABI   = mustABI(erc20ABIJSON)
	erc1155ABI = mustABI(erc1155ABIJSON)
)

func mustABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// PackApprove encodes ERC20 approve(spender, amount).
func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return erc20ABI.Pack("approve", spender, amount)
}

// PackSetApprovalForAll encodes ERC1155 setApprovalForAll(operator, approved).
func PackSetApprovalForAll(operator common.Address, approved bool) ([]byte, error) {
	return erc1155ABI.Pack("setApprovalForAll", operator, approved)
}

// Reader performs read-only chain queries. It has no side effects and no
// state beyond the underlying RPC client.
type Reader struct {
	client *Client
}

// NewReader creates a chain reader over the failover client.
func NewReader(client *Client) *Reader {
	return &Reader{client: client}
}

// HasCode reports whether the address has contract bytecode.
func (r *Reader) HasCode(ctx context.Context, addr common.Address) (bool, error) {
	result, err := r.client.Call(ctx, "eth_getCode", []any{addr.Hex(), "latest"})
	if err != nil {
		return false, fmt.Errorf("eth_getCode failed: %w", err)
	}
	var code string
	if err := json.Unmarshal(result, &code); err != nil {
		return false, fmt.Errorf("invalid getCode response: %w", err)
	}
	return code != "" && code != "0x", nil
}

// BlockNumber returns the latest block height. Used by health checks.
func (r *Reader) BlockNumber(ctx context.Context) (uint64, error) {
	result, err := r.client.Call(ctx, "eth_blockNumber", nil)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber failed: %w", err)
	}
	var blockHex string
	if err := json.Unmarshal(result, &blockHex); err != nil {
		return 0, fmt.Errorf("invalid block number response: %w", err)
	}
	n, err := hexutil.DecodeUint64(blockHex)
	if err != nil {
		return 0, fmt.Errorf("invalid block number %q: %w", blockHex, err)
	}
	return n, nil
}

// Allowance returns the ERC20 allowance granted by owner to spender.
func (r *Reader) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("allowance", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("pack allowance: %w", err)
	}
	ret, err := r.ethCall(ctx, token, data)
	if err != nil {
		return nil, fmt.Errorf("allowance call: %w", err)
	}
	values, err := erc20ABI.Unpack("allowance", ret)
	if err != nil {
		return nil, fmt.Errorf("unpack allowance: %w", err)
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected allowance return type %T", values[0])
	}
	return amount, nil
}

// IsApprovedForAll returns whether operator is an approved ERC1155 operator
// for owner.
func (r *Reader) IsApprovedForAll(ctx context.Context, token, owner, operator common.Address) (bool, error) {
	data, err := erc1155ABI.Pack("isApprovedForAll", owner, operator)
	if err != nil {
		return false, fmt.Errorf("pack isApprovedForAll: %w", err)
	}
	ret, err := r.ethCall(ctx, token, data)
	if err != nil {
		return false, fmt.Errorf("isApprovedForAll call: %w", err)
	}
	values, err := erc1155ABI.Unpack("isApprovedForAll", ret)
	if err != nil {
		return false, fmt.Errorf("unpack isApprovedForAll: %w", err)
	}
	approved, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected isApprovedForAll return type %T", values[0])
	}
	return approved, nil
}

func (r *Reader) ethCall(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	call := map[string]string{
		"to":   to.Hex(),
		"data": hexutil.Encode(data),
	}
	result, err := r.client.Call(ctx, "eth_call", []any{call, "latest"})
	if err != nil {
		return nil, err
	}
	var retHex string
	if err := json.Unmarshal(result, &retHex); err != nil {
		return nil, fmt.Errorf("invalid eth_call response: %w", err)
	}
	return hexutil.Decode(retHex)
}
