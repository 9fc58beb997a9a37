package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Operation is the wallet-level call kind.
type Operation uint8

const (
	OperationCall         Operation = 0
	OperationDelegateCall Operation = 1
)

// CallDescriptor is a single call the wallet should perform. Built fresh
// per submission and immutable once built.
type CallDescriptor struct {
	To        common.Address
	Value     *big.Int
	Data      []byte
	Operation Operation
}

// WalletTransaction is the struct the owner signs and the relay submits.
// Every gas-related field is fixed at zero because the relay, not the
// wallet, pays; only To, Data, Operation and Nonce vary between
// transactions.
type WalletTransaction struct {
	To             common.Address
	Value          *big.Int
	Data           []byte
	Operation      Operation
	SafeTxGas      *big.Int
	BaseGas        *big.Int
	GasPrice       *big.Int
	GasToken       common.Address
	RefundReceiver common.Address
	Nonce          *big.Int
}

// NewWalletTransaction builds a WalletTransaction with the fixed zero
// payment fields filled in.
func NewWalletTransaction(call CallDescriptor, nonce *big.Int) WalletTransaction {
	value := call.Value
	if value == nil {
		value = new(big.Int)
	}
	return WalletTransaction{
		To:             call.To,
		Value:          value,
		Data:           call.Data,
		Operation:      call.Operation,
		SafeTxGas:      new(big.Int),
		BaseGas:        new(big.Int),
		GasPrice:       new(big.Int),
		GasToken:       common.Address{},
		RefundReceiver: common.Address{},
		Nonce:          nonce,
	}
}
