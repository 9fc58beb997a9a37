package wallet

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/marketdesk/relay/internal/core/domain"
)

const multiSendABIJSON = `[
	{"name":"multiSend","type":"function","inputs":[{"name":"transactions","type":"bytes"}],"outputs":[]}
]`

var multiSendABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(multiSendABIJSON))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// BatchCalls packs 1..N call descriptors into a single target/data/operation
// triple. A single call passes through unchanged; multiple calls are framed
// into one multiSend invocation executed as a DelegateCall, so the batch
// runs in the wallet's own storage context and applies all-or-nothing.
func BatchCalls(multisend common.Address, calls []domain.CallDescriptor) (domain.CallDescriptor, error) {
	switch len(calls) {
	case 0:
		return domain.CallDescriptor{}, fmt.Errorf("no calls to batch")
	case 1:
		return calls[0], nil
	}

	framed := encodeMultiSend(calls)
	data, err := multiSendABI.Pack("multiSend", framed)
	if err != nil {
		return domain.CallDescriptor{}, fmt.Errorf("pack multiSend: %w", err)
	}

	return domain.CallDescriptor{
		To:        multisend,
		Value:     new(big.Int),
		Data:      data,
		Operation: domain.OperationDelegateCall,
	}, nil
}

// encodeMultiSend serializes each call as a fixed-width header followed by
// the raw call data: uint8 operation, 20-byte target, 32-byte value,
// 32-byte data length, data. Entries are concatenated in order.
func encodeMultiSend(calls []domain.CallDescriptor) []byte {
	var out []byte
	for _, call := range calls {
		value := call.Value
		if value == nil {
			value = new(big.Int)
		}
		out = append(out, byte(call.Operation))
		out = append(out, call.To.Bytes()...)
		out = append(out, common.LeftPadBytes(value.Bytes(), 32)...)
		out = append(out, common.LeftPadBytes(big.NewInt(int64(len(call.Data))).Bytes(), 32)...)
		out = append(out, call.Data...)
	}
	return out
}

// DecodeMultiSend reverses BatchCalls for a multiSend payload, returning
// the original descriptors in order.
func DecodeMultiSend(data []byte) ([]domain.CallDescriptor, error) {
	method := multiSendABI.Methods["multiSend"]
	if len(data) < 4 {
		return nil, fmt.Errorf("payload too short")
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("unpack multiSend: %w", err)
	}
	framed, ok := args[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected multiSend argument type %T", args[0])
	}

	var calls []domain.CallDescriptor
	for offset := 0; offset < len(framed); {
		if len(framed)-offset < 1+20+32+32 {
			return nil, fmt.Errorf("truncated entry header at offset %d", offset)
		}
		op := domain.Operation(framed[offset])
		offset++
		to := common.BytesToAddress(framed[offset : offset+20])
		offset += 20
		value := new(big.Int).SetBytes(framed[offset : offset+32])
		offset += 32
		dataLen := new(big.Int).SetBytes(framed[offset : offset+32])
		offset += 32
		if !dataLen.IsInt64() || offset+int(dataLen.Int64()) > len(framed) {
			return nil, fmt.Errorf("truncated entry data at offset %d", offset)
		}
		callData := make([]byte, dataLen.Int64())
		copy(callData, framed[offset:offset+int(dataLen.Int64())])
		offset += int(dataLen.Int64())

		calls = append(calls, domain.CallDescriptor{
			To:        to,
			Value:     value,
			Data:      callData,
			Operation: op,
		})
	}
	return calls, nil
}
