package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/marketdesk/relay/internal/core/domain"
)

// ethSignRecoveryOffset shifts the recovery id after message-hash signing.
// The wallet contract verifies v in {27, 28} on the native typed-data code
// path and v in {31, 32} on the eth_sign code path. Our signer only exposes
// "sign this 32-byte hash", so every signature must take the eth_sign path:
// an unshifted v is silently rejected as invalid with no other symptom.
// This is a fixed wire-protocol requirement of the destination verifier.
const ethSignRecoveryOffset = 4

var eip712DomainType = []apitypes.Type{
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

// WalletTransactionDigest computes the domain-separated digest of a wallet
// transaction. The domain is keyed by chain id and the wallet address, so
// signatures cannot be replayed across chains or wallets.
func WalletTransactionDigest(chainID int64, wallet common.Address, tx domain.WalletTransaction) (common.Hash, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": eip712DomainType,
			"SafeTx": []apitypes.Type{
				{Name: "to", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "data", Type: "bytes"},
				{Name: "operation", Type: "uint8"},
				{Name: "safeTxGas", Type: "uint256"},
				{Name: "baseGas", Type: "uint256"},
				{Name: "gasPrice", Type: "uint256"},
				{Name: "gasToken", Type: "address"},
				{Name: "refundReceiver", Type: "address"},
				{Name: "nonce", Type: "uint256"},
			},
		},
		PrimaryType: "SafeTx",
		Domain: apitypes.TypedDataDomain{
			ChainId:           math.NewHexOrDecimal256(chainID),
			VerifyingContract: wallet.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"to":             tx.To.Hex(),
			"value":          tx.Value.String(),
			"data":           hexutil.Encode(tx.Data),
			"operation":      fmt.Sprintf("%d", tx.Operation),
			"safeTxGas":      tx.SafeTxGas.String(),
			"baseGas":        tx.BaseGas.String(),
			"gasPrice":       tx.GasPrice.String(),
			"gasToken":       tx.GasToken.Hex(),
			"refundReceiver": tx.RefundReceiver.Hex(),
			"nonce":          tx.Nonce.String(),
		},
	}
	return hashTypedData(typedData)
}

// DeploymentDigest computes the digest of the zero-payment wallet-creation
// message. The domain is scoped to the factory, not the wallet: deployment
// signatures and transaction signatures verify under distinct domains.
func DeploymentDigest(chainID int64, factory common.Address) (common.Hash, error) {
	zero := common.Address{}
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": eip712DomainType,
			"SafeCreate": []apitypes.Type{
				{Name: "paymentToken", Type: "address"},
				{Name: "payment", Type: "uint256"},
				{Name: "paymentReceiver", Type: "address"},
			},
		},
		PrimaryType: "SafeCreate",
		Domain: apitypes.TypedDataDomain{
			ChainId:           math.NewHexOrDecimal256(chainID),
			VerifyingContract: factory.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"paymentToken":    zero.Hex(),
			"payment":         "0",
			"paymentReceiver": zero.Hex(),
		},
	}
	return hashTypedData(typedData)
}

func hashTypedData(typedData apitypes.TypedData) (common.Hash, error) {
	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("hash domain: %w", err)
	}
	messageHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return common.Hash{}, fmt.Errorf("hash message: %w", err)
	}

	rawData := []byte{0x19, 0x01}
	rawData = append(rawData, domainSeparator...)
	rawData = append(rawData, messageHash...)
	return crypto.Keccak256Hash(rawData), nil
}

// PackSignature validates a 65-byte (r, s, v) signature with v in {27, 28}
// and shifts v onto the eth_sign verification path. See
// ethSignRecoveryOffset for why the shift is load-bearing.
func PackSignature(sig []byte) ([]byte, error) {
	if len(sig) != 65 {
		return nil, fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}
	v := sig[64]
	if v != 27 && v != 28 {
		return nil, fmt.Errorf("recovery id must be 27 or 28, got %d", v)
	}
	packed := make([]byte, 65)
	copy(packed, sig)
	packed[64] = v + ethSignRecoveryOffset
	return packed, nil
}
