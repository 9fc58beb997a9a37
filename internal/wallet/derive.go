package wallet

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// proxyInitCodeHash is the keccak256 of the proxy creation bytecode the
// factory deploys. The derivation below only matches on-chain deployments
// while this hash matches the factory's published proxy bytecode exactly.
var proxyInitCodeHash = common.HexToHash("0x56e3081a3d1bb38ed4eed1a39f7729c3cc77c7825bd2b37d7fdeb7bd0f0bb23a")

// DeriveWalletAddress computes the counterfactual wallet address for an
// owner key under the given factory. Pure and deterministic; the UI can
// display and deposit to this address before the contract exists.
//
// Formula: CREATE2(factory, keccak256(pad32(owner)), initCodeHash).
func DeriveWalletAddress(owner, factory common.Address) common.Address {
	salt := crypto.Keccak256Hash(common.LeftPadBytes(owner.Bytes(), 32))
	return crypto.CreateAddress2(factory, salt, proxyInitCodeHash.Bytes())
}
