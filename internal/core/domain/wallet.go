package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// WalletIdentity describes a user's contract wallet. Address is a pure
// function of Owner and Factory and never changes; Deployed is the only
// mutable field and is always refreshed from the relay or the chain,
// never cached across operations.
type WalletIdentity struct {
	Owner    common.Address
	Factory  common.Address
	Address  common.Address
	Deployed bool
}

// TokenStandard selects the approval mechanism for a spender pair.
type TokenStandard string

const (
	StandardERC20   TokenStandard = "erc20"
	StandardERC1155 TokenStandard = "erc1155"
)

// ApprovalRequirement is one token/spender pair the exchange needs before
// orders from this wallet can settle. The full list is statically known
// from configuration; Satisfied is recomputed on every check.
type ApprovalRequirement struct {
	Name      string
	Standard  TokenStandard
	Token     common.Address
	Spender   common.Address
	Satisfied bool
}
