package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NonceSource fetches the wallet's next unused transaction counter from the
// relay immediately before each transaction is built. Values are never
// cached across transactions and never incremented locally: the relay is
// the source of truth, and out-of-band submissions may have consumed values
// in the meantime.
type NonceSource struct {
	relay RelayService
}

// NewNonceSource creates a nonce source backed by the relay.
func NewNonceSource(relaySvc RelayService) *NonceSource {
	return &NonceSource{relay: relaySvc}
}

// Next returns the next nonce both as the decimal wire string and parsed.
func (n *NonceSource) Next(ctx context.Context, wallet common.Address) (string, *big.Int, error) {
	raw, err := n.relay.GetNonce(ctx, wallet)
	if err != nil {
		return "", nil, err
	}
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return "", nil, fmt.Errorf("relay returned non-decimal nonce %q", raw)
	}
	return raw, value, nil
}
