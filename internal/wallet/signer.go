package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer is the signing capability handed to the client by the session
// provider. SignHash signs an opaque 32-byte digest and returns a 65-byte
// (r, s, v) signature with v in {27, 28}. Implementations may block on
// user action; a declined prompt surfaces as ErrSigningDeclined.
type Signer interface {
	Address() common.Address
	SignHash(ctx context.Context, digest common.Hash) ([]byte, error)
}

// KeySigner signs with an in-process ECDSA private key.
type KeySigner struct {
	key *ecdsa.PrivateKey
}

// NewKeySigner creates a KeySigner from a hex-encoded private key.
func NewKeySigner(privateKeyHex string) (*KeySigner, error) {
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &KeySigner{key: key}, nil
}

// Address returns the key's EOA address.
func (s *KeySigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// SignHash signs the digest and normalizes the recovery id to {27, 28}.
func (s *KeySigner) SignHash(_ context.Context, digest common.Hash) ([]byte, error) {
	sig, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign digest: %w", err)
	}
	sig[64] += 27
	return sig, nil
}
