package wallet

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/marketdesk/relay/internal/core/domain"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func testTransaction(nonce int64) domain.WalletTransaction {
	return domain.NewWalletTransaction(domain.CallDescriptor{
		To:        common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
		Value:     new(big.Int),
		Data:      []byte{0x09, 0x5e, 0xa7, 0xb3},
		Operation: domain.OperationCall,
	}, big.NewInt(nonce))
}

func TestWalletTransactionDigest_Deterministic(t *testing.T) {
	wallet := common.HexToAddress("0x4444444444444444444444444444444444444444")
	tx := testTransaction(7)

	first, err := WalletTransactionDigest(137, wallet, tx)
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	second, err := WalletTransactionDigest(137, wallet, tx)
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	if first != second {
		t.Fatalf("digest not deterministic: %s != %s", first.Hex(), second.Hex())
	}
}

func TestWalletTransactionDigest_NonceParticipates(t *testing.T) {
	wallet := common.HexToAddress("0x4444444444444444444444444444444444444444")

	d1, err := WalletTransactionDigest(137, wallet, testTransaction(7))
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	d2, err := WalletTransactionDigest(137, wallet, testTransaction(8))
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	if d1 == d2 {
		t.Fatal("changing the nonce did not change the digest")
	}
}

func TestWalletTransactionDigest_DomainSeparation(t *testing.T) {
	tx := testTransaction(7)

	walletA := common.HexToAddress("0x4444444444444444444444444444444444444444")
	walletB := common.HexToAddress("0x5555555555555555555555555555555555555555")
	dA, _ := WalletTransactionDigest(137, walletA, tx)
	dB, _ := WalletTransactionDigest(137, walletB, tx)
	if dA == dB {
		t.Fatal("digests identical across wallets")
	}

	d137, _ := WalletTransactionDigest(137, walletA, tx)
	d80002, _ := WalletTransactionDigest(80002, walletA, tx)
	if d137 == d80002 {
		t.Fatal("digests identical across chains")
	}
}

func TestDeploymentDigest_DistinctDomain(t *testing.T) {
	factory := common.HexToAddress("0xaacFeEa03eb1561C4e67d661e40682Bd20E3541b")

	d1, err := DeploymentDigest(137, factory)
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	d2, err := DeploymentDigest(137, common.HexToAddress("0x6666666666666666666666666666666666666666"))
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	if d1 == d2 {
		t.Fatal("deployment digest does not depend on the factory")
	}
}

func TestPackSignature_RecoveryOffset(t *testing.T) {
	for _, v := range []byte{27, 28} {
		sig := make([]byte, 65)
		sig[64] = v

		packed, err := PackSignature(sig)
		if err != nil {
			t.Fatalf("pack failed for v=%d: %v", v, err)
		}
		if got, want := packed[64], v+4; got != want {
			t.Errorf("v=%d: packed recovery id = %d, want %d", v, got, want)
		}
		if !bytes.Equal(packed[:64], sig[:64]) {
			t.Errorf("v=%d: r/s bytes were modified", v)
		}
		// The input must not be mutated.
		if sig[64] != v {
			t.Errorf("v=%d: input signature mutated", v)
		}
	}
}

func TestPackSignature_Rejects(t *testing.T) {
	tests := []struct {
		name string
		sig  []byte
	}{
		{"short", make([]byte, 64)},
		{"long", make([]byte, 66)},
		{"v=0", make([]byte, 65)},
		{"v=31", append(make([]byte, 64), 31)},
	}
	for _, tt := range tests {
		if _, err := PackSignature(tt.sig); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestKeySigner_SignHash(t *testing.T) {
	signer, err := NewKeySigner(testKeyHex)
	if err != nil {
		t.Fatalf("NewKeySigner failed: %v", err)
	}

	digest := crypto.Keccak256Hash([]byte("digest under test"))
	sig, err := signer.SignHash(context.Background(), digest)
	if err != nil {
		t.Fatalf("SignHash failed: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("signature length = %d, want 65", len(sig))
	}
	if v := sig[64]; v != 27 && v != 28 {
		t.Fatalf("recovery id = %d, want 27 or 28", v)
	}

	// The signature must recover to the signer's address.
	recoverSig := make([]byte, 65)
	copy(recoverSig, sig)
	recoverSig[64] -= 27
	pub, err := crypto.SigToPub(digest.Bytes(), recoverSig)
	if err != nil {
		t.Fatalf("SigToPub failed: %v", err)
	}
	if got := crypto.PubkeyToAddress(*pub); got != signer.Address() {
		t.Fatalf("recovered %s, want %s", got.Hex(), signer.Address().Hex())
	}
}
