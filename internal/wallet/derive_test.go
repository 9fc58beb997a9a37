package wallet

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestDeriveWalletAddress_Deterministic(t *testing.T) {
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	factory := common.HexToAddress("0xaacFeEa03eb1561C4e67d661e40682Bd20E3541b")

	first := DeriveWalletAddress(owner, factory)
	for i := 0; i < 10; i++ {
		if got := DeriveWalletAddress(owner, factory); got != first {
			t.Fatalf("derivation not deterministic: %s != %s", got.Hex(), first.Hex())
		}
	}

	if first == (common.Address{}) {
		t.Fatal("derived zero address")
	}
	if first == owner || first == factory {
		t.Fatalf("derived address collides with input: %s", first.Hex())
	}
}

func TestDeriveWalletAddress_DistinctInputs(t *testing.T) {
	factory := common.HexToAddress("0xaacFeEa03eb1561C4e67d661e40682Bd20E3541b")
	owners := []common.Address{
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
		common.HexToAddress("0x1111111111111111111111111111111111111112"),
	}

	seen := make(map[common.Address]common.Address)
	for _, owner := range owners {
		derived := DeriveWalletAddress(owner, factory)
		if prev, dup := seen[derived]; dup {
			t.Fatalf("owners %s and %s derived the same wallet %s", prev.Hex(), owner.Hex(), derived.Hex())
		}
		seen[derived] = owner
	}

	// A different factory must also shift the address.
	owner := owners[0]
	other := common.HexToAddress("0x3333333333333333333333333333333333333333")
	if DeriveWalletAddress(owner, factory) == DeriveWalletAddress(owner, other) {
		t.Fatal("different factories derived the same wallet")
	}
}
