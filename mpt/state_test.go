package mpt

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"sparseth/mpt/store"
	"sparseth/storage/mem"
)

func newTestStateTrie() *StateTrie {
	return NewStateTrie(EmptyRoot(), store.New(mem.New()))
}

func putAccount(t *testing.T, s *StateTrie, addr common.Address, acc *Account) {
	t.Helper()
	raw, err := encodeAccount(acc)
	if err != nil {
		t.Fatalf("unexpected error encoding account: %v", err)
	}
	if err := s.accountTrie.Set(addressKey(addr), raw); err != nil {
		t.Fatalf("unexpected error setting account: %v", err)
	}
}

func TestStateTrieAccountNotFound(t *testing.T) {
	s := newTestStateTrie()
	addr := common.HexToAddress("0x01")

	_, err := s.Account(addr)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestStateTrieSetBalance(t *testing.T) {
	s := newTestStateTrie()
	addr := common.HexToAddress("0x01")
	putAccount(t, s, addr, EmptyAccount())

	rootBefore := s.Root()
	if err := s.SetBalance(addr, big.NewInt(1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Root() == rootBefore {
		t.Error("expected root to change after SetBalance")
	}

	balance, err := s.Balance(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("expected balance 1000, got %s", balance)
	}
}

func TestStateTrieSetNonceAndCodeHash(t *testing.T) {
	s := newTestStateTrie()
	addr := common.HexToAddress("0x02")
	putAccount(t, s, addr, EmptyAccount())

	if err := s.SetNonce(addr, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nonce, err := s.Nonce(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nonce != 7 {
		t.Errorf("expected nonce 7, got %d", nonce)
	}

	newCode := common.HexToHash("0xdeadbeef")
	if err := s.SetCodeHash(addr, newCode); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	codeHash, err := s.CodeHash(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codeHash != newCode {
		t.Errorf("expected code hash %s, got %s", newCode, codeHash)
	}
}

func TestStateTrieSetStorageSlot(t *testing.T) {
	s := newTestStateTrie()
	addr := common.HexToAddress("0x03")
	putAccount(t, s, addr, EmptyAccount())

	slot := common.HexToHash("0x01")
	val := uint256.NewInt(42)

	rootBefore := s.Root()
	if err := s.SetStorageSlot(addr, slot, val); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Root() == rootBefore {
		t.Error("expected state root to change after SetStorageSlot")
	}

	raw, err := s.StorageSlot(addr, slot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(raw, val.Bytes()) {
		t.Errorf("expected %x, got %x", val.Bytes(), raw)
	}

	storageRoot, err := s.StorageRoot(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storageRoot == EmptyRoot() {
		t.Error("expected non-empty storage root after SetStorageSlot")
	}
}

func TestStateTrieLoadProofRoundTrip(t *testing.T) {
	kv := mem.New()
	src := NewStateTrie(EmptyRoot(), store.New(kv))
	addr := common.HexToAddress("0x04")
	acc := EmptyAccount()
	acc.Balance = big.NewInt(500)
	putAccount(t, src, addr, acc)

	leaf, err := store.New(kv).Get(src.Root())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dst := NewStateTrie(src.Root(), store.New(mem.New()))
	result := &EIP1186Result{
		Address:      addr,
		AccountProof: [][]byte{leaf.Encode()},
	}
	if err := dst.LoadProof(result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := dst.Account(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Balance.Cmp(big.NewInt(500)) != 0 {
		t.Errorf("expected balance 500, got %s", got.Balance)
	}
}
