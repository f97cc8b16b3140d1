package mpt

import (
	"bytes"
	"errors"
	"testing"

	"sparseth/mpt/errs"
	"sparseth/mpt/nibbles"
	"sparseth/mpt/store"
	"sparseth/storage/mem"
)

func newEmptyTrie() *Trie {
	return NewEmpty(store.New(mem.New()))
}

func TestTrieGetOnEmptyReturnsNil(t *testing.T) {
	tr := newEmptyTrie()

	val, err := tr.Get(nibbles.FromRawPath([]byte{0x01}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil, got %x", val)
	}
}

func TestTrieSetAndGetSingleKey(t *testing.T) {
	tr := newEmptyTrie()
	key := nibbles.FromRawPath([]byte{0xab, 0xcd})

	if err := tr.Set(key, []byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Root() == EmptyRoot() {
		t.Error("expected root to change after Set")
	}

	val, err := tr.Get(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(val, []byte("hello")) {
		t.Errorf("expected hello, got %s", val)
	}
}

func TestTrieSetTwoKeysSharingPrefix(t *testing.T) {
	tr := newEmptyTrie()
	keyA := nibbles.FromRawPath([]byte{0x12, 0x34})
	keyB := nibbles.FromRawPath([]byte{0x12, 0x99})

	if err := tr.Set(keyA, []byte("a")); err != nil {
		t.Fatalf("unexpected error setting a: %v", err)
	}
	rootAfterA := tr.Root()

	if err := tr.Set(keyB, []byte("b")); err != nil {
		t.Fatalf("unexpected error setting b: %v", err)
	}
	if tr.Root() == rootAfterA {
		t.Error("expected root to change after second Set")
	}

	valA, err := tr.Get(keyA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(valA, []byte("a")) {
		t.Errorf("expected a, got %s", valA)
	}

	valB, err := tr.Get(keyB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(valB, []byte("b")) {
		t.Errorf("expected b, got %s", valB)
	}
}

func TestTrieOverwriteExistingKey(t *testing.T) {
	tr := newEmptyTrie()
	key := nibbles.FromRawPath([]byte{0x01})

	if err := tr.Set(key, []byte("first")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Set(key, []byte("second")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	val, err := tr.Get(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(val, []byte("second")) {
		t.Errorf("expected second, got %s", val)
	}
}

func TestTrieSetManyKeysAllReadable(t *testing.T) {
	tr := newEmptyTrie()
	keys := [][]byte{
		{0x00, 0x00}, {0x00, 0x01}, {0x0f, 0xff},
		{0x10}, {0x11}, {0xab, 0xcd, 0xef}, {0xab, 0xce},
	}

	for i, k := range keys {
		if err := tr.Set(nibbles.FromRawPath(k), []byte{byte(i)}); err != nil {
			t.Fatalf("unexpected error setting key %d: %v", i, err)
		}
	}

	for i, k := range keys {
		val, err := tr.Get(nibbles.FromRawPath(k))
		if err != nil {
			t.Fatalf("unexpected error getting key %d: %v", i, err)
		}
		if !bytes.Equal(val, []byte{byte(i)}) {
			t.Errorf("key %d: expected %x, got %x", i, byte(i), val)
		}
	}
}

func TestTrieGetUnresolvedNodeReturnsNotFoundError(t *testing.T) {
	kv := mem.New()
	tr1 := NewEmpty(store.New(kv))
	key := nibbles.FromRawPath([]byte{0x01, 0x02})
	if err := tr1.Set(key, []byte("v")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second trie over a fresh, empty store but the same root believes
	// the same entries exist, but has not had any proof loaded into it.
	tr2 := FromRoot(tr1.Root(), store.New(mem.New()))
	_, err := tr2.Get(key)

	var notFound *errs.NodeNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NodeNotFoundError, got %v", err)
	}
}

func TestTrieLoadProofRejectsWrongRoot(t *testing.T) {
	kv := mem.New()
	src := NewEmpty(store.New(kv))
	key := nibbles.FromRawPath([]byte{0x0a})
	if err := src.Set(key, []byte("v")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	leaf, err := store.New(kv).Get(src.Root())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dst := NewEmpty(store.New(mem.New()))
	err = dst.LoadProof(key, [][]byte{leaf.Encode()})
	if !errors.Is(err, errs.ErrProofChainBroken) {
		t.Fatalf("expected ErrProofChainBroken, got %v", err)
	}
}

func TestTrieLoadProofAcceptsMatchingRoot(t *testing.T) {
	kv := mem.New()
	src := NewEmpty(store.New(kv))
	key := nibbles.FromRawPath([]byte{0x0a})
	if err := src.Set(key, []byte("v")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	leaf, err := store.New(kv).Get(src.Root())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dst := FromRoot(src.Root(), store.New(mem.New()))
	if err := dst.LoadProof(key, [][]byte{leaf.Encode()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	val, err := dst.Get(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(val, []byte("v")) {
		t.Errorf("expected v, got %s", val)
	}
}
