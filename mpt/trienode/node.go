// Package trienode implements the three node variants of a Merkle
// Patricia trie — leaf, extension, and branch — together with their RLP
// encoding, decoding, and content-addressed hashing.
package trienode

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"sparseth/mpt/nibbles"
)

// Digest is the 32-byte keccak-256 hash of a node's RLP encoding; it is
// the address of a node in the content-addressed node store.
type Digest = common.Hash

// branchWidth is the number of radix children of a branch node, plus
// the 17th "value at this prefix" slot (Ethereum convention).
const branchWidth = 17

// Node is a trie node: a Leaf, an Extension, or a Branch. References to
// other nodes are content-addressed digests, never in-memory pointers,
// so a trie of Nodes can never contain a cycle.
type Node interface {
	// Hash returns the keccak-256 digest of Encode().
	Hash() Digest

	// Encode returns this node's RLP serialization, the same bytes
	// whose keccak digest is this node's address in the store.
	Encode() []byte

	// String returns a human-readable representation.
	String() string
}

// Leaf is a leaf node: a terminal key fragment and its RLP-encoded
// value.
type Leaf struct {
	// Key is the expanded (nibble) path remaining after the parent
	// chain. It always carries an implicit terminator.
	Key nibbles.Path

	// Value is the RLP-encoded payload stored at this key.
	Value []byte
}

func (l *Leaf) Hash() Digest {
	return crypto.Keccak256Hash(l.Encode())
}

func (l *Leaf) Encode() []byte {
	return encodeShort(l.Key, true, l.Value)
}

func (l *Leaf) String() string {
	return fmt.Sprintf("Leaf{Key: %s, Value: %s}", hex.EncodeToString(l.Key.Raw()), hex.EncodeToString(l.Value))
}

// Extension is an extension node: a shared key fragment pointing at a
// single child node, referenced by digest.
type Extension struct {
	// Key is the expanded (nibble) path shared by every key under
	// Child. It never carries a terminator.
	Key nibbles.Path

	// Child is the digest of the referenced node's RLP.
	Child Digest
}

func (e *Extension) Hash() Digest {
	return crypto.Keccak256Hash(e.Encode())
}

func (e *Extension) Encode() []byte {
	return encodeShort(e.Key, false, e.Child[:])
}

func (e *Extension) String() string {
	return fmt.Sprintf("Extension{Key: %s, Child: %s}", hex.EncodeToString(e.Key.Raw()), e.Child)
}

// Branch is a 16-way radix branch plus a 17th "value at this prefix"
// slot. Ethereum state trees never populate the value slot.
type Branch struct {
	// Children holds the digest of each of the 16 radix children, or
	// nil where a slot is absent.
	Children [branchWidth - 1]*Digest

	// Value is the value stored at this exact prefix, if any. Absent
	// in every known Ethereum state tree.
	Value []byte
}

func (b *Branch) Hash() Digest {
	return crypto.Keccak256Hash(b.Encode())
}

func (b *Branch) Encode() []byte {
	items := make([][]byte, branchWidth)
	for i, child := range b.Children {
		if child == nil {
			items[i] = []byte{}
		} else {
			items[i] = child[:]
		}
	}
	items[branchWidth-1] = b.Value

	return mustEncodeRLPList(items)
}

func (b *Branch) String() string {
	var sb strings.Builder
	sb.WriteString("Branch{Children: [")
	for i, child := range b.Children {
		if child != nil {
			sb.WriteString(fmt.Sprintf("%d: %s, ", i, child))
		}
	}
	val := "Empty"
	if len(b.Value) > 0 {
		val = hex.EncodeToString(b.Value)
	}
	sb.WriteString(fmt.Sprintf("], Value: %s}", val))
	return sb.String()
}
