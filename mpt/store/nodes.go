// Package store implements the content-addressed node store backing a
// Merkle Patricia trie: a mapping from a node's keccak-256 digest to its
// decoded form, persisted through the generic storage.KeyValStore
// abstraction so the same store can run over an in-memory or on-disk
// backend.
package store

import (
	"errors"
	"fmt"

	"sparseth/mpt/errs"
	"sparseth/mpt/nibbles"
	"sparseth/mpt/trienode"
	"sparseth/storage"
)

// Nodes is a content-addressed store of trie nodes. Inserting the same
// logical node twice is idempotent: both inserts produce the same
// digest and the second is a no-op write.
type Nodes struct {
	kv storage.KeyValStore
}

// New creates a Nodes store backed by kv. kv is typically a
// storage/mem.Database for a short-lived partial trie, or a
// storage/badger.Database for a long-lived local cache.
func New(kv storage.KeyValStore) *Nodes {
	return &Nodes{kv: kv}
}

// Insert stores node under its own digest and returns that digest. The
// insert is idempotent: re-inserting identical content is a cheap
// overwrite of the same key.
func (n *Nodes) Insert(node trienode.Node) (trienode.Digest, error) {
	digest := node.Hash()
	if err := n.kv.Put(digest.Bytes(), node.Encode()); err != nil {
		return trienode.Digest{}, fmt.Errorf("store: failed to insert node %s: %w", digest, err)
	}
	return digest, nil
}

// Get retrieves and decodes the node stored under digest. It returns
// a *errs.NodeNotFoundError (built by errs.NodeNotFound) if digest is
// absent — the expected outcome when walking into an unresolved branch
// of a partial trie.
func (n *Nodes) Get(digest trienode.Digest) (trienode.Node, error) {
	raw, err := n.kv.Get(digest.Bytes())
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, errs.NodeNotFound(digest)
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to read node %s: %w", digest, err)
	}

	node, err := trienode.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("store: failed to decode node %s: %w", digest, err)
	}
	return node, nil
}

// Remove deletes the node stored under digest, if present. Removal is
// never required for correctness (spec.md §3, "Lifecycles"); the trie
// does not call it, so nodes made obsolete by a mutation stay stored.
func (n *Nodes) Remove(digest trienode.Digest) error {
	if err := n.kv.Delete(digest.Bytes()); err != nil {
		return fmt.Errorf("store: failed to remove node %s: %w", digest, err)
	}
	return nil
}

// CreateLeaf inserts a new Leaf{key, value} and returns its digest.
func (n *Nodes) CreateLeaf(key nibbles.Path, value []byte) (trienode.Digest, error) {
	return n.Insert(&trienode.Leaf{Key: key, Value: value})
}

// CreateBranchOrExtension builds the smallest subtree that can hold two
// distinct leaves {keyA: valA} and {keyB: valB} that must now coexist.
// It computes the longest common prefix p of the two keys, splits the
// remainders at the first diverging nibble, creates two child leaves
// under a new Branch, and — if p is non-empty — inserts the Branch and
// wraps it in an Extension over p. If p is empty, the Branch itself is
// returned unsaved; the caller is responsible for inserting it (it may
// need to splice it under an existing parent first).
func (n *Nodes) CreateBranchOrExtension(keyA nibbles.Path, valA []byte, keyB nibbles.Path, valB []byte) (trienode.Node, error) {
	prefix := keyA.Intersect(keyB)

	restA, err := keyA.Slice(len(prefix))
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	restB, err := keyB.Slice(len(prefix))
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if len(restA) == 0 || len(restB) == 0 {
		return nil, fmt.Errorf("%w: keys must differ to split into a branch", errs.ErrInvariantViolation)
	}

	nibA, err := restA.FirstNibble()
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	nibB, err := restB.FirstNibble()
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if nibA == nibB {
		return nil, fmt.Errorf("%w: diverging nibble must differ", errs.ErrInvariantViolation)
	}

	tailA, err := restA.Slice(1)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	tailB, err := restB.Slice(1)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	digestA, err := n.CreateLeaf(tailA, valA)
	if err != nil {
		return nil, err
	}
	digestB, err := n.CreateLeaf(tailB, valB)
	if err != nil {
		return nil, err
	}

	branch := &trienode.Branch{}
	branch.Children[nibA] = &digestA
	branch.Children[nibB] = &digestB

	if len(prefix) == 0 {
		return branch, nil
	}

	branchDigest, err := n.Insert(branch)
	if err != nil {
		return nil, err
	}
	return &trienode.Extension{Key: prefix, Child: branchDigest}, nil
}
