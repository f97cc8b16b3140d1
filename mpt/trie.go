package mpt

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"sparseth/mpt/errs"
	"sparseth/mpt/nibbles"
	"sparseth/mpt/store"
	"sparseth/mpt/trienode"
)

// maxNibbleDepth bounds recursion: a 256-bit key domain is at most 64
// nibbles deep, so any walk exceeding that is either a malformed proof
// or a bug in the caller's key derivation.
const maxNibbleDepth = 64

// emptyRootHash is the well-known root of a trie containing no entries:
// keccak256(rlp("")).
var emptyRootHash = common.HexToHash("0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

// EmptyRoot returns the sentinel root digest of a trie with no entries.
func EmptyRoot() trienode.Digest {
	return emptyRootHash
}

// Trie is a partial Merkle-Patricia trie over a content-addressed node
// store. It has no modes: every mutation either succeeds and advances
// Root, or fails and leaves the trie exactly as it was.
type Trie struct {
	root  trienode.Digest
	nodes *store.Nodes
}

// NewEmpty creates a Trie with no entries, backed by nodes.
func NewEmpty(nodes *store.Nodes) *Trie {
	return &Trie{root: EmptyRoot(), nodes: nodes}
}

// FromRoot creates a Trie rooted at a trusted, externally supplied
// digest — typically a block header's state root, or an account's
// storage root. The trie is partial until proofs are loaded into nodes.
func FromRoot(root trienode.Digest, nodes *store.Nodes) *Trie {
	return &Trie{root: root, nodes: nodes}
}

// Root returns the trie's current root digest.
func (t *Trie) Root() trienode.Digest {
	return t.root
}

// Get looks up the value stored at path, walking from the root. It
// returns (nil, nil) if path is provably absent, and a *NodeNotFoundError
// if the walk needs a node this partial trie does not hold.
func (t *Trie) Get(path nibbles.Path) ([]byte, error) {
	if t.root == EmptyRoot() {
		return nil, nil
	}
	return t.getAt(t.root, path, 0)
}

func (t *Trie) getAt(digest trienode.Digest, remaining nibbles.Path, depth int) ([]byte, error) {
	if depth > maxNibbleDepth {
		return nil, errs.ErrDepthExceeded
	}

	node, err := t.nodes.Get(digest)
	if err != nil {
		return nil, err
	}

	switch n := node.(type) {
	case *trienode.Leaf:
		if n.Key.Equal(remaining) {
			return n.Value, nil
		}
		return nil, nil

	case *trienode.Extension:
		if len(remaining) < len(n.Key) || !n.Key.Equal(remaining[:len(n.Key)]) {
			return nil, nil
		}
		rest, err := remaining.Slice(len(n.Key))
		if err != nil {
			return nil, err
		}
		return t.getAt(n.Child, rest, depth+len(n.Key))

	case *trienode.Branch:
		if len(remaining) == 0 {
			if len(n.Value) == 0 {
				return nil, nil
			}
			return n.Value, nil
		}
		idx, err := remaining.FirstNibble()
		if err != nil {
			return nil, err
		}
		child := n.Children[idx]
		if child == nil {
			return nil, nil
		}
		rest, err := remaining.Slice(1)
		if err != nil {
			return nil, err
		}
		return t.getAt(*child, rest, depth+1)

	default:
		return nil, fmt.Errorf("%w: unknown node type %T", errs.ErrInvariantViolation, node)
	}
}

// Set inserts or updates the value stored at path. The rewrite is
// computed bottom-up into freshly inserted nodes before t.root is ever
// touched, so a failing Set leaves the trie completely unchanged.
func (t *Trie) Set(path nibbles.Path, value []byte) error {
	newRoot, err := t.setAt(t.root, path, value, 0)
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

func (t *Trie) setAt(digest trienode.Digest, path nibbles.Path, value []byte, depth int) (trienode.Digest, error) {
	if depth > maxNibbleDepth {
		return trienode.Digest{}, errs.ErrDepthExceeded
	}

	if digest == EmptyRoot() {
		return t.nodes.CreateLeaf(path, value)
	}

	node, err := t.nodes.Get(digest)
	if err != nil {
		return trienode.Digest{}, err
	}

	switch n := node.(type) {
	case *trienode.Leaf:
		if n.Key.Equal(path) {
			return t.nodes.CreateLeaf(path, value)
		}
		split, err := t.nodes.CreateBranchOrExtension(n.Key, n.Value, path, value)
		if err != nil {
			return trienode.Digest{}, err
		}
		return t.nodes.Insert(split)

	case *trienode.Extension:
		if len(path) >= len(n.Key) && n.Key.Equal(path[:len(n.Key)]) {
			rest, err := path.Slice(len(n.Key))
			if err != nil {
				return trienode.Digest{}, err
			}
			newChild, err := t.setAt(n.Child, rest, value, depth+len(n.Key))
			if err != nil {
				return trienode.Digest{}, err
			}
			return t.nodes.Insert(&trienode.Extension{Key: n.Key, Child: newChild})
		}
		return t.splitExtension(n, path, value)

	case *trienode.Branch:
		newBranch := *n
		if len(path) == 0 {
			newBranch.Value = value
			return t.nodes.Insert(&newBranch)
		}

		idx, err := path.FirstNibble()
		if err != nil {
			return trienode.Digest{}, err
		}
		rest, err := path.Slice(1)
		if err != nil {
			return trienode.Digest{}, err
		}

		if n.Children[idx] == nil {
			leaf, err := t.nodes.CreateLeaf(rest, value)
			if err != nil {
				return trienode.Digest{}, err
			}
			newBranch.Children[idx] = &leaf
		} else {
			child, err := t.setAt(*n.Children[idx], rest, value, depth+1)
			if err != nil {
				return trienode.Digest{}, err
			}
			newBranch.Children[idx] = &child
		}
		return t.nodes.Insert(&newBranch)

	default:
		return trienode.Digest{}, fmt.Errorf("%w: unknown node type %T", errs.ErrInvariantViolation, node)
	}
}

// splitExtension handles Set landing on an Extension whose key is not a
// prefix of the remaining path: the extension must be split into a
// branch at the first diverging nibble, preserving its existing child
// under one slot and attaching a new leaf under the other.
func (t *Trie) splitExtension(n *trienode.Extension, path nibbles.Path, value []byte) (trienode.Digest, error) {
	prefix := n.Key.Intersect(path)

	restExt, err := n.Key.Slice(len(prefix))
	if err != nil {
		return trienode.Digest{}, err
	}
	restPath, err := path.Slice(len(prefix))
	if err != nil {
		return trienode.Digest{}, err
	}
	if len(restExt) == 0 {
		return trienode.Digest{}, fmt.Errorf("%w: extension split produced no remainder", errs.ErrInvariantViolation)
	}

	diffNibble, err := restExt.FirstNibble()
	if err != nil {
		return trienode.Digest{}, err
	}

	existingChild := n.Child
	if tail, err := restExt.Slice(1); err == nil && len(tail) > 0 {
		ext := &trienode.Extension{Key: tail, Child: n.Child}
		existingChild, err = t.nodes.Insert(ext)
		if err != nil {
			return trienode.Digest{}, err
		}
	}

	branch := &trienode.Branch{}
	branch.Children[diffNibble] = &existingChild

	if len(restPath) == 0 {
		branch.Value = value
	} else {
		newNibble, err := restPath.FirstNibble()
		if err != nil {
			return trienode.Digest{}, err
		}
		tail, err := restPath.Slice(1)
		if err != nil {
			return trienode.Digest{}, err
		}
		leaf, err := t.nodes.CreateLeaf(tail, value)
		if err != nil {
			return trienode.Digest{}, err
		}
		branch.Children[newNibble] = &leaf
	}

	if len(prefix) == 0 {
		return t.nodes.Insert(branch)
	}

	branchDigest, err := t.nodes.Insert(branch)
	if err != nil {
		return trienode.Digest{}, err
	}
	return t.nodes.Insert(&trienode.Extension{Key: prefix, Child: branchDigest})
}

// LoadProof ingests an ordered list of RLP-encoded nodes, from the trie
// root downward along key's nibble path, as returned by eth_getProof.
// Each node is decoded and inserted into the node store; the chain is
// verified as it is consumed: the first node must hash to the trie's
// current root, and every subsequent node must be referenced by the
// previous one along key.
func (t *Trie) LoadProof(key nibbles.Path, proof [][]byte) error {
	if len(proof) == 0 {
		return fmt.Errorf("%w: empty proof", errs.ErrProofChainBroken)
	}

	decoded := make([]trienode.Node, len(proof))
	remaining := key
	for i, raw := range proof {
		node, err := trienode.Decode(raw)
		if err != nil {
			return err
		}
		digest := node.Hash()

		if i == 0 {
			if digest != t.root {
				return fmt.Errorf("%w: proof root %s does not match trie root %s", errs.ErrProofChainBroken, digest, t.root)
			}
		} else {
			child, next, ok := childAlong(decoded[i-1], remaining)
			if !ok || child == nil || *child != digest {
				return fmt.Errorf("%w: node %d is not referenced by node %d along the proven key", errs.ErrProofChainBroken, i, i-1)
			}
			remaining = next
		}

		decoded[i] = node
	}

	for _, node := range decoded {
		if _, err := t.nodes.Insert(node); err != nil {
			return err
		}
	}
	return nil
}

// childAlong reports the digest referenced by node along the next
// nibble(s) of remaining, and the path left over after consuming them.
// ok is false only when node is a type that cannot meaningfully
// reference a child (a Leaf) — any other divergence (excluded key)
// yields a nil child, which the caller treats as a chain break only
// when another proof node still follows.
func childAlong(node trienode.Node, remaining nibbles.Path) (*trienode.Digest, nibbles.Path, bool) {
	switch n := node.(type) {
	case *trienode.Extension:
		if len(remaining) < len(n.Key) || !n.Key.Equal(remaining[:len(n.Key)]) {
			return nil, remaining, true
		}
		rest, err := remaining.Slice(len(n.Key))
		if err != nil {
			return nil, remaining, false
		}
		return &n.Child, rest, true

	case *trienode.Branch:
		if len(remaining) == 0 {
			return nil, remaining, true
		}
		idx, err := remaining.FirstNibble()
		if err != nil {
			return nil, remaining, false
		}
		rest, err := remaining.Slice(1)
		if err != nil {
			return nil, remaining, false
		}
		return n.Children[idx], rest, true

	default:
		return nil, remaining, false
	}
}
