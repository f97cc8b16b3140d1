// Package errs holds the sentinel error values shared across the mpt
// core (nibbles, trienode, store, and the trie/state-trie engine).
// Errors propagate unmodified in kind; callers match with errors.Is
// or errors.As (for *NodeNotFoundError).
package errs

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrRLPDecode signals malformed RLP in an input node or account
	// record.
	ErrRLPDecode = errors.New("mpt: malformed rlp")

	// ErrInvalidNodeShape signals a structurally invalid node: wrong
	// item count, wrong digest length in a branch slot, or a hash
	// length other than 32 bytes in an extension target.
	ErrInvalidNodeShape = errors.New("mpt: invalid node shape")

	// ErrProofChainBroken signals that consecutive proof nodes do not
	// chain by digest along the target key.
	ErrProofChainBroken = errors.New("mpt: proof chain broken")

	// ErrKeyExhausted signals that an algorithm ran out of path to
	// consume (e.g. slicing past the end of a nibble path).
	ErrKeyExhausted = errors.New("mpt: key exhausted")

	// ErrEmptyKey signals an operation that requires a non-empty key
	// was given one (e.g. first-nibble of an empty path).
	ErrEmptyKey = errors.New("mpt: empty key")

	// ErrInvariantViolation signals an internal precondition failure
	// that should be unreachable in correct code.
	ErrInvariantViolation = errors.New("mpt: invariant violation")

	// ErrDepthExceeded signals that a trie walk exceeded the maximum
	// possible depth of a 256-bit key domain (64 nibbles).
	ErrDepthExceeded = errors.New("mpt: depth exceeded")
)

// NodeNotFoundError signals that a walk needed a node absent from the
// node store — a partial-trie miss the caller must resolve by supplying
// more proof data.
type NodeNotFoundError struct {
	Digest common.Hash
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("mpt: node not found: %s", e.Digest)
}

// NodeNotFound returns the error signaling that digest is absent from
// the node store.
func NodeNotFound(digest common.Hash) error {
	return &NodeNotFoundError{Digest: digest}
}
