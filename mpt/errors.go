package mpt

import "sparseth/mpt/errs"

// Error kinds surfaced by the trie and state-trie engine. They are
// re-exported here so callers depend only on the mpt package, not on
// its internal errs package.
var (
	ErrRLPDecode          = errs.ErrRLPDecode
	ErrInvalidNodeShape   = errs.ErrInvalidNodeShape
	ErrProofChainBroken   = errs.ErrProofChainBroken
	ErrKeyExhausted       = errs.ErrKeyExhausted
	ErrEmptyKey           = errs.ErrEmptyKey
	ErrInvariantViolation = errs.ErrInvariantViolation
	ErrDepthExceeded      = errs.ErrDepthExceeded
)

// NodeNotFoundError is returned when a trie walk needs a node absent
// from the node store. Use errors.As to recover the missing digest.
type NodeNotFoundError = errs.NodeNotFoundError
