package mpt

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// StorageProofEntry is a single EIP-1186 storage proof entry: the slot
// key, its RLP-encoded value, and the Merkle proof nodes from the
// account's storage root down to that slot.
type StorageProofEntry struct {
	Key   common.Hash
	Value []byte
	Proof [][]byte
}

// EIP1186Result is the bundle an eth_getProof response carries for one
// address: the account fields, the account proof, and zero or more
// storage proofs. It is the shape StateTrie.LoadProof consumes; the
// core package has no dependency on the JSON-RPC client that produces
// it (execution/ethclient adapts its wire type into this one).
type EIP1186Result struct {
	Address      common.Address
	Balance      *big.Int
	Nonce        uint64
	CodeHash     common.Hash
	StorageHash  common.Hash
	AccountProof [][]byte
	StorageProof []StorageProofEntry
}
