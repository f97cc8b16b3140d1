package mpt

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	core "sparseth/mpt"
	"sparseth/mpt/store"
	"sparseth/storage"
	"sparseth/storage/mem"
)

// Mutator holds a partial state trie rooted at a trusted block's state
// root and applies EIP-1186 proofs and field mutations to it, recomputing
// the state root deterministically as each mutation is applied. It is
// the collaborator that turns raw eth_getProof responses and observed
// writes (balance/nonce/code/storage changes) into a new, independently
// verifiable state root.
type Mutator struct {
	state *core.StateTrie
}

// NewMutator creates a Mutator rooted at root, backed by an in-memory
// node store. Use NewMutatorWithStore with a storage.KeyValStore built
// over storage/badger to persist the partial trie across restarts.
func NewMutator(root common.Hash) *Mutator {
	return NewMutatorWithStore(root, mem.New())
}

// NewMutatorWithStore creates a Mutator rooted at root, backed by kv.
func NewMutatorWithStore(root common.Hash, kv storage.KeyValStore) *Mutator {
	return &Mutator{state: core.NewStateTrie(root, store.New(kv))}
}

// Root returns the current state root.
func (m *Mutator) Root() common.Hash {
	return m.state.Root()
}

// LoadAccountProof loads an eth_getProof account (and, if present,
// storage) proof for address into the partial trie.
func (m *Mutator) LoadAccountProof(address common.Address, balance *big.Int, nonce uint64, codeHash, storageHash common.Hash, accountProof [][]byte, storageProof []StorageProofEntry) error {
	entries := make([]core.StorageProofEntry, len(storageProof))
	for i, sp := range storageProof {
		entries[i] = core.StorageProofEntry(sp)
	}

	if err := m.state.LoadProof(&core.EIP1186Result{
		Address:      address,
		Balance:      balance,
		Nonce:        nonce,
		CodeHash:     codeHash,
		StorageHash:  storageHash,
		AccountProof: accountProof,
		StorageProof: entries,
	}); err != nil {
		return fmt.Errorf("mutator: failed to load proof for %s: %w", address, err)
	}
	return nil
}

// SetBalance mutates address's balance and returns the new state root.
func (m *Mutator) SetBalance(address common.Address, balance *big.Int) (common.Hash, error) {
	if err := m.state.SetBalance(address, balance); err != nil {
		return common.Hash{}, fmt.Errorf("mutator: failed to set balance: %w", err)
	}
	return m.state.Root(), nil
}

// SetNonce mutates address's nonce and returns the new state root.
func (m *Mutator) SetNonce(address common.Address, nonce uint64) (common.Hash, error) {
	if err := m.state.SetNonce(address, nonce); err != nil {
		return common.Hash{}, fmt.Errorf("mutator: failed to set nonce: %w", err)
	}
	return m.state.Root(), nil
}

// SetCodeHash mutates address's code hash and returns the new state root.
func (m *Mutator) SetCodeHash(address common.Address, codeHash common.Hash) (common.Hash, error) {
	if err := m.state.SetCodeHash(address, codeHash); err != nil {
		return common.Hash{}, fmt.Errorf("mutator: failed to set code hash: %w", err)
	}
	return m.state.Root(), nil
}

// SetStorageSlot mutates the value at slot for address and returns the
// new state root.
func (m *Mutator) SetStorageSlot(address common.Address, slot common.Hash, value *uint256.Int) (common.Hash, error) {
	if err := m.state.SetStorageSlot(address, slot, value); err != nil {
		return common.Hash{}, fmt.Errorf("mutator: failed to set storage slot: %w", err)
	}
	return m.state.Root(), nil
}

// StorageProofEntry mirrors core.StorageProofEntry so callers that do
// not otherwise depend on the core package can build one.
type StorageProofEntry struct {
	Key   common.Hash
	Value []byte
	Proof [][]byte
}
