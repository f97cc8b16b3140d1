package mpt

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	core "sparseth/mpt"
	"sparseth/mpt/nibbles"
	"sparseth/mpt/store"
	"sparseth/storage/mem"
)

// Account represents an Ethereum account, decoded out of the partial
// state trie built from an eth_getProof response.
type Account = core.Account

// VerifyAccountProof verifies a Merkle proof for an Ethereum account
// against a given state root by building a throwaway partial state
// trie, loading the proof into it, and reading the account back out.
//
// If the account does not exist, but the proof is valid, nil is
// returned.
func VerifyAccountProof(stateRoot common.Hash, address common.Address, proofNodes [][]byte) (*Account, error) {
	state := core.NewStateTrie(stateRoot, store.New(mem.New()))

	if err := state.LoadProof(&core.EIP1186Result{
		Address:      address,
		AccountProof: proofNodes,
	}); err != nil {
		return nil, fmt.Errorf("failed to load account proof: %w", err)
	}

	account, err := state.Account(address)
	if errors.Is(err, core.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read account: %w", err)
	}
	return account, nil
}

// VerifyStorageProof verifies a Merkle proof for a given slot key
// against a given storage root. If there is no value for the given
// slot key, nil is returned.
//
// Note that it is assumed that the slot key is a Keccak256 hash of the
// byte key.
func VerifyStorageProof(storageRoot common.Hash, slotKey common.Hash, proofNodes [][]byte) ([]byte, error) {
	if storageRoot == core.EmptyRoot() {
		// No storage for any key
		return nil, nil
	}

	trie := core.FromRoot(storageRoot, store.New(mem.New()))
	key := nibbles.FromRawPath(slotKey.Bytes())

	if err := trie.LoadProof(key, proofNodes); err != nil {
		return nil, fmt.Errorf("failed to load storage proof: %w", err)
	}

	data, err := trie.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage slot: %w", err)
	}
	if data == nil {
		// No value for the given slot key
		return nil, nil
	}

	var val []byte
	if err := rlp.DecodeBytes(data, &val); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return val, nil
}
