package mpt

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"sparseth/mpt/nibbles"
	"sparseth/mpt/store"
	"sparseth/mpt/trienode"
)

// ErrAccountNotFound is returned by accessors when the account trie
// proves that an address holds no account — as opposed to a
// *NodeNotFoundError, which means the local partial trie cannot yet
// answer the question at all.
var ErrAccountNotFound = errors.New("mpt: account not found")

// StateTrie is the two-level composition of spec.md §4.5: an account
// trie keyed by keccak(address), whose values are RLP-encoded Account
// records, each owning an independent storage trie keyed by
// keccak(slot). Every trie shares the same content-addressed node
// store; digests never collide across trees because they are hashes of
// their own distinct content.
type StateTrie struct {
	nodes        *store.Nodes
	accountTrie  *Trie
	storageTries map[common.Address]*Trie
}

// NewStateTrie creates a StateTrie rooted at the given trusted state
// root, backed by nodes.
func NewStateTrie(root trienode.Digest, nodes *store.Nodes) *StateTrie {
	return &StateTrie{
		nodes:        nodes,
		accountTrie:  FromRoot(root, nodes),
		storageTries: make(map[common.Address]*Trie),
	}
}

// Root returns the current state root: the account trie's root.
func (s *StateTrie) Root() trienode.Digest {
	return s.accountTrie.Root()
}

// LoadProof ingests one eth_getProof result: the account proof is loaded
// into the account trie, and if storage proofs are present, the
// address's storage trie is created (or reused) rooted at the result's
// storage hash, and each storage proof is loaded into it.
func (s *StateTrie) LoadProof(result *EIP1186Result) error {
	addrKey := addressKey(result.Address)
	if err := s.accountTrie.LoadProof(addrKey, result.AccountProof); err != nil {
		return fmt.Errorf("failed to load account proof for %s: %w", result.Address, err)
	}

	if len(result.StorageProof) == 0 {
		return nil
	}

	storageTrie, ok := s.storageTries[result.Address]
	if !ok {
		storageTrie = FromRoot(result.StorageHash, s.nodes)
		s.storageTries[result.Address] = storageTrie
	}

	for _, sp := range result.StorageProof {
		slotKey := slotKeyOf(sp.Key)
		if err := storageTrie.LoadProof(slotKey, sp.Proof); err != nil {
			return fmt.Errorf("failed to load storage proof for %s slot %s: %w", result.Address, sp.Key, err)
		}
	}
	return nil
}

// Account looks up the decoded account record for addr. It returns
// ErrAccountNotFound if the trie proves addr holds no account, or a
// *NodeNotFoundError if the local partial trie cannot yet answer.
func (s *StateTrie) Account(addr common.Address) (*Account, error) {
	raw, err := s.accountTrie.Get(addressKey(addr))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return decodeAccount(raw)
}

// Balance returns addr's current balance.
func (s *StateTrie) Balance(addr common.Address) (*big.Int, error) {
	acc, err := s.Account(addr)
	if err != nil {
		return nil, err
	}
	return acc.Balance, nil
}

// Nonce returns addr's current nonce.
func (s *StateTrie) Nonce(addr common.Address) (uint64, error) {
	acc, err := s.Account(addr)
	if err != nil {
		return 0, err
	}
	return acc.Nonce, nil
}

// CodeHash returns addr's current code hash.
func (s *StateTrie) CodeHash(addr common.Address) (common.Hash, error) {
	acc, err := s.Account(addr)
	if err != nil {
		return common.Hash{}, err
	}
	return acc.CodeHash, nil
}

// StorageRoot returns addr's current storage root, as recorded in its
// account.
func (s *StateTrie) StorageRoot(addr common.Address) (common.Hash, error) {
	acc, err := s.Account(addr)
	if err != nil {
		return common.Hash{}, err
	}
	return acc.StorageRoot, nil
}

// StorageSlot returns the raw value stored at slot for addr, or nil if
// the slot is provably empty. The address's storage trie must already
// have been populated by LoadProof.
func (s *StateTrie) StorageSlot(addr common.Address, slot common.Hash) ([]byte, error) {
	storageTrie, ok := s.storageTries[addr]
	if !ok {
		return nil, fmt.Errorf("no storage trie loaded for %s", addr)
	}

	raw, err := storageTrie.Get(slotKeyOf(slot))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var value []byte
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: storage slot: %v", ErrRLPDecode, err)
	}
	return value, nil
}

// SetBalance mutates addr's balance and re-roots the account trie
// (and, transitively, StateTrie.Root) to reflect it.
func (s *StateTrie) SetBalance(addr common.Address, balance *big.Int) error {
	return s.mutateAccount(addr, func(acc *Account) { acc.Balance = balance })
}

// SetNonce mutates addr's nonce.
func (s *StateTrie) SetNonce(addr common.Address, nonce uint64) error {
	return s.mutateAccount(addr, func(acc *Account) { acc.Nonce = nonce })
}

// SetCodeHash mutates addr's code hash.
func (s *StateTrie) SetCodeHash(addr common.Address, codeHash common.Hash) error {
	return s.mutateAccount(addr, func(acc *Account) { acc.CodeHash = codeHash })
}

// SetStorageSlot mutates the value stored at slot for addr: the inner
// storage trie is updated first, then the account record is rewritten
// with the new storage root, per spec.md's design note that storage
// mutation is always a two-step update.
func (s *StateTrie) SetStorageSlot(addr common.Address, slot common.Hash, value *uint256.Int) error {
	storageTrie, ok := s.storageTries[addr]
	if !ok {
		acc, err := s.Account(addr)
		if err != nil {
			return err
		}
		storageTrie = FromRoot(acc.StorageRoot, s.nodes)
		s.storageTries[addr] = storageTrie
	}

	encoded, err := rlp.EncodeToBytes(value.Bytes())
	if err != nil {
		return fmt.Errorf("failed to rlp-encode storage value: %w", err)
	}
	if err := storageTrie.Set(slotKeyOf(slot), encoded); err != nil {
		return fmt.Errorf("failed to set storage slot %s for %s: %w", slot, addr, err)
	}

	return s.mutateAccount(addr, func(acc *Account) { acc.StorageRoot = storageTrie.Root() })
}

func (s *StateTrie) mutateAccount(addr common.Address, mutate func(*Account)) error {
	acc, err := s.Account(addr)
	if err != nil {
		return err
	}

	mutate(acc)

	raw, err := encodeAccount(acc)
	if err != nil {
		return err
	}
	if err := s.accountTrie.Set(addressKey(addr), raw); err != nil {
		return fmt.Errorf("failed to set account %s: %w", addr, err)
	}
	return nil
}

func addressKey(addr common.Address) nibbles.Path {
	return nibbles.FromRawPath(crypto.Keccak256(addr.Bytes()))
}

func slotKeyOf(slot common.Hash) nibbles.Path {
	return nibbles.FromRawPath(crypto.Keccak256(slot.Bytes()))
}
