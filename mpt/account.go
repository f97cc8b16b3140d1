package mpt

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Account represents an Ethereum account. It is the RLP list value
// stored in the account trie under keccak(address):
// [nonce, balance, storageRoot, codeHash].
type Account struct {
	Nonce       uint64      `json:"nonce"`
	Balance     *big.Int    `json:"balance"`
	StorageRoot common.Hash `json:"storageRoot"`
	CodeHash    common.Hash `json:"codeHash"`
}

// EmptyCodeHash is the code hash of an externally owned account:
// keccak256("").
var EmptyCodeHash = common.HexToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")

// EmptyAccount is the zero-value account an address has before its
// first transaction: no nonce, no balance, an empty storage trie, and
// no code.
func EmptyAccount() *Account {
	return &Account{
		Nonce:       0,
		Balance:     new(big.Int),
		StorageRoot: EmptyRoot(),
		CodeHash:    EmptyCodeHash,
	}
}

// decodeAccount RLP-decodes raw into an Account.
func decodeAccount(raw []byte) (*Account, error) {
	var acc Account
	if err := rlp.DecodeBytes(raw, &acc); err != nil {
		return nil, fmt.Errorf("%w: account: %v", ErrRLPDecode, err)
	}
	return &acc, nil
}

// encodeAccount RLP-encodes acc.
func encodeAccount(acc *Account) ([]byte, error) {
	raw, err := rlp.EncodeToBytes(acc)
	if err != nil {
		return nil, fmt.Errorf("failed to rlp-encode account: %w", err)
	}
	return raw, nil
}
