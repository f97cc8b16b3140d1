package trienode

import (
	"github.com/ethereum/go-ethereum/rlp"
	"sparseth/mpt/nibbles"
)

// encodeShort RLP-encodes the 2-item list shared by Leaf and Extension
// nodes: a hex-prefix compact path followed by the value or child field.
func encodeShort(key nibbles.Path, terminator bool, data []byte) []byte {
	return mustEncodeRLPList([][]byte{nibbles.EncodePath(key, terminator), data})
}

// mustEncodeRLPList RLP-encodes a list of byte-string items. Encoding a
// list of []byte values can only fail on writer errors, which cannot
// occur against an in-memory buffer.
func mustEncodeRLPList(items [][]byte) []byte {
	enc, err := rlp.EncodeToBytes(items)
	if err != nil {
		panic("trienode: rlp encode of byte-string list failed: " + err.Error())
	}
	return enc
}
