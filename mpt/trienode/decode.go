package trienode

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"sparseth/mpt/errs"
	"sparseth/mpt/nibbles"
)

const shortNodeLength = 2

// Decode RLP-decodes a node from its raw serialization, as found in a
// proof list entry or stored in the node store. Item count 2 yields a
// Leaf or Extension depending on the compact path's terminator flag;
// item count 17 yields a Branch. Any other count is a decoding error.
func Decode(rlpData []byte) (Node, error) {
	var decoded []interface{}
	if err := rlp.DecodeBytes(rlpData, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrRLPDecode, err)
	}

	switch len(decoded) {
	case shortNodeLength:
		return decodeShort(decoded)
	case branchWidth:
		return decodeBranch(decoded)
	default:
		return nil, fmt.Errorf("%w: node with %d items", errs.ErrInvalidNodeShape, len(decoded))
	}
}

func decodeShort(decoded []interface{}) (Node, error) {
	compactPath, ok := decoded[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: short node path is not a byte string", errs.ErrInvalidNodeShape)
	}
	data, ok := decoded[1].([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: short node data is not a byte string", errs.ErrInvalidNodeShape)
	}

	key, terminator, err := nibbles.FromEncodedPath(compactPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidNodeShape, err)
	}

	if terminator {
		return &Leaf{Key: key, Value: data}, nil
	}

	if len(data) != 32 {
		return nil, fmt.Errorf("%w: extension child is %d bytes, want 32", errs.ErrInvalidNodeShape, len(data))
	}
	return &Extension{Key: key, Child: common.BytesToHash(data)}, nil
}

func decodeBranch(decoded []interface{}) (Node, error) {
	var children [branchWidth - 1]*Digest
	for i := 0; i < branchWidth-1; i++ {
		b, ok := decoded[i].([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: branch slot %d is not a byte string", errs.ErrInvalidNodeShape, i)
		}
		switch len(b) {
		case 0:
			// absent slot
		case 32:
			d := common.BytesToHash(b)
			children[i] = &d
		default:
			return nil, fmt.Errorf("%w: branch slot %d is %d bytes, want 0 or 32", errs.ErrInvalidNodeShape, i, len(b))
		}
	}

	value, ok := decoded[branchWidth-1].([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: branch value is not a byte string", errs.ErrInvalidNodeShape)
	}

	return &Branch{Children: children, Value: value}, nil
}
