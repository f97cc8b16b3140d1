// Package nibbles implements the nibble-path and hex-prefix (compact)
// encoding used by the Merkle Patricia trie, as defined in the Ethereum
// Yellow Paper, Appendix C.
package nibbles

import (
	"fmt"

	"sparseth/mpt/errs"
)

// ErrEmptyPath is returned by FirstNibble when called on an empty path.
// It wraps errs.ErrEmptyKey.
var ErrEmptyPath = fmt.Errorf("nibbles: empty path: %w", errs.ErrEmptyKey)

// ErrOffsetOutOfRange is returned by Slice when the offset exceeds the
// path length. It wraps errs.ErrKeyExhausted.
var ErrOffsetOutOfRange = fmt.Errorf("nibbles: offset out of range: %w", errs.ErrKeyExhausted)

// Path is an ordered sequence of 4-bit values, one per element, in the
// range [0, 15].
type Path []byte

// FromRawPath splits each byte of b into a high and low nibble, in order.
// The result always has even length.
func FromRawPath(b []byte) Path {
	out := make(Path, 0, len(b)*2)
	for _, c := range b {
		out = append(out, c>>4, c&0x0F)
	}
	return out
}

// FromEncodedPath decodes a hex-prefix (compact) encoded path, as found
// in the first field of a Leaf or Extension node. It returns the decoded
// nibble path and the terminator flag carried in the leading nibble.
func FromEncodedPath(encoded []byte) (Path, bool, error) {
	if len(encoded) == 0 {
		return nil, false, fmt.Errorf("nibbles: empty encoded path")
	}

	flag := encoded[0] >> 4
	terminator := flag&0x2 != 0
	odd := flag&0x1 != 0

	out := make(Path, 0, len(encoded)*2)
	if odd {
		out = append(out, encoded[0]&0x0F)
	}
	for _, b := range encoded[1:] {
		out = append(out, b>>4, b&0x0F)
	}

	return out, terminator, nil
}

// EncodePath hex-prefix (compact) encodes p, prepending the flag nibble
// `(terminator << 1) | odd` and zero-padding to an even nibble count.
func EncodePath(p Path, terminator bool) []byte {
	odd := len(p)%2 == 1

	flag := byte(0)
	if terminator {
		flag |= 0x2
	}
	if odd {
		flag |= 0x1
	}

	nibbles := make(Path, 0, len(p)+2)
	nibbles = append(nibbles, flag)
	if !odd {
		nibbles = append(nibbles, 0)
	}
	nibbles = append(nibbles, p...)

	out := make([]byte, len(nibbles)/2)
	for i := range out {
		out[i] = nibbles[2*i]<<4 | nibbles[2*i+1]
	}
	return out
}

// Intersect returns the longest common prefix of p and other as a new
// Path. It never fails; a mismatch at index 0 yields an empty Path.
func (p Path) Intersect(other Path) Path {
	n := len(p)
	if len(other) < n {
		n = len(other)
	}

	i := 0
	for i < n && p[i] == other[i] {
		i++
	}
	return p[:i:i]
}

// Slice returns the suffix of p starting at offset. It fails if offset
// exceeds the length of p.
func (p Path) Slice(offset int) (Path, error) {
	if offset > len(p) {
		return nil, fmt.Errorf("%w: offset %d, len %d", ErrOffsetOutOfRange, offset, len(p))
	}
	return p[offset:], nil
}

// FirstNibble returns the value at index 0. It fails if p is empty.
func (p Path) FirstNibble() (byte, error) {
	if len(p) == 0 {
		return 0, ErrEmptyPath
	}
	return p[0], nil
}

// Equal reports whether p and other hold the same nibbles in the same
// order.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Concat returns a new Path holding p followed by other.
func (p Path) Concat(other Path) Path {
	out := make(Path, 0, len(p)+len(other))
	out = append(out, p...)
	out = append(out, other...)
	return out
}

// Raw packs p back into a byte string, two nibbles per byte. It panics
// if p has odd length; callers working with full 32-byte keys always
// hold an even-length path.
func (p Path) Raw() []byte {
	if len(p)%2 != 0 {
		panic("nibbles: Raw called on odd-length path")
	}

	out := make([]byte, len(p)/2)
	for i := range out {
		out[i] = p[2*i]<<4 | p[2*i+1]
	}
	return out
}
