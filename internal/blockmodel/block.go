// Package blockmodel is this subsystem's narrow view of the host
// chain's block type: only the fields the temporary leader consensus
// touches (timestamp, nonce, and the coinbase transaction's extra
// field), plus enough of the surrounding structure to serialize,
// parse, and hash a block deterministically. Everything else about
// block validity, weight, and reward math belongs to the chain core
// and is out of scope here.
package blockmodel

import (
	"errors"
	"fmt"

	"github.com/xcash-project/xcash-temp-consensus/internal/fasthash"
	"github.com/xcash-project/xcash-temp-consensus/internal/varint"
)

// PrevIDSize is the size of the previous-block-id field.
const PrevIDSize = 32

// ErrMalformed is returned by Parse when the byte image cannot be
// decoded as a block.
var ErrMalformed = errors.New("blockmodel: malformed block bytes")

// Block is the minimal block representation this subsystem needs.
// MinerTxExtra is the coinbase transaction's free-form extra field —
// the only place LeaderInfo lives. OpaqueBody carries every other
// byte the real chain's block/coinbase would contain (other outputs,
// other transaction hashes, RingCT data, ...); this subsystem never
// interprets it, only preserves it byte-for-byte across
// serialize/parse/sign so the signing image stays stable.
type Block struct {
	MajorVersion uint64
	MinorVersion uint64
	Timestamp    uint64
	PrevID       [PrevIDSize]byte
	Nonce        uint32
	MinerTxExtra []byte
	OpaqueBody   []byte
}

// Clone returns a deep copy so callers can mutate without aliasing
// the original's slices.
func (b Block) Clone() Block {
	out := b
	out.MinerTxExtra = append([]byte(nil), b.MinerTxExtra...)
	out.OpaqueBody = append([]byte(nil), b.OpaqueBody...)
	return out
}

// Serialize produces the canonical byte image of the block. Both the
// leader service and the validator serialize-then-parse before
// hashing, so any cached state a builder attached to a Block value
// never leaks into the signing or verification hash.
func (b Block) Serialize() []byte {
	out := make([]byte, 0, 64+len(b.MinerTxExtra)+len(b.OpaqueBody))
	out = varint.Encode(out, b.MajorVersion)
	out = varint.Encode(out, b.MinorVersion)
	out = varint.Encode(out, b.Timestamp)
	out = append(out, b.PrevID[:]...)
	out = append(out, byte(b.Nonce), byte(b.Nonce>>8), byte(b.Nonce>>16), byte(b.Nonce>>24))
	out = varint.Encode(out, uint64(len(b.MinerTxExtra)))
	out = append(out, b.MinerTxExtra...)
	out = varint.Encode(out, uint64(len(b.OpaqueBody)))
	out = append(out, b.OpaqueBody...)
	return out
}

// Parse decodes a byte image produced by Serialize. Combined with
// Serialize, this gives the canonicalization step both the leader
// service and validator rely on: serialize, then parse the result
// back into a fresh Block value, discarding anything not represented
// in the wire image.
func Parse(buf []byte) (Block, error) {
	var b Block
	rest := buf

	majorVersion, n, err := varint.Decode(rest)
	if err != nil {
		return Block{}, fmt.Errorf("%w: major version: %v", ErrMalformed, err)
	}
	b.MajorVersion = majorVersion
	rest = rest[n:]

	minorVersion, n, err := varint.Decode(rest)
	if err != nil {
		return Block{}, fmt.Errorf("%w: minor version: %v", ErrMalformed, err)
	}
	b.MinorVersion = minorVersion
	rest = rest[n:]

	timestamp, n, err := varint.Decode(rest)
	if err != nil {
		return Block{}, fmt.Errorf("%w: timestamp: %v", ErrMalformed, err)
	}
	b.Timestamp = timestamp
	rest = rest[n:]

	if len(rest) < PrevIDSize+4 {
		return Block{}, fmt.Errorf("%w: truncated header", ErrMalformed)
	}
	copy(b.PrevID[:], rest[:PrevIDSize])
	rest = rest[PrevIDSize:]
	b.Nonce = uint32(rest[0]) | uint32(rest[1])<<8 | uint32(rest[2])<<16 | uint32(rest[3])<<24
	rest = rest[4:]

	extraLen, n, err := varint.DecodeLengthCapped(rest)
	if err != nil {
		return Block{}, fmt.Errorf("%w: extra length: %v", ErrMalformed, err)
	}
	rest = rest[n:]
	b.MinerTxExtra = append([]byte(nil), rest[:extraLen]...)
	rest = rest[extraLen:]

	bodyLen, n, err := varint.DecodeLengthCapped(rest)
	if err != nil {
		return Block{}, fmt.Errorf("%w: body length: %v", ErrMalformed, err)
	}
	rest = rest[n:]
	if uint64(len(rest)) != bodyLen {
		return Block{}, fmt.Errorf("%w: trailing bytes after body", ErrMalformed)
	}
	b.OpaqueBody = append([]byte(nil), rest...)

	return b, nil
}

// Canonicalize serializes and re-parses b, matching the "serialize
// then parse" step both the leader service and validator perform
// before hashing, so hashing never depends on cached or non-canonical
// in-memory state.
func Canonicalize(b Block) (Block, error) {
	return Parse(b.Serialize())
}

// Hash computes the block-hash definition used for both signing and
// verification: a single fast-hash pass over the canonical serialized
// bytes. The host chain's real block ID hashing (a CryptoNight-family
// tree hash) is out of scope; the temporary consensus signs and
// verifies against this fast-hash definition instead, since it is a
// pure function of the serialized bytes and therefore immune to the
// stale-cache problem the design notes call out.
func Hash(b Block) [32]byte {
	return fasthash.Sum(b.Serialize())
}
