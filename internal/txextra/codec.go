// Package txextra implements the coinbase-extra codec that embeds the
// temporary-consensus LeaderInfo entry — (leader_id, signature) — inside
// a transaction's free-form extra TLV byte stream.
//
// The stream mixes entry shapes the way the host chain's own tx_extra
// does: a fixed-size pubkey entry, a length-prefixed nonce entry, single
// zero-byte padding entries, and the length-prefixed LeaderInfo entry
// this package owns. add/get/remove only ever look for the LeaderInfo
// tag; every other tag is skipped using just enough of its shape to
// find the next entry boundary.
package txextra

import (
	"errors"

	"github.com/xcash-project/xcash-temp-consensus/internal/varint"
)

const (
	// TagPadding marks one padding byte. Real padding runs are simply
	// repeated instances of this tag with no payload.
	TagPadding byte = 0x00
	// TagPubkey marks the transaction public key: a fixed 32-byte
	// payload with no length prefix.
	TagPubkey byte = 0x01
	// TagNonce marks the extra-nonce entry: a varint length followed by
	// that many payload bytes.
	TagNonce byte = 0x02
	// TagLeaderInfo is the tag reserved for this subsystem's metadata.
	// It is distinct from every tag the host chain otherwise defines.
	TagLeaderInfo byte = 0xA0
)

// SignatureSize is the fixed length of an Ed25519 detached signature.
const SignatureSize = 64

const pubkeyPayloadSize = 32

var (
	// ErrNotFound is returned by GetLeaderInfo/RemoveLeaderInfo when no
	// LeaderInfo entry is present in the stream.
	ErrNotFound = errors.New("txextra: no LeaderInfo entry present")
)

// LeaderInfo is the decoded (leader_id, signature) pair.
type LeaderInfo struct {
	LeaderID  string
	Signature [SignatureSize]byte
}

// AddLeaderInfo appends a new LeaderInfo TLV entry to the end of extra.
// It never merges with, or removes, any entry already present.
func AddLeaderInfo(extra []byte, leaderID string, signature [SignatureSize]byte) []byte {
	payload := make([]byte, 0, len(leaderID)+SignatureSize+4)
	payload = varint.Encode(payload, uint64(len(leaderID)))
	payload = append(payload, []byte(leaderID)...)
	payload = append(payload, signature[:]...)

	out := make([]byte, 0, len(extra)+1+5+len(payload))
	out = append(out, extra...)
	out = append(out, TagLeaderInfo)
	out = varint.Encode(out, uint64(len(payload)))
	out = append(out, payload...)
	return out
}

// entrySpan describes the byte range [start, end) of one TLV entry and
// whether it decoded as LeaderInfo.
type entrySpan struct {
	start, end int
	isLeader   bool
	info       LeaderInfo
}

// scan walks extra left to right, skipping entries of every known
// shape, and returns the span of the first LeaderInfo entry found.
// It never reads past len(extra) and never trusts a length field that
// claims more bytes than remain.
func scan(extra []byte) (entrySpan, bool) {
	offset := 0
	for offset < len(extra) {
		tag := extra[offset]
		switch tag {
		case TagPadding:
			offset++
		case TagPubkey:
			if offset+1+pubkeyPayloadSize > len(extra) {
				return entrySpan{}, false
			}
			offset += 1 + pubkeyPayloadSize
		case TagNonce:
			length, prefixLen, err := varint.DecodeLengthCapped(extra[offset+1:])
			if err != nil {
				return entrySpan{}, false
			}
			offset += 1 + prefixLen + int(length)
		case TagLeaderInfo:
			length, prefixLen, err := varint.DecodeLengthCapped(extra[offset+1:])
			if err != nil {
				return entrySpan{}, false
			}
			payloadStart := offset + 1 + prefixLen
			payloadEnd := payloadStart + int(length)
			info, ok := decodeLeaderPayload(extra[payloadStart:payloadEnd])
			if !ok {
				return entrySpan{}, false
			}
			return entrySpan{start: offset, end: payloadEnd, isLeader: true, info: info}, true
		default:
			// An unrecognized tag means we can no longer trust our
			// position in the stream; stop rather than risk
			// misinterpreting attacker-controlled bytes as an entry.
			return entrySpan{}, false
		}
	}
	return entrySpan{}, false
}

func decodeLeaderPayload(payload []byte) (LeaderInfo, bool) {
	idLen, prefixLen, err := varint.DecodeLengthCapped(payload)
	if err != nil {
		return LeaderInfo{}, false
	}
	idStart := prefixLen
	idEnd := idStart + int(idLen)
	sigEnd := idEnd + SignatureSize
	if sigEnd != len(payload) {
		return LeaderInfo{}, false
	}
	info := LeaderInfo{LeaderID: string(payload[idStart:idEnd])}
	copy(info.Signature[:], payload[idEnd:sigEnd])
	return info, true
}

// GetLeaderInfo scans extra left to right and returns the first
// LeaderInfo entry, or ErrNotFound.
func GetLeaderInfo(extra []byte) (LeaderInfo, error) {
	span, ok := scan(extra)
	if !ok {
		return LeaderInfo{}, ErrNotFound
	}
	return span.info, nil
}

// RemoveLeaderInfo returns a new extra byte image with the first
// LeaderInfo entry spliced out, preserving the relative order and
// exact bytes of every other entry. It returns ok=false, and the
// input unchanged, if no LeaderInfo entry is present.
func RemoveLeaderInfo(extra []byte) (out []byte, ok bool) {
	span, found := scan(extra)
	if !found {
		return extra, false
	}
	out = make([]byte, 0, len(extra)-(span.end-span.start))
	out = append(out, extra[:span.start]...)
	out = append(out, extra[span.end:]...)
	return out, true
}
