// Package leaderblock holds the logic the leader service and the
// validator must agree on byte-for-byte: how to strip the
// placeholder metadata a template builder inserts, how to reconstruct
// the exact pre-signature image of a block, and how to turn that
// image into the hash a signature covers. This is the signing
// contract the rest of the spec is built around.
package leaderblock

import (
	"fmt"

	"github.com/xcash-project/xcash-temp-consensus/internal/blockmodel"
	"github.com/xcash-project/xcash-temp-consensus/internal/txextra"
	"github.com/xcash-project/xcash-temp-consensus/internal/varint"
)

// LeaderExtraReserve is the number of bytes reserved in the template
// for the serialized LeaderInfo entry: tag (1) + length varint + id
// varint + id + signature (64). 170 bytes hold the entry for a
// leader_id of up to 102 bytes; a leader_id of 128 bytes (the longest
// BuildLeaderConfig accepts) makes a 197-byte entry, which exceeds the
// reserve.
const LeaderExtraReserve = 170

// ReservePlaceholder returns the all-zero extra-nonce blob the leader
// service passes to GetBlockTemplate so the chain core's weight and
// reward math accounts for the eventual LeaderInfo entry.
func ReservePlaceholder() []byte {
	return make([]byte, LeaderExtraReserve)
}

// StripPlaceholders removes every extra-nonce and padding entry from
// extra, preserving every other entry's relative order. This is step
// 4 of block generation: once the template's sizing placeholder has
// done its job, it must not appear in the byte image the signature
// covers.
func StripPlaceholders(extra []byte) []byte {
	out := make([]byte, 0, len(extra))
	offset := 0
	for offset < len(extra) {
		tag := extra[offset]
		switch tag {
		case txextra.TagPadding:
			offset++
		case txextra.TagNonce:
			length, prefixLen, err := varint.DecodeLengthCapped(extra[offset+1:])
			if err != nil {
				// Malformed trailing bytes; preserve them verbatim
				// rather than risk misparsing attacker/builder noise.
				out = append(out, extra[offset:]...)
				return out
			}
			offset += 1 + prefixLen + int(length)
		case txextra.TagPubkey:
			end := offset + 1 + 32
			if end > len(extra) {
				out = append(out, extra[offset:]...)
				return out
			}
			out = append(out, extra[offset:end]...)
			offset = end
		case txextra.TagLeaderInfo:
			info, err := txextra.GetLeaderInfo(extra[offset:])
			if err != nil {
				out = append(out, extra[offset:]...)
				return out
			}
			entryBytes := txextra.AddLeaderInfo(nil, info.LeaderID, info.Signature)
			out = append(out, entryBytes...)
			offset += len(entryBytes)
		default:
			out = append(out, extra[offset:]...)
			return out
		}
	}
	return out
}

// InsertLeaderInfo inserts the (leaderID, signature) LeaderInfo entry
// into a clone of bl's coinbase extra, invalidating any assumption the
// caller had about bl's previous hash.
func InsertLeaderInfo(bl blockmodel.Block, leaderID string, signature [64]byte) blockmodel.Block {
	out := bl.Clone()
	out.MinerTxExtra = txextra.AddLeaderInfo(out.MinerTxExtra, leaderID, signature)
	return out
}

// SigningImage produces the canonical, placeholder-free block that a
// signature covers: strip extra-nonce/padding placeholders, then
// serialize-and-parse to canonicalize. This is the same sequence the
// leader service performs inline before signing; the validator side
// reconstructs the image through ExtractAndReconstruct instead.
func SigningImage(bl blockmodel.Block) (blockmodel.Block, error) {
	stripped := bl.Clone()
	stripped.MinerTxExtra = StripPlaceholders(stripped.MinerTxExtra)
	canon, err := blockmodel.Canonicalize(stripped)
	if err != nil {
		return blockmodel.Block{}, fmt.Errorf("leaderblock: canonicalizing signing image: %w", err)
	}
	return canon, nil
}

// SigningHash returns the hash a signature covers for bl, after
// producing its SigningImage.
func SigningHash(bl blockmodel.Block) ([32]byte, error) {
	img, err := SigningImage(bl)
	if err != nil {
		return [32]byte{}, err
	}
	return blockmodel.Hash(img), nil
}

// ExtractAndReconstruct is the validator-side counterpart: it pulls
// the LeaderInfo entry out of bl's coinbase extra, then reconstructs
// the signing image the same way the leader did — by stripping the
// LeaderInfo entry (not extra-nonce/padding, which the leader already
// removed before signing) and canonicalizing.
func ExtractAndReconstruct(bl blockmodel.Block) (info txextra.LeaderInfo, signingHash [32]byte, err error) {
	info, err = txextra.GetLeaderInfo(bl.MinerTxExtra)
	if err != nil {
		return txextra.LeaderInfo{}, [32]byte{}, err
	}

	strippedExtra, ok := txextra.RemoveLeaderInfo(bl.MinerTxExtra)
	if !ok {
		return txextra.LeaderInfo{}, [32]byte{}, txextra.ErrNotFound
	}

	imageBlock := bl.Clone()
	imageBlock.MinerTxExtra = strippedExtra
	canon, err := blockmodel.Canonicalize(imageBlock)
	if err != nil {
		return txextra.LeaderInfo{}, [32]byte{}, fmt.Errorf("leaderblock: canonicalizing verification image: %w", err)
	}

	return info, blockmodel.Hash(canon), nil
}
