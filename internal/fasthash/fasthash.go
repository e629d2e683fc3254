// Package fasthash wraps the CryptoNote family's "fast hash" primitive:
// a single Keccak-256 pass with no CryptoNight tree-hash step. This is
// used for the deterministic-nonce derivation and, transitively, as the
// hash primitive available to the host chain's block-hash definition.
package fasthash

import "golang.org/x/crypto/sha3"

// Size is the digest size in bytes.
const Size = 32

// Sum returns the Keccak-256 digest of data.
func Sum(data []byte) [Size]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// FirstU32LE returns the first four bytes of h interpreted as a
// little-endian uint32, matching the host chain's convention for
// turning a hash into a 32-bit nonce.
func FirstU32LE(h [Size]byte) uint32 {
	return uint32(h[0]) | uint32(h[1])<<8 | uint32(h[2])<<16 | uint32(h[3])<<24
}
