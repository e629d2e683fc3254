// Package keys derives and validates the Ed25519 signing keypair used
// by the leader service, and carries the startup canary that guards
// against the signature-algorithm confusion described in the design
// notes: this subsystem must always dispatch through a plain Ed25519
// primitive, never the host chain's own CryptoNote signature routines.
package keys

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/xcash-project/xcash-temp-consensus/internal/xerrors"
)

// SeedSize is the length of an Ed25519 seed.
const SeedSize = ed25519.SeedSize // 32

// PublicKeySize is the length of an Ed25519 public key.
const PublicKeySize = ed25519.PublicKeySize // 32

// PrivateKeySize is the length of the full libsodium-style Ed25519
// signing key: seed (32 bytes) concatenated with public key (32 bytes).
const PrivateKeySize = ed25519.PrivateKeySize // 64

// KeyPair holds a derived Ed25519 signing key and its public half.
type KeyPair struct {
	Private ed25519.PrivateKey
	Public  ed25519.PublicKey
}

// DeriveFromHex parses a 128-hex-character delegate secret-key input,
// interpreting it per the corrected scheme: [seed(32)][pubkey(32)].
// The Ed25519 keypair is derived from the seed; if the derived public
// key does not equal the trailing 32 bytes of the input, this is a
// ConfigError and startup must fail. The earlier (buggy) scheme of
// hashing the hex string with a fast hash and applying scalar
// reduction is not implemented here — see DESIGN.md.
func DeriveFromHex(secretHex string) (KeyPair, error) {
	raw, err := hex.DecodeString(secretHex)
	if err != nil {
		return KeyPair{}, xerrors.NewConfigError("secret key is not valid hex: %v", err)
	}
	if len(raw) != PrivateKeySize {
		return KeyPair{}, xerrors.NewConfigError(
			"secret key must decode to %d bytes (128 hex chars), got %d", PrivateKeySize, len(raw))
	}

	seed := raw[:SeedSize]
	claimedPubkey := raw[SeedSize:]

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	if !constantTimeEqual(pub, claimedPubkey) {
		return KeyPair{}, xerrors.NewConfigError(
			"derived pubkey %x does not match trailing 32 bytes of secret-key input %x", pub, claimedPubkey)
	}

	return KeyPair{Private: priv, Public: pub}, nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// canaryMessage is a fixed string signed at startup to prove the
// derived keypair round-trips through plain Ed25519 sign/verify.
const canaryMessage = "xcash-temp-consensus-startup-canary"

// SelfTest signs a fixed message with kp and verifies it with the
// derived public key, returning an error if the round trip fails.
// Callers should treat a failure here as fatal: it means the signing
// primitive is broken or was accidentally swapped for something else.
func SelfTest(kp KeyPair) error {
	sig := ed25519.Sign(kp.Private, []byte(canaryMessage))
	if !ed25519.Verify(kp.Public, []byte(canaryMessage), sig) {
		return xerrors.NewConfigError("ed25519 self-test failed: sign/verify round trip did not succeed")
	}
	return nil
}

// Sign produces a 64-byte detached Ed25519 signature over msg.
func Sign(kp KeyPair, msg []byte) [64]byte {
	var out [64]byte
	copy(out[:], ed25519.Sign(kp.Private, msg))
	return out
}

// Verify checks a detached Ed25519 signature against pub. The caller
// is responsible for sourcing pub from the allow-list, never from the
// block being verified.
func Verify(pub ed25519.PublicKey, msg []byte, sig [64]byte) bool {
	return ed25519.Verify(pub, msg, sig[:])
}
