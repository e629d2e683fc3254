package keys_test

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcash-project/xcash-temp-consensus/internal/keys"
)

func TestDeriveFromHexZeroSeed(t *testing.T) {
	seed := make([]byte, keys.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	input := hex.EncodeToString(append(append([]byte{}, seed...), pub...))
	kp, err := keys.DeriveFromHex(input)
	require.NoError(t, err)
	require.Equal(t, pub, kp.Public)
}

func TestDeriveFromHexRejectsMismatchedPubkey(t *testing.T) {
	seed := make([]byte, keys.SeedSize)
	wrongPubkey := make([]byte, keys.PublicKeySize)
	wrongPubkey[0] = 0xFF

	input := hex.EncodeToString(append(append([]byte{}, seed...), wrongPubkey...))
	_, err := keys.DeriveFromHex(input)
	require.Error(t, err)
}

func TestDeriveFromHexRejectsWrongLength(t *testing.T) {
	_, err := keys.DeriveFromHex("abcd")
	require.Error(t, err)
}

func TestDeriveFromHexRejectsBadHex(t *testing.T) {
	_, err := keys.DeriveFromHex("zz" + hexOfLen(126))
	require.Error(t, err)
}

func hexOfLen(n int) string {
	b := make([]byte, n/2)
	return hex.EncodeToString(b)
}

func TestSelfTestPassesForValidKeyPair(t *testing.T) {
	seed := make([]byte, keys.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)
	kp := keys.KeyPair{Private: priv, Public: priv.Public().(ed25519.PublicKey)}
	require.NoError(t, keys.SelfTest(kp))
}

func TestSignVerify(t *testing.T) {
	seed := make([]byte, keys.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)
	kp := keys.KeyPair{Private: priv, Public: priv.Public().(ed25519.PublicKey)}

	var hash [32]byte
	for i := range hash {
		hash[i] = 0xFF
	}

	sig := keys.Sign(kp, hash[:])
	require.True(t, keys.Verify(kp.Public, hash[:], sig))

	sig[0] ^= 0x01
	require.False(t, keys.Verify(kp.Public, hash[:], sig))
}
