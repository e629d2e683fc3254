package leaderblock_test

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcash-project/xcash-temp-consensus/internal/blockmodel"
	"github.com/xcash-project/xcash-temp-consensus/internal/leaderblock"
	"github.com/xcash-project/xcash-temp-consensus/internal/txextra"
	"github.com/xcash-project/xcash-temp-consensus/internal/varint"
)

func templateWithPlaceholder() blockmodel.Block {
	var prev [blockmodel.PrevIDSize]byte
	extra := []byte{txextra.TagPubkey}
	extra = append(extra, make([]byte, 32)...)
	extra = append(extra, txextra.TagNonce)
	extra = varint.Encode(extra, uint64(leaderblock.LeaderExtraReserve))
	extra = append(extra, leaderblock.ReservePlaceholder()...)
	return blockmodel.Block{
		MajorVersion: 1,
		Timestamp:    1700000000,
		PrevID:       prev,
		MinerTxExtra: extra,
		OpaqueBody:   []byte("body"),
	}
}

func TestStripPlaceholdersRemovesNonceKeepsPubkey(t *testing.T) {
	bl := templateWithPlaceholder()
	stripped := leaderblock.StripPlaceholders(bl.MinerTxExtra)
	require.Equal(t, byte(txextra.TagPubkey), stripped[0])
	require.NotContains(t, stripped, byte(txextra.TagNonce))
}

func TestSignerVerifierAgreement(t *testing.T) {
	seed := make([]byte, 32)
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	bl := templateWithPlaceholder()
	bl.MinerTxExtra = leaderblock.StripPlaceholders(bl.MinerTxExtra)

	signingHash, err := leaderblock.SigningHash(bl)
	require.NoError(t, err)

	sig := ed25519.Sign(priv, signingHash[:])
	var sigArr [64]byte
	copy(sigArr[:], sig)

	signed := leaderblock.InsertLeaderInfo(bl, "XCAleader", sigArr)
	canonSigned, err := blockmodel.Canonicalize(signed)
	require.NoError(t, err)

	info, verifyHash, err := leaderblock.ExtractAndReconstruct(canonSigned)
	require.NoError(t, err)
	require.Equal(t, "XCAleader", info.LeaderID)
	require.Equal(t, signingHash, verifyHash)
	require.True(t, ed25519.Verify(pub, verifyHash[:], info.Signature[:]))
}

func TestVerificationFailsIfSignatureBitFlipped(t *testing.T) {
	seed := make([]byte, 32)
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	bl := templateWithPlaceholder()
	bl.MinerTxExtra = leaderblock.StripPlaceholders(bl.MinerTxExtra)
	signingHash, err := leaderblock.SigningHash(bl)
	require.NoError(t, err)

	sig := ed25519.Sign(priv, signingHash[:])
	sig[0] ^= 0x01
	var sigArr [64]byte
	copy(sigArr[:], sig)

	signed := leaderblock.InsertLeaderInfo(bl, "XCAleader", sigArr)
	_, verifyHash, err := leaderblock.ExtractAndReconstruct(signed)
	require.NoError(t, err)
	require.False(t, ed25519.Verify(pub, verifyHash[:], sig))
}

func TestExtractAndReconstructMissingMetadata(t *testing.T) {
	bl := templateWithPlaceholder()
	_, _, err := leaderblock.ExtractAndReconstruct(bl)
	require.ErrorIs(t, err, txextra.ErrNotFound)
}
