package blockmodel_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcash-project/xcash-temp-consensus/internal/blockmodel"
	"github.com/xcash-project/xcash-temp-consensus/internal/txextra"
)

func sampleBlock() blockmodel.Block {
	var prev [blockmodel.PrevIDSize]byte
	for i := range prev {
		prev[i] = byte(i)
	}
	return blockmodel.Block{
		MajorVersion: 1,
		MinorVersion: 0,
		Timestamp:    1700000000,
		PrevID:       prev,
		Nonce:        0xDEADBEEF,
		MinerTxExtra: []byte{txextra.TagPubkey, 1, 2, 3},
		OpaqueBody:   []byte("opaque-transaction-bytes"),
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	b := sampleBlock()
	buf := b.Serialize()
	parsed, err := blockmodel.Parse(buf)
	require.NoError(t, err)
	require.Equal(t, b, parsed)
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	b := sampleBlock()
	c1, err := blockmodel.Canonicalize(b)
	require.NoError(t, err)
	c2, err := blockmodel.Canonicalize(c1)
	require.NoError(t, err)
	require.Equal(t, c1, c2)
}

func TestHashIsPureFunctionOfBytes(t *testing.T) {
	b := sampleBlock()
	h1 := blockmodel.Hash(b)
	c, err := blockmodel.Canonicalize(b)
	require.NoError(t, err)
	h2 := blockmodel.Hash(c)
	require.Equal(t, h1, h2)
}

func TestHashChangesWithExtra(t *testing.T) {
	b := sampleBlock()
	h1 := blockmodel.Hash(b)
	b.MinerTxExtra = append(b.MinerTxExtra, 0xFF)
	h2 := blockmodel.Hash(b)
	require.NotEqual(t, h1, h2)
}

func TestParseRejectsTruncated(t *testing.T) {
	b := sampleBlock()
	buf := b.Serialize()
	_, err := blockmodel.Parse(buf[:len(buf)-5])
	require.ErrorIs(t, err, blockmodel.ErrMalformed)
}

func TestCloneDoesNotAlias(t *testing.T) {
	b := sampleBlock()
	c := b.Clone()
	c.MinerTxExtra[0] = 0xFF
	require.NotEqual(t, b.MinerTxExtra[0], c.MinerTxExtra[0])
}
