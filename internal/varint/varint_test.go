package varint_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcash-project/xcash-temp-consensus/internal/varint"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16384, 1 << 40, ^uint64(0)}
	for _, v := range values {
		buf := varint.Encode(nil, v)
		got, n, err := varint.Decode(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, _, err := varint.Decode([]byte{0x80, 0x80})
	require.ErrorIs(t, err, varint.ErrTruncated)
}

func TestDecodeEmpty(t *testing.T) {
	_, _, err := varint.Decode(nil)
	require.ErrorIs(t, err, varint.ErrTruncated)
}

func TestDecodeLengthCappedRejectsOversizedClaim(t *testing.T) {
	buf := varint.Encode(nil, 1000)
	_, _, err := varint.DecodeLengthCapped(buf)
	require.ErrorIs(t, err, varint.ErrOverflow)
}

func TestDecodeLengthCappedAcceptsExactFit(t *testing.T) {
	prefix := varint.Encode(nil, 3)
	buf := append(prefix, []byte("abc")...)
	length, n, err := varint.DecodeLengthCapped(buf)
	require.NoError(t, err)
	require.Equal(t, uint64(3), length)
	require.Equal(t, len(prefix), n)
}
