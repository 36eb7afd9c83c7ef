package leb128_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinywasm/tinywasm/leb128"
)

func TestUint32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 300, 1 << 20, 0xffffffff} {
		enc := leb128.EncodeUint32(v)
		got, n, err := leb128.DecodeUint32(enc, 0)
		require.NoError(t, err)
		assert.Equal(t, len(enc), n)
		assert.Equal(t, v, got)
	}
}

func TestInt32RoundTrip(t *testing.T) {
	for _, v := range []int32{0, -1, 1, 63, -64, 64, -65, 1 << 20, -(1 << 20), -2147483648, 2147483647} {
		enc := leb128.EncodeInt32(v)
		got, n, err := leb128.DecodeInt32(enc, 0)
		require.NoError(t, err)
		assert.Equal(t, len(enc), n)
		assert.Equal(t, v, got)
	}
}

func TestUint64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 1 << 40, 0xffffffffffffffff} {
		enc := leb128.EncodeUint64(v)
		got, n, err := leb128.DecodeUint64(enc, 0)
		require.NoError(t, err)
		assert.Equal(t, len(enc), n)
		assert.Equal(t, v, got)
	}
}

func TestInt64RoundTrip(t *testing.T) {
	for _, v := range []int64{0, -1, 1, 1 << 40, -(1 << 40), -9223372036854775808, 9223372036854775807} {
		enc := leb128.EncodeInt64(v)
		got, n, err := leb128.DecodeInt64(enc, 0)
		require.NoError(t, err)
		assert.Equal(t, len(enc), n)
		assert.Equal(t, v, got)
	}
}

func TestDecodeUint32Truncated(t *testing.T) {
	_, _, err := leb128.DecodeUint32([]byte{0x80}, 0)
	assert.ErrorIs(t, err, leb128.ErrTruncated)
}

func TestDecodeUint32NonCanonicalOverflow(t *testing.T) {
	// 5 bytes whose payload bits exactly fill 32 bits (0xffffffff).
	_, _, err := leb128.DecodeUint32([]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0)
	require.NoError(t, err)
	// but setting bit 32+ in the final byte is non-canonical
	_, _, err = leb128.DecodeUint32([]byte{0xff, 0xff, 0xff, 0xff, 0x2f}, 0)
	assert.ErrorIs(t, err, leb128.ErrOverflow)
}

func TestDecodeInt32SignExtension(t *testing.T) {
	// -1 encoded minimally as a single byte 0x7f.
	v, n, err := leb128.DecodeInt32([]byte{0x7f}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int32(-1), v)
}

func TestDecodeAtOffset(t *testing.T) {
	buf := append([]byte{0xAA, 0xBB}, leb128.EncodeUint32(624485)...)
	v, n, err := leb128.DecodeUint32(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(624485), v)
	assert.Equal(t, 3, n)
}
