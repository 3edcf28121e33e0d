package l8tuio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteOSCString_PadsToFourByteBoundary(t *testing.T) {
	cases := map[string]int{
		"":      4,
		"a":     4,
		"abc":   4,
		"abcd":  8,
		"abcde": 8,
	}
	for s, wantLen := range cases {
		var buf bytes.Buffer
		writeOSCString(&buf, s)
		require.Equal(t, wantLen, buf.Len(), "string %q", s)
	}
}

func TestOSCMessage_EncodeRoundTripsAddressAndTags(t *testing.T) {
	msg := newOSCMessage("/tuio/2Dcur", "alive", int32(1), int32(2))
	encoded, err := msg.encode()
	require.NoError(t, err)

	// Address "/tuio/2Dcur" is 11 bytes -> padded to 12.
	require.Equal(t, "/tuio/2Dcur\x00", string(encoded[:12]))
	// Type tag ",sii" is 4 bytes; its null terminator needs another 4-byte
	// word -> padded to 8.
	require.Equal(t, ",sii\x00\x00\x00\x00", string(encoded[12:20]))
}

func TestOSCMessage_RejectsUnsupportedArgumentType(t *testing.T) {
	msg := newOSCMessage("/tuio/2Dcur", 3.14) // float64, not float32
	_, err := msg.encode()
	require.ErrorIs(t, err, ErrOddArgumentTypes)
}

func TestOSCBundle_EncodeStartsWithHashBundleAndImmediateTag(t *testing.T) {
	b := &oscBundle{}
	b.add(newOSCMessage("/tuio/2Dcur", "fseq", int32(7)))
	encoded, err := b.encode()
	require.NoError(t, err)

	require.Equal(t, "#bundle\x00", string(encoded[:8]))
	require.Equal(t, oscImmediate[:], encoded[8:16])

	elementSize := int32(binary.BigEndian.Uint32(encoded[16:20]))
	require.Equal(t, len(encoded)-20, int(elementSize))
}
