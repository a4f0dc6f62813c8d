package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEngines(t *testing.T) {
	require.Equal(t, binary.LittleEndian, GetLittleEndianEngine())
	require.Equal(t, binary.BigEndian, GetBigEndianEngine())
}

func TestIsLittleEndian(t *testing.T) {
	require.True(t, IsLittleEndian(GetLittleEndianEngine()))
	require.False(t, IsLittleEndian(GetBigEndianEngine()))
}

func TestPutWords(t *testing.T) {
	words := []uint64{0x0102030405060708, 0x090A0B0C0D0E0F10}

	t.Run("Big endian", func(t *testing.T) {
		dst := make([]byte, 16)
		PutWords(GetBigEndianEngine(), dst, words)
		require.Equal(t, []byte{
			0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
			0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10,
		}, dst)
	})

	t.Run("Little endian is byte reverse of big endian", func(t *testing.T) {
		big := make([]byte, 16)
		little := make([]byte, 16)
		PutWords(GetBigEndianEngine(), big, words)
		PutWords(GetLittleEndianEngine(), little, words)

		for i := range big {
			require.Equal(t, big[i], little[len(little)-1-i], "byte %d", i)
		}
	})

	t.Run("Panics on short buffer", func(t *testing.T) {
		require.Panics(t, func() {
			PutWords(GetLittleEndianEngine(), make([]byte, 15), words)
		})
	})
}

func TestWordsRoundTrip(t *testing.T) {
	engines := map[string]EndianEngine{
		"little": GetLittleEndianEngine(),
		"big":    GetBigEndianEngine(),
	}

	src := []uint64{0xDEADBEEF00000001, 0, 0xFFFFFFFFFFFFFFFF, 0x8000000000000000}

	for name, engine := range engines {
		t.Run(name, func(t *testing.T) {
			buf := AppendWords(engine, []byte{0xAA}, src)
			require.Len(t, buf, 1+len(src)*8)
			require.Equal(t, byte(0xAA), buf[0])

			got := make([]uint64, len(src))
			Words(engine, buf[1:], got)
			require.Equal(t, src, got)
		})
	}
}
