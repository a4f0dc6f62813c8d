package hexutil

import (
	"testing"

	"github.com/arloliu/hybractal/errs"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{"plain", "00ff10", []byte{0x00, 0xff, 0x10}},
		{"lower prefix", "0xabCD", []byte{0xab, 0xcd}},
		{"upper prefix", "0XABcd", []byte{0xab, 0xcd}},
		{"whitespace", "  0x01 ", []byte{0x01}},
		{"empty", "", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, input := range []string{"abc", "0x1", "zz", "0xgg00"} {
		t.Run(input, func(t *testing.T) {
			_, err := Decode(input)
			require.ErrorIs(t, err, errs.ErrInvalidHex)
		})
	}
}

func TestEncode(t *testing.T) {
	require.Equal(t, "00abff", Encode([]byte{0x00, 0xAB, 0xFF}))
	require.Equal(t, "", Encode(nil))

	b, err := Decode("0X" + Encode([]byte{1, 2, 3}))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, b)
}
