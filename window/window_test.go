package window

import (
	"strings"
	"testing"

	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/floatcodec"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/internal/hexutil"
	"github.com/stretchr/testify/require"
)

func TestFromHex_RoundTrip(t *testing.T) {
	centers := [][2]string{
		{"0.5", "-0.25"},
		{"-1.7497219090775", "0.0000000000000000123"},
		{"0", "-0"},
		{"1e-30", "3.14159265358979323846264338327950288419716939937510"},
	}

	for _, p := range format.Precisions {
		for _, c := range centers {
			t.Run(p.String()+"/"+c[0], func(t *testing.T) {
				re, err := floatcodec.Parse(c[0], p)
				require.NoError(t, err)
				im, err := floatcodec.Parse(c[1], p)
				require.NoError(t, err)

				codec := floatcodec.DefaultCodec()
				raw := codec.Append(codec.Append(nil, re), im)
				hex := hexutil.Encode(raw)
				require.Len(t, hex, p.CenterHexLen())

				v, err := FromHex(hex, 1.5, 2, p)
				require.NoError(t, err)
				require.Equal(t, p, v.Precision())

				gotRe, gotIm := v.Base().CenterScalars()
				require.Equal(t, re, gotRe)
				require.Equal(t, im, gotIm)
				require.Equal(t, raw, v.Base().CenterBytes())
				require.Equal(t, hex, v.Base().CenterHex())
				require.Equal(t, 1.5, v.Base().XSpan())
				require.Equal(t, 2.0, v.Base().YSpan())

				upper, err := FromHex("0X"+strings.ToUpper(hex), 1.5, 2, p)
				require.NoError(t, err)
				require.Equal(t, v, upper)
			})
		}
	}
}

func TestFromHex_Errors(t *testing.T) {
	t.Run("Length mismatch", func(t *testing.T) {
		v, err := FromHex("0x000000000000e03f", 1, 1, format.PrecisionDouble)
		require.ErrorIs(t, err, errs.ErrLengthMismatch)
		require.True(t, v.IsZero())
	})

	t.Run("Length of another precision", func(t *testing.T) {
		hex := strings.Repeat("00", 2*format.PrecisionQuad.Bytes())
		_, err := FromHex(hex, 1, 1, format.PrecisionDouble)
		require.ErrorIs(t, err, errs.ErrLengthMismatch)
	})

	t.Run("Invalid digits", func(t *testing.T) {
		v, err := FromHex(strings.Repeat("zz", 8), 1, 1, format.PrecisionSingle)
		require.ErrorIs(t, err, errs.ErrInvalidHex)
		require.True(t, v.IsZero())
		require.Nil(t, v.Base())
	})

	t.Run("Unknown precision", func(t *testing.T) {
		_, err := FromHex(strings.Repeat("00", 24), 1, 1, format.Precision(3))
		require.ErrorIs(t, err, errs.ErrPrecisionUnknown)
	})
}

func TestFromDoubles(t *testing.T) {
	for _, p := range format.Precisions {
		t.Run(p.String(), func(t *testing.T) {
			v := FromDoubles(0.5, -0.25, -1, 2, p)
			require.Equal(t, p, v.Precision())
			require.False(t, v.IsZero())

			re, im := v.Base().DisplayedCenter()
			require.Equal(t, 0.5, re)
			require.Equal(t, -0.25, im)
			require.Equal(t, -1.0, v.Base().XSpan())
			require.Equal(t, 2.0, v.Base().YSpan())
			require.Len(t, v.Base().CenterBytes(), 2*p.Bytes())
		})
	}

	require.Panics(t, func() { FromDoubles(0, 0, 1, 1, format.Precision(5)) })
}

func TestDoubleHexLayout(t *testing.T) {
	v := FromDoubles(0.5, -0.25, 1, 1, format.PrecisionDouble)
	require.Equal(t, "000000000000e03f000000000000d0bf", v.Base().CenterHex())
}

func TestCopyFrom(t *testing.T) {
	src := FromDoubles(0.1, -0.3, 0.001, 0.002, format.PrecisionDouble)

	t.Run("Widen", func(t *testing.T) {
		dst := FromDoubles(0, 0, 0, 0, format.PrecisionOctuple)
		dst.Base().CopyFrom(src.Base())

		w, ok := As[floatcodec.Octuple](dst)
		require.True(t, ok)
		require.Equal(t, floatcodec.FromFloat64[floatcodec.Octuple](0.1), w.Re)
		require.Equal(t, floatcodec.FromFloat64[floatcodec.Octuple](-0.3), w.Im)
		require.Equal(t, 0.001, dst.Base().XSpan())
		require.Equal(t, 0.002, dst.Base().YSpan())
	})

	t.Run("Narrow", func(t *testing.T) {
		dst := FromDoubles(0, 0, 0, 0, format.PrecisionSingle)
		dst.Base().CopyFrom(src.Base())

		w, ok := As[floatcodec.Single](dst)
		require.True(t, ok)
		require.Equal(t, floatcodec.Single(0.1), w.Re)
		require.Equal(t, floatcodec.Single(-0.3), w.Im)
	})
}

func TestVariant(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		var v Variant
		require.True(t, v.IsZero())
		require.Nil(t, v.Base())
		require.Equal(t, format.Precision(0), v.Precision())
		require.True(t, v.Clone().IsZero())
		require.Equal(t, "<empty>", v.String())
		require.True(t, Of[floatcodec.Double](nil).IsZero())
	})

	t.Run("Clone is independent", func(t *testing.T) {
		v := FromDoubles(1, 2, 3, 4, format.PrecisionQuad)
		c := v.Clone()
		require.Equal(t, v, c)

		c.Base().SetXSpan(10)
		require.Equal(t, 3.0, v.Base().XSpan())
		require.Equal(t, 10.0, c.Base().XSpan())
	})

	t.Run("As wrong precision", func(t *testing.T) {
		v := FromDoubles(1, 2, 3, 4, format.PrecisionQuad)
		_, ok := As[floatcodec.Double](v)
		require.False(t, ok)
		w, ok := As[floatcodec.Quad](v)
		require.True(t, ok)
		require.Equal(t, floatcodec.FromFloat64[floatcodec.Quad](2), w.Im)
	})

	t.Run("Empty window", func(t *testing.T) {
		v, err := Empty(format.PrecisionOctuple, 1, 2)
		require.NoError(t, err)
		re, im := v.Base().DisplayedCenter()
		require.Zero(t, re)
		require.Zero(t, im)

		_, err = Empty(format.Precision(7), 1, 2)
		require.ErrorIs(t, err, errs.ErrPrecisionUnknown)
	})

	t.Run("String", func(t *testing.T) {
		v := FromDoubles(0.5, -0.25, 1, 2, format.PrecisionDouble)
		require.Equal(t, "P2 center=(0.5, -0.25) span=(1, 2)", v.String())
	})
}

func TestSetCenterBytes(t *testing.T) {
	v := FromDoubles(0, 0, 1, 1, format.PrecisionQuad)
	err := v.Base().SetCenterBytes(make([]byte, 31))
	require.ErrorIs(t, err, errs.ErrLengthMismatch)

	src := FromDoubles(-2, 0.75, 1, 1, format.PrecisionQuad)
	require.NoError(t, v.Base().SetCenterBytes(src.Base().CenterBytes()))
	re, im := v.Base().DisplayedCenter()
	require.Equal(t, -2.0, re)
	require.Equal(t, 0.75, im)
}

func TestHexToScalars(t *testing.T) {
	for _, p := range format.Precisions {
		t.Run(p.String(), func(t *testing.T) {
			v := FromDoubles(0.5, -0.25, 1, 1, p)
			re, im, err := HexToScalars("0x" + v.Base().CenterHex())
			require.NoError(t, err)
			require.Equal(t, p, re.Precision())
			require.Equal(t, 0.5, re.Float64())
			require.Equal(t, -0.25, im.Float64())
		})
	}

	t.Run("Unknown length", func(t *testing.T) {
		_, _, err := HexToScalars(strings.Repeat("00", 24))
		require.ErrorIs(t, err, errs.ErrPrecisionUnknown)

		_, _, err = HexToScalars(strings.Repeat("00", 9))
		require.ErrorIs(t, err, errs.ErrPrecisionUnknown)
	})

	t.Run("Invalid hex", func(t *testing.T) {
		_, _, err := HexToScalars("xyz")
		require.ErrorIs(t, err, errs.ErrInvalidHex)
	})
}

func TestResolveXSpan(t *testing.T) {
	require.Equal(t, 1.5, ResolveXSpan(1.5, 2, 100, 200))
	require.Equal(t, 4.0, ResolveXSpan(-1, 2, 100, 200))
	require.Equal(t, 2.0, ResolveXSpan(0, 2, 64, 64))
	require.Equal(t, -1.0, ResolveXSpan(-1, 2, 0, 64))
}
