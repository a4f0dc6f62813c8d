package floatcodec

import (
	"math"
	"math/big"
	"testing"

	"github.com/arloliu/hybractal/format"
	"github.com/stretchr/testify/require"
)

func TestConvert_SamePrecisionIsIdentity(t *testing.T) {
	for name, v := range sampleScalars() {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, v, Convert(v, v.Precision()))
		})
	}
}

func TestConvert_PackUnpackIdentity(t *testing.T) {
	for name, v := range sampleScalars() {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, v, FromBig(v.BigFloat(), v.Precision()))
		})
	}
}

func TestConvert_WidenThenNarrow(t *testing.T) {
	doubles := []float64{
		0, 1, -1, 0.1, -0.25, 1.0 / 3.0, math.Pi,
		math.SmallestNonzeroFloat64, 0x1p-1022, math.MaxFloat64, -math.MaxFloat64,
	}

	for _, to := range []format.Precision{format.PrecisionQuad, format.PrecisionOctuple} {
		t.Run(to.String(), func(t *testing.T) {
			for _, d := range doubles {
				wide := Convert(Double(d), to)
				require.Equal(t, to, wide.Precision())
				require.Equal(t, Double(d), Convert(wide, format.PrecisionDouble), "value %g", d)
			}
		})
	}

	t.Run("Quad through Octuple", func(t *testing.T) {
		for _, q := range []Quad{quadOne, quadMax, quadMinNormal, quadMaxSubnormal, quadMinSubnormal, quadNegZero} {
			wide := Convert(q, format.PrecisionOctuple)
			require.Equal(t, q, Convert(wide, format.PrecisionQuad))
		}
	})

	t.Run("Single through Quad", func(t *testing.T) {
		s := Single(math.SmallestNonzeroFloat32)
		require.Equal(t, s, Convert(Convert(s, format.PrecisionQuad), format.PrecisionSingle))
	})
}

func TestConvert_NarrowingOverflowAndUnderflow(t *testing.T) {
	t.Run("Overflow to infinity", func(t *testing.T) {
		require.True(t, math.IsInf(Convert(quadMax, format.PrecisionDouble).Float64(), 1))
		require.True(t, math.IsInf(Convert(quadMax.Neg(), format.PrecisionSingle).Float64(), -1))
		require.True(t, math.IsInf(Convert(octupleMax, format.PrecisionQuad).Float64(), 1))
	})

	t.Run("Underflow to zero", func(t *testing.T) {
		require.Equal(t, Double(0), Convert(quadMinSubnormal, format.PrecisionDouble))
		require.Equal(t, Quad{}, Convert(octupleMinSubnorm, format.PrecisionQuad))
	})

	t.Run("Parsed large value overflows double", func(t *testing.T) {
		v, err := Parse("1e400", format.PrecisionOctuple)
		require.NoError(t, err)
		require.False(t, v.BigFloat().IsInf())
		require.True(t, math.IsInf(Convert(v, format.PrecisionDouble).Float64(), 1))
	})
}

func TestFromBig_SubnormalRounding(t *testing.T) {
	p := format.PrecisionQuad
	minSubExp := 1 - p.ExponentBias() - p.MantissaBits()

	t.Run("Half of smallest subnormal ties to zero", func(t *testing.T) {
		half := new(big.Float).SetMantExp(big.NewFloat(1), minSubExp-1)
		require.Equal(t, Quad{}, FromBig(half, p))
		require.Equal(t, quadNegZero, FromBig(new(big.Float).Neg(half), p))
	})

	t.Run("Three quarters rounds up to smallest subnormal", func(t *testing.T) {
		v := new(big.Float).SetMantExp(big.NewFloat(3), minSubExp-2)
		require.Equal(t, quadMinSubnormal, FromBig(v, p))
	})

	t.Run("Far below range flushes to zero", func(t *testing.T) {
		v := new(big.Float).SetMantExp(big.NewFloat(1), minSubExp-10)
		require.Equal(t, Quad{}, FromBig(v, p))
	})

	t.Run("Largest subnormal rounds up into normal range", func(t *testing.T) {
		v := new(big.Float).SetPrec(300).Set(quadMaxSubnormal.BigFloat())
		v.Add(v, new(big.Float).SetMantExp(big.NewFloat(1), minSubExp-1))
		require.Equal(t, quadMinNormal, FromBig(v, p))
	})
}

func TestParse(t *testing.T) {
	t.Run("Native precisions", func(t *testing.T) {
		v, err := Parse("0.1", format.PrecisionSingle)
		require.NoError(t, err)
		require.Equal(t, Single(0.1), v)

		v, err = Parse(" -2.5 ", format.PrecisionDouble)
		require.NoError(t, err)
		require.Equal(t, Double(-2.5), v)
	})

	t.Run("Quad rounds once", func(t *testing.T) {
		v, err := Parse("0.1", format.PrecisionQuad)
		require.NoError(t, err)
		require.NotEqual(t, Convert(Double(0.1), format.PrecisionQuad), v)
		require.Equal(t, Double(0.1), Convert(v, format.PrecisionDouble))
	})

	t.Run("Hex float", func(t *testing.T) {
		v, err := Parse("0x1p-1", format.PrecisionOctuple)
		require.NoError(t, err)
		require.Equal(t, FromFloat64[Octuple](0.5), v)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := Parse("abc", format.PrecisionQuad)
		require.Error(t, err)

		_, err = Parse("abc", format.PrecisionDouble)
		require.Error(t, err)

		_, err = Parse("1", format.Precision(16))
		require.Error(t, err)
	})
}

func TestQuadArithmetic(t *testing.T) {
	a := FromFloat64[Quad](1.5)
	b := FromFloat64[Quad](2.25)

	require.Equal(t, FromFloat64[Quad](3.75), a.Add(b))
	require.Equal(t, FromFloat64[Quad](-0.75), a.Sub(b))
	require.Equal(t, FromFloat64[Quad](3.375), a.Mul(b))
	require.Equal(t, -1, a.Cmp(b))
	require.Equal(t, 1, b.Cmp(a))
	require.Equal(t, 0, a.Cmp(a))

	t.Run("Precision beyond double", func(t *testing.T) {
		one := FromFloat64[Quad](1)
		tiny := FromFloat64[Quad](0x1p-100)
		sum := one.Add(tiny)
		require.NotEqual(t, one, sum)
		require.Equal(t, tiny, sum.Sub(one))
		require.Equal(t, 1.0, sum.Float64())
	})

	t.Run("Sign helpers", func(t *testing.T) {
		neg := a.Neg()
		require.True(t, neg.Signbit())
		require.Equal(t, a, neg.Abs())
		require.Equal(t, a, neg.Neg())
	})

	t.Run("Invalid operation yields NaN", func(t *testing.T) {
		inf := ConvertTo[Quad](Double(math.Inf(1)))
		require.True(t, inf.Sub(inf).IsNaN())
		require.True(t, inf.Mul(Quad{}).IsNaN())
		require.Equal(t, 0, inf.Sub(inf).Cmp(a))
	})

	t.Run("Text", func(t *testing.T) {
		require.Equal(t, "0.5", FromFloat64[Quad](0.5).String())
		require.Equal(t, "NaN", ConvertTo[Quad](Double(math.NaN())).String())
	})
}

func TestOctupleArithmetic(t *testing.T) {
	one := FromFloat64[Octuple](1)
	tiny := FromFloat64[Octuple](0x1p-200)

	sum := one.Add(tiny)
	require.NotEqual(t, one, sum)
	require.Equal(t, tiny, sum.Sub(one))
	require.Equal(t, FromFloat64[Octuple](-6), FromFloat64[Octuple](2).Mul(FromFloat64[Octuple](-3)))
	require.Equal(t, 1, sum.Cmp(one))

	// the 128-bit format cannot hold 1+2^-200
	require.Equal(t, FromFloat64[Quad](1), ConvertTo[Quad](sum))
}
