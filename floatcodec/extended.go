package floatcodec

import (
	"math"
	"math/big"

	"github.com/arloliu/hybractal/endian"
	"github.com/arloliu/hybractal/format"
)

// Software layout for the 128-bit and 256-bit formats.
//
// A value is held as its bit pattern in uint64 words, most significant word first:
//
//	word 0: [sign:1][exponent:E][mantissa high bits]
//	word 1..n-1: mantissa low bits
//
// Arithmetic and conversions go through math/big and are rounded back onto the
// format grid (round to nearest, ties to even, gradual underflow, overflow to Inf).

const signMask = uint64(1) << 63

var wordOrder = endian.GetBigEndianEngine()

func wordCount(p format.Precision) int {
	return p.Bits() / 64
}

// expShift returns the bit position of the exponent field LSB inside word 0.
func expShift(p format.Precision) uint {
	return uint(63 - p.ExponentBits())
}

func expMax(p format.Precision) uint64 {
	return uint64(1)<<p.ExponentBits() - 1
}

func exponentField(p format.Precision, w []uint64) uint64 {
	return (w[0] >> expShift(p)) & expMax(p)
}

func mantissaIsZero(p format.Precision, w []uint64) bool {
	if w[0]&(uint64(1)<<expShift(p)-1) != 0 {
		return false
	}
	for _, word := range w[1:] {
		if word != 0 {
			return false
		}
	}

	return true
}

func isNaN(p format.Precision, w []uint64) bool {
	return exponentField(p, w) == expMax(p) && !mantissaIsZero(p, w)
}

// nanWords returns the canonical quiet NaN pattern of p.
func nanWords(p format.Precision) []uint64 {
	w := make([]uint64, wordCount(p))
	shift := expShift(p)
	w[0] = expMax(p)<<shift | uint64(1)<<(shift-1)

	return w
}

// mantissaInt returns the stored mantissa field as an integer.
func mantissaInt(p format.Precision, w []uint64) *big.Int {
	cp := make([]uint64, len(w))
	copy(cp, w)
	cp[0] &= uint64(1)<<expShift(p) - 1

	buf := make([]byte, len(cp)*8)
	endian.PutWords(wordOrder, buf, cp)

	return new(big.Int).SetBytes(buf)
}

// unpack converts a bit pattern to an exact big.Float; nil for NaN.
func unpack(p format.Precision, w []uint64) *big.Float {
	mantBits := p.MantissaBits()
	bias := p.ExponentBias()
	sign := w[0]&signMask != 0
	exp := exponentField(p, w)
	m := mantissaInt(p, w)

	f := new(big.Float).SetMode(big.ToNearestEven).SetPrec(uint(mantBits + 1))
	switch exp {
	case expMax(p):
		if m.Sign() != 0 {
			return nil
		}

		return f.SetInf(sign)
	case 0:
		// subnormal or zero, no implicit bit
		f.SetInt(m)
		f.SetMantExp(f, 1-bias-mantBits)
	default:
		m.SetBit(m, mantBits, 1)
		f.SetInt(m)
		f.SetMantExp(f, int(exp)-bias-mantBits)
	}

	if sign {
		f.Neg(f)
	}

	return f
}

// roundTo rounds f onto the value grid of p.
func roundTo(p format.Precision, f *big.Float) *big.Float {
	mantBits := p.MantissaBits()
	prec := mantBits + 1
	bias := p.ExponentBias()

	r := new(big.Float).SetMode(big.ToNearestEven)
	if f.IsInf() || f.Sign() == 0 {
		return r.SetPrec(uint(prec)).Set(f)
	}

	e := f.MantExp(nil) - 1 // exponent of the leading bit
	emin := 1 - bias

	avail := prec
	if e < emin {
		avail = prec - (emin - e)
	}

	switch {
	case avail >= 1:
		r.SetPrec(uint(avail)).Set(f)
		r.SetPrec(uint(prec))
	case avail == 0:
		// |f| lies in [2^(emin-M-1), 2^(emin-M)): rounds to zero or the smallest subnormal
		r.SetPrec(uint(prec))
		half := new(big.Float).SetMantExp(big.NewFloat(1), emin-mantBits-1)
		abs := new(big.Float).Abs(f)
		if abs.Cmp(half) > 0 {
			r.SetMantExp(big.NewFloat(1), emin-mantBits)
		}
		if f.Signbit() {
			r.Neg(r)
		}
	default:
		r.SetPrec(uint(prec))
		if f.Signbit() {
			r.Neg(r)
		}
	}

	if !r.IsInf() && r.Sign() != 0 && r.MantExp(nil)-1 > bias {
		r.SetInf(r.Signbit())
	}

	return r
}

// pack rounds f onto the grid of p and returns its bit pattern. f must not be nil.
func pack(p format.Precision, f *big.Float) []uint64 {
	mantBits := p.MantissaBits()
	bias := p.ExponentBias()
	n := wordCount(p)

	r := roundTo(p, f)
	w := make([]uint64, n)

	var exp uint64
	switch {
	case r.IsInf():
		exp = expMax(p)
	case r.Sign() == 0:
		exp = 0
	default:
		mant := new(big.Float)
		e := r.MantExp(mant)
		mant.Abs(mant)

		biased := e - 1 + bias
		var sig *big.Int
		if biased >= 1 {
			sig, _ = new(big.Float).SetMantExp(mant, mantBits+1).Int(nil)
			sig.SetBit(sig, mantBits, 0)
			exp = uint64(biased)
		} else {
			sig, _ = new(big.Float).SetMantExp(mant, e+mantBits+bias-1).Int(nil)
		}

		buf := sig.FillBytes(make([]byte, n*8))
		endian.Words(wordOrder, buf, w)
	}

	w[0] |= exp << expShift(p)
	if r.Signbit() {
		w[0] |= signMask
	}

	return w
}

func toFloat64(p format.Precision, w []uint64) float64 {
	f := unpack(p, w)
	if f == nil {
		return math.NaN()
	}
	v, _ := f.Float64()

	return v
}

func text(p format.Precision, w []uint64) string {
	f := unpack(p, w)
	if f == nil {
		return "NaN"
	}

	return f.Text('g', -1)
}
