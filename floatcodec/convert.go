package floatcodec

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/arloliu/hybractal/format"
)

// Convert widens or narrows v to precision to.
//
// Narrowing rounds to nearest even and overflows to ±Inf, matching native
// float conversion. Converting to the same precision returns v unchanged.
// Convert never fails; it panics only for a precision outside the supported set.
func Convert(v Scalar, to format.Precision) Scalar {
	from := v.Precision()
	if from == to {
		return v
	}

	if isNative(from) && isNative(to) {
		return convertNative(v, to)
	}

	if v.IsNaN() {
		return nanOf(to)
	}

	return FromBig(v.BigFloat(), to)
}

// ConvertTo converts v to the precision of T.
func ConvertTo[T Float](v Scalar) T {
	return Convert(v, PrecisionOf[T]()).(T)
}

// FromFloat64 converts a float64 to the precision of T.
func FromFloat64[T Float](f float64) T {
	return ConvertTo[T](Double(f))
}

// FromBig rounds f onto precision p. A nil f yields NaN.
func FromBig(f *big.Float, p format.Precision) Scalar {
	if f == nil {
		return nanOf(p)
	}

	switch p {
	case format.PrecisionSingle:
		v, _ := f.Float32()
		return Single(v)
	case format.PrecisionDouble:
		v, _ := f.Float64()
		return Double(v)
	case format.PrecisionQuad:
		return quadOf(pack(p, f))
	case format.PrecisionOctuple:
		return octupleOf(pack(p, f))
	default:
		panic(fmt.Sprintf("floatcodec: unsupported precision %d", p))
	}
}

// Parse parses a decimal (or hex float, "0x1.8p-3") literal at precision p.
//
// The literal is rounded once, directly onto the p grid, so "0.1" parsed at P4
// is the nearest 128-bit value rather than a widened float64.
func Parse(s string, p format.Precision) (Scalar, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("floatcodec: unsupported precision %d", p)
	}

	s = strings.TrimSpace(s)
	switch p {
	case format.PrecisionSingle:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, err
		}

		return Single(float32(v)), nil
	case format.PrecisionDouble:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}

		return Double(v), nil
	}

	// parse with headroom so that the single rounding happens in pack
	f, _, err := big.ParseFloat(s, 0, uint(p.MantissaBits()+64), big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("floatcodec: parse %q: %w", s, err)
	}

	return FromBig(f, p), nil
}

func isNative(p format.Precision) bool {
	return p == format.PrecisionSingle || p == format.PrecisionDouble
}

func convertNative(v Scalar, to format.Precision) Scalar {
	switch to {
	case format.PrecisionSingle:
		return Single(float32(v.Float64()))
	case format.PrecisionDouble:
		return Double(v.Float64())
	default:
		panic(fmt.Sprintf("floatcodec: %s is not a native precision", to))
	}
}

func nanOf(p format.Precision) Scalar {
	switch p {
	case format.PrecisionSingle:
		return Single(float32(math.NaN()))
	case format.PrecisionDouble:
		return Double(math.NaN())
	case format.PrecisionQuad:
		return quadOf(nanWords(p))
	case format.PrecisionOctuple:
		return octupleOf(nanWords(p))
	default:
		panic(fmt.Sprintf("floatcodec: unsupported precision %d", p))
	}
}
