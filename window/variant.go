package window

import (
	"fmt"

	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/floatcodec"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/internal/hexutil"
)

// Variant holds exactly one of *Window[Single], *Window[Double],
// *Window[Quad] or *Window[Octuple]. The kind is fixed at construction.
//
// The zero Variant is empty: Base returns nil and Precision returns 0.
type Variant struct {
	w Base
}

// Of wraps a concrete window in a Variant.
func Of[T floatcodec.Float](w *Window[T]) Variant {
	if w == nil {
		return Variant{}
	}

	return Variant{w: w}
}

// As returns the concrete window of v if its precision is T.
func As[T floatcodec.Float](v Variant) (*Window[T], bool) {
	w, ok := v.w.(*Window[T])
	return w, ok
}

// Base returns the capability view of the window, or nil for an empty Variant.
func (v Variant) Base() Base {
	return v.w
}

// Precision returns the precision of the window, or 0 for an empty Variant.
func (v Variant) Precision() format.Precision {
	if v.w == nil {
		return 0
	}

	return v.w.Precision()
}

// IsZero reports whether v is empty.
func (v Variant) IsZero() bool {
	return v.w == nil
}

// Clone returns a deep copy of v.
func (v Variant) Clone() Variant {
	switch w := v.w.(type) {
	case nil:
		return Variant{}
	case *Window[floatcodec.Single]:
		return Of(w.Clone())
	case *Window[floatcodec.Double]:
		return Of(w.Clone())
	case *Window[floatcodec.Quad]:
		return Of(w.Clone())
	case *Window[floatcodec.Octuple]:
		return Of(w.Clone())
	default:
		panic(fmt.Sprintf("window: unexpected window type %T", v.w))
	}
}

func (v Variant) String() string {
	if v.w == nil {
		return "<empty>"
	}
	re, im := v.w.DisplayedCenter()

	return fmt.Sprintf("%s center=(%g, %g) span=(%g, %g)", v.w.Precision(), re, im, v.w.XSpan(), v.w.YSpan())
}

// Empty returns an empty window of precision p, centered at the origin.
func Empty(p format.Precision, xSpan, ySpan float64) (Variant, error) {
	switch p {
	case format.PrecisionSingle:
		return Of(New[floatcodec.Single](0, 0, xSpan, ySpan)), nil
	case format.PrecisionDouble:
		return Of(New[floatcodec.Double](0, 0, xSpan, ySpan)), nil
	case format.PrecisionQuad:
		return Of(New(floatcodec.Quad{}, floatcodec.Quad{}, xSpan, ySpan)), nil
	case format.PrecisionOctuple:
		return Of(New(floatcodec.Octuple{}, floatcodec.Octuple{}, xSpan, ySpan)), nil
	default:
		return Variant{}, fmt.Errorf("%w: %d", errs.ErrPrecisionUnknown, uint8(p))
	}
}

// FromHex builds a window of precision p from a center hex string.
//
// The hex (optionally "0x"/"0X" prefixed, case-insensitive) must be exactly
// p.CenterHexLen() characters: real part then imaginary part, each encoded
// with the little-endian float codec. On error the empty Variant is returned.
func FromHex(hex string, xSpan, ySpan float64, p format.Precision) (Variant, error) {
	if !p.IsValid() {
		return Variant{}, fmt.Errorf("%w: %d", errs.ErrPrecisionUnknown, uint8(p))
	}

	digits := hexutil.Strip(hex)
	if len(digits) != p.CenterHexLen() {
		return Variant{}, fmt.Errorf("%w: center hex at %s needs %d characters, got %d",
			errs.ErrLengthMismatch, p, p.CenterHexLen(), len(digits))
	}

	b, err := hexutil.Decode(digits)
	if err != nil {
		return Variant{}, err
	}

	v, err := Empty(p, xSpan, ySpan)
	if err != nil {
		return Variant{}, err
	}
	if err := v.w.SetCenterBytes(b); err != nil {
		return Variant{}, err
	}

	return v, nil
}

// FromDoubles builds a window of precision p centered at (re, im).
//
// It panics if p is not a supported precision.
func FromDoubles(re, im, xSpan, ySpan float64, p format.Precision) Variant {
	return FromScalars(floatcodec.Double(re), floatcodec.Double(im), xSpan, ySpan, p)
}

// FromScalars builds a window of precision p, converting re and im as needed.
//
// It panics if p is not a supported precision.
func FromScalars(re, im floatcodec.Scalar, xSpan, ySpan float64, p format.Precision) Variant {
	switch p {
	case format.PrecisionSingle:
		return Of(newConverted[floatcodec.Single](re, im, xSpan, ySpan))
	case format.PrecisionDouble:
		return Of(newConverted[floatcodec.Double](re, im, xSpan, ySpan))
	case format.PrecisionQuad:
		return Of(newConverted[floatcodec.Quad](re, im, xSpan, ySpan))
	case format.PrecisionOctuple:
		return Of(newConverted[floatcodec.Octuple](re, im, xSpan, ySpan))
	default:
		panic(fmt.Sprintf("window: unsupported precision %d", p))
	}
}

func newConverted[T floatcodec.Float](re, im floatcodec.Scalar, xSpan, ySpan float64) *Window[T] {
	return New(floatcodec.ConvertTo[T](re), floatcodec.ConvertTo[T](im), xSpan, ySpan)
}

// HexToScalars decodes a bare center hex whose precision is not recorded.
//
// The precision is guessed from the byte length of each half; lengths that
// match no precision yield errs.ErrPrecisionUnknown.
func HexToScalars(hex string) (re, im floatcodec.Scalar, err error) {
	b, err := hexutil.Decode(hex)
	if err != nil {
		return nil, nil, err
	}
	if len(b)%2 != 0 {
		return nil, nil, fmt.Errorf("%w: center of %d bytes cannot be split in halves", errs.ErrPrecisionUnknown, len(b))
	}

	half := len(b) / 2
	p, ok := floatcodec.GuessPrecision(half)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d bytes per coordinate", errs.ErrPrecisionUnknown, half)
	}

	codec := floatcodec.DefaultCodec()
	if re, err = codec.Decode(b[:half], p); err != nil {
		return nil, nil, err
	}
	if im, err = codec.Decode(b[half:], p); err != nil {
		return nil, nil, err
	}

	return re, im, nil
}
