package floatcodec

import (
	"fmt"
	"math"

	"github.com/arloliu/hybractal/endian"
	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/internal/options"
)

// Codec encodes and decodes scalars to and from their fixed-width byte layout.
//
// The layout is [sign:1][exponent:E][mantissa:M] from the most significant bit,
// serialized as a single precision×4 byte integer in the configured byte order.
//
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	engine endian.EndianEngine
}

// CodecOption configures a Codec.
type CodecOption = options.Option[*Codec]

// WithLittleEndian configures the codec to write the least significant byte first (default).
func WithLittleEndian() CodecOption {
	return options.NoError(func(c *Codec) {
		c.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndian configures the codec to write the most significant byte first.
func WithBigEndian() CodecOption {
	return options.NoError(func(c *Codec) {
		c.engine = endian.GetBigEndianEngine()
	})
}

// WithByteOrder configures the codec to use the given endian engine.
func WithByteOrder(engine endian.EndianEngine) CodecOption {
	return options.New(func(c *Codec) error {
		if engine == nil {
			return fmt.Errorf("floatcodec: nil endian engine")
		}
		c.engine = engine

		return nil
	})
}

// NewCodec creates a codec. Without options the codec is little-endian.
func NewCodec(opts ...CodecOption) (Codec, error) {
	c := Codec{engine: endian.GetLittleEndianEngine()}
	if err := options.Apply(&c, opts...); err != nil {
		return Codec{}, err
	}

	return c, nil
}

// DefaultCodec returns the little-endian codec used for center hex text.
func DefaultCodec() Codec {
	return Codec{engine: endian.GetLittleEndianEngine()}
}

// ByteOrder returns the endian engine of the codec.
func (c Codec) ByteOrder() endian.EndianEngine {
	if c.engine == nil {
		return endian.GetLittleEndianEngine()
	}

	return c.engine
}

// Encode writes v into dst and returns the number of bytes written, v.Precision().Bytes().
//
// Returns errs.ErrCapacityTooSmall if dst cannot hold the encoding; dst is untouched in that case.
func (c Codec) Encode(v Scalar, dst []byte) (int, error) {
	n := v.Precision().Bytes()
	if len(dst) < n {
		return 0, fmt.Errorf("%w: %s needs %d bytes, have %d", errs.ErrCapacityTooSmall, v.Precision(), n, len(dst))
	}

	engine := c.ByteOrder()
	switch s := v.(type) {
	case Single:
		engine.PutUint32(dst, math.Float32bits(float32(s)))
	case Double:
		engine.PutUint64(dst, math.Float64bits(float64(s)))
	case Quad:
		endian.PutWords(engine, dst[:n], s.w[:])
	case Octuple:
		endian.PutWords(engine, dst[:n], s.w[:])
	default:
		panic(fmt.Sprintf("floatcodec: unexpected scalar type %T", v))
	}

	return n, nil
}

// Append appends the encoding of v to dst.
func (c Codec) Append(dst []byte, v Scalar) []byte {
	start := len(dst)
	dst = append(dst, make([]byte, v.Precision().Bytes())...)
	// capacity is exact, Encode cannot fail
	_, _ = c.Encode(v, dst[start:])

	return dst
}

// Decode reads a scalar of precision p from src.
//
// Returns errs.ErrPrecisionUnknown for an unsupported p and errs.ErrLengthMismatch
// unless len(src) is exactly p.Bytes().
func (c Codec) Decode(src []byte, p format.Precision) (Scalar, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrPrecisionUnknown, uint8(p))
	}
	if len(src) != p.Bytes() {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d", errs.ErrLengthMismatch, p, p.Bytes(), len(src))
	}

	engine := c.ByteOrder()
	switch p {
	case format.PrecisionSingle:
		return Single(math.Float32frombits(engine.Uint32(src))), nil
	case format.PrecisionDouble:
		return Double(math.Float64frombits(engine.Uint64(src))), nil
	case format.PrecisionQuad:
		var q Quad
		endian.Words(engine, src, q.w[:])

		return q, nil
	case format.PrecisionOctuple:
		var o Octuple
		endian.Words(engine, src, o.w[:])

		return o, nil
	default:
		panic(fmt.Sprintf("floatcodec: unreachable precision %d", p))
	}
}

// DecodeAs decodes a scalar of the precision of T.
func DecodeAs[T Float](c Codec, src []byte) (T, error) {
	v, err := c.Decode(src, PrecisionOf[T]())
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// GuessPrecision returns the precision whose encoded width is byteCount.
//
// Used when a value's precision is not recorded separately, e.g. a bare center hex.
func GuessPrecision(byteCount int) (format.Precision, bool) {
	for _, p := range format.Precisions {
		if p.Bytes() == byteCount {
			return p, true
		}
	}

	return 0, false
}

// PrecisionOf returns the precision tag of T.
func PrecisionOf[T Float]() format.Precision {
	var zero T
	return zero.Precision()
}
