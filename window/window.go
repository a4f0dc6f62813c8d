package window

import (
	"fmt"

	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/floatcodec"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/internal/hexutil"
)

// Base is the precision-independent view of a window.
//
// It is implemented by *Window[T] for the four scalar types. The center
// bytes and hex use the little-endian float codec: real part first,
// imaginary part second.
type Base interface {
	// Precision returns the precision of the center coordinate.
	Precision() format.Precision
	// DisplayedCenter returns the center rounded to float64, for printing.
	DisplayedCenter() (re, im float64)
	// XSpan returns the horizontal half-extent.
	XSpan() float64
	// YSpan returns the vertical half-extent.
	YSpan() float64
	SetXSpan(v float64)
	SetYSpan(v float64)
	// CenterScalars returns the center coordinate at its native precision.
	CenterScalars() (re, im floatcodec.Scalar)
	// CenterBytes returns the encoded center, 2×Precision().Bytes() bytes.
	CenterBytes() []byte
	// SetCenterBytes replaces the center from its encoded form.
	SetCenterBytes(b []byte) error
	// CenterHex returns the lower-case hex of CenterBytes.
	CenterHex() string
	// CopyFrom copies center and extents from another window,
	// converting the center to this window's precision.
	CopyFrom(other Base)
}

// Window is a center coordinate at precision T plus the window half-extents.
type Window[T floatcodec.Float] struct {
	Re    T
	Im    T
	xSpan float64
	ySpan float64
}

var (
	_ Base = (*Window[floatcodec.Single])(nil)
	_ Base = (*Window[floatcodec.Double])(nil)
	_ Base = (*Window[floatcodec.Quad])(nil)
	_ Base = (*Window[floatcodec.Octuple])(nil)
)

// New creates a window centered at (re, im).
func New[T floatcodec.Float](re, im T, xSpan, ySpan float64) *Window[T] {
	return &Window[T]{Re: re, Im: im, xSpan: xSpan, ySpan: ySpan}
}

func (w *Window[T]) Precision() format.Precision {
	return floatcodec.PrecisionOf[T]()
}

func (w *Window[T]) DisplayedCenter() (float64, float64) {
	return w.Re.Float64(), w.Im.Float64()
}

func (w *Window[T]) XSpan() float64 { return w.xSpan }
func (w *Window[T]) YSpan() float64 { return w.ySpan }

func (w *Window[T]) SetXSpan(v float64) { w.xSpan = v }
func (w *Window[T]) SetYSpan(v float64) { w.ySpan = v }

func (w *Window[T]) CenterScalars() (floatcodec.Scalar, floatcodec.Scalar) {
	return w.Re, w.Im
}

func (w *Window[T]) CenterBytes() []byte {
	codec := floatcodec.DefaultCodec()
	b := make([]byte, 0, 2*w.Precision().Bytes())
	b = codec.Append(b, w.Re)
	b = codec.Append(b, w.Im)

	return b
}

func (w *Window[T]) SetCenterBytes(b []byte) error {
	n := w.Precision().Bytes()
	if len(b) != 2*n {
		return fmt.Errorf("%w: center at %s needs %d bytes, got %d", errs.ErrLengthMismatch, w.Precision(), 2*n, len(b))
	}

	codec := floatcodec.DefaultCodec()
	re, err := floatcodec.DecodeAs[T](codec, b[:n])
	if err != nil {
		return err
	}
	im, err := floatcodec.DecodeAs[T](codec, b[n:])
	if err != nil {
		return err
	}
	w.Re, w.Im = re, im

	return nil
}

func (w *Window[T]) CenterHex() string {
	return hexutil.Encode(w.CenterBytes())
}

func (w *Window[T]) CopyFrom(other Base) {
	re, im := other.CenterScalars()
	w.Re = floatcodec.ConvertTo[T](re)
	w.Im = floatcodec.ConvertTo[T](im)
	w.xSpan = other.XSpan()
	w.ySpan = other.YSpan()
}

// Clone returns a copy of w.
func (w *Window[T]) Clone() *Window[T] {
	c := *w
	return &c
}

// ResolveXSpan returns xSpan, or the aspect-correct y_span×cols/rows when
// xSpan is not positive.
func ResolveXSpan(xSpan, ySpan float64, rows, cols int) float64 {
	if xSpan > 0 || rows <= 0 {
		return xSpan
	}

	return ySpan * float64(cols) / float64(rows)
}
