package floatcodec

import (
	"math"
	"math/big"

	"github.com/arloliu/hybractal/format"
)

// Scalar is a floating-point value at one of the four supported precisions.
//
// The set of implementations is closed: Single, Double, Quad and Octuple.
type Scalar interface {
	// Precision returns the precision tag of the value.
	Precision() format.Precision
	// Float64 returns the nearest float64, for display purposes.
	Float64() float64
	// BigFloat returns the exact value as a new big.Float, or nil for NaN.
	BigFloat() *big.Float
	// IsNaN reports whether the value is a NaN.
	IsNaN() bool

	scalar()
}

// Float is the type constraint satisfied by the four concrete scalar types.
type Float interface {
	Single | Double | Quad | Octuple
	Scalar
}

// Single is a 32-bit binary float (P1).
type Single float32

// Double is a 64-bit binary float (P2).
type Double float64

// Quad is a 128-bit binary float (P4), held as its bit pattern.
//
// The zero value is +0. Quad values are comparable; two values compare equal
// with == exactly when their encodings are identical.
type Quad struct {
	w [2]uint64 // most significant word first
}

// Octuple is a 256-bit binary float (P8), held as its bit pattern.
type Octuple struct {
	w [4]uint64 // most significant word first
}

var (
	_ Scalar = Single(0)
	_ Scalar = Double(0)
	_ Scalar = Quad{}
	_ Scalar = Octuple{}
)

func (Single) scalar()  {}
func (Double) scalar()  {}
func (Quad) scalar()    {}
func (Octuple) scalar() {}

func (Single) Precision() format.Precision  { return format.PrecisionSingle }
func (Double) Precision() format.Precision  { return format.PrecisionDouble }
func (Quad) Precision() format.Precision    { return format.PrecisionQuad }
func (Octuple) Precision() format.Precision { return format.PrecisionOctuple }

func (s Single) Float64() float64 { return float64(s) }
func (d Double) Float64() float64 { return float64(d) }

func (s Single) IsNaN() bool { return math.IsNaN(float64(s)) }
func (d Double) IsNaN() bool { return math.IsNaN(float64(d)) }

func (s Single) BigFloat() *big.Float {
	if s.IsNaN() {
		return nil
	}

	return new(big.Float).SetPrec(uint(format.PrecisionSingle.MantissaBits() + 1)).SetFloat64(float64(s))
}

func (d Double) BigFloat() *big.Float {
	if d.IsNaN() {
		return nil
	}

	return new(big.Float).SetPrec(uint(format.PrecisionDouble.MantissaBits() + 1)).SetFloat64(float64(d))
}

// QuadFromBits returns the Quad with the given bit pattern, most significant word first.
func QuadFromBits(bits [2]uint64) Quad {
	return Quad{w: bits}
}

// Bits returns the bit pattern of q, most significant word first.
func (q Quad) Bits() [2]uint64 {
	return q.w
}

func (q Quad) IsNaN() bool {
	return isNaN(format.PrecisionQuad, q.w[:])
}

func (q Quad) BigFloat() *big.Float {
	return unpack(format.PrecisionQuad, q.w[:])
}

func (q Quad) Float64() float64 {
	return toFloat64(format.PrecisionQuad, q.w[:])
}

func (q Quad) String() string {
	return text(format.PrecisionQuad, q.w[:])
}

// Signbit reports whether the sign bit of q is set.
func (q Quad) Signbit() bool {
	return q.w[0]>>63 != 0
}

// Neg returns q with its sign flipped.
func (q Quad) Neg() Quad {
	q.w[0] ^= signMask

	return q
}

// Abs returns q with its sign cleared.
func (q Quad) Abs() Quad {
	q.w[0] &^= signMask

	return q
}

// Add returns q+o rounded to nearest even.
func (q Quad) Add(o Quad) Quad {
	return quadOf(arith(format.PrecisionQuad, q, o, (*big.Float).Add))
}

// Sub returns q-o rounded to nearest even.
func (q Quad) Sub(o Quad) Quad {
	return quadOf(arith(format.PrecisionQuad, q, o, (*big.Float).Sub))
}

// Mul returns q*o rounded to nearest even.
func (q Quad) Mul(o Quad) Quad {
	return quadOf(arith(format.PrecisionQuad, q, o, (*big.Float).Mul))
}

// Cmp compares q and o; NaN compares equal to everything.
func (q Quad) Cmp(o Quad) int {
	return compare(q, o)
}

// OctupleFromBits returns the Octuple with the given bit pattern, most significant word first.
func OctupleFromBits(bits [4]uint64) Octuple {
	return Octuple{w: bits}
}

// Bits returns the bit pattern of o, most significant word first.
func (o Octuple) Bits() [4]uint64 {
	return o.w
}

func (o Octuple) IsNaN() bool {
	return isNaN(format.PrecisionOctuple, o.w[:])
}

func (o Octuple) BigFloat() *big.Float {
	return unpack(format.PrecisionOctuple, o.w[:])
}

func (o Octuple) Float64() float64 {
	return toFloat64(format.PrecisionOctuple, o.w[:])
}

func (o Octuple) String() string {
	return text(format.PrecisionOctuple, o.w[:])
}

// Signbit reports whether the sign bit of o is set.
func (o Octuple) Signbit() bool {
	return o.w[0]>>63 != 0
}

// Neg returns o with its sign flipped.
func (o Octuple) Neg() Octuple {
	o.w[0] ^= signMask

	return o
}

// Abs returns o with its sign cleared.
func (o Octuple) Abs() Octuple {
	o.w[0] &^= signMask

	return o
}

// Add returns o+x rounded to nearest even.
func (o Octuple) Add(x Octuple) Octuple {
	return octupleOf(arith(format.PrecisionOctuple, o, x, (*big.Float).Add))
}

// Sub returns o-x rounded to nearest even.
func (o Octuple) Sub(x Octuple) Octuple {
	return octupleOf(arith(format.PrecisionOctuple, o, x, (*big.Float).Sub))
}

// Mul returns o*x rounded to nearest even.
func (o Octuple) Mul(x Octuple) Octuple {
	return octupleOf(arith(format.PrecisionOctuple, o, x, (*big.Float).Mul))
}

// Cmp compares o and x; NaN compares equal to everything.
func (o Octuple) Cmp(x Octuple) int {
	return compare(o, x)
}

func quadOf(w []uint64) Quad {
	var q Quad
	copy(q.w[:], w)

	return q
}

func octupleOf(w []uint64) Octuple {
	var o Octuple
	copy(o.w[:], w)

	return o
}

// arith applies op to a and b at the working precision of p and rounds the
// result onto the p grid. NaN operands and invalid operations (Inf-Inf, 0*Inf)
// yield the canonical NaN.
func arith(p format.Precision, a, b Scalar, op func(z, x, y *big.Float) *big.Float) (w []uint64) {
	x, y := a.BigFloat(), b.BigFloat()
	if x == nil || y == nil {
		return nanWords(p)
	}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(big.ErrNaN); !ok {
				panic(r)
			}
			w = nanWords(p)
		}
	}()

	z := new(big.Float).SetMode(big.ToNearestEven).SetPrec(uint(p.MantissaBits() + 1))
	op(z, x, y)

	return pack(p, z)
}

// compare returns -1, 0 or +1; NaN operands compare as equal to everything.
func compare(a, b Scalar) int {
	x, y := a.BigFloat(), b.BigFloat()
	if x == nil || y == nil {
		return 0
	}

	return x.Cmp(y)
}
