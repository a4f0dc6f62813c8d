package fractal

import (
	"fmt"
	"strings"

	"github.com/arloliu/hybractal/errs"
)

// MaxSequenceLength is the longest supported iteration sequence.
const MaxSequenceLength = 64

// DefaultSequence is the sequence used when none is configured.
var DefaultSequence = MustParseSequence("10111011101")

// Sequence selects the iteration formula per step.
//
// Bit i of the sequence is read most significant first: step k uses bit
// (Length-1-(k mod Length)) of Bits. A set bit selects the Mandelbrot
// formula, a clear bit the Burning-ship formula.
type Sequence struct {
	Bits   uint64
	Length uint8
}

// ParseSequence parses a sequence written as a string of '0' and '1'.
func ParseSequence(s string) (Sequence, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > MaxSequenceLength {
		return Sequence{}, fmt.Errorf("%w: length %d not in [1, %d]", errs.ErrInvalidSequence, len(s), MaxSequenceLength)
	}

	var bits uint64
	for i := 0; i < len(s); i++ {
		bits <<= 1
		switch s[i] {
		case '1':
			bits |= 1
		case '0':
		default:
			return Sequence{}, fmt.Errorf("%w: unexpected character %q at %d", errs.ErrInvalidSequence, s[i], i)
		}
	}

	return Sequence{Bits: bits, Length: uint8(len(s))}, nil
}

// MustParseSequence is like ParseSequence but panics on error.
func MustParseSequence(s string) Sequence {
	seq, err := ParseSequence(s)
	if err != nil {
		panic(err)
	}

	return seq
}

// Validate checks the length and that no bit is set above Length.
func (s Sequence) Validate() error {
	if s.Length == 0 || s.Length > MaxSequenceLength {
		return fmt.Errorf("%w: length %d not in [1, %d]", errs.ErrInvalidSequence, s.Length, MaxSequenceLength)
	}
	if s.Length < MaxSequenceLength && s.Bits>>s.Length != 0 {
		return fmt.Errorf("%w: bits %#x exceed length %d", errs.ErrInvalidSequence, s.Bits, s.Length)
	}

	return nil
}

// IsMandelbrot reports whether step i uses the Mandelbrot formula.
func (s Sequence) IsMandelbrot(i int) bool {
	n := int(s.Length)
	return s.Bits>>(n-1-i%n)&1 == 1
}

// String returns the sequence as a zero-padded binary string of Length digits.
func (s Sequence) String() string {
	if s.Length == 0 {
		return ""
	}

	return fmt.Sprintf("%0*b", int(s.Length), s.Bits)
}
