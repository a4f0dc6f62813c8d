package section

import (
	"github.com/arloliu/hybractal/endian"
	"github.com/arloliu/hybractal/errs"
)

// Flag is the packed options field of the archive header.
//
// Bit 1 is the endianness flag, 0 means little-endian, 1 means big-endian.
// Bits 0, 2 and 3 are reserved and must be 0.
// Bits 4-15 hold the container magic number 0xC410.
//
// The field itself is always stored little-endian so a reader can learn the
// byte order of everything that follows.
type Flag struct {
	Options uint16
}

// NewFlag creates a little-endian Flag carrying the container magic number.
func NewFlag() Flag {
	return Flag{Options: MagicContainerV1Opt}
}

// IsLittleEndian returns whether the header fields and block table are little-endian.
func (f Flag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the header fields and block table are big-endian.
func (f Flag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *Flag) WithLittleEndian() {
	f.Options &^= EndiannessMask
}

// WithBigEndian sets big-endian byte order.
func (f *Flag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// SetEndianEngine selects the byte order matching engine.
func (f *Flag) SetEndianEngine(engine endian.EndianEngine) {
	if endian.IsLittleEndian(engine) {
		f.WithLittleEndian()
	} else {
		f.WithBigEndian()
	}
}

// GetMagicNumber returns the magic number from the Options field.
func (f Flag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// IsValidMagicNumber checks if the magic number is valid.
func (f Flag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicContainerV1Opt
}

// Validate checks the magic number and the reserved bits.
func (f Flag) Validate() error {
	if !f.IsValidMagicNumber() {
		return errs.ErrInvalidMagicNumber
	}

	if f.Options&ReservedBitsMask != 0 {
		return errs.ErrInvalidMagicNumber
	}

	return nil
}

// GetEndianEngine returns the appropriate endian engine based on the flag.
func (f Flag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}
