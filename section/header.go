package section

import (
	"fmt"

	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
)

// Header represents the fixed-size header at the start of an archive file.
type Header struct {
	// Flag is the packed options field: byte order and magic number.
	Flag Flag // byte offset 4-5

	// Generation is the metadata layout of the metadata block.
	// format.GenerationUnknown asks readers to detect the layout.
	Generation format.Generation // byte offset 6

	// BlockCount is the number of entries in the block table.
	BlockCount uint32 // byte offset 8-11
}

// NewHeader creates a little-endian Header for the given metadata generation.
// The block count is set when the writer finishes the block table.
func NewHeader(gen format.Generation) *Header {
	return &Header{
		Flag:       NewFlag(),
		Generation: gen,
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly 16 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 16 bytes, ErrInvalidMagicNumber
//     for a foreign signature or options field, ErrInvalidBlockTable for an
//     implausible block count
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	if [4]byte(data[0:4]) != Magic {
		return fmt.Errorf("%w: signature %q", errs.ErrInvalidMagicNumber, data[0:4])
	}

	// options are always little-endian
	h.Flag.Options = uint16(data[4]) | (uint16(data[5]) << 8)
	if err := h.Flag.Validate(); err != nil {
		return fmt.Errorf("%w: options 0x%04x", err, h.Flag.Options)
	}

	engine := h.Flag.GetEndianEngine()

	h.Generation = format.Generation(data[6])
	h.BlockCount = engine.Uint32(data[8:12])
	if h.BlockCount > MaxBlockCount {
		return fmt.Errorf("%w: %d blocks", errs.ErrInvalidBlockTable, h.BlockCount)
	}

	return nil
}

// Bytes serializes the Header into a byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	engine := h.Flag.GetEndianEngine()

	copy(b[0:4], Magic[:])
	b[4] = byte(h.Flag.Options)
	b[5] = byte(h.Flag.Options >> 8)
	b[6] = byte(h.Generation)
	engine.PutUint32(b[8:12], h.BlockCount)

	return b
}

// BlockTableSize returns the byte size of the block table that follows the header.
func (h *Header) BlockTableSize() int {
	return int(h.BlockCount) * BlockEntrySize
}

// PayloadOffset returns the byte offset of the first block payload.
func (h *Header) PayloadOffset() int {
	return HeaderSize + h.BlockTableSize()
}

// ParseHeader parses a Header from the start of a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be at least 16 bytes)
//
// Returns:
//   - Header: Parsed header struct
//   - error: ErrInvalidHeaderSize or validation errors
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}
