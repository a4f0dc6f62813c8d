package section

import (
	"fmt"
	"math"

	"github.com/arloliu/hybractal/endian"
	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/internal/hash"
	"github.com/arloliu/hybractal/internal/pool"
)

// BlockEntry describes one payload in the block table. It is a fixed size of
// 40 bytes on disk.
//
// Layout:
//
//	0-7   tag (int64)
//	8     compression type
//	9-15  reserved, zero
//	16-23 raw size (decompressed payload length)
//	24-31 stored size (payload length on disk)
//	32-39 xxHash64 of the raw payload
type BlockEntry struct {
	// Tag identifies the block content, see format.TagMetadata and friends.
	Tag format.BlockTag

	// Compression is the codec used for the stored payload.
	Compression format.CompressionType

	// RawSize is the payload length after decompression.
	RawSize uint64

	// StoredSize is the payload length in the file.
	StoredSize uint64

	// Checksum is the xxHash64 of the raw payload.
	Checksum uint64

	// Offset is the absolute file offset of the stored payload.
	//
	// This field is not stored on disk; it is reconstructed by ParseBlockTable
	// by accumulating stored sizes after the block table.
	Offset int
}

// NewBlockEntry creates an entry for raw, which is stored as stored using compression.
func NewBlockEntry(tag format.BlockTag, compression format.CompressionType, raw, stored []byte) BlockEntry {
	return BlockEntry{
		Tag:         tag,
		Compression: compression,
		RawSize:     uint64(len(raw)),
		StoredSize:  uint64(len(stored)),
		Checksum:    hash.Checksum(raw),
	}
}

// WriteTo appends the 40 byte table form of the entry to buf.
func (e *BlockEntry) WriteTo(buf *pool.ByteBuffer, engine endian.EndianEngine) {
	b := buf.Reserve(BlockEntrySize)
	engine.PutUint64(b[0:8], uint64(e.Tag)) //nolint: gosec
	b[8] = uint8(e.Compression)
	clear(b[9:16])
	engine.PutUint64(b[16:24], e.RawSize)
	engine.PutUint64(b[24:32], e.StoredSize)
	engine.PutUint64(b[32:40], e.Checksum)
}

// Verify reports whether raw matches the recorded raw size and checksum.
//
// Returns:
//   - error: ErrSizeMismatch or ErrChecksumMismatch, naming the tag
func (e *BlockEntry) Verify(raw []byte) error {
	if uint64(len(raw)) != e.RawSize {
		return fmt.Errorf("%w: %s block has %d bytes, table records %d", errs.ErrSizeMismatch, e.Tag, len(raw), e.RawSize)
	}

	if sum := hash.Checksum(raw); sum != e.Checksum {
		return fmt.Errorf("%w: %s block checksum %016x, table records %016x", errs.ErrChecksumMismatch, e.Tag, sum, e.Checksum)
	}

	return nil
}

// ParseBlockEntry parses a BlockEntry from a byte slice.
//
// Parameters:
//   - data: Byte slice containing block entry (must be at least 40 bytes)
//   - engine: Endian engine for byte order
//
// Returns:
//   - BlockEntry: Parsed entry, Offset left at zero
//   - error: ErrInvalidBlockTable if data is too short
func ParseBlockEntry(data []byte, engine endian.EndianEngine) (BlockEntry, error) {
	if len(data) < BlockEntrySize {
		return BlockEntry{}, fmt.Errorf("%w: entry needs %d bytes, got %d", errs.ErrInvalidBlockTable, BlockEntrySize, len(data))
	}

	return BlockEntry{
		Tag:         format.BlockTag(engine.Uint64(data[0:8])), //nolint: gosec
		Compression: format.CompressionType(data[8]),
		RawSize:     engine.Uint64(data[16:24]),
		StoredSize:  engine.Uint64(data[24:32]),
		Checksum:    engine.Uint64(data[32:40]),
	}, nil
}

// ParseBlockTable parses the block table described by h from a complete
// archive image and fills in each entry's payload Offset.
//
// Only the table itself must be complete. Payloads that run past the end of
// data are reported by the caller when the block is read, so a truncated
// file still yields a table for inspection.
//
// Returns:
//   - []BlockEntry: entries in file order
//   - error: ErrInvalidBlockTable if the table is truncated or a size overflows
func ParseBlockTable(data []byte, h Header) ([]BlockEntry, error) {
	end := h.PayloadOffset()
	if len(data) < end {
		return nil, fmt.Errorf("%w: %d entries need %d bytes, file has %d",
			errs.ErrInvalidBlockTable, h.BlockCount, end, len(data))
	}

	engine := h.Flag.GetEndianEngine()
	entries := make([]BlockEntry, h.BlockCount)

	offset := uint64(end)
	for i := range entries {
		pos := BlockTableOffset + i*BlockEntrySize
		entry, err := ParseBlockEntry(data[pos:pos+BlockEntrySize], engine)
		if err != nil {
			return nil, err
		}

		if entry.StoredSize > math.MaxInt-offset || entry.RawSize > math.MaxInt {
			return nil, fmt.Errorf("%w: block %d (%s) size out of range", errs.ErrInvalidBlockTable, i, entry.Tag)
		}

		entry.Offset = int(offset) //nolint: gosec
		offset += entry.StoredSize
		entries[i] = entry
	}

	return entries, nil
}

// Payload returns the stored bytes of e within data.
//
// Returns:
//   - []byte: sub-slice of data, not a copy
//   - error: ErrSizeMismatch if data ends before the payload does
func (e *BlockEntry) Payload(data []byte) ([]byte, error) {
	end := uint64(e.Offset) + e.StoredSize //nolint: gosec
	if e.Offset < 0 || end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %s block needs %d bytes at offset %d, file has %d",
			errs.ErrSizeMismatch, e.Tag, e.StoredSize, e.Offset, len(data))
	}

	return data[e.Offset:end], nil
}

// FindBlock returns the first entry carrying tag.
func FindBlock(entries []BlockEntry, tag format.BlockTag) (BlockEntry, bool) {
	for _, e := range entries {
		if e.Tag == tag {
			return e, true
		}
	}

	return BlockEntry{}, false
}
