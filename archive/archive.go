package archive

import (
	"encoding/hex"
	"fmt"

	"github.com/arloliu/hybractal/endian"
	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/internal/pool"
	"github.com/arloliu/hybractal/metadata"
	"github.com/arloliu/hybractal/section"
	"github.com/zeebo/blake3"
)

// Archive is a computed grid together with the metadata describing it.
//
// The age grid holds one escape age per cell, row-major, with
// fractal.NeverEscaped marking cells that stayed bounded. The optional z grid
// holds the last bounded iterate of each cell.
//
// Note: Archive is NOT thread-safe.
type Archive struct {
	meta metadata.Metadata
	age  []uint16
	z    []complex128

	table      []section.BlockEntry
	compressed map[format.BlockTag][]byte

	headerGeneration format.Generation
	sequenceMismatch bool
}

// New creates an archive for meta with zeroed grids.
//
// Parameters:
//   - meta: grid description, validated before allocation
//   - withZ: whether to allocate and persist the z grid
//
// Returns:
//   - *Archive: archive owning a copy of meta
//   - error: metadata validation errors, errs.ErrSizeMismatch when a grid
//     would exceed DefaultMaxBlockSize and so could not be loaded back
func New(meta metadata.Metadata, withZ bool) (*Archive, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	cellSize := ageCellSize
	if withZ {
		cellSize = zCellSize
	}
	n, err := gridBytes(meta.Rows, meta.Cols, cellSize)
	if err != nil {
		return nil, err
	}
	if uint64(n) > DefaultMaxBlockSize {
		return nil, fmt.Errorf("%w: %dx%d grid needs %d bytes, limit is %d",
			errs.ErrSizeMismatch, meta.Rows, meta.Cols, n, uint64(DefaultMaxBlockSize))
	}

	a := &Archive{
		meta:             meta.Clone(),
		age:              make([]uint16, meta.Cells()),
		headerGeneration: meta.Generation,
	}
	if withZ {
		a.z = make([]complex128, meta.Cells())
	}

	return a, nil
}

// Metadata returns the archive metadata. Changes through the pointer are
// persisted by the next Save; the grid dimensions must not be changed.
func (a *Archive) Metadata() *metadata.Metadata {
	return &a.meta
}

// Rows returns the number of grid rows.
func (a *Archive) Rows() int {
	return a.meta.Rows
}

// Cols returns the number of grid columns.
func (a *Archive) Cols() int {
	return a.meta.Cols
}

// HaveZ reports whether the archive carries a z grid.
func (a *Archive) HaveZ() bool {
	return a.z != nil
}

// AgeGrid returns the age grid, rows×cols cells in row-major order.
func (a *Archive) AgeGrid() []uint16 {
	return a.age
}

// ZGrid returns the z grid, or nil when HaveZ is false.
func (a *Archive) ZGrid() []complex128 {
	return a.z
}

// DropZ discards the z grid so the next Save omits it.
func (a *Archive) DropZ() {
	a.z = nil
}

// HeaderGeneration returns the generation byte found in the file header, or
// the metadata generation for archives created with New.
func (a *Archive) HeaderGeneration() format.Generation {
	return a.headerGeneration
}

// SequenceMismatch reports whether the loaded sequence differed from the one
// passed with WithExpectedSequence.
func (a *Archive) SequenceMismatch() bool {
	return a.sequenceMismatch
}

// BlockTable returns the block table read from the file.
// It is nil unless the archive was loaded with WithBlockTable.
func (a *Archive) BlockTable() []section.BlockEntry {
	return a.table
}

// CompressedBlock returns the stored payload of a block as read from the
// file, before decompression. Only available with WithRetainCompressed.
func (a *Archive) CompressedBlock(tag format.BlockTag) ([]byte, bool) {
	b, ok := a.compressed[tag]
	return b, ok
}

// RawGrid returns the little-endian serialization of the age or z grid, the
// same bytes a little-endian archive stores before compression.
//
// Returns:
//   - []byte: freshly allocated grid bytes
//   - error: errs.ErrBlockMissing for the z grid of an archive without one,
//     or for a tag that names no grid
func (a *Archive) RawGrid(tag format.BlockTag) ([]byte, error) {
	buf := pool.NewByteBuffer(0)
	engine := endian.GetLittleEndianEngine()

	switch {
	case tag == format.TagAgeGrid:
		appendAgeGrid(buf, engine, a.age)
	case tag == format.TagZGrid && a.z != nil:
		appendZGrid(buf, engine, a.z)
	default:
		return nil, fmt.Errorf("%w: no %s grid", errs.ErrBlockMissing, tag)
	}

	return buf.Bytes(), nil
}

// Fingerprint is a BLAKE3 digest identifying archive content independently
// of compression, byte order and metadata generation.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// fingerprintKey separates archive fingerprints from other BLAKE3 uses.
var fingerprintKey = [32]byte{
	'h', 'y', 'b', 'r', 'a', 'c', 't', 'a', 'l', '.', 'a', 'r', 'c', 'h', 'i', 'v',
	'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Fingerprint hashes the canonical metadata record followed by the raw
// little-endian age grid and, if present, the z grid.
func (a *Archive) Fingerprint() (Fingerprint, error) {
	record, err := a.meta.CanonicalRecord()
	if err != nil {
		return Fingerprint{}, err
	}

	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		return Fingerprint{}, fmt.Errorf("blake3 keyed hash: %w", err)
	}
	_, _ = hasher.Write(record)

	buf := pool.GetGridBuffer()
	defer pool.PutGridBuffer(buf)

	engine := endian.GetLittleEndianEngine()
	appendAgeGrid(buf, engine, a.age)
	_, _ = hasher.Write(buf.Bytes())

	if a.z != nil {
		buf.Reset()
		appendZGrid(buf, engine, a.z)
		_, _ = hasher.Write(buf.Bytes())
	}

	var fp Fingerprint
	copy(fp[:], hasher.Sum(nil))

	return fp, nil
}

// checkGrids verifies that the grid lengths match the metadata dimensions.
func (a *Archive) checkGrids() error {
	cells := a.meta.Cells()
	if len(a.age) != cells {
		return fmt.Errorf("%w: age grid has %d cells, metadata describes %d", errs.ErrSizeMismatch, len(a.age), cells)
	}
	if a.z != nil && len(a.z) != cells {
		return fmt.Errorf("%w: z grid has %d cells, metadata describes %d", errs.ErrSizeMismatch, len(a.z), cells)
	}

	return nil
}
