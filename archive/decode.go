package archive

import (
	"fmt"
	"math"
	"os"

	"github.com/arloliu/hybractal/compress"
	"github.com/arloliu/hybractal/endian"
	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/internal/collision"
	"github.com/arloliu/hybractal/internal/options"
	"github.com/arloliu/hybractal/metadata"
	"github.com/arloliu/hybractal/section"
	"github.com/go-kit/log/level"
)

// Load reads and decodes the archive at path.
//
// Returns:
//   - *Archive: decoded archive
//   - error: file errors wrapping errs.ErrIO, or any Decode error
func Load(path string, opts ...LoadOption) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return Decode(data, opts...)
}

// Decode decodes an archive image.
//
// The generation byte of the header selects how the metadata block is
// parsed; format.GenerationUnknown falls back to trying every layout. Blocks
// with unknown tags are skipped.
//
// Returns:
//   - *Archive: decoded archive; the grids do not alias data
//   - error: header and block table errors, errs.ErrBlockMissing when the
//     metadata or age block is absent, errs.ErrSizeMismatch when a block is
//     truncated, fails to decompress, has the wrong length or records a raw
//     size above WithMaxBlockSize or its codec's expansion bound,
//     errs.ErrChecksumMismatch when a block is corrupted
func Decode(data []byte, opts ...LoadOption) (*Archive, error) {
	cfg := newLoadConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	d := decoder{data: data, cfg: cfg}

	return d.decode()
}

// decoder holds the state of one Decode call.
type decoder struct {
	data    []byte
	cfg     *LoadConfig
	header  section.Header
	engine  endian.EndianEngine
	entries []section.BlockEntry
}

func (d *decoder) decode() (*Archive, error) {
	header, err := section.ParseHeader(d.data)
	if err != nil {
		return nil, err
	}
	d.header = header
	d.engine = header.Flag.GetEndianEngine()

	d.entries, err = section.ParseBlockTable(d.data, header)
	if err != nil {
		return nil, err
	}
	d.scanBlocks()

	a := &Archive{headerGeneration: header.Generation}

	if err := d.decodeMetadata(a); err != nil {
		return nil, err
	}

	ageEntry, ok := section.FindBlock(d.entries, format.TagAgeGrid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrBlockMissing, format.TagAgeGrid)
	}
	ageSize, err := gridBytes(a.meta.Rows, a.meta.Cols, ageCellSize)
	if err != nil {
		return nil, err
	}
	raw, err := d.readBlock(a, ageEntry, ageSize, d.cfg.maxBlockSize)
	if err != nil {
		return nil, err
	}
	a.age = make([]uint16, len(raw)/ageCellSize)
	decodeAgeGrid(raw, d.engine, a.age)

	if zEntry, ok := section.FindBlock(d.entries, format.TagZGrid); ok {
		zSize, err := gridBytes(a.meta.Rows, a.meta.Cols, zCellSize)
		if err != nil {
			return nil, err
		}
		raw, err := d.readBlock(a, zEntry, zSize, d.cfg.maxBlockSize)
		if err != nil {
			return nil, err
		}
		a.z = make([]complex128, len(raw)/zCellSize)
		decodeZGrid(raw, d.engine, a.z)
	}

	if d.cfg.keepBlockTable {
		a.table = d.entries
	}

	return a, nil
}

func (d *decoder) decodeMetadata(a *Archive) error {
	entry, ok := section.FindBlock(d.entries, format.TagMetadata)
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrBlockMissing, format.TagMetadata)
	}

	raw, err := d.readBlock(a, entry, -1, maxMetadataSize)
	if err != nil {
		return err
	}

	meta, err := metadata.ParseGeneration(raw, d.header.Generation)
	if err != nil {
		return err
	}
	a.meta = meta

	if expected := d.cfg.expectedSequence; expected != nil && *expected != meta.Sequence() {
		a.sequenceMismatch = true
		level.Warn(d.cfg.logger).Log("msg", "archive was computed with a different sequence",
			"expected", expected.String(), "archive", meta.Sequence().String())
	}

	level.Debug(d.cfg.logger).Log("msg", "metadata decoded", "header_generation", d.header.Generation,
		"generation", meta.Generation, "precision", meta.Precision(), "rows", meta.Rows, "cols", meta.Cols)

	return nil
}

// readBlock returns the verified raw payload of entry. A non-negative
// wantSize is the exact length the caller needs. The recorded raw size is
// checked against limit and the codec's expansion bound before decompressing.
func (d *decoder) readBlock(a *Archive, entry section.BlockEntry, wantSize int, limit uint64) ([]byte, error) {
	stored, err := entry.Payload(d.data)
	if err != nil {
		return nil, err
	}

	if wantSize >= 0 && entry.RawSize != uint64(wantSize) { //nolint: gosec
		return nil, fmt.Errorf("%w: %s block records %d bytes, grid needs %d",
			errs.ErrSizeMismatch, entry.Tag, entry.RawSize, wantSize)
	}
	if entry.RawSize > limit || entry.RawSize > math.MaxInt {
		return nil, fmt.Errorf("%w: %s block records %d bytes, limit is %d",
			errs.ErrSizeMismatch, entry.Tag, entry.RawSize, limit)
	}

	codec, err := compress.GetCodec(entry.Compression)
	if err != nil {
		return nil, fmt.Errorf("%s block: %w", entry.Tag, err)
	}

	if bound := compress.MaxDecompressedSize(entry.Compression, entry.StoredSize); entry.RawSize > bound {
		return nil, fmt.Errorf("%w: %s block records %d bytes, %d stored %s bytes expand to at most %d",
			errs.ErrSizeMismatch, entry.Tag, entry.RawSize, entry.StoredSize, entry.Compression, bound)
	}

	raw, err := compress.DecompressSized(codec, stored, int(entry.RawSize)) //nolint: gosec
	if err != nil {
		return nil, fmt.Errorf("%w: %s block: %w", errs.ErrSizeMismatch, entry.Tag, err)
	}

	if err := entry.Verify(raw); err != nil {
		return nil, err
	}

	if d.cfg.retainCompressed {
		if a.compressed == nil {
			a.compressed = make(map[format.BlockTag][]byte, len(d.entries))
		}
		a.compressed[entry.Tag] = append([]byte(nil), stored...)
	}

	return raw, nil
}

// scanBlocks logs unknown tags and entries shadowed by an earlier entry with
// the same tag.
func (d *decoder) scanBlocks() {
	tracker := collision.NewTracker()
	for i, e := range d.entries {
		if first, dup := tracker.Track(e.Tag, i); dup {
			level.Warn(d.cfg.logger).Log("msg", "duplicate block ignored", "tag", e.Tag, "index", i, "first", first)
			continue
		}

		switch e.Tag {
		case format.TagMetadata, format.TagAgeGrid, format.TagZGrid:
		default:
			level.Debug(d.cfg.logger).Log("msg", "skipping unknown block", "tag", int64(e.Tag), "stored", e.StoredSize)
		}
	}
}
