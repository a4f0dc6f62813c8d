package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arloliu/hybractal/compress"
	"github.com/arloliu/hybractal/endian"
	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/internal/options"
	"github.com/arloliu/hybractal/internal/pool"
	"github.com/arloliu/hybractal/section"
	"github.com/go-kit/log/level"
)

// block is one block ready to be written: its table entry and stored payload.
type block struct {
	entry  section.BlockEntry
	stored []byte
}

// Encode serializes the archive into the container format without touching
// the metadata generation. Save is Encode plus an atomic file write.
//
// Block order is metadata, age grid, then z grid if present. The metadata
// block always holds the current-generation record, uncompressed.
//
// Returns:
//   - []byte: complete archive image
//   - error: option, metadata validation, grid size or compression errors
func (a *Archive) Encode(opts ...SaveOption) ([]byte, error) {
	cfg := newSaveConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	data, _, err := a.encode(cfg)

	return data, err
}

func (a *Archive) encode(cfg *SaveConfig) ([]byte, []compress.CompressionStats, error) {
	if err := a.checkGrids(); err != nil {
		return nil, nil, err
	}

	record, err := a.meta.CanonicalRecord()
	if err != nil {
		return nil, nil, err
	}

	codec, err := compress.CreateCodec(cfg.compression, "grid")
	if err != nil {
		return nil, nil, err
	}

	blocks := make([]block, 0, 3)
	blocks = append(blocks, block{
		entry:  section.NewBlockEntry(format.TagMetadata, format.CompressionNone, record, record),
		stored: record,
	})

	buf := pool.GetGridBuffer()
	defer pool.PutGridBuffer(buf)

	stats := make([]compress.CompressionStats, 0, 2)

	appendAgeGrid(buf, cfg.engine, a.age)
	b, err := compressBlock(format.TagAgeGrid, cfg.compression, codec, buf.Bytes())
	if err != nil {
		return nil, nil, err
	}
	blocks = append(blocks, b)
	stats = append(stats, blockStats(b))

	if a.z != nil {
		buf.Reset()
		appendZGrid(buf, cfg.engine, a.z)
		b, err = compressBlock(format.TagZGrid, cfg.compression, codec, buf.Bytes())
		if err != nil {
			return nil, nil, err
		}
		blocks = append(blocks, b)
		stats = append(stats, blockStats(b))
	}

	return assemble(format.Gen1, cfg.engine, blocks), stats, nil
}

// compressBlock compresses raw; the returned payload never aliases raw.
func compressBlock(tag format.BlockTag, ct format.CompressionType, codec compress.Codec, raw []byte) (block, error) {
	stored, err := codec.Compress(raw)
	if err != nil {
		return block{}, fmt.Errorf("failed to compress %s block: %w", tag, err)
	}
	if ct == format.CompressionNone {
		stored = append([]byte(nil), stored...)
	}

	return block{
		entry:  section.NewBlockEntry(tag, ct, raw, stored),
		stored: stored,
	}, nil
}

func blockStats(b block) compress.CompressionStats {
	return compress.CompressionStats{
		Algorithm:      b.entry.Compression,
		OriginalSize:   int64(b.entry.RawSize),    //nolint: gosec
		CompressedSize: int64(b.entry.StoredSize), //nolint: gosec
	}
}

// assemble lays out header, block table and payloads.
func assemble(gen format.Generation, engine endian.EndianEngine, blocks []block) []byte {
	header := section.NewHeader(gen)
	header.Flag.SetEndianEngine(engine)
	header.BlockCount = uint32(len(blocks)) //nolint: gosec

	table := pool.GetTableBuffer()
	defer pool.PutTableBuffer(table)

	_, _ = table.Write(header.Bytes())
	size := header.PayloadOffset()
	for _, b := range blocks {
		b.entry.WriteTo(table, engine)
		size += len(b.stored)
	}

	// exact-size buffer, returned to the caller
	data := make([]byte, size)
	offset := copy(data, table.Bytes())
	for _, b := range blocks {
		offset += copy(data[offset:], b.stored)
	}

	return data
}

// Save writes the archive to path atomically: the image goes to a temporary
// file in the same directory which is then renamed over path.
//
// On success the metadata is upgraded to the current generation, so a
// legacy archive that was loaded and saved reports Gen1 afterwards.
//
// Returns:
//   - error: Encode errors, or file errors wrapping errs.ErrIO
func (a *Archive) Save(path string, opts ...SaveOption) error {
	cfg := newSaveConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return err
	}

	data, stats, err := a.encode(cfg)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(path, data); err != nil {
		return err
	}

	from := a.meta.Generation
	a.meta.Upgrade()
	a.headerGeneration = format.Gen1

	for _, s := range stats {
		level.Debug(cfg.logger).Log("msg", "grid block written", "compression", s.Algorithm,
			"raw", s.OriginalSize, "stored", s.CompressedSize, "ratio", fmt.Sprintf("%.3f", s.CompressionRatio()),
			"savings", fmt.Sprintf("%.1f%%", s.SpaceSavings()))
	}
	level.Info(cfg.logger).Log("msg", "archive saved", "path", path, "bytes", len(data),
		"from_generation", from, "big_endian", !endian.IsLittleEndian(cfg.engine))

	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return nil
}
