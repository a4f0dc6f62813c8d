package archive

import (
	"fmt"

	"github.com/arloliu/hybractal/endian"
	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/fractal"
	"github.com/arloliu/hybractal/internal/options"
	"github.com/go-kit/log"
)

// DefaultCompression is the codec applied to grid blocks when none is given.
const DefaultCompression = format.CompressionLZ4

// DefaultMaxBlockSize caps the decompressed size of a grid block accepted by
// Load and Decode. It fits a 16384×16384 z grid.
const DefaultMaxBlockSize = 4 << 30

// maxMetadataSize caps the metadata block; records are a few hundred bytes.
const maxMetadataSize = 64 << 10

// SaveConfig holds the settings of one Save or Encode call.
type SaveConfig struct {
	compression format.CompressionType
	engine      endian.EndianEngine
	logger      log.Logger
}

func newSaveConfig() *SaveConfig {
	return &SaveConfig{
		compression: DefaultCompression,
		engine:      endian.GetLittleEndianEngine(),
		logger:      log.NewNopLogger(),
	}
}

// SaveOption represents a functional option for configuring a save.
type SaveOption = options.Option[*SaveConfig]

// WithCompression sets the codec for the age and z grid blocks.
// The metadata block is always stored uncompressed.
func WithCompression(comp format.CompressionType) SaveOption {
	return options.New(func(c *SaveConfig) error {
		switch comp {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			c.compression = comp
			return nil
		default:
			return fmt.Errorf("%w: %d", errs.ErrInvalidCompression, uint8(comp))
		}
	})
}

// WithLittleEndian writes the header fields, block table and grids
// little-endian. It is the default option.
func WithLittleEndian() SaveOption {
	return options.NoError(func(c *SaveConfig) {
		c.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndian writes the header fields, block table and grids big-endian.
func WithBigEndian() SaveOption {
	return options.NoError(func(c *SaveConfig) {
		c.engine = endian.GetBigEndianEngine()
	})
}

// WithSaveLogger sets the logger used to report what was written.
func WithSaveLogger(logger log.Logger) SaveOption {
	return options.NoError(func(c *SaveConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// LoadConfig holds the settings of one Load or Decode call.
type LoadConfig struct {
	retainCompressed bool
	keepBlockTable   bool
	expectedSequence *fractal.Sequence
	maxBlockSize     uint64
	logger           log.Logger
}

func newLoadConfig() *LoadConfig {
	return &LoadConfig{
		maxBlockSize: DefaultMaxBlockSize,
		logger:       log.NewNopLogger(),
	}
}

// LoadOption represents a functional option for configuring a load.
type LoadOption = options.Option[*LoadConfig]

// WithRetainCompressed keeps the stored payload of every known block so it
// can be extracted with Archive.CompressedBlock.
func WithRetainCompressed() LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.retainCompressed = true
	})
}

// WithBlockTable keeps the parsed block table, see Archive.BlockTable.
func WithBlockTable() LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.keepBlockTable = true
	})
}

// WithExpectedSequence logs a warning when the archive was computed with a
// different sequence. A mismatch never fails the load.
func WithExpectedSequence(seq fractal.Sequence) LoadOption {
	return options.New(func(c *LoadConfig) error {
		if err := seq.Validate(); err != nil {
			return err
		}
		c.expectedSequence = &seq

		return nil
	})
}

// WithMaxBlockSize sets the largest decompressed grid block accepted, in
// bytes. Larger blocks fail with errs.ErrSizeMismatch before any allocation.
func WithMaxBlockSize(n uint64) LoadOption {
	return options.New(func(c *LoadConfig) error {
		if n == 0 {
			return fmt.Errorf("%w: max block size must be positive", errs.ErrSizeMismatch)
		}
		c.maxBlockSize = n

		return nil
	})
}

// WithLogger sets the logger for load warnings and diagnostics.
func WithLogger(logger log.Logger) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}
