package compress

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
)

// Compressor compresses one archive block payload.
//
// The input is a complete serialized grid (little- or big-endian cells,
// row-major). The returned slice is owned by the caller; the input is not
// modified, except that the no-op codec returns it as-is.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload produced by the matching Compressor.
//
// Implementations must be safe for concurrent use and must return an error,
// never panic, on corrupted or truncated input.
//
// Example:
//
//	codec, err := compress.GetCodec(format.CompressionLZ4)
//	if err != nil {
//		return err
//	}
//	raw, err := codec.Decompress(stored)
//	if err != nil {
//		return fmt.Errorf("decompression failed: %w", err)
//	}
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// SizedDecompressor is implemented by decompressors that benefit from knowing
// the expected output size, e.g. block formats that do not record it.
//
// The hint is the size recorded by the container. Output larger than the
// hint may be rejected; the caller verifies the exact size either way.
type SizedDecompressor interface {
	DecompressSized(data []byte, sizeHint int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// DecompressSized decompresses data with d, passing sizeHint through when
// d implements SizedDecompressor.
func DecompressSized(d Decompressor, data []byte, sizeHint int) ([]byte, error) {
	if sd, ok := d.(SizedDecompressor); ok && sizeHint > 0 {
		return sd.DecompressSized(data, sizeHint)
	}

	return d.Decompress(data)
}

// Expansion limits of the built-in codecs: the most raw bytes one stored
// byte can produce. LZ4 extends a match by 255 per length byte, a zstd RLE
// block turns 4 bytes into at most 128 KiB, and an S2 repeat copies up to
// 16 MiB from a 5 byte tag.
const (
	lz4MaxExpansion  = 255
	zstdMaxExpansion = 1 << 15
	s2MaxExpansion   = 1 << 23
)

// MaxDecompressedSize returns the largest raw size a stored payload of
// stored bytes can decompress to with compressionType. Containers reject
// recorded raw sizes above it before allocating. Unknown types return 0.
func MaxDecompressedSize(compressionType format.CompressionType, stored uint64) uint64 {
	var factor, slack uint64
	switch compressionType {
	case format.CompressionNone:
		return stored
	case format.CompressionLZ4:
		factor, slack = lz4MaxExpansion, lz4MaxExpansion
	case format.CompressionZstd:
		factor, slack = zstdMaxExpansion, 0
	case format.CompressionS2:
		factor, slack = s2MaxExpansion, 0
	default:
		return 0
	}

	hi, lo := bits.Mul64(stored, factor)
	if hi != 0 || lo > math.MaxUint64-slack {
		return math.MaxUint64
	}

	return lo + slack
}

// CompressionStats describes how well one block compressed.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of the payload before compression
	OriginalSize int64

	// CompressedSize is the size of the payload as stored
	CompressedSize int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
// Returns 0.0 if the original size is zero.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec is a factory function that creates a Codec based on the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Compressor instance for the specified type
//   - error: wraps errs.ErrInvalidCompression for an unknown type
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: %s compression %s", errs.ErrInvalidCompression, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: unsupported compression type %s (%d)", errs.ErrInvalidCompression, compressionType, uint8(compressionType))
}
