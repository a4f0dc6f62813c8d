package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// maxLZ4GrowSize bounds the adaptive buffer of Decompress when no size hint is known.
const maxLZ4GrowSize = 128 * 1024 * 1024

// LZ4Compressor compresses payloads as raw LZ4 blocks. It is the default
// archive codec: age grids are highly repetitive and decompress fast.
type LZ4Compressor struct{}

var (
	_ Codec             = (*LZ4Compressor)(nil)
	_ SizedDecompressor = (*LZ4Compressor)(nil)
)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 compression.
//
// Uses a pooled lz4.Compressor for better performance.
//
// Returns nil for empty input.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dstSize := lz4.CompressBlockBound(len(data))
	dst := make([]byte, dstSize)

	// Get compressor from pool
	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses a raw LZ4 block whose decompressed size is unknown.
//
// The block format does not record its output size, so the buffer starts at
// 4x the compressed size and doubles on ErrInvalidSourceShortBuffer, up to a
// 128MB safety limit.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	return c.decompress(data, len(data)*4, maxLZ4GrowSize)
}

// DecompressSized decompresses a raw LZ4 block expected to be sizeHint bytes.
//
// The buffer starts at sizeHint and may grow to twice that, so a block that
// is only slightly larger than recorded still decodes and is reported by the
// caller's size check rather than as a codec error.
func (c LZ4Compressor) DecompressSized(data []byte, sizeHint int) ([]byte, error) {
	return c.decompress(data, sizeHint, 2*sizeHint)
}

func (c LZ4Compressor) decompress(data []byte, bufSize, maxSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if bufSize <= 0 {
		bufSize = 64
	}

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize = min(bufSize*2, maxSize) // Double buffer size and retry
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	// Buffer exceeded maxSize - likely corrupted data or unreasonable compression ratio
	return nil, lz4.ErrInvalidSourceShortBuffer
}
