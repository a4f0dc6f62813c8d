package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor provides Zstandard compression.
//
// Zstd gives the best ratio of the built-in codecs and suits large z grids
// kept for archival. The implementation is the pure Go klauspost/compress
// codec by default; building with the gozstd tag (and cgo) switches to the
// cgo binding of the reference library. Both produce standard zstd frames.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// checkZstdFrameSize fails when the frame header declares more content than
// limit bytes, so a forged header never sizes an allocation.
func checkZstdFrameSize(data []byte, limit int) error {
	var h zstd.Header
	if err := h.Decode(data); err != nil {
		return fmt.Errorf("zstd frame header: %w", err)
	}
	if h.HasFCS && h.FrameContentSize > uint64(limit) { //nolint: gosec
		return fmt.Errorf("zstd frame declares %d bytes, expected at most %d", h.FrameContentSize, limit)
	}

	return nil
}
