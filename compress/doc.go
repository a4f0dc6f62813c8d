// Package compress provides the block codecs used by hybractal archives.
//
// Every grid block of an archive is compressed independently, and the block
// table records which codec was used, so archives written with different
// codecs can be read by the same tool.
//
// # Supported Algorithms
//
// **LZ4** (format.CompressionLZ4), the default
//
//	codec := compress.NewLZ4Compressor()
//	compressed, _ := codec.Compress(ageGrid)
//	original, _ := compress.DecompressSized(codec, compressed, len(ageGrid))
//
// Raw LZ4 blocks do not store their decompressed size. Decompress grows its
// buffer until the block fits; DecompressSized starts from the size recorded
// in the block table instead.
//
// **Zstandard** (format.CompressionZstd)
//
// Best ratio, moderate speed. Pure Go (klauspost/compress) unless the module
// is built with the gozstd tag and cgo, which selects valyala/gozstd.
//
// **S2** (format.CompressionS2)
//
// Snappy-compatible successor with good speed and ratio.
//
// **None** (format.CompressionNone)
//
// Stores payloads as-is; handy for inspecting archives with a hex editor.
//
// # Choosing a codec
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//		return err
//	}
//
// GetCodec returns shared instances; all codecs are safe for concurrent use.
// CreateCodec returns a fresh instance and names the target in its error.
package compress
