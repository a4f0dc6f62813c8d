// Package errs defines the sentinel errors shared by all hybractal packages.
//
// Errors are wrapped with additional context using fmt.Errorf and "%w", so callers
// should match them with errors.Is rather than comparing values directly.
package errs

import "errors"

// Float codec errors.
var (
	// ErrCapacityTooSmall is returned when an output buffer cannot hold an encoded scalar.
	ErrCapacityTooSmall = errors.New("output buffer capacity too small")
	// ErrLengthMismatch is returned when an encoded input is not exactly the expected width.
	ErrLengthMismatch = errors.New("encoded length mismatch")
	// ErrPrecisionUnknown is returned when a byte length or tag maps to no supported precision.
	ErrPrecisionUnknown = errors.New("unknown floating point precision")
	// ErrInvalidHex is returned for malformed hex text.
	ErrInvalidHex = errors.New("invalid hex string")
)

// Metadata errors.
var (
	ErrFormatParseFailed    = errors.New("metadata format parse failed")
	ErrInvalidDimensions    = errors.New("invalid grid dimensions")
	ErrInvalidMaxIterations = errors.New("invalid max iterations")
	ErrInvalidSequence      = errors.New("invalid iteration sequence")
)

// Container errors.
var (
	ErrInvalidHeaderSize  = errors.New("invalid header size")
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	ErrInvalidBlockTable  = errors.New("invalid block table")
	ErrBlockMissing       = errors.New("required block missing")
	ErrSizeMismatch       = errors.New("decompressed size mismatch")
	ErrChecksumMismatch   = errors.New("block checksum mismatch")
	ErrInvalidCompression = errors.New("invalid compression type")
	ErrIO                 = errors.New("i/o failure")
)
