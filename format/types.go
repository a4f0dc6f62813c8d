package format

import "fmt"

type (
	Precision       uint8
	CompressionType uint8
	BlockTag        int64
	Generation      uint8
)

const (
	PrecisionSingle  Precision = 1 // PrecisionSingle is the 32-bit binary float (P1).
	PrecisionDouble  Precision = 2 // PrecisionDouble is the 64-bit binary float (P2).
	PrecisionQuad    Precision = 4 // PrecisionQuad is the 128-bit binary float (P4).
	PrecisionOctuple Precision = 8 // PrecisionOctuple is the 256-bit binary float (P8).

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	// Block tags are part of the published file format and must never change.
	TagMetadata BlockTag = 0       // TagMetadata marks the serialized metadata record.
	TagAgeGrid  BlockTag = 114514  // TagAgeGrid marks the compressed age grid.
	TagZGrid    BlockTag = 1919810 // TagZGrid marks the compressed z grid.

	Gen0              Generation = 0    // Gen0 is the legacy double-only metadata layout.
	Gen1              Generation = 1    // Gen1 is the hex center + explicit precision layout.
	GenerationUnknown Generation = 0xFF // GenerationUnknown means the layout must be detected.
)

// Precisions lists the supported precisions in ascending order.
var Precisions = [...]Precision{PrecisionSingle, PrecisionDouble, PrecisionQuad, PrecisionOctuple}

// IsValid reports whether p is one of the four supported precisions.
func (p Precision) IsValid() bool {
	switch p {
	case PrecisionSingle, PrecisionDouble, PrecisionQuad, PrecisionOctuple:
		return true
	default:
		return false
	}
}

// Bytes returns the encoded width of one scalar, precision×4.
func (p Precision) Bytes() int {
	return int(p) * 4
}

// Bits returns the encoded width of one scalar in bits.
func (p Precision) Bits() int {
	return int(p) * 32
}

// MantissaBits returns the number of stored mantissa bits (without the implicit leading bit).
func (p Precision) MantissaBits() int {
	switch p {
	case PrecisionSingle:
		return 23
	case PrecisionDouble:
		return 52
	case PrecisionQuad:
		return 112
	case PrecisionOctuple:
		return 236
	default:
		panic(fmt.Sprintf("format: unsupported precision %d", p))
	}
}

// ExponentBits returns the width of the biased exponent field.
func (p Precision) ExponentBits() int {
	return p.Bits() - p.MantissaBits() - 1
}

// ExponentBias returns 2^(ExponentBits-1) - 1.
func (p Precision) ExponentBias() int {
	return 1<<(p.ExponentBits()-1) - 1
}

// CenterHexLen returns the hex length of an encoded center (two scalars).
func (p Precision) CenterHexLen() int {
	return 2 * p.Bytes() * 2
}

func (p Precision) String() string {
	switch p {
	case PrecisionSingle:
		return "P1"
	case PrecisionDouble:
		return "P2"
	case PrecisionQuad:
		return "P4"
	case PrecisionOctuple:
		return "P8"
	default:
		return fmt.Sprintf("P?(%d)", uint8(p))
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType parses a compression name as printed by String, case-insensitive.
func ParseCompressionType(name string) (CompressionType, error) {
	switch name {
	case "none", "None", "NONE":
		return CompressionNone, nil
	case "zstd", "Zstd", "ZSTD":
		return CompressionZstd, nil
	case "s2", "S2":
		return CompressionS2, nil
	case "lz4", "LZ4", "Lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression type: %q", name)
	}
}

func (t BlockTag) String() string {
	switch t {
	case TagMetadata:
		return "metadata"
	case TagAgeGrid:
		return "age"
	case TagZGrid:
		return "z"
	default:
		return fmt.Sprintf("tag(%d)", int64(t))
	}
}

// IsKnown reports whether g is a generation this module can parse directly.
func (g Generation) IsKnown() bool {
	return g == Gen0 || g == Gen1
}

func (g Generation) String() string {
	switch g {
	case Gen0:
		return "gen0"
	case Gen1:
		return "gen1"
	default:
		return "unknown"
	}
}
