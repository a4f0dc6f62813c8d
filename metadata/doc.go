// Package metadata holds the record describing a computed grid and its two
// on-disk encodings.
//
// Generation 0 is a fixed 72-byte little-endian layout with a float64 center
// and no precision tag; it always loads as a double precision window.
// Generation 1 is a deterministic CBOR map carrying the center as hex text
// and an explicit precision. Records are always written as generation 1, so
// loading a legacy record and saving it again upgrades it.
package metadata
