package metadata

import (
	"fmt"
	"math"

	"github.com/arloliu/hybractal/endian"
	"github.com/arloliu/hybractal/errs"
)

const (
	// LegacyRecordSize is the size of the generation 0 record.
	LegacyRecordSize = 72
	// LegacyTypeHash identifies a generation 0 record ("0BYH" little-endian).
	LegacyTypeHash uint32 = 0x48594230

	legacyCenterOffset = 20
	legacyCenterSize   = 16
)

// LegacyRecord is the fixed generation 0 layout, little-endian:
//
//	0-3    type hash (LegacyTypeHash)
//	4-11   sequence bits
//	12-19  sequence length
//	20-27  center real (float64)
//	28-35  center imag (float64)
//	36-43  x span (float64)
//	44-51  y span (float64)
//	52-55  max iterations (int32)
//	56-63  rows
//	64-71  cols
type LegacyRecord struct {
	SequenceBin   uint64
	SequenceLen   uint64
	CenterRe      float64
	CenterIm      float64
	XSpan         float64
	YSpan         float64
	MaxIterations int32
	Rows          uint64
	Cols          uint64
}

var legacyEngine = endian.GetLittleEndianEngine()

// MarshalBinary encodes r in the generation 0 layout.
func (r LegacyRecord) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, LegacyRecordSize)
	b = legacyEngine.AppendUint32(b, LegacyTypeHash)
	b = legacyEngine.AppendUint64(b, r.SequenceBin)
	b = legacyEngine.AppendUint64(b, r.SequenceLen)
	b = legacyEngine.AppendUint64(b, math.Float64bits(r.CenterRe))
	b = legacyEngine.AppendUint64(b, math.Float64bits(r.CenterIm))
	b = legacyEngine.AppendUint64(b, math.Float64bits(r.XSpan))
	b = legacyEngine.AppendUint64(b, math.Float64bits(r.YSpan))
	b = legacyEngine.AppendUint32(b, uint32(r.MaxIterations))
	b = legacyEngine.AppendUint64(b, r.Rows)
	b = legacyEngine.AppendUint64(b, r.Cols)

	return b, nil
}

// UnmarshalBinary decodes a generation 0 record. The input must be exactly
// LegacyRecordSize bytes and start with LegacyTypeHash.
func (r *LegacyRecord) UnmarshalBinary(data []byte) error {
	if len(data) != LegacyRecordSize {
		return fmt.Errorf("%w: legacy record is %d bytes, got %d", errs.ErrLengthMismatch, LegacyRecordSize, len(data))
	}
	if hash := legacyEngine.Uint32(data[0:4]); hash != LegacyTypeHash {
		return fmt.Errorf("%w: legacy type hash %#08x", errs.ErrInvalidMagicNumber, hash)
	}

	r.SequenceBin = legacyEngine.Uint64(data[4:12])
	r.SequenceLen = legacyEngine.Uint64(data[12:20])
	r.CenterRe = math.Float64frombits(legacyEngine.Uint64(data[20:28]))
	r.CenterIm = math.Float64frombits(legacyEngine.Uint64(data[28:36]))
	r.XSpan = math.Float64frombits(legacyEngine.Uint64(data[36:44]))
	r.YSpan = math.Float64frombits(legacyEngine.Uint64(data[44:52]))
	r.MaxIterations = int32(legacyEngine.Uint32(data[52:56]))
	r.Rows = legacyEngine.Uint64(data[56:64])
	r.Cols = legacyEngine.Uint64(data[64:72])

	return nil
}

// legacyCenterBytes returns the raw center bytes of an encoded record.
func legacyCenterBytes(data []byte) []byte {
	return data[legacyCenterOffset : legacyCenterOffset+legacyCenterSize]
}
