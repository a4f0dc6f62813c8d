package metadata

import (
	"fmt"
	"math"

	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/internal/hexutil"
	"github.com/arloliu/hybractal/window"
)

// Parse decodes a metadata record of unknown generation.
//
// The generation 0 layout is tried first, then generation 1. If neither
// matches, the returned error wraps errs.ErrFormatParseFailed and names both
// failures, and the zero Metadata is returned.
func Parse(data []byte) (Metadata, error) {
	m, legacyErr := parseLegacy(data)
	if legacyErr == nil {
		return m, nil
	}

	m, currentErr := parseCurrent(data)
	if currentErr == nil {
		return m, nil
	}

	return Metadata{}, fmt.Errorf("%w: generation 0: %w; generation 1: %w",
		errs.ErrFormatParseFailed, legacyErr, currentErr)
}

// ParseGeneration decodes a record whose generation is already known, e.g.
// from a container header. GenerationUnknown falls back to Parse.
func ParseGeneration(data []byte, gen format.Generation) (Metadata, error) {
	var (
		m   Metadata
		err error
	)

	switch gen {
	case format.Gen0:
		m, err = parseLegacy(data)
	case format.Gen1:
		m, err = parseCurrent(data)
	case format.GenerationUnknown:
		return Parse(data)
	default:
		return Metadata{}, fmt.Errorf("%w: unsupported generation %d", errs.ErrFormatParseFailed, uint8(gen))
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %s: %w", errs.ErrFormatParseFailed, gen, err)
	}

	return m, nil
}

func parseLegacy(data []byte) (Metadata, error) {
	var r LegacyRecord
	if err := r.UnmarshalBinary(data); err != nil {
		return Metadata{}, err
	}

	if r.SequenceLen > math.MaxUint8 {
		return Metadata{}, fmt.Errorf("%w: length %d", errs.ErrInvalidSequence, r.SequenceLen)
	}
	if r.MaxIterations < 0 || r.MaxIterations > MaxIterations {
		return Metadata{}, fmt.Errorf("%w: %d", errs.ErrInvalidMaxIterations, r.MaxIterations)
	}
	if r.Rows > math.MaxInt32 || r.Cols > math.MaxInt32 {
		return Metadata{}, fmt.Errorf("%w: %dx%d", errs.ErrInvalidDimensions, r.Rows, r.Cols)
	}

	m := Metadata{
		SequenceBin:   r.SequenceBin,
		SequenceLen:   uint8(r.SequenceLen),
		Rows:          int(r.Rows),
		Cols:          int(r.Cols),
		MaxIterations: uint16(r.MaxIterations),
		Generation:    format.Gen0,
		window:        window.FromDoubles(r.CenterRe, r.CenterIm, r.XSpan, r.YSpan, format.PrecisionDouble),
	}
	m.cacheCenterHex(hexutil.Encode(legacyCenterBytes(data)))
	if err := m.Validate(); err != nil {
		return Metadata{}, err
	}

	return m, nil
}

func parseCurrent(data []byte) (Metadata, error) {
	r, err := unmarshalRecord(data)
	if err != nil {
		return Metadata{}, err
	}
	if r.Rows > math.MaxInt32 || r.Cols > math.MaxInt32 {
		return Metadata{}, fmt.Errorf("%w: %dx%d", errs.ErrInvalidDimensions, r.Rows, r.Cols)
	}

	w, err := window.FromHex(r.CenterHex, r.XSpan, r.YSpan, format.Precision(r.Precision))
	if err != nil {
		return Metadata{}, err
	}

	m := Metadata{
		SequenceBin:   r.SequenceBin,
		SequenceLen:   r.SequenceLen,
		Rows:          int(r.Rows),
		Cols:          int(r.Cols),
		MaxIterations: r.MaxIterations,
		Generation:    format.Gen1,
		window:        w,
	}
	m.cacheCenterHex(r.CenterHex)
	if err := m.Validate(); err != nil {
		return Metadata{}, err
	}

	return m, nil
}
