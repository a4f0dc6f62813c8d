package metadata

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/fractal"
	"github.com/arloliu/hybractal/internal/hexutil"
	"github.com/arloliu/hybractal/window"
)

// MaxIterations is the largest iteration cap an archive may record.
const MaxIterations = math.MaxUint16 - 1

// Metadata describes a computed grid: the sequence that produced it, the grid
// dimensions, the iteration cap and the sampled window.
type Metadata struct {
	SequenceBin   uint64
	SequenceLen   uint8
	Rows          int
	Cols          int
	MaxIterations uint16
	Generation    format.Generation

	window window.Variant

	// centerHex caches the normalized center hex read from a record. It is
	// valid only while the live center still encodes to centerBytes.
	centerHex   string
	centerBytes []byte
}

// New creates current-generation metadata for a grid over w.
func New(seq fractal.Sequence, rows, cols int, maxit uint16, w window.Variant) Metadata {
	return Metadata{
		SequenceBin:   seq.Bits,
		SequenceLen:   seq.Length,
		Rows:          rows,
		Cols:          cols,
		MaxIterations: maxit,
		Generation:    format.Gen1,
		window:        w,
	}
}

// Window returns the sampled window.
func (m *Metadata) Window() window.Variant {
	return m.window
}

// SetWindow replaces the window and drops the cached center hex.
func (m *Metadata) SetWindow(w window.Variant) {
	m.window = w
	m.centerHex = ""
	m.centerBytes = nil
}

// cacheCenterHex records hex as the persisted form of the current center.
func (m *Metadata) cacheCenterHex(hex string) {
	m.centerHex = strings.ToLower(hexutil.Strip(hex))
	m.centerBytes = nil
	if !m.window.IsZero() {
		m.centerBytes = m.window.Base().CenterBytes()
	}
}

// cacheValid reports whether the cached hex still describes the live center,
// which may have been edited in place through Window().Base().
func (m *Metadata) cacheValid() bool {
	if m.centerHex == "" || m.window.IsZero() {
		return false
	}

	return bytes.Equal(m.window.Base().CenterBytes(), m.centerBytes)
}

// Precision returns the precision of the window.
func (m *Metadata) Precision() format.Precision {
	return m.window.Precision()
}

// Sequence returns the iteration sequence that produced the grid.
func (m *Metadata) Sequence() fractal.Sequence {
	return fractal.Sequence{Bits: m.SequenceBin, Length: m.SequenceLen}
}

// Cells returns rows×cols.
func (m *Metadata) Cells() int {
	return m.Rows * m.Cols
}

// CachedCenterHex returns the center hex read from the source record, in
// lower case without a prefix. It reports false when there is none or the
// center has changed since.
func (m *Metadata) CachedCenterHex() (string, bool) {
	if !m.cacheValid() {
		return "", false
	}

	return m.centerHex, true
}

// CenterHex returns the center hex to persist.
//
// A cached hex is reused when the record is already current and the center
// is unchanged, which keeps repeated load/save cycles byte-stable. Legacy
// records, edited centers and records without a cached hex re-derive it from
// the live window.
func (m *Metadata) CenterHex() string {
	if m.Generation == format.Gen1 && m.cacheValid() {
		return m.centerHex
	}
	if m.window.IsZero() {
		return ""
	}

	return m.window.Base().CenterHex()
}

// Validate checks the grid dimensions, iteration cap, sequence and window.
func (m *Metadata) Validate() error {
	if m.Rows <= 0 || m.Cols <= 0 {
		return fmt.Errorf("%w: %dx%d", errs.ErrInvalidDimensions, m.Rows, m.Cols)
	}
	if m.MaxIterations > MaxIterations {
		return fmt.Errorf("%w: %d exceeds %d", errs.ErrInvalidMaxIterations, m.MaxIterations, MaxIterations)
	}
	if err := m.Sequence().Validate(); err != nil {
		return err
	}
	if m.window.IsZero() {
		return fmt.Errorf("%w: missing window", errs.ErrPrecisionUnknown)
	}

	return nil
}

// CanonicalRecord encodes m in the current (generation 1) layout, whatever
// generation it was loaded from.
func (m *Metadata) CanonicalRecord() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	base := m.window.Base()

	return marshalRecord(record{
		Generation:    uint8(format.Gen1),
		SequenceBin:   m.SequenceBin,
		SequenceLen:   m.SequenceLen,
		Rows:          uint64(m.Rows),
		Cols:          uint64(m.Cols),
		MaxIterations: m.MaxIterations,
		Precision:     uint8(base.Precision()),
		CenterHex:     m.CenterHex(),
		XSpan:         base.XSpan(),
		YSpan:         base.YSpan(),
	})
}

// Upgrade marks m as current after its canonical record has been written,
// caching the center hex that was persisted.
func (m *Metadata) Upgrade() {
	m.cacheCenterHex(m.CenterHex())
	m.Generation = format.Gen1
}

// Clone returns a deep copy of m.
func (m *Metadata) Clone() Metadata {
	c := *m
	c.window = m.window.Clone()
	c.centerBytes = bytes.Clone(m.centerBytes)

	return c
}
