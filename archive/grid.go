package archive

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/hybractal/endian"
	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/internal/pool"
)

const (
	ageCellSize = 2  // uint16
	zCellSize   = 16 // two float64, real part first
)

// gridBytes returns the serialized size of a rows×cols grid of cellSize
// byte cells, failing when it does not fit an int.
func gridBytes(rows, cols, cellSize int) (int, error) {
	if rows < 0 || cols < 0 || cellSize < 0 {
		return 0, fmt.Errorf("%w: %dx%d grid", errs.ErrSizeMismatch, rows, cols)
	}

	hi, cells := bits.Mul64(uint64(rows), uint64(cols))
	hi2, n := bits.Mul64(cells, uint64(cellSize))
	if hi != 0 || hi2 != 0 || n > math.MaxInt {
		return 0, fmt.Errorf("%w: %dx%d grid of %d byte cells overflows", errs.ErrSizeMismatch, rows, cols, cellSize)
	}

	return int(n), nil
}

// appendAgeGrid serializes age row-major in engine byte order.
func appendAgeGrid(buf *pool.ByteBuffer, engine endian.EndianEngine, age []uint16) {
	b := buf.Reserve(len(age) * ageCellSize)
	for i, v := range age {
		engine.PutUint16(b[i*ageCellSize:], v)
	}
}

// decodeAgeGrid fills dst from raw, which must hold exactly len(dst) cells.
func decodeAgeGrid(raw []byte, engine endian.EndianEngine, dst []uint16) {
	for i := range dst {
		dst[i] = engine.Uint16(raw[i*ageCellSize:])
	}
}

// appendZGrid serializes z row-major in engine byte order, real part first.
func appendZGrid(buf *pool.ByteBuffer, engine endian.EndianEngine, z []complex128) {
	b := buf.Reserve(len(z) * zCellSize)
	for i, v := range z {
		off := i * zCellSize
		engine.PutUint64(b[off:], math.Float64bits(real(v)))
		engine.PutUint64(b[off+8:], math.Float64bits(imag(v)))
	}
}

// decodeZGrid fills dst from raw, which must hold exactly len(dst) cells.
func decodeZGrid(raw []byte, engine endian.EndianEngine, dst []complex128) {
	for i := range dst {
		off := i * zCellSize
		re := math.Float64frombits(engine.Uint64(raw[off:]))
		im := math.Float64frombits(engine.Uint64(raw[off+8:]))
		dst[i] = complex(re, im)
	}
}
