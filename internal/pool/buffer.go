// Package pool recycles the byte buffers used to serialize archives.
//
// Two classes are kept: table buffers hold a header and block table, grid
// buffers hold one serialized grid before it is compressed. Each class has
// its own starting capacity and a retention limit above which a returned
// buffer is left to the garbage collector.
package pool

import "sync"

const (
	tableCapacity = 1 << 10   // header plus a typical block table
	tableRetain   = 64 << 10  // block tables are never this large in practice
	gridCapacity  = 128 << 10 // a 256x256 age grid
	gridRetain    = 32 << 20  // a 2048x2048 z grid
)

// ByteBuffer is a growable byte slice filled front to back.
type ByteBuffer struct {
	// B holds the bytes written so far.
	B []byte
}

// NewByteBuffer returns an empty buffer with the given capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

// Bytes returns the bytes written so far. The slice aliases the buffer.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the number of bytes written.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Reset empties the buffer and keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Reserve appends n bytes and returns them for the caller to fill. The bytes
// are not zeroed.
func (bb *ByteBuffer) Reserve(n int) []byte {
	start := len(bb.B)
	if need := start + n; need > cap(bb.B) {
		grown := make([]byte, start, growCapacity(cap(bb.B), need))
		copy(grown, bb.B)
		bb.B = grown
	}
	bb.B = bb.B[:start+n]

	return bb.B[start:]
}

// Write appends p. It never fails.
func (bb *ByteBuffer) Write(p []byte) (int, error) {
	bb.B = append(bb.B, p...)
	return len(p), nil
}

// growCapacity doubles buffers up to a grid's starting size and grows larger
// ones by a quarter, never returning less than need.
func growCapacity(old, need int) int {
	next := 2 * old
	if old >= gridCapacity {
		next = old + old/4
	}

	return max(next, need)
}

// class is a pool of buffers of one kind.
type class struct {
	buffers sync.Pool
	retain  int
}

func newClass(capacity, retain int) *class {
	return &class{
		buffers: sync.Pool{New: func() any { return NewByteBuffer(capacity) }},
		retain:  retain,
	}
}

func (c *class) get() *ByteBuffer {
	bb, _ := c.buffers.Get().(*ByteBuffer)
	return bb
}

func (c *class) put(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > c.retain {
		return
	}
	bb.Reset()
	c.buffers.Put(bb)
}

var (
	tables = newClass(tableCapacity, tableRetain)
	grids  = newClass(gridCapacity, gridRetain)
)

// GetTableBuffer returns an empty buffer for a header and block table.
func GetTableBuffer() *ByteBuffer {
	return tables.get()
}

// PutTableBuffer recycles a buffer obtained from GetTableBuffer.
func PutTableBuffer(bb *ByteBuffer) {
	tables.put(bb)
}

// GetGridBuffer returns an empty buffer for one serialized grid.
func GetGridBuffer() *ByteBuffer {
	return grids.get()
}

// PutGridBuffer recycles a buffer obtained from GetGridBuffer.
func PutGridBuffer(bb *ByteBuffer) {
	grids.put(bb)
}
