// Package endian provides byte order utilities for binary encoding and decoding.
//
// This package extends Go's standard encoding/binary package by combining
// ByteOrder and AppendByteOrder interfaces into a unified EndianEngine interface,
// and adds multi-word helpers for integers wider than 64 bits, which back the
// 128-bit and 256-bit float layouts.
//
// # Basic Usage
//
// Most users should use GetLittleEndianEngine() as it's the default for hybractal
// archives:
//
//	engine := endian.GetLittleEndianEngine()
//	codec := floatcodec.NewCodec(floatcodec.WithByteOrder(engine))
//
// # Wide integers
//
// A 128-bit or 256-bit pattern is held as a slice of uint64 words, most significant
// word first. PutWords and Words serialize such a pattern as one integer, so the
// little-endian form is the byte-reverse of the big-endian form:
//
//	words := []uint64{hi, lo}
//	endian.PutWords(engine, dst[:16], words)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// IsLittleEndian reports whether engine writes the least significant byte first.
func IsLittleEndian(engine EndianEngine) bool {
	var b [2]byte
	engine.PutUint16(b[:], 0x0100)

	return b[0] == 0x00
}

// PutWords serializes words (most significant first) as a single integer of
// len(words)*8 bytes into dst using the byte order of engine.
//
// Panics if dst is shorter than len(words)*8.
func PutWords(engine EndianEngine, dst []byte, words []uint64) {
	n := len(words)
	_ = dst[n*8-1] // bounds check hint

	if IsLittleEndian(engine) {
		// least significant word goes first
		for i := range n {
			engine.PutUint64(dst[i*8:], words[n-1-i])
		}

		return
	}

	for i := range n {
		engine.PutUint64(dst[i*8:], words[i])
	}
}

// AppendWords appends the serialized form of words to dst.
func AppendWords(engine EndianEngine, dst []byte, words []uint64) []byte {
	start := len(dst)
	dst = append(dst, make([]byte, len(words)*8)...)
	PutWords(engine, dst[start:], words)

	return dst
}

// Words deserializes len(words)*8 bytes of src into words (most significant first).
//
// Panics if src is shorter than len(words)*8.
func Words(engine EndianEngine, src []byte, words []uint64) {
	n := len(words)
	_ = src[n*8-1] // bounds check hint

	if IsLittleEndian(engine) {
		for i := range n {
			words[n-1-i] = engine.Uint64(src[i*8:])
		}

		return
	}

	for i := range n {
		words[i] = engine.Uint64(src[i*8:])
	}
}
