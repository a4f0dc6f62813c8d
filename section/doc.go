// Package section defines the on-disk framing of hybractal archive files: the
// fixed 16-byte header and the block table that follows it.
//
// # Layout
//
//	+-----------------------------+ 0
//	| Header (16 bytes)           |
//	+-----------------------------+ 16
//	| Block table (N x 40 bytes)  |
//	+-----------------------------+ 16 + 40N
//	| Payload of block 0          |
//	| Payload of block 1          |
//	| ...                         |
//	+-----------------------------+
//
// Header:
//
//	0-3   "HYBF"
//	4-5   options, always little-endian: bit 1 big-endian, bits 4-15 = 0xC410
//	6     metadata generation (0, 1, 0xFF = detect)
//	7     reserved
//	8-11  block count
//	12-15 reserved
//
// Everything after the options field, including the block table, uses the
// byte order selected by bit 1. Payloads follow the table back to back in
// table order; there are no explicit offsets, each one is the sum of the
// stored sizes before it.
//
// Block tags are stable: metadata = 0, age grid = 114514, z grid = 1919810.
// Readers skip tags they do not know.
package section
