// Package floatcodec encodes, decodes and converts floating-point values at the four
// supported precisions.
//
// # Precisions
//
//	tag  bytes  mantissa  exponent  bias
//	P1   4      23        8         127
//	P2   8      52        11        1023
//	P4   16     112       15        16383
//	P8   32     236       19        262143
//
// P1 and P2 are the native float32 and float64. P4 and P8 have no hardware
// counterpart; Quad and Octuple hold them as bit patterns and implement the few
// arithmetic operations the toolchain needs in software, rounding every result
// back onto the format grid.
//
// # Layout
//
// Every value is encoded as precision×4 bytes: [sign:1][exponent:E][mantissa:M]
// from the most significant bit, exponent biased, mantissa without the implicit
// leading bit (subnormal when the exponent field is zero). The whole pattern is
// serialized as one integer in the codec's byte order, so the encoding does not
// depend on the host's native float layout.
//
// # Basic Usage
//
//	codec := floatcodec.DefaultCodec()
//	q := floatcodec.FromFloat64[floatcodec.Quad](0.5)
//	buf := codec.Append(nil, q)           // 16 bytes
//	v, err := codec.Decode(buf, format.PrecisionQuad)
//
// NaN and Inf are encoded with an all-ones exponent. They never cause a panic,
// but only P1 and P2 preserve NaN payloads.
package floatcodec
