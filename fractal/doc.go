// Package fractal is the reference escape-time engine for hybrid sequences.
//
// Each step applies either the Mandelbrot map z² + C or the Burning-ship map
// (|Re z| + i|Im z|)² + C, selected by the bits of a Sequence. The age of a
// pixel is the number of steps until |z|² ≥ 4, or NeverEscaped.
package fractal
