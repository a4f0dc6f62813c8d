// Package window represents the sampled region of the complex plane at one
// of the four supported precisions.
//
// A Window[T] holds the center coordinate at precision T and the half-extents
// as float64. Variant is the closed sum over the four window kinds; code that
// needs the concrete precision uses As or a type switch on Variant.Base(),
// everything else works against the Base interface.
//
//	v, err := window.FromHex("0x000000000000e03f000000000000d0bf", 0, 2, format.PrecisionDouble)
//	if err != nil {
//		return err
//	}
//	re, im := v.Base().DisplayedCenter() // 0.5, -0.25
package window
