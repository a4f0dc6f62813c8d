// Package archive reads and writes hybractal archive files: a computed age
// grid, an optional z grid and the metadata describing how they were produced.
//
// # Writing
//
//	meta := metadata.New(fractal.DefaultSequence, 1080, 1920, 1024, w)
//	a, err := archive.New(meta, false)
//	if err != nil {
//		return err
//	}
//	if err := engine.Compute(ctx, w.Base(), a.Rows(), a.Cols(), 1024, a.AgeGrid(), nil); err != nil {
//		return err
//	}
//	err = a.Save("out.hybf", archive.WithCompression(format.CompressionZstd))
//
// Save always writes the current metadata generation and replaces the file
// atomically. Grid blocks default to LZ4.
//
// # Reading
//
//	a, err := archive.Load("out.hybf",
//		archive.WithExpectedSequence(fractal.DefaultSequence),
//		archive.WithLogger(logger),
//	)
//
// Legacy archives load transparently; their metadata reports format.Gen0
// until they are saved again.
//
// See package section for the byte layout.
package archive
