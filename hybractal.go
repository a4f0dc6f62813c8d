// Package hybractal computes hybrid escape-time fractals at 32, 64, 128 or
// 256-bit precision and stores them in versioned .hybf archives.
//
// A hybrid fractal alternates between the Mandelbrot rule and the Burning
// Ship rule according to a fixed bit sequence. Each archive holds the escape
// age of every pixel, optionally the last iterate z, and the parameters that
// produced them, so that any archive can be reopened and recomputed at the
// same precision.
//
// # Basic Usage
//
// Computing and saving a frame:
//
//	w := window.FromDoubles(-0.75, 0.1, 0, 1.2, format.PrecisionQuad)
//	a, err := hybractal.Compute(ctx, fractal.DefaultSequence, 1080, 1920, 2048, w,
//		hybractal.WithZGrid())
//	if err != nil {
//		return err
//	}
//	err = a.Save("frame.hybf", archive.WithCompression(format.CompressionZstd))
//
// Reading it back:
//
//	a, err := hybractal.Open("frame.hybf")
//	if err != nil {
//		return err
//	}
//	fmt.Println(a.Metadata().CenterHex(), a.AgeGrid()[0])
//
// # Package Structure
//
// This package wraps the most common flows. The building blocks live in
// their own packages:
//
//   - floatcodec: scalars at each precision and their byte encoding
//   - window: precision-tagged windows and center hex strings
//   - fractal: iteration sequences and the reference compute engine
//   - metadata: archive records of both on-disk generations
//   - archive: the .hybf container
package hybractal

import (
	"context"
	"fmt"

	"github.com/arloliu/hybractal/archive"
	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/fractal"
	"github.com/arloliu/hybractal/internal/options"
	"github.com/arloliu/hybractal/metadata"
	"github.com/arloliu/hybractal/window"
)

type computeConfig struct {
	threads int
	withZ   bool
}

// ComputeOption configures Compute.
type ComputeOption = options.Option[*computeConfig]

// WithThreads bounds the number of rows computed at once. Zero or less uses
// all CPUs.
func WithThreads(n int) ComputeOption {
	return options.NoError(func(c *computeConfig) {
		c.threads = n
	})
}

// WithZGrid also stores the last iterate of every pixel.
func WithZGrid() ComputeOption {
	return options.NoError(func(c *computeConfig) {
		c.withZ = true
	})
}

// Compute renders a rows×cols grid over w and returns it as an in-memory
// archive. A non-positive x span of w is derived from its y span and the
// grid aspect ratio.
//
// Parameters:
//   - ctx: cancels the computation between rows
//   - seq: iteration sequence
//   - rows, cols: grid size
//   - maxit: iteration cap, at most metadata.MaxIterations
//   - w: window; its precision selects the arithmetic
//
// Returns:
//   - *archive.Archive: the computed archive, not yet saved
//   - error: validation errors from metadata or the engine, or ctx.Err()
func Compute(ctx context.Context, seq fractal.Sequence, rows, cols int, maxit uint16, w window.Variant, opts ...ComputeOption) (*archive.Archive, error) {
	cfg := &computeConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if w.IsZero() {
		return nil, fmt.Errorf("%w: empty window", errs.ErrPrecisionUnknown)
	}
	w = w.Clone()
	base := w.Base()
	base.SetXSpan(window.ResolveXSpan(base.XSpan(), base.YSpan(), rows, cols))

	a, err := archive.New(metadata.New(seq, rows, cols, maxit, w), cfg.withZ)
	if err != nil {
		return nil, err
	}

	engine := fractal.NewEngine(seq)
	engine.Threads = cfg.threads
	if err := engine.Compute(ctx, a.Metadata().Window().Base(), rows, cols, maxit, a.AgeGrid(), a.ZGrid()); err != nil {
		return nil, err
	}

	return a, nil
}

// Open loads the archive at path.
func Open(path string, opts ...archive.LoadOption) (*archive.Archive, error) {
	return archive.Load(path, opts...)
}
