package fractal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"runtime"

	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/floatcodec"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/window"
	"golang.org/x/sync/errgroup"
)

const (
	// NeverEscaped is the age of a point that stays bounded for maxit steps.
	NeverEscaped uint16 = math.MaxUint16
	// MaxIterations is the largest usable iteration cap; NeverEscaped is reserved.
	MaxIterations = math.MaxUint16 - 1
)

var errNaNCenter = errors.New("fractal: window center is NaN")

// Engine computes escape-time age grids for a hybrid sequence.
//
// The complex plane sample of pixel (r, c) is
//
//	re = center.re - xSpan + c*2*xSpan/cols
//	im = center.im + ySpan - r*2*ySpan/rows
//
// so row 0 is the top edge. Rows are computed in parallel.
type Engine struct {
	Sequence Sequence
	// Threads bounds the number of rows computed at once; <= 0 means GOMAXPROCS.
	Threads int
}

// NewEngine returns an engine for seq using all available CPUs.
func NewEngine(seq Sequence) *Engine {
	return &Engine{Sequence: seq}
}

// Compute fills age (and z, if non-nil) for a rows×cols grid over base.
//
// Arithmetic runs at the precision of the window: float32, float64, or
// math/big with 113 and 237 significant bits. z receives the last iterate
// whose squared norm stayed below 4, rounded to complex128.
func (e *Engine) Compute(ctx context.Context, base window.Base, rows, cols int, maxit uint16, age []uint16, z []complex128) error {
	if base == nil {
		return errors.New("fractal: nil window")
	}
	if err := e.Sequence.Validate(); err != nil {
		return err
	}
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %dx%d", errs.ErrInvalidDimensions, rows, cols)
	}
	if maxit > MaxIterations {
		return fmt.Errorf("%w: %d exceeds %d", errs.ErrInvalidMaxIterations, maxit, MaxIterations)
	}
	if len(age) != rows*cols {
		return fmt.Errorf("%w: age grid has %d cells, want %d", errs.ErrSizeMismatch, len(age), rows*cols)
	}
	if z != nil && len(z) != rows*cols {
		return fmt.Errorf("%w: z grid has %d cells, want %d", errs.ErrSizeMismatch, len(z), rows*cols)
	}

	g := newGrid(base, rows, cols)
	out := output{age: age, z: z}

	var row func(r int)
	switch w := base.(type) {
	case *window.Window[floatcodec.Single]:
		row = nativeRow(float32(w.Re), float32(w.Im), g, e.Sequence, int(maxit), out)
	case *window.Window[floatcodec.Double]:
		row = nativeRow(float64(w.Re), float64(w.Im), g, e.Sequence, int(maxit), out)
	default:
		re, im := base.CenterScalars()
		cre, cim := re.BigFloat(), im.BigFloat()
		if cre == nil || cim == nil {
			return errNaNCenter
		}
		row = bigRow(base.Precision(), cre, cim, g, e.Sequence, int(maxit), out)
	}

	threads := e.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(threads)
	for r := range rows {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row(r)

			return nil
		})
	}

	return eg.Wait()
}

// grid maps pixel indices to offsets from the window center.
type grid struct {
	rows, cols int
	xSpan      float64
	ySpan      float64
}

func newGrid(base window.Base, rows, cols int) grid {
	return grid{
		rows:  rows,
		cols:  cols,
		xSpan: window.ResolveXSpan(base.XSpan(), base.YSpan(), rows, cols),
		ySpan: base.YSpan(),
	}
}

func (g grid) offRe(c int) float64 {
	return -g.xSpan + float64(c)*2*g.xSpan/float64(g.cols)
}

func (g grid) offIm(r int) float64 {
	return g.ySpan - float64(r)*2*g.ySpan/float64(g.rows)
}

type output struct {
	age []uint16
	z   []complex128
}

func (o output) set(idx int, age uint16, z complex128) {
	o.age[idx] = age
	if o.z != nil {
		o.z[idx] = z
	}
}

func nativeRow[N float32 | float64](cre, cim N, g grid, seq Sequence, maxit int, out output) func(int) {
	return func(r int) {
		im := cim + N(g.offIm(r))
		for c := 0; c < g.cols; c++ {
			re := cre + N(g.offRe(c))
			age, z := iterateNative(seq, re, im, maxit)
			out.set(r*g.cols+c, age, z)
		}
	}
}

func iterateNative[N float32 | float64](seq Sequence, cre, cim N, maxit int) (uint16, complex128) {
	var zr, zi N
	for k := 0; k < maxit; k++ {
		ar, ai := zr, zi
		if !seq.IsMandelbrot(k) {
			ar, ai = absN(ar), absN(ai)
		}
		nr := ar*ar - ai*ai + cre
		ni := 2*ar*ai + cim
		if nr*nr+ni*ni >= 4 {
			return uint16(k + 1), complex(float64(zr), float64(zi))
		}
		zr, zi = nr, ni
	}

	return NeverEscaped, complex(float64(zr), float64(zi))
}

func absN[N float32 | float64](v N) N {
	if v < 0 {
		return -v
	}

	return v
}

func bigRow(p format.Precision, cre, cim *big.Float, g grid, seq Sequence, maxit int, out output) func(int) {
	prec := uint(p.MantissaBits() + 1)

	return func(r int) {
		it := newBigIterator(prec)
		im := new(big.Float).SetPrec(prec).SetFloat64(g.offIm(r))
		im.Add(im, cim)
		re := new(big.Float).SetPrec(prec)
		for c := 0; c < g.cols; c++ {
			re.SetFloat64(g.offRe(c))
			re.Add(re, cre)
			age, z := it.run(seq, re, im, maxit)
			out.set(r*g.cols+c, age, z)
		}
	}
}

// bigIterator holds the scratch values of one software-precision iteration.
type bigIterator struct {
	zr, zi *big.Float // last iterate with norm below 4
	ar, ai *big.Float // operands of the current step
	nr, ni *big.Float
	t, n2  *big.Float
	four   *big.Float
}

func newBigIterator(prec uint) *bigIterator {
	f := func() *big.Float { return new(big.Float).SetPrec(prec) }

	return &bigIterator{
		zr: f(), zi: f(),
		ar: f(), ai: f(),
		nr: f(), ni: f(),
		t: f(), n2: f(),
		four: f().SetInt64(4),
	}
}

func (b *bigIterator) run(seq Sequence, cre, cim *big.Float, maxit int) (uint16, complex128) {
	b.zr.SetInt64(0)
	b.zi.SetInt64(0)
	for k := 0; k < maxit; k++ {
		if seq.IsMandelbrot(k) {
			b.ar.Set(b.zr)
			b.ai.Set(b.zi)
		} else {
			b.ar.Abs(b.zr)
			b.ai.Abs(b.zi)
		}
		// nr = ar² - ai² + cre, ni = 2·ar·ai + cim
		b.nr.Mul(b.ar, b.ar)
		b.t.Mul(b.ai, b.ai)
		b.nr.Sub(b.nr, b.t)
		b.nr.Add(b.nr, cre)
		b.ni.Mul(b.ar, b.ai)
		b.ni.SetMantExp(b.ni, 1)
		b.ni.Add(b.ni, cim)

		b.t.Mul(b.nr, b.nr)
		b.n2.Mul(b.ni, b.ni)
		b.n2.Add(b.n2, b.t)
		if b.n2.Cmp(b.four) >= 0 {
			return uint16(k + 1), b.last()
		}
		b.zr, b.nr = b.nr, b.zr
		b.zi, b.ni = b.ni, b.zi
	}

	return NeverEscaped, b.last()
}

func (b *bigIterator) last() complex128 {
	re, _ := b.zr.Float64()
	im, _ := b.zi.Float64()

	return complex(re, im)
}
