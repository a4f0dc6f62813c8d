package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/hybractal"
	"github.com/arloliu/hybractal/archive"
	"github.com/arloliu/hybractal/floatcodec"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/fractal"
	"github.com/arloliu/hybractal/internal/hexutil"
	"github.com/arloliu/hybractal/metadata"
	"github.com/arloliu/hybractal/window"
	"github.com/go-kit/log/level"
)

func runCompute(ctx context.Context, e *env, args []string) error {
	fs, logLevel := newFlagSet(e, "compute")
	flagged := defaultComputeTask()
	flagged.addFlags(fs)
	config := fs.String("config", "", "YAML task file; flags given on the command line override it")
	printTask := fs.Bool("print-task", false, "print the resolved task as YAML and exit")
	if err := parseFlags(e, fs, logLevel, args); err != nil {
		return helpOK(err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("compute: unexpected arguments %v", fs.Args())
	}

	task := flagged
	if *config != "" {
		loaded, err := loadComputeTask(*config)
		if err != nil {
			return err
		}
		task = loaded
		task.overrideFromFlags(fs, flagged)
	}

	if *printTask {
		out, err := task.marshal()
		if err != nil {
			return err
		}
		_, err = e.stdout.Write(out)

		return err
	}

	return task.run(ctx, e)
}

func (t computeTask) run(ctx context.Context, e *env) error {
	if t.Rows <= 0 || t.Cols <= 0 {
		return fmt.Errorf("compute: rows and cols must be positive, got %dx%d", t.Rows, t.Cols)
	}
	if t.MaxIterations < 1 || t.MaxIterations > metadata.MaxIterations {
		return fmt.Errorf("compute: maxit must be in [1, %d], got %d", metadata.MaxIterations, t.MaxIterations)
	}
	if t.YSpan <= 0 {
		return fmt.Errorf("compute: y-span must be positive, got %g", t.YSpan)
	}

	p := format.Precision(t.Precision)
	if !p.IsValid() {
		return fmt.Errorf("compute: precision must be 1, 2, 4 or 8, got %d", t.Precision)
	}

	seq, err := fractal.ParseSequence(t.Sequence)
	if err != nil {
		return err
	}

	comp, err := format.ParseCompressionType(t.Compression)
	if err != nil {
		return err
	}

	xSpan := window.ResolveXSpan(t.XSpan, t.YSpan, t.Rows, t.Cols)
	w, err := t.window(p, xSpan)
	if err != nil {
		return err
	}

	level.Info(e.logger).Log("msg", "computing", "rows", t.Rows, "cols", t.Cols, "maxit", t.MaxIterations,
		"precision", p, "sequence", seq, "window", w)

	opts := []hybractal.ComputeOption{hybractal.WithThreads(t.Threads)}
	if t.MatZ {
		opts = append(opts, hybractal.WithZGrid())
	}

	start := time.Now()
	a, err := hybractal.Compute(ctx, seq, t.Rows, t.Cols, uint16(t.MaxIterations), w, opts...)
	if err != nil {
		return err
	}
	level.Info(e.logger).Log("msg", "computed", "elapsed", time.Since(start))

	return a.Save(t.Output, archive.WithCompression(comp), archive.WithSaveLogger(e.logger))
}

// window builds the window from --center-hex or --center. Without either the
// window is centered at the origin.
func (t computeTask) window(p format.Precision, xSpan float64) (window.Variant, error) {
	if t.CenterHex != "" && t.Center != "" {
		return window.Variant{}, errors.New("compute: --center and --center-hex are mutually exclusive")
	}

	if t.CenterHex != "" {
		// a hex at another precision is converted
		if len(hexutil.Strip(t.CenterHex)) == p.CenterHexLen() {
			return window.FromHex(t.CenterHex, xSpan, t.YSpan, p)
		}

		re, im, err := window.HexToScalars(t.CenterHex)
		if err != nil {
			return window.Variant{}, err
		}

		return window.FromScalars(re, im, xSpan, t.YSpan, p), nil
	}

	if t.Center == "" {
		return window.Empty(p, xSpan, t.YSpan)
	}

	reText, imText, ok := strings.Cut(t.Center, ",")
	if !ok {
		return window.Variant{}, fmt.Errorf("compute: center %q is not \"re,im\"", t.Center)
	}

	re, err := floatcodec.Parse(reText, p)
	if err != nil {
		return window.Variant{}, fmt.Errorf("compute: center real part: %w", err)
	}
	im, err := floatcodec.Parse(imText, p)
	if err != nil {
		return window.Variant{}, fmt.Errorf("compute: center imaginary part: %w", err)
	}

	return window.FromScalars(re, im, xSpan, t.YSpan, p), nil
}
