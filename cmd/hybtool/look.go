package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/hybractal/archive"
	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/metadata"
)

type lookTask struct {
	blocks    bool
	sequence  bool
	size      bool
	window    bool
	centerHex bool
	maxit     bool
	precision bool
	digest    bool
	diag      bool
	all       bool

	ageCompressed   string
	ageDecompressed string
	zCompressed     string
	zDecompressed   string
}

func runLook(_ context.Context, e *env, args []string) error {
	var t lookTask

	fs, logLevel := newFlagSet(e, "look")
	fs.BoolVar(&t.blocks, "blocks", false, "print the block table")
	fs.BoolVar(&t.sequence, "sequence", false, "print the iteration sequence")
	fs.BoolVar(&t.size, "size", false, "print the grid size")
	fs.BoolVar(&t.window, "window", false, "print the window")
	fs.BoolVar(&t.centerHex, "center-hex", false, "print the center hex")
	fs.BoolVar(&t.maxit, "maxit", false, "print the iteration cap")
	fs.BoolVar(&t.precision, "precision", false, "print the float precision")
	fs.BoolVar(&t.digest, "digest", false, "print the content fingerprint")
	fs.BoolVar(&t.diag, "diag", false, "print the canonical metadata record in CBOR diagnostic notation")
	fs.BoolVarP(&t.all, "all", "a", false, "print everything except maxit and diag")
	fs.StringVar(&t.ageCompressed, "extract-age-compressed", "", "write the stored age block to `file`")
	fs.StringVar(&t.ageDecompressed, "extract-age-decompressed", "", "write the raw little-endian age grid to `file`")
	fs.StringVar(&t.zCompressed, "extract-z-compressed", "", "write the stored z block to `file`")
	fs.StringVar(&t.zDecompressed, "extract-z-decompressed", "", "write the raw little-endian z grid to `file`")
	if err := parseFlags(e, fs, logLevel, args); err != nil {
		return helpOK(err)
	}
	if fs.NArg() != 1 {
		return errors.New("look: expected exactly one archive")
	}
	path := fs.Arg(0)

	a, err := archive.Load(path, archive.WithBlockTable(), archive.WithRetainCompressed(), archive.WithLogger(e.logger))
	if err != nil {
		return fmt.Errorf("failed to load %q: %w", path, err)
	}

	if err := t.print(e.stdout, a); err != nil {
		return err
	}

	return t.extract(a)
}

func (t lookTask) print(w io.Writer, a *archive.Archive) error {
	meta := a.Metadata()

	if t.blocks || t.all {
		fmt.Fprintf(w, "Data blocks:\n")
		for i, b := range a.BlockTable() {
			fmt.Fprintf(w, "    Block %d: tag = %d (%s), compression = %s, raw = %d, stored = %d, offset = %d\n",
				i, int64(b.Tag), b.Tag, b.Compression, b.RawSize, b.StoredSize, b.Offset)
		}
		fmt.Fprintf(w, "Generation: header = %s, metadata = %s\n\n", a.HeaderGeneration(), meta.Generation)
	}

	if t.sequence || t.all {
		seq := meta.Sequence()
		fmt.Fprintf(w, "Sequence: sequence = %q, length = %d\n\n", seq.String(), seq.Length)
	}

	if t.size || t.all {
		fmt.Fprintf(w, "Size: rows = %d, cols = %d, pixel num = %d\n\n", meta.Rows, meta.Cols, meta.Cells())
	}

	if t.window || t.all {
		base := meta.Window().Base()
		re, im := base.DisplayedCenter()
		fmt.Fprintf(w, "Window: center = %g%+gi, x_span = %g, y_span = %g\n\n", re, im, base.XSpan(), base.YSpan())
	}

	if t.centerHex || t.all {
		hex := meta.CenterHex()
		fmt.Fprintf(w, "Center hex: %s,\n length = %d\n\n", hex, len(hex))
	}

	if t.maxit {
		fmt.Fprintf(w, "Maxit : %d\n\n", meta.MaxIterations)
	}

	if t.precision || t.all {
		fmt.Fprintf(w, "Floating point precision : %d\n\n", uint8(meta.Precision()))
	}

	if t.digest || t.all {
		fp, err := a.Fingerprint()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Digest: %s\n\n", fp)
	}

	if t.diag {
		if err := printDiagnostic(w, meta); err != nil {
			return err
		}
	}

	return nil
}

func printDiagnostic(w io.Writer, meta *metadata.Metadata) error {
	rec, err := meta.CanonicalRecord()
	if err != nil {
		return err
	}

	diag, err := metadata.Diagnose(rec)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Metadata record: %s\n\n", diag)

	return nil
}

func (t lookTask) extract(a *archive.Archive) error {
	if t.ageCompressed != "" {
		stored, ok := a.CompressedBlock(format.TagAgeGrid)
		if !ok {
			return fmt.Errorf("%w: %s", errs.ErrBlockMissing, format.TagAgeGrid)
		}
		if err := writeExtract(t.ageCompressed, stored); err != nil {
			return err
		}
	}

	if t.ageDecompressed != "" {
		raw, err := a.RawGrid(format.TagAgeGrid)
		if err != nil {
			return err
		}
		if err := writeExtract(t.ageDecompressed, raw); err != nil {
			return err
		}
	}

	if t.zCompressed != "" {
		stored, ok := a.CompressedBlock(format.TagZGrid)
		if !ok {
			return fmt.Errorf("trying to extract the stored z block, but the archive has none: %w", errs.ErrBlockMissing)
		}
		if err := writeExtract(t.zCompressed, stored); err != nil {
			return err
		}
	}

	if t.zDecompressed != "" {
		if !a.HaveZ() {
			return fmt.Errorf("trying to extract the z grid, but the archive has none: %w", errs.ErrBlockMissing)
		}
		raw, err := a.RawGrid(format.TagZGrid)
		if err != nil {
			return err
		}
		if err := writeExtract(t.zDecompressed, raw); err != nil {
			return err
		}
	}

	return nil
}

func writeExtract(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint: gosec
		return fmt.Errorf("failed to export %s: %w: %w", path, errs.ErrIO, err)
	}

	return nil
}
