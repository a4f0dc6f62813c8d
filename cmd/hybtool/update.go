package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/hybractal/archive"
	"github.com/arloliu/hybractal/format"
	"github.com/go-kit/log/level"
)

func runUpdate(ctx context.Context, e *env, args []string) error {
	fs, logLevel := newFlagSet(e, "update")
	keep := fs.BoolP("keep", "k", false, "keep the original and write <name>_new.hybf next to it")
	if err := parseFlags(e, fs, logLevel, args); err != nil {
		return helpOK(err)
	}
	if fs.NArg() == 0 {
		return errors.New("update: no archives given")
	}

	failed := 0
	for _, src := range fs.Args() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updated, err := updateArchive(e, src, *keep)
		if err != nil {
			failed++
			fmt.Fprintf(e.stderr, "%s can not be updated: %v\n", src, err)

			continue
		}
		if !updated {
			level.Info(e.logger).Log("msg", "already current", "file", src)
		}
	}

	if failed > 0 {
		return fmt.Errorf("update: %d of %d archives failed", failed, fs.NArg())
	}

	return nil
}

// updateArchive rewrites src in the current generation. It reports false
// when src already is current and nothing was written.
func updateArchive(e *env, src string, keep bool) (bool, error) {
	dst := src
	if keep {
		dst = keptName(src)
		if _, err := os.Stat(dst); err == nil {
			return false, fmt.Errorf("%s already exists", dst)
		}
	}

	a, err := archive.Load(src, archive.WithLogger(e.logger))
	if err != nil {
		return false, err
	}

	if a.Metadata().Generation == format.Gen1 && a.HeaderGeneration() == format.Gen1 {
		return false, nil
	}

	if err := a.Save(dst, archive.WithSaveLogger(e.logger)); err != nil {
		return false, err
	}
	level.Info(e.logger).Log("msg", "updated", "file", src, "output", dst)

	return true, nil
}

// keptName maps "dir/frame.hybf" to "dir/frame_new.hybf".
func keptName(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + "_new.hybf"
}
