package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arloliu/hybractal/archive"
	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/fractal"
	"github.com/arloliu/hybractal/section"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCompute_Flags(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.hybf")

	_, _, err := runCmd(t, "compute", "-r", "8", "-c", "12", "--maxit", "64",
		"--center=-0.75,0.1", "--mat-z", "-j", "2", "-o", out)
	require.NoError(t, err)

	a, err := archive.Load(out, archive.WithBlockTable())
	require.NoError(t, err)
	require.Equal(t, 8, a.Rows())
	require.Equal(t, 12, a.Cols())
	require.True(t, a.HaveZ())
	require.Equal(t, format.Gen1, a.HeaderGeneration())

	meta := a.Metadata()
	require.Equal(t, uint16(64), meta.MaxIterations)
	require.Equal(t, fractal.DefaultSequence, meta.Sequence())
	require.Equal(t, format.PrecisionDouble, meta.Precision())
	require.Equal(t, doubleCenterHex, meta.CenterHex())

	// x span derived from the aspect ratio
	base := meta.Window().Base()
	require.InDelta(t, 3.0, base.XSpan(), 0)
	require.InDelta(t, 2.0, base.YSpan(), 0)

	age, ok := section.FindBlock(a.BlockTable(), format.TagAgeGrid)
	require.True(t, ok)
	require.Equal(t, format.CompressionLZ4, age.Compression)
}

func TestCompute_CenterHexAtOtherPrecision(t *testing.T) {
	out := filepath.Join(t.TempDir(), "quad.hybf")

	_, _, err := runCmd(t, "compute", "-r", "4", "-c", "4", "--maxit", "16",
		"--center-hex", "0x"+doubleCenterHex, "-p", "4", "--x-span", "0.5", "--y-span", "0.5", "-o", out)
	require.NoError(t, err)

	a, err := archive.Load(out)
	require.NoError(t, err)
	require.Equal(t, format.PrecisionQuad, a.Metadata().Precision())

	re, im := a.Metadata().Window().Base().DisplayedCenter()
	require.InDelta(t, -0.75, re, 0)
	require.InDelta(t, 0.1, im, 0)
}

func TestCompute_DefaultCenter(t *testing.T) {
	out := filepath.Join(t.TempDir(), "origin.hybf")

	_, _, err := runCmd(t, "compute", "-r", "2", "-c", "2", "--maxit", "8", "-p", "1", "-o", out)
	require.NoError(t, err)

	a, err := archive.Load(out)
	require.NoError(t, err)
	require.Equal(t, "0000000000000000", a.Metadata().CenterHex())
	require.False(t, a.HaveZ())
}

func TestCompute_TaskFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "task.hybf")
	task := filepath.Join(dir, "task.yaml")
	require.NoError(t, os.WriteFile(task, []byte(`
rows: 4
cols: 6
maxit: 32
center_hex: "`+singleCenterHex+`"
precision: 1
compression: zstd
output: `+out+`
`), 0o600))

	// flags on the command line win over the file
	_, _, err := runCmd(t, "compute", "--config", task, "--rows", "5")
	require.NoError(t, err)

	a, err := archive.Load(out, archive.WithBlockTable())
	require.NoError(t, err)
	require.Equal(t, 5, a.Rows())
	require.Equal(t, 6, a.Cols())
	require.Equal(t, uint16(32), a.Metadata().MaxIterations)
	require.Equal(t, singleCenterHex, a.Metadata().CenterHex())

	age, ok := section.FindBlock(a.BlockTable(), format.TagAgeGrid)
	require.True(t, ok)
	require.Equal(t, format.CompressionZstd, age.Compression)
}

func TestCompute_PrintTask(t *testing.T) {
	dir := t.TempDir()
	task := filepath.Join(dir, "task.yaml")
	require.NoError(t, os.WriteFile(task, []byte("rows: 10\ncols: 20\ncenter: \"-0.5,0\"\n"), 0o600))

	stdout, _, err := runCmd(t, "compute", "--config", task, "--maxit", "77", "--center-hex", doubleCenterHex, "--print-task")
	require.NoError(t, err)

	var got computeTask
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	require.Equal(t, 10, got.Rows)
	require.Equal(t, 20, got.Cols)
	require.Equal(t, 77, got.MaxIterations)
	require.Equal(t, doubleCenterHex, got.CenterHex)
	require.Empty(t, got.Center)
	require.Equal(t, "lz4", got.Compression)

	_, err = os.Stat(filepath.Join(dir, "out.hybf"))
	require.True(t, os.IsNotExist(err))
}

func TestCompute_TaskFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := runCmd(t, "compute", "--config", filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, errs.ErrIO)

	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("rows: 4\ncolz: 4\n"), 0o600))
	_, _, err = runCmd(t, "compute", "--config", typo)
	require.ErrorContains(t, err, "colz")
}

func TestCompute_Errors(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x.hybf")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing size", []string{}, "rows and cols"},
		{"maxit zero", []string{"-r", "2", "-c", "2", "--maxit", "0"}, "maxit"},
		{"maxit sentinel", []string{"-r", "2", "-c", "2", "--maxit", "65535"}, "maxit"},
		{"precision", []string{"-r", "2", "-c", "2", "-p", "3"}, "precision"},
		{"y span", []string{"-r", "2", "-c", "2", "--y-span", "0"}, "y-span"},
		{"center format", []string{"-r", "2", "-c", "2", "--center", "1"}, "re,im"},
		{"center value", []string{"-r", "2", "-c", "2", "--center", "a,b"}, "real part"},
		{"both centers", []string{"-r", "2", "-c", "2", "--center", "0,0", "--center-hex", doubleCenterHex}, "mutually exclusive"},
		{"compression", []string{"-r", "2", "-c", "2", "--compression", "brotli"}, "compression"},
		{"sequence", []string{"-r", "2", "-c", "2", "--sequence", "12"}, "sequence"},
		{"extra args", []string{"-r", "2", "-c", "2", "stray"}, "unexpected arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"compute", "-o", out}, tt.args...)
			_, _, err := runCmd(t, args...)
			require.ErrorContains(t, err, tt.want)
		})
	}

	_, err := os.Stat(out)
	require.True(t, os.IsNotExist(err))
}
