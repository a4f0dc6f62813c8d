package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arloliu/hybractal/archive"
	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/fractal"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
)

func computeFixture(t *testing.T, withZ bool) string {
	t.Helper()

	out := filepath.Join(t.TempDir(), "look.hybf")
	args := []string{"compute", "-r", "8", "-c", "12", "--maxit", "64", "--center=-0.75,0.1", "-o", out}
	if withZ {
		args = append(args, "--mat-z")
	}
	_, _, err := runCmd(t, args...)
	require.NoError(t, err)

	return out
}

func TestLook_All(t *testing.T) {
	path := computeFixture(t, true)

	a, err := archive.Load(path)
	require.NoError(t, err)
	fp, err := a.Fingerprint()
	require.NoError(t, err)

	stdout, _, err := runCmd(t, "look", "--all", path)
	require.NoError(t, err)

	require.Contains(t, stdout, "Data blocks:\n")
	require.Contains(t, stdout, "Block 0: tag = 0 (metadata), compression = None")
	require.Contains(t, stdout, "Block 1: tag = 114514 (age)")
	require.Contains(t, stdout, "Block 2: tag = 1919810 (z)")
	require.Contains(t, stdout, "Generation: header = gen1, metadata = gen1")
	require.Contains(t, stdout, `Sequence: sequence = "10111011101", length = 11`)
	require.Contains(t, stdout, "Size: rows = 8, cols = 12, pixel num = 96")
	require.Contains(t, stdout, "Window: center = -0.75+0.1i, x_span = 3, y_span = 2")
	require.Contains(t, stdout, "Center hex: "+doubleCenterHex+",\n length = 32")
	require.Contains(t, stdout, "Floating point precision : 2")
	require.Contains(t, stdout, "Digest: "+fp.String())
	require.NotContains(t, stdout, "Maxit")
	require.NotContains(t, stdout, "Metadata record")
}

func TestLook_Selected(t *testing.T) {
	path := computeFixture(t, false)

	stdout, _, err := runCmd(t, "look", "--maxit", "--diag", path)
	require.NoError(t, err)
	require.Contains(t, stdout, "Maxit : 64")
	require.Contains(t, stdout, "Metadata record: {1: 1, ")
	require.NotContains(t, stdout, "Size:")

	stdout, _, err = runCmd(t, "look", path)
	require.NoError(t, err)
	require.Empty(t, stdout)
}

func TestLook_Extract(t *testing.T) {
	path := computeFixture(t, true)
	dir := t.TempDir()

	files := map[string]string{
		"age.lz4": filepath.Join(dir, "age.lz4"),
		"age.raw": filepath.Join(dir, "age.raw"),
		"z.lz4":   filepath.Join(dir, "z.lz4"),
		"z.raw":   filepath.Join(dir, "z.raw"),
	}

	_, _, err := runCmd(t, "look", path,
		"--extract-age-compressed", files["age.lz4"],
		"--extract-age-decompressed", files["age.raw"],
		"--extract-z-compressed", files["z.lz4"],
		"--extract-z-decompressed", files["z.raw"])
	require.NoError(t, err)

	a, err := archive.Load(path, archive.WithRetainCompressed())
	require.NoError(t, err)

	wantAge, err := a.RawGrid(format.TagAgeGrid)
	require.NoError(t, err)
	wantZ, err := a.RawGrid(format.TagZGrid)
	require.NoError(t, err)
	storedAge, ok := a.CompressedBlock(format.TagAgeGrid)
	require.True(t, ok)
	storedZ, ok := a.CompressedBlock(format.TagZGrid)
	require.True(t, ok)

	for name, want := range map[string][]byte{
		"age.lz4": storedAge, "age.raw": wantAge, "z.lz4": storedZ, "z.raw": wantZ,
	} {
		got, err := os.ReadFile(files[name])
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}
	require.Len(t, wantAge, 96*2)
	require.Len(t, wantZ, 96*16)
}

func TestLook_ExtractMissingZ(t *testing.T) {
	path := computeFixture(t, false)
	dir := t.TempDir()

	_, _, err := runCmd(t, "look", path, "--extract-z-decompressed", filepath.Join(dir, "z.raw"))
	require.ErrorIs(t, err, errs.ErrBlockMissing)

	_, _, err = runCmd(t, "look", path, "--extract-z-compressed", filepath.Join(dir, "z.lz4"))
	require.ErrorIs(t, err, errs.ErrBlockMissing)
}

func TestLook_Errors(t *testing.T) {
	_, _, err := runCmd(t, "look")
	require.Error(t, err)

	_, _, err = runCmd(t, "look", filepath.Join(t.TempDir(), "missing.hybf"))
	require.ErrorIs(t, err, errs.ErrIO)

	bad := filepath.Join(t.TempDir(), "bad.hybf")
	require.NoError(t, os.WriteFile(bad, []byte("not an archive at all"), 0o600))
	_, _, err = runCmd(t, "look", bad)
	require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
}

func TestLook_Legacy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.hybf")
	writeLegacyArchive(t, path)

	stdout, _, err := runCmd(t, "look", "--blocks", "--window", path)
	require.NoError(t, err)
	require.Contains(t, stdout, "Generation: header = gen0, metadata = gen0")
	require.Contains(t, stdout, "Window: center = -1.25+0.0625i, x_span = 0.5, y_span = 0.25")
}

func TestLook_CenterHexNormalized(t *testing.T) {
	seq := fractal.DefaultSequence
	rec, err := cbor.Marshal(map[int]any{
		1:  uint8(format.Gen1),
		2:  seq.Bits,
		3:  seq.Length,
		4:  uint64(4),
		5:  uint64(4),
		6:  uint16(500),
		7:  uint8(format.PrecisionDouble),
		8:  "0X" + strings.ToUpper(doubleCenterHex),
		9:  3.0,
		10: 2.0,
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "upper.hybf")
	writeArchive(t, path, format.Gen1, rec, make([]byte, 4*4*2))

	stdout, _, err := runCmd(t, "look", "--center-hex", path)
	require.NoError(t, err)
	require.Equal(t, "Center hex: "+doubleCenterHex+",\n length = 32\n\n", stdout)
}
