package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arloliu/hybractal/archive"
	"github.com/arloliu/hybractal/endian"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/fractal"
	"github.com/arloliu/hybractal/internal/pool"
	"github.com/arloliu/hybractal/metadata"
	"github.com/arloliu/hybractal/section"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), args, &stdout, &stderr)

	return stdout.String(), stderr.String(), err
}

// writeLegacyArchive writes a 4x4 generation 0 archive with a zero age grid.
func writeLegacyArchive(t *testing.T, path string) {
	t.Helper()

	seq := fractal.DefaultSequence
	rec, err := metadata.LegacyRecord{
		SequenceBin:   seq.Bits,
		SequenceLen:   uint64(seq.Length),
		CenterRe:      -1.25,
		CenterIm:      0.0625,
		XSpan:         0.5,
		YSpan:         0.25,
		MaxIterations: 500,
		Rows:          4,
		Cols:          4,
	}.MarshalBinary()
	require.NoError(t, err)

	writeArchive(t, path, format.Gen0, rec, make([]byte, 4*4*2))
}

// writeArchive writes an uncompressed archive holding rec and the age grid.
func writeArchive(t *testing.T, path string, gen format.Generation, rec, age []byte) {
	t.Helper()

	entries := []section.BlockEntry{
		section.NewBlockEntry(format.TagMetadata, format.CompressionNone, rec, rec),
		section.NewBlockEntry(format.TagAgeGrid, format.CompressionNone, age, age),
	}

	h := section.NewHeader(gen)
	h.BlockCount = uint32(len(entries))

	engine := endian.GetLittleEndianEngine()
	buf := pool.NewByteBuffer(h.PayloadOffset())
	_, _ = buf.Write(h.Bytes())
	for i := range entries {
		entries[i].WriteTo(buf, engine)
	}
	_, _ = buf.Write(rec)
	_, _ = buf.Write(age)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestRun_Usage(t *testing.T) {
	_, stderr, err := runCmd(t)
	require.Error(t, err)
	require.Contains(t, stderr, "Commands:")

	stdout, _, err := runCmd(t, "help")
	require.NoError(t, err)
	for _, cmd := range commands {
		require.Contains(t, stdout, cmd.name)
	}

	_, _, err = runCmd(t, "render")
	require.ErrorContains(t, err, `unknown command "render"`)
}

func TestRun_CommandHelp(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.name, func(t *testing.T) {
			_, stderr, err := runCmd(t, cmd.name, "--help")
			require.NoError(t, err)
			require.Contains(t, stderr, "--log-level")
		})
	}
}

func TestRun_InvalidLogLevel(t *testing.T) {
	_, _, err := runCmd(t, "convert", "--log-level", "loud", "000040bfcdcccc3d")
	require.ErrorContains(t, err, "invalid log level")
}

func TestKeptName(t *testing.T) {
	require.Equal(t, "frame_new.hybf", keptName("frame.hybf"))
	require.Equal(t, filepath.Join("a.b", "frame_new.hybf"), keptName(filepath.Join("a.b", "frame.hybf")))
	require.Equal(t, "frame_new.hybf", keptName("frame"))
}

func TestUpdate_Keep(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "old.hybf")
	writeLegacyArchive(t, src)

	_, _, err := runCmd(t, "update", "--keep", src)
	require.NoError(t, err)

	orig, err := archive.Load(src)
	require.NoError(t, err)
	require.Equal(t, format.Gen0, orig.HeaderGeneration())

	updated, err := archive.Load(filepath.Join(dir, "old_new.hybf"))
	require.NoError(t, err)
	require.Equal(t, format.Gen1, updated.HeaderGeneration())
	require.Equal(t, format.Gen1, updated.Metadata().Generation)
	require.Equal(t, orig.Metadata().CenterHex(), updated.Metadata().CenterHex())
	require.Equal(t, orig.AgeGrid(), updated.AgeGrid())

	// refuses to overwrite the earlier result
	_, stderr, err := runCmd(t, "update", "--keep", src)
	require.ErrorContains(t, err, "1 of 1 archives failed")
	require.Contains(t, stderr, "already exists")
}

func TestUpdate_InPlace(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.hybf")
	second := filepath.Join(dir, "second.hybf")
	writeLegacyArchive(t, first)
	writeLegacyArchive(t, second)

	_, _, err := runCmd(t, "update", first, second)
	require.NoError(t, err)

	for _, path := range []string{first, second} {
		a, err := archive.Load(path)
		require.NoError(t, err)
		require.Equal(t, format.Gen1, a.HeaderGeneration())

		re, im := a.Metadata().Window().Base().DisplayedCenter()
		require.InDelta(t, -1.25, re, 0)
		require.InDelta(t, 0.0625, im, 0)
	}

	before, err := os.ReadFile(first)
	require.NoError(t, err)

	// current archives are left alone
	_, _, err = runCmd(t, "update", first)
	require.NoError(t, err)

	after, err := os.ReadFile(first)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestUpdate_Failures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.hybf")
	writeLegacyArchive(t, good)

	_, stderr, err := runCmd(t, "update", filepath.Join(dir, "missing.hybf"), good)
	require.ErrorContains(t, err, "1 of 2 archives failed")
	require.Contains(t, stderr, "missing.hybf can not be updated")

	a, err := archive.Load(good)
	require.NoError(t, err)
	require.Equal(t, format.Gen1, a.HeaderGeneration())

	_, _, err = runCmd(t, "update")
	require.Error(t, err)
}
