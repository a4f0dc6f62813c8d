package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/arloliu/hybractal/errs"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// computeTask describes one compute run. It can be loaded from a YAML task
// file; flags given on the command line override the file.
//
// Example task file:
//
//	rows: 1080
//	cols: 1920
//	maxit: 2048
//	center: "-0.75,0.1"
//	y_span: 1.2
//	precision: 4
//	sequence: "10111011101"
//	compression: zstd
//	output: frame.hybf
type computeTask struct {
	Rows          int     `yaml:"rows"`
	Cols          int     `yaml:"cols"`
	MaxIterations int     `yaml:"maxit"`
	Center        string  `yaml:"center,omitempty"`
	CenterHex     string  `yaml:"center_hex,omitempty"`
	XSpan         float64 `yaml:"x_span"`
	YSpan         float64 `yaml:"y_span"`
	Precision     int     `yaml:"precision"`
	Sequence      string  `yaml:"sequence"`
	Threads       int     `yaml:"threads"`
	MatZ          bool    `yaml:"mat_z"`
	Compression   string  `yaml:"compression"`
	Output        string  `yaml:"output"`
}

func defaultComputeTask() computeTask {
	return computeTask{
		MaxIterations: 1024,
		XSpan:         -1,
		YSpan:         2,
		Precision:     2,
		Sequence:      "10111011101",
		Compression:   "lz4",
		Output:        "out.hybf",
	}
}

func (t *computeTask) addFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&t.Rows, "rows", "r", t.Rows, "number of rows (required)")
	fs.IntVarP(&t.Cols, "cols", "c", t.Cols, "number of columns (required)")
	fs.IntVar(&t.MaxIterations, "maxit", t.MaxIterations, "maximum iterations, 1 to 65534")
	fs.StringVar(&t.Center, "center", t.Center, `window center as "re,im"`)
	fs.StringVar(&t.CenterHex, "center-hex", t.CenterHex, "window center as center hex")
	fs.Float64Var(&t.XSpan, "x-span", t.XSpan, "half width of the window; non-positive derives it from y-span")
	fs.Float64Var(&t.YSpan, "y-span", t.YSpan, "half height of the window")
	fs.IntVarP(&t.Precision, "precision", "p", t.Precision, "float precision: 1, 2, 4 or 8")
	fs.StringVar(&t.Sequence, "sequence", t.Sequence, "iteration sequence, most significant bit first")
	fs.IntVarP(&t.Threads, "threads", "j", t.Threads, "rows computed in parallel; 0 uses all CPUs")
	fs.BoolVar(&t.MatZ, "mat-z", t.MatZ, "also store the z grid")
	fs.StringVar(&t.Compression, "compression", t.Compression, "grid compression: none, lz4, zstd or s2")
	fs.StringVarP(&t.Output, "output", "o", t.Output, "archive to write")
}

// loadComputeTask reads a YAML task file on top of the defaults.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func loadComputeTask(path string) (computeTask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return computeTask{}, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	task := defaultComputeTask()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&task); err != nil {
		return computeTask{}, fmt.Errorf("task file %s: %w", path, err)
	}

	return task, nil
}

// overrideFromFlags copies every flag set on the command line from flagged
// into t.
func (t *computeTask) overrideFromFlags(fs *pflag.FlagSet, flagged computeTask) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "rows":
			t.Rows = flagged.Rows
		case "cols":
			t.Cols = flagged.Cols
		case "maxit":
			t.MaxIterations = flagged.MaxIterations
		case "center":
			t.Center = flagged.Center
			t.CenterHex = ""
		case "center-hex":
			t.CenterHex = flagged.CenterHex
			t.Center = ""
		case "x-span":
			t.XSpan = flagged.XSpan
		case "y-span":
			t.YSpan = flagged.YSpan
		case "precision":
			t.Precision = flagged.Precision
		case "sequence":
			t.Sequence = flagged.Sequence
		case "threads":
			t.Threads = flagged.Threads
		case "mat-z":
			t.MatZ = flagged.MatZ
		case "compression":
			t.Compression = flagged.Compression
		case "output":
			t.Output = flagged.Output
		}
	})
}

// marshal renders t as a task file.
func (t computeTask) marshal() ([]byte, error) {
	return yaml.Marshal(t)
}
