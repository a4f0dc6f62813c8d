// hybtool computes, inspects and migrates hybractal archives.
//
// Usage:
//
//	hybtool compute --rows 1080 --cols 1920 --center -0.75,0.1 -o frame.hybf
//	hybtool look --all frame.hybf
//	hybtool update --keep old1.hybf old2.hybf
//	hybtool convert --precision 4 0x000000000000e8bf9a9999999999b93f
//
// Every command accepts --log-level (debug, info, warn, error). Logs go to
// stderr in logfmt; command output goes to stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// env is what a command needs from the process.
type env struct {
	stdout io.Writer
	stderr io.Writer
	logger log.Logger
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{"compute", "Compute a fractal and write a .hybf archive.", runCompute},
	{"look", "Print information about an archive and extract its grids.", runLook},
	{"update", "Rewrite archives in the current metadata generation.", runUpdate},
	{"convert", "Convert a center hex to another precision or to decimal.", runConvert},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("no command given")
	}

	name := args[0]
	if name == "-h" || name == "--help" || name == "help" {
		printUsage(stdout)
		return nil
	}

	for _, cmd := range commands {
		if cmd.name == name {
			e := &env{stdout: stdout, stderr: stderr, logger: log.NewNopLogger()}
			return cmd.run(ctx, e, args[1:])
		}
	}

	printUsage(stderr)

	return fmt.Errorf("unknown command %q", name)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage:\n  hybtool <command> [flags]\n\nCommands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintf(w, "\nRun \"hybtool <command> --help\" for the flags of a command.\n")
}

// newFlagSet creates the flag set of a command with the shared --log-level flag.
func newFlagSet(e *env, name string) (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.SortFlags = false
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn or error")

	return fs, logLevel
}

// parseFlags parses args and installs the logger. It returns errHelp when
// help was requested, which callers turn into a successful exit.
func parseFlags(e *env, fs *pflag.FlagSet, logLevel *string, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errHelp
		}

		return err
	}

	logger, err := newLogger(e.stderr, *logLevel)
	if err != nil {
		return err
	}
	e.logger = logger

	return nil
}

var errHelp = errors.New("help requested")

// helpOK maps errHelp to a successful exit.
func helpOK(err error) error {
	if errors.Is(err, errHelp) {
		return nil
	}

	return err
}

func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn", "warning":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, fmt.Errorf("invalid log level %q", lvl)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	return level.NewFilter(logger, opt), nil
}
