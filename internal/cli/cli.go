// Package cli implements the stalemaps command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/w31r4/stalemaps/internal/config"
	"github.com/w31r4/stalemaps/internal/filter"
	"github.com/w31r4/stalemaps/internal/process"
	"github.com/w31r4/stalemaps/internal/report"
	"github.com/w31r4/stalemaps/internal/scan"
)

// Exit codes
const (
	ExitOK    = 0
	ExitUsage = 1
	ExitFatal = 2
)

const usage = `Usage: stalemaps [-p PID]... [-v] [-f] [-c 0|1] [-h]

Report processes that still map executables or libraries which were deleted
or replaced on disk, typically by a package upgrade. Such processes run stale
code and should be restarted.

Options:
  -p, --pid PID      scan only PID; repeatable, kept in the given order
                     (default: all visible processes)
  -v, --verbose      list every outdated library
  -f, --full-path    show full paths instead of file names
  -c, --color 0|1    disable or force colored output (default: only when
                     standard output is a terminal)
  -h, --help         show this help

Exit status:
  0  success, whether or not outdated processes were found
  1  invalid command line
  2  fatal error, e.g. processes could not be listed

Processes that exit before they are inspected are skipped silently; set
` + config.LogEnv + `=debug to log them.
`

// UsageError is an invalid command line.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// Run executes the command with args (without the program name) and returns
// the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(stderr, "stalemaps: %v\n", err)
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprint(stderr, "\n"+usage)
		return ExitUsage
	}
	return ExitFatal
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var (
		opts config.Options
		pids []int
	)

	cmd := &cobra.Command{
		Use:           "stalemaps",
		Short:         "Find processes running deleted or replaced executables",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &UsageError{Err: fmt.Errorf("unexpected argument %q", args[0])}
			}
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error {
			for _, pid := range pids {
				if pid < 0 {
					return &UsageError{Err: fmt.Errorf("invalid PID %d: must not be negative", pid)}
				}
			}
			opts.Pids = pids
			return run(c.Context(), opts, stdout, stderr)
		},
	}

	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		fmt.Fprint(c.ErrOrStderr(), usage)
	})

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.IntSliceVarP(&pids, "pid", "p", nil, "scan only this PID (repeatable)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "list every outdated library")
	flags.BoolVarP(&opts.FullPath, "full-path", "f", false, "show full paths instead of file names")
	flags.VarP(&opts.Color, "color", "c", "disable (0) or force (1) colored output")

	return cmd
}

func run(ctx context.Context, opts config.Options, stdout, stderr io.Writer) error {
	patterns, err := filter.Default()
	if err != nil {
		return err
	}

	rep := report.New(stdout, stderr, opts)
	log := slog.New(slog.NewTextHandler(rep.ErrWriter(), &slog.HandlerOptions{
		Level: config.LogLevel(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))

	_, err = scan.New(process.NewFS(""), patterns, rep, log, opts).Run(ctx)
	return err
}
