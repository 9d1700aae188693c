// Package scan runs the outdated-mapping check over a set of processes.
//
// Processes are inspected one at a time in enumeration order. A process that
// vanishes or cannot be read is logged and skipped; only a failure to list
// processes at all ends the run.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/w31r4/stalemaps/internal/config"
	"github.com/w31r4/stalemaps/internal/filter"
	"github.com/w31r4/stalemaps/internal/process"
	"github.com/w31r4/stalemaps/internal/procmaps"
	"github.com/w31r4/stalemaps/internal/report"
)

// ErrEnumerate wraps a failure to list the processes to scan.
var ErrEnumerate = errors.New("cannot enumerate processes")

// Scanner wires the pipeline stages together.
type Scanner struct {
	fs       *process.FS
	patterns *filter.Patterns
	reporter *report.Reporter
	log      *slog.Logger
	opts     config.Options
}

// New returns a Scanner. A nil logger discards diagnostics.
func New(procfs *process.FS, patterns *filter.Patterns, reporter *report.Reporter, log *slog.Logger, opts config.Options) *Scanner {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Scanner{fs: procfs, patterns: patterns, reporter: reporter, log: log, opts: opts}
}

// Summary counts what a run did.
type Summary struct {
	Scanned int
	Flagged int
	Skipped int
}

// Run scans every target process and reports the flagged ones.
func (s *Scanner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	pids, err := process.Targets(ctx, s.fs, s.opts.Pids)
	if err != nil {
		return sum, fmt.Errorf("%w: %w", ErrEnumerate, err)
	}
	defer s.reporter.Clear()

	for i, pid := range pids {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		s.reporter.Progress(i+1, len(pids))

		libs, err := s.outdated(pid)
		if err != nil {
			sum.Skipped++
			if errors.Is(err, fs.ErrNotExist) {
				s.log.Debug("process exited before it could be inspected", "pid", pid)
			} else {
				s.log.Warn("cannot read memory maps", "pid", pid, "error", err)
			}
			continue
		}
		sum.Scanned++
		if len(libs) == 0 {
			continue
		}
		sum.Flagged++

		id, err := s.fs.Identity(pid)
		if err != nil {
			s.log.Warn("cannot resolve process name", "pid", pid, "error", err)
		}
		s.reporter.Report(id, libs)
	}

	s.log.Debug("scan finished", "scanned", sum.Scanned, "flagged", sum.Flagged, "skipped", sum.Skipped)
	return sum, nil
}

// outdated returns the outdated libraries mapped by pid. A read error
// discards partial results so a process is never reported from a
// truncated snapshot.
func (s *Scanner) outdated(pid int) ([]string, error) {
	f, err := s.fs.OpenMaps(pid)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := procmaps.NewReader(f)
	libs := filter.Outdated(r.All(), s.patterns, s.opts.FullPath)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read maps of pid %d: %w", pid, err)
	}
	return libs, nil
}
