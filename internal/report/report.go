// Package report renders scan findings.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/w31r4/stalemaps/internal/config"
	"github.com/w31r4/stalemaps/internal/process"
)

const multipleOutdated = "multiple outdated libraries"

// Reporter writes one block per flagged process to the result stream and a
// progress indicator to the error stream.
type Reporter struct {
	out      io.Writer
	progress *progressWriter
	verbose  bool

	commandStyle  lipgloss.Style
	exeStyle      lipgloss.Style
	pidStyle      lipgloss.Style
	libraryStyle  lipgloss.Style
	multipleStyle lipgloss.Style
}

// New returns a Reporter. Color follows opts.Color resolved against out;
// progress is drawn only when errOut is a terminal.
func New(out, errOut io.Writer, opts config.Options) *Reporter {
	r := lipgloss.NewRenderer(out)
	if opts.Color.Enabled(out) {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Reporter{
		out:      out,
		progress: &progressWriter{w: errOut, enabled: config.IsTerminal(errOut)},
		verbose:  opts.Verbose,

		commandStyle:  r.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
		exeStyle:      r.NewStyle().Foreground(lipgloss.Color("87")),
		pidStyle:      r.NewStyle().Foreground(lipgloss.Color("33")),
		libraryStyle:  r.NewStyle().Foreground(lipgloss.Color("220")),
		multipleStyle: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// ErrWriter returns the error stream. Writes through it erase the progress
// indicator first; diagnostics must use it.
func (r *Reporter) ErrWriter() io.Writer {
	return r.progress
}

// Progress shows "[i/total]" on the error stream.
func (r *Reporter) Progress(i, total int) {
	r.progress.show(i, total)
}

// Clear erases the progress indicator.
func (r *Reporter) Clear() {
	r.progress.clear()
}

// Report writes the findings for one process. Nothing is written when libs
// is empty.
func (r *Reporter) Report(id process.Identity, libs []string) {
	if len(libs) == 0 {
		return
	}
	r.progress.clear()

	var b strings.Builder
	b.WriteString(r.identity(id))
	b.WriteString(" uses ")
	switch {
	case len(libs) == 1:
		b.WriteString("outdated ")
		b.WriteString(r.libraryStyle.Render(sanitize(libs[0])))
	case !r.verbose:
		b.WriteString(r.multipleStyle.Render(multipleOutdated))
	default:
		b.WriteString(r.multipleStyle.Render(multipleOutdated))
		b.WriteString(":")
		for _, lib := range libs {
			b.WriteString("\n  ")
			b.WriteString(r.libraryStyle.Render(sanitize(lib)))
		}
	}
	b.WriteString("\n")
	fmt.Fprint(r.out, b.String())
}

// identity renders "name (pid)" or "comm (exe, pid)".
func (r *Reporter) identity(id process.Identity) string {
	primary, secondary := id.Names()
	pid := r.pidStyle.Render(strconv.Itoa(id.PID))
	name := r.commandStyle.Render(sanitize(primary))
	if secondary != "" {
		return fmt.Sprintf("%s (%s, %s)", name, r.exeStyle.Render(sanitize(secondary)), pid)
	}
	return fmt.Sprintf("%s (%s)", name, pid)
}
