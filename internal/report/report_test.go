package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/w31r4/stalemaps/internal/config"
	"github.com/w31r4/stalemaps/internal/process"
)

func newTestReporter(opts config.Options) (*Reporter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return New(&out, &errOut, opts), &out, &errOut
}

func TestReportSummaries(t *testing.T) {
	bash := process.Identity{PID: 42, Comm: "bash", Exe: "bash"}

	tests := []struct {
		name    string
		verbose bool
		libs    []string
		want    string
	}{
		{
			name: "nothing outdated",
		},
		{
			name: "single library",
			libs: []string{"libc-2.31.so"},
			want: "bash (42) uses outdated libc-2.31.so\n",
		},
		{
			name: "multiple libraries collapsed",
			libs: []string{"a.so", "b.so", "c.so"},
			want: "bash (42) uses multiple outdated libraries\n",
		},
		{
			name:    "multiple libraries verbose",
			verbose: true,
			libs:    []string{"a.so", "b.so", "c.so"},
			want:    "bash (42) uses multiple outdated libraries:\n  a.so\n  b.so\n  c.so\n",
		},
		{
			name:    "single library verbose",
			verbose: true,
			libs:    []string{"libssl.so.3"},
			want:    "bash (42) uses outdated libssl.so.3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out, errOut := newTestReporter(config.Options{Verbose: tt.verbose, Color: config.ColorNever})
			r.Report(bash, tt.libs)
			assert.Equal(t, tt.want, out.String())
			assert.Empty(t, errOut.String())
		})
	}
}

func TestReportIdentityWithDistinctExe(t *testing.T) {
	r, out, _ := newTestReporter(config.Options{Color: config.ColorNever})
	r.Report(process.Identity{PID: 7, Comm: "java", Exe: "openjdk-11"}, []string{"libjvm.so"})
	assert.Equal(t, "java (openjdk-11, 7) uses outdated libjvm.so\n", out.String())
}

func TestReportSanitizesProcessText(t *testing.T) {
	r, out, _ := newTestReporter(config.Options{Color: config.ColorNever})
	r.Report(process.Identity{PID: 9, Comm: "evil\x1b[2J"}, []string{"lib\x07.so"})
	assert.Equal(t, `evil\x1b[2J (9) uses outdated lib\x07.so`+"\n", out.String())
}

func TestReportColor(t *testing.T) {
	libs := []string{"libc.so.6"}
	id := process.Identity{PID: 1, Comm: "init", Exe: "systemd"}

	r, out, _ := newTestReporter(config.Options{Color: config.ColorAlways})
	r.Report(id, libs)
	assert.Contains(t, out.String(), "\x1b[", "forced color must emit escapes into a non-terminal")

	r, out, _ = newTestReporter(config.Options{Color: config.ColorNever})
	r.Report(id, libs)
	assert.NotContains(t, out.String(), "\x1b[")

	r, out, _ = newTestReporter(config.Options{})
	r.Report(id, libs)
	assert.NotContains(t, out.String(), "\x1b[", "auto mode into a buffer must not color")
}

func TestProgressDisabledOffTerminal(t *testing.T) {
	r, out, errOut := newTestReporter(config.Options{Color: config.ColorNever})
	r.Progress(1, 10)
	r.Clear()
	assert.Empty(t, errOut.String())
	assert.Empty(t, out.String())
}

func TestProgressIsErasedBeforeOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	r := New(&out, &errOut, config.Options{Color: config.ColorNever})
	r.progress.enabled = true

	r.Progress(9, 10)
	r.Progress(10, 10)
	assert.Equal(t, "\r[9/10]\r[10/10]", errOut.String())

	r.Report(process.Identity{PID: 3, Comm: "sshd", Exe: "sshd"}, []string{"libcrypto.so.3"})
	assert.True(t, strings.HasSuffix(errOut.String(), "\r       \r"), "progress not erased: %q", errOut.String())
	assert.Equal(t, "sshd (3) uses outdated libcrypto.so.3\n", out.String())

	errOut.Reset()
	r.Progress(1, 2)
	_, _ = r.ErrWriter().Write([]byte("warning\n"))
	assert.Equal(t, "\r[1/2]\r     \rwarning\n", errOut.String())

	errOut.Reset()
	r.Clear()
	assert.Empty(t, errOut.String(), "nothing to erase")
}
