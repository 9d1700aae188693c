package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const deletedSuffix = " (deleted)"

// Identity is the display identity of a process.
type Identity struct {
	PID  int
	Comm string // short command name, may be truncated by the kernel
	Exe  string // basename of the resolved executable, empty if unknown
}

// Identity resolves the comm name and executable of pid. The exe link is
// unreadable for kernel threads and, without privileges, for other users'
// processes; that is not an error. A comm read failure is returned together
// with whatever identity could be resolved.
func (fs *FS) Identity(pid int) (Identity, error) {
	id := Identity{PID: pid, Exe: fs.exeName(pid)}

	data, err := os.ReadFile(fs.path(pid, "comm"))
	if err != nil {
		return id, fmt.Errorf("read comm of pid %d: %w", pid, err)
	}
	id.Comm = strings.TrimSpace(string(data))
	return id, nil
}

func (fs *FS) exeName(pid int) string {
	exePath, err := os.Readlink(fs.path(pid, "exe"))
	if err != nil || exePath == "" {
		return ""
	}
	exePath = strings.TrimSuffix(exePath, deletedSuffix)
	return filepath.Base(exePath)
}

// ShowExeOnly reports whether the exe name alone identifies the process:
// comm is the exe name or a prefix of it, as left by kernel truncation.
func (id Identity) ShowExeOnly() bool {
	if id.Exe == "" {
		return false
	}
	return strings.HasPrefix(id.Exe, id.Comm)
}

// Names returns the primary display name and, when it adds information,
// the secondary exe name.
func (id Identity) Names() (primary, secondary string) {
	switch {
	case id.Exe == "":
		primary = id.Comm
	case id.ShowExeOnly():
		primary = id.Exe
	default:
		primary, secondary = id.Comm, id.Exe
	}
	if primary == "" {
		primary = "?"
	}
	return primary, secondary
}

// String renders the identity without styling, e.g. "bash (1234)" or
// "java (openjdk-11, 1234)".
func (id Identity) String() string {
	primary, secondary := id.Names()
	pid := strconv.Itoa(id.PID)
	if secondary != "" {
		return primary + " (" + secondary + ", " + pid + ")"
	}
	return primary + " (" + pid + ")"
}
