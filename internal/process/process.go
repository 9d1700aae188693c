// Package process reads per-process information from a procfs tree.
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/shirou/gopsutil/v3/common"
	"github.com/shirou/gopsutil/v3/process"
)

// DefaultRoot is where procfs is normally mounted.
const DefaultRoot = "/proc"

// FS gives access to the processes of one procfs tree.
type FS struct {
	Root string
}

// NewFS returns an FS rooted at root, or at HOST_PROC / DefaultRoot when
// root is empty.
func NewFS(root string) *FS {
	if root == "" {
		root = os.Getenv("HOST_PROC")
	}
	if root == "" {
		root = DefaultRoot
	}
	return &FS{Root: root}
}

func (fs *FS) path(pid int, name string) string {
	return filepath.Join(fs.Root, strconv.Itoa(pid), name)
}

// Pids returns all PIDs currently visible under the root, ascending.
func (fs *FS) Pids(ctx context.Context) ([]int, error) {
	ctx = context.WithValue(ctx, common.EnvKey, common.EnvMap{common.HostProcEnvKey: fs.Root})
	procs, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, err
	}

	pids := make([]int, len(procs))
	for i, p := range procs {
		pids[i] = int(p)
	}
	slices.Sort(pids)
	return pids, nil
}

// OpenMaps opens the memory-map descriptor of pid. The caller closes it.
func (fs *FS) OpenMaps(pid int) (io.ReadCloser, error) {
	f, err := os.Open(fs.path(pid, "maps"))
	if err != nil {
		return nil, fmt.Errorf("open maps of pid %d: %w", pid, err)
	}
	return f, nil
}

// Targets returns the PIDs to scan: the explicit list as given, or every
// visible process when the list is empty.
func Targets(ctx context.Context, fs *FS, explicit []int) ([]int, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	return fs.Pids(ctx)
}
