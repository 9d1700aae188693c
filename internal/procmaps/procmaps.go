// Package procmaps parses the /proc/<pid>/maps descriptor of a process.
//
// Each line of the descriptor describes one mapped region:
//
//	address           perms offset   dev   inode      pathname
//	7f2c4a1e0000-7f2c4a208000 r-xp 00028000 fd:01 1835032    /usr/lib/libc.so.6
//
// Only regions that are executable and backed by a path are yielded. A
// trailing " (deleted)" on the path means the file was unlinked or replaced
// after it was mapped.
package procmaps

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

// DeletedSuffix is appended by the kernel to paths whose file was unlinked.
const DeletedSuffix = " (deleted)"

// fixedColumns is the number of positional columns preceding the path.
const fixedColumns = 5

// Mapping is one executable, file-backed region of a process.
type Mapping struct {
	Address string // start-end, hex
	Perms   string // e.g. "r-xp"
	Offset  string
	Device  string // major:minor
	Inode   string
	Path    string // backing file, without the deleted marker
	Deleted bool   // backing file no longer exists at Path
}

// Executable reports whether the region is mapped with execute permission.
func (m Mapping) Executable() bool {
	return len(m.Perms) > 2 && m.Perms[2] == 'x'
}

// Reader yields mappings from a maps descriptor one line at a time.
// It is single-pass: once exhausted it cannot be restarted.
type Reader struct {
	sc  *bufio.Scanner
	cur Mapping
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	// Paths may be up to PATH_MAX; the default 64K token size covers that.
	return &Reader{sc: sc}
}

// Next advances to the next executable, file-backed mapping.
// It returns false at end of input or on a read error, see Err.
func (r *Reader) Next() bool {
	for r.sc.Scan() {
		m, ok := ParseLine(r.sc.Text())
		if !ok {
			continue
		}
		r.cur = m
		return true
	}
	return false
}

// Mapping returns the mapping found by the last call to Next.
func (r *Reader) Mapping() Mapping {
	return r.cur
}

// Err returns the first non-EOF read error.
func (r *Reader) Err() error {
	return r.sc.Err()
}

// All returns the remaining mappings as a sequence. Callers check Err
// after the sequence is drained.
func (r *Reader) All() iter.Seq[Mapping] {
	return func(yield func(Mapping) bool) {
		for r.Next() {
			if !yield(r.cur) {
				return
			}
		}
	}
}

// ParseLine parses a single maps line. It reports false for lines that are
// malformed, not executable, or have no backing path.
func ParseLine(line string) (Mapping, bool) {
	var cols [fixedColumns]string
	rest := line
	for i := range cols {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return Mapping{}, false
		}
		end := strings.IndexAny(rest, " \t")
		if end == -1 {
			cols[i], rest = rest, ""
			continue
		}
		cols[i], rest = rest[:end], rest[end:]
	}

	m := Mapping{
		Address: cols[0],
		Perms:   cols[1],
		Offset:  cols[2],
		Device:  cols[3],
		Inode:   cols[4],
		Path:    strings.TrimSpace(rest),
	}
	if m.Path == "" || !m.Executable() {
		return Mapping{}, false
	}
	if p, ok := strings.CutSuffix(m.Path, DeletedSuffix); ok {
		m.Path = p
		m.Deleted = true
	}
	return m, true
}
