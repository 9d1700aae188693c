package report

import (
	"fmt"
	"io"
	"strings"
)

// progressWriter owns the error stream. It draws a transient "[i/total]"
// indicator and erases it before anything else is written to either stream.
type progressWriter struct {
	w       io.Writer
	enabled bool
	width   int // columns taken by the indicator currently on screen
}

func (p *progressWriter) show(i, total int) {
	if !p.enabled {
		return
	}
	// ASCII only, so byte length is the column width.
	s := fmt.Sprintf("[%d/%d]", i, total)
	if len(s) < p.width {
		s += strings.Repeat(" ", p.width-len(s))
	}
	fmt.Fprint(p.w, "\r"+s)
	p.width = len(s)
}

func (p *progressWriter) clear() {
	if p.width == 0 {
		return
	}
	fmt.Fprint(p.w, "\r"+strings.Repeat(" ", p.width)+"\r")
	p.width = 0
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.clear()
	return p.w.Write(b)
}
