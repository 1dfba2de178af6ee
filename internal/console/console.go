// Package console prints the server's human-readable output.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Printer writes informational lines to out and errors to err.
// It is safe for concurrent use; each call emits whole lines.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	err    io.Writer
	banner *color.Color
	ok     *color.Color
	fail   *color.Color
}

// New returns a Printer writing to out and errw.
func New(out, errw io.Writer) *Printer {
	return &Printer{
		out:    out,
		err:    errw,
		banner: color.New(color.FgCyan, color.Bold),
		ok:     color.New(color.FgGreen),
		fail:   color.New(color.FgRed),
	}
}

// Default returns a Printer on the process's stdout and stderr.
func Default() *Printer {
	return New(color.Output, color.Error)
}

// Banner prints text followed by a blank line.
func (p *Printer) Banner(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.banner.Fprintln(p.out, text)
	fmt.Fprintln(p.out)
}

// Listening confirms that the listener is bound to addr.
func (p *Printer) Listening(name, addr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ok.Fprintf(p.out, "%s is setup and running on %s\n", name, addr)
}

// Request logs one accepted request as "[ip] method target".
func (p *Printer) Request(ip, method, target string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "[%s] %s %s\n", ip, method, target)
}

// Errorf prints a formatted error line to the error stream.
func (p *Printer) Errorf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail.Fprintf(p.err, format+"\n", args...)
}
