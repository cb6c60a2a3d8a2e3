// ABOUTME: Toast-style user notifications behind a small interface
// ABOUTME: Console implementation prints colored one-liners via fatih/color

package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Notifier surfaces transient, non-fatal notices to the user.
// Implementations must be safe for concurrent use.
type Notifier interface {
	Success(title, description string)
	Info(title, description string)
	Error(title, description string)
}

// Console writes colored notices to a writer (stderr by default).
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console notifier writing to stderr.
func NewConsole() *Console {
	return &Console{out: os.Stderr}
}

// NewConsoleWriter creates a console notifier writing to w.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

func (c *Console) Success(title, description string) {
	c.print(color.New(color.FgGreen), "✓", title, description)
}

func (c *Console) Info(title, description string) {
	c.print(color.New(color.FgCyan), "•", title, description)
}

func (c *Console) Error(title, description string) {
	c.print(color.New(color.FgRed), "✗", title, description)
}

func (c *Console) print(col *color.Color, mark, title, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	col.Fprintf(c.out, "%s %s", mark, title)
	if description != "" {
		fmt.Fprintf(c.out, ": %s", description)
	}
	fmt.Fprintln(c.out)
}

// Discard drops all notices. Useful where output is owned elsewhere.
type Discard struct{}

func (Discard) Success(title, description string) {}
func (Discard) Info(title, description string)    {}
func (Discard) Error(title, description string)   {}
