package printers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ColorMode selects when ANSI colour is emitted.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAuto:
		return "auto"
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	}
	return fmt.Sprintf("ColorMode(%d)", int(m))
}

// ParseColorMode accepts auto, always or never (case-insensitive).
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always", "on", "yes":
		return ColorAlways, nil
	case "never", "off", "no":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("unknown colour mode %q", s)
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[1;36m"
)

// Console is the interactive output sink. Breakpoint notices, warnings and
// faults are highlighted when colour is enabled.
type Console struct {
	ItemPrinter
	color bool
}

// NewConsole wraps w for console output. Files attached to a terminal go
// through go-colorable so escapes also work on Windows consoles. With
// ColorNever, escapes embedded by other printers are stripped.
func NewConsole(w io.Writer, mode ColorMode) *Console {
	tty := false
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		tty = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		if tty {
			w = colorable.NewColorable(f)
		}
	}

	c := &Console{}
	switch mode {
	case ColorAlways:
		c.color = true
	case ColorNever:
		w = colorable.NewNonColorable(w)
	default:
		c.color = tty
	}
	c.ItemPrinter = *NewItemPrinter(w)
	return c
}

// Colored reports whether ANSI colour is emitted.
func (c *Console) Colored() bool { return c.color }

func (c *Console) Print(s string) { c.ItemPrintLine(s) }

func (c *Console) Println(s string) { c.ItemPrintLine(s + "\n") }

func (c *Console) Printf(format string, args ...interface{}) {
	c.ItemPrintLine(fmt.Sprintf(format, args...))
}

// Notice prints a highlighted line, used for breakpoint hits.
func (c *Console) Notice(s string) { c.Println(c.paint(ansiCyan, s)) }

// Warn prints a non-fatal condition.
func (c *Console) Warn(s string) { c.Println(c.paint(ansiYellow, s)) }

// Fault prints a fatal condition.
func (c *Console) Fault(s string) { c.Println(c.paint(ansiRed, s)) }

func (c *Console) paint(code, s string) string {
	if !c.color {
		return s
	}
	return code + s + ansiReset
}
