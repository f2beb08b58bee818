package printers

import (
	"fmt"
	"io"

	"rvsim/internal/common"
)

// ItemPrinter is the shared base of the simulator's output sinks.
type ItemPrinter struct {
	writer io.Writer
	log    common.Logger
	muted  bool
}

// NewItemPrinter constructs an ItemPrinter using the given io.Writer.
func NewItemPrinter(writer io.Writer) *ItemPrinter {
	return &ItemPrinter{
		writer: writer,
	}
}

// SetMessageLogger sets the optional logger that mirrors printed lines at
// debug level.
func (p *ItemPrinter) SetMessageLogger(logger common.Logger) {
	p.log = logger
}

// ItemPrintLine writes the given message to the writer and optionally logs it.
func (p *ItemPrinter) ItemPrintLine(msg string) {
	if p.muted {
		return
	}
	if p.writer != nil {
		fmt.Fprint(p.writer, msg)
	}
	if p.log != nil {
		p.log.Log(common.SeverityDebug, msg)
	}
}

// Writer returns the underlying writer.
func (p *ItemPrinter) Writer() io.Writer { return p.writer }

// SetMute sets the printer to mute (avoids output).
func (p *ItemPrinter) SetMute(mute bool) { p.muted = mute }

// IsMuted returns true if the printer is muted.
func (p *ItemPrinter) IsMuted() bool { return p.muted }
