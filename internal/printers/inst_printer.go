package printers

import (
	"fmt"
	"io"
	"strings"

	"rvsim/internal/idec"
)

// InstPrinter echoes executed instructions and optionally counts them per
// operation.
type InstPrinter struct {
	ItemPrinter
	showPC       bool
	collectStats bool
	opCounts     map[idec.Operation]uint64
}

// NewInstPrinter creates an instruction printer. It starts muted; verbose
// mode unmutes it.
func NewInstPrinter(writer io.Writer) *InstPrinter {
	p := &InstPrinter{
		ItemPrinter: *NewItemPrinter(writer),
		opCounts:    make(map[idec.Operation]uint64),
	}
	p.SetMute(true)
	return p
}

// InstructionIn records one executed instruction.
func (p *InstPrinter) InstructionIn(pc uint32, inst idec.Instruction) {
	if p.collectStats {
		p.opCounts[inst.Op]++
	}
	if p.IsMuted() {
		return
	}

	var sb strings.Builder
	if p.showPC {
		sb.WriteString(fmt.Sprintf("%08x: ", pc))
	}
	sb.WriteString(inst.String())
	sb.WriteString("\n")
	p.ItemPrintLine(sb.String())
}

// ShowPC prefixes each echoed line with the instruction address.
func (p *InstPrinter) ShowPC(on bool) { p.showPC = on }

// SetCollectStats turns on per-operation counting.
func (p *InstPrinter) SetCollectStats() { p.collectStats = true }

// Count returns how many times op has been executed since stats were enabled.
func (p *InstPrinter) Count(op idec.Operation) uint64 { return p.opCounts[op] }

// PrintStats writes the non-zero operation counts to w.
func (p *InstPrinter) PrintStats(w io.Writer) {
	var sb strings.Builder
	var total uint64

	sb.WriteString("Instructions executed:-\n")
	for _, op := range append([]idec.Operation{idec.OpUnknown}, idec.Operations()...) {
		n := p.opCounts[op]
		if n == 0 {
			continue
		}
		total += n
		sb.WriteString(fmt.Sprintf("%-7s : %d\n", op, n))
	}
	sb.WriteString(fmt.Sprintf("Total   : %d\n", total))
	fmt.Fprint(w, sb.String())
}
