package printers

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"rvsim/internal/common"
)

// NumRegs is the size of the register file the printers operate on.
const NumRegs = 32

// RegDumpSize is the size in bytes of a register dump file.
const RegDumpSize = NumRegs * 4

// DefaultRegDumpFile is the register dump written when the program exits.
const DefaultRegDumpFile = "regdump.res"

// FormatRegister renders a single register as Reg[ i]=0x........
func FormatRegister(idx int, v int32) string {
	return fmt.Sprintf("Reg[%2d]=0x%08x", idx, uint32(v))
}

// FormatRegisters renders the register file four registers per line.
func FormatRegisters(regs [NumRegs]int32) string {
	var sb strings.Builder
	for i := 0; i < NumRegs; i += 4 {
		for j := i; j < i+4; j++ {
			if j > i {
				sb.WriteString("  ")
			}
			sb.WriteString(FormatRegister(j, regs[j]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// WriteRegDump writes each register as four big-endian bytes.
func WriteRegDump(w io.Writer, regs [NumRegs]int32) error {
	var buf [RegDumpSize]byte
	for i, r := range regs {
		binary.BigEndian.PutUint32(buf[4*i:], uint32(r))
	}
	_, err := w.Write(buf[:])
	return err
}

// WriteRegDumpFile creates or truncates path and writes the register dump.
func WriteRegDumpFile(path string, regs [NumRegs]int32) error {
	f, err := os.Create(path)
	if err != nil {
		return common.NewErrorMsg(common.ErrSevError, common.ErrRegDumpWrite, err.Error())
	}
	if err := WriteRegDump(f, regs); err != nil {
		f.Close()
		return common.NewErrorMsg(common.ErrSevError, common.ErrRegDumpWrite, err.Error())
	}
	if err := f.Close(); err != nil {
		return common.NewErrorMsg(common.ErrSevError, common.ErrRegDumpWrite, err.Error())
	}
	return nil
}

// ReadRegDump parses a register dump produced by WriteRegDump.
func ReadRegDump(r io.Reader) ([NumRegs]int32, error) {
	var regs [NumRegs]int32
	var buf [RegDumpSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return regs, fmt.Errorf("read register dump: %w", err)
	}
	for i := range regs {
		regs[i] = int32(binary.BigEndian.Uint32(buf[4*i:]))
	}
	return regs, nil
}
