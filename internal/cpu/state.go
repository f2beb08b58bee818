// Package cpu holds the architectural state of an RV32I hart and the engine
// that executes one instruction per step against it.
package cpu

import (
	"fmt"

	"rvsim/internal/idec"
	"rvsim/internal/memacc"
)

// NumRegs is the number of general-purpose registers.
const NumRegs = 32

// RegSP is the stack pointer, initialised to the memory size.
const RegSP = 2

// RegA0 carries the syscall number for ECALL.
const RegA0 = 10

// ExitSyscall is the a0 value that makes ECALL halt the simulation.
const ExitSyscall = 10

// State is the architectural state: program counter, register file and
// memory image. Register 0 reads as zero at all times.
type State struct {
	PC   uint32
	Regs [NumRegs]int32
	Mem  *memacc.Image
}

// NewState returns a state over mem with PC 0 and sp at the top of memory.
func NewState(mem *memacc.Image) *State {
	s := &State{Mem: mem}
	s.Regs[RegSP] = int32(mem.Len())
	return s
}

// Reset clears registers and memory, sets PC to 0 and sp to the memory size.
func (s *State) Reset() {
	s.PC = 0
	s.Regs = [NumRegs]int32{}
	s.Regs[RegSP] = int32(s.Mem.Len())
	s.Mem.Clear()
}

// SetReg writes v to register idx; writes to register 0 are dropped.
func (s *State) SetReg(idx uint8, v int32) {
	if idx == 0 || idx >= NumRegs {
		return
	}
	s.Regs[idx] = v
}

// PCValue returns the program counter.
func (s *State) PCValue() uint32 { return s.PC }

// Reg returns register idx, or 0 for an out of range index.
func (s *State) Reg(idx int) int32 {
	if idx < 0 || idx >= NumRegs {
		return 0
	}
	return s.Regs[idx]
}

// Registers returns a copy of the register file.
func (s *State) Registers() [NumRegs]int32 { return s.Regs }

// MemSize returns the memory image size in bytes.
func (s *State) MemSize() int { return s.Mem.Len() }

// Peek reads n bytes (1, 2 or 4) at addr without side effects.
func (s *State) Peek(addr uint32, n int) (uint32, error) {
	return s.Mem.Read(addr, n)
}

// DecodeAt decodes the word stored at addr.
func (s *State) DecodeAt(addr uint32) (idec.Instruction, error) {
	word, err := s.Mem.Read(addr, 4)
	if err != nil {
		return idec.Instruction{}, err
	}
	return idec.Decode(word), nil
}

func (s *State) String() string {
	return fmt.Sprintf("PC=0x%08x sp=0x%08x mem=%d", s.PC, uint32(s.Regs[RegSP]), s.Mem.Len())
}
