package cpu

import (
	"fmt"

	"rvsim/internal/common"
	"rvsim/internal/idec"
)

// Result describes one completed cycle.
type Result struct {
	PC      uint32           // address of the executed instruction
	Inst    idec.Instruction // decoded instruction
	Halted  bool             // ECALL requested exit
	Warning *common.Error    // non-fatal condition, e.g. an unknown operation
}

// Engine runs fetch, decode, execute and write-back cycles.
type Engine struct {
	log     common.Logger
	retired uint64
}

// NewEngine creates an engine. A nil logger discards log records.
func NewEngine(log common.Logger) *Engine {
	if log == nil {
		log = common.NewNoOpLogger()
	}
	return &Engine{log: log}
}

// Retired returns the number of instructions completed so far.
func (e *Engine) Retired() uint64 { return e.retired }

// writeback stages the effects of one instruction so that nothing is
// committed until every check has passed.
type writeback struct {
	nextPC   uint32
	regValid bool
	regVal   int32
	storeN   int
	storeAdr uint32
	storeVal uint32
	halt     bool
}

func (w *writeback) setReg(v int32) {
	w.regValid = true
	w.regVal = v
}

// Step executes exactly one instruction at s.PC. A memory fault returns a
// fatal *common.Error and leaves s unchanged.
func (e *Engine) Step(s *State) (Result, error) {
	pc := s.PC
	res := Result{PC: pc}

	word, err := s.Mem.Read(pc, 4)
	if err != nil {
		return res, e.fault(s, pc, pc, "fetch", 4)
	}

	inst := idec.Decode(word)
	res.Inst = inst

	wb := writeback{nextPC: pc + 4}
	if err := e.execute(s, inst, &wb); err != nil {
		return res, err
	}

	if wb.regValid {
		s.SetReg(inst.Rd, wb.regVal)
	}
	if wb.storeN > 0 {
		if err := s.Mem.Write(wb.storeAdr, wb.storeN, wb.storeVal); err != nil {
			return res, e.fault(s, pc, wb.storeAdr, "store", wb.storeN)
		}
	}
	s.PC = wb.nextPC
	e.retired++

	res.Halted = wb.halt
	if inst.Op == idec.OpUnknown {
		res.Warning = common.NewErrorWithPC(common.ErrSevWarn, common.ErrUnknownOperation, pc,
			fmt.Sprintf("Opcode %b is not implemented. Are you sure the binary file is correct?", inst.Opcode))
		e.log.WithFields(common.Fields{
			"pc":  fmt.Sprintf("0x%08x", pc),
			"raw": fmt.Sprintf("0x%08x", inst.Raw),
		}).Debug("unknown operation")
	}

	if e.log.Enabled(common.SeverityDebug) {
		e.log.WithFields(common.Fields{
			"pc":  fmt.Sprintf("0x%08x", pc),
			"raw": fmt.Sprintf("0x%08x", inst.Raw),
			"op":  inst.Op.String(),
		}).Debug("cycle")
	}

	return res, nil
}

func (e *Engine) fault(s *State, pc, addr uint32, kind string, n int) error {
	err := common.NewErrorWithPCAddr(common.ErrSevError, common.ErrMemFault, pc, addr,
		fmt.Sprintf("%s of %d bytes outside %d-byte memory", kind, n, s.Mem.Len()))
	e.log.WithFields(common.Fields{
		"pc":   fmt.Sprintf("0x%08x", pc),
		"addr": fmt.Sprintf("0x%08x", addr),
	}).Error(err)
	return err
}

// LessUnsigned compares a and b as unsigned 32-bit values while only using
// the signed ordering: the sign bits flip the signed result when they differ.
func LessUnsigned(a, b int32) bool {
	return (a < b) != (a < 0) != (b < 0)
}

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (e *Engine) execute(s *State, inst idec.Instruction, wb *writeback) error {
	pc := s.PC
	rs1 := s.Regs[inst.Rs1]
	rs2 := s.Regs[inst.Rs2]
	imm := inst.Imm
	shamt := uint32(inst.Rs2) & 0x1f

	switch inst.Op {
	// register-register ALU
	case idec.OpADD:
		wb.setReg(rs1 + rs2)
	case idec.OpSUB:
		wb.setReg(rs1 - rs2)
	case idec.OpAND:
		wb.setReg(rs1 & rs2)
	case idec.OpOR:
		wb.setReg(rs1 | rs2)
	case idec.OpXOR:
		wb.setReg(rs1 ^ rs2)
	case idec.OpSLL:
		wb.setReg(int32(uint32(rs1) << (uint32(rs2) & 0x1f)))
	case idec.OpSRL:
		wb.setReg(int32(uint32(rs1) >> (uint32(rs2) & 0x1f)))
	case idec.OpSRA:
		wb.setReg(rs1 >> (uint32(rs2) & 0x1f))
	case idec.OpSLT:
		wb.setReg(b2i(rs1 < rs2))
	case idec.OpSLTU:
		wb.setReg(b2i(LessUnsigned(rs1, rs2)))

	// register-immediate ALU
	case idec.OpADDI:
		wb.setReg(rs1 + imm)
	case idec.OpANDI:
		wb.setReg(rs1 & imm)
	case idec.OpORI:
		wb.setReg(rs1 | imm)
	case idec.OpXORI:
		wb.setReg(rs1 ^ imm)
	case idec.OpSLTI:
		wb.setReg(b2i(rs1 < imm))
	case idec.OpSLTIU:
		wb.setReg(b2i(LessUnsigned(rs1, imm)))
	case idec.OpSLLI:
		wb.setReg(int32(uint32(rs1) << shamt))
	case idec.OpSRLI:
		wb.setReg(int32(uint32(rs1) >> shamt))
	case idec.OpSRAI:
		wb.setReg(rs1 >> shamt)

	// upper immediates
	case idec.OpLUI:
		wb.setReg(imm)
	case idec.OpAUIPC:
		wb.setReg(int32(pc + uint32(imm)))

	// jumps
	case idec.OpJAL:
		wb.nextPC = pc + uint32(imm)
		wb.setReg(int32(pc + 4))
	case idec.OpJALR:
		wb.nextPC = uint32(rs1 + imm)
		wb.setReg(int32(pc + 4))

	// branches
	case idec.OpBEQ:
		e.branch(wb, pc, imm, rs1 == rs2)
	case idec.OpBNE:
		e.branch(wb, pc, imm, rs1 != rs2)
	case idec.OpBLT:
		e.branch(wb, pc, imm, rs1 < rs2)
	case idec.OpBGE:
		e.branch(wb, pc, imm, rs1 >= rs2)
	case idec.OpBLTU:
		e.branch(wb, pc, imm, LessUnsigned(rs1, rs2))
	case idec.OpBGEU:
		e.branch(wb, pc, imm, !LessUnsigned(rs1, rs2))

	// loads
	case idec.OpLB, idec.OpLH, idec.OpLW, idec.OpLBU, idec.OpLHU:
		addr := uint32(rs1 + imm)
		n := loadWidth(inst.Op)
		v, err := s.Mem.Read(addr, n)
		if err != nil {
			return e.fault(s, pc, addr, "load", n)
		}
		switch inst.Op {
		case idec.OpLB:
			wb.setReg(int32(int8(v)))
		case idec.OpLH:
			wb.setReg(int32(int16(v)))
		default:
			wb.setReg(int32(v))
		}

	// stores
	case idec.OpSB, idec.OpSH, idec.OpSW:
		addr := uint32(rs1 + imm)
		n := storeWidth(inst.Op)
		if !s.Mem.InRange(addr, n) {
			return e.fault(s, pc, addr, "store", n)
		}
		wb.storeN = n
		wb.storeAdr = addr
		wb.storeVal = uint32(rs2)

	case idec.OpECALL:
		// Only the exit syscall is modelled; other numbers are ignored.
		if s.Regs[RegA0] == ExitSyscall {
			wb.halt = true
		}

	case idec.OpUnknown:
		// no architectural effect

	default:
		panic(fmt.Sprintf("cpu: operation %s has no execute case", inst.Op))
	}
	return nil
}

func (e *Engine) branch(wb *writeback, pc uint32, imm int32, taken bool) {
	if taken {
		wb.nextPC = pc + uint32(imm)
	}
}

func loadWidth(op idec.Operation) int {
	switch op {
	case idec.OpLB, idec.OpLBU:
		return 1
	case idec.OpLH, idec.OpLHU:
		return 2
	}
	return 4
}

func storeWidth(op idec.Operation) int {
	switch op {
	case idec.OpSB:
		return 1
	case idec.OpSH:
		return 2
	}
	return 4
}
