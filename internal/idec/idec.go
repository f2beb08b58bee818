// Package idec decodes RV32I instruction words.
package idec

import "fmt"

// Operation is a resolved RV32I mnemonic.
type Operation uint8

const (
	OpUnknown Operation = iota

	OpLUI
	OpAUIPC

	OpJAL
	OpJALR

	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU

	OpSB
	OpSH
	OpSW

	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI

	OpSLLI
	OpSRLI
	OpSRAI

	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND

	OpECALL

	numOps
)

var opNames = [numOps]string{
	OpUnknown: "UNKNOWN",
	OpLUI:     "LUI",
	OpAUIPC:   "AUIPC",
	OpJAL:     "JAL",
	OpJALR:    "JALR",
	OpBEQ:     "BEQ",
	OpBNE:     "BNE",
	OpBLT:     "BLT",
	OpBGE:     "BGE",
	OpBLTU:    "BLTU",
	OpBGEU:    "BGEU",
	OpLB:      "LB",
	OpLH:      "LH",
	OpLW:      "LW",
	OpLBU:     "LBU",
	OpLHU:     "LHU",
	OpSB:      "SB",
	OpSH:      "SH",
	OpSW:      "SW",
	OpADDI:    "ADDI",
	OpSLTI:    "SLTI",
	OpSLTIU:   "SLTIU",
	OpXORI:    "XORI",
	OpORI:     "ORI",
	OpANDI:    "ANDI",
	OpSLLI:    "SLLI",
	OpSRLI:    "SRLI",
	OpSRAI:    "SRAI",
	OpADD:     "ADD",
	OpSUB:     "SUB",
	OpSLL:     "SLL",
	OpSLT:     "SLT",
	OpSLTU:    "SLTU",
	OpXOR:     "XOR",
	OpSRL:     "SRL",
	OpSRA:     "SRA",
	OpOR:      "OR",
	OpAND:     "AND",
	OpECALL:   "ECALL",
}

func (o Operation) String() string {
	if o >= numOps {
		return fmt.Sprintf("Operation(%d)", uint8(o))
	}
	return opNames[o]
}

// Operations returns every resolvable operation, excluding OpUnknown.
func Operations() []Operation {
	ops := make([]Operation, 0, numOps-1)
	for o := OpUnknown + 1; o < numOps; o++ {
		ops = append(ops, o)
	}
	return ops
}

// Major opcodes of the base integer ISA.
const (
	OpcodeLoad   uint8 = 0x03
	OpcodeOpImm  uint8 = 0x13
	OpcodeAUIPC  uint8 = 0x17
	OpcodeStore  uint8 = 0x23
	OpcodeOp     uint8 = 0x33
	OpcodeLUI    uint8 = 0x37
	OpcodeBranch uint8 = 0x63
	OpcodeJALR   uint8 = 0x67
	OpcodeJAL    uint8 = 0x6f
	OpcodeSystem uint8 = 0x73
)

// Format is the immediate encoding selected by the opcode.
type Format uint8

const (
	FormatR Format = iota // no immediate
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

func (f Format) String() string {
	switch f {
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return "R"
	}
}

// FormatOf returns the immediate format for a major opcode.
func FormatOf(opcode uint8) Format {
	switch opcode {
	case OpcodeJAL:
		return FormatJ
	case OpcodeLUI, OpcodeAUIPC:
		return FormatU
	case OpcodeLoad, OpcodeJALR, OpcodeOpImm:
		return FormatI
	case OpcodeStore:
		return FormatS
	case OpcodeBranch:
		return FormatB
	}
	return FormatR
}

// Instruction is the decoded form of one instruction word.
// It is a plain value: decoding the same word always yields an equal Instruction.
type Instruction struct {
	Raw    uint32
	Opcode uint8
	Rd     uint8
	Rs1    uint8
	Rs2    uint8
	Funct3 uint8
	Funct7 uint8
	Imm    int32
	Op     Operation
}

// Format returns the immediate encoding of the instruction.
func (i Instruction) Format() Format {
	return FormatOf(i.Opcode)
}

// String renders the fields echoed in verbose mode.
func (i Instruction) String() string {
	return fmt.Sprintf("op=%s, rd=%d, rs1=%d, rs2=%d, imm=%d", i.Op, i.Rd, i.Rs1, i.Rs2, i.Imm)
}
