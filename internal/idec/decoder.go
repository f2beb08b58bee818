package idec

import (
	"rvsim/internal/bitfield"
)

// Decode splits word into its fields, synthesises the immediate for the
// opcode's format and resolves the operation. It never fails: words that do
// not map to an RV32I operation resolve to OpUnknown.
func Decode(word uint32) Instruction {
	inst := Instruction{
		Raw:    word,
		Opcode: uint8(bitfield.Extract(word, 6, 0)),
		Rd:     uint8(bitfield.Extract(word, 11, 7)),
		Funct3: uint8(bitfield.Extract(word, 14, 12)),
		Rs1:    uint8(bitfield.Extract(word, 19, 15)),
		Rs2:    uint8(bitfield.Extract(word, 24, 20)),
		Funct7: uint8(bitfield.Extract(word, 31, 25)),
	}
	inst.Imm = Immediate(word, FormatOf(inst.Opcode))
	inst.Op = resolveOp(inst.Opcode, inst.Funct3, inst.Funct7)
	return inst
}

// Immediate assembles the immediate of word as encoded in format f.
// Bit 31 of the word is the sign source for every format.
func Immediate(word uint32, f Format) int32 {
	var imm uint32

	switch f {
	case FormatJ:
		imm = bitfield.Insert(imm, bitfield.Extract(word, 31, 31), 20)
		imm = bitfield.Insert(imm, bitfield.Extract(word, 19, 12), 12)
		imm = bitfield.Insert(imm, bitfield.Extract(word, 20, 20), 11)
		imm = bitfield.Insert(imm, bitfield.Extract(word, 30, 21), 1)
		return bitfield.SignExtend(imm, 21)
	case FormatU:
		imm = bitfield.Insert(imm, bitfield.Extract(word, 31, 12), 12)
		return int32(imm)
	case FormatI:
		return bitfield.SignExtend(bitfield.Extract(word, 31, 20), 12)
	case FormatS:
		imm = bitfield.Insert(imm, bitfield.Extract(word, 31, 25), 5)
		imm = bitfield.Insert(imm, bitfield.Extract(word, 11, 7), 0)
		return bitfield.SignExtend(imm, 12)
	case FormatB:
		imm = bitfield.Insert(imm, bitfield.Extract(word, 31, 31), 12)
		imm = bitfield.Insert(imm, bitfield.Extract(word, 7, 7), 11)
		imm = bitfield.Insert(imm, bitfield.Extract(word, 30, 25), 5)
		imm = bitfield.Insert(imm, bitfield.Extract(word, 11, 8), 1)
		return bitfield.SignExtend(imm, 13)
	}
	return 0
}

// resolveOp maps opcode/funct3/funct7 to an operation. A non-zero funct7
// selects the alternate form of ADD/SUB, SRL/SRA and SRLI/SRAI.
func resolveOp(opcode, funct3, funct7 uint8) Operation {
	alt := funct7 != 0

	switch opcode {
	case OpcodeJAL:
		return OpJAL
	case OpcodeLUI:
		return OpLUI
	case OpcodeAUIPC:
		return OpAUIPC
	case OpcodeJALR:
		return OpJALR
	case OpcodeSystem:
		return OpECALL

	case OpcodeBranch:
		switch funct3 {
		case 0b000:
			return OpBEQ
		case 0b001:
			return OpBNE
		case 0b100:
			return OpBLT
		case 0b101:
			return OpBGE
		case 0b110:
			return OpBLTU
		case 0b111:
			return OpBGEU
		}

	case OpcodeStore:
		switch funct3 {
		case 0b000:
			return OpSB
		case 0b001:
			return OpSH
		case 0b010:
			return OpSW
		}

	case OpcodeLoad:
		switch funct3 {
		case 0b000:
			return OpLB
		case 0b001:
			return OpLH
		case 0b010:
			return OpLW
		case 0b100:
			return OpLBU
		case 0b101:
			return OpLHU
		}

	case OpcodeOpImm:
		switch funct3 {
		case 0b000:
			return OpADDI
		case 0b001:
			return OpSLLI
		case 0b010:
			return OpSLTI
		case 0b011:
			return OpSLTIU
		case 0b100:
			return OpXORI
		case 0b101:
			if alt {
				return OpSRAI
			}
			return OpSRLI
		case 0b110:
			return OpORI
		case 0b111:
			return OpANDI
		}

	case OpcodeOp:
		switch funct3 {
		case 0b000:
			if alt {
				return OpSUB
			}
			return OpADD
		case 0b001:
			return OpSLL
		case 0b010:
			return OpSLT
		case 0b011:
			return OpSLTU
		case 0b100:
			return OpXOR
		case 0b101:
			if alt {
				return OpSRA
			}
			return OpSRL
		case 0b110:
			return OpOR
		case 0b111:
			return OpAND
		}
	}

	return OpUnknown
}
