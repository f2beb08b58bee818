// Package asm encodes RV32I instructions. It exists to build small programs
// for tests and examples without an external toolchain.
package asm

import "encoding/binary"

// ABI register numbers.
const (
	Zero uint32 = iota
	RA
	SP
	GP
	TP
	T0
	T1
	T2
	S0
	S1
	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	S2
	S3
	S4
	S5
	S6
	S7
	S8
	S9
	S10
	S11
	T3
	T4
	T5
	T6
)

const (
	opLoad   = 0x03
	opOpImm  = 0x13
	opAUIPC  = 0x17
	opStore  = 0x23
	opOp     = 0x33
	opLUI    = 0x37
	opBranch = 0x63
	opJALR   = 0x67
	opJAL    = 0x6f
	opSystem = 0x73
)

func R(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return funct7<<25 | (rs2&0x1f)<<20 | (rs1&0x1f)<<15 | (funct3&7)<<12 | (rd&0x1f)<<7 | opcode&0x7f
}

func I(imm int32, rs1, funct3, rd, opcode uint32) uint32 {
	return (uint32(imm)&0xfff)<<20 | (rs1&0x1f)<<15 | (funct3&7)<<12 | (rd&0x1f)<<7 | opcode&0x7f
}

func S(imm int32, rs2, rs1, funct3, opcode uint32) uint32 {
	u := uint32(imm)
	return (u>>5&0x7f)<<25 | (rs2&0x1f)<<20 | (rs1&0x1f)<<15 | (funct3&7)<<12 | (u&0x1f)<<7 | opcode&0x7f
}

func B(imm int32, rs2, rs1, funct3 uint32) uint32 {
	u := uint32(imm)
	return (u>>12&1)<<31 | (u>>5&0x3f)<<25 | (rs2&0x1f)<<20 | (rs1&0x1f)<<15 |
		(funct3&7)<<12 | (u>>1&0xf)<<8 | (u>>11&1)<<7 | opBranch
}

// U encodes an upper-immediate instruction; upper is the 20-bit value
// placed in bits 31:12.
func U(upper, rd, opcode uint32) uint32 {
	return (upper&0xfffff)<<12 | (rd&0x1f)<<7 | opcode&0x7f
}

func J(imm int32, rd uint32) uint32 {
	u := uint32(imm)
	return (u>>20&1)<<31 | (u>>1&0x3ff)<<21 | (u>>11&1)<<20 | (u>>12&0xff)<<12 | (rd&0x1f)<<7 | opJAL
}

func Lui(rd, upper uint32) uint32   { return U(upper, rd, opLUI) }
func Auipc(rd, upper uint32) uint32 { return U(upper, rd, opAUIPC) }

func Jal(rd uint32, off int32) uint32       { return J(off, rd) }
func Jalr(rd, rs1 uint32, off int32) uint32 { return I(off, rs1, 0, rd, opJALR) }

func Beq(rs1, rs2 uint32, off int32) uint32  { return B(off, rs2, rs1, 0) }
func Bne(rs1, rs2 uint32, off int32) uint32  { return B(off, rs2, rs1, 1) }
func Blt(rs1, rs2 uint32, off int32) uint32  { return B(off, rs2, rs1, 4) }
func Bge(rs1, rs2 uint32, off int32) uint32  { return B(off, rs2, rs1, 5) }
func Bltu(rs1, rs2 uint32, off int32) uint32 { return B(off, rs2, rs1, 6) }
func Bgeu(rs1, rs2 uint32, off int32) uint32 { return B(off, rs2, rs1, 7) }

func Lb(rd, rs1 uint32, off int32) uint32  { return I(off, rs1, 0, rd, opLoad) }
func Lh(rd, rs1 uint32, off int32) uint32  { return I(off, rs1, 1, rd, opLoad) }
func Lw(rd, rs1 uint32, off int32) uint32  { return I(off, rs1, 2, rd, opLoad) }
func Lbu(rd, rs1 uint32, off int32) uint32 { return I(off, rs1, 4, rd, opLoad) }
func Lhu(rd, rs1 uint32, off int32) uint32 { return I(off, rs1, 5, rd, opLoad) }

func Sb(rs2, rs1 uint32, off int32) uint32 { return S(off, rs2, rs1, 0, opStore) }
func Sh(rs2, rs1 uint32, off int32) uint32 { return S(off, rs2, rs1, 1, opStore) }
func Sw(rs2, rs1 uint32, off int32) uint32 { return S(off, rs2, rs1, 2, opStore) }

func Addi(rd, rs1 uint32, imm int32) uint32  { return I(imm, rs1, 0, rd, opOpImm) }
func Slti(rd, rs1 uint32, imm int32) uint32  { return I(imm, rs1, 2, rd, opOpImm) }
func Sltiu(rd, rs1 uint32, imm int32) uint32 { return I(imm, rs1, 3, rd, opOpImm) }
func Xori(rd, rs1 uint32, imm int32) uint32  { return I(imm, rs1, 4, rd, opOpImm) }
func Ori(rd, rs1 uint32, imm int32) uint32   { return I(imm, rs1, 6, rd, opOpImm) }
func Andi(rd, rs1 uint32, imm int32) uint32  { return I(imm, rs1, 7, rd, opOpImm) }

func Slli(rd, rs1, shamt uint32) uint32 { return R(0, shamt, rs1, 1, rd, opOpImm) }
func Srli(rd, rs1, shamt uint32) uint32 { return R(0, shamt, rs1, 5, rd, opOpImm) }
func Srai(rd, rs1, shamt uint32) uint32 { return R(0x20, shamt, rs1, 5, rd, opOpImm) }

func Add(rd, rs1, rs2 uint32) uint32  { return R(0, rs2, rs1, 0, rd, opOp) }
func Sub(rd, rs1, rs2 uint32) uint32  { return R(0x20, rs2, rs1, 0, rd, opOp) }
func Sll(rd, rs1, rs2 uint32) uint32  { return R(0, rs2, rs1, 1, rd, opOp) }
func Slt(rd, rs1, rs2 uint32) uint32  { return R(0, rs2, rs1, 2, rd, opOp) }
func Sltu(rd, rs1, rs2 uint32) uint32 { return R(0, rs2, rs1, 3, rd, opOp) }
func Xor(rd, rs1, rs2 uint32) uint32  { return R(0, rs2, rs1, 4, rd, opOp) }
func Srl(rd, rs1, rs2 uint32) uint32  { return R(0, rs2, rs1, 5, rd, opOp) }
func Sra(rd, rs1, rs2 uint32) uint32  { return R(0x20, rs2, rs1, 5, rd, opOp) }
func Or(rd, rs1, rs2 uint32) uint32   { return R(0, rs2, rs1, 6, rd, opOp) }
func And(rd, rs1, rs2 uint32) uint32  { return R(0, rs2, rs1, 7, rd, opOp) }

func Ecall() uint32 { return opSystem }

// Nop is addi zero, zero, 0.
func Nop() uint32 { return Addi(Zero, Zero, 0) }

// Li loads an arbitrary 32-bit constant with lui+addi, or a single addi
// when the value fits in 12 signed bits.
func Li(rd uint32, v int32) []uint32 {
	if v >= -2048 && v < 2048 {
		return []uint32{Addi(rd, Zero, v)}
	}
	lo := int32(uint32(v)<<20) >> 20
	hi := (uint32(v) - uint32(lo)) >> 12
	if lo == 0 {
		return []uint32{Lui(rd, hi)}
	}
	return []uint32{Lui(rd, hi), Addi(rd, rd, lo)}
}

// Exit is the exit syscall sequence: li a0, 10; ecall.
func Exit() []uint32 {
	return []uint32{Addi(A0, Zero, 10), Ecall()}
}

// Program is a sequence of instruction words placed from address 0.
type Program []uint32

// Assemble flattens single words and word slices into a Program.
func Assemble(parts ...interface{}) Program {
	var p Program
	for _, part := range parts {
		switch v := part.(type) {
		case uint32:
			p = append(p, v)
		case []uint32:
			p = append(p, v...)
		case Program:
			p = append(p, v...)
		default:
			panic("asm: unsupported part type")
		}
	}
	return p
}

// Bytes returns the little-endian image of the program.
func (p Program) Bytes() []byte {
	out := make([]byte, 4*len(p))
	for i, w := range p {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}
