/*
 * lc3sim - LC-3 word and instruction model.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package isa defines the LC-3 word, address, register, and instruction
// types shared by the interpreter, memory-mapped register façade, and
// control/RPC layers.
package isa

import "fmt"

// Word is an unsigned 16-bit LC-3 value.
type Word uint16

// SignedWord is the signed interpretation of a Word.
type SignedWord int16

// Addr is a memory address; the LC-3 address space is a single flat
// 16-bit range, so Addr and Word share a representation.
type Addr = Word

// Reg names one of the eight general-purpose registers. R6 is the
// stack pointer by convention; R7 holds the subroutine return address.
type Reg uint8

const (
	R0 Reg = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	NumRegs = 8
)

func (r Reg) String() string {
	if r > R7 {
		return fmt.Sprintf("R?%d", uint8(r))
	}
	return fmt.Sprintf("R%d", uint8(r))
}

// Well-known addresses.
const (
	TrapVectorTable     Addr = 0x0000
	ExceptionVectorBase Addr = 0x0100
	InterruptVectorBase Addr = 0x0180
	OSStartAddr         Addr = 0x0200
	UserProgStartAddr   Addr = 0x3000
	MMIOStart           Addr = 0xFE00
	BSPAddr             Addr = 0xFFFA
	PSRAddr             Addr = 0xFFFC
	MCRAddr             Addr = 0xFFFE

	// USERProgStartSettingAddr is the well-known location an OS image
	// leaves the desired user-program entry point in. The interpreter
	// itself does not read it.
	USERProgStartSettingAddr Addr = 0x0230
)

// SignExtend widens a value held in the low bits bits-count of a word to
// a full 16-bit two's-complement Word.
func SignExtend(value Word, bits uint) Word {
	mask := Word(1) << (bits - 1)
	value &= (Word(1) << bits) - 1
	if value&mask != 0 {
		value |= ^Word(0) << bits
	}
	return value
}

// Opcode is the 4-bit operation field occupying an instruction's top bits.
type Opcode uint8

const (
	OpBr   Opcode = 0x0
	OpAdd  Opcode = 0x1
	OpLd   Opcode = 0x2
	OpSt   Opcode = 0x3
	OpJsr  Opcode = 0x4
	OpAnd  Opcode = 0x5
	OpLdr  Opcode = 0x6
	OpStr  Opcode = 0x7
	OpRti  Opcode = 0x8
	OpNot  Opcode = 0x9
	OpLdi  Opcode = 0xA
	OpSti  Opcode = 0xB
	OpJmp  Opcode = 0xC
	OpRes  Opcode = 0xD // reserved, always illegal
	OpLea  Opcode = 0xE
	OpTrap Opcode = 0xF
)

// Kind identifies which variant of Instruction is populated; Instruction
// behaves as a Go rendering of a Rust-style tagged union: only the fields
// relevant to Kind are meaningful.
type Kind uint8

const (
	KindAddReg Kind = iota
	KindAddImm
	KindAndReg
	KindAndImm
	KindBr
	KindJmp
	KindJsr
	KindJsrr
	KindLd
	KindLdi
	KindLdr
	KindLea
	KindNot
	KindRti
	KindSt
	KindSti
	KindStr
	KindTrap
)

// Instruction is a decoded LC-3 instruction. Only the fields documented
// for Kind are populated; the rest are zero.
type Instruction struct {
	Kind Kind

	DR, SR1, SR2, SR, Base Reg

	Imm5   Word // AddImm/AndImm: sign-extended 5-bit immediate
	N, Z, P bool // Br condition bits
	PCOffset9  Word // Br/Ld/Ldi/Lea/St/Sti: sign-extended 9-bit offset
	PCOffset11 Word // Jsr: sign-extended 11-bit offset
	Offset6    Word // Ldr/Str: sign-extended 6-bit offset
	TrapVec    uint8
}

// SetsConditionCodes reports whether executing this instruction updates
// PSR.N/Z/P from the value written to its destination register.
func (in Instruction) SetsConditionCodes() bool {
	switch in.Kind {
	case KindAddReg, KindAddImm, KindAndReg, KindAndImm, KindNot, KindLd, KindLdi, KindLdr, KindLea:
		return true
	default:
		return false
	}
}

// IllegalOpcode is returned by Decode when the word does not correspond
// to any known instruction (the reserved opcode, or a JSR/JSRR bit-11
// mismatch is not possible since that bit just selects the variant).
type IllegalOpcode struct {
	Word Word
}

func (e *IllegalOpcode) Error() string {
	return fmt.Sprintf("illegal opcode in word 0x%04X", uint16(e.Word))
}

// Decode converts a raw fetched Word into an Instruction, bit-exact with
// the LC-3 ISA encoding (opcode in bits 15..12).
func Decode(w Word) (Instruction, error) {
	op := Opcode(w >> 12)
	switch op {
	case OpAdd:
		in := Instruction{Kind: KindAddReg, DR: reg(w, 9), SR1: reg(w, 6)}
		if w&0x20 != 0 {
			in.Kind = KindAddImm
			in.Imm5 = SignExtend(w&0x1F, 5)
		} else {
			in.SR2 = reg(w, 0)
		}
		return in, nil

	case OpAnd:
		in := Instruction{Kind: KindAndReg, DR: reg(w, 9), SR1: reg(w, 6)}
		if w&0x20 != 0 {
			in.Kind = KindAndImm
			in.Imm5 = SignExtend(w&0x1F, 5)
		} else {
			in.SR2 = reg(w, 0)
		}
		return in, nil

	case OpBr:
		return Instruction{
			Kind:      KindBr,
			N:         w&0x0800 != 0,
			Z:         w&0x0400 != 0,
			P:         w&0x0200 != 0,
			PCOffset9: SignExtend(w&0x1FF, 9),
		}, nil

	case OpJmp:
		return Instruction{Kind: KindJmp, Base: reg(w, 6)}, nil

	case OpJsr:
		if w&0x0800 != 0 {
			return Instruction{Kind: KindJsr, PCOffset11: SignExtend(w&0x7FF, 11)}, nil
		}
		return Instruction{Kind: KindJsrr, Base: reg(w, 6)}, nil

	case OpLd:
		return Instruction{Kind: KindLd, DR: reg(w, 9), PCOffset9: SignExtend(w&0x1FF, 9)}, nil

	case OpLdi:
		return Instruction{Kind: KindLdi, DR: reg(w, 9), PCOffset9: SignExtend(w&0x1FF, 9)}, nil

	case OpLdr:
		return Instruction{Kind: KindLdr, DR: reg(w, 9), Base: reg(w, 6), Offset6: SignExtend(w&0x3F, 6)}, nil

	case OpLea:
		return Instruction{Kind: KindLea, DR: reg(w, 9), PCOffset9: SignExtend(w&0x1FF, 9)}, nil

	case OpNot:
		if w&0x3F != 0x3F {
			return Instruction{}, &IllegalOpcode{Word: w}
		}
		return Instruction{Kind: KindNot, DR: reg(w, 9), SR: reg(w, 6)}, nil

	case OpRti:
		return Instruction{Kind: KindRti}, nil

	case OpSt:
		return Instruction{Kind: KindSt, SR: reg(w, 9), PCOffset9: SignExtend(w&0x1FF, 9)}, nil

	case OpSti:
		return Instruction{Kind: KindSti, SR: reg(w, 9), PCOffset9: SignExtend(w&0x1FF, 9)}, nil

	case OpStr:
		return Instruction{Kind: KindStr, SR: reg(w, 9), Base: reg(w, 6), Offset6: SignExtend(w&0x3F, 6)}, nil

	case OpTrap:
		return Instruction{Kind: KindTrap, TrapVec: uint8(w & 0xFF)}, nil

	default: // OpRes
		return Instruction{}, &IllegalOpcode{Word: w}
	}
}

func reg(w Word, shift uint) Reg {
	return Reg((w >> shift) & 0x7)
}
