/*
Copyright (c) 2023-2025 The go86 authors

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

package cpu

import (
	"fmt"
	"strings"
)

// Op identifies the operation an instruction performs. New instructions
// are added as a new Op plus a dispatch arm in the executor.
type Op byte

const (
	OpInvalid Op = iota

	OpAaa
	OpAad
	OpAam
	OpAas
	OpAdc
	OpAdd
	OpAnd
	OpBound
	OpCallFar
	OpCallNear
	OpCbw
	OpClc
	OpCld
	OpCli
	OpCmc
	OpCmp
	OpCmps
	OpCwd
	OpDaa
	OpDas
	OpDec
	OpDiv
	OpEnter
	OpEsc
	OpHlt
	OpIdiv
	OpImul
	OpIn
	OpInc
	OpIns
	OpInt
	OpInt3
	OpInto
	OpIret
	OpJa
	OpJae
	OpJb
	OpJbe
	OpJcxz
	OpJe
	OpJg
	OpJge
	OpJl
	OpJle
	OpJmp
	OpJmpFar
	OpJne
	OpJno
	OpJnp
	OpJns
	OpJo
	OpJp
	OpJs
	OpLahf
	OpLds
	OpLea
	OpLeave
	OpLes
	OpLods
	OpLoop
	OpLoope
	OpLoopne
	OpMov
	OpMovs
	OpMul
	OpNeg
	OpNop
	OpNot
	OpOr
	OpOut
	OpOuts
	OpPop
	OpPopa
	OpPopf
	OpPush
	OpPusha
	OpPushf
	OpRcl
	OpRcr
	OpRet
	OpRetFar
	OpRol
	OpRor
	OpSahf
	OpSalc
	OpSar
	OpSbb
	OpScas
	OpShl
	OpShr
	OpStc
	OpStd
	OpSti
	OpStos
	OpSub
	OpTest
	OpWait
	OpXchg
	OpXlat
	OpXor

	numOps
)

var opNames = [numOps]string{
	OpInvalid:  "(invalid)",
	OpAaa:      "aaa",
	OpAad:      "aad",
	OpAam:      "aam",
	OpAas:      "aas",
	OpAdc:      "adc",
	OpAdd:      "add",
	OpAnd:      "and",
	OpBound:    "bound",
	OpCallFar:  "call far",
	OpCallNear: "call",
	OpCbw:      "cbw",
	OpClc:      "clc",
	OpCld:      "cld",
	OpCli:      "cli",
	OpCmc:      "cmc",
	OpCmp:      "cmp",
	OpCmps:     "cmps",
	OpCwd:      "cwd",
	OpDaa:      "daa",
	OpDas:      "das",
	OpDec:      "dec",
	OpDiv:      "div",
	OpEnter:    "enter",
	OpEsc:      "esc",
	OpHlt:      "hlt",
	OpIdiv:     "idiv",
	OpImul:     "imul",
	OpIn:       "in",
	OpInc:      "inc",
	OpIns:      "ins",
	OpInt:      "int",
	OpInt3:     "int3",
	OpInto:     "into",
	OpIret:     "iret",
	OpJa:       "ja",
	OpJae:      "jae",
	OpJb:       "jb",
	OpJbe:      "jbe",
	OpJcxz:     "jcxz",
	OpJe:       "je",
	OpJg:       "jg",
	OpJge:      "jge",
	OpJl:       "jl",
	OpJle:      "jle",
	OpJmp:      "jmp",
	OpJmpFar:   "jmp far",
	OpJne:      "jne",
	OpJno:      "jno",
	OpJnp:      "jnp",
	OpJns:      "jns",
	OpJo:       "jo",
	OpJp:       "jp",
	OpJs:       "js",
	OpLahf:     "lahf",
	OpLds:      "lds",
	OpLea:      "lea",
	OpLeave:    "leave",
	OpLes:      "les",
	OpLods:     "lods",
	OpLoop:     "loop",
	OpLoope:    "loope",
	OpLoopne:   "loopne",
	OpMov:      "mov",
	OpMovs:     "movs",
	OpMul:      "mul",
	OpNeg:      "neg",
	OpNop:      "nop",
	OpNot:      "not",
	OpOr:       "or",
	OpOut:      "out",
	OpOuts:     "outs",
	OpPop:      "pop",
	OpPopa:     "popa",
	OpPopf:     "popf",
	OpPush:     "push",
	OpPusha:    "pusha",
	OpPushf:    "pushf",
	OpRcl:      "rcl",
	OpRcr:      "rcr",
	OpRet:      "ret",
	OpRetFar:   "retf",
	OpRol:      "rol",
	OpRor:      "ror",
	OpSahf:     "sahf",
	OpSalc:     "salc",
	OpSar:      "sar",
	OpSbb:      "sbb",
	OpScas:     "scas",
	OpShl:      "shl",
	OpShr:      "shr",
	OpStc:      "stc",
	OpStd:      "std",
	OpSti:      "sti",
	OpStos:     "stos",
	OpSub:      "sub",
	OpTest:     "test",
	OpWait:     "wait",
	OpXchg:     "xchg",
	OpXlat:     "xlat",
	OpXor:      "xor",
}

func (o Op) String() string {
	if int(o) >= len(opNames) || opNames[o] == "" {
		return fmt.Sprintf("Op(%d)", byte(o))
	}
	return opNames[o]
}

// Segment names a segment override prefix.
type Segment byte

const (
	SegDefault Segment = iota
	SegES
	SegCS
	SegSS
	SegDS
)

var segmentNames = [5]string{"", "es", "cs", "ss", "ds"}

func (s Segment) String() string {
	return segmentNames[s]
}

// RepeatMode is the REP/REPE/REPNE prefix state.
type RepeatMode byte

const (
	RepeatNone RepeatMode = iota
	RepeatEqual
	RepeatNotEqual
)

type OperandKind byte

const (
	OperandNone OperandKind = iota

	// Reg holds the register index.
	OperandReg8
	OperandReg16
	OperandSegReg

	// Imm holds the immediate; Imm8S is a sign-extended byte immediate.
	OperandImm8
	OperandImm8S
	OperandImm16

	// Mode/RM select the addressing form, Disp the (sign-extended)
	// displacement or the direct address for mode=0 rm=6.
	OperandMem

	// Imm holds the absolute jump target within CS.
	OperandRel8
	OperandRel16

	// Seg:Imm is an immediate far pointer.
	OperandFar
)

// Operand is a coordinate into the register file or guest memory, plus
// immediates. Memory operands stay unresolved; the executor computes the
// effective address per use so segment overrides apply correctly.
type Operand struct {
	Kind OperandKind
	Reg  byte
	Mode byte
	RM   byte
	Disp uint16
	Imm  uint16
	Seg  uint16
}

// Instruction is one decoded instruction. It is produced fresh by Decode,
// consumed by the executor and never retained.
type Instruction struct {
	Op       Op
	Dst, Src Operand
	Src2     Operand

	Wide bool
	Len  byte

	Seg  Segment
	Rep  RepeatMode
	Lock bool

	// Raw is the opcode byte, kept for unhandled-opcode reporting.
	Raw byte
}

var reg8Names = [8]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}
var reg16Names = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
var segRegNames = [4]string{"es", "cs", "ss", "ds"}
var amodeNames = [8]string{"bx+si", "bx+di", "bp+si", "bp+di", "si", "di", "bp", "bx"}

func (inst *Instruction) operandString(op *Operand) string {
	switch op.Kind {
	case OperandReg8:
		return reg8Names[op.Reg&7]
	case OperandReg16:
		return reg16Names[op.Reg&7]
	case OperandSegReg:
		return segRegNames[op.Reg&3]
	case OperandImm8:
		return fmt.Sprintf("0x%02X", byte(op.Imm))
	case OperandImm8S:
		if v := int16(op.Imm); v < 0 {
			return fmt.Sprintf("byte -0x%02X", -v)
		} else {
			return fmt.Sprintf("byte +0x%02X", v)
		}
	case OperandImm16:
		return fmt.Sprintf("0x%04X", op.Imm)
	case OperandRel8, OperandRel16:
		return fmt.Sprintf("0x%04X", op.Imm)
	case OperandFar:
		return fmt.Sprintf("0x%04X:0x%04X", op.Seg, op.Imm)
	case OperandMem:
		width := "byte"
		if inst.Wide {
			width = "word"
		}
		seg := ""
		if inst.Seg != SegDefault {
			seg = inst.Seg.String() + ":"
		}
		if op.Mode == 0 && op.RM == 6 {
			return fmt.Sprintf("%s [%s0x%04X]", width, seg, op.Disp)
		}
		base := amodeNames[op.RM&7]
		switch {
		case op.Mode == 0:
			return fmt.Sprintf("%s [%s%s]", width, seg, base)
		case int16(op.Disp) < 0:
			return fmt.Sprintf("%s [%s%s-0x%X]", width, seg, base, -int16(op.Disp))
		default:
			return fmt.Sprintf("%s [%s%s+0x%X]", width, seg, base, op.Disp)
		}
	}
	return ""
}

// String renders the instruction as nasm-style assembly, usable by
// disassembler consumers without executing anything.
func (inst Instruction) String() string {
	var sb strings.Builder

	switch inst.Rep {
	case RepeatEqual:
		sb.WriteString("rep ")
	case RepeatNotEqual:
		sb.WriteString("repne ")
	}

	if inst.Op == OpInvalid {
		fmt.Fprintf(&sb, "(invalid 0x%02X)", inst.Raw)
		return sb.String()
	}

	sb.WriteString(inst.Op.String())
	if isStringOp(inst.Op) {
		if inst.Wide {
			sb.WriteString("w")
		} else {
			sb.WriteString("b")
		}
		return sb.String()
	}

	if inst.Dst.Kind != OperandNone {
		sb.WriteString(" ")
		sb.WriteString(inst.operandString(&inst.Dst))
	}
	if inst.Src.Kind != OperandNone {
		sb.WriteString(", ")
		sb.WriteString(inst.operandString(&inst.Src))
	}
	if inst.Src2.Kind != OperandNone {
		sb.WriteString(", ")
		sb.WriteString(inst.operandString(&inst.Src2))
	}
	return sb.String()
}

func isStringOp(op Op) bool {
	switch op {
	case OpMovs, OpCmps, OpScas, OpLods, OpStos, OpIns, OpOuts:
		return true
	}
	return false
}
