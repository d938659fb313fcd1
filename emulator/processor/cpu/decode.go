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
	"github.com/go86project/go86/emulator/memory"
)

// Prefix runs longer than this decode as invalid instead of consuming the
// whole segment.
const maxPrefixBytes = 15

// Decode reads one instruction at addr. It is a pure function of memory
// contents and address: it never writes and keeps no state, so the same
// bytes always produce the same Instruction and length. Unknown encodings
// come back as OpInvalid with the raw byte, never a panic.
func Decode(m memory.Memory, addr memory.Address) Instruction {
	d := decoder{mem: m, cs: addr.Segment(), ip: addr.Offset()}
	inst := d.decode()
	inst.Len = d.count
	return inst
}

type decoder struct {
	mem    memory.Memory
	cs, ip uint16
	count  byte

	opcode   byte
	modRegRM byte
	wide     bool
}

func (d *decoder) readByte() byte {
	v := d.mem.ReadByte(memory.NewPointer(d.cs, d.ip))
	d.ip++
	d.count++
	return v
}

func (d *decoder) readWord() uint16 {
	lo := d.readByte()
	hi := d.readByte()
	return uint16(lo) | uint16(hi)<<8
}

func (d *decoder) readModRegRM() {
	d.modRegRM = d.readByte()
}

func (d *decoder) reg() byte {
	return (d.modRegRM >> 3) & 7
}

func (d *decoder) regOperand() Operand {
	if d.wide {
		return Operand{Kind: OperandReg16, Reg: d.reg()}
	}
	return Operand{Kind: OperandReg8, Reg: d.reg()}
}

func (d *decoder) segOperand() Operand {
	return Operand{Kind: OperandSegReg, Reg: d.reg() & 3}
}

// rmOperand decodes the r/m half of the ModRM byte, consuming any
// displacement. Memory operands keep their addressing-mode coordinates;
// the executor resolves them per use.
func (d *decoder) rmOperand() Operand {
	mode := d.modRegRM >> 6
	rm := d.modRegRM & 7

	if mode == 3 {
		if d.wide {
			return Operand{Kind: OperandReg16, Reg: rm}
		}
		return Operand{Kind: OperandReg8, Reg: rm}
	}

	op := Operand{Kind: OperandMem, Mode: mode, RM: rm}
	switch {
	case mode == 0 && rm == 6:
		op.Disp = d.readWord()
	case mode == 1:
		op.Disp = signExtend16(d.readByte())
	case mode == 2:
		op.Disp = d.readWord()
	}
	return op
}

// parseOperands reads ModRM and orders reg/rm per the direction bit.
func (d *decoder) parseOperands() (dst, src Operand) {
	d.readModRegRM()
	reg, rm := d.regOperand(), d.rmOperand()
	if d.opcode&2 != 0 {
		return reg, rm
	}
	return rm, reg
}

func (d *decoder) imm8Operand() Operand {
	return Operand{Kind: OperandImm8, Imm: uint16(d.readByte())}
}

func (d *decoder) imm8sOperand() Operand {
	return Operand{Kind: OperandImm8S, Imm: signExtend16(d.readByte())}
}

func (d *decoder) imm16Operand() Operand {
	return Operand{Kind: OperandImm16, Imm: d.readWord()}
}

// immOperand is imm8 or imm16 per the current width.
func (d *decoder) immOperand() Operand {
	if d.wide {
		return d.imm16Operand()
	}
	return d.imm8Operand()
}

// rel8Operand resolves a short displacement to the absolute target
// offset; the target is relative to the end of the instruction.
func (d *decoder) rel8Operand() Operand {
	disp := signExtend16(d.readByte())
	return Operand{Kind: OperandRel8, Imm: d.ip + disp}
}

func (d *decoder) rel16Operand() Operand {
	disp := d.readWord()
	return Operand{Kind: OperandRel16, Imm: d.ip + disp}
}

func (d *decoder) farOperand() Operand {
	offset := d.readWord()
	seg := d.readWord()
	return Operand{Kind: OperandFar, Seg: seg, Imm: offset}
}

func (d *decoder) accumByte() Operand {
	return Operand{Kind: OperandReg8, Reg: regAL}
}

func (d *decoder) accumWord() Operand {
	return Operand{Kind: OperandReg16, Reg: regAX}
}

func (d *decoder) accum() Operand {
	if d.wide {
		return d.accumWord()
	}
	return d.accumByte()
}

// directMem is the moffs form used by 0xA0..0xA3.
func (d *decoder) directMem() Operand {
	return Operand{Kind: OperandMem, Mode: 0, RM: 6, Disp: d.readWord()}
}

var group1Ops = [8]Op{OpAdd, OpOr, OpAdc, OpSbb, OpAnd, OpSub, OpXor, OpCmp}
var group2Ops = [8]Op{OpRol, OpRor, OpRcl, OpRcr, OpShl, OpShr, OpInvalid, OpSar}
var group3Ops = [8]Op{OpTest, OpTest, OpNot, OpNeg, OpMul, OpImul, OpDiv, OpIdiv}

func (d *decoder) invalid(inst *Instruction) {
	inst.Op = OpInvalid
	inst.Raw = d.opcode
	inst.Dst = Operand{}
	inst.Src = Operand{}
	inst.Src2 = Operand{}
}

func (d *decoder) decode() Instruction {
	var inst Instruction

loop:
	for {
		if d.count >= maxPrefixBytes {
			d.opcode = d.mem.ReadByte(memory.NewPointer(d.cs, d.ip))
			d.invalid(&inst)
			return inst
		}
		switch op := d.readByte(); op {
		case 0x26: // ES:
			inst.Seg = SegES
		case 0x2E: // CS:
			inst.Seg = SegCS
		case 0x36: // SS:
			inst.Seg = SegSS
		case 0x3E: // DS:
			inst.Seg = SegDS
		case 0xF0: // LOCK
			inst.Lock = true
		case 0xF2: // REPNE/REPNZ
			inst.Rep = RepeatNotEqual
		case 0xF3: // REP/REPE/REPZ
			inst.Rep = RepeatEqual
		default:
			d.opcode = op
			break loop
		}
	}

	inst.Raw = d.opcode
	d.wide = d.opcode&1 != 0
	inst.Wide = d.wide

	switch op := d.opcode; op {
	case 0x00, 0x01, 0x02, 0x03: // ADD r/m,r r,r/m
		inst.Op = OpAdd
		inst.Dst, inst.Src = d.parseOperands()
	case 0x04, 0x05: // ADD AL/AX,imm
		inst.Op = OpAdd
		inst.Dst, inst.Src = d.accum(), d.immOperand()
	case 0x06: // PUSH ES
		inst.Op, inst.Wide = OpPush, true
		inst.Dst = Operand{Kind: OperandSegReg, Reg: segES}
	case 0x07: // POP ES
		inst.Op, inst.Wide = OpPop, true
		inst.Dst = Operand{Kind: OperandSegReg, Reg: segES}
	case 0x08, 0x09, 0x0A, 0x0B: // OR
		inst.Op = OpOr
		inst.Dst, inst.Src = d.parseOperands()
	case 0x0C, 0x0D:
		inst.Op = OpOr
		inst.Dst, inst.Src = d.accum(), d.immOperand()
	case 0x0E: // PUSH CS
		inst.Op, inst.Wide = OpPush, true
		inst.Dst = Operand{Kind: OperandSegReg, Reg: segCS}
	case 0x10, 0x11, 0x12, 0x13: // ADC
		inst.Op = OpAdc
		inst.Dst, inst.Src = d.parseOperands()
	case 0x14, 0x15:
		inst.Op = OpAdc
		inst.Dst, inst.Src = d.accum(), d.immOperand()
	case 0x16: // PUSH SS
		inst.Op, inst.Wide = OpPush, true
		inst.Dst = Operand{Kind: OperandSegReg, Reg: segSS}
	case 0x17: // POP SS
		inst.Op, inst.Wide = OpPop, true
		inst.Dst = Operand{Kind: OperandSegReg, Reg: segSS}
	case 0x18, 0x19, 0x1A, 0x1B: // SBB
		inst.Op = OpSbb
		inst.Dst, inst.Src = d.parseOperands()
	case 0x1C, 0x1D:
		inst.Op = OpSbb
		inst.Dst, inst.Src = d.accum(), d.immOperand()
	case 0x1E: // PUSH DS
		inst.Op, inst.Wide = OpPush, true
		inst.Dst = Operand{Kind: OperandSegReg, Reg: segDS}
	case 0x1F: // POP DS
		inst.Op, inst.Wide = OpPop, true
		inst.Dst = Operand{Kind: OperandSegReg, Reg: segDS}
	case 0x20, 0x21, 0x22, 0x23: // AND
		inst.Op = OpAnd
		inst.Dst, inst.Src = d.parseOperands()
	case 0x24, 0x25:
		inst.Op = OpAnd
		inst.Dst, inst.Src = d.accum(), d.immOperand()
	case 0x27: // DAA
		inst.Op = OpDaa
	case 0x28, 0x29, 0x2A, 0x2B: // SUB
		inst.Op = OpSub
		inst.Dst, inst.Src = d.parseOperands()
	case 0x2C, 0x2D:
		inst.Op = OpSub
		inst.Dst, inst.Src = d.accum(), d.immOperand()
	case 0x2F: // DAS
		inst.Op = OpDas
	case 0x30, 0x31, 0x32, 0x33: // XOR
		inst.Op = OpXor
		inst.Dst, inst.Src = d.parseOperands()
	case 0x34, 0x35:
		inst.Op = OpXor
		inst.Dst, inst.Src = d.accum(), d.immOperand()
	case 0x37: // AAA
		inst.Op = OpAaa
	case 0x38, 0x39, 0x3A, 0x3B: // CMP
		inst.Op = OpCmp
		inst.Dst, inst.Src = d.parseOperands()
	case 0x3C, 0x3D:
		inst.Op = OpCmp
		inst.Dst, inst.Src = d.accum(), d.immOperand()
	case 0x3F: // AAS
		inst.Op = OpAas

	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47: // INC r16
		inst.Op, inst.Wide = OpInc, true
		inst.Dst = Operand{Kind: OperandReg16, Reg: op - 0x40}
	case 0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F: // DEC r16
		inst.Op, inst.Wide = OpDec, true
		inst.Dst = Operand{Kind: OperandReg16, Reg: op - 0x48}
	case 0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57: // PUSH r16
		inst.Op, inst.Wide = OpPush, true
		inst.Dst = Operand{Kind: OperandReg16, Reg: op - 0x50}
	case 0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F: // POP r16
		inst.Op, inst.Wide = OpPop, true
		inst.Dst = Operand{Kind: OperandReg16, Reg: op - 0x58}

	case 0x60: // PUSHA (80186)
		inst.Op, inst.Wide = OpPusha, true
	case 0x61: // POPA (80186)
		inst.Op, inst.Wide = OpPopa, true
	case 0x62: // BOUND r16,m16&16 (80186)
		inst.Op, inst.Wide = OpBound, true
		d.wide = true
		d.readModRegRM()
		inst.Dst = d.regOperand()
		inst.Src = d.rmOperand()
		if inst.Src.Kind != OperandMem {
			d.invalid(&inst)
		}
	case 0x68: // PUSH imm16 (80186)
		inst.Op, inst.Wide = OpPush, true
		inst.Dst = d.imm16Operand()
	case 0x69, 0x6B: // IMUL r16,r/m16,imm (80186)
		inst.Op, inst.Wide = OpImul, true
		d.wide = true
		d.readModRegRM()
		inst.Dst = d.regOperand()
		inst.Src = d.rmOperand()
		if op == 0x69 {
			inst.Src2 = d.imm16Operand()
		} else {
			inst.Src2 = d.imm8sOperand()
		}
	case 0x6A: // PUSH imm8 (80186)
		inst.Op, inst.Wide = OpPush, true
		inst.Dst = d.imm8sOperand()
	case 0x6C, 0x6D: // INSB/INSW (80186)
		inst.Op = OpIns
	case 0x6E, 0x6F: // OUTSB/OUTSW (80186)
		inst.Op = OpOuts

	case 0x70: // JO rel8
		inst.Op, inst.Dst = OpJo, d.rel8Operand()
	case 0x71: // JNO rel8
		inst.Op, inst.Dst = OpJno, d.rel8Operand()
	case 0x72: // JB/JNAE rel8
		inst.Op, inst.Dst = OpJb, d.rel8Operand()
	case 0x73: // JNB/JAE rel8
		inst.Op, inst.Dst = OpJae, d.rel8Operand()
	case 0x74: // JE/JZ rel8
		inst.Op, inst.Dst = OpJe, d.rel8Operand()
	case 0x75: // JNE/JNZ rel8
		inst.Op, inst.Dst = OpJne, d.rel8Operand()
	case 0x76: // JBE/JNA rel8
		inst.Op, inst.Dst = OpJbe, d.rel8Operand()
	case 0x77: // JNBE/JA rel8
		inst.Op, inst.Dst = OpJa, d.rel8Operand()
	case 0x78: // JS rel8
		inst.Op, inst.Dst = OpJs, d.rel8Operand()
	case 0x79: // JNS rel8
		inst.Op, inst.Dst = OpJns, d.rel8Operand()
	case 0x7A: // JP/JPE rel8
		inst.Op, inst.Dst = OpJp, d.rel8Operand()
	case 0x7B: // JNP/JPO rel8
		inst.Op, inst.Dst = OpJnp, d.rel8Operand()
	case 0x7C: // JL/JNGE rel8
		inst.Op, inst.Dst = OpJl, d.rel8Operand()
	case 0x7D: // JNL/JGE rel8
		inst.Op, inst.Dst = OpJge, d.rel8Operand()
	case 0x7E: // JLE/JNG rel8
		inst.Op, inst.Dst = OpJle, d.rel8Operand()
	case 0x7F: // JNLE/JG rel8
		inst.Op, inst.Dst = OpJg, d.rel8Operand()

	case 0x80, 0x82: // grp1 r/m8,imm8
		d.readModRegRM()
		inst.Op = group1Ops[d.reg()]
		inst.Dst = d.rmOperand()
		inst.Src = d.imm8Operand()
	case 0x81: // grp1 r/m16,imm16
		d.readModRegRM()
		inst.Op = group1Ops[d.reg()]
		inst.Dst = d.rmOperand()
		inst.Src = d.imm16Operand()
	case 0x83: // grp1 r/m16,imm8 sign-extended
		d.readModRegRM()
		inst.Op = group1Ops[d.reg()]
		inst.Dst = d.rmOperand()
		inst.Src = d.imm8sOperand()
	case 0x84, 0x85: // TEST r/m,r
		inst.Op = OpTest
		d.readModRegRM()
		inst.Dst = d.rmOperand()
		inst.Src = d.regOperand()
	case 0x86, 0x87: // XCHG r,r/m
		inst.Op = OpXchg
		d.readModRegRM()
		inst.Dst = d.regOperand()
		inst.Src = d.rmOperand()
	case 0x88, 0x89, 0x8A, 0x8B: // MOV r/m,r r,r/m
		inst.Op = OpMov
		inst.Dst, inst.Src = d.parseOperands()
	case 0x8C: // MOV r/m16,sreg
		inst.Op, inst.Wide = OpMov, true
		d.wide = true
		d.readModRegRM()
		inst.Dst = d.rmOperand()
		inst.Src = d.segOperand()
	case 0x8D: // LEA r16,m
		inst.Op, inst.Wide = OpLea, true
		d.wide = true
		d.readModRegRM()
		inst.Dst = d.regOperand()
		inst.Src = d.rmOperand()
		if inst.Src.Kind != OperandMem {
			d.invalid(&inst)
		}
	case 0x8E: // MOV sreg,r/m16
		inst.Op, inst.Wide = OpMov, true
		d.wide = true
		d.readModRegRM()
		inst.Dst = d.segOperand()
		inst.Src = d.rmOperand()
	case 0x8F: // POP r/m16
		inst.Op, inst.Wide = OpPop, true
		d.wide = true
		d.readModRegRM()
		inst.Dst = d.rmOperand()

	case 0x90: // NOP
		inst.Op = OpNop
	case 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97: // XCHG AX,r16
		inst.Op, inst.Wide = OpXchg, true
		inst.Dst = d.accumWord()
		inst.Src = Operand{Kind: OperandReg16, Reg: op - 0x90}
	case 0x98: // CBW
		inst.Op = OpCbw
	case 0x99: // CWD
		inst.Op = OpCwd
	case 0x9A: // CALL ptr16:16
		inst.Op = OpCallFar
		inst.Dst = d.farOperand()
	case 0x9B: // WAIT
		inst.Op = OpWait
	case 0x9C: // PUSHF
		inst.Op = OpPushf
	case 0x9D: // POPF
		inst.Op = OpPopf
	case 0x9E: // SAHF
		inst.Op = OpSahf
	case 0x9F: // LAHF
		inst.Op = OpLahf

	case 0xA0, 0xA1: // MOV AL/AX,[moffs]
		inst.Op = OpMov
		inst.Dst, inst.Src = d.accum(), d.directMem()
	case 0xA2, 0xA3: // MOV [moffs],AL/AX
		inst.Op = OpMov
		inst.Dst, inst.Src = d.directMem(), d.accum()
	case 0xA4, 0xA5: // MOVSB/MOVSW
		inst.Op = OpMovs
	case 0xA6, 0xA7: // CMPSB/CMPSW
		inst.Op = OpCmps
	case 0xA8, 0xA9: // TEST AL/AX,imm
		inst.Op = OpTest
		inst.Dst, inst.Src = d.accum(), d.immOperand()
	case 0xAA, 0xAB: // STOSB/STOSW
		inst.Op = OpStos
	case 0xAC, 0xAD: // LODSB/LODSW
		inst.Op = OpLods
	case 0xAE, 0xAF: // SCASB/SCASW
		inst.Op = OpScas

	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7: // MOV r8,imm8
		inst.Op, inst.Wide = OpMov, false
		inst.Dst = Operand{Kind: OperandReg8, Reg: op - 0xB0}
		inst.Src = d.imm8Operand()
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF: // MOV r16,imm16
		inst.Op, inst.Wide = OpMov, true
		inst.Dst = Operand{Kind: OperandReg16, Reg: op - 0xB8}
		inst.Src = d.imm16Operand()

	case 0xC0, 0xC1: // grp2 r/m,imm8 (80186)
		d.readModRegRM()
		inst.Op = group2Ops[d.reg()]
		inst.Dst = d.rmOperand()
		inst.Src = d.imm8Operand()
		if inst.Op == OpInvalid {
			d.invalid(&inst)
		}
	case 0xC2: // RET imm16
		inst.Op = OpRet
		inst.Dst = d.imm16Operand()
	case 0xC3: // RET
		inst.Op = OpRet
	case 0xC4: // LES r16,m16:16
		inst.Op, inst.Wide = OpLes, true
		d.wide = true
		d.readModRegRM()
		inst.Dst = d.regOperand()
		inst.Src = d.rmOperand()
		if inst.Src.Kind != OperandMem {
			d.invalid(&inst)
		}
	case 0xC5: // LDS r16,m16:16
		inst.Op, inst.Wide = OpLds, true
		d.wide = true
		d.readModRegRM()
		inst.Dst = d.regOperand()
		inst.Src = d.rmOperand()
		if inst.Src.Kind != OperandMem {
			d.invalid(&inst)
		}
	case 0xC6, 0xC7: // MOV r/m,imm
		inst.Op = OpMov
		d.readModRegRM()
		inst.Dst = d.rmOperand()
		inst.Src = d.immOperand()
	case 0xC8: // ENTER imm16,imm8 (80186)
		inst.Op = OpEnter
		inst.Dst = d.imm16Operand()
		inst.Src = d.imm8Operand()
	case 0xC9: // LEAVE (80186)
		inst.Op = OpLeave
	case 0xCA: // RETF imm16
		inst.Op = OpRetFar
		inst.Dst = d.imm16Operand()
	case 0xCB: // RETF
		inst.Op = OpRetFar
	case 0xCC: // INT 3
		inst.Op = OpInt3
	case 0xCD: // INT imm8
		inst.Op = OpInt
		inst.Dst = d.imm8Operand()
	case 0xCE: // INTO
		inst.Op = OpInto
	case 0xCF: // IRET
		inst.Op = OpIret

	case 0xD0, 0xD1: // grp2 r/m,1
		d.readModRegRM()
		inst.Op = group2Ops[d.reg()]
		inst.Dst = d.rmOperand()
		inst.Src = Operand{Kind: OperandImm8, Imm: 1}
		if inst.Op == OpInvalid {
			d.invalid(&inst)
		}
	case 0xD2, 0xD3: // grp2 r/m,CL
		d.readModRegRM()
		inst.Op = group2Ops[d.reg()]
		inst.Dst = d.rmOperand()
		inst.Src = Operand{Kind: OperandReg8, Reg: regCL}
		if inst.Op == OpInvalid {
			d.invalid(&inst)
		}
	case 0xD4: // AAM imm8
		inst.Op = OpAam
		inst.Dst = d.imm8Operand()
	case 0xD5: // AAD imm8
		inst.Op = OpAad
		inst.Dst = d.imm8Operand()
	case 0xD6: // SALC (undocumented)
		inst.Op = OpSalc
	case 0xD7: // XLAT
		inst.Op = OpXlat
	case 0xD8, 0xD9, 0xDA, 0xDB, 0xDC, 0xDD, 0xDE, 0xDF: // ESC
		inst.Op = OpEsc
		d.readModRegRM()
		inst.Src = d.rmOperand()

	case 0xE0: // LOOPNZ/NE rel8
		inst.Op, inst.Dst = OpLoopne, d.rel8Operand()
	case 0xE1: // LOOPZ/E rel8
		inst.Op, inst.Dst = OpLoope, d.rel8Operand()
	case 0xE2: // LOOP rel8
		inst.Op, inst.Dst = OpLoop, d.rel8Operand()
	case 0xE3: // JCXZ rel8
		inst.Op, inst.Dst = OpJcxz, d.rel8Operand()
	case 0xE4, 0xE5: // IN AL/AX,imm8
		inst.Op = OpIn
		inst.Dst, inst.Src = d.accum(), d.imm8Operand()
	case 0xE6, 0xE7: // OUT imm8,AL/AX
		inst.Op = OpOut
		inst.Dst, inst.Src = d.imm8Operand(), d.accum()
	case 0xE8: // CALL rel16
		inst.Op = OpCallNear
		inst.Dst = d.rel16Operand()
	case 0xE9: // JMP rel16
		inst.Op = OpJmp
		inst.Dst = d.rel16Operand()
	case 0xEA: // JMP ptr16:16
		inst.Op = OpJmpFar
		inst.Dst = d.farOperand()
	case 0xEB: // JMP rel8
		inst.Op = OpJmp
		inst.Dst = d.rel8Operand()
	case 0xEC, 0xED: // IN AL/AX,DX
		inst.Op = OpIn
		inst.Dst = d.accum()
		inst.Src = Operand{Kind: OperandReg16, Reg: regDX}
	case 0xEE, 0xEF: // OUT DX,AL/AX
		inst.Op = OpOut
		inst.Dst = Operand{Kind: OperandReg16, Reg: regDX}
		inst.Src = d.accum()

	case 0xF4: // HLT
		inst.Op = OpHlt
	case 0xF5: // CMC
		inst.Op = OpCmc
	case 0xF6: // grp3 r/m8
		d.readModRegRM()
		inst.Op = group3Ops[d.reg()]
		inst.Dst = d.rmOperand()
		if inst.Op == OpTest {
			inst.Src = d.imm8Operand()
		}
	case 0xF7: // grp3 r/m16
		d.readModRegRM()
		inst.Op = group3Ops[d.reg()]
		inst.Dst = d.rmOperand()
		if inst.Op == OpTest {
			inst.Src = d.imm16Operand()
		}
	case 0xF8: // CLC
		inst.Op = OpClc
	case 0xF9: // STC
		inst.Op = OpStc
	case 0xFA: // CLI
		inst.Op = OpCli
	case 0xFB: // STI
		inst.Op = OpSti
	case 0xFC: // CLD
		inst.Op = OpCld
	case 0xFD: // STD
		inst.Op = OpStd
	case 0xFE: // grp4 r/m8
		d.readModRegRM()
		switch d.reg() {
		case 0:
			inst.Op = OpInc
		case 1:
			inst.Op = OpDec
		default:
			d.invalid(&inst)
			return inst
		}
		inst.Dst = d.rmOperand()
	case 0xFF: // grp5 r/m16
		inst.Wide = true
		d.wide = true
		d.readModRegRM()
		rm := d.rmOperand()
		switch d.reg() {
		case 0:
			inst.Op, inst.Dst = OpInc, rm
		case 1:
			inst.Op, inst.Dst = OpDec, rm
		case 2:
			inst.Op, inst.Dst = OpCallNear, rm
		case 3:
			inst.Op, inst.Dst = OpCallFar, rm
			if rm.Kind != OperandMem {
				d.invalid(&inst)
			}
		case 4:
			inst.Op, inst.Dst = OpJmp, rm
		case 5:
			inst.Op, inst.Dst = OpJmpFar, rm
			if rm.Kind != OperandMem {
				d.invalid(&inst)
			}
		case 6:
			inst.Op, inst.Dst = OpPush, rm
		default:
			d.invalid(&inst)
		}

	default:
		d.invalid(&inst)
	}

	return inst
}

func signExtend16(v byte) uint16 {
	if v&0x80 != 0 {
		return uint16(v) | 0xFF00
	}
	return uint16(v)
}

func signExtend32(v uint16) uint32 {
	if v&0x8000 != 0 {
		return uint32(v) | 0xFFFF0000
	}
	return uint32(v)
}
