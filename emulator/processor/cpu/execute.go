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
	"github.com/go86project/go86/emulator/processor"
)

func (p *CPU) reg8Get(i byte) byte {
	switch i & 7 {
	case regAL:
		return p.AL()
	case regCL:
		return p.CL()
	case regDL:
		return p.DL()
	case regBL:
		return p.BL()
	case regAH:
		return p.AH()
	case regCH:
		return p.CH()
	case regDH:
		return p.DH()
	default:
		return p.BH()
	}
}

func (p *CPU) reg8Set(i, v byte) {
	switch i & 7 {
	case regAL:
		p.SetAL(v)
	case regCL:
		p.SetCL(v)
	case regDL:
		p.SetDL(v)
	case regBL:
		p.SetBL(v)
	case regAH:
		p.SetAH(v)
	case regCH:
		p.SetCH(v)
	case regDH:
		p.SetDH(v)
	default:
		p.SetBH(v)
	}
}

func (p *CPU) reg16p(i byte) *uint16 {
	switch i & 7 {
	case regAX:
		return &p.AX
	case regCX:
		return &p.CX
	case regDX:
		return &p.DX
	case regBX:
		return &p.BX
	case regSP:
		return &p.SP
	case regBP:
		return &p.BP
	case regSI:
		return &p.SI
	default:
		return &p.DI
	}
}

func (p *CPU) segRegP(i byte) *uint16 {
	switch i & 3 {
	case segES:
		return &p.ES
	case segCS:
		return &p.CS
	case segSS:
		return &p.SS
	default:
		return &p.DS
	}
}

// effectiveOffset computes the 16-bit offset of a memory operand from
// the addressing mode registers and displacement.
func (p *CPU) effectiveOffset(op *Operand) uint16 {
	var base uint16
	switch op.RM & 7 {
	case 0:
		base = p.BX + p.SI
	case 1:
		base = p.BX + p.DI
	case 2:
		base = p.BP + p.SI
	case 3:
		base = p.BP + p.DI
	case 4:
		base = p.SI
	case 5:
		base = p.DI
	case 6:
		if op.Mode == 0 {
			return op.Disp
		}
		base = p.BP
	default:
		base = p.BX
	}
	return base + op.Disp
}

// memSegment resolves the segment of a memory operand: an override
// prefix wins, BP-based forms default to SS, everything else to DS.
func (p *CPU) memSegment(inst *Instruction, op *Operand) uint16 {
	if inst.Seg != SegDefault {
		return *p.segRegP(byte(inst.Seg - SegES))
	}
	if op.RM == 2 || op.RM == 3 || (op.RM == 6 && op.Mode != 0) {
		return p.SS
	}
	return p.DS
}

func (p *CPU) operandPointer(inst *Instruction, op *Operand) memory.Pointer {
	return memory.NewPointer(p.memSegment(inst, op), p.effectiveOffset(op))
}

func (p *CPU) readByteOperand(inst *Instruction, op *Operand) byte {
	switch op.Kind {
	case OperandReg8:
		return p.reg8Get(op.Reg)
	case OperandImm8, OperandImm8S:
		return byte(op.Imm)
	case OperandMem:
		return p.ReadByte(p.operandPointer(inst, op))
	}
	return 0
}

func (p *CPU) writeByteOperand(inst *Instruction, op *Operand, v byte) {
	switch op.Kind {
	case OperandReg8:
		p.reg8Set(op.Reg, v)
	case OperandMem:
		p.WriteByte(p.operandPointer(inst, op), v)
	}
}

func (p *CPU) readWordOperand(inst *Instruction, op *Operand) uint16 {
	switch op.Kind {
	case OperandReg16:
		return *p.reg16p(op.Reg)
	case OperandSegReg:
		return *p.segRegP(op.Reg)
	case OperandImm8, OperandImm8S, OperandImm16, OperandRel8, OperandRel16:
		return op.Imm
	case OperandMem:
		return p.ReadWord(p.operandPointer(inst, op))
	}
	return 0
}

func (p *CPU) writeWordOperand(inst *Instruction, op *Operand, v uint16) {
	switch op.Kind {
	case OperandReg16:
		*p.reg16p(op.Reg) = v
	case OperandSegReg:
		*p.segRegP(op.Reg) = v
	case OperandMem:
		p.WriteWord(p.operandPointer(inst, op), v)
	}
}

// sourceSegment is the segment string reads come from; writes always go
// through ES and ignore overrides.
func (p *CPU) sourceSegment(inst *Instruction) uint16 {
	if inst.Seg != SegDefault {
		return *p.segRegP(byte(inst.Seg - SegES))
	}
	return p.DS
}

func (p *CPU) stringDelta(inst *Instruction) uint16 {
	d := uint16(1)
	if inst.Wide {
		d = 2
	}
	if p.DF {
		d = -d
	}
	return d
}

// execute runs a single decoded instruction, without REP looping.
func (p *CPU) execute(inst *Instruction) error {
	switch inst.Op {
	case OpAdd, OpAdc:
		carry := uint32(0)
		if inst.Op == OpAdc {
			carry = b2ui32(p.CF)
		}
		if inst.Wide {
			a, b := uint32(p.readWordOperand(inst, &inst.Dst)), uint32(p.readWordOperand(inst, &inst.Src))
			res := a + b + carry
			p.writeWordOperand(inst, &inst.Dst, uint16(res))
			p.updateFlagsSZP16(uint16(res))
			p.updateFlagsOACAdd(true, res, a, b)
		} else {
			a, b := uint32(p.readByteOperand(inst, &inst.Dst)), uint32(p.readByteOperand(inst, &inst.Src))
			res := a + b + carry
			p.writeByteOperand(inst, &inst.Dst, byte(res))
			p.updateFlagsSZP8(byte(res))
			p.updateFlagsOACAdd(false, res, a, b)
		}

	case OpSub, OpSbb, OpCmp:
		carry := uint32(0)
		if inst.Op == OpSbb {
			carry = b2ui32(p.CF)
		}
		if inst.Wide {
			a, b := uint32(p.readWordOperand(inst, &inst.Dst)), uint32(p.readWordOperand(inst, &inst.Src))
			res := a - (b + carry)
			if inst.Op != OpCmp {
				p.writeWordOperand(inst, &inst.Dst, uint16(res))
			}
			p.updateFlagsSZP16(uint16(res))
			if inst.Op == OpSbb {
				p.updateFlagsOACSubCarry(true, res, a, b)
			} else {
				p.updateFlagsOACSub(true, res, a, b)
			}
		} else {
			a, b := uint32(p.readByteOperand(inst, &inst.Dst)), uint32(p.readByteOperand(inst, &inst.Src))
			res := a - (b + carry)
			if inst.Op != OpCmp {
				p.writeByteOperand(inst, &inst.Dst, byte(res))
			}
			p.updateFlagsSZP8(byte(res))
			if inst.Op == OpSbb {
				p.updateFlagsOACSubCarry(false, res, a, b)
			} else {
				p.updateFlagsOACSub(false, res, a, b)
			}
		}

	case OpAnd, OpOr, OpXor, OpTest:
		if inst.Wide {
			a, b := p.readWordOperand(inst, &inst.Dst), p.readWordOperand(inst, &inst.Src)
			var res uint16
			switch inst.Op {
			case OpOr:
				res = a | b
			case OpXor:
				res = a ^ b
			default:
				res = a & b
			}
			if inst.Op != OpTest {
				p.writeWordOperand(inst, &inst.Dst, res)
			}
			p.updateFlagsOSZPCLog16(res)
		} else {
			a, b := p.readByteOperand(inst, &inst.Dst), p.readByteOperand(inst, &inst.Src)
			var res byte
			switch inst.Op {
			case OpOr:
				res = a | b
			case OpXor:
				res = a ^ b
			default:
				res = a & b
			}
			if inst.Op != OpTest {
				p.writeByteOperand(inst, &inst.Dst, res)
			}
			p.updateFlagsOSZPCLog8(res)
		}

	case OpInc, OpDec:
		// CF is untouched; only OF/SF/ZF/AF/PF reflect the result.
		cf := p.CF
		if inst.Wide {
			a := uint32(p.readWordOperand(inst, &inst.Dst))
			var res uint32
			if inst.Op == OpInc {
				res = a + 1
				p.updateFlagsOACAdd(true, res, a, 1)
			} else {
				res = a - 1
				p.updateFlagsOACSub(true, res, a, 1)
			}
			p.writeWordOperand(inst, &inst.Dst, uint16(res))
			p.updateFlagsSZP16(uint16(res))
		} else {
			a := uint32(p.readByteOperand(inst, &inst.Dst))
			var res uint32
			if inst.Op == OpInc {
				res = a + 1
				p.updateFlagsOACAdd(false, res, a, 1)
			} else {
				res = a - 1
				p.updateFlagsOACSub(false, res, a, 1)
			}
			p.writeByteOperand(inst, &inst.Dst, byte(res))
			p.updateFlagsSZP8(byte(res))
		}
		p.CF = cf

	case OpNeg:
		if inst.Wide {
			a := uint32(p.readWordOperand(inst, &inst.Dst))
			res := 0 - a
			p.writeWordOperand(inst, &inst.Dst, uint16(res))
			p.updateFlagsSZP16(uint16(res))
			p.updateFlagsOACSub(true, res, 0, a)
		} else {
			a := uint32(p.readByteOperand(inst, &inst.Dst))
			res := 0 - a
			p.writeByteOperand(inst, &inst.Dst, byte(res))
			p.updateFlagsSZP8(byte(res))
			p.updateFlagsOACSub(false, res, 0, a)
		}

	case OpNot:
		if inst.Wide {
			p.writeWordOperand(inst, &inst.Dst, ^p.readWordOperand(inst, &inst.Dst))
		} else {
			p.writeByteOperand(inst, &inst.Dst, ^p.readByteOperand(inst, &inst.Dst))
		}

	case OpMul:
		if inst.Wide {
			res := uint32(p.AX) * uint32(p.readWordOperand(inst, &inst.Dst))
			p.AX = uint16(res)
			p.DX = uint16(res >> 16)
			p.updateFlagsSZP16(p.AX)
			p.CF = p.DX != 0
			p.OF = p.CF
		} else {
			res := uint16(p.AL()) * uint16(p.readByteOperand(inst, &inst.Dst))
			p.AX = res
			p.updateFlagsSZP8(byte(res))
			p.CF = p.AH() != 0
			p.OF = p.CF
		}

	case OpImul:
		p.opIMUL(inst)

	case OpDiv:
		if inst.Wide {
			v := uint32(p.readWordOperand(inst, &inst.Dst))
			if v == 0 {
				return p.divideError()
			}
			d := uint32(p.DX)<<16 | uint32(p.AX)
			if d/v > 0xFFFF {
				return p.divideError()
			}
			p.AX = uint16(d / v)
			p.DX = uint16(d % v)
		} else {
			v := uint16(p.readByteOperand(inst, &inst.Dst))
			if v == 0 {
				return p.divideError()
			}
			d := p.AX
			if d/v > 0xFF {
				return p.divideError()
			}
			p.SetAL(byte(d / v))
			p.SetAH(byte(d % v))
		}

	case OpIdiv:
		return p.opIDIV(inst)

	case OpMov:
		if inst.Wide {
			p.writeWordOperand(inst, &inst.Dst, p.readWordOperand(inst, &inst.Src))
		} else {
			p.writeByteOperand(inst, &inst.Dst, p.readByteOperand(inst, &inst.Src))
		}

	case OpXchg:
		if inst.Wide {
			a, b := p.readWordOperand(inst, &inst.Dst), p.readWordOperand(inst, &inst.Src)
			p.writeWordOperand(inst, &inst.Dst, b)
			p.writeWordOperand(inst, &inst.Src, a)
		} else {
			a, b := p.readByteOperand(inst, &inst.Dst), p.readByteOperand(inst, &inst.Src)
			p.writeByteOperand(inst, &inst.Dst, b)
			p.writeByteOperand(inst, &inst.Src, a)
		}

	case OpLea:
		*p.reg16p(inst.Dst.Reg) = p.effectiveOffset(&inst.Src)

	case OpLes, OpLds:
		addr := p.operandPointer(inst, &inst.Src)
		*p.reg16p(inst.Dst.Reg) = p.ReadWord(addr)
		if inst.Op == OpLes {
			p.ES = p.ReadWord(addr + 2)
		} else {
			p.DS = p.ReadWord(addr + 2)
		}

	case OpXlat:
		p.SetAL(p.ReadByte(memory.NewPointer(p.sourceSegment(inst), p.BX+uint16(p.AL()))))

	case OpPush:
		p.push16(p.readWordOperand(inst, &inst.Dst))
	case OpPop:
		p.writeWordOperand(inst, &inst.Dst, p.pop16())

	case OpPusha:
		sp := p.SP
		p.push16(p.AX)
		p.push16(p.CX)
		p.push16(p.DX)
		p.push16(p.BX)
		p.push16(sp)
		p.push16(p.BP)
		p.push16(p.SI)
		p.push16(p.DI)
	case OpPopa:
		p.DI = p.pop16()
		p.SI = p.pop16()
		p.BP = p.pop16()
		p.pop16() // SP slot is discarded
		p.BX = p.pop16()
		p.DX = p.pop16()
		p.CX = p.pop16()
		p.AX = p.pop16()

	case OpPushf:
		p.push16(p.Pack16())
	case OpPopf:
		p.Unpack16(p.pop16())
	case OpSahf:
		p.Unpack8(p.AH())
	case OpLahf:
		p.SetAH(p.Pack8())

	case OpJo:
		p.jumpIf(inst, p.OF)
	case OpJno:
		p.jumpIf(inst, !p.OF)
	case OpJb:
		p.jumpIf(inst, p.CF)
	case OpJae:
		p.jumpIf(inst, !p.CF)
	case OpJe:
		p.jumpIf(inst, p.ZF)
	case OpJne:
		p.jumpIf(inst, !p.ZF)
	case OpJbe:
		p.jumpIf(inst, p.CF || p.ZF)
	case OpJa:
		p.jumpIf(inst, !p.CF && !p.ZF)
	case OpJs:
		p.jumpIf(inst, p.SF)
	case OpJns:
		p.jumpIf(inst, !p.SF)
	case OpJp:
		p.jumpIf(inst, p.PF)
	case OpJnp:
		p.jumpIf(inst, !p.PF)
	case OpJl:
		p.jumpIf(inst, p.SF != p.OF)
	case OpJge:
		p.jumpIf(inst, p.SF == p.OF)
	case OpJle:
		p.jumpIf(inst, p.ZF || p.SF != p.OF)
	case OpJg:
		p.jumpIf(inst, !p.ZF && p.SF == p.OF)
	case OpJcxz:
		p.jumpIf(inst, p.CX == 0)

	case OpLoop:
		p.CX--
		p.jumpIf(inst, p.CX != 0)
	case OpLoope:
		p.CX--
		p.jumpIf(inst, p.CX != 0 && p.ZF)
	case OpLoopne:
		p.CX--
		p.jumpIf(inst, p.CX != 0 && !p.ZF)

	case OpJmp:
		p.IP = p.readWordOperand(inst, &inst.Dst)
	case OpJmpFar:
		p.jumpFar(inst)
	case OpCallNear:
		target := p.readWordOperand(inst, &inst.Dst)
		p.push16(p.IP)
		p.IP = target
	case OpCallFar:
		p.push16(p.CS)
		p.push16(p.IP)
		p.jumpFar(inst)
	case OpRet:
		n := uint16(0)
		if inst.Dst.Kind != OperandNone {
			n = inst.Dst.Imm
		}
		p.IP = p.pop16()
		p.SP += n
	case OpRetFar:
		n := uint16(0)
		if inst.Dst.Kind != OperandNone {
			n = inst.Dst.Imm
		}
		p.IP = p.pop16()
		p.CS = p.pop16()
		p.SP += n
	case OpIret:
		p.IP = p.pop16()
		p.CS = p.pop16()
		p.Unpack16(p.pop16())

	case OpInt:
		return p.doInterrupt(int(inst.Dst.Imm & 0xFF))
	case OpInt3:
		return p.doInterrupt(3)
	case OpInto:
		if p.OF {
			return p.doInterrupt(4)
		}

	case OpBound:
		addr := p.operandPointer(inst, &inst.Src)
		idx := int16(*p.reg16p(inst.Dst.Reg))
		lower := int16(p.ReadWord(addr))
		upper := int16(p.ReadWord(addr + 2))
		if idx < lower || idx > upper {
			return p.doInterrupt(5)
		}

	case OpEnter:
		alloc, nesting := inst.Dst.Imm, byte(inst.Src.Imm)&0x1F
		p.push16(p.BP)
		frame := p.SP
		if nesting > 0 {
			for i := 1; i < int(nesting); i++ {
				p.BP -= 2
				p.push16(p.ReadWord(memory.NewPointer(p.SS, p.BP)))
			}
			p.push16(frame)
		}
		p.BP = frame
		p.SP -= alloc
	case OpLeave:
		p.SP = p.BP
		p.BP = p.pop16()

	case OpRol, OpRor, OpRcl, OpRcr, OpShl, OpShr, OpSar:
		count := p.readByteOperand(inst, &inst.Src)
		if inst.Wide {
			v := p.readWordOperand(inst, &inst.Dst)
			p.writeWordOperand(inst, &inst.Dst, p.shiftOrRotate16(inst.Op, v, count))
		} else {
			v := p.readByteOperand(inst, &inst.Dst)
			p.writeByteOperand(inst, &inst.Dst, p.shiftOrRotate8(inst.Op, v, count))
		}

	case OpIn:
		port := p.readWordOperand(inst, &inst.Src)
		if inst.Wide {
			p.AX = p.InWord(port)
		} else {
			p.SetAL(p.InByte(port))
		}
	case OpOut:
		port := p.readWordOperand(inst, &inst.Dst)
		if inst.Wide {
			p.OutWord(port, p.AX)
		} else {
			p.OutByte(port, p.AL())
		}

	case OpMovs:
		src := memory.NewPointer(p.sourceSegment(inst), p.SI)
		dst := memory.NewPointer(p.ES, p.DI)
		if inst.Wide {
			p.WriteWord(dst, p.ReadWord(src))
		} else {
			p.WriteByte(dst, p.ReadByte(src))
		}
		d := p.stringDelta(inst)
		p.SI += d
		p.DI += d
	case OpCmps:
		a := memory.NewPointer(p.sourceSegment(inst), p.SI)
		b := memory.NewPointer(p.ES, p.DI)
		if inst.Wide {
			x, y := uint32(p.ReadWord(a)), uint32(p.ReadWord(b))
			res := x - y
			p.updateFlagsSZP16(uint16(res))
			p.updateFlagsOACSub(true, res, x, y)
		} else {
			x, y := uint32(p.ReadByte(a)), uint32(p.ReadByte(b))
			res := x - y
			p.updateFlagsSZP8(byte(res))
			p.updateFlagsOACSub(false, res, x, y)
		}
		d := p.stringDelta(inst)
		p.SI += d
		p.DI += d
	case OpScas:
		b := memory.NewPointer(p.ES, p.DI)
		if inst.Wide {
			x, y := uint32(p.AX), uint32(p.ReadWord(b))
			res := x - y
			p.updateFlagsSZP16(uint16(res))
			p.updateFlagsOACSub(true, res, x, y)
		} else {
			x, y := uint32(p.AL()), uint32(p.ReadByte(b))
			res := x - y
			p.updateFlagsSZP8(byte(res))
			p.updateFlagsOACSub(false, res, x, y)
		}
		p.DI += p.stringDelta(inst)
	case OpLods:
		src := memory.NewPointer(p.sourceSegment(inst), p.SI)
		if inst.Wide {
			p.AX = p.ReadWord(src)
		} else {
			p.SetAL(p.ReadByte(src))
		}
		p.SI += p.stringDelta(inst)
	case OpStos:
		dst := memory.NewPointer(p.ES, p.DI)
		if inst.Wide {
			p.WriteWord(dst, p.AX)
		} else {
			p.WriteByte(dst, p.AL())
		}
		p.DI += p.stringDelta(inst)
	case OpIns:
		dst := memory.NewPointer(p.ES, p.DI)
		if inst.Wide {
			p.WriteWord(dst, p.InWord(p.DX))
		} else {
			p.WriteByte(dst, p.InByte(p.DX))
		}
		p.DI += p.stringDelta(inst)
	case OpOuts:
		src := memory.NewPointer(p.sourceSegment(inst), p.SI)
		if inst.Wide {
			p.OutWord(p.DX, p.ReadWord(src))
		} else {
			p.OutByte(p.DX, p.ReadByte(src))
		}
		p.SI += p.stringDelta(inst)

	case OpCbw:
		p.AX = signExtend16(p.AL())
	case OpCwd:
		if p.AX&0x8000 != 0 {
			p.DX = 0xFFFF
		} else {
			p.DX = 0
		}

	case OpDaa:
		p.opDAA()
	case OpDas:
		p.opDAS()
	case OpAaa:
		p.opAAA()
	case OpAas:
		p.opAAS()
	case OpAam:
		return p.opAAM(byte(inst.Dst.Imm))
	case OpAad:
		p.opAAD(byte(inst.Dst.Imm))

	case OpSalc:
		if p.CF {
			p.SetAL(0xFF)
		} else {
			p.SetAL(0)
		}

	case OpClc:
		p.CF = false
	case OpStc:
		p.CF = true
	case OpCmc:
		p.CF = !p.CF
	case OpCld:
		p.DF = false
	case OpStd:
		p.DF = true
	case OpCli:
		p.IF = false
	case OpSti:
		p.IF = true

	case OpHlt:
		p.IP = p.instStart
		return processor.ErrCPUHalt

	case OpNop, OpWait, OpEsc:
		// ESC is treated as a no-op; there is no coprocessor on the bus.
	}
	return nil
}

func (p *CPU) jumpIf(inst *Instruction, cond bool) {
	if cond {
		p.IP = inst.Dst.Imm
	}
}

func (p *CPU) jumpFar(inst *Instruction) {
	if inst.Dst.Kind == OperandFar {
		p.CS = inst.Dst.Seg
		p.IP = inst.Dst.Imm
		return
	}
	addr := p.operandPointer(inst, &inst.Dst)
	p.IP = p.ReadWord(addr)
	p.CS = p.ReadWord(addr + 2)
}

// repeatString runs a string instruction under a REP prefix: CX counts
// iterations down to zero, and for CMPS/SCAS the ZF condition can cut
// the loop short.
func (p *CPU) repeatString(inst *Instruction) error {
	for p.CX != 0 {
		if err := p.execute(inst); err != nil {
			return err
		}
		p.CX--
		if inst.Op == OpCmps || inst.Op == OpScas {
			if inst.Rep == RepeatEqual && !p.ZF {
				break
			}
			if inst.Rep == RepeatNotEqual && p.ZF {
				break
			}
		}
	}
	return nil
}

func (p *CPU) opIMUL(inst *Instruction) {
	if inst.Src2.Kind != OperandNone {
		a := int32(int16(p.readWordOperand(inst, &inst.Src)))
		b := int32(int16(inst.Src2.Imm))
		res := a * b
		*p.reg16p(inst.Dst.Reg) = uint16(res)
		p.updateFlagsSZP16(uint16(res))
		p.CF = res != int32(int16(res))
		p.OF = p.CF
		return
	}
	if inst.Wide {
		res := int32(int16(p.AX)) * int32(int16(p.readWordOperand(inst, &inst.Dst)))
		p.AX = uint16(res)
		p.DX = uint16(uint32(res) >> 16)
		p.updateFlagsSZP16(p.AX)
		p.CF = res != int32(int16(res))
		p.OF = p.CF
	} else {
		res := int16(int8(p.AL())) * int16(int8(p.readByteOperand(inst, &inst.Dst)))
		p.AX = uint16(res)
		p.updateFlagsSZP8(byte(res))
		p.CF = res != int16(int8(res))
		p.OF = p.CF
	}
}

// opIDIV does signed division by sign/magnitude: divide the absolute
// values, then put the signs back. Quotient sign is the xor of the
// operand signs; remainder sign follows the dividend.
func (p *CPU) opIDIV(inst *Instruction) error {
	if inst.Wide {
		v := signExtend32(p.readWordOperand(inst, &inst.Dst))
		if v == 0 {
			return p.divideError()
		}
		d := uint32(p.DX)<<16 | uint32(p.AX)
		sign := (d^v)&0x80000000 != 0
		dividendNeg := d&0x80000000 != 0
		ad, av := d, v
		if dividendNeg {
			ad = -ad
		}
		if v&0x80000000 != 0 {
			av = -av
		}
		quot := ad / av
		rem := ad % av
		if quot&0xFFFF0000 != 0 {
			return p.divideError()
		}
		if sign {
			quot = -quot
		}
		if dividendNeg {
			rem = -rem
		}
		p.AX = uint16(quot)
		p.DX = uint16(rem)
	} else {
		v := uint32(signExtend16(p.readByteOperand(inst, &inst.Dst)))
		if v == 0 {
			return p.divideError()
		}
		d := uint32(p.AX)
		sign := (d^v)&0x8000 != 0
		dividendNeg := d&0x8000 != 0
		ad, av := d, v
		if dividendNeg {
			ad = (-ad) & 0xFFFF
		}
		if v&0x8000 != 0 {
			av = (-av) & 0xFFFF
		}
		quot := ad / av
		rem := ad % av
		if quot&0xFF00 != 0 {
			return p.divideError()
		}
		if sign {
			quot = (-quot) & 0xFF
		}
		if dividendNeg {
			rem = (-rem) & 0xFF
		}
		p.SetAL(byte(quot))
		p.SetAH(byte(rem))
	}
	return nil
}

func (p *CPU) opDAA() {
	if al := p.AL(); (al&0xF) > 9 || p.AF {
		v := uint16(al) + 6
		p.SetAL(byte(v))
		p.CF = v&0xFF00 != 0
		p.AF = true
	} else {
		p.AF = false
	}
	if al := p.AL(); (al&0xF0) > 0x90 || p.CF {
		p.SetAL(al + 0x60)
		p.CF = true
	} else {
		p.CF = false
	}
	p.updateFlagsSZP8(p.AL())
}

func (p *CPU) opDAS() {
	if al := p.AL(); (al&0xF) > 9 || p.AF {
		v := uint16(al) - 6
		p.SetAL(byte(v))
		p.CF = v&0xFF00 != 0
		p.AF = true
	} else {
		p.AF = false
	}
	if al := p.AL(); (al&0xF0) > 0x90 || p.CF {
		p.SetAL(al - 0x60)
		p.CF = true
	} else {
		p.CF = false
	}
	p.updateFlagsSZP8(p.AL())
}

func (p *CPU) opAAA() {
	if (p.AL()&0xF) > 9 || p.AF {
		p.AX += 0x106
		p.AF = true
		p.CF = true
	} else {
		p.AF = false
		p.CF = false
	}
	p.SetAL(p.AL() & 0xF)
}

func (p *CPU) opAAS() {
	if (p.AL()&0xF) > 9 || p.AF {
		p.AX -= 6
		p.SetAH(p.AH() - 1)
		p.AF = true
		p.CF = true
	} else {
		p.AF = false
		p.CF = false
	}
	p.SetAL(p.AL() & 0xF)
}

func (p *CPU) opAAM(base byte) error {
	if base == 0 {
		return p.divideError()
	}
	al := p.AL()
	p.SetAH(al / base)
	p.SetAL(al % base)
	p.updateFlagsSZP8(p.AL())
	return nil
}

func (p *CPU) opAAD(base byte) {
	p.SetAL(p.AL() + p.AH()*base)
	p.SetAH(0)
	p.updateFlagsSZP8(p.AL())
}
