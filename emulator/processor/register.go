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

package processor

// Flags holds the status word as named condition bits. The packed 16-bit
// form is derivable with Pack16; bit 1 always reads as set, the remaining
// reserved bits as clear.
type Flags struct {
	CF, PF, AF, ZF, SF,
	TF, IF, DF, OF bool
}

func (f *Flags) Pack8() byte {
	var flags byte = 0x2
	if f.CF {
		flags |= 0x001
	}
	if f.PF {
		flags |= 0x004
	}
	if f.AF {
		flags |= 0x010
	}
	if f.ZF {
		flags |= 0x040
	}
	if f.SF {
		flags |= 0x080
	}
	return flags
}

func (f *Flags) Pack16() uint16 {
	flags := uint16(f.Pack8())
	if f.TF {
		flags |= 0x100
	}
	if f.IF {
		flags |= 0x200
	}
	if f.DF {
		flags |= 0x400
	}
	if f.OF {
		flags |= 0x800
	}
	return flags
}

func (f *Flags) Unpack8(flags byte) {
	f.CF = flags&0x001 != 0
	f.PF = flags&0x004 != 0
	f.AF = flags&0x010 != 0
	f.ZF = flags&0x040 != 0
	f.SF = flags&0x080 != 0
}

func (f *Flags) Unpack16(flags uint16) {
	f.Unpack8(byte(flags & 0xFF))
	f.TF = flags&0x100 != 0
	f.IF = flags&0x200 != 0
	f.DF = flags&0x400 != 0
	f.OF = flags&0x800 != 0
}

// Registers is the full register file. The four data registers are also
// addressable as 8-bit halves through the accessor methods.
type Registers struct {
	AX, CX, DX, BX,
	SP, BP, SI, DI uint16

	ES, CS, SS, DS uint16

	IP uint16

	Flags

	Debug bool
}

func (r *Registers) Reset() {
	*r = Registers{}
}

func (r *Registers) AL() byte {
	return byte(r.AX & 0xFF)
}

func (r *Registers) AH() byte {
	return byte(r.AX >> 8)
}

func (r *Registers) SetAL(v byte) {
	r.AX = r.AX&0xFF00 | uint16(v)
}

func (r *Registers) SetAH(v byte) {
	r.AX = r.AX&0xFF | uint16(v)<<8
}

func (r *Registers) BL() byte {
	return byte(r.BX & 0xFF)
}

func (r *Registers) BH() byte {
	return byte(r.BX >> 8)
}

func (r *Registers) SetBL(v byte) {
	r.BX = r.BX&0xFF00 | uint16(v)
}

func (r *Registers) SetBH(v byte) {
	r.BX = r.BX&0xFF | uint16(v)<<8
}

func (r *Registers) CL() byte {
	return byte(r.CX & 0xFF)
}

func (r *Registers) CH() byte {
	return byte(r.CX >> 8)
}

func (r *Registers) SetCL(v byte) {
	r.CX = r.CX&0xFF00 | uint16(v)
}

func (r *Registers) SetCH(v byte) {
	r.CX = r.CX&0xFF | uint16(v)<<8
}

func (r *Registers) DL() byte {
	return byte(r.DX & 0xFF)
}

func (r *Registers) DH() byte {
	return byte(r.DX >> 8)
}

func (r *Registers) SetDL(v byte) {
	r.DX = r.DX&0xFF00 | uint16(v)
}

func (r *Registers) SetDH(v byte) {
	r.DX = r.DX&0xFF | uint16(v)<<8
}

// Snapshot is the full architectural state after a step, as a flat
// comparable value for differential testing against a reference machine.
type Snapshot struct {
	AX, CX, DX, BX,
	SP, BP, SI, DI,
	ES, CS, SS, DS,
	IP, Flags uint16
}

func (r *Registers) Snapshot() Snapshot {
	return Snapshot{
		AX: r.AX, CX: r.CX, DX: r.DX, BX: r.BX,
		SP: r.SP, BP: r.BP, SI: r.SI, DI: r.DI,
		ES: r.ES, CS: r.CS, SS: r.SS, DS: r.DS,
		IP: r.IP, Flags: r.Pack16(),
	}
}
