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

func (p *CPU) rotSHR8(v byte) byte {
	p.CF = v&1 != 0
	return v >> 1
}

func (p *CPU) rotSAR8(v byte) byte {
	s := v & 0x80
	p.CF = v&1 != 0
	return v>>1 | s
}

func (p *CPU) rotSHL8(v byte) byte {
	p.CF = v&0x80 != 0
	return v << 1
}

func (p *CPU) rotROL8(v byte) byte {
	s := v & 0x80
	p.CF = s != 0
	return v<<1 | s>>7
}

func (p *CPU) rotROR8(v byte) byte {
	c := v & 1
	p.CF = c != 0
	return v>>1 | c<<7
}

func (p *CPU) rotRCL8(v byte) byte {
	s := v & 0x80
	v <<= 1
	if p.CF {
		v |= 1
	}
	p.CF = s != 0
	return v
}

func (p *CPU) rotRCR8(v byte) byte {
	c := v & 1
	v >>= 1
	if p.CF {
		v |= 0x80
	}
	p.CF = c != 0
	return v
}

func (p *CPU) rotSHR16(v uint16) uint16 {
	p.CF = v&1 != 0
	return v >> 1
}

func (p *CPU) rotSAR16(v uint16) uint16 {
	s := v & 0x8000
	p.CF = v&1 != 0
	return v>>1 | s
}

func (p *CPU) rotSHL16(v uint16) uint16 {
	p.CF = v&0x8000 != 0
	return v << 1
}

func (p *CPU) rotROL16(v uint16) uint16 {
	s := v & 0x8000
	p.CF = s != 0
	return v<<1 | s>>15
}

func (p *CPU) rotROR16(v uint16) uint16 {
	c := v & 1
	p.CF = c != 0
	return v>>1 | c<<15
}

func (p *CPU) rotRCL16(v uint16) uint16 {
	s := v & 0x8000
	v <<= 1
	if p.CF {
		v |= 1
	}
	p.CF = s != 0
	return v
}

func (p *CPU) rotRCR16(v uint16) uint16 {
	c := v & 1
	v >>= 1
	if p.CF {
		v |= 0x8000
	}
	p.CF = c != 0
	return v
}

// For left rotates OF is CF (after the rotate) xor the sign bit of the
// result; for right rotates it is the xor of the two top bits of the
// result. It is only architecturally defined for 1-bit counts but the
// hardware computes it for all, so so do we.
func (p *CPU) rotateOverflowLeft(sig byte) {
	p.OF = byte(b2ui16(p.CF))^sig != 0
}

func (p *CPU) rotateOverflowRight(sig2 byte) {
	p.OF = (sig2>>1)^(sig2&1) != 0
}

// shiftOrRotate8 runs one of the ROL/ROR/RCL/RCR/SHL/SHR/SAR family on an
// 8-bit value. Counts are masked to 5 bits; a masked count of zero leaves
// value and flags untouched.
func (p *CPU) shiftOrRotate8(op Op, a, b byte) byte {
	b &= 0x1F
	if b == 0 {
		return a
	}
	org := a

	for i := 0; i < int(b); i++ {
		switch op {
		case OpRol:
			a = p.rotROL8(a)
		case OpRor:
			a = p.rotROR8(a)
		case OpRcl:
			a = p.rotRCL8(a)
		case OpRcr:
			a = p.rotRCR8(a)
		case OpShl:
			a = p.rotSHL8(a)
		case OpShr:
			a = p.rotSHR8(a)
		case OpSar:
			a = p.rotSAR8(a)
		}
	}

	switch op {
	case OpRol, OpRcl:
		p.rotateOverflowLeft(a >> 7)
	case OpRor, OpRcr:
		p.rotateOverflowRight(a >> 6)
	case OpShl:
		p.OF = byte(b2ui16(p.CF)) != a>>7
		p.updateFlagsSZP8(a)
	case OpShr:
		p.OF = b == 1 && org&0x80 != 0
		p.updateFlagsSZP8(a)
	case OpSar:
		p.OF = false
		p.updateFlagsSZP8(a)
	}
	return a
}

func (p *CPU) shiftOrRotate16(op Op, a uint16, b byte) uint16 {
	b &= 0x1F
	if b == 0 {
		return a
	}
	org := a

	for i := 0; i < int(b); i++ {
		switch op {
		case OpRol:
			a = p.rotROL16(a)
		case OpRor:
			a = p.rotROR16(a)
		case OpRcl:
			a = p.rotRCL16(a)
		case OpRcr:
			a = p.rotRCR16(a)
		case OpShl:
			a = p.rotSHL16(a)
		case OpShr:
			a = p.rotSHR16(a)
		case OpSar:
			a = p.rotSAR16(a)
		}
	}

	switch op {
	case OpRol, OpRcl:
		p.rotateOverflowLeft(byte(a >> 15))
	case OpRor, OpRcr:
		p.rotateOverflowRight(byte(a >> 14))
	case OpShl:
		p.OF = b2ui16(p.CF) != a>>15
		p.updateFlagsSZP16(a)
	case OpShr:
		p.OF = b == 1 && org&0x8000 != 0
		p.updateFlagsSZP16(a)
	case OpSar:
		p.OF = false
		p.updateFlagsSZP16(a)
	}
	return a
}
