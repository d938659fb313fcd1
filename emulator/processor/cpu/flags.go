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

var parityLookup = [256]bool{
	true, false, false, true, false, true, true, false, false, true, true, false, true, false, false, true,
	false, true, true, false, true, false, false, true, true, false, false, true, false, true, true, false,
	false, true, true, false, true, false, false, true, true, false, false, true, false, true, true, false,
	true, false, false, true, false, true, true, false, false, true, true, false, true, false, false, true,
	false, true, true, false, true, false, false, true, true, false, false, true, false, true, true, false,
	true, false, false, true, false, true, true, false, false, true, true, false, true, false, false, true,
	true, false, false, true, false, true, true, false, false, true, true, false, true, false, false, true,
	false, true, true, false, true, false, false, true, true, false, false, true, false, true, true, false,
	false, true, true, false, true, false, false, true, true, false, false, true, false, true, true, false,
	true, false, false, true, false, true, true, false, false, true, true, false, true, false, false, true,
	true, false, false, true, false, true, true, false, false, true, true, false, true, false, false, true,
	false, true, true, false, true, false, false, true, true, false, false, true, false, true, true, false,
	true, false, false, true, false, true, true, false, false, true, true, false, true, false, false, true,
	false, true, true, false, true, false, false, true, true, false, false, true, false, true, true, false,
	false, true, true, false, true, false, false, true, true, false, false, true, false, true, true, false,
	true, false, false, true, false, true, true, false, false, true, true, false, true, false, false, true,
}

func (p *CPU) updateFlagsSZP8(res byte) {
	p.SF = res&0x80 != 0
	p.ZF = res == 0
	p.PF = parityLookup[res]
}

func (p *CPU) updateFlagsSZP16(res uint16) {
	p.SF = res&0x8000 != 0
	p.ZF = res == 0
	p.PF = parityLookup[res&0xFF]
}

func flagsMask(wide bool) (uint32, uint32) {
	if wide {
		return 0xFFFF0000, 0x00008000
	}
	return 0xFF00, 0x0080
}

func (p *CPU) clearFlagsOC() {
	p.CF = false
	p.OF = false
}

func (p *CPU) updateFlagsOSZPCLog8(res byte) {
	p.updateFlagsSZP8(res)
	p.clearFlagsOC()
}

func (p *CPU) updateFlagsOSZPCLog16(res uint16) {
	p.updateFlagsSZP16(res)
	p.clearFlagsOC()
}

func (p *CPU) updateFlagsOACAdd(wide bool, res, a, b uint32) {
	maskC, maskO := flagsMask(wide)
	p.CF = res&maskC != 0
	p.AF = ((a ^ b ^ res) & 0x10) == 0x10
	p.OF = ((res ^ a) & (res ^ b) & maskO) == maskO
}

func (p *CPU) updateFlagsOACSub(wide bool, res, a, b uint32) {
	maskC, maskO := flagsMask(wide)
	p.CF = res&maskC != 0
	p.AF = ((a ^ b ^ res) & 0x10) != 0
	p.OF = ((res ^ a) & (a ^ b) & maskO) != 0
}

func (p *CPU) updateFlagsOACSubCarry(wide bool, res, a, b uint32) {
	b += b2ui32(p.CF)
	p.updateFlagsOACSub(wide, res, a, b)
}

func b2ui16(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

func b2ui32(b bool) uint32 {
	return uint32(b2ui16(b))
}
