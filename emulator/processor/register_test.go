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

import "testing"

func TestHalfRegisters(t *testing.T) {
	var r Registers

	r.AX = 0x1234
	if r.AL() != 0x34 || r.AH() != 0x12 {
		t.Error("AX halves do not match")
	}
	r.SetAL(0xCD)
	r.SetAH(0xAB)
	if r.AX != 0xABCD {
		t.Errorf("expected AX=0xABCD, got 0x%04X", r.AX)
	}

	r.BX = 0x1122
	r.SetBH(0x33)
	if r.BX != 0x3322 || r.BL() != 0x22 || r.BH() != 0x33 {
		t.Errorf("bad BX: 0x%04X", r.BX)
	}

	r.SetCL(0x55)
	r.SetCH(0x66)
	if r.CX != 0x6655 {
		t.Errorf("bad CX: 0x%04X", r.CX)
	}

	r.SetDH(0x77)
	r.SetDL(0x88)
	if r.DX != 0x7788 || r.DH() != 0x77 || r.DL() != 0x88 {
		t.Errorf("bad DX: 0x%04X", r.DX)
	}
}

func TestPackFlags(t *testing.T) {
	var f Flags

	// Bit 1 always reads as set, reserved bits as clear.
	if v := f.Pack16(); v != 0x0002 {
		t.Errorf("empty flags should pack to 0x0002, got 0x%04X", v)
	}

	f.Unpack16(0xFFFF)
	if !f.CF || !f.PF || !f.AF || !f.ZF || !f.SF || !f.TF || !f.IF || !f.DF || !f.OF {
		t.Error("all condition bits should be set")
	}
	if v := f.Pack16(); v != 0x0FD7 {
		t.Errorf("expected 0x0FD7, got 0x%04X", v)
	}

	f.Unpack16(0)
	f.CF, f.ZF, f.OF = true, true, true
	if v := f.Pack16(); v != 0x0843|0x2 {
		t.Errorf("expected 0x0843, got 0x%04X", v)
	}

	f.Unpack8(0x81)
	if !f.CF || !f.SF || f.ZF {
		t.Error("Unpack8 should only touch the low byte flags")
	}
	if !f.OF {
		t.Error("Unpack8 must leave the high byte flags alone")
	}
}

func TestSnapshot(t *testing.T) {
	var a, b Registers
	a.AX, a.IP, a.CS = 0x1313, 0x100, 0x800
	a.ZF = true
	b = a

	if a.Snapshot() != b.Snapshot() {
		t.Error("identical register files should snapshot equal")
	}

	b.CF = true
	if a.Snapshot() == b.Snapshot() {
		t.Error("flag differences must show up in the snapshot")
	}
	if s := b.Snapshot(); s.Flags != b.Pack16() {
		t.Error("snapshot flags should be the packed word")
	}

	a.Reset()
	if a.AX != 0 || a.ZF {
		t.Error("reset should clear everything")
	}
}
