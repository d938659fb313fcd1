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

package memory

import "testing"

func TestAddress(t *testing.T) {
	a := NewAddress(0x1234, 0x5678)
	if a.Segment() != 0x1234 || a.Offset() != 0x5678 {
		t.Errorf("bad address parts: %v", a)
	}
	if p := a.Pointer(); p != 0x179B8 {
		t.Errorf("expected pointer 0x179B8, got %v", p)
	}
	if s := a.String(); s != "0x1234:0x5678" {
		t.Errorf("unexpected string: %s", s)
	}
}

func TestAddressOffsetWrap(t *testing.T) {
	a := NewAddress(0x100, 0xFFFF)
	b := a.AddInt(2)
	if b.Segment() != 0x100 || b.Offset() != 1 {
		t.Errorf("offset should wrap within the segment, got %v", b)
	}
	if c := a.AddInt(-0x10000); c != a {
		t.Errorf("full-cycle offset changed the address: %v", c)
	}
}

func TestPointerWrap(t *testing.T) {
	// FFFF:FFFF reaches past 1MB and wraps to the bottom.
	if p := NewPointer(0xFFFF, 0xFFFF); p != 0xFFEF {
		t.Errorf("expected 0xFFEF, got %v", p)
	}
	if p := NewPointer(0xF800, 0x8000); p != 0 {
		t.Errorf("expected 0, got %v", p)
	}
}

func TestPointerAliasing(t *testing.T) {
	// Distinct seg:off pairs can name the same byte.
	if NewPointer(0x1000, 0x10) != NewPointer(0x1001, 0x0) {
		t.Error("aliased addresses should share a pointer")
	}
}

func TestFlatReadWrite(t *testing.T) {
	m := NewFlat(Size)
	if m.Size() != Size {
		t.Fatalf("unexpected size: %d", m.Size())
	}

	m.WriteByte(0x12345, 0xAB)
	if v := m.ReadByte(0x12345); v != 0xAB {
		t.Errorf("expected 0xAB, got 0x%02X", v)
	}

	WriteWord(m, 0x500, 0x1234)
	if m.ReadByte(0x500) != 0x34 || m.ReadByte(0x501) != 0x12 {
		t.Error("words must be stored little-endian")
	}
	if v := ReadWord(m, 0x500); v != 0x1234 {
		t.Errorf("expected 0x1234, got 0x%04X", v)
	}

	m.Clear()
	if v := m.ReadByte(0x12345); v != 0 {
		t.Errorf("expected cleared memory, got 0x%02X", v)
	}
}

func TestFlatSizeClamp(t *testing.T) {
	if m := NewFlat(0); m.Size() != Size {
		t.Errorf("zero size should clamp to %d, got %d", Size, m.Size())
	}
	if m := NewFlat(Size * 2); m.Size() != Size {
		t.Errorf("oversize should clamp to %d, got %d", Size, m.Size())
	}
	m := NewFlat(0x1000)
	m.WriteByte(0x1001, 0xCD)
	if v := m.ReadByte(1); v != 0xCD {
		t.Error("small spaces wrap at their own size")
	}
}
