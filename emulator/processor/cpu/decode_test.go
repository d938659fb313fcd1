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
	"testing"

	"github.com/go86project/go86/emulator/memory"
)

func decodeBytes(code ...byte) Instruction {
	m := memory.NewFlat(memory.Size)
	for i, b := range code {
		m.WriteByte(memory.NewPointer(0x100, uint16(i)), b)
	}
	return Decode(m, memory.NewAddress(0x100, 0))
}

func TestDecode(t *testing.T) {
	for _, tt := range []struct {
		code []byte
		op   Op
		len  byte
		asm  string
	}{
		{[]byte{0x90}, OpNop, 1, "nop"},
		{[]byte{0xB8, 0x13, 0x13}, OpMov, 3, "mov ax, 0x1313"},
		{[]byte{0xB4, 0x09}, OpMov, 2, "mov ah, 0x09"},
		{[]byte{0x03, 0xD8}, OpAdd, 2, "add bx, ax"},
		{[]byte{0x00, 0xD8}, OpAdd, 2, "add al, bl"},
		{[]byte{0x8B, 0x1E, 0x34, 0x12}, OpMov, 4, "mov bx, word [0x1234]"},
		{[]byte{0x8A, 0x47, 0x05}, OpMov, 3, "mov al, byte [bx+0x5]"},
		{[]byte{0x89, 0x44, 0xFE}, OpMov, 3, "mov word [si-0x2], ax"},
		{[]byte{0x83, 0xC3, 0x05}, OpAdd, 3, "add bx, byte +0x05"},
		{[]byte{0x81, 0xC3, 0x00, 0x10}, OpAdd, 4, "add bx, 0x1000"},
		{[]byte{0x26, 0x8B, 0x07}, OpMov, 3, "mov ax, word [es:bx]"},
		{[]byte{0xF3, 0xA5}, OpMovs, 2, "rep movsw"},
		{[]byte{0xF2, 0xAE}, OpScas, 2, "repne scasb"},
		{[]byte{0xCD, 0x21}, OpInt, 2, "int 0x21"},
		{[]byte{0xC3}, OpRet, 1, "ret"},
		{[]byte{0xC2, 0x04, 0x00}, OpRet, 3, "ret 0x0004"},
		{[]byte{0x9A, 0x00, 0x10, 0x00, 0x20}, OpCallFar, 5, "call far 0x2000:0x1000"},
		{[]byte{0xF7, 0xE3}, OpMul, 2, "mul bx"},
		{[]byte{0xF6, 0xF3}, OpDiv, 2, "div bl"},
		{[]byte{0xD1, 0xE0}, OpShl, 2, "shl ax, 0x01"},
		{[]byte{0xD2, 0xC8}, OpRor, 2, "ror al, cl"},
		{[]byte{0xC1, 0xE0, 0x04}, OpShl, 3, "shl ax, 0x04"},
		{[]byte{0xFE, 0xC0}, OpInc, 2, "inc al"},
		{[]byte{0x40}, OpInc, 1, "inc ax"},
		{[]byte{0x4B}, OpDec, 1, "dec bx"},
		{[]byte{0x50}, OpPush, 1, "push ax"},
		{[]byte{0x1E}, OpPush, 1, "push ds"},
		{[]byte{0xFF, 0x36, 0x00, 0x02}, OpPush, 4, "push word [0x0200]"},
		{[]byte{0x8D, 0x47, 0x05}, OpLea, 3, "lea ax, word [bx+0x5]"},
		{[]byte{0xC4, 0x07}, OpLes, 2, "les ax, word [bx]"},
		{[]byte{0x68, 0x34, 0x12}, OpPush, 3, "push 0x1234"},
		{[]byte{0x6B, 0xC3, 0x10}, OpImul, 3, "imul ax, bx, byte +0x10"},
		{[]byte{0xD7}, OpXlat, 1, "xlat"},
		{[]byte{0xF4}, OpHlt, 1, "hlt"},
		{[]byte{0xD4, 0x0A}, OpAam, 2, "aam 0x0A"},
	} {
		inst := decodeBytes(tt.code...)
		if inst.Op != tt.op {
			t.Errorf("% X: expected op %v, got %v", tt.code, tt.op, inst.Op)
			continue
		}
		if inst.Len != tt.len {
			t.Errorf("% X: expected length %d, got %d", tt.code, tt.len, inst.Len)
		}
		if s := inst.String(); s != tt.asm {
			t.Errorf("% X: expected %q, got %q", tt.code, tt.asm, s)
		}
	}
}

func TestDecodeRelativeTargets(t *testing.T) {
	m := memory.NewFlat(memory.Size)
	// jmp short $ at 0100:0100 loops back on itself.
	m.WriteByte(memory.NewPointer(0x100, 0x100), 0xEB)
	m.WriteByte(memory.NewPointer(0x100, 0x101), 0xFE)
	inst := Decode(m, memory.NewAddress(0x100, 0x100))
	if inst.Op != OpJmp || inst.Dst.Imm != 0x100 {
		t.Errorf("expected absolute target 0x0100, got 0x%04X", inst.Dst.Imm)
	}

	// je +0x10 lands past the end of the instruction.
	m.WriteByte(memory.NewPointer(0x100, 0x200), 0x74)
	m.WriteByte(memory.NewPointer(0x100, 0x201), 0x10)
	inst = Decode(m, memory.NewAddress(0x100, 0x200))
	if inst.Op != OpJe || inst.Dst.Imm != 0x212 {
		t.Errorf("expected target 0x0212, got 0x%04X", inst.Dst.Imm)
	}
}

func TestDecodeInvalidOpcodes(t *testing.T) {
	for _, op := range []byte{0x0F, 0x63, 0x64, 0x65, 0x66, 0x67, 0xF1} {
		inst := decodeBytes(op, 0x90)
		if inst.Op != OpInvalid {
			t.Errorf("opcode 0x%02X should decode as invalid, got %v", op, inst.Op)
			continue
		}
		if inst.Raw != op {
			t.Errorf("opcode 0x%02X: raw byte not preserved: 0x%02X", op, inst.Raw)
		}
		if inst.Len != 1 {
			t.Errorf("opcode 0x%02X: invalid opcodes consume one byte, got %d", op, inst.Len)
		}
	}
}

func TestDecodeInvalidGroupMember(t *testing.T) {
	// grp2 /6 has no instruction.
	if inst := decodeBytes(0xD0, 0xF0); inst.Op != OpInvalid {
		t.Errorf("expected invalid, got %v", inst.Op)
	}
	// grp4 /7 has no instruction.
	if inst := decodeBytes(0xFE, 0xF8); inst.Op != OpInvalid {
		t.Errorf("expected invalid, got %v", inst.Op)
	}
}

func TestDecodePrefixRunaway(t *testing.T) {
	code := make([]byte, 20)
	for i := range code {
		code[i] = 0x26
	}
	inst := decodeBytes(code...)
	if inst.Op != OpInvalid {
		t.Errorf("unbounded prefix run should be invalid, got %v", inst.Op)
	}
}

func TestDecodePrefixes(t *testing.T) {
	inst := decodeBytes(0x2E, 0x8B, 0x07)
	if inst.Seg != SegCS {
		t.Errorf("expected CS override, got %v", inst.Seg)
	}
	inst = decodeBytes(0xF0, 0x86, 0x07)
	if !inst.Lock || inst.Op != OpXchg {
		t.Errorf("expected locked xchg, got %+v", inst)
	}
	inst = decodeBytes(0x3E, 0xF3, 0xA4)
	if inst.Seg != SegDS || inst.Rep != RepeatEqual || inst.Op != OpMovs {
		t.Errorf("stacked prefixes decoded wrong: %+v", inst)
	}
}

func TestDecodeOffsetWrap(t *testing.T) {
	m := memory.NewFlat(memory.Size)
	// The instruction stream wraps at the 64K offset boundary, not into
	// the next segment.
	m.WriteByte(memory.NewPointer(0x100, 0xFFFF), 0xB8)
	m.WriteByte(memory.NewPointer(0x100, 0x0000), 0x34)
	m.WriteByte(memory.NewPointer(0x100, 0x0001), 0x12)
	inst := Decode(m, memory.NewAddress(0x100, 0xFFFF))
	if inst.Op != OpMov || inst.Len != 3 || inst.Src.Imm != 0x1234 {
		t.Errorf("wrapped decode failed: %+v", inst)
	}
}

func TestDecodeIsPure(t *testing.T) {
	m := memory.NewFlat(memory.Size)
	code := []byte{0x81, 0xC3, 0x00, 0x10}
	for i, b := range code {
		m.WriteByte(memory.Pointer(i), b)
	}

	a := Decode(m, memory.NewAddress(0, 0))
	b := Decode(m, memory.NewAddress(0, 0))
	if a != b {
		t.Error("decoding the same bytes twice should be identical")
	}
	for i, want := range code {
		if got := m.ReadByte(memory.Pointer(i)); got != want {
			t.Fatalf("decode mutated memory at %d: 0x%02X", i, got)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	m := memory.NewFlat(memory.Size)
	code := []byte{0x26, 0x8B, 0x84, 0x34, 0x12}
	for i, v := range code {
		m.WriteByte(memory.Pointer(i), v)
	}
	addr := memory.NewAddress(0, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Decode(m, addr)
	}
}
