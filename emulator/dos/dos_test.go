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

package dos

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/go86project/go86/emulator/interrupt"
	"github.com/go86project/go86/emulator/memory"
	"github.com/go86project/go86/emulator/processor"
	"github.com/go86project/go86/emulator/processor/cpu"
)

func newSystem(t *testing.T, code ...byte) (*cpu.CPU, *memory.Flat, *Services, *bytes.Buffer) {
	t.Helper()
	m := memory.NewFlat(memory.Size)
	p := cpu.New(m, nil)
	p.CS, p.IP = 0x100, 0
	p.DS = 0x100
	p.SS, p.SP = 0x800, 0xFFFE
	for i, b := range code {
		m.WriteByte(memory.NewPointer(0x100, uint16(i)), b)
	}

	var out bytes.Buffer
	svc := New(&out)
	if err := svc.Install(interrupt.NewDispatcher(p, interrupt.Fallthrough)); err != nil {
		t.Fatal(err)
	}
	return p, m, svc, &out
}

func runProgram(t *testing.T, p *cpu.CPU) {
	t.Helper()
	if _, err := p.Run(nil); !errors.Is(err, processor.ErrCPUHalt) {
		t.Fatalf("expected termination, got %v", err)
	}
}

func TestPrintString(t *testing.T) {
	p, m, svc, out := newSystem(t,
		0xB4, 0x09, // mov ah, 9
		0xBA, 0x20, 0x00, // mov dx, 0x20
		0xCD, 0x21, // int 0x21
		0xB8, 0x05, 0x4C, // mov ax, 0x4C05
		0xCD, 0x21, // int 0x21
	)
	for i, b := range []byte("Hello, world$garbage") {
		m.WriteByte(memory.NewPointer(0x100, 0x20+uint16(i)), b)
	}

	runProgram(t, p)
	if got := out.String(); got != "Hello, world" {
		t.Errorf("unexpected output: %q", got)
	}
	if !svc.Exited() || svc.ExitCode() != 5 {
		t.Errorf("expected exit code 5, got %d (exited=%v)", svc.ExitCode(), svc.Exited())
	}
}

func TestCharOut(t *testing.T) {
	p, _, svc, out := newSystem(t,
		0xB4, 0x02, // mov ah, 2
		0xB2, 'A', // mov dl, 'A'
		0xCD, 0x21, // int 0x21
		0xB2, 'B', // mov dl, 'B'
		0xCD, 0x21, // int 0x21
		0xCD, 0x20, // int 0x20
	)
	runProgram(t, p)
	if got := out.String(); got != "AB" {
		t.Errorf("unexpected output: %q", got)
	}
	if svc.ExitCode() != 0 {
		t.Errorf("INT 20h terminates with code 0, got %d", svc.ExitCode())
	}
}

func TestGetVersion(t *testing.T) {
	p, _, _, _ := newSystem(t,
		0xB4, 0x30, // mov ah, 0x30
		0xCD, 0x21, // int 0x21
		0xF4,
	)
	runProgram(t, p)
	if p.AX != 0x0005 {
		t.Errorf("expected DOS 5.0 (AX=0x0005), got 0x%04X", p.AX)
	}
}

func TestInputStatus(t *testing.T) {
	p, _, _, _ := newSystem(t,
		0xB8, 0xFF, 0x0B, // mov ax, 0x0BFF
		0xCD, 0x21, // int 0x21
		0xF4,
	)
	runProgram(t, p)
	if p.AL() != 0 {
		t.Errorf("no input should be pending, AL=0x%02X", p.AL())
	}
}

func TestGetTime(t *testing.T) {
	p, _, svc, _ := newSystem(t,
		0xB4, 0x2C, // mov ah, 0x2C
		0xCD, 0x21, // int 0x21
		0xF4,
	)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 25, 13, 37, 42, 500000000, time.UTC)
	}

	runProgram(t, p)
	if p.CH() != 13 || p.CL() != 37 || p.DH() != 42 || p.DL() != 50 {
		t.Errorf("wrong time: CH=%d CL=%d DH=%d DL=%d", p.CH(), p.CL(), p.DH(), p.DL())
	}
}

func TestTerminateService(t *testing.T) {
	p, _, svc, _ := newSystem(t,
		0xB4, 0x00, // mov ah, 0
		0xCD, 0x21, // int 0x21
	)
	runProgram(t, p)
	if !svc.Exited() || svc.ExitCode() != 0 {
		t.Error("AH=00 must terminate with code 0")
	}
}
