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

package interrupt_test

import (
	"errors"
	"testing"

	"github.com/go86project/go86/emulator/interrupt"
	"github.com/go86project/go86/emulator/memory"
	"github.com/go86project/go86/emulator/processor"
	"github.com/go86project/go86/emulator/processor/cpu"
)

func newCPU(code ...byte) (*cpu.CPU, *memory.Flat) {
	m := memory.NewFlat(memory.Size)
	p := cpu.New(m, nil)
	p.CS, p.IP = 0x100, 0
	p.SS, p.SP = 0x800, 0xFFFE
	for i, b := range code {
		m.WriteByte(memory.NewPointer(0x100, uint16(i)), b)
	}
	return p, m
}

func runToHalt(t *testing.T, p *cpu.CPU) {
	t.Helper()
	if _, err := p.Run(nil); !errors.Is(err, processor.ErrCPUHalt) {
		t.Fatalf("expected halt, got %v", err)
	}
}

func TestServiceDispatch(t *testing.T) {
	p, _ := newCPU(
		0xB4, 0x02, // mov ah, 2
		0xCD, 0x21, // int 0x21
		0xB4, 0x09, // mov ah, 9
		0xCD, 0x21, // int 0x21
		0xF4,
	)
	d := interrupt.NewDispatcher(p, interrupt.Fallthrough)

	var calls []byte
	for _, service := range []byte{0x02, 0x09} {
		service := service
		err := d.HandleService(0x21, service, func(processor.Processor) error {
			calls = append(calls, service)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	runToHalt(t, p)
	if len(calls) != 2 || calls[0] != 0x02 || calls[1] != 0x09 {
		t.Errorf("unexpected call order: %v", calls)
	}
}

func TestVectorCatchall(t *testing.T) {
	p, _ := newCPU(
		0xB4, 0x42, // mov ah, 0x42
		0xCD, 0x21, // int 0x21
		0xF4,
	)
	d := interrupt.NewDispatcher(p, interrupt.Fallthrough)

	serviceCalled, vectorCalled := false, false
	if err := d.HandleService(0x21, 0x02, func(processor.Processor) error {
		serviceCalled = true
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := d.Handle(0x21, func(processor.Processor) error {
		vectorCalled = true
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	runToHalt(t, p)
	if serviceCalled {
		t.Error("the AH=02 handler must not fire for AH=42")
	}
	if !vectorCalled {
		t.Error("the vector catchall should have fired")
	}
}

func TestPolicyIgnore(t *testing.T) {
	p, _ := newCPU(0xB4, 0x42, 0xCD, 0x21, 0xF4)
	d := interrupt.NewDispatcher(p, interrupt.Ignore)
	if err := d.HandleService(0x21, 0x02, func(processor.Processor) error {
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	runToHalt(t, p)
	// Ignored interrupts resume inline instead of vectoring.
	if p.IP != 4 {
		t.Errorf("expected to halt after the int, IP=0x%04X", p.IP)
	}
}

func TestPolicyFallthrough(t *testing.T) {
	p, m := newCPU(0xB4, 0x42, 0xCD, 0x21, 0xF4)
	// Guest handler at 0100:0060 halts immediately.
	memory.WriteWord(m, 0x21*4, 0x60)
	memory.WriteWord(m, 0x21*4+2, 0x100)
	m.WriteByte(memory.NewPointer(0x100, 0x60), 0xF4)

	d := interrupt.NewDispatcher(p, interrupt.Fallthrough)
	if err := d.HandleService(0x21, 0x02, func(processor.Processor) error {
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	runToHalt(t, p)
	if p.IP != 0x60 {
		t.Errorf("expected the guest handler to run, IP=0x%04X", p.IP)
	}
}

func TestPolicyRecord(t *testing.T) {
	p, m := newCPU(0xB4, 0x42, 0xCD, 0x21, 0xF4)
	memory.WriteWord(m, 0x21*4, 0x60)
	memory.WriteWord(m, 0x21*4+2, 0x100)
	m.WriteByte(memory.NewPointer(0x100, 0x60), 0xF4)

	d := interrupt.NewDispatcher(p, interrupt.Record)
	if err := d.HandleService(0x21, 0x02, func(processor.Processor) error {
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	runToHalt(t, p)
	events := d.Events()
	if len(events) != 1 {
		t.Fatalf("expected one recorded event, got %d", len(events))
	}
	if events[0].Vector != 0x21 || events[0].Service != 0x42 {
		t.Errorf("wrong event recorded: %+v", events[0])
	}
}

func TestStateTracking(t *testing.T) {
	p, _ := newCPU(0xCD, 0x42, 0xF4)
	d := interrupt.NewDispatcher(p, interrupt.Ignore)

	if d.State() != interrupt.Idle {
		t.Error("dispatcher should start idle")
	}
	var during interrupt.State
	if err := d.Handle(0x42, func(processor.Processor) error {
		during = d.State()
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	runToHalt(t, p)
	if during != interrupt.Servicing {
		t.Error("dispatcher should report Servicing inside a handler")
	}
	if d.State() != interrupt.Idle {
		t.Error("dispatcher should return to Idle")
	}
}

func TestRecursionRejected(t *testing.T) {
	p, _ := newCPU(0xCD, 0x42, 0xF4)
	d := interrupt.NewDispatcher(p, interrupt.Ignore)

	var recursive error
	if err := d.Handle(0x42, func(processor.Processor) error {
		recursive = d.HandleInterrupt(0x42)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	runToHalt(t, p)
	if recursive == nil {
		t.Error("re-entering the dispatcher should fail")
	}
}
