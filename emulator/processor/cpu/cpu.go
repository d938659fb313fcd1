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
	"errors"
	"fmt"
	"log"

	"github.com/go86project/go86/emulator/memory"
	"github.com/go86project/go86/emulator/processor"
)

// Register file indices as encoded in ModRM and short-form opcodes.
const (
	regAL = iota
	regCL
	regDL
	regBL
	regAH
	regCH
	regDH
	regBH
)

const (
	regAX = iota
	regCX
	regDX
	regBX
	regSP
	regBP
	regSI
	regDI
)

const (
	segES = iota
	segCS
	segSS
	segDS
)

// UnsupportedOpcodeError reports an opcode the CPU does not implement.
// The instruction is skipped before the error is returned, so execution
// can be resumed at the following instruction.
type UnsupportedOpcodeError struct {
	Opcode byte
	Addr   memory.Address
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("unsupported opcode 0x%02X at %v", e.Opcode, e.Addr)
}

// Condition tells Run when to stop. It is checked before each step.
type Condition func(*CPU) bool

// CPU is a real-mode 8086/80186 interpreter over a guest memory and an
// I/O port bus.
type CPU struct {
	processor.Registers

	mem memory.Memory
	io  memory.IO

	interrupts [0x100]processor.InterruptHandler
	stats      processor.Stats

	// instStart is IP at the first byte of the current instruction, for
	// faults that must leave IP pointing back at it.
	instStart uint16
}

// New creates a CPU over the given memory. A nil io gets the logging
// dummy bus.
func New(m memory.Memory, io memory.IO) *CPU {
	if io == nil {
		io = &memory.DummyIO{}
	}
	p := &CPU{mem: m, io: io}
	p.Reset()
	return p
}

// Reset restores power-on state. Execution resumes at FFFF:0 like a
// hardware reset; loaders overwrite CS:IP before running.
func (p *CPU) Reset() {
	p.Registers.Reset()
	p.CS = 0xFFFF
	p.stats = processor.Stats{}
}

func (p *CPU) GetRegisters() *processor.Registers {
	return &p.Registers
}

func (p *CPU) GetStats() processor.Stats {
	return p.stats
}

func (p *CPU) InstallInterruptHandler(num int, handler processor.InterruptHandler) error {
	if num < 0 || num > 0xFF {
		return fmt.Errorf("invalid interrupt vector: %d", num)
	}
	p.interrupts[num] = handler
	return nil
}

func (p *CPU) ReadByte(addr memory.Pointer) byte {
	p.stats.RX++
	return p.mem.ReadByte(addr & 0xFFFFF)
}

func (p *CPU) WriteByte(addr memory.Pointer, data byte) {
	p.stats.TX++
	p.mem.WriteByte(addr&0xFFFFF, data)
}

func (p *CPU) ReadWord(addr memory.Pointer) uint16 {
	return uint16(p.ReadByte(addr)) | uint16(p.ReadByte(addr+1))<<8
}

func (p *CPU) WriteWord(addr memory.Pointer, data uint16) {
	p.WriteByte(addr, byte(data&0xFF))
	p.WriteByte(addr+1, byte(data>>8))
}

func (p *CPU) InByte(port uint16) byte {
	return p.io.In(port)
}

func (p *CPU) OutByte(port uint16, data byte) {
	p.io.Out(port, data)
}

func (p *CPU) InWord(port uint16) uint16 {
	return uint16(p.InByte(port)) | uint16(p.InByte(port+1))<<8
}

func (p *CPU) OutWord(port uint16, data uint16) {
	p.OutByte(port, byte(data&0xFF))
	p.OutByte(port+1, byte(data>>8))
}

func (p *CPU) push16(v uint16) {
	p.SP -= 2
	p.WriteWord(memory.NewPointer(p.SS, p.SP), v)
}

func (p *CPU) pop16() uint16 {
	v := p.ReadWord(memory.NewPointer(p.SS, p.SP))
	p.SP += 2
	return v
}

// doInterrupt raises INT n. An installed host handler gets first refusal;
// if it declines with ErrInterruptNotHandled the CPU vectors through the
// interrupt table in guest memory like real hardware.
func (p *CPU) doInterrupt(n int) error {
	p.stats.NumInterrupts++
	if h := p.interrupts[n&0xFF]; h != nil {
		err := h.HandleInterrupt(n)
		if err == nil {
			return nil
		}
		if !errors.Is(err, processor.ErrInterruptNotHandled) {
			return err
		}
	}

	p.push16(p.Pack16())
	p.push16(p.CS)
	p.push16(p.IP)
	p.TF = false
	p.IF = false

	vector := memory.Pointer(n&0xFF) * 4
	p.IP = p.ReadWord(vector)
	p.CS = p.ReadWord(vector + 2)
	return nil
}

// divideError raises INT 0 with IP rewound to the faulting instruction,
// matching how the 8086 reports it.
func (p *CPU) divideError() error {
	p.IP = p.instStart
	return p.doInterrupt(0)
}

// Step decodes and executes one instruction. The decoded instruction is
// returned even on error. An unimplemented opcode is skipped and
// reported as *UnsupportedOpcodeError; HLT surfaces as ErrCPUHalt with
// IP left on the HLT so a resumed run stays halted.
func (p *CPU) Step() (Instruction, error) {
	trap := p.TF
	p.instStart = p.IP

	inst := Decode(p.mem, memory.NewAddress(p.CS, p.IP))
	p.IP += uint16(inst.Len)
	p.stats.NumInstructions++

	if p.Debug {
		log.Printf("%04X:%04X %v", p.CS, p.instStart, inst)
	}

	if inst.Op == OpInvalid {
		return inst, &UnsupportedOpcodeError{
			Opcode: inst.Raw,
			Addr:   memory.NewAddress(p.CS, p.instStart),
		}
	}

	var err error
	if inst.Rep != RepeatNone && isStringOp(inst.Op) {
		err = p.repeatString(&inst)
	} else {
		err = p.execute(&inst)
	}
	if err != nil {
		return inst, err
	}

	if trap && p.TF {
		err = p.doInterrupt(1)
	}
	return inst, err
}

// Run steps until the condition reports done or a step fails. A nil
// condition runs until an error. Returns the number of instructions
// stepped.
func (p *CPU) Run(until Condition) (int, error) {
	var n int
	for {
		if until != nil && until(p) {
			return n, nil
		}
		if _, err := p.Step(); err != nil {
			return n, err
		}
		n++
	}
}
