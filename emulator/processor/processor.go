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

import (
	"errors"

	"github.com/go86project/go86/emulator/memory"
)

type Stats struct {
	NumInterrupts   uint32
	NumInstructions uint64
	RX, TX          uint64
}

var (
	ErrCPUHalt             = errors.New("CPU HALT")
	ErrInterruptNotHandled = errors.New("interrupt not handled")
)

// InterruptHandler intercepts INT n before the IVT is consulted. Returning
// ErrInterruptNotHandled makes the CPU vector through guest memory as real
// hardware would.
type InterruptHandler interface {
	HandleInterrupt(n int) error
}

// Processor is the seam host-supplied interrupt services program against.
// Handlers may freely mutate registers and guest memory through it.
type Processor interface {
	InByte(port uint16) byte
	OutByte(port uint16, data byte)
	InWord(port uint16) uint16
	OutWord(port uint16, data uint16)

	ReadByte(addr memory.Pointer) byte
	WriteByte(addr memory.Pointer, data byte)
	ReadWord(addr memory.Pointer) uint16
	WriteWord(addr memory.Pointer, data uint16)

	GetRegisters() *Registers
	GetStats() Stats

	InstallInterruptHandler(num int, handler InterruptHandler) error
}
