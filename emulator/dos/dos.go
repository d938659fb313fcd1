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

// Package dos provides just enough of the INT 20h/21h DOS services to
// run simple .COM and .EXE programs: character and string output,
// version and time queries, and program termination.
package dos

import (
	"io"
	"time"

	"github.com/go86project/go86/emulator/interrupt"
	"github.com/go86project/go86/emulator/memory"
	"github.com/go86project/go86/emulator/processor"
)

// Services is the host side of the DOS call interface. Output goes to
// the injected writer; termination surfaces as ErrCPUHalt so the run
// loop can stop cleanly.
type Services struct {
	out io.Writer
	now func() time.Time

	exited   bool
	exitCode byte
}

func New(out io.Writer) *Services {
	return &Services{out: out, now: time.Now}
}

// Install registers the supported services on the dispatcher.
func (s *Services) Install(d *interrupt.Dispatcher) error {
	if err := d.Handle(0x20, s.terminate); err != nil {
		return err
	}
	for service, fn := range map[byte]interrupt.HandlerFunc{
		0x00: s.terminate,
		0x02: s.charOut,
		0x09: s.printString,
		0x0B: s.inputStatus,
		0x2C: s.getTime,
		0x30: s.getVersion,
		0x4C: s.exit,
	} {
		if err := d.HandleService(0x21, service, fn); err != nil {
			return err
		}
	}
	return nil
}

// Exited reports whether the program terminated through a DOS call.
func (s *Services) Exited() bool {
	return s.exited
}

// ExitCode is the code passed to AH=4Ch, or zero for the other
// termination paths.
func (s *Services) ExitCode() byte {
	return s.exitCode
}

func (s *Services) terminate(processor.Processor) error {
	s.exited = true
	s.exitCode = 0
	return processor.ErrCPUHalt
}

func (s *Services) exit(p processor.Processor) error {
	s.exited = true
	s.exitCode = p.GetRegisters().AL()
	return processor.ErrCPUHalt
}

func (s *Services) charOut(p processor.Processor) error {
	r := p.GetRegisters()
	if _, err := s.out.Write([]byte{r.DL()}); err != nil {
		return err
	}
	r.SetAL(r.DL())
	return nil
}

// printString writes the '$'-terminated string at DS:DX. A runaway
// string stops at the segment boundary.
func (s *Services) printString(p processor.Processor) error {
	r := p.GetRegisters()
	for offset := r.DX; offset-r.DX < 0xFFFF; offset++ {
		ch := p.ReadByte(memory.NewPointer(r.DS, offset))
		if ch == '$' {
			break
		}
		if _, err := s.out.Write([]byte{ch}); err != nil {
			return err
		}
	}
	r.SetAL('$')
	return nil
}

func (s *Services) inputStatus(p processor.Processor) error {
	// No keyboard is attached, so there is never a character waiting.
	p.GetRegisters().SetAL(0)
	return nil
}

func (s *Services) getTime(p processor.Processor) error {
	r := p.GetRegisters()
	now := s.now()
	r.SetCH(byte(now.Hour()))
	r.SetCL(byte(now.Minute()))
	r.SetDH(byte(now.Second()))
	r.SetDL(byte(now.Nanosecond() / 10000000))
	return nil
}

func (s *Services) getVersion(p processor.Processor) error {
	r := p.GetRegisters()
	r.AX = 0x0005 // DOS 5.0
	r.BX = 0
	r.CX = 0
	return nil
}
