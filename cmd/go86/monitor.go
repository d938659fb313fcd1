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

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/go86project/go86/emulator/memory"
	"github.com/go86project/go86/emulator/processor"
	"github.com/go86project/go86/emulator/processor/cpu"
)

const monitorHelp = `commands:
  s [n]          step one (or n) instructions
  g              run until halt or error
  r              show registers
  d [seg:off]    disassemble 16 instructions
  x [seg:off]    dump 128 bytes of memory
  q              quit
`

// runMonitor is a small interactive debugger in the spirit of DEBUG.COM.
func runMonitor(p *cpu.CPU, mem memory.Memory) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("go86> ")
		if err != nil {
			fmt.Println()
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		switch fields[0] {
		case "s", "step":
			n := 1
			if len(fields) > 1 {
				if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
					n = v
				}
			}
			for i := 0; i < n; i++ {
				at := memory.NewAddress(p.CS, p.IP)
				inst, err := p.Step()
				fmt.Printf("%v  %v\n", at, inst)
				if err != nil {
					fmt.Println(err)
					break
				}
			}
		case "g", "go":
			if _, err := p.Run(nil); err != nil {
				if errors.Is(err, processor.ErrCPUHalt) {
					fmt.Println("halted")
				} else {
					fmt.Println(err)
				}
			}
		case "r", "regs":
			printRegisters(p.GetRegisters())
		case "d", "disasm":
			addr := memory.NewAddress(p.CS, p.IP)
			if len(fields) > 1 {
				if a, err := parseAddress(fields[1], p.CS); err == nil {
					addr = a
				} else {
					fmt.Println(err)
					continue
				}
			}
			disassemble(mem, addr, 16)
		case "x", "dump":
			addr := memory.NewAddress(p.DS, 0)
			if len(fields) > 1 {
				if a, err := parseAddress(fields[1], p.DS); err == nil {
					addr = a
				} else {
					fmt.Println(err)
					continue
				}
			}
			hexdump(mem, addr, 128)
		case "q", "quit", "exit":
			return
		default:
			fmt.Print(monitorHelp)
		}
	}
}

// parseAddress accepts "seg:off" or a bare offset in hex; a bare offset
// uses the given default segment.
func parseAddress(s string, defaultSeg uint16) (memory.Address, error) {
	seg := uint64(defaultSeg)
	var err error
	if i := strings.IndexByte(s, ':'); i >= 0 {
		if seg, err = strconv.ParseUint(s[:i], 16, 16); err != nil {
			return 0, fmt.Errorf("bad segment: %q", s[:i])
		}
		s = s[i+1:]
	}
	off, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad offset: %q", s)
	}
	return memory.NewAddress(uint16(seg), uint16(off)), nil
}

func printRegisters(r *processor.Registers) {
	fmt.Printf("AX=%04X BX=%04X CX=%04X DX=%04X SP=%04X BP=%04X SI=%04X DI=%04X\n",
		r.AX, r.BX, r.CX, r.DX, r.SP, r.BP, r.SI, r.DI)
	fmt.Printf("DS=%04X ES=%04X SS=%04X CS=%04X IP=%04X FLAGS=%04X %s\n",
		r.DS, r.ES, r.SS, r.CS, r.IP, r.Pack16(), flagString(r))
}

func flagString(r *processor.Registers) string {
	var sb strings.Builder
	for _, f := range []struct {
		set  bool
		name byte
	}{
		{r.OF, 'O'}, {r.DF, 'D'}, {r.IF, 'I'}, {r.TF, 'T'},
		{r.SF, 'S'}, {r.ZF, 'Z'}, {r.AF, 'A'}, {r.PF, 'P'}, {r.CF, 'C'},
	} {
		if f.set {
			sb.WriteByte(f.name)
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

func disassemble(mem memory.Memory, addr memory.Address, count int) {
	for i := 0; i < count; i++ {
		inst := cpu.Decode(mem, addr)
		fmt.Printf("%v  %v\n", addr, inst)
		if inst.Len == 0 {
			return
		}
		addr = addr.AddInt(int(inst.Len))
	}
}

func hexdump(mem memory.Memory, addr memory.Address, count int) {
	for i := 0; i < count; i += 16 {
		fmt.Printf("%v ", addr.AddInt(i))
		var ascii [16]byte
		for j := 0; j < 16; j++ {
			b := mem.ReadByte(addr.AddInt(i + j).Pointer())
			fmt.Printf(" %02X", b)
			if b >= 0x20 && b < 0x7F {
				ascii[j] = b
			} else {
				ascii[j] = '.'
			}
		}
		fmt.Printf("  %s\n", ascii[:])
	}
}
