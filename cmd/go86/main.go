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
	"log"
	"os"

	"github.com/pborman/getopt/v2"
	"github.com/spf13/afero"

	"github.com/go86project/go86/emulator/dos"
	"github.com/go86project/go86/emulator/interrupt"
	"github.com/go86project/go86/emulator/loader"
	"github.com/go86project/go86/emulator/memory"
	"github.com/go86project/go86/emulator/processor"
	"github.com/go86project/go86/emulator/processor/cpu"
)

var (
	monitorFlag = getopt.BoolLong("monitor", 'm', "start in the interactive monitor")
	traceFlag   = getopt.BoolLong("trace", 't', "log every executed instruction")
	binaryFlag  = getopt.BoolLong("binary", 'b', "load the file as a raw image at --org")
	orgFlag     = getopt.Uint16Long("org", 'o', 0x100, "load offset for raw images")
	maxFlag     = getopt.Uint64Long("max-instructions", 'n', 0, "stop after N instructions, 0 runs forever")
	helpFlag    = getopt.BoolLong("help", 'h', "display this help")
)

func main() {
	log.SetFlags(0)
	getopt.SetParameters("program")
	getopt.Parse()

	if *helpFlag {
		getopt.Usage()
		return
	}
	if getopt.NArgs() != 1 {
		getopt.Usage()
		os.Exit(2)
	}
	path := getopt.Arg(0)

	mem := memory.NewFlat(memory.Size)
	p := cpu.New(mem, nil)
	p.Debug = *traceFlag

	svc := dos.New(os.Stdout)
	disp := interrupt.NewDispatcher(p, interrupt.Fallthrough)
	if err := svc.Install(disp); err != nil {
		log.Fatal(err)
	}

	fs := afero.NewOsFs()
	if *binaryFlag {
		addr := memory.NewAddress(loader.PSPSegment, *orgFlag)
		if _, err := loader.LoadBinary(fs, path, mem, addr); err != nil {
			log.Fatal(err)
		}
		r := p.GetRegisters()
		r.CS, r.IP = loader.PSPSegment, *orgFlag
		r.DS, r.ES, r.SS = loader.PSPSegment, loader.PSPSegment, loader.PSPSegment
		r.SP = 0xFFFE
	} else if err := loader.Load(fs, path, mem, p.GetRegisters()); err != nil {
		log.Fatal(err)
	}

	if *monitorFlag {
		runMonitor(p, mem)
		return
	}

	var until cpu.Condition
	if limit := *maxFlag; limit > 0 {
		until = func(c *cpu.CPU) bool {
			return c.GetStats().NumInstructions >= limit
		}
	}

	_, err := p.Run(until)
	switch {
	case err == nil:
		// Instruction limit reached.
	case errors.Is(err, processor.ErrCPUHalt):
		os.Exit(int(svc.ExitCode()))
	default:
		log.Fatal(err)
	}
}
