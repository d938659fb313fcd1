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

// Package loader places guest programs in memory: raw binary images,
// DOS .COM files and MZ .EXE files with relocation.
package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spf13/afero"

	"github.com/go86project/go86/emulator/memory"
	"github.com/go86project/go86/emulator/processor"
)

// PSPSegment is where the program segment prefix goes; programs load
// directly above it.
const PSPSegment = 0x0100

// LoadBinary copies a raw image into guest memory at addr and returns
// the number of bytes written. Register setup is the caller's business.
func LoadBinary(fs afero.Fs, path string, m memory.Memory, addr memory.Address) (int, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, err
	}
	for i, b := range data {
		m.WriteByte(memory.NewAddress(addr.Segment(), addr.Offset()+uint16(i)).Pointer(), b)
	}
	return len(data), nil
}

// Load places a DOS program in memory and points the registers at its
// entry. MZ executables are detected by signature; anything else loads
// as a .COM image.
func Load(fs afero.Fs, path string, m memory.Memory, r *processor.Registers) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}
	if len(data) >= 2 && data[0] == 'M' && data[1] == 'Z' {
		return loadEXE(data, m, r)
	}
	return loadCOM(data, m, r)
}

// LoadCOM loads a flat .COM image at PSP:0100 with the standard tiny
// model register setup.
func LoadCOM(fs afero.Fs, path string, m memory.Memory, r *processor.Registers) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}
	return loadCOM(data, m, r)
}

// LoadEXE loads an MZ executable, applying its relocation table.
func LoadEXE(fs afero.Fs, path string, m memory.Memory, r *processor.Registers) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}
	return loadEXE(data, m, r)
}

func writePSP(m memory.Memory, seg uint16) {
	// INT 20h at offset 0, so a near RET to the PSP terminates.
	m.WriteByte(memory.NewPointer(seg, 0), 0xCD)
	m.WriteByte(memory.NewPointer(seg, 1), 0x20)
}

func loadCOM(data []byte, m memory.Memory, r *processor.Registers) error {
	if len(data) > 0xFFFE-0x100 {
		return fmt.Errorf("COM image too large: %d bytes", len(data))
	}

	writePSP(m, PSPSegment)
	for i, b := range data {
		m.WriteByte(memory.NewPointer(PSPSegment, 0x100+uint16(i)), b)
	}

	r.CS = PSPSegment
	r.DS = PSPSegment
	r.ES = PSPSegment
	r.SS = PSPSegment
	r.IP = 0x100
	r.SP = 0xFFFE

	// The zero word at the top of the stack makes a plain RET land on
	// the INT 20h in the PSP.
	memory.WriteWord(m, memory.NewPointer(r.SS, r.SP), 0)
	return nil
}

type exeHeader struct {
	Signature        uint16
	BytesInLastPage  uint16
	Pages            uint16
	NumRelocations   uint16
	HeaderParagraphs uint16
	MinAlloc         uint16
	MaxAlloc         uint16
	InitSS           uint16
	InitSP           uint16
	Checksum         uint16
	InitIP           uint16
	InitCS           uint16
	RelocationOffset uint16
	Overlay          uint16
}

func loadEXE(data []byte, m memory.Memory, r *processor.Registers) error {
	var hdr exeHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("truncated EXE header: %w", err)
	}

	imageSize := int(hdr.Pages) * 512
	if hdr.BytesInLastPage != 0 {
		imageSize -= 512 - int(hdr.BytesInLastPage)
	}
	start := int(hdr.HeaderParagraphs) * 16
	if start > imageSize || imageSize > len(data) {
		return fmt.Errorf("EXE image size %d inconsistent with file size %d", imageSize, len(data))
	}

	writePSP(m, PSPSegment)
	loadSeg := uint16(PSPSegment + 0x10)
	base := memory.NewPointer(loadSeg, 0)
	for i, b := range data[start:imageSize] {
		m.WriteByte((base+memory.Pointer(i))&0xFFFFF, b)
	}

	// Relocation entries are far pointers into the image; each patched
	// word gets the load segment added.
	for i := 0; i < int(hdr.NumRelocations); i++ {
		entry := int(hdr.RelocationOffset) + i*4
		if entry+4 > len(data) {
			return fmt.Errorf("relocation %d outside file", i)
		}
		offset := binary.LittleEndian.Uint16(data[entry:])
		seg := binary.LittleEndian.Uint16(data[entry+2:])
		at := memory.NewPointer(loadSeg+seg, offset)
		memory.WriteWord(m, at, memory.ReadWord(m, at)+loadSeg)
	}

	r.CS = hdr.InitCS + loadSeg
	r.IP = hdr.InitIP
	r.SS = hdr.InitSS + loadSeg
	r.SP = hdr.InitSP
	r.DS = PSPSegment
	r.ES = PSPSegment
	return nil
}
