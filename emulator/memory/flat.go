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

// Flat is a contiguous guest address space. All accesses wrap modulo the
// buffer size; legacy programs rely on segment wraparound instead of
// faults.
type Flat struct {
	mem []byte
}

// NewFlat creates a zeroed address space of the given size.
func NewFlat(size int) *Flat {
	if size <= 0 || size > Size {
		size = Size
	}
	return &Flat{mem: make([]byte, size)}
}

func (f *Flat) Size() int {
	return len(f.mem)
}

// Clear zeroes the whole address space.
func (f *Flat) Clear() {
	for i := range f.mem {
		f.mem[i] = 0
	}
}

func (f *Flat) ReadByte(addr Pointer) byte {
	return f.mem[int(addr)%len(f.mem)]
}

func (f *Flat) WriteByte(addr Pointer, data byte) {
	f.mem[int(addr)%len(f.mem)] = data
}
