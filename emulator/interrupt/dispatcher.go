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

// Package interrupt routes software interrupts raised by the guest to
// host-side service routines. Handlers register per vector, or per
// vector and AH service number for the DOS-style dispatch convention.
package interrupt

import (
	"fmt"
	"log"

	"github.com/go86project/go86/emulator/processor"
)

// State tracks whether the dispatcher is inside a handler. Handlers must
// not raise interrupts recursively through the dispatcher.
type State byte

const (
	Idle State = iota
	Servicing
)

// Policy selects what happens when no registered handler matches.
type Policy byte

const (
	// Fallthrough lets the CPU vector through the interrupt table in
	// guest memory.
	Fallthrough Policy = iota

	// Ignore swallows the interrupt as if it were serviced.
	Ignore

	// Record logs the miss and records it in Events before falling
	// through to guest memory.
	Record
)

// HandlerFunc services one interrupt. It may mutate registers and guest
// memory through the processor.
type HandlerFunc func(processor.Processor) error

// Event is one unhandled interrupt observed under the Record policy.
type Event struct {
	Vector  int
	Service byte
}

// Dispatcher multiplexes interrupt vectors over registered handlers.
// It installs itself as the CPU's handler for each vector it covers.
type Dispatcher struct {
	p      processor.Processor
	policy Policy
	state  State

	byVector  map[int]HandlerFunc
	byService map[uint16]HandlerFunc
	events    []Event
}

func NewDispatcher(p processor.Processor, policy Policy) *Dispatcher {
	return &Dispatcher{
		p:         p,
		policy:    policy,
		byVector:  make(map[int]HandlerFunc),
		byService: make(map[uint16]HandlerFunc),
	}
}

// Handle registers fn for a whole vector. Per-service handlers on the
// same vector take precedence.
func (d *Dispatcher) Handle(vector int, fn HandlerFunc) error {
	if err := d.p.InstallInterruptHandler(vector, d); err != nil {
		return err
	}
	d.byVector[vector] = fn
	return nil
}

// HandleService registers fn for one AH service number on a vector.
func (d *Dispatcher) HandleService(vector int, service byte, fn HandlerFunc) error {
	if err := d.p.InstallInterruptHandler(vector, d); err != nil {
		return err
	}
	d.byService[serviceKey(vector, service)] = fn
	return nil
}

func (d *Dispatcher) State() State {
	return d.state
}

// Events returns the unhandled interrupts recorded so far.
func (d *Dispatcher) Events() []Event {
	return d.events
}

// HandleInterrupt implements processor.InterruptHandler.
func (d *Dispatcher) HandleInterrupt(n int) error {
	if d.state == Servicing {
		return fmt.Errorf("recursive interrupt 0x%02X", n)
	}
	d.state = Servicing
	defer func() { d.state = Idle }()

	service := d.p.GetRegisters().AH()
	if fn, ok := d.byService[serviceKey(n, service)]; ok {
		return fn(d.p)
	}
	if fn, ok := d.byVector[n]; ok {
		return fn(d.p)
	}

	switch d.policy {
	case Ignore:
		return nil
	case Record:
		log.Printf("unhandled interrupt 0x%02X service 0x%02X", n, service)
		d.events = append(d.events, Event{Vector: n, Service: service})
	}
	return processor.ErrInterruptNotHandled
}

func serviceKey(vector int, service byte) uint16 {
	return uint16(vector)<<8 | uint16(service)
}
