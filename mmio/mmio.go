// This file is part of m33mu-go.
//
// m33mu-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// m33mu-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with m33mu-go.  If not, see <https://www.gnu.org/licenses/>.

// Package mmio holds the peripheral-facing side of the memory system: a
// region registry and the dispatch that the memory map calls into once it
// has determined an address is neither flash nor RAM. Peripheral models
// themselves (UART, SPI, timers and the rest) are SoC-specific and live
// outside this module; this package only supplies the boundary they plug
// into.
package mmio

import "github.com/m33mu-go/m33mu/cpu"

// Handler is the contract a peripheral model implements to be addressable
// over MMIO, mirroring the read/write-with-comment shape used throughout
// this core's memory-facing code: ok reports whether the access was
// handled at all, and comment is a short human-readable annotation
// useful for diagnostics (empty when there's nothing worth noting).
type Handler interface {
	Read(offset uint32, size uint8) (value uint32, ok bool, comment string)
	Write(offset uint32, size uint8, value uint32) (ok bool, comment string)
}

// Region binds a Handler to an address window.
type Region struct {
	Base uint32
	Size uint32
	Name string
	Handler Handler
}

func (r Region) contains(addr uint32) bool {
	return addr >= r.Base && addr < r.Base+r.Size
}

// Bus is the registry of MMIO regions the memory map dispatches into. It
// also publishes the security state of the currently-in-flight access, the
// `active_sec` boundary peripheral handlers are allowed to read.
type Bus struct {
	regions []Region
	active  cpu.Security
}

// NewBus returns an empty region registry.
func NewBus() *Bus {
	return &Bus{}
}

// Register adds a region to the bus. It panics on overlap with an
// existing region: two MMIO regions are never allowed to overlap, and
// catching that at setup time is cheaper than debugging a silent dispatch
// ambiguity later.
func (b *Bus) Register(r Region) {
	for _, existing := range b.regions {
		if r.Base < existing.Base+existing.Size && existing.Base < r.Base+r.Size {
			panic("mmio: region " + r.Name + " overlaps " + existing.Name)
		}
	}
	b.regions = append(b.regions, r)
}

// ActiveSecurity returns the security state published for the access
// currently being dispatched. Valid only while a Read/Write call from
// this Bus is on the stack of a Handler method.
func (b *Bus) ActiveSecurity() cpu.Security {
	return b.active
}

// find returns the region containing addr, if any.
func (b *Bus) find(addr uint32) (Region, bool) {
	for _, r := range b.regions {
		if r.contains(addr) {
			return r, true
		}
	}
	return Region{}, false
}

// Mapped reports whether addr falls inside any registered region, without
// dispatching a read.
func (b *Bus) Mapped(addr uint32) bool {
	_, ok := b.find(addr)
	return ok
}

// Read dispatches a read to the region containing addr, publishing sec as
// the active security state for the duration of the call.
func (b *Bus) Read(sec cpu.Security, addr uint32, size uint8) (value uint32, ok bool, comment string) {
	r, found := b.find(addr)
	if !found {
		return 0, false, ""
	}

	b.active = sec
	defer func() { b.active = cpu.Secure }()

	return r.Handler.Read(addr-r.Base, size)
}

// Write dispatches a write to the region containing addr, publishing sec
// as the active security state for the duration of the call.
func (b *Bus) Write(sec cpu.Security, addr uint32, size uint8, value uint32) (ok bool, comment string) {
	r, found := b.find(addr)
	if !found {
		return false, ""
	}

	b.active = sec
	defer func() { b.active = cpu.Secure }()

	return r.Handler.Write(addr-r.Base, size, value)
}
