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

package memory_test

import (
	"testing"

	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/memory"
	"github.com/m33mu-go/m33mu/mmio"
	"github.com/m33mu-go/m33mu/test"
)

func newTestMap() *memory.Map {
	flash := memory.NewBank(0x0c000000, 0x00000000, 0x10000, false)
	ram := memory.NewBank(0x38000000, 0x20000000, 0x10000, true)
	return memory.NewMap(flash, ram, mmio.NewBus())
}

// TestRAMReadAfterWrite is the read-after-write invariant: for a writable
// RAM region, reading back what was just written yields the same value,
// masked to the access size.
func TestRAMReadAfterWrite(t *testing.T) {
	m := newTestMap()

	ok, kind, _ := m.Write(cpu.Secure, 0x38000100, 4, 0xdeadbeef)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, kind, cpu.NoFault)

	v, ok, _, _ := m.Read(cpu.Secure, 0x38000100, 4)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, v, uint32(0xdeadbeef))

	v, ok, _, _ = m.Read(cpu.Secure, 0x38000100, 1)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, v, uint32(0xef))
}

func TestRAMSharedBackingVisibleFromBothAliases(t *testing.T) {
	m := newTestMap()

	m.Write(cpu.Secure, 0x38000200, 4, 0x11223344)
	v, ok, _, _ := m.Read(cpu.NonSecure, 0x20000200, 4)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, v, uint32(0x11223344))
}

func TestFlashSplitBackingIsolated(t *testing.T) {
	m := newTestMap()
	m.FlashWrite = func(sec cpu.Security, addr uint32, size uint8, value uint32) bool { return true }

	m.Write(cpu.Secure, 0x0c000000, 4, 0xaaaaaaaa)
	v, ok, _, _ := m.Read(cpu.NonSecure, 0x00000000, 4)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, v, uint32(0)) // split backing: NS alias untouched
}

func TestFlashWriteWithoutInterceptorSilentlyDiscarded(t *testing.T) {
	m := newTestMap()
	ok, kind, _ := m.Write(cpu.Secure, 0x0c000000, 4, 0x12345678)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, kind, cpu.NoFault)

	v, _, _, _ := m.Read(cpu.Secure, 0x0c000000, 4)
	test.ExpectEquality(t, v, uint32(0))
}

func TestUnmappedAddressFaultsBusFault(t *testing.T) {
	m := newTestMap()
	_, ok, kind, cause := m.Read(cpu.Secure, 0x90000000, 4)
	test.ExpectEquality(t, ok, false)
	test.ExpectEquality(t, kind, cpu.BusFault)
	test.ExpectEquality(t, cause, cpu.CauseIBusErr)
}

type fakePeripheral struct{ value uint32 }

func (f *fakePeripheral) Read(offset uint32, size uint8) (uint32, bool, string) {
	return f.value, true, ""
}

func (f *fakePeripheral) Write(offset uint32, size uint8, value uint32) (bool, string) {
	f.value = value
	return true, ""
}

func TestMMIOUnalignedAccessFaults(t *testing.T) {
	bus := mmio.NewBus()
	bus.Register(mmio.Region{Base: 0x40000000, Size: 0x100, Name: "periph", Handler: &fakePeripheral{}})
	m := memory.NewMap(memory.NewBank(0x0c000000, 0, 0x1000, false), memory.NewBank(0x38000000, 0x20000000, 0x1000, true), bus)

	_, ok, kind, cause := m.Read(cpu.Secure, 0x40000001, 4)
	test.ExpectEquality(t, ok, false)
	test.ExpectEquality(t, kind, cpu.BusFault)
	test.ExpectEquality(t, cause, cpu.CauseUnaligned)
}

func TestMMIOPublishesActiveSecurityToHandler(t *testing.T) {
	bus := mmio.NewBus()
	seen := &securitySeeingHandler{bus: bus}
	bus.Register(mmio.Region{Base: 0x40000000, Size: 0x100, Name: "periph", Handler: seen})
	m := memory.NewMap(memory.NewBank(0x0c000000, 0, 0x1000, false), memory.NewBank(0x38000000, 0x20000000, 0x1000, true), bus)

	m.Read(cpu.NonSecure, 0x40000000, 4)
	test.ExpectEquality(t, seen.last, cpu.NonSecure)
}

type securitySeeingHandler struct {
	bus  *mmio.Bus
	last cpu.Security
}

func (h *securitySeeingHandler) Read(offset uint32, size uint8) (uint32, bool, string) {
	h.last = h.bus.ActiveSecurity()
	return 0, true, ""
}

func (h *securitySeeingHandler) Write(offset uint32, size uint8, value uint32) (bool, string) {
	return true, ""
}
