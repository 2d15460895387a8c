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

package mmio_test

import (
	"testing"

	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/mmio"
	"github.com/m33mu-go/m33mu/test"
)

type fakeUART struct {
	lastWrite uint32
	seenSec   cpu.Security
}

func (f *fakeUART) Read(offset uint32, size uint8) (uint32, bool, string) {
	if offset == 0 {
		return 0x1, true, "status: tx ready"
	}
	return 0, false, ""
}

func (f *fakeUART) Write(offset uint32, size uint8, value uint32) (bool, string) {
	if offset == 4 {
		f.lastWrite = value
		return true, ""
	}
	return false, ""
}

func TestBusDispatch(t *testing.T) {
	bus := mmio.NewBus()
	uart := &fakeUART{}
	bus.Register(mmio.Region{Base: 0x40004000, Size: 0x400, Name: "uart0", Handler: uart})

	v, ok, _ := bus.Read(cpu.NonSecure, 0x40004000, 4)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, v, uint32(0x1))

	ok, _ = bus.Write(cpu.Secure, 0x40004004, 4, 0x41)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, uart.lastWrite, uint32(0x41))

	test.ExpectEquality(t, bus.Mapped(0x40004000), true)
	test.ExpectEquality(t, bus.Mapped(0x50000000), false)

	_, ok, _ = bus.Read(cpu.Secure, 0x50000000, 4)
	test.ExpectEquality(t, ok, false)
}

func TestOverlappingRegionsPanic(t *testing.T) {
	bus := mmio.NewBus()
	bus.Register(mmio.Region{Base: 0x40004000, Size: 0x400, Name: "a", Handler: &fakeUART{}})

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on overlapping region registration")
		}
	}()
	bus.Register(mmio.Region{Base: 0x40004200, Size: 0x400, Name: "b", Handler: &fakeUART{}})
}
