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

package peripherals_test

import (
	"testing"

	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/memory"
	"github.com/m33mu-go/m33mu/mmio"
	"github.com/m33mu-go/m33mu/nvic"
	"github.com/m33mu-go/m33mu/peripherals"
	"github.com/m33mu-go/m33mu/test"
	"github.com/m33mu-go/m33mu/trustzone"
)

func TestRNGControlRoundTrip(t *testing.T) {
	r := peripherals.NewRNG()

	ok, _ := r.Write(peripherals.RNGControl, 4, 0x1)
	test.ExpectEquality(t, ok, true)

	v, ok, _ := r.Read(peripherals.RNGControl, 4)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, v, uint32(0x1))
}

func TestRNGStatusAlwaysReady(t *testing.T) {
	r := peripherals.NewRNG()
	v, ok, _ := r.Read(peripherals.RNGStatus, 4)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, v, uint32(1))
}

func TestRNGDataWriteIgnored(t *testing.T) {
	r := peripherals.NewRNG()
	ok, comment := r.Write(peripherals.RNGData, 4, 0xffffffff)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, comment != "", true)
}

func TestRNGUnknownOffsetUnhandled(t *testing.T) {
	r := peripherals.NewRNG()
	_, ok, _ := r.Read(0x100, 4)
	test.ExpectEquality(t, ok, false)
}

func TestRNGResetClearsControl(t *testing.T) {
	r := peripherals.NewRNG()
	r.Write(peripherals.RNGControl, 4, 0x1)
	r.Reset()
	v, _, _ := r.Read(peripherals.RNGControl, 4)
	test.ExpectEquality(t, v, uint32(0))
}

func TestTimerDisabledByDefaultDoesNotAdvance(t *testing.T) {
	tm := peripherals.NewTimer(-1)
	tm.Step(100, nil)
	v, _, _ := tm.Read(peripherals.TimerValue, 4)
	test.ExpectEquality(t, v, uint32(0))
}

func TestTimerEnabledAdvancesCounter(t *testing.T) {
	tm := peripherals.NewTimer(-1)
	ok, _ := tm.Write(peripherals.TimerControl, 4, 0x1)
	test.ExpectEquality(t, ok, true)

	tm.Step(50, nil)
	v, _, _ := tm.Read(peripherals.TimerValue, 4)
	test.ExpectEquality(t, v, uint32(50))
}

func TestTimerControlBitZeroDisables(t *testing.T) {
	tm := peripherals.NewTimer(-1)
	tm.Write(peripherals.TimerControl, 4, 0x1)
	tm.Write(peripherals.TimerControl, 4, 0x0)
	tm.Step(50, nil)
	v, _, _ := tm.Read(peripherals.TimerValue, 4)
	test.ExpectEquality(t, v, uint32(0))
}

// TestTimerWrapRaisesConfiguredIRQ confirms Timer.Step escalates into the
// NVIC exactly on 32-bit counter wraparound, the only way this core's
// timer signals its IRQ.
func TestTimerWrapRaisesConfiguredIRQ(t *testing.T) {
	flash := memory.NewBank(0x00000000, 0x10000000, 0x10000, false)
	ram := memory.NewBank(0x20000000, 0x30000000, 0x10000, false)
	mem := memory.NewMap(flash, ram, mmio.NewBus())
	c := cpu.NewState()
	nv := nvic.NewController(c, mem, trustzone.NewSAU())
	nv.SetEnabled(3, true)
	nv.SetPriority(3, 0x80)

	tm := peripherals.NewTimer(3)
	tm.Write(peripherals.TimerControl, 4, 0x1)
	tm.Write(peripherals.TimerValue, 4, 0xfffffff0)

	tm.Step(0x20, nv) // 0xfffffff0 + 0x20 wraps past 2^32

	taken := nv.SelectPending()
	test.ExpectEquality(t, taken, true)
}

func TestTimerNoWrapLeavesIRQClear(t *testing.T) {
	flash := memory.NewBank(0x00000000, 0x10000000, 0x10000, false)
	ram := memory.NewBank(0x20000000, 0x30000000, 0x10000, false)
	mem := memory.NewMap(flash, ram, mmio.NewBus())
	c := cpu.NewState()
	nv := nvic.NewController(c, mem, trustzone.NewSAU())
	nv.SetEnabled(3, true)
	nv.SetPriority(3, 0x80)

	tm := peripherals.NewTimer(3)
	tm.Write(peripherals.TimerControl, 4, 0x1)
	tm.Step(10, nv)

	test.ExpectEquality(t, nv.SelectPending(), false)
}
