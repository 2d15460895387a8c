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

package runloop_test

import (
	"testing"

	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/executor"
	"github.com/m33mu-go/m33mu/memory"
	"github.com/m33mu-go/m33mu/mmio"
	"github.com/m33mu-go/m33mu/runloop"
	"github.com/m33mu-go/m33mu/test"
	"github.com/m33mu-go/m33mu/trustzone"
)

type fakeNVIC struct {
	serviceResult bool
	faults        []cpu.FaultRecord
}

func (f *fakeNVIC) Service() bool                  { return f.serviceResult }
func (f *fakeNVIC) ReportFault(fr cpu.FaultRecord) { f.faults = append(f.faults, fr) }

func newTestLoop() (*runloop.Loop, *cpu.State, *memory.Map, *fakeNVIC) {
	flash := memory.NewBank(0x00000000, 0x10000000, 0x10000, false)
	ram := memory.NewBank(0x20000000, 0x30000000, 0x10000, false)
	mem := memory.NewMap(flash, ram, mmio.NewBus())
	mem.FlashWrite = func(sec cpu.Security, addr uint32, size uint8, value uint32) bool { return true }

	c := cpu.NewState()
	exec := &executor.Machine{CPU: c, Mem: mem, SAU: trustzone.NewSAU()}
	nv := &fakeNVIC{}
	loop := runloop.New(c, mem, exec, nv)
	return loop, c, mem, nv
}

// TestStepServicesExceptionBeforeFetch is spec.md §4.6's ordering rule: a
// pending exception preempts the fetch/decode/execute step entirely.
func TestStepServicesExceptionBeforeFetch(t *testing.T) {
	loop, c, _, nv := newTestLoop()
	nv.serviceResult = true
	c.SetPC(0x1000)

	loop.Step()

	test.ExpectEquality(t, c.PC(), uint32(0x1000)) // untouched: no fetch happened
	test.ExpectEquality(t, loop.Cycles, uint64(6))
}

// TestStepSleepingAdvancesIdleCycles confirms a sleeping core doesn't
// fetch but still advances the cycle counter so the scheduler progresses.
func TestStepSleepingAdvancesIdleCycles(t *testing.T) {
	loop, c, _, _ := newTestLoop()
	c.Sleep()

	loop.Step()

	test.ExpectEquality(t, c.Sleeping(), true)
	test.ExpectEquality(t, loop.Cycles, uint64(4))
}

// TestStepFetchesDecodesAndExecutes is spec.md §8 scenario 1's first
// instruction driven through the full run loop rather than executor
// directly.
func TestStepFetchesDecodesAndExecutes(t *testing.T) {
	loop, c, mem, _ := newTestLoop()
	ok, _, _ := mem.Write(cpu.Secure, 0, 2, 0x2034) // MOVS R0,#0x34
	test.ExpectEquality(t, ok, true)

	loop.Step()

	test.ExpectEquality(t, c.Reg(0), uint32(0x34))
	test.ExpectEquality(t, c.PC(), uint32(2))
	test.ExpectEquality(t, loop.Cycles, uint64(1))
}

// TestStepTrapReportsFaultToNVIC confirms an executor trap is forwarded
// to the exception controller rather than silently dropped.
func TestStepTrapReportsFaultToNVIC(t *testing.T) {
	loop, _, mem, nv := newTestLoop()
	ok, _, _ := mem.Write(cpu.Secure, 0, 2, 0xde00) // UDF #0, an architecturally undefined-trap encoding
	test.ExpectEquality(t, ok, true)

	loop.Step()

	test.ExpectEquality(t, len(nv.faults), 1)
	test.ExpectEquality(t, nv.faults[0].Kind, cpu.UsageFault)
}

// TestRequestResetRunsResetHookInsteadOfFetching is spec.md §5's
// cancellation contract: a reset request takes priority over everything
// else on the next Step and consumes itself.
func TestRequestResetRunsResetHookInsteadOfFetching(t *testing.T) {
	loop, c, mem, _ := newTestLoop()
	ok, _, _ := mem.Write(cpu.Secure, 0, 2, 0x2034)
	test.ExpectEquality(t, ok, true)

	resetCalls := 0
	loop.Reset = func() { resetCalls++ }
	loop.RequestReset()

	loop.Step()
	test.ExpectEquality(t, resetCalls, 1)
	test.ExpectEquality(t, c.Reg(0), uint32(0)) // the pending MOVS never ran

	loop.Step()
	test.ExpectEquality(t, resetCalls, 1) // the flag doesn't fire twice
	test.ExpectEquality(t, c.Reg(0), uint32(0x34))
}

// TestSchedulerRunDueOrdering confirms due-cycle ordering and that a
// not-yet-due entry is left alone.
func TestSchedulerRunDueOrdering(t *testing.T) {
	s := runloop.NewScheduler()
	var order []string
	s.Schedule(10, func() { order = append(order, "a") })
	s.Schedule(5, func() { order = append(order, "b") })
	s.Schedule(20, func() { order = append(order, "c") })

	s.RunDue(10)
	test.ExpectEquality(t, order, []string{"b", "a"})
	test.ExpectEquality(t, s.Pending(), true)

	s.RunDue(20)
	test.ExpectEquality(t, order, []string{"b", "a", "c"})
	test.ExpectEquality(t, s.Pending(), false)
}

// TestSchedulerSelfReschedulingAtLaterDueWaitsForNextPass confirms a
// callback that reschedules itself for a strictly later due time isn't
// invoked again until a subsequent RunDue call reaches that time, the
// pattern a periodic peripheral tick relies on to avoid looping forever
// within a single RunDue call.
func TestSchedulerSelfReschedulingAtLaterDueWaitsForNextPass(t *testing.T) {
	s := runloop.NewScheduler()
	fires := 0
	var tick func()
	tick = func() {
		fires++
		s.Schedule(10+uint64(fires), tick)
	}
	s.Schedule(10, tick)

	s.RunDue(10)
	test.ExpectEquality(t, fires, 1)

	s.RunDue(10)
	test.ExpectEquality(t, fires, 1) // next fire isn't due until cycle 11

	s.RunDue(11)
	test.ExpectEquality(t, fires, 2)
}

// TestSchedulerSelfReschedulingAtSameDueRefiresWithinPass confirms the
// other side of RunDue's contract: rescheduling at or before now is taken
// up again immediately, within the same pass.
func TestSchedulerSelfReschedulingAtSameDueRefiresWithinPass(t *testing.T) {
	s := runloop.NewScheduler()
	fires := 0
	var tick func()
	tick = func() {
		fires++
		if fires < 3 {
			s.Schedule(10, tick)
		}
	}
	s.Schedule(10, tick)

	s.RunDue(10)
	test.ExpectEquality(t, fires, 3)
	test.ExpectEquality(t, s.Pending(), false)
}
