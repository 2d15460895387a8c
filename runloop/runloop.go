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

// Package runloop drives the cooperative fetch/decode/execute cycle spec.md
// §4.6 describes: each Step either services a pending exception or retires
// one instruction, then drains the cycle-sorted Scheduler and polls
// peripherals, matching the teacher's own single-goroutine `arm.Run`/
// `arm.Step` shape rather than a channel- or timer-driven design.
package runloop

import (
	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/decoder"
	"github.com/m33mu-go/m33mu/executor"
	"github.com/m33mu-go/m33mu/logger"
	"github.com/m33mu-go/m33mu/memory"
)

// ExceptionController is the subset of nvic.Controller the loop drives
// directly: try to take a pending exception before fetching, and hand
// back any fault the instruction just executed raised.
type ExceptionController interface {
	Service() (taken bool)
	ReportFault(fr cpu.FaultRecord)
}

// Peripherals is polled once per step after cycle accounting, the
// `peripherals.poll(cycles)` call in spec.md §4.6's pseudo-contract. A nil
// Peripherals is fine; Step simply skips the call.
type Peripherals interface {
	Poll(cycles uint64)
}

// Loop wires a CPU/memory/executor/NVIC quartet into the single cooperative
// loop spec.md §4.6 and §5 describe: one logical thread, no suspension
// mid-instruction, a reset flag polled between instructions rather than
// delivered asynchronously.
type Loop struct {
	CPU  *cpu.State
	Mem  *memory.Map
	Exec *executor.Machine
	NVIC ExceptionController

	Scheduler   *Scheduler
	Peripherals Peripherals

	// Reset, if set, is invoked when a reset request is observed between
	// instructions; it is the top-level Machine's own Reset (register file,
	// NVIC, and SAU/MPU all need to be cleared together, which is outside
	// what this package owns).
	Reset func()

	Cycles uint64

	resetRequested bool
}

// New builds a Loop with a fresh Scheduler.
func New(c *cpu.State, m *memory.Map, exec *executor.Machine, nv ExceptionController) *Loop {
	return &Loop{CPU: c, Mem: m, Exec: exec, NVIC: nv, Scheduler: NewScheduler()}
}

// RequestReset implements spec.md §6's `request_reset()`: a process-wide
// flag the loop observes and clears on its next Step, per §5's
// "Cancellation" contract. It is safe to call from a peripheral callback
// running inline inside Step (e.g. a watchdog timer's Scheduler entry).
func (l *Loop) RequestReset() { l.resetRequested = true }

// Step carries out exactly one iteration of spec.md §4.6's main loop: a
// reset request takes priority over everything else, then a pending
// exception takes priority over fetching, then a sleeping core just
// advances time, and only then does it fetch/decode/execute.
func (l *Loop) Step() {
	if l.resetRequested {
		l.resetRequested = false
		if l.Reset != nil {
			l.Reset()
		}
		return
	}

	if l.NVIC.Service() {
		l.advance(exceptionEntryCycles)
		return
	}

	if l.CPU.Sleeping() {
		l.advance(idleTimesliceCycles)
		return
	}

	l.fetchDecodeExecuteOne()
}

// Run calls Step n times, the free-running form of spec.md §4.6's
// "forever" loop for hosts that don't need to interleave their own work
// between steps.
func (l *Loop) Run(steps uint64) {
	for i := uint64(0); i < steps; i++ {
		l.Step()
	}
}

func (l *Loop) advance(cycles uint64) {
	l.Cycles += cycles
	l.Scheduler.RunDue(l.Cycles)
	if l.Peripherals != nil {
		l.Peripherals.Poll(l.Cycles)
	}
}

// fetchDecodeExecuteOne implements the "else fetch_decode_execute_one()"
// branch: read one or two half-words through the memory system (so a
// faulting fetch reports exactly like a faulting data access), decode,
// execute, and on a trap hand the recorded fault to the NVIC instead of
// advancing PC.
func (l *Loop) fetchDecodeExecuteOne() {
	sec := l.CPU.CurrentSecurity()
	pc := l.CPU.PC()

	hw1v, ok, kind, cause := l.Mem.ReadExecute(sec, pc, 2)
	if !ok {
		l.CPU.RaiseFault(kind, cause, pc)
		l.NVIC.ReportFault(l.CPU.LastFault())
		l.advance(1)
		return
	}
	hw1 := uint16(hw1v)

	var hw2 uint16
	if decoder.Is32Bit(hw1) {
		hw2v, ok, kind, cause := l.Mem.ReadExecute(sec, pc+2, 2)
		if !ok {
			l.CPU.RaiseFault(kind, cause, pc+2)
			l.NVIC.ReportFault(l.CPU.LastFault())
			l.advance(1)
			return
		}
		hw2 = uint16(hw2v)
	}

	rec := decoder.Decode(hw1, hw2)
	if trapped := l.Exec.Execute(rec); trapped {
		logger.Logf("runloop", "trap at pc=%#08x: %s", pc, l.CPU.LastFault())
		l.NVIC.ReportFault(l.CPU.LastFault())
		l.advance(1)
		return
	}

	diverged := l.CPU.PC() != pc+uint32(rec.Len)
	l.advance(instructionCycles(rec, diverged))
}
