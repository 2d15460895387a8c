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

// Package executor carries out a decoder.Record against a cpu.State and
// memory.Map, the "else fetch/decode/execute" half of the run loop. Every
// handler either commits its side effects and reports where PC should
// land next, or calls raiseFault and reports a trap — it never does both,
// matching the quantified invariant in spec.md §7 that a trapped
// instruction leaves register and memory state exactly as it found them.
package executor

import (
	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/decoder"
	"github.com/m33mu-go/m33mu/memory"
	"github.com/m33mu-go/m33mu/trustzone"
)

// ExceptionController is the subset of the nvic package's exception-return
// handling execBranch needs: given a decoded EXC_RETURN, pop the
// exception/integrity frame, clear the active bit, and tail-chain into the
// next pending exception if one now qualifies. It's an interface rather
// than a concrete type so this package doesn't import nvic;
// nvic.Controller satisfies it through its Return method.
type ExceptionController interface {
	Return(er trustzone.ExcReturn) (trapped bool)
}

// Machine bundles the pieces one Execute call threads through the
// instruction handlers: the register file, the address space, the
// TrustZone-M security-attribution unit that BXNS/BLXNS/SG consult, and
// (once wired by the top-level module) the exception controller that
// services EXC_RETURN.
type Machine struct {
	CPU  *cpu.State
	Mem  *memory.Map
	SAU  *trustzone.SAU
	NVIC ExceptionController
}

// Execute carries out one decoded instruction. It reports whether the
// instruction trapped; on a trap, m.CPU.LastFault() holds the detail and
// no register or memory state has changed. On success, PC has already
// been advanced (either by rec.Len for a straight-line instruction, or to
// whatever new target a taken branch or exception-return computed).
func (m *Machine) Execute(rec decoder.Record) (trapped bool) {
	if rec.Undefined {
		m.raiseFault(cpu.UsageFault, cpu.CauseUndefInstr, rec.Raw)
		return true
	}

	if !m.conditionHolds(rec) {
		m.CPU.Status().AdvanceIT()
		m.CPU.SetPC(m.CPU.PC() + uint32(rec.Len))
		return false
	}

	diverged, trapped := m.dispatch(rec)
	if trapped {
		return true
	}

	// The IT instruction itself only loads the block; the instructions it
	// governs are the ones that advance it.
	if rec.Kind != decoder.KindIT {
		m.CPU.Status().AdvanceIT()
	}
	if !diverged {
		m.CPU.SetPC(m.CPU.PC() + uint32(rec.Len))
	}
	return false
}

// conditionHolds applies the current IT-block condition (or the
// instruction's own Cond for Bcond, which carries its condition outside
// any IT block) per spec.md §4.1.
func (m *Machine) conditionHolds(rec decoder.Record) bool {
	if rec.Kind == decoder.KindBcond {
		return m.CPU.Status().Condition(rec.Cond)
	}
	return m.CPU.Status().Condition(m.CPU.Status().CurrentCondition())
}

// raiseFault records a fault on the CPU state, the only thing a trapping
// handler does before returning — per spec.md §7, no partial register or
// memory writes may have happened first.
func (m *Machine) raiseFault(kind cpu.FaultKind, cause cpu.FaultCause, addr uint32) {
	m.CPU.RaiseFault(kind, cause, addr)
}

// commitFlags applies the three-family flag-setting discipline spec.md
// §4.4 calls out: compare forms (CMP/CMN/TST/TEQ) commit whenever
// SetFlags is set, inside an IT block or not. Narrow (16-bit) non-compare
// forms only commit when outside an IT block; wide (32-bit) forms commit
// whenever the decoded S-bit is set, IT notwithstanding.
func (m *Machine) commitFlags(rec decoder.Record, apply func(*cpu.Status)) {
	if !rec.SetFlags {
		return
	}
	switch rec.Kind {
	case decoder.KindCMPreg, decoder.KindCMPimm, decoder.KindCMNreg, decoder.KindCMNimm,
		decoder.KindTSTreg, decoder.KindTSTimm, decoder.KindTEQreg, decoder.KindTEQimm:
	default:
		if rec.Len == 2 && m.CPU.Status().InITBlock() {
			return
		}
	}
	apply(m.CPU.Status())
}

// commitCarryFromImm applies CarryOut from a modified-immediate operand's
// expansion, but only when the encoding actually rotated: a tile-pattern
// immediate leaves the carry flag exactly as it found it, per decoder's
// ImmRotated note.
func (m *Machine) commitCarryFromImm(rec decoder.Record) {
	if rec.SetFlags && rec.ImmRotated && !(rec.Len == 2 && m.CPU.Status().InITBlock()) {
		m.CPU.Status().SetCarry(rec.CarryOut)
	}
}
