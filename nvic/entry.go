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

package nvic

import (
	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/logger"
	"github.com/m33mu-go/m33mu/trustzone"
)

// integritySignatureBasic is the word ARMv8-M stacks below the ordinary
// exception frame whenever entry targets the Secure state, so a later
// Return can tell a forged or corrupted frame from a genuine one. This
// core has no FPU, so only the non-floating-point signature exists.
const integritySignatureBasic uint32 = 0xfefa125b

// Service checks for a pending, unmasked, not-already-active exception
// and, if one exists, takes it: spec.md §4.6's "else service the NVIC"
// half of the run loop's per-step choice. It reports whether an
// exception was taken, so the run loop knows to skip this step's
// instruction fetch.
func (nv *Controller) Service() (taken bool) {
	c, ok := nv.selectPending()
	if !ok {
		return false
	}
	nv.takeException(c)
	return true
}

// takeException implements spec.md §4.5 "Entry": stack the 8-register
// frame (and, when the new Handler runs Secure, the integrity signature
// beneath it) on the stack the preempted context was using, load LR with
// the EXC_RETURN encoding that will undo this exactly, switch to the
// target security state in Handler mode on its main stack, and fetch the
// new PC from that state's vector table.
func (nv *Controller) takeException(c candidate) {
	s := nv.CPU
	fromSec := s.CurrentSecurity()
	fromStack := s.CurrentStack()
	wasThread := s.Status().ExceptionNumber() == 0
	targetSec := c.sec

	sp := s.SP()
	xpsr := s.Status().Pack()
	if sp&0x4 != 0 {
		sp -= 4
		xpsr |= 1 << 9 // alignment pad recorded for Return to undo
	}
	frame := [8]uint32{
		s.Reg(0), s.Reg(1), s.Reg(2), s.Reg(3),
		s.Reg(12), s.LR(), s.PC(), xpsr,
	}
	sp -= uint32(len(frame) * 4)
	for i, v := range frame {
		nv.Mem.Write(fromSec, sp+uint32(i*4), 4, v)
	}
	if targetSec == cpu.Secure {
		sp -= 4
		nv.Mem.Write(fromSec, sp, 4, integritySignatureBasic)
	}
	s.SetBankedSP(fromSec, fromStack, sp)

	er := trustzone.ExcReturn{
		TargetSecure: fromSec == cpu.Secure,
		BasicFrame:   true,
		ToThread:     wasThread,
		UsePSP:       fromStack == cpu.PSP,
	}
	s.SetLR(trustzone.EncodeExcReturn(er))

	nv.clearPendingMarkActive(c)

	s.SetCurrentSecurity(targetSec)
	s.SetCurrentStack(cpu.MSP)
	s.Status().SetExceptionNumber(uint32(c.num))
	s.ClearReservation()

	vectorAddr := s.VTOR(targetSec) + uint32(c.num)*4
	vector, ok, kind, cause := nv.Mem.Read(targetSec, vectorAddr, 4)
	if !ok {
		// A vector table that itself faults escalates to HardFault rather
		// than leaving PC pointing nowhere; the faulting read is reported
		// against the state that owns the (now active) vector table.
		s.RaiseFault(kind, cause, vectorAddr)
		nv.hardFault[targetSec].pending = true
		return
	}
	s.SetPC(vector)
	logger.Logf("nvic", "exception %d taken: target=%v pc=%#08x", c.num, targetSec, vector)
}
