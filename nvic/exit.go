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

// Return implements executor.ExceptionController, i.e. spec.md §4.5
// "Exit": unstack the frame an EXC_RETURN value names, verify the
// cross-state integrity signature when the returning Handler ran Secure,
// restore the preempted context, and tail-chain straight into the next
// eligible exception instead of returning to it if one is already
// pending (spec.md §4.5 "Exit" step 5).
func (nv *Controller) Return(er trustzone.ExcReturn) (trapped bool) {
	s := nv.CPU
	returningExc := int(s.Status().ExceptionNumber())
	if returningExc == 0 {
		// EXC_RETURN reached from Thread mode: there's no exception to
		// return from.
		s.RaiseFault(cpu.UsageFault, cpu.CauseInvState, trustzone.EncodeExcReturn(er))
		return true
	}

	handlerSec := s.CurrentSecurity()
	nv.clearActive(returningExc, handlerSec)

	targetSec := er.TargetSecurity()
	targetStack := er.StackSelect()
	sp := s.BankedSP(targetSec, targetStack)

	if handlerSec == cpu.Secure {
		sig, ok, kind, cause := nv.Mem.Read(cpu.Secure, sp, 4)
		if !ok {
			s.RaiseFault(kind, cause, sp)
			return true
		}
		if sig != integritySignatureBasic {
			s.RaiseFault(cpu.SecureFault, cpu.CauseInvER, sp)
			return true
		}
		sp += 4
	}

	var frame [8]uint32
	for i := range frame {
		v, ok, kind, cause := nv.Mem.Read(targetSec, sp+uint32(i*4), 4)
		if !ok {
			s.RaiseFault(kind, cause, sp+uint32(i*4))
			return true
		}
		frame[i] = v
	}
	sp += uint32(len(frame) * 4)

	s.SetReg(0, frame[0])
	s.SetReg(1, frame[1])
	s.SetReg(2, frame[2])
	s.SetReg(3, frame[3])
	s.SetReg(12, frame[4])
	s.SetLR(frame[5])
	if frame[7]&(1<<9) != 0 {
		sp += 4 // undo the alignment pad entry recorded in the stacked xPSR
	}
	s.SetBankedSP(targetSec, targetStack, sp)

	s.SetCurrentSecurity(targetSec)
	s.SetCurrentStack(targetStack)
	s.Status().Unpack(frame[7])
	s.SetPC(frame[6])
	s.ClearReservation()
	logger.Logf("nvic", "exception %d returned: target=%v pc=%#08x", returningExc, targetSec, frame[6])

	if c, ok := nv.selectPending(); ok {
		nv.takeException(c)
	}
	return false
}
