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

import "github.com/m33mu-go/m33mu/cpu"

// RaiseSVC satisfies executor.SVCRequester: SVC is a synchronous exception,
// so it goes directly to pending against the security state that executed
// it rather than through the peripheral SetPending hook.
func (nv *Controller) RaiseSVC(sec cpu.Security) {
	nv.svCall[sec].pending = true
	nv.wakeIfEligible(sec)
}

// ReportFault consumes a cpu.FaultRecord produced by executor.raiseFault
// and turns it into NVIC pending state, escalating to HardFault when the
// fault's own handler can't preempt what's currently running (disabled
// priority-wise, or already active), per "B1.5.4 Fault handling,
// HardFault escalation" of the ARMv8-M ARM.
func (nv *Controller) ReportFault(fr cpu.FaultRecord) {
	sec := fr.Secure
	switch fr.Kind {
	case cpu.UsageFault:
		nv.pendFaultOrEscalate(&nv.usageFault[sec], int(nv.usageFault[sec].priority), sec)
	case cpu.MemManageFault:
		nv.pendFaultOrEscalate(&nv.memManage[sec], int(nv.memManage[sec].priority), sec)
	case cpu.BusFault:
		nv.pendFaultOrEscalate(&nv.busFault, int(nv.busFault.priority), sec)
	case cpu.SecureFault:
		nv.pendFaultOrEscalate(&nv.secFault, prioritySecureFault, cpu.Secure)
	case cpu.HardFault:
		nv.hardFault[sec].pending = true
	}
	nv.wakeIfEligible(sec)
}

// pendFaultOrEscalate sets exc pending unless its configured priority
// can't actually preempt whatever exception is currently active, in which
// case the fault escalates to HardFault in the security state that
// raised it instead (Secure HardFault, for a SecureFault escalation).
func (nv *Controller) pendFaultOrEscalate(exc *sysExc, priority int, sec cpu.Security) {
	if exc.active || priority >= nv.currentPriority() {
		nv.hardFault[sec].pending = true
		return
	}
	exc.pending = true
}
