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

// RaiseSysTick pends the SysTick exception against the given security
// state. This core models SysTick itself as a fixed system exception
// only; the periodic reload-counter behaviour a real SysTick timer has
// lives in the run loop's scheduler (runloop.Scheduler), which calls this
// whenever a scheduled SysTick callback comes due.
func (nv *Controller) RaiseSysTick(sec cpu.Security) {
	nv.sysTick[sec].pending = true
	nv.wakeIfEligible(sec)
}

// RaisePendSV pends PendSV, the software-triggered context-switch
// exception an RTOS port sets from a handler rather than an MMIO write.
func (nv *Controller) RaisePendSV(sec cpu.Security) {
	nv.pendSV[sec].pending = true
	nv.wakeIfEligible(sec)
}
