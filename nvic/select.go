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

// candidate is one exception eligible to be taken: its number, target
// security, effective priority, and a tie-break class used only when two
// candidates share a priority number (spec.md §4.5's mandatory fault
// precedence, and the architectural "lowest exception number wins" rule
// for everything else).
type candidate struct {
	num      int
	sec      cpu.Security
	priority int
	class    int
}

// Mandatory precedence classes from spec.md §4.5: "HardFault > BusFault >
// MemManage > UsageFault > SecureFault > SVC > PendSV > SysTick >
// external IRQ." NMI always wins outright (handled separately, before
// this list is even consulted) since nothing can mask or outrank it.
const (
	classHardFault = iota
	classBusFault
	classMemManage
	classUsageFault
	classSecureFault
	classSVCall
	classPendSV
	classSysTick
	classExternal
)

// less reports whether a ranks strictly ahead of b: lower priority number
// wins; ties broken by the fixed class order above, then (within the
// external-IRQ class only) by ascending IRQ number.
func (a candidate) less(b candidate) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if a.class != b.class {
		return a.class < b.class
	}
	return a.num < b.num
}

// masked reports whether the target security state's PRIMASK/FAULTMASK/
// BASEPRI blocks a configurable-priority exception at the given priority,
// per spec.md §4.5 "Masking". Priorities below zero (NMI, HardFault) are
// never masked; masking is evaluated against the banked copies of the
// exception's own target security state, so Secure PRIMASK never blocks a
// NonSecure-targeted IRQ and vice versa.
func (nv *Controller) masked(sec cpu.Security, priority int) bool {
	if priority < 0 {
		return false
	}
	if nv.CPU.FAULTMASK(sec) != 0 {
		return true
	}
	if nv.CPU.PRIMASK(sec) != 0 {
		return true
	}
	if bp := nv.CPU.BASEPRI(sec); bp != 0 && priority >= int(bp) {
		return true
	}
	return false
}

// selectPending implements spec.md §4.5 "Selection": scan every pending,
// enabled, unmasked exception (fixed system exceptions first, then
// external IRQs 0..63) and return the one with the numerically lowest
// priority, using the mandatory precedence/IRQ-number tie-break from
// select.go's candidate.less. An exception already active is not
// re-selected here — tail-chaining (nvic/exit.go) and fault escalation
// (nvic/fault.go) special-case reentry explicitly.
func (nv *Controller) selectPending() (candidate, bool) {
	if nv.nmi.pending && !nv.nmi.active {
		return candidate{num: ExcNMI, sec: cpu.Secure, priority: priorityNMI, class: classHardFault}, true
	}

	var best candidate
	found := false
	consider := func(c candidate, pending, active bool) {
		if !pending || active || nv.masked(c.sec, c.priority) {
			return
		}
		if !found || c.less(best) {
			best, found = c, true
		}
	}

	for sec := cpu.Secure; sec < 2; sec++ {
		consider(candidate{num: ExcHardFault, sec: sec, priority: priorityHardFault, class: classHardFault}, nv.hardFault[sec].pending, nv.hardFault[sec].active)
		consider(candidate{num: ExcMemManage, sec: sec, priority: int(nv.memManage[sec].priority), class: classMemManage}, nv.memManage[sec].pending, nv.memManage[sec].active)
		consider(candidate{num: ExcUsageFault, sec: sec, priority: int(nv.usageFault[sec].priority), class: classUsageFault}, nv.usageFault[sec].pending, nv.usageFault[sec].active)
		consider(candidate{num: ExcSVCall, sec: sec, priority: int(nv.svCall[sec].priority), class: classSVCall}, nv.svCall[sec].pending, nv.svCall[sec].active)
		consider(candidate{num: ExcPendSV, sec: sec, priority: int(nv.pendSV[sec].priority), class: classPendSV}, nv.pendSV[sec].pending, nv.pendSV[sec].active)
		consider(candidate{num: ExcSysTick, sec: sec, priority: int(nv.sysTick[sec].priority), class: classSysTick}, nv.sysTick[sec].pending, nv.sysTick[sec].active)
	}
	consider(candidate{num: ExcBusFault, sec: cpu.Secure, priority: int(nv.busFault.priority), class: classBusFault}, nv.busFault.pending, nv.busFault.active)
	consider(candidate{num: ExcSecureFault, sec: cpu.Secure, priority: prioritySecureFault, class: classSecureFault}, nv.secFault.pending, nv.secFault.active)

	for irq := 0; irq < MaxIRQ; irq++ {
		if nv.enabled&bit(irq) == 0 {
			continue
		}
		sec := nv.irqTarget(irq)
		consider(candidate{num: ExcIRQ0 + irq, sec: sec, priority: int(nv.irqPrio[irq]), class: classExternal}, nv.pendingIRQ&bit(irq) != 0, nv.activeIRQ&bit(irq) != 0)
	}

	return best, found
}

// SelectPending exposes selectPending for the run loop's "if NVIC has a
// pending exception, take it instead of fetching" check (spec.md §4.6),
// without handing out the internal candidate type.
func (nv *Controller) SelectPending() bool {
	_, ok := nv.selectPending()
	return ok
}

// clearPendingMarkActive transitions a selected candidate from pending to
// active, per spec.md §4.5 entry step 4 ("Clear exception-active state of
// the taken interrupt, set it active, clear its pending bit").
func (nv *Controller) clearPendingMarkActive(c candidate) {
	switch c.num {
	case ExcNMI:
		nv.nmi.pending, nv.nmi.active = false, true
	case ExcHardFault:
		nv.hardFault[c.sec].pending, nv.hardFault[c.sec].active = false, true
	case ExcMemManage:
		nv.memManage[c.sec].pending, nv.memManage[c.sec].active = false, true
	case ExcBusFault:
		nv.busFault.pending, nv.busFault.active = false, true
	case ExcUsageFault:
		nv.usageFault[c.sec].pending, nv.usageFault[c.sec].active = false, true
	case ExcSecureFault:
		nv.secFault.pending, nv.secFault.active = false, true
	case ExcSVCall:
		nv.svCall[c.sec].pending, nv.svCall[c.sec].active = false, true
	case ExcPendSV:
		nv.pendSV[c.sec].pending, nv.pendSV[c.sec].active = false, true
	case ExcSysTick:
		nv.sysTick[c.sec].pending, nv.sysTick[c.sec].active = false, true
	default:
		irq := c.num - ExcIRQ0
		nv.pendingIRQ &^= bit(irq)
		nv.activeIRQ |= bit(irq)
	}
}

// clearActive drops an exception's active bit, per exit step 4.
func (nv *Controller) clearActive(num int, sec cpu.Security) {
	switch num {
	case ExcNMI:
		nv.nmi.active = false
	case ExcHardFault:
		nv.hardFault[sec].active = false
	case ExcMemManage:
		nv.memManage[sec].active = false
	case ExcBusFault:
		nv.busFault.active = false
	case ExcUsageFault:
		nv.usageFault[sec].active = false
	case ExcSecureFault:
		nv.secFault.active = false
	case ExcSVCall:
		nv.svCall[sec].active = false
	case ExcPendSV:
		nv.pendSV[sec].active = false
	case ExcSysTick:
		nv.sysTick[sec].active = false
	default:
		nv.activeIRQ &^= bit(num - ExcIRQ0)
	}
}

// currentPriority returns the priority of the most urgent active
// exception, or 256 when none is active (Thread mode) — used by fault
// escalation (nvic/fault.go) to decide
// whether a newly raised fault can preempt what's running or must
// escalate to HardFault.
func (nv *Controller) currentPriority() int {
	best := 256 // Thread mode: lower than any configurable priority
	check := func(active bool, priority int) {
		if active && priority < best {
			best = priority
		}
	}
	check(nv.nmi.active, priorityNMI)
	for sec := cpu.Secure; sec < 2; sec++ {
		check(nv.hardFault[sec].active, priorityHardFault)
		check(nv.memManage[sec].active, int(nv.memManage[sec].priority))
		check(nv.usageFault[sec].active, int(nv.usageFault[sec].priority))
		check(nv.svCall[sec].active, int(nv.svCall[sec].priority))
		check(nv.pendSV[sec].active, int(nv.pendSV[sec].priority))
		check(nv.sysTick[sec].active, int(nv.sysTick[sec].priority))
	}
	check(nv.busFault.active, int(nv.busFault.priority))
	check(nv.secFault.active, prioritySecureFault)
	if nv.activeIRQ != 0 {
		for irq := 0; irq < MaxIRQ; irq++ {
			if nv.activeIRQ&bit(irq) != 0 && int(nv.irqPrio[irq]) < best {
				best = int(nv.irqPrio[irq])
			}
		}
	}
	return best
}
