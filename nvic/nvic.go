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

// Package nvic implements the Nested Vectored Interrupt Controller and the
// exception core built on top of it: per-IRQ enable/pending/active/ITNS
// state (spec.md §3 "NVIC"), priority-based selection honouring PRIMASK/
// FAULTMASK/BASEPRI (§4.5 "Masking"), exception entry with cross-state
// frame stacking (§4.5 "Entry"), and EXC_RETURN-driven exit with tail-
// chaining (§4.5 "Exit"). It is grounded on the S370 teacher's explicit,
// synchronous `device`/`sys_channel` verb style (SenseCMDREJ-style status
// reporting via plain method calls rather than channels or goroutines)
// generalized to this core's priority/security-banked exception model,
// since the Thumb teacher's ARMv7-M subset has no interrupt controller at
// all.
package nvic

import (
	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/memory"
	"github.com/m33mu-go/m33mu/trustzone"
)

// MaxIRQ is the number of external interrupt lines this core's NVIC
// bitsets hold, per spec.md §3 ("Bitsets (64-bit wide in this core)").
const MaxIRQ = 64

// Exception numbers for the fixed system exceptions, per "B1.5.1
// Exception model" of the ARMv8-M ARM.
const (
	ExcNMI         = 2
	ExcHardFault   = 3
	ExcMemManage   = 4
	ExcBusFault    = 5
	ExcUsageFault  = 6
	ExcSecureFault = 7
	ExcSVCall      = 11
	ExcPendSV      = 14
	ExcSysTick     = 15
	ExcIRQ0        = 16 // IPSR = ExcIRQ0 + irq
)

// Fixed, unbanked priority numbers for the exceptions the architecture
// doesn't allow software to reprioritize. Lower is more urgent; these
// sit below (more urgent than) every configurable 0..255 priority.
const (
	priorityNMI           = -2
	priorityHardFault     = -1
	prioritySecureFault   = -1
	priorityResetOrFault0 = -3
)

// sysExc is one banked or unbanked system exception's pending/active/
// priority state.
type sysExc struct {
	pending  bool
	active   bool
	priority uint8
}

// Controller is the NVIC plus exception core for one CPU: it holds the
// bitset state spec.md §3 describes, and drives exception entry/exit
// against the register file (cpu.State) and address space (memory.Map) a
// run loop wires it to.
type Controller struct {
	CPU *cpu.State
	Mem *memory.Map
	SAU *trustzone.SAU

	enabled    uint64
	pendingIRQ uint64
	activeIRQ  uint64
	itns       uint64 // 1 bit = routed NonSecure
	irqPrio    [MaxIRQ]uint8

	nmi      sysExc
	hardFault [2]sysExc // banked: escalation can happen in either world
	busFault  sysExc    // not banked in this simplified core
	secFault  sysExc    // Secure-only

	memManage  [2]sysExc
	usageFault [2]sysExc
	svCall     [2]sysExc
	pendSV     [2]sysExc
	sysTick    [2]sysExc
}

// NewController returns a Controller with every IRQ disabled/clear and
// every system exception inactive, ready for Reset to load a vector
// table through.
func NewController(c *cpu.State, m *memory.Map, sau *trustzone.SAU) *Controller {
	return &Controller{CPU: c, Mem: m, SAU: sau}
}

// Reset clears all pending/active state, matching spec.md §6's "all
// exceptions inactive" reset postcondition.
func (nv *Controller) Reset() {
	*nv = Controller{CPU: nv.CPU, Mem: nv.Mem, SAU: nv.SAU}
}

func bit(n int) uint64 { return uint64(1) << uint(n) }

// SetEnabled sets or clears an external IRQ's enable bit.
func (nv *Controller) SetEnabled(irq int, enabled bool) {
	if irq < 0 || irq >= MaxIRQ {
		return
	}
	if enabled {
		nv.enabled |= bit(irq)
	} else {
		nv.enabled &^= bit(irq)
	}
}

// SetPending implements the NVIC peripheral hook from spec.md §6:
// `set_pending(irq, pending)`. This is the only NVIC entry point a
// peripheral poll/tick pass may call; it must never be called
// concurrently with itself or with the run loop's own exception
// servicing.
func (nv *Controller) SetPending(irq int, pending bool) {
	if irq < 0 || irq >= MaxIRQ {
		return
	}
	if pending {
		nv.pendingIRQ |= bit(irq)
		nv.wakeIfEligible(nv.irqTarget(irq))
	} else {
		nv.pendingIRQ &^= bit(irq)
	}
}

// SetPriority sets an external IRQ's 8-bit priority byte.
func (nv *Controller) SetPriority(irq int, priority uint8) {
	if irq < 0 || irq >= MaxIRQ {
		return
	}
	nv.irqPrio[irq] = priority
}

// SetTargetNonSecure sets or clears an external IRQ's ITNS routing bit:
// true routes the IRQ to NonSecure, false to Secure.
func (nv *Controller) SetTargetNonSecure(irq int, nonSecure bool) {
	if irq < 0 || irq >= MaxIRQ {
		return
	}
	if nonSecure {
		nv.itns |= bit(irq)
	} else {
		nv.itns &^= bit(irq)
	}
}

func (nv *Controller) irqTarget(irq int) cpu.Security {
	if nv.itns&bit(irq) != 0 {
		return cpu.NonSecure
	}
	return cpu.Secure
}

// SetSystemPriority sets the configurable priority of a banked system
// exception (MemManage, UsageFault, SVCall, PendSV, SysTick) in the given
// security state, or of BusFault (not banked; sec is ignored).
func (nv *Controller) SetSystemPriority(exc int, sec cpu.Security, priority uint8) {
	switch exc {
	case ExcMemManage:
		nv.memManage[sec].priority = priority
	case ExcUsageFault:
		nv.usageFault[sec].priority = priority
	case ExcSVCall:
		nv.svCall[sec].priority = priority
	case ExcPendSV:
		nv.pendSV[sec].priority = priority
	case ExcSysTick:
		nv.sysTick[sec].priority = priority
	case ExcBusFault:
		nv.busFault.priority = priority
	}
}

// wakeIfEligible wakes a sleeping core when a newly pending exception
// could actually be taken, per spec.md §4.6's WFI wake condition ("any
// unmasked exception becomes pending"). It also satisfies the WFE "an
// exception becoming pending sets the event flag" rule.
func (nv *Controller) wakeIfEligible(targetSec cpu.Security) {
	nv.CPU.SetEvent(targetSec)
	if _, ok := nv.selectPending(); ok {
		nv.CPU.Wake()
	}
}
