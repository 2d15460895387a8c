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

package cpu

// exclusiveMonitor tracks the address reserved by the most recent LDREX/
// LDREXB/LDREXH. A single global reservation (rather than a per-address
// set) matches the "always succeeds" simplification recorded as an open
// decision in DESIGN.md's cpu section; CheckAndClearReservation below
// applies it.
type exclusiveMonitor struct {
	valid bool
	addr  uint32
}

// State is the complete architectural register file of one ARMv8-M
// Mainline core: the 13 general-purpose registers, LR, PC, the banked
// stack/control registers for both security states, and the handful of
// pieces of execution state (current security/stack selection, sleep and
// event-wait flags, the exclusive-access monitor) that sit alongside them.
//
// xPSR is deliberately not banked: only Status and the two stack/security
// selectors change meaning depending on which world is executing.
type State struct {
	regs [13]uint32 // R0-R12
	lr   uint32     // R14, never banked
	pc   uint32     // R15

	status Status

	stacks [int(numSecurityStates)]stackBank
	banks  [int(numSecurityStates)]securityBank

	currentSec   Security
	currentStack StackSelect

	sleeping bool
	monitor  exclusiveMonitor

	lastFault FaultRecord
}

// NewState returns a State with both security banks' VTOR left at zero and
// every other register zeroed; callers reset() it against a target
// configuration's reset vector before first use.
func NewState() *State {
	return &State{}
}

// Reg reads general-purpose register n (0-15), honouring the two special
// cases the architecture gives R13 and R15: R13 is always an alias for the
// currently selected banked stack pointer, and R15 reads as the address of
// the current instruction plus 4, word-aligned, rather than its own stored
// value (there isn't one).
func (s *State) Reg(n uint32) uint32 {
	switch {
	case n < 13:
		return s.regs[n]
	case n == 13:
		return s.SP()
	case n == 14:
		return s.lr
	default: // 15
		return (s.pc + 4) &^ 0x3
	}
}

// SetReg writes general-purpose register n (0-15). Writing R15 sets the PC
// directly to value (callers that need BX-style mode handling do the
// masking themselves; plain writes from e.g. MOV or POP always clear bit 0
// since this core only ever fetches Thumb).
func (s *State) SetReg(n uint32, value uint32) {
	switch {
	case n < 13:
		s.regs[n] = value
	case n == 13:
		s.SetSP(value)
	case n == 14:
		s.lr = value
	default: // 15
		s.pc = value &^ 0x1
	}
}

// PC returns the raw program counter, the address of the instruction about
// to be fetched (unlike Reg(15), which adds the architectural +4 bias).
func (s *State) PC() uint32 { return s.pc }

// SetPC sets the raw program counter.
func (s *State) SetPC(value uint32) { s.pc = value &^ 0x1 }

// LR returns R14.
func (s *State) LR() uint32 { return s.lr }

// SetLR sets R14.
func (s *State) SetLR(value uint32) { s.lr = value }

// CurrentSecurity returns which world the core is currently executing in.
func (s *State) CurrentSecurity() Security { return s.currentSec }

// SetCurrentSecurity switches the active world. Callers (BXNS/BLXNS,
// exception entry/exit, SG) are responsible for deciding when this is
// architecturally permitted; State itself enforces nothing.
func (s *State) SetCurrentSecurity(sec Security) { s.currentSec = sec }

// CurrentStack returns which of MSP/PSP is currently selected for the
// active security state.
func (s *State) CurrentStack() StackSelect { return s.currentStack }

// SetCurrentStack changes which stack pointer R13 aliases within the
// current security state, mirroring a write to CONTROL.SPSEL.
func (s *State) SetCurrentStack(sel StackSelect) { s.currentStack = sel }

// SP returns the currently active stack pointer: the banked MSP or PSP of
// the current security state, selected by CurrentStack.
func (s *State) SP() uint32 {
	return s.bankedSP(s.currentSec, s.currentStack)
}

// SetSP writes the currently active stack pointer.
func (s *State) SetSP(value uint32) {
	s.setBankedSP(s.currentSec, s.currentStack, value)
}

// bankedSP reads a specific security/stack-select combination regardless
// of which is current, used by MSR/MRS of MSP_NS, PSP_NS, and friends.
func (s *State) bankedSP(sec Security, sel StackSelect) uint32 {
	b := &s.stacks[sec]
	if sel == MSP {
		return b.msp
	}
	return b.psp
}

func (s *State) setBankedSP(sec Security, sel StackSelect, value uint32) {
	b := &s.stacks[sec]
	if sel == MSP {
		b.msp = value
	} else {
		b.psp = value
	}
}

// BankedSP is the exported form of bankedSP, used by MSR/MRS's explicit
// _NS banked-register selector (spec.md §4.4) to reach a specific
// security/stack-select pair regardless of which is currently active.
func (s *State) BankedSP(sec Security, sel StackSelect) uint32 { return s.bankedSP(sec, sel) }

// SetBankedSP is the exported form of setBankedSP.
func (s *State) SetBankedSP(sec Security, sel StackSelect, value uint32) {
	s.setBankedSP(sec, sel, value)
}

// StackLimit returns the banked MSPLIM or PSPLIM of the given security
// state, per whichever is currently selected there.
func (s *State) StackLimit(sec Security, sel StackSelect) uint32 {
	b := &s.stacks[sec]
	if sel == MSP {
		return b.msplim
	}
	return b.psplim
}

// SetStackLimit writes the banked MSPLIM or PSPLIM of the given security
// state.
func (s *State) SetStackLimit(sec Security, sel StackSelect, value uint32) {
	b := &s.stacks[sec]
	if sel == MSP {
		b.msplim = value
	} else {
		b.psplim = value
	}
}

// Status returns the current (unbanked) flags and IT-block state.
func (s *State) Status() *Status { return &s.status }

// PRIMASK, FAULTMASK, BASEPRI and CONTROL are banked per security state;
// Current* reads/writes the bank belonging to the world currently
// executing, while the two-argument forms let MSR/MRS reach the other
// world's copy explicitly (e.g. MRS R0, CONTROL_NS from Secure code).

func (s *State) PRIMASK(sec Security) uint32        { return s.banks[sec].primask }
func (s *State) SetPRIMASK(sec Security, v uint32)  { s.banks[sec].primask = v & 0x1 }
func (s *State) FAULTMASK(sec Security) uint32       { return s.banks[sec].faultmask }
func (s *State) SetFAULTMASK(sec Security, v uint32) { s.banks[sec].faultmask = v & 0x1 }
func (s *State) BASEPRI(sec Security) uint32         { return s.banks[sec].basepri }
func (s *State) SetBASEPRI(sec Security, v uint32)   { s.banks[sec].basepri = v & 0xff }
func (s *State) CONTROL(sec Security) uint32         { return s.banks[sec].control }
func (s *State) SetCONTROL(sec Security, v uint32)   { s.banks[sec].control = v & 0x7 }
func (s *State) VTOR(sec Security) uint32            { return s.banks[sec].vtor }
func (s *State) SetVTOR(sec Security, v uint32)      { s.banks[sec].vtor = v &^ 0x7f }

// CurrentPRIMASK and its siblings are shorthand for the common case of
// reading/writing the executing world's own banked copy.
func (s *State) CurrentPRIMASK() uint32          { return s.PRIMASK(s.currentSec) }
func (s *State) SetCurrentPRIMASK(v uint32)      { s.SetPRIMASK(s.currentSec, v) }
func (s *State) CurrentFAULTMASK() uint32        { return s.FAULTMASK(s.currentSec) }
func (s *State) SetCurrentFAULTMASK(v uint32)    { s.SetFAULTMASK(s.currentSec, v) }
func (s *State) CurrentBASEPRI() uint32          { return s.BASEPRI(s.currentSec) }
func (s *State) SetCurrentBASEPRI(v uint32)      { s.SetBASEPRI(s.currentSec, v) }
func (s *State) CurrentCONTROL() uint32          { return s.CONTROL(s.currentSec) }
func (s *State) SetCurrentCONTROL(v uint32)      { s.SetCONTROL(s.currentSec, v) }

// Sleeping reports whether the core is parked in WFI/WFE.
func (s *State) Sleeping() bool { return s.sleeping }

// Sleep parks the core.
func (s *State) Sleep() { s.sleeping = true }

// Wake un-parks the core, e.g. on a pending exception or a matching SEV.
func (s *State) Wake() { s.sleeping = false }

// EventPending reports whether the given security state's event latch is
// set (a prior SEV, or an exception becoming pending, wakes a WFE in
// either world).
func (s *State) EventPending(sec Security) bool { return s.banks[sec].eventFlag }

// SetEvent raises the given security state's event latch.
func (s *State) SetEvent(sec Security) { s.banks[sec].eventFlag = true }

// ClearEvent lowers the given security state's event latch, done when a
// WFE consumes it.
func (s *State) ClearEvent(sec Security) { s.banks[sec].eventFlag = false }

// SignalEvent implements SEV: it sets the event latch in both security
// states, since an event raised by one world is visible to a WFE executed
// in the other.
func (s *State) SignalEvent() {
	s.banks[Secure].eventFlag = true
	s.banks[NonSecure].eventFlag = true
}

// Reserve records an exclusive-access monitor reservation for addr, set by
// LDREX/LDREXB/LDREXH.
func (s *State) Reserve(addr uint32) {
	s.monitor = exclusiveMonitor{valid: true, addr: addr}
}

// ClearReservation drops any outstanding exclusive-access reservation,
// done on every exception entry per "B9.2 Synchronization primitives".
func (s *State) ClearReservation() {
	s.monitor = exclusiveMonitor{}
}

// CheckAndClearReservation implements the STREX/STREXB/STREXH monitor
// check. Every reservation for any address is honoured (see the
// exclusive-monitor design note), so this only distinguishes "a
// reservation exists at all" from "no LDREX has run since the last
// clear/exception".
func (s *State) CheckAndClearReservation(addr uint32) (success bool) {
	success = s.monitor.valid
	s.monitor = exclusiveMonitor{}
	return success
}

// LastFault returns the most recently recorded fault, the zero value if
// none has occurred since the last Reset.
func (s *State) LastFault() FaultRecord { return s.lastFault }

// RaiseFault records a fault without itself deciding which handler runs;
// the nvic package consults LastFault when choosing whether to escalate.
func (s *State) RaiseFault(kind FaultKind, cause FaultCause, address uint32) FaultRecord {
	fr := FaultRecord{Kind: kind, Cause: cause, Address: address, PC: s.pc, Secure: s.currentSec}
	s.lastFault = fr
	return fr
}

// Reset clears the register file and banked state, sets the current world
// to Secure with MSP selected (the architectural reset state), and loads
// SP/PC from the given reset vector values, mirroring "B1.5.5 Reset
// behavior".
func (s *State) Reset(initialSP, resetVector uint32) {
	*s = State{}
	s.currentSec = Secure
	s.currentStack = MSP
	s.stacks[Secure].msp = initialSP
	s.pc = resetVector &^ 0x1
}
