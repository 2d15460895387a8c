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

package executor

import (
	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/decoder"
	"github.com/m33mu-go/m33mu/logger"
)

// SVCRequester is the subset of nvic's exception controller execSystem
// needs for SVC: SVC is a synchronous exception, set pending against the
// executing security state rather than polled like an external IRQ.
type SVCRequester interface {
	RaiseSVC(sec cpu.Security)
}

// Banked sysm selectors, "B5.2.2 MSR" and "MRS" of the ARMv8-M ARM: the
// low 7 bits name the register, bit 7 (0x80) picks the opposite
// security bank's copy ("_NS" register names) when read/written from
// Secure code.
const (
	sysmAPSR      = 0x00
	sysmIPSR      = 0x05
	sysmEPSR      = 0x06
	sysmIEPSR     = 0x07
	sysmMSP       = 0x08
	sysmPSP       = 0x09
	sysmMSPLIM    = 0x0a
	sysmPSPLIM    = 0x0b
	sysmPRIMASK   = 0x10
	sysmBASEPRI   = 0x11
	sysmFAULTMASK = 0x13
	sysmCONTROL   = 0x14
	sysmNSBit     = 0x80
)

// execSystem covers MSR/MRS, CPS, the barrier no-ops, hints (NOP/YIELD/
// SEV), WFE/WFI, IT, SVC, BKPT and UDF — everything spec.md §4.4's
// "System instructions" paragraph and §4.1's barrier/hint/exception list
// describe.
func (m *Machine) execSystem(rec decoder.Record) (trapped bool) {
	switch rec.Kind {
	case decoder.KindMSR:
		return m.execMSR(rec)
	case decoder.KindMRS:
		return m.execMRS(rec)
	case decoder.KindCPS:
		return m.execCPS(rec)
	case decoder.KindDSB, decoder.KindDMB, decoder.KindISB:
		// Barriers are architectural no-ops here: every access in this
		// core is already fully serialized (spec.md §5), so there is
		// nothing to flush or order.
		return false
	case decoder.KindNOP:
		return false
	case decoder.KindYIELD:
		// No scheduler-visible hint to act on; a plain no-op, same as NOP.
		return false
	case decoder.KindSEV:
		m.CPU.SignalEvent()
		return false
	case decoder.KindWFE:
		if m.CPU.EventPending(m.CPU.CurrentSecurity()) {
			m.CPU.ClearEvent(m.CPU.CurrentSecurity())
			return false
		}
		m.CPU.Sleep()
		return false
	case decoder.KindWFI:
		m.CPU.Sleep()
		return false
	case decoder.KindIT:
		m.CPU.Status().SetIT(rec.ITFirstCond, rec.ITMask)
		return false
	case decoder.KindSVC:
		if requester, ok := m.NVIC.(SVCRequester); ok {
			requester.RaiseSVC(m.CPU.CurrentSecurity())
			return false
		}
		m.raiseFault(cpu.UsageFault, cpu.CauseUndefInstr, rec.Raw)
		return true
	case decoder.KindBKPT:
		// No debug host is attached in this core, so a breakpoint with no
		// monitor enabled escalates straight to HardFault, per "B1.5.8
		// Debug events" of the ARMv8-M ARM.
		logger.Logf("executor", "BKPT #%d at pc=%#08x", rec.Imm, m.CPU.PC())
		m.raiseFault(cpu.HardFault, cpu.CauseUndefInstr, rec.Raw)
		return true
	case decoder.KindUDF:
		m.raiseFault(cpu.UsageFault, cpu.CauseUndefInstr, rec.Raw)
		return true
	}

	m.raiseFault(cpu.UsageFault, cpu.CauseUndefInstr, rec.Raw)
	return true
}

// execCPS implements CPSIE/CPSID against the executing security state's
// own banked PRIMASK/FAULTMASK, per spec.md §4.4's "CPS updates PRIMASK/
// FAULTMASK immediate bits."
func (m *Machine) execCPS(rec decoder.Record) (trapped bool) {
	sec := m.CPU.CurrentSecurity()
	bit := uint32(1)
	if rec.CPSEnable {
		bit = 0
	}
	if rec.CPSAffectI {
		m.CPU.SetPRIMASK(sec, bit)
	}
	if rec.CPSAffectF {
		m.CPU.SetFAULTMASK(sec, bit)
	}
	return false
}

// execMRS implements the MRS Rd, <sysm> family: read a banked or
// unbanked system register into Rd. The _NS alias (sysm bit 7) reaches
// into the opposite security bank and traps when the core is currently
// NonSecure, since NonSecure code has no business reading Secure-side
// banked state.
func (m *Machine) execMRS(rec decoder.Record) (trapped bool) {
	sysm := rec.Imm
	bankSec := m.CPU.CurrentSecurity()
	if sysm&sysmNSBit != 0 {
		if m.CPU.CurrentSecurity() != cpu.Secure {
			m.raiseFault(cpu.UsageFault, cpu.CauseInvState, rec.Raw)
			return true
		}
		bankSec = cpu.NonSecure
	}

	var v uint32
	switch sysm &^ sysmNSBit {
	case sysmAPSR:
		v = m.CPU.Status().Pack() & 0xf8000000
	case sysmIPSR:
		v = m.CPU.Status().ExceptionNumber()
	case sysmEPSR, sysmIEPSR:
		v = m.CPU.Status().Pack() & 0x0600fc00
	case sysmMSP:
		v = m.CPU.BankedSP(bankSec, cpu.MSP)
	case sysmPSP:
		v = m.CPU.BankedSP(bankSec, cpu.PSP)
	case sysmMSPLIM:
		v = m.CPU.StackLimit(bankSec, cpu.MSP)
	case sysmPSPLIM:
		v = m.CPU.StackLimit(bankSec, cpu.PSP)
	case sysmPRIMASK:
		v = m.CPU.PRIMASK(bankSec)
	case sysmBASEPRI:
		v = m.CPU.BASEPRI(bankSec)
	case sysmFAULTMASK:
		v = m.CPU.FAULTMASK(bankSec)
	case sysmCONTROL:
		v = m.CPU.CONTROL(bankSec)
	default:
		m.raiseFault(cpu.UsageFault, cpu.CauseUndefInstr, rec.Raw)
		return true
	}
	m.CPU.SetReg(uint32(rec.Rd), v)
	return false
}

// execMSR implements the MSR <sysm>, Rn family, the write-side mirror of
// execMRS with the identical _NS banking rule.
func (m *Machine) execMSR(rec decoder.Record) (trapped bool) {
	sysm := rec.Imm
	v := m.CPU.Reg(uint32(rec.Rn))
	bankSec := m.CPU.CurrentSecurity()
	if sysm&sysmNSBit != 0 {
		if m.CPU.CurrentSecurity() != cpu.Secure {
			m.raiseFault(cpu.UsageFault, cpu.CauseInvState, rec.Raw)
			return true
		}
		bankSec = cpu.NonSecure
	}

	switch sysm &^ sysmNSBit {
	case sysmAPSR:
		// MSR to APSR updates only NZCVQ, per spec.md §4.4 (GE isn't
		// implemented; DSP extensions are out of scope).
		status := m.CPU.Status()
		status.Unpack(status.Pack()&^0xf8000000 | v&0xf8000000)
	case sysmMSP:
		m.CPU.SetBankedSP(bankSec, cpu.MSP, v)
	case sysmPSP:
		m.CPU.SetBankedSP(bankSec, cpu.PSP, v)
	case sysmMSPLIM:
		m.CPU.SetStackLimit(bankSec, cpu.MSP, v)
	case sysmPSPLIM:
		m.CPU.SetStackLimit(bankSec, cpu.PSP, v)
	case sysmPRIMASK:
		m.CPU.SetPRIMASK(bankSec, v)
	case sysmBASEPRI:
		m.CPU.SetBASEPRI(bankSec, v)
	case sysmFAULTMASK:
		m.CPU.SetFAULTMASK(bankSec, v)
	case sysmCONTROL:
		m.CPU.SetCONTROL(bankSec, v)
	default:
		m.raiseFault(cpu.UsageFault, cpu.CauseUndefInstr, rec.Raw)
		return true
	}
	return false
}
