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
	"github.com/m33mu-go/m33mu/trustzone"
)

// execBranch covers every control-flow instruction: CBZ/CBNZ, B/Bcond/BL,
// the interworking family BX/BLX/BXNS/BLXNS, SG, and the jump tables
// TBB/TBH. diverged is true whenever the handler set PC itself, which is
// every reachable case here except a not-taken CBZ/CBNZ and SG (which
// leaves PC for Execute to advance past it).
func (m *Machine) execBranch(rec decoder.Record) (diverged, trapped bool) {
	switch rec.Kind {
	case decoder.KindCBZ, decoder.KindCBNZ:
		rn := m.CPU.Reg(uint32(rec.Rn))
		zero := rn == 0
		take := zero
		if rec.Kind == decoder.KindCBNZ {
			take = !zero
		}
		if !take {
			return false, false
		}
		m.CPU.SetPC(m.CPU.PC() + 4 + rec.Imm)
		return true, false

	case decoder.KindB, decoder.KindBcond:
		m.CPU.SetPC(m.CPU.PC() + 4 + rec.Imm)
		return true, false

	case decoder.KindBL:
		m.CPU.SetLR((m.CPU.PC() + uint32(rec.Len)) | 1)
		m.CPU.SetPC(m.CPU.PC() + 4 + rec.Imm)
		return true, false

	case decoder.KindBX:
		return m.execInterworkingBranch(m.CPU.Reg(uint32(rec.Rm)))

	case decoder.KindBLX:
		target := m.CPU.Reg(uint32(rec.Rm))
		m.CPU.SetLR((m.CPU.PC() + uint32(rec.Len)) | 1)
		return m.execInterworkingBranch(target)

	case decoder.KindBXNS:
		return m.execNonSecureInterworkingBranch(m.CPU.Reg(uint32(rec.Rm)), false)

	case decoder.KindBLXNS:
		return m.execNonSecureInterworkingBranch(m.CPU.Reg(uint32(rec.Rm)), true)

	case decoder.KindSG:
		if m.CPU.CurrentSecurity() != cpu.NonSecure {
			m.raiseFault(cpu.SecureFault, cpu.CauseInvEP, rec.Raw)
			return false, true
		}
		att := m.SAU.Attribute(m.CPU.PC())
		if !att.Secure || !att.NSC {
			m.raiseFault(cpu.SecureFault, cpu.CauseInvEP, rec.Raw)
			return false, true
		}
		m.CPU.SetCurrentSecurity(cpu.Secure)
		return false, false

	case decoder.KindTBB:
		base := m.tableBranchBase(rec)
		addr := base + m.CPU.Reg(uint32(rec.Rm))
		value, ok, kind, cause := m.Mem.Read(m.CPU.CurrentSecurity(), addr, 1)
		if !ok {
			m.raiseFault(kind, cause, addr)
			return false, true
		}
		m.CPU.SetPC(m.CPU.PC() + uint32(rec.Len) + value*2)
		return true, false

	case decoder.KindTBH:
		base := m.tableBranchBase(rec)
		addr := base + m.CPU.Reg(uint32(rec.Rm))*2
		value, ok, kind, cause := m.Mem.Read(m.CPU.CurrentSecurity(), addr, 2)
		if !ok {
			m.raiseFault(kind, cause, addr)
			return false, true
		}
		m.CPU.SetPC(m.CPU.PC() + uint32(rec.Len) + value*2)
		return true, false
	}

	m.raiseFault(cpu.UsageFault, cpu.CauseUndefInstr, rec.Raw)
	return false, true
}

// tableBranchBase is Rn for TBB/TBH, except PC, which per "A7.7.194" reads
// as the address of the table-branch instruction itself plus 4 — the same
// rule Reg(15) already applies.
func (m *Machine) tableBranchBase(rec decoder.Record) uint32 {
	return m.CPU.Reg(uint32(rec.Rn))
}

// execInterworkingBranch carries out a plain BX/BLX: if target carries the
// EXC_RETURN signature, hand off to the exception controller instead of
// treating it as an ordinary branch.
func (m *Machine) execInterworkingBranch(target uint32) (diverged, trapped bool) {
	if er, ok := trustzone.DecodeExcReturn(target); ok {
		if m.NVIC == nil {
			m.raiseFault(cpu.UsageFault, cpu.CauseInvState, target)
			return false, true
		}
		if m.NVIC.Return(er) {
			return false, true
		}
		return true, false
	}
	m.CPU.SetPC(target)
	return true, false
}

// execNonSecureInterworkingBranch implements BXNS/BLXNS per spec.md's
// description: BXNS only switches to NonSecure when Rm's low bit is clear,
// the core is currently Secure, and the target is attributed NonSecure;
// any other combination UsageFaults. BLXNS makes the same checks and, once
// they pass, additionally pushes a secure function return frame.
func (m *Machine) execNonSecureInterworkingBranch(target uint32, isCall bool) (diverged, trapped bool) {
	if er, ok := trustzone.DecodeExcReturn(target); ok && !isCall {
		if m.NVIC == nil {
			m.raiseFault(cpu.UsageFault, cpu.CauseInvState, target)
			return false, true
		}
		if m.NVIC.Return(er) {
			return false, true
		}
		return true, false
	}

	if m.CPU.CurrentSecurity() != cpu.Secure {
		m.raiseFault(cpu.UsageFault, cpu.CauseInvState, target)
		return false, true
	}

	att := m.SAU.Attribute(target &^ 1)
	if target&1 != 0 || att.Secure {
		m.raiseFault(cpu.UsageFault, cpu.CauseInvState, target)
		return false, true
	}

	if isCall {
		xpsr := *m.CPU.Status()
		xpsr.SetExceptionNumber(0)
		sp := m.CPU.SP() - 8
		if ok, kind, cause := m.Mem.Write(cpu.Secure, sp, 4, m.CPU.LR()); !ok {
			m.raiseFault(kind, cause, sp)
			return false, true
		}
		if ok, kind, cause := m.Mem.Write(cpu.Secure, sp+4, 4, xpsr.Pack()); !ok {
			m.raiseFault(kind, cause, sp+4)
			return false, true
		}
		m.CPU.SetSP(sp)
		m.CPU.SetLR(trustzone.SecureFunctionReturn)
	} else {
		// Plain BXNS pushes no frame, but still scrubs the word at the top
		// of the outgoing Secure stack so nothing the Secure caller left
		// there remains readable once control is NonSecure.
		sp := m.CPU.SP()
		if ok, kind, cause := m.Mem.Write(cpu.Secure, sp, 4, 0); !ok {
			m.raiseFault(kind, cause, sp)
			return false, true
		}
		m.CPU.SetLR(trustzone.SecureFunctionReturn)
	}

	m.CPU.SetCurrentSecurity(cpu.NonSecure)
	m.CPU.SetPC(target &^ 1)
	return true, false
}
