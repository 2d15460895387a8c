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
	"github.com/m33mu-go/m33mu/alu"
	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/decoder"
)

// execMultiplyDivide covers MUL/MLA/MLS, the 64-bit SMULL/UMULL/SMLAL/
// UMLAL family, and SDIV/UDIV. Only the 16-bit MULS sets flags (N and Z,
// through commitFlags): Thumb-2's 32-bit multiply page has no S-bit, so
// every other form leaves the flags alone.
func (m *Machine) execMultiplyDivide(rec decoder.Record) (trapped bool) {
	switch rec.Kind {
	case decoder.KindMUL:
		rn := m.CPU.Reg(uint32(rec.Rn))
		rm := m.CPU.Reg(uint32(rec.Rm))
		m.CPU.SetReg(uint32(rec.Rd), rn*rm)
		m.commitFlags(rec, func(st *cpu.Status) { st.NZ(rn * rm) })
		return false

	case decoder.KindMLA:
		rn := m.CPU.Reg(uint32(rec.Rn))
		rm := m.CPU.Reg(uint32(rec.Rm))
		ra := m.CPU.Reg(uint32(rec.Ra))
		m.CPU.SetReg(uint32(rec.Rd), ra+rn*rm)
		return false

	case decoder.KindMLS:
		rn := m.CPU.Reg(uint32(rec.Rn))
		rm := m.CPU.Reg(uint32(rec.Rm))
		ra := m.CPU.Reg(uint32(rec.Ra))
		m.CPU.SetReg(uint32(rec.Rd), ra-rn*rm)
		return false

	case decoder.KindUMULL:
		rn := m.CPU.Reg(uint32(rec.Rn))
		rm := m.CPU.Reg(uint32(rec.Rm))
		hi, lo := alu.MulU64(rn, rm)
		m.CPU.SetReg(uint32(rec.Rd), lo)
		m.CPU.SetReg(uint32(rec.Rt2), hi)
		return false

	case decoder.KindSMULL:
		rn := int32(m.CPU.Reg(uint32(rec.Rn)))
		rm := int32(m.CPU.Reg(uint32(rec.Rm)))
		hi, lo := alu.MulS64(rn, rm)
		m.CPU.SetReg(uint32(rec.Rd), lo)
		m.CPU.SetReg(uint32(rec.Rt2), hi)
		return false

	case decoder.KindUMLAL:
		rn := m.CPU.Reg(uint32(rec.Rn))
		rm := m.CPU.Reg(uint32(rec.Rm))
		hi, lo := alu.MulU64(rn, rm)
		accLo := m.CPU.Reg(uint32(rec.Rd))
		accHi := m.CPU.Reg(uint32(rec.Rt2))
		sum := uint64(accHi)<<32 | uint64(accLo)
		sum += uint64(hi)<<32 | uint64(lo)
		m.CPU.SetReg(uint32(rec.Rd), uint32(sum))
		m.CPU.SetReg(uint32(rec.Rt2), uint32(sum>>32))
		return false

	case decoder.KindSMLAL:
		rn := int32(m.CPU.Reg(uint32(rec.Rn)))
		rm := int32(m.CPU.Reg(uint32(rec.Rm)))
		hi, lo := alu.MulS64(rn, rm)
		accLo := m.CPU.Reg(uint32(rec.Rd))
		accHi := m.CPU.Reg(uint32(rec.Rt2))
		sum := uint64(accHi)<<32 | uint64(accLo)
		sum += uint64(hi)<<32 | uint64(lo)
		m.CPU.SetReg(uint32(rec.Rd), uint32(sum))
		m.CPU.SetReg(uint32(rec.Rt2), uint32(sum>>32))
		return false

	case decoder.KindUDIV:
		rn := m.CPU.Reg(uint32(rec.Rn))
		rm := m.CPU.Reg(uint32(rec.Rm))
		if rm == 0 {
			m.CPU.SetReg(uint32(rec.Rd), 0)
			return false
		}
		m.CPU.SetReg(uint32(rec.Rd), rn/rm)
		return false

	case decoder.KindSDIV:
		rn := int32(m.CPU.Reg(uint32(rec.Rn)))
		rm := int32(m.CPU.Reg(uint32(rec.Rm)))
		if rm == 0 {
			m.CPU.SetReg(uint32(rec.Rd), 0)
			return false
		}
		m.CPU.SetReg(uint32(rec.Rd), uint32(rn/rm))
		return false
	}

	m.raiseFault(cpu.UsageFault, cpu.CauseUndefInstr, rec.Raw)
	return true
}
