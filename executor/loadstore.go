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
	"math/bits"

	"github.com/m33mu-go/m33mu/alu"
	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/decoder"
	"github.com/m33mu-go/m33mu/trustzone"
)

// execLoadStore covers every memory-accessing instruction: the single-
// register LDR/STR family (and its sign/zero-extending halfword/byte
// variants), LDRD/STRD, PUSH/POP/LDM/STM/LDMDB/STMDB, and the exclusive
// pair LDREX*/STREX*/CLREX. Per spec.md §7's no-partial-commit invariant,
// every multi-transfer handler checks every access before writing any
// register, so a fault midway through a list leaves the machine exactly
// as it found it.
func (m *Machine) execLoadStore(rec decoder.Record) (diverged, trapped bool) {
	switch rec.Kind {
	case decoder.KindLDR, decoder.KindLDRB, decoder.KindLDRH, decoder.KindLDRSB, decoder.KindLDRSH, decoder.KindLDRlit:
		return m.execLoadSingle(rec)
	case decoder.KindSTR, decoder.KindSTRB, decoder.KindSTRH:
		return m.execStoreSingle(rec)
	case decoder.KindLDRD:
		return m.execLoadDouble(rec)
	case decoder.KindSTRD:
		return m.execStoreDouble(rec)
	case decoder.KindPUSH, decoder.KindSTM, decoder.KindSTMDB:
		return m.execStoreMultiple(rec)
	case decoder.KindPOP, decoder.KindLDM, decoder.KindLDMDB:
		return m.execLoadMultiple(rec)
	case decoder.KindLDREX:
		return m.execLoadExclusive(rec, 4)
	case decoder.KindLDREXB:
		return m.execLoadExclusive(rec, 1)
	case decoder.KindLDREXH:
		return m.execLoadExclusive(rec, 2)
	case decoder.KindSTREX:
		return m.execStoreExclusive(rec, 4)
	case decoder.KindSTREXB:
		return m.execStoreExclusive(rec, 1)
	case decoder.KindSTREXH:
		return m.execStoreExclusive(rec, 2)
	case decoder.KindCLREX:
		m.CPU.ClearReservation()
		return false, false
	}

	m.raiseFault(cpu.UsageFault, cpu.CauseUndefInstr, rec.Raw)
	return false, true
}

// effectiveAddress computes a single-register access's base, transfer
// address, and (for writeback forms) the address the base register ends
// up holding afterward, per spec.md §4.4's P/U/W addressing-mode triple.
func (m *Machine) effectiveAddress(rec decoder.Record) (addr, writebackAddr uint32) {
	base := m.CPU.Reg(uint32(rec.Rn))

	var offset uint32
	if rec.Rm != decoder.NoReg {
		offset = m.CPU.Reg(uint32(rec.Rm)) << rec.ShiftAmount
	} else {
		offset = rec.Imm
	}

	var offsetAddr uint32
	if rec.Add {
		offsetAddr = base + offset
	} else {
		offsetAddr = base - offset
	}

	if rec.Index {
		return offsetAddr, offsetAddr
	}
	return base, offsetAddr
}

func sizeOf(rec decoder.Record) uint8 {
	switch rec.Kind {
	case decoder.KindLDRB, decoder.KindLDRSB, decoder.KindSTRB:
		return 1
	case decoder.KindLDRH, decoder.KindLDRSH, decoder.KindSTRH:
		return 2
	default:
		return 4
	}
}

func (m *Machine) execLoadSingle(rec decoder.Record) (diverged, trapped bool) {
	addr, writebackAddr := m.effectiveAddress(rec)
	size := sizeOf(rec)

	value, ok, kind, cause := m.Mem.Read(m.CPU.CurrentSecurity(), addr, size)
	if !ok {
		m.raiseFault(kind, cause, addr)
		return false, true
	}

	switch rec.Kind {
	case decoder.KindLDRSB:
		value = alu.SignExtend(value, 8)
	case decoder.KindLDRSH:
		value = alu.SignExtend(value, 16)
	}

	if rec.Writeback {
		m.CPU.SetReg(uint32(rec.Rn), writebackAddr)
	}

	if rec.Rd == 15 {
		if er, ok := trustzone.DecodeExcReturn(value); ok {
			if m.NVIC == nil {
				m.raiseFault(cpu.UsageFault, cpu.CauseInvState, value)
				return false, true
			}
			if m.NVIC.Return(er) {
				return false, true
			}
			return true, false
		}
		m.CPU.SetPC(value &^ 1)
		return true, false
	}

	m.CPU.SetReg(uint32(rec.Rd), value)
	return false, false
}

func (m *Machine) execStoreSingle(rec decoder.Record) (diverged, trapped bool) {
	addr, writebackAddr := m.effectiveAddress(rec)
	size := sizeOf(rec)
	value := m.CPU.Reg(uint32(rec.Rd))

	if ok, kind, cause := m.Mem.Write(m.CPU.CurrentSecurity(), addr, size, value); !ok {
		m.raiseFault(kind, cause, addr)
		return false, true
	}
	if rec.Writeback {
		m.CPU.SetReg(uint32(rec.Rn), writebackAddr)
	}
	return false, false
}

func (m *Machine) execLoadDouble(rec decoder.Record) (diverged, trapped bool) {
	addr, writebackAddr := m.effectiveAddress(rec)

	v1, ok, kind, cause := m.Mem.Read(m.CPU.CurrentSecurity(), addr, 4)
	if !ok {
		m.raiseFault(kind, cause, addr)
		return false, true
	}
	v2, ok, kind, cause := m.Mem.Read(m.CPU.CurrentSecurity(), addr+4, 4)
	if !ok {
		m.raiseFault(kind, cause, addr+4)
		return false, true
	}

	m.CPU.SetReg(uint32(rec.Rd), v1)
	m.CPU.SetReg(uint32(rec.Rt2), v2)
	if rec.Writeback {
		m.CPU.SetReg(uint32(rec.Rn), writebackAddr)
	}
	return false, false
}

func (m *Machine) execStoreDouble(rec decoder.Record) (diverged, trapped bool) {
	addr, writebackAddr := m.effectiveAddress(rec)
	v1 := m.CPU.Reg(uint32(rec.Rd))
	v2 := m.CPU.Reg(uint32(rec.Rt2))

	if ok, kind, cause := m.Mem.Write(m.CPU.CurrentSecurity(), addr, 4, v1); !ok {
		m.raiseFault(kind, cause, addr)
		return false, true
	}
	if ok, kind, cause := m.Mem.Write(m.CPU.CurrentSecurity(), addr+4, 4, v2); !ok {
		m.raiseFault(kind, cause, addr+4)
		return false, true
	}
	if rec.Writeback {
		m.CPU.SetReg(uint32(rec.Rn), writebackAddr)
	}
	return false, false
}

// multipleListBase returns the address of the lowest-numbered register in
// RegList: Rn itself for LDM/STM/POP (ascending, post-indexed), or Rn
// minus the whole list's size for LDMDB/STMDB/PUSH (the base already
// having been decremented before the first transfer).
func multipleListBase(rec decoder.Record, rnValue uint32) uint32 {
	count := uint32(bits.OnesCount16(rec.RegList))
	if rec.Index && !rec.Add {
		return rnValue - count*4
	}
	return rnValue
}

func (m *Machine) execLoadMultiple(rec decoder.Record) (diverged, trapped bool) {
	rnValue := m.CPU.Reg(uint32(rec.Rn))
	base := multipleListBase(rec, rnValue)
	sec := m.CPU.CurrentSecurity()

	values := make(map[uint8]uint32)
	addr := base
	for reg := uint8(0); reg < 16; reg++ {
		if rec.RegList&(1<<reg) == 0 {
			continue
		}
		v, ok, kind, cause := m.Mem.Read(sec, addr, 4)
		if !ok {
			m.raiseFault(kind, cause, addr)
			return false, true
		}
		values[reg] = v
		addr += 4
	}

	for reg := uint8(0); reg < 15; reg++ {
		if v, present := values[reg]; present {
			m.CPU.SetReg(uint32(reg), v)
		}
	}
	if rec.Writeback {
		count := uint32(bits.OnesCount16(rec.RegList))
		if rec.Add {
			m.CPU.SetReg(uint32(rec.Rn), rnValue+count*4)
		} else {
			m.CPU.SetReg(uint32(rec.Rn), rnValue-count*4)
		}
	}

	if v, present := values[15]; present {
		if er, ok := trustzone.DecodeExcReturn(v); ok {
			if m.NVIC == nil {
				m.raiseFault(cpu.UsageFault, cpu.CauseInvState, v)
				return false, true
			}
			if m.NVIC.Return(er) {
				return false, true
			}
			return true, false
		}
		m.CPU.SetPC(v &^ 1)
		return true, false
	}
	return false, false
}

func (m *Machine) execStoreMultiple(rec decoder.Record) (diverged, trapped bool) {
	rnValue := m.CPU.Reg(uint32(rec.Rn))
	base := multipleListBase(rec, rnValue)
	sec := m.CPU.CurrentSecurity()

	addr := base
	for reg := uint8(0); reg < 16; reg++ {
		if rec.RegList&(1<<reg) == 0 {
			continue
		}
		if ok, kind, cause := m.Mem.Write(sec, addr, 4, m.CPU.Reg(uint32(reg))); !ok {
			m.raiseFault(kind, cause, addr)
			return false, true
		}
		addr += 4
	}

	if rec.Writeback {
		count := uint32(bits.OnesCount16(rec.RegList))
		if rec.Add {
			m.CPU.SetReg(uint32(rec.Rn), rnValue+count*4)
		} else {
			m.CPU.SetReg(uint32(rec.Rn), rnValue-count*4)
		}
	}
	return false, false
}

// execLoadExclusive implements LDREX/LDREXB/LDREXH: read size bytes from
// [Rn], record the monitor reservation, and load the (zero-extended)
// value into Rd.
func (m *Machine) execLoadExclusive(rec decoder.Record, size uint8) (diverged, trapped bool) {
	addr := m.CPU.Reg(uint32(rec.Rn)) + rec.Imm
	value, ok, kind, cause := m.Mem.Read(m.CPU.CurrentSecurity(), addr, size)
	if !ok {
		m.raiseFault(kind, cause, addr)
		return false, true
	}
	m.CPU.Reserve(addr)
	m.CPU.SetReg(uint32(rec.Rd), value)
	return false, false
}

// execStoreExclusive implements STREX/STREXB/STREXH: Rm holds the value
// to store in every encoding, Rd receives the success/failure status.
func (m *Machine) execStoreExclusive(rec decoder.Record, size uint8) (diverged, trapped bool) {
	addr := m.CPU.Reg(uint32(rec.Rn)) + rec.Imm
	if !m.CPU.CheckAndClearReservation(addr) {
		m.CPU.SetReg(uint32(rec.Rd), 1)
		return false, false
	}

	value := m.CPU.Reg(uint32(rec.Rm))
	if ok, kind, cause := m.Mem.Write(m.CPU.CurrentSecurity(), addr, size, value); !ok {
		m.raiseFault(kind, cause, addr)
		return false, true
	}
	m.CPU.SetReg(uint32(rec.Rd), 0)
	return false, false
}
