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

// operand2 resolves the second operand of a data-processing Record: the
// decoded immediate for *imm Kinds, or Rm shifted by the decoded
// Shift/ShiftAmount for *reg Kinds. carryOut is only meaningful to the
// caller when rec.SetFlags is set; for immediates it's only genuinely
// produced by a rotated encoding (commitCarryFromImm below handles that
// distinction), for shifted registers alu.ShiftC already folds the
// "amount zero leaves carry unchanged" rule in.
func (m *Machine) operand2(rec decoder.Record, isImm bool) (value uint32, carryOut bool) {
	if isImm {
		return rec.Imm, rec.CarryOut
	}
	return alu.ShiftC(m.CPU.Reg(uint32(rec.Rm)), rec.Shift, rec.ShiftAmount, m.CPU.Status().Carry())
}

// execDataProcessing covers every register- and immediate-operand ALU
// instruction: AND/ORR/EOR/BIC/ORN/ADD/ADC/SUB/SBC/RSB/CMP/CMN/TST/TEQ/
// MOV/MVN/ADR, in both their *reg and *imm forms. spec.md §4.4 groups
// these by flag-setting discipline rather than by opcode, so this
// function's cases follow that grouping: compare forms always commit
// NZCV, MOV/MVN commit N/Z and a conditional carry from the operand,
// everything else runs through AddWithCarry or a plain bitwise op and
// commits via commitFlags.
func (m *Machine) execDataProcessing(rec decoder.Record) (trapped bool) {
	switch rec.Kind {
	case decoder.KindADR:
		base := (m.CPU.PC() + 4) &^ 0x3
		if rec.Add {
			m.CPU.SetReg(uint32(rec.Rd), base+rec.Imm)
		} else {
			m.CPU.SetReg(uint32(rec.Rd), base-rec.Imm)
		}
		return false

	case decoder.KindMOVT:
		rd := m.CPU.Reg(uint32(rec.Rd))
		m.CPU.SetReg(uint32(rec.Rd), (rec.Imm<<16)|(rd&0xffff))
		return false
	}

	isImm := rec.Kind == decoder.KindMOVimm || rec.Kind == decoder.KindMVNimm ||
		rec.Kind == decoder.KindANDimm || rec.Kind == decoder.KindORRimm ||
		rec.Kind == decoder.KindEORimm || rec.Kind == decoder.KindBICimm ||
		rec.Kind == decoder.KindORNimm || rec.Kind == decoder.KindADDimm ||
		rec.Kind == decoder.KindADDSPimm || rec.Kind == decoder.KindSUBimm ||
		rec.Kind == decoder.KindSUBSPimm || rec.Kind == decoder.KindRSBimm ||
		rec.Kind == decoder.KindADCimm || rec.Kind == decoder.KindSBCimm ||
		rec.Kind == decoder.KindCMPimm || rec.Kind == decoder.KindCMNimm ||
		rec.Kind == decoder.KindTSTimm || rec.Kind == decoder.KindTEQimm

	op2, shiftCarry := m.operand2(rec, isImm)

	switch rec.Kind {
	case decoder.KindMOVreg, decoder.KindMOVimm:
		m.CPU.SetReg(uint32(rec.Rd), op2)
		m.commitFlags(rec, func(st *cpu.Status) { st.NZ(op2) })
		if !isImm {
			m.commitShiftCarry(rec, shiftCarry)
		} else {
			m.commitCarryFromImm(rec)
		}
		return false

	case decoder.KindMVNreg, decoder.KindMVNimm:
		result := ^op2
		m.CPU.SetReg(uint32(rec.Rd), result)
		m.commitFlags(rec, func(st *cpu.Status) { st.NZ(result) })
		if !isImm {
			m.commitShiftCarry(rec, shiftCarry)
		} else {
			m.commitCarryFromImm(rec)
		}
		return false

	case decoder.KindANDreg, decoder.KindANDimm, decoder.KindTSTreg, decoder.KindTSTimm:
		rn := m.CPU.Reg(uint32(rec.Rn))
		result := rn & op2
		if rec.Kind != decoder.KindTSTreg && rec.Kind != decoder.KindTSTimm {
			m.CPU.SetReg(uint32(rec.Rd), result)
		}
		m.commitFlags(rec, func(st *cpu.Status) { st.NZ(result) })
		if !isImm {
			m.commitShiftCarry(rec, shiftCarry)
		} else {
			m.commitCarryFromImm(rec)
		}
		return false

	case decoder.KindORRreg, decoder.KindORRimm:
		rn := m.CPU.Reg(uint32(rec.Rn))
		result := rn | op2
		m.CPU.SetReg(uint32(rec.Rd), result)
		m.commitFlags(rec, func(st *cpu.Status) { st.NZ(result) })
		if !isImm {
			m.commitShiftCarry(rec, shiftCarry)
		} else {
			m.commitCarryFromImm(rec)
		}
		return false

	case decoder.KindORNreg, decoder.KindORNimm:
		rn := m.CPU.Reg(uint32(rec.Rn))
		result := rn | ^op2
		m.CPU.SetReg(uint32(rec.Rd), result)
		m.commitFlags(rec, func(st *cpu.Status) { st.NZ(result) })
		return false

	case decoder.KindEORreg, decoder.KindEORimm, decoder.KindTEQreg, decoder.KindTEQimm:
		rn := m.CPU.Reg(uint32(rec.Rn))
		result := rn ^ op2
		if rec.Kind != decoder.KindTEQreg && rec.Kind != decoder.KindTEQimm {
			m.CPU.SetReg(uint32(rec.Rd), result)
		}
		m.commitFlags(rec, func(st *cpu.Status) { st.NZ(result) })
		if !isImm {
			m.commitShiftCarry(rec, shiftCarry)
		} else {
			m.commitCarryFromImm(rec)
		}
		return false

	case decoder.KindBICreg, decoder.KindBICimm:
		rn := m.CPU.Reg(uint32(rec.Rn))
		result := rn &^ op2
		m.CPU.SetReg(uint32(rec.Rd), result)
		m.commitFlags(rec, func(st *cpu.Status) { st.NZ(result) })
		if !isImm {
			m.commitShiftCarry(rec, shiftCarry)
		} else {
			m.commitCarryFromImm(rec)
		}
		return false

	case decoder.KindADDreg, decoder.KindADDimm, decoder.KindADDSPreg, decoder.KindADDSPimm,
		decoder.KindCMNreg, decoder.KindCMNimm:
		rn := m.CPU.Reg(uint32(rec.Rn))
		result, carry, overflow := alu.AddWithCarry(rn, op2, 0)
		if rec.Kind != decoder.KindCMNreg && rec.Kind != decoder.KindCMNimm {
			m.CPU.SetReg(uint32(rec.Rd), result)
		}
		m.commitFlags(rec, func(st *cpu.Status) { st.NZCV(result, carry, overflow) })
		return false

	case decoder.KindADCreg, decoder.KindADCimm:
		rn := m.CPU.Reg(uint32(rec.Rn))
		carryIn := uint32(0)
		if m.CPU.Status().Carry() {
			carryIn = 1
		}
		result, carry, overflow := alu.AddWithCarry(rn, op2, carryIn)
		m.CPU.SetReg(uint32(rec.Rd), result)
		m.commitFlags(rec, func(st *cpu.Status) { st.NZCV(result, carry, overflow) })
		return false

	case decoder.KindSUBreg, decoder.KindSUBimm, decoder.KindSUBSPimm,
		decoder.KindCMPreg, decoder.KindCMPimm:
		rn := m.CPU.Reg(uint32(rec.Rn))
		result, carry, overflow := alu.AddWithCarry(rn, ^op2, 1)
		if rec.Kind != decoder.KindCMPreg && rec.Kind != decoder.KindCMPimm {
			m.CPU.SetReg(uint32(rec.Rd), result)
		}
		m.commitFlags(rec, func(st *cpu.Status) { st.NZCV(result, carry, overflow) })
		return false

	case decoder.KindSBCreg, decoder.KindSBCimm:
		rn := m.CPU.Reg(uint32(rec.Rn))
		carryIn := uint32(0)
		if m.CPU.Status().Carry() {
			carryIn = 1
		}
		result, carry, overflow := alu.AddWithCarry(rn, ^op2, carryIn)
		m.CPU.SetReg(uint32(rec.Rd), result)
		m.commitFlags(rec, func(st *cpu.Status) { st.NZCV(result, carry, overflow) })
		return false

	case decoder.KindRSBreg, decoder.KindRSBimm:
		rn := m.CPU.Reg(uint32(rec.Rn))
		result, carry, overflow := alu.AddWithCarry(^rn, op2, 1)
		m.CPU.SetReg(uint32(rec.Rd), result)
		m.commitFlags(rec, func(st *cpu.Status) { st.NZCV(result, carry, overflow) })
		return false
	}

	return false
}

// commitShiftCarry applies a shifted-register operand's carry-out, gated
// by the same narrow/IT-block rule as any other flag commit.
func (m *Machine) commitShiftCarry(rec decoder.Record, carry bool) {
	if rec.SetFlags && !(rec.Len == 2 && m.CPU.Status().InITBlock()) {
		m.CPU.Status().SetCarry(carry)
	}
}
