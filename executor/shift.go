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
)

// execShiftExtendBitfield covers the standalone shift mnemonics (LSL/LSR/
// ASR/ROR/RRX, both immediate and register-controlled amounts), sign/
// zero-extension, the REV family, CLZ/RBIT, and the bitfield instructions
// (BFI/BFC/UBFX/SBFX).
func (m *Machine) execShiftExtendBitfield(rec decoder.Record) (trapped bool) {
	switch rec.Kind {
	case decoder.KindLSLimm, decoder.KindLSRimm, decoder.KindASRimm, decoder.KindRORimm, decoder.KindRRX:
		rm := m.CPU.Reg(uint32(rec.Rm))
		result, carry := alu.ShiftC(rm, rec.Shift, rec.ShiftAmount, m.CPU.Status().Carry())
		m.CPU.SetReg(uint32(rec.Rd), result)
		m.commitFlags(rec, func(st *cpu.Status) { st.NZ(result) })
		m.commitShiftCarry(rec, carry)
		return false

	case decoder.KindLSLreg, decoder.KindLSRreg, decoder.KindASRreg, decoder.KindRORreg:
		rn := m.CPU.Reg(uint32(rec.Rn))
		amount := uint8(m.CPU.Reg(uint32(rec.Rm)) & 0xff)
		result, carry := alu.ShiftC(rn, shiftKindOf(rec.Kind), amount, m.CPU.Status().Carry())
		m.CPU.SetReg(uint32(rec.Rd), result)
		m.commitFlags(rec, func(st *cpu.Status) { st.NZ(result) })
		m.commitShiftCarry(rec, carry)
		return false

	case decoder.KindSXTB:
		m.extend(rec, 8, true)
		return false
	case decoder.KindSXTH:
		m.extend(rec, 16, true)
		return false
	case decoder.KindUXTB:
		m.extend(rec, 8, false)
		return false
	case decoder.KindUXTH:
		m.extend(rec, 16, false)
		return false

	case decoder.KindSXTB16:
		rm := rotateRight(m.CPU.Reg(uint32(rec.Rm)), uint32(rec.ShiftAmount))
		lo := alu.SignExtend(rm&0xff, 8) & 0xffff
		hi := alu.SignExtend((rm>>16)&0xff, 8) & 0xffff
		m.CPU.SetReg(uint32(rec.Rd), (hi<<16)|lo)
		return false
	case decoder.KindUXTB16:
		rm := rotateRight(m.CPU.Reg(uint32(rec.Rm)), uint32(rec.ShiftAmount))
		m.CPU.SetReg(uint32(rec.Rd), (rm&0xff)|(rm&0xff0000))
		return false

	case decoder.KindREV:
		m.CPU.SetReg(uint32(rec.Rd), alu.ReverseBytes(m.CPU.Reg(uint32(rec.Rm))))
		return false
	case decoder.KindREV16:
		rm := m.CPU.Reg(uint32(rec.Rm))
		m.CPU.SetReg(uint32(rec.Rd), alu.ReverseBytes16(rm))
		return false
	case decoder.KindREVSH:
		rm := m.CPU.Reg(uint32(rec.Rm))
		swapped := alu.ReverseBytes16(rm) & 0xffff
		m.CPU.SetReg(uint32(rec.Rd), alu.SignExtend(swapped, 16))
		return false
	case decoder.KindRBIT:
		m.CPU.SetReg(uint32(rec.Rd), alu.ReverseBits(m.CPU.Reg(uint32(rec.Rm))))
		return false
	case decoder.KindCLZ:
		m.CPU.SetReg(uint32(rec.Rd), alu.CountLeadingZeros(m.CPU.Reg(uint32(rec.Rm))))
		return false

	case decoder.KindBFC:
		rd := m.CPU.Reg(uint32(rec.Rd))
		lsb, msb := rec.Imm, uint32(rec.ShiftAmount)
		m.CPU.SetReg(uint32(rec.Rd), clearBitfield(rd, lsb, msb))
		return false
	case decoder.KindBFI:
		rd := m.CPU.Reg(uint32(rec.Rd))
		rn := m.CPU.Reg(uint32(rec.Rn))
		lsb, msb := rec.Imm, uint32(rec.ShiftAmount)
		cleared := clearBitfield(rd, lsb, msb)
		width := msb - lsb + 1
		field := (rn & ((uint32(1) << width) - 1)) << lsb
		m.CPU.SetReg(uint32(rec.Rd), cleared|field)
		return false
	case decoder.KindUBFX:
		rn := m.CPU.Reg(uint32(rec.Rn))
		lsb, widthMinus1 := rec.Imm, uint32(rec.ShiftAmount)
		width := widthMinus1 + 1
		m.CPU.SetReg(uint32(rec.Rd), (rn>>lsb)&((uint32(1)<<width)-1))
		return false
	case decoder.KindSBFX:
		rn := m.CPU.Reg(uint32(rec.Rn))
		lsb, widthMinus1 := rec.Imm, uint32(rec.ShiftAmount)
		width := widthMinus1 + 1
		field := (rn >> lsb) & ((uint32(1) << width) - 1)
		m.CPU.SetReg(uint32(rec.Rd), alu.SignExtend(field, uint(width)))
		return false
	}
	return false
}

func shiftKindOf(k decoder.Kind) alu.ShiftType {
	switch k {
	case decoder.KindLSLreg:
		return alu.LSL
	case decoder.KindLSRreg:
		return alu.LSR
	case decoder.KindASRreg:
		return alu.ASR
	default:
		return alu.ROR
	}
}

func (m *Machine) extend(rec decoder.Record, width uint, signed bool) {
	rm := rotateRight(m.CPU.Reg(uint32(rec.Rm)), uint32(rec.ShiftAmount))
	field := rm & ((uint32(1) << width) - 1)
	if signed {
		field = alu.SignExtend(field, width)
	}
	if rec.Rn != decoder.NoReg {
		field += m.CPU.Reg(uint32(rec.Rn))
	}
	m.CPU.SetReg(uint32(rec.Rd), field)
}

func rotateRight(v uint32, amount uint32) uint32 {
	if amount == 0 {
		return v
	}
	return bits.RotateLeft32(v, -int(amount))
}

// clearBitfield zeroes bits [lsb, msb] of v, the shared first step of BFC
// and BFI.
func clearBitfield(v, lsb, msb uint32) uint32 {
	width := msb - lsb + 1
	mask := ((uint32(1) << width) - 1) << lsb
	return v &^ mask
}
