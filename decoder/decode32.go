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

package decoder

import "github.com/m33mu-go/m33mu/alu"

// decode32 dispatches a 32-bit Thumb-2 encoding by its top-level page,
// grouped the way the architecture reference's own table does: load/store
// multiple, load/store dual/exclusive/table-branch, data processing
// (register), load/store single, data processing (modified/plain
// immediate), and branches/miscellaneous control.
func decode32(hw1, hw2 uint16) Record {
	raw := uint32(hw1)<<16 | uint32(hw2)

	switch {
	case hw1&0xfe40 == 0xe800:
		return decodeLoadStoreMultiple32(hw1, hw2, raw)
	case hw1&0xfe40 == 0xe840:
		return decodeLoadStoreDoubleEtc(hw1, hw2, raw)
	case hw1&0xf800 == 0xf000 && hw2&0x8000 == 0:
		return decodeDataProcessingImm(hw1, hw2, raw)
	case hw1&0xf800 == 0xf000 && hw2&0x8000 != 0:
		return decodeBranchesMisc(hw1, hw2, raw)
	case hw1&0xee00 == 0xea00 && hw1&0x0080 == 0:
		return decodeDataProcessingShiftedReg(hw1, hw2, raw)
	case hw1&0xff80 == 0xfa00:
		return decodeShiftExtendReg(hw1, hw2, raw)
	case hw1&0xff80 == 0xfa80:
		return decodeMiscThreeReg(hw1, hw2, raw)
	case hw1&0xff80 == 0xfb00:
		return decodeMultiply32(hw1, hw2, raw)
	case hw1&0xff80 == 0xfb80:
		return decodeLongMultiplyDivide(hw1, hw2, raw)
	case hw1&0xfe00 == 0xf800:
		return decodeLoadStoreSingle(hw1, hw2, raw)
	}
	return undefined(raw, 4)
}

// --- data processing: modified 12-bit immediate (F0 page, hw2 bit15=0) ---

func decodeDataProcessingImm(hw1, hw2 uint16, raw uint32) Record {
	if hw1&0xfb40 == 0xf200 {
		return decodeDataProcessingPlainImm(hw1, hw2, raw)
	}
	if hw1&0xfb10 == 0xf300 {
		return decodeBitfield(hw1, hw2, raw)
	}
	return decodeDataProcessingModifiedImm(hw1, hw2, raw)
}

var modifiedImmKind = [16]struct{ reg, imm Kind }{
	0b0000: {KindANDreg, KindANDimm},
	0b0001: {KindBICreg, KindBICimm},
	0b0010: {KindORRreg, KindORRimm},
	0b0011: {KindORNreg, KindORNimm},
	0b0100: {KindEORreg, KindEORimm},
	0b1000: {KindADDreg, KindADDimm},
	0b1010: {KindADCreg, KindADCimm},
	0b1011: {KindSBCreg, KindSBCimm},
	0b1101: {KindSUBreg, KindSUBimm},
	0b1110: {KindRSBreg, KindRSBimm},
}

// decodeDataProcessingModifiedImm covers AND/BIC/ORR/ORN/EOR/ADD/ADC/SBC/
// SUB/RSB against a ThumbExpandImm'd constant, plus the Rd==1111/Rn==1111
// aliases (TST/TEQ/CMN/CMP and MOV/MVN).
func decodeDataProcessingModifiedImm(hw1, hw2 uint16, raw uint32) Record {
	i := (hw1 >> 10) & 1
	op := uint8((hw1 >> 5) & 0xf)
	setFlags := hw1&0x0010 != 0
	rn := uint8(hw1 & 0xf)

	imm3 := (hw2 >> 12) & 0x7
	rd := uint8((hw2 >> 8) & 0xf)
	imm8 := hw2 & 0xff
	imm12 := uint32(i)<<11 | uint32(imm3)<<8 | uint32(imm8)

	imm32, carryOut := alu.ThumbExpandImmC(imm12, false)
	rotated := imm12&0xc00 != 0

	pair := modifiedImmKind[op]
	known := pair.imm != KindUndefined
	if !known {
		return undefined(raw, 4)
	}

	// TST (AND, S=1, Rd=1111), TEQ (EOR, S=1, Rd=1111), CMN (ADD, S=1,
	// Rd=1111), CMP (RSB-like SUB..no: CMP is SUB with Rd=1111,S=1).
	if rd == 0b1111 && setFlags {
		switch op {
		case 0b0000:
			r := bare(KindTSTimm, raw, 4)
			r.Rn, r.Imm, r.CarryOut, r.ImmRotated, r.SetFlags = rn, imm32, carryOut, rotated, true
			return r
		case 0b0100:
			r := bare(KindTEQimm, raw, 4)
			r.Rn, r.Imm, r.CarryOut, r.ImmRotated, r.SetFlags = rn, imm32, carryOut, rotated, true
			return r
		case 0b1000:
			r := bare(KindCMNimm, raw, 4)
			r.Rn, r.Imm, r.SetFlags = rn, imm32, true
			return r
		case 0b1101:
			r := bare(KindCMPimm, raw, 4)
			r.Rn, r.Imm, r.SetFlags = rn, imm32, true
			return r
		}
	}

	// MOV (ORR with Rn=1111), MVN (ORN with Rn=1111).
	if rn == 0b1111 {
		switch op {
		case 0b0010:
			r := bare(KindMOVimm, raw, 4)
			r.Rd, r.Imm, r.CarryOut, r.ImmRotated, r.SetFlags = rd, imm32, carryOut, rotated, setFlags
			return r
		case 0b0011:
			r := bare(KindMVNimm, raw, 4)
			r.Rd, r.Imm, r.CarryOut, r.ImmRotated, r.SetFlags = rd, imm32, carryOut, rotated, setFlags
			return r
		}
	}

	kind := pair.imm
	r := bare(kind, raw, 4)
	r.Rd, r.Rn, r.Imm, r.CarryOut, r.ImmRotated, r.SetFlags = rd, rn, imm32, carryOut, rotated, setFlags
	return r
}

// decodeDataProcessingPlainImm covers ADDW/SUBW/ADR/MOVW/MOVT, the plain
// (non-ThumbExpandImm) 12-bit immediate forms.
func decodeDataProcessingPlainImm(hw1, hw2 uint16, raw uint32) Record {
	i := uint32(hw1>>10) & 1
	rn := uint8(hw1 & 0xf)
	imm3 := uint32(hw2>>12) & 0x7
	rd := uint8((hw2 >> 8) & 0xf)
	imm8 := uint32(hw2) & 0xff
	imm12 := i<<11 | imm3<<8 | imm8

	switch {
	case hw1&0xfbf0 == 0xf200 && rn != 0b1111:
		r := bare(KindADDimm, raw, 4)
		r.Rd, r.Rn, r.Imm = rd, rn, imm12
		return r
	case hw1&0xfbf0 == 0xf200 && rn == 0b1111:
		r := bare(KindADR, raw, 4)
		r.Rd, r.Imm, r.Add = rd, imm12, true
		return r
	case hw1&0xfbf0 == 0xf2a0 && rn != 0b1111:
		r := bare(KindSUBimm, raw, 4)
		r.Rd, r.Rn, r.Imm = rd, rn, imm12
		return r
	case hw1&0xfbf0 == 0xf2a0 && rn == 0b1111:
		r := bare(KindADR, raw, 4)
		r.Rd, r.Imm, r.Add = rd, imm12, false
		return r
	case hw1&0xfbf0 == 0xf240:
		imm16 := uint32(hw1&0xf)<<12 | i<<11 | imm3<<8 | imm8
		r := bare(KindMOVimm, raw, 4)
		r.Rd, r.Imm = rd, imm16
		return r
	case hw1&0xfbf0 == 0xf2c0:
		imm16 := uint32(hw1&0xf)<<12 | i<<11 | imm3<<8 | imm8
		r := bare(KindMOVT, raw, 4)
		r.Rd, r.Imm = rd, imm16
		return r
	}
	return undefined(raw, 4)
}

// decodeBitfield covers BFI/BFC/UBFX/SBFX.
func decodeBitfield(hw1, hw2 uint16, raw uint32) Record {
	op := (hw2 >> 5) & 0x7
	rn := uint8(hw1 & 0xf)
	rd := uint8((hw2 >> 8) & 0xf)
	imm3 := uint32(hw2>>12) & 0x7
	imm2 := uint32(hw2>>6) & 0x3
	lsb := imm3<<2 | imm2
	msb := uint32(hw2) & 0x1f

	switch op {
	case 0b110:
		if rn == 0b1111 {
			r := bare(KindBFC, raw, 4)
			r.Rd, r.Imm, r.ShiftAmount = rd, lsb, uint8(msb)
			return r
		}
		r := bare(KindBFI, raw, 4)
		r.Rd, r.Rn, r.Imm, r.ShiftAmount = rd, rn, lsb, uint8(msb)
		return r
	case 0b100:
		r := bare(KindSBFX, raw, 4)
		r.Rd, r.Rn, r.Imm, r.ShiftAmount = rd, rn, lsb, uint8(msb)
		return r
	case 0b010:
		r := bare(KindUBFX, raw, 4)
		r.Rd, r.Rn, r.Imm, r.ShiftAmount = rd, rn, lsb, uint8(msb)
		return r
	}
	return undefined(raw, 4)
}

// --- data processing (shifted register), EA page ---

var shiftedRegKind = [16]struct{ reg Kind }{
	0b0000: {KindANDreg}, 0b0001: {KindBICreg}, 0b0010: {KindORRreg},
	0b0011: {KindORNreg}, 0b0100: {KindEORreg}, 0b1000: {KindADDreg},
	0b1010: {KindADCreg}, 0b1011: {KindSBCreg}, 0b1101: {KindSUBreg},
	0b1110: {KindRSBreg},
}

func decodeDataProcessingShiftedReg(hw1, hw2 uint16, raw uint32) Record {
	op := uint8((hw1 >> 5) & 0xf)
	rn := uint8(hw1 & 0xf)
	setFlags := hw1&0x0010 != 0
	rd := uint8((hw2 >> 8) & 0xf)
	rm := uint8(hw2 & 0xf)
	imm3 := uint8((hw2 >> 12) & 0x7)
	imm2 := uint8((hw2 >> 6) & 0x3)
	shiftAmount := imm3<<2 | imm2
	shiftType := alu.ShiftType((hw2 >> 4) & 0x3)

	if rd == 0b1111 && setFlags {
		switch op {
		case 0b0000:
			r := bare(KindTSTreg, raw, 4)
			r.Rn, r.Rm, r.Shift, r.ShiftAmount, r.SetFlags = rn, rm, shiftType, shiftAmount, true
			return r
		case 0b0100:
			r := bare(KindTEQreg, raw, 4)
			r.Rn, r.Rm, r.Shift, r.ShiftAmount, r.SetFlags = rn, rm, shiftType, shiftAmount, true
			return r
		case 0b1000:
			r := bare(KindCMNreg, raw, 4)
			r.Rn, r.Rm, r.Shift, r.ShiftAmount, r.SetFlags = rn, rm, shiftType, shiftAmount, true
			return r
		case 0b1101:
			r := bare(KindCMPreg, raw, 4)
			r.Rn, r.Rm, r.Shift, r.ShiftAmount, r.SetFlags = rn, rm, shiftType, shiftAmount, true
			return r
		}
	}

	if rn == 0b1111 {
		switch op {
		case 0b0010:
			kind := KindMOVreg
			if shiftAmount != 0 || shiftType != alu.LSL {
				switch shiftType {
				case alu.LSL:
					kind = KindLSLimm
				case alu.LSR:
					kind = KindLSRimm
				case alu.ASR:
					kind = KindASRimm
				case alu.ROR:
					kind = KindRORimm
				}
				if shiftAmount == 0 && shiftType == alu.ROR {
					kind = KindRRX
				}
			}
			r := bare(kind, raw, 4)
			r.Rd, r.Rm, r.Shift, r.ShiftAmount, r.SetFlags = rd, rm, shiftType, shiftAmount, setFlags
			return r
		case 0b0011:
			r := bare(KindMVNreg, raw, 4)
			r.Rd, r.Rm, r.Shift, r.ShiftAmount, r.SetFlags = rd, rm, shiftType, shiftAmount, setFlags
			return r
		}
	}

	pair := shiftedRegKind[op]
	known := pair.reg != KindUndefined
	if !known {
		return undefined(raw, 4)
	}
	r := bare(pair.reg, raw, 4)
	r.Rd, r.Rn, r.Rm, r.Shift, r.ShiftAmount, r.SetFlags = rd, rn, rm, shiftType, shiftAmount, setFlags
	return r
}

// --- register-controlled shift and sign/zero extend, FA00 page ---

func decodeShiftExtendReg(hw1, hw2 uint16, raw uint32) Record {
	op1 := (hw1 >> 4) & 0x3
	rn := uint8(hw1 & 0xf)
	rd := uint8((hw2 >> 8) & 0xf)
	rm := uint8(hw2 & 0xf)
	setFlags := hw1&0x0010 != 0

	if hw2&0x00f0 == 0 {
		// register-controlled shifts: LSL/LSR/ASR/ROR Rd, Rn, Rm
		var kind Kind
		switch op1 {
		case 0b00:
			kind = KindLSLreg
		case 0b01:
			kind = KindLSRreg
		case 0b10:
			kind = KindASRreg
		case 0b11:
			kind = KindRORreg
		}
		r := bare(kind, raw, 4)
		r.Rd, r.Rn, r.Rm, r.SetFlags = rd, rn, rm, setFlags
		return r
	}

	// sign/zero extend, with optional add (Rn != 1111) and rotation.
	op2 := (hw2 >> 4) & 0xf
	rotate := uint8((hw2 >> 4) & 0x3)
	var kind Kind
	switch {
	case op2&0xc == 0x0 && op1 == 0b00:
		kind = KindSXTB16
	case op2&0xc == 0x0 && op1 == 0b01:
		kind = KindUXTB16
	case op2&0xc == 0x4 && op1 == 0b00:
		kind = KindSXTB
	case op2&0xc == 0x4 && op1 == 0b01:
		kind = KindUXTB
	case op2&0xc == 0x8 && op1 == 0b00:
		kind = KindSXTH
	case op2&0xc == 0x8 && op1 == 0b01:
		kind = KindUXTH
	default:
		return undefined(raw, 4)
	}
	r := bare(kind, raw, 4)
	r.Rd, r.Rm, r.ShiftAmount = rd, rm, rotate*8
	if rn != 0b1111 {
		r.Rn = rn
	}
	return r
}

// --- REV family, CLZ, RBIT, miscellaneous three-register-same page FA80 ---

func decodeMiscThreeReg(hw1, hw2 uint16, raw uint32) Record {
	op1 := (hw1 >> 4) & 0x3
	op2 := (hw2 >> 4) & 0xf
	rn := uint8(hw1 & 0xf)
	rd := uint8((hw2 >> 8) & 0xf)
	rm := uint8(hw2 & 0xf)

	if rn != rm {
		return undefined(raw, 4)
	}

	var kind Kind
	switch {
	case op1 == 0b00 && op2 == 0b1000:
		kind = KindREV
	case op1 == 0b00 && op2 == 0b1001:
		kind = KindREV16
	case op1 == 0b01 && op2 == 0b1000:
		kind = KindREVSH
	case op1 == 0b10 && op2 == 0b1000:
		kind = KindRBIT
	case op1 == 0b11 && op2 == 0b1000:
		kind = KindCLZ
	default:
		return undefined(raw, 4)
	}
	r := bare(kind, raw, 4)
	r.Rd, r.Rm = rd, rm
	return r
}

// --- 32-bit multiply, FB00 page ---

func decodeMultiply32(hw1, hw2 uint16, raw uint32) Record {
	rn := uint8(hw1 & 0xf)
	rd := uint8((hw2 >> 8) & 0xf)
	ra := uint8(hw2 >> 12 & 0xf)
	rm := uint8(hw2 & 0xf)
	op2 := (hw2 >> 4) & 0xf

	if ra == 0b1111 {
		r := bare(KindMUL, raw, 4)
		r.Rd, r.Rn, r.Rm = rd, rn, rm
		return r
	}
	switch op2 {
	case 0b0000:
		r := bare(KindMLA, raw, 4)
		r.Rd, r.Rn, r.Rm, r.Ra = rd, rn, rm, ra
		return r
	case 0b0001:
		r := bare(KindMLS, raw, 4)
		r.Rd, r.Rn, r.Rm, r.Ra = rd, rn, rm, ra
		return r
	}
	return undefined(raw, 4)
}

// --- long multiply / divide, FB80 page ---

func decodeLongMultiplyDivide(hw1, hw2 uint16, raw uint32) Record {
	rn := uint8(hw1 & 0xf)
	rdLo := uint8((hw2 >> 12) & 0xf)
	rdHi := uint8((hw2 >> 8) & 0xf)
	rm := uint8(hw2 & 0xf)
	op1 := (hw1 >> 4) & 0x7
	op2 := (hw2 >> 4) & 0xf

	switch {
	case op1 == 0b000 && op2 == 0b0000:
		r := bare(KindSMULL, raw, 4)
		r.Rd, r.Rt2, r.Rn, r.Rm = rdLo, rdHi, rn, rm
		return r
	case op1 == 0b010 && op2 == 0b0000:
		r := bare(KindUMULL, raw, 4)
		r.Rd, r.Rt2, r.Rn, r.Rm = rdLo, rdHi, rn, rm
		return r
	case op1 == 0b100 && op2 == 0b0000:
		r := bare(KindSMLAL, raw, 4)
		r.Rd, r.Rt2, r.Rn, r.Rm = rdLo, rdHi, rn, rm
		return r
	case op1 == 0b110 && op2 == 0b0000:
		r := bare(KindUMLAL, raw, 4)
		r.Rd, r.Rt2, r.Rn, r.Rm = rdLo, rdHi, rn, rm
		return r
	case op1 == 0b001 && op2 == 0b1111:
		r := bare(KindSDIV, raw, 4)
		r.Rd, r.Rn, r.Rm = rdLo, rn, rm
		return r
	case op1 == 0b101 && op2 == 0b1111:
		r := bare(KindUDIV, raw, 4)
		r.Rd, r.Rn, r.Rm = rdLo, rn, rm
		return r
	}
	return undefined(raw, 4)
}

// --- load/store multiple, E800 page ---

func decodeLoadStoreMultiple32(hw1, hw2 uint16, raw uint32) Record {
	op := (hw1 >> 7) & 0x3
	w := hw1&0x0020 != 0
	l := hw1&0x0010 != 0
	rn := uint8(hw1 & 0xf)
	regList := hw2

	wrn := uint8(rn)
	if w {
		wrn |= 0x10
	}
	if op == 0b01 && l && wrn == 0b11101 {
		r := bare(KindPOP, raw, 4)
		r.RegList, r.Rn, r.Writeback, r.Index, r.Add = regList, 13, true, false, true
		return r
	}
	if op == 0b10 && !l && wrn == 0b11101 {
		r := bare(KindPUSH, raw, 4)
		r.RegList, r.Rn, r.Writeback, r.Index, r.Add = regList, 13, true, true, false
		return r
	}

	switch {
	case op == 0b01 && l:
		r := bare(KindLDM, raw, 4)
		r.RegList, r.Rn, r.Writeback, r.Index, r.Add = regList, rn, w, false, true
		return r
	case op == 0b01 && !l:
		r := bare(KindSTM, raw, 4)
		r.RegList, r.Rn, r.Writeback, r.Index, r.Add = regList, rn, w, false, true
		return r
	case op == 0b10 && l:
		r := bare(KindLDMDB, raw, 4)
		r.RegList, r.Rn, r.Writeback, r.Index, r.Add = regList, rn, w, true, false
		return r
	case op == 0b10 && !l:
		r := bare(KindSTMDB, raw, 4)
		r.RegList, r.Rn, r.Writeback, r.Index, r.Add = regList, rn, w, true, false
		return r
	}
	return undefined(raw, 4)
}

// --- load/store dual, exclusive, table branch, E840 page ---

func decodeLoadStoreDoubleEtc(hw1, hw2 uint16, raw uint32) Record {
	if raw == 0xe97fe97f {
		return bare(KindSG, raw, 4)
	}

	p := hw1&0x0100 != 0
	u := hw1&0x0080 != 0
	w := hw1&0x0020 != 0
	l := hw1&0x0010 != 0
	rn := uint8(hw1 & 0xf)
	rt := uint8(hw2 >> 12)
	rt2 := uint8((hw2 >> 8) & 0xf)
	imm8 := uint32(hw2) & 0xff

	if p || w {
		kind := KindSTRD
		if l {
			kind = KindLDRD
		}
		r := bare(kind, raw, 4)
		r.Rt2, r.Rn, r.Imm, r.Index, r.Add, r.Writeback = rt2, rn, imm8<<2, p, u, w
		r.Rd = rt
		return r
	}

	if u {
		op := uint8((hw2 >> 4) & 0xf)
		rm := uint8(hw2 & 0xf)
		switch op {
		case 0b0000:
			r := bare(KindTBB, raw, 4)
			r.Rn, r.Rm = rn, rm
			return r
		case 0b0001:
			r := bare(KindTBH, raw, 4)
			r.Rn, r.Rm = rn, rm
			return r
		case 0b0100:
			r := bare(KindSTREXB, raw, 4)
			r.Rd, r.Rn, r.Rm = uint8(hw2&0xf), rn, rt
			return r
		case 0b0101:
			r := bare(KindSTREXH, raw, 4)
			r.Rd, r.Rn, r.Rm = uint8(hw2&0xf), rn, rt
			return r
		case 0b1100:
			r := bare(KindLDREXB, raw, 4)
			r.Rd, r.Rn = rt, rn
			return r
		case 0b1101:
			r := bare(KindLDREXH, raw, 4)
			r.Rd, r.Rn = rt, rn
			return r
		}
		return undefined(raw, 4)
	}

	kind := KindSTREX
	if l {
		kind = KindLDREX
	}
	r := bare(kind, raw, 4)
	r.Rd, r.Rn, r.Imm = rt2, rn, imm8<<2
	if l {
		r.Rd = rt
	} else {
		r.Rm = rt
		r.Rd = rt2
	}
	return r
}

// --- load/store single, F800/F000 pages ---

func decodeLoadStoreSingle(hw1, hw2 uint16, raw uint32) Record {
	size := (hw1 >> 5) & 0x3
	sign := hw1&0x0100 != 0
	l := hw1&0x0010 != 0
	rn := uint8(hw1 & 0xf)
	rt := uint8(hw2 >> 12)

	kindFor := func() Kind {
		switch {
		case size == 0b00 && l && !sign:
			return KindLDRB
		case size == 0b00 && l && sign:
			return KindLDRSB
		case size == 0b00 && !l:
			return KindSTRB
		case size == 0b01 && l && !sign:
			return KindLDRH
		case size == 0b01 && l && sign:
			return KindLDRSH
		case size == 0b01 && !l:
			return KindSTRH
		case size == 0b10 && l:
			return KindLDR
		case size == 0b10 && !l:
			return KindSTR
		}
		return KindUndefined
	}

	if rn == 0b1111 {
		u := hw1&0x0080 != 0
		imm12 := uint32(hw2) & 0xfff
		kind := kindFor()
		if kind == KindUndefined {
			return undefined(raw, 4)
		}
		if kind == KindLDR {
			kind = KindLDRlit
		}
		r := bare(kind, raw, 4)
		r.Rd, r.Imm, r.Add, r.Rn, r.Index = rt, imm12, u, 15, true
		return r
	}

	kind := kindFor()
	if kind == KindUndefined {
		return undefined(raw, 4)
	}

	switch {
	case hw1&0x0080 != 0: // imm12, U implied up, offset form
		imm12 := uint32(hw2) & 0xfff
		r := bare(kind, raw, 4)
		r.Rd, r.Rn, r.Imm, r.Index, r.Add, r.Writeback = rt, rn, imm12, true, true, false
		return r
	case hw2&0x0800 == 0 && hw2&0x0400 != 0: // imm8, negative offset, P=1 W=0
		imm8 := uint32(hw2) & 0xff
		r := bare(kind, raw, 4)
		r.Rd, r.Rn, r.Imm, r.Index, r.Add, r.Writeback = rt, rn, imm8, true, false, false
		return r
	case hw2&0x0d00 == 0x0900: // post-indexed
		u := hw2&0x0200 != 0
		imm8 := uint32(hw2) & 0xff
		r := bare(kind, raw, 4)
		r.Rd, r.Rn, r.Imm, r.Index, r.Add, r.Writeback = rt, rn, imm8, false, u, true
		return r
	case hw2&0x0d00 == 0x0d00: // pre-indexed
		u := hw2&0x0200 != 0
		imm8 := uint32(hw2) & 0xff
		r := bare(kind, raw, 4)
		r.Rd, r.Rn, r.Imm, r.Index, r.Add, r.Writeback = rt, rn, imm8, true, u, true
		return r
	case hw2&0x0fc0 == 0: // register offset, LSL by 0-3
		rm := uint8(hw2 & 0xf)
		shift := uint8((hw2 >> 4) & 0x3)
		r := bare(kind, raw, 4)
		r.Rd, r.Rn, r.Rm, r.Shift, r.ShiftAmount = rt, rn, rm, alu.LSL, shift
		r.Index, r.Add = true, true
		return r
	}
	return undefined(raw, 4)
}

// --- branches and miscellaneous control, F000/8000 page with hw2[15]=1 ---

func decodeBranchesMisc(hw1, hw2 uint16, raw uint32) Record {
	switch {
	case hw2&0xd000 == 0xd000:
		return decodeBL(hw1, hw2, raw)
	case hw2&0xd000 == 0x9000:
		return decodeBWUncond(hw1, hw2, raw)
	case hw2&0xd000 == 0x8000 && (hw1>>6)&0xe != 0xe:
		// cond 111x is not a conditional branch: that space holds
		// MSR/MRS, hints, barriers, CLREX and UDF, decoded below.
		return decodeBcondWide(hw1, hw2, raw)
	}

	if hw1 == 0xf3bf && hw2&0xff00 == 0x8f00 {
		switch hw2 & 0xf0 {
		case 0x20:
			return bare(KindCLREX, raw, 4)
		case 0x40:
			return bare(KindDSB, raw, 4)
		case 0x50:
			return bare(KindDMB, raw, 4)
		case 0x60:
			return bare(KindISB, raw, 4)
		}
	}
	if hw1 == 0xf3af && hw2&0xff00 == 0x8000 {
		switch hw2 & 0xff {
		case 0x00:
			return bare(KindNOP, raw, 4)
		case 0x01:
			return bare(KindYIELD, raw, 4)
		case 0x02:
			return bare(KindWFE, raw, 4)
		case 0x03:
			return bare(KindWFI, raw, 4)
		case 0x04:
			return bare(KindSEV, raw, 4)
		}
	}
	if hw1 == 0xf3ef && hw2&0xf000 == 0x8000 {
		r := bare(KindMRS, raw, 4)
		r.Rd, r.Imm = uint8((hw2>>8)&0xf), uint32(hw2&0xff)
		return r
	}
	if hw1&0xfff0 == 0xf380 && hw2&0xfc00 == 0x8800 {
		r := bare(KindMSR, raw, 4)
		r.Rn, r.Imm = uint8(hw1&0xf), uint32(hw2&0xff)
		return r
	}
	if hw1&0xfff0 == 0xf7f0 && hw2&0xf000 == 0xa000 {
		imm4 := uint32(hw1 & 0xf)
		imm12 := uint32(hw2) & 0xfff
		r := bare(KindUDF, raw, 4)
		r.Imm = imm4<<12 | imm12
		return r
	}
	return undefined(raw, 4)
}

func branchImm32(hw1, hw2 uint16) uint32 {
	s := uint32(hw1>>10) & 1
	imm10 := uint32(hw1) & 0x3ff
	j1 := uint32(hw2>>13) & 1
	j2 := uint32(hw2>>11) & 1
	imm11 := uint32(hw2) & 0x7ff
	i1 := ^(j1 ^ s) & 1
	i2 := ^(j2 ^ s) & 1

	imm32 := i1<<23 | i2<<22 | imm10<<12 | imm11<<1
	if s != 0 {
		imm32 |= 0xff000000
	}
	return imm32
}

func decodeBL(hw1, hw2 uint16, raw uint32) Record {
	r := bare(KindBL, raw, 4)
	r.Imm = branchImm32(hw1, hw2)
	return r
}

func decodeBWUncond(hw1, hw2 uint16, raw uint32) Record {
	r := bare(KindB, raw, 4)
	r.Imm = branchImm32(hw1, hw2)
	return r
}

func decodeBcondWide(hw1, hw2 uint16, raw uint32) Record {
	cond := uint8((hw1 >> 6) & 0xf)
	s := uint32(hw1>>10) & 1
	imm6 := uint32(hw1) & 0x3f
	j1 := uint32(hw2>>13) & 1
	j2 := uint32(hw2>>11) & 1
	imm11 := uint32(hw2) & 0x7ff

	imm32 := s<<20 | j2<<19 | j1<<18 | imm6<<12 | imm11<<1
	if s != 0 {
		imm32 |= 0xffe00000
	}
	r := bare(KindBcond, raw, 4)
	r.Cond, r.Imm = cond, imm32
	return r
}
