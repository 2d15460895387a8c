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

// decode16 classifies a single 16-bit half-word by hw1[15:12] (narrower
// where a group needs it), per spec.md §4.1's "Structure" paragraph: the
// dispatch groups are control/hints, data-processing, shifts, loads/
// stores, stack/misc, STM/LDM and conditional/unconditional branches.
// Overlapping patterns are ordered most-specific-first.
func decode16(hw1 uint16) Record {
	raw := uint32(hw1)

	switch {
	case hw1&0xFF00 == 0xDF00:
		return decodeSVC(hw1, raw)
	case hw1&0xFF00 == 0xDE00:
		r := bare(KindUDF, raw, 2)
		r.Imm = uint32(hw1 & 0xff)
		return r
	case hw1&0xF800 == 0xE000:
		return decodeUnconditionalBranch(hw1, raw)
	case hw1&0xF000 == 0xD000:
		return decodeConditionalBranch(hw1, raw)
	case hw1&0xF000 == 0xC000:
		return decodeMultipleLoadStore16(hw1, raw)
	case hw1&0xF000 == 0xB000:
		return decodeMisc16(hw1, raw)
	case hw1&0xF000 == 0xA000:
		return decodeLoadAddress(hw1, raw)
	case hw1&0xF000 == 0x9000:
		return decodeSPRelativeLoadStore(hw1, raw)
	case hw1&0xF000 == 0x8000:
		return decodeLoadStoreHalfwordImm(hw1, raw)
	case hw1&0xE000 == 0x6000:
		return decodeLoadStoreImm(hw1, raw)
	case hw1&0xF000 == 0x5000:
		return decodeLoadStoreReg(hw1, raw)
	case hw1&0xF800 == 0x4800:
		return decodePCRelativeLoad(hw1, raw)
	case hw1&0xFC00 == 0x4400:
		return decodeSpecialDataProcessing(hw1, raw)
	case hw1&0xFC00 == 0x4000:
		return decodeDataProcessingReg(hw1, raw)
	case hw1&0xE000 == 0x2000:
		return decodeMovCmpAddSubImm(hw1, raw)
	case hw1&0xE000 == 0x0000:
		return decodeShiftOrAddSub(hw1, raw)
	}

	return undefined(raw, 2)
}

// decodeShiftOrAddSub covers LSL/LSR/ASR #imm5 and ADD/SUB register/imm3,
// hw1[15:13] == 0b000.
func decodeShiftOrAddSub(hw1 uint16, raw uint32) Record {
	op := (hw1 >> 11) & 0x3
	rd := uint8(hw1 & 0x7)
	rn := uint8((hw1 >> 3) & 0x7)

	if op != 0b11 {
		imm5 := uint8((hw1 >> 6) & 0x1f)
		r := bare(KindLSLimm, raw, 2)
		switch op {
		case 0b00:
			r.Kind = KindLSLimm
		case 0b01:
			r.Kind = KindLSRimm
			r.Shift = alu.LSR
			if imm5 == 0 {
				imm5 = 32
			}
		case 0b10:
			r.Kind = KindASRimm
			r.Shift = alu.ASR
			if imm5 == 0 {
				imm5 = 32
			}
		}
		r.Rd = rd
		r.Rm = rn
		r.ShiftAmount = imm5
		r.SetFlags = true
		return r
	}

	// Add/subtract register or 3-bit immediate.
	immOrReg := uint8((hw1 >> 6) & 0x7)
	isImm := hw1&(1<<10) != 0
	isSub := hw1&(1<<9) != 0

	r := bare(KindADDreg, raw, 2)
	r.Rd = rd
	r.Rn = rn
	r.SetFlags = true
	if isImm {
		r.Imm = uint32(immOrReg)
		if isSub {
			r.Kind = KindSUBimm
		} else {
			r.Kind = KindADDimm
		}
	} else {
		r.Rm = immOrReg
		if isSub {
			r.Kind = KindSUBreg
		} else {
			r.Kind = KindADDreg
		}
	}
	return r
}

// decodeMovCmpAddSubImm covers MOVS/CMP/ADDS/SUBS Rd(n), #imm8, hw1[15:13]
// == 0b001.
func decodeMovCmpAddSubImm(hw1 uint16, raw uint32) Record {
	op := (hw1 >> 11) & 0x3
	rdn := uint8((hw1 >> 8) & 0x7)
	imm8 := uint32(hw1 & 0xff)

	r := bare(KindMOVimm, raw, 2)
	r.SetFlags = true
	r.Imm = imm8

	switch op {
	case 0b00:
		r.Kind = KindMOVimm
		r.Rd = rdn
	case 0b01:
		r.Kind = KindCMPimm
		r.Rn = rdn
	case 0b10:
		r.Kind = KindADDimm
		r.Rd, r.Rn = rdn, rdn
	case 0b11:
		r.Kind = KindSUBimm
		r.Rd, r.Rn = rdn, rdn
	}
	return r
}

// dataProcessingRegKind maps the op field (bits 9:6) of the 16-bit data-
// processing-register group to its Kind.
var dataProcessingRegKind = [16]Kind{
	KindANDreg, KindEORreg, KindLSLreg, KindLSRreg,
	KindASRreg, KindADCreg, KindSBCreg, KindRORreg,
	KindTSTreg, KindRSBimm /* NEGS: RSB Rd,Rn,#0 */, KindCMPreg, KindCMNreg,
	KindORRreg, KindMUL, KindBICreg, KindMVNreg,
}

// decodeDataProcessingReg covers the sixteen low-register two-operand ALU
// operations, hw1[15:10] == 0b010000.
func decodeDataProcessingReg(hw1 uint16, raw uint32) Record {
	op := (hw1 >> 6) & 0xf
	rm := uint8((hw1 >> 3) & 0x7)
	rdn := uint8(hw1 & 0x7)

	r := bare(dataProcessingRegKind[op], raw, 2)
	r.SetFlags = true

	switch op {
	case 0b1001: // RSB Rd, Rn, #0 (NEGS)
		r.Rd, r.Rn, r.Imm = rdn, rm, 0
	case 0b1000, 0b1010, 0b1011: // TST/CMP/CMN: Rn,Rm only
		r.Rn, r.Rm = rdn, rm
	default:
		r.Rd, r.Rn, r.Rm = rdn, rdn, rm
	}
	return r
}

// decodeSpecialDataProcessing covers ADD/CMP/MOV over the full register
// set (including R8-R15) and BX/BLX, hw1[15:10] == 0b010001.
func decodeSpecialDataProcessing(hw1 uint16, raw uint32) Record {
	op := (hw1 >> 8) & 0x3
	dn := uint8((hw1>>7)&0x1) << 3
	rm := uint8((hw1 >> 3) & 0xf)
	rdn := dn | uint8(hw1&0x7)

	switch op {
	case 0b00:
		r := bare(KindADDreg, raw, 2)
		r.Rd, r.Rn, r.Rm = rdn, rdn, rm
		return r
	case 0b01:
		r := bare(KindCMPreg, raw, 2)
		r.SetFlags = true
		r.Rn, r.Rm = rdn, rm
		return r
	case 0b10:
		r := bare(KindMOVreg, raw, 2)
		r.Rd, r.Rm = rdn, rm
		return r
	default: // 0b11: BX/BLX, and their TrustZone-M BXNS/BLXNS variants
		l := hw1 & (1 << 7)
		ns := hw1&0x7 != 0 // SBZ(000) on plain BX/BLX; ARMv8-M repurposes it for NS
		if l == 0 {
			kind := KindBX
			if ns {
				kind = KindBXNS
			}
			r := bare(kind, raw, 2)
			r.Rm = rm
			return r
		}
		kind := KindBLX
		if ns {
			kind = KindBLXNS
		}
		r := bare(kind, raw, 2)
		r.Rm = rm
		return r
	}
}

// decodePCRelativeLoad covers LDR Rt, [PC, #imm8*4], hw1[15:11] == 0b01001.
func decodePCRelativeLoad(hw1 uint16, raw uint32) Record {
	r := bare(KindLDRlit, raw, 2)
	r.Rd = uint8((hw1 >> 8) & 0x7)
	r.Rn = 15
	r.Imm = uint32(hw1&0xff) << 2
	r.Index, r.Add = true, true
	return r
}

var loadStoreRegKind = [8]Kind{
	KindSTR, KindSTRH, KindSTRB, KindLDRSB,
	KindLDR, KindLDRH, KindLDRB, KindLDRSH,
}

// decodeLoadStoreReg covers the register-offset load/store family,
// hw1[15:12] == 0b0101.
func decodeLoadStoreReg(hw1 uint16, raw uint32) Record {
	op := (hw1 >> 9) & 0x7
	rm := uint8((hw1 >> 6) & 0x7)
	rn := uint8((hw1 >> 3) & 0x7)
	rt := uint8(hw1 & 0x7)

	r := bare(loadStoreRegKind[op], raw, 2)
	r.Rd, r.Rn, r.Rm = rt, rn, rm
	r.Index, r.Add = true, true
	return r
}

// decodeLoadStoreImm covers word/byte immediate-offset load/store,
// hw1[15:13] == 0b011.
func decodeLoadStoreImm(hw1 uint16, raw uint32) Record {
	isByte := hw1&(1<<12) != 0
	isLoad := hw1&(1<<11) != 0
	imm5 := uint32((hw1 >> 6) & 0x1f)
	rn := uint8((hw1 >> 3) & 0x7)
	rt := uint8(hw1 & 0x7)

	var kind Kind
	switch {
	case isByte && isLoad:
		kind = KindLDRB
	case isByte && !isLoad:
		kind = KindSTRB
	case !isByte && isLoad:
		kind = KindLDR
		imm5 <<= 2
	default:
		kind = KindSTR
		imm5 <<= 2
	}

	r := bare(kind, raw, 2)
	r.Rd, r.Rn = rt, rn
	r.Imm = imm5
	r.Index, r.Add = true, true
	return r
}

// decodeLoadStoreHalfwordImm covers STRH/LDRH Rt, [Rn, #imm5*2],
// hw1[15:12] == 0b1000.
func decodeLoadStoreHalfwordImm(hw1 uint16, raw uint32) Record {
	isLoad := hw1&(1<<11) != 0
	imm5 := uint32((hw1>>6)&0x1f) << 1
	rn := uint8((hw1 >> 3) & 0x7)
	rt := uint8(hw1 & 0x7)

	kind := KindSTRH
	if isLoad {
		kind = KindLDRH
	}
	r := bare(kind, raw, 2)
	r.Rd, r.Rn = rt, rn
	r.Imm = imm5
	r.Index, r.Add = true, true
	return r
}

// decodeSPRelativeLoadStore covers STR/LDR Rt, [SP, #imm8*4],
// hw1[15:12] == 0b1001.
func decodeSPRelativeLoadStore(hw1 uint16, raw uint32) Record {
	isLoad := hw1&(1<<11) != 0
	rt := uint8((hw1 >> 8) & 0x7)
	imm8 := uint32(hw1&0xff) << 2

	kind := KindSTR
	if isLoad {
		kind = KindLDR
	}
	r := bare(kind, raw, 2)
	r.Rd = rt
	r.Rn = 13 // SP
	r.Imm = imm8
	r.Index, r.Add = true, true
	return r
}

// decodeLoadAddress covers ADR Rd, label and ADD Rd, SP, #imm8*4,
// hw1[15:12] == 0b1010.
func decodeLoadAddress(hw1 uint16, raw uint32) Record {
	rd := uint8((hw1 >> 8) & 0x7)
	imm8 := uint32(hw1&0xff) << 2

	if hw1&(1<<11) == 0 {
		r := bare(KindADR, raw, 2)
		r.Rd = rd
		r.Imm = imm8
		return r
	}
	r := bare(KindADDSPimm, raw, 2)
	r.Rd, r.Rn = rd, 13
	r.Imm = imm8
	return r
}

// decodeMultipleLoadStore16 covers 16-bit STMIA!/LDMIA!, hw1[15:12] ==
// 0b1100.
func decodeMultipleLoadStore16(hw1 uint16, raw uint32) Record {
	isLoad := hw1&(1<<11) != 0
	rn := uint8((hw1 >> 8) & 0x7)
	list := uint16(hw1 & 0xff)

	kind := KindSTM
	if isLoad {
		kind = KindLDM
	}
	r := bare(kind, raw, 2)
	r.Rn = rn
	r.RegList = list
	r.Writeback = true
	r.Index, r.Add = false, true
	return r
}

// decodeConditionalBranch covers B<cond> #imm8*2, hw1[15:12] == 0b1101
// (SVC's 0b1111 sub-range is intercepted by the caller first).
func decodeConditionalBranch(hw1 uint16, raw uint32) Record {
	r := bare(KindBcond, raw, 2)
	r.Cond = uint8((hw1 >> 8) & 0xf)
	r.Imm = alu.SignExtend(uint32(hw1&0xff)<<1, 9)
	return r
}

// decodeUnconditionalBranch covers B #imm11*2, hw1[15:11] == 0b11100.
func decodeUnconditionalBranch(hw1 uint16, raw uint32) Record {
	r := bare(KindB, raw, 2)
	r.Imm = alu.SignExtend(uint32(hw1&0x7ff)<<1, 12)
	return r
}

// decodeSVC covers SVC #imm8, hw1 & 0xff00 == 0xdf00.
func decodeSVC(hw1 uint16, raw uint32) Record {
	r := bare(KindSVC, raw, 2)
	r.Imm = uint32(hw1 & 0xff)
	return r
}

// decodeMisc16 covers the 0b1011 "miscellaneous 16-bit instructions"
// space: SP adjust, CBZ/CBNZ, extend, PUSH, REV family, POP, BKPT, hints
// and IT.
func decodeMisc16(hw1 uint16, raw uint32) Record {
	switch {
	case hw1&0xFF00 == 0xB000 || hw1&0xFF00 == 0xB080:
		return decodeAddSubSPImm(hw1, raw)
	case hw1&0xF500 == 0xB100:
		return decodeCompareAndBranch(hw1, raw)
	case hw1&0xFFC0 == 0xB200:
		return decodeExtend(hw1, raw, KindSXTH)
	case hw1&0xFFC0 == 0xB240:
		return decodeExtend(hw1, raw, KindSXTB)
	case hw1&0xFFC0 == 0xB280:
		return decodeExtend(hw1, raw, KindUXTH)
	case hw1&0xFFC0 == 0xB2C0:
		return decodeExtend(hw1, raw, KindUXTB)
	case hw1&0xF600 == 0xB400:
		return decodePushPop(hw1, raw, KindPUSH)
	case hw1&0xFFC0 == 0xBA00:
		return decodeRevFamily(hw1, raw, KindREV)
	case hw1&0xFFC0 == 0xBA40:
		return decodeRevFamily(hw1, raw, KindREV16)
	case hw1&0xFFC0 == 0xBAC0:
		return decodeRevFamily(hw1, raw, KindREVSH)
	case hw1&0xF600 == 0xBC00:
		return decodePushPop(hw1, raw, KindPOP)
	case hw1&0xFF00 == 0xBE00:
		r := bare(KindBKPT, raw, 2)
		r.Imm = uint32(hw1 & 0xff)
		return r
	case hw1&0xFF00 == 0xBF00:
		return decodeHintsOrIT(hw1, raw)
	case hw1&0xFFE0 == 0xB660:
		return decodeCPS(hw1, raw)
	}
	return undefined(raw, 2)
}

// decodeCPS covers CPSIE/CPSID, the 16-bit 0xB660 page: bit4 is "im" (1 =
// disable/set, 0 = enable/clear), bit1 selects PRIMASK (I), bit0 selects
// FAULTMASK (F).
func decodeCPS(hw1 uint16, raw uint32) Record {
	r := bare(KindCPS, raw, 2)
	r.CPSEnable = hw1&(1<<4) == 0
	r.CPSAffectI = hw1&(1<<1) != 0
	r.CPSAffectF = hw1&(1<<0) != 0
	return r
}

// decodeAddSubSPImm covers ADD/SUB SP, #imm7*4.
func decodeAddSubSPImm(hw1 uint16, raw uint32) Record {
	isSub := hw1&(1<<7) != 0
	imm7 := uint32(hw1&0x7f) << 2

	kind := KindADDSPimm
	if isSub {
		kind = KindSUBSPimm
	}
	r := bare(kind, raw, 2)
	r.Rd, r.Rn = 13, 13
	r.Imm = imm7
	return r
}

// decodeCompareAndBranch covers CBZ/CBNZ.
func decodeCompareAndBranch(hw1 uint16, raw uint32) Record {
	nonzero := hw1&(1<<11) != 0
	i := uint32((hw1 >> 9) & 0x1)
	imm5 := uint32((hw1 >> 3) & 0x1f)
	rn := uint8(hw1 & 0x7)

	kind := KindCBZ
	if nonzero {
		kind = KindCBNZ
	}
	r := bare(kind, raw, 2)
	r.Rn = rn
	r.Imm = (i << 6) | (imm5 << 1)
	return r
}

func decodeExtend(hw1 uint16, raw uint32, kind Kind) Record {
	rm := uint8((hw1 >> 3) & 0x7)
	rd := uint8(hw1 & 0x7)
	r := bare(kind, raw, 2)
	r.Rd, r.Rm = rd, rm
	return r
}

func decodeRevFamily(hw1 uint16, raw uint32, kind Kind) Record {
	rm := uint8((hw1 >> 3) & 0x7)
	rd := uint8(hw1 & 0x7)
	r := bare(kind, raw, 2)
	r.Rd, r.Rm = rd, rm
	return r
}

// decodePushPop covers PUSH {reglist, LR?} and POP {reglist, PC?}. kind
// distinguishes direction; bit8 adds LR (push) or PC (pop) to the list.
func decodePushPop(hw1 uint16, raw uint32, kind Kind) Record {
	list := uint16(hw1 & 0xff)
	if hw1&(1<<8) != 0 {
		if kind == KindPUSH {
			list |= 1 << 14 // LR
		} else {
			list |= 1 << 15 // PC
		}
	}
	r := bare(kind, raw, 2)
	r.Rn = 13 // SP
	r.RegList = list
	r.Writeback = true
	if kind == KindPUSH {
		r.Index, r.Add = true, false
	} else {
		r.Index, r.Add = false, true
	}
	return r
}

// decodeHintsOrIT covers the 0xBF00 space: IT when mask != 0, otherwise a
// hint selected by firstcond (NOP/YIELD/WFE/WFI/SEV; anything else is an
// architectural no-op hint, decoded as NOP).
func decodeHintsOrIT(hw1 uint16, raw uint32) Record {
	firstcond := uint8((hw1 >> 4) & 0xf)
	mask := uint8(hw1 & 0xf)

	if mask != 0 {
		r := bare(KindIT, raw, 2)
		r.ITFirstCond = firstcond
		r.ITMask = mask
		return r
	}

	switch firstcond {
	case 0x0:
		return bare(KindNOP, raw, 2)
	case 0x1:
		return bare(KindYIELD, raw, 2)
	case 0x2:
		return bare(KindWFE, raw, 2)
	case 0x3:
		return bare(KindWFI, raw, 2)
	case 0x4:
		return bare(KindSEV, raw, 2)
	}
	return bare(KindNOP, raw, 2)
}
