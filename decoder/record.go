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

// Package decoder turns one or two Thumb/Thumb-2 half-words into a tagged
// Record the executor package can act on, following spec.md §4.1: a pure
// function of the encoding that never itself touches memory or CPU state.
// It is organized the way the functional requirements ask for rather than
// the teacher's fused decode-and-execute closures (see decode16.go/
// decode32.go): a two-level dispatch, top nibble (or top-5-bit 32-bit
// class) first, then an ordered, most-specific-first mask/match list
// within each group.
package decoder

import "github.com/m33mu-go/m33mu/alu"

// NoReg marks a Record operand field that this instruction doesn't use.
const NoReg uint8 = 0xff

// Kind tags the decoded instruction's architectural meaning. Reg/Imm forms
// of the same mnemonic get distinct Kind values (the "two variants per
// op" convention spec.md §4.4 calls out for flag-setting discipline, here
// extended to every operand-shape split) so the executor can switch on
// Kind without re-deriving the addressing mode.
type Kind int

// The decoded instruction kinds this core recognises. Grouped the way
// spec.md's component table groups the executor: data processing, shift/
// extend/bit, multiply/divide, branches, load/store, system.
const (
	KindUndefined Kind = iota

	// Data processing, register and modified-immediate forms.
	KindMOVreg
	KindMOVimm
	KindMOVT
	KindMVNreg
	KindMVNimm
	KindANDreg
	KindANDimm
	KindORRreg
	KindORRimm
	KindEORreg
	KindEORimm
	KindBICreg
	KindBICimm
	KindORNreg
	KindORNimm
	KindADDreg
	KindADDimm
	KindADDSPreg
	KindADDSPimm
	KindSUBreg
	KindSUBimm
	KindSUBSPimm
	KindRSBimm
	KindRSBreg
	KindADCreg
	KindADCimm
	KindSBCreg
	KindSBCimm
	KindCMPreg
	KindCMPimm
	KindCMNreg
	KindCMNimm
	KindTSTreg
	KindTSTimm
	KindTEQreg
	KindTEQimm
	KindADR

	// Shifts, sign/zero extension, bit manipulation.
	KindLSLimm
	KindLSLreg
	KindLSRimm
	KindLSRreg
	KindASRimm
	KindASRreg
	KindRORimm
	KindRORreg
	KindRRX
	KindSXTB
	KindSXTH
	KindUXTB
	KindUXTH
	KindSXTB16
	KindUXTB16
	KindREV
	KindREV16
	KindREVSH
	KindRBIT
	KindCLZ
	KindBFI
	KindBFC
	KindUBFX
	KindSBFX

	// Multiply / divide.
	KindMUL
	KindMLA
	KindMLS
	KindUMULL
	KindSMULL
	KindUMLAL
	KindSMLAL
	KindSDIV
	KindUDIV

	// Compare-and-branch, branches, interworking.
	KindCBZ
	KindCBNZ
	KindB
	KindBcond
	KindBL
	KindBX
	KindBLX
	KindBXNS
	KindBLXNS
	KindSG
	KindTBB
	KindTBH

	// Load/store single.
	KindLDR
	KindLDRB
	KindLDRH
	KindLDRSB
	KindLDRSH
	KindLDRlit
	KindSTR
	KindSTRB
	KindSTRH

	// Load/store dual and multiple.
	KindLDRD
	KindSTRD
	KindPUSH
	KindPOP
	KindLDM
	KindSTM
	KindLDMDB
	KindSTMDB

	// Exclusive access.
	KindLDREX
	KindLDREXB
	KindLDREXH
	KindSTREX
	KindSTREXB
	KindSTREXH
	KindCLREX

	// System / control.
	KindMSR
	KindMRS
	KindCPS
	KindDSB
	KindDMB
	KindISB
	KindNOP
	KindYIELD
	KindWFE
	KindWFI
	KindSEV
	KindIT
	KindSVC
	KindBKPT
	KindUDF
)

// Record is the decoder's output: a tagged instruction with its operands,
// condition and length, per spec.md §3 ("Instruction record (decoded)").
// Unused register fields carry NoReg rather than zero, since R0 is a
// valid operand index.
type Record struct {
	Kind Kind

	// Len is the instruction length in bytes: 2 for a 16-bit encoding, 4
	// for a 32-bit one.
	Len uint8

	// Cond is the four-bit condition field governing this instruction;
	// 0b1110 (AL) for instructions that aren't themselves conditional
	// (IT-block conditioning is applied by the executor from cpu.Status,
	// not carried here).
	Cond uint8

	Rd, Rn, Rm, Ra, Rt2 uint8

	// Imm carries the instruction's single 32-bit immediate operand; its
	// meaning is Kind-specific (a branch offset, a data-processing
	// constant, a load/store offset, or a packed bitfield per spec.md
	// §4.1's LDM/STM and LDRD/STRD notes).
	Imm uint32

	// CarryOut is the carry_out produced alongside a modified-immediate
	// expansion or register shift; the executor only consults it when
	// SetFlags is true, per spec.md §4.4.
	CarryOut bool

	// ImmRotated marks a modified-immediate operand that used the
	// rotated-seed form rather than a tile-replication pattern: per
	// spec.md §4.1, CarryOut is only meaningful to the executor when this
	// is true, since the tile forms leave the carry flag unchanged.
	ImmRotated bool

	SetFlags bool

	Shift       alu.ShiftType
	ShiftAmount uint8

	// RegList is the register bitmask for LDM/STM/PUSH/POP (bit n set
	// means Rn is in the list).
	RegList uint16

	// Index is the P bit (pre-indexed when true, post-indexed when
	// false) and Add is the U bit (add the offset when true, subtract
	// when false); Writeback is the W bit. Together these encode the
	// addressing-mode triple spec.md §4.4 calls out for load/store.
	Index, Add, Writeback bool

	// ITFirstCond/ITMask are populated only for KindIT, the firstcond
	// and mask fields of a freshly decoded IT instruction (cpu.Status.
	// SetIT consumes them directly).
	ITFirstCond, ITMask uint8

	// CPSEnable, CPSAffectI and CPSAffectF are populated only for KindCPS:
	// CPSEnable is the inverted "im" bit (true clears/enables the selected
	// masks, false sets/disables them), and CPSAffectI/CPSAffectF select
	// which of PRIMASK/FAULTMASK the instruction touches.
	CPSEnable             bool
	CPSAffectI, CPSAffectF bool

	// Raw is the original encoding (first half-word only for 16-bit
	// instructions, both half-words packed as hw1<<16|hw2 for 32-bit
	// ones), kept for trap reporting per spec.md §3.
	Raw uint32

	// Undefined marks a Record produced for an encoding this decoder
	// doesn't recognise; the executor must trap to UsageFault/
	// UNDEFINSTR rather than act on any other field.
	Undefined bool
}

// undefined builds the Record a caller gets back for an unrecognised
// encoding, per spec.md §4.1's failure mode.
func undefined(raw uint32, length uint8) Record {
	return Record{Kind: KindUndefined, Undefined: true, Raw: raw, Len: length, Cond: 0b1110, Rd: NoReg, Rn: NoReg, Rm: NoReg, Ra: NoReg, Rt2: NoReg}
}

// bare returns a Record pre-filled with the NoReg sentinel in every
// operand slot and AL in Cond, the starting point every decode* helper
// builds on so it only has to set the fields it actually uses.
func bare(kind Kind, raw uint32, length uint8) Record {
	return Record{Kind: kind, Raw: raw, Len: length, Cond: 0b1110, Rd: NoReg, Rn: NoReg, Rm: NoReg, Ra: NoReg, Rt2: NoReg}
}
