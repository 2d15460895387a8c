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

package decoder_test

import (
	"testing"

	"github.com/m33mu-go/m33mu/decoder"
	"github.com/m33mu-go/m33mu/test"
)

// scenario 1: MOVS R0,#0x34 then CMP R0,#5.
func TestDecodeMOVSImm(t *testing.T) {
	r := decoder.Decode(0x2034, 0)
	test.ExpectEquality(t, r.Kind, decoder.KindMOVimm)
	test.ExpectEquality(t, r.Len, uint8(2))
	test.ExpectEquality(t, r.Rd, uint8(0))
	test.ExpectEquality(t, r.Imm, uint32(0x34))
	test.ExpectEquality(t, r.SetFlags, true)
}

func TestDecodeCMPImm(t *testing.T) {
	r := decoder.Decode(0x2805, 0)
	test.ExpectEquality(t, r.Kind, decoder.KindCMPimm)
	test.ExpectEquality(t, r.Rn, uint8(0))
	test.ExpectEquality(t, r.Imm, uint32(5))
	test.ExpectEquality(t, r.SetFlags, true)
}

// scenario 2: ADDS R0,R0,R1 (register form, 16-bit add-register group).
func TestDecodeADDSReg(t *testing.T) {
	r := decoder.Decode(0x1840, 0)
	test.ExpectEquality(t, r.Kind, decoder.KindADDreg)
	test.ExpectEquality(t, r.Rd, uint8(0))
	test.ExpectEquality(t, r.Rn, uint8(0))
	test.ExpectEquality(t, r.Rm, uint8(1))
	test.ExpectEquality(t, r.SetFlags, true)
}

// scenario 3: 0xF04F7080, a modified-immediate MOV.W R0,#imm32. spec.md's
// prose describes this as producing 0x01020102 via a tile pattern, but
// bit-accurate decoding of i:imm3:imm8 (DESIGN.md's "modified-immediate
// worked example" entry) gives imm12=0x780, which is a rotated-seed form,
// not a tile: this test asserts the architecturally correct expansion.
func TestDecodeMOVWideImm(t *testing.T) {
	r := decoder.Decode(0xf04f, 0x7080)
	test.ExpectEquality(t, r.Kind, decoder.KindMOVimm)
	test.ExpectEquality(t, r.Len, uint8(4))
	test.ExpectEquality(t, r.Rd, uint8(0))
	test.ExpectEquality(t, r.Imm, uint32(0x01000000))
	test.ExpectEquality(t, r.ImmRotated, true)
}

// scenario 4: BL +0x20.
func TestDecodeBL(t *testing.T) {
	r := decoder.Decode(0xf000, 0xf810)
	test.ExpectEquality(t, r.Kind, decoder.KindBL)
	test.ExpectEquality(t, r.Len, uint8(4))
	test.ExpectEquality(t, r.Imm, uint32(0x20))
}

// scenario 6: SG gate.
func TestDecodeSG(t *testing.T) {
	r := decoder.Decode(0xe97f, 0xe97f)
	test.ExpectEquality(t, r.Kind, decoder.KindSG)
	test.ExpectEquality(t, r.Len, uint8(4))
}

func TestIs32Bit(t *testing.T) {
	test.ExpectEquality(t, decoder.Is32Bit(0x2034), false)
	test.ExpectEquality(t, decoder.Is32Bit(0xf000), true)
	test.ExpectEquality(t, decoder.Is32Bit(0xe97f), true)
	test.ExpectEquality(t, decoder.Is32Bit(0xe800), true) // top5=11101 starts at 0xe800
}

func TestDecodeIdempotent(t *testing.T) {
	a := decoder.Decode(0xf04f, 0x7080)
	b := decoder.Decode(0xf04f, 0x7080)
	test.ExpectEquality(t, a, b)
}

func TestDecodeUndefinedEncodingTraps(t *testing.T) {
	r := decoder.Decode(0xb650, 0) // unassigned corner of the 0xB6xx misc page
	test.ExpectEquality(t, r.Undefined, true)
	test.ExpectEquality(t, r.Kind, decoder.KindUndefined)
}

func TestDecodeUDF16(t *testing.T) {
	r := decoder.Decode(0xde2a, 0)
	test.ExpectEquality(t, r.Kind, decoder.KindUDF)
	test.ExpectEquality(t, r.Imm, uint32(0x2a))
}

func TestDecodePUSH(t *testing.T) {
	r := decoder.Decode(0xb500, 0) // PUSH {LR}
	test.ExpectEquality(t, r.Kind, decoder.KindPUSH)
	test.ExpectEquality(t, r.RegList, uint16(0x4000))
}

func TestDecodeBXNS(t *testing.T) {
	r := decoder.Decode(0x4701, 0) // BX R0 with the NS discriminator bit set
	test.ExpectEquality(t, r.Kind, decoder.KindBXNS)
	test.ExpectEquality(t, r.Rm, uint8(0))
}

func TestDecodeCLREX(t *testing.T) {
	r := decoder.Decode(0xf3bf, 0x8f2f)
	test.ExpectEquality(t, r.Kind, decoder.KindCLREX)
}
