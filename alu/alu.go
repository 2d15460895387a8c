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

// Package alu holds the pure helper functions shared by the decoder and the
// executor: carry-producing arithmetic, shifts, modified-immediate
// expansion, sign/zero extension and bit manipulation. None of these
// functions touch CPU or memory state; they are unit-testable in isolation
// and form the lowest layer of the instruction pipeline.
package alu

import "math/bits"

// AddWithCarry implements the ARM "AddWithCarry" primitive used by every
// ADD/ADC/SUB/SBC/CMP/CMN variant: (result, carry_out, overflow_out) =
// a + b + c_in, evaluated with enough precision to recover both the
// unsigned and signed overflow conditions in one pass.
func AddWithCarry(a, b, c uint32) (result uint32, carryOut, overflowOut bool) {
	usum := uint64(a) + uint64(b) + uint64(c)
	ssum := int64(int32(a)) + int64(int32(b)) + int64(c)
	result = uint32(usum)
	carryOut = uint64(result) != usum
	overflowOut = int64(int32(result)) != ssum
	return result, carryOut, overflowOut
}

// ShiftType enumerates the four shift/rotate operations the Thumb-2
// encoding can select for a shifted register operand.
type ShiftType int

// List of valid ShiftType values.
const (
	LSL ShiftType = iota
	LSR
	ASR
	ROR
)

// ShiftC implements the ARM "Shift_C" primitive: apply the given shift to
// value by amount positions, returning the new carry-out. Per "A2.3.2
// Pseudocode details of the shift and rotate operations" of ARMv7-M:
// amount==0 for LSL is a no-op; LSR/ASR with amount==32 behave as their
// "#0" architectural encoding; ROR with amount==0 denotes RRX (the carry
// flag rotated in from the top).
func ShiftC(value uint32, typ ShiftType, amount uint8, carryIn bool) (result uint32, carryOut bool) {
	if amount == 0 {
		if typ != ROR {
			return value, carryIn
		}
		// RRX: rotate right by one, shifting carryIn into bit 31.
		carryOut = value&0x1 == 0x1
		result = value >> 1
		if carryIn {
			result |= 0x80000000
		}
		return result, carryOut
	}

	switch typ {
	case LSL:
		if amount >= 32 {
			if amount == 32 {
				return 0, value&0x1 == 0x1
			}
			return 0, false
		}
		result = value << amount
		carryOut = (value>>(32-amount))&0x1 == 0x1
		return result, carryOut
	case LSR:
		if amount >= 32 {
			if amount == 32 {
				return 0, value&0x80000000 == 0x80000000
			}
			return 0, false
		}
		result = value >> amount
		carryOut = (value>>(amount-1))&0x1 == 0x1
		return result, carryOut
	case ASR:
		if amount >= 32 {
			carryOut = value&0x80000000 == 0x80000000
			if carryOut {
				return 0xffffffff, true
			}
			return 0, false
		}
		result = uint32(int32(value) >> amount)
		carryOut = (value>>(amount-1))&0x1 == 0x1
		return result, carryOut
	case ROR:
		m := uint32(amount) % 32
		if m == 0 {
			return value, value&0x80000000 == 0x80000000
		}
		result = (value >> m) | (value << (32 - m))
		carryOut = result&0x80000000 == 0x80000000
		return result, carryOut
	}

	panic("unreachable shift type")
}

// RorC implements the ARM "ROR_C" primitive directly: shift must be
// non-zero. It's kept separate from ShiftC because the modified-immediate
// expansion below calls it with a shift derived from the imm12 field,
// never zero by construction.
func RorC(value, shift uint32) (result uint32, carryOut bool) {
	m := shift % 32
	result = (value >> m) | (value << (32 - m))
	return result, result&0x80000000 == 0x80000000
}

// ThumbExpandImmC implements "A5.3.2 Modified immediate constants in Thumb
// instructions" of ARMv7-M: a 12-bit field decodes either to one of four
// byte-tile replication patterns (imm12<11:10> == 00) or to an 8-bit seed
// rotated right by imm12<11:7> places. carryOut is only meaningful to
// callers that apply the result with the S-bit set; unrotated tile forms
// leave the carry flag unchanged from carryIn.
func ThumbExpandImmC(imm12 uint32, carryIn bool) (imm32 uint32, carryOut bool) {
	if imm12&0xc00 == 0x000 {
		byte0 := imm12 & 0xff
		switch (imm12 & 0x300) >> 8 {
		case 0b00:
			return byte0, carryIn
		case 0b01:
			return (byte0 << 16) | byte0, carryIn
		case 0b10:
			return (byte0 << 24) | (byte0 << 8), carryIn
		default: // 0b11
			return (byte0 << 24) | (byte0 << 16) | (byte0 << 8) | byte0, carryIn
		}
	}

	unrotated := (uint32(1) << 7) | (imm12 & 0x7f)
	return RorC(unrotated, (imm12&0xf80)>>7)
}

// SignExtend sign-extends the low `bits` bits of v to a full 32-bit value.
func SignExtend(v uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(v<<shift) >> shift)
}

// ZeroExtend masks v down to its low `bits` bits.
func ZeroExtend(v uint32, bits uint) uint32 {
	if bits >= 32 {
		return v
	}
	return v & ((uint32(1) << bits) - 1)
}

// CountLeadingZeros returns the number of leading zero bits in v (CLZ).
func CountLeadingZeros(v uint32) uint32 {
	return uint32(bits.LeadingZeros32(v))
}

// ReverseBits reverses the bit order of v (REV/RBIT family).
func ReverseBits(v uint32) uint32 {
	return bits.Reverse32(v)
}

// ReverseBytes reverses the byte order of v (REV).
func ReverseBytes(v uint32) uint32 {
	return bits.ReverseBytes32(v)
}

// ReverseBytes16 reverses the byte order of each halfword independently
// (REV16), packed as two 16-bit lanes within v.
func ReverseBytes16(v uint32) uint32 {
	lo := v & 0xffff
	hi := (v >> 16) & 0xffff
	lo = (lo>>8)&0xff | (lo&0xff)<<8
	hi = (hi>>8)&0xff | (hi&0xff)<<8
	return (hi << 16) | lo
}

// MulU64 returns the full 64-bit unsigned product of a and b, split as
// (hi, lo), as used by UMULL/UMLAL.
func MulU64(a, b uint32) (hi, lo uint32) {
	product := uint64(a) * uint64(b)
	return uint32(product >> 32), uint32(product)
}

// MulS64 returns the full 64-bit signed product of a and b, split as
// (hi, lo), as used by SMULL/SMLAL.
func MulS64(a, b int32) (hi, lo uint32) {
	product := int64(a) * int64(b)
	return uint32(uint64(product) >> 32), uint32(product)
}
