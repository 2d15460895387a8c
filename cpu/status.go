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

package cpu

import (
	"fmt"
	"strings"
)

// Status holds the condition flags and IT-block state that, packed
// together with the exception number, make up the architectural xPSR.
// Unlike the rest of the register file, xPSR is not banked per security
// state — there is exactly one current Status regardless of which world
// is executing.
type Status struct {
	negative bool
	zero     bool
	carry    bool
	overflow bool
	// saturation sticks until explicitly cleared; DSP/MVE instructions that
	// would set it are out of scope, so this is only ever written by an
	// explicit MRS/MSR round trip.
	saturation bool

	// mask and firstcond of the most recently executed IT instruction,
	// split into two fields rather than a single itState value so that
	// "inside an IT block" is a simple itMask != 0 comparison.
	itCond uint8
	itMask uint8

	// exception number currently being executed in Thread mode this is 0.
	exceptionNumber uint32
}

func (sr Status) String() string {
	s := strings.Builder{}
	for _, f := range []struct {
		set  bool
		r, u rune
	}{
		{sr.negative, 'N', 'n'},
		{sr.zero, 'Z', 'z'},
		{sr.carry, 'C', 'c'},
		{sr.overflow, 'V', 'v'},
		{sr.saturation, 'Q', 'q'},
	} {
		if f.set {
			s.WriteRune(f.r)
		} else {
			s.WriteRune(f.u)
		}
	}
	s.WriteString(fmt.Sprintf(" itMask:%04b itCond:%04b ipsr:%d", sr.itMask, sr.itCond, sr.exceptionNumber))
	return s.String()
}

// NZ sets the negative and zero flags from result.
func (sr *Status) NZ(result uint32) {
	sr.negative = result&0x80000000 == 0x80000000
	sr.zero = result == 0
}

// NZCV sets all four arithmetic flags at once, the shape every ADDS/SUBS/
// CMP/CMN variant with the S-bit set needs after calling alu.AddWithCarry.
func (sr *Status) NZCV(result uint32, carry, overflow bool) {
	sr.NZ(result)
	sr.carry = carry
	sr.overflow = overflow
}

// SetCarry writes the carry flag alone, used when a modified-immediate
// operand's rotation produces a carry_out independent of the result's
// NZCV computation (§4.4's ImmRotated case).
func (sr *Status) SetCarry(c bool) { sr.carry = c }

// Carry reports the current carry flag, consulted by ADC/SBC/RRX.
func (sr Status) Carry() bool { return sr.carry }

// InITBlock reports whether execution is currently inside an IT block.
func (sr Status) InITBlock() bool {
	return sr.itMask != 0
}

// LastInITBlock reports whether the current instruction is the final one
// governed by the active IT block (itMask's low set bit is bit 3).
func (sr Status) LastInITBlock() bool {
	return sr.itMask&0xf == 0x8
}

// SetIT loads firstcond/mask from a freshly decoded IT instruction.
func (sr *Status) SetIT(cond, mask uint8) {
	sr.itCond = cond
	sr.itMask = mask
}

// AdvanceIT steps the IT state machine forward by one instruction, per
// "A7.3.2 Conditional execution using IT" of ARMv7-M: the mask shifts left
// and the block ends once it reaches zero.
func (sr *Status) AdvanceIT() {
	if sr.itMask == 0 {
		return
	}
	if sr.itMask&0x7 == 0 {
		sr.itCond = 0
		sr.itMask = 0
		return
	}
	sr.itMask = (sr.itMask << 1) & 0x1f
}

// ExceptionNumber returns IPSR: 0 in Thread mode, the active exception's
// number in Handler mode.
func (sr Status) ExceptionNumber() uint32 { return sr.exceptionNumber }

// SetExceptionNumber writes IPSR, done by exception entry/exit in the nvic
// package.
func (sr *Status) SetExceptionNumber(n uint32) { sr.exceptionNumber = n }

// CurrentCondition returns the condition code governing the instruction
// about to execute: itCond when inside an IT block, 0b1110 (always) when
// not.
func (sr Status) CurrentCondition() uint8 {
	if !sr.InITBlock() {
		return 0b1110
	}
	return sr.itCond
}

// Condition evaluates the four-bit condition field from "A7.3 Conditional
// execution" of ARMv7-M against the current flags.
func (sr Status) Condition(cond uint8) bool {
	switch cond &^ 1 {
	case 0b0000:
		return sr.zero == (cond&1 == 0)
	case 0b0010:
		return sr.carry == (cond&1 == 0)
	case 0b0100:
		return sr.negative == (cond&1 == 0)
	case 0b0110:
		return sr.overflow == (cond&1 == 0)
	case 0b1000:
		b := sr.carry && !sr.zero
		if cond&1 == 1 {
			b = !b
		}
		return b
	case 0b1010:
		b := sr.negative == sr.overflow
		if cond&1 == 1 {
			b = !b
		}
		return b
	case 0b1100:
		b := !sr.zero && sr.negative == sr.overflow
		if cond&1 == 1 {
			b = !b
		}
		return b
	case 0b1110:
		return true
	}
	panic("unreachable condition field")
}

// Pack folds the flags, IT state and exception number into the layout of
// the architectural xPSR: N/Z/C/V/Q in bits 31:27, ICI/IT bits split across
// 26:25 and 15:10, the T-bit fixed at bit 24 (this core never executes Arm
// state), and the exception number in bits 8:0.
func (sr Status) Pack() uint32 {
	var v uint32
	if sr.negative {
		v |= 1 << 31
	}
	if sr.zero {
		v |= 1 << 30
	}
	if sr.carry {
		v |= 1 << 29
	}
	if sr.overflow {
		v |= 1 << 28
	}
	if sr.saturation {
		v |= 1 << 27
	}
	it := uint32(sr.itMask) | uint32(sr.itCond)<<4
	v |= (it & 0x3) << 25
	v |= (it >> 2) << 10
	v |= 1 << 24 // T-bit: always Thumb state
	v |= sr.exceptionNumber & 0x1ff
	return v
}

// Unpack restores flags, IT state and exception number from a packed xPSR
// value, the inverse of Pack. Used by EXC_RETURN frame unstacking and by
// MSR writes to xPSR/APSR/IPSR.
func (sr *Status) Unpack(v uint32) {
	sr.negative = v&(1<<31) != 0
	sr.zero = v&(1<<30) != 0
	sr.carry = v&(1<<29) != 0
	sr.overflow = v&(1<<28) != 0
	sr.saturation = v&(1<<27) != 0

	it := ((v >> 25) & 0x3) | (((v >> 10) & 0x3f) << 2)
	sr.itMask = uint8(it & 0xf)
	sr.itCond = uint8((it >> 4) & 0xf)

	sr.exceptionNumber = v & 0x1ff
}
