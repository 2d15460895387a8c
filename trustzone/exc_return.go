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

package trustzone

import "github.com/m33mu-go/m33mu/cpu"

// SecureFunctionReturn is the magic LR value BLXNS loads before switching
// to NonSecure: a NonSecure callee can never forge a return straight into
// Secure code, since BX with this exact value re-enters the secure-return
// frame-popping path instead of behaving as an ordinary interworking
// branch.
const SecureFunctionReturn uint32 = 0xfeffffff

// ExcReturn is the decoded form of an EXC_RETURN value: bits[31:8] fixed
// at 0xffffff, with bit6=target-Secure, bit4=basic-frame (no FP context),
// bit3=return-to-Thread, bit2=use-PSP.
type ExcReturn struct {
	TargetSecure bool
	BasicFrame   bool
	ToThread     bool
	UsePSP       bool
}

// IsExcReturn reports whether value's top 24 bits match the EXC_RETURN
// signature, the test a BX/POP/LDM-into-PC must make before treating its
// new PC value as an exception return rather than an ordinary branch.
func IsExcReturn(value uint32) bool {
	return value&0xffffff00 == 0xffffff00
}

// DecodeExcReturn unpacks an EXC_RETURN value. ok is false if value
// doesn't carry the signature at all.
func DecodeExcReturn(value uint32) (er ExcReturn, ok bool) {
	if !IsExcReturn(value) {
		return ExcReturn{}, false
	}
	er.TargetSecure = value&(1<<6) != 0
	er.BasicFrame = value&(1<<4) != 0
	er.ToThread = value&(1<<3) != 0
	er.UsePSP = value&(1<<2) != 0
	return er, true
}

// EncodeExcReturn packs an ExcReturn back into its 0xFFFFFFxx wire form,
// the LR value exception entry loads for the handler to eventually branch
// back to.
func EncodeExcReturn(er ExcReturn) uint32 {
	v := uint32(0xffffff00)
	if er.TargetSecure {
		v |= 1 << 6
	}
	if er.BasicFrame {
		v |= 1 << 4
	}
	if er.ToThread {
		v |= 1 << 3
	}
	if er.UsePSP {
		v |= 1 << 2
	}
	return v
}

// TargetSecurity converts the decoded target-Secure bit to a cpu.Security
// value, the form the rest of the core consumes.
func (er ExcReturn) TargetSecurity() cpu.Security {
	if er.TargetSecure {
		return cpu.Secure
	}
	return cpu.NonSecure
}

// StackSelect returns which stack pointer EXC_RETURN says to restore: PSP
// when returning to Thread mode with UsePSP set, MSP otherwise (Handler
// mode always uses MSP).
func (er ExcReturn) StackSelect() cpu.StackSelect {
	if er.ToThread && er.UsePSP {
		return cpu.PSP
	}
	return cpu.MSP
}
