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

// Package cpu models the register file and banked security state of an
// Armv8-M Mainline core with the TrustZone-M extension: 16 GPRs, the
// Secure/Non-secure banked SP/PRIMASK/FAULTMASK/BASEPRI/CONTROL/VTOR sets,
// and the packed xPSR. See spec.md §3 ("Data model") and §9 ("Banked state
// via tagged variants") for the design this follows: rather than the
// teacher's `_s`/`_ns` suffixed globals, every banked register is an
// array indexed by Security, and "current" is a single field flip.
package cpu

// Security identifies which TrustZone-M world a piece of banked state, or
// the CPU's current execution context, belongs to.
type Security int

// List of valid Security values.
const (
	Secure Security = iota
	NonSecure
	numSecurityStates
)

func (s Security) String() string {
	if s == Secure {
		return "Secure"
	}
	return "NonSecure"
}

// Other returns the opposite security state.
func (s Security) Other() Security {
	if s == Secure {
		return NonSecure
	}
	return Secure
}

// StackSelect identifies which of the two banked stack pointers (MSP or
// PSP) is active within a security state.
type StackSelect int

// List of valid StackSelect values.
const (
	MSP StackSelect = iota
	PSP
)

// stackBank holds the four stack-related registers banked per security
// state: spec.md §3 calls out MSP, PSP, MSPLIM and PSPLIM as all being
// independent per security world.
type stackBank struct {
	msp    uint32
	psp    uint32
	msplim uint32
	psplim uint32
}

// securityBank holds every register spec.md §3 describes as
// security-banked, aside from the stack pointers themselves (kept in
// stackBank).
type securityBank struct {
	primask  uint32
	faultmask uint32
	basepri  uint32
	control  uint32
	vtor     uint32

	// event flag for WFE/SEV, kept per security state per spec.md §4.6 and
	// the cross-state SEV rule documented in SPEC_FULL.md.
	eventFlag bool
}
