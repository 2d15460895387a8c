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

// Package trustzone implements the TrustZone-M security-attribution
// primitives: the Security Attribution Unit (SAU) and its Implementation-
// Defined Attribution Unit (IDAU) backstop, and the EXC_RETURN encoding
// used by exception return and the SG/BXNS/BLXNS family. It holds state
// and pure decoding logic only; the instructions that consult it (SG,
// BXNS, BLXNS, exception entry/exit) live in the executor and nvic
// packages, which call into trustzone rather than trustzone calling
// into them.
package trustzone

// MaxSAURegions is the number of SAU region records the architecture
// defines (up to 8).
const MaxSAURegions = 8

// SAURegion is one entry of the SAU region table.
type SAURegion struct {
	Base      uint32
	Limit     uint32
	Enabled   bool
	NonSecure bool // region is attributed NonSecure rather than Secure
	NSC       bool // Non-Secure Callable: only meaningful when NonSecure is false
}

func (r SAURegion) contains(addr uint32) bool {
	return r.Enabled && addr >= r.Base && addr <= r.Limit
}

// Attribution is the result of attributing an address: which security
// state owns it, and whether it's a Non-Secure Callable gateway.
type Attribution struct {
	Secure bool
	NSC    bool
}

// SAU holds the region table and the two control bits (ENABLE, ALLNS)
// from the SAU_CTRL register.
type SAU struct {
	Regions []SAURegion
	Enabled bool
	AllNS   bool // only consulted when Enabled is false
}

// NewSAU returns a disabled SAU with ALLNS clear, i.e. everything
// defaults Secure — the architectural reset state.
func NewSAU() *SAU {
	return &SAU{}
}

// Attribute implements "B11.3 The Security Attribution Unit (SAU)": the
// IDAU default applies first (Secure, unless ALLNS says otherwise), then
// the first enabled SAU region whose range contains addr overrides it.
// Regions are evaluated in table order; the architecture requires regions
// not to overlap; this implementation picks the first match and relies on
// Register-time overlap checking to keep that well-defined.
func (s *SAU) Attribute(addr uint32) Attribution {
	idauSecure := !s.AllNS

	if !s.Enabled {
		return Attribution{Secure: idauSecure}
	}

	for _, r := range s.Regions {
		if r.contains(addr) {
			return Attribution{Secure: !r.NonSecure, NSC: !r.NonSecure && r.NSC}
		}
	}

	return Attribution{Secure: idauSecure}
}

// Register appends a region to the table, panicking if it would exceed
// MaxSAURegions or overlap an existing enabled region — the same
// fail-fast-at-setup posture as mmio.Bus.Register.
func (s *SAU) Register(r SAURegion) {
	if len(s.Regions) >= MaxSAURegions {
		panic("trustzone: too many SAU regions")
	}
	for _, existing := range s.Regions {
		if !existing.Enabled || !r.Enabled {
			continue
		}
		if r.Base <= existing.Limit && existing.Base <= r.Limit {
			panic("trustzone: overlapping SAU regions")
		}
	}
	s.Regions = append(s.Regions, r)
}
