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

// MaxMPURegions is the number of MPU region records the architecture
// defines (up to 16), per spec.md §4.3.
const MaxMPURegions = 16

// AccessKind distinguishes the three ways an address can be touched, since
// an MPU region's rw/xn bits answer a different question for each.
type AccessKind int

const (
	AccessRead AccessKind = iota
	AccessWrite
	AccessExecute
)

// MPURegion is one entry of an MPU's region table. Unlike an SAURegion it
// carries no security attribution of its own: a region belongs wholesale
// to the MPU instance (Secure or NonSecure) that holds it, since the
// architecture banks the whole table rather than one bit per region.
type MPURegion struct {
	Base           uint32
	Limit          uint32
	Enabled        bool
	RW             bool // false = read-only
	XN             bool // execute-never
	PrivilegedOnly bool
}

func (r MPURegion) contains(addr uint32) bool {
	return r.Enabled && addr >= r.Base && addr <= r.Limit
}

// MPU is one security state's memory protection unit: a region table plus
// the PRIVDEFENA-style background-map bit, consulted after SAU attribution
// has already settled which world an access belongs to.
type MPU struct {
	Enabled bool
	// PrivDefEnabled mirrors MPU_CTRL.PRIVDEFENA: when the MPU is enabled
	// but no region matches, privileged accesses fall back to the default
	// background map (permitted) while unprivileged accesses still fault.
	PrivDefEnabled bool
	Regions        []MPURegion
}

// NewMPU returns a disabled MPU, the architectural reset state: disabled
// means every access is permitted, as if no protection unit were fitted.
func NewMPU() *MPU { return &MPU{} }

// Register appends a region to the table, panicking past MaxMPURegions —
// the same fail-fast-at-setup posture as SAU.Register and mmio.Bus.Register.
func (m *MPU) Register(r MPURegion) {
	if len(m.Regions) >= MaxMPURegions {
		panic("trustzone: too many MPU regions")
	}
	m.Regions = append(m.Regions, r)
}

// Check implements spec.md §4.3's permission check: the first enabled
// region containing addr decides the access (later regions are ignored,
// the same "first match wins" simplification SAU.Attribute makes); no
// match at all falls back to PrivDefEnabled for privileged accesses and
// denies unprivileged ones outright.
func (m *MPU) Check(addr uint32, access AccessKind, privileged bool) bool {
	if !m.Enabled {
		return true
	}
	for _, r := range m.Regions {
		if !r.contains(addr) {
			continue
		}
		if r.PrivilegedOnly && !privileged {
			return false
		}
		switch access {
		case AccessExecute:
			return !r.XN
		case AccessWrite:
			return r.RW
		default:
			return true
		}
	}
	return privileged && m.PrivDefEnabled
}
