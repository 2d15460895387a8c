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

import "fmt"

// FaultKind identifies which architectural fault handler a failure
// escalates to. The exception numbers these map onto (HardFault=3,
// MemManage=4, BusFault=5, UsageFault=6, SecureFault=7) live in the nvic
// package, next to the rest of the exception table.
type FaultKind int

// List of valid FaultKind values.
const (
	NoFault FaultKind = iota
	UsageFault
	BusFault
	MemManageFault
	SecureFault
	HardFault
)

func (k FaultKind) String() string {
	switch k {
	case UsageFault:
		return "UsageFault"
	case BusFault:
		return "BusFault"
	case MemManageFault:
		return "MemManage"
	case SecureFault:
		return "SecureFault"
	case HardFault:
		return "HardFault"
	}
	return "NoFault"
}

// FaultCause narrows a FaultKind to the specific architectural status bit
// that would be set in the corresponding *FSR register.
type FaultCause string

// Recognised fault causes, one per status bit in CFSR/SFSR a component in
// this core can actually produce.
const (
	CauseUndefInstr FaultCause = "UNDEFINSTR"
	CauseInvState   FaultCause = "INVSTATE"
	CauseUnaligned  FaultCause = "UNALIGNED"
	CausePreciseErr FaultCause = "PRECISERR"
	CauseIBusErr    FaultCause = "IBUSERR"
	CauseDAccViol   FaultCause = "DACCVIOL"
	CauseIAccViol   FaultCause = "IACCVIOL"
	CauseInvTran    FaultCause = "INVTRAN"
	CauseAuViol     FaultCause = "AUVIOL"
	CauseInvEP      FaultCause = "INVEP"
	CauseInvER      FaultCause = "INVER"
)

// FaultRecord captures enough context about a fault to both drive handler
// selection and be useful in a diagnostic log: which kind/cause, the
// address involved (if any; zero otherwise) and the PC of the faulting
// instruction.
type FaultRecord struct {
	Kind    FaultKind
	Cause   FaultCause
	Address uint32
	PC      uint32
	// Secure records which security state raised the fault, since
	// SecureFault in particular is only ever raised against Secure-side
	// transition attempts inspected from the opposite world.
	Secure Security
}

func (f FaultRecord) Error() string {
	return fmt.Sprintf("%s (%s) at pc=%#08x addr=%#08x", f.Kind, f.Cause, f.PC, f.Address)
}

// AllowLogging satisfies logger.AllowLogger so a FaultRecord can be passed
// straight to logger.Log as the detail argument without an adapter.
func (f FaultRecord) AllowLogging() bool { return true }
