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

package cpu_test

import (
	"testing"

	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/test"
)

func TestResetVector(t *testing.T) {
	s := cpu.NewState()
	s.Reset(0x20010000, 0x0c000201)

	test.ExpectEquality(t, s.CurrentSecurity(), cpu.Secure)
	test.ExpectEquality(t, s.CurrentStack(), cpu.MSP)
	test.ExpectEquality(t, s.SP(), uint32(0x20010000))
	test.ExpectEquality(t, s.PC(), uint32(0x0c000200)) // bit 0 cleared
}

func TestR13AliasesActiveSP(t *testing.T) {
	s := cpu.NewState()
	s.Reset(0x20010000, 0x0c000201)

	test.ExpectEquality(t, s.Reg(13), uint32(0x20010000))

	s.SetCurrentStack(cpu.PSP)
	s.SetReg(13, 0x20020000)
	test.ExpectEquality(t, s.Reg(13), uint32(0x20020000))
	// MSP, read via the explicit banked accessor, must be untouched
	test.ExpectEquality(t, s.BankedSP(cpu.Secure, cpu.MSP), uint32(0x20010000))

	s.SetCurrentStack(cpu.MSP)
	test.ExpectEquality(t, s.Reg(13), uint32(0x20010000))
}

func TestR15ReadsPCPlus4Aligned(t *testing.T) {
	s := cpu.NewState()
	s.SetPC(0x0c000202)
	test.ExpectEquality(t, s.Reg(15), uint32(0x0c000204))
}

// TestBankedRegisterIsolation is the banked-register isolation law: writing
// a security-banked register in one world must not perturb the other
// world's copy.
func TestBankedRegisterIsolation(t *testing.T) {
	s := cpu.NewState()
	s.Reset(0x20010000, 1)

	s.SetCurrentPRIMASK(1)
	test.ExpectEquality(t, s.PRIMASK(cpu.Secure), uint32(1))
	test.ExpectEquality(t, s.PRIMASK(cpu.NonSecure), uint32(0))

	s.SetCurrentSecurity(cpu.NonSecure)
	test.ExpectEquality(t, s.CurrentPRIMASK(), uint32(0))

	s.SetCurrentBASEPRI(0x40)
	test.ExpectEquality(t, s.BASEPRI(cpu.NonSecure), uint32(0x40))
	test.ExpectEquality(t, s.BASEPRI(cpu.Secure), uint32(0))
}

func TestVTORBanked(t *testing.T) {
	s := cpu.NewState()
	s.SetVTOR(cpu.Secure, 0x0c000000)
	s.SetVTOR(cpu.NonSecure, 0x00200000)
	test.ExpectEquality(t, s.VTOR(cpu.Secure), uint32(0x0c000000))
	test.ExpectEquality(t, s.VTOR(cpu.NonSecure), uint32(0x00200000))
}

func TestExclusiveMonitorAlwaysSucceeds(t *testing.T) {
	s := cpu.NewState()

	// no LDREX has run yet
	test.ExpectEquality(t, s.CheckAndClearReservation(0x20000000), false)

	s.Reserve(0x20000000)
	test.ExpectEquality(t, s.CheckAndClearReservation(0x20000004), true)

	// the reservation is consumed by the check above
	test.ExpectEquality(t, s.CheckAndClearReservation(0x20000000), false)

	s.Reserve(0x20000000)
	s.ClearReservation()
	test.ExpectEquality(t, s.CheckAndClearReservation(0x20000000), false)
}

func TestEventFlagCrossSecurityPropagation(t *testing.T) {
	s := cpu.NewState()

	test.ExpectEquality(t, s.EventPending(cpu.Secure), false)
	test.ExpectEquality(t, s.EventPending(cpu.NonSecure), false)

	s.SignalEvent()
	test.ExpectEquality(t, s.EventPending(cpu.Secure), true)
	test.ExpectEquality(t, s.EventPending(cpu.NonSecure), true)

	s.ClearEvent(cpu.Secure)
	test.ExpectEquality(t, s.EventPending(cpu.Secure), false)
	test.ExpectEquality(t, s.EventPending(cpu.NonSecure), true)
}

func TestRaiseFaultRecordsContext(t *testing.T) {
	s := cpu.NewState()
	s.SetPC(0x0c000100)
	s.SetCurrentSecurity(cpu.NonSecure)

	fr := s.RaiseFault(cpu.BusFault, cpu.CauseUnaligned, 0x20000003)
	test.ExpectEquality(t, fr.Kind, cpu.BusFault)
	test.ExpectEquality(t, fr.Cause, cpu.CauseUnaligned)
	test.ExpectEquality(t, fr.Address, uint32(0x20000003))
	test.ExpectEquality(t, fr.PC, uint32(0x0c000100))
	test.ExpectEquality(t, fr.Secure, cpu.NonSecure)
	test.ExpectEquality(t, s.LastFault(), fr)
}
