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

package executor_test

import (
	"testing"

	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/decoder"
	"github.com/m33mu-go/m33mu/executor"
	"github.com/m33mu-go/m33mu/memory"
	"github.com/m33mu-go/m33mu/mmio"
	"github.com/m33mu-go/m33mu/test"
	"github.com/m33mu-go/m33mu/trustzone"
)

// sysmPRIMASK mirrors the banked sysm selector execSystem's MSR/MRS
// family switches on ("B5.2.2 MSR"/"MRS" of the ARMv8-M ARM); kept local
// since it's an encoding detail, not part of this package's API.
const sysmPRIMASK = 0x10

// bareRecord mirrors decoder's own "bare" helper (unexported there) so
// these tests can build a Record straight from its Kind without round-
// tripping through an encoded half-word for every family.
func bareRecord(kind decoder.Kind) decoder.Record {
	return decoder.Record{
		Kind: kind, Len: 2, Cond: 0b1110,
		Rd: decoder.NoReg, Rn: decoder.NoReg, Rm: decoder.NoReg,
		Ra: decoder.NoReg, Rt2: decoder.NoReg,
	}
}

func newTestMachine() *executor.Machine {
	flash := memory.NewBank(0x00000000, 0x10000000, 0x10000, false)
	ram := memory.NewBank(0x20000000, 0x30000000, 0x10000, false)
	mem := memory.NewMap(flash, ram, mmio.NewBus())
	mem.FlashWrite = func(sec cpu.Security, addr uint32, size uint8, value uint32) bool { return true }

	c := cpu.NewState()
	c.Reset(0x20001000, 0x100)
	sau := trustzone.NewSAU()
	return &executor.Machine{CPU: c, Mem: mem, SAU: sau}
}

func TestExecuteMOVimmSetsFlags(t *testing.T) {
	m := newTestMachine()
	rec := bareRecord(decoder.KindMOVimm)
	rec.Rd = 0
	rec.Imm = 0x34
	rec.SetFlags = true

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Reg(0), uint32(0x34))
	test.ExpectEquality(t, m.CPU.Status().Carry(), false)
}

func TestExecuteADDSRegOverflow(t *testing.T) {
	m := newTestMachine()
	m.CPU.SetReg(0, 0x7fffffff)
	m.CPU.SetReg(1, 1)

	rec := bareRecord(decoder.KindADDreg)
	rec.Rd, rec.Rn, rec.Rm = 0, 0, 1
	rec.SetFlags = true

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Reg(0), uint32(0x80000000))
	status := m.CPU.Status()
	test.ExpectEquality(t, status.Pack()&(1<<31), uint32(1<<31)) // N
	test.ExpectEquality(t, status.Pack()&(1<<28), uint32(1<<28)) // V
}

func TestExecuteCMPimmDoesNotWriteRn(t *testing.T) {
	m := newTestMachine()
	m.CPU.SetReg(0, 0x34)

	rec := bareRecord(decoder.KindCMPimm)
	rec.Rn = 0
	rec.Imm = 5
	rec.SetFlags = true

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Reg(0), uint32(0x34))
	test.ExpectEquality(t, m.CPU.Status().Carry(), true) // 0x34 >= 5, no borrow
}

func TestExecuteLSLimm(t *testing.T) {
	m := newTestMachine()
	m.CPU.SetReg(0, 1)

	rec := bareRecord(decoder.KindLSLimm)
	rec.Rd, rec.Rm = 0, 0
	rec.ShiftAmount = 4
	rec.SetFlags = true

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Reg(0), uint32(16))
}

func TestExecuteMUL(t *testing.T) {
	m := newTestMachine()
	m.CPU.SetReg(0, 6)
	m.CPU.SetReg(1, 7)

	rec := bareRecord(decoder.KindMUL)
	rec.Rd, rec.Rn, rec.Rm = 2, 0, 1

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Reg(2), uint32(42))
}

func TestExecuteSDIVByZeroYieldsZero(t *testing.T) {
	m := newTestMachine()
	m.CPU.SetReg(0, 10)
	m.CPU.SetReg(1, 0)

	rec := bareRecord(decoder.KindSDIV)
	rec.Rd, rec.Rn, rec.Rm = 2, 0, 1

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Reg(2), uint32(0))
}

func TestExecuteBranchB(t *testing.T) {
	m := newTestMachine()
	m.CPU.SetPC(0x100)

	rec := bareRecord(decoder.KindB)
	rec.Len = 2
	rec.Imm = 0x20

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.PC(), uint32(0x100+4+0x20))
}

func TestExecuteBXNSRequiresSecureSource(t *testing.T) {
	m := newTestMachine()
	m.CPU.SetCurrentSecurity(cpu.NonSecure)
	m.CPU.SetReg(0, 0x10000000)

	rec := bareRecord(decoder.KindBXNS)
	rec.Rm = 0

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, true)
	test.ExpectEquality(t, m.CPU.LastFault().Kind, cpu.UsageFault)
}

func TestExecuteBXNSSwitchesToAttributedNonSecureTarget(t *testing.T) {
	m := newTestMachine()
	m.SAU.Enabled = true
	m.SAU.Register(trustzone.SAURegion{Base: 0x10000000, Limit: 0x10001000, Enabled: true, NonSecure: true})
	m.CPU.SetCurrentSecurity(cpu.Secure)
	m.CPU.SetReg(0, 0x10000000)

	rec := bareRecord(decoder.KindBXNS)
	rec.Rm = 0

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.CurrentSecurity(), cpu.NonSecure)
	test.ExpectEquality(t, m.CPU.PC(), uint32(0x10000000))
}

func TestExecuteSTRLDRRoundTrip(t *testing.T) {
	m := newTestMachine()
	m.CPU.SetReg(0, 0x20000100)
	m.CPU.SetReg(1, 0xdeadbeef)

	str := bareRecord(decoder.KindSTR)
	str.Rn, str.Rm = 0, decoder.NoReg
	str.Rd = 1 // source register for STR, per the decoder's Rd-as-Rt convention
	str.Index, str.Add = true, true

	trapped := m.Execute(str)
	test.ExpectEquality(t, trapped, false)

	ldr := bareRecord(decoder.KindLDR)
	ldr.Rn = 0
	ldr.Rd = 2
	ldr.Index, ldr.Add = true, true

	trapped = m.Execute(ldr)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Reg(2), uint32(0xdeadbeef))
}

func TestExecuteSTREXFailsWithoutReservation(t *testing.T) {
	m := newTestMachine()
	m.CPU.SetReg(0, 0x20000200)
	m.CPU.SetReg(1, 0x11111111)

	rec := bareRecord(decoder.KindSTREX)
	rec.Rn, rec.Rm, rec.Rd = 0, 1, 2

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Reg(2), uint32(1)) // failure status
}

func TestExecuteLDREXSTREXSucceedsThenReservationClears(t *testing.T) {
	m := newTestMachine()
	addr := uint32(0x20000300)
	m.CPU.SetReg(0, addr)
	m.CPU.SetReg(1, 0x22222222)

	ldrex := bareRecord(decoder.KindLDREX)
	ldrex.Rn, ldrex.Rd = 0, 3
	trapped := m.Execute(ldrex)
	test.ExpectEquality(t, trapped, false)

	strex := bareRecord(decoder.KindSTREX)
	strex.Rn, strex.Rm, strex.Rd = 0, 1, 2
	trapped = m.Execute(strex)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Reg(2), uint32(0)) // success status

	// The monitor clears on a successful exclusive store: a second STREX
	// against the same address without an intervening LDREX must fail.
	strexAgain := bareRecord(decoder.KindSTREX)
	strexAgain.Rn, strexAgain.Rm, strexAgain.Rd = 0, 1, 4
	trapped = m.Execute(strexAgain)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Reg(4), uint32(1))
}

func TestExecuteCLREXClearsReservation(t *testing.T) {
	m := newTestMachine()
	addr := uint32(0x20000400)
	m.CPU.Reserve(addr)

	trapped := m.Execute(bareRecord(decoder.KindCLREX))
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.CheckAndClearReservation(addr), false)
}

func TestExecuteMSRMRSPRIMASKRoundTrip(t *testing.T) {
	m := newTestMachine()

	msr := bareRecord(decoder.KindMSR)
	msr.Imm = sysmPRIMASK
	msr.Rn = 0
	m.CPU.SetReg(0, 1)

	trapped := m.Execute(msr)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.PRIMASK(cpu.Secure), uint32(1))

	mrs := bareRecord(decoder.KindMRS)
	mrs.Imm = sysmPRIMASK
	mrs.Rd = 1

	trapped = m.Execute(mrs)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Reg(1), uint32(1))
}

func TestExecuteCPSID(t *testing.T) {
	m := newTestMachine()
	rec := bareRecord(decoder.KindCPS)
	rec.CPSEnable = false
	rec.CPSAffectI = true

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.PRIMASK(cpu.Secure), uint32(1))
}

func TestExecuteWFISleeps(t *testing.T) {
	m := newTestMachine()
	trapped := m.Execute(bareRecord(decoder.KindWFI))
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, m.CPU.Sleeping(), true)
}

func TestExecuteSVCWithoutControllerTraps(t *testing.T) {
	m := newTestMachine()
	trapped := m.Execute(bareRecord(decoder.KindSVC))
	test.ExpectEquality(t, trapped, true)
	test.ExpectEquality(t, m.CPU.LastFault().Kind, cpu.UsageFault)
}

type fakeSVCController struct {
	raisedSec cpu.Security
	raised    bool
}

func (f *fakeSVCController) Return(trustzone.ExcReturn) bool { return false }
func (f *fakeSVCController) RaiseSVC(sec cpu.Security)       { f.raisedSec, f.raised = sec, true }

func TestExecuteSVCRaisesAgainstController(t *testing.T) {
	m := newTestMachine()
	ctl := &fakeSVCController{}
	m.NVIC = ctl

	trapped := m.Execute(bareRecord(decoder.KindSVC))
	test.ExpectEquality(t, trapped, false)
	test.ExpectEquality(t, ctl.raised, true)
	test.ExpectEquality(t, ctl.raisedSec, cpu.Secure)
}

func TestExecuteUndefinedRecordTraps(t *testing.T) {
	m := newTestMachine()
	rec := bareRecord(decoder.KindUndefined)
	rec.Undefined = true

	trapped := m.Execute(rec)
	test.ExpectEquality(t, trapped, true)
	test.ExpectEquality(t, m.CPU.LastFault().Kind, cpu.UsageFault)
}
