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

package m33mu_test

import (
	"testing"

	"github.com/m33mu-go/m33mu"
	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/target"
	"github.com/m33mu-go/m33mu/test"
)

// newTestMachine builds a Machine over target.Generic with an
// always-succeeding flash-write interceptor installed, so tests can lay
// down firmware images directly through Mem.Write instead of poking
// backing storage, the same shape the teacher's prepareTestARM gives
// every test in its package.
func newTestMachine() *m33mu.Machine {
	cfg := target.NewConfig(target.Generic)
	m := m33mu.New(cfg)
	m.Mem.FlashWrite = func(sec cpu.Security, addr uint32, size uint8, value uint32) bool {
		return true
	}
	return m
}

// loadHalfwords writes a little-endian sequence of 16-bit words starting
// at addr into Secure flash.
func loadHalfwords(t *testing.T, m *m33mu.Machine, addr uint32, words ...uint16) {
	t.Helper()
	for i, w := range words {
		ok, _, _ := m.Mem.Write(cpu.Secure, addr+uint32(i*2), 2, uint32(w))
		test.ExpectEquality(t, ok, true)
	}
}

const (
	flagN = uint32(1) << 31
	flagZ = uint32(1) << 30
	flagC = uint32(1) << 29
	flagV = uint32(1) << 28
)

// TestMovsAndCmp is spec.md §8 scenario 1: MOVS R0,#0x34 then CMP R0,#5
// from a freshly reset core.
func TestMovsAndCmp(t *testing.T) {
	m := newTestMachine()

	// reset vector: MSP_S, initial PC
	loadHalfwords(t, m, 0, 0x1000, 0x0000, 0x0009, 0x0000)
	loadHalfwords(t, m, 8, 0x2034, 0x2805)

	m.Reset()
	test.ExpectEquality(t, m.CPU.PC(), uint32(8))

	m.Step()
	test.ExpectEquality(t, m.CPU.Reg(0), uint32(0x34))
	test.ExpectEquality(t, m.CPU.PC(), uint32(10))

	m.Step()
	xpsr := m.CPU.Status().Pack()
	test.ExpectEquality(t, xpsr&flagN, uint32(0))
	test.ExpectEquality(t, xpsr&flagZ, uint32(0))
	test.ExpectEquality(t, xpsr&flagC, flagC)
	test.ExpectEquality(t, xpsr&flagV, uint32(0))
	test.ExpectEquality(t, m.CPU.PC(), uint32(12))
}

// TestAddOverflow is spec.md §8 scenario 2.
func TestAddOverflow(t *testing.T) {
	m := newTestMachine()
	loadHalfwords(t, m, 0, 0x1000, 0x0000, 0x0009, 0x0000)
	loadHalfwords(t, m, 8, 0x1840)

	m.Reset()
	m.CPU.SetReg(0, 0x7FFFFFFF)
	m.CPU.SetReg(1, 1)

	m.Step()

	test.ExpectEquality(t, m.CPU.Reg(0), uint32(0x80000000))
	xpsr := m.CPU.Status().Pack()
	test.ExpectEquality(t, xpsr&flagN, flagN)
	test.ExpectEquality(t, xpsr&flagZ, uint32(0))
	test.ExpectEquality(t, xpsr&flagC, uint32(0))
	test.ExpectEquality(t, xpsr&flagV, flagV)
}

// TestResetVector confirms Machine.Reset follows spec.md §6: MSP_S and PC
// come from the first 8 bytes of Secure flash, and VTOR_S points at the
// flash base.
func TestResetVector(t *testing.T) {
	m := newTestMachine()
	loadHalfwords(t, m, 0, 0x2000, 0x2000, 0x0101, 0x0800)

	m.Reset()

	test.ExpectEquality(t, m.CPU.BankedSP(cpu.Secure, cpu.MSP), uint32(0x20002000))
	test.ExpectEquality(t, m.CPU.PC(), uint32(0x08000100))
	test.ExpectEquality(t, m.CPU.VTOR(cpu.Secure), m.Config.FlashBaseSecure)
	test.ExpectEquality(t, m.CPU.CurrentSecurity(), cpu.Secure)
}
