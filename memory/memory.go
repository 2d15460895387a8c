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

// Package memory implements the banked Secure/NonSecure address space:
// flash and RAM windows addressed symmetrically from both security
// states, a flash-write interceptor boundary for SoC-modeled flash
// controllers, and dispatch into the mmio package for anything that
// isn't flash or RAM.
package memory

import (
	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/logger"
	"github.com/m33mu-go/m33mu/mmio"
	"github.com/m33mu-go/m33mu/trustzone"
)

// Bank describes one flash or RAM window: a secure alias, a non-secure
// alias, and the backing bytes behind them. SharedBacking means both
// aliases address the same bytes (SAU is the only gate between them);
// otherwise each alias gets an independent half of memory.
type Bank struct {
	BaseSecure    uint32
	BaseNonSecure uint32
	Size          uint32
	SharedBacking bool

	secureBacking    []byte
	nonSecureBacking []byte
}

// NewBank allocates a bank's backing storage.
func NewBank(baseSecure, baseNonSecure, size uint32, sharedBacking bool) Bank {
	b := Bank{BaseSecure: baseSecure, BaseNonSecure: baseNonSecure, Size: size, SharedBacking: sharedBacking}
	b.secureBacking = make([]byte, size)
	if sharedBacking {
		b.nonSecureBacking = b.secureBacking
	} else {
		b.nonSecureBacking = make([]byte, size)
	}
	return b
}

// window returns the backing slice and offset-adjusted base for the given
// security state, or (nil, 0) if addr doesn't fall inside this bank's
// alias for that state.
func (b *Bank) window(sec cpu.Security, addr uint32) ([]byte, uint32) {
	base := b.BaseSecure
	backing := b.secureBacking
	if sec == cpu.NonSecure {
		base = b.BaseNonSecure
		backing = b.nonSecureBacking
	}
	if backing == nil || addr < base || addr >= base+b.Size {
		return nil, 0
	}
	return backing, base
}

// FlashWriteInterceptor gates writes to the flash bank, modeling a
// programmable flash controller's erase/program sequencing. A nil
// interceptor means writes to flash silently fail (the architectural
// default absent a registered controller).
type FlashWriteInterceptor func(sec cpu.Security, addr uint32, size uint8, value uint32) (ok bool)

// Map is the address space seen by one core: a flash bank, a RAM bank, and
// an MMIO bus, addressed in that priority order.
type Map struct {
	Flash Bank
	RAM   Bank
	MMIO  *mmio.Bus

	FlashWrite FlashWriteInterceptor

	// SAU is consulted ahead of the MPU on every fetch and data access, per
	// spec.md §4.3's attribution pipeline. A nil SAU skips attribution
	// entirely rather than falling back to the IDAU's Secure-by-default
	// rule, so callers that build a bare Map (tests, the reset-vector read
	// before any SAU exists) aren't forced to wire one up.
	SAU *trustzone.SAU

	// MPU holds the banked Secure/NonSecure protection units spec.md §4.3
	// describes. A nil entry behaves like a disabled MPU: unrestricted.
	MPU [2]*trustzone.MPU

	// Privileged reports whether the access currently in flight runs at
	// privileged level, the other half of an MPU region's permission
	// check. A nil Privileged treats every access as privileged, matching
	// an MPU-less core where the distinction never arises.
	Privileged func() bool
}

// NewMap builds a Map from already-constructed flash/RAM banks and an
// MMIO bus (which may be empty and populated later by SoC adapters).
func NewMap(flash, ram Bank, bus *mmio.Bus) *Map {
	return &Map{Flash: flash, RAM: ram, MMIO: bus}
}

func (m *Map) privileged() bool {
	if m.Privileged == nil {
		return true
	}
	return m.Privileged()
}

// checkSAU applies the IDAU/SAU attribution walk, the first half of
// spec.md §4.3's attribution pipeline (SAU first, then MPU). Secure
// accesses are never gated here — Secure code may touch either world's
// memory — so this only ever rejects a NonSecure access landing on an
// address the SAU attributes Secure, raising SecureFault/AUVIOL per
// spec.md:210.
func (m *Map) checkSAU(sec cpu.Security, addr uint32) (ok bool, kind cpu.FaultKind, cause cpu.FaultCause) {
	if m.SAU == nil || sec == cpu.Secure {
		return true, cpu.NoFault, ""
	}
	if m.SAU.Attribute(addr).Secure {
		return false, cpu.SecureFault, cpu.CauseAuViol
	}
	return true, cpu.NoFault, ""
}

// checkMPU applies the banked MPU's permission check for sec's world, the
// second half of spec.md §4.3's attribution pipeline (SAU first, then
// MPU). A nil MPU for that world permits everything.
func (m *Map) checkMPU(sec cpu.Security, addr uint32, access trustzone.AccessKind) (ok bool, kind cpu.FaultKind, cause cpu.FaultCause) {
	mpu := m.MPU[sec]
	if mpu == nil || mpu.Check(addr, access, m.privileged()) {
		return true, cpu.NoFault, ""
	}
	if access == trustzone.AccessExecute {
		return false, cpu.MemManageFault, cpu.CauseIAccViol
	}
	return false, cpu.MemManageFault, cpu.CauseDAccViol
}

func sizeMask(size uint8) uint32 {
	switch size {
	case 1:
		return 0xff
	case 2:
		return 0xffff
	default:
		return 0xffffffff
	}
}

func alignmentOf(size uint8) uint32 {
	return uint32(size) - 1
}

// logFault records a rejected access, matching illegalAccess/read16bit's
// "this happened but execution continues" logging in the teacher.
func logFault(op string, sec cpu.Security, addr uint32, size uint8, kind cpu.FaultKind, cause cpu.FaultCause) {
	logger.Logf("memory", "%s sec=%v addr=%#08x size=%d: %s (%s)", op, sec, addr, size, kind, cause)
}

// Read implements the read(sec, addr, size_bytes) contract: SAU check, MPU
// check, then flash, then RAM, then MMIO, then BusFault. ok is false
// exactly when a fault should be raised by the caller; kind/cause identify
// which one.
func (m *Map) Read(sec cpu.Security, addr uint32, size uint8) (value uint32, ok bool, kind cpu.FaultKind, cause cpu.FaultCause) {
	if ok, kind, cause := m.checkSAU(sec, addr); !ok {
		logFault("read", sec, addr, size, kind, cause)
		return 0, false, kind, cause
	}
	if ok, kind, cause := m.checkMPU(sec, addr, trustzone.AccessRead); !ok {
		logFault("read", sec, addr, size, kind, cause)
		return 0, false, kind, cause
	}
	value, ok, kind, cause = m.read(sec, addr, size)
	if !ok {
		logFault("read", sec, addr, size, kind, cause)
	}
	return value, ok, kind, cause
}

// ReadExecute is Read's instruction-fetch counterpart: it checks an
// MPU region's XN bit instead of its RW bit, per spec.md §4.3's "failures
// produce ... MemManage (MPU violation)" for a fetch distinct from a data
// access to the same address.
func (m *Map) ReadExecute(sec cpu.Security, addr uint32, size uint8) (value uint32, ok bool, kind cpu.FaultKind, cause cpu.FaultCause) {
	if ok, kind, cause := m.checkSAU(sec, addr); !ok {
		logFault("fetch", sec, addr, size, kind, cause)
		return 0, false, kind, cause
	}
	if ok, kind, cause := m.checkMPU(sec, addr, trustzone.AccessExecute); !ok {
		logFault("fetch", sec, addr, size, kind, cause)
		return 0, false, kind, cause
	}
	value, ok, kind, cause = m.read(sec, addr, size)
	if !ok {
		logFault("fetch", sec, addr, size, kind, cause)
	}
	return value, ok, kind, cause
}

func (m *Map) read(sec cpu.Security, addr uint32, size uint8) (value uint32, ok bool, kind cpu.FaultKind, cause cpu.FaultCause) {
	if backing, base := m.Flash.window(sec, addr); backing != nil {
		return readBacking(backing, addr-base, size)
	}
	if backing, base := m.RAM.window(sec, addr); backing != nil {
		return readBacking(backing, addr-base, size)
	}
	if m.MMIO != nil && m.MMIO.Mapped(addr) {
		if addr&alignmentOf(size) != 0 {
			return 0, false, cpu.BusFault, cpu.CauseUnaligned
		}
		v, handled, _ := m.MMIO.Read(sec, addr, size)
		if !handled {
			return 0, false, cpu.BusFault, cpu.CausePreciseErr
		}
		return v & sizeMask(size), true, cpu.NoFault, ""
	}
	return 0, false, cpu.BusFault, cpu.CauseIBusErr
}

// Write implements the write(sec, addr, size_bytes, value) contract.
func (m *Map) Write(sec cpu.Security, addr uint32, size uint8, value uint32) (ok bool, kind cpu.FaultKind, cause cpu.FaultCause) {
	if ok, kind, cause := m.checkSAU(sec, addr); !ok {
		logFault("write", sec, addr, size, kind, cause)
		return false, kind, cause
	}
	if ok, kind, cause := m.checkMPU(sec, addr, trustzone.AccessWrite); !ok {
		logFault("write", sec, addr, size, kind, cause)
		return false, kind, cause
	}
	ok, kind, cause = m.write(sec, addr, size, value)
	if !ok {
		logFault("write", sec, addr, size, kind, cause)
	}
	return ok, kind, cause
}

func (m *Map) write(sec cpu.Security, addr uint32, size uint8, value uint32) (ok bool, kind cpu.FaultKind, cause cpu.FaultCause) {
	if backing, base := m.Flash.window(sec, addr); backing != nil {
		if m.FlashWrite == nil {
			return true, cpu.NoFault, "" // silently discarded, per the architectural default
		}
		if !m.FlashWrite(sec, addr, size, value) {
			return false, cpu.BusFault, cpu.CausePreciseErr
		}
		return writeBacking(backing, addr-base, size, value)
	}
	if backing, base := m.RAM.window(sec, addr); backing != nil {
		return writeBacking(backing, addr-base, size, value)
	}
	if m.MMIO != nil && m.MMIO.Mapped(addr) {
		if addr&alignmentOf(size) != 0 {
			return false, cpu.BusFault, cpu.CauseUnaligned
		}
		handled, _ := m.MMIO.Write(sec, addr, size, value)
		if !handled {
			return false, cpu.BusFault, cpu.CausePreciseErr
		}
		return true, cpu.NoFault, ""
	}
	return false, cpu.BusFault, cpu.CauseIBusErr
}

func readBacking(backing []byte, offset uint32, size uint8) (uint32, bool, cpu.FaultKind, cpu.FaultCause) {
	if uint64(offset)+uint64(size) > uint64(len(backing)) {
		return 0, false, cpu.BusFault, cpu.CausePreciseErr
	}
	var v uint32
	for i := uint8(0); i < size; i++ {
		v |= uint32(backing[offset+uint32(i)]) << (8 * i)
	}
	return v, true, cpu.NoFault, ""
}

func writeBacking(backing []byte, offset uint32, size uint8, value uint32) (bool, cpu.FaultKind, cpu.FaultCause) {
	if uint64(offset)+uint64(size) > uint64(len(backing)) {
		return false, cpu.BusFault, cpu.CausePreciseErr
	}
	for i := uint8(0); i < size; i++ {
		backing[offset+uint32(i)] = byte(value >> (8 * i))
	}
	return true, cpu.NoFault, ""
}

// ReadVector reads the 32-bit word at offset from the Secure flash base,
// as a Secure access through Read, for vector fetches made before VTOR
// has been set up.
func (m *Map) ReadVector(offset uint32) uint32 {
	v, _, _, _ := m.Read(cpu.Secure, m.Flash.BaseSecure+offset, 4)
	return v
}
