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

// Package peripherals holds the small illustrative MMIO handlers spec.md
// §1 allows as the core's only SoC peripheral content: a random-number
// register and a free-running timer, each an mmio.Handler an SoC adapter
// can register directly with a memory.Map's mmio.Bus.
package peripherals

import "math/rand"

// RNG offset register layout, a reduced version of the STM32 RNG block:
// a control register, a status register that's always "ready", and a
// data register that returns a fresh random word on every read.
const (
	RNGControl = 0x00
	RNGStatus  = 0x04
	RNGData    = 0x08
)

// RNG implements mmio.Handler backing a single random-number register
// bank. It is just a sketch of the real unit: enabling it has no effect
// on the randomness of RNGData, since there's no entropy source to
// actually gate.
type RNG struct {
	control uint32
}

// NewRNG returns an RNG with its control register cleared.
func NewRNG() *RNG { return &RNG{} }

// Reset clears the control register, as a SoC reset would.
func (r *RNG) Reset() { r.control = 0 }

// Read implements mmio.Handler.
func (r *RNG) Read(offset uint32, size uint8) (value uint32, ok bool, comment string) {
	switch offset {
	case RNGControl:
		return r.control, true, ""
	case RNGStatus:
		return 0b1, true, "" // always ready
	case RNGData:
		return rand.Uint32(), true, ""
	}
	return 0, false, ""
}

// Write implements mmio.Handler. Only the control register accepts
// writes; the status and data registers silently ignore them, matching
// the real RNG block's read-only behaviour there.
func (r *RNG) Write(offset uint32, size uint8, value uint32) (ok bool, comment string) {
	switch offset {
	case RNGControl:
		r.control = value
		return true, ""
	case RNGStatus, RNGData:
		return true, "ignored: read-only register"
	}
	return false, ""
}
