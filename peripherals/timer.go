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

package peripherals

import (
	"fmt"

	"github.com/m33mu-go/m33mu/nvic"
)

// Timer register offsets: a control register (bit 0 = enable) and a
// free-running counter.
const (
	TimerControl = 0x00
	TimerValue   = 0x04
)

// Timer is a minimal free-running counter with an optional IRQ line,
// advanced by the run loop's Scheduler rather than a wall clock so its
// behaviour stays deterministic across runs.
type Timer struct {
	IRQ     int // NVIC external IRQ line this timer raises, or -1 for none
	enabled bool
	control uint32
	counter uint32
}

// NewTimer returns a disabled Timer. irq is the NVIC line Step raises
// when the counter wraps; pass -1 for a timer with no interrupt.
func NewTimer(irq int) *Timer {
	return &Timer{IRQ: irq}
}

// Reset clears the counter and disables the timer.
func (t *Timer) Reset() {
	t.counter = 0
	t.control = 0
	t.enabled = false
}

// Step advances the counter by cycles cycles if enabled, raising the
// configured IRQ on 32-bit wraparound. nv may be nil for a timer with no
// interrupt line wired.
func (t *Timer) Step(cycles uint32, nv *nvic.Controller) {
	if !t.enabled {
		return
	}
	next := t.counter + cycles
	wrapped := next < t.counter
	t.counter = next
	if wrapped && t.IRQ >= 0 && nv != nil {
		nv.SetPending(t.IRQ, true)
	}
}

// Read implements mmio.Handler.
func (t *Timer) Read(offset uint32, size uint8) (value uint32, ok bool, comment string) {
	switch offset {
	case TimerControl:
		return t.control, true, ""
	case TimerValue:
		return t.counter, true, fmt.Sprintf("timer read = %d", t.counter)
	}
	return 0, false, ""
}

// Write implements mmio.Handler.
func (t *Timer) Write(offset uint32, size uint8, value uint32) (ok bool, comment string) {
	switch offset {
	case TimerControl:
		t.control = value
		t.enabled = t.control&0x1 == 0x1
		if t.enabled {
			return true, "timer on"
		}
		return true, "timer off"
	case TimerValue:
		t.counter = value
		return true, fmt.Sprintf("timer = %d", value)
	}
	return false, ""
}
