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

func TestConditionCodes(t *testing.T) {
	var sr cpu.Status
	sr.NZCV(0, true, false) // zero result, carry set, no overflow

	test.ExpectEquality(t, sr.Condition(0b0000), true)  // EQ
	test.ExpectEquality(t, sr.Condition(0b0001), false) // NE
	test.ExpectEquality(t, sr.Condition(0b0010), true)  // CS
	test.ExpectEquality(t, sr.Condition(0b1110), true)  // AL
}

func TestITBlockAdvance(t *testing.T) {
	var sr cpu.Status
	test.ExpectEquality(t, sr.InITBlock(), false)

	sr.SetIT(0b0000, 0b1100) // ITT EQ: two instructions governed
	test.ExpectEquality(t, sr.InITBlock(), true)
	test.ExpectEquality(t, sr.LastInITBlock(), false)

	sr.AdvanceIT()
	test.ExpectEquality(t, sr.InITBlock(), true)
	test.ExpectEquality(t, sr.LastInITBlock(), true)

	sr.AdvanceIT()
	test.ExpectEquality(t, sr.InITBlock(), false)
}

func TestStatusPackUnpackRoundTrip(t *testing.T) {
	var sr cpu.Status
	sr.NZCV(0x80000000, true, true)
	sr.SetIT(0b0001, 0b1010)

	packed := sr.Pack()

	var restored cpu.Status
	restored.Unpack(packed)

	test.ExpectEquality(t, restored, sr)
}
