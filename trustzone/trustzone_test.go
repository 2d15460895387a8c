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

package trustzone_test

import (
	"testing"

	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/test"
	"github.com/m33mu-go/m33mu/trustzone"
)

func TestSAUDefaultsSecureWhenDisabled(t *testing.T) {
	sau := trustzone.NewSAU()
	a := sau.Attribute(0x20000000)
	test.ExpectEquality(t, a.Secure, true)
	test.ExpectEquality(t, a.NSC, false)
}

func TestSAUAllNSDefault(t *testing.T) {
	sau := trustzone.NewSAU()
	sau.AllNS = true
	a := sau.Attribute(0x20000000)
	test.ExpectEquality(t, a.Secure, false)
}

func TestSAURegionOverridesDefault(t *testing.T) {
	sau := trustzone.NewSAU()
	sau.Enabled = true
	sau.Register(trustzone.SAURegion{Base: 0x20000000, Limit: 0x2000ffff, Enabled: true, NonSecure: true})

	test.ExpectEquality(t, sau.Attribute(0x20000100).Secure, false)
	test.ExpectEquality(t, sau.Attribute(0x0c000000).Secure, true) // outside the region: IDAU default
}

func TestSAUNSCRegion(t *testing.T) {
	sau := trustzone.NewSAU()
	sau.Enabled = true
	sau.Register(trustzone.SAURegion{Base: 0x0c000400, Limit: 0x0c0007ff, Enabled: true, NonSecure: false, NSC: true})

	a := sau.Attribute(0x0c000400)
	test.ExpectEquality(t, a.Secure, true)
	test.ExpectEquality(t, a.NSC, true)
}

// TestExcReturnRoundTrip is the round-trip law: encoding then decoding an
// EXC_RETURN value with a given {sec, use_psp, to_thread} yields those
// same fields back.
func TestExcReturnRoundTrip(t *testing.T) {
	cases := []trustzone.ExcReturn{
		{TargetSecure: true, BasicFrame: true, ToThread: true, UsePSP: true},
		{TargetSecure: false, BasicFrame: true, ToThread: true, UsePSP: false},
		{TargetSecure: false, BasicFrame: true, ToThread: false, UsePSP: false},
		{TargetSecure: true, BasicFrame: true, ToThread: false, UsePSP: true},
	}

	for _, want := range cases {
		encoded := trustzone.EncodeExcReturn(want)
		test.ExpectEquality(t, trustzone.IsExcReturn(encoded), true)

		got, ok := trustzone.DecodeExcReturn(encoded)
		test.ExpectEquality(t, ok, true)
		test.ExpectEquality(t, got, want)
	}
}

// TestExcReturnScenario5Value checks the literal EXC_RETURN value loaded
// into LR when entering an IRQ taken from a Secure Thread-mode/PSP
// context: the value describes the context being returned TO (Secure,
// Thread, PSP), not the NonSecure handler the exception is routed to.
func TestExcReturnScenario5Value(t *testing.T) {
	er, ok := trustzone.DecodeExcReturn(0xffffffed)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, er.TargetSecure, true)
	test.ExpectEquality(t, er.ToThread, true)
	test.ExpectEquality(t, er.UsePSP, true)
	test.ExpectEquality(t, er.TargetSecurity(), cpu.Secure)
	test.ExpectEquality(t, er.StackSelect(), cpu.PSP)
}

func TestNotAnExcReturnValue(t *testing.T) {
	_, ok := trustzone.DecodeExcReturn(0x08000124)
	test.ExpectEquality(t, ok, false)
}
