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

// Package test holds small assertion helpers shared by the test suites of
// every package in this module, in place of a third-party assertion
// library.
package test

import (
	"reflect"
	"testing"
)

// ExpectEquality fails the test, reporting got and want, unless the two
// values are equal. It is the workhorse of almost every test in this
// module: most of what's being tested is "after doing X, this register (or
// flag, or memory word) holds this value".
func ExpectEquality(t *testing.T, got, want any) {
	t.Helper()

	if reflect.DeepEqual(got, want) {
		return
	}

	t.Errorf("unexpected value\ngot:  %v\nwant: %v", got, want)
}

// ExpectFailure fails the test unless got is non-nil (typically an error
// value).
func ExpectFailure(t *testing.T, got any) {
	t.Helper()

	if got == nil || reflect.ValueOf(got).IsZero() {
		t.Errorf("expected a non-zero/non-nil value but got %v", got)
	}
}

// ExpectSuccess fails the test unless got is nil (typically an error
// value returned from a function under test).
func ExpectSuccess(t *testing.T, got any) {
	t.Helper()

	if got != nil {
		v := reflect.ValueOf(got)
		if !v.IsZero() {
			t.Errorf("expected no error but got %v", got)
		}
	}
}
