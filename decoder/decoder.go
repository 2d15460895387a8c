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

package decoder

// Is32Bit reports whether hw1, the first half-word fetched, indicates a
// 32-bit Thumb-2 encoding requiring a second half-word: per spec.md §4.1,
// hw1[15:11] ∈ {0b11101, 0b11110, 0b11111}.
func Is32Bit(hw1 uint16) bool {
	top5 := hw1 >> 11
	return top5 == 0b11101 || top5 == 0b11110 || top5 == 0b11111
}

// Decode turns one 16-bit half-word, or two for a 32-bit encoding, into a
// Record. hw2 is ignored when Is32Bit(hw1) is false. Decode never reads
// memory itself; the fetcher is responsible for supplying hw2 only when
// needed, per spec.md §4.1's contract.
func Decode(hw1, hw2 uint16) Record {
	if Is32Bit(hw1) {
		return decode32(hw1, hw2)
	}
	return decode16(hw1)
}
