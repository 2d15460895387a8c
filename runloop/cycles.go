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

package runloop

import (
	"math/bits"

	"github.com/m33mu-go/m33mu/decoder"
)

// exceptionEntryCycles and idleTimesliceCycles are the two coarse costs
// spec.md §9's cycle model calls out alongside the per-instruction table:
// entry/exit aren't free, and a sleeping core still has to advance time
// for the scheduler to make progress.
const (
	exceptionEntryCycles = 6
	idleTimesliceCycles  = 4
)

// instructionCycles approximates the cost of one retired instruction:
// one cycle for the common case, with a small override table for the
// handful of kinds that are genuinely multi-cycle on real Cortex-M33
// hardware. Per spec.md §9 this is deliberately coarse, not
// micro-architecturally accurate.
func instructionCycles(rec decoder.Record, diverged bool) uint64 {
	switch rec.Kind {
	case decoder.KindB, decoder.KindBcond, decoder.KindBL, decoder.KindCBZ, decoder.KindCBNZ,
		decoder.KindBX, decoder.KindBLX, decoder.KindBXNS, decoder.KindBLXNS, decoder.KindSG,
		decoder.KindTBB, decoder.KindTBH:
		if diverged {
			return 2 // pipeline refill on a taken branch
		}
		return 1

	case decoder.KindLDM, decoder.KindSTM, decoder.KindLDMDB, decoder.KindSTMDB, decoder.KindPUSH, decoder.KindPOP:
		n := uint64(bits.OnesCount16(rec.RegList))
		if n == 0 {
			n = 1
		}
		return n

	case decoder.KindLDRD, decoder.KindSTRD:
		return 2

	case decoder.KindMUL, decoder.KindMLA, decoder.KindMLS:
		return 1
	case decoder.KindUMULL, decoder.KindSMULL, decoder.KindUMLAL, decoder.KindSMLAL:
		return 2
	case decoder.KindSDIV, decoder.KindUDIV:
		return 4

	case decoder.KindLDREX, decoder.KindLDREXB, decoder.KindLDREXH,
		decoder.KindSTREX, decoder.KindSTREXB, decoder.KindSTREXH:
		return 2

	default:
		return 1
	}
}
