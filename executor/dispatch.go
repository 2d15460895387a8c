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

package executor

import (
	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/decoder"
)

// dispatch routes a Record to its family handler. diverged is true when
// the handler itself set a new PC (a taken branch, call, or interworking
// return) so Execute shouldn't also add rec.Len.
func (m *Machine) dispatch(rec decoder.Record) (diverged, trapped bool) {
	switch rec.Kind {
	case decoder.KindMOVreg, decoder.KindMOVimm, decoder.KindMOVT, decoder.KindMVNreg, decoder.KindMVNimm,
		decoder.KindANDreg, decoder.KindANDimm, decoder.KindORRreg, decoder.KindORRimm,
		decoder.KindEORreg, decoder.KindEORimm, decoder.KindBICreg, decoder.KindBICimm,
		decoder.KindORNreg, decoder.KindORNimm, decoder.KindADDreg, decoder.KindADDimm,
		decoder.KindADDSPreg, decoder.KindADDSPimm, decoder.KindSUBreg, decoder.KindSUBimm,
		decoder.KindSUBSPimm, decoder.KindRSBimm, decoder.KindRSBreg, decoder.KindADCreg,
		decoder.KindADCimm, decoder.KindSBCreg, decoder.KindSBCimm, decoder.KindCMPreg,
		decoder.KindCMPimm, decoder.KindCMNreg, decoder.KindCMNimm, decoder.KindTSTreg,
		decoder.KindTSTimm, decoder.KindTEQreg, decoder.KindTEQimm, decoder.KindADR:
		return false, m.execDataProcessing(rec)

	case decoder.KindLSLimm, decoder.KindLSLreg, decoder.KindLSRimm, decoder.KindLSRreg,
		decoder.KindASRimm, decoder.KindASRreg, decoder.KindRORimm, decoder.KindRORreg, decoder.KindRRX,
		decoder.KindSXTB, decoder.KindSXTH, decoder.KindUXTB, decoder.KindUXTH,
		decoder.KindSXTB16, decoder.KindUXTB16, decoder.KindREV, decoder.KindREV16,
		decoder.KindREVSH, decoder.KindRBIT, decoder.KindCLZ, decoder.KindBFI, decoder.KindBFC,
		decoder.KindUBFX, decoder.KindSBFX:
		return false, m.execShiftExtendBitfield(rec)

	case decoder.KindMUL, decoder.KindMLA, decoder.KindMLS, decoder.KindUMULL, decoder.KindSMULL,
		decoder.KindUMLAL, decoder.KindSMLAL, decoder.KindSDIV, decoder.KindUDIV:
		return false, m.execMultiplyDivide(rec)

	case decoder.KindCBZ, decoder.KindCBNZ, decoder.KindB, decoder.KindBcond, decoder.KindBL,
		decoder.KindBX, decoder.KindBLX, decoder.KindBXNS, decoder.KindBLXNS, decoder.KindSG,
		decoder.KindTBB, decoder.KindTBH:
		return m.execBranch(rec)

	case decoder.KindLDR, decoder.KindLDRB, decoder.KindLDRH, decoder.KindLDRSB, decoder.KindLDRSH,
		decoder.KindLDRlit, decoder.KindSTR, decoder.KindSTRB, decoder.KindSTRH,
		decoder.KindLDRD, decoder.KindSTRD, decoder.KindPUSH, decoder.KindPOP,
		decoder.KindLDM, decoder.KindSTM, decoder.KindLDMDB, decoder.KindSTMDB,
		decoder.KindLDREX, decoder.KindLDREXB, decoder.KindLDREXH,
		decoder.KindSTREX, decoder.KindSTREXB, decoder.KindSTREXH, decoder.KindCLREX:
		return m.execLoadStore(rec)

	case decoder.KindMSR, decoder.KindMRS, decoder.KindCPS, decoder.KindDSB, decoder.KindDMB,
		decoder.KindISB, decoder.KindNOP, decoder.KindYIELD, decoder.KindWFE, decoder.KindWFI,
		decoder.KindSEV, decoder.KindIT, decoder.KindSVC, decoder.KindBKPT, decoder.KindUDF:
		return false, m.execSystem(rec)
	}

	m.raiseFault(cpu.UsageFault, cpu.CauseUndefInstr, rec.Raw)
	return false, true
}
