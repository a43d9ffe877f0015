package translator

import (
	"github.com/swift-nav/gnss-converters-go/rtcm3"
	"github.com/swift-nav/gnss-converters-go/sbp"
)

// gpsCodes and the tables below map an MSM signal ID (1-32) under a
// constellation to the SBP code constants it's translated to. Grounded on the same id groupings
// rtcm3.SignalFrequency uses (gnssgo's msm_sig_* tables, RTCM 10403.3
// tables 3.5-91/96/99/102/105); where that table groups several distinct
// RTCM signal attributes (data/pilot/
// combined tracking) under one carrier band, this table picks the closest
// SBP code rather than inventing new ones, since the combined set already
// covers every signal this translator is expected to carry end to end.
var gpsCodes = map[uint]uint8{
	2: sbp.CodeGPSL1CA, 3: sbp.CodeGPSL1P, 4: sbp.CodeGPSL1P,
	8: sbp.CodeGPSL2P, 9: sbp.CodeGPSL2P, 10: sbp.CodeGPSL2P,
	15: sbp.CodeGPSL2CM, 16: sbp.CodeGPSL2CL, 17: sbp.CodeGPSL2CX,
	22: sbp.CodeGPSL5I, 23: sbp.CodeGPSL5Q, 24: sbp.CodeGPSL5X,
	30: sbp.CodeGPSL1CA, 31: sbp.CodeGPSL1CA, 32: sbp.CodeGPSL1CA,
}

var glonassCodes = map[uint]uint8{
	2: sbp.CodeGLOL1OF, 3: sbp.CodeGLOL1OF,
	8: sbp.CodeGLOL2OF, 9: sbp.CodeGLOL2OF,
}

var galileoCodes = map[uint]uint8{
	2: sbp.CodeGALE1B, 3: sbp.CodeGALE1C, 4: sbp.CodeGALE1X, 5: sbp.CodeGALE1B, 6: sbp.CodeGALE1C,
	8: sbp.CodeGALE6B, 9: sbp.CodeGALE6C, 10: sbp.CodeGALE6X, 11: sbp.CodeGALE6B, 12: sbp.CodeGALE6C,
	14: sbp.CodeGALE7I, 15: sbp.CodeGALE7Q, 16: sbp.CodeGALE7X,
	18: sbp.CodeGALE8I, 19: sbp.CodeGALE8I, 20: sbp.CodeGALE8I,
	22: sbp.CodeGALE5I, 23: sbp.CodeGALE5Q, 24: sbp.CodeGALE5X,
}

var qzssCodes = map[uint]uint8{
	2: sbp.CodeQZSL1CA,
	9: sbp.CodeQZSL2CM, 10: sbp.CodeQZSL2CL, 11: sbp.CodeQZSL2CM,
	15: sbp.CodeQZSL2CM, 16: sbp.CodeQZSL2CL, 17: sbp.CodeQZSL2CL,
	22: sbp.CodeQZSL5I, 23: sbp.CodeQZSL5Q, 24: sbp.CodeQZSL5Q,
	30: sbp.CodeQZSL1CA, 31: sbp.CodeQZSL1CA, 32: sbp.CodeQZSL1CA,
}

var sbasCodes = map[uint]uint8{
	2: sbp.CodeSBASL1CA,
	22: sbp.CodeSBASL5I, 23: sbp.CodeSBASL5Q, 24: sbp.CodeSBASL5X,
}

var beidouCodes = map[uint]uint8{
	2: sbp.CodeBDS2B1, 3: sbp.CodeBDS2B1, 4: sbp.CodeBDS2B1,
	8: sbp.CodeBDS2B2, 9: sbp.CodeBDS2B2, 10: sbp.CodeBDS2B2,
	14: sbp.CodeBDS2B2, 15: sbp.CodeBDS2B2, 16: sbp.CodeBDS2B2,
}

// mapSignalCode returns the SBP code for an RTCM MSM signal ID under
// constellation, and ok=false if this translator doesn't know a code for
// it - the caller drops the observation and logs a one-shot warning
// rather than guessing at an SBP code.
func mapSignalCode(c rtcm3.Constellation, signalID uint) (uint8, bool) {
	var table map[uint]uint8
	switch c {
	case rtcm3.ConstellationGPS:
		table = gpsCodes
	case rtcm3.ConstellationGLONASS:
		table = glonassCodes
	case rtcm3.ConstellationGalileo:
		table = galileoCodes
	case rtcm3.ConstellationQZSS:
		table = qzssCodes
	case rtcm3.ConstellationSBAS:
		table = sbasCodes
	case rtcm3.ConstellationBeiDou:
		table = beidouCodes
	default:
		return 0, false
	}
	code, ok := table[signalID]
	return code, ok
}

// codeToSignal is the inverse of mapSignalCode, built once from the
// forward tables: SBP code -> (constellation, one representative RTCM
// signal ID). Several RTCM signal IDs can collapse to the same SBP code
// in the forward direction (see mapSignalCode's doc comment); the reverse
// only needs one representative ID to re-encode a legacy/MSM cell.
var codeToSignal = buildReverseCodeTable()

type signalLocation struct {
	constellation rtcm3.Constellation
	signalID      uint
}

func buildReverseCodeTable() map[uint8]signalLocation {
	reverse := make(map[uint8]signalLocation)
	tables := []struct {
		c     rtcm3.Constellation
		table map[uint]uint8
	}{
		{rtcm3.ConstellationGPS, gpsCodes},
		{rtcm3.ConstellationGLONASS, glonassCodes},
		{rtcm3.ConstellationGalileo, galileoCodes},
		{rtcm3.ConstellationQZSS, qzssCodes},
		{rtcm3.ConstellationSBAS, sbasCodes},
		{rtcm3.ConstellationBeiDou, beidouCodes},
	}
	for _, t := range tables {
		for signalID, code := range t.table {
			if _, exists := reverse[code]; !exists {
				reverse[code] = signalLocation{t.c, signalID}
			}
		}
	}
	return reverse
}

// mapCodeToSignal is the inverse of mapSignalCode.
func mapCodeToSignal(code uint8) (rtcm3.Constellation, uint, bool) {
	loc, ok := codeToSignal[code]
	return loc.constellation, loc.signalID, ok
}
