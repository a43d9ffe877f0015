package translator

import (
	"math"

	"github.com/swift-nav/gnss-converters-go/rtcm3"
	"github.com/swift-nav/gnss-converters-go/sbp"
)

// IS-GPS-200 LNAV scale factors (LSB values) applied to message 1019's raw
// two's-complement integer fields to recover physical units. These are
// standard GPS ICD constants; the field widths they pair with come from
// rtcm3.GPSEphemeris's field table.
var (
	scaleTGD     = math.Ldexp(1, -31)              // seconds
	scaleAF2     = math.Ldexp(1, -55)               // s/s^2
	scaleAF1     = math.Ldexp(1, -43)               // s/s
	scaleAF0     = math.Ldexp(1, -31)               // seconds
	scaleCrsCrc  = math.Ldexp(1, -5)                // meters
	scaleCucCus  = math.Ldexp(1, -29)               // radians
	scaleCicCis  = math.Ldexp(1, -29)               // radians
	scaleDeltaN  = math.Ldexp(1, -43) * math.Pi     // radians/s
	scaleM0Omega = math.Ldexp(1, -31) * math.Pi     // radians
	scaleEcc     = math.Ldexp(1, -33)
	scaleSqrtA   = math.Ldexp(1, -19)               // sqrt(m)
	scaleIDot    = math.Ldexp(1, -43) * math.Pi     // radians/s
)

const toeTocUnit = 16 // seconds per TOC/TOE LSB

// ToSBPEphemeris converts a decoded RTCM message 1019 into the
// IS-GPS-200-scaled SBP MSG_EPHEMERIS_GPS record. resolvedWeek is the full
// (un-truncated) GPS week number for msg.WeekNumber, resolved by the
// caller via timeresolve.ResolveWeekNumber.
func ToSBPEphemeris(msg *rtcm3.GPSEphemeris, resolvedWeek uint16) *sbp.GPSEphemerisMessage {
	out := &sbp.GPSEphemerisMessage{
		Common: sbp.EphemerisCommonContent{
			SatelliteID: uint8(msg.SatelliteID),
			Code:        sbp.CodeGPSL1CA,
			TOE:         sbp.GPSTimeSBP{WN: resolvedWeek, TOWMillis: uint32(msg.TOE) * toeTocUnit * 1000},
			FitIntervalSeconds: fitIntervalSeconds(msg.FitInterval),
			ValidityFlags:      1,
			HealthBits:         uint8(msg.SVHealth),
		},
		TGD: float64(msg.TGD) * scaleTGD,
		Crs: float64(msg.Crs) * scaleCrsCrc,
		Crc: float64(msg.Crc) * scaleCrsCrc,
		Cuc: float64(msg.Cuc) * scaleCucCus,
		Cus: float64(msg.Cus) * scaleCucCus,
		Cic: float64(msg.Cic) * scaleCicCis,
		Cis: float64(msg.Cis) * scaleCicCis,
		DeltaN: float64(msg.DeltaN) * scaleDeltaN,
		M0:     float64(msg.M0) * scaleM0Omega,
		Ecc:    float64(msg.Eccentricity) * scaleEcc,
		SqrtA:  float64(msg.SqrtA) * scaleSqrtA,
		Omega0:   float64(msg.Omega0) * scaleM0Omega,
		Omega:    float64(msg.Omega) * scaleM0Omega,
		OmegaDot: float64(msg.OmegaDot) * scaleIDot,
		I0:   float64(msg.I0) * scaleM0Omega,
		IDot: float64(msg.IDOT) * scaleIDot,
		TOC:  sbp.GPSTimeSBP{WN: resolvedWeek, TOWMillis: uint32(msg.TOC) * toeTocUnit * 1000},
		AF0: float64(msg.AF0) * scaleAF0,
		AF1: float64(msg.AF1) * scaleAF1,
		AF2: float64(msg.AF2) * scaleAF2,
		IODE: uint16(msg.IODE),
		IODC: uint16(msg.IODC),
	}
	return out
}

func fitIntervalSeconds(extended bool) uint32 {
	if extended {
		return 6 * 3600
	}
	return 4 * 3600
}

// FromSBPEphemeris is the inverse of ToSBPEphemeris: it re-quantizes an
// SBP GPS ephemeris record's float64 fields back into message 1019's raw
// integer fields, truncating the week number to RTCM's 10-bit wire field.
func FromSBPEphemeris(msg *sbp.GPSEphemerisMessage) *rtcm3.GPSEphemeris {
	return &rtcm3.GPSEphemeris{
		SatelliteID:  uint(msg.Common.SatelliteID),
		WeekNumber:   uint(msg.Common.TOE.WN) % 1024,
		SVAccuracy:   0,
		IDOT:         int64(math.Round(msg.IDot / scaleIDot)),
		IODE:         uint(msg.IODE),
		TOC:          uint(msg.TOC.TOWMillis) / 1000 / toeTocUnit,
		AF2:          int64(math.Round(msg.AF2 / scaleAF2)),
		AF1:          int64(math.Round(msg.AF1 / scaleAF1)),
		AF0:          int64(math.Round(msg.AF0 / scaleAF0)),
		IODC:         uint(msg.IODC),
		Crs:          int64(math.Round(msg.Crs / scaleCrsCrc)),
		DeltaN:       int64(math.Round(msg.DeltaN / scaleDeltaN)),
		M0:           int64(math.Round(msg.M0 / scaleM0Omega)),
		Cuc:          int64(math.Round(msg.Cuc / scaleCucCus)),
		Eccentricity: uint64(math.Round(msg.Ecc / scaleEcc)),
		Cus:          int64(math.Round(msg.Cus / scaleCucCus)),
		SqrtA:        uint64(math.Round(msg.SqrtA / scaleSqrtA)),
		TOE:          uint(msg.TOE.TOWMillis) / 1000 / toeTocUnit,
		Cic:          int64(math.Round(msg.Cic / scaleCicCis)),
		Omega0:       int64(math.Round(msg.Omega0 / scaleM0Omega)),
		Cis:          int64(math.Round(msg.Cis / scaleCicCis)),
		I0:           int64(math.Round(msg.I0 / scaleM0Omega)),
		Crc:          int64(math.Round(msg.Crc / scaleCrsCrc)),
		Omega:        int64(math.Round(msg.Omega / scaleM0Omega)),
		OmegaDot:     int64(math.Round(msg.OmegaDot / scaleIDot)),
		TGD:          int64(math.Round(msg.TGD / scaleTGD)),
		SVHealth:     uint(msg.Common.HealthBits),
		FitInterval:  msg.Common.FitIntervalSeconds > 4*3600,
	}
}
