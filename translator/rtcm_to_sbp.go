package translator

import (
	"time"

	"github.com/swift-nav/gnss-converters-go/obsassembler"
	"github.com/swift-nav/gnss-converters-go/rtcm3"
	"github.com/swift-nav/gnss-converters-go/sbp"
	"github.com/swift-nav/gnss-converters-go/timeresolve"
	"github.com/swift-nav/gnss-converters-go/timetruth"
)

// IngestRTCM feeds RTCM3 bytes (from a base station or NTRIP caster) into
// the session. Complete frames are decoded, translated and delivered to
// the onSBPFrame callback given to NewSession; malformed bytes are
// resynchronized past and counted, never returned as an error, mirroring
// rtcm3.Scanner's own error-free contract.
func (s *Session) IngestRTCM(data []byte) {
	s.rtcmScanner.Write(data)
	for {
		frame, ok := s.rtcmScanner.Next()
		if !ok {
			break
		}
		s.timeSvc.InvalidateCache()
		s.translateRTCMFrame(frame)
	}
}

func (s *Session) translateRTCMFrame(frame rtcm3.Frame) {
	msg := rtcm3.Decode(frame)

	if msg.DecodeError != nil {
		s.Counters.FramingErrors.Add(1)
		s.warn("rtcm-decode", "rtcm3: message %d failed to decode: %v", frame.MessageType, msg.DecodeError)
		return
	}

	if msg.Readable == nil {
		if rtcm3.IsMSMDropped(frame.MessageType) {
			s.warn("msm-dropped", "rtcm3: dropping unsupported MSM variant, message %d", frame.MessageType)
			return
		}
		s.Counters.UnknownMessageNumbers.Add(1)
		s.warn("unknown-message", "rtcm3: no decoder for message %d", frame.MessageType)
		return
	}

	switch v := msg.Readable.(type) {
	case *rtcm3.StationCoordinates:
		s.handleStationCoordinates(v)
	case *rtcm3.AntennaDescriptor:
		s.biasMapper.ObserveReceiverDescriptor(v.Descriptor)
	case *rtcm3.ReceiverAntennaDescriptors:
		s.biasMapper.ObserveReceiverDescriptor(v.ReceiverType)
	case *rtcm3.SystemParameters:
		s.handleSystemParameters(v)
	case *rtcm3.LegacyObservation:
		s.handleLegacyObservation(v)
	case *rtcm3.MSMMessage:
		s.handleMSM(v)
	case *rtcm3.GPSEphemeris:
		s.handleGPSEphemeris(v)
	case *rtcm3.GenericEphemeris:
		s.handleGenericEphemeris(v)
	case *rtcm3.GLONASSCodePhaseBias:
		s.handleGLONASSBias(v)
	case *rtcm3.SSRMessage:
		s.handleSSR(v)
	case *rtcm3.SwiftProprietary:
		// No SBP equivalent is modeled for proprietary subtypes in this
		// build; silently dropped, the same as an unrecognized RTCM type.
	case *rtcm3.SBPWrapper:
		if s.onSBPFrame != nil {
			s.onSBPFrame(v.SBPFrame)
		}
	case *rtcm3.NavDataFrame:
		// passed through nowhere: no SBP nav-data-frame equivalent is
		// modeled in this build.
	default:
		s.Counters.UnknownMessageNumbers.Add(1)
	}
}

func (s *Session) handleStationCoordinates(v *rtcm3.StationCoordinates) {
	s.stationID = uint16(v.StationID)
	out := &sbp.BasePosECEFMessage{
		X: float64(v.AntennaRefX) * 0.0001,
		Y: float64(v.AntennaRefY) * 0.0001,
		Z: float64(v.AntennaRefZ) * 0.0001,
	}
	s.emitSBP(sbp.MsgBasePosECEF, out.Encode())
}

// mjdGPSEpoch is the Modified Julian Day number of the GPS time origin,
// 1980-01-06 00:00:00 UTC - the fixed point message 1013's MJD/
// SecondOfDay pair is converted through.
const mjdGPSEpoch = 44244

// secondsPerGPSWeek mirrors timetruth.secondsPerGPSWeek; duplicated here
// since this package can't import timetruth's unexported constant.
const secondsPerGPSWeek = 7 * 24 * 3600

// systemParametersGPSTime decodes message 1013's MJD, SecondOfDay and
// LeapSeconds fields into an independent (week, time-of-week, UTC)
// triple, rather than trusting whatever time estimate is already
// current. MJD+SecondOfDay name a UTC instant directly; adding the
// message's own leap-second count converts that instant onto the
// continuous GPS time axis, from which week and time-of-week fall out
// by simple division.
func systemParametersGPSTime(v *rtcm3.SystemParameters) (weekNumber uint16, towMillis uint32, utc time.Time) {
	gpsSeconds := (int64(v.MJD)-mjdGPSEpoch)*86400 + int64(v.SecondOfDay) + int64(v.LeapSeconds)
	weekNumber = uint16(gpsSeconds / secondsPerGPSWeek)
	towSeconds := gpsSeconds % secondsPerGPSWeek
	towMillis = uint32(towSeconds) * 1000

	utc = timeresolve.GPSEpoch.
		Add(time.Duration(gpsSeconds) * time.Second).
		Add(-time.Duration(v.LeapSeconds) * time.Second)
	return weekNumber, towMillis, utc
}

func (s *Session) handleSystemParameters(v *rtcm3.SystemParameters) {
	week, towMillis, utc := systemParametersGPSTime(v)

	if e, ok := s.pool.Get(timetruth.SourceRemote, timetruth.KindRTCM1013); ok {
		e.Publish(timetruth.Snapshot{
			Confidence:     timetruth.ConfidenceGood,
			GPSWN:          week,
			GPSTOWMillis:   towMillis,
			LeapSeconds:    int(v.LeapSeconds),
			HasLeapSeconds: true,
			UTC:            utc,
			ObservedAt:     s.clock.Now(),
		})
	}
}

func (s *Session) referenceTime() time.Time {
	if snap, ok := s.fusion.Latest(); ok {
		return snap.UTC
	}
	return s.clock.Now()
}

func (s *Session) handleGPSEphemeris(v *rtcm3.GPSEphemeris) {
	week := timeresolve.ResolveWeekNumber(uint16(v.WeekNumber), s.referenceTime())
	out := ToSBPEphemeris(v, week)

	hintWeek, hintTOW := timeresolve.UTCToGPSTime(s.referenceTime())
	hintSeconds := int64(hintWeek)*secondsPerGPSWeek + int64(hintTOW)/1000

	absoluteTOE := int64(week)*secondsPerGPSWeek + int64(v.TOE)*toeTocUnit
	s.ephemerisTracker.Push(v.SatelliteID, absoluteTOE)

	if fusedWeek, fusedTOWMillis, ok := s.ephemerisTracker.Estimate(hintSeconds); ok {
		if e, ok := s.pool.Get(timetruth.SourceRemote, timetruth.KindEphemeris); ok {
			e.Publish(timetruth.Snapshot{
				Confidence:   timetruth.ConfidenceGood,
				GPSWN:        fusedWeek,
				GPSTOWMillis: fusedTOWMillis,
				UTC:          timeresolve.GPSTimeToUTC(fusedWeek, fusedTOWMillis),
				ObservedAt:   s.clock.Now(),
			})
		}
	}

	s.emitSBP(sbp.MsgEphemerisGPS, out.Encode())
}

func (s *Session) handleGenericEphemeris(v *rtcm3.GenericEphemeris) {
	sbpType, code, ok := genericEphemerisSBPType(v.MessageType)
	if !ok {
		s.Counters.UnknownMessageNumbers.Add(1)
		return
	}
	out := &sbp.GenericEphemerisMessage{
		MessageType: sbpType,
		Common: sbp.EphemerisCommonContent{
			SatelliteID:   uint8(v.SatelliteID),
			Code:          code,
			ValidityFlags: 1,
		},
		Body: v.Body,
	}
	s.emitSBP(sbpType, out.Encode())
}

func genericEphemerisSBPType(rtcmType int) (msgType uint16, code uint8, ok bool) {
	switch rtcmType {
	case rtcm3.MsgType1020:
		return sbp.MsgEphemerisGLO, sbp.CodeGLOL1OF, true
	case rtcm3.MsgType1042, rtcm3.MsgType1044:
		return sbp.MsgEphemerisBDS, sbp.CodeBDS2B1, true
	case rtcm3.MsgType1045, rtcm3.MsgType1046:
		return sbp.MsgEphemerisGAL, sbp.CodeGALE1B, true
	}
	return 0, 0, false
}

// glonassBiasScale is message 1230's DF421-DF424 code-phase bias LSB,
// the same 0.02 m resolution as the legacy pseudorange fields.
const glonassBiasScale = 0.02

func (s *Session) handleGLONASSBias(v *rtcm3.GLONASSCodePhaseBias) {
	s.biasMapper.ObserveExplicitBias(v)
	resolved := s.biasMapper.Resolve()
	out := &sbp.GLOBiasesMessage{
		Mask:      0xf,
		L1CABiasM: float64(resolved.L1CABias) * glonassBiasScale,
		L1PBiasM:  float64(resolved.L1PBias) * glonassBiasScale,
		L2CABiasM: float64(resolved.L2CABias) * glonassBiasScale,
		L2PBiasM:  float64(resolved.L2PBias) * glonassBiasScale,
	}
	s.emitSBP(sbp.MsgGLOBiases, out.Encode())
}

func (s *Session) handleSSR(v *rtcm3.SSRMessage) {
	orbit, clockMsg, ok := s.ssrCache.Offer(v)
	if !ok {
		return
	}
	// Orbit and clock have now been matched on (constellation, epoch,
	// IOD SSR); the per-satellite correction terms live inside their
	// opaque Body and aren't decoded by this build (see DESIGN.md), so
	// there's no MSG_SSR_ORBIT_CLOCK payload to construct from them yet.
	s.warn("ssr-paired", "rtcm3: matched SSR orbit/clock pair for message types %d/%d, not forwarded (body undecoded)", orbit.MessageType, clockMsg.MessageType)
}

func (s *Session) handleLegacyObservation(v *rtcm3.LegacyObservation) {
	epoch, week := s.resolveLegacyEpoch(v)
	epochSBP := sbp.GPSTimeSBP{WN: week, TOWMillis: epoch}

	for i, cell := range v.Cells {
		fcn := rtcm3.GLOFCNUnknown
		if v.Constellation == rtcm3.ConstellationGLONASS {
			fcn = cell.GLONASSFCN
			if fcn != rtcm3.GLOFCNUnknown {
				s.glonassFCN[cell.SatelliteID] = fcn
			} else if known, ok := s.glonassFCN[cell.SatelliteID]; ok {
				fcn = known
			}
		}

		obs := convertLegacyCell(v, cell, fcn)
		if len(obs) == 0 {
			s.Counters.UnknownSignalCodes.Add(1)
			s.warn("unknown-signal-code", "rtcm3: dropping legacy observation with no known SBP code, satellite %d", cell.SatelliteID)
			continue
		}
		last := i == len(v.Cells)-1
		for j, rec := range obs {
			continues := !last || j != len(obs)-1 || v.SyncGNSSFlag
			s.assembler.Push(obsassembler.SourceLegacy, s.stationID, epochSBP, rec, continues)
		}
	}
}

func (s *Session) handleMSM(v *rtcm3.MSMMessage) {
	epoch, week := s.resolveMSMEpoch(v.Header)
	epochSBP := sbp.GPSTimeSBP{WN: week, TOWMillis: epoch}

	satByID := make(map[uint]rtcm3.SatelliteCell, len(v.Satellites))
	for _, sat := range v.Satellites {
		satByID[sat.ID] = sat
	}

	msmVariant := rtcm3.MSMVariant(v.Header.MessageType)

	for i, sig := range v.Signals {
		sat, ok := satByID[sig.SatelliteID]
		if !ok {
			s.Counters.UnmatchedSatelliteCell.Add(1)
			continue
		}

		fcn := rtcm3.GLOFCNUnknown
		if v.Header.Constellation == rtcm3.ConstellationGLONASS {
			if known, ok := s.glonassFCN[sig.SatelliteID]; ok {
				fcn = known
			}
		}

		obs, ok := convertMSMSignal(v.Header, msmVariant, sat, sig, fcn)
		if !ok {
			s.Counters.UnknownSignalCodes.Add(1)
			s.warn("unknown-signal-code", "rtcm3: dropping MSM observation with no known SBP code, signal %d", sig.SignalID)
			continue
		}

		continues := i != len(v.Signals)-1 || v.Header.MultipleMessage
		s.assembler.Push(obsassembler.SourceMSM, s.stationID, epochSBP, obs, continues)
	}
}

func (s *Session) resolveLegacyEpoch(v *rtcm3.LegacyObservation) (uint32, uint16) {
	return s.resolveEpoch(v.Constellation, v.EpochTimeMS)
}

func (s *Session) resolveMSMEpoch(h *rtcm3.MSMHeader) (uint32, uint16) {
	return s.resolveEpoch(h.Constellation, h.EpochTimeMS)
}

// resolveEpoch disambiguates a constellation-specific truncated epoch
// timestamp to an absolute GPS week/time-of-week, routing to the
// GPS/Galileo/QZSS, BeiDou or GLONASS resolution rule as appropriate and
// re-deriving week/TOW uniformly via timeresolve.UTCToGPSTime so every
// constellation's observations share one SBP-visible time axis.
func (s *Session) resolveEpoch(c rtcm3.Constellation, epochTimeMS uint) (uint32, uint16) {
	var utc time.Time
	switch c {
	case rtcm3.ConstellationGLONASS:
		dayOfWeek := int(epochTimeMS >> 27)
		msSinceMidnight := uint32(epochTimeMS & ((1 << 27) - 1))
		utc = s.timeSvc.ResolveGLONASSTime(dayOfWeek, msSinceMidnight)
	case rtcm3.ConstellationBeiDou:
		utc = s.timeSvc.ResolveBeiDouTime(uint32(epochTimeMS))
	default:
		utc, _ = s.timeSvc.ResolveGPSTime(uint32(epochTimeMS))
	}
	s.checkBaseObsInsanity(utc)

	week, tow := timeresolve.UTCToGPSTime(utc)
	return tow, week
}
