package translator

import (
	"math"
	"sort"

	"github.com/swift-nav/gnss-converters-go/config"
	"github.com/swift-nav/gnss-converters-go/rtcm3"
	"github.com/swift-nav/gnss-converters-go/sbp"
)

// IngestSBP feeds SBP bytes (a rover's corrections client, or a replay of
// a previously-captured stream) into the session. Complete frames are
// decoded, translated and delivered to the onRTCMFrame callback given to
// NewSession.
func (s *Session) IngestSBP(data []byte) {
	s.sbpScanner.Write(data)
	for {
		frame, ok := s.sbpScanner.Next()
		if !ok {
			break
		}
		s.translateSBPFrame(frame)
	}
}

func (s *Session) translateSBPFrame(frame sbp.Frame) {
	switch frame.MessageType {
	case sbp.MsgObs:
		msg, err := sbp.DecodeObservationsMessage(frame.Payload)
		if err != nil {
			s.Counters.FramingErrors.Add(1)
			s.warn("sbp-decode", "sbp: MSG_OBS decode failed: %v", err)
			return
		}
		s.handleSBPObservations(msg)
	case sbp.MsgBasePosECEF:
		msg, err := sbp.DecodeBasePosECEFMessage(frame.Payload)
		if err != nil {
			s.Counters.FramingErrors.Add(1)
			return
		}
		s.emitStationCoordinates(msg)
	case sbp.MsgEphemerisGPS:
		msg, err := sbp.DecodeGPSEphemerisMessage(frame.Payload)
		if err != nil {
			s.Counters.FramingErrors.Add(1)
			return
		}
		s.emitRTCM(FromSBPEphemeris(msg))
	case sbp.MsgEphemerisGLO, sbp.MsgEphemerisGAL, sbp.MsgEphemerisBDS, sbp.MsgEphemerisQZSS:
		msg, err := sbp.DecodeGenericEphemerisMessage(frame.MessageType, frame.Payload)
		if err != nil {
			s.Counters.FramingErrors.Add(1)
			return
		}
		s.emitGenericEphemeris(msg)
	case sbp.MsgGLOBiases:
		msg, err := sbp.DecodeGLOBiasesMessage(frame.Payload)
		if err != nil {
			s.Counters.FramingErrors.Add(1)
			return
		}
		s.emitGLONASSBias(msg)
	case sbp.MsgSVConfigGLO:
		msg, err := sbp.DecodeSVConfigGLOMessage(frame.Payload)
		if err != nil {
			s.Counters.FramingErrors.Add(1)
			return
		}
		s.glonassFCN[uint(msg.SatelliteID)] = rtcm3.GLONASSFCNFromSBP(msg.FCN)
	default:
		s.Counters.UnknownMessageNumbers.Add(1)
		s.warn("sbp-unknown", "sbp: no encoder for message type 0x%04x", frame.MessageType)
	}
}

func (s *Session) emitRTCM(enc interface{ Encode() ([]byte, error) }) {
	if s.onRTCMFrame == nil {
		return
	}
	payload, err := enc.Encode()
	if err != nil {
		s.Counters.Internal.Add(1)
		s.warn("rtcm-encode", "rtcm3: encode failed: %v", err)
		return
	}
	frame, err := rtcm3.Encode(payload)
	if err != nil {
		s.Counters.Internal.Add(1)
		return
	}
	s.onRTCMFrame(frame)
}

func (s *Session) emitStationCoordinates(msg *sbp.BasePosECEFMessage) {
	s.emitRTCM(&rtcm3.StationCoordinates{
		StationID:   uint(s.stationID),
		HasHeight:   false,
		AntennaRefX: int64(math.Round(msg.X / 0.0001)),
		AntennaRefY: int64(math.Round(msg.Y / 0.0001)),
		AntennaRefZ: int64(math.Round(msg.Z / 0.0001)),
	})
}

func (s *Session) emitGenericEphemeris(msg *sbp.GenericEphemerisMessage) {
	rtcmType, ok := rtcmGenericEphemerisType(msg.MessageType)
	if !ok {
		s.Counters.UnknownMessageNumbers.Add(1)
		return
	}
	s.emitRTCM(&rtcm3.GenericEphemeris{
		MessageType: rtcmType,
		SatelliteID: uint(msg.Common.SatelliteID),
		Body:        msg.Body,
	})
}

func rtcmGenericEphemerisType(sbpType uint16) (int, bool) {
	switch sbpType {
	case sbp.MsgEphemerisGLO:
		return rtcm3.MsgType1020, true
	case sbp.MsgEphemerisBDS:
		return rtcm3.MsgType1044, true
	case sbp.MsgEphemerisGAL:
		return rtcm3.MsgType1045, true
	}
	return 0, false
}

func (s *Session) emitGLONASSBias(msg *sbp.GLOBiasesMessage) {
	s.emitRTCM(&rtcm3.GLONASSCodePhaseBias{
		StationID:               uint(s.stationID),
		AlignedWithCarrierPhase: true,
		L1CABias:                int16(math.Round(msg.L1CABiasM / glonassBiasScale)),
		L1PBias:                 int16(math.Round(msg.L1PBiasM / glonassBiasScale)),
		L2CABias:                int16(math.Round(msg.L2CABiasM / glonassBiasScale)),
		L2PBias:                 int16(math.Round(msg.L2PBiasM / glonassBiasScale)),
	})
}

// handleSBPObservations reassembles a (possibly multi-fragment) MSG_OBS
// sequence and, once the last fragment in the sequence arrives, encodes
// the whole epoch into RTCM3 observation messages per
// config.Config.MSMOutputMode. Fragments are expected in order, matching
// the way obsassembler produces them on the other side of this session.
func (s *Session) handleSBPObservations(msg *sbp.ObservationsMessage) {
	total := int(msg.NumSeq >> 4)
	index := int(msg.NumSeq & 0xf)

	if index == 0 {
		s.pendingObsHeader = msg.Header
		s.pendingObs = s.pendingObs[:0]
	}
	s.pendingObs = append(s.pendingObs, msg.Observations...)

	if index != total-1 {
		return
	}

	s.encodeObservationEpoch(s.pendingObsHeader, s.pendingObs)
	s.pendingObs = nil
}

func (s *Session) encodeObservationEpoch(header sbp.GPSTimeSBP, obs []sbp.ObservationSBP) {
	byConstellation := make(map[rtcm3.Constellation][]sbp.ObservationSBP)
	for _, o := range obs {
		c, _, ok := mapCodeToSignal(o.Signal.Code)
		if !ok {
			s.Counters.UnknownSignalCodes.Add(1)
			s.warn("unknown-signal-code", "sbp: dropping observation with unknown code %d", o.Signal.Code)
			continue
		}
		byConstellation[c] = append(byConstellation[c], o)
	}

	for c, group := range byConstellation {
		if s.cfg.MSMOutputMode == config.MSMOutputLegacy {
			s.encodeLegacyEpoch(c, header, group)
		} else {
			s.encodeMSMEpoch(c, header, group)
		}
	}
}

// encodeLegacyEpoch emits one legacy (1001-1004/1010/1012) message per
// constellation, choosing the extended (ambiguity+CNR carrying) variant
// unconditionally since this translator always has those fields
// available from the MSG_OBS records it's re-encoding.
func (s *Session) encodeLegacyEpoch(c rtcm3.Constellation, header sbp.GPSTimeSBP, obs []sbp.ObservationSBP) {
	messageType, ok := legacyMessageType(c)
	if !ok {
		return
	}

	bySat := groupBySatellite(obs)
	msg := &rtcm3.LegacyObservation{
		MessageType: messageType,
		Constellation: c,
		StationID:    uint(s.stationID),
		EpochTimeMS:  uint(header.TOWMillis),
		SyncGNSSFlag: false,
	}

	for _, satID := range sortedKeys(bySat) {
		cell := s.buildLegacyCell(c, satID, bySat[satID])
		msg.Cells = append(msg.Cells, cell)
	}
	s.emitRTCM(msg)
}

func (s *Session) buildLegacyCell(c rtcm3.Constellation, satID uint8, signals map[uint8]sbp.ObservationSBP) rtcm3.LegacyCell {
	cell := rtcm3.LegacyCell{SatelliteID: uint(satID), GLONASSFCN: rtcm3.GLOFCNUnknown}
	if c == rtcm3.ConstellationGLONASS {
		if fcn, ok := s.glonassFCN[uint(satID)]; ok {
			cell.GLONASSFCN = fcn
		}
	}

	lightMS := rtcm3.PRUnitGPS
	if c == rtcm3.ConstellationGLONASS {
		lightMS = rtcm3.PRUnitGLO
	}

	if l1, ok := signals[l1SignalCode(c)]; ok {
		pseudorangeM := float64(l1.Pseudorange) * 0.02
		ambiguity := math.Floor(pseudorangeM / lightMS)
		cell.L1Pseudorange = uint(math.Round((pseudorangeM - ambiguity*lightMS) / legacyPRScale))
		cell.L1Ambiguity = uint(ambiguity)
		cell.L1CNR = uint(l1.CN0)
		cell.L1LockTime = uint(l1.LockTime)
		if l1.Flags&flagPhaseValid != 0 {
			if freqHz, ok := rtcm3.SignalFrequency(c, 2, cell.GLONASSFCN); ok {
				cycles := float64(l1.CarrierPhase) / 256
				phaserangeM := cycles * speedOfLight / freqHz
				cell.L1PhaserangeDiff = int64(math.Round((phaserangeM - pseudorangeM) / legacyPhaseScale))
			}
		}
	}

	if l2, ok := signals[l2SignalCode(c)]; ok {
		cell.HasL2 = true
		l1PseudorangeM := float64(cell.L1Pseudorange)*legacyPRScale + float64(cell.L1Ambiguity)*lightMS
		l2PseudorangeM := float64(l2.Pseudorange) * 0.02
		cell.L2PseudorangeDiff = int64(math.Round((l2PseudorangeM - l1PseudorangeM) / legacyPRScale))
		cell.L2CNR = uint(l2.CN0)
		cell.L2LockTime = uint(l2.LockTime)
		if l2.Flags&flagPhaseValid != 0 {
			if freqHz, ok := rtcm3.SignalFrequency(c, 8, cell.GLONASSFCN); ok {
				cycles := float64(l2.CarrierPhase) / 256
				phaserangeM := cycles * speedOfLight / freqHz
				cell.L2PhaserangeDiff = int64(math.Round((phaserangeM - l2PseudorangeM) / legacyPhaseScale))
			}
		}
	}

	return cell
}

func legacyMessageType(c rtcm3.Constellation) (int, bool) {
	switch c {
	case rtcm3.ConstellationGPS:
		return rtcm3.MsgType1004, true
	case rtcm3.ConstellationGLONASS:
		return rtcm3.MsgType1012, true
	}
	return 0, false
}

func l1SignalCode(c rtcm3.Constellation) uint8 {
	code, _ := mapSignalCode(c, 2)
	return code
}

func l2SignalCode(c rtcm3.Constellation) uint8 {
	code, _ := mapSignalCode(c, 8)
	return code
}

// encodeMSMEpoch emits one MSM4 or MSM5 message per constellation
// (MSMOutputMSM4/MSMOutputMSM5), rebuilding the satellite rough-range and
// per-signal fine fields from the SBP observation's meters/cycles/Hz
// representation - the inverse of convertMSMSignal.
func (s *Session) encodeMSMEpoch(c rtcm3.Constellation, header sbp.GPSTimeSBP, obs []sbp.ObservationSBP) {
	messageType, ok := msmMessageType(c, s.cfg.MSMOutputMode)
	if !ok {
		return
	}
	variant := rtcm3.MSMVariant(messageType)
	hasRate := variant == 5

	bySat := groupBySatellite(obs)
	satIDs := sortedKeys(bySat)

	h := &rtcm3.MSMHeader{
		MessageType:  messageType,
		Constellation: c,
		StationID:    uint(s.stationID),
		EpochTimeMS:  uint(header.TOWMillis),
		MultipleMessage: false,
	}

	msg := &rtcm3.MSMMessage{Header: h}
	signalSet := map[uint]bool{}

	for _, satID := range satIDs {
		h.Satellites = append(h.Satellites, uint(satID))
		for code := range bySat[satID] {
			if _, sigID, ok := mapCodeToSignal(code); ok {
				signalSet[sigID] = true
			}
		}
	}
	for sigID := range signalSet {
		h.Signals = append(h.Signals, sigID)
	}
	sort.Slice(h.Signals, func(i, j int) bool { return h.Signals[i] < h.Signals[j] })

	h.Cells = make([][]bool, len(h.Satellites))
	for i, satID := range satIDs {
		h.Cells[i] = make([]bool, len(h.Signals))
		for j, sigID := range h.Signals {
			code, hasCode := reverseSignalCode(c, sigID)
			if !hasCode {
				continue
			}
			if _, present := bySat[satID][code]; present {
				h.Cells[i][j] = true
			}
		}
	}

	h.SatelliteMask = idsToMask(h.Satellites, rtcm3.MSMSatelliteMaskSize)
	h.SignalMask = uint32(idsToMask(h.Signals, rtcm3.MSMSignalMaskSize))
	h.CellMask = cellsToMaskLocal(h.Cells)

	for _, satID := range satIDs {
		sat := s.buildSatelliteCell(c, satID, bySat[satID], hasRate)
		msg.Satellites = append(msg.Satellites, sat)
	}

	for i, satID := range satIDs {
		for j, sigID := range h.Signals {
			if !h.Cells[i][j] {
				continue
			}
			code, _ := reverseSignalCode(c, sigID)
			rec := bySat[satID][code]
			msg.Signals = append(msg.Signals, s.buildSignalCell(c, uint(satID), sigID, rec, variant))
		}
	}

	s.emitRTCM(msg)
}

func msmMessageType(c rtcm3.Constellation, mode config.MSMOutputMode) (int, bool) {
	variant := 4
	if mode == config.MSMOutputMSM5 {
		variant = 5
	}
	switch c {
	case rtcm3.ConstellationGPS:
		if variant == 5 {
			return rtcm3.MsgTypeMSM5GPS, true
		}
		return rtcm3.MsgTypeMSM4GPS, true
	case rtcm3.ConstellationGLONASS:
		if variant == 5 {
			return rtcm3.MsgTypeMSM5GLONASS, true
		}
		return rtcm3.MsgTypeMSM4GLONASS, true
	case rtcm3.ConstellationGalileo:
		if variant == 5 {
			return rtcm3.MsgTypeMSM5Galileo, true
		}
		return rtcm3.MsgTypeMSM4Galileo, true
	case rtcm3.ConstellationBeiDou:
		if variant == 5 {
			return rtcm3.MsgTypeMSM5BeiDou, true
		}
		return rtcm3.MsgTypeMSM4BeiDou, true
	case rtcm3.ConstellationQZSS:
		if variant == 5 {
			return rtcm3.MsgTypeMSM5QZSS, true
		}
		return rtcm3.MsgTypeMSM4QZSS, true
	case rtcm3.ConstellationSBAS:
		if variant == 5 {
			return rtcm3.MsgTypeMSM5SBAS, true
		}
		return rtcm3.MsgTypeMSM4SBAS, true
	}
	return 0, false
}

// reverseSignalCode returns the SBP code that RTCM signal ID signalID maps
// to under constellation c (the same lookup as mapSignalCode), so MSM masks
// can be rebuilt from SBP observations keyed by code; the lookup is per
// constellation because several constellations disagree on what a given
// signal ID means.
func reverseSignalCode(c rtcm3.Constellation, signalID uint) (uint8, bool) {
	return mapSignalCode(c, signalID)
}

func (s *Session) buildSatelliteCell(c rtcm3.Constellation, satID uint8, signals map[uint8]sbp.ObservationSBP, hasRate bool) rtcm3.SatelliteCell {
	var ranges []float64
	for _, rec := range signals {
		ranges = append(ranges, float64(rec.Pseudorange)*0.02)
	}
	roughM := medianOf(ranges)
	roughMS := roughM / rangeMSToMeters

	cell := rtcm3.SatelliteCell{
		ID:                   uint(satID),
		RoughRangeMillis:     uint(math.Floor(roughMS)),
		RoughRangeFracMillis: uint(math.Round((roughMS - math.Floor(roughMS)) * 1024)),
	}

	if hasRate {
		cell.HasRate = true
		for code, rec := range signals {
			if rec.Flags&flagDopplerValid == 0 {
				continue
			}
			_, sigID, ok := mapCodeToSignal(code)
			if !ok {
				continue
			}
			fcn := rtcm3.GLOFCNUnknown
			if c == rtcm3.ConstellationGLONASS {
				if known, ok := s.glonassFCN[uint(satID)]; ok {
					fcn = known
				}
			}
			if freqHz, ok := rtcm3.SignalFrequency(c, sigID, fcn); ok {
				dopplerHz := float64(rec.Doppler) / 65536
				rateMPS := -dopplerHz * speedOfLight / freqHz
				cell.RoughRangeRateMPS = int64(math.Round(rateMPS))
				break
			}
		}
	}

	return cell
}

func (s *Session) buildSignalCell(c rtcm3.Constellation, satID, sigID uint, rec sbp.ObservationSBP, variant int) rtcm3.SignalCell {
	extended := variant == 7
	prScale, cpScale := finePseudorangeScale, finePhaserangeScale
	if extended {
		prScale, cpScale = finePseudorangeExtScale, finePhaserangeExtScale
	}

	pseudorangeM := float64(rec.Pseudorange) * 0.02
	roughMS := math.Floor(pseudorangeM / rangeMSToMeters)
	fine := (pseudorangeM/rangeMSToMeters - roughMS) / prScale

	sig := rtcm3.SignalCell{
		SatelliteID:       satID,
		SignalID:          sigID,
		FinePseudorange:   int64(math.Round(fine)),
		CNR:               cnrFromSBP(rec.CN0, extended),
		LockTimeIndicator: uint(rec.LockTime),
	}

	fcn := rtcm3.GLOFCNUnknown
	if c == rtcm3.ConstellationGLONASS {
		if known, ok := s.glonassFCN[satID]; ok {
			fcn = known
		}
	}
	freqHz, freqOK := rtcm3.SignalFrequency(c, sigID, fcn)

	if rec.Flags&flagPhaseValid != 0 && freqOK {
		cycles := float64(rec.CarrierPhase) / 256
		phaserangeM := cycles * speedOfLight / freqHz
		fineCP := (phaserangeM/rangeMSToMeters - roughMS) / cpScale
		sig.HasPhaserange = true
		sig.FinePhaserange = int64(math.Round(fineCP))
		sig.HalfCycleAmbiguity = rec.Flags&flagHalfCycleKnown != 0
	}

	if rec.Flags&flagDopplerValid != 0 && freqOK {
		dopplerHz := float64(rec.Doppler) / 65536
		rateMPS := -dopplerHz * speedOfLight / freqHz
		sig.HasDoppler = true
		sig.FineDoppler = int64(math.Round(rateMPS / 0.0001))
	}

	return sig
}

// cnrFromSBP is the inverse of cnrToSBP.
func cnrFromSBP(sbpCN0 uint8, extended bool) uint {
	dBHz := float64(sbpCN0) * 0.25
	if extended {
		return uint(math.Round(dBHz / math.Ldexp(1, -4)))
	}
	return uint(math.Round(dBHz))
}

func groupBySatellite(obs []sbp.ObservationSBP) map[uint8]map[uint8]sbp.ObservationSBP {
	out := make(map[uint8]map[uint8]sbp.ObservationSBP)
	for _, o := range obs {
		if out[o.Signal.SatelliteID] == nil {
			out[o.Signal.SatelliteID] = make(map[uint8]sbp.ObservationSBP)
		}
		out[o.Signal.SatelliteID][o.Signal.Code] = o
	}
	return out
}

func sortedKeys(m map[uint8]map[uint8]sbp.ObservationSBP) []uint8 {
	keys := make([]uint8, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// idsToMask packs a sorted set of 1-based IDs into a width-bit mask, MSB
// = ID 1, mirroring rtcm3.DecodeMSMHeader's bitsToIDs convention (that
// helper isn't exported, so the inverse needed for re-encoding is kept
// here instead).
func idsToMask(ids []uint, width int) uint64 {
	var mask uint64
	for _, id := range ids {
		bitPos := width - int(id)
		if bitPos < 0 || bitPos >= 64 {
			continue
		}
		mask |= 1 << uint(bitPos)
	}
	return mask
}

// cellsToMaskLocal is the inverse of rtcm3's unexported maskToCells,
// packing a satellite x signal presence grid into one mask, row-major,
// MSB first.
func cellsToMaskLocal(cells [][]bool) uint64 {
	total := 0
	for _, row := range cells {
		total += len(row)
	}
	var mask uint64
	cellNum := 0
	for _, row := range cells {
		for _, present := range row {
			cellNum++
			if present {
				mask |= 1 << uint(total-cellNum)
			}
		}
	}
	return mask
}

func medianOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
