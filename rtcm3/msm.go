package rtcm3

import (
	"fmt"

	"github.com/swift-nav/gnss-converters-go/bitstream"
)

// Field widths for the satellite and signal cells that follow an MSM
// header: the MSM4 rough-range cell generalized to MSM1/5/7 using the
// same whole/fractional-millisecond split, per librtcm's
// rtcm3/constants.h invalid-value sentinels.
const (
	lenSatRoughRangeMillis = 8
	lenSatExtendedInfo     = 4
	lenSatRoughRangeRate   = 14
	lenSatRoughRangeFrac   = 10

	lenSigFinePseudorange       = 15
	lenSigFinePseudorangeExt    = 20
	lenSigFinePhaserange        = 22
	lenSigFinePhaserangeExt     = 24
	lenSigLockTimeIndicator     = 4
	lenSigLockTimeIndicatorExt  = 10
	lenSigHalfCycleAmbiguity    = 1
	lenSigCNR                   = 6
	lenSigCNRExt                = 10
	lenSigFineDoppler           = 15
)

// SatelliteCell is one satellite's rough-range data in an MSM message.
type SatelliteCell struct {
	ID                   uint
	RoughRangeMillis     uint
	RoughRangeFracMillis uint

	// HasRate is true for MSM5/MSM7, which carry an extended rough range
	// rate per satellite; false for MSM1/MSM4.
	HasRate      bool
	RoughRangeRateMPS int64
}

// SignalCell is one (satellite, signal) observation in an MSM message.
type SignalCell struct {
	SatelliteID uint
	SignalID    uint

	FinePseudorange    int64 // units of 2^-24 ms (MSM1/4/5) or 2^-29 ms (MSM7 extended)
	HasPhaserange      bool
	FinePhaserange     int64
	LockTimeIndicator  uint
	HalfCycleAmbiguity bool
	CNR                uint

	HasDoppler  bool
	FineDoppler int64
}

// MSMMessage is a fully decoded MSM1/4/5/7 message: header, satellite
// cells and signal cells.
type MSMMessage struct {
	Header     *MSMHeader
	Satellites []SatelliteCell
	Signals    []SignalCell
}

// DecodeMSM decodes a complete MSM1/4/5/7 payload. MSM2/3/6 are rejected;
// callers should check IsMSMDecoded/IsMSMDropped before calling this.
func DecodeMSM(payload []byte) (*MSMMessage, error) {
	header, _, err := DecodeMSMHeader(payload)
	if err != nil {
		return nil, err
	}
	variant := MSMVariant(header.MessageType)
	if variant != 1 && variant != 4 && variant != 5 && variant != 7 {
		return nil, fmt.Errorf("rtcm3: MSM%d messages are not decoded by this codec", variant)
	}

	r := bitstream.NewReader(payload)
	r.Seek(headerBitLength(header))

	extended := variant == 7
	hasRate := variant == 5 || variant == 7
	hasPhaserange := variant != 1
	hasDoppler := variant == 5 || variant == 7

	nSat := len(header.Satellites)
	nSig := len(header.Signals)

	roughRange := make([]uint, nSat)
	for i := 0; i < nSat; i++ {
		v, err := r.DecodeU(lenSatRoughRangeMillis)
		if err != nil {
			return nil, err
		}
		roughRange[i] = uint(v)
	}

	rateValues := make([]int64, nSat)
	if hasRate {
		for i := 0; i < nSat; i++ {
			if _, err := r.DecodeU(lenSatExtendedInfo); err != nil {
				return nil, err
			}
		}
		for i := 0; i < nSat; i++ {
			v, err := r.DecodeS(lenSatRoughRangeRate)
			if err != nil {
				return nil, err
			}
			rateValues[i] = v
		}
	}

	roughRangeFrac := make([]uint, nSat)
	for i := 0; i < nSat; i++ {
		v, err := r.DecodeU(lenSatRoughRangeFrac)
		if err != nil {
			return nil, err
		}
		roughRangeFrac[i] = uint(v)
	}

	satellites := make([]SatelliteCell, nSat)
	for i := 0; i < nSat; i++ {
		satellites[i] = SatelliteCell{
			ID:                   header.Satellites[i],
			RoughRangeMillis:     roughRange[i],
			RoughRangeFracMillis: roughRangeFrac[i],
			HasRate:              hasRate,
			RoughRangeRateMPS:    rateValues[i],
		}
	}

	// Walk the cell mask to build the (satellite, signal) pairs in wire
	// order.
	type pair struct{ satIdx, sigIdx int }
	var pairs []pair
	for si := 0; si < nSat; si++ {
		for gi := 0; gi < nSig; gi++ {
			if header.Cells[si][gi] {
				pairs = append(pairs, pair{si, gi})
			}
		}
	}

	pseudorangeWidth := uint(lenSigFinePseudorange)
	phaserangeWidth := uint(lenSigFinePhaserange)
	lockWidth := uint(lenSigLockTimeIndicator)
	cnrWidth := uint(lenSigCNR)
	if extended {
		pseudorangeWidth = lenSigFinePseudorangeExt
		phaserangeWidth = lenSigFinePhaserangeExt
		lockWidth = lenSigLockTimeIndicatorExt
		cnrWidth = lenSigCNRExt
	}

	n := len(pairs)
	pseudoranges := make([]int64, n)
	for i := 0; i < n; i++ {
		v, err := r.DecodeS(pseudorangeWidth)
		if err != nil {
			return nil, err
		}
		pseudoranges[i] = v
	}

	phaseranges := make([]int64, n)
	if hasPhaserange {
		for i := 0; i < n; i++ {
			v, err := r.DecodeS(phaserangeWidth)
			if err != nil {
				return nil, err
			}
			phaseranges[i] = v
		}
	}

	locks := make([]uint, n)
	if hasPhaserange {
		for i := 0; i < n; i++ {
			v, err := r.DecodeU(lockWidth)
			if err != nil {
				return nil, err
			}
			locks[i] = uint(v)
		}
	}

	halfCycles := make([]bool, n)
	if hasPhaserange {
		for i := 0; i < n; i++ {
			v, err := r.DecodeU(lenSigHalfCycleAmbiguity)
			if err != nil {
				return nil, err
			}
			halfCycles[i] = v == 1
		}
	}

	cnrs := make([]uint, n)
	for i := 0; i < n; i++ {
		v, err := r.DecodeU(cnrWidth)
		if err != nil {
			return nil, err
		}
		cnrs[i] = uint(v)
	}

	dopplers := make([]int64, n)
	if hasDoppler {
		for i := 0; i < n; i++ {
			v, err := r.DecodeS(lenSigFineDoppler)
			if err != nil {
				return nil, err
			}
			dopplers[i] = v
		}
	}

	signals := make([]SignalCell, n)
	for i, p := range pairs {
		signals[i] = SignalCell{
			SatelliteID:        header.Satellites[p.satIdx],
			SignalID:           header.Signals[p.sigIdx],
			FinePseudorange:    pseudoranges[i],
			HasPhaserange:      hasPhaserange,
			FinePhaserange:     phaseranges[i],
			LockTimeIndicator:  locks[i],
			HalfCycleAmbiguity: halfCycles[i],
			CNR:                cnrs[i],
			HasDoppler:         hasDoppler,
			FineDoppler:        dopplers[i],
		}
	}

	return &MSMMessage{Header: header, Satellites: satellites, Signals: signals}, nil
}

// Encode packs msg back into a complete MSM1/4/5/7 payload, the mirror
// image of DecodeMSM.
func (msg *MSMMessage) Encode() ([]byte, error) {
	variant := MSMVariant(msg.Header.MessageType)
	extended := variant == 7
	hasRate := variant == 5 || variant == 7
	hasPhaserange := variant != 1
	hasDoppler := variant == 5 || variant == 7

	w, err := msg.Header.Encode()
	if err != nil {
		return nil, err
	}

	for _, s := range msg.Satellites {
		w.EncodeU(uint64(s.RoughRangeMillis), lenSatRoughRangeMillis)
	}
	if hasRate {
		for range msg.Satellites {
			w.EncodeU(0, lenSatExtendedInfo)
		}
		for _, s := range msg.Satellites {
			w.EncodeS(s.RoughRangeRateMPS, lenSatRoughRangeRate)
		}
	}
	for _, s := range msg.Satellites {
		w.EncodeU(uint64(s.RoughRangeFracMillis), lenSatRoughRangeFrac)
	}

	pseudorangeWidth := uint(lenSigFinePseudorange)
	phaserangeWidth := uint(lenSigFinePhaserange)
	lockWidth := uint(lenSigLockTimeIndicator)
	cnrWidth := uint(lenSigCNR)
	if extended {
		pseudorangeWidth = lenSigFinePseudorangeExt
		phaserangeWidth = lenSigFinePhaserangeExt
		lockWidth = lenSigLockTimeIndicatorExt
		cnrWidth = lenSigCNRExt
	}

	for _, s := range msg.Signals {
		w.EncodeS(s.FinePseudorange, pseudorangeWidth)
	}
	if hasPhaserange {
		for _, s := range msg.Signals {
			w.EncodeS(s.FinePhaserange, phaserangeWidth)
		}
		for _, s := range msg.Signals {
			w.EncodeU(uint64(s.LockTimeIndicator), lockWidth)
		}
		for _, s := range msg.Signals {
			w.EncodeU(boolToU(s.HalfCycleAmbiguity), lenSigHalfCycleAmbiguity)
		}
	}
	for _, s := range msg.Signals {
		w.EncodeU(uint64(s.CNR), cnrWidth)
	}
	if hasDoppler {
		for _, s := range msg.Signals {
			w.EncodeS(s.FineDoppler, lenSigFineDoppler)
		}
	}

	w.PadToByte()
	return w.Bytes(), nil
}

func headerBitLength(h *MSMHeader) uint {
	fixed := uint(lenMSMMessageType + lenStationID + lenMSMEpochTime +
		lenMSMMultipleMessageFlag + lenMSMIssueOfDataStation +
		lenMSMSessionTransmitTime + lenMSMClockSteeringInd +
		lenMSMExternalClockInd + lenMSMDivergenceFreeSmooth +
		lenMSMSmoothingInterval + MSMSatelliteMaskSize + MSMSignalMaskSize)
	return fixed + uint(len(h.Satellites)*len(h.Signals))
}
