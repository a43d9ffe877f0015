package rtcm3

import (
	"fmt"

	"github.com/swift-nav/gnss-converters-go/bitstream"
)

// Field widths for the MSM header.
const (
	lenMSMMessageType          = 12
	lenMSMEpochTime            = 30
	lenMSMMultipleMessageFlag  = 1
	lenMSMIssueOfDataStation   = 3
	lenMSMSessionTransmitTime  = 7
	lenMSMClockSteeringInd     = 2
	lenMSMExternalClockInd     = 2
	lenMSMDivergenceFreeSmooth = 1
	lenMSMSmoothingInterval    = 3
)

// MSMHeader is the fixed-plus-variable-length header common to every MSM1-7
// message, grounded on rtcm/header.Header. The satellite, signal and cell
// masks are exposed both as raw bit masks and as derived ID/bool slices,
// since downstream decoders need the counts to know how many
// satellite/signal cells follow.
type MSMHeader struct {
	MessageType             int
	Constellation           Constellation
	StationID               uint
	EpochTimeMS              uint
	MultipleMessage         bool
	IssueOfDataStation       uint
	SessionTransmissionTime  uint
	ClockSteeringIndicator   uint
	ExternalClockIndicator   uint
	DivergenceFreeSmoothing  bool
	SmoothingInterval        uint

	SatelliteMask uint64
	SignalMask    uint32
	CellMask      uint64

	Satellites []uint
	Signals    []uint
	Cells      [][]bool
}

// DecodeMSMHeader extracts the header from the start of an MSM1-7 payload
// and returns it along with the bit offset of the first satellite cell.
func DecodeMSMHeader(payload []byte) (*MSMHeader, uint, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenMSMMessageType)
	if err != nil {
		return nil, 0, err
	}
	messageType := int(rawType)
	if MSMVariant(messageType) == 0 {
		return nil, 0, fmt.Errorf("rtcm3: message %d is not an MSM", messageType)
	}

	h := &MSMHeader{
		MessageType:   messageType,
		Constellation: MSMConstellation(messageType),
	}

	stationID, err := r.DecodeU(lenStationID)
	if err != nil {
		return nil, 0, err
	}
	h.StationID = uint(stationID)

	epoch, err := r.DecodeU(lenMSMEpochTime)
	if err != nil {
		return nil, 0, err
	}
	h.EpochTimeMS = uint(epoch)

	mm, err := r.DecodeU(lenMSMMultipleMessageFlag)
	if err != nil {
		return nil, 0, err
	}
	h.MultipleMessage = mm == 1

	iod, err := r.DecodeU(lenMSMIssueOfDataStation)
	if err != nil {
		return nil, 0, err
	}
	h.IssueOfDataStation = uint(iod)

	sessTime, err := r.DecodeU(lenMSMSessionTransmitTime)
	if err != nil {
		return nil, 0, err
	}
	h.SessionTransmissionTime = uint(sessTime)

	clkSteer, err := r.DecodeU(lenMSMClockSteeringInd)
	if err != nil {
		return nil, 0, err
	}
	h.ClockSteeringIndicator = uint(clkSteer)

	extClk, err := r.DecodeU(lenMSMExternalClockInd)
	if err != nil {
		return nil, 0, err
	}
	h.ExternalClockIndicator = uint(extClk)

	divFree, err := r.DecodeU(lenMSMDivergenceFreeSmooth)
	if err != nil {
		return nil, 0, err
	}
	h.DivergenceFreeSmoothing = divFree == 1

	smoothInt, err := r.DecodeU(lenMSMSmoothingInterval)
	if err != nil {
		return nil, 0, err
	}
	h.SmoothingInterval = uint(smoothInt)

	satMask, err := r.DecodeU(MSMSatelliteMaskSize)
	if err != nil {
		return nil, 0, err
	}
	h.SatelliteMask = satMask
	h.Satellites = bitsToIDs(satMask, MSMSatelliteMaskSize)

	sigMask, err := r.DecodeU(MSMSignalMaskSize)
	if err != nil {
		return nil, 0, err
	}
	h.SignalMask = uint32(sigMask)
	h.Signals = bitsToIDs(sigMask, MSMSignalMaskSize)

	cellBits := uint(len(h.Satellites) * len(h.Signals))
	if cellBits > MSMMaxCells {
		return nil, 0, fmt.Errorf("rtcm3: MSM cell mask is %d bits, expected <= %d", cellBits, MSMMaxCells)
	}

	cellMask, err := r.DecodeU(cellBits)
	if err != nil {
		return nil, 0, err
	}
	h.CellMask = cellMask
	h.Cells = maskToCells(cellMask, len(h.Satellites), len(h.Signals))

	return h, r.Pos(), nil
}

// Encode packs h back into the fixed-plus-variable-length MSM header bytes,
// the mirror image of DecodeMSMHeader. The caller appends satellite/signal
// cell bits afterward.
func (h *MSMHeader) Encode() (*bitstream.Writer, error) {
	w := bitstream.NewWriter(20)
	w.EncodeU(uint64(h.MessageType), lenMSMMessageType)
	w.EncodeU(uint64(h.StationID), lenStationID)
	w.EncodeU(uint64(h.EpochTimeMS), lenMSMEpochTime)
	w.EncodeU(boolToU(h.MultipleMessage), lenMSMMultipleMessageFlag)
	w.EncodeU(uint64(h.IssueOfDataStation), lenMSMIssueOfDataStation)
	w.EncodeU(uint64(h.SessionTransmissionTime), lenMSMSessionTransmitTime)
	w.EncodeU(uint64(h.ClockSteeringIndicator), lenMSMClockSteeringInd)
	w.EncodeU(uint64(h.ExternalClockIndicator), lenMSMExternalClockInd)
	w.EncodeU(boolToU(h.DivergenceFreeSmoothing), lenMSMDivergenceFreeSmooth)
	w.EncodeU(uint64(h.SmoothingInterval), lenMSMSmoothingInterval)
	w.EncodeU(h.SatelliteMask, MSMSatelliteMaskSize)
	w.EncodeU(uint64(h.SignalMask), MSMSignalMaskSize)

	cellBits := uint(len(h.Satellites) * len(h.Signals))
	w.EncodeU(h.CellMask, cellBits)
	return w, nil
}

// bitsToIDs converts a mask (MSB = ID 1) of the given width into a sorted
// slice of the set IDs, mirroring rtcm/header.getSatellites/getSignals.
func bitsToIDs(mask uint64, width int) []uint {
	ids := make([]uint, 0)
	for n := 1; n <= width; n++ {
		bitPos := width - n
		if (mask>>uint(bitPos))&1 == 1 {
			ids = append(ids, uint(n))
		}
	}
	return ids
}

// maskToCells expands a cell mask into a numSatellites x numSignals grid,
// mirroring rtcm/header.getCells.
func maskToCells(mask uint64, numSatellites, numSignals int) [][]bool {
	total := numSatellites * numSignals
	cellNum := 0
	cells := make([][]bool, 0, numSatellites)
	for i := 0; i < numSatellites; i++ {
		row := make([]bool, 0, numSignals)
		for j := 0; j < numSignals; j++ {
			cellNum++
			bitPos := total - cellNum
			row = append(row, (mask>>uint(bitPos))&1 == 1)
		}
		cells = append(cells, row)
	}
	return cells
}

// cellsToMask is the inverse of maskToCells.
func cellsToMask(cells [][]bool) uint64 {
	total := 0
	for _, row := range cells {
		total += len(row)
	}
	var mask uint64
	cellNum := 0
	for _, row := range cells {
		for _, v := range row {
			cellNum++
			if v {
				mask |= 1 << uint(total-cellNum)
			}
		}
	}
	return mask
}
