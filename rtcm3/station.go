package rtcm3

import (
	"fmt"

	"github.com/swift-nav/gnss-converters-go/bitstream"
)

// Field widths for messages 1005 and 1006.
const (
	lenStationMsgType     = 12
	lenStationID          = 12
	lenITRFYear           = 6
	lenGPSIndicator       = 1
	lenGLOIndicator       = 1
	lenGalileoIndicator   = 1
	lenRefStationInd      = 1
	lenAntennaRefX        = 38
	lenSingleRxOscillator = 1
	lenReserved1          = 1
	lenAntennaRefY        = 38
	lenQuarterCycleInd    = 2
	lenAntennaRefZ        = 38
	lenAntennaHeight      = 16
)

// StationCoordinates is message 1005 or 1006: the ECEF position of a
// reference station's antenna, optionally with its height above the
// marker (1006 only). Coordinates are in units of 0.0001 m, the RTCM
// wire's scaled-integer convention.
type StationCoordinates struct {
	StationID        uint
	ITRFRealYear     uint
	GPSIndicator     bool
	GLONASSIndicator bool
	GalileoIndicator bool
	RefStationIndicator bool
	AntennaRefX      int64
	SingleRxOscillator bool
	AntennaRefY      int64
	QuarterCycleIndicator uint
	AntennaRefZ      int64

	// HasHeight is true for message 1006, false for message 1005.
	HasHeight     bool
	AntennaHeight uint
}

// DecodeStationCoordinates decodes a message 1005 or 1006 payload (message
// number included, leader/CRC already stripped).
func DecodeStationCoordinates(payload []byte) (*StationCoordinates, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenStationMsgType)
	if err != nil {
		return nil, err
	}
	messageType := int(rawType)
	if messageType != MsgType1005 && messageType != MsgType1006 {
		return nil, fmt.Errorf("rtcm3: expected message 1005 or 1006, got %d", messageType)
	}

	msg := &StationCoordinates{HasHeight: messageType == MsgType1006}

	stationID, err := r.DecodeU(lenStationID)
	if err != nil {
		return nil, err
	}
	msg.StationID = uint(stationID)

	itrf, err := r.DecodeU(lenITRFYear)
	if err != nil {
		return nil, err
	}
	msg.ITRFRealYear = uint(itrf)

	gps, _ := r.DecodeU(lenGPSIndicator)
	msg.GPSIndicator = gps != 0
	glo, _ := r.DecodeU(lenGLOIndicator)
	msg.GLONASSIndicator = glo != 0
	gal, _ := r.DecodeU(lenGalileoIndicator)
	msg.GalileoIndicator = gal != 0
	refInd, _ := r.DecodeU(lenRefStationInd)
	msg.RefStationIndicator = refInd != 0

	x, err := r.DecodeS(lenAntennaRefX)
	if err != nil {
		return nil, err
	}
	msg.AntennaRefX = x

	singleRx, _ := r.DecodeU(lenSingleRxOscillator)
	msg.SingleRxOscillator = singleRx != 0
	_, _ = r.DecodeU(lenReserved1)

	y, err := r.DecodeS(lenAntennaRefY)
	if err != nil {
		return nil, err
	}
	msg.AntennaRefY = y

	quarter, _ := r.DecodeU(lenQuarterCycleInd)
	msg.QuarterCycleIndicator = uint(quarter)

	z, err := r.DecodeS(lenAntennaRefZ)
	if err != nil {
		return nil, err
	}
	msg.AntennaRefZ = z

	if msg.HasHeight {
		h, err := r.DecodeU(lenAntennaHeight)
		if err != nil {
			return nil, err
		}
		msg.AntennaHeight = uint(h)
	}

	return msg, nil
}

// Encode packs msg back into a message 1005 (HasHeight false) or 1006
// (HasHeight true) payload, the mirror image of DecodeStationCoordinates.
func (msg *StationCoordinates) Encode() ([]byte, error) {
	messageType := MsgType1005
	if msg.HasHeight {
		messageType = MsgType1006
	}

	w := bitstream.NewWriter(20)
	w.EncodeU(uint64(messageType), lenStationMsgType)
	w.EncodeU(uint64(msg.StationID), lenStationID)
	w.EncodeU(uint64(msg.ITRFRealYear), lenITRFYear)
	w.EncodeU(boolToU(msg.GPSIndicator), lenGPSIndicator)
	w.EncodeU(boolToU(msg.GLONASSIndicator), lenGLOIndicator)
	w.EncodeU(boolToU(msg.GalileoIndicator), lenGalileoIndicator)
	w.EncodeU(boolToU(msg.RefStationIndicator), lenRefStationInd)
	w.EncodeS(msg.AntennaRefX, lenAntennaRefX)
	w.EncodeU(boolToU(msg.SingleRxOscillator), lenSingleRxOscillator)
	w.EncodeU(0, lenReserved1)
	w.EncodeS(msg.AntennaRefY, lenAntennaRefY)
	w.EncodeU(uint64(msg.QuarterCycleIndicator), lenQuarterCycleInd)
	w.EncodeS(msg.AntennaRefZ, lenAntennaRefZ)
	if msg.HasHeight {
		w.EncodeU(uint64(msg.AntennaHeight), lenAntennaHeight)
	}
	w.PadToByte()
	return w.Bytes(), nil
}

func boolToU(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
