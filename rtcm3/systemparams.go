package rtcm3

import (
	"fmt"

	"github.com/swift-nav/gnss-converters-go/bitstream"
)

const (
	lenSysParamMsgType  = 12
	lenMessageIndicator = 16
	lenUTCReserved      = 8
	lenDeltaLeapSeconds = 8
)

// SystemParameters is message 1013: the broadcast list of message types
// the reference station sends plus the current leap second count, which
// timeresolve uses as one of its GPS-time-to-UTC-offset sources.
type SystemParameters struct {
	StationID       uint
	MJD             uint
	SecondOfDay     uint
	LeapSeconds     uint
	MessageCount    uint
	MessageIDs      []uint
	SyncFlags       []bool
	TransmitIntervals []uint
}

// DecodeSystemParameters decodes a message 1013 payload.
func DecodeSystemParameters(payload []byte) (*SystemParameters, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenSysParamMsgType)
	if err != nil {
		return nil, err
	}
	if int(rawType) != MsgType1013 {
		return nil, fmt.Errorf("rtcm3: expected message 1013, got %d", rawType)
	}

	msg := &SystemParameters{}

	stationID, err := r.DecodeU(lenStationID)
	if err != nil {
		return nil, err
	}
	msg.StationID = uint(stationID)

	mjd, err := r.DecodeU(16)
	if err != nil {
		return nil, err
	}
	msg.MJD = uint(mjd)

	sod, err := r.DecodeU(17)
	if err != nil {
		return nil, err
	}
	msg.SecondOfDay = uint(sod)

	count, err := r.DecodeU(5)
	if err != nil {
		return nil, err
	}
	msg.MessageCount = uint(count)

	leap, err := r.DecodeU(lenDeltaLeapSeconds)
	if err != nil {
		return nil, err
	}
	msg.LeapSeconds = uint(leap)

	for i := uint(0); i < msg.MessageCount; i++ {
		id, err := r.DecodeU(lenMessageIndicator)
		if err != nil {
			return nil, err
		}
		sync, err := r.DecodeU(1)
		if err != nil {
			return nil, err
		}
		interval, err := r.DecodeU(16)
		if err != nil {
			return nil, err
		}
		msg.MessageIDs = append(msg.MessageIDs, uint(id))
		msg.SyncFlags = append(msg.SyncFlags, sync == 1)
		msg.TransmitIntervals = append(msg.TransmitIntervals, uint(interval))
	}

	return msg, nil
}

// Encode packs msg back into a message 1013 payload.
func (msg *SystemParameters) Encode() ([]byte, error) {
	w := bitstream.NewWriter(16)
	w.EncodeU(uint64(MsgType1013), lenSysParamMsgType)
	w.EncodeU(uint64(msg.StationID), lenStationID)
	w.EncodeU(uint64(msg.MJD), 16)
	w.EncodeU(uint64(msg.SecondOfDay), 17)
	w.EncodeU(uint64(len(msg.MessageIDs)), 5)
	w.EncodeU(uint64(msg.LeapSeconds), lenDeltaLeapSeconds)
	for i := range msg.MessageIDs {
		w.EncodeU(uint64(msg.MessageIDs[i]), lenMessageIndicator)
		w.EncodeU(boolToU(msg.SyncFlags[i]), 1)
		w.EncodeU(uint64(msg.TransmitIntervals[i]), 16)
	}
	w.PadToByte()
	return w.Bytes(), nil
}
