package sbp

import (
	"encoding/binary"
	"math"
)

// BasePosECEFMessage is MSG_BASE_POS_ECEF (0x0044): the reference
// station's ECEF position, translated from RTCM messages 1005/1006.
type BasePosECEFMessage struct {
	X, Y, Z float64 // meters
}

// Encode packs msg into an SBP MSG_BASE_POS_ECEF payload.
func (msg *BasePosECEFMessage) Encode() []byte {
	payload := make([]byte, 24)
	binary.LittleEndian.PutUint64(payload[0:8], math.Float64bits(msg.X))
	binary.LittleEndian.PutUint64(payload[8:16], math.Float64bits(msg.Y))
	binary.LittleEndian.PutUint64(payload[16:24], math.Float64bits(msg.Z))
	return payload
}

// DecodeBasePosECEFMessage decodes an SBP MSG_BASE_POS_ECEF payload.
func DecodeBasePosECEFMessage(payload []byte) (*BasePosECEFMessage, error) {
	if len(payload) < 24 {
		return nil, errShortPayload("MSG_BASE_POS_ECEF", 24, len(payload))
	}
	return &BasePosECEFMessage{
		X: math.Float64frombits(binary.LittleEndian.Uint64(payload[0:8])),
		Y: math.Float64frombits(binary.LittleEndian.Uint64(payload[8:16])),
		Z: math.Float64frombits(binary.LittleEndian.Uint64(payload[16:24])),
	}, nil
}
