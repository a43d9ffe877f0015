package sbp

import (
	"encoding/binary"
	"math"
)

// SSROrbitClockMessage is MSG_SSR_ORBIT_CLOCK (0x05DD): a paired
// orbit+clock correction, produced only once rtcm3.PairingCache has
// matched the two source RTCM messages.
type SSROrbitClockMessage struct {
	TOE         GPSTimeSBP
	SatelliteID uint8
	Constellation uint8
	IODE        uint8
	IODSSR      uint8

	RadialM, AlongTrackM, CrossTrackM float64
	DotRadialMPS, DotAlongTrackMPS, DotCrossTrackMPS float64
	C0, C1, C2 float64
}

// Encode packs msg into an SBP MSG_SSR_ORBIT_CLOCK payload.
func (msg *SSROrbitClockMessage) Encode() []byte {
	payload := make([]byte, 0, 64)
	payload = binary.LittleEndian.AppendUint32(payload, msg.TOE.TOWMillis)
	payload = binary.LittleEndian.AppendUint16(payload, msg.TOE.WN)
	payload = append(payload, msg.SatelliteID, msg.Constellation, msg.IODE, msg.IODSSR)
	for _, f := range []float64{msg.RadialM, msg.AlongTrackM, msg.CrossTrackM,
		msg.DotRadialMPS, msg.DotAlongTrackMPS, msg.DotCrossTrackMPS, msg.C0, msg.C1, msg.C2} {
		payload = appendFloat32(payload, float32(f))
	}
	return payload
}

func appendFloat32(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}

// DecodeSSROrbitClockMessage decodes an SBP MSG_SSR_ORBIT_CLOCK payload.
func DecodeSSROrbitClockMessage(payload []byte) (*SSROrbitClockMessage, error) {
	const minLen = 4 + 2 + 4 + 9*4
	if len(payload) < minLen {
		return nil, errShortPayload("MSG_SSR_ORBIT_CLOCK", minLen, len(payload))
	}
	msg := &SSROrbitClockMessage{
		TOE: GPSTimeSBP{
			TOWMillis: binary.LittleEndian.Uint32(payload[0:4]),
			WN:        binary.LittleEndian.Uint16(payload[4:6]),
		},
		SatelliteID:   payload[6],
		Constellation: payload[7],
		IODE:          payload[8],
		IODSSR:        payload[9],
	}
	rest := payload[10:]
	vals := make([]float64, 9)
	for i := range vals {
		vals[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(rest[i*4 : i*4+4])))
	}
	msg.RadialM, msg.AlongTrackM, msg.CrossTrackM = vals[0], vals[1], vals[2]
	msg.DotRadialMPS, msg.DotAlongTrackMPS, msg.DotCrossTrackMPS = vals[3], vals[4], vals[5]
	msg.C0, msg.C1, msg.C2 = vals[6], vals[7], vals[8]
	return msg, nil
}
