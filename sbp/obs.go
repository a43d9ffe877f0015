package sbp

import (
	"encoding/binary"
	"fmt"
)

// GPSTimeSBP is SBP's (week number, time-of-week) pair, scaled to
// milliseconds, as produced by timeresolve.
type GPSTimeSBP struct {
	TOWMillis uint32
	WN        uint16
}

// SignalID identifies a (satellite, code) pair in SBP's flat signal
// numbering, distinct from RTCM's per-constellation satellite/signal
// masks - part of the translation this package exists to perform.
type SignalID struct {
	SatelliteID uint8
	Code        uint8
}

// ObservationSBP is one signal's pseudorange/carrier-phase/doppler/CN0
// observation, the SBP-side counterpart of an rtcm3.SignalCell.
type ObservationSBP struct {
	Signal      SignalID
	Pseudorange uint32 // 2 cm units, per SBP's packed_obs_content_t.
	CarrierPhase int64  // Q32.8 cycles.
	Doppler     int32  // Q16.16 Hz.
	CN0         uint8  // 0.25 dB-Hz units.
	LockTime    uint8
	Flags       uint8
}

const obsContentLen = 4 + 5 + 4 + 1 + 1 + 1 + 2 // pseudorange + carrier phase + doppler + cn0 + lock + flags + signal ID

// ObservationsMessage is MSG_OBS (0x004A): a GPS-time-stamped batch of
// observations, capped at MAX_OBS_PER_EPOCH (obsassembler enforces the
// cap; this type just carries whatever it's given).
type ObservationsMessage struct {
	Header    GPSTimeSBP
	NumSeq    uint8 // top nibble = total number of messages in this sequence, bottom nibble = this message's index.
	Observations []ObservationSBP
}

// Encode packs msg into an SBP MSG_OBS payload.
func (msg *ObservationsMessage) Encode() []byte {
	payload := make([]byte, 0, 7+len(msg.Observations)*obsContentLen)
	payload = binary.LittleEndian.AppendUint32(payload, msg.Header.TOWMillis)
	payload = binary.LittleEndian.AppendUint16(payload, msg.Header.WN)
	payload = append(payload, msg.NumSeq)
	for _, o := range msg.Observations {
		payload = binary.LittleEndian.AppendUint32(payload, o.Pseudorange)
		carrierBytes := make([]byte, 5)
		carrierBytes[0] = byte(o.CarrierPhase)
		binary.LittleEndian.PutUint32(carrierBytes[1:], uint32(o.CarrierPhase>>8))
		payload = append(payload, carrierBytes...)
		payload = binary.LittleEndian.AppendUint32(payload, uint32(o.Doppler))
		payload = append(payload, o.CN0, o.LockTime, o.Flags, o.Signal.SatelliteID, o.Signal.Code)
	}
	return payload
}

// DecodeObservationsMessage decodes an SBP MSG_OBS payload.
func DecodeObservationsMessage(payload []byte) (*ObservationsMessage, error) {
	if len(payload) < 7 {
		return nil, errShortPayload("MSG_OBS", 7, len(payload))
	}
	msg := &ObservationsMessage{
		Header: GPSTimeSBP{
			TOWMillis: binary.LittleEndian.Uint32(payload[0:4]),
			WN:        binary.LittleEndian.Uint16(payload[4:6]),
		},
		NumSeq: payload[6],
	}

	rest := payload[7:]
	for len(rest) >= obsContentLen {
		var o ObservationSBP
		o.Pseudorange = binary.LittleEndian.Uint32(rest[0:4])
		carrier := int64(rest[4]) | int64(binary.LittleEndian.Uint32(rest[5:9]))<<8
		o.CarrierPhase = carrier
		o.Doppler = int32(binary.LittleEndian.Uint32(rest[9:13]))
		o.CN0 = rest[13]
		o.LockTime = rest[14]
		o.Flags = rest[15]
		o.Signal.SatelliteID = rest[16]
		o.Signal.Code = rest[17]
		msg.Observations = append(msg.Observations, o)
		rest = rest[obsContentLen:]
	}
	return msg, nil
}

func errShortPayload(messageName string, want, got int) error {
	return fmt.Errorf("%s: payload too short, want at least %d bytes, got %d", messageName, want, got)
}
