package rtcm3

import (
	"fmt"

	"github.com/swift-nav/gnss-converters-go/bitstream"
)

const (
	lenProprietaryMsgType = 12
	lenProprietarySubtype = 8
	sgtsvSubtype          = 1 // STGSV subtype value, per constants.h's RTCM_STGSV_* fieldmasks.
)

// SwiftProprietary is message 999: a Swift Navigation proprietary message
// identified by an 8-bit subtype. Only the STGSV ("satellite GSV", sky
// visibility) subtype is decoded field-by-field, using librtcm's
// RTCM_STGSV_* fieldmask constants; every other subtype is preserved as
// an opaque byte body.
type SwiftProprietary struct {
	Subtype uint
	STGSV   *STGSVBody // non-nil only if Subtype == sgtsvSubtype
	RawBody []byte     // populated for every subtype, including STGSV
}

// STGSVBody is the decoded payload of a 999/STGSV message: per-satellite
// sky visibility and signal-to-noise fields.
type STGSVBody struct {
	NumSatellites uint
	SatelliteID   []uint
	Elevation     []int8  // degrees, -90..90
	Azimuth       []uint16 // degrees, 0..359
	CNR           []uint8
}

// DecodeSwiftProprietary decodes a message 999 payload.
func DecodeSwiftProprietary(payload []byte) (*SwiftProprietary, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenProprietaryMsgType)
	if err != nil {
		return nil, err
	}
	if int(rawType) != MsgTypeSwiftProprietary {
		return nil, fmt.Errorf("rtcm3: expected message 999, got %d", rawType)
	}

	subtype, err := r.DecodeU(lenProprietarySubtype)
	if err != nil {
		return nil, err
	}

	msg := &SwiftProprietary{Subtype: uint(subtype)}

	bodyStart := r.Pos()
	bodyBits := uint(len(payload)*8) - bodyStart
	body := make([]byte, (bodyBits+7)/8)
	for i := uint(0); i < bodyBits; i++ {
		bit, err := r.DecodeU(1)
		if err != nil {
			break
		}
		if bit == 1 {
			body[i/8] |= 1 << (7 - i%8)
		}
	}
	msg.RawBody = body

	if msg.Subtype == sgtsvSubtype {
		stgsv, err := decodeSTGSVBody(body)
		if err == nil {
			msg.STGSV = stgsv
		}
	}

	return msg, nil
}

func decodeSTGSVBody(body []byte) (*STGSVBody, error) {
	r := bitstream.NewReader(body)
	count, err := r.DecodeU(8)
	if err != nil {
		return nil, err
	}
	b := &STGSVBody{NumSatellites: uint(count)}
	for i := uint(0); i < uint(count); i++ {
		id, err := r.DecodeU(8)
		if err != nil {
			return nil, err
		}
		elev, err := r.DecodeS(8)
		if err != nil {
			return nil, err
		}
		az, err := r.DecodeU(9)
		if err != nil {
			return nil, err
		}
		cnr, err := r.DecodeU(8)
		if err != nil {
			return nil, err
		}
		b.SatelliteID = append(b.SatelliteID, uint(id))
		b.Elevation = append(b.Elevation, int8(elev))
		b.Azimuth = append(b.Azimuth, uint16(az))
		b.CNR = append(b.CNR, uint8(cnr))
	}
	return b, nil
}

func encodeSTGSVBody(b *STGSVBody) []byte {
	w := bitstream.NewWriter(4 + len(b.SatelliteID)*4)
	w.EncodeU(uint64(len(b.SatelliteID)), 8)
	for i := range b.SatelliteID {
		w.EncodeU(uint64(b.SatelliteID[i]), 8)
		w.EncodeS(int64(b.Elevation[i]), 8)
		w.EncodeU(uint64(b.Azimuth[i]), 9)
		w.EncodeU(uint64(b.CNR[i]), 8)
	}
	w.PadToByte()
	return w.Bytes()
}

// Encode packs msg back into a message 999 payload. If msg.STGSV is set it
// takes precedence over RawBody, so callers that build a message
// programmatically don't need to hand-pack the body themselves.
func (msg *SwiftProprietary) Encode() ([]byte, error) {
	body := msg.RawBody
	if msg.STGSV != nil {
		body = encodeSTGSVBody(msg.STGSV)
	}
	w := bitstream.NewWriter(len(body) + 4)
	w.EncodeU(uint64(MsgTypeSwiftProprietary), lenProprietaryMsgType)
	w.EncodeU(uint64(msg.Subtype), lenProprietarySubtype)
	for i := 0; i < len(body)*8; i++ {
		bit := (body[i/8] >> (7 - uint(i)%8)) & 1
		w.EncodeU(uint64(bit), 1)
	}
	w.PadToByte()
	return w.Bytes(), nil
}

// SBPWrapper is message 4062: an entire SBP frame carried inside an RTCM3
// envelope, used by some NTRIP casters to multiplex SBP alongside RTCM3 on
// a single stream.
type SBPWrapper struct {
	SBPFrame []byte
}

// DecodeSBPWrapper decodes a message 4062 payload: the 12-bit message type
// and 4 padding bits fill the first two bytes, and everything after them is
// the embedded SBP frame verbatim.
func DecodeSBPWrapper(payload []byte) (*SBPWrapper, error) {
	r := bitstream.NewReader(payload)
	rawType, err := r.DecodeU(lenProprietaryMsgType)
	if err != nil {
		return nil, err
	}
	if int(rawType) != MsgTypeSwiftSBPWrapper {
		return nil, fmt.Errorf("rtcm3: expected message 4062, got %d", rawType)
	}
	return &SBPWrapper{SBPFrame: payload[2:]}, nil
}

// Encode packs msg back into a message 4062 payload.
func (msg *SBPWrapper) Encode() ([]byte, error) {
	w := bitstream.NewWriter(len(msg.SBPFrame) + 2)
	w.EncodeU(uint64(MsgTypeSwiftSBPWrapper), lenProprietaryMsgType)
	w.PadToByte()
	return append(w.Bytes(), msg.SBPFrame...), nil
}

// NavDataFrame is message 4075: a raw, constellation-specific navigation
// data subframe passed through opaquely, part of librtcm's
// SWIFT_PROPRIETARY_MSG family.
type NavDataFrame struct {
	Constellation Constellation
	SatelliteID   uint
	Data          []byte
}

// DecodeNavDataFrame decodes a message 4075 payload.
func DecodeNavDataFrame(payload []byte) (*NavDataFrame, error) {
	r := bitstream.NewReader(payload)
	rawType, err := r.DecodeU(lenProprietaryMsgType)
	if err != nil {
		return nil, err
	}
	if int(rawType) != MsgTypeNavDataFrame {
		return nil, fmt.Errorf("rtcm3: expected message 4075, got %d", rawType)
	}
	constellation, err := r.DecodeU(4)
	if err != nil {
		return nil, err
	}
	satID, err := r.DecodeU(8)
	if err != nil {
		return nil, err
	}
	return &NavDataFrame{
		Constellation: Constellation(constellation),
		SatelliteID:   uint(satID),
		Data:          payload[3:],
	}, nil
}

// Encode packs msg back into a message 4075 payload.
func (msg *NavDataFrame) Encode() ([]byte, error) {
	w := bitstream.NewWriter(4)
	w.EncodeU(uint64(MsgTypeNavDataFrame), lenProprietaryMsgType)
	w.EncodeU(uint64(msg.Constellation), 4)
	w.EncodeU(uint64(msg.SatelliteID), 8)
	w.PadToByte()
	return append(w.Bytes(), msg.Data...), nil
}
