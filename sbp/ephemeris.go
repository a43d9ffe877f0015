package sbp

import (
	"encoding/binary"
	"math"
)

// EphemerisCommonContent is the fields common to every constellation's SBP
// ephemeris message, mirrored from libswiftnav's ephemeris_common_content_t.
type EphemerisCommonContent struct {
	SatelliteID uint8
	Code        uint8
	TOE         GPSTimeSBP
	UraM        float32
	FitIntervalSeconds uint32
	ValidityFlags uint8
	HealthBits    uint8
}

const ephCommonLen = 1 + 1 + 6 + 4 + 4 + 1 + 1

func encodeEphCommon(c EphemerisCommonContent) []byte {
	b := make([]byte, 0, ephCommonLen)
	b = append(b, c.SatelliteID, c.Code)
	b = binary.LittleEndian.AppendUint32(b, c.TOE.TOWMillis)
	b = binary.LittleEndian.AppendUint16(b, c.TOE.WN)
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(c.UraM))
	b = binary.LittleEndian.AppendUint32(b, c.FitIntervalSeconds)
	b = append(b, c.ValidityFlags, c.HealthBits)
	return b
}

func decodeEphCommon(b []byte) (EphemerisCommonContent, []byte) {
	c := EphemerisCommonContent{
		SatelliteID: b[0],
		Code:        b[1],
		TOE: GPSTimeSBP{
			TOWMillis: binary.LittleEndian.Uint32(b[2:6]),
			WN:        binary.LittleEndian.Uint16(b[6:8]),
		},
		UraM:               math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
		FitIntervalSeconds: binary.LittleEndian.Uint32(b[12:16]),
		ValidityFlags:      b[16],
		HealthBits:         b[17],
	}
	return c, b[ephCommonLen:]
}

// GPSEphemerisMessage is MSG_EPHEMERIS_GPS (0x008A), translated from RTCM
// message 1019 (rtcm3.GPSEphemeris) with the IS-GPS-200 scale factors
// applied.
type GPSEphemerisMessage struct {
	Common EphemerisCommonContent

	TGD float64
	Crs, Crc float64
	Cuc, Cus float64
	Cic, Cis float64
	DeltaN float64
	M0, Ecc, SqrtA float64
	Omega0, Omega, OmegaDot float64
	I0, IDot float64
	TOC GPSTimeSBP
	AF0, AF1, AF2 float64
	IODE, IODC uint16
}

// Encode packs msg into an SBP MSG_EPHEMERIS_GPS payload.
func (msg *GPSEphemerisMessage) Encode() []byte {
	payload := encodeEphCommon(msg.Common)
	floats := []float64{msg.TGD, msg.Crs, msg.Crc, msg.Cuc, msg.Cus, msg.Cic, msg.Cis,
		msg.DeltaN, msg.M0, msg.Ecc, msg.SqrtA, msg.Omega0, msg.Omega, msg.OmegaDot,
		msg.I0, msg.IDot, msg.AF0, msg.AF1, msg.AF2}
	for _, f := range floats {
		payload = binary.LittleEndian.AppendUint64(payload, math.Float64bits(f))
	}
	payload = binary.LittleEndian.AppendUint32(payload, msg.TOC.TOWMillis)
	payload = binary.LittleEndian.AppendUint16(payload, msg.TOC.WN)
	payload = binary.LittleEndian.AppendUint16(payload, msg.IODE)
	payload = binary.LittleEndian.AppendUint16(payload, msg.IODC)
	return payload
}

// DecodeGPSEphemerisMessage decodes an SBP MSG_EPHEMERIS_GPS payload.
func DecodeGPSEphemerisMessage(payload []byte) (*GPSEphemerisMessage, error) {
	const numFloats = 19
	minLen := ephCommonLen + numFloats*8 + 6 + 4
	if len(payload) < minLen {
		return nil, errShortPayload("MSG_EPHEMERIS_GPS", minLen, len(payload))
	}
	common, rest := decodeEphCommon(payload)
	floats := make([]float64, numFloats)
	for i := range floats {
		floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(rest[i*8 : i*8+8]))
	}
	rest = rest[numFloats*8:]

	msg := &GPSEphemerisMessage{
		Common: common,
		TGD: floats[0], Crs: floats[1], Crc: floats[2], Cuc: floats[3], Cus: floats[4],
		Cic: floats[5], Cis: floats[6], DeltaN: floats[7], M0: floats[8], Ecc: floats[9],
		SqrtA: floats[10], Omega0: floats[11], Omega: floats[12], OmegaDot: floats[13],
		I0: floats[14], IDot: floats[15], AF0: floats[16], AF1: floats[17], AF2: floats[18],
	}
	msg.TOC.TOWMillis = binary.LittleEndian.Uint32(rest[0:4])
	msg.TOC.WN = binary.LittleEndian.Uint16(rest[4:6])
	msg.IODE = binary.LittleEndian.Uint16(rest[6:8])
	msg.IODC = binary.LittleEndian.Uint16(rest[8:10])
	return msg, nil
}

// GenericEphemerisMessage covers the GLONASS/Galileo/BeiDou/QZSS SBP
// ephemeris messages (0x008B/0x008E/0x0089/0x008F), which this translator
// round-trips opaquely beyond the common content - see
// rtcm3.GenericEphemeris's rationale for the same scope decision.
type GenericEphemerisMessage struct {
	MessageType uint16
	Common      EphemerisCommonContent
	Body        []byte
}

// Encode packs msg into its SBP payload.
func (msg *GenericEphemerisMessage) Encode() []byte {
	payload := encodeEphCommon(msg.Common)
	return append(payload, msg.Body...)
}

// DecodeGenericEphemerisMessage decodes the common content of a
// GLONASS/Galileo/BeiDou/QZSS SBP ephemeris payload and preserves the rest
// opaquely.
func DecodeGenericEphemerisMessage(messageType uint16, payload []byte) (*GenericEphemerisMessage, error) {
	if len(payload) < ephCommonLen {
		return nil, errShortPayload("MSG_EPHEMERIS_*", ephCommonLen, len(payload))
	}
	common, rest := decodeEphCommon(payload)
	return &GenericEphemerisMessage{MessageType: messageType, Common: common, Body: rest}, nil
}
