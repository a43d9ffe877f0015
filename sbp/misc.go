package sbp

import "encoding/binary"

// GLOBiasesMessage is MSG_GLO_BIASES (0x05D8), the SBP counterpart of
// rtcm3.GLONASSCodePhaseBias.
type GLOBiasesMessage struct {
	Mask uint8
	L1CABiasM, L1PBiasM, L2CABiasM, L2PBiasM float64
}

// Encode packs msg into an SBP MSG_GLO_BIASES payload.
func (msg *GLOBiasesMessage) Encode() []byte {
	payload := make([]byte, 1, 1+4*2)
	payload[0] = msg.Mask
	for _, v := range []float64{msg.L1CABiasM, msg.L1PBiasM, msg.L2CABiasM, msg.L2PBiasM} {
		payload = binary.LittleEndian.AppendUint16(payload, uint16(int16(v*100)))
	}
	return payload
}

// DecodeGLOBiasesMessage decodes an SBP MSG_GLO_BIASES payload.
func DecodeGLOBiasesMessage(payload []byte) (*GLOBiasesMessage, error) {
	if len(payload) < 9 {
		return nil, errShortPayload("MSG_GLO_BIASES", 9, len(payload))
	}
	msg := &GLOBiasesMessage{Mask: payload[0]}
	vals := []*float64{&msg.L1CABiasM, &msg.L1PBiasM, &msg.L2CABiasM, &msg.L2PBiasM}
	for i, v := range vals {
		raw := int16(binary.LittleEndian.Uint16(payload[1+i*2 : 3+i*2]))
		*v = float64(raw) / 100
	}
	return msg, nil
}

// SVConfigGLOMessage is MSG_SV_CONFIGURATION_GLO (0x0064): per-satellite
// GLONASS frequency channel numbers, carrying the SBP-convention FCN
// (1-14, 0 = unknown) that rtcm3's GLO_FCN_OFFSET conversion produces.
type SVConfigGLOMessage struct {
	SatelliteID uint8
	FCN         uint8
}

// Encode packs msg into an SBP MSG_SV_CONFIGURATION_GLO payload.
func (msg *SVConfigGLOMessage) Encode() []byte {
	return []byte{msg.SatelliteID, msg.FCN}
}

// DecodeSVConfigGLOMessage decodes an SBP MSG_SV_CONFIGURATION_GLO payload.
func DecodeSVConfigGLOMessage(payload []byte) (*SVConfigGLOMessage, error) {
	if len(payload) < 2 {
		return nil, errShortPayload("MSG_SV_CONFIGURATION_GLO", 2, len(payload))
	}
	return &SVConfigGLOMessage{SatelliteID: payload[0], FCN: payload[1]}, nil
}
