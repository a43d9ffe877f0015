package rtcm3

import (
	"fmt"

	"github.com/swift-nav/gnss-converters-go/bitstream"
)

const (
	lenGLOBiasMsgType   = 12
	lenGLOBiasIndicator = 1
	lenGLOBiasReserved  = 3
	lenGLOBiasMask      = 4
	lenGLOBiasValue     = 16
)

// GLONASSCodePhaseBias is message 1230: per-signal code-phase bias
// corrections for GLONASS, consumed by the translator (via biasmap) and
// passed through to the SBP GLONASS bias record.
type GLONASSCodePhaseBias struct {
	StationID uint
	AlignedWithCarrierPhase bool
	L1CABias  int16
	L1PBias   int16
	L2CABias  int16
	L2PBias   int16
}

// DecodeGLONASSCodePhaseBias decodes a message 1230 payload.
func DecodeGLONASSCodePhaseBias(payload []byte) (*GLONASSCodePhaseBias, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenGLOBiasMsgType)
	if err != nil {
		return nil, err
	}
	if int(rawType) != MsgType1230 {
		return nil, fmt.Errorf("rtcm3: expected message 1230, got %d", rawType)
	}

	msg := &GLONASSCodePhaseBias{}

	stationID, err := r.DecodeU(lenStationID)
	if err != nil {
		return nil, err
	}
	msg.StationID = uint(stationID)

	aligned, err := r.DecodeU(lenGLOBiasIndicator)
	if err != nil {
		return nil, err
	}
	msg.AlignedWithCarrierPhase = aligned == 1

	if _, err := r.DecodeU(lenGLOBiasReserved); err != nil {
		return nil, err
	}

	mask, err := r.DecodeU(lenGLOBiasMask)
	if err != nil {
		return nil, err
	}

	biases := [4]*int16{&msg.L1CABias, &msg.L1PBias, &msg.L2CABias, &msg.L2PBias}
	for i := 0; i < 4; i++ {
		if mask&(1<<(3-i)) == 0 {
			continue
		}
		v, err := r.DecodeS(lenGLOBiasValue)
		if err != nil {
			return nil, err
		}
		*biases[i] = int16(v)
	}

	return msg, nil
}

// Encode packs msg back into a message 1230 payload. All four bias fields
// are always signalled present, matching the common case where a receiver
// reports all of them.
func (msg *GLONASSCodePhaseBias) Encode() ([]byte, error) {
	w := bitstream.NewWriter(16)
	w.EncodeU(uint64(MsgType1230), lenGLOBiasMsgType)
	w.EncodeU(uint64(msg.StationID), lenStationID)
	w.EncodeU(boolToU(msg.AlignedWithCarrierPhase), lenGLOBiasIndicator)
	w.EncodeU(0, lenGLOBiasReserved)
	w.EncodeU(0xf, lenGLOBiasMask)
	w.EncodeS(int64(msg.L1CABias), lenGLOBiasValue)
	w.EncodeS(int64(msg.L1PBias), lenGLOBiasValue)
	w.EncodeS(int64(msg.L2CABias), lenGLOBiasValue)
	w.EncodeS(int64(msg.L2PBias), lenGLOBiasValue)
	w.PadToByte()
	return w.Bytes(), nil
}
