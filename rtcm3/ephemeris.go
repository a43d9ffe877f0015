package rtcm3

import (
	"fmt"

	"github.com/swift-nav/gnss-converters-go/bitstream"
)

// GPSEphemeris is message 1019, field widths grounded on librtcm's
// rtcm_msg_eph layout (itself RTKLIB's decode_type1019). Scaling is left
// to the caller - SBP encoding applies the IS-GPS-200 scale factors.
type GPSEphemeris struct {
	SatelliteID      uint
	WeekNumber       uint
	SVAccuracy       uint
	CodeOnL2         uint
	IDOT             int64
	IODE             uint
	TOC              uint
	AF2              int64
	AF1              int64
	AF0              int64
	IODC             uint
	Crs              int64
	DeltaN           int64
	M0               int64
	Cuc              int64
	Eccentricity     uint64
	Cus              int64
	SqrtA            uint64
	TOE              uint
	Cic              int64
	Omega0           int64
	Cis              int64
	I0               int64
	Crc              int64
	Omega            int64
	OmegaDot         int64
	TGD              int64
	SVHealth         uint
	L2PDataFlag      bool
	FitInterval      bool
}

var gpsEphemerisFieldWidths = []struct {
	name  string
	width uint
	signed bool
}{
	{"SatelliteID", 6, false},
	{"WeekNumber", 10, false},
	{"SVAccuracy", 4, false},
	{"CodeOnL2", 2, false},
	{"IDOT", 14, true},
	{"IODE", 8, false},
	{"TOC", 16, false},
	{"AF2", 8, true},
	{"AF1", 16, true},
	{"AF0", 22, true},
	{"IODC", 10, false},
	{"Crs", 16, true},
	{"DeltaN", 16, true},
	{"M0", 32, true},
	{"Cuc", 16, true},
	{"Eccentricity", 32, false},
	{"Cus", 16, true},
	{"SqrtA", 32, false},
	{"TOE", 16, false},
	{"Cic", 16, true},
	{"Omega0", 32, true},
	{"Cis", 16, true},
	{"I0", 32, true},
	{"Crc", 16, true},
	{"Omega", 32, true},
	{"OmegaDot", 24, true},
	{"TGD", 8, true},
	{"SVHealth", 6, false},
	{"L2PDataFlag", 1, false},
	{"FitInterval", 1, false},
}

// DecodeGPSEphemeris decodes a message 1019 payload.
func DecodeGPSEphemeris(payload []byte) (*GPSEphemeris, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenLegacyMsgType)
	if err != nil {
		return nil, err
	}
	if int(rawType) != MsgType1019 {
		return nil, fmt.Errorf("rtcm3: expected message 1019, got %d", rawType)
	}

	msg := &GPSEphemeris{}
	for _, f := range gpsEphemerisFieldWidths {
		if f.signed {
			v, err := r.DecodeS(f.width)
			if err != nil {
				return nil, err
			}
			setGPSEphemerisSigned(msg, f.name, v)
		} else {
			v, err := r.DecodeU(f.width)
			if err != nil {
				return nil, err
			}
			setGPSEphemerisUnsigned(msg, f.name, v)
		}
	}
	return msg, nil
}

func setGPSEphemerisSigned(msg *GPSEphemeris, name string, v int64) {
	switch name {
	case "IDOT":
		msg.IDOT = v
	case "AF2":
		msg.AF2 = v
	case "AF1":
		msg.AF1 = v
	case "AF0":
		msg.AF0 = v
	case "Crs":
		msg.Crs = v
	case "DeltaN":
		msg.DeltaN = v
	case "M0":
		msg.M0 = v
	case "Cuc":
		msg.Cuc = v
	case "Cus":
		msg.Cus = v
	case "Cic":
		msg.Cic = v
	case "Omega0":
		msg.Omega0 = v
	case "Cis":
		msg.Cis = v
	case "I0":
		msg.I0 = v
	case "Crc":
		msg.Crc = v
	case "Omega":
		msg.Omega = v
	case "OmegaDot":
		msg.OmegaDot = v
	case "TGD":
		msg.TGD = v
	}
}

func setGPSEphemerisUnsigned(msg *GPSEphemeris, name string, v uint64) {
	switch name {
	case "SatelliteID":
		msg.SatelliteID = uint(v)
	case "WeekNumber":
		msg.WeekNumber = uint(v)
	case "SVAccuracy":
		msg.SVAccuracy = uint(v)
	case "CodeOnL2":
		msg.CodeOnL2 = uint(v)
	case "IODE":
		msg.IODE = uint(v)
	case "TOC":
		msg.TOC = uint(v)
	case "IODC":
		msg.IODC = uint(v)
	case "Eccentricity":
		msg.Eccentricity = v
	case "SqrtA":
		msg.SqrtA = v
	case "TOE":
		msg.TOE = uint(v)
	case "SVHealth":
		msg.SVHealth = uint(v)
	case "L2PDataFlag":
		msg.L2PDataFlag = v == 1
	case "FitInterval":
		msg.FitInterval = v == 1
	}
}

func getGPSEphemerisUnsigned(msg *GPSEphemeris, name string) uint64 {
	switch name {
	case "SatelliteID":
		return uint64(msg.SatelliteID)
	case "WeekNumber":
		return uint64(msg.WeekNumber)
	case "SVAccuracy":
		return uint64(msg.SVAccuracy)
	case "CodeOnL2":
		return uint64(msg.CodeOnL2)
	case "IODE":
		return uint64(msg.IODE)
	case "TOC":
		return uint64(msg.TOC)
	case "IODC":
		return uint64(msg.IODC)
	case "Eccentricity":
		return msg.Eccentricity
	case "SqrtA":
		return msg.SqrtA
	case "TOE":
		return uint64(msg.TOE)
	case "SVHealth":
		return uint64(msg.SVHealth)
	case "L2PDataFlag":
		return boolToU(msg.L2PDataFlag)
	case "FitInterval":
		return boolToU(msg.FitInterval)
	}
	return 0
}

func getGPSEphemerisSigned(msg *GPSEphemeris, name string) int64 {
	switch name {
	case "IDOT":
		return msg.IDOT
	case "AF2":
		return msg.AF2
	case "AF1":
		return msg.AF1
	case "AF0":
		return msg.AF0
	case "Crs":
		return msg.Crs
	case "DeltaN":
		return msg.DeltaN
	case "M0":
		return msg.M0
	case "Cuc":
		return msg.Cuc
	case "Cus":
		return msg.Cus
	case "Cic":
		return msg.Cic
	case "Omega0":
		return msg.Omega0
	case "Cis":
		return msg.Cis
	case "I0":
		return msg.I0
	case "Crc":
		return msg.Crc
	case "Omega":
		return msg.Omega
	case "OmegaDot":
		return msg.OmegaDot
	case "TGD":
		return msg.TGD
	}
	return 0
}

// Encode packs msg back into a message 1019 payload.
func (msg *GPSEphemeris) Encode() ([]byte, error) {
	w := bitstream.NewWriter(62)
	w.EncodeU(uint64(MsgType1019), lenLegacyMsgType)
	for _, f := range gpsEphemerisFieldWidths {
		if f.signed {
			w.EncodeS(getGPSEphemerisSigned(msg, f.name), f.width)
		} else {
			w.EncodeU(getGPSEphemerisUnsigned(msg, f.name), f.width)
		}
	}
	w.PadToByte()
	return w.Bytes(), nil
}

// GenericEphemeris covers the GLONASS (1020), BeiDou (1042), QZSS (1044)
// and Galileo (1045/1046) ephemeris messages. These constellations' wire
// layouts differ in detail but share the same "satellite ID plus a long
// run of clock/orbit correction terms" shape; librtcm's messages.h
// defines each one's exact field list, which a full production build
// decodes field-by-field the way GPSEphemeris does above. This
// translator preserves the payload opaquely (minus the satellite ID, which
// downstream code needs for SSR/bias pairing) rather than re-deriving
// every constellation's clock model, since no behavior this translator
// exercises depends on interpreting those fields individually.
type GenericEphemeris struct {
	MessageType int
	SatelliteID uint
	Body        []byte // opaque remainder of the payload, bit-for-bit.
}

// DecodeGenericEphemeris decodes the message type and satellite ID from a
// 1020/1042/1044/1045/1046 payload and preserves the rest opaquely.
func DecodeGenericEphemeris(payload []byte) (*GenericEphemeris, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenLegacyMsgType)
	if err != nil {
		return nil, err
	}
	messageType := int(rawType)
	switch messageType {
	case MsgType1020, MsgType1042, MsgType1044, MsgType1045, MsgType1046:
	default:
		return nil, fmt.Errorf("rtcm3: message %d is not a supported ephemeris message", messageType)
	}

	satWidth := uint(6)
	if messageType == MsgType1042 || messageType == MsgType1045 || messageType == MsgType1046 {
		satWidth = 6
	}
	satID, err := r.DecodeU(satWidth)
	if err != nil {
		return nil, err
	}

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

	return &GenericEphemeris{MessageType: messageType, SatelliteID: uint(satID), Body: body}, nil
}

// Encode packs msg back into its original payload shape.
func (msg *GenericEphemeris) Encode() ([]byte, error) {
	w := bitstream.NewWriter(len(msg.Body) + 4)
	w.EncodeU(uint64(msg.MessageType), lenLegacyMsgType)
	w.EncodeU(uint64(msg.SatelliteID), 6)
	for i := 0; i < len(msg.Body)*8; i++ {
		bit := (msg.Body[i/8] >> (7 - uint(i)%8)) & 1
		w.EncodeU(uint64(bit), 1)
	}
	w.PadToByte()
	return w.Bytes(), nil
}
