// Package rtcm3 implements the RTCM 3 wire codec: frame scanning/encoding
// and the per-message-number typed encoders/decoders. Message numbers
// and field widths follow librtcm's rtcm3/constants.h and
// rtcm3/messages.h, and the struct/decode-pair shape follows the
// per-message-type package layout common in Go RTCM decoders.
package rtcm3

// Preamble is the byte that starts every RTCM3 message frame.
const Preamble byte = 0xD3

// FrameOverhead is the number of bytes in a frame besides the payload: the
// 3-byte leader (preamble + 6 reserved bits + 10-bit length) plus the 3-byte
// CRC-24Q trailer.
const FrameOverhead = 6

// MaxPayloadLen is the largest payload the 10-bit length field can express.
const MaxPayloadLen = 1023

// MaxFrameLen is the largest possible complete frame.
const MaxFrameLen = MaxPayloadLen + FrameOverhead

// DefaultFIFOSize is the default scanner FIFO capacity, taken verbatim
// from librtcm's RTCM3_FIFO_SIZE. It must be a power of two and
// comfortably larger than MaxFrameLen.
const DefaultFIFOSize = 4096

// Message numbers this codec supports.
const (
	MsgTypeSwiftProprietary = 999

	MsgType1001 = 1001 // L1-only GPS obs (legacy).
	MsgType1002 = 1002 // Extended L1-only GPS obs.
	MsgType1003 = 1003 // L1/L2 GPS obs.
	MsgType1004 = 1004 // Extended L1/L2 GPS obs.

	MsgType1005 = 1005 // Station ARP.
	MsgType1006 = 1006 // Station ARP + height.
	MsgType1007 = 1007 // Antenna descriptor.
	MsgType1008 = 1008 // Antenna descriptor + serial number.

	MsgType1010 = 1010 // Extended L1-only GLONASS obs (legacy).
	MsgType1012 = 1012 // Extended L1/L2 GLONASS obs (legacy).

	MsgType1013 = 1013 // System parameters (UTC/leap seconds).

	MsgType1019 = 1019 // GPS ephemeris.
	MsgType1020 = 1020 // GLONASS ephemeris.

	MsgType1029 = 1029 // Unicode text string.

	MsgType1033 = 1033 // Receiver and antenna descriptors.

	MsgType1042 = 1042 // BeiDou ephemeris.
	MsgType1044 = 1044 // QZSS ephemeris.
	MsgType1045 = 1045 // Galileo F/NAV ephemeris.
	MsgType1046 = 1046 // Galileo I/NAV ephemeris.

	MsgType1230 = 1230 // GLONASS code-phase biases.

	MsgTypeSwiftSBPWrapper = 4062 // Proprietary: wraps an SBP frame.
	MsgTypeNavDataFrame    = 4075 // Proprietary: raw navigation data frame.
)

// SSR message numbers, §4.3. Orbit/clock messages are paired by the codec;
// the rest (code bias, URA, high-rate clock) are passed through untouched.
const (
	MsgTypeSSRGPSOrbit             = 1057
	MsgTypeSSRGPSClock             = 1058
	MsgTypeSSRGPSCodeBias          = 1059
	MsgTypeSSRGPSOrbitClock        = 1060
	MsgTypeSSRGPSURA               = 1061
	MsgTypeSSRGPSHighRateClock     = 1062
	MsgTypeSSRGLONASSOrbit         = 1063
	MsgTypeSSRGLONASSClock         = 1064
	MsgTypeSSRGLONASSCodeBias      = 1065
	MsgTypeSSRGLONASSOrbitClock    = 1066
	MsgTypeSSRGLONASSURA           = 1067
	MsgTypeSSRGLONASSHighRateClock = 1068
)

// MSM1-7 message numbers by constellation. MSM2/3/6 are recognized but
// dropped with a one-shot warning.
const (
	MsgTypeMSM1GPS = 1071
	MsgTypeMSM2GPS = 1072
	MsgTypeMSM3GPS = 1073
	MsgTypeMSM4GPS = 1074
	MsgTypeMSM5GPS = 1075
	MsgTypeMSM6GPS = 1076
	MsgTypeMSM7GPS = 1077

	MsgTypeMSM1GLONASS = 1081
	MsgTypeMSM2GLONASS = 1082
	MsgTypeMSM3GLONASS = 1083
	MsgTypeMSM4GLONASS = 1084
	MsgTypeMSM5GLONASS = 1085
	MsgTypeMSM6GLONASS = 1086
	MsgTypeMSM7GLONASS = 1087

	MsgTypeMSM1Galileo = 1091
	MsgTypeMSM2Galileo = 1092
	MsgTypeMSM3Galileo = 1093
	MsgTypeMSM4Galileo = 1094
	MsgTypeMSM5Galileo = 1095
	MsgTypeMSM6Galileo = 1096
	MsgTypeMSM7Galileo = 1097

	MsgTypeMSM1SBAS = 1101
	MsgTypeMSM2SBAS = 1102
	MsgTypeMSM3SBAS = 1103
	MsgTypeMSM4SBAS = 1104
	MsgTypeMSM5SBAS = 1105
	MsgTypeMSM6SBAS = 1106
	MsgTypeMSM7SBAS = 1107

	MsgTypeMSM1QZSS = 1111
	MsgTypeMSM2QZSS = 1112
	MsgTypeMSM3QZSS = 1113
	MsgTypeMSM4QZSS = 1114
	MsgTypeMSM5QZSS = 1115
	MsgTypeMSM6QZSS = 1116
	MsgTypeMSM7QZSS = 1117

	MsgTypeMSM1BeiDou = 1121
	MsgTypeMSM2BeiDou = 1122
	MsgTypeMSM3BeiDou = 1123
	MsgTypeMSM4BeiDou = 1124
	MsgTypeMSM5BeiDou = 1125
	MsgTypeMSM6BeiDou = 1126
	MsgTypeMSM7BeiDou = 1127
)

// Per-unit constants from librtcm's rtcm3/constants.h.
const (
	PRUnitGPS = 299792.458 // RTCM v3 unit of GPS pseudorange (m).
	PRUnitGLO = 599584.916 // RTCM v3 unit of GLONASS pseudorange (m).

	MSMMaxCells          = 64
	MSMSatelliteMaskSize = 64
	MSMSignalMaskSize    = 32

	MSMRoughRangeInvalid = 0xFF
	MSMRoughRateInvalid  = -8192
	MSMPRInvalid         = -16384
	MSMPRExtInvalid      = -524288
	MSMCPInvalid         = -2097152
	MSMCPExtInvalid      = -8388608
	MSMDopInvalid        = -16384

	GLOFCNOffset  = 7
	GLOMaxFCN     = 13
	GLOFCNUnknown = 255 // RTCM wire sentinel for "unknown FCN".

	MT1012GLOFCNOffset = 7
	MT1012GLOMaxFCN    = 20

	MaxTOWMS    = 7*24*3600*1000 - 1 // Max time-of-week in ms.
	MaxGLOTOWMS = 24*3600*1000 - 1   // Max time-of-day in ms.

	BDSSecondToGPSSecond = 14 // BDS time is 14s behind GPS time (GPS = BDS + 14s).

	Max1006AntennaHeightM = 6.5535
)

// IsMSMDropped reports whether messageType is a recognized-but-dropped
// MSM2/3/6 message (§4.3): these carry no pseudorange/phaserange data this
// translator's downstream SBP observation records need, so the codec
// recognizes the framing and discards the payload with a one-shot warning
// rather than decoding it.
func IsMSMDropped(messageType int) bool {
	switch messageType {
	case MsgTypeMSM2GPS, MsgTypeMSM3GPS, MsgTypeMSM6GPS,
		MsgTypeMSM2GLONASS, MsgTypeMSM3GLONASS, MsgTypeMSM6GLONASS,
		MsgTypeMSM2Galileo, MsgTypeMSM3Galileo, MsgTypeMSM6Galileo,
		MsgTypeMSM2SBAS, MsgTypeMSM3SBAS, MsgTypeMSM6SBAS,
		MsgTypeMSM2QZSS, MsgTypeMSM3QZSS, MsgTypeMSM6QZSS,
		MsgTypeMSM2BeiDou, MsgTypeMSM3BeiDou, MsgTypeMSM6BeiDou:
		return true
	}
	return false
}

// IsMSMDecoded reports whether messageType is an MSM1/4/5/7 message this
// codec fully decodes observations from.
func IsMSMDecoded(messageType int) bool {
	switch messageType {
	case MsgTypeMSM1GPS, MsgTypeMSM4GPS, MsgTypeMSM5GPS, MsgTypeMSM7GPS,
		MsgTypeMSM1GLONASS, MsgTypeMSM4GLONASS, MsgTypeMSM5GLONASS, MsgTypeMSM7GLONASS,
		MsgTypeMSM1Galileo, MsgTypeMSM4Galileo, MsgTypeMSM5Galileo, MsgTypeMSM7Galileo,
		MsgTypeMSM1SBAS, MsgTypeMSM4SBAS, MsgTypeMSM5SBAS, MsgTypeMSM7SBAS,
		MsgTypeMSM1QZSS, MsgTypeMSM4QZSS, MsgTypeMSM5QZSS, MsgTypeMSM7QZSS,
		MsgTypeMSM1BeiDou, MsgTypeMSM4BeiDou, MsgTypeMSM5BeiDou, MsgTypeMSM7BeiDou:
		return true
	}
	return false
}

// Constellation identifies which GNSS a message, signal or ephemeris
// belongs to.
type Constellation int

const (
	ConstellationUnknown Constellation = iota
	ConstellationGPS
	ConstellationGLONASS
	ConstellationGalileo
	ConstellationSBAS
	ConstellationQZSS
	ConstellationBeiDou
)

func (c Constellation) String() string {
	switch c {
	case ConstellationGPS:
		return "GPS"
	case ConstellationGLONASS:
		return "GLONASS"
	case ConstellationGalileo:
		return "Galileo"
	case ConstellationSBAS:
		return "SBAS"
	case ConstellationQZSS:
		return "QZSS"
	case ConstellationBeiDou:
		return "BeiDou"
	default:
		return "unknown"
	}
}

// MSMConstellation returns the constellation for an MSM1-7 message number,
// or ConstellationUnknown if messageType isn't an MSM.
func MSMConstellation(messageType int) Constellation {
	switch {
	case messageType >= 1071 && messageType <= 1077:
		return ConstellationGPS
	case messageType >= 1081 && messageType <= 1087:
		return ConstellationGLONASS
	case messageType >= 1091 && messageType <= 1097:
		return ConstellationGalileo
	case messageType >= 1101 && messageType <= 1107:
		return ConstellationSBAS
	case messageType >= 1111 && messageType <= 1117:
		return ConstellationQZSS
	case messageType >= 1121 && messageType <= 1127:
		return ConstellationBeiDou
	default:
		return ConstellationUnknown
	}
}

// MSMVariant returns which of MSM1..MSM7 a message number is (1-7), or 0 if
// it isn't an MSM message at all.
func MSMVariant(messageType int) int {
	if messageType < 1071 || messageType > 1127 {
		return 0
	}
	offset := messageType % 10
	if offset < 1 || offset > 7 {
		return 0
	}
	return offset
}
