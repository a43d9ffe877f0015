// Package sbp implements the Swift Binary Protocol wire codec: the
// length-prefixed frame format and the message records this translator
// produces and consumes. It mirrors rtcm3's frame scanner and encoder
// shape structurally.
package sbp

// Preamble starts every SBP frame.
const Preamble byte = 0x55

// FrameOverhead is the number of bytes in a frame besides the payload:
// 1-byte preamble, 2-byte message type, 2-byte sender ID, 1-byte length,
// 2-byte CRC-16-CCITT trailer.
const FrameOverhead = 1 + 2 + 2 + 1 + 2

// MaxPayloadLen is the largest payload the 8-bit length field can express.
const MaxPayloadLen = 255

// Message type numbers this translator produces and consumes.
const (
	MsgObs           = 0x004A // SBP_MSG_OBS
	MsgBasePosECEF   = 0x0044 // SBP_MSG_BASE_POS_ECEF
	MsgEphemerisGPS  = 0x008A
	MsgEphemerisGLO  = 0x008B
	MsgEphemerisGAL  = 0x008E
	MsgEphemerisBDS  = 0x0089
	MsgEphemerisQZSS = 0x008F
	MsgSSROrbitClock = 0x05DD
	MsgGLOBiases     = 0x05D8
	MsgSVConfigGLO   = 0x0064
	MsgSwiftVersion  = 0x00FF
)

// DefaultSenderID is used for frames this translator originates when the
// caller hasn't configured one: a fixed default rather than a random
// value.
const DefaultSenderID = 0x42
