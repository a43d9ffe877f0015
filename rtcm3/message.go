package rtcm3

import "fmt"

// Message wraps a decoded RTCM3 frame together with whichever typed
// decode succeeded: callers that only care about framing and raw bytes
// can use RawPayload, while callers that want structure can type-switch
// on Readable.
type Message struct {
	MessageType int
	RawPayload  []byte

	// Readable holds the typed decode result: one of *StationCoordinates,
	// *AntennaDescriptor, *ReceiverAntennaDescriptors, *SystemParameters,
	// *UnicodeText, *LegacyObservation, *MSMMessage, *GPSEphemeris,
	// *GenericEphemeris, *GLONASSCodePhaseBias, *SSRMessage,
	// *SwiftProprietary, *SBPWrapper, *NavDataFrame, or nil if this
	// message type isn't decoded by this codec.
	Readable interface{}

	// DecodeError is set if a typed decode was attempted but failed; the
	// message is still usable via RawPayload for pass-through forwarding.
	DecodeError error
}

// Decode dispatches frame.Payload to the appropriate typed decoder based
// on frame.MessageType and wraps the result in a Message. It never
// returns an error itself - a message type this codec doesn't know how to
// decode, or one whose typed decode fails, still produces a Message with
// Readable == nil (or DecodeError set) so the frame can still be
// forwarded opaquely.
func Decode(frame Frame) *Message {
	msg := &Message{MessageType: frame.MessageType, RawPayload: frame.Payload}

	var readable interface{}
	var err error

	switch {
	case frame.MessageType == MsgType1005 || frame.MessageType == MsgType1006:
		readable, err = DecodeStationCoordinates(frame.Payload)
	case frame.MessageType == MsgType1007 || frame.MessageType == MsgType1008:
		readable, err = DecodeAntennaDescriptor(frame.Payload)
	case frame.MessageType == MsgType1033:
		readable, err = DecodeReceiverAntennaDescriptors(frame.Payload)
	case frame.MessageType == MsgType1013:
		readable, err = DecodeSystemParameters(frame.Payload)
	case frame.MessageType == MsgType1029:
		readable, err = DecodeUnicodeText(frame.Payload)
	case isLegacyObservation(frame.MessageType):
		readable, err = DecodeLegacyObservation(frame.Payload)
	case frame.MessageType == MsgType1019:
		readable, err = DecodeGPSEphemeris(frame.Payload)
	case isGenericEphemeris(frame.MessageType):
		readable, err = DecodeGenericEphemeris(frame.Payload)
	case frame.MessageType == MsgType1230:
		readable, err = DecodeGLONASSCodePhaseBias(frame.Payload)
	case isSSRPaired(frame.MessageType):
		readable, err = DecodeSSRMessage(frame.Payload)
	case IsMSMDecoded(frame.MessageType):
		readable, err = DecodeMSM(frame.Payload)
	case frame.MessageType == MsgTypeSwiftProprietary:
		readable, err = DecodeSwiftProprietary(frame.Payload)
	case frame.MessageType == MsgTypeSwiftSBPWrapper:
		readable, err = DecodeSBPWrapper(frame.Payload)
	case frame.MessageType == MsgTypeNavDataFrame:
		readable, err = DecodeNavDataFrame(frame.Payload)
	default:
		// Unknown or intentionally-dropped (MSM2/3/6, SSR code-bias/URA/
		// high-rate-clock) message type: leave Readable nil.
		return msg
	}

	if err != nil {
		msg.DecodeError = err
		return msg
	}
	msg.Readable = readable
	return msg
}

func isLegacyObservation(messageType int) bool {
	switch messageType {
	case MsgType1001, MsgType1002, MsgType1003, MsgType1004, MsgType1010, MsgType1012:
		return true
	}
	return false
}

func isGenericEphemeris(messageType int) bool {
	switch messageType {
	case MsgType1020, MsgType1042, MsgType1044, MsgType1045, MsgType1046:
		return true
	}
	return false
}

func isSSRPaired(messageType int) bool {
	_, _, ok := ssrKindOf(messageType)
	return ok
}

// EncodeMessage re-serializes msg.Readable back into a framed RTCM3
// message, the mirror image of Decode plus Scanner.Next's framing. It
// fails if Readable is nil or isn't one of the types Decode can produce.
func EncodeMessage(msg *Message) ([]byte, error) {
	type encoder interface {
		Encode() ([]byte, error)
	}
	enc, ok := msg.Readable.(encoder)
	if !ok {
		return nil, fmt.Errorf("rtcm3: message type %d has no encoder", msg.MessageType)
	}
	payload, err := enc.Encode()
	if err != nil {
		return nil, err
	}
	return Encode(payload)
}
