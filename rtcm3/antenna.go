package rtcm3

import (
	"fmt"

	"github.com/swift-nav/gnss-converters-go/bitstream"
)

const (
	lenAntennaMsgType    = 12
	lenAntDescriptorCount = 8
	lenAntSetupID        = 8
	lenAntSerialCount    = 8
	lenRxDescriptorCount = 8
	lenRxFirmwareCount   = 8
	lenRxSerialCount     = 8
)

// AntennaDescriptor is message 1007 (descriptor only) or 1008 (descriptor
// plus serial number). Grounded in the same flat-struct idiom as
// StationCoordinates; its variable-length string fields follow message
// 1029's length-prefixed text convention instead.
type AntennaDescriptor struct {
	StationID  uint
	Descriptor string
	SetupID    uint

	// HasSerial is true for message 1008.
	HasSerial    bool
	SerialNumber string
}

// DecodeAntennaDescriptor decodes a message 1007 or 1008 payload.
func DecodeAntennaDescriptor(payload []byte) (*AntennaDescriptor, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenAntennaMsgType)
	if err != nil {
		return nil, err
	}
	messageType := int(rawType)
	if messageType != MsgType1007 && messageType != MsgType1008 {
		return nil, fmt.Errorf("rtcm3: expected message 1007 or 1008, got %d", messageType)
	}

	msg := &AntennaDescriptor{HasSerial: messageType == MsgType1008}

	stationID, err := r.DecodeU(lenStationID)
	if err != nil {
		return nil, err
	}
	msg.StationID = uint(stationID)

	descLen, err := r.DecodeU(lenAntDescriptorCount)
	if err != nil {
		return nil, err
	}
	desc, err := decodeASCII(r, int(descLen))
	if err != nil {
		return nil, err
	}
	msg.Descriptor = desc

	setupID, err := r.DecodeU(lenAntSetupID)
	if err != nil {
		return nil, err
	}
	msg.SetupID = uint(setupID)

	if msg.HasSerial {
		serialLen, err := r.DecodeU(lenAntSerialCount)
		if err != nil {
			return nil, err
		}
		serial, err := decodeASCII(r, int(serialLen))
		if err != nil {
			return nil, err
		}
		msg.SerialNumber = serial
	}

	return msg, nil
}

// Encode packs msg back into a message 1007 or 1008 payload.
func (msg *AntennaDescriptor) Encode() ([]byte, error) {
	messageType := MsgType1007
	if msg.HasSerial {
		messageType = MsgType1008
	}
	w := bitstream.NewWriter(32)
	w.EncodeU(uint64(messageType), lenAntennaMsgType)
	w.EncodeU(uint64(msg.StationID), lenStationID)
	if err := encodeASCII(w, msg.Descriptor, lenAntDescriptorCount); err != nil {
		return nil, err
	}
	w.EncodeU(uint64(msg.SetupID), lenAntSetupID)
	if msg.HasSerial {
		if err := encodeASCII(w, msg.SerialNumber, lenAntSerialCount); err != nil {
			return nil, err
		}
	}
	w.PadToByte()
	return w.Bytes(), nil
}

// ReceiverAntennaDescriptors is message 1033: receiver and antenna
// descriptors together with firmware version and receiver serial number.
type ReceiverAntennaDescriptors struct {
	StationID        uint
	AntennaDescriptor string
	AntennaSetupID   uint
	AntennaSerial    string
	ReceiverType     string
	ReceiverFirmware string
	ReceiverSerial   string
}

// DecodeReceiverAntennaDescriptors decodes a message 1033 payload.
func DecodeReceiverAntennaDescriptors(payload []byte) (*ReceiverAntennaDescriptors, error) {
	r := bitstream.NewReader(payload)

	rawType, err := r.DecodeU(lenAntennaMsgType)
	if err != nil {
		return nil, err
	}
	if int(rawType) != MsgType1033 {
		return nil, fmt.Errorf("rtcm3: expected message 1033, got %d", rawType)
	}

	msg := &ReceiverAntennaDescriptors{}

	stationID, err := r.DecodeU(lenStationID)
	if err != nil {
		return nil, err
	}
	msg.StationID = uint(stationID)

	antDescLen, err := r.DecodeU(lenAntDescriptorCount)
	if err != nil {
		return nil, err
	}
	if msg.AntennaDescriptor, err = decodeASCII(r, int(antDescLen)); err != nil {
		return nil, err
	}
	setupID, err := r.DecodeU(lenAntSetupID)
	if err != nil {
		return nil, err
	}
	msg.AntennaSetupID = uint(setupID)

	antSerialLen, err := r.DecodeU(lenAntSerialCount)
	if err != nil {
		return nil, err
	}
	if msg.AntennaSerial, err = decodeASCII(r, int(antSerialLen)); err != nil {
		return nil, err
	}

	rxTypeLen, err := r.DecodeU(lenRxDescriptorCount)
	if err != nil {
		return nil, err
	}
	if msg.ReceiverType, err = decodeASCII(r, int(rxTypeLen)); err != nil {
		return nil, err
	}

	rxFirmwareLen, err := r.DecodeU(lenRxFirmwareCount)
	if err != nil {
		return nil, err
	}
	if msg.ReceiverFirmware, err = decodeASCII(r, int(rxFirmwareLen)); err != nil {
		return nil, err
	}

	rxSerialLen, err := r.DecodeU(lenRxSerialCount)
	if err != nil {
		return nil, err
	}
	if msg.ReceiverSerial, err = decodeASCII(r, int(rxSerialLen)); err != nil {
		return nil, err
	}

	return msg, nil
}

// Encode packs msg back into a message 1033 payload.
func (msg *ReceiverAntennaDescriptors) Encode() ([]byte, error) {
	w := bitstream.NewWriter(64)
	w.EncodeU(uint64(MsgType1033), lenAntennaMsgType)
	w.EncodeU(uint64(msg.StationID), lenStationID)
	if err := encodeASCII(w, msg.AntennaDescriptor, lenAntDescriptorCount); err != nil {
		return nil, err
	}
	w.EncodeU(uint64(msg.AntennaSetupID), lenAntSetupID)
	if err := encodeASCII(w, msg.AntennaSerial, lenAntSerialCount); err != nil {
		return nil, err
	}
	if err := encodeASCII(w, msg.ReceiverType, lenRxDescriptorCount); err != nil {
		return nil, err
	}
	if err := encodeASCII(w, msg.ReceiverFirmware, lenRxFirmwareCount); err != nil {
		return nil, err
	}
	if err := encodeASCII(w, msg.ReceiverSerial, lenRxSerialCount); err != nil {
		return nil, err
	}
	w.PadToByte()
	return w.Bytes(), nil
}

func decodeASCII(r *bitstream.Reader, length int) (string, error) {
	b := make([]byte, length)
	for i := 0; i < length; i++ {
		v, err := r.DecodeU(8)
		if err != nil {
			return "", err
		}
		b[i] = byte(v)
	}
	return string(b), nil
}

func encodeASCII(w *bitstream.Writer, s string, lenCountField uint) error {
	b := []byte(s)
	if err := w.EncodeU(uint64(len(b)), lenCountField); err != nil {
		return err
	}
	for _, c := range b {
		if err := w.EncodeU(uint64(c), 8); err != nil {
			return err
		}
	}
	return nil
}
