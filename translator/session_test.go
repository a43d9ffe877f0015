package translator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/swift-nav/gnss-converters-go/config"
	"github.com/swift-nav/gnss-converters-go/rtcm3"
	"github.com/swift-nav/gnss-converters-go/sbp"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func newTestSession(t *testing.T, onRTCM, onSBP func([]byte)) *Session {
	t.Helper()
	cfg := config.Default()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg.UserGPSTime = &now
	return NewSession(cfg, nil, fixedClock{now}, onRTCM, onSBP)
}

func encodeFrame(t *testing.T, payload []byte) []byte {
	t.Helper()
	frame, err := rtcm3.Encode(payload)
	require.NoError(t, err)
	return frame
}

func TestIngestRTCMStationCoordinatesEmitsBasePosECEF(t *testing.T) {
	var got []byte
	s := newTestSession(t, nil, func(f []byte) { got = f })

	station := &rtcm3.StationCoordinates{
		StationID:   4000,
		AntennaRefX: 15000000,
		AntennaRefY: -25000000,
		AntennaRefZ: 35000000,
	}
	payload, err := station.Encode()
	require.NoError(t, err)
	s.IngestRTCM(encodeFrame(t, payload))

	require.NotNil(t, got, "expected an SBP frame to be emitted")
	scanner := sbp.NewScanner()
	scanner.Write(got)
	frame, ok := scanner.Next()
	require.True(t, ok, "emitted bytes did not parse as a valid SBP frame")
	require.EqualValues(t, sbp.MsgBasePosECEF, frame.MessageType)

	out, err := sbp.DecodeBasePosECEFMessage(frame.Payload)
	require.NoError(t, err)
	require.Equal(t, 1500.0, out.X)
}

func TestIngestRTCMUnknownMessageCountsAndDoesNotPanic(t *testing.T) {
	s := newTestSession(t, nil, nil)
	frame := encodeFrame(t, []byte{0x7f, 0xf0, 0, 0, 0})
	s.IngestRTCM(frame)

	require.NotZero(t, s.Counters.UnknownMessageNumbers.Load())
}

func TestIngestRTCMMalformedBytesAreNotFatal(t *testing.T) {
	s := newTestSession(t, nil, nil)
	s.IngestRTCM([]byte{0xd3, 0x00, 0x02, 0xff, 0xff, 0x00, 0x00, 0x00})

	// A garbage frame should never panic; it's either resynced past
	// silently by the scanner or decoded and counted as an error.
}

func TestResetClearsGLONASSFCNTable(t *testing.T) {
	s := newTestSession(t, nil, nil)
	s.glonassFCN[7] = 3
	s.Reset()

	require.Empty(t, s.glonassFCN)
}

func TestSBPWrapperPassesThroughUnmodified(t *testing.T) {
	inner := sbp.Encode(sbp.MsgObs, 1, []byte{1, 2, 3})

	var got []byte
	s := newTestSession(t, nil, func(f []byte) { got = f })

	payload := make([]byte, 0, len(inner)+2)
	// Construct a raw 4062 payload: 12-bit message type, padded to a byte,
	// followed by the embedded SBP frame, mirroring proprietary.go's wire
	// layout for SBPWrapper.
	payload = append(payload, byte(rtcm3.MsgTypeSwiftSBPWrapper>>4), byte((rtcm3.MsgTypeSwiftSBPWrapper&0xf)<<4))
	payload = append(payload, inner...)

	s.IngestRTCM(encodeFrame(t, payload))

	require.NotNil(t, got, "expected the wrapped SBP frame to pass through onSBPFrame")
}
