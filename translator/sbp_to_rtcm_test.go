package translator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swift-nav/gnss-converters-go/rtcm3"
	"github.com/swift-nav/gnss-converters-go/sbp"
)

func decodeOneRTCMFrame(t *testing.T, data []byte) *rtcm3.Message {
	t.Helper()
	scanner := rtcm3.NewScanner()
	scanner.Write(data)
	frame, ok := scanner.Next()
	require.True(t, ok, "emitted bytes did not parse as a valid RTCM3 frame")
	return rtcm3.Decode(frame)
}

func TestIngestSBPBasePosECEFRoundTrips(t *testing.T) {
	var got []byte
	s := newTestSession(t, func(f []byte) { got = f }, nil)

	msg := &sbp.BasePosECEFMessage{X: 1500, Y: -2500, Z: 3500}
	s.IngestSBP(sbp.Encode(sbp.MsgBasePosECEF, 1, msg.Encode()))

	require.NotNil(t, got, "expected an RTCM frame to be emitted")
	decoded := decodeOneRTCMFrame(t, got)
	require.NoError(t, decoded.DecodeError)

	station, ok := decoded.Readable.(*rtcm3.StationCoordinates)
	require.True(t, ok, "got %T, want *rtcm3.StationCoordinates", decoded.Readable)
	require.EqualValues(t, int64(1500/0.0001), station.AntennaRefX)
}

func TestIngestSBPGLOBiasesRoundTrips(t *testing.T) {
	var got []byte
	s := newTestSession(t, func(f []byte) { got = f }, nil)

	msg := &sbp.GLOBiasesMessage{Mask: 0xf, L1CABiasM: 2.0, L1PBiasM: -1.0, L2CABiasM: 0.5, L2PBiasM: 0}
	s.IngestSBP(sbp.Encode(sbp.MsgGLOBiases, 1, msg.Encode()))

	require.NotNil(t, got)
	decoded := decodeOneRTCMFrame(t, got)
	require.NoError(t, decoded.DecodeError)

	bias, ok := decoded.Readable.(*rtcm3.GLONASSCodePhaseBias)
	require.True(t, ok, "got %T, want *rtcm3.GLONASSCodePhaseBias", decoded.Readable)
	require.EqualValues(t, int16(2.0/glonassBiasScale), bias.L1CABias)
}

func TestIngestSBPGenericEphemerisGalileo(t *testing.T) {
	var got []byte
	s := newTestSession(t, func(f []byte) { got = f }, nil)

	msg := &sbp.GenericEphemerisMessage{
		MessageType: sbp.MsgEphemerisGAL,
		Common:      sbp.EphemerisCommonContent{SatelliteID: 5},
		Body:        []byte{9, 8, 7},
	}
	s.IngestSBP(sbp.Encode(sbp.MsgEphemerisGAL, 1, msg.Encode()))

	require.NotNil(t, got)
	decoded := decodeOneRTCMFrame(t, got)
	require.NoError(t, decoded.DecodeError)

	eph, ok := decoded.Readable.(*rtcm3.GenericEphemeris)
	require.True(t, ok, "got %T, want *rtcm3.GenericEphemeris", decoded.Readable)
	require.Equal(t, rtcm3.MsgType1045, eph.MessageType)
	require.EqualValues(t, 5, eph.SatelliteID)
}

func TestIngestSBPSVConfigGLOUpdatesFCNTable(t *testing.T) {
	s := newTestSession(t, nil, nil)

	msg := &sbp.SVConfigGLOMessage{SatelliteID: 4, FCN: 8}
	s.IngestSBP(sbp.Encode(sbp.MsgSVConfigGLO, 1, msg.Encode()))

	_, ok := s.glonassFCN[4]
	require.True(t, ok, "expected glonassFCN[4] to be populated after MSG_SV_CONFIGURATION_GLO")
}

func TestIngestSBPObservationsSingleFragmentEmitsLegacy(t *testing.T) {
	var got []byte
	s := newTestSession(t, func(f []byte) { got = f }, nil)

	obsMsg := &sbp.ObservationsMessage{
		Header: sbp.GPSTimeSBP{WN: 2148, TOWMillis: 100000},
		NumSeq: 1 << 4, // total=1, index=0 -> first and only fragment
		Observations: []sbp.ObservationSBP{
			{
				Signal:      sbp.SignalID{SatelliteID: 9, Code: sbp.CodeGPSL1CA},
				Pseudorange: 25000000 * 50, // 0.02m units
				CN0:         180,
				LockTime:    5,
				Flags:       flagPseudorangeValid,
			},
		},
	}
	s.IngestSBP(sbp.Encode(sbp.MsgObs, 1, obsMsg.Encode()))

	require.NotNil(t, got, "expected an RTCM frame to be emitted for a single-fragment epoch")
	decoded := decodeOneRTCMFrame(t, got)
	require.NoError(t, decoded.DecodeError)

	legacy, ok := decoded.Readable.(*rtcm3.LegacyObservation)
	require.True(t, ok, "got %T, want *rtcm3.LegacyObservation", decoded.Readable)
	require.Len(t, legacy.Cells, 1)
	require.EqualValues(t, 9, legacy.Cells[0].SatelliteID)
}

func TestIdsToMaskMSBFirst(t *testing.T) {
	mask := idsToMask([]uint{1, 3}, 4)
	require.Equal(t, uint64(0b1010), mask)
}

func TestCellsToMaskLocalRowMajor(t *testing.T) {
	cells := [][]bool{
		{true, false},
		{false, true},
	}
	require.Equal(t, uint64(0b1001), cellsToMaskLocal(cells))
}

func TestMedianOfOddAndEven(t *testing.T) {
	require.Equal(t, 2.0, medianOf([]float64{3, 1, 2}))
	require.Equal(t, 0.0, medianOf(nil))
}
