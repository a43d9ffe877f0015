package translator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/swift-nav/gnss-converters-go/rtcm3"
	"github.com/swift-nav/gnss-converters-go/sbp"
	"github.com/swift-nav/gnss-converters-go/timetruth"
)

func TestIngestRTCMLegacyObservationEmitsMsgObs(t *testing.T) {
	var got []byte
	s := newTestSession(t, nil, func(f []byte) { got = f })

	msg := &rtcm3.LegacyObservation{
		MessageType:   rtcm3.MsgType1002,
		Constellation: rtcm3.ConstellationGPS,
		StationID:     1234,
		EpochTimeMS:   100000,
		Cells: []rtcm3.LegacyCell{
			{
				SatelliteID:   9,
				GLONASSFCN:    rtcm3.GLOFCNUnknown,
				L1Pseudorange: 500000,
				L1CNR:         180,
				L1LockTime:    5,
			},
		},
	}
	payload, err := msg.Encode()
	require.NoError(t, err)
	s.IngestRTCM(encodeFrame(t, payload))

	require.NotNil(t, got, "expected a MSG_OBS frame to be emitted")
	scanner := sbp.NewScanner()
	scanner.Write(got)
	frame, ok := scanner.Next()
	require.True(t, ok)
	require.EqualValues(t, sbp.MsgObs, frame.MessageType)

	out, err := sbp.DecodeObservationsMessage(frame.Payload)
	require.NoError(t, err)
	require.Len(t, out.Observations, 1)
	require.EqualValues(t, 9, out.Observations[0].Signal.SatelliteID)
}

func TestIngestRTCMGLONASSBiasAppliesScale(t *testing.T) {
	var got []byte
	s := newTestSession(t, nil, func(f []byte) { got = f })

	msg := &rtcm3.GLONASSCodePhaseBias{
		StationID:               1234,
		AlignedWithCarrierPhase: true,
		L1CABias:                100,
		L1PBias:                 -50,
		L2CABias:                200,
		L2PBias:                 0,
	}
	payload, err := msg.Encode()
	require.NoError(t, err)
	s.IngestRTCM(encodeFrame(t, payload))

	require.NotNil(t, got)
	scanner := sbp.NewScanner()
	scanner.Write(got)
	frame, ok := scanner.Next()
	require.True(t, ok)

	out, err := sbp.DecodeGLOBiasesMessage(frame.Payload)
	require.NoError(t, err)
	require.Equal(t, 100*glonassBiasScale, out.L1CABiasM)
}

func TestGenericEphemerisSBPTypeUnknownIsRejected(t *testing.T) {
	_, _, ok := genericEphemerisSBPType(rtcm3.MsgType1019)
	require.False(t, ok, "expected MsgType1019 (native GPS ephemeris) to have no generic mapping")
}

func TestIngestRTCMGenericEphemerisGLONASS(t *testing.T) {
	var got []byte
	s := newTestSession(t, nil, func(f []byte) { got = f })

	msg := &rtcm3.GenericEphemeris{
		MessageType: rtcm3.MsgType1020,
		SatelliteID: 3,
		Body:        []byte{1, 2, 3, 4},
	}
	payload, err := msg.Encode()
	require.NoError(t, err)
	s.IngestRTCM(encodeFrame(t, payload))

	require.NotNil(t, got)
	scanner := sbp.NewScanner()
	scanner.Write(got)
	frame, ok := scanner.Next()
	require.True(t, ok)
	require.EqualValues(t, sbp.MsgEphemerisGLO, frame.MessageType)
}

func TestResolveEpochGPSYieldsNonZeroWeek(t *testing.T) {
	s := newTestSession(t, nil, nil)

	_, week := s.resolveEpoch(rtcm3.ConstellationGPS, 100000)
	require.NotZero(t, week)
}

func TestIngestRTCMSystemParametersDecodesOwnGPSTime(t *testing.T) {
	s := newTestSession(t, nil, nil)

	frame := []byte{0xD3, 0x00, 0x09, 0x3F, 0x50, 0x01, 0xE8, 0xD6, 0xA1, 0x09, 0x80, 0x48, 0x36, 0x24, 0x76}
	s.IngestRTCM(frame)

	e, ok := s.pool.Get(timetruth.SourceRemote, timetruth.KindRTCM1013)
	require.True(t, ok)
	snap, ok := e.Latest()
	require.True(t, ok, "expected message 1013 to publish a Time Truth snapshot")

	require.EqualValues(t, 2194, snap.GPSWN)
	require.EqualValues(t, 428069*1000, snap.GPSTOWMillis)
	require.True(t, snap.HasLeapSeconds)
	require.Equal(t, 18, snap.LeapSeconds)
}

func TestSystemParametersGPSTimeMatchesKnownVector(t *testing.T) {
	v, err := rtcm3.DecodeSystemParameters([]byte{0x3F, 0x50, 0x01, 0xE8, 0xD6, 0xA1, 0x09, 0x80, 0x48})
	require.NoError(t, err)

	week, towMillis, _ := systemParametersGPSTime(v)
	require.EqualValues(t, 2194, week)
	require.EqualValues(t, 428069*1000, towMillis)
	require.EqualValues(t, 18, v.LeapSeconds)
}

func TestHandleGPSEphemerisRequiresSatelliteQuorum(t *testing.T) {
	s := newTestSession(t, nil, func([]byte) {})

	base := &rtcm3.GPSEphemeris{
		WeekNumber: 360, // transmitted 10-bit week, rolled over against referenceTime()
		TOE:        1000,
		SVAccuracy: 1,
		IODE:       1,
		IODC:       1,
	}

	for sat := uint(1); sat <= 6; sat++ {
		msg := *base
		msg.SatelliteID = sat
		s.handleGPSEphemeris(&msg)
	}

	_, ok := s.pool.Get(timetruth.SourceRemote, timetruth.KindEphemeris)
	require.True(t, ok)
	e, _ := s.pool.Get(timetruth.SourceRemote, timetruth.KindEphemeris)
	_, ok = e.Latest()
	require.False(t, ok, "six satellites agreeing should not yet satisfy the eight-satellite quorum")

	for sat := uint(7); sat <= 8; sat++ {
		msg := *base
		msg.SatelliteID = sat
		s.handleGPSEphemeris(&msg)
	}

	snap, ok := e.Latest()
	require.True(t, ok, "eight agreeing satellites should satisfy quorum")
	require.NotZero(t, snap.GPSWN)
}

func TestHandleGPSEphemerisRejectsOutlierSatellite(t *testing.T) {
	s := newTestSession(t, nil, func([]byte) {})

	for sat := uint(1); sat <= 8; sat++ {
		s.handleGPSEphemeris(&rtcm3.GPSEphemeris{
			SatelliteID: sat,
			WeekNumber:  360,
			TOE:         1000,
			SVAccuracy:  1,
			IODE:        1,
			IODC:        1,
		})
	}

	e, _ := s.pool.Get(timetruth.SourceRemote, timetruth.KindEphemeris)
	first, ok := e.Latest()
	require.True(t, ok)

	// An outlier satellite reporting a TOE more than a week away from the
	// quorum must not drag the fused estimate with it.
	s.handleGPSEphemeris(&rtcm3.GPSEphemeris{
		SatelliteID: 9,
		WeekNumber:  360,
		TOE:         1000 + secondsPerGPSWeek/toeTocUnit + 100,
		SVAccuracy:  1,
		IODE:        1,
		IODC:        1,
	})

	second, ok := e.Latest()
	require.True(t, ok)
	require.Equal(t, first.GPSWN, second.GPSWN)
	require.Equal(t, first.GPSTOWMillis, second.GPSTOWMillis)
}

func TestHandleMSMUnmatchedSatelliteUsesDedicatedCounter(t *testing.T) {
	s := newTestSession(t, nil, func([]byte) {})

	header := &rtcm3.MSMHeader{
		MessageType:   1074, // GPS MSM4
		Constellation: rtcm3.ConstellationGPS,
		EpochTimeMS:   100000,
	}
	msg := &rtcm3.MSMMessage{
		Header:     header,
		Satellites: nil,
		Signals: []rtcm3.SignalCell{
			{SatelliteID: 1, SignalID: 2},
		},
	}

	s.handleMSM(msg)

	require.EqualValues(t, 1, s.Counters.UnmatchedSatelliteCell.Load())
	require.Zero(t, s.Counters.BaseObsInsanity.Load())
}

func TestCheckBaseObsInsanityReportsWithoutDropping(t *testing.T) {
	s := newTestSession(t, nil, nil)

	var got BaseObsInsanityReport
	s.OnBaseObsInsanity(func(r BaseObsInsanityReport) { got = r })

	farFuture := s.clock.Now().Add(24 * time.Hour)
	s.checkBaseObsInsanity(farFuture)

	require.EqualValues(t, 1, s.Counters.BaseObsInsanity.Load())
	require.NotEmpty(t, got.ID)
	require.Equal(t, farFuture, got.Observed)
}

func TestPublishUBXLeapSecondFeedsFusion(t *testing.T) {
	s := newTestSession(t, nil, nil)

	observedAt := s.clock.Now()
	s.PublishUBXLeapSecond(timetruth.SourceRemote, 19, observedAt)

	e, ok := s.pool.Get(timetruth.SourceRemote, timetruth.KindUBXLeap)
	require.True(t, ok)
	snap, ok := e.Latest()
	require.True(t, ok)
	require.True(t, snap.HasLeapSeconds)
	require.Equal(t, 19, snap.LeapSeconds)
}
