package rtcm3

import "testing"

func TestStationCoordinatesRoundTrip(t *testing.T) {
	original := &StationCoordinates{
		StationID:    42,
		ITRFRealYear: 18,
		GPSIndicator: true,
		AntennaRefX:  123456789,
		AntennaRefY:  -987654321,
		AntennaRefZ:  555555,
		HasHeight:    true,
		AntennaHeight: 100,
	}
	payload, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeStationCoordinates(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if *decoded != *original {
		t.Fatalf("got %+v, want %+v", decoded, original)
	}
}

func TestMessageDecodeDispatchesStationMessage(t *testing.T) {
	original := &StationCoordinates{StationID: 7, AntennaRefX: 1, AntennaRefY: 2, AntennaRefZ: 3}
	payload, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	msg := Decode(Frame{MessageType: MsgType1005, Payload: payload})
	if msg.DecodeError != nil {
		t.Fatalf("DecodeError: %v", msg.DecodeError)
	}
	got, ok := msg.Readable.(*StationCoordinates)
	if !ok {
		t.Fatalf("Readable is %T, want *StationCoordinates", msg.Readable)
	}
	if got.StationID != 7 {
		t.Fatalf("got station ID %d", got.StationID)
	}
}

func TestMessageDecodeLeavesUnknownTypeOpaque(t *testing.T) {
	msg := Decode(Frame{MessageType: 9999, Payload: []byte{1, 2, 3}})
	if msg.Readable != nil {
		t.Fatalf("expected nil Readable for unknown message type, got %T", msg.Readable)
	}
	if msg.DecodeError != nil {
		t.Fatalf("expected no error for unknown message type, got %v", msg.DecodeError)
	}
}

func TestMSMVariantAndDroppedClassification(t *testing.T) {
	if !IsMSMDecoded(MsgTypeMSM4GPS) {
		t.Error("MSM4 GPS should be decoded")
	}
	if !IsMSMDropped(MsgTypeMSM2GPS) {
		t.Error("MSM2 GPS should be dropped")
	}
	if !IsMSMDropped(MsgTypeMSM6GLONASS) {
		t.Error("MSM6 GLONASS should be dropped")
	}
	if MSMVariant(MsgTypeMSM7Galileo) != 7 {
		t.Errorf("got variant %d, want 7", MSMVariant(MsgTypeMSM7Galileo))
	}
	if MSMConstellation(MsgTypeMSM1BeiDou) != ConstellationBeiDou {
		t.Errorf("got constellation %v, want BeiDou", MSMConstellation(MsgTypeMSM1BeiDou))
	}
}

func TestSSRPairingCacheMatchesOrbitAndClock(t *testing.T) {
	cache := NewPairingCache()

	orbit := &SSRMessage{MessageType: MsgTypeSSRGPSOrbit, Kind: SSRKindOrbit,
		Constellation: ConstellationGPS, EpochTime: 100, IODSSR: 1}
	clock := &SSRMessage{MessageType: MsgTypeSSRGPSClock, Kind: SSRKindClock,
		Constellation: ConstellationGPS, EpochTime: 100, IODSSR: 1}

	if _, _, ok := cache.Offer(orbit); ok {
		t.Fatal("lone orbit message should not complete a pair")
	}
	gotOrbit, gotClock, ok := cache.Offer(clock)
	if !ok {
		t.Fatal("matching clock message should complete the pair")
	}
	if gotOrbit != orbit || gotClock != clock {
		t.Fatal("pairing cache returned the wrong messages")
	}
}

func TestSSRPairingCacheRejectsMismatchedEpoch(t *testing.T) {
	cache := NewPairingCache()

	orbit := &SSRMessage{MessageType: MsgTypeSSRGPSOrbit, Kind: SSRKindOrbit,
		Constellation: ConstellationGPS, EpochTime: 100, IODSSR: 1}
	clock := &SSRMessage{MessageType: MsgTypeSSRGPSClock, Kind: SSRKindClock,
		Constellation: ConstellationGPS, EpochTime: 200, IODSSR: 1}

	cache.Offer(orbit)
	if _, _, ok := cache.Offer(clock); ok {
		t.Fatal("mismatched epoch should not pair")
	}
}
