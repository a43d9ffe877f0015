package rtcm3

import "testing"

func buildMSMHeader(messageType int, satellites, signals []uint) *MSMHeader {
	cells := make([][]bool, len(satellites))
	for i := range cells {
		cells[i] = make([]bool, len(signals))
		for j := range cells[i] {
			cells[i][j] = true
		}
	}
	var satMask uint64
	for _, s := range satellites {
		satMask |= 1 << uint(64-s)
	}
	var sigMask uint32
	for _, s := range signals {
		sigMask |= 1 << uint(32-s)
	}
	return &MSMHeader{
		MessageType:   messageType,
		Constellation: MSMConstellation(messageType),
		StationID:     1,
		EpochTimeMS:   123456,
		Satellites:    satellites,
		Signals:       signals,
		SatelliteMask: satMask,
		SignalMask:    sigMask,
		CellMask:      cellsToMask(cells),
		Cells:         cells,
	}
}

func TestMSM4RoundTrip(t *testing.T) {
	header := buildMSMHeader(MsgTypeMSM4GPS, []uint{1, 3}, []uint{1, 2})
	msg := &MSMMessage{
		Header: header,
		Satellites: []SatelliteCell{
			{ID: 1, RoughRangeMillis: 70, RoughRangeFracMillis: 512},
			{ID: 3, RoughRangeMillis: 71, RoughRangeFracMillis: 1},
		},
		Signals: []SignalCell{
			{SatelliteID: 1, SignalID: 1, FinePseudorange: 100, HasPhaserange: true, FinePhaserange: -200, CNR: 40},
			{SatelliteID: 1, SignalID: 2, FinePseudorange: -50, HasPhaserange: true, FinePhaserange: 300, CNR: 35},
			{SatelliteID: 3, SignalID: 1, FinePseudorange: 10, HasPhaserange: true, FinePhaserange: 20, CNR: 30},
			{SatelliteID: 3, SignalID: 2, FinePseudorange: -10, HasPhaserange: true, FinePhaserange: -20, CNR: 25},
		},
	}

	payload, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeMSM(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(decoded.Satellites) != 2 || len(decoded.Signals) != 4 {
		t.Fatalf("got %d satellites, %d signals", len(decoded.Satellites), len(decoded.Signals))
	}
	if decoded.Signals[0].FinePseudorange != 100 || decoded.Signals[0].FinePhaserange != -200 {
		t.Fatalf("first signal cell mismatch: %+v", decoded.Signals[0])
	}
	if decoded.Satellites[1].RoughRangeMillis != 71 {
		t.Fatalf("second satellite cell mismatch: %+v", decoded.Satellites[1])
	}
}

func TestMSM7HasExtendedFieldsAndDoppler(t *testing.T) {
	header := buildMSMHeader(MsgTypeMSM7GLONASS, []uint{5}, []uint{2})
	msg := &MSMMessage{
		Header: header,
		Satellites: []SatelliteCell{
			{ID: 5, RoughRangeMillis: 10, RoughRangeFracMillis: 4, HasRate: true, RoughRangeRateMPS: -100},
		},
		Signals: []SignalCell{
			{SatelliteID: 5, SignalID: 2, FinePseudorange: 1000, HasPhaserange: true,
				FinePhaserange: -2000, CNR: 500, HasDoppler: true, FineDoppler: -12345},
		},
	}

	payload, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeMSM(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Satellites[0].RoughRangeRateMPS != -100 {
		t.Fatalf("got rate %d, want -100", decoded.Satellites[0].RoughRangeRateMPS)
	}
	if decoded.Signals[0].FineDoppler != -12345 {
		t.Fatalf("got doppler %d, want -12345", decoded.Signals[0].FineDoppler)
	}
}

func TestMSM1HasNoPhaserangeOrDoppler(t *testing.T) {
	header := buildMSMHeader(MsgTypeMSM1GPS, []uint{2}, []uint{1})
	msg := &MSMMessage{
		Header:     header,
		Satellites: []SatelliteCell{{ID: 2, RoughRangeMillis: 80, RoughRangeFracMillis: 2}},
		Signals:    []SignalCell{{SatelliteID: 2, SignalID: 1, FinePseudorange: 42}},
	}
	payload, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeMSM(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Signals[0].HasPhaserange {
		t.Fatal("MSM1 should not carry phaserange")
	}
	if decoded.Signals[0].FinePseudorange != 42 {
		t.Fatalf("got pseudorange %d, want 42", decoded.Signals[0].FinePseudorange)
	}
}
