package translator

import (
	"math"
	"testing"

	"github.com/swift-nav/gnss-converters-go/rtcm3"
)

func TestConvertMSMSignalPseudorangeOnly(t *testing.T) {
	header := &rtcm3.MSMHeader{Constellation: rtcm3.ConstellationGPS}
	sat := rtcm3.SatelliteCell{ID: 5, RoughRangeMillis: 70, RoughRangeFracMillis: 512}
	sig := rtcm3.SignalCell{SatelliteID: 5, SignalID: 2, FinePseudorange: 1000, CNR: 45}

	obs, ok := convertMSMSignal(header, 4, sat, sig, rtcm3.GLOFCNUnknown)
	if !ok {
		t.Fatal("expected a known signal code")
	}
	if obs.Flags&flagPseudorangeValid == 0 {
		t.Fatal("expected pseudorange-valid flag set")
	}
	if obs.Flags&flagPhaseValid != 0 {
		t.Fatal("expected no phase without HasPhaserange")
	}
	wantRoughMS := 70 + 512.0/1024
	wantM := (wantRoughMS + 1000*finePseudorangeScale) * rangeMSToMeters
	wantPR := uint32(math.Round(wantM / 0.02))
	if obs.Pseudorange != wantPR {
		t.Fatalf("Pseudorange = %d, want %d", obs.Pseudorange, wantPR)
	}
}

func TestConvertMSMSignalUnknownCodeDropped(t *testing.T) {
	header := &rtcm3.MSMHeader{Constellation: rtcm3.ConstellationGPS}
	sat := rtcm3.SatelliteCell{ID: 5}
	sig := rtcm3.SignalCell{SatelliteID: 5, SignalID: 99}

	if _, ok := convertMSMSignal(header, 4, sat, sig, rtcm3.GLOFCNUnknown); ok {
		t.Fatal("expected unknown MSM signal ID to be rejected")
	}
}

func TestConvertMSMSignalGLONASSUnresolvedFCNSkipsPhase(t *testing.T) {
	header := &rtcm3.MSMHeader{Constellation: rtcm3.ConstellationGLONASS}
	sat := rtcm3.SatelliteCell{ID: 3, RoughRangeMillis: 1}
	sig := rtcm3.SignalCell{SatelliteID: 3, SignalID: 2, HasPhaserange: true, FinePhaserange: 500}

	obs, ok := convertMSMSignal(header, 4, sat, sig, rtcm3.GLOFCNUnknown)
	if !ok {
		t.Fatal("expected a known signal code")
	}
	if obs.Flags&flagPhaseValid != 0 {
		t.Fatal("expected phase to be dropped without a resolvable GLONASS FCN")
	}
}

func TestCnrRoundTripsWithinOneLSB(t *testing.T) {
	for _, extended := range []bool{false, true} {
		// One SBP LSB (0.25 dB-Hz) spans 4 extended raw units (2^-4 dB-Hz),
		// so an extended value can come back up to 3 raw units off.
		maxDiff := 1
		if extended {
			maxDiff = 3
		}
		for raw := uint(0); raw < 64; raw++ {
			sbpVal := cnrToSBP(raw, extended)
			back := cnrFromSBP(sbpVal, extended)
			if diff := int(back) - int(raw); diff > maxDiff || diff < -maxDiff {
				t.Fatalf("extended=%v raw=%d round-tripped to %d", extended, raw, back)
			}
		}
	}
}

func TestConvertLegacyCellL1Only(t *testing.T) {
	msg := &rtcm3.LegacyObservation{Constellation: rtcm3.ConstellationGPS, MessageType: rtcm3.MsgType1002}
	cell := rtcm3.LegacyCell{
		SatelliteID:   7,
		L1Pseudorange: 500000,
		L1Ambiguity:   1,
		L1CNR:         180,
		L1LockTime:    5,
	}

	obs := convertLegacyCell(msg, cell, rtcm3.GLOFCNUnknown)
	if len(obs) != 1 {
		t.Fatalf("got %d observations, want 1 (no L2 data)", len(obs))
	}
	if obs[0].Signal.SatelliteID != 7 {
		t.Fatalf("SatelliteID = %d, want 7", obs[0].Signal.SatelliteID)
	}
	wantM := float64(cell.L1Pseudorange)*legacyPRScale + float64(cell.L1Ambiguity)*rtcm3.PRUnitGPS
	wantPR := uint32(math.Round(wantM / 0.02))
	if obs[0].Pseudorange != wantPR {
		t.Fatalf("Pseudorange = %d, want %d", obs[0].Pseudorange, wantPR)
	}
}

func TestConvertLegacyCellWithL2(t *testing.T) {
	msg := &rtcm3.LegacyObservation{Constellation: rtcm3.ConstellationGPS, MessageType: rtcm3.MsgType1004}
	cell := rtcm3.LegacyCell{
		SatelliteID:       9,
		L1Pseudorange:     400000,
		HasL2:             true,
		L2PseudorangeDiff: 100,
		L2CNR:             150,
	}

	obs := convertLegacyCell(msg, cell, rtcm3.GLOFCNUnknown)
	if len(obs) != 2 {
		t.Fatalf("got %d observations, want 2 (L1+L2)", len(obs))
	}
}

func TestClampLockTimeCompressesExtendedRange(t *testing.T) {
	if got := clampLockTime(5, false); got != 5 {
		t.Fatalf("non-extended clampLockTime(5) = %d, want 5", got)
	}
	if got := clampLockTime(1023, true); got > 15 {
		t.Fatalf("extended clampLockTime(1023) = %d, want <= 15", got)
	}
}
