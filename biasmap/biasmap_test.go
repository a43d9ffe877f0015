package biasmap

import (
	"testing"

	"github.com/swift-nav/gnss-converters-go/rtcm3"
)

func TestResolvePrefersExplicitBias(t *testing.T) {
	m := New()
	m.ObserveReceiverDescriptor("TRIMBLE NETR9")
	m.ObserveExplicitBias(&rtcm3.GLONASSCodePhaseBias{L1CABias: 42})

	got := m.Resolve()
	if got.L1CABias != 42 {
		t.Fatalf("got L1CABias=%d, want 42 (explicit should win over metadata default)", got.L1CABias)
	}
}

func TestResolveFallsBackToKnownAlignedReceiver(t *testing.T) {
	m := New()
	m.ObserveReceiverDescriptor("JAVAD TRE_G3TH DELTA")

	got := m.Resolve()
	if !got.AlignedWithCarrierPhase {
		t.Fatal("expected AlignedWithCarrierPhase=true for a known-aligned receiver")
	}
	if got.L1CABias != 0 {
		t.Fatalf("got L1CABias=%d, want 0 (no explicit bias observed)", got.L1CABias)
	}
}

func TestResolveDefaultsToUnalignedForUnknownReceiver(t *testing.T) {
	m := New()
	m.ObserveReceiverDescriptor("SOME UNKNOWN RECEIVER")

	got := m.Resolve()
	if got.AlignedWithCarrierPhase {
		t.Fatal("expected AlignedWithCarrierPhase=false for an unrecognized receiver")
	}
}

func TestResetClearsObservedMetadata(t *testing.T) {
	m := New()
	m.ObserveReceiverDescriptor("TRIMBLE NETR9")
	m.ObserveExplicitBias(&rtcm3.GLONASSCodePhaseBias{L1CABias: 42})
	m.Reset()

	got := m.Resolve()
	if got.L1CABias != 0 || got.AlignedWithCarrierPhase {
		t.Fatalf("expected zero-value bias after Reset, got %+v", got)
	}
}
