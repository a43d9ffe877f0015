package timetruth

import (
	"testing"
	"time"
)

func TestFusionSingleSourcePerQuantityIsBest(t *testing.T) {
	pool := NewPool()
	obs, _ := pool.Allocate(SourceLocal, KindObservation)
	eph, _ := pool.Allocate(SourceLocal, KindEphemeris)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	obs.Publish(Snapshot{GPSTOWMillis: 123000, ObservedAt: base})
	eph.Publish(Snapshot{GPSWN: 2300, UTC: base, ObservedAt: base})

	fusion := NewFusion(pool)
	got, ok := fusion.Latest()
	if !ok {
		t.Fatal("expected a fused snapshot")
	}
	if got.Confidence != ConfidenceBest {
		t.Fatalf("got confidence %v, want Best", got.Confidence)
	}
	if got.GPSWN != 2300 || got.GPSTOWMillis != 123000 {
		t.Fatalf("got WN=%d TOW=%d, want 2300/123000", got.GPSWN, got.GPSTOWMillis)
	}
}

func TestFusionAgreeingTOWWithoutWNIsBad(t *testing.T) {
	pool := NewPool()
	local, _ := pool.Allocate(SourceLocal, KindObservation)
	remote, _ := pool.Allocate(SourceRemote, KindObservation)

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	local.Publish(Snapshot{GPSTOWMillis: 100000, ObservedAt: t0})
	remote.Publish(Snapshot{GPSTOWMillis: 100100, ObservedAt: t0.Add(time.Second)})

	fusion := NewFusion(pool)
	got, ok := fusion.Latest()
	if !ok {
		t.Fatal("expected a fused snapshot")
	}
	if got.Confidence != ConfidenceBad {
		// TOW-only, no WN: bottlenecked to Bad regardless of TOW agreement.
		t.Fatalf("got confidence %v, want Bad (TOW with no WN to anchor it)", got.Confidence)
	}
}

func TestFusionDisagreeingSourcesAreBad(t *testing.T) {
	pool := NewPool()
	local, _ := pool.Allocate(SourceLocal, KindEphemeris)
	remote, _ := pool.Allocate(SourceRemote, KindEphemeris)

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	local.Publish(Snapshot{GPSWN: 2300, UTC: t0, ObservedAt: t0})
	remote.Publish(Snapshot{GPSWN: 2301, UTC: t0.Add(time.Hour), ObservedAt: t0.Add(time.Second)})

	fusion := NewFusion(pool)
	got, ok := fusion.Latest()
	if !ok {
		t.Fatal("expected a fused snapshot")
	}
	if got.Confidence != ConfidenceBad {
		t.Fatalf("got confidence %v, want Bad", got.Confidence)
	}
}

func TestFusionSameSourceAgreementIsGoodAgainstDisagreement(t *testing.T) {
	pool := NewPool()
	remote1013, _ := pool.Allocate(SourceRemote, KindRTCM1013)
	remoteUBX, _ := pool.Allocate(SourceRemote, KindUBXLeap)
	localUBX, _ := pool.Allocate(SourceLocal, KindUBXLeap)

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	remote1013.Publish(Snapshot{LeapSeconds: 18, HasLeapSeconds: true, ObservedAt: t0})
	remoteUBX.Publish(Snapshot{LeapSeconds: 18, HasLeapSeconds: true, ObservedAt: t0.Add(time.Second)})
	localUBX.Publish(Snapshot{LeapSeconds: 16, HasLeapSeconds: true, ObservedAt: t0.Add(2 * time.Second)})

	fusion := NewFusion(pool)
	got, ok := fusion.Latest()
	if !ok {
		t.Fatal("expected a fused snapshot")
	}
	if got.Confidence != ConfidenceGood {
		t.Fatalf("got confidence %v, want Good (two remote estimators agree, local disagrees)", got.Confidence)
	}
	if got.LeapSeconds != 18 {
		t.Fatalf("got leap=%d, want 18", got.LeapSeconds)
	}
}

func TestFusionIgnoresUnfilledEstimators(t *testing.T) {
	pool := NewPool()
	pool.Allocate(SourceLocal, KindObservation)

	fusion := NewFusion(pool)
	if _, ok := fusion.Latest(); ok {
		t.Fatal("expected no usable snapshot")
	}
}

func TestPoolRejectsDoubleAllocation(t *testing.T) {
	pool := NewPool()
	if _, err := pool.Allocate(SourceLocal, KindObservation); err != nil {
		t.Fatalf("first allocation: %v", err)
	}
	if _, err := pool.Allocate(SourceLocal, KindObservation); err == nil {
		t.Fatal("expected error on double allocation")
	}
}
