package obsassembler

import (
	"testing"
	"time"

	"github.com/swift-nav/gnss-converters-go/sbp"
)

type fixedClock struct{ t time.Time }

func (f *fixedClock) Now() time.Time { return f.t }

func rec(sat, code uint8) sbp.ObservationSBP {
	return sbp.ObservationSBP{Signal: sbp.SignalID{SatelliteID: sat, Code: code}}
}

func TestFlushesOnMultipleMessageBitClear(t *testing.T) {
	clock := &fixedClock{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var got []*sbp.ObservationsMessage
	a := New(clock, func(msgs []*sbp.ObservationsMessage) { got = msgs })

	epoch := sbp.GPSTimeSBP{WN: 2300, TOWMillis: 100000}
	a.Push(SourceMSM, 5, epoch, rec(1, 0), true)
	if got != nil {
		t.Fatal("should not flush while continues=true")
	}
	a.Push(SourceMSM, 5, epoch, rec(2, 0), false)

	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1", len(got))
	}
	if len(got[0].Observations) != 2 {
		t.Fatalf("got %d observations, want 2", len(got[0].Observations))
	}
	if got[0].NumSeq != byte(1<<4|0) {
		t.Fatalf("got NumSeq %#x, want 0x10", got[0].NumSeq)
	}
}

func TestFlushesOnEpochChange(t *testing.T) {
	clock := &fixedClock{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var flushes int
	a := New(clock, func(msgs []*sbp.ObservationsMessage) { flushes++ })

	e1 := sbp.GPSTimeSBP{WN: 2300, TOWMillis: 100000}
	e2 := sbp.GPSTimeSBP{WN: 2300, TOWMillis: 101000}

	a.Push(SourceMSM, 5, e1, rec(1, 0), true)
	a.Push(SourceMSM, 5, e2, rec(2, 0), true)

	if flushes != 1 {
		t.Fatalf("got %d flushes, want 1 (triggered by epoch mismatch)", flushes)
	}
}

func TestDeduplicatesSameSignalWithinEpoch(t *testing.T) {
	clock := &fixedClock{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var got []*sbp.ObservationsMessage
	a := New(clock, func(msgs []*sbp.ObservationsMessage) { got = msgs })

	epoch := sbp.GPSTimeSBP{WN: 2300, TOWMillis: 100000}
	a.Push(SourceMSM, 5, epoch, rec(1, 0), true)
	a.Push(SourceMSM, 5, epoch, rec(1, 0), false) // duplicate (sat=1, code=0)

	if len(got[0].Observations) != 1 {
		t.Fatalf("got %d observations, want 1 (duplicate dropped)", len(got[0].Observations))
	}
	if a.Counters.Deduplicated != 1 {
		t.Fatalf("got Deduplicated=%d, want 1", a.Counters.Deduplicated)
	}
}

func TestBufferFullDropsNewest(t *testing.T) {
	clock := &fixedClock{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var got []*sbp.ObservationsMessage
	a := New(clock, func(msgs []*sbp.ObservationsMessage) { got = msgs })

	epoch := sbp.GPSTimeSBP{WN: 2300, TOWMillis: 100000}
	for i := 0; i < MaxObsPerEpoch; i++ {
		a.Push(SourceMSM, 5, epoch, rec(uint8(i%32), uint8(i/32)), true)
	}
	a.Push(SourceMSM, 5, epoch, rec(255, 255), false)

	total := 0
	for _, m := range got {
		total += len(m.Observations)
	}
	if total != MaxObsPerEpoch {
		t.Fatalf("got %d total observations, want %d (overflow record dropped)", total, MaxObsPerEpoch)
	}
	if a.Counters.BufferFull != 1 {
		t.Fatalf("got BufferFull=%d, want 1", a.Counters.BufferFull)
	}
}

func TestLegacySuppressedDuringMSMActivity(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fixedClock{base}
	var flushes int
	a := New(clock, func(msgs []*sbp.ObservationsMessage) { flushes++ })

	epoch := sbp.GPSTimeSBP{WN: 2300, TOWMillis: 100000}
	a.Push(SourceMSM, 5, epoch, rec(1, 0), false)
	flushes = 0

	clock.t = base.Add(2 * time.Second)
	a.Push(SourceLegacy, 5, epoch, rec(9, 0), false)

	if a.Counters.LegacySuppressed != 1 {
		t.Fatalf("got LegacySuppressed=%d, want 1", a.Counters.LegacySuppressed)
	}
	if flushes != 0 {
		t.Fatal("suppressed legacy observation should not have triggered a flush")
	}
}

func TestLegacyResumesAfterMSMActivityTimeout(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fixedClock{base}
	var got []*sbp.ObservationsMessage
	a := New(clock, func(msgs []*sbp.ObservationsMessage) { got = msgs })

	epoch := sbp.GPSTimeSBP{WN: 2300, TOWMillis: 100000}
	a.Push(SourceMSM, 5, epoch, rec(1, 0), false)

	clock.t = base.Add(defaultMSMActivityTimeout + time.Second)
	got = nil
	a.Push(SourceLegacy, 5, epoch, rec(9, 0), false)

	if len(got) != 1 || len(got[0].Observations) != 1 {
		t.Fatalf("expected legacy observation to be accepted after timeout, got %+v", got)
	}
	if a.Counters.LegacySuppressed != 0 {
		t.Fatalf("got LegacySuppressed=%d, want 0", a.Counters.LegacySuppressed)
	}
}

func TestMSMDiscardsBufferedLegacyRatherThanFlushing(t *testing.T) {
	clock := &fixedClock{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var flushes int
	a := New(clock, func(msgs []*sbp.ObservationsMessage) { flushes++ })

	epoch := sbp.GPSTimeSBP{WN: 2300, TOWMillis: 100000}
	a.Push(SourceLegacy, 5, epoch, rec(1, 0), true)
	// continues=true keeps the MSM epoch itself buffered, so any flush
	// seen here could only have come from the superseded legacy buffer.
	a.Push(SourceMSM, 5, epoch, rec(2, 0), true)

	if flushes != 0 {
		t.Fatal("legacy buffer should be discarded, not flushed, when MSM supersedes it")
	}
}

func TestResetDropsStateAndMSMTimeout(t *testing.T) {
	clock := &fixedClock{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	a := New(clock, func(msgs []*sbp.ObservationsMessage) {})

	epoch := sbp.GPSTimeSBP{WN: 2300, TOWMillis: 100000}
	a.Push(SourceMSM, 5, epoch, rec(1, 0), true)
	a.Reset()

	if a.hasEpoch {
		t.Fatal("expected hasEpoch=false after Reset")
	}
	if !a.lastMSMReceived.IsZero() {
		t.Fatal("expected lastMSMReceived cleared after Reset")
	}
}
