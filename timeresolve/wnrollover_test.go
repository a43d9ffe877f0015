package timeresolve

import (
	"testing"
	"time"
)

func TestResolveWeekNumberSameEpoch(t *testing.T) {
	ref := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	refWeek, _ := UTCToGPSTime(ref)
	truncated := uint16(int(refWeek) % gpsWeekModulus)

	got := ResolveWeekNumber(truncated, ref)
	if got != refWeek {
		t.Fatalf("got week %d, want %d", got, refWeek)
	}
}

func TestResolveWeekNumberAcrossRollover(t *testing.T) {
	// The second GPS week rollover occurred 2019-04-06, full week 2048,
	// truncated to 0. A reference a few weeks after that should still
	// resolve truncated week 0 to full week 2048, not 0 or 1024.
	ref := time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)
	got := ResolveWeekNumber(0, ref)
	if got != 2048 {
		t.Fatalf("got week %d, want 2048", got)
	}
}

func TestResolveWeekNumberJustBeforeRollover(t *testing.T) {
	// Shortly before the 2019 rollover, truncated week 1023 should
	// resolve to full week 2047, the week just before the rollover.
	ref := time.Date(2019, 3, 20, 0, 0, 0, 0, time.UTC)
	got := ResolveWeekNumber(1023, ref)
	if got != 2047 {
		t.Fatalf("got week %d, want 2047", got)
	}
}

func TestGPSTimeToUTCAndBackRoundTrip(t *testing.T) {
	wn := uint16(2300)
	tow := uint32(123456)
	utc := GPSTimeToUTC(wn, tow)

	gotWN, gotTOW := UTCToGPSTime(utc)
	if gotWN != wn || gotTOW != tow {
		t.Fatalf("round trip mismatch: got (%d, %d), want (%d, %d)", gotWN, gotTOW, wn, tow)
	}
}

func TestGPSTimeToUTCAppliesLeapSeconds(t *testing.T) {
	// At week 0 (1980) there were no leap seconds yet, so GPS and UTC
	// coincide at the epoch.
	utc := GPSTimeToUTC(0, 0)
	if !utc.Equal(GPSEpoch) {
		t.Fatalf("got %v, want %v", utc, GPSEpoch)
	}

	// Well after 2017, GPS is 18s ahead of UTC.
	later := GPSTimeToUTC(2000, 0)
	gpsTime := GPSEpoch.Add(2000 * 7 * 24 * time.Hour)
	wantUTC := gpsTime.Add(-18 * time.Second)
	if !later.Equal(wantUTC) {
		t.Fatalf("got %v, want %v", later, wantUTC)
	}
}
