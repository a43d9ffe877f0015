package timeresolve

import "time"

// gpsWeekModulus is 2^10: GPS broadcasts week number truncated to 10
// bits, rolling over roughly every 19.7 years (the first rollover was in
// August 1999, the second in April 2019).
const gpsWeekModulus = 1024

// ResolveWeekNumber disambiguates a truncated 10-bit GPS week number
// against an approximate reference time, choosing whichever full week
// number both matches the truncated value mod 1024 and is closest to the
// reference. Observation epoch timestamps and ephemeris TOE timestamps
// both carry only a truncated week number on the wire, so the session's
// best current time estimate (from timetruth) is what resolves them to an
// absolute week.
func ResolveWeekNumber(truncatedWN uint16, reference time.Time) uint16 {
	refWeek := int(reference.Sub(GPSEpoch).Hours() / (24 * 7))
	refWeekMod := refWeek % gpsWeekModulus

	delta := int(truncatedWN) - refWeekMod
	// Normalize delta into (-512, 512] so the resolved week is always
	// within half a rollover cycle of the reference.
	if delta > gpsWeekModulus/2 {
		delta -= gpsWeekModulus
	} else if delta <= -gpsWeekModulus/2 {
		delta += gpsWeekModulus
	}

	resolved := refWeek + delta
	if resolved < 0 {
		resolved = 0
	}
	return uint16(resolved)
}

// GPSTimeToUTC converts a (full week number, time-of-week in ms) pair to
// UTC, applying the leap second offset active at that instant.
func GPSTimeToUTC(weekNumber uint16, towMillis uint32) time.Time {
	gpsTime := GPSEpoch.Add(time.Duration(weekNumber) * 7 * 24 * time.Hour).
		Add(time.Duration(towMillis) * time.Millisecond)
	leap := GPSUTCLeapSecondsAt(gpsTime)
	return gpsTime.Add(-time.Duration(leap) * time.Second)
}

// UTCToGPSTime is the inverse of GPSTimeToUTC.
func UTCToGPSTime(utc time.Time) (weekNumber uint16, towMillis uint32) {
	leap := GPSUTCLeapSecondsAt(utc)
	gpsTime := utc.Add(time.Duration(leap) * time.Second)
	elapsed := gpsTime.Sub(GPSEpoch)
	weeks := int64(elapsed.Hours() / (24 * 7))
	remainder := elapsed - time.Duration(weeks)*7*24*time.Hour
	return uint16(weeks), uint32(remainder.Milliseconds())
}
