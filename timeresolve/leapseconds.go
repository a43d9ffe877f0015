package timeresolve

import "time"

// GPSEpoch is the origin of GPS time: 1980-01-06 00:00:00 UTC.
var GPSEpoch = time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)

// leapSecondEvent records a UTC instant after which GPS-UTC leap seconds
// changed to the given value. The table below is the built-in immutable
// history. Service.LeapSeconds decides which source wins: a user value
// first, then a table lookup while a unix-clock time is available and
// before leapTableExpiry, then a count from Time Truth fusion (RTCM 1013
// or UBX), and the table's last value when none of those applies.
type leapSecondEvent struct {
	effective time.Time
	gpsUTCLeapSeconds int
}

var leapSecondHistory = []leapSecondEvent{
	{time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC), 0},
	{time.Date(1981, 7, 1, 0, 0, 0, 0, time.UTC), 1},
	{time.Date(1982, 7, 1, 0, 0, 0, 0, time.UTC), 2},
	{time.Date(1983, 7, 1, 0, 0, 0, 0, time.UTC), 3},
	{time.Date(1985, 7, 1, 0, 0, 0, 0, time.UTC), 4},
	{time.Date(1988, 1, 1, 0, 0, 0, 0, time.UTC), 5},
	{time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 6},
	{time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), 7},
	{time.Date(1992, 7, 1, 0, 0, 0, 0, time.UTC), 8},
	{time.Date(1993, 7, 1, 0, 0, 0, 0, time.UTC), 9},
	{time.Date(1994, 7, 1, 0, 0, 0, 0, time.UTC), 10},
	{time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), 11},
	{time.Date(1997, 7, 1, 0, 0, 0, 0, time.UTC), 12},
	{time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), 13},
	{time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC), 14},
	{time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC), 15},
	{time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC), 16},
	{time.Date(2015, 7, 1, 0, 0, 0, 0, time.UTC), 17},
	{time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), 18},
}

// GPSUTCLeapSecondsAt returns the number of leap seconds GPS time was
// ahead of UTC at the given UTC instant, per the built-in history table.
func GPSUTCLeapSecondsAt(utc time.Time) int {
	leap := 0
	for _, ev := range leapSecondHistory {
		if utc.Before(ev.effective) {
			break
		}
		leap = ev.gpsUTCLeapSeconds
	}
	return leap
}

// CurrentGPSUTCLeapSeconds returns the most recent entry in the built-in
// table, used as a fallback when no RTCM 1013 message has been seen.
func CurrentGPSUTCLeapSeconds() int {
	return leapSecondHistory[len(leapSecondHistory)-1].gpsUTCLeapSeconds
}
