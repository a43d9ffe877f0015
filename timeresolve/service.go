package timeresolve

import (
	"time"

	"github.com/swift-nav/gnss-converters-go/timetruth"
)

// leapTableExpiry bounds how far the built-in leap-second history
// (leapseconds.go) can be trusted to still be current. Past this
// instant, the unix-clock time source prefers whatever RTCM 1013 (or
// another Time Truth estimator) reports over the table's frozen tail
// value, since a constant baked into this binary can't know about a
// leap second inserted after it was built.
var leapTableExpiry = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// Options configures the non-wire-derived time sources a Service
// consults ahead of Time Truth fusion, in priority order: UserTime
// overrides everything; UnixTimeFunc is consulted next; UserLeapSeconds
// overrides the leap-second count the same way UserTime overrides the
// GPS time; GPSWeekReference seeds a cold start with no other evidence
// at all.
type Options struct {
	// UserTime, if set, is returned by reference() unconditionally.
	UserTime *time.Time

	// UserLeapSeconds, if set, is returned by LeapSeconds()
	// unconditionally.
	UserLeapSeconds *int

	// GPSWeekReference seeds reference() when neither UserTime,
	// UnixTimeFunc nor fusion has anything published yet, so a cold
	// start still disambiguates rollovers against something more
	// specific than the wall clock.
	GPSWeekReference uint16

	// UnixTimeFunc, if set, is polled for a unix-epoch second count each
	// time reference() is resolved; ok false means the source currently
	// has nothing (e.g. not yet synced), and resolution falls through to
	// Time Truth fusion. A value before GPSEpoch (such as GPSEpoch - 1 s)
	// is treated the same as ok false; GPSEpoch itself is accepted.
	UnixTimeFunc func() (int64, bool)
}

// Service resolves the truncated, constellation-specific timestamps
// carried on the RTCM wire into absolute UTC, backed by a timetruth.Fusion
// for its reference time. Rather than tracking a running "previous
// timestamp" per constellation and detecting rollover by comparison,
// this package resolves each timestamp independently against whatever
// the current best time estimate is, which is what lets ResolveWeekNumber
// reproduce a rollover correctly from a cold start rather than needing to
// have observed the message just before the rollover.
//
// Service additionally caches the last resolution result for one frame
// (the "one-frame cache") so that a batch of messages sharing one epoch
// timestamp - the common case for an MSM sequence - all resolve against
// the same reference time instead of re-resolving once per message.
type Service struct {
	fusion *timetruth.Fusion
	clock  Clock

	userTime         *time.Time
	userLeapSeconds  *int
	gpsWeekReference uint16
	unixTimeFunc     func() (int64, bool)

	cachedReference time.Time
	cacheValid      bool
}

// NewService returns a Service that resolves times against opts' sources
// in priority order, falling back to fusion's current best estimate and
// finally clock.Now() if nothing else is available.
func NewService(fusion *timetruth.Fusion, clock Clock, opts Options) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{
		fusion:           fusion,
		clock:            clock,
		userTime:         opts.UserTime,
		userLeapSeconds:  opts.UserLeapSeconds,
		gpsWeekReference: opts.GPSWeekReference,
		unixTimeFunc:     opts.UnixTimeFunc,
	}
}

// reference returns the timetruth snapshot to disambiguate rollovers
// against, using the one-frame cache if InvalidateCache hasn't been
// called since the last resolution.
func (s *Service) reference() time.Time {
	if s.cacheValid {
		return s.cachedReference
	}
	ref := s.resolveReference()
	s.cachedReference = ref
	s.cacheValid = true
	return ref
}

func (s *Service) resolveReference() time.Time {
	if s.userTime != nil {
		return *s.userTime
	}
	if s.unixTimeFunc != nil {
		if sec, ok := s.unixTimeFunc(); ok && sec >= GPSEpoch.Unix() {
			return time.Unix(sec, 0).UTC()
		}
	}
	if snap, ok := s.fusion.Latest(); ok {
		return snap.UTC
	}
	if s.gpsWeekReference != 0 {
		return GPSTimeToUTC(s.gpsWeekReference, 0)
	}
	return s.clock.Now()
}

// LeapSeconds returns the current GPS-UTC leap second count, following
// the same override chain as reference(): a user-supplied value wins
// outright; otherwise the unix-clock time source's built-in-table lookup
// applies as long as the table is still within its validity window;
// otherwise whatever Time Truth fusion has (RTCM 1013, UBX) is used;
// failing all of that, the built-in table's frozen tail value.
func (s *Service) LeapSeconds() int {
	if s.userLeapSeconds != nil {
		return *s.userLeapSeconds
	}
	if s.unixTimeFunc != nil {
		if sec, ok := s.unixTimeFunc(); ok && sec >= GPSEpoch.Unix() {
			if ref := s.reference(); ref.Before(leapTableExpiry) {
				return GPSUTCLeapSecondsAt(ref)
			}
		}
	}
	if snap, ok := s.fusion.Latest(); ok && snap.HasLeapSeconds {
		return snap.LeapSeconds
	}
	return CurrentGPSUTCLeapSeconds()
}

// InvalidateCache drops the one-frame reference-time cache. Call this
// once per incoming frame, before resolving any of its timestamps.
func (s *Service) InvalidateCache() {
	s.cacheValid = false
}

// ResolveGPSTime resolves a GPS/Galileo/QZSS epoch timestamp (truncated
// week number implied by context, time-of-week in ms) to UTC.
func (s *Service) ResolveGPSTime(towMillis uint32) (time.Time, uint16) {
	ref := s.reference()
	refWeek, _ := UTCToGPSTime(ref)
	utc := GPSTimeToUTC(refWeek, towMillis)

	// If resolving against refWeek put us more than half a week away from
	// the reference, the TOW has wrapped across a week boundary; nudge
	// the week by one in the direction that brings it closest.
	if utc.Sub(ref) > 84*time.Hour {
		utc = GPSTimeToUTC(refWeek-1, towMillis)
		refWeek--
	} else if ref.Sub(utc) > 84*time.Hour {
		utc = GPSTimeToUTC(refWeek+1, towMillis)
		refWeek++
	}
	return utc, refWeek
}

// ResolveBeiDouTime resolves a BeiDou epoch timestamp (BDT, which runs
// BDSSecondToGPSSecond=14s behind GPS time) to UTC.
func (s *Service) ResolveBeiDouTime(towMillis uint32) time.Time {
	utc, _ := s.ResolveGPSTime(towMillis)
	return utc.Add(14 * time.Second)
}

// ResolveGLONASSTime resolves a GLONASS epoch timestamp, which is encoded
// as (day-of-week, milliseconds since midnight Moscow time) rather than a
// GPS-style week/TOW pair, to UTC. dayOfWeek follows RTCM's convention
// (0 = Sunday).
func (s *Service) ResolveGLONASSTime(dayOfWeek int, msSinceMidnightMoscow uint32) time.Time {
	ref := s.reference()
	moscow := time.FixedZone("MSK", 3*3600)
	refMoscow := ref.In(moscow)

	// Find the most recent occurrence of dayOfWeek at-or-before refMoscow.
	daysBack := (int(refMoscow.Weekday()) - dayOfWeek + 7) % 7
	candidateDay := time.Date(refMoscow.Year(), refMoscow.Month(), refMoscow.Day(), 0, 0, 0, 0, moscow).
		AddDate(0, 0, -daysBack)

	result := candidateDay.Add(time.Duration(msSinceMidnightMoscow) * time.Millisecond)

	// If that lands more than half a week from the reference, it's
	// actually the occurrence a week later (or earlier).
	if result.Sub(refMoscow) > 84*time.Hour {
		result = result.AddDate(0, 0, -7)
	} else if refMoscow.Sub(result) > 84*time.Hour {
		result = result.AddDate(0, 0, 7)
	}
	return result.UTC()
}
