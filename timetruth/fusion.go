package timetruth

import "time"

// Agreement tolerances: two independent candidates for the same quantity
// are treated as agreeing if they fall within this distance of each
// other. Week numbers must match exactly; time-of-week and leap seconds
// allow slack for the jitter between each estimator's own observation
// instant and the instant fusion runs.
const (
	towAgreementMillis   int64 = 250
	leapAgreementSeconds int64 = 1
)

// Fusion reduces every estimator in a Pool to a single current-time
// snapshot. Week number, time-of-week and leap seconds are resolved as
// three independent quantities: each one's value and confidence come
// from comparing every estimator that speaks to it, not from whichever
// single estimator happens to carry the highest confidence tag. A
// quantity is BEST when only one source offers it, or when every source
// offering it agrees; GOOD when estimators sharing one source agree but
// a different source disagrees; BAD when sources disagree outright.
type Fusion struct {
	pool *Pool
}

// NewFusion returns a Fusion over pool.
func NewFusion(pool *Pool) *Fusion {
	return &Fusion{pool: pool}
}

// candidate is one estimator's contribution to a single quantity's
// fusion: key is that quantity reduced to a comparable integer axis
// (TOW in ms, WN as-is, leap seconds as-is).
type candidate struct {
	source Source
	snap   Snapshot
	key    int64
}

func (f *Fusion) candidatesFrom(kind Kind, extract func(Snapshot) (int64, bool)) []candidate {
	var out []candidate
	for _, source := range []Source{SourceLocal, SourceRemote} {
		e, ok := f.pool.Get(source, kind)
		if !ok {
			continue
		}
		snap, ok := e.Latest()
		if !ok {
			continue
		}
		key, ok := extract(snap)
		if !ok {
			continue
		}
		out = append(out, candidate{source: source, snap: snap, key: key})
	}
	return out
}

// fuse picks as the tentative value the candidate that the most
// candidates agree with (the most recently observed one among equally
// supported candidates), then classifies confidence by how the rest
// agree with it: BEST when all agree, GOOD when another candidate from
// the winner's source agrees with it, BAD otherwise.
func fuse(cands []candidate, tolerance int64) (candidate, Confidence, bool) {
	if len(cands) == 0 {
		return candidate{}, ConfidenceNone, false
	}

	support := func(w candidate) int {
		n := 0
		for _, c := range cands {
			if abs64(c.key-w.key) <= tolerance {
				n++
			}
		}
		return n
	}
	winner, winnerIdx := cands[0], 0
	for i, c := range cands[1:] {
		n, best := support(c), support(winner)
		if n > best || (n == best && c.snap.ObservedAt.After(winner.snap.ObservedAt)) {
			winner, winnerIdx = c, i+1
		}
	}
	if len(cands) == 1 {
		return winner, ConfidenceBest, true
	}

	allAgree, sameSourceAgree := true, false
	for i, c := range cands {
		if abs64(c.key-winner.key) > tolerance {
			allAgree = false
		} else if i != winnerIdx && c.source == winner.source {
			sameSourceAgree = true
		}
	}

	switch {
	case allAgree:
		return winner, ConfidenceBest, true
	case sameSourceAgree:
		return winner, ConfidenceGood, true
	default:
		return winner, ConfidenceBad, true
	}
}

func minConfidence(a, b Confidence) Confidence {
	if b < a {
		return b
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Latest returns the best available time snapshot fused across every
// estimator in the pool, and false if no quantity could be resolved at
// all.
func (f *Fusion) Latest() (Snapshot, bool) {
	towCands := f.candidatesFrom(KindObservation, func(s Snapshot) (int64, bool) {
		return int64(s.GPSTOWMillis), true
	})
	towWinner, towConfidence, towOK := fuse(towCands, towAgreementMillis)

	wnCands := f.candidatesFrom(KindEphemeris, func(s Snapshot) (int64, bool) {
		return int64(s.GPSWN), true
	})
	wnWinner, wnConfidence, wnOK := fuse(wnCands, 0)

	leapExtract := func(s Snapshot) (int64, bool) {
		if !s.HasLeapSeconds {
			return 0, false
		}
		return int64(s.LeapSeconds), true
	}
	leapCands := append(f.candidatesFrom(KindRTCM1013, leapExtract), f.candidatesFrom(KindUBXLeap, leapExtract)...)
	leapWinner, leapConfidence, leapOK := fuse(leapCands, leapAgreementSeconds)

	if !towOK && !wnOK && !leapOK {
		return Snapshot{}, false
	}

	var out Snapshot
	var observedAt time.Time
	confidence := ConfidenceBest

	switch {
	case towOK && wnOK:
		out.GPSTOWMillis = towWinner.snap.GPSTOWMillis
		out.GPSWN = wnWinner.snap.GPSWN
		// The WN-bearing estimator (ephemeris) is the one that
		// actually resolved a full UTC instant; the TOW-only estimator
		// only ever narrows time-of-week within whatever week fusion
		// settles on.
		out.UTC = wnWinner.snap.UTC
		confidence = minConfidence(towConfidence, wnConfidence)
		observedAt = latestOf(towWinner.snap.ObservedAt, wnWinner.snap.ObservedAt)
	case towOK:
		// A time-of-week with no week to anchor it is unusable for
		// anything that needs an absolute instant; still report it so
		// callers fall back further down their own priority chain.
		out.GPSTOWMillis = towWinner.snap.GPSTOWMillis
		out.UTC = towWinner.snap.UTC
		confidence = ConfidenceBad
		observedAt = towWinner.snap.ObservedAt
	case wnOK:
		out.GPSWN = wnWinner.snap.GPSWN
		out.UTC = wnWinner.snap.UTC
		confidence = wnConfidence
		observedAt = wnWinner.snap.ObservedAt
	default:
		confidence = ConfidenceNone
	}

	if leapOK {
		out.LeapSeconds = leapWinner.snap.LeapSeconds
		out.HasLeapSeconds = true
		if towOK || wnOK {
			confidence = minConfidence(confidence, leapConfidence)
		} else {
			confidence = leapConfidence
		}
		observedAt = latestOf(observedAt, leapWinner.snap.ObservedAt)
	}

	out.Confidence = confidence
	out.ObservedAt = observedAt
	return out, true
}

func latestOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// Age returns how long ago the given snapshot was published, relative to
// now.
func Age(snap Snapshot, now time.Time) time.Duration {
	return now.Sub(snap.ObservedAt)
}
