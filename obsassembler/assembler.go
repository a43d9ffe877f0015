// Package obsassembler buffers per-signal observations decoded from
// RTCM legacy (1001-1012) and MSM (1071-1127) messages into complete SBP
// observation epochs, handling legacy/MSM coexistence, deduplication,
// and sequence-header fragmentation on flush.
package obsassembler

import (
	"time"

	"github.com/swift-nav/gnss-converters-go/sbp"
)

// MaxObsPerEpoch bounds the number of observations an assembler will
// buffer for a single epoch before it starts dropping the newest
// arrivals.
const MaxObsPerEpoch = 150

// MaxObsPerMessage is how many ObservationSBP records fit in one
// MSG_OBS payload: (255 max SBP payload - 7 byte header) / 18 bytes
// each, rounded down.
const MaxObsPerMessage = (255 - 7) / 18

// defaultMSMActivityTimeout is how long legacy observations stay
// suppressed after the most recent MSM observation, before legacy
// processing resumes.
const defaultMSMActivityTimeout = 10 * time.Second

// Source distinguishes which RTCM message family produced an
// observation, needed to arbitrate legacy/MSM coexistence.
type Source int

const (
	SourceLegacy Source = iota
	SourceMSM
)

// Counters accumulates the drop/suppress events this package's error
// handling design (no propagated errors, session-visible counters)
// requires.
type Counters struct {
	BufferFull       int
	Deduplicated     int
	LegacySuppressed int
}

// Assembler holds the single in-flight epoch buffer for one translator
// session. It is not safe for concurrent use; a session owns exactly
// one, mutated only by its own processing loop.
type Assembler struct {
	clock Clock

	msmActivityTimeout time.Duration
	lastMSMReceived     time.Time

	hasEpoch      bool
	stationID     uint16
	epoch         sbp.GPSTimeSBP
	bufferSource  Source
	records       []sbp.ObservationSBP
	seen          map[sbp.SignalID]bool

	emit func(msgs []*sbp.ObservationsMessage)

	Counters Counters
}

// Clock abstracts time.Now so MSM-activity-timeout behavior is
// deterministically testable, mirroring timeresolve.Clock.
type Clock interface {
	Now() time.Time
}

// New returns an empty Assembler. emit is called once per flush with
// the complete, sequence-headered set of MSG_OBS fragments for one
// epoch, in order.
func New(clock Clock, emit func(msgs []*sbp.ObservationsMessage)) *Assembler {
	return &Assembler{
		clock:               clock,
		msmActivityTimeout:  defaultMSMActivityTimeout,
		emit:                emit,
		seen:                make(map[sbp.SignalID]bool),
	}
}

// Push offers one decoded observation to the assembler. continues
// reports whether the triggering RTCM message signals more messages
// are coming for this epoch (the MSM multiple-message bit, or a
// nonzero legacy sync flag); when false, Push flushes after handling
// this record.
func (a *Assembler) Push(source Source, stationID uint16, epoch sbp.GPSTimeSBP, rec sbp.ObservationSBP, continues bool) {
	now := a.clock.Now()

	if source == SourceLegacy {
		if !a.lastMSMReceived.IsZero() && now.Sub(a.lastMSMReceived) < a.msmActivityTimeout {
			a.Counters.LegacySuppressed++
			return
		}
	} else {
		if a.hasEpoch && a.bufferSource == SourceLegacy {
			// MSM wins: an already-buffered legacy epoch is discarded
			// outright, not flushed, since it's a lower-fidelity view
			// of the same epoch MSM is about to supersede.
			a.discard()
		}
		a.lastMSMReceived = now
	}

	if !a.hasEpoch {
		a.adopt(source, stationID, epoch)
	} else if stationID != a.stationID || epoch != a.epoch {
		a.flush()
		a.adopt(source, stationID, epoch)
	}

	a.append(rec)

	if !continues {
		a.flush()
	}
}

// append applies the deduplication and buffer-full policies before
// adding rec to the current epoch buffer.
func (a *Assembler) append(rec sbp.ObservationSBP) {
	if a.seen[rec.Signal] {
		a.Counters.Deduplicated++
		return
	}
	if len(a.records) >= MaxObsPerEpoch {
		a.Counters.BufferFull++
		return
	}
	a.records = append(a.records, rec)
	a.seen[rec.Signal] = true
}

func (a *Assembler) adopt(source Source, stationID uint16, epoch sbp.GPSTimeSBP) {
	a.hasEpoch = true
	a.stationID = stationID
	a.epoch = epoch
	a.bufferSource = source
}

// discard drops the current buffer without emitting it.
func (a *Assembler) discard() {
	a.reset()
}

// Flush emits whatever is currently buffered, if anything, fragmenting
// it into MaxObsPerMessage-sized MSG_OBS messages with sequence
// headers. Callers invoke this directly on session reset or end of
// stream; Push invokes it automatically when a message signals epoch
// completeness.
func (a *Assembler) Flush() {
	a.flush()
}

func (a *Assembler) flush() {
	if !a.hasEpoch || len(a.records) == 0 {
		a.reset()
		return
	}

	total := (len(a.records) + MaxObsPerMessage - 1) / MaxObsPerMessage
	msgs := make([]*sbp.ObservationsMessage, 0, total)
	for i := 0; i < total; i++ {
		start := i * MaxObsPerMessage
		end := start + MaxObsPerMessage
		if end > len(a.records) {
			end = len(a.records)
		}
		msgs = append(msgs, &sbp.ObservationsMessage{
			Header:       a.epoch,
			NumSeq:       byte(total<<4) | byte(i),
			Observations: append([]sbp.ObservationSBP(nil), a.records[start:end]...),
		})
	}

	if a.emit != nil {
		a.emit(msgs)
	}
	a.reset()
}

func (a *Assembler) reset() {
	a.hasEpoch = false
	a.stationID = 0
	a.epoch = sbp.GPSTimeSBP{}
	a.records = nil
	a.seen = make(map[sbp.SignalID]bool)
}

// Reset drops all buffered state without emitting it, per the
// session-level reset() contract: no cancellation other than a full
// state drop.
func (a *Assembler) Reset() {
	a.reset()
	a.lastMSMReceived = time.Time{}
}
