// Package translator wires the rtcm3 and sbp wire codecs together with
// timetruth/timeresolve (time disambiguation), obsassembler (observation
// epoch batching) and biasmap (GLONASS code-phase bias resolution) into
// a bidirectional RTCM3<->SBP translation session: a single long-lived
// object constructed once per connection, fed bytes as they arrive, and
// never returning a hard error from the ingest path - malformed input is
// logged and counted (Counters), never propagated up the call chain, so
// one bad frame never stops the stream.
package translator

import (
	"time"

	"github.com/google/uuid"

	"github.com/swift-nav/gnss-converters-go/biasmap"
	"github.com/swift-nav/gnss-converters-go/config"
	"github.com/swift-nav/gnss-converters-go/obsassembler"
	"github.com/swift-nav/gnss-converters-go/rtcm3"
	"github.com/swift-nav/gnss-converters-go/sbp"
	"github.com/swift-nav/gnss-converters-go/sessionlog"
	"github.com/swift-nav/gnss-converters-go/timeresolve"
	"github.com/swift-nav/gnss-converters-go/timetruth"
)

// baseObsInsanityWindow is how far ahead of this session's own clock a
// resolved observation epoch may sit before it's reported as base-obs
// insanity: a base station whose clock has drifted or whose timestamp
// decoded to the wrong GPS week.
const baseObsInsanityWindow = 2 * time.Hour

// BaseObsInsanityReport describes one base-observation-timestamp-sanity
// failure. ID is a per-report correlation identifier, for pairing a
// report with whatever log line or alert a caller's callback emits.
type BaseObsInsanityReport struct {
	ID       string
	Delta    time.Duration
	Observed time.Time
}

// Session is one bidirectional RTCM3<->SBP translation session: the bytes
// a caller feeds via IngestRTCM/IngestSBP are decoded, translated and
// handed back out through the onRTCM/onSBP callbacks supplied to
// NewSession.
type Session struct {
	cfg config.Config
	log *sessionlog.Logger

	pool    *timetruth.Pool
	fusion  *timetruth.Fusion
	timeSvc *timeresolve.Service
	clock   timeresolve.Clock

	// ephemerisTracker votes a fused GPS week/TOE across every satellite's
	// most recently broadcast ephemeris before handleGPSEphemeris
	// publishes to the Ephemeris Time Truth estimator, so one satellite
	// rebroadcasting a stale IODE can't desync the session's time.
	ephemerisTracker *timetruth.EphemerisTracker

	// onBaseObsInsanity, if set, is called whenever a resolved
	// observation epoch sits more than baseObsInsanityWindow ahead of
	// this session's own clock. The observation is never dropped for
	// this reason - the caller decides what, if anything, to do about a
	// base station whose clock looks wrong.
	onBaseObsInsanity func(BaseObsInsanityReport)

	rtcmScanner *rtcm3.Scanner
	sbpScanner  *sbp.Scanner

	assembler  *obsassembler.Assembler
	ssrCache   *rtcm3.PairingCache
	biasMapper *biasmap.Mapper

	// glonassFCN maps a GLONASS satellite ID to its RTCM-convention FCN,
	// learned from legacy 1010/1012 observation cells (the only RTCM
	// message this codec decodes that carries an explicit FCN field - see
	// DESIGN.md's note on GenericEphemeris's opaque GLONASS body) and, on
	// the SBP side, from MSG_SV_CONFIGURATION_GLO records (IngestSBP).
	glonassFCN map[uint]int

	stationID uint16
	senderID  uint16

	// pendingObs/pendingObsHeader accumulate MSG_OBS fragments for the
	// SBP->RTCM direction until the final fragment in a sequence arrives
	// (see handleSBPObservations).
	pendingObs       []sbp.ObservationSBP
	pendingObsHeader sbp.GPSTimeSBP

	Counters Counters

	onRTCMFrame func(frame []byte)
	onSBPFrame  func(frame []byte)
}

// NewSession returns a Session configured from cfg. onRTCMFrame is called
// with complete, framed RTCM3 messages produced by IngestSBP;
// onSBPFrame is called with complete, framed SBP messages produced by
// IngestRTCM.
func NewSession(cfg config.Config, log *sessionlog.Logger, clock timeresolve.Clock, onRTCMFrame, onSBPFrame func(frame []byte)) *Session {
	if clock == nil {
		clock = timeresolve.SystemClock{}
	}
	pool := timetruth.NewPool()
	for _, source := range cfg.TimeTruthSources() {
		for _, kind := range []timetruth.Kind{timetruth.KindObservation, timetruth.KindEphemeris, timetruth.KindRTCM1013, timetruth.KindUBXLeap} {
			pool.Allocate(source, kind)
		}
	}
	fusion := timetruth.NewFusion(pool)

	if cfg.UserGPSTime != nil {
		if e, ok := pool.Get(timetruth.SourceLocal, timetruth.KindObservation); ok {
			e.Publish(timetruth.Snapshot{
				Confidence: timetruth.ConfidenceBest,
				UTC:        *cfg.UserGPSTime,
				ObservedAt: *cfg.UserGPSTime,
			})
		}
	}

	timeSvc := timeresolve.NewService(fusion, clock, timeresolve.Options{
		UserTime:         cfg.UserGPSTime,
		UserLeapSeconds:  cfg.UserLeapSeconds,
		GPSWeekReference: cfg.GPSWeekReference,
		UnixTimeFunc:     cfg.UnixTimeFunc,
	})

	s := &Session{
		cfg:              cfg,
		log:              log,
		pool:             pool,
		fusion:           fusion,
		timeSvc:          timeSvc,
		clock:            clock,
		ephemerisTracker: timetruth.NewEphemerisTracker(),
		rtcmScanner:      rtcm3.NewScanner(),
		sbpScanner:       sbp.NewScanner(),
		ssrCache:         rtcm3.NewPairingCache(),
		biasMapper:       biasmap.New(),
		glonassFCN:       make(map[uint]int),
		senderID:         sbp.DefaultSenderID,
		onRTCMFrame:      onRTCMFrame,
		onSBPFrame:       onSBPFrame,
	}
	s.assembler = obsassembler.New(clockAdapter{clock}, s.emitObservations)
	return s
}

// OnBaseObsInsanity registers cb to be called whenever a resolved
// observation epoch looks insane relative to this session's own clock
// (see baseObsInsanityWindow). Passing nil disables reporting.
func (s *Session) OnBaseObsInsanity(cb func(BaseObsInsanityReport)) {
	s.onBaseObsInsanity = cb
}

// PublishUBXLeapSecond records a leap-second count observed from a UBX
// receiver message, feeding the named but otherwise-unreachable
// KindUBXLeap Time Truth evidence source. source distinguishes a
// locally-attached receiver from one relayed by the remote base.
func (s *Session) PublishUBXLeapSecond(source timetruth.Source, leapSeconds int, observedAt time.Time) {
	e, ok := s.pool.Get(source, timetruth.KindUBXLeap)
	if !ok {
		return
	}
	e.Publish(timetruth.Snapshot{
		Confidence:     timetruth.ConfidenceGood,
		LeapSeconds:    leapSeconds,
		HasLeapSeconds: true,
		ObservedAt:     observedAt,
	})
}

// clockAdapter satisfies obsassembler.Clock using a timeresolve.Clock,
// the two packages' otherwise-identical single-method interfaces kept
// separate so each package has no import-time dependency on the other.
type clockAdapter struct {
	clock timeresolve.Clock
}

func (c clockAdapter) Now() time.Time { return c.clock.Now() }

// Reset clears every piece of per-connection mutable state (scanners,
// observation assembler, SSR pairing cache, bias mapper, FCN table) back
// to a blank session, for use on reconnect. Time Truth estimators are
// intentionally left alone - they represent evidence about
// the outside world, not connection-local state, so a reconnect shouldn't
// discard a perfectly good time fix.
func (s *Session) Reset() {
	s.rtcmScanner = rtcm3.NewScanner()
	s.sbpScanner = sbp.NewScanner()
	s.assembler.Reset()
	s.ssrCache = rtcm3.NewPairingCache()
	s.biasMapper.Reset()
	s.glonassFCN = make(map[uint]int)
	s.pendingObs = nil
	s.pendingObsHeader = sbp.GPSTimeSBP{}
}

func (s *Session) warn(kind, format string, args ...interface{}) {
	if s.log != nil {
		s.log.WarnOnce(kind, format, args...)
	}
}

func (s *Session) emitSBP(messageType uint16, payload []byte) {
	if s.onSBPFrame == nil {
		return
	}
	s.onSBPFrame(sbp.Encode(messageType, s.senderID, payload))
}

// checkBaseObsInsanity reports, but never drops, an observation epoch
// that resolved to more than baseObsInsanityWindow ahead of this
// session's own clock.
func (s *Session) checkBaseObsInsanity(resolved time.Time) {
	delta := resolved.Sub(s.clock.Now())
	if delta <= baseObsInsanityWindow {
		return
	}
	s.Counters.BaseObsInsanity.Add(1)
	if s.onBaseObsInsanity != nil {
		s.onBaseObsInsanity(BaseObsInsanityReport{
			ID:       uuid.New().String(),
			Delta:    delta,
			Observed: resolved,
		})
	}
}

func (s *Session) emitObservations(msgs []*sbp.ObservationsMessage) {
	for _, m := range msgs {
		s.emitSBP(sbp.MsgObs, m.Encode())
	}
}
