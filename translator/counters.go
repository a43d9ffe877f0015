package translator

import "sync/atomic"

// Counters tallies session-level error/event kinds. None of these ever
// propagate up the decode call chain as a Go error - a malformed or
// unrecognized message is logged once (via sessionlog.Logger.WarnOnce) and
// counted here, and translation continues with the next message.
type Counters struct {
	FramingErrors          atomic.Uint64
	BitstreamOverruns      atomic.Uint64
	UnknownMessageNumbers  atomic.Uint64
	UnknownSignalCodes     atomic.Uint64
	MissingTime            atomic.Uint64
	BufferFull             atomic.Uint64
	UnmatchedSatelliteCell atomic.Uint64
	BaseObsInsanity        atomic.Uint64
	Internal               atomic.Uint64
}

// CountersSnapshot is a point-in-time copy of every counter's value, safe to log
// or export without racing the live atomics.
type CountersSnapshot struct {
	FramingErrors          uint64
	BitstreamOverruns      uint64
	UnknownMessageNumbers  uint64
	UnknownSignalCodes     uint64
	MissingTime            uint64
	BufferFull             uint64
	UnmatchedSatelliteCell uint64
	BaseObsInsanity        uint64
	Internal               uint64
}

// Snapshot returns the current value of every counter.
func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot{
		FramingErrors:          c.FramingErrors.Load(),
		BitstreamOverruns:      c.BitstreamOverruns.Load(),
		UnknownMessageNumbers:  c.UnknownMessageNumbers.Load(),
		UnknownSignalCodes:     c.UnknownSignalCodes.Load(),
		MissingTime:            c.MissingTime.Load(),
		BufferFull:             c.BufferFull.Load(),
		UnmatchedSatelliteCell: c.UnmatchedSatelliteCell.Load(),
		BaseObsInsanity:        c.BaseObsInsanity.Load(),
		Internal:               c.Internal.Load(),
	}
}
