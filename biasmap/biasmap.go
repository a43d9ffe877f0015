// Package biasmap derives GLONASS code-phase bias values from receiver
// and antenna metadata when a session's stream carries no explicit
// message 1230, per SPEC_FULL's bias/metadata mapping component.
package biasmap

import (
	"strings"

	"github.com/swift-nav/gnss-converters-go/rtcm3"
)

// Mapper tracks the most recently seen receiver/antenna descriptors and
// the most recently seen explicit 1230 bias message, producing the
// value to use for the SBP GLONASS bias record on each epoch.
//
// There is no receiver-specific bias table in the reference corpus to
// ground non-zero defaults on, so the fallback always carries all-zero
// bias values rather than guessed per-manufacturer offsets: a wrong
// guessed bias is worse than an honestly-absent one, and zero-bias is
// what a receiver with no GLONASS code-phase correction applied would
// report. Only the aligned flag is derived from metadata: it is set for
// the receiver families in alignedReceiverPrefixes and clear otherwise.
type Mapper struct {
	receiverDescriptor string
	explicit           *rtcm3.GLONASSCodePhaseBias
}

// New returns a Mapper with no metadata observed yet.
func New() *Mapper {
	return &Mapper{}
}

// ObserveReceiverDescriptor records the receiver descriptor carried by
// message 1033 (or 1007/1008's antenna descriptor, which shares the
// text), used only to identify known-aligned receiver families.
func (m *Mapper) ObserveReceiverDescriptor(descriptor string) {
	m.receiverDescriptor = descriptor
}

// ObserveExplicitBias records a decoded message 1230; once observed, it
// takes priority over any metadata-derived default until the session
// resets.
func (m *Mapper) ObserveExplicitBias(bias *rtcm3.GLONASSCodePhaseBias) {
	m.explicit = bias
}

// Reset clears all observed metadata, per the session reset contract.
func (m *Mapper) Reset() {
	m.receiverDescriptor = ""
	m.explicit = nil
}

// Resolve returns the bias values to apply, preferring an explicit message 1230 if one has been seen, falling
// back to a metadata-derived default otherwise.
func (m *Mapper) Resolve() rtcm3.GLONASSCodePhaseBias {
	if m.explicit != nil {
		return *m.explicit
	}
	return rtcm3.GLONASSCodePhaseBias{
		AlignedWithCarrierPhase: isKnownAlignedReceiver(m.receiverDescriptor),
	}
}

// alignedReceiverPrefixes lists receiver-descriptor substrings (as
// carried by message 1033) known to align their code and carrier phase
// measurements for GLONASS by construction. Deliberately short: a
// handful of common base-station receiver families, not an exhaustive
// manufacturer survey.
var alignedReceiverPrefixes = []string{
	"TRIMBLE",
	"JAVAD",
	"SEPT", // Septentrio
}

func isKnownAlignedReceiver(descriptor string) bool {
	upper := strings.ToUpper(descriptor)
	for _, prefix := range alignedReceiverPrefixes {
		if strings.Contains(upper, prefix) {
			return true
		}
	}
	return false
}
