package timetruth

import "fmt"

// Kind identifies which specific estimator within a pool is being
// registered, mirroring time_truth_v2.h's separate
// ObservationTimeEstimatorState / EphemerisTimeEstimatorState /
// Rtcm1013TimeEstimatorState / UbxLeapTimeEstimatorState types.
type Kind int

const (
	KindObservation Kind = iota
	KindEphemeris
	KindRTCM1013
	KindUBXLeap
)

// Pool owns one Estimator per (Source, Kind) pair. A given slot can only
// be allocated once - time_truth_v2.h's estimator state types are
// fixed-size arrays sized at startup, and double-allocating a slot is a
// programming error in the original design that this mirrors by
// returning an error rather than silently overwriting.
type Pool struct {
	estimators map[key]*Estimator
}

type key struct {
	source Source
	kind   Kind
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{estimators: make(map[key]*Estimator)}
}

// Allocate creates and registers a new Estimator for the given source and
// kind. It returns an error if that slot was already allocated.
func (p *Pool) Allocate(source Source, kind Kind) (*Estimator, error) {
	k := key{source, kind}
	if _, exists := p.estimators[k]; exists {
		return nil, fmt.Errorf("timetruth: estimator slot (%v, %v) already allocated", source, kind)
	}
	e := NewEstimator(source)
	p.estimators[k] = e
	return e, nil
}

// Get returns the estimator for the given source and kind, if allocated.
func (p *Pool) Get(source Source, kind Kind) (*Estimator, bool) {
	e, ok := p.estimators[key{source, kind}]
	return e, ok
}

// All returns every allocated estimator, in no particular order.
func (p *Pool) All() []*Estimator {
	all := make([]*Estimator, 0, len(p.estimators))
	for _, e := range p.estimators {
		all = append(all, e)
	}
	return all
}
