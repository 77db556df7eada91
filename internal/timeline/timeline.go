// Package timeline tracks per-contractor, per-worker-type capacity
// availability over time during one schedule simulation. A Timeline is the
// simulation's only mutable state: it is created fresh for each chromosome,
// owned exclusively by that evaluation, and discarded afterwards.
package timeline

import (
	"slices"
	"sort"

	"github.com/me/goplan/pkg/model"
)

// event is one step of a capacity curve: at time `at`, free capacity changes
// by `delta`. A reservation contributes a negative delta at its start and
// the matching positive delta at its finish.
type event struct {
	at    model.Time
	delta int
}

// series is the free-capacity curve of one (contractor, worker type) pair.
// Events are kept sorted by time; free capacity at time t is the base
// capacity plus the sum of all deltas at or before t.
type series struct {
	capacity int
	events   []event
}

// add inserts a delta at the given instant, merging with an existing event
// at the same time. Insertion position is found by binary search so the
// slice stays ordered.
func (s *series) add(at model.Time, delta int) {
	i := sort.Search(len(s.events), func(i int) bool { return s.events[i].at >= at })
	if i < len(s.events) && s.events[i].at == at {
		s.events[i].delta += delta
		if s.events[i].delta == 0 {
			s.events = slices.Delete(s.events, i, i+1)
		}
		return
	}
	s.events = slices.Insert(s.events, i, event{at: at, delta: delta})
}

// minFree returns the minimum free capacity over the half-open window
// [t0, t1).
func (s *series) minFree(t0, t1 model.Time) int {
	free := s.capacity
	i := 0
	for ; i < len(s.events) && s.events[i].at <= t0; i++ {
		free += s.events[i].delta
	}
	min := free
	for ; i < len(s.events) && s.events[i].at < t1; i++ {
		free += s.events[i].delta
		if free < min {
			min = free
		}
	}
	return min
}

// Segment is one contiguous demand interval of an earliest-fit query,
// expressed relative to the window start. A single work is one segment at
// offset zero; an inseparable chain is one segment per member, back to
// back. Demand is indexed by worker type; zero entries carry no constraint.
type Segment struct {
	Offset   model.Time
	Duration model.Time
	Demand   []int
}

// Timeline is the mutable capacity record for every (contractor, worker
// type) pair. Capacity is only ever consumed through Reserve; nothing is
// un-reserved within one evaluation.
type Timeline struct {
	series [][]series // [contractor][worker type]
}

// New creates a Timeline with the given per-contractor capacity vectors,
// all capacity free at every instant.
func New(capacities [][]int) *Timeline {
	tl := &Timeline{series: make([][]series, len(capacities))}
	for c, caps := range capacities {
		tl.series[c] = make([]series, len(caps))
		for t, cap := range caps {
			tl.series[c][t].capacity = cap
		}
	}
	return tl
}

// EarliestFit returns the smallest start time t >= from at which every
// segment's demand stays within free capacity on the given contractor for
// its entire interval [t+Offset, t+Offset+Duration). The curves are step
// functions, so only `from` and points where some demanded curve changes
// can be earliest fits; candidates are probed in increasing order, which
// makes the result deterministic with a smallest-time tie-break.
//
// The second return value is false when the demand exceeds total capacity
// and can therefore never fit.
func (tl *Timeline) EarliestFit(contractor int, from model.Time, segs []Segment) (model.Time, bool) {
	for _, seg := range segs {
		for ti, q := range seg.Demand {
			if q > tl.series[contractor][ti].capacity {
				return model.TimeInf, false
			}
		}
	}
	t := from
	for {
		if tl.fits(contractor, t, segs) {
			return t, true
		}
		next, ok := tl.nextCandidate(contractor, t, segs)
		if !ok {
			// Beyond the last event every curve is flat at full capacity,
			// so a capacity-respecting demand always fits there.
			return model.TimeInf, false
		}
		t = next
	}
}

func (tl *Timeline) fits(contractor int, t model.Time, segs []Segment) bool {
	for _, seg := range segs {
		t0 := t + seg.Offset
		t1 := t0 + seg.Duration
		for ti, q := range seg.Demand {
			if q == 0 {
				continue
			}
			if tl.series[contractor][ti].minFree(t0, t1) < q {
				return false
			}
		}
	}
	return true
}

// nextCandidate returns the smallest start time strictly greater than t at
// which some demanded curve changes under some segment.
func (tl *Timeline) nextCandidate(contractor int, t model.Time, segs []Segment) (model.Time, bool) {
	var best model.Time
	found := false
	for _, seg := range segs {
		for ti, q := range seg.Demand {
			if q == 0 {
				continue
			}
			s := &tl.series[contractor][ti]
			i := sort.Search(len(s.events), func(i int) bool { return s.events[i].at > t+seg.Offset })
			if i < len(s.events) {
				cand := s.events[i].at - seg.Offset
				if !found || cand < best {
					best = cand
					found = true
				}
			}
		}
	}
	return best, found
}

// Reserve commits the segments at window start t, consuming capacity on the
// contractor's demanded series over each segment's interval.
func (tl *Timeline) Reserve(contractor int, t model.Time, segs []Segment) {
	for _, seg := range segs {
		t0 := t + seg.Offset
		t1 := t0 + seg.Duration
		for ti, q := range seg.Demand {
			if q == 0 {
				continue
			}
			s := &tl.series[contractor][ti]
			s.add(t0, -q)
			s.add(t1, q)
		}
	}
}
