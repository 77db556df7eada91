// Package simulator implements the serial schedule-generation scheme: it
// consumes the shared work graph and resource model plus one chromosome and
// drives a private timeline to a complete schedule or an infeasibility
// verdict.
package simulator

import (
	"fmt"

	"github.com/me/goplan/internal/resources"
	"github.com/me/goplan/internal/timeline"
	"github.com/me/goplan/internal/workgraph"
	"github.com/me/goplan/pkg/model"
)

// Result is the outcome of simulating one chromosome. Schedule is populated
// only when Verdict is feasible.
type Result struct {
	Schedule model.Schedule
	Verdict  model.Verdict
}

// Fitness maps the result onto the scalar returned to the GA layer: the
// makespan for a feasible schedule, the documented sentinel otherwise.
func (r *Result) Fitness() model.Fitness {
	if r.Verdict.IsFeasible() {
		return r.Schedule.Makespan
	}
	return model.InfeasibleFitness
}

// Simulate evaluates one chromosome against the shared, read-only graph and
// pool. Works are processed in the exact order of the chromosome's order
// gene; an order that is not a valid linearization of the precedence graph
// is rejected with a PRECEDENCE_VIOLATION verdict, and a resources gene
// that over- or under-allocates a worker type yields its verdict without
// further simulation. Verdicts are ordinary outcomes of the search, not
// errors.
//
// An error is returned only for corrupt input: a chromosome whose shape
// does not match the graph, or a contractor index outside the pool. Such
// errors are fatal to the whole batch.
//
// Simulate is deterministic and free of shared mutable state: repeated
// calls with the same arguments return identical results, concurrent calls
// are safe as long as graph and pool are not mutated.
func Simulate(g *workgraph.Graph, pool *resources.Pool, ch *model.Chromosome) (*Result, error) {
	if err := validateShape(g, pool, ch); err != nil {
		return nil, err
	}

	n := g.WorkCount()
	tl := newTimeline(pool)
	scheduled := make([]bool, n)
	spans := make([]model.ScheduledWork, n)

	for _, w := range ch.Order {
		if scheduled[w] {
			// Chain members are committed when their head is processed.
			continue
		}

		head := g.ChainHead(w)
		if head != -1 && head != w {
			// A chain member placed before its head: the intra-chain
			// precedence edge makes this an invalid linearization.
			return &Result{Verdict: model.VerdictPrecedenceViolation}, nil
		}

		unit := []int{w}
		if members := g.ChainMembers(w); members != nil {
			unit = members
		}

		// All external predecessors of the unit are predecessors of its
		// first work; graph construction guarantees later members depend
		// only on earlier members.
		earliest := model.Time(0)
		for _, p := range g.Parents(unit[0]) {
			if !scheduled[p] {
				return &Result{Verdict: model.VerdictPrecedenceViolation}, nil
			}
			earliest = max(earliest, spans[p].Finish)
		}

		contractor := ch.Contractors[unit[0]]
		caps, err := pool.Capacities(contractor)
		if err != nil {
			return nil, err
		}

		segs := make([]timeline.Segment, len(unit))
		offset := model.Time(0)
		for k, m := range unit {
			demand := ch.Resources[m]
			required := g.Requires(m)
			for ti, q := range demand {
				if q > caps[ti] {
					return &Result{Verdict: model.VerdictOverAllocation}, nil
				}
				if q < required[ti] {
					return &Result{Verdict: model.VerdictUnderAllocation}, nil
				}
			}
			segs[k] = timeline.Segment{
				Offset:   offset,
				Duration: g.Duration(m),
				Demand:   demand,
			}
			offset += g.Duration(m)
		}

		start, ok := tl.EarliestFit(contractor, earliest, segs)
		if !ok {
			// Unreachable after the capacity check above; classified as
			// over-allocation rather than crashing on inconsistent state.
			return &Result{Verdict: model.VerdictOverAllocation}, nil
		}
		tl.Reserve(contractor, start, segs)

		for k, m := range unit {
			spans[m] = model.ScheduledWork{
				Start:      start + segs[k].Offset,
				Finish:     start + segs[k].Offset + segs[k].Duration,
				Contractor: contractor,
			}
			scheduled[m] = true
		}
	}

	makespan := model.Time(0)
	for _, s := range spans {
		makespan = max(makespan, s.Finish)
	}
	return &Result{
		Schedule: model.Schedule{Works: spans, Makespan: makespan},
		Verdict:  model.VerdictFeasible,
	}, nil
}

// newTimeline builds a fresh timeline covering every contractor in the pool.
func newTimeline(pool *resources.Pool) *timeline.Timeline {
	caps := make([][]int, pool.Count())
	for c := range caps {
		caps[c], _ = pool.Capacities(c)
	}
	return timeline.New(caps)
}

// validateShape rejects chromosomes whose genes do not match the compiled
// problem: wrong lengths, out-of-range indices, or an order gene that is
// not a permutation of all works.
func validateShape(g *workgraph.Graph, pool *resources.Pool, ch *model.Chromosome) error {
	n := g.WorkCount()
	if len(ch.Order) != n {
		return fmt.Errorf("order gene has %d entries, graph has %d works", len(ch.Order), n)
	}
	if len(ch.Contractors) != n {
		return fmt.Errorf("contractor gene has %d entries, graph has %d works", len(ch.Contractors), n)
	}
	if len(ch.Resources) != n {
		return fmt.Errorf("resources gene has %d rows, graph has %d works", len(ch.Resources), n)
	}
	seen := make([]bool, n)
	for _, w := range ch.Order {
		if w < 0 || w >= n {
			return fmt.Errorf("order gene references work index %d outside [0,%d)", w, n)
		}
		if seen[w] {
			return fmt.Errorf("order gene lists work %q twice", g.WorkID(w))
		}
		seen[w] = true
	}
	for w, row := range ch.Resources {
		if len(row) != g.WorkerTypeCount() {
			return fmt.Errorf("resources gene row %d has %d entries, graph has %d worker types",
				w, len(row), g.WorkerTypeCount())
		}
	}
	for _, c := range ch.Contractors {
		if _, err := pool.Capacities(c); err != nil {
			return err
		}
	}
	return nil
}
