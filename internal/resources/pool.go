// Package resources holds the immutable contractor/worker-pool model shared
// read-only across all concurrent evaluations of an optimization run.
package resources

import (
	"errors"
	"fmt"

	"github.com/me/goplan/internal/workgraph"
)

// ErrUnknownContractor is returned when a lookup or a chromosome references
// a contractor absent from the pool. This is fatal: it indicates corrupt
// input data, not an ordinary infeasible candidate.
var ErrUnknownContractor = errors.New("unknown contractor")

// Pool is the compiled resource model: one capacity vector per contractor,
// indexed by the graph's worker-type indices. Immutable after Compile.
type Pool struct {
	ids        []string
	index      map[string]int
	capacities [][]int // [contractor][worker type]
}

// CompileInput is one contractor definition with worker-type capacities
// keyed by type name.
type CompileInput struct {
	ID      string
	Workers map[string]int
}

// Compile builds a Pool against the worker-type index of g. Worker types a
// contractor owns but no work requires carry no constraint and are dropped;
// types a work requires but a contractor lacks compile to capacity zero.
func Compile(g *workgraph.Graph, contractors []CompileInput) (*Pool, error) {
	if len(contractors) == 0 {
		return nil, errors.New("no contractors defined")
	}
	p := &Pool{
		ids:        make([]string, len(contractors)),
		index:      make(map[string]int, len(contractors)),
		capacities: make([][]int, len(contractors)),
	}
	for i, c := range contractors {
		if c.ID == "" {
			return nil, fmt.Errorf("contractor at position %d has an empty id", i)
		}
		if _, dup := p.index[c.ID]; dup {
			return nil, fmt.Errorf("duplicate contractor id %q", c.ID)
		}
		p.ids[i] = c.ID
		p.index[c.ID] = i

		p.capacities[i] = make([]int, g.WorkerTypeCount())
		for name, cap := range c.Workers {
			if cap < 0 {
				return nil, fmt.Errorf("contractor %q has negative capacity for %q", c.ID, name)
			}
			if ti, ok := g.TypeIndex(name); ok {
				p.capacities[i][ti] = cap
			}
		}
	}
	return p, nil
}

// Count returns the number of contractors.
func (p *Pool) Count() int {
	return len(p.ids)
}

// ID returns the external id of contractor c.
func (p *Pool) ID(c int) string {
	return p.ids[c]
}

// Index returns the dense index for a contractor id, or
// [ErrUnknownContractor] when the id is not in the pool.
func (p *Pool) Index(id string) (int, error) {
	i, ok := p.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownContractor, id)
	}
	return i, nil
}

// Capacities returns the per-worker-type capacities of contractor c. The
// returned slice is shared and must not be mutated.
func (p *Pool) Capacities(c int) ([]int, error) {
	if c < 0 || c >= len(p.capacities) {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrUnknownContractor, c, len(p.capacities))
	}
	return p.capacities[c], nil
}
