package workgraph

import (
	"sort"
	"strings"

	"github.com/gammazero/deque"
	"github.com/me/goplan/pkg/model"
)

// Graph is the immutable, compiled form of a work-precedence graph. Works
// and worker types are addressed by dense indices so that the hot simulation
// path never touches a map; the string ids of the external definition are
// kept only for reporting.
//
// A Graph is built once per optimization run and shared read-only across all
// concurrent evaluations.
type Graph struct {
	workIDs   []string
	workIndex map[string]int

	workerTypes []string
	typeIndex   map[string]int

	durations []model.Time
	requires  [][]int // [work][worker type] -> required quantity
	parents   [][]int // [work] -> sorted direct predecessor indices

	chainHead    []int   // [work] -> chain head index, or -1 when unchained
	chainMembers [][]int // [head work] -> ordered member indices; nil otherwise
}

// Build compiles and validates a work-precedence graph from external
// definitions. It fails with [ErrMalformedGraph] on duplicate or unknown
// ids, non-positive durations, cyclic precedence, or inseparable chains
// that cannot run contiguously.
func Build(works []model.WorkDef, chains [][]string) (*Graph, error) {
	if len(works) == 0 {
		return nil, malformedf("no works defined")
	}

	g := &Graph{
		workIDs:   make([]string, len(works)),
		workIndex: make(map[string]int, len(works)),
	}
	for i, w := range works {
		if w.ID == "" {
			return nil, malformedf("work at position %d has an empty id", i)
		}
		if _, dup := g.workIndex[w.ID]; dup {
			return nil, malformedf("duplicate work id %q", w.ID)
		}
		g.workIDs[i] = w.ID
		g.workIndex[w.ID] = i
	}

	g.compileWorkerTypes(works)

	g.durations = make([]model.Time, len(works))
	g.requires = make([][]int, len(works))
	g.parents = make([][]int, len(works))
	for i, w := range works {
		if w.Duration <= 0 {
			return nil, malformedf("work %q has non-positive duration %d", w.ID, w.Duration)
		}
		g.durations[i] = w.Duration

		g.requires[i] = make([]int, len(g.workerTypes))
		for name, q := range w.Requires {
			if q < 0 {
				return nil, malformedf("work %q requires negative quantity of %q", w.ID, name)
			}
			g.requires[i][g.typeIndex[name]] = q
		}

		seen := make(map[int]bool, len(w.Predecessors))
		for _, pid := range w.Predecessors {
			p, ok := g.workIndex[pid]
			if !ok {
				return nil, malformedf("work %q references unknown predecessor %q", w.ID, pid)
			}
			if p == i {
				return nil, malformedf("work %q lists itself as a predecessor", w.ID)
			}
			if !seen[p] {
				seen[p] = true
				g.parents[i] = append(g.parents[i], p)
			}
		}
		sort.Ints(g.parents[i])
	}

	if err := g.compileChains(chains); err != nil {
		return nil, err
	}
	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// compileWorkerTypes assigns dense indices to every worker type mentioned by
// any work, in lexicographic order for determinism.
func (g *Graph) compileWorkerTypes(works []model.WorkDef) {
	set := make(map[string]bool)
	for _, w := range works {
		for name := range w.Requires {
			set[name] = true
		}
	}
	g.workerTypes = make([]string, 0, len(set))
	for name := range set {
		g.workerTypes = append(g.workerTypes, name)
	}
	sort.Strings(g.workerTypes)
	g.typeIndex = make(map[string]int, len(g.workerTypes))
	for i, name := range g.workerTypes {
		g.typeIndex[name] = i
	}
}

// compileChains validates inseparable chains. A non-head member may depend
// only on earlier members of its own chain; any external predecessor would
// conflict with the zero-gap contiguity the chain guarantees.
func (g *Graph) compileChains(chains [][]string) error {
	g.chainHead = make([]int, len(g.workIDs))
	for i := range g.chainHead {
		g.chainHead[i] = -1
	}
	g.chainMembers = make([][]int, len(g.workIDs))

	for ci, chain := range chains {
		if len(chain) < 2 {
			return malformedf("inseparable chain %d has fewer than two members", ci)
		}
		members := make([]int, len(chain))
		inThis := make(map[int]int, len(chain)) // member index -> position
		for k, id := range chain {
			w, ok := g.workIndex[id]
			if !ok {
				return malformedf("inseparable chain %d references unknown work %q", ci, id)
			}
			if g.chainHead[w] != -1 {
				return malformedf("work %q belongs to more than one inseparable chain", id)
			}
			if _, dup := inThis[w]; dup {
				return malformedf("inseparable chain %d lists work %q twice", ci, id)
			}
			members[k] = w
			inThis[w] = k
		}
		for k, w := range members {
			for _, p := range g.parents[w] {
				pos, internal := inThis[p]
				if k == 0 {
					// The head may depend on anything outside the chain,
					// but never on its own members.
					if internal {
						return malformedf("head %q of inseparable chain %d has predecessor %q inside the chain",
							g.workIDs[w], ci, g.workIDs[p])
					}
					continue
				}
				if !internal || pos >= k {
					return malformedf("work %q in inseparable chain %d has predecessor %q outside the preceding chain members",
						g.workIDs[w], ci, g.workIDs[p])
				}
			}
		}
		head := members[0]
		for _, w := range members {
			g.chainHead[w] = head
		}
		g.chainMembers[head] = members
	}
	return nil
}

// checkAcyclic runs Kahn's algorithm; any unprocessable remainder is a cycle.
func (g *Graph) checkAcyclic() error {
	n := len(g.workIDs)
	inDegree := make([]int, n)
	forward := make([][]int, n)
	for w, ps := range g.parents {
		inDegree[w] = len(ps)
		for _, p := range ps {
			forward[p] = append(forward[p], w)
		}
	}

	var queue deque.Deque[int]
	for w := 0; w < n; w++ {
		if inDegree[w] == 0 {
			queue.PushBack(w)
		}
	}

	processed := 0
	for queue.Len() > 0 {
		w := queue.PopFront()
		processed++
		for _, succ := range forward[w] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue.PushBack(succ)
			}
		}
	}

	if processed != n {
		var cycleNodes []string
		for w := 0; w < n; w++ {
			if inDegree[w] > 0 {
				cycleNodes = append(cycleNodes, g.workIDs[w])
			}
		}
		sort.Strings(cycleNodes)
		return malformedf("precedence contains a cycle involving works: %s", strings.Join(cycleNodes, ", "))
	}
	return nil
}

// WorkCount returns the number of works in the graph.
func (g *Graph) WorkCount() int {
	return len(g.workIDs)
}

// WorkerTypeCount returns the number of distinct worker types required by
// any work.
func (g *Graph) WorkerTypeCount() int {
	return len(g.workerTypes)
}

// WorkerTypes returns the worker type names in index order.
func (g *Graph) WorkerTypes() []string {
	return g.workerTypes
}

// TypeIndex returns the dense index of a worker type name.
func (g *Graph) TypeIndex(name string) (int, bool) {
	i, ok := g.typeIndex[name]
	return i, ok
}

// WorkID returns the external id of work w.
func (g *Graph) WorkID(w int) string {
	return g.workIDs[w]
}

// WorkIndex returns the dense index of a work id.
func (g *Graph) WorkIndex(id string) (int, bool) {
	i, ok := g.workIndex[id]
	return i, ok
}

// Duration returns the duration of work w.
func (g *Graph) Duration(w int) model.Time {
	return g.durations[w]
}

// Requires returns the per-worker-type required quantities of work w. The
// returned slice is shared and must not be mutated.
func (g *Graph) Requires(w int) []int {
	return g.requires[w]
}

// Parents returns the sorted direct predecessor indices of work w. The
// returned slice is shared and must not be mutated.
func (g *Graph) Parents(w int) []int {
	return g.parents[w]
}

// ChainHead returns the head index of the inseparable chain containing w,
// or -1 when w is not part of any chain.
func (g *Graph) ChainHead(w int) int {
	return g.chainHead[w]
}

// ChainMembers returns the ordered member indices of the chain headed by w,
// or nil when w is not a chain head.
func (g *Graph) ChainMembers(w int) []int {
	return g.chainMembers[w]
}
