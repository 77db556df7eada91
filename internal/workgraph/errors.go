package workgraph

import (
	"errors"
	"fmt"
)

// ErrMalformedGraph is the root of all construction-time graph errors:
// unknown id references, cycles, and inconsistent inseparable chains. These
// are fatal; they abort the whole optimization run, unlike per-chromosome
// infeasibility which the simulator reports as a verdict.
var ErrMalformedGraph = errors.New("malformed work graph")

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedGraph, fmt.Sprintf(format, args...))
}
