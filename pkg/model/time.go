package model

// Time is the abstract integer time unit used throughout the engine. Work
// durations, start/finish times, and makespans are all expressed in these
// units; mapping them onto calendar time is the caller's concern.
type Time int64

// TimeInf is the "effectively infinite" time value. It caps every arithmetic
// result and doubles as the worst possible makespan.
const TimeInf Time = 2_000_000_000

// IsInf returns true for times at or beyond the infinity cap.
func (t Time) IsInf() bool {
	return t >= TimeInf || t <= -TimeInf
}

// Fitness is the scalar quality score returned to the genetic-algorithm
// layer: the simulated makespan for a feasible chromosome, or
// [InfeasibleFitness] for an infeasible one.
type Fitness = Time

// InfeasibleFitness is the documented sentinel fitness for infeasible
// chromosomes. It is guaranteed to be worse than the makespan of any
// feasible schedule, so the GA layer can rank infeasible candidates last
// without special-casing them.
const InfeasibleFitness Fitness = TimeInf
