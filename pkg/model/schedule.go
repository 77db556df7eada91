package model

// Verdict classifies the outcome of simulating one chromosome.
type Verdict string

const (
	// VerdictFeasible marks a chromosome that produced a complete schedule.
	VerdictFeasible Verdict = "FEASIBLE"
	// VerdictPrecedenceViolation marks an order gene that is not a valid
	// linearization of the precedence graph.
	VerdictPrecedenceViolation Verdict = "PRECEDENCE_VIOLATION"
	// VerdictOverAllocation marks a resources gene that demands more of a
	// worker type than the assigned contractor owns.
	VerdictOverAllocation Verdict = "OVER_ALLOCATION"
	// VerdictUnderAllocation marks a resources gene that demands less of a
	// worker type than the work requires.
	VerdictUnderAllocation Verdict = "UNDER_ALLOCATION"
)

// String returns the string representation of the verdict.
func (v Verdict) String() string {
	return string(v)
}

// IsFeasible returns true if the chromosome produced a complete schedule.
func (v Verdict) IsFeasible() bool {
	return v == VerdictFeasible
}

// ScheduledWork is the simulated placement of one work.
type ScheduledWork struct {
	Start      Time `json:"start"`
	Finish     Time `json:"finish"`
	Contractor int  `json:"contractor"`
}

// Schedule is the complete result of simulating one feasible chromosome:
// one span per work (indexed by work index) and the resulting makespan.
type Schedule struct {
	Works    []ScheduledWork `json:"works"`
	Makespan Time            `json:"makespan"`
}
