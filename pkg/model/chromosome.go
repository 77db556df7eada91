package model

// Chromosome is a candidate schedule encoding in compiled (index) form, as
// produced and owned by the genetic-algorithm layer. The evaluator treats it
// as read-only input.
//
// Order is the priority order gene: a permutation of all work indices. It is
// a heuristic list, not necessarily a valid linearization of the precedence
// graph; the simulator enforces feasibility regardless.
//
// Contractors and Resources together form the resources gene: for work w,
// Contractors[w] is the assigned contractor index and Resources[w][t] the
// quantity of worker type t the work will occupy on that contractor.
type Chromosome struct {
	Order       []int   `json:"order"`
	Contractors []int   `json:"contractors"`
	Resources   [][]int `json:"resources"`
}

// AssignmentDef is the external form of one resources-gene entry.
type AssignmentDef struct {
	Work       string         `json:"work" yaml:"work" validate:"required"`
	Contractor string         `json:"contractor" yaml:"contractor" validate:"required"`
	Demand     map[string]int `json:"demand,omitempty" yaml:"demand" validate:"dive,gte=0"`
}

// ChromosomeDef is a chromosome in the external (string-id) form accepted at
// the API and file boundary. Every work must appear exactly once in Order
// and exactly once in Assignments.
type ChromosomeDef struct {
	Order       []string        `json:"order" yaml:"order" validate:"required,min=1"`
	Assignments []AssignmentDef `json:"assignments" yaml:"assignments" validate:"required,min=1,dive"`
}
