package model

import "time"

// WorkDef describes one unit of work in the external (string-id) form
// produced by the loader or API boundary. The engine compiles WorkDefs into
// dense index form before any evaluation.
type WorkDef struct {
	ID           string         `json:"id" yaml:"id" validate:"required"`
	Duration     Time           `json:"duration" yaml:"duration" validate:"required,gt=0"`
	Requires     map[string]int `json:"requires,omitempty" yaml:"requires" validate:"dive,gte=0"`
	Predecessors []string       `json:"predecessors,omitempty" yaml:"predecessors"`
}

// ContractorDef describes a contractor and its typed worker pools.
type ContractorDef struct {
	ID      string         `json:"id" yaml:"id" validate:"required"`
	Workers map[string]int `json:"workers" yaml:"workers" validate:"required,dive,gte=0"`
}

// ProblemDef is a complete scheduling problem: the work-precedence graph,
// the inseparable chains, and the contractor pool. It is supplied once per
// optimization run and is immutable after compilation.
type ProblemDef struct {
	Name        string          `json:"name,omitempty" yaml:"name"`
	Works       []WorkDef       `json:"works" yaml:"works" validate:"required,min=1,dive"`
	Chains      [][]string      `json:"chains,omitempty" yaml:"chains"`
	Contractors []ContractorDef `json:"contractors" yaml:"contractors" validate:"required,min=1,dive"`
}

// Problem is a registered problem as persisted by the store.
type Problem struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Definition      ProblemDef `json:"definition"`
	WorkCount       int        `json:"work_count"`
	ContractorCount int        `json:"contractor_count"`
	CreatedAt       time.Time  `json:"created_at"`
}
