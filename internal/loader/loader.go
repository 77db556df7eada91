// Package loader is the marshaling boundary between external problem and
// chromosome representations and the engine's compiled data model. It is
// deliberately decoupled from the simulation core so the core stays free of
// any particular host format.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/me/goplan/internal/resources"
	"github.com/me/goplan/internal/workgraph"
	"github.com/me/goplan/pkg/model"
)

// Loader decodes and validates problem definitions and chromosome lists.
type Loader struct {
	validate *validator.Validate
}

// New creates a Loader.
func New() *Loader {
	return &Loader{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// DecodeProblem parses a problem definition from YAML or JSON. YAML is the
// default; JSON is accepted because every JSON document is valid YAML.
func (l *Loader) DecodeProblem(data []byte) (*model.ProblemDef, error) {
	var def model.ProblemDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse problem definition: %w", err)
	}
	if err := l.validate.Struct(&def); err != nil {
		return nil, fmt.Errorf("invalid problem definition: %w", err)
	}
	return &def, nil
}

// LoadProblem reads and decodes a problem definition file.
func (l *Loader) LoadProblem(path string) (*model.ProblemDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	def, err := l.DecodeProblem(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Compile builds the immutable graph and pool snapshot from a decoded
// definition. Construction errors are fatal for the whole run.
func Compile(def *model.ProblemDef) (*workgraph.Graph, *resources.Pool, error) {
	g, err := workgraph.Build(def.Works, def.Chains)
	if err != nil {
		return nil, nil, err
	}
	contractors := make([]resources.CompileInput, len(def.Contractors))
	for i, c := range def.Contractors {
		contractors[i] = resources.CompileInput{ID: c.ID, Workers: c.Workers}
	}
	pool, err := resources.Compile(g, contractors)
	if err != nil {
		return nil, nil, err
	}
	return g, pool, nil
}

// DecodeChromosomes parses a chromosome list from YAML or JSON and compiles
// each entry against the problem's index mappings.
func (l *Loader) DecodeChromosomes(data []byte, g *workgraph.Graph, pool *resources.Pool) ([]model.Chromosome, error) {
	var defs []model.ChromosomeDef
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse chromosomes: %w", err)
	}
	chs := make([]model.Chromosome, len(defs))
	for i := range defs {
		if err := l.validate.Struct(&defs[i]); err != nil {
			return nil, fmt.Errorf("invalid chromosome %d: %w", i, err)
		}
		ch, err := CompileChromosome(&defs[i], g, pool)
		if err != nil {
			return nil, fmt.Errorf("chromosome %d: %w", i, err)
		}
		chs[i] = *ch
	}
	return chs, nil
}

// LoadChromosomes reads and decodes a chromosome list file.
func (l *Loader) LoadChromosomes(path string, g *workgraph.Graph, pool *resources.Pool) ([]model.Chromosome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	chs, err := l.DecodeChromosomes(data, g, pool)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return chs, nil
}

// CompileChromosome maps one external chromosome onto dense indices. Every
// work must appear exactly once in the order gene and exactly once in the
// assignments; worker types a demand names must exist in the graph.
func CompileChromosome(def *model.ChromosomeDef, g *workgraph.Graph, pool *resources.Pool) (*model.Chromosome, error) {
	n := g.WorkCount()
	ch := &model.Chromosome{
		Order:       make([]int, 0, n),
		Contractors: make([]int, n),
		Resources:   make([][]int, n),
	}

	for _, id := range def.Order {
		w, ok := g.WorkIndex(id)
		if !ok {
			return nil, fmt.Errorf("order references unknown work %q", id)
		}
		ch.Order = append(ch.Order, w)
	}
	if len(ch.Order) != n {
		return nil, fmt.Errorf("order lists %d works, problem has %d", len(ch.Order), n)
	}

	assigned := make([]bool, n)
	for _, a := range def.Assignments {
		w, ok := g.WorkIndex(a.Work)
		if !ok {
			return nil, fmt.Errorf("assignment references unknown work %q", a.Work)
		}
		if assigned[w] {
			return nil, fmt.Errorf("work %q assigned twice", a.Work)
		}
		assigned[w] = true

		c, err := pool.Index(a.Contractor)
		if err != nil {
			return nil, err
		}
		ch.Contractors[w] = c

		row := make([]int, g.WorkerTypeCount())
		// Demands default to the work's requirement when not spelled out.
		copy(row, g.Requires(w))
		for name, q := range a.Demand {
			ti, ok := g.TypeIndex(name)
			if !ok {
				return nil, fmt.Errorf("assignment for work %q names unknown worker type %q", a.Work, name)
			}
			row[ti] = q
		}
		ch.Resources[w] = row
	}
	for w, ok := range assigned {
		if !ok {
			return nil, fmt.Errorf("work %q has no assignment", g.WorkID(w))
		}
	}
	return ch, nil
}

// FieldErrors flattens validator errors into API field errors so the server
// can report which fields of a submitted definition were rejected.
func FieldErrors(err error) []model.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, model.FieldError{
			Field:   fe.Namespace(),
			Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
		})
	}
	return out
}
