package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/me/goplan/pkg/model"
)

const problemYAML = `
name: depot
works:
  - id: dig
    duration: 2
    requires: {digger: 2}
  - id: pour
    duration: 3
    requires: {mason: 2}
    predecessors: [dig]
  - id: cure
    duration: 4
    requires: {mason: 1}
    predecessors: [pour]
chains:
  - [pour, cure]
contractors:
  - id: acme
    workers: {digger: 2, mason: 2}
`

const problemJSON = `{
  "name": "depot",
  "works": [
    {"id": "dig", "duration": 2, "requires": {"digger": 2}},
    {"id": "pour", "duration": 3, "requires": {"mason": 2}, "predecessors": ["dig"]}
  ],
  "contractors": [
    {"id": "acme", "workers": {"digger": 2, "mason": 2}}
  ]
}`

func TestDecodeProblemYAML(t *testing.T) {
	l := New()
	def, err := l.DecodeProblem([]byte(problemYAML))
	if err != nil {
		t.Fatalf("DecodeProblem: %v", err)
	}
	if def.Name != "depot" || len(def.Works) != 3 || len(def.Contractors) != 1 {
		t.Errorf("decoded %q with %d works, %d contractors", def.Name, len(def.Works), len(def.Contractors))
	}
	if len(def.Chains) != 1 || len(def.Chains[0]) != 2 {
		t.Errorf("chains = %v", def.Chains)
	}
}

func TestDecodeProblemJSON(t *testing.T) {
	l := New()
	def, err := l.DecodeProblem([]byte(problemJSON))
	if err != nil {
		t.Fatalf("DecodeProblem: %v", err)
	}
	if len(def.Works) != 2 {
		t.Errorf("works = %d, want 2", len(def.Works))
	}
	if def.Works[1].Predecessors[0] != "dig" {
		t.Errorf("predecessors = %v", def.Works[1].Predecessors)
	}
}

func TestDecodeProblemRejectsInvalid(t *testing.T) {
	l := New()
	tests := []struct {
		name string
		body string
	}{
		{"not yaml", "works: ["},
		{"missing duration", "works: [{id: a}]\ncontractors: [{id: c}]"},
		{"negative duration", "works: [{id: a, duration: -1}]\ncontractors: [{id: c}]"},
		{"no works", "contractors: [{id: c}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := l.DecodeProblem([]byte(tt.body)); err == nil {
				t.Fatal("DecodeProblem succeeded, want error")
			}
		})
	}
}

func TestFieldErrors(t *testing.T) {
	l := New()
	_, err := l.DecodeProblem([]byte("works: [{id: a, duration: -1}]\ncontractors: [{id: c}]"))
	if err == nil {
		t.Fatal("DecodeProblem succeeded, want error")
	}
	fields := FieldErrors(err)
	if len(fields) == 0 {
		t.Fatal("FieldErrors = none, want at least one")
	}
	if !strings.Contains(fields[0].Field, "Duration") {
		t.Errorf("field = %q, want a Duration field", fields[0].Field)
	}
}

func TestLoadProblemAndCompile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problem.yaml")
	if err := os.WriteFile(path, []byte(problemYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	l := New()
	def, err := l.LoadProblem(path)
	if err != nil {
		t.Fatalf("LoadProblem: %v", err)
	}
	g, pool, err := Compile(def)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if g.WorkCount() != 3 || pool.Count() != 1 {
		t.Errorf("compiled %d works, %d contractors", g.WorkCount(), pool.Count())
	}

	if _, err := l.LoadProblem(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadProblem on a missing file succeeded")
	}
}

func TestCompileChromosome(t *testing.T) {
	l := New()
	def, err := l.DecodeProblem([]byte(problemYAML))
	if err != nil {
		t.Fatalf("DecodeProblem: %v", err)
	}
	g, pool, err := Compile(def)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	ch, err := CompileChromosome(&model.ChromosomeDef{
		Order: []string{"dig", "pour", "cure"},
		Assignments: []model.AssignmentDef{
			{Work: "dig", Contractor: "acme"},
			{Work: "pour", Contractor: "acme", Demand: map[string]int{"mason": 2}},
			{Work: "cure", Contractor: "acme"},
		},
	}, g, pool)
	if err != nil {
		t.Fatalf("CompileChromosome: %v", err)
	}

	if len(ch.Order) != 3 || len(ch.Contractors) != 3 || len(ch.Resources) != 3 {
		t.Fatalf("chromosome shape = %d/%d/%d", len(ch.Order), len(ch.Contractors), len(ch.Resources))
	}

	// Demands not spelled out default to the work's requirements.
	dig, _ := g.WorkIndex("dig")
	digger, _ := g.TypeIndex("digger")
	if ch.Resources[dig][digger] != 2 {
		t.Errorf("dig digger demand = %d, want required 2", ch.Resources[dig][digger])
	}
}

func TestCompileChromosomeErrors(t *testing.T) {
	l := New()
	def, err := l.DecodeProblem([]byte(problemYAML))
	if err != nil {
		t.Fatalf("DecodeProblem: %v", err)
	}
	g, pool, err := Compile(def)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	full := func() *model.ChromosomeDef {
		return &model.ChromosomeDef{
			Order: []string{"dig", "pour", "cure"},
			Assignments: []model.AssignmentDef{
				{Work: "dig", Contractor: "acme"},
				{Work: "pour", Contractor: "acme"},
				{Work: "cure", Contractor: "acme"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(d *model.ChromosomeDef)
		wantMsg string
	}{
		{
			"unknown work in order",
			func(d *model.ChromosomeDef) { d.Order[0] = "ghost" },
			"unknown work",
		},
		{
			"short order",
			func(d *model.ChromosomeDef) { d.Order = d.Order[:2] },
			"lists 2 works",
		},
		{
			"unknown work in assignment",
			func(d *model.ChromosomeDef) { d.Assignments[0].Work = "ghost" },
			"unknown work",
		},
		{
			"duplicate assignment",
			func(d *model.ChromosomeDef) { d.Assignments[1].Work = "dig" },
			"assigned twice",
		},
		{
			"unknown contractor",
			func(d *model.ChromosomeDef) { d.Assignments[0].Contractor = "ghost" },
			"unknown contractor",
		},
		{
			"unknown worker type",
			func(d *model.ChromosomeDef) { d.Assignments[0].Demand = map[string]int{"pilot": 1} },
			"unknown worker type",
		},
		{
			"missing assignment",
			func(d *model.ChromosomeDef) { d.Assignments = d.Assignments[:2] },
			"no assignment",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := full()
			tt.mutate(d)
			_, err := CompileChromosome(d, g, pool)
			if err == nil {
				t.Fatal("CompileChromosome succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDecodeChromosomes(t *testing.T) {
	l := New()
	def, err := l.DecodeProblem([]byte(problemYAML))
	if err != nil {
		t.Fatalf("DecodeProblem: %v", err)
	}
	g, pool, err := Compile(def)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	body := `
- order: [dig, pour, cure]
  assignments:
    - {work: dig, contractor: acme}
    - {work: pour, contractor: acme}
    - {work: cure, contractor: acme}
- order: [cure, pour, dig]
  assignments:
    - {work: dig, contractor: acme}
    - {work: pour, contractor: acme}
    - {work: cure, contractor: acme}
`
	chs, err := l.DecodeChromosomes([]byte(body), g, pool)
	if err != nil {
		t.Fatalf("DecodeChromosomes: %v", err)
	}
	if len(chs) != 2 {
		t.Fatalf("decoded %d chromosomes, want 2", len(chs))
	}

	if _, err := l.DecodeChromosomes([]byte(`- order: [ghost]`), g, pool); err == nil {
		t.Error("DecodeChromosomes with unknown work succeeded")
	}
}
