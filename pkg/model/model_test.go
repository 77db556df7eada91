package model

import "testing"

func TestListOptions_Clamp(t *testing.T) {
	tests := []struct {
		name       string
		input      ListOptions
		wantLimit  int
		wantOffset int
	}{
		{"defaults", ListOptions{Limit: 0, Offset: 0}, 20, 0},
		{"negative limit", ListOptions{Limit: -5, Offset: 0}, 20, 0},
		{"over max", ListOptions{Limit: 200, Offset: 0}, 100, 0},
		{"negative offset", ListOptions{Limit: 10, Offset: -3}, 10, 0},
		{"valid", ListOptions{Limit: 50, Offset: 10}, 50, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Clamp()
			if tt.input.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.input.Limit, tt.wantLimit)
			}
			if tt.input.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", tt.input.Offset, tt.wantOffset)
			}
		})
	}
}

func TestTime_IsInf(t *testing.T) {
	tests := []struct {
		name string
		in   Time
		want bool
	}{
		{"zero", 0, false},
		{"ordinary", 12345, false},
		{"inf", TimeInf, true},
		{"beyond inf", TimeInf + 1, true},
		{"negative inf", -TimeInf, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.IsInf(); got != tt.want {
				t.Errorf("IsInf(%d) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInfeasibleFitnessIsWorstCase(t *testing.T) {
	// Any feasible makespan is bounded by the sum of all durations. The
	// sentinel must sort after all of them.
	feasible := Fitness(1_000_000)
	if InfeasibleFitness <= feasible {
		t.Fatalf("InfeasibleFitness = %d, want > %d", InfeasibleFitness, feasible)
	}
	if !InfeasibleFitness.IsInf() {
		t.Fatal("InfeasibleFitness must be infinite")
	}
}

func TestVerdict_IsFeasible(t *testing.T) {
	for _, v := range []Verdict{VerdictPrecedenceViolation, VerdictOverAllocation, VerdictUnderAllocation} {
		if v.IsFeasible() {
			t.Errorf("%s reported feasible", v)
		}
	}
	if !VerdictFeasible.IsFeasible() {
		t.Error("FEASIBLE reported infeasible")
	}
}
