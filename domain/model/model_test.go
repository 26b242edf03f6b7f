package model

import (
	"errors"
	"math"
	"testing"

	"golact/domain/core"
	"golact/internal/symbolic"
)

func TestParse(t *testing.T) {
	spec, err := Parse("wood")
	if err != nil {
		t.Fatalf("Parse(wood) failed: %v", err)
	}
	if spec.Name != Wood {
		t.Errorf("Parse(wood) = %s", spec.Name)
	}

	// Normalization: case and surrounding whitespace.
	if _, err := Parse("  MilkBot "); err != nil {
		t.Errorf("normalized parse failed: %v", err)
	}

	_, err = Parse("gompertz")
	if !errors.Is(err, core.ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}

func TestRegistryComplete(t *testing.T) {
	specs := All()
	if len(specs) != 14 {
		t.Fatalf("expected 14 models, got %d", len(specs))
	}

	fittable := 0
	for _, spec := range specs {
		if spec.Eval == nil || spec.Expr == nil {
			t.Errorf("%s: missing Eval or Expr", spec.Name)
		}
		if spec.Fittable {
			fittable++
			if spec.Guess == nil {
				t.Errorf("%s: fittable model without a guess", spec.Name)
			}
			if spec.Bounds != nil && len(spec.Bounds) != len(spec.Params) {
				t.Errorf("%s: %d bounds for %d params", spec.Name, len(spec.Bounds), len(spec.Params))
			}
		}
	}
	if fittable != 5 {
		t.Errorf("expected 5 fittable models, got %d", fittable)
	}
}

// TestExprMatchesEval cross-checks each model's symbolic expression against
// its closed-form evaluator at several points.
func TestExprMatchesEval(t *testing.T) {
	// Plausible parameter tuples per model, in alphabetical order.
	tuples := map[Name][]float64{
		Wood:         {25, 0.2, 0.004},
		Wilmink:      {30, -0.02, -12, -0.05},
		AliSchaeffer: {40, 10, -5, 2, 1},
		Fischer:      {40, 0.05, 0.08},
		MilkBot:      {35, 25, -5, 0.002},
		Brody:        {35, 20, 0.002, 0.05},
		Sikka:        {20, 0.01, 0.0001},
		Nelder:       {0.5, 0.02, 0.0001},
		Dhanoa:       {25, 40, 0.005},
		Emmans:       {35, 0.1, 0.002, 1.5},
		Hayashi:      {5, 40, 120, 0},
		Rook:         {35, 2, 10, 0.002},
		Dijkstra:     {20, 0.05, 0.02, 0.002},
		Prasad:       {20, 0.1, -0.0005, -10},
	}

	for _, spec := range All() {
		p, ok := tuples[spec.Name]
		if !ok {
			t.Fatalf("no test tuple for %s", spec.Name)
		}
		fn, err := symbolic.Compile(spec.Expr(), append(spec.Params, TimeSymbol))
		if err != nil {
			t.Fatalf("%s: compile failed: %v", spec.Name, err)
		}
		for _, day := range []float64{5, 60, 150, 305} {
			want := spec.Eval(day, p)
			got := fn(append(append([]float64{}, p...), day))
			if math.Abs(got-want) > 1e-9*(1+math.Abs(want)) {
				t.Errorf("%s at t=%v: expr=%v eval=%v", spec.Name, day, got, want)
			}
		}
	}
}

// TestPeakTimeIsStationaryPoint verifies every closed-form peak time
// annihilates the time derivative of the model expression.
func TestPeakTimeIsStationaryPoint(t *testing.T) {
	tuples := map[Name][]float64{
		Wood:     {25, 0.2, 0.004},
		Wilmink:  {30, -0.02, -12, -0.05},
		Fischer:  {40, 0.05, 0.08},
		MilkBot:  {35, 25, -5, 0.002},
		Brody:    {35, 20, 0.002, 0.05},
		Sikka:    {20, 0.01, 0.0001},
		Nelder:   {0.5, 0.02, 0.0001},
		Dhanoa:   {25, 40, 0.005},
		Emmans:   {35, 0.1, 0.002, 1.5},
		Hayashi:  {5, 40, 120, 0},
		Rook:     {35, 2, 10, 0.002},
		Dijkstra: {20, 0.05, 0.02, 0.002},
	}

	for _, spec := range All() {
		if spec.PeakTime == nil {
			continue
		}
		p := tuples[spec.Name]
		if p == nil {
			t.Fatalf("no test tuple for %s", spec.Name)
		}

		peakFn, err := symbolic.Compile(spec.PeakTime(), spec.Params)
		if err != nil {
			t.Fatalf("%s: compile peak failed: %v", spec.Name, err)
		}
		tPeak := peakFn(p)
		if math.IsNaN(tPeak) || tPeak <= 0 {
			t.Errorf("%s: peak time = %v, want positive", spec.Name, tPeak)
			continue
		}

		// Central difference of the evaluator around the claimed peak.
		h := 1e-4 * math.Max(1, tPeak)
		slope := (spec.Eval(tPeak+h, p) - spec.Eval(tPeak-h, p)) / (2 * h)
		scale := math.Abs(spec.Eval(tPeak, p)) + 1
		if math.Abs(slope)/scale > 1e-4 {
			t.Errorf("%s: derivative at claimed peak t=%v is %v", spec.Name, tPeak, slope)
		}
	}
}

func TestNoPeakClosedForm(t *testing.T) {
	for _, name := range []Name{AliSchaeffer, Prasad} {
		spec, err := Parse(string(name))
		if err != nil {
			t.Fatal(err)
		}
		if spec.PeakTime != nil {
			t.Errorf("%s should have no closed-form peak time", name)
		}
	}
}

func TestEvalSeries(t *testing.T) {
	spec, _ := Parse("wood")
	p := []float64{25, 0.2, 0.004}
	series := spec.EvalSeries(p, 305)
	if len(series) != 305 {
		t.Fatalf("series length = %d", len(series))
	}
	if series[0] != spec.Eval(1, p) {
		t.Error("series must start at day 1")
	}
	if series[304] != spec.Eval(305, p) {
		t.Error("series must end at day 305")
	}
}

func TestFittableNames(t *testing.T) {
	names := FittableNames()
	if len(names) != 5 {
		t.Fatalf("FittableNames = %v", names)
	}
	for _, name := range names {
		spec, err := Parse(string(name))
		if err != nil || !spec.Fittable {
			t.Errorf("%s should be fittable", name)
		}
	}
}
