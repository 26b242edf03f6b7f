package fitting

import (
	"errors"
	"math"
	"testing"

	"golact/domain/core"
	"golact/domain/lactation"
	"golact/domain/model"
	"golact/internal/testkit"
)

func prepared(t *testing.T, modelName string, days, yields []float64) *lactation.PreparedInputs {
	t.Helper()
	in, err := lactation.PrepareInputs(lactation.RawInput{Days: days, Yields: yields, Model: modelName})
	if err != nil {
		t.Fatalf("PrepareInputs failed: %v", err)
	}
	return in
}

func rmse(eval func(t float64, p []float64) float64, days, yields, params []float64) float64 {
	sse := 0.0
	for i, d := range days {
		r := yields[i] - eval(d, params)
		sse += r * r
	}
	return math.Sqrt(sse / float64(len(days)))
}

// TestFitRecoversGeneratingCurve fits each supported model to noiseless data
// generated from known parameters and checks the fitted curve reproduces the
// observations.
func TestFitRecoversGeneratingCurve(t *testing.T) {
	cases := []struct {
		model  model.Name
		truth  []float64
		maxErr float64
	}{
		{model.Wood, []float64{25, 0.2, 0.004}, 0.5},
		{model.Wilmink, []float64{30, -0.02, -12, model.WilminkK}, 0.5},
		{model.Fischer, []float64{40, 0.05, 0.08}, 1.0},
		{model.MilkBot, []float64{35, 25, -5, 0.002}, 2.0},
		{model.AliSchaeffer, []float64{40, 10, -5, 2, 1}, 1.5},
	}

	fitter := NewFitter()
	for _, tc := range cases {
		days, yields, err := testkit.SyntheticLactation(tc.model, tc.truth, 305, 0, 1)
		if err != nil {
			t.Fatalf("%s: synthetic data failed: %v", tc.model, err)
		}
		in := prepared(t, string(tc.model), days, yields)

		params, err := fitter.FitParameters(in, string(tc.model))
		if err != nil {
			t.Fatalf("%s: fit failed: %v", tc.model, err)
		}

		spec, _ := model.Parse(string(tc.model))
		if len(params) != len(spec.Params) {
			t.Fatalf("%s: got %d params, want %d", tc.model, len(params), len(spec.Params))
		}
		if got := rmse(spec.Eval, in.Days, in.Yields, params); got > tc.maxErr {
			t.Errorf("%s: fitted curve RMSE = %.3f, want <= %.3f", tc.model, got, tc.maxErr)
		}
	}
}

func TestFitWilminkFixesDecayRate(t *testing.T) {
	days, yields, err := testkit.SyntheticLactation(model.Wilmink, []float64{30, -0.02, -12, model.WilminkK}, 120, 0.1, 7)
	if err != nil {
		t.Fatal(err)
	}
	in := prepared(t, "wilmink", days, yields)

	params, err := NewFitter().FitParameters(in, "wilmink")
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if params[3] != model.WilminkK {
		t.Errorf("k = %v, want fixed %v", params[3], model.WilminkK)
	}
}

func TestFitRespectsBounds(t *testing.T) {
	days, yields, err := testkit.SyntheticLactation(model.Wood, []float64{25, 0.2, 0.004}, 120, 0.5, 3)
	if err != nil {
		t.Fatal(err)
	}
	in := prepared(t, "wood", days, yields)

	params, err := NewFitter().FitParameters(in, "wood")
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	spec, _ := model.Parse("wood")
	for i, b := range spec.Bounds {
		if params[i] < b.Lo || params[i] > b.Hi {
			t.Errorf("param %s = %v outside [%v, %v]", spec.Params[i], params[i], b.Lo, b.Hi)
		}
	}
}

func TestFitUnsupportedModel(t *testing.T) {
	in := prepared(t, "brody", []float64{10, 40, 70}, []float64{20, 25, 23})
	_, err := NewFitter().FitParameters(in, "brody")
	if !errors.Is(err, core.ErrUnsupportedModel) {
		t.Errorf("expected ErrUnsupportedModel, got %v", err)
	}
}

func TestFitUnknownModel(t *testing.T) {
	in := prepared(t, "wood", []float64{10, 40}, []float64{20, 25})
	_, err := NewFitter().FitParameters(in, "gompertz")
	if !errors.Is(err, core.ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}

func TestFitMilkBotLeastSquares(t *testing.T) {
	truth := []float64{35, 25, -5, 0.002}
	days, yields, err := testkit.SyntheticLactation(model.MilkBot, truth, 305, 0, 11)
	if err != nil {
		t.Fatal(err)
	}
	in := prepared(t, "milkbot", days, yields)

	params, err := NewFitter().FitMilkBotLeastSquares(in)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	spec, _ := model.Parse("milkbot")
	if got := rmse(spec.Eval, in.Days, in.Yields, params); got > 1.5 {
		t.Errorf("least-squares RMSE = %.3f", got)
	}

	// Data-scaled bounds keep the scale parameter near the observed ceiling.
	maxY := 0.0
	for _, y := range in.Yields {
		if y > maxY {
			maxY = y
		}
	}
	if params[0] < maxY*0.5 || params[0] > maxY*8 {
		t.Errorf("scale = %v outside data-scaled bounds", params[0])
	}
}

func TestProject(t *testing.T) {
	bounds := []model.Bound{{Lo: 0, Hi: 1}, {Lo: -1, Hi: 1}}
	got := project([]float64{2, -5}, bounds)
	if got[0] != 1 || got[1] != -1 {
		t.Errorf("project = %v", got)
	}

	// Nil bounds pass through.
	got = project([]float64{2, -5}, nil)
	if got[0] != 2 || got[1] != -5 {
		t.Errorf("unbounded project = %v", got)
	}
}
