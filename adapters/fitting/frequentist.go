// Package fitting implements frequentist parameter estimation for the
// fittable lactation curve models and the day-by-day curve predictor.
package fitting

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/optimize"

	"golact/domain/core"
	"golact/domain/lactation"
	"golact/domain/model"
)

// Fitter estimates model parameters from cleaned test-day data. It is
// stateless and safe for concurrent use.
type Fitter struct{}

// NewFitter creates a frequentist fitter.
func NewFitter() *Fitter {
	return &Fitter{}
}

// FitParameters fits the named model to the prepared inputs and returns the
// parameter tuple in the model's fixed order, minimising the sum of squared
// errors over the model's box constraints. Wilmink holds its decay rate k
// fixed and fits only the remaining three parameters. The optimizer returns
// a local optimum; callers validate the resulting predictions themselves.
func (f *Fitter) FitParameters(in *lactation.PreparedInputs, modelName string) ([]float64, error) {
	spec, err := model.Parse(modelName)
	if err != nil {
		return nil, err
	}
	if !spec.Fittable {
		return nil, core.NewValidationError(core.ErrUnsupportedModel, "model", modelName)
	}

	maxYield, _ := stats.Max(stats.Float64Data(in.Yields))

	switch spec.Name {
	case model.Wilmink:
		// k is fixed at -0.05; only a, b, c are free.
		free := minimizeSSE(func(t float64, p []float64) float64 {
			return spec.Eval(t, []float64{p[0], p[1], p[2], model.WilminkK})
		}, in.Days, in.Yields, spec.Guess(maxYield), nil)
		return []float64{free[0], free[1], free[2], model.WilminkK}, nil
	default:
		params := minimizeSSE(spec.Eval, in.Days, in.Yields, spec.Guess(maxYield), spec.Bounds)
		return params, nil
	}
}

// FitMilkBotLeastSquares is the alternative MilkBot path: bounded least
// squares with wider, data-scaled bounds. It is more robust for poorly
// conditioned lactations than the primary bounded minimisation and is
// offered as a separate entry point, never swapped in automatically.
func (f *Fitter) FitMilkBotLeastSquares(in *lactation.PreparedInputs) ([]float64, error) {
	spec, err := model.Parse(string(model.MilkBot))
	if err != nil {
		return nil, err
	}
	maxYield, _ := stats.Max(stats.Float64Data(in.Yields))

	guess := []float64{maxYield, 50.0, 30.0, 0.01}
	bounds := []model.Bound{
		{Lo: maxYield * 0.5, Hi: maxYield * 8.0},
		{Lo: 1.0, Hi: 400.0},
		{Lo: -300.0, Hi: 300.0},
		{Lo: 1e-6, Hi: 1.0},
	}
	return minimizeSSE(spec.Eval, in.Days, in.Yields, guess, bounds), nil
}

// minimizeSSE minimises the sum of squared residuals with Nelder-Mead.
// Bounds, when given, are enforced by projecting candidate points into the
// box before evaluating the model, and the final point is projected as well.
func minimizeSSE(eval func(t float64, p []float64) float64, days, yields, guess []float64, bounds []model.Bound) []float64 {
	objective := func(x []float64) float64 {
		p := project(x, bounds)
		sse := 0.0
		for i, t := range days {
			r := yields[i] - eval(t, p)
			sse += r * r
		}
		return sse
	}

	problem := optimize.Problem{Func: objective}
	x0 := make([]float64, len(guess))
	copy(x0, guess)

	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		// Local optimisation has no failure signal here; the guess is the
		// best point we have.
		return project(x0, bounds)
	}
	return project(result.X, bounds)
}

func project(x []float64, bounds []model.Bound) []float64 {
	p := make([]float64, len(x))
	copy(p, x)
	if bounds == nil {
		return p
	}
	for i := range p {
		if p[i] < bounds[i].Lo {
			p[i] = bounds[i].Lo
		}
		if p[i] > bounds[i].Hi {
			p[i] = bounds[i].Hi
		}
	}
	return p
}
